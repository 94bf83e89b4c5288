package qualification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/gitremote"
	"github.com/temirov/releasetrain/internal/version"
)

const (
	notReleaseBranchTemplateConstant     = "%q is not a release branch"
	dryRunTagsLogMessageConstant         = "Dry run: skipping tag creation and push"
	dryRunDeleteLogMessageConstant       = "Dry run: skipping qualification tag removal"
	tagsPushedLogMessageConstant         = "Pushed release tags"
	qualificationEndedLogMessageConstant = "Removed qualification tags"
	qualificationStateLogMessageConstant = "Determined qualification state"
	phaseLogFieldConstant                = "phase"
	tagsLogFieldConstant                 = "tags"
	branchLogFieldConstant               = "branch"
	activeLogFieldConstant               = "active"
	latestReleaseLogFieldConstant        = "latest_release"
)

// ErrCollaboratorMissing indicates a Service was constructed without a required collaborator.
var ErrCollaboratorMissing = errors.New("qualification collaborator not configured")

// Phase names the branch of the tagging state machine a run took.
type Phase string

// Supported phases.
const (
	PhaseNormalRelease       Phase = Phase("normal-release")
	PhaseQualificationStart  Phase = Phase("qualification-start")
	PhaseQualificationActive Phase = Phase("qualification-active")
	PhaseQualificationEnd    Phase = Phase("qualification-end")
)

// NotReleaseBranchError indicates qualification state was requested for a branch without a version line.
type NotReleaseBranchError struct {
	Branch string
}

// Error describes the branch.
func (branchError NotReleaseBranchError) Error() string {
	return fmt.Sprintf(notReleaseBranchTemplateConstant, branchError.Branch)
}

// Clock returns the current time.
type Clock func() time.Time

// RemoteLister lists qualification tags of a remote repository.
type RemoteLister interface {
	QualificationTags(executionContext context.Context, remoteURL string) ([]gitremote.TagRecord, error)
}

// LocalTagger manages tags in the project checkout.
type LocalTagger interface {
	FetchTags(executionContext context.Context) error
	TagCreationTimes(executionContext context.Context, pattern string) ([]gitremote.TagCreation, error)
	CreateTag(executionContext context.Context, tag string) error
	PushTagsInBatches(executionContext context.Context, tags []string, batchSize int) error
	DeleteRemoteTags(executionContext context.Context, tags []string) error
}

// ServiceDependencies groups the collaborators of a Service.
type ServiceDependencies struct {
	Configuration Configuration
	// ProjectURL is the remote queried for qualification tags.
	ProjectURL string
	Remote     RemoteLister
	Tagger     LocalTagger
	Clock      Clock
	Logger     *zap.Logger
}

// TagOptions tunes TagVersion.
type TagOptions struct {
	StartQualification bool
	DryRun             bool
}

// TagResult records what TagVersion created and removed.
type TagResult struct {
	Phase       Phase
	Tags        []string
	DeletedTags []string
}

// Service tags releases and tracks the qualification window of a project.
type Service struct {
	configuration Configuration
	projectURL    string
	remote        RemoteLister
	tagger        LocalTagger
	clock         Clock
	logger        *zap.Logger
}

// NewService validates the configuration and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Remote == nil || dependencies.Tagger == nil || len(dependencies.ProjectURL) == 0 {
		return nil, ErrCollaboratorMissing
	}
	configuration := dependencies.Configuration.Sanitize()
	if validationError := configuration.Validate(); validationError != nil {
		return nil, validationError
	}

	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		configuration: configuration,
		projectURL:    dependencies.ProjectURL,
		remote:        dependencies.Remote,
		tagger:        dependencies.Tagger,
		clock:         clock,
		logger:        logger,
	}, nil
}

// QualificationTags lists qualification tags of the project, newest first.
// With latestOnly the result holds at most the newest tag.
func (service *Service) QualificationTags(executionContext context.Context, latestOnly bool) ([]gitremote.TagRecord, error) {
	records, listError := service.remote.QualificationTags(executionContext, service.projectURL)
	if listError != nil {
		return nil, listError
	}
	if latestOnly && len(records) > 1 {
		return records[:1], nil
	}
	return records, nil
}

// IsQualification reports whether the project is inside a qualification window on
// the release branch: the newest qualification tag is younger than the latest final
// release of the branch line, or no final release exists yet.
func (service *Service) IsQualification(executionContext context.Context, branch string) (bool, error) {
	line, isReleaseBranch := version.ParseReleaseBranch(branch)
	if !isReleaseBranch {
		return false, NotReleaseBranchError{Branch: branch}
	}

	records, listError := service.QualificationTags(executionContext, true)
	if listError != nil {
		return false, listError
	}
	if len(records) == 0 {
		return false, nil
	}
	newestQualification := version.ParseTagName(records[0].Name)

	if fetchError := service.tagger.FetchTags(executionContext); fetchError != nil {
		return false, fetchError
	}
	creations, creationsError := service.tagger.TagCreationTimes(executionContext, line.LinePattern())
	if creationsError != nil {
		return false, creationsError
	}

	latestRelease, found := latestFinalRelease(creations)
	active := !found || newestQualification.Timestamp > latestRelease.CreatedAt
	service.logger.Debug(qualificationStateLogMessageConstant,
		zap.String(branchLogFieldConstant, branch),
		zap.String(latestReleaseLogFieldConstant, latestRelease.Name),
		zap.Bool(activeLogFieldConstant, active),
	)
	return active, nil
}

// TagVersion tags every configured module with the release and pushes the tags.
// Starting a qualification, or tagging a release candidate during one, adds a
// qualification-{now} tag. A final release during a qualification ends it by
// removing every qualification tag from the remote.
func (service *Service) TagVersion(executionContext context.Context, release version.Version, options TagOptions) (TagResult, error) {
	qualifying := false
	if !options.StartQualification {
		active, stateError := service.IsQualification(executionContext, release.Branch())
		if stateError != nil {
			return TagResult{}, stateError
		}
		qualifying = active
	}

	result := TagResult{Phase: PhaseNormalRelease, Tags: service.moduleTags(release)}
	switch {
	case options.StartQualification:
		result.Phase = PhaseQualificationStart
	case qualifying && release.IsReleaseCandidate():
		result.Phase = PhaseQualificationActive
	case qualifying:
		result.Phase = PhaseQualificationEnd
	}
	if result.Phase == PhaseQualificationStart || result.Phase == PhaseQualificationActive {
		result.Tags = append(result.Tags, version.QualificationTagName(service.clock().Unix()))
	}

	if result.Phase == PhaseQualificationEnd {
		records, listError := service.QualificationTags(executionContext, false)
		if listError != nil {
			return TagResult{}, listError
		}
		for _, record := range records {
			result.DeletedTags = append(result.DeletedTags, record.Name)
		}
	}

	if options.DryRun {
		service.logger.Info(dryRunTagsLogMessageConstant, zap.String(phaseLogFieldConstant, string(result.Phase)), zap.Strings(tagsLogFieldConstant, result.Tags))
		if len(result.DeletedTags) > 0 {
			service.logger.Info(dryRunDeleteLogMessageConstant, zap.Strings(tagsLogFieldConstant, result.DeletedTags))
		}
		return result, nil
	}

	for _, tag := range result.Tags {
		if tagError := service.tagger.CreateTag(executionContext, tag); tagError != nil {
			return TagResult{}, tagError
		}
	}
	if pushError := service.tagger.PushTagsInBatches(executionContext, result.Tags, service.configuration.BatchSize); pushError != nil {
		return TagResult{}, pushError
	}
	service.logger.Info(tagsPushedLogMessageConstant, zap.String(phaseLogFieldConstant, string(result.Phase)), zap.Strings(tagsLogFieldConstant, result.Tags))

	if result.Phase == PhaseQualificationEnd {
		if deleteError := service.tagger.DeleteRemoteTags(executionContext, result.DeletedTags); deleteError != nil {
			return TagResult{}, deleteError
		}
		service.logger.Info(qualificationEndedLogMessageConstant, zap.Strings(tagsLogFieldConstant, result.DeletedTags))
	}
	return result, nil
}

func (service *Service) moduleTags(release version.Version) []string {
	bareRelease := release
	bareRelease.Prefix = ""
	bareVersion := bareRelease.String()

	tags := make([]string, 0, len(service.configuration.Modules)+1)
	for _, module := range service.configuration.Modules {
		tags = append(tags, module.TagName(bareVersion))
	}
	return tags
}

func latestFinalRelease(creations []gitremote.TagCreation) (gitremote.TagCreation, bool) {
	var latest gitremote.TagCreation
	var latestVersion version.Version
	found := false
	for _, creation := range creations {
		tagName := version.ParseTagName(creation.Name)
		if tagName.Kind != version.TagKindRelease {
			continue
		}
		if !found || latestVersion.Less(tagName.Version) {
			latest = creation
			latestVersion = tagName.Version
			found = true
		}
	}
	return latest, found
}

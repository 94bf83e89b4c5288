package train

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/gitremote"
	"github.com/temirov/releasetrain/internal/gitrepo"
	"github.com/temirov/releasetrain/internal/manifest"
	"github.com/temirov/releasetrain/internal/version"
)

const (
	lastReleaseLabelConstant              = "last release"
	newCommitsReportTemplateConstant      = "%s has new commits since %s\n"
	newTagReportTemplateConstant          = "%s has a new tag %s since last release candidate (was %s)\n"
	invalidMilestoneErrorTemplateConstant = "current milestone %q is not a version: %w"
	repositoryURLErrorTemplateConstant    = "resolve url of %s: %w"
	dryRunTagLogMessageConstant           = "Dry run: skipping tag"
	dryRunNotifyLogMessageConstant        = "Dry run: skipping notification"
	taggingProjectLogMessageConstant      = "Tagging project branch tip"
	repositoryCheckedLogMessageConstant   = "Checked repository"
	nextReleaseLogMessageConstant         = "Derived next release candidate"
	repositoryLogFieldConstant            = "repository"
	branchLogFieldConstant                = "branch"
	tagLogFieldConstant                   = "tag"
	changedLogFieldConstant               = "changed"
	actionLogFieldConstant                = "action_required"
	repositoriesLogFieldConstant          = "repositories"
	baseLogFieldConstant                  = "base"
)

// ErrCollaboratorMissing indicates a Service was constructed without a required collaborator.
var ErrCollaboratorMissing = errors.New("release train collaborator not configured")

// RemoteClient answers remote repository questions without cloning.
type RemoteClient interface {
	LatestCommitOnBranch(executionContext context.Context, remoteURL string, branch string) (string, error)
	LatestTag(executionContext context.Context, remoteURL string, glob string) (gitremote.TagRecord, bool, error)
	LatestCandidateTag(executionContext context.Context, remoteURL string, release version.Version) (gitremote.TagRecord, bool, error)
	ResolveTag(executionContext context.Context, remoteURL string, tag string) (string, error)
}

// RemoteTagger tags the tip of a remote branch.
type RemoteTagger interface {
	TagAndPushRemote(executionContext context.Context, remoteURL string, branch string, tag string) error
}

// Notifier warns repository owners that a tag is needed. It never fails the run.
type Notifier interface {
	WarnNewCommits(executionContext context.Context, repositories []string, tag string, branch string)
}

// ManifestReader exposes the release manifest fields the train reads.
type ManifestReader interface {
	PreviousTagSource
	Summary() (manifest.Summary, error)
}

// ServiceDependencies groups the collaborators of a Service.
type ServiceDependencies struct {
	Configuration Configuration
	Manifest      ManifestReader
	Remote        RemoteClient
	Tagger        RemoteTagger
	Notifier      Notifier
	Logger        *zap.Logger
	// Report receives the human-readable change lines. Standard output is reserved for the verdict.
	Report io.Writer
}

// CheckOptions tunes CheckForChanges.
type CheckOptions struct {
	WarningMode bool
	DryRun      bool
}

// Service implements the release train operations.
type Service struct {
	configuration Configuration
	location      gitrepo.OwnerLocation
	manifest      ManifestReader
	remote        RemoteClient
	tagger        RemoteTagger
	notifier      Notifier
	logger        *zap.Logger
	report        io.Writer
}

// NewService validates the configuration and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Manifest == nil || dependencies.Remote == nil || dependencies.Tagger == nil || dependencies.Notifier == nil {
		return nil, ErrCollaboratorMissing
	}
	configuration := dependencies.Configuration.Sanitize()
	if validationError := configuration.Validate(); validationError != nil {
		return nil, validationError
	}
	location, locationError := configuration.OwnerLocation()
	if locationError != nil {
		return nil, locationError
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	report := dependencies.Report
	if report == nil {
		report = io.Discard
	}

	return &Service{
		configuration: configuration,
		location:      location,
		manifest:      dependencies.Manifest,
		remote:        dependencies.Remote,
		tagger:        dependencies.Tagger,
		notifier:      dependencies.Notifier,
		logger:        logger,
		report:        report,
	}, nil
}

// RepositoryURL formats the clone URL of a tracked repository.
func (service *Service) RepositoryURL(repository string) (string, error) {
	remoteURL, formatError := gitrepo.FormatRemoteURL(service.location.Repository(repository))
	if formatError != nil {
		return "", fmt.Errorf(repositoryURLErrorTemplateConstant, repository, formatError)
	}
	return remoteURL, nil
}

// GenerateRepoData builds the repository entries for the target branch.
func (service *Service) GenerateRepoData(executionContext context.Context, includeIntegrationsOnly bool, nextVersion version.Version, targetBranch string) (RepoData, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}
	return GenerateRepoData(service.configuration, service.manifest, includeIntegrationsOnly, nextVersion, targetBranch)
}

// NextReleaseCandidate derives the release candidate to build next. A release branch
// {major}.{minor}.x fixes the line; otherwise the manifest milestone does. The newest
// tag of the line on the project remote is advanced, and a line without tags starts at rc.1.
func (service *Service) NextReleaseCandidate(executionContext context.Context, targetBranch string) (version.Version, error) {
	base, fromBranch := version.ParseReleaseBranch(targetBranch)
	if !fromBranch {
		summary, summaryError := service.manifest.Summary()
		if summaryError != nil {
			return version.Version{}, summaryError
		}
		milestone, parseError := version.ParseStrict(summary.CurrentMilestone)
		if parseError != nil {
			return version.Version{}, fmt.Errorf(invalidMilestoneErrorTemplateConstant, summary.CurrentMilestone, parseError)
		}
		base = milestone.NextFinal()
	}

	projectURL, urlError := service.RepositoryURL(service.configuration.Project)
	if urlError != nil {
		return version.Version{}, urlError
	}
	latest, found, latestError := service.remote.LatestTag(executionContext, projectURL, base.LinePattern())
	if latestError != nil {
		return version.Version{}, latestError
	}

	next := base.WithReleaseCandidate(1)
	if found {
		if latestVersion, ok := version.Parse(latest.Name); ok {
			next = latestVersion.NextReleaseCandidate()
		}
	}
	service.logger.Debug(nextReleaseLogMessageConstant, zap.String(baseLogFieldConstant, base.String()), zap.String(tagLogFieldConstant, next.String()))
	return next, nil
}

// CheckForChanges compares every tracked repository with the tag recorded for the
// last release candidate and reports whether any of them changed. Repositories with
// untagged commits require action: outside warning mode the project itself is
// tagged with the next release candidate, and owners of every other such repository
// receive one batched warning.
func (service *Service) CheckForChanges(executionContext context.Context, targetBranch string, options CheckOptions) (bool, error) {
	nextVersion, nextError := service.NextReleaseCandidate(executionContext, targetBranch)
	if nextError != nil {
		return false, nextError
	}
	entries, dataError := service.GenerateRepoData(executionContext, options.WarningMode, nextVersion, targetBranch)
	if dataError != nil {
		return false, dataError
	}

	changed := false
	actionRequired := make(RepoData, 0)
	for _, entry := range entries {
		entryChanged, entryNeedsAction, checkError := service.checkRepository(executionContext, entry, nextVersion)
		if checkError != nil {
			return false, checkError
		}
		changed = changed || entryChanged
		if entryNeedsAction {
			actionRequired = append(actionRequired, entry)
		}
		service.logger.Debug(
			repositoryCheckedLogMessageConstant,
			zap.String(repositoryLogFieldConstant, entry.Repository),
			zap.String(branchLogFieldConstant, entry.Branch),
			zap.Bool(changedLogFieldConstant, entryChanged),
			zap.Bool(actionLogFieldConstant, entryNeedsAction),
		)
	}

	if len(actionRequired) == 0 {
		return changed, nil
	}
	if actionError := service.actOnUntaggedCommits(executionContext, actionRequired, nextVersion, targetBranch, options); actionError != nil {
		return changed, actionError
	}
	return changed, nil
}

func (service *Service) checkRepository(executionContext context.Context, entry RepoEntry, nextVersion version.Version) (bool, bool, error) {
	remoteURL, urlError := service.RepositoryURL(entry.Repository)
	if urlError != nil {
		return false, false, urlError
	}

	branchTip, tipError := service.remote.LatestCommitOnBranch(executionContext, remoteURL, entry.Branch)
	if tipError != nil {
		return false, false, tipError
	}
	latestTag, latestFound, latestError := service.remote.LatestCandidateTag(executionContext, remoteURL, nextVersion)
	if latestError != nil {
		return false, false, latestError
	}

	if len(entry.PreviousTag) == 0 {
		sinceLabel := lastReleaseLabelConstant
		if latestFound {
			sinceLabel = latestTag.Name
		}
		fmt.Fprintf(service.report, newCommitsReportTemplateConstant, entry.Repository, sinceLabel)
		return true, false, nil
	}

	previousCommit, resolveError := service.remote.ResolveTag(executionContext, remoteURL, entry.PreviousTag)
	if resolveError != nil {
		return false, false, resolveError
	}

	if latestFound && latestTag.Commit != previousCommit {
		fmt.Fprintf(service.report, newTagReportTemplateConstant, entry.Repository, latestTag.Name, entry.PreviousTag)
		return true, false, nil
	}
	if branchTip != previousCommit {
		fmt.Fprintf(service.report, newCommitsReportTemplateConstant, entry.Repository, entry.PreviousTag)
		return true, true, nil
	}
	return false, false, nil
}

func (service *Service) actOnUntaggedCommits(executionContext context.Context, actionRequired RepoData, nextVersion version.Version, targetBranch string, options CheckOptions) error {
	tag := nextVersion.String()
	warnRepositories := make([]string, 0, len(actionRequired))

	for _, entry := range actionRequired {
		if options.WarningMode || entry.Repository != service.configuration.Project {
			warnRepositories = append(warnRepositories, entry.Repository)
			continue
		}
		if options.DryRun {
			service.logger.Info(dryRunTagLogMessageConstant, zap.String(repositoryLogFieldConstant, entry.Repository), zap.String(branchLogFieldConstant, entry.Branch), zap.String(tagLogFieldConstant, tag))
			continue
		}
		projectURL, urlError := service.RepositoryURL(entry.Repository)
		if urlError != nil {
			return urlError
		}
		service.logger.Info(taggingProjectLogMessageConstant, zap.String(repositoryLogFieldConstant, entry.Repository), zap.String(branchLogFieldConstant, entry.Branch), zap.String(tagLogFieldConstant, tag))
		if tagError := service.tagger.TagAndPushRemote(executionContext, projectURL, entry.Branch, tag); tagError != nil {
			return tagError
		}
	}

	if len(warnRepositories) == 0 {
		return nil
	}
	if options.DryRun {
		service.logger.Info(dryRunNotifyLogMessageConstant, zap.Strings(repositoriesLogFieldConstant, warnRepositories), zap.String(tagLogFieldConstant, tag))
		return nil
	}
	service.notifier.WarnNewCommits(executionContext, warnRepositories, tag, targetBranch)
	return nil
}

package gitremote

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/execshell"
)

const (
	cloneSubcommandConstant           = "clone"
	tagSubcommandConstant             = "tag"
	pushSubcommandConstant            = "push"
	fetchSubcommandConstant           = "fetch"
	forEachRefSubcommandConstant      = "for-each-ref"
	branchFlagConstant                = "-b"
	blobFilterFlagConstant            = "--filter=blob:none"
	noCheckoutFlagConstant            = "--no-checkout"
	deleteFlagConstant                = "--delete"
	tagsOptionConstant                = "--tags"
	tagKeywordConstant                = "tag"
	originRemoteConstant              = "origin"
	creationTimeFormatConstant        = "--format=%(refname:short) %(creatordate:unix)"
	temporaryDirectoryPatternConstant = "releasetrain-"
	// DefaultBatchSize is the number of tags pushed per git push invocation.
	DefaultBatchSize = 3

	temporaryDirectoryErrorTemplateConstant = "create temporary clone directory: %w"
	creationTimeParseErrorTemplateConstant  = "parse creation time of %s: %w"
	invalidBatchSizeErrorTemplateConstant   = "batch size must be positive, got %d"
	tagPushedLogMessageConstant             = "Tagged remote branch tip"
	batchPushedLogMessageConstant           = "Pushed tag batch"
	temporaryCleanupLogMessageConstant      = "Unable to remove temporary clone"
	branchLogFieldConstant                  = "branch"
	tagsLogFieldConstant                    = "tags"
	remoteLogFieldConstant                  = "remote"
	directoryLogFieldConstant               = "directory"
)

// TagCreation is a tag with the unix time it was created.
type TagCreation struct {
	Name      string
	CreatedAt int64
}

// Tagger creates and pushes tags, either in a local checkout or in a throwaway blobless clone.
type Tagger struct {
	executor         GitExecutor
	logger           *zap.Logger
	workingDirectory string
	remote           string
}

// TaggerOption customizes a Tagger.
type TaggerOption func(*Tagger)

// WithWorkingDirectory runs local tag operations in the provided checkout.
func WithWorkingDirectory(workingDirectory string) TaggerOption {
	return func(tagger *Tagger) {
		tagger.workingDirectory = workingDirectory
	}
}

// WithRemote selects the remote local tags are pushed to. Defaults to origin.
func WithRemote(remote string) TaggerOption {
	return func(tagger *Tagger) {
		if len(strings.TrimSpace(remote)) > 0 {
			tagger.remote = strings.TrimSpace(remote)
		}
	}
}

// NewTagger constructs a Tagger.
func NewTagger(executor GitExecutor, logger *zap.Logger, options ...TaggerOption) (*Tagger, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tagger := &Tagger{executor: executor, logger: logger, remote: originRemoteConstant}
	for _, option := range options {
		option(tagger)
	}
	return tagger, nil
}

// TagAndPushRemote tags the tip of a remote branch without a working tree: it makes
// a blobless, no-checkout clone into a temporary directory, tags HEAD, pushes the
// tag to origin and removes the clone.
func (tagger *Tagger) TagAndPushRemote(executionContext context.Context, remoteURL string, branch string, tag string) error {
	temporaryDirectory, directoryError := os.MkdirTemp("", temporaryDirectoryPatternConstant)
	if directoryError != nil {
		return fmt.Errorf(temporaryDirectoryErrorTemplateConstant, directoryError)
	}
	defer func() {
		if removeError := os.RemoveAll(temporaryDirectory); removeError != nil {
			tagger.logger.Warn(temporaryCleanupLogMessageConstant, zap.String(directoryLogFieldConstant, temporaryDirectory), zap.Error(removeError))
		}
	}()

	commands := []execshell.CommandDetails{
		{Arguments: []string{cloneSubcommandConstant, branchFlagConstant, branch, blobFilterFlagConstant, noCheckoutFlagConstant, remoteURL, temporaryDirectory}},
		{Arguments: []string{tagSubcommandConstant, tag}, WorkingDirectory: temporaryDirectory},
		{Arguments: []string{pushSubcommandConstant, originRemoteConstant, tagKeywordConstant, tag}, WorkingDirectory: temporaryDirectory},
	}
	for _, details := range commands {
		if _, executionError := tagger.executor.ExecuteGit(executionContext, details); executionError != nil {
			return executionError
		}
	}

	tagger.logger.Info(tagPushedLogMessageConstant, zap.String(urlLogFieldConstant, remoteURL), zap.String(branchLogFieldConstant, branch), zap.String(tagLogFieldConstant, tag))
	return nil
}

// CreateTag creates a lightweight tag at HEAD of the working directory.
func (tagger *Tagger) CreateTag(executionContext context.Context, tag string) error {
	_, executionError := tagger.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{tagSubcommandConstant, tag},
		WorkingDirectory: tagger.workingDirectory,
	})
	return executionError
}

// PushTagsInBatches pushes tags with one git push per batch of batchSize tags.
// Batches that succeeded before a failure stay on the remote.
func (tagger *Tagger) PushTagsInBatches(executionContext context.Context, tags []string, batchSize int) error {
	if batchSize <= 0 {
		return fmt.Errorf(invalidBatchSizeErrorTemplateConstant, batchSize)
	}

	for batchStart := 0; batchStart < len(tags); batchStart += batchSize {
		batchEnd := min(batchStart+batchSize, len(tags))
		batch := tags[batchStart:batchEnd]

		arguments := append([]string{pushSubcommandConstant, tagger.remote}, batch...)
		if _, executionError := tagger.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: tagger.workingDirectory,
		}); executionError != nil {
			return BatchPushError{
				Pushed: append([]string{}, tags[:batchStart]...),
				Failed: append([]string{}, tags[batchStart:]...),
				Err:    executionError,
			}
		}
		tagger.logger.Debug(batchPushedLogMessageConstant, zap.String(remoteLogFieldConstant, tagger.remote), zap.Strings(tagsLogFieldConstant, batch))
	}
	return nil
}

// DeleteRemoteTags removes tags from the remote in a single push.
func (tagger *Tagger) DeleteRemoteTags(executionContext context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	arguments := append([]string{pushSubcommandConstant, tagger.remote, deleteFlagConstant}, tags...)
	_, executionError := tagger.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: tagger.workingDirectory,
	})
	return executionError
}

// FetchTags fetches every tag of the remote into the working directory.
func (tagger *Tagger) FetchTags(executionContext context.Context) error {
	_, executionError := tagger.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{fetchSubcommandConstant, tagger.remote, tagsOptionConstant},
		WorkingDirectory: tagger.workingDirectory,
	})
	return executionError
}

// TagCreationTimes reads the creation time of local tags matching pattern.
func (tagger *Tagger) TagCreationTimes(executionContext context.Context, pattern string) ([]TagCreation, error) {
	result, executionError := tagger.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{forEachRefSubcommandConstant, creationTimeFormatConstant, tagsReferencePrefixConstant + pattern},
		WorkingDirectory: tagger.workingDirectory,
	})
	if executionError != nil {
		return nil, executionError
	}

	creations := make([]TagCreation, 0)
	for _, line := range trimmedLines(result.StandardOutput) {
		name, createdAtText, found := strings.Cut(line, " ")
		if !found {
			continue
		}
		createdAt, parseError := strconv.ParseInt(strings.TrimSpace(createdAtText), 10, 64)
		if parseError != nil {
			return nil, fmt.Errorf(creationTimeParseErrorTemplateConstant, name, parseError)
		}
		creations = append(creations, TagCreation{Name: name, CreatedAt: createdAt})
	}
	return creations, nil
}

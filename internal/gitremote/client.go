package gitremote

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/execshell"
	"github.com/temirov/releasetrain/internal/version"
)

const (
	lsRemoteSubcommandConstant  = "ls-remote"
	headsFlagConstant           = "-h"
	tagsFlagConstant            = "-t"
	latestTagLogMessageConstant = "Selected latest tag"
	urlLogFieldConstant         = "url"
	patternLogFieldConstant     = "pattern"
	tagLogFieldConstant         = "tag"
	commitLogFieldConstant      = "commit"
)

// ErrExecutorNotConfigured indicates a client or tagger was constructed without a git executor.
var ErrExecutorNotConfigured = errors.New("git executor not configured")

// GitExecutor runs git commands. execshell.ShellExecutor satisfies it.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client queries remote repositories without cloning them.
type Client struct {
	executor GitExecutor
	logger   *zap.Logger
}

// NewClient constructs a Client.
func NewClient(executor GitExecutor, logger *zap.Logger) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{executor: executor, logger: logger}, nil
}

// ListReferences runs git ls-remote for heads or tags matching pattern.
func (client *Client) ListReferences(executionContext context.Context, remoteURL string, kind ReferenceKind, pattern string) ([]Reference, error) {
	kindFlag := tagsFlagConstant
	operation := OperationListTags
	if kind == ReferenceKindHeads {
		kindFlag = headsFlagConstant
		operation = OperationListHeads
	}

	arguments := []string{lsRemoteSubcommandConstant, kindFlag, remoteURL}
	if len(pattern) > 0 {
		arguments = append(arguments, pattern)
	}

	result, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: arguments})
	if executionError != nil {
		return nil, RemoteQueryError{URL: remoteURL, Operation: operation, Err: executionError}
	}
	return ParseReferences(result.StandardOutput), nil
}

// LatestCommitOnBranch returns the commit at the tip of the branch.
func (client *Client) LatestCommitOnBranch(executionContext context.Context, remoteURL string, branch string) (string, error) {
	references, listError := client.ListReferences(executionContext, remoteURL, ReferenceKindHeads, headsReferencePrefixConstant+branch)
	if listError != nil {
		return "", listError
	}
	if len(references) == 0 {
		return "", BranchNotFoundError{URL: remoteURL, Branch: branch}
	}
	return references[0].Commit, nil
}

// LatestTag returns the newest tag matching the glob. Version-named tags are ordered
// by version; when none of the names is a version the last listed tag is returned.
// The boolean is false when nothing matches.
func (client *Client) LatestTag(executionContext context.Context, remoteURL string, glob string) (TagRecord, bool, error) {
	references, listError := client.ListReferences(executionContext, remoteURL, ReferenceKindTags, glob)
	if listError != nil {
		return TagRecord{}, false, listError
	}
	if len(references) == 0 {
		return TagRecord{}, false, nil
	}

	records := collapseTags(references)
	latest, found := newestVersionTag(records, nil)
	if !found {
		lastListedName := references[len(references)-1].Name
		for _, record := range records {
			if record.Name == lastListedName {
				latest = record
			}
		}
	}

	client.logger.Debug(
		latestTagLogMessageConstant,
		zap.String(urlLogFieldConstant, remoteURL),
		zap.String(patternLogFieldConstant, glob),
		zap.String(tagLogFieldConstant, latest.Name),
		zap.String(commitLogFieldConstant, latest.Commit),
	)
	return latest, true, nil
}

// LatestCandidateTag returns the newest tag of the release, its release candidates
// included. Tags sharing the glob prefix but naming another patch, such as 7.55.10
// for 7.55.1, are ignored. The boolean is false when nothing matches.
func (client *Client) LatestCandidateTag(executionContext context.Context, remoteURL string, release version.Version) (TagRecord, bool, error) {
	references, listError := client.ListReferences(executionContext, remoteURL, ReferenceKindTags, release.TagPattern())
	if listError != nil {
		return TagRecord{}, false, listError
	}

	latest, found := newestVersionTag(collapseTags(references), release.SameRelease)
	if found {
		client.logger.Debug(
			latestTagLogMessageConstant,
			zap.String(urlLogFieldConstant, remoteURL),
			zap.String(patternLogFieldConstant, release.TagPattern()),
			zap.String(tagLogFieldConstant, latest.Name),
			zap.String(commitLogFieldConstant, latest.Commit),
		)
	}
	return latest, found, nil
}

// ResolveTag returns the commit a tag points at, dereferencing annotated tags.
func (client *Client) ResolveTag(executionContext context.Context, remoteURL string, tag string) (string, error) {
	references, listError := client.ListReferences(executionContext, remoteURL, ReferenceKindTags, tagsReferencePrefixConstant+tag)
	if listError != nil {
		return "", listError
	}

	var exactMatches []Reference
	for _, reference := range references {
		if reference.Name == tag {
			exactMatches = append(exactMatches, reference)
		}
	}
	records := collapseTags(exactMatches)
	if len(records) == 0 {
		return "", TagNotFoundError{URL: remoteURL, Tag: tag}
	}
	return records[0].Commit, nil
}

// QualificationTags lists qualification-{timestamp} tags, newest first.
func (client *Client) QualificationTags(executionContext context.Context, remoteURL string) ([]TagRecord, error) {
	references, listError := client.ListReferences(executionContext, remoteURL, ReferenceKindTags, version.QualificationTagPatternConstant)
	if listError != nil {
		return nil, listError
	}
	return sortQualificationRecords(collapseTags(references)), nil
}

func newestVersionTag(records []TagRecord, accept func(version.Version) bool) (TagRecord, bool) {
	var newest TagRecord
	var newestVersion version.Version
	found := false
	for _, record := range records {
		tagName := version.ParseTagName(record.Name)
		if !tagName.IsVersion() {
			continue
		}
		if accept != nil && !accept(tagName.Version) {
			continue
		}
		if !found || newestVersion.Less(tagName.Version) {
			newest = record
			newestVersion = tagName.Version
			found = true
		}
	}
	return newest, found
}

func sortQualificationRecords(records []TagRecord) []TagRecord {
	commitsByName := make(map[string]string, len(records))
	tagNames := make([]version.TagName, 0, len(records))
	for _, record := range records {
		commitsByName[record.Name] = record.Commit
		tagNames = append(tagNames, version.ParseTagName(record.Name))
	}

	sortedNames := version.SortQualificationTags(tagNames)
	sortedRecords := make([]TagRecord, 0, len(sortedNames))
	for _, tagName := range sortedNames {
		sortedRecords = append(sortedRecords, TagRecord{Commit: commitsByName[tagName.Raw], Name: tagName.Raw})
	}
	return sortedRecords
}

func trimmedLines(output string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(output, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) > 0 {
			lines = append(lines, trimmedLine)
		}
	}
	return lines
}

package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/version"
)

const (
	tagsPerPageConstant                 = 100
	pathSeparatorConstant               = "/"
	invalidBaseURLTemplateConstant      = "invalid GitHub API base url %q: %w"
	tagListingErrorTemplateConstant     = "list tags for %s/%s: %v"
	highestVersionErrorTemplateConstant = "highest version for %s/%s: %w"
	tagPageFetchedLogMessageConstant    = "Fetched GitHub tag page"
	ownerLogFieldConstant               = "owner"
	repositoryLogFieldConstant          = "repository"
	pageLogFieldConstant                = "page"
	tagCountLogFieldConstant            = "tags"
)

// TagListingError reports a failed GitHub tag listing.
type TagListingError struct {
	Owner      string
	Repository string
	Err        error
}

// Error describes the failed listing.
func (listingError TagListingError) Error() string {
	return fmt.Sprintf(tagListingErrorTemplateConstant, listingError.Owner, listingError.Repository, listingError.Err)
}

// Unwrap exposes the API failure.
func (listingError TagListingError) Unwrap() error {
	return listingError.Err
}

// NewClient constructs a GitHub REST client. An empty token means anonymous access;
// a non-empty baseURL points the client at a GitHub Enterprise or test server.
func NewClient(httpClient *http.Client, token string, baseURL string) (*github.Client, error) {
	client := github.NewClient(httpClient)
	if len(strings.TrimSpace(token)) > 0 {
		client = client.WithAuthToken(strings.TrimSpace(token))
	}

	trimmedBaseURL := strings.TrimSpace(baseURL)
	if len(trimmedBaseURL) == 0 {
		return client, nil
	}
	if !strings.HasSuffix(trimmedBaseURL, pathSeparatorConstant) {
		trimmedBaseURL += pathSeparatorConstant
	}
	parsedBaseURL, parseError := url.Parse(trimmedBaseURL)
	if parseError != nil {
		return nil, fmt.Errorf(invalidBaseURLTemplateConstant, baseURL, parseError)
	}
	client.BaseURL = parsedBaseURL
	return client, nil
}

// TagSource lists repository tags through the GitHub REST API.
type TagSource struct {
	client *github.Client
	logger *zap.Logger
}

// NewTagSource wraps a GitHub client.
func NewTagSource(client *github.Client, logger *zap.Logger) *TagSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TagSource{client: client, logger: logger}
}

// ListTagNames returns every tag name of owner/repository, following pagination.
func (source *TagSource) ListTagNames(executionContext context.Context, owner string, repository string) ([]string, error) {
	listOptions := &github.ListOptions{PerPage: tagsPerPageConstant}
	tagNames := make([]string, 0, tagsPerPageConstant)

	for {
		tags, response, listError := source.client.Repositories.ListTags(executionContext, owner, repository, listOptions)
		if listError != nil {
			return nil, TagListingError{Owner: owner, Repository: repository, Err: listError}
		}
		for _, tag := range tags {
			tagNames = append(tagNames, tag.GetName())
		}
		source.logger.Debug(
			tagPageFetchedLogMessageConstant,
			zap.String(ownerLogFieldConstant, owner),
			zap.String(repositoryLogFieldConstant, repository),
			zap.Int(pageLogFieldConstant, listOptions.Page),
			zap.Int(tagCountLogFieldConstant, len(tags)),
		)
		if response == nil || response.NextPage == 0 {
			break
		}
		listOptions.Page = response.NextPage
	}
	return tagNames, nil
}

// HighestVersion returns the greatest version tag of owner/repository for the minor
// release line across the compatible majors, preferring majors in the given order.
func (source *TagSource) HighestVersion(executionContext context.Context, owner string, repository string, compatibleMajors []int, minor int) (version.Version, error) {
	tagNames, listError := source.ListTagNames(executionContext, owner, repository)
	if listError != nil {
		return version.Version{}, listError
	}
	highest, highestError := version.HighestVersion(tagNames, compatibleMajors, minor)
	if highestError != nil {
		return version.Version{}, fmt.Errorf(highestVersionErrorTemplateConstant, owner, repository, highestError)
	}
	return highest, nil
}

package githubauth

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/releasetrain/internal/credentials"
)

// Environment variable names consulted when no token source is configured.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// ResolveToken returns the GitHub token for API calls. A configured source wins;
// otherwise the first non-empty variable in tokenPreference is used. An empty
// token with a nil error means anonymous access.
func ResolveToken(resolutionContext context.Context, resolver credentials.Resolver, configuredSource string) (string, error) {
	if len(strings.TrimSpace(configuredSource)) > 0 {
		source, parseError := credentials.ParseSource(configuredSource)
		if parseError != nil {
			return "", parseError
		}
		return resolver.Resolve(resolutionContext, source)
	}

	for _, key := range tokenPreference {
		token, resolveError := resolver.Resolve(resolutionContext, credentials.Source{Type: credentials.SourceTypeEnvironment, Reference: key})
		if resolveError == nil {
			return token, nil
		}
		if !errors.Is(resolveError, credentials.ErrTokenUnavailable) {
			return "", resolveError
		}
	}
	return "", nil
}

package githubauth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/releasetrain/internal/credentials"
	"github.com/temirov/releasetrain/internal/githubauth"
)

func TestResolveToken(testInstance *testing.T) {
	testCases := []struct {
		name             string
		environment      map[string]string
		configuredSource string
		expectedToken    string
		expectError      bool
	}{
		{name: "anonymous", environment: map[string]string{}, expectedToken: ""},
		{name: "gh_token_preferred", environment: map[string]string{githubauth.EnvGitHubToken: "second", githubauth.EnvGitHubCLIToken: "first"}, expectedToken: "first"},
		{name: "blank_values_skipped", environment: map[string]string{githubauth.EnvGitHubCLIToken: " ", githubauth.EnvGitHubAPIToken: "third"}, expectedToken: "third"},
		{name: "configured_source_wins", environment: map[string]string{githubauth.EnvGitHubCLIToken: "first", "RELEASE_TOKEN": "configured"}, configuredSource: "env:RELEASE_TOKEN", expectedToken: "configured"},
		{name: "configured_source_missing", environment: map[string]string{githubauth.EnvGitHubCLIToken: "first"}, configuredSource: "env:RELEASE_TOKEN", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver := credentials.NewResolver(func(key string) (string, bool) {
				value, found := testCase.environment[key]
				return value, found
			}, nil)

			token, resolveError := githubauth.ResolveToken(context.Background(), resolver, testCase.configuredSource)
			if testCase.expectError {
				require.Error(testInstance, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedToken, token)
		})
	}
}

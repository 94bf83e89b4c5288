package githubapi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/releasetrain/internal/credentials"
	"github.com/temirov/releasetrain/internal/githubapi"
)

func TestNewConfiguredTagSource(testInstance *testing.T) {
	var authorization string
	server := newPagedTagServer(testInstance, [][]string{{"7.55.0"}}, &authorization)
	resolver := credentials.NewResolver(func(key string) (string, bool) {
		if key == "RELEASE_TOKEN" {
			return testTokenConstant, true
		}
		return "", false
	}, nil)

	source, sourceError := githubapi.NewConfiguredTagSource(
		context.Background(),
		githubapi.Configuration{TokenSource: " env:RELEASE_TOKEN ", BaseURL: " " + server.URL + " "},
		resolver,
		server.Client(),
		nil,
	)
	require.NoError(testInstance, sourceError)

	tagNames, listError := source.ListTagNames(context.Background(), testOwnerConstant, testRepositoryConstant)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"7.55.0"}, tagNames)
	require.Equal(testInstance, "Bearer "+testTokenConstant, authorization)
}

func TestNewConfiguredTagSourceMissingToken(testInstance *testing.T) {
	resolver := credentials.NewResolver(func(string) (string, bool) { return "", false }, nil)

	_, sourceError := githubapi.NewConfiguredTagSource(context.Background(), githubapi.Configuration{TokenSource: "env:RELEASE_TOKEN"}, resolver, nil, nil)
	require.ErrorIs(testInstance, sourceError, credentials.ErrTokenUnavailable)
}

package githubapi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/credentials"
	"github.com/temirov/releasetrain/internal/githubauth"
)

// Configuration selects the GitHub API endpoint and token.
type Configuration struct {
	TokenSource string `mapstructure:"token_source"`
	BaseURL     string `mapstructure:"base_url"`
}

// Sanitize trims configured values.
func (configuration Configuration) Sanitize() Configuration {
	return Configuration{
		TokenSource: strings.TrimSpace(configuration.TokenSource),
		BaseURL:     strings.TrimSpace(configuration.BaseURL),
	}
}

// NewConfiguredTagSource resolves the token and constructs a TagSource for the configured endpoint.
func NewConfiguredTagSource(executionContext context.Context, configuration Configuration, resolver credentials.Resolver, httpClient *http.Client, logger *zap.Logger) (*TagSource, error) {
	sanitized := configuration.Sanitize()
	if resolver == nil {
		resolver = credentials.NewResolver(nil, nil)
	}
	token, tokenError := githubauth.ResolveToken(executionContext, resolver, sanitized.TokenSource)
	if tokenError != nil {
		return nil, tokenError
	}
	client, clientError := NewClient(httpClient, token, sanitized.BaseURL)
	if clientError != nil {
		return nil, clientError
	}
	return NewTagSource(client, logger), nil
}

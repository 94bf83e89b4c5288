// Package dependencies supplies production defaults for collaborators that commands
// accept as optional overrides.
package dependencies

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/credentials"
	"github.com/temirov/releasetrain/internal/execshell"
	"github.com/temirov/releasetrain/internal/gitremote"
	"github.com/temirov/releasetrain/internal/ui"
)

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable logging adds console lifecycle messages for every git invocation.
func ResolveGitExecutor(existing gitremote.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (gitremote.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	runner := execshell.NewOSCommandRunner()
	var shellExecutor *execshell.ShellExecutor
	var creationError error
	if humanReadableLogging {
		shellExecutor, creationError = execshell.NewObservedShellExecutor(logger, runner, ui.NewConsoleCommandEventLogger(logger))
	} else {
		shellExecutor, creationError = execshell.NewShellExecutor(logger, runner)
	}
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveCredentialResolver returns the provided resolver or one backed by the process environment and filesystem.
func ResolveCredentialResolver(existing credentials.Resolver) credentials.Resolver {
	if existing != nil {
		return existing
	}
	return credentials.NewResolver(nil, nil)
}

// ResolveHTTPClient returns the provided client or http.DefaultClient.
func ResolveHTTPClient(existing *http.Client) *http.Client {
	if existing != nil {
		return existing
	}
	return http.DefaultClient
}

package train

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/credentials"
	"github.com/temirov/releasetrain/internal/dependencies"
	"github.com/temirov/releasetrain/internal/githubapi"
	"github.com/temirov/releasetrain/internal/gitremote"
	"github.com/temirov/releasetrain/internal/manifest"
	"github.com/temirov/releasetrain/internal/notify"
	"github.com/temirov/releasetrain/internal/utils"
	"github.com/temirov/releasetrain/internal/utils/flags"
	pathutils "github.com/temirov/releasetrain/internal/utils/path"
	"github.com/temirov/releasetrain/internal/version"
)

const (
	releaseBranchFlagUsageConstant        = "Branch the release is built from (main or {major}.{minor}.x)"
	verdictTrueConstant                   = "true"
	verdictFalseConstant                  = "false"
	workingDirectoryErrorTemplateConstant = "determine working directory: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the settings the release train commands read.
type ConfigurationProvider func() CommandConfiguration

// CommandConfiguration bundles the configuration sections used by the release train commands.
type CommandConfiguration struct {
	Train         Configuration
	Notifications notify.Configuration
	GitHub        githubapi.Configuration
}

// ServiceResolver constructs the release train service for a command invocation.
type ServiceResolver interface {
	Resolve(logger *zap.Logger, configuration CommandConfiguration, report io.Writer) (*Service, error)
}

// VersionSource finds the highest compatible version tag of a repository.
type VersionSource interface {
	HighestVersion(executionContext context.Context, owner string, repository string, compatibleMajors []int, minor int) (version.Version, error)
}

// VersionSourceResolver constructs the version source for a command invocation.
type VersionSourceResolver interface {
	Resolve(executionContext context.Context, logger *zap.Logger, configuration CommandConfiguration) (VersionSource, error)
}

// ManifestLoader opens the release manifest named by the configuration.
type ManifestLoader interface {
	Load(configuration Configuration) (*manifest.Manifest, error)
}

// CommandDependencies carries the providers shared by the release train command builders.
type CommandDependencies struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	ServiceResolver              ServiceResolver
	VersionSourceResolver        VersionSourceResolver
	ManifestLoader               ManifestLoader
}

func (commandDependencies CommandDependencies) resolveLogger() *zap.Logger {
	if commandDependencies.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := commandDependencies.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (commandDependencies CommandDependencies) resolveConfiguration() CommandConfiguration {
	configuration := CommandConfiguration{
		Train:         DefaultConfiguration(),
		Notifications: notify.DefaultConfiguration(),
	}
	if commandDependencies.ConfigurationProvider != nil {
		configuration = commandDependencies.ConfigurationProvider()
	}
	configuration.Train = configuration.Train.Sanitize()
	configuration.Notifications = configuration.Notifications.Sanitize()
	configuration.GitHub = configuration.GitHub.Sanitize()
	return configuration
}

func (commandDependencies CommandDependencies) resolveService(logger *zap.Logger, configuration CommandConfiguration, report io.Writer) (*Service, error) {
	if commandDependencies.ServiceResolver != nil {
		return commandDependencies.ServiceResolver.Resolve(logger, configuration, report)
	}
	humanReadableLogging := false
	if commandDependencies.HumanReadableLoggingProvider != nil {
		humanReadableLogging = commandDependencies.HumanReadableLoggingProvider()
	}
	defaultResolver := &DefaultServiceResolver{HumanReadableLogging: humanReadableLogging, ManifestLoader: commandDependencies.ManifestLoader}
	return defaultResolver.Resolve(logger, configuration, report)
}

func (commandDependencies CommandDependencies) resolveVersionSource(executionContext context.Context, logger *zap.Logger, configuration CommandConfiguration) (VersionSource, error) {
	if commandDependencies.VersionSourceResolver != nil {
		return commandDependencies.VersionSourceResolver.Resolve(executionContext, logger, configuration)
	}
	return (&DefaultVersionSourceResolver{}).Resolve(executionContext, logger, configuration)
}

func (commandDependencies CommandDependencies) loadManifest(configuration Configuration) (*manifest.Manifest, error) {
	if commandDependencies.ManifestLoader != nil {
		return commandDependencies.ManifestLoader.Load(configuration)
	}
	return (&FileManifestLoader{}).Load(configuration)
}

// FileManifestLoader reads the manifest from disk. Relative paths are anchored at
// WorkingDirectory, or the process working directory when it is empty.
type FileManifestLoader struct {
	WorkingDirectory string
}

// Load reads the configured manifest.
func (loader *FileManifestLoader) Load(configuration Configuration) (*manifest.Manifest, error) {
	baseDirectory := loader.WorkingDirectory
	if len(baseDirectory) == 0 {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return nil, fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
		}
		baseDirectory = workingDirectory
	}
	manifestPath := pathutils.NewHomeExpander().Resolve(configuration.ManifestPath, baseDirectory)
	return manifest.Load(manifestPath)
}

// DefaultServiceResolver wires the service to git, Slack and the manifest on disk.
type DefaultServiceResolver struct {
	Executor             gitremote.GitExecutor
	CredentialResolver   credentials.Resolver
	HTTPClient           *http.Client
	ManifestLoader       ManifestLoader
	HumanReadableLogging bool
}

// Resolve builds a Service for the configuration.
func (resolver *DefaultServiceResolver) Resolve(logger *zap.Logger, configuration CommandConfiguration, report io.Writer) (*Service, error) {
	executor, executorError := dependencies.ResolveGitExecutor(resolver.Executor, logger, resolver.HumanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}
	remoteClient, clientError := gitremote.NewClient(executor, logger)
	if clientError != nil {
		return nil, clientError
	}
	tagger, taggerError := gitremote.NewTagger(executor, logger)
	if taggerError != nil {
		return nil, taggerError
	}

	manifestLoader := resolver.ManifestLoader
	if manifestLoader == nil {
		manifestLoader = &FileManifestLoader{}
	}
	releaseManifest, manifestError := manifestLoader.Load(configuration.Train)
	if manifestError != nil {
		return nil, manifestError
	}

	location, locationError := configuration.Train.OwnerLocation()
	if locationError != nil {
		return nil, locationError
	}
	notifier := notify.NewSlackNotifier(
		configuration.Notifications,
		location,
		dependencies.ResolveCredentialResolver(resolver.CredentialResolver),
		dependencies.ResolveHTTPClient(resolver.HTTPClient),
		logger,
	)

	return NewService(ServiceDependencies{
		Configuration: configuration.Train,
		Manifest:      releaseManifest,
		Remote:        remoteClient,
		Tagger:        tagger,
		Notifier:      notifier,
		Logger:        logger,
		Report:        report,
	})
}

// DefaultVersionSourceResolver lists tags through the GitHub REST API.
type DefaultVersionSourceResolver struct {
	CredentialResolver credentials.Resolver
	HTTPClient         *http.Client
}

// Resolve builds a GitHub tag source for the configuration.
func (resolver *DefaultVersionSourceResolver) Resolve(executionContext context.Context, logger *zap.Logger, configuration CommandConfiguration) (VersionSource, error) {
	return githubapi.NewConfiguredTagSource(
		executionContext,
		configuration.GitHub,
		dependencies.ResolveCredentialResolver(resolver.CredentialResolver),
		dependencies.ResolveHTTPClient(resolver.HTTPClient),
		logger,
	)
}

func bindReleaseBranchFlag(command *cobra.Command) *flags.BranchFlagValues {
	return flags.BindBranchFlags(command, flags.BranchFlagValues{}, flags.BranchFlagDefinition{
		Name:    flags.ReleaseBranchFlagName,
		Usage:   releaseBranchFlagUsageConstant,
		Enabled: true,
	})
}

func selectBranch(flagValues *flags.BranchFlagValues, configuration Configuration) string {
	if flagValues == nil {
		return configuration.DefaultBranch
	}
	return selectValue(flagValues.Name, configuration.DefaultBranch)
}

func outputWriters(command *cobra.Command) (io.Writer, io.Writer) {
	return utils.NewFlushingWriter(command.OutOrStdout()), utils.NewFlushingWriter(command.ErrOrStderr())
}

func formatVerdict(value bool) string {
	if value {
		return verdictTrueConstant
	}
	return verdictFalseConstant
}

func trimmedArguments(arguments []string) []string {
	trimmed := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if value := strings.TrimSpace(argument); len(value) > 0 {
			trimmed = append(trimmed, value)
		}
	}
	return trimmed
}

package qualification

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/dependencies"
	"github.com/temirov/releasetrain/internal/gitremote"
	"github.com/temirov/releasetrain/internal/gitrepo"
	"github.com/temirov/releasetrain/internal/train"
	"github.com/temirov/releasetrain/internal/utils"
	"github.com/temirov/releasetrain/internal/utils/flags"
	pathutils "github.com/temirov/releasetrain/internal/utils/path"
)

const (
	remoteFlagUsageConstant         = "Remote that receives release tags"
	projectURLErrorTemplateConstant = "resolve url of %s: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the settings the qualification commands read.
type ConfigurationProvider func() CommandConfiguration

// CommandConfiguration bundles the configuration sections used by the qualification commands.
type CommandConfiguration struct {
	Train         train.Configuration
	Qualification Configuration
}

// ServiceResolver constructs the qualification service for a command invocation.
type ServiceResolver interface {
	Resolve(logger *zap.Logger, configuration CommandConfiguration) (*Service, error)
}

// CommandDependencies carries the providers shared by the qualification command builders.
type CommandDependencies struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	ServiceResolver              ServiceResolver
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
		Train:         train.DefaultConfiguration(),
		Qualification: DefaultConfiguration(),
	}
	if commandDependencies.ConfigurationProvider != nil {
		configuration = commandDependencies.ConfigurationProvider()
	}
	configuration.Train = configuration.Train.Sanitize()
	configuration.Qualification = configuration.Qualification.Sanitize()
	return configuration
}

func (commandDependencies CommandDependencies) resolveService(logger *zap.Logger, configuration CommandConfiguration) (*Service, error) {
	if commandDependencies.ServiceResolver != nil {
		return commandDependencies.ServiceResolver.Resolve(logger, configuration)
	}
	humanReadableLogging := false
	if commandDependencies.HumanReadableLoggingProvider != nil {
		humanReadableLogging = commandDependencies.HumanReadableLoggingProvider()
	}
	return (&DefaultServiceResolver{HumanReadableLogging: humanReadableLogging}).Resolve(logger, configuration)
}

// DefaultServiceResolver wires the service to git in the project checkout.
type DefaultServiceResolver struct {
	Executor             gitremote.GitExecutor
	Clock                Clock
	HumanReadableLogging bool
}

// Resolve builds a Service for the configuration.
func (resolver *DefaultServiceResolver) Resolve(logger *zap.Logger, configuration CommandConfiguration) (*Service, error) {
	executor, executorError := dependencies.ResolveGitExecutor(resolver.Executor, logger, resolver.HumanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}
	remoteClient, clientError := gitremote.NewClient(executor, logger)
	if clientError != nil {
		return nil, clientError
	}

	taggerOptions := []gitremote.TaggerOption{gitremote.WithRemote(configuration.Qualification.Remote)}
	if workingDirectory := configuration.Qualification.WorkingDirectory; len(workingDirectory) > 0 {
		taggerOptions = append(taggerOptions, gitremote.WithWorkingDirectory(pathutils.NewHomeExpander().Expand(workingDirectory)))
	}
	tagger, taggerError := gitremote.NewTagger(executor, logger, taggerOptions...)
	if taggerError != nil {
		return nil, taggerError
	}

	projectURL, urlError := ProjectURL(configuration.Train)
	if urlError != nil {
		return nil, urlError
	}

	return NewService(ServiceDependencies{
		Configuration: configuration.Qualification,
		ProjectURL:    projectURL,
		Remote:        remoteClient,
		Tagger:        tagger,
		Clock:         resolver.Clock,
		Logger:        logger,
	})
}

// ProjectURL formats the clone URL of the train's project.
func ProjectURL(configuration train.Configuration) (string, error) {
	location, locationError := configuration.OwnerLocation()
	if locationError != nil {
		return "", locationError
	}
	projectURL, formatError := gitrepo.FormatRemoteURL(location.Repository(configuration.Project))
	if formatError != nil {
		return "", fmt.Errorf(projectURLErrorTemplateConstant, configuration.Project, formatError)
	}
	return projectURL, nil
}

func applyRemoteOverride(command *cobra.Command, configuration CommandConfiguration) (CommandConfiguration, error) {
	if command == nil || !command.Flags().Changed(flags.RemoteFlagName) {
		return configuration, nil
	}
	remote, flagError := command.Flags().GetString(flags.RemoteFlagName)
	if flagError != nil {
		return configuration, flagError
	}
	if trimmed := strings.TrimSpace(remote); len(trimmed) > 0 {
		configuration.Qualification.Remote = trimmed
	}
	return configuration, nil
}

func outputWriter(command *cobra.Command) io.Writer {
	return utils.NewFlushingWriter(command.OutOrStdout())
}

package utils

import (
	"context"

	"go.uber.org/zap"
)

const configurationFileLogFieldConstant = "configuration_file"

type configurationFilePathKey struct{}

// CommandContextAccessor stores invocation values on command contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records the configuration file the invocation loaded.
func (CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathKey{}, configurationFilePath)
}

// ConfigurationFilePath returns the recorded configuration file, if any.
func (CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, found := executionContext.Value(configurationFilePathKey{}).(string)
	return configurationFilePath, found
}

// ConfigurationFileField returns the recorded configuration file as a log field.
// An invocation running on embedded defaults reports an empty path.
func (accessor CommandContextAccessor) ConfigurationFileField(executionContext context.Context) zap.Field {
	configurationFilePath, _ := accessor.ConfigurationFilePath(executionContext)
	return zap.String(configurationFileLogFieldConstant, configurationFilePath)
}

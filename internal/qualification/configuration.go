package qualification

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/releasetrain/internal/gitremote"
)

const (
	defaultRemoteConstant            = "origin"
	rootModulePathConstant           = "."
	defaultModuleTagPrefixConstant   = "v"
	modulePathSeparatorConstant      = "/"
	invalidBatchSizeTemplateConstant = "qualification batch size must be positive, got %d"
)

// ErrEmptyModulePath indicates a configured module without a path.
var ErrEmptyModulePath = errors.New("qualification module path must not be empty")

// Configuration describes how release tags are created and pushed.
type Configuration struct {
	Remote           string                `mapstructure:"remote"`
	BatchSize        int                   `mapstructure:"batch_size"`
	WorkingDirectory string                `mapstructure:"working_directory"`
	Modules          []ModuleConfiguration `mapstructure:"modules"`
}

// ModuleConfiguration names a Go module of the project that receives release tags.
type ModuleConfiguration struct {
	Path      string `mapstructure:"path"`
	TagPrefix string `mapstructure:"tag_prefix"`
}

// DefaultConfiguration tags only the root module and pushes to origin.
func DefaultConfiguration() Configuration {
	return Configuration{
		Remote:    defaultRemoteConstant,
		BatchSize: gitremote.DefaultBatchSize,
		Modules:   []ModuleConfiguration{{Path: rootModulePathConstant}},
	}
}

// Sanitize trims values and fills defaults.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Remote = strings.TrimSpace(sanitized.Remote)
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = defaultRemoteConstant
	}
	if sanitized.BatchSize == 0 {
		sanitized.BatchSize = gitremote.DefaultBatchSize
	}
	sanitized.WorkingDirectory = strings.TrimSpace(sanitized.WorkingDirectory)

	modules := make([]ModuleConfiguration, 0, len(configuration.Modules))
	for _, module := range configuration.Modules {
		modules = append(modules, ModuleConfiguration{
			Path:      strings.TrimSuffix(strings.TrimSpace(module.Path), modulePathSeparatorConstant),
			TagPrefix: strings.TrimSpace(module.TagPrefix),
		})
	}
	if len(modules) == 0 {
		modules = []ModuleConfiguration{{Path: rootModulePathConstant}}
	}
	sanitized.Modules = modules
	return sanitized
}

// Validate reports settings that cannot produce tags.
func (configuration Configuration) Validate() error {
	if configuration.BatchSize <= 0 {
		return fmt.Errorf(invalidBatchSizeTemplateConstant, configuration.BatchSize)
	}
	for _, module := range configuration.Modules {
		if len(module.Path) == 0 {
			return ErrEmptyModulePath
		}
	}
	return nil
}

// IsRoot reports whether the module is the repository root.
func (module ModuleConfiguration) IsRoot() bool {
	return module.Path == rootModulePathConstant
}

// TagName formats the tag the module receives for a bare version string.
func (module ModuleConfiguration) TagName(bareVersion string) string {
	if module.IsRoot() {
		return bareVersion
	}
	prefix := module.TagPrefix
	if len(prefix) == 0 {
		prefix = defaultModuleTagPrefixConstant
	}
	return module.Path + modulePathSeparatorConstant + prefix + bareVersion
}

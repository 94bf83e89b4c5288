package manifest

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	windowsKeyPrefixConstant        = "WINDOWS_"
	windowsOperatingSystemConstant  = "windows"
	ignoredKeyNoteTemplateConstant  = "Ignoring %q on %s"
	overrideNoteTemplateConstant    = "Overriding %q: %q -> %q"
	environmentPairTemplateConstant = "%s=%s"
)

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// EnvironmentVariable is one NAME=value pair for build processes.
type EnvironmentVariable struct {
	Name  string
	Value string
}

// String renders the pair as NAME=value.
func (variable EnvironmentVariable) String() string {
	return fmt.Sprintf(environmentPairTemplateConstant, variable.Name, variable.Value)
}

// DependencyEnvironment is the effective dependency environment and the notes explaining
// skipped and overridden keys.
type DependencyEnvironment struct {
	Variables []EnvironmentVariable
	Notes     []string
}

// DependenciesEnv turns a manifest section into environment variables in document order.
// WINDOWS_* keys are skipped unless goos is windows, non-empty process variables
// override manifest values, and every value is rendered as a string.
func (manifest *Manifest) DependenciesEnv(section string, goos string, lookup EnvironmentLookup) (DependencyEnvironment, error) {
	sectionResult, sectionError := manifest.Value(section)
	if sectionError != nil {
		return DependencyEnvironment{}, sectionError
	}
	if !sectionResult.IsObject() {
		return DependencyEnvironment{}, NotObjectError{Key: section}
	}

	environment := DependencyEnvironment{}
	sectionResult.ForEach(func(keyResult, valueResult gjson.Result) bool {
		key := keyResult.String()
		value := valueResult.String()

		if strings.HasPrefix(key, windowsKeyPrefixConstant) && goos != windowsOperatingSystemConstant {
			environment.Notes = append(environment.Notes, fmt.Sprintf(ignoredKeyNoteTemplateConstant, key, goos))
			return true
		}
		if lookup != nil {
			if override, found := lookup(key); found && len(override) > 0 {
				environment.Notes = append(environment.Notes, fmt.Sprintf(overrideNoteTemplateConstant, key, value, override))
				value = override
			}
		}
		environment.Variables = append(environment.Variables, EnvironmentVariable{Name: key, Value: value})
		return true
	})
	return environment, nil
}

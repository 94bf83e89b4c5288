package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/releasetrain/internal/manifest"
)

func TestDependenciesEnv(testInstance *testing.T) {
	testCases := []struct {
		name              string
		goos              string
		overrides         map[string]string
		expectedVariables []string
		expectedNotes     []string
	}{
		{
			name: "linux_skips_windows_keys",
			goos: "linux",
			expectedVariables: []string{
				"DATADOG_AGENT_VERSION=7.55.0-rc.1",
				"OMNIBUS_RUBY_VERSION=7.55.0-rc.1",
				"INTEGRATIONS_CORE_VERSION=7.55.0-rc.1",
				"JMXFETCH_VERSION=1",
			},
			expectedNotes: []string{`Ignoring "WINDOWS_DDNPM_DRIVER" on linux`},
		},
		{
			name: "windows_keeps_windows_keys",
			goos: "windows",
			expectedVariables: []string{
				"DATADOG_AGENT_VERSION=7.55.0-rc.1",
				"OMNIBUS_RUBY_VERSION=7.55.0-rc.1",
				"INTEGRATIONS_CORE_VERSION=7.55.0-rc.1",
				"WINDOWS_DDNPM_DRIVER=release-signed",
				"JMXFETCH_VERSION=1",
			},
		},
		{
			name:      "environment_overrides",
			goos:      "linux",
			overrides: map[string]string{"OMNIBUS_RUBY_VERSION": "my-branch", "JMXFETCH_VERSION": ""},
			expectedVariables: []string{
				"DATADOG_AGENT_VERSION=7.55.0-rc.1",
				"OMNIBUS_RUBY_VERSION=my-branch",
				"INTEGRATIONS_CORE_VERSION=7.55.0-rc.1",
				"JMXFETCH_VERSION=1",
			},
			expectedNotes: []string{
				`Overriding "OMNIBUS_RUBY_VERSION": "7.55.0-rc.1" -> "my-branch"`,
				`Ignoring "WINDOWS_DDNPM_DRIVER" on linux`,
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			releaseManifest := parseTestManifest(testInstance, testManifestDocumentConstant)
			lookup := func(key string) (string, bool) {
				value, found := testCase.overrides[key]
				return value, found
			}

			environment, environmentError := releaseManifest.DependenciesEnv(manifest.DefaultDependenciesSection, testCase.goos, lookup)
			require.NoError(testInstance, environmentError)

			rendered := make([]string, 0, len(environment.Variables))
			for _, variable := range environment.Variables {
				rendered = append(rendered, variable.String())
			}
			require.Equal(testInstance, testCase.expectedVariables, rendered)
			require.Equal(testInstance, testCase.expectedNotes, environment.Notes)
		})
	}
}

func TestDependenciesEnvRequiresObjectSection(testInstance *testing.T) {
	releaseManifest := parseTestManifest(testInstance, testManifestDocumentConstant)

	_, environmentError := releaseManifest.DependenciesEnv("base_branch", "linux", nil)
	require.ErrorAs(testInstance, environmentError, &manifest.NotObjectError{})
}

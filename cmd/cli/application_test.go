package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/releasetrain/internal/utils"
)

const (
	testManifestFileNameConstant      = "release.json"
	testConfigurationFileNameConstant = "config.yaml"
	testManifestContentConstant       = "{\n    \"base_branch\": \"7.55.x\",\n    \"current_milestone\": \"7.56.0\",\n    \"dependencies\": {}\n}\n"
	testConfigurationTemplateConstant = "train:\n  manifest_path: %s\n"
)

func newTestApplication(testInstance *testing.T, arguments ...string) (*Application, *bytes.Buffer, *bytes.Buffer) {
	testInstance.Helper()
	logOutput := &bytes.Buffer{}
	application, creationError := newApplication(utils.NewLoggerFactoryWithOutput(logOutput))
	require.NoError(testInstance, creationError)

	standardOutput := &bytes.Buffer{}
	application.rootCommand.SetOut(standardOutput)
	application.rootCommand.SetErr(&bytes.Buffer{})
	application.rootCommand.SetArgs(arguments)
	return application, standardOutput, logOutput
}

func writeTestConfiguration(testInstance *testing.T) string {
	testInstance.Helper()
	directory := testInstance.TempDir()
	manifestPath := filepath.Join(directory, testManifestFileNameConstant)
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(testManifestContentConstant), 0o600))

	configurationPath := filepath.Join(directory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(fmt.Sprintf(testConfigurationTemplateConstant, manifestPath)), 0o600))
	return configurationPath
}

func TestApplicationRegistersCommands(testInstance *testing.T) {
	application, _, _ := newTestApplication(testInstance)

	registered := make([]string, 0)
	for _, subcommand := range application.rootCommand.Commands() {
		registered = append(registered, subcommand.Name())
	}
	require.Subset(testInstance, registered, []string{
		"check-for-changes",
		"repo-data",
		"next-rc",
		"highest-version",
		"manifest",
		"tag-version",
		"is-qualification",
		"qualification-tags",
	})
}

func TestApplicationLoadsEmbeddedDefaults(testInstance *testing.T) {
	configurationPath := writeTestConfiguration(testInstance)
	application, standardOutput, _ := newTestApplication(testInstance, "--config", configurationPath, "manifest", "get", "base_branch")

	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, "7.55.x\n", standardOutput.String())

	require.Equal(testInstance, "datadog-agent", application.configuration.Train.Project)
	require.Equal(testInstance, "DataDog", application.configuration.Train.Owner)
	require.Len(testInstance, application.configuration.Train.Repositories, 3)
	require.Equal(testInstance, []int{6, 7}, application.configuration.Train.CompatibleMajors["6"])
	require.Equal(testInstance, "#agent-release-sync", application.configuration.Notifications.Channel)
	require.Equal(testInstance, 3, application.configuration.Qualification.BatchSize)
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)
	require.False(testInstance, application.humanReadableLoggingEnabled())
}

func TestApplicationEnvironmentOverrides(testInstance *testing.T) {
	testInstance.Setenv("RELEASETRAIN_QUALIFICATION_BATCH_SIZE", "5")
	testInstance.Setenv("RELEASETRAIN_NOTIFICATIONS_CHANNEL", "#release-test")
	configurationPath := writeTestConfiguration(testInstance)
	application, _, _ := newTestApplication(testInstance, "--config", configurationPath, "manifest", "get", "current_milestone")

	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, 5, application.configuration.Qualification.BatchSize)
	require.Equal(testInstance, "#release-test", application.configuration.Notifications.Channel)
}

func TestApplicationLoggingFlags(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		arguments             []string
		expectError           bool
		expectedHumanReadable bool
	}{
		{name: "console_format", arguments: []string{"--log-format", "console"}, expectedHumanReadable: true},
		{name: "debug_level", arguments: []string{"--log-level", "debug"}},
		{name: "invalid_level", arguments: []string{"--log-level", "verbose"}, expectError: true},
		{name: "invalid_format", arguments: []string{"--log-format", "xml"}, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configurationPath := writeTestConfiguration(testInstance)
			arguments := append([]string{"--config", configurationPath}, testCase.arguments...)
			arguments = append(arguments, "manifest", "get", "base_branch")
			application, _, _ := newTestApplication(testInstance, arguments...)

			executionError := application.Execute()
			if testCase.expectError {
				require.Error(testInstance, executionError)
				return
			}
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedHumanReadable, application.humanReadableLoggingEnabled())
		})
	}
}

func TestApplicationRejectsMissingConfigurationFile(testInstance *testing.T) {
	application, _, _ := newTestApplication(testInstance, "--config", filepath.Join(testInstance.TempDir(), "absent.yaml"), "manifest", "get", "base_branch")
	require.Error(testInstance, application.Execute())
}

func TestEmbeddedDefaultConfigurationIsCopied(testInstance *testing.T) {
	content, configurationType := EmbeddedDefaultConfiguration()
	require.Equal(testInstance, configurationTypeConstant, configurationType)
	require.NotEmpty(testInstance, content)
	content[0] = '#'
	reloaded, _ := EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, content[0], reloaded[0])
}

package train_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/releasetrain/internal/manifest"
	"github.com/temirov/releasetrain/internal/train"
	"github.com/temirov/releasetrain/internal/utils"
	"github.com/temirov/releasetrain/internal/version"
)

const (
	manifestFileNameConstant    = "release.json"
	environmentManifestConstant = `{
    "dependencies": {
        "OMNIBUS_RUBY_VERSION": "7.55.0-rc.1",
        "WINDOWS_DDNPM_VERSION": "2.6.0",
        "JMXFETCH_HASH": 42
    }
}`
)

type stubServiceResolver struct {
	remote   *fakeRemote
	tagger   *fakeTagger
	notifier *fakeNotifier
}

func (resolver stubServiceResolver) Resolve(logger *zap.Logger, configuration train.CommandConfiguration, report io.Writer) (*train.Service, error) {
	parsed, parseError := manifest.Parse(manifestFileNameConstant, []byte(testManifestDocumentConstant))
	if parseError != nil {
		return nil, parseError
	}
	return train.NewService(train.ServiceDependencies{
		Configuration: configuration.Train,
		Manifest:      parsed,
		Remote:        resolver.remote,
		Tagger:        resolver.tagger,
		Notifier:      resolver.notifier,
		Logger:        logger,
		Report:        report,
	})
}

type versionQuery struct {
	Owner      string
	Repository string
	Majors     []int
	Minor      int
}

type fakeVersionSource struct {
	versions map[string]string
	queries  []versionQuery
}

func (source *fakeVersionSource) HighestVersion(_ context.Context, owner string, repository string, compatibleMajors []int, minor int) (version.Version, error) {
	source.queries = append(source.queries, versionQuery{Owner: owner, Repository: repository, Majors: compatibleMajors, Minor: minor})
	value, found := source.versions[repository]
	if !found {
		return version.Version{}, version.NotFoundError{Minor: minor, Majors: compatibleMajors}
	}
	return version.MustParse(value), nil
}

type stubVersionSourceResolver struct {
	source *fakeVersionSource
}

func (resolver stubVersionSourceResolver) Resolve(context.Context, *zap.Logger, train.CommandConfiguration) (train.VersionSource, error) {
	return resolver.source, nil
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

func executeCommand(testInstance *testing.T, builder commandBuilder, arguments ...string) (string, string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	standardOutput := &bytes.Buffer{}
	standardError := &bytes.Buffer{}
	command.SetOut(standardOutput)
	command.SetErr(standardError)
	command.SetArgs(arguments)
	command.SilenceUsage = true
	command.SilenceErrors = true
	executionError := command.Execute()
	return standardOutput.String(), standardError.String(), executionError
}

func commandDependencies(resolver train.ServiceResolver) train.CommandDependencies {
	return train.CommandDependencies{
		ConfigurationProvider: func() train.CommandConfiguration {
			return train.CommandConfiguration{Train: testConfiguration()}
		},
		ServiceResolver: resolver,
	}
}

func writeManifest(testInstance *testing.T, document string) string {
	testInstance.Helper()
	directory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(directory, manifestFileNameConstant), []byte(document), 0o644))
	return directory
}

func loadWrittenManifest(testInstance *testing.T, directory string) *manifest.Manifest {
	testInstance.Helper()
	written, loadError := manifest.Load(filepath.Join(directory, manifestFileNameConstant))
	require.NoError(testInstance, loadError)
	return written
}

func TestCheckForChangesCommand(testInstance *testing.T) {
	testCases := []struct {
		name           string
		remote         *fakeRemote
		arguments      []string
		expectedOutput string
		expectedReport string
		expectedTagged int
	}{
		{
			name:           "unchanged_prints_false",
			remote:         releaseBranchRemote(),
			arguments:      []string{"--release-branch", testReleaseBranchConstant},
			expectedOutput: "false\n",
		},
		{
			name:           "new_commits_print_true_and_tag",
			remote:         releaseBranchRemote().withHead(testProjectURLConstant, testReleaseBranchConstant, "agent-c"),
			arguments:      []string{"--release-branch", testReleaseBranchConstant},
			expectedOutput: "true\n",
			expectedReport: "datadog-agent has new commits since 7.55.0-rc.1\n",
			expectedTagged: 1,
		},
		{
			name:           "dry_run_prints_true_without_tagging",
			remote:         releaseBranchRemote().withHead(testProjectURLConstant, testReleaseBranchConstant, "agent-c"),
			arguments:      []string{"--release-branch", testReleaseBranchConstant, "--dry-run"},
			expectedOutput: "true\n",
			expectedReport: "datadog-agent has new commits since 7.55.0-rc.1\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			tagger := &fakeTagger{}
			builder := &train.ChangesCommandBuilder{CommandDependencies: commandDependencies(stubServiceResolver{
				remote:   testCase.remote,
				tagger:   tagger,
				notifier: &fakeNotifier{},
			})}

			output, report, executionError := executeCommand(testInstance, builder, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedOutput, output)
			require.Equal(testInstance, testCase.expectedReport, report)
			require.Len(testInstance, tagger.tagged, testCase.expectedTagged)
		})
	}
}

func TestCheckForChangesCommandLogsConfigurationFile(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.InfoLevel)
	dependencies := commandDependencies(stubServiceResolver{remote: releaseBranchRemote(), tagger: &fakeTagger{}, notifier: &fakeNotifier{}})
	dependencies.LoggerProvider = func() *zap.Logger { return zap.New(observerCore) }
	command, buildError := (&train.ChangesCommandBuilder{CommandDependencies: dependencies}).Build()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"--release-branch", testReleaseBranchConstant, "--warning"})
	executionContext := utils.NewCommandContextAccessor().WithConfigurationFilePath(context.Background(), "/etc/releasetrain/config.yaml")
	require.NoError(testInstance, command.ExecuteContext(executionContext))

	entries := observedLogs.FilterMessage("Checking release train for changes").All()
	require.Len(testInstance, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(testInstance, "/etc/releasetrain/config.yaml", fields["configuration_file"])
	require.Equal(testInstance, true, fields["warning_mode"])
	require.Equal(testInstance, false, fields["dry_run"])
}

func TestCheckForChangesCommandRejectsArguments(testInstance *testing.T) {
	builder := &train.ChangesCommandBuilder{CommandDependencies: commandDependencies(stubServiceResolver{remote: newFakeRemote(), tagger: &fakeTagger{}, notifier: &fakeNotifier{}})}

	_, _, executionError := executeCommand(testInstance, builder, "unexpected")
	require.Error(testInstance, executionError)
}

func TestCheckForChangesCommandWrapsFailures(testInstance *testing.T) {
	remote := releaseBranchRemote()
	delete(remote.heads, fakeKey(testProjectURLConstant, testReleaseBranchConstant))
	builder := &train.ChangesCommandBuilder{CommandDependencies: commandDependencies(stubServiceResolver{remote: remote, tagger: &fakeTagger{}, notifier: &fakeNotifier{}})}

	output, _, executionError := executeCommand(testInstance, builder, "--release-branch", testReleaseBranchConstant)
	require.ErrorContains(testInstance, executionError, "check-for-changes failed")
	require.Empty(testInstance, output)
}

func TestRepoDataCommand(testInstance *testing.T) {
	builder := &train.RepoDataCommandBuilder{CommandDependencies: commandDependencies(stubServiceResolver{remote: releaseBranchRemote(), tagger: &fakeTagger{}, notifier: &fakeNotifier{}})}

	output, _, executionError := executeCommand(testInstance, builder, "--release-branch", testReleaseBranchConstant, "--integrations-only")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance,
		"datadog-agent:\n"+
			"    branch: 7.55.x\n"+
			"    previous_tag: 7.55.0-rc.1\n"+
			"integrations-core:\n"+
			"    branch: 7.55.x\n"+
			"    previous_tag: 7.55.0-rc.1\n",
		output,
	)
}

func TestNextReleaseCandidateCommand(testInstance *testing.T) {
	builder := &train.NextReleaseCandidateCommandBuilder{CommandDependencies: commandDependencies(stubServiceResolver{remote: releaseBranchRemote(), tagger: &fakeTagger{}, notifier: &fakeNotifier{}})}

	output, _, executionError := executeCommand(testInstance, builder, "--release-branch", testReleaseBranchConstant)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "7.55.0-rc.2\n", output)

	defaultOutput, _, defaultError := executeCommand(testInstance, builder)
	require.NoError(testInstance, defaultError)
	require.Equal(testInstance, "7.56.0-rc.1\n", defaultOutput)
}

func TestHighestVersionCommand(testInstance *testing.T) {
	source := &fakeVersionSource{versions: map[string]string{testIntegrationsConstant: "7.28.1"}}
	dependencies := commandDependencies(nil)
	dependencies.VersionSourceResolver = stubVersionSourceResolver{source: source}
	builder := &train.HighestVersionCommandBuilder{CommandDependencies: dependencies}

	output, _, executionError := executeCommand(testInstance, builder, "--repo", testIntegrationsConstant, "--major", "6", "--minor", "28")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "7.28.1\n", output)
	require.Equal(testInstance, []versionQuery{{Owner: testOwnerConstant, Repository: testIntegrationsConstant, Majors: []int{6, 7}, Minor: 28}}, source.queries)

	_, _, missingError := executeCommand(testInstance, builder, "--repo", testOmnibusConstant, "--major", "7", "--minor", "28")
	require.ErrorIs(testInstance, missingError, version.ErrNotFound)

	_, _, repositoryError := executeCommand(testInstance, builder, "--major", "7", "--minor", "28")
	require.Error(testInstance, repositoryError)

	_, _, majorError := executeCommand(testInstance, builder, "--repo", testOmnibusConstant, "--major", "5", "--minor", "28")
	require.Error(testInstance, majorError)
}

func manifestBuilder(directory string, source *fakeVersionSource) *train.ManifestCommandBuilder {
	dependencies := commandDependencies(nil)
	dependencies.ManifestLoader = &train.FileManifestLoader{WorkingDirectory: directory}
	if source != nil {
		dependencies.VersionSourceResolver = stubVersionSourceResolver{source: source}
	}
	return &train.ManifestCommandBuilder{CommandDependencies: dependencies}
}

func TestManifestGetCommand(testInstance *testing.T) {
	builder := manifestBuilder(writeManifest(testInstance, testManifestDocumentConstant), nil)

	output, _, executionError := executeCommand(testInstance, builder, "get", "dependencies::OMNIBUS_RUBY_VERSION")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "7.55.0-rc.1\n", output)

	_, _, missingError := executeCommand(testInstance, builder, "get", "dependencies::MISSING")
	require.ErrorAs(testInstance, missingError, &manifest.KeyNotFoundError{})
}

func TestManifestSetBranchCommand(testInstance *testing.T) {
	directory := writeManifest(testInstance, testManifestDocumentConstant)
	builder := manifestBuilder(directory, nil)

	_, _, executionError := executeCommand(testInstance, builder, "set-branch", "7.56.x")
	require.NoError(testInstance, executionError)

	written := loadWrittenManifest(testInstance, directory)
	for key, expected := range map[string]string{
		"base_branch":                             "7.56.x",
		"dependencies::OMNIBUS_RUBY_VERSION":      "7.56.x",
		"dependencies::INTEGRATIONS_CORE_VERSION": "7.56.x",
		"dependencies::DATADOG_AGENT_VERSION":     "7.55.0-rc.1",
		"current_milestone":                       "7.56.0",
	} {
		value, valueError := written.StringValue(key)
		require.NoError(testInstance, valueError)
		require.Equal(testInstance, expected, value, key)
	}
}

func TestManifestMilestoneCommand(testInstance *testing.T) {
	directory := writeManifest(testInstance, testManifestDocumentConstant)
	builder := manifestBuilder(directory, nil)

	_, _, executionError := executeCommand(testInstance, builder, "milestone", "7.57.0")
	require.NoError(testInstance, executionError)
	summary, summaryError := loadWrittenManifest(testInstance, directory).Summary()
	require.NoError(testInstance, summaryError)
	require.Equal(testInstance, manifest.Summary{BaseBranch: "main", CurrentMilestone: "7.57.0"}, summary)

	_, _, invalidError := executeCommand(testInstance, builder, "milestone", "next")
	require.Error(testInstance, invalidError)
}

func TestManifestUpdateCommand(testInstance *testing.T) {
	directory := writeManifest(testInstance, testManifestDocumentConstant)
	source := &fakeVersionSource{versions: map[string]string{
		testOmnibusConstant:      "7.55.0-rc.2",
		testIntegrationsConstant: "7.55.0-rc.3",
	}}
	builder := manifestBuilder(directory, source)

	output, _, executionError := executeCommand(testInstance, builder, "update", "--version", "7.55.0-rc.2")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "OMNIBUS_RUBY_VERSION=7.55.0-rc.2\nINTEGRATIONS_CORE_VERSION=7.55.0-rc.3\n", output)
	require.Equal(testInstance, []versionQuery{
		{Owner: testOwnerConstant, Repository: testOmnibusConstant, Majors: []int{7}, Minor: 55},
		{Owner: testOwnerConstant, Repository: testIntegrationsConstant, Majors: []int{7}, Minor: 55},
	}, source.queries)

	written := loadWrittenManifest(testInstance, directory)
	integrationsVersion, valueError := written.StringValue("dependencies::INTEGRATIONS_CORE_VERSION")
	require.NoError(testInstance, valueError)
	require.Equal(testInstance, "7.55.0-rc.3", integrationsVersion)

	_, _, missingFlagError := executeCommand(testInstance, builder, "update")
	require.Error(testInstance, missingFlagError)
}

func TestManifestEnvCommand(testInstance *testing.T) {
	builder := manifestBuilder(writeManifest(testInstance, environmentManifestConstant), nil)
	builder.OperatingSystem = "linux"
	builder.EnvironmentLookup = func(key string) (string, bool) {
		if key == "OMNIBUS_RUBY_VERSION" {
			return "custom", true
		}
		return "", false
	}

	output, notes, executionError := executeCommand(testInstance, builder, "env")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "OMNIBUS_RUBY_VERSION=custom\nJMXFETCH_HASH=42\n", output)
	require.Equal(testInstance,
		"Overriding \"OMNIBUS_RUBY_VERSION\": \"7.55.0-rc.1\" -> \"custom\"\n"+
			"Ignoring \"WINDOWS_DDNPM_VERSION\" on linux\n",
		notes,
	)
}

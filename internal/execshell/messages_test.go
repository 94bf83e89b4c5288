package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testRemoteURLConstant        = "https://github.com/example/omnibus-ruby"
	testWorkingDirectoryConstant = "/tmp/releasetrain-clone"
)

func TestCommandMessageFormatterDescribesReleaseCommands(testInstance *testing.T) {
	formatter := CommandMessageFormatter{}

	testCases := []struct {
		name            string
		arguments       []string
		build           func(ShellCommand) string
		expectedMessage string
	}{
		{
			name:            "ls_remote_heads_start",
			arguments:       []string{"ls-remote", "-h", testRemoteURLConstant, "refs/heads/main"},
			build:           formatter.BuildStartedMessage,
			expectedMessage: "Looking up branch refs/heads/main on " + testRemoteURLConstant,
		},
		{
			name:            "ls_remote_tags_success",
			arguments:       []string{"ls-remote", "-t", testRemoteURLConstant, "7.55.0*"},
			build:           formatter.BuildSuccessMessage,
			expectedMessage: "Listed tags matching 7.55.0* on " + testRemoteURLConstant,
		},
		{
			name:            "clone_start",
			arguments:       []string{"clone", "-b", "7.55.x", "--filter=blob:none", "--no-checkout", testRemoteURLConstant, testWorkingDirectoryConstant},
			build:           formatter.BuildStartedMessage,
			expectedMessage: "Cloning " + testRemoteURLConstant + " at 7.55.x without checkout",
		},
		{
			name:            "tag_start",
			arguments:       []string{"tag", "7.55.0-rc.2"},
			build:           formatter.BuildStartedMessage,
			expectedMessage: "Creating tag 7.55.0-rc.2 in " + testWorkingDirectoryConstant,
		},
		{
			name:            "push_single_tag",
			arguments:       []string{"push", "origin", "tag", "7.55.0-rc.2"},
			build:           formatter.BuildSuccessMessage,
			expectedMessage: "Pushed 7.55.0-rc.2 to origin from " + testWorkingDirectoryConstant,
		},
		{
			name:            "push_batch",
			arguments:       []string{"push", "origin", "7.55.0", "pkg/one/v7.55.0", "pkg/two/v7.55.0"},
			build:           formatter.BuildStartedMessage,
			expectedMessage: "Pushing 7.55.0, pkg/one/v7.55.0, pkg/two/v7.55.0 to origin from " + testWorkingDirectoryConstant,
		},
		{
			name:            "push_delete",
			arguments:       []string{"push", "origin", "--delete", "qualification-1234"},
			build:           formatter.BuildStartedMessage,
			expectedMessage: "Deleting qualification-1234 from origin",
		},
		{
			name:            "fetch_tags",
			arguments:       []string{"fetch", "origin", "--tags"},
			build:           formatter.BuildStartedMessage,
			expectedMessage: "Fetching tags from origin in " + testWorkingDirectoryConstant,
		},
		{
			name:            "unknown_subcommand",
			arguments:       []string{"status"},
			build:           formatter.BuildStartedMessage,
			expectedMessage: "Running git status (in " + testWorkingDirectoryConstant + ")",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := ShellCommand{
				Name:    CommandGit,
				Details: CommandDetails{Arguments: testCase.arguments, WorkingDirectory: testWorkingDirectoryConstant},
			}
			require.Equal(testInstance, testCase.expectedMessage, testCase.build(command))
		})
	}
}

func TestCommandMessageFormatterDescribesFailures(testInstance *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"ls-remote", "-t", testRemoteURLConstant, "7.55.0*"}},
	}

	failureMessage := formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 128, StandardError: "fatal: repository not found\n"})
	require.Equal(testInstance, "Failed to list tags matching 7.55.0* on "+testRemoteURLConstant+" (exit code 128: fatal: repository not found)", failureMessage)

	executionFailureMessage := formatter.BuildExecutionFailureMessage(command, errors.New("git not installed"))
	require.Equal(testInstance, "Unable to list tags matching 7.55.0* on "+testRemoteURLConstant+": git not installed", executionFailureMessage)
}

func TestOSCommandRunnerDisablesGitPrompts(testInstance *testing.T) {
	runner := &OSCommandRunner{environment: func() []string { return []string{"HOME=/root"} }}

	gitEnvironment := runner.mergeEnvironment(ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{EnvironmentVariables: map[string]string{"GIT_DIR": "/tmp/repo/.git"}},
	})
	require.Equal(testInstance, []string{"HOME=/root", "GIT_DIR=/tmp/repo/.git", "GIT_TERMINAL_PROMPT=0"}, gitEnvironment)

	otherEnvironment := runner.mergeEnvironment(ShellCommand{Name: CommandName("true")})
	require.Equal(testInstance, []string{"HOME=/root"}, otherEnvironment)
}

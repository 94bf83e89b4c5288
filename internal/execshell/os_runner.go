package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

const (
	environmentAssignmentTemplateConstant = "%s=%s"
	gitTerminalPromptVariableConstant     = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant     = "0"
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct {
	environment func() []string
}

// NewOSCommandRunner constructs a runner backed by os/exec and the process environment.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{environment: os.Environ}
}

// Run executes the supplied command using os/exec. Git never prompts for credentials, so a
// remote that requires interactive authentication fails instead of blocking a CI job.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}
	executable.Env = runner.mergeEnvironment(command)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutputBuffer.String(),
				StandardError:  standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       0,
	}, nil
}

func (runner *OSCommandRunner) mergeEnvironment(command ShellCommand) []string {
	environmentSource := runner.environment
	if environmentSource == nil {
		environmentSource = os.Environ
	}
	mergedEnvironment := append([]string{}, environmentSource()...)

	overrides := map[string]string{}
	if command.Name == CommandGit {
		overrides[gitTerminalPromptVariableConstant] = gitTerminalPromptDisabledConstant
	}
	for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
		overrides[environmentKey] = environmentValue
	}

	overrideKeys := make([]string, 0, len(overrides))
	for environmentKey := range overrides {
		overrideKeys = append(overrideKeys, environmentKey)
	}
	sort.Strings(overrideKeys)
	for _, environmentKey := range overrideKeys {
		mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, overrides[environmentKey]))
	}
	return mergedEnvironment
}

package execshell

import "strings"

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that command execution finished and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports unexpected failures prior to receiving an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// IsReadOnlyQuery reports whether the command only inspects remote state. Console observers
// skip start notifications for these so a change check over many repositories stays readable.
func IsReadOnlyQuery(command ShellCommand) bool {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return false
	}
	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case gitLSRemoteSubcommandNameConstant, gitForEachRefSubcommandNameConstant:
		return true
	default:
		return false
	}
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

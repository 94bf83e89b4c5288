// Package execshell provides structured helpers for invoking git.
//
// ShellExecutor wraps a CommandRunner with zap logging and lifecycle
// notifications, converting non-zero exit codes into CommandFailedError.
// OSCommandRunner is the default os/exec backed runner; tests substitute
// recording runners so release tooling can be exercised without a network.
package execshell

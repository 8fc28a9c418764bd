package fleetname

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// defaultTimeout bounds every system command the pipeline runs. All of them
// (system_profiler, scutil, hostnamectl, wmic) complete in well under a
// second on a healthy host.
const defaultTimeout = 5 * time.Second

// CommandExecutor is an interface for executing system commands, allowing for
// dependency injection and testing.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
}

// defaultCommandExecutor implements CommandExecutor using actual system
// command execution.
type defaultCommandExecutor struct {
	Timeout time.Duration
}

// Execute runs a system command with a timeout and returns its trimmed
// output. context.WithTimeout prevents commands from hanging indefinitely.
func (e *defaultCommandExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		return "", &CommandError{Command: name, Err: err}
	}

	return strings.TrimSpace(string(output)), nil
}

// executeCommand is a convenience wrapper used by the platform-specific
// readers and appliers. A nil executor falls back to the default one.
func executeCommand(ctx context.Context, executor CommandExecutor, name string, args ...string) (string, error) {
	if executor == nil {
		executor = &defaultCommandExecutor{Timeout: defaultTimeout}
	}

	return executor.Execute(ctx, name, args...)
}

package fleetname

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor is a test double that implements CommandExecutor.
type mockExecutor struct {
	// outputs maps command name to expected output
	outputs map[string]string
	// errors maps command name to expected error
	errors map[string]error
	// calls records every invocation, command name first
	calls [][]string
}

// newMockExecutor creates a new mock executor for testing.
func newMockExecutor() *mockExecutor {
	return &mockExecutor{
		outputs: make(map[string]string),
		errors:  make(map[string]error),
	}
}

// Execute implements CommandExecutor.
func (m *mockExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	m.calls = append(m.calls, append([]string{name}, args...))

	if err, exists := m.errors[name]; exists {
		return "", err
	}

	if output, exists := m.outputs[name]; exists {
		return output, nil
	}

	return "", fmt.Errorf("command %q not configured in mock", name)
}

// setOutput configures the mock to return the given output for a command.
func (m *mockExecutor) setOutput(command, output string) {
	m.outputs[command] = output
}

// setError configures the mock to return an error for a command.
func (m *mockExecutor) setError(command string, err error) {
	m.errors[command] = err
}

// execFunc adapts a function to CommandExecutor for per-invocation control.
type execFunc func(ctx context.Context, name string, args ...string) (string, error)

func (f execFunc) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f(ctx, name, args...)
}

func TestExecuteRespectsTimeout(t *testing.T) {
	executor := &defaultCommandExecutor{}
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()

	time.Sleep(2 * time.Millisecond) // Ensure timeout expires

	_, err := executor.Execute(ctx, "echo", "test")
	assert.Error(t, err)
}

func TestExecuteWrapsCommandError(t *testing.T) {
	executor := &defaultCommandExecutor{Timeout: time.Second}

	_, err := executor.Execute(context.Background(), "definitely-not-a-command")
	require.Error(t, err)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "definitely-not-a-command", cmdErr.Command)
}

func TestExecuteCommandWithNilExecutor(t *testing.T) {
	// The nil executor falls back to the real one; no panic is the contract.
	_, err := executeCommand(context.Background(), nil, "echo", "test")
	if err != nil {
		t.Logf("command execution with nil executor: %v", err)
	}
}

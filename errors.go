package fleetname

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the naming pipeline. [ExitCode] maps each one
// to the process exit code the CLI reports.
var (
	// ErrMetadataUnavailable is returned when the host's hardware-description
	// facility yields no parseable model identifier or hardware UUID.
	ErrMetadataUnavailable = errors.New("hardware metadata unavailable")

	// ErrInvalidDigitCount is returned when the hardware UUID is shorter than
	// the configured suffix digit count, or the count is not positive.
	ErrInvalidDigitCount = errors.New("invalid suffix digit count")

	// ErrSuffixLengthMismatch is returned when the extracted suffix does not
	// have the configured length.
	ErrSuffixLengthMismatch = errors.New("suffix length mismatch")

	// ErrEmptyName is returned when derivation produced an empty candidate
	// name.
	ErrEmptyName = errors.New("empty candidate name")

	// ErrInsufficientPrivilege is returned when the process lacks the
	// privilege to change the system identity.
	ErrInsufficientPrivilege = errors.New("insufficient privilege")

	// ErrApplyFailed is returned when one of the identity slots could not be
	// set. A partial application is reported, never silently swallowed.
	ErrApplyFailed = errors.New("failed to apply identity")
)

// Exit codes reported by the CLI, kept as a contract for provisioning
// workflows that branch on them.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitSuffixMismatch = 2
	ExitNoPrivilege    = 3
	ExitEmptyName      = 4
)

// ExitCode maps an error from the naming pipeline to its process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidDigitCount), errors.Is(err, ErrSuffixLengthMismatch):
		return ExitSuffixMismatch
	case errors.Is(err, ErrInsufficientPrivilege):
		return ExitNoPrivilege
	case errors.Is(err, ErrEmptyName):
		return ExitEmptyName
	default:
		return ExitFailure
	}
}

// CommandError records a failed system command execution.
// Use [errors.As] to extract the command name from wrapped errors.
type CommandError struct {
	Command string // command name, e.g. "system_profiler", "scutil", "hostnamectl"
	Err     error  // underlying error from exec
}

// Error returns a human-readable description of the command failure.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// ParseError records a failure while parsing command or system output.
// Use [errors.As] to extract the source from wrapped errors.
type ParseError struct {
	Source string // data source, e.g. "system_profiler JSON", "wmic output"
	Err    error  // underlying parse error
}

// Error returns a human-readable description of the parse failure.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// SlotError records a failure while setting a single identity slot, so a
// partial application names the slot that broke.
type SlotError struct {
	Slot string // identity slot, e.g. "ComputerName", "HostName"
	Err  error  // underlying error
}

// Error returns a human-readable description of the slot failure.
func (e *SlotError) Error() string {
	return fmt.Sprintf("identity slot %q: %v", e.Slot, e.Err)
}

// Unwrap returns the underlying error.
func (e *SlotError) Unwrap() error {
	return e.Err
}

package fleetname

import "fmt"

// Validate checks the preconditions for applying a derived name: the
// candidate must be non-empty and the process must hold the privilege needed
// to change the system identity. Privilege is an explicit parameter rather
// than ambient state so callers and tests control it directly.
func Validate(candidate string, hasPrivilege bool) error {
	if candidate == "" {
		return fmt.Errorf("%w: derivation produced no name", ErrEmptyName)
	}

	if !hasPrivilege {
		return fmt.Errorf("%w: re-run with elevated privileges", ErrInsufficientPrivilege)
	}

	return nil
}

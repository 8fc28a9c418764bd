//go:build darwin

package fleetname

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/rs/zerolog"
)

// Compiled regexes for ioreg output parsing.
var (
	ioregUUIDRe   = regexp.MustCompile(`"IOPlatformUUID"\s*=\s*"([^"]+)"`)
	ioregModelRe  = regexp.MustCompile(`"model"\s*=\s*<"([^"]+)">`)
	ioregSerialRe = regexp.MustCompile(`"IOPlatformSerialNumber"\s*=\s*"([^"]+)"`)
)

// spHardwareDataType represents the JSON output of
// `system_profiler SPHardwareDataType -json`.
type spHardwareDataType struct {
	SPHardwareDataType []spHardwareEntry `json:"SPHardwareDataType"`
}

type spHardwareEntry struct {
	ModelNumber  string `json:"model_number"`
	MachineModel string `json:"machine_model"`
	PlatformUUID string `json:"platform_UUID"`
	SerialNumber string `json:"serial_number"`
}

// readModelIdentifier retrieves the model number, e.g. "Z1AU001HXB/A",
// using system_profiler with an ioreg fallback for older releases that do
// not report a model number (the machine model is used instead there).
func readModelIdentifier(ctx context.Context, executor CommandExecutor, logger zerolog.Logger) (string, error) {
	output, err := executeCommand(ctx, executor, "system_profiler", "SPHardwareDataType", "-json")
	if err == nil {
		model, parseErr := extractHardwareField(output, func(e spHardwareEntry) string {
			if e.ModelNumber != "" {
				return e.ModelNumber
			}

			return e.MachineModel
		})
		if parseErr == nil {
			return model, nil
		}

		logger.Debug().Err(parseErr).Msg("system_profiler model lookup failed, trying ioreg")
	}

	output, err = executeCommand(ctx, executor, "ioreg", "-d2", "-c", "IOPlatformExpertDevice")
	if err != nil {
		return "", fmt.Errorf("%w: model identifier: %w", ErrMetadataUnavailable, err)
	}

	if match := ioregModelRe.FindStringSubmatch(output); len(match) > 1 {
		return match[1], nil
	}

	return "", fmt.Errorf("%w: model not found in ioreg output", ErrMetadataUnavailable)
}

// readHardwareUUID retrieves the hardware UUID using system_profiler with an
// ioreg fallback.
func readHardwareUUID(ctx context.Context, executor CommandExecutor, logger zerolog.Logger) (string, error) {
	output, err := executeCommand(ctx, executor, "system_profiler", "SPHardwareDataType", "-json")
	if err == nil {
		uuid, parseErr := extractHardwareField(output, func(e spHardwareEntry) string {
			return e.PlatformUUID
		})
		if parseErr == nil {
			return uuid, nil
		}

		logger.Debug().Err(parseErr).Msg("system_profiler UUID lookup failed, trying ioreg")
	}

	output, err = executeCommand(ctx, executor, "ioreg", "-d2", "-c", "IOPlatformExpertDevice")
	if err != nil {
		return "", fmt.Errorf("%w: hardware UUID: %w", ErrMetadataUnavailable, err)
	}

	if match := ioregUUIDRe.FindStringSubmatch(output); len(match) > 1 {
		return match[1], nil
	}

	return "", fmt.Errorf("%w: hardware UUID not found in ioreg output", ErrMetadataUnavailable)
}

// readSerialNumber retrieves the system serial number with the same
// system_profiler/ioreg fallback chain as the other fields.
func readSerialNumber(ctx context.Context, executor CommandExecutor, logger zerolog.Logger) (string, error) {
	output, err := executeCommand(ctx, executor, "system_profiler", "SPHardwareDataType", "-json")
	if err == nil {
		serial, parseErr := extractHardwareField(output, func(e spHardwareEntry) string {
			return e.SerialNumber
		})
		if parseErr == nil {
			return serial, nil
		}

		logger.Debug().Err(parseErr).Msg("system_profiler serial lookup failed, trying ioreg")
	}

	output, err = executeCommand(ctx, executor, "ioreg", "-d2", "-c", "IOPlatformExpertDevice")
	if err != nil {
		return "", fmt.Errorf("%w: serial number: %w", ErrMetadataUnavailable, err)
	}

	if match := ioregSerialRe.FindStringSubmatch(output); len(match) > 1 {
		return match[1], nil
	}

	return "", fmt.Errorf("%w: serial number not found in ioreg output", ErrMetadataUnavailable)
}

// identitySlots lists the scutil preference names in the order they are set.
// ComputerName is the user-facing display name and receives the unsanitized
// candidate; HostName and LocalHostName receive the hostname-safe variant.
var identitySlots = []struct {
	name      string
	sanitized bool
}{
	{"ComputerName", false},
	{"HostName", true},
	{"LocalHostName", true},
}

// applyIdentity sets the three macOS identity slots via scutil. The slots
// are applied in order and the first failure aborts the run, so a partial
// application always surfaces as a SlotError naming the slot that broke.
func applyIdentity(ctx context.Context, executor CommandExecutor, logger zerolog.Logger, displayName, hostnameSafeName string) error {
	for _, slot := range identitySlots {
		value := displayName
		if slot.sanitized {
			value = hostnameSafeName
		}

		logger.Debug().Str("slot", slot.name).Str("value", value).Msg("scutil --set")

		if _, err := executeCommand(ctx, executor, "scutil", "--set", slot.name, value); err != nil {
			return &SlotError{Slot: slot.name, Err: err}
		}
	}

	return nil
}

// hasElevatedPrivilege reports whether the process runs as root. scutil
// --set requires it.
func hasElevatedPrivilege() bool {
	return os.Geteuid() == 0
}

// extractHardwareField extracts a field from system_profiler
// SPHardwareDataType JSON output.
func extractHardwareField(jsonOutput string, fieldFn func(spHardwareEntry) string) (string, error) {
	var hw spHardwareDataType
	if err := json.Unmarshal([]byte(jsonOutput), &hw); err != nil {
		return "", &ParseError{Source: "system_profiler JSON", Err: err}
	}

	if len(hw.SPHardwareDataType) == 0 {
		return "", errors.New("no hardware data found in JSON output")
	}

	value := fieldFn(hw.SPHardwareDataType[0])
	if value == "" {
		return "", errors.New("field is empty in hardware data")
	}

	return value, nil
}

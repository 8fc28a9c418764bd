//go:build windows

package fleetname

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// biosFirmwareMessage is the placeholder some BIOS/UEFI vendors ship instead
// of a real value.
const biosFirmwareMessage = "To be filled by O.E.M."

// readModelIdentifier retrieves the computer system product name using wmic,
// with a PowerShell CIM fallback for hosts where wmic is removed.
func readModelIdentifier(ctx context.Context, executor CommandExecutor, logger zerolog.Logger) (string, error) {
	output, err := executeCommand(ctx, executor, "wmic", "csproduct", "get", "Name", "/value")
	if err == nil {
		if value, parseErr := parseWmicValue(output, "Name="); parseErr == nil {
			return value, nil
		}
	}

	logger.Debug().Msg("wmic model lookup failed, trying PowerShell")

	output, err = executeCommand(ctx, executor, "powershell", "-Command",
		"Get-CimInstance -ClassName Win32_ComputerSystemProduct | Select-Object -ExpandProperty Name")
	if err != nil {
		return "", fmt.Errorf("%w: model identifier: %w", ErrMetadataUnavailable, err)
	}

	if value := strings.TrimSpace(output); value != "" && value != biosFirmwareMessage {
		return value, nil
	}

	return "", fmt.Errorf("%w: model identifier not reported", ErrMetadataUnavailable)
}

// readHardwareUUID retrieves the system UUID using wmic, with a PowerShell
// CIM fallback.
func readHardwareUUID(ctx context.Context, executor CommandExecutor, logger zerolog.Logger) (string, error) {
	output, err := executeCommand(ctx, executor, "wmic", "csproduct", "get", "UUID", "/value")
	if err == nil {
		if value, parseErr := parseWmicValue(output, "UUID="); parseErr == nil {
			return value, nil
		}
	}

	logger.Debug().Msg("wmic UUID lookup failed, trying PowerShell")

	output, err = executeCommand(ctx, executor, "powershell", "-Command",
		"Get-CimInstance -ClassName Win32_ComputerSystemProduct | Select-Object -ExpandProperty UUID")
	if err != nil {
		return "", fmt.Errorf("%w: hardware UUID: %w", ErrMetadataUnavailable, err)
	}

	if value := strings.TrimSpace(output); value != "" {
		return value, nil
	}

	return "", fmt.Errorf("%w: hardware UUID not reported", ErrMetadataUnavailable)
}

// readSerialNumber retrieves the BIOS serial number.
func readSerialNumber(ctx context.Context, executor CommandExecutor, logger zerolog.Logger) (string, error) {
	output, err := executeCommand(ctx, executor, "wmic", "bios", "get", "SerialNumber", "/value")
	if err == nil {
		if value, parseErr := parseWmicValue(output, "SerialNumber="); parseErr == nil {
			return value, nil
		}
	}

	logger.Debug().Msg("wmic serial lookup failed, trying PowerShell")

	output, err = executeCommand(ctx, executor, "powershell", "-Command",
		"Get-CimInstance -ClassName Win32_BIOS | Select-Object -ExpandProperty SerialNumber")
	if err != nil {
		return "", fmt.Errorf("%w: serial number: %w", ErrMetadataUnavailable, err)
	}

	if value := strings.TrimSpace(output); value != "" && value != biosFirmwareMessage {
		return value, nil
	}

	return "", fmt.Errorf("%w: serial number not reported", ErrMetadataUnavailable)
}

// applyIdentity renames the computer and sets the server comment as the
// display slot. Windows has no separate local hostname, so the sanitized
// name covers the single hostname slot; a reboot is required before the new
// name is visible on the network.
func applyIdentity(ctx context.Context, executor CommandExecutor, logger zerolog.Logger, displayName, hostnameSafeName string) error {
	logger.Debug().Str("slot", "ComputerName").Str("value", hostnameSafeName).Msg("Rename-Computer")

	if _, err := executeCommand(ctx, executor, "powershell", "-Command",
		fmt.Sprintf("Rename-Computer -NewName '%s' -Force", hostnameSafeName)); err != nil {
		return &SlotError{Slot: "ComputerName", Err: err}
	}

	logger.Debug().Str("slot", "Description").Str("value", displayName).Msg("srvcomment")

	if _, err := executeCommand(ctx, executor, "net", "config", "server",
		fmt.Sprintf("/srvcomment:%s", displayName)); err != nil {
		return &SlotError{Slot: "Description", Err: err}
	}

	return nil
}

// hasElevatedPrivilege reports whether the process runs elevated.
// Rename-Computer requires administrator rights; opening the raw physical
// drive only succeeds for elevated processes.
func hasElevatedPrivilege() bool {
	f, err := os.Open(`\\.\PHYSICALDRIVE0`)
	if err != nil {
		return false
	}
	f.Close()

	return true
}

// parseWmicValue extracts a value from wmic /value output with the given
// prefix.
func parseWmicValue(output, prefix string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			continue
		}

		value := strings.TrimSpace(strings.TrimPrefix(line, prefix))
		if value == "" || value == biosFirmwareMessage {
			continue
		}

		return value, nil
	}

	return "", &ParseError{Source: "wmic output", Err: fmt.Errorf("value with prefix %s not found", prefix)}
}

//go:build linux

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

// DMI sysfs locations, tried in order.
var (
	productNameLocations = []string{
		"/sys/class/dmi/id/product_name",
		"/sys/devices/virtual/dmi/id/product_name",
	}
	productUUIDLocations = []string{
		"/sys/class/dmi/id/product_uuid",
		"/sys/devices/virtual/dmi/id/product_uuid",
	}
	productSerialLocations = []string{
		"/sys/class/dmi/id/product_serial",
		"/sys/class/dmi/id/board_serial",
		"/sys/devices/virtual/dmi/id/product_serial",
	}
)

// readModelIdentifier retrieves the product name from DMI.
func readModelIdentifier(ctx context.Context, executor CommandExecutor, logger zerolog.Logger) (string, error) {
	value, err := readFirstValidFromLocations(productNameLocations, isValidDMIValue)
	if err != nil {
		return "", fmt.Errorf("%w: model identifier: %w", ErrMetadataUnavailable, err)
	}

	return value, nil
}

// readHardwareUUID retrieves the system UUID from DMI. Reading product_uuid
// requires root on most distributions, which the pipeline needs anyway to
// set the hostname.
func readHardwareUUID(ctx context.Context, executor CommandExecutor, logger zerolog.Logger) (string, error) {
	value, err := readFirstValidFromLocations(productUUIDLocations, isValidUUIDValue)
	if err != nil {
		return "", fmt.Errorf("%w: hardware UUID: %w", ErrMetadataUnavailable, err)
	}

	return value, nil
}

// readSerialNumber retrieves the product or board serial number from DMI.
func readSerialNumber(ctx context.Context, executor CommandExecutor, logger zerolog.Logger) (string, error) {
	value, err := readFirstValidFromLocations(productSerialLocations, isValidDMIValue)
	if err != nil {
		return "", fmt.Errorf("%w: serial number: %w", ErrMetadataUnavailable, err)
	}

	return value, nil
}

// identitySlots lists the hostnamectl slots in the order they are set. The
// pretty hostname is the display name and receives the unsanitized
// candidate; the static and transient hostnames receive the hostname-safe
// variant.
var identitySlots = []struct {
	flag      string
	sanitized bool
}{
	{"--pretty", false},
	{"--static", true},
	{"--transient", true},
}

// applyIdentity sets the three hostnamectl slots. The first failure aborts
// the run so a partial application surfaces as a SlotError.
func applyIdentity(ctx context.Context, executor CommandExecutor, logger zerolog.Logger, displayName, hostnameSafeName string) error {
	for _, slot := range identitySlots {
		value := displayName
		if slot.sanitized {
			value = hostnameSafeName
		}

		logger.Debug().Str("slot", slot.flag).Str("value", value).Msg("hostnamectl set-hostname")

		if _, err := executeCommand(ctx, executor, "hostnamectl", "set-hostname", slot.flag, value); err != nil {
			return &SlotError{Slot: strings.TrimPrefix(slot.flag, "--"), Err: err}
		}
	}

	return nil
}

// hasElevatedPrivilege reports whether the process runs as root.
// hostnamectl set-hostname requires it outside of polkit sessions.
func hasElevatedPrivilege() bool {
	return os.Geteuid() == 0
}

// readFirstValidFromLocations reads from multiple locations until a valid
// value is found.
func readFirstValidFromLocations(locations []string, validator func(string) bool) (string, error) {
	for _, location := range locations {
		data, err := os.ReadFile(location)
		if err != nil {
			continue
		}

		value := strings.TrimSpace(string(data))
		if validator(value) {
			return value, nil
		}
	}

	return "", fmt.Errorf("no valid value in %v", locations)
}

// isValidDMIValue rejects empty values and the OEM placeholder.
func isValidDMIValue(value string) bool {
	return value != "" && value != biosFirmwareMessage
}

// isValidUUIDValue rejects empty and all-zero UUIDs.
func isValidUUIDValue(value string) bool {
	return value != "" && value != "00000000-0000-0000-0000-000000000000"
}

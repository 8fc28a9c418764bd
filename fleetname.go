package fleetname

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HardwareReader obtains the two raw identity strings from the host's
// hardware-description facility.
type HardwareReader interface {
	// ReadModelIdentifier returns the vendor model identifier, e.g.
	// "Z1AU001HXB/A". It fails with ErrMetadataUnavailable when the
	// underlying query yields no parseable value.
	ReadModelIdentifier(ctx context.Context) (string, error)

	// ReadHardwareUUID returns the per-device hardware UUID. It fails with
	// ErrMetadataUnavailable when the underlying query yields no parseable
	// value.
	ReadHardwareUUID(ctx context.Context) (string, error)
}

// IdentityApplier applies a derived name to the operating system's identity
// settings. The display slot receives the unsanitized candidate name; both
// hostname slots receive the hostname-safe variant. A partial application
// must be reported as an error, never silently swallowed.
type IdentityApplier interface {
	ApplyIdentity(ctx context.Context, displayName, hostnameSafeName string) error
}

// Result carries everything the pipeline derived for one run. Nothing is
// persisted; every value is computed fresh on each invocation.
type Result struct {
	ModelIdentifier   string
	HardwareUUID      string
	CandidateName     string
	SanitizedHostname string
	Applied           bool
}

// Namer derives and applies the device name. Configure it with the With*
// methods before calling [Namer.Run]; the zero configuration reads from the
// real host and applies via the platform identity facility.
type Namer struct {
	executor    CommandExecutor
	logger      zerolog.Logger
	reader      HardwareReader
	applier     IdentityApplier
	privilegeFn func() bool
	digitCount  int
}

// New creates a Namer with default settings: the real command executor, the
// platform hardware reader and identity applier, the process privilege
// check, and [DefaultSuffixDigits] suffix characters. Logging is disabled
// until [Namer.WithLogger] is called.
func New() *Namer {
	return &Namer{
		executor:    &defaultCommandExecutor{Timeout: defaultTimeout},
		logger:      zerolog.Nop(),
		privilegeFn: hasElevatedPrivilege,
		digitCount:  DefaultSuffixDigits,
	}
}

// WithDigitCount sets the number of trailing hardware UUID characters used
// as the name suffix.
func (n *Namer) WithDigitCount(count int) *Namer {
	n.digitCount = count

	return n
}

// WithExecutor sets a custom [CommandExecutor], enabling deterministic
// testing without real system commands.
func (n *Namer) WithExecutor(executor CommandExecutor) *Namer {
	n.executor = executor

	return n
}

// WithReader replaces the platform hardware reader.
func (n *Namer) WithReader(reader HardwareReader) *Namer {
	n.reader = reader

	return n
}

// WithApplier replaces the platform identity applier.
func (n *Namer) WithApplier(applier IdentityApplier) *Namer {
	n.applier = applier

	return n
}

// WithPrivilegeCheck replaces the platform privilege check. The result is
// passed to [Validate] as an explicit parameter.
func (n *Namer) WithPrivilegeCheck(check func() bool) *Namer {
	n.privilegeFn = check

	return n
}

// WithLogger sets a [zerolog.Logger] for observability. The default is
// [zerolog.Nop], which disables all logging.
func (n *Namer) WithLogger(logger zerolog.Logger) *Namer {
	n.logger = logger

	return n
}

// Derive reads the hardware metadata and derives the candidate name and its
// hostname-safe variant without validating privilege or applying anything.
func (n *Namer) Derive(ctx context.Context) (Result, error) {
	reader := n.reader
	if reader == nil {
		reader = &systemReader{executor: n.executor, logger: n.logger}
	}

	model, err := reader.ReadModelIdentifier(ctx)
	if err != nil {
		return Result{}, metadataErr("model identifier", err)
	}

	hwUUID, err := reader.ReadHardwareUUID(ctx)
	if err != nil {
		return Result{}, metadataErr("hardware UUID", err)
	}

	// Hardware UUIDs are usually RFC 4122, but the derivation only slices
	// characters, so a non-standard layout is a warning and not an error.
	if _, parseErr := uuid.Parse(hwUUID); parseErr != nil {
		n.logger.Warn().Str("uuid", hwUUID).Msg("hardware UUID is not RFC 4122")
	}

	n.logger.Debug().
		Str("model", model).
		Str("uuid", hwUUID).
		Int("digits", n.digitCount).
		Msg("deriving device name")

	candidate, sanitized, err := DeriveNames(model, hwUUID, n.digitCount)
	if err != nil {
		return Result{}, err
	}

	return Result{
		ModelIdentifier:   model,
		HardwareUUID:      hwUUID,
		CandidateName:     candidate,
		SanitizedHostname: sanitized,
	}, nil
}

// Run executes the full pipeline: read metadata, derive the names, validate
// the result and the process privilege, then apply the identity. Control
// flow is strictly sequential with fail-fast error paths; every error is
// terminal for the run.
func (n *Namer) Run(ctx context.Context) (Result, error) {
	result, err := n.Derive(ctx)
	if err != nil {
		return result, err
	}

	if err := Validate(result.CandidateName, n.privilegeFn()); err != nil {
		return result, err
	}

	applier := n.applier
	if applier == nil {
		applier = &systemApplier{executor: n.executor, logger: n.logger}
	}

	n.logger.Info().
		Str("display_name", result.CandidateName).
		Str("hostname", result.SanitizedHostname).
		Msg("applying identity")

	if err := applier.ApplyIdentity(ctx, result.CandidateName, result.SanitizedHostname); err != nil {
		return result, fmt.Errorf("%w: %w", ErrApplyFailed, err)
	}

	result.Applied = true

	return result, nil
}

// metadataErr folds a reader failure into the ErrMetadataUnavailable
// taxonomy unless the reader already classified it.
func metadataErr(field string, err error) error {
	if errors.Is(err, ErrMetadataUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %s: %w", ErrMetadataUnavailable, field, err)
}

// systemReader reads hardware metadata from the running host. The platform
// files provide readModelIdentifier and readHardwareUUID.
type systemReader struct {
	executor CommandExecutor
	logger   zerolog.Logger
}

func (r *systemReader) ReadModelIdentifier(ctx context.Context) (string, error) {
	return readModelIdentifier(ctx, r.executor, r.logger)
}

func (r *systemReader) ReadHardwareUUID(ctx context.Context) (string, error) {
	return readHardwareUUID(ctx, r.executor, r.logger)
}

// systemApplier applies the identity via the platform's configuration
// facility. The platform files provide applyIdentity.
type systemApplier struct {
	executor CommandExecutor
	logger   zerolog.Logger
}

func (a *systemApplier) ApplyIdentity(ctx context.Context, displayName, hostnameSafeName string) error {
	return applyIdentity(ctx, a.executor, a.logger, displayName, hostnameSafeName)
}

// SerialNumber reads the hardware serial number from the host. It is not
// part of the naming pipeline; the lookup and status commands use it to
// cross-reference the device in the fleet inventory.
func SerialNumber(ctx context.Context, executor CommandExecutor, logger zerolog.Logger) (string, error) {
	return readSerialNumber(ctx, executor, logger)
}

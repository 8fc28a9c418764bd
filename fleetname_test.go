package fleetname

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReader returns fixed metadata.
type stubReader struct {
	model    string
	uuid     string
	modelErr error
	uuidErr  error
}

func (r *stubReader) ReadModelIdentifier(ctx context.Context) (string, error) {
	return r.model, r.modelErr
}

func (r *stubReader) ReadHardwareUUID(ctx context.Context) (string, error) {
	return r.uuid, r.uuidErr
}

// recordingApplier records what was applied.
type recordingApplier struct {
	displayName      string
	hostnameSafeName string
	called           bool
	err              error
}

func (a *recordingApplier) ApplyIdentity(ctx context.Context, displayName, hostnameSafeName string) error {
	a.called = true
	a.displayName = displayName
	a.hostnameSafeName = hostnameSafeName

	return a.err
}

func TestRunAppliesDerivedNames(t *testing.T) {
	applier := &recordingApplier{}

	namer := New().
		WithReader(&stubReader{model: "Z1AU001HXB/A", uuid: "ABCDE-1234-653894A"}).
		WithApplier(applier).
		WithPrivilegeCheck(func() bool { return true })

	result, err := namer.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, "Z1AU001HXBA-653894A", result.CandidateName)
	assert.Equal(t, "Z1AU001HXBA653894A", result.SanitizedHostname)

	assert.True(t, applier.called)
	assert.Equal(t, "Z1AU001HXBA-653894A", applier.displayName)
	assert.Equal(t, "Z1AU001HXBA653894A", applier.hostnameSafeName)
}

func TestRunFailsWithoutPrivilege(t *testing.T) {
	applier := &recordingApplier{}

	namer := New().
		WithReader(&stubReader{model: "Z1AU001HXB/A", uuid: "ABCDE-1234-653894A"}).
		WithApplier(applier).
		WithPrivilegeCheck(func() bool { return false })

	result, err := namer.Run(context.Background())
	require.ErrorIs(t, err, ErrInsufficientPrivilege)
	assert.Equal(t, ExitNoPrivilege, ExitCode(err))

	assert.False(t, applier.called, "applier must not run without privilege")
	assert.False(t, result.Applied)
}

func TestRunFailsOnShortUUID(t *testing.T) {
	applier := &recordingApplier{}

	namer := New().
		WithReader(&stubReader{model: "NUC11", uuid: "ABC"}).
		WithApplier(applier).
		WithPrivilegeCheck(func() bool { return true })

	_, err := namer.Run(context.Background())
	require.ErrorIs(t, err, ErrInvalidDigitCount)
	assert.Equal(t, ExitSuffixMismatch, ExitCode(err))
	assert.False(t, applier.called)
}

func TestRunReportsReaderFailure(t *testing.T) {
	namer := New().
		WithReader(&stubReader{modelErr: errors.New("no such field")}).
		WithApplier(&recordingApplier{}).
		WithPrivilegeCheck(func() bool { return true })

	_, err := namer.Run(context.Background())
	require.ErrorIs(t, err, ErrMetadataUnavailable)
	assert.Equal(t, ExitFailure, ExitCode(err))
}

func TestRunKeepsReaderClassification(t *testing.T) {
	// A reader that already returns ErrMetadataUnavailable is not re-wrapped.
	namer := New().
		WithReader(&stubReader{uuidErr: ErrMetadataUnavailable, model: "NUC11"}).
		WithPrivilegeCheck(func() bool { return true })

	_, err := namer.Run(context.Background())
	require.ErrorIs(t, err, ErrMetadataUnavailable)
}

func TestRunWrapsApplierFailure(t *testing.T) {
	applier := &recordingApplier{err: &SlotError{Slot: "HostName", Err: errors.New("exit status 1")}}

	namer := New().
		WithReader(&stubReader{model: "Z1AU001HXB/A", uuid: "ABCDE-1234-653894A"}).
		WithApplier(applier).
		WithPrivilegeCheck(func() bool { return true })

	result, err := namer.Run(context.Background())
	require.ErrorIs(t, err, ErrApplyFailed)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.False(t, result.Applied)

	var slotErr *SlotError
	require.ErrorAs(t, err, &slotErr)
	assert.Equal(t, "HostName", slotErr.Slot)
}

func TestRunAcceptsEmptyModel(t *testing.T) {
	applier := &recordingApplier{}

	namer := New().
		WithReader(&stubReader{model: "", uuid: "ABCDE-1234-653894A"}).
		WithApplier(applier).
		WithPrivilegeCheck(func() bool { return true })

	result, err := namer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "-653894A", result.CandidateName)
	assert.Equal(t, "653894A", result.SanitizedHostname)
	assert.True(t, applier.called)
}

func TestRunHonoursDigitCount(t *testing.T) {
	namer := New().
		WithDigitCount(4).
		WithReader(&stubReader{model: "NUC11", uuid: "ABCDE-1234-653894A"}).
		WithApplier(&recordingApplier{}).
		WithPrivilegeCheck(func() bool { return true })

	result, err := namer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NUC11-894A", result.CandidateName)
}

func TestDeriveDoesNotApply(t *testing.T) {
	applier := &recordingApplier{}

	namer := New().
		WithReader(&stubReader{model: "Z1AU001HXB/A", uuid: "ABCDE-1234-653894A"}).
		WithApplier(applier).
		WithPrivilegeCheck(func() bool { return false })

	result, err := namer.Derive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Z1AU001HXBA-653894A", result.CandidateName)
	assert.False(t, result.Applied)
	assert.False(t, applier.called, "Derive must not touch the applier or privilege check")
}

func TestDeriveAcceptsNonRFCUUID(t *testing.T) {
	// "ABCDE-1234-653894A" is not RFC 4122; derivation only slices
	// characters, so it must still succeed.
	namer := New().
		WithReader(&stubReader{model: "NUC11", uuid: "ABCDE-1234-653894A"})

	result, err := namer.Derive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NUC11-653894A", result.CandidateName)
}

package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

func TestFinalizeMetadataDisarmsGuardOnSuccess(t *testing.T) {
	output := &stubOutput{}

	dir := t.TempDir()
	path := filepath.Join(dir, "target.raw")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	guard := NewCleanupGuard()
	guard.RegisterTarget(path)

	err := FinalizeMetadata(context.Background(), output, v2vapi.Source{Name: "myvm"}, nil,
		v2vapi.TargetBusAssignment{}, v2vapi.GrantedCapabilities{}, v2vapi.Inspect{}, v2vapi.TargetFirmwareBIOS, guard)
	require.NoError(t, err)

	guard.Run()
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "target file should survive once metadata emission disarms the guard")
}

func TestFinalizeMetadataWrapsAdapterErrorAndLeavesGuardArmed(t *testing.T) {
	output := &stubOutput{createMetadataErr: errors.New("upload failed")}

	dir := t.TempDir()
	path := filepath.Join(dir, "target.raw")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	guard := NewCleanupGuard()
	guard.RegisterTarget(path)

	err := FinalizeMetadata(context.Background(), output, v2vapi.Source{}, nil,
		v2vapi.TargetBusAssignment{}, v2vapi.GrantedCapabilities{}, v2vapi.Inspect{}, v2vapi.TargetFirmwareBIOS, guard)
	require.Error(t, err)

	var pipelineErr *PipelineError
	assert.True(t, errors.As(err, &pipelineErr))
	assert.True(t, errors.Is(pipelineErr, CategoryMetadata))

	guard.Run()
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "target file should be cleaned up when metadata emission fails")
}

package localfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

func TestPrecheckCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	a := New(dir)

	require.NoError(t, a.Precheck(context.Background()))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPrepareTargetsNamesFilesByIndexAndFormat(t *testing.T) {
	a := New(t.TempDir())
	planned := []outputadapter.PlannedDisk{
		{Format: "qcow2"},
		{Format: "raw"},
	}

	targets, err := a.PrepareTargets(context.Background(), "myvm", planned, v2vapi.GrantedCapabilities{})
	require.NoError(t, err)
	require.Len(t, targets, 2)

	assert.Equal(t, filepath.Join(a.OutputDir, "myvm-disk1.qcow2"), targets[0].Path)
	assert.Equal(t, filepath.Join(a.OutputDir, "myvm-disk2.raw"), targets[1].Path)
}

func TestOverrideOutputFormatRespectsCLIFlag(t *testing.T) {
	a := New(t.TempDir())

	_, ok := a.OverrideOutputFormat(v2vapi.Overlay{})
	assert.False(t, ok)

	a.OutputFormat = "qcow2"
	format, ok := a.OverrideOutputFormat(v2vapi.Overlay{})
	assert.True(t, ok)
	assert.Equal(t, "qcow2", format)
}

func TestTransferFormatDerivesFromPathExtension(t *testing.T) {
	a := New(t.TempDir())
	assert.Equal(t, "qcow2", a.TransferFormat(v2vapi.NewTargetFilePath("/tmp/x.qcow2")))
	assert.Equal(t, "raw", a.TransferFormat(v2vapi.NewTargetFilePath("/tmp/x")))
}

func TestCreateMetadataWritesJSONDocument(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)

	err := a.CreateMetadata(context.Background(), outputadapter.MetadataParams{
		Source:   v2vapi.Source{Name: "myvm"},
		Firmware: v2vapi.TargetFirmwareUEFI,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "myvm.meta.json"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "myvm", decoded["name"])
	assert.Equal(t, "uefi", decoded["firmware"])
}

func TestSupportedFirmwareIncludesBothKinds(t *testing.T) {
	a := New(t.TempDir())
	supported := a.SupportedFirmware()
	assert.True(t, supported[v2vapi.TargetFirmwareBIOS])
	assert.True(t, supported[v2vapi.TargetFirmwareUEFI])
}

func TestPreserveOverlayIsNoOpWithoutDebugBundlePath(t *testing.T) {
	a := New(t.TempDir())
	assert.NoError(t, a.PreserveOverlay("/nonexistent"))
}

func TestPreserveOverlayCompressesIntoDebugBundle(t *testing.T) {
	dir := t.TempDir()
	overlayPath := filepath.Join(dir, "overlay.qcow2")
	require.NoError(t, os.WriteFile(overlayPath, []byte("some overlay bytes"), 0o644))

	a := New(dir)
	a.DebugBundlePath = filepath.Join(dir, "bundle")

	require.NoError(t, a.PreserveOverlay(overlayPath))

	_, err := os.Stat(a.DebugBundlePath + ".overlay.qcow2.zst")
	assert.NoError(t, err)
}

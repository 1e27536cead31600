package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

func TestEstimateOverlaySizesReducesForFreeSpace(t *testing.T) {
	overlays := []v2vapi.Overlay{
		v2vapi.NewOverlay(v2vapi.SourceDisk{ID: 0}, "/tmp/a.qcow2", "sda", 10*1024*1024*1024),
	}
	mountpoints := []v2vapi.MountpointStats{
		{MountPath: "/", FilesystemType: "ext4", Bsize: 1, Blocks: 10 * 1024 * 1024 * 1024, Bfree: 4 * 1024 * 1024 * 1024},
	}

	EstimateOverlaySizes(mountpoints, overlays)

	require.NotNil(t, overlays[0].Stats.EstimatedSize)
	estimated := *overlays[0].Stats.EstimatedSize
	assert.Less(t, estimated, overlays[0].VirtualSize)
	assert.Greater(t, estimated, int64(0))
}

func TestEstimateOverlaySizesNeverExceedsVirtualSize(t *testing.T) {
	overlays := []v2vapi.Overlay{
		v2vapi.NewOverlay(v2vapi.SourceDisk{ID: 0}, "/tmp/a.qcow2", "sda", 5*1024*1024*1024),
		v2vapi.NewOverlay(v2vapi.SourceDisk{ID: 1}, "/tmp/b.qcow2", "sdb", 15*1024*1024*1024),
	}
	mountpoints := []v2vapi.MountpointStats{
		{MountPath: "/", FilesystemType: "ext4", Bsize: 1, Blocks: 20 * 1024 * 1024 * 1024, Bfree: 18 * 1024 * 1024 * 1024},
	}

	EstimateOverlaySizes(mountpoints, overlays)

	for _, ov := range overlays {
		require.NotNil(t, ov.Stats.EstimatedSize)
		assert.LessOrEqual(t, *ov.Stats.EstimatedSize, ov.VirtualSize)
		assert.GreaterOrEqual(t, *ov.Stats.EstimatedSize, int64(0))
	}
}

func TestEstimateOverlaySizesSumNeverExceedsSourceTotal(t *testing.T) {
	overlays := []v2vapi.Overlay{
		v2vapi.NewOverlay(v2vapi.SourceDisk{ID: 0}, "/tmp/a.qcow2", "sda", 8*1024*1024*1024),
		v2vapi.NewOverlay(v2vapi.SourceDisk{ID: 1}, "/tmp/b.qcow2", "sdb", 12*1024*1024*1024),
	}
	mountpoints := []v2vapi.MountpointStats{
		{MountPath: "/", FilesystemType: "ext4", Bsize: 1, Blocks: 20 * 1024 * 1024 * 1024, Bfree: 10 * 1024 * 1024 * 1024},
	}
	srcTotal := overlays[0].VirtualSize + overlays[1].VirtualSize

	EstimateOverlaySizes(mountpoints, overlays)

	var sum int64
	for _, ov := range overlays {
		sum += *ov.Stats.EstimatedSize
	}
	assert.LessOrEqual(t, sum, srcTotal)
}

func TestEstimateOverlaySizesIgnoresNonTrimmableFilesystems(t *testing.T) {
	overlays := []v2vapi.Overlay{
		v2vapi.NewOverlay(v2vapi.SourceDisk{ID: 0}, "/tmp/a.qcow2", "sda", 10*1024*1024*1024),
	}
	mountpoints := []v2vapi.MountpointStats{
		{MountPath: "/", FilesystemType: "ntfs", Bsize: 1, Blocks: 10 * 1024 * 1024 * 1024, Bfree: 9 * 1024 * 1024 * 1024},
	}

	EstimateOverlaySizes(mountpoints, overlays)

	require.NotNil(t, overlays[0].Stats.EstimatedSize)
	assert.Equal(t, overlays[0].VirtualSize, *overlays[0].Stats.EstimatedSize)
}

func TestEstimateOverlaySizesNoOpWhenSourceTotalIsZero(t *testing.T) {
	overlays := []v2vapi.Overlay{
		{Disk: v2vapi.SourceDisk{ID: 0}, Path: "/tmp/a.qcow2", DeviceName: "sda", VirtualSize: 0, Stats: &v2vapi.OverlayStats{}},
	}
	mountpoints := []v2vapi.MountpointStats{
		{MountPath: "/", FilesystemType: "ext4", Bsize: 1, Blocks: 100, Bfree: 50},
	}

	EstimateOverlaySizes(mountpoints, overlays)

	assert.Nil(t, overlays[0].Stats.EstimatedSize)
}

package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/v2vconvert/v2v-convert/internal/diskutils"
	"github.com/v2vconvert/v2v-convert/pkg/appliance"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// CreateOverlays creates one qcow2 v3 copy-on-write overlay per source
// disk, backed by the disk's opaque URI, registered with guard for
// deletion on exit, and attached to the appliance with the
// cache/discard/copy-on-read settings the guest inspector needs.
func CreateOverlays(ctx context.Context, tempDir string, disks []v2vapi.SourceDisk, a appliance.Appliance, guard *CleanupGuard) ([]v2vapi.Overlay, error) {
	overlays := make([]v2vapi.Overlay, 0, len(disks))

	for i, disk := range disks {
		overlayFile, err := os.CreateTemp(tempDir, "v2v-overlay-*.qcow2")
		if err != nil {
			return nil, NewPipelineErrorWithCause(CategoryOverlay,
				fmt.Sprintf("failed to create temp file for overlay of disk %d", disk.ID), err)
		}
		overlayPath := overlayFile.Name()
		overlayFile.Close()
		os.Remove(overlayPath)
		guard.RegisterOverlay(overlayPath)

		if err := diskutils.CreateQcow2Overlay(diskutils.CreateQcow2OverlayOptions{
			OverlayPath:   overlayPath,
			BackingFile:   disk.URI,
			BackingFormat: disk.Format,
		}); err != nil {
			return nil, NewPipelineErrorWithCause(CategoryOverlay,
				fmt.Sprintf("failed to create overlay for disk %d", disk.ID), err)
		}

		info, err := diskutils.GetImageFileInfo(overlayPath)
		if err != nil {
			return nil, NewPipelineErrorWithCause(CategoryOverlay,
				fmt.Sprintf("failed to inspect overlay for disk %d", disk.ID), err)
		}

		if info.BackingFilename == "" {
			return nil, NewPipelineError(CategoryOverlay,
				fmt.Sprintf("overlay for disk %d has no backing file after creation", disk.ID))
		}

		if info.VirtualSize == 0 {
			return nil, NewPipelineError(CategoryOverlay, fmt.Sprintf(
				"disk %d has zero virtual size; this can happen when reading over ssh from a block device, check the source URI",
				disk.ID))
		}

		deviceName := v2vapi.DeviceName(i)
		overlay := v2vapi.NewOverlay(disk, overlayPath, deviceName, info.VirtualSize)
		if err := overlay.IsValid(); err != nil {
			return nil, NewPipelineErrorWithCause(CategoryOverlay, "overlay failed validation", err)
		}

		if err := a.AttachDisk(deviceName, overlayPath, "qcow2", appliance.DefaultAttachOptions()); err != nil {
			return nil, NewPipelineErrorWithCause(CategoryOverlay,
				fmt.Sprintf("failed to attach overlay for disk %d to appliance", disk.ID), err)
		}

		overlays = append(overlays, overlay)
	}

	return overlays, nil
}

// AttachSourceDisksInPlace is the in-place-mode counterpart of
// CreateOverlays: the source disks themselves are attached, with their
// declared format if any, using the same cache/discard settings but
// read-write and with no overlay file.
func AttachSourceDisksInPlace(disks []v2vapi.SourceDisk, a appliance.Appliance) error {
	for i, disk := range disks {
		deviceName := v2vapi.DeviceName(i)
		format := disk.Format
		if format == "" {
			format = "raw"
		}

		if err := a.AttachDisk(deviceName, disk.URI, format, appliance.DefaultAttachOptions()); err != nil {
			return NewPipelineErrorWithCause(CategoryOverlay,
				fmt.Sprintf("failed to attach source disk %d to appliance", disk.ID), err)
		}
	}

	return nil
}

package pipeline

import (
	"context"
	"fmt"

	"github.com/v2vconvert/v2v-convert/internal/diskutils"
	"github.com/v2vconvert/v2v-convert/internal/file"
	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// PlannedTarget bundles one overlay with its resolved format and assigned
// target file, the unit CopyDisks iterates over.
type PlannedTarget struct {
	Overlay       v2vapi.Overlay
	Format        string
	File          v2vapi.TargetFile
	Preallocation outputadapter.Preallocation
}

// CopyDisks copies every planned target, in order: verify the overlay's
// backing file, create the destination disk when needed, run the
// image-conversion subprocess, measure the actual size, and notify the
// output adapter. Guard registers every created target path for cleanup;
// call guard.Disarm() after metadata emission succeeds.
func CopyDisks(ctx context.Context, targets []PlannedTarget, output outputadapter.Adapter, compressed bool, guard *CleanupGuard) ([]v2vapi.TargetDisk, error) {
	result := make([]v2vapi.TargetDisk, 0, len(targets))

	for i, t := range targets {
		info, err := diskutils.GetImageFileInfo(t.Overlay.Path)
		if err != nil || info.BackingFilename == "" {
			return nil, NewPipelineError(CategoryCopy, fmt.Sprintf(
				"overlay for disk %d lost its backing file before copy", t.Overlay.Disk.ID))
		}

		if t.File.Kind == v2vapi.TargetFileKindPath {
			if err := prepareFileTarget(ctx, t, output, guard); err != nil {
				return nil, err
			}
		}

		transferFormat := output.TransferFormat(t.File)

		destination := t.File.Path
		if t.File.Kind == v2vapi.TargetFileKindURI {
			destination = t.File.URI
		}

		if err := diskutils.ConvertImage(diskutils.ConvertImageOptions{
			SourcePath:        t.Overlay.Path,
			SourceFormat:      "qcow2",
			DestinationPath:   destination,
			DestinationFormat: transferFormat,
			Compressed:        compressed,
		}); err != nil {
			return nil, NewPipelineErrorWithCause(CategoryCopy,
				fmt.Sprintf("failed to copy disk %d", t.Overlay.Disk.ID), err)
		}

		if t.File.Kind == v2vapi.TargetFileKindPath {
			size, err := file.Size(t.File.Path)
			if err == nil {
				t.Overlay.Stats.ActualSize = &size
			}
		}

		target := v2vapi.TargetDisk{File: t.File, Format: t.Format, Overlay: t.Overlay}

		if err := output.DiskCopied(ctx, t.File, i, len(targets)); err != nil {
			return nil, NewPipelineErrorWithCause(CategoryCopy,
				fmt.Sprintf("output adapter rejected completion of disk %d", i), err)
		}

		result = append(result, target)
	}

	return result, nil
}

func prepareFileTarget(ctx context.Context, t PlannedTarget, output outputadapter.Adapter, guard *CleanupGuard) error {
	isBlockDevice, err := file.IsBlockDevice(t.File.Path)
	if err != nil {
		return NewPipelineErrorWithCause(CategoryCopy,
			fmt.Sprintf("failed to check target path (%s)", t.File.Path), err)
	}
	if isBlockDevice {
		return nil
	}

	guard.RegisterTarget(t.File.Path)

	compat := ""
	if t.Format == "qcow2" {
		compat = "1.1"
	}

	if err := output.DiskCreate(ctx, outputadapter.DiskCreateOptions{
		Path:          t.File.Path,
		Format:        t.Format,
		Size:          t.Overlay.VirtualSize,
		Preallocation: t.Preallocation,
		Compat:        compat,
	}); err != nil {
		return NewPipelineErrorWithCause(CategoryCopy,
			fmt.Sprintf("failed to create target disk (%s)", t.File.Path), err)
	}

	return nil
}

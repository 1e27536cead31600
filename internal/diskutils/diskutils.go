// Package diskutils holds size constants and qemu-img wrappers shared by
// the overlay manager, the space estimator, and the copy engine.
package diskutils

import (
	"encoding/json"
	"fmt"

	"github.com/v2vconvert/v2v-convert/internal/shell"
)

const (
	KiB = 1024
	MiB = 1024 * 1024
	GiB = 1024 * 1024 * 1024
	TiB = 1024 * 1024 * 1024 * 1024
)

// ImageFileInfo is the subset of `qemu-img info --output json` this module
// cares about.
type ImageFileInfo struct {
	Format            string `json:"format"`
	VirtualSize       int64  `json:"virtual-size"`
	ActualSize        int64  `json:"actual-size"`
	BackingFilename   string `json:"backing-filename"`
	BackingFileFormat string `json:"backing-filename-format"`
}

// GetImageFileInfo shells out to qemu-img info and parses its JSON output.
func GetImageFileInfo(path string) (ImageFileInfo, error) {
	stdout, _, err := shell.Execute("qemu-img", "info", "--output", "json", path)
	if err != nil {
		return ImageFileInfo{}, fmt.Errorf("failed to check image file's disk format (%s):\n%w", path, err)
	}

	var info ImageFileInfo
	err = json.Unmarshal([]byte(stdout), &info)
	if err != nil {
		return ImageFileInfo{}, fmt.Errorf("failed to parse qemu-img info JSON (%s):\n%w", path, err)
	}

	return info, nil
}

// CreateQcow2OverlayOptions configures CreateQcow2Overlay.
type CreateQcow2OverlayOptions struct {
	// Path of the new overlay file.
	OverlayPath string
	// Opaque QEMU-compatible backing URI (the source disk).
	BackingFile string
	// Declared format of the backing file, if known.
	BackingFormat string
}

// CreateQcow2Overlay creates a qcow2 v3 copy-on-write overlay backed by the
// given URI.
func CreateQcow2Overlay(opts CreateQcow2OverlayOptions) error {
	createOpt := fmt.Sprintf("backing_file=%s,compat=1.1", opts.BackingFile)
	if opts.BackingFormat != "" {
		createOpt += fmt.Sprintf(",backing_fmt=%s", opts.BackingFormat)
	}

	_, _, err := shell.Execute("qemu-img", "create", "-f", "qcow2", "-o", createOpt, opts.OverlayPath)
	if err != nil {
		return fmt.Errorf("failed to create overlay (%s) backed by (%s):\n%w",
			opts.OverlayPath, opts.BackingFile, err)
	}

	return nil
}

// CreateEmptyDiskOptions configures CreateEmptyDisk, matching the
// parameters an output adapter's disk_create step needs.
type CreateEmptyDiskOptions struct {
	Path   string
	Format string
	Size   int64
	// Preallocation is "sparse", "preallocated", or "" (omitted).
	Preallocation string
	// Compat is "1.1" for qcow2 targets, "" otherwise.
	Compat string
}

// CreateEmptyDisk creates a new, empty disk image of the requested size and
// format, with no backing file.
func CreateEmptyDisk(opts CreateEmptyDiskOptions) error {
	var createOpts []string
	if opts.Preallocation != "" {
		createOpts = append(createOpts, "preallocation="+opts.Preallocation)
	}
	if opts.Compat != "" {
		createOpts = append(createOpts, "compat="+opts.Compat)
	}

	args := []string{"create", "-f", opts.Format}
	if len(createOpts) > 0 {
		joined := createOpts[0]
		for _, o := range createOpts[1:] {
			joined += "," + o
		}
		args = append(args, "-o", joined)
	}
	args = append(args, opts.Path, fmt.Sprintf("%d", opts.Size))

	_, _, err := shell.Execute("qemu-img", args...)
	if err != nil {
		return fmt.Errorf("failed to create disk (%s):\n%w", opts.Path, err)
	}

	return nil
}

// ConvertImageOptions configures ConvertImage.
type ConvertImageOptions struct {
	SourcePath      string
	SourceFormat    string
	DestinationPath string
	// DestinationFormat is the transfer format, which may differ from the
	// format the output adapter eventually stores the bytes as.
	DestinationFormat string
	Compressed        bool
}

// ConvertImage shells out to `qemu-img convert`, matching the exact flag
// set the copy engine requires: -n (skip target creation), explicit -f/-O,
// optional -c, and a fixed 64k sparseness granularity.
func ConvertImage(opts ConvertImageOptions) error {
	args := []string{"convert", "-n", "-f", opts.SourceFormat, "-O", opts.DestinationFormat}
	if opts.Compressed {
		args = append(args, "-c")
	}
	args = append(args, "-S", "64k", opts.SourcePath, opts.DestinationPath)

	_, _, err := shell.Execute("qemu-img", args...)
	if err != nil {
		return fmt.Errorf("failed to convert (%s) to (%s):\n%w", opts.SourcePath, opts.DestinationPath, err)
	}

	return nil
}

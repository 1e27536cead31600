// Package localfile implements outputadapter.Adapter for disks written
// straight to paths on the local filesystem; the simplest output adapter,
// selected by the CLI's --output-dir.
package localfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/v2vconvert/v2v-convert/internal/diskutils"
	"github.com/v2vconvert/v2v-convert/internal/file"
	"github.com/v2vconvert/v2v-convert/internal/logger"
	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// Adapter writes each target disk to OutputDir/<source-name>-disk<N>.<format>.
// It also implements outputadapter.OverlayPreserver: the driver calls
// PreserveOverlay once per overlay right after they are created, which
// zstd-compresses each one for later troubleshooting when DebugBundlePath
// is set and does nothing otherwise.
type Adapter struct {
	OutputDir       string
	OutputFormat    string // CLI --output-format override, "" if unset
	DebugBundlePath string

	metadataPath string
}

func New(outputDir string) *Adapter {
	return &Adapter{OutputDir: outputDir}
}

func (a *Adapter) Precheck(ctx context.Context) error {
	return os.MkdirAll(a.OutputDir, os.ModePerm)
}

func (a *Adapter) AsOptions() string {
	return fmt.Sprintf("localfile(dir=%s)", a.OutputDir)
}

func (a *Adapter) SupportedFirmware() map[v2vapi.TargetFirmware]bool {
	return map[v2vapi.TargetFirmware]bool{
		v2vapi.TargetFirmwareBIOS: true,
		v2vapi.TargetFirmwareUEFI: true,
	}
}

func (a *Adapter) CheckTargetFirmware(caps v2vapi.GrantedCapabilities, fw v2vapi.TargetFirmware) error {
	return nil
}

func (a *Adapter) OverrideOutputFormat(overlay v2vapi.Overlay) (string, bool) {
	if a.OutputFormat == "" {
		return "", false
	}
	return a.OutputFormat, true
}

func (a *Adapter) PrepareTargets(ctx context.Context, name string, planned []outputadapter.PlannedDisk, caps v2vapi.GrantedCapabilities) ([]v2vapi.TargetFile, error) {
	targets := make([]v2vapi.TargetFile, len(planned))

	for i, p := range planned {
		path := filepath.Join(a.OutputDir, fmt.Sprintf("%s-disk%d.%s", name, i+1, p.Format))
		targets[i] = v2vapi.NewTargetFilePath(path)
	}

	return targets, nil
}

func (a *Adapter) DiskCreate(ctx context.Context, opts outputadapter.DiskCreateOptions) error {
	return diskutils.CreateEmptyDisk(diskutils.CreateEmptyDiskOptions{
		Path:          opts.Path,
		Format:        opts.Format,
		Size:          opts.Size,
		Preallocation: string(opts.Preallocation),
		Compat:        opts.Compat,
	})
}

func (a *Adapter) TransferFormat(target v2vapi.TargetFile) string {
	ext := filepath.Ext(target.Path)
	if len(ext) > 1 {
		return ext[1:]
	}
	return "raw"
}

func (a *Adapter) DiskCopied(ctx context.Context, target v2vapi.TargetFile, index, total int) error {
	logger.Log.Debugf("localfile: disk %d/%d copied to %s", index+1, total, target.Path)
	return nil
}

func (a *Adapter) CreateMetadata(ctx context.Context, params outputadapter.MetadataParams) error {
	a.metadataPath = filepath.Join(a.OutputDir, params.Source.Name+".meta.json")

	metadata := struct {
		Name     string                     `json:"name"`
		Firmware v2vapi.TargetFirmware      `json:"firmware"`
		Disks    []v2vapi.TargetDisk        `json:"disks"`
		Buses    v2vapi.TargetBusAssignment `json:"busAssignment"`
	}{
		Name:     params.Source.Name,
		Firmware: params.Firmware,
		Disks:    params.Targets,
		Buses:    params.Buses,
	}

	encoded, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("localfile: encoding metadata:\n%w", err)
	}

	if err := os.WriteFile(a.metadataPath, encoded, 0o644); err != nil {
		return fmt.Errorf("localfile: writing metadata (%s):\n%w", a.metadataPath, err)
	}

	return nil
}

// PreserveOverlay writes overlayPath, zstd-compressed, to its own file
// <DebugBundlePath>.<overlay base name>.zst. The driver calls it for every
// overlay; it returns nil without writing anything when DebugBundlePath is
// empty (not part of the required output-adapter contract).
func (a *Adapter) PreserveOverlay(overlayPath string) error {
	if a.DebugBundlePath == "" {
		return nil
	}

	exists, err := file.PathExists(overlayPath)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("localfile: overlay to preserve does not exist (%s)", overlayPath)
	}

	src, err := os.Open(overlayPath)
	if err != nil {
		return fmt.Errorf("localfile: opening overlay (%s):\n%w", overlayPath, err)
	}
	defer src.Close()

	destPath := a.DebugBundlePath + "." + filepath.Base(overlayPath) + ".zst"
	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("localfile: creating debug bundle entry (%s):\n%w", destPath, err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return fmt.Errorf("localfile: initializing zstd writer:\n%w", err)
	}
	defer encoder.Close()

	if _, err := encoder.ReadFrom(src); err != nil {
		return fmt.Errorf("localfile: compressing overlay (%s):\n%w", overlayPath, err)
	}

	return nil
}

// Package pipeline implements the conversion pipeline orchestrator: host
// preflight, source opening, overlay management, guest inspection, space
// estimation, guest conversion, target layout, format resolution, copy,
// and metadata emission, run in that sequence.
package pipeline

import (
	"context"
	"fmt"

	"github.com/v2vconvert/v2v-convert/internal/logger"
	"github.com/v2vconvert/v2v-convert/pkg/appliance"
	"github.com/v2vconvert/v2v-convert/pkg/convertmodule"
	"github.com/v2vconvert/v2v-convert/pkg/inputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// Config bundles every option the driver needs across a single run, the Go
// equivalent of the CLI's parsed command line.
type Config struct {
	TempDir            string
	InPlace            bool
	PrintSource        bool
	PrintEstimate      bool
	MachineReadable    bool
	Compressed         bool
	OutputFormat       string
	Allocation         outputadapter.Preallocation
	OutputName         string
	NetworkMap         map[string]string
	BandwidthLimitKbps int
	Passphrases        map[string]string
	StaticIPs          []string
	Trim               bool
}

// Result is what a successful Run returns; callers only need it for
// logging/tests, the CLI layer mostly cares about the error.
type Result struct {
	Source   v2vapi.Source
	Targets  []v2vapi.TargetDisk
	Firmware v2vapi.TargetFirmware
	Caps     v2vapi.GrantedCapabilities
	Report   *EstimateReport
}

// Run drives the whole pipeline end to end, branching on in-place vs
// copying and copy vs estimate-only.
func Run(ctx context.Context, cfg Config, input inputadapter.Adapter, output outputadapter.Adapter, a appliance.Appliance, registry *convertmodule.Registry) (Result, error) {
	guard := NewCleanupGuard()
	defer guard.Run()

	source, disks, err := OpenSource(ctx, input, OpenSourceOptions{
		BandwidthLimitKbps: cfg.BandwidthLimitKbps,
		OutputName:         cfg.OutputName,
		NetworkMap:         cfg.NetworkMap,
	})
	if err != nil {
		return Result{}, err
	}

	if cfg.PrintSource {
		fmt.Println(RenderSource(source, disks))
		return Result{Source: source}, nil
	}

	if err := output.Precheck(ctx); err != nil {
		return Result{}, NewPipelineErrorWithCause(CategoryPreflight, "output adapter prerequisites not met", err)
	}

	if cfg.InPlace {
		return runInPlace(ctx, cfg, source, disks, output, a, registry, guard)
	}

	if err := CheckHostTempSpace(cfg.TempDir); err != nil {
		return Result{}, err
	}

	overlays, err := CreateOverlays(ctx, cfg.TempDir, disks, a, guard)
	if err != nil {
		return Result{}, err
	}

	preserveOverlaysForDebugging(overlays, output)

	if cfg.PrintEstimate {
		return runEstimateOnly(cfg, overlays)
	}

	inspect, err := InspectGuest(ctx, a, cfg.Passphrases)
	if err != nil {
		return Result{}, err
	}

	EstimateOverlaySizes(inspect.Mountpoints, overlays)

	requested := v2vapi.RequestedForCopyMode()
	granted, err := RunConversion(ctx, registry, convertmodule.ConvertParams{
		Appliance:   a,
		Inspect:     inspect,
		SourceDisks: disks,
		Output:      output,
		Requested:   requested,
		StaticIPs:   cfg.StaticIPs,
	}, a, true)
	if err != nil {
		return Result{}, err
	}

	if err := a.Shutdown(ctx); err != nil {
		return Result{}, NewPipelineErrorWithCause(CategoryConversion, "failed to shut down appliance", err)
	}

	buses := AssignBuses(disks, source.Removable, granted)

	firmware, err := ResolveTargetFirmware(source.Firmware, inspect, granted, output)
	if err != nil {
		return Result{}, err
	}

	planned, err := planTargets(ctx, source.Name, overlays, output, granted, cfg, guard)
	if err != nil {
		return Result{}, err
	}

	targets, err := CopyDisks(ctx, planned, output, cfg.Compressed, guard)
	if err != nil {
		return Result{}, err
	}

	if err := FinalizeMetadata(ctx, output, source, targets, buses, granted, inspect, firmware, guard); err != nil {
		return Result{}, err
	}

	return Result{Source: source, Targets: targets, Firmware: firmware, Caps: granted}, nil
}

func runInPlace(ctx context.Context, cfg Config, source v2vapi.Source, disks []v2vapi.SourceDisk, output outputadapter.Adapter, a appliance.Appliance, registry *convertmodule.Registry, guard *CleanupGuard) (Result, error) {
	if err := AttachSourceDisksInPlace(disks, a); err != nil {
		return Result{}, err
	}

	inspect, err := InspectGuest(ctx, a, cfg.Passphrases)
	if err != nil {
		return Result{}, err
	}

	requested := v2vapi.RequestedFromSource(source, disks)
	granted, err := RunConversion(ctx, registry, convertmodule.ConvertParams{
		Appliance:   a,
		Inspect:     inspect,
		SourceDisks: disks,
		Output:      output,
		Requested:   requested,
		StaticIPs:   cfg.StaticIPs,
	}, a, cfg.Trim)
	if err != nil {
		return Result{}, err
	}

	if err := a.Shutdown(ctx); err != nil {
		return Result{}, NewPipelineErrorWithCause(CategoryConversion, "failed to shut down appliance", err)
	}

	logger.Log.Info("in-place conversion complete")
	guard.Disarm()

	return Result{Source: source, Caps: granted}, nil
}

func runEstimateOnly(cfg Config, overlays []v2vapi.Overlay) (Result, error) {
	if err := MeasureOverlays(overlays); err != nil {
		return Result{}, err
	}

	report := BuildEstimateReport(overlays)

	if cfg.MachineReadable {
		rendered, err := RenderEstimateJSON(report)
		if err != nil {
			return Result{}, err
		}
		fmt.Println(rendered)
	} else {
		for i, size := range report.Disks {
			fmt.Printf("disk %d: %d bytes\n", i, size)
		}
		fmt.Printf("total: %d bytes\n", report.Total)
	}

	return Result{Report: &report}, nil
}

func planTargets(ctx context.Context, name string, overlays []v2vapi.Overlay, output outputadapter.Adapter, granted v2vapi.GrantedCapabilities, cfg Config, guard *CleanupGuard) ([]PlannedTarget, error) {
	formats := make([]string, len(overlays))
	planned := make([]outputadapter.PlannedDisk, len(overlays))

	for i, ov := range overlays {
		format, err := ResolveFormat(ov, output, ResolveFormatOptions{
			CLIOutputFormat: cfg.OutputFormat,
			Compressed:      cfg.Compressed,
		})
		if err != nil {
			return nil, err
		}

		formats[i] = format
		planned[i] = outputadapter.PlannedDisk{Format: format, Overlay: ov}
	}

	targetFiles, err := output.PrepareTargets(ctx, name, planned, granted)
	if err != nil {
		return nil, NewPipelineErrorWithCause(CategoryCopy, "output adapter failed to prepare targets", err)
	}

	if len(targetFiles) != len(overlays) {
		return nil, NewPipelineError(CategoryCopy, fmt.Sprintf(
			"%s: output adapter returned %d target(s) for %d overlay(s)",
			ErrTargetCountMismatch.Error(), len(targetFiles), len(overlays)))
	}

	result := make([]PlannedTarget, len(overlays))
	for i, ov := range overlays {
		result[i] = PlannedTarget{Overlay: ov, Format: formats[i], File: targetFiles[i], Preallocation: cfg.Allocation}
	}

	return result, nil
}

// preserveOverlaysForDebugging keeps a compressed copy of every overlay
// around for later troubleshooting, when the output adapter opts into that
// by implementing outputadapter.OverlayPreserver. A failure here is a
// warning, never fatal: it is a convenience on top of the conversion, not
// part of it.
func preserveOverlaysForDebugging(overlays []v2vapi.Overlay, output outputadapter.Adapter) {
	preserver, ok := output.(outputadapter.OverlayPreserver)
	if !ok {
		return
	}

	for _, ov := range overlays {
		if err := preserver.PreserveOverlay(ov.Path); err != nil {
			logger.Log.Warnf("failed to preserve overlay for disk %d: %v", ov.Disk.ID, err)
		}
	}
}

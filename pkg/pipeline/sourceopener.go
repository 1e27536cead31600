package pipeline

import (
	"context"
	"fmt"

	"github.com/v2vconvert/v2v-convert/internal/logger"
	"github.com/v2vconvert/v2v-convert/pkg/inputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// OpenSourceOptions carries the CLI overrides applied after the input
// adapter has produced its Source.
type OpenSourceOptions struct {
	BandwidthLimitKbps int
	OutputName         string
	NetworkMap         map[string]string
}

// OpenSource asks the input adapter for (source, disks), validates the
// fatal invariants, logs the non-fatal warnings, then applies CLI
// overrides.
func OpenSource(ctx context.Context, input inputadapter.Adapter, opts OpenSourceOptions) (v2vapi.Source, []v2vapi.SourceDisk, error) {
	if err := input.Precheck(ctx); err != nil {
		return v2vapi.Source{}, nil, NewPipelineErrorWithCause(CategorySourceInvariant,
			"input adapter prerequisites not met", err)
	}

	source, disks, err := input.Source(ctx, opts.BandwidthLimitKbps)
	if err != nil {
		return v2vapi.Source{}, nil, NewPipelineErrorWithCause(CategorySourceInvariant,
			"input adapter failed to produce source", err)
	}

	if err := source.IsValid(); err != nil {
		return v2vapi.Source{}, nil, NewPipelineErrorWithCause(CategorySourceInvariant,
			"source failed validation", err)
	}

	if err := v2vapi.ValidateSourceDisks(disks); err != nil {
		return v2vapi.Source{}, nil, NewPipelineErrorWithCause(CategorySourceInvariant,
			"source disks failed validation", err)
	}

	for _, warning := range source.Warnings() {
		logger.Log.Warn(warning)
	}

	source = source.WithRename(opts.OutputName)
	source = source.WithNetworkMap(opts.NetworkMap)

	return source, disks, nil
}

// RenderSource produces the human-readable rendering written for
// --print-source.
func RenderSource(source v2vapi.Source, disks []v2vapi.SourceDisk) string {
	out := fmt.Sprintf("name: %s\n", source.Name)
	if source.OriginalName != "" {
		out += fmt.Sprintf("original-name: %s\n", source.OriginalName)
	}
	out += fmt.Sprintf("hypervisor: %s\n", source.Hypervisor)
	out += fmt.Sprintf("memory: %d\n", source.MemoryBytes)
	out += fmt.Sprintf("vcpus: %d\n", source.VCPUs)
	out += fmt.Sprintf("firmware: %s\n", source.Firmware)

	for _, nic := range source.NICs {
		out += fmt.Sprintf("nic: %s on %s\n", nic.MAC, nic.VNetwork)
	}

	for _, disk := range disks {
		out += fmt.Sprintf("disk[%d]: uri=%s format=%s controller=%s\n", disk.ID, disk.URI, disk.Format, disk.Controller)
	}

	return out
}

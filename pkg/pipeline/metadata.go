package pipeline

import (
	"context"

	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// FinalizeMetadata emits VM metadata with the target disks, bus
// assignment, granted capabilities, inspection record, and firmware, then
// disarms guard so the copied targets survive process exit.
func FinalizeMetadata(ctx context.Context, output outputadapter.Adapter, source v2vapi.Source, targets []v2vapi.TargetDisk, buses v2vapi.TargetBusAssignment, caps v2vapi.GrantedCapabilities, inspect v2vapi.Inspect, firmware v2vapi.TargetFirmware, guard *CleanupGuard) error {
	err := output.CreateMetadata(ctx, outputadapter.MetadataParams{
		Source:   source,
		Targets:  targets,
		Buses:    buses,
		Caps:     caps,
		Inspect:  inspect,
		Firmware: firmware,
	})
	if err != nil {
		return NewPipelineErrorWithCause(CategoryMetadata, "failed to emit target metadata", err)
	}

	guard.Disarm()

	return nil
}

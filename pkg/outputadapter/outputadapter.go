// Package outputadapter defines the contract a target-specific exporter
// implements (local file, libvirt define, oVirt/RHV upload, OpenStack,
// QEMU run, ...). Concrete adapters beyond the two here (localfile,
// azureblob) are left to future work; this package carries the interface
// plus those two adapters that exercise it end to end.
package outputadapter

import (
	"context"

	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// Preallocation is the disk_create preallocation hint.
type Preallocation string

const (
	PreallocationNone   Preallocation = ""
	PreallocationSparse Preallocation = "sparse"
	PreallocationFull   Preallocation = "preallocated"
)

// DiskCreateOptions is the parameter set passed to Adapter.DiskCreate.
type DiskCreateOptions struct {
	Path          string
	Format        string
	Size          int64
	Preallocation Preallocation
	// Compat is "1.1" when Format is qcow2, empty otherwise.
	Compat string
}

// PlannedDisk is one (format, overlay) pair the core asks PrepareTargets to
// allocate a destination for.
type PlannedDisk struct {
	Format  string
	Overlay v2vapi.Overlay
}

// Adapter is the output-side contract every target exporter implements.
type Adapter interface {
	Precheck(ctx context.Context) error
	AsOptions() string

	// SupportedFirmware is the set of firmware kinds this adapter's target
	// can boot.
	SupportedFirmware() map[v2vapi.TargetFirmware]bool

	// CheckTargetFirmware gives the adapter a chance to reject the firmware
	// the target layout planner chose, given the granted capabilities.
	CheckTargetFirmware(caps v2vapi.GrantedCapabilities, fw v2vapi.TargetFirmware) error

	// OverrideOutputFormat lets the adapter force a specific format for one
	// overlay, taking precedence over every other format-resolver rule.
	// Returns ("", false) to decline.
	OverrideOutputFormat(overlay v2vapi.Overlay) (string, bool)

	// PrepareTargets decides destination paths/URIs for the planned disks,
	// possibly allocating remote slots. Must return one TargetFile per
	// planned disk, in the same order: a length mismatch is a programming
	// error.
	PrepareTargets(ctx context.Context, name string, planned []PlannedDisk, caps v2vapi.GrantedCapabilities) ([]v2vapi.TargetFile, error)

	// DiskCreate creates one output disk ahead of the copy. Not called for
	// block-device or URI targets.
	DiskCreate(ctx context.Context, opts DiskCreateOptions) error

	// TransferFormat is the format the copy engine should emit for target;
	// it may differ from target's final on-disk format.
	TransferFormat(target v2vapi.TargetFile) string

	// DiskCopied is the post-copy per-disk callback.
	DiskCopied(ctx context.Context, target v2vapi.TargetFile, index, total int) error

	// CreateMetadata emits the final domain/VM metadata.
	CreateMetadata(ctx context.Context, params MetadataParams) error
}

// ReadView restricts an Adapter to the read-only methods a guest-conversion
// module is allowed to call (supported firmware, format overrides), without
// exposing DiskCreate/PrepareTargets.
type ReadView interface {
	SupportedFirmware() map[v2vapi.TargetFirmware]bool
	OverrideOutputFormat(overlay v2vapi.Overlay) (string, bool)
}

// OverlayPreserver is an optional capability an Adapter may implement to
// keep a compressed copy of each overlay around for later troubleshooting,
// checked with a type assertion at the one call site that uses it since it
// is not part of every adapter's required contract.
type OverlayPreserver interface {
	PreserveOverlay(overlayPath string) error
}

// MetadataParams bundles everything CreateMetadata needs.
type MetadataParams struct {
	Source   v2vapi.Source
	Targets  []v2vapi.TargetDisk
	Buses    v2vapi.TargetBusAssignment
	Caps     v2vapi.GrantedCapabilities
	Inspect  v2vapi.Inspect
	Firmware v2vapi.TargetFirmware
}

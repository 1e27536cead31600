// Package inputadapter defines the contract a source-specific importer
// implements (OVA unpacker, VMware/VDDK puller, SSH/remote block, libvirt
// XML reader, ...). Concrete adapters beyond the two here (localdir,
// ociimage) are left to future work; this package carries the interface
// plus those two adapters that exercise it end to end.
package inputadapter

import (
	"context"

	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// Adapter is the input-side contract every source importer implements.
type Adapter interface {
	// Precheck validates prerequisites (tools, credentials) before any
	// other method is called.
	Precheck(ctx context.Context) error

	// AsOptions is a human-readable description of this adapter's
	// configuration, used in diagnostic messages.
	AsOptions() string

	// Source produces the source model. bandwidthLimitKbps is 0 for no
	// limit. Each returned disk's URI must be openable by the
	// image-conversion tool.
	Source(ctx context.Context, bandwidthLimitKbps int) (v2vapi.Source, []v2vapi.SourceDisk, error)
}

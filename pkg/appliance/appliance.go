// Package appliance defines the guest-filesystem agent the pipeline drives
// to inspect and modify a guest's disks. A real implementation launches a
// libguestfs-style mini-VM and is out of scope here; the interface exists so
// the pipeline can be exercised against pkg/appliance/fake in tests.
package appliance

import (
	"context"

	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// AttachOptions mirrors the cache/discard/copy-on-read settings required
// for every attached disk, whether it is an overlay or (in in-place mode)
// the source disk itself.
type AttachOptions struct {
	Cache      string // "unsafe" for overlays
	Discard    string // "besteffort"
	CopyOnRead bool
	ReadOnly   bool
}

// DefaultAttachOptions is the cache/discard/copy-on-read triple used for
// every attached disk.
func DefaultAttachOptions() AttachOptions {
	return AttachOptions{
		Cache:      "unsafe",
		Discard:    "besteffort",
		CopyOnRead: true,
	}
}

// Appliance is the guest-filesystem agent the inspector and converter
// driver stages drive. All calls are serialised by the single-threaded
// pipeline driver; no method needs to be safe for concurrent use by more
// than one caller.
type Appliance interface {
	// AttachDisk registers path (an overlay or, in in-place mode, a source
	// disk) under deviceName with the given format and attach options.
	// Must be called before Launch.
	AttachDisk(deviceName, path, format string, opts AttachOptions) error

	// Launch boots the appliance with all previously attached disks visible.
	Launch(ctx context.Context) error

	// UnlockEncryptedVolumes unlocks each encrypted volume named in
	// passphrases (device path -> passphrase) before mounting proceeds.
	UnlockEncryptedVolumes(passphrases map[string]string) error

	// Inspect mounts the guest's filesystems and returns the inspection
	// record, including per-mountpoint statvfs stats.
	Inspect(ctx context.Context) (v2vapi.Inspect, error)

	// Remount remounts mountPath with the "discard" option so a subsequent
	// Fstrim can release blocks back to the overlay.
	Remount(mountPath string) error

	// Fstrim issues an fstrim against mountPath. A failure here is a
	// warning at the call site, never fatal.
	Fstrim(mountPath string) error

	// Shutdown unmounts all filesystems and cleanly powers off the
	// appliance. Must be safe to call after a failed Launch or Inspect.
	Shutdown(ctx context.Context) error
}

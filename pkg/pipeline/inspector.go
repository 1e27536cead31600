package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/v2vconvert/v2v-convert/pkg/appliance"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

const (
	bootFreeSpaceMinBytes    = 50 * 1024 * 1024
	rootFreeSpaceMinBytes    = 50 * 1024 * 1024
	rootNoBootFreeMinBytes   = 100 * 1024 * 1024
	otherFreeSpaceMinBytes   = 10 * 1024 * 1024
	minFreeInodesWhenNonZero = 100
)

// InspectGuest launches the appliance, unlocks encrypted volumes, mounts
// filesystems, gathers per-mountpoint statvfs, and enforces the guest
// free-space invariants. Fatal on any violation.
func InspectGuest(ctx context.Context, a appliance.Appliance, passphrases map[string]string) (v2vapi.Inspect, error) {
	if err := a.Launch(ctx); err != nil {
		return v2vapi.Inspect{}, NewPipelineErrorWithCause(CategoryInspection, "failed to launch appliance", err)
	}

	if len(passphrases) > 0 {
		if err := a.UnlockEncryptedVolumes(passphrases); err != nil {
			return v2vapi.Inspect{}, NewPipelineErrorWithCause(CategoryInspection,
				"failed to unlock encrypted volumes", err)
		}
	}

	inspect, err := a.Inspect(ctx)
	if err != nil {
		return v2vapi.Inspect{}, NewPipelineErrorWithCause(CategoryInspection, "failed to inspect guest", err)
	}

	isWindows := strings.HasPrefix(strings.ToLower(inspect.Distro), "windows")
	hasSeparateBoot := hasMountpoint(inspect.Mountpoints, "/boot")

	for _, mp := range inspect.Mountpoints {
		if err := checkMountpointFreeSpace(mp, isWindows, hasSeparateBoot); err != nil {
			return v2vapi.Inspect{}, err
		}
	}

	return inspect, nil
}

func hasMountpoint(mountpoints []v2vapi.MountpointStats, path string) bool {
	for _, mp := range mountpoints {
		if mp.MountPath == path {
			return true
		}
	}
	return false
}

func checkMountpointFreeSpace(mp v2vapi.MountpointStats, isWindows, hasSeparateBoot bool) error {
	minBytes := otherFreeSpaceMinBytes

	switch {
	case mp.MountPath == "/boot":
		minBytes = bootFreeSpaceMinBytes
	case mp.MountPath == "/":
		if !hasSeparateBoot && !isWindows {
			minBytes = rootFreeSpaceMinBytes
		} else {
			minBytes = rootNoBootFreeMinBytes
		}
	}

	free := mp.FreeBytes()
	if free < int64(minBytes) {
		return NewPipelineError(CategoryInspection, fmt.Sprintf(
			"mountpoint %s has only %d bytes free, need at least %d", mp.MountPath, free, minBytes))
	}

	if mp.Files > 0 && mp.Ffree < minFreeInodesWhenNonZero {
		return NewPipelineError(CategoryInspection, fmt.Sprintf(
			"mountpoint %s has only %d free inodes, need at least %d", mp.MountPath, mp.Ffree, minFreeInodesWhenNonZero))
	}

	return nil
}

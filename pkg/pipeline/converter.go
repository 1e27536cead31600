package pipeline

import (
	"context"

	"github.com/v2vconvert/v2v-convert/internal/logger"
	"github.com/v2vconvert/v2v-convert/pkg/appliance"
	"github.com/v2vconvert/v2v-convert/pkg/convertmodule"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// nonTrimmableFilesystems are never remounted with discard.
var nonTrimmableFilesystems = map[string]bool{
	"swap":    true,
	"unknown": true,
	"":        true,
}

// RunConversion selects a module by matching the inspection record,
// invokes it with the requested capabilities, then (in copy mode, or when
// the caller asks in in-place/debug-overlay mode) trims every trimmable
// mountpoint. fstrim failures are warnings, never fatal.
func RunConversion(ctx context.Context, registry *convertmodule.Registry, params convertmodule.ConvertParams, a appliance.Appliance, trim bool) (v2vapi.GrantedCapabilities, error) {
	module, ok := registry.Match(params.Inspect)
	if !ok {
		return v2vapi.GrantedCapabilities{}, NewPipelineError(CategoryConversion, ErrNoMatchingModule.Error())
	}

	granted, err := module.Convert(ctx, params)
	if err != nil {
		return v2vapi.GrantedCapabilities{}, NewPipelineErrorWithCause(CategoryConversion,
			"guest-conversion module failed", err)
	}

	if err := granted.IsValid(); err != nil {
		return v2vapi.GrantedCapabilities{}, NewPipelineErrorWithCause(CategoryConversion,
			"guest-conversion module returned invalid capabilities", err)
	}

	if !params.Inspect.HasVirtioDrivers && granted.NetBus != v2vapi.NetBusVirtio {
		logger.Log.Warn("no virtio drivers installed in guest; network performance may be degraded")
	}

	if trim {
		trimMountpoints(params.Inspect.Mountpoints, a)
	}

	return granted, nil
}

func trimMountpoints(mountpoints []v2vapi.MountpointStats, a appliance.Appliance) {
	for _, mp := range mountpoints {
		if nonTrimmableFilesystems[mp.FilesystemType] {
			continue
		}

		if err := a.Remount(mp.MountPath); err != nil {
			logger.Log.Warnf("failed to remount %s with discard, skipping trim: %v", mp.MountPath, err)
			continue
		}

		if err := a.Fstrim(mp.MountPath); err != nil {
			logger.Log.Warnf("fstrim failed on %s: %v", mp.MountPath, err)
		}
	}
}

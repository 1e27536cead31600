package pipeline

import (
	"fmt"

	"github.com/v2vconvert/v2v-convert/internal/logger"
	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// AssignBuses places every source disk and removable device onto the
// granted block bus, in input order.
func AssignBuses(disks []v2vapi.SourceDisk, removables []v2vapi.RemovableDevice, caps v2vapi.GrantedCapabilities) v2vapi.TargetBusAssignment {
	assignment := v2vapi.TargetBusAssignment{}

	for i := range disks {
		assignment.Disks = append(assignment.Disks, v2vapi.TargetDiskSlot{
			DeviceName: v2vapi.DeviceName(i),
			Bus:        caps.BlockBus,
			Index:      i,
		})
	}

	for i := range removables {
		assignment.Removables = append(assignment.Removables, v2vapi.TargetDiskSlot{
			Bus:   caps.BlockBus,
			Index: i,
		})
	}

	return assignment
}

// ResolveTargetFirmware selects the target firmware: the source's hint if
// known, else the inspector's determination; the output adapter is given
// a chance to reject the result, and its supported-firmware set must
// contain it.
func ResolveTargetFirmware(hint v2vapi.FirmwareHint, inspect v2vapi.Inspect, caps v2vapi.GrantedCapabilities, output outputadapter.Adapter) (v2vapi.TargetFirmware, error) {
	var firmware v2vapi.TargetFirmware

	if hint == v2vapi.FirmwareHintUEFI || (hint == v2vapi.FirmwareHintUnknown && inspect.ResolvedFirmwareHint() == v2vapi.FirmwareHintUEFI) {
		firmware = v2vapi.TargetFirmwareUEFI
	} else {
		firmware = v2vapi.TargetFirmwareBIOS
	}

	supported := output.SupportedFirmware()
	if !supported[firmware] {
		return "", NewPipelineError(CategoryTargetLayout, fmt.Sprintf(
			"output does not support firmware %s", firmware))
	}

	if err := output.CheckTargetFirmware(caps, firmware); err != nil {
		return "", NewPipelineErrorWithCause(CategoryTargetLayout, "output rejected target firmware", err)
	}

	if firmware == v2vapi.TargetFirmwareUEFI {
		logger.Log.Info("target firmware: UEFI")
	}

	return firmware, nil
}

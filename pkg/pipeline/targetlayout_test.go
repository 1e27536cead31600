package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

func TestAssignBusesAssignsEveryDiskAndRemovable(t *testing.T) {
	disks := []v2vapi.SourceDisk{{ID: 0}, {ID: 1}}
	removables := []v2vapi.RemovableDevice{{}}
	caps := v2vapi.GrantedCapabilities{BlockBus: v2vapi.BlockBusVirtioSCSI}

	assignment := AssignBuses(disks, removables, caps)

	require.Len(t, assignment.Disks, 2)
	assert.Equal(t, "sda", assignment.Disks[0].DeviceName)
	assert.Equal(t, "sdb", assignment.Disks[1].DeviceName)
	assert.Equal(t, v2vapi.BlockBusVirtioSCSI, assignment.Disks[0].Bus)
	assert.Equal(t, 0, assignment.Disks[0].Index)
	assert.Equal(t, 1, assignment.Disks[1].Index)

	require.Len(t, assignment.Removables, 1)
	assert.Equal(t, v2vapi.BlockBusVirtioSCSI, assignment.Removables[0].Bus)
}

func TestResolveTargetFirmwareUsesSourceHintWhenKnown(t *testing.T) {
	fw, err := ResolveTargetFirmware(v2vapi.FirmwareHintUEFI, v2vapi.Inspect{}, v2vapi.GrantedCapabilities{}, &stubOutput{})
	require.NoError(t, err)
	assert.Equal(t, v2vapi.TargetFirmwareUEFI, fw)
}

func TestResolveTargetFirmwareFallsBackToInspectionWhenHintUnknown(t *testing.T) {
	inspect := v2vapi.Inspect{Firmware: v2vapi.InspectFirmware{IsUEFI: true}}
	fw, err := ResolveTargetFirmware(v2vapi.FirmwareHintUnknown, inspect, v2vapi.GrantedCapabilities{}, &stubOutput{})
	require.NoError(t, err)
	assert.Equal(t, v2vapi.TargetFirmwareUEFI, fw)
}

func TestResolveTargetFirmwareDefaultsToBIOS(t *testing.T) {
	fw, err := ResolveTargetFirmware(v2vapi.FirmwareHintUnknown, v2vapi.Inspect{}, v2vapi.GrantedCapabilities{}, &stubOutput{})
	require.NoError(t, err)
	assert.Equal(t, v2vapi.TargetFirmwareBIOS, fw)
}

func TestResolveTargetFirmwareFailsWhenOutputDoesNotSupportIt(t *testing.T) {
	output := &stubOutput{supported: map[v2vapi.TargetFirmware]bool{v2vapi.TargetFirmwareBIOS: true}}

	_, err := ResolveTargetFirmware(v2vapi.FirmwareHintUEFI, v2vapi.Inspect{}, v2vapi.GrantedCapabilities{}, output)
	require.Error(t, err)

	var pipelineErr *PipelineError
	assert.True(t, errors.As(err, &pipelineErr))
	assert.True(t, errors.Is(pipelineErr, CategoryTargetLayout))
}

func TestResolveTargetFirmwareFailsWhenOutputRejects(t *testing.T) {
	output := &stubOutput{checkFirmwareErr: errors.New("unsupported combination")}

	_, err := ResolveTargetFirmware(v2vapi.FirmwareHintBIOS, v2vapi.Inspect{}, v2vapi.GrantedCapabilities{}, output)
	assert.Error(t, err)
}

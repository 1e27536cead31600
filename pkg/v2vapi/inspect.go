package v2vapi

// InspectFirmware is the firmware the inspector actually found inside the
// guest, with optional UEFI details (e.g. the ESP's GUID).
type InspectFirmware struct {
	IsUEFI      bool
	UEFIDetails string
}

// Inspect is the output of the guest inspector. The core treats this mostly
// opaquely, inspecting only Firmware, Distro, and ProductName; everything
// else exists for the guest-conversion module to consume.
type Inspect struct {
	Distro      string
	ProductName string
	Firmware    InspectFirmware
	// InstalledPackages is a free-form summary the guest-conversion module
	// uses to decide what to add/remove; the core never interprets it.
	InstalledPackages []string
	Mountpoints       []MountpointStats
	// HasVirtioDrivers records whether the guest already carries virtio
	// drivers, used to decide whether "no virtio drivers installed" should
	// be surfaced as a warning after conversion.
	HasVirtioDrivers bool
}

// ResolvedFirmwareHint converts the inspector's firmware finding into a
// FirmwareHint, for use when the source's own hint was Unknown.
func (i Inspect) ResolvedFirmwareHint() FirmwareHint {
	if i.Firmware.IsUEFI {
		return FirmwareHintUEFI
	}

	return FirmwareHintBIOS
}

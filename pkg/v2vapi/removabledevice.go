package v2vapi

// RemovableDeviceKind distinguishes the two removable device types the
// target layout planner has to assign a bus slot to.
type RemovableDeviceKind string

const (
	RemovableDeviceKindCDROM     RemovableDeviceKind = "cdrom"
	RemovableDeviceKindFloppyISO RemovableDeviceKind = "floppy"
)

// RemovableDevice is a non-disk block device (CD-ROM, floppy) that still
// needs a bus assignment in the target domain.
type RemovableDevice struct {
	Kind RemovableDeviceKind `yaml:"kind" json:"kind"`
}

func (d RemovableDevice) IsValid() error {
	switch d.Kind {
	case RemovableDeviceKindCDROM, RemovableDeviceKindFloppyISO:
		return nil
	default:
		return errInvalidRemovableDeviceKind(d.Kind)
	}
}

func errInvalidRemovableDeviceKind(kind RemovableDeviceKind) error {
	return &invalidEnumError{field: "removable device kind", value: string(kind)}
}

package v2vapi

import "fmt"

// ControllerKind is the bus the source disk was attached to.
type ControllerKind struct {
	kind  controllerKindTag
	other string
}

type controllerKindTag int

const (
	ControllerIDE controllerKindTag = iota
	ControllerSATA
	ControllerVirtioBlk
	ControllerVirtioSCSI
	ControllerOther
)

func NewControllerKind(kind controllerKindTag) ControllerKind {
	return ControllerKind{kind: kind}
}

func NewOtherControllerKind(tag string) ControllerKind {
	return ControllerKind{kind: ControllerOther, other: tag}
}

func (c ControllerKind) String() string {
	switch c.kind {
	case ControllerIDE:
		return "ide"
	case ControllerSATA:
		return "sata"
	case ControllerVirtioBlk:
		return "virtio-blk"
	case ControllerVirtioSCSI:
		return "virtio-scsi"
	case ControllerOther:
		return fmt.Sprintf("other(%s)", c.other)
	default:
		return "unknown"
	}
}

// SourceDisk is the immutable per-disk record the input adapter produces.
type SourceDisk struct {
	// URI is the opaque QEMU-compatible locator for this disk (a local
	// path, an nbd:// URI, an https:// URI, ...). Must be non-empty.
	URI        string
	// Format is the disk's declared format, if the input adapter knows it.
	Format     string
	// ID is this disk's position among the source's disks; must be unique
	// across the source.
	ID         int
	Controller ControllerKind
	// ExportName is the NBD export name, when URI refers to an NBD server
	// multiplexing several disks over one connection.
	ExportName string
}

func (d SourceDisk) IsValid() error {
	if d.URI == "" {
		return fmt.Errorf("source disk %d: URI must not be empty", d.ID)
	}

	return nil
}

// ValidateSourceDisks checks the cross-disk invariant that all disk IDs in
// disks are unique.
func ValidateSourceDisks(disks []SourceDisk) error {
	seen := make(map[int]struct{}, len(disks))

	for _, d := range disks {
		if err := d.IsValid(); err != nil {
			return err
		}

		if _, ok := seen[d.ID]; ok {
			return fmt.Errorf("duplicate source disk id %d", d.ID)
		}
		seen[d.ID] = struct{}{}
	}

	return nil
}

package v2vapi

import "fmt"

// OverlayStats holds the mutable, filled-in-later fields of an Overlay: an
// upper-bound estimate (filled by the space estimator) and the measured
// actual size (filled by the copy engine). Held behind a pointer so Overlay
// itself can be passed and returned by value while still sharing one
// mutable cell.
type OverlayStats struct {
	EstimatedSize *int64
	ActualSize    *int64
}

// Overlay is the mutable wrapper around one SourceDisk: a freshly created
// qcow2 copy-on-write file plus the bookkeeping the rest of the pipeline
// needs.
type Overlay struct {
	Disk SourceDisk
	// Path is the overlay qcow2 file's path in the configured temp
	// directory.
	Path string
	// DeviceName is the synthetic device name assigned to this overlay
	// (sda, sdb, ..., sdaa, ...).
	DeviceName string
	// VirtualSize is the backing file's virtual size in bytes; must be > 0.
	VirtualSize int64
	Stats       *OverlayStats
}

func NewOverlay(disk SourceDisk, path string, deviceName string, virtualSize int64) Overlay {
	return Overlay{
		Disk:        disk,
		Path:        path,
		DeviceName:  deviceName,
		VirtualSize: virtualSize,
		Stats:       &OverlayStats{},
	}
}

func (o Overlay) IsValid() error {
	if o.Path == "" {
		return fmt.Errorf("overlay for disk %d: path must not be empty", o.Disk.ID)
	}
	if o.VirtualSize <= 0 {
		return fmt.Errorf("overlay for disk %d: virtual size must be > 0, got %d", o.Disk.ID, o.VirtualSize)
	}

	return nil
}

// DeviceName returns the base-26, leading-letter-shifted device name
// suffix for index i: 0 -> "sda", 1 -> "sdb", ..., 25 -> "sdz",
// 26 -> "sdaa", 27 -> "sdab", .... z is followed by aa, not ba.
func DeviceName(i int) string {
	return "sd" + base26Letters(i)
}

func base26Letters(i int) string {
	if i < 0 {
		panic(fmt.Sprintf("negative device index %d", i))
	}

	// This is a bijective base-26 numeral system (no digit for zero;
	// 'a'..'z' represent 1..26), which is exactly why 'z' rolls over to
	// 'aa' rather than 'ba': ordinary base-26 would need a 27th symbol to
	// represent what bijective base-26 writes as two digits.
	var letters []byte
	n := i + 1
	for n > 0 {
		n--
		letters = append([]byte{byte('a' + n%26)}, letters...)
		n /= 26
	}

	return string(letters)
}

package v2vapi

import "fmt"

// CPUTopology is the optional socket/core/thread breakdown of a source's
// vCPU count.
type CPUTopology struct {
	Sockets int `yaml:"sockets" json:"sockets"`
	Cores   int `yaml:"cores" json:"cores"`
	Threads int `yaml:"threads" json:"threads"`
}

// IsValid checks that each dimension is at least 1. It does not check
// consistency against the source's vCPU count; that cross-field check is a
// warning, not a validation failure (see Source.IsValid).
func (t CPUTopology) IsValid() error {
	if t.Sockets < 1 {
		return fmt.Errorf("cpu topology sockets must be >= 1, got %d", t.Sockets)
	}
	if t.Cores < 1 {
		return fmt.Errorf("cpu topology cores must be >= 1, got %d", t.Cores)
	}
	if t.Threads < 1 {
		return fmt.Errorf("cpu topology threads must be >= 1, got %d", t.Threads)
	}

	return nil
}

// VCPUs returns the number of vCPUs this topology implies.
func (t CPUTopology) VCPUs() int {
	return t.Sockets * t.Cores * t.Threads
}

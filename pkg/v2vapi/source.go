package v2vapi

import (
	"fmt"

	"github.com/google/uuid"
)

// Source is the immutable record describing the guest as read from input
// metadata.
type Source struct {
	Name         string
	OriginalName string
	Description  string
	Hypervisor   Hypervisor
	MemoryBytes  int64
	VCPUs        int
	Topology     *CPUTopology
	CPUVendor    string
	CPUModel     string
	NICs         []NIC
	Removable    []RemovableDevice
	Video        VideoAdapter
	Firmware     FirmwareHint
	// Genid is the VM generation ID, preserved verbatim through to output
	// adapters that understand it (e.g. libvirt, RHV).
	Genid uuid.UUID
}

// IsValid checks the fatal invariants a source record must satisfy before
// conversion can proceed. Topology/vCPU mismatch and an `Other` hypervisor
// tag are warnings, surfaced separately via Warnings(), not validation
// failures.
func (s Source) IsValid() error {
	if s.Name == "" {
		return fmt.Errorf("source name must not be empty")
	}
	if s.MemoryBytes <= 0 {
		return fmt.Errorf("source memory must be positive, got %d", s.MemoryBytes)
	}
	if s.VCPUs < 1 {
		return fmt.Errorf("source vcpu count must be >= 1, got %d", s.VCPUs)
	}
	if s.Topology != nil {
		if err := s.Topology.IsValid(); err != nil {
			return fmt.Errorf("invalid cpu topology:\n%w", err)
		}
	}
	for i, nic := range s.NICs {
		if err := nic.IsValid(); err != nil {
			return fmt.Errorf("invalid nic[%d]:\n%w", i, err)
		}
	}
	for i, rd := range s.Removable {
		if err := rd.IsValid(); err != nil {
			return fmt.Errorf("invalid removable device[%d]:\n%w", i, err)
		}
	}
	if err := s.Video.IsValid(); err != nil {
		return err
	}
	if err := s.Firmware.IsValid(); err != nil {
		return err
	}

	return nil
}

// Warnings returns the set of non-fatal problems with s: an `Other`
// hypervisor tag, and a topology/vCPU mismatch.
func (s Source) Warnings() []string {
	var warnings []string

	if s.Hypervisor.IsOther() {
		warnings = append(warnings, fmt.Sprintf("unrecognized source hypervisor (%s)", s.Hypervisor))
	}

	if s.Topology != nil && s.Topology.VCPUs() != s.VCPUs {
		warnings = append(warnings, fmt.Sprintf(
			"cpu topology (sockets=%d cores=%d threads=%d = %d vcpus) does not match declared vcpu count (%d)",
			s.Topology.Sockets, s.Topology.Cores, s.Topology.Threads, s.Topology.VCPUs(), s.VCPUs))
	}

	return warnings
}

// WithRename returns a copy of s with its name overridden, per the CLI's
// --output-name rename rule.
func (s Source) WithRename(outputName string) Source {
	if outputName == "" {
		return s
	}

	s.OriginalName = s.Name
	s.Name = outputName
	return s
}

// WithNetworkMap returns a copy of s with every NIC's network rewritten
// through networkMap.
func (s Source) WithNetworkMap(networkMap map[string]string) Source {
	if len(networkMap) == 0 {
		return s
	}

	remapped := make([]NIC, len(s.NICs))
	for i, nic := range s.NICs {
		remapped[i] = nic.RemapNetwork(networkMap)
	}
	s.NICs = remapped

	return s
}

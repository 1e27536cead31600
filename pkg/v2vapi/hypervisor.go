package v2vapi

import "fmt"

// Hypervisor identifies the source hypervisor a guest was exported from.
type Hypervisor struct {
	kind  hypervisorKind
	other string
}

type hypervisorKind int

const (
	HypervisorVMware hypervisorKind = iota
	HypervisorHyperV
	HypervisorXen
	HypervisorKVM
	HypervisorOther
)

func NewHypervisor(kind hypervisorKind) Hypervisor {
	return Hypervisor{kind: kind}
}

// NewOtherHypervisor builds the `Other(string)` variant for a hypervisor tag
// this module doesn't otherwise recognize.
func NewOtherHypervisor(tag string) Hypervisor {
	return Hypervisor{kind: HypervisorOther, other: tag}
}

func (h Hypervisor) IsOther() bool {
	return h.kind == HypervisorOther
}

func (h Hypervisor) String() string {
	switch h.kind {
	case HypervisorVMware:
		return "vmware"
	case HypervisorHyperV:
		return "hyperv"
	case HypervisorXen:
		return "xen"
	case HypervisorKVM:
		return "kvm"
	case HypervisorOther:
		return fmt.Sprintf("other(%s)", h.other)
	default:
		return "unknown"
	}
}

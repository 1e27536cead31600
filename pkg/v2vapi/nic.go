package v2vapi

import (
	"fmt"

	"github.com/asaskevich/govalidator"
)

// NIC describes one source network interface.
type NIC struct {
	// MAC is the interface's MAC address, if known.
	MAC string `yaml:"mac,omitempty" json:"mac,omitempty"`
	// VNetwork is the source-side network/port-group name. The CLI's
	// network-map override rewrites this field.
	VNetwork string `yaml:"vnetwork" json:"vnetwork"`
}

func (n NIC) IsValid() error {
	if n.MAC != "" && !govalidator.IsMAC(n.MAC) {
		return fmt.Errorf("invalid NIC MAC address (%s)", n.MAC)
	}
	if n.VNetwork == "" {
		return fmt.Errorf("NIC network name must not be empty")
	}

	return nil
}

// RemapNetwork returns a copy of n with its source network replaced per a
// user-supplied network map (source name -> target name). NICs whose
// network isn't present in the map are returned unchanged.
func (n NIC) RemapNetwork(networkMap map[string]string) NIC {
	if target, ok := networkMap[n.VNetwork]; ok {
		n.VNetwork = target
	}

	return n
}

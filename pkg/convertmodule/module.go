// Package convertmodule defines the guest-conversion module contract
// (install virtio drivers, rewrite boot configuration) and an ordered
// registry the converter-driver stage matches against. Distro-specific
// driver-injection and bootloader work beyond linuxgeneric and
// windowsgeneric is left to future work; those two are sufficient to
// exercise the capability-negotiation contract end to end.
package convertmodule

import (
	"context"

	"github.com/v2vconvert/v2v-convert/pkg/appliance"
	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// ConvertParams bundles the arguments the converter-driver stage passes
// to a matched module's Convert.
type ConvertParams struct {
	Appliance   appliance.Appliance
	Inspect     v2vapi.Inspect
	SourceDisks []v2vapi.SourceDisk
	Output      outputadapter.ReadView
	Requested   v2vapi.RequestedCapabilities
	StaticIPs   []string
}

// Module is the guest-conversion contract every conversion module implements.
type Module interface {
	// Matches reports whether this module knows how to convert the guest
	// described by inspect.
	Matches(inspect v2vapi.Inspect) bool

	// Convert mutates the mounted guest filesystem and returns the
	// capabilities it was actually able to grant.
	Convert(ctx context.Context, params ConvertParams) (v2vapi.GrantedCapabilities, error)
}

// Registry is an ordered list of modules; the first Matches wins, a
// distro/type dispatch pattern generalized to a registered list rather
// than a fixed switch statement.
type Registry struct {
	modules []Module
}

func NewRegistry(modules ...Module) *Registry {
	return &Registry{modules: modules}
}

func (r *Registry) Register(m Module) {
	r.modules = append(r.modules, m)
}

// Match returns the first registered module whose Matches returns true, and
// false if none do.
func (r *Registry) Match(inspect v2vapi.Inspect) (Module, bool) {
	for _, m := range r.modules {
		if m.Matches(inspect) {
			return m, true
		}
	}

	return nil, false
}

// Package linuxgeneric is a guest-conversion module matching Linux guests
// whose inspected distro tag is one of knownDistros (rhel, centos, rocky,
// almalinux, fedora, azurelinux, mariner, ubuntu, debian, sles, opensuse);
// any other distro tag is not matched. It is sufficient to exercise the capability-
// negotiation contract end to end without modelling every distro's
// driver-injection specifics.
package linuxgeneric

import (
	"context"
	"fmt"

	"github.com/v2vconvert/v2v-convert/pkg/convertmodule"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

var knownDistros = map[string]bool{
	"rhel": true, "centos": true, "rocky": true, "almalinux": true,
	"fedora": true, "azurelinux": true, "mariner": true,
	"ubuntu": true, "debian": true, "sles": true, "opensuse": true,
}

// Module grants virtio everywhere and writes a firstboot payload that
// rewrites network configuration on first boot, standing in for the
// real per-distro driver-injection and bootloader work this module
// leaves out of scope.
type Module struct {
	FirstbootArchivePath string
}

func New(firstbootArchivePath string) *Module {
	return &Module{FirstbootArchivePath: firstbootArchivePath}
}

func (m *Module) Matches(inspect v2vapi.Inspect) bool {
	return knownDistros[inspect.Distro]
}

func (m *Module) Convert(ctx context.Context, params convertmodule.ConvertParams) (v2vapi.GrantedCapabilities, error) {
	granted := v2vapi.GrantedCapabilities{
		BlockBus: v2vapi.BlockBusVirtioSCSI,
		NetBus:   v2vapi.NetBusVirtio,
		Video:    v2vapi.VideoAdapterVirtio,
	}

	if req := params.Requested.BlockBus; req != nil {
		granted.BlockBus = *req
	}
	if req := params.Requested.NetBus; req != nil {
		granted.NetBus = *req
	}
	if req := params.Requested.Video; req != nil {
		granted.Video = *req
	}

	if m.FirstbootArchivePath != "" {
		if err := m.writeFirstbootArchive(params); err != nil {
			return v2vapi.GrantedCapabilities{}, fmt.Errorf("linuxgeneric: %w", err)
		}
	}

	return granted, nil
}

func (m *Module) writeFirstbootArchive(params convertmodule.ConvertParams) error {
	script := "#!/bin/sh\n# regenerate network configuration for virtio-net interfaces\nudevadm trigger --action=add\n"

	payloads := []convertmodule.FirstbootPayload{
		{
			Path: "etc/v2v-firstboot.d/10-network.sh",
			Mode: 0o755,
			Data: []byte(script),
		},
	}

	return convertmodule.BuildFirstbootArchive(m.FirstbootArchivePath, payloads)
}

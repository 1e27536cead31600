// Package windowsgeneric is a guest-conversion module matching any Windows
// guest the inspector identified, mirroring linuxgeneric's role for the
// other major guest family.
package windowsgeneric

import (
	"context"
	"fmt"
	"strings"

	"github.com/v2vconvert/v2v-convert/pkg/convertmodule"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// Module grants the SATA/e1000 pair by default: injecting virtio drivers
// into an offline Windows registry hive is real work this stub does not
// attempt, so it only claims devices Windows boots without driver
// injection.
type Module struct {
	FirstbootArchivePath string
}

func New(firstbootArchivePath string) *Module {
	return &Module{FirstbootArchivePath: firstbootArchivePath}
}

func (m *Module) Matches(inspect v2vapi.Inspect) bool {
	return strings.HasPrefix(strings.ToLower(inspect.Distro), "windows")
}

func (m *Module) Convert(ctx context.Context, params convertmodule.ConvertParams) (v2vapi.GrantedCapabilities, error) {
	granted := v2vapi.GrantedCapabilities{
		BlockBus: v2vapi.BlockBusSATA,
		NetBus:   v2vapi.NetBusE1000,
		Video:    v2vapi.VideoAdapterVGA,
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
		if err := m.writeFirstbootArchive(); err != nil {
			return v2vapi.GrantedCapabilities{}, fmt.Errorf("windowsgeneric: %w", err)
		}
	}

	return granted, nil
}

func (m *Module) writeFirstbootArchive() error {
	payloads := []convertmodule.FirstbootPayload{
		{
			Path: "v2v-firstboot/install-virtio.cmd",
			Mode: 0o644,
			Data: []byte("@echo off\r\nrem placeholder for virtio driver installation on first boot\r\n"),
		},
	}

	return convertmodule.BuildFirstbootArchive(m.FirstbootArchivePath, payloads)
}

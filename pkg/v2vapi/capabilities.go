package v2vapi

// BlockBus is the virtual disk controller the target will use.
type BlockBus string

const (
	BlockBusIDE        BlockBus = "ide"
	BlockBusSATA       BlockBus = "sata"
	BlockBusVirtioBlk  BlockBus = "virtio-blk"
	BlockBusVirtioSCSI BlockBus = "virtio-scsi"
)

func (b BlockBus) IsValid() error {
	switch b {
	case BlockBusIDE, BlockBusSATA, BlockBusVirtioBlk, BlockBusVirtioSCSI:
		return nil
	default:
		return &invalidEnumError{field: "block bus", value: string(b)}
	}
}

// NetBus is the virtual NIC model the target will use.
type NetBus string

const (
	NetBusE1000   NetBus = "e1000"
	NetBusRTL8139 NetBus = "rtl8139"
	NetBusVirtio  NetBus = "virtio-net"
)

func (b NetBus) IsValid() error {
	switch b {
	case NetBusE1000, NetBusRTL8139, NetBusVirtio:
		return nil
	default:
		return &invalidEnumError{field: "net bus", value: string(b)}
	}
}

// RequestedCapabilities is what the driver asks the guest-conversion module
// for: all unset in copy mode, taken from the source's current
// configuration in in-place mode.
type RequestedCapabilities struct {
	BlockBus *BlockBus
	NetBus   *NetBus
	Video    *VideoAdapter
}

// GrantedCapabilities is always fully determined by the conversion module.
type GrantedCapabilities struct {
	BlockBus BlockBus
	NetBus   NetBus
	Video    VideoAdapter
}

func (g GrantedCapabilities) IsValid() error {
	if err := g.BlockBus.IsValid(); err != nil {
		return err
	}
	if err := g.NetBus.IsValid(); err != nil {
		return err
	}
	return g.Video.IsValid()
}

// RequestedFromSource builds the in-place-mode RequestedCapabilities: taken
// from the source's first disk's controller and the source's video
// adapter, since in-place mode has no conversion module free to choose.
func RequestedFromSource(source Source, disks []SourceDisk) RequestedCapabilities {
	req := RequestedCapabilities{}

	if len(disks) > 0 {
		bus := controllerToBlockBus(disks[0].Controller)
		req.BlockBus = &bus
	}

	video := source.Video
	req.Video = &video

	return req
}

func controllerToBlockBus(c ControllerKind) BlockBus {
	switch c.kind {
	case ControllerIDE:
		return BlockBusIDE
	case ControllerSATA:
		return BlockBusSATA
	case ControllerVirtioBlk:
		return BlockBusVirtioBlk
	case ControllerVirtioSCSI:
		return BlockBusVirtioSCSI
	default:
		return BlockBusVirtioSCSI
	}
}

// RequestedForCopyMode is the permissive, all-None request used in copy
// mode: the conversion module is free to grant whatever it judges best
// for the guest.
func RequestedForCopyMode() RequestedCapabilities {
	return RequestedCapabilities{}
}

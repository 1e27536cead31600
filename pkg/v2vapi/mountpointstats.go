package v2vapi

// MountpointStats is the per-mounted-filesystem record gathered via statvfs
// after the appliance has mounted the guest's filesystems.
type MountpointStats struct {
	Device         string
	MountPath      string
	FilesystemType string
	// Bsize is the filesystem block size in bytes.
	Bsize int64
	// Blocks is the total number of blocks.
	Blocks uint64
	// Bfree is the number of free blocks.
	Bfree uint64
	// Bavail is the number of blocks available to unprivileged users.
	Bavail uint64
	// Files is the total number of inodes, or 0 if not tracked by this
	// filesystem type.
	Files uint64
	// Ffree is the number of free inodes.
	Ffree uint64
}

// TotalBytes returns blocks * bsize.
func (m MountpointStats) TotalBytes() int64 {
	return int64(m.Blocks) * m.Bsize
}

// FreeBytes returns bfree * bsize.
func (m MountpointStats) FreeBytes() int64 {
	return int64(m.Bfree) * m.Bsize
}

// fstrimCapableFilesystems is the set of filesystem types fstrim is
// expected to actually reclaim space on; everything else (including ntfs)
// contributes zero to the space estimate.
var fstrimCapableFilesystems = map[string]bool{
	"ext2": true,
	"ext3": true,
	"ext4": true,
	"xfs":  true,
}

// TrimExpectedToSucceed reports whether fstrim is expected to actually
// reclaim free space on this filesystem type.
func (m MountpointStats) TrimExpectedToSucceed() bool {
	return fstrimCapableFilesystems[m.FilesystemType]
}

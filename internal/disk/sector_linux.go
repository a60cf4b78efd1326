//go:build linux
// +build linux

package disk

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/ostafen/partlet/internal/fs"
)

// logicalSectorSize queries the logical block size of a block device via
// the BLKSSZGET ioctl. Returns 0 when the ioctl does not apply, e.g. for
// regular image files.
func logicalSectorSize(f fs.File) uint32 {
	osf, ok := f.(*os.File)
	if !ok {
		return 0
	}

	size, err := unix.IoctlGetUint32(int(osf.Fd()), unix.BLKSSZGET)
	if err != nil {
		return 0
	}
	return size
}

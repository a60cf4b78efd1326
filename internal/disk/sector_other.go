//go:build !linux
// +build !linux

package disk

import "github.com/ostafen/partlet/internal/fs"

func logicalSectorSize(fs.File) uint32 {
	return 0
}

//go:build !linux
// +build !linux

package fuse

import (
	"fmt"
	"io"
)

func Mount(mountpoint string, r io.ReaderAt, entries []FileEntry) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}

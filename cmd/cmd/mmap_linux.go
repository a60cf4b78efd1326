//go:build linux
// +build linux

package cmd

import (
	"bytes"
	"io"

	"github.com/ostafen/partlet/internal/mmap"
)

// mapSource maps the whole source into memory and returns a positioned view
// over the mapping. The returned closer unmaps the region.
func mapSource(path string) (io.ReaderAt, io.Closer, error) {
	m, err := mmap.NewMmapFile(path)
	if err != nil {
		return nil, nil, err
	}
	return bytes.NewReader(m.Data), m, nil
}

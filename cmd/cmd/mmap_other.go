//go:build !linux
// +build !linux

package cmd

import (
	"errors"
	"io"
)

func mapSource(path string) (io.ReaderAt, io.Closer, error) {
	return nil, nil, errors.New("mmap is only supported on linux")
}

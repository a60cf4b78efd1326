// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package disk

import (
	"fmt"
	"io"
	"os"

	"github.com/ostafen/partlet/internal/fs"
)

// Source is an opened disk image file or raw block device.
type Source struct {
	Path       string
	Size       int64
	SectorSize uint32 // logical sector size of a device; 0 when unknown
	IsDevice   bool

	file fs.File
}

// Open opens a disk image or device for reading. Device paths are
// normalized first (on Windows, "C:" becomes `\\.\C:` and is opened through
// the raw volume API). For block devices the logical sector size is queried
// from the kernel, so callers can pass it to the partition readers instead
// of guessing.
func Open(path string) (*Source, error) {
	path = NormalizeVolumePath(path)

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	src := &Source{
		Path: path,
		Size: fi.Size(),
		file: f,
	}
	if fi.Mode()&os.ModeDevice != 0 {
		src.IsDevice = true
		src.SectorSize = logicalSectorSize(f)
	}
	return src, nil
}

// Reader returns the sequential view of the source, positioned wherever the
// last operation left it.
func (s *Source) Reader() io.ReadSeeker {
	return s.file
}

// ReaderAt returns the positioned view of the source, safe to share across
// section readers.
func (s *Source) ReaderAt() io.ReaderAt {
	return s.file
}

func (s *Source) Close() error {
	return s.file.Close()
}

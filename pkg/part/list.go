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
package part

import (
	"fmt"
	"io"

	"github.com/ostafen/partlet/pkg/reader"
)

// MBRRead selects which MBR partition tables ListPartitions accepts.
type MBRRead uint8

const (
	// ReadMBRModern accepts a plain, modern MBR when no protective entry
	// is found.
	ReadMBRModern MBRRead = iota

	// ReadMBRNever requires a GPT to be present; a plain MBR is reported
	// as not found. The protective MBR is allowed but ignored.
	ReadMBRNever
)

// GPTRead selects which GPT partition tables ListPartitions accepts.
type GPTRead uint8

const (
	// ReadGPTRevisionOne accepts a valid revision 1.0 GPT.
	ReadGPTRevisionOne GPTRead = iota

	// ReadGPTNever skips GPT reading even behind a protective MBR, which is
	// then returned literally as a one-entry table.
	ReadGPTNever
)

// Options configures ListPartitions. The zero value reads any modern table
// type and guesses the sector size, which is what nearly every caller wants.
type Options struct {
	MBR MBRRead
	GPT GPTRead

	// SectorSize is the disc's sector size in bytes. When zero, the first
	// byte of the protective MBR entry is used as the sector size for GPT
	// reading; for plain MBR, 512 is always assumed.
	SectorSize uint16
}

// ListPartitions reads the partition table of the disk image or device
// behind r, which must be positioned anywhere (it is rewound first).
//
// The boot sector is read from absolute offset 0 and its 0x55AA signature
// verified (ErrHeaderNotFound otherwise). If the MBR holds exactly one
// protective entry, the GPT at LBA 1 is read according to opts.GPT;
// otherwise the MBR table itself is returned, unless opts.MBR forbids it.
//
// Either the complete validated partition list is returned, or a single
// error; a table that fails any check never yields a partial result.
func ListPartitions(r io.ReadSeeker, opts Options) ([]Partition, error) {
	table, err := ListTable(r, opts)
	if err != nil {
		return nil, err
	}
	return table.Partitions, nil
}

// ListTable is ListPartitions plus table-level metadata (scheme, disk GUID).
func ListTable(r io.ReadSeeker, opts Options) (*Table, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to boot sector: %w", err)
	}

	sector := make([]byte, MBRSize)
	if _, err := io.ReadFull(r, sector); err != nil {
		return nil, fmt.Errorf("reading boot sector: %w", err)
	}

	if sector[510] != 0x55 || sector[511] != 0xAA {
		return nil, fmt.Errorf("%w: missing 55 AA boot signature", ErrHeaderNotFound)
	}

	partitions, err := ParseMBR(sector)
	if err != nil {
		return nil, err
	}

	if len(partitions) != 1 || !IsProtective(partitions[0]) {
		if opts.MBR == ReadMBRNever {
			return nil, fmt.Errorf("%w: no GPT behind a non-protective MBR", ErrHeaderNotFound)
		}
		return &Table{Scheme: SchemeMBR, Partitions: partitions}, nil
	}

	if opts.GPT == ReadGPTNever {
		return &Table{Scheme: SchemeMBR, Partitions: partitions}, nil
	}

	sectorSize := uint64(opts.SectorSize)
	if sectorSize == 0 {
		sectorSize = partitions[0].FirstByte
	}
	return ReadGPT(r, sectorSize)
}

// OpenPartition returns a reader over the byte range of p, clamped so that
// it can never read outside the partition. The returned reader borrows r:
// the two must not be used concurrently.
func OpenPartition(r io.ReadSeeker, p Partition) (*reader.RangeReader, error) {
	return reader.NewRangeReader(r, p.FirstByte, p.Len)
}

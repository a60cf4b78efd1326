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

// Package part reads MBR and GPT partition tables from a seekable byte
// source, such as a disk image file or a raw block device.
package part

import (
	"fmt"

	"github.com/ostafen/partlet/pkg/util/format"
)

// Scheme identifies the partition table type an entry was read from.
type Scheme uint8

const (
	SchemeMBR Scheme = iota
	SchemeGPT
)

func (s Scheme) String() string {
	switch s {
	case SchemeMBR:
		return "MBR"
	case SchemeGPT:
		return "GPT"
	default:
		return "UNKNOWN"
	}
}

// Attributes holds the table-specific metadata of a partition entry.
// The only implementations are MBRAttributes and GPTAttributes; consumers
// are expected to type-switch over the two.
type Attributes interface {
	Scheme() Scheme
}

// MBRAttributes describes a classic 16-byte MBR partition record.
type MBRAttributes struct {
	Bootable bool // status byte 0x80
	TypeCode byte // partition type ID (e.g., 0x83 for Linux, 0xEE for protective)
}

func (MBRAttributes) Scheme() Scheme { return SchemeMBR }

// GPTAttributes describes a GPT partition entry. The GUID fields are kept
// in their raw mixed-endian on-disk layout; use TypeUUID and PartitionUUID
// for display.
type GPTAttributes struct {
	TypeGUID      [16]byte
	PartitionGUID [16]byte
	Attributes    [8]byte // raw attribute bitfield, not interpreted
	Name          string  // decoded from the UTF-16LE name field, up to 36 code units
}

func (GPTAttributes) Scheme() Scheme { return SchemeGPT }

// Partition is a single entry of a partition table.
//
// ID is the zero-based physical slot of the entry within its table: empty
// slots are skipped entirely, so a table with entries in slots 0 and 2
// yields two partitions with IDs 0 and 2.
//
// FirstByte and Len are always derived from the entry's LBA fields and the
// sector size; FirstByte+Len never overflows 64 bits.
type Partition struct {
	ID        int
	FirstByte uint64
	Len       uint64
	Attrs     Attributes
}

func (p Partition) String() string {
	switch attrs := p.Attrs.(type) {
	case MBRAttributes:
		bootable := "No"
		if attrs.Bootable {
			bootable = "Yes"
		}
		return fmt.Sprintf("Partition %d (MBR):\n"+
			"  Bootable: %s\n"+
			"  Partition Type: 0x%02X\n"+
			"  First Byte: %d\n"+
			"  Size: %d bytes (%s)",
			p.ID, bootable, attrs.TypeCode, p.FirstByte, p.Len,
			format.FormatBytes(int64(p.Len)))
	case GPTAttributes:
		return fmt.Sprintf("Partition %d (GPT):\n"+
			"  Name: %q\n"+
			"  Type GUID: %s\n"+
			"  Partition GUID: %s\n"+
			"  First Byte: %d\n"+
			"  Size: %d bytes (%s)",
			p.ID, attrs.Name, attrs.TypeUUID(), attrs.PartitionUUID(),
			p.FirstByte, p.Len, format.FormatBytes(int64(p.Len)))
	default:
		return fmt.Sprintf("Partition %d", p.ID)
	}
}

// Table is the result of reading a partition table from a source.
type Table struct {
	Scheme     Scheme
	DiskGUID   [16]byte // GPT only; zero for MBR tables
	Partitions []Partition
}

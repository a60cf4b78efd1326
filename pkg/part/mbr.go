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
	"encoding/binary"
	"fmt"
)

// The MBR boot sector is always 512 bytes, regardless of the disc's real
// sector size, and the byte extents of its entries are expressed in
// 512-byte units.
//
//	+------------------------+--------+
//	| Bootstrap code area    | 0x000  |
//	| Disk signature         | 0x1B8  |
//	| Reserved               | 0x1BC  |
//	| Partition entry 1      | 0x1BE  |
//	| Partition entry 2      | 0x1CE  |
//	| Partition entry 3      | 0x1DE  |
//	| Partition entry 4      | 0x1EE  |
//	| Boot signature (55 AA) | 0x1FE  |
//	+------------------------+--------+
const (
	MBRSize = 512

	mbrSectorSize  = 512
	mbrFirstEntry  = 446
	mbrEntrySize   = 16
	mbrEntryCount  = 4
	mbrStatusClear = 0x00
	mbrStatusBoot  = 0x80
)

// ParseMBR parses the four partition records of a 512-byte boot sector.
//
// Empty slots (type code 0) are skipped and produce no output; the ID of
// each returned partition is its physical slot number, so the result may be
// shorter than four entries and non-contiguous. The boot signature at
// offset 0x1FE is not checked here; ListPartitions does that before
// trusting the sector at all.
func ParseMBR(sector []byte) ([]Partition, error) {
	if len(sector) != MBRSize {
		return nil, fmt.Errorf("boot sector must be %d bytes, got %d", MBRSize, len(sector))
	}

	partitions := make([]Partition, 0, mbrEntryCount)

	for id := 0; id < mbrEntryCount; id++ {
		entry := sector[mbrFirstEntry+id*mbrEntrySize:][:mbrEntrySize]

		status := entry[0]
		if status != mbrStatusClear && status != mbrStatusBoot {
			return nil, fmt.Errorf("%w in partition %d: 0x%02x", ErrInvalidStatusCode, id, status)
		}

		typeCode := entry[4]
		if typeCode == 0 {
			continue
		}

		firstLBA := binary.LittleEndian.Uint32(entry[8:12])
		sectors := binary.LittleEndian.Uint32(entry[12:16])

		partitions = append(partitions, Partition{
			ID:        id,
			FirstByte: uint64(firstLBA) * mbrSectorSize,
			Len:       uint64(sectors) * mbrSectorSize,
			Attrs: MBRAttributes{
				Bootable: status == mbrStatusBoot,
				TypeCode: typeCode,
			},
		})
	}
	return partitions, nil
}

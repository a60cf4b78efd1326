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
	"hash/crc32"
	"unicode/utf16"
)

// mbrEntry describes one 16-byte record for buildBootSector.
type mbrEntry struct {
	slot     int
	status   byte
	typeCode byte
	firstLBA uint32
	sectors  uint32
}

// buildBootSector assembles a 512-byte boot sector with the given entries
// and a valid 55 AA signature.
func buildBootSector(entries ...mbrEntry) []byte {
	sector := make([]byte, 512)
	for _, e := range entries {
		rec := sector[446+e.slot*16:][:16]
		rec[0] = e.status
		rec[4] = e.typeCode
		binary.LittleEndian.PutUint32(rec[8:12], e.firstLBA)
		binary.LittleEndian.PutUint32(rec[12:16], e.sectors)
	}
	sector[510] = 0x55
	sector[511] = 0xAA
	return sector
}

// protectiveBootSector is the boot sector of a GPT disk: a single 0xEE
// entry in slot 0 starting at LBA 1.
func protectiveBootSector() []byte {
	return buildBootSector(mbrEntry{slot: 0, typeCode: 0xEE, firstLBA: 1, sectors: 0xFFFFFFFF})
}

// gptPart describes one 128-byte entry for buildGPTImage. Name holds raw
// UTF-16 code units so tests can produce invalid sequences.
type gptPart struct {
	slot     int
	typeGUID [16]byte
	partGUID [16]byte
	firstLBA uint64
	lastLBA  uint64
	attrs    [8]byte
	name     []uint16
}

func nameUnits(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

var testTypeGUID = [16]byte{
	0xaf, 0x3d, 0xc6, 0x0f, 0x83, 0x84, 0x72, 0x47,
	0x8e, 0x79, 0x3d, 0x69, 0xd8, 0x47, 0x7d, 0xe4,
}

var testDiskGUID = [16]byte{
	0x10, 0x32, 0x54, 0x76, 0x98, 0xba, 0xdc, 0xfe,
	0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef,
}

const (
	testEntrySize = 128
	testNumSlots  = 128
)

// buildGPTImage assembles a protective boot sector, a valid primary GPT
// header at LBA 1 and a 128-slot entry table at LBA 2, with both CRCs
// computed over the final bytes. The image ends right after the table.
func buildGPTImage(sectorSize int, parts ...gptPart) []byte {
	tableLen := testNumSlots * testEntrySize
	firstUsable := uint64(2 + tableLen/sectorSize)
	lastUsable := uint64(1) << 40

	table := make([]byte, tableLen)
	for _, p := range parts {
		entry := table[p.slot*testEntrySize:][:testEntrySize]
		typeGUID := p.typeGUID
		if typeGUID == ([16]byte{}) {
			typeGUID = testTypeGUID
		}
		copy(entry[0x00:0x10], typeGUID[:])
		copy(entry[0x10:0x20], p.partGUID[:])
		binary.LittleEndian.PutUint64(entry[0x20:0x28], p.firstLBA)
		binary.LittleEndian.PutUint64(entry[0x28:0x30], p.lastLBA)
		copy(entry[0x30:0x38], p.attrs[:])
		for i, u := range p.name {
			binary.LittleEndian.PutUint16(entry[0x38+2*i:], u)
		}
	}

	header := make([]byte, sectorSize)
	copy(header, "EFI PART")
	header[0x0a] = 1 // revision 1.0
	binary.LittleEndian.PutUint32(header[0x0c:0x10], 92)
	binary.LittleEndian.PutUint64(header[0x18:0x20], 1) // current LBA
	binary.LittleEndian.PutUint64(header[0x20:0x28], 12345)
	binary.LittleEndian.PutUint64(header[0x28:0x30], firstUsable)
	binary.LittleEndian.PutUint64(header[0x30:0x38], lastUsable)
	copy(header[0x38:0x48], testDiskGUID[:])
	binary.LittleEndian.PutUint64(header[0x48:0x50], 2)
	binary.LittleEndian.PutUint32(header[0x50:0x54], testNumSlots)
	binary.LittleEndian.PutUint32(header[0x54:0x58], testEntrySize)
	binary.LittleEndian.PutUint32(header[0x58:0x5c], crc32.ChecksumIEEE(table))
	binary.LittleEndian.PutUint32(header[0x10:0x14], crc32.ChecksumIEEE(header[:92]))

	img := make([]byte, 0, 512+sectorSize+tableLen)
	img = append(img, protectiveBootSector()...)
	img = append(img, make([]byte, sectorSize-512)...)
	img = append(img, header...)
	img = append(img, table...)
	return img
}

// refreshHeaderCRC recomputes the header CRC of an image mutated by a test.
// sectorSize locates the header, which is assumed to be 92 bytes.
func refreshHeaderCRC(img []byte, sectorSize int) {
	header := img[sectorSize:][:sectorSize]
	for i := 0x10; i < 0x14; i++ {
		header[i] = 0
	}
	binary.LittleEndian.PutUint32(header[0x10:0x14], crc32.ChecksumIEEE(header[:92]))
}

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
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"
)

func readGPTFrom(img []byte, sectorSize uint64) (*Table, error) {
	return ReadGPT(bytes.NewReader(img), sectorSize)
}

func TestReadGPT(t *testing.T) {
	img := buildGPTImage(512,
		gptPart{slot: 0, firstLBA: 2048, lastLBA: 4095, name: nameUnits("rootfs")},
		gptPart{slot: 3, firstLBA: 4096, lastLBA: 8191, name: nameUnits("東京都")},
		gptPart{slot: 4, firstLBA: 8192, lastLBA: 8193},
	)

	table, err := readGPTFrom(img, 512)
	require.NoError(t, err)
	require.Equal(t, SchemeGPT, table.Scheme)
	require.Equal(t, testDiskGUID, table.DiskGUID)

	parts := table.Partitions
	require.Len(t, parts, 3)

	require.Equal(t, 0, parts[0].ID)
	require.Equal(t, uint64(2048*512), parts[0].FirstByte)
	require.Equal(t, uint64(2048*512), parts[0].Len)
	require.Equal(t, "rootfs", parts[0].Attrs.(GPTAttributes).Name)
	require.Equal(t, testTypeGUID, parts[0].Attrs.(GPTAttributes).TypeGUID)

	// empty slots keep the physical numbering of the survivors
	require.Equal(t, 3, parts[1].ID)
	require.Equal(t, "東京都", parts[1].Attrs.(GPTAttributes).Name)

	// all-zero name field decodes to the empty string
	require.Equal(t, 4, parts[2].ID)
	require.Equal(t, "", parts[2].Attrs.(GPTAttributes).Name)
}

func TestReadGPTNames(t *testing.T) {
	names := []string{
		"first",
		"with spaces",
		"!\"$%^&*()_+*&$%/,",
		"£10, €20",
		"héllɵ",
		"東京都",
		"𝄞 clef",
		"123456789012345678901234567890123456", // exactly fills the field, no terminator
	}

	parts := make([]gptPart, len(names))
	for i, name := range names {
		parts[i] = gptPart{
			slot:     i,
			firstLBA: uint64(2048 * (i + 1)),
			lastLBA:  uint64(2048*(i+1) + 1),
			name:     nameUnits(name),
		}
	}

	table, err := readGPTFrom(buildGPTImage(512, parts...), 512)
	require.NoError(t, err)
	require.Len(t, table.Partitions, len(names))
	for i, p := range table.Partitions {
		require.Equal(t, names[i], p.Attrs.(GPTAttributes).Name)
	}
}

func TestReadGPTLoneSurrogateName(t *testing.T) {
	for _, units := range [][]uint16{
		{0xD834},            // high surrogate at end of name
		{0xD834, 0x0061},    // high surrogate followed by a BMP unit
		{0xDD1E},            // low surrogate first
		{'a', 0xDD1E, 'b'},  // low surrogate in the middle
	} {
		img := buildGPTImage(512, gptPart{firstLBA: 2048, lastLBA: 4095, name: units})

		_, err := readGPTFrom(img, 512)
		require.ErrorIs(t, err, ErrInvalidPartitionName)
		require.ErrorContains(t, err, "entry 0")
	}
}

// Any single-byte mutation of the header outside the CRC field itself must
// surface as a checksum mismatch, never as a silently accepted header.
func TestReadGPTHeaderChecksumMismatch(t *testing.T) {
	for _, off := range []int{0x18, 0x28, 0x33, 0x3a, 0x50, 91} {
		img := buildGPTImage(512, gptPart{firstLBA: 2048, lastLBA: 4095})
		img[512+off] ^= 0x01

		_, err := readGPTFrom(img, 512)
		require.ErrorIs(t, err, ErrHeaderChecksumMismatch, "offset 0x%x", off)
	}
}

func TestReadGPTTableChecksumMismatch(t *testing.T) {
	img := buildGPTImage(512, gptPart{firstLBA: 2048, lastLBA: 4095})
	img[1024+0x20] ^= 0x01 // first LBA of entry 0

	_, err := readGPTFrom(img, 512)
	require.ErrorIs(t, err, ErrInvalidTableCRC)
}

// Round-trip property: re-encoding the decoder's own interpretation of the
// header and table reproduces the stored CRCs exactly.
func TestReadGPTChecksumRoundTrip(t *testing.T) {
	img := buildGPTImage(512,
		gptPart{slot: 0, firstLBA: 2048, lastLBA: 4095, name: nameUnits("a")},
		gptPart{slot: 1, firstLBA: 4096, lastLBA: 8191, name: nameUnits("b")},
	)

	_, err := readGPTFrom(img, 512)
	require.NoError(t, err)

	header := append([]byte(nil), img[512:1024]...)
	storedHeaderCRC := binary.LittleEndian.Uint32(header[0x10:0x14])
	for i := 0x10; i < 0x14; i++ {
		header[i] = 0
	}
	require.Equal(t, storedHeaderCRC, crc32.ChecksumIEEE(header[:92]))

	storedTableCRC := binary.LittleEndian.Uint32(img[512+0x58 : 512+0x5c])
	require.Equal(t, storedTableCRC, crc32.ChecksumIEEE(img[1024:1024+testNumSlots*testEntrySize]))
}

func TestReadGPTHeaderValidation(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(img []byte)
		err    error
	}{
		{"bad signature", func(img []byte) {
			img[512] = 'X'
		}, ErrBadEFISignature},
		{"unsupported revision", func(img []byte) {
			img[512+0x0a] = 2
		}, ErrUnsupportedRevision},
		{"header too short", func(img []byte) {
			binary.LittleEndian.PutUint32(img[512+0x0c:], 91)
		}, ErrHeaderTooShort},
		{"header size past sector", func(img []byte) {
			binary.LittleEndian.PutUint32(img[512+0x0c:], 513)
		}, ErrHeaderSizeTooLarge},
		{"reserved field", func(img []byte) {
			img[512+0x16] = 1
		}, ErrReservedFieldNotZero},
		{"current lba", func(img []byte) {
			binary.LittleEndian.PutUint64(img[512+0x18:], 2)
		}, ErrCurrentLbaNotOne},
		{"backward lbas", func(img []byte) {
			binary.LittleEndian.PutUint64(img[512+0x28:], 100)
			binary.LittleEndian.PutUint64(img[512+0x30:], 99)
		}, ErrBackwardLbas},
		{"lba overflow", func(img []byte) {
			binary.LittleEndian.PutUint64(img[512+0x30:], 1<<63)
		}, ErrLbaOverflow},
		{"entry table lba", func(img []byte) {
			binary.LittleEndian.PutUint64(img[512+0x48:], 3)
		}, ErrStartingLbaNotTwo},
		{"entry count", func(img []byte) {
			binary.LittleEndian.PutUint32(img[512+0x50:], 1<<16)
		}, ErrTooManyEntries},
		{"entry size large", func(img []byte) {
			binary.LittleEndian.PutUint32(img[512+0x54:], 1<<16)
		}, ErrEntrySizeTooLarge},
		{"entry size small", func(img []byte) {
			binary.LittleEndian.PutUint32(img[512+0x54:], 64)
		}, ErrEntrySizeTooSmall},
		{"first usable too low", func(img []byte) {
			binary.LittleEndian.PutUint64(img[512+0x28:], 33)
		}, ErrFirstUsableLbaTooLow},
		{"reserved tail", func(img []byte) {
			img[512+200] = 0xFF
		}, ErrReservedTailNotZero},
	}

	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			img := buildGPTImage(512, gptPart{firstLBA: 2048, lastLBA: 4095})
			m.mutate(img)
			refreshHeaderCRC(img, 512)

			_, err := readGPTFrom(img, 512)
			require.ErrorIs(t, err, m.err)
		})
	}
}

func TestReadGPTEntryOutOfRange(t *testing.T) {
	// usable window is [34, 1<<40]
	for _, p := range []gptPart{
		{firstLBA: 4095, lastLBA: 2048},       // backwards
		{firstLBA: 33, lastLBA: 4095},         // starts before the usable area
		{firstLBA: 2048, lastLBA: 1<<40 + 1},  // ends after the usable area
	} {
		img := buildGPTImage(512, p)

		_, err := readGPTFrom(img, 512)
		require.ErrorIs(t, err, ErrEntryOutOfRange)
		require.ErrorContains(t, err, "entry 0")
	}
}

func TestReadGPTSectorSizes(t *testing.T) {
	// a 520-byte sector moves the header and entry table
	img := buildGPTImage(520, gptPart{firstLBA: 2048, lastLBA: 4095, name: nameUnits("big")})

	table, err := readGPTFrom(img, 520)
	require.NoError(t, err)
	require.Len(t, table.Partitions, 1)
	require.Equal(t, uint64(2048*520), table.Partitions[0].FirstByte)
	require.Equal(t, uint64(2048*520), table.Partitions[0].Len)

	_, err = readGPTFrom(img, MaxSectorSize+1)
	require.ErrorIs(t, err, ErrSectorSizeTooLarge)
}

func TestReadGPTShortImage(t *testing.T) {
	img := buildGPTImage(512, gptPart{firstLBA: 2048, lastLBA: 4095})

	// truncate in the middle of the entry table
	_, err := readGPTFrom(img[:2048], 512)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidTableCRC)
}

func TestIsProtective(t *testing.T) {
	protective := Partition{
		ID:        0,
		FirstByte: 512,
		Len:       1 << 30,
		Attrs:     MBRAttributes{Bootable: false, TypeCode: 0xEE},
	}
	require.True(t, IsProtective(protective))

	// changing any single condition flips the verdict
	bootable := protective
	bootable.Attrs = MBRAttributes{Bootable: true, TypeCode: 0xEE}
	require.False(t, IsProtective(bootable))

	wrongType := protective
	wrongType.Attrs = MBRAttributes{TypeCode: 0x83}
	require.False(t, IsProtective(wrongType))

	wrongSlot := protective
	wrongSlot.ID = 1
	require.False(t, IsProtective(wrongSlot))

	farStart := protective
	farStart.FirstByte = 16*1024 + 1
	require.False(t, IsProtective(farStart))

	gptAttrs := protective
	gptAttrs.Attrs = GPTAttributes{}
	require.False(t, IsProtective(gptAttrs))
}

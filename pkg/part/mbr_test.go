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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMBR(t *testing.T) {
	// layout of a stock raspi image: a bootable FAT partition followed by
	// a Linux one
	sector := buildBootSector(
		mbrEntry{slot: 0, status: 0x80, typeCode: 0x0C, firstLBA: 8192, sectors: 262144},
		mbrEntry{slot: 1, status: 0x00, typeCode: 0x83, firstLBA: 270336, sectors: 7540736},
	)

	parts, err := ParseMBR(sector)
	require.NoError(t, err)
	require.Len(t, parts, 2)

	require.Equal(t, 0, parts[0].ID)
	require.Equal(t, uint64(4194304), parts[0].FirstByte)
	require.Equal(t, uint64(134217728), parts[0].Len)
	require.Equal(t, MBRAttributes{Bootable: true, TypeCode: 0x0C}, parts[0].Attrs)

	require.Equal(t, 1, parts[1].ID)
	require.Equal(t, uint64(138412032), parts[1].FirstByte)
	require.Equal(t, uint64(3860856832), parts[1].Len)
	require.Equal(t, MBRAttributes{Bootable: false, TypeCode: 0x83}, parts[1].Attrs)
}

func TestParseMBREmptySlotsAreSkipped(t *testing.T) {
	for k := 0; k <= 4; k++ {
		entries := make([]mbrEntry, 0, k)
		for slot := 0; slot < k; slot++ {
			entries = append(entries, mbrEntry{
				slot: slot, typeCode: 0x83, firstLBA: uint32(slot + 1), sectors: 1,
			})
		}

		parts, err := ParseMBR(buildBootSector(entries...))
		require.NoError(t, err)
		require.Len(t, parts, k)
		for slot := 0; slot < k; slot++ {
			require.Equal(t, slot, parts[slot].ID)
		}
	}
}

func TestParseMBRKeepsSlotNumbersAcrossGaps(t *testing.T) {
	sector := buildBootSector(
		mbrEntry{slot: 0, typeCode: 0x83, firstLBA: 1, sectors: 1},
		mbrEntry{slot: 2, typeCode: 0x07, firstLBA: 2, sectors: 1},
	)

	parts, err := ParseMBR(sector)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	require.Equal(t, 0, parts[0].ID)
	require.Equal(t, 2, parts[1].ID)
}

func TestParseMBRInvalidStatusCode(t *testing.T) {
	sector := buildBootSector(
		mbrEntry{slot: 1, status: 0x42, typeCode: 0x83, firstLBA: 1, sectors: 1},
	)

	_, err := ParseMBR(sector)
	require.ErrorIs(t, err, ErrInvalidStatusCode)
	require.ErrorContains(t, err, "partition 1")
}

func TestParseMBRWrongBufferSize(t *testing.T) {
	_, err := ParseMBR(make([]byte, 513))
	require.Error(t, err)
}

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
package reader

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRange(t *testing.T) *RangeReader {
	src := bytes.NewReader([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	r, err := NewRangeReader(src, 2, 5)
	require.NoError(t, err)
	return r
}

func TestRangeReaderSequentialReads(t *testing.T) {
	r := newTestRange(t)
	require.Equal(t, int64(5), r.Size())

	var buf [2]byte
	_, err := io.ReadFull(r, buf[:])
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3}, buf[:])

	_, err = io.ReadFull(r, buf[:])
	require.NoError(t, err)
	require.Equal(t, []byte{4, 5}, buf[:])

	// the last read is clamped to the single remaining byte
	n, err := r.Read(buf[:])
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, byte(6), buf[0])

	n, err = r.Read(buf[:])
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestRangeReaderSeek(t *testing.T) {
	r := newTestRange(t)

	var buf [2]byte

	// zero-based relative addressing
	pos, err := r.Seek(0, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(0), pos)
	_, err = io.ReadFull(r, buf[:])
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3}, buf[:])

	pos, err = r.Seek(-2, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(3), pos)
	_, err = io.ReadFull(r, buf[:])
	require.NoError(t, err)
	require.Equal(t, []byte{5, 6}, buf[:])

	_, err = r.Seek(2, io.SeekStart)
	require.NoError(t, err)
	pos, err = r.Seek(-1, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(1), pos)
	_, err = io.ReadFull(r, buf[:])
	require.NoError(t, err)
	require.Equal(t, []byte{3, 4}, buf[:])
}

func TestRangeReaderSeekErrors(t *testing.T) {
	r := newTestRange(t)

	_, err := r.Seek(1, io.SeekEnd)
	require.ErrorIs(t, err, ErrSeekPastEnd)

	_, err = r.Seek(-6, io.SeekEnd)
	require.ErrorIs(t, err, ErrSeekBeforeStart)

	_, err = r.Seek(-1, io.SeekStart)
	require.ErrorIs(t, err, ErrSeekBeforeStart)

	// within [firstByte, end] the end itself is a legal position
	pos, err := r.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(5), pos)

	_, err = r.Seek(6, io.SeekStart)
	require.ErrorIs(t, err, ErrIllegalCursorPosition)

	_, err = r.Seek(0, 42)
	require.Error(t, err)
}

func TestRangeReaderConstructionOverflow(t *testing.T) {
	src := bytes.NewReader(make([]byte, 8))

	_, err := NewRangeReader(src, math.MaxUint64-2, 5)
	require.ErrorIs(t, err, ErrLenPastEnd)
}

// clampedSeeker mimics sources that refuse to seek past their end, the way
// a raw block device does.
type clampedSeeker struct {
	*bytes.Reader
}

func (c clampedSeeker) Seek(offset int64, whence int) (int64, error) {
	pos, err := c.Reader.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	if size := c.Reader.Size(); pos > size {
		return c.Reader.Seek(size, io.SeekStart)
	}
	return pos, nil
}

func TestRangeReaderStartAfterEOF(t *testing.T) {
	src := clampedSeeker{bytes.NewReader(make([]byte, 8))}

	_, err := NewRangeReader(src, 100, 5)
	require.ErrorIs(t, err, ErrStartAfterEOF)
}

// A reader whose shared source was moved behind its back must refuse to
// read rather than leak bytes from outside the partition.
func TestRangeReaderDetectsExternalInterference(t *testing.T) {
	src := bytes.NewReader([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	r, err := NewRangeReader(src, 2, 5)
	require.NoError(t, err)

	_, err = src.Seek(0, io.SeekStart)
	require.NoError(t, err)

	var buf [2]byte
	_, err = r.Read(buf[:])
	require.ErrorIs(t, err, ErrIllegalCursorPosition)
}

func TestRangeReaderRandomSeek(t *testing.T) {
	testReadSeeker(t, func(data []byte) io.ReadSeeker {
		r, err := NewRangeReader(bytes.NewReader(data), 0, uint64(len(data)))
		require.NoError(t, err)
		return r
	})
}

func TestRangeReaderReadFullPastEnd(t *testing.T) {
	r := newTestRange(t)

	var buf [6]byte
	_, err := io.ReadFull(r, buf[:])
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

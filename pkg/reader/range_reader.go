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
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	ErrLenPastEnd            = errors.New("len implausibly past end")
	ErrStartAfterEOF         = errors.New("start after end of file")
	ErrIllegalCursorPosition = errors.New("illegal cursor position")
	ErrSeekPastEnd           = errors.New("can't seek past the end")
	ErrSeekBeforeStart       = errors.New("can't seek before the start")
)

// RangeReader exposes the byte range [firstByte, firstByte+length) of an
// io.ReadSeeker as an independent zero-based stream. Reads are clamped to
// the range, never extended, and the position of the underlying source is
// re-checked before every operation, so external interference with the
// shared source is detected rather than silently read through.
//
// The RangeReader borrows its source: it holds the source's cursor and must
// not be used concurrently with it or with another RangeReader over the
// same source.
type RangeReader struct {
	src       io.ReadSeeker
	firstByte uint64
	end       uint64
}

// NewRangeReader clamps src to [firstByte, firstByte+length) and seeks it
// to the start of the range. It fails with ErrLenPastEnd if the range end
// does not fit in 64 bits, and with ErrStartAfterEOF if the source comes up
// short of firstByte.
func NewRangeReader(src io.ReadSeeker, firstByte, length uint64) (*RangeReader, error) {
	end := firstByte + length
	if end < firstByte || end > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d + %d", ErrLenPastEnd, firstByte, length)
	}

	pos, err := src.Seek(int64(firstByte), io.SeekStart)
	if err != nil {
		return nil, fmt.Errorf("seeking to %d: %w", firstByte, err)
	}
	if uint64(pos) != firstByte {
		return nil, fmt.Errorf("%w: seeked to %d, wanted %d", ErrStartAfterEOF, pos, firstByte)
	}

	return &RangeReader{
		src:       src,
		firstByte: firstByte,
		end:       end,
	}, nil
}

// Size returns the length of the range in bytes.
func (r *RangeReader) Size() int64 {
	return int64(r.end - r.firstByte)
}

func (r *RangeReader) checkPosition(pos uint64) error {
	if pos < r.firstByte || pos > r.end {
		return fmt.Errorf("%w: %d <= %d <= %d", ErrIllegalCursorPosition, r.firstByte, pos, r.end)
	}
	return nil
}

// Read reads up to len(p) bytes, truncated at the end of the range. At the
// end of the range it returns 0, io.EOF, so io.ReadFull over a short range
// fails with io.ErrUnexpectedEOF rather than reading past the partition.
func (r *RangeReader) Read(p []byte) (int, error) {
	cur, err := r.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("querying position: %w", err)
	}

	pos := uint64(cur)
	if err := r.checkPosition(pos); err != nil {
		return 0, err
	}

	if available := r.end - pos; uint64(len(p)) > available {
		p = p[:available]
	}
	if len(p) == 0 {
		return 0, io.EOF
	}
	return r.src.Read(p)
}

// Seek translates offsets into the range and moves the underlying source:
// io.SeekStart is relative to the first byte, io.SeekCurrent passes
// through, and io.SeekEnd only accepts non-positive offsets back from the
// end of the range. The returned position is relative to the range start.
func (r *RangeReader) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	var err error

	switch whence {
	case io.SeekStart:
		if offset < 0 {
			return -1, fmt.Errorf("%w: offset %d", ErrSeekBeforeStart, offset)
		}
		abs := r.firstByte + uint64(offset)
		if abs < r.firstByte || abs > math.MaxInt64 {
			return -1, fmt.Errorf("%w: offset %d", ErrSeekPastEnd, offset)
		}
		pos, err = r.src.Seek(int64(abs), io.SeekStart)
	case io.SeekCurrent:
		pos, err = r.src.Seek(offset, io.SeekCurrent)
	case io.SeekEnd:
		if offset > 0 {
			return -1, fmt.Errorf("%w: offset %d", ErrSeekPastEnd, offset)
		}
		back := uint64(-offset)
		if back > r.end-r.firstByte {
			return -1, fmt.Errorf("%w: offset %d", ErrSeekBeforeStart, offset)
		}
		pos, err = r.src.Seek(int64(r.end-back), io.SeekStart)
	default:
		return -1, fmt.Errorf("RangeReader.Seek: invalid whence: %d", whence)
	}
	if err != nil {
		return -1, err
	}

	if err := r.checkPosition(uint64(pos)); err != nil {
		return -1, err
	}
	return int64(uint64(pos) - r.firstByte), nil
}

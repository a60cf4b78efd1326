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

import "errors"

// Every distinct on-disk violation maps to its own sentinel, so that callers
// can tell corruption apart from policy misses and from values that are
// merely too large for this build. All of them are terminal: a malformed
// table is never partially returned.
var (
	// ErrHeaderNotFound is returned when the boot signature is missing, or
	// when the table type required by the options is not present.
	ErrHeaderNotFound = errors.New("partition header not found")

	// ErrInvalidStatusCode is returned for an MBR entry whose status byte is
	// neither 0x00 nor 0x80.
	ErrInvalidStatusCode = errors.New("invalid status code")
)

// GPT structural errors, in the order the header is validated.
var (
	ErrBadEFISignature        = errors.New("bad EFI signature")
	ErrUnsupportedRevision    = errors.New("unsupported revision")
	ErrHeaderTooShort         = errors.New("header too short")
	ErrHeaderChecksumMismatch = errors.New("header checksum mismatch")
	ErrReservedFieldNotZero   = errors.New("unsupported data in reserved field 0x14")
	ErrCurrentLbaNotOne       = errors.New("current lba must be '1' for first header")
	ErrBackwardLbas           = errors.New("usable lbas are backwards")
	ErrStartingLbaNotTwo      = errors.New("starting lba must be '2' for first header")
	ErrEntrySizeTooSmall      = errors.New("entry size is implausibly small")
	ErrFirstUsableLbaTooLow   = errors.New("first usable lba is too low")
	ErrReservedTailNotZero    = errors.New("reserved header tail is not all empty")
	ErrInvalidTableCRC        = errors.New("entry table crc mismatch")
	ErrEntryOutOfRange        = errors.New("partition entry is out of range")
	ErrInvalidPartitionName   = errors.New("partition name is not valid UTF-16")
)

// Capacity errors: the on-disk value may be legal per the GPT format, but
// does not fit this implementation's memory or integer-width assumptions.
var (
	ErrSectorSizeTooLarge = errors.New("sector size is bigger than memory")
	ErrHeaderSizeTooLarge = errors.New("header size does not fit in the header sector")
	ErrTooManyEntries     = errors.New("entry count is implausible")
	ErrEntrySizeTooLarge  = errors.New("entry size is implausibly large")
	ErrLbaOverflow        = errors.New("usable lbas exceed the 64-bit byte space")
)

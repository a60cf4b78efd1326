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

import "github.com/google/uuid"

// GUIDToUUID converts a GPT on-disk GUID to an RFC 4122 UUID. GPT stores
// the first three fields little-endian, the rest big-endian.
func GUIDToUUID(g [16]byte) uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = g[3], g[2], g[1], g[0]
	u[4], u[5] = g[5], g[4]
	u[6], u[7] = g[7], g[6]
	copy(u[8:], g[8:])
	return u
}

// TypeUUID returns the partition type GUID in RFC 4122 form.
func (a GPTAttributes) TypeUUID() uuid.UUID {
	return GUIDToUUID(a.TypeGUID)
}

// PartitionUUID returns the unique partition GUID in RFC 4122 form.
func (a GPTAttributes) PartitionUUID() uuid.UUID {
	return GUIDToUUID(a.PartitionGUID)
}

// DiskUUID returns the disk GUID of a GPT table in RFC 4122 form.
func (t *Table) DiskUUID() uuid.UUID {
	return GUIDToUUID(t.DiskGUID)
}

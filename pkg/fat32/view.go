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
package fat32

import "encoding/binary"

// view is a zero-copy little-endian decoder over a borrowed byte slice. It
// never allocates and never copies; every accessor panics if the requested
// range falls outside the slice, since that indicates a caller bug (a
// malformed on-disk field is never discovered this way - field lengths are
// fixed by the format, only field *values* can be invalid).
type view struct {
	b []byte
}

func newView(b []byte) view {
	return view{b: b}
}

func (v view) u8(off int) uint8 {
	return v.b[off]
}

func (v view) u16(off int) uint16 {
	return binary.LittleEndian.Uint16(v.b[off : off+2])
}

func (v view) u32(off int) uint32 {
	return binary.LittleEndian.Uint32(v.b[off : off+4])
}

func (v view) slice(start, end int) []byte {
	return v.b[start:end]
}

func (v view) len() int {
	return len(v.b)
}

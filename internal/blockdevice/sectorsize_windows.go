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

//go:build windows

package blockdevice

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ostafen/fatro/internal/fs"
)

const ioctlDiskGetDriveGeometry = 0x70000

type diskGeometry struct {
	Cylinders         int64
	MediaType         uint32
	TracksPerCylinder uint32
	SectorsPerTrack   uint32
	BytesPerSector    uint32
}

// probeSectorSize issues IOCTL_DISK_GET_DRIVE_GEOMETRY against the open
// file's handle. It only succeeds against a raw volume/device handle; for a
// regular disk image file the call fails and the caller falls back to
// DefaultBlockSize.
func probeSectorSize(f fs.File) (uint16, error) {
	var geo diskGeometry
	var bytesReturned uint32

	handle := windows.Handle(f.Fd())
	err := windows.DeviceIoControl(
		handle,
		ioctlDiskGetDriveGeometry,
		nil,
		0,
		(*byte)(unsafe.Pointer(&geo)),
		uint32(unsafe.Sizeof(geo)),
		&bytesReturned,
		nil,
	)
	if err != nil {
		return 0, fmt.Errorf("DeviceIoControl(IOCTL_DISK_GET_DRIVE_GEOMETRY): %w", err)
	}
	return uint16(geo.BytesPerSector), nil
}

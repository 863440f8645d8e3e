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
package disk

import (
	"fmt"
	"io"
	"os"
)

// Info is a read-only device/image probe result, surfaced by the "info" CLI
// command alongside the mounted volume's fat32.Geometry.
type Info struct {
	Path     string
	IsDevice bool
	Size     int64
}

// Probe opens path read-only just long enough to classify it (block device
// vs. plain file) and determine its total size. It never touches FAT32
// structures - that is pkg/fat32's job once a BlockDevice wraps this path.
func Probe(path string) (Info, error) {
	path = NormalizeVolumePath(path)

	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("disk: opening %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return Info{}, fmt.Errorf("disk: stat %s: %w", path, err)
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return Info{}, fmt.Errorf("disk: determining size of %s: %w", path, err)
	}

	return Info{
		Path:     path,
		IsDevice: stat.Mode()&os.ModeDevice != 0,
		Size:     size,
	}, nil
}

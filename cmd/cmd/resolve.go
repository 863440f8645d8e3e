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
package cmd

import (
	"fmt"
	"strings"

	"github.com/ostafen/fatro/pkg/fat32"
)

// resolvePath walks filesystem from the root directory along each "/"
// separated component of volumePath, returning the NamedEntry the path
// names. An empty path, or "/", resolves to the synthetic root entry below.
func resolvePath(filesystem *fat32.Filesystem, volumePath string) (fat32.NamedEntry, error) {
	root := fat32.NamedEntry{
		Name:         "/",
		Attr:         0x10, // directory
		FirstCluster: filesystem.Geometry().RootCluster,
	}

	parts := splitPath(volumePath)
	current := root
	for i, part := range parts {
		if !current.IsDirectory() {
			return fat32.NamedEntry{}, fmt.Errorf("fatro: %s is not a directory", strings.Join(parts[:i], "/"))
		}

		entries, err := listDirectory(filesystem, current)
		if err != nil {
			return fat32.NamedEntry{}, err
		}

		found := false
		for _, e := range entries {
			if strings.EqualFold(e.Name, part) {
				current = e
				found = true
				break
			}
		}
		if !found {
			return fat32.NamedEntry{}, fmt.Errorf("fatro: %s: no such file or directory", volumePath)
		}
	}
	return current, nil
}

// listDirectory lists dir's children, dir being either the synthetic root
// entry or a NamedEntry previously returned by resolvePath/listDirectory.
func listDirectory(filesystem *fat32.Filesystem, dir fat32.NamedEntry) ([]fat32.NamedEntry, error) {
	buf := make([]byte, filesystem.RequiredReadBufferSize())

	sel := fat32.AtCluster(dir.FirstCluster)
	if dir.FirstCluster == filesystem.Geometry().RootCluster {
		sel = fat32.Root()
	}

	dw, err := filesystem.WalkDirectory(buf, sel)
	if err != nil {
		return nil, err
	}
	return dw.WalkNamed()
}

// splitPath breaks a volume path into its non-empty components, so that
// "/a/b/", "a/b", and "./a/b" all resolve identically.
func splitPath(p string) []string {
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part == "" || part == "." {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

//go:build linux
// +build linux

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
package fuse

import (
	"context"
	"io"
	"os"
	"sort"
	"sync"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/ostafen/fatro/pkg/fat32"
)

// FS is a bazil.org/fuse filesystem backed by a read-only fat32.Filesystem.
// Directory nodes are resolved lazily: a Dir only walks its own cluster
// chain, on Lookup or ReadDirAll, never the whole volume up front. Inode
// numbers are memoized per (parent, name) path so the same directory entry
// always reports the same inode across repeated lookups, which the kernel's
// dentry cache relies on.
type FS struct {
	filesystem *fat32.Filesystem

	mu        sync.Mutex
	inodes    map[string]uint64
	nextInode uint64
}

// New wraps filesystem as a FUSE filesystem root.
func New(filesystem *fat32.Filesystem) *FS {
	return &FS{
		filesystem: filesystem,
		inodes:     map[string]uint64{"/": 1},
		nextInode:  1,
	}
}

func (f *FS) Root() (fusefs.Node, error) {
	return &Dir{fsys: f, path: "/", cluster: f.filesystem.Geometry().RootCluster}, nil
}

// inodeFor returns the stable inode number for a directory entry's full
// path, minting a new one on first sight.
func (f *FS) inodeFor(path string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.inodes[path]; ok {
		return id
	}
	f.nextInode++
	f.inodes[path] = f.nextInode
	return f.nextInode
}

// Dir is a directory node: the cluster its entries live in, plus enough of
// its path to mint stable inodes for children.
type Dir struct {
	fsys    *FS
	path    string
	cluster uint32
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = d.fsys.inodeFor(d.path)
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) entries() ([]fat32.NamedEntry, error) {
	buf := make([]byte, d.fsys.filesystem.RequiredReadBufferSize())
	sel := fat32.AtCluster(d.cluster)
	if d.cluster == d.fsys.filesystem.Geometry().RootCluster {
		sel = fat32.Root()
	}
	dw, err := d.fsys.filesystem.WalkDirectory(buf, sel)
	if err != nil {
		return nil, err
	}
	return dw.WalkNamed()
}

func (d *Dir) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	entries, err := d.entries()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		childPath := d.path + name
		if e.IsDirectory() {
			return &Dir{fsys: d.fsys, path: childPath + "/", cluster: e.FirstCluster}, nil
		}
		return &File{fsys: d.fsys, path: childPath, firstCluster: e.FirstCluster, size: e.FileSize}, nil
	}
	return nil, fuse.ENOENT
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := d.entries()
	if err != nil {
		return nil, err
	}

	dirEntries := make([]fuse.Dirent, len(entries))
	for i, e := range entries {
		childPath := d.path + e.Name
		typ := fuse.DT_File
		if e.IsDirectory() {
			typ = fuse.DT_Dir
			childPath += "/"
		}
		dirEntries[i] = fuse.Dirent{
			Inode: d.fsys.inodeFor(childPath),
			Name:  e.Name,
			Type:  typ,
		}
	}
	sort.Slice(dirEntries, func(i, j int) bool {
		return dirEntries[i].Name < dirEntries[j].Name
	})
	return dirEntries, nil
}

// File is a regular-file node. Its chain-following reader is opened lazily
// on first Read and reused for the node's lifetime, since OpenFile walks
// the whole FAT chain up front and rebuilding it on every request would
// needlessly re-read the FAT for every page-sized read the kernel issues.
type File struct {
	fsys         *FS
	path         string
	firstCluster uint32
	size         uint32

	mu sync.Mutex
	rs io.ReadSeeker
}

// Attr leaves Mtime/Atime/Ctime at their zero value: FAT32 timestamp fields
// exist on disk but decoding them is out of scope here, and inventing a
// current-time stamp would be worse than reporting none at all.
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = f.fsys.inodeFor(f.path)
	a.Mode = 0444
	a.Size = uint64(f.size)
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rs == nil {
		rs, err := f.fsys.filesystem.OpenFile(f.firstCluster, f.size)
		if err != nil {
			return err
		}
		f.rs = rs
	}

	if _, err := f.rs.Seek(req.Offset, io.SeekStart); err != nil {
		return err
	}

	buf := make([]byte, req.Size)
	n, err := io.ReadFull(f.rs, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return err
	}
	resp.Data = buf[:n]
	return nil
}

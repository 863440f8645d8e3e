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

// DirectoryWalker exposes a directory's entries as a flat lazy sequence,
// following cluster-chain boundaries transparently. It wraps a
// clusterWalker and advances it sector-by-sector, slot-by-slot.
type DirectoryWalker struct {
	walker *clusterWalker

	sector       []byte
	slotInSector int
	done         bool
}

func newDirectoryWalker(w *clusterWalker) (*DirectoryWalker, error) {
	dw := &DirectoryWalker{walker: w}
	if err := dw.loadSector(); err != nil {
		return nil, err
	}
	return dw, nil
}

func (dw *DirectoryWalker) loadSector() error {
	_, b, err := dw.walker.currentSector()
	if err != nil {
		return err
	}
	dw.sector = b
	dw.slotInSector = 0
	return nil
}

func (dw *DirectoryWalker) slotsPerSector() int {
	return len(dw.sector) / dirEntrySize
}

// Next returns the raw bytes of the next directory entry slot (standard or
// LFN) in on-disk order, or (nil, false, nil) once the terminator has been
// reached. The returned slice is a view into the current sector buffer and
// is invalidated by the following call to Next.
func (dw *DirectoryWalker) Next() ([]byte, bool, error) {
	if dw.done {
		return nil, false, nil
	}

	for {
		if dw.slotInSector >= dw.slotsPerSector() {
			advanced, err := dw.advanceSector()
			if err != nil {
				return nil, false, err
			}
			if !advanced {
				dw.done = true
				return nil, false, nil
			}
			continue
		}

		off := dw.slotInSector * dirEntrySize
		raw := dw.sector[off : off+dirEntrySize]
		dw.slotInSector++

		switch classifyEntry(raw) {
		case entryTerminator:
			dw.done = true
			return nil, false, nil
		case entryDeleted:
			continue
		default:
			return raw, true, nil
		}
	}
}

// advanceSector moves to the next sector, following cluster-chain
// boundaries via the underlying clusterWalker. Returns false once the chain
// is exhausted (end-of-chain).
func (dw *DirectoryWalker) advanceSector() (bool, error) {
	if dw.walker.nextSector() {
		return true, dw.loadSector()
	}
	advanced, err := dw.walker.nextCluster()
	if err != nil || !advanced {
		return false, err
	}
	return true, dw.loadSector()
}

// NamedEntry is a fully-resolved directory entry: the raw standard-entry
// fields plus whichever name (long, if present and valid, else short) this
// repository's directory listing operations present to callers.
type NamedEntry struct {
	Name         string
	ShortName    string
	Attr         uint8
	FirstCluster uint32
	FileSize     uint32
}

func (n NamedEntry) IsDirectory() bool { return n.Attr&attrDir != 0 }
func (n NamedEntry) IsHidden() bool    { return n.Attr&attrHidden != 0 }
func (n NamedEntry) IsReadOnly() bool  { return n.Attr&attrReadOnly != 0 }

// WalkNamed drains the directory walker, reassembling long filenames from
// their preceding LFN runs (§4.9a) and yielding one NamedEntry per standard
// entry. Volume-ID entries are skipped, since they name the volume itself,
// not a file or subdirectory.
func (dw *DirectoryWalker) WalkNamed() ([]NamedEntry, error) {
	var (
		entries []NamedEntry
		run     lfnRun
	)

	for {
		raw, ok, err := dw.Next()
		if err != nil {
			return entries, err
		}
		if !ok {
			break
		}

		if isLFNEntry(raw) {
			run.push(raw)
			continue
		}

		std := newStandardEntry(raw)
		if std.IsVolumeID() {
			run.reset()
			continue
		}

		name, err := run.resolve(std)
		run.reset()
		if err != nil {
			name = std.ShortName()
		}

		entries = append(entries, NamedEntry{
			Name:         name,
			ShortName:    std.ShortName(),
			Attr:         std.Attr(),
			FirstCluster: std.FirstCluster(),
			FileSize:     std.FileSize(),
		})
	}
	return entries, nil
}

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

import (
	"fmt"

	"github.com/boljen/go-bitmap"
)

// clusterWalker iterates the sectors of a cluster and follows FAT32
// next-cluster pointers across cluster boundaries. It owns a readBuffer
// (shared with whichever directory/file traversal created it) and a
// fixed-size bitmap used only to detect circular chains; a well-formed FAT
// never revisits a cluster within one chain, so a revisit is reported the
// same way a bad-cluster sentinel is: ErrCorruptedChain.
type clusterWalker struct {
	geometry Geometry
	rb       *readBuffer

	cluster       uint32
	sectorInClust uint8 // offset within the current cluster, [0, SectorsPerCluster)

	visited bitmap.Bitmap
}

// newClusterWalker opens a walker positioned at the first sector of
// startCluster. startCluster must be >= 2.
func newClusterWalker(geometry Geometry, rb *readBuffer, startCluster uint32) (*clusterWalker, error) {
	if startCluster < 2 {
		return nil, ErrInvalidCluster
	}
	w := &clusterWalker{
		geometry: geometry,
		rb:       rb,
		cluster:  startCluster,
		visited:  bitmap.New(int(geometry.ClusterCount) + 2),
	}
	w.markVisited(startCluster)
	return w, nil
}

func (w *clusterWalker) markVisited(cluster uint32) {
	if int(cluster) < w.visited.Len() {
		w.visited.Set(int(cluster), true)
	}
}

func (w *clusterWalker) wasVisited(cluster uint32) bool {
	if int(cluster) >= w.visited.Len() {
		return false
	}
	return w.visited.Get(int(cluster))
}

// currentSector returns the absolute sector index the walker is positioned
// at, and the bytes of that sector.
func (w *clusterWalker) currentSector() (uint64, []byte, error) {
	abs := w.geometry.FirstSectorOfCluster(w.cluster) + uint64(w.sectorInClust)
	b, err := w.rb.getSector(abs)
	if err != nil {
		return 0, nil, err
	}
	return abs, b, nil
}

// nextSector advances within the current cluster. It returns false when the
// cluster is exhausted; the caller should then call nextCluster.
func (w *clusterWalker) nextSector() bool {
	if int(w.sectorInClust)+1 >= int(w.geometry.SectorsPerCluster) {
		return false
	}
	w.sectorInClust++
	return true
}

// nextCluster follows the FAT chain to the next cluster, resetting the
// within-cluster sector offset to 0. It returns (false, nil) at end-of-chain,
// and a non-nil error for a bad-cluster sentinel or a detected cycle.
func (w *clusterWalker) nextCluster() (bool, error) {
	entry, err := w.lookupFATEntry(w.cluster)
	if err != nil {
		return false, err
	}

	switch entry.kind {
	case fatEntryEOC:
		return false, nil
	case fatEntryBad:
		return false, fmt.Errorf("%w: cluster %d marked bad", ErrCorruptedChain, w.cluster)
	default:
		if w.wasVisited(entry.next) {
			return false, fmt.Errorf("%w: cluster %d revisited", ErrCorruptedChain, entry.next)
		}
		w.markVisited(entry.next)
		w.cluster = entry.next
		w.sectorInClust = 0
		return true, nil
	}
}

// lookupFATEntry resolves the FAT32 table entry for the given cluster index.
func (w *clusterWalker) lookupFATEntry(cluster uint32) (fatEntry, error) {
	byteOffset := uint64(cluster) * 4
	sectorOffset := byteOffset / uint64(w.geometry.SectorSize)
	withinSector := int(byteOffset % uint64(w.geometry.SectorSize))

	sector, err := w.rb.getSector(w.geometry.FirstFATSector + sectorOffset)
	if err != nil {
		return fatEntry{}, err
	}
	return decodeFATEntry(sector, withinSector), nil
}

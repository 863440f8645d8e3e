package fat32

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// smallGeometry builds a Geometry directly, bypassing mount's large-volume
// FAT32 threshold, so cluster/directory logic can be exercised against a
// small synthetic image. The FAT occupies sector 0, data starts at sector 1,
// one sector per cluster.
func smallGeometry(clusterCount uint32) Geometry {
	return Geometry{
		SectorSize:        512,
		SectorsPerCluster: 1,
		FirstFATSector:    0,
		FirstDataSector:   1,
		RootCluster:       2,
		Variant:           Fat32,
		ClusterCount:      clusterCount,
		SectorsPerFAT:     1,
		FATCount:          1,
		TotalSectors:      1 + clusterCount,
	}
}

func setFATEntry(image []byte, cluster uint32, value uint32) {
	binary.LittleEndian.PutUint32(image[cluster*4:], value&fatEntryMask)
}

func newTestImage(clusterCount uint32) []byte {
	return make([]byte, 512*(1+int(clusterCount)))
}

func clusterData(image []byte, g Geometry, cluster uint32) []byte {
	sector := g.FirstSectorOfCluster(cluster)
	off := sector * uint64(g.SectorSize)
	return image[off : off+uint64(g.SectorSize)]
}

func TestClusterWalker_FollowsChainToEOC(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)
	setFATEntry(image, 2, 3)
	setFATEntry(image, 3, 4)
	setFATEntry(image, 4, fatEOCThreshold)

	dev := newMemDevice(image, 512)
	rb := newReadBuffer(dev, g.SectorSize, make([]byte, 512))

	w, err := newClusterWalker(g, rb, 2)
	require.NoError(t, err)

	var visited []uint32
	visited = append(visited, w.cluster)
	for {
		ok, err := w.nextCluster()
		require.NoError(t, err)
		if !ok {
			break
		}
		visited = append(visited, w.cluster)
	}
	require.Equal(t, []uint32{2, 3, 4}, visited)
}

func TestClusterWalker_DetectsCycle(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)
	setFATEntry(image, 2, 3)
	setFATEntry(image, 3, 2) // cycle back to 2

	dev := newMemDevice(image, 512)
	rb := newReadBuffer(dev, g.SectorSize, make([]byte, 512))

	w, err := newClusterWalker(g, rb, 2)
	require.NoError(t, err)

	_, err = w.nextCluster() // -> 3, fine
	require.NoError(t, err)

	_, err = w.nextCluster() // -> 2 again, cycle
	require.ErrorIs(t, err, ErrCorruptedChain)
}

func TestClusterWalker_RejectsBadStartCluster(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)
	dev := newMemDevice(image, 512)
	rb := newReadBuffer(dev, g.SectorSize, make([]byte, 512))

	_, err := newClusterWalker(g, rb, 1)
	require.ErrorIs(t, err, ErrInvalidCluster)
}

func TestClusterWalker_BadClusterMarker(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)
	setFATEntry(image, 2, fatBadClusterMarker)

	dev := newMemDevice(image, 512)
	rb := newReadBuffer(dev, g.SectorSize, make([]byte, 512))

	w, err := newClusterWalker(g, rb, 2)
	require.NoError(t, err)

	_, err = w.nextCluster()
	require.ErrorIs(t, err, ErrCorruptedChain)
}

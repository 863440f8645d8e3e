package fat32

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFilesystem(device BlockDevice, g Geometry) *Filesystem {
	return &Filesystem{device: device, geometry: g}
}

func TestFilesystem_WalkDirectory(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)

	sector := clusterData(image, g, g.RootCluster)
	putEntry(sector, 0, buildStandardEntry("HELLO   TXT", attrArchive, 5, 42))

	dev := newMemDevice(image, 512)
	fs := newTestFilesystem(dev, g)

	buf := make([]byte, fs.RequiredReadBufferSize())
	dw, err := fs.WalkDirectory(buf, Root())
	require.NoError(t, err)

	entries, err := dw.WalkNamed()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "HELLO.TXT", entries[0].Name)
	require.Equal(t, uint32(42), entries[0].FileSize)
}

func TestFilesystem_ReadFirstCluster(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)

	payload := clusterData(image, g, 5)
	copy(payload, []byte("cluster five contents"))

	dev := newMemDevice(image, 512)
	fs := newTestFilesystem(dev, g)

	dst := make([]byte, g.ClusterSizeBytes())
	err := fs.ReadFirstCluster(5, dst)
	require.NoError(t, err)
	require.Equal(t, byte('c'), dst[0])
	require.True(t, dst[0] == 'c' && dst[5] == 'e')
}

func TestFilesystem_OpenFile_SpansMultipleClusters(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)
	setFATEntry(image, 2, 3)
	setFATEntry(image, 3, 4)
	setFATEntry(image, 4, fatEOCThreshold)

	for i := range clusterData(image, g, 2) {
		clusterData(image, g, 2)[i] = 'A'
	}
	for i := range clusterData(image, g, 3) {
		clusterData(image, g, 3)[i] = 'B'
	}
	for i := range clusterData(image, g, 4) {
		clusterData(image, g, 4)[i] = 'C'
	}

	dev := newMemDevice(image, 512)
	fs := newTestFilesystem(dev, g)

	// File size spans all of cluster 2, all of cluster 3, and half of 4.
	fileSize := uint32(512 + 512 + 256)
	rs, err := fs.OpenFile(2, fileSize)
	require.NoError(t, err)

	got, err := io.ReadAll(rs)
	require.NoError(t, err)
	require.Len(t, got, int(fileSize))
	require.Equal(t, byte('A'), got[0])
	require.Equal(t, byte('A'), got[511])
	require.Equal(t, byte('B'), got[512])
	require.Equal(t, byte('B'), got[1023])
	require.Equal(t, byte('C'), got[1024])
	require.Equal(t, byte('C'), got[len(got)-1])

	// Seeking to a position inside the second cluster reads correctly too.
	_, err = rs.Seek(512, io.SeekStart)
	require.NoError(t, err)
	buf := make([]byte, 4)
	_, err = io.ReadFull(rs, buf)
	require.NoError(t, err)
	require.Equal(t, []byte("BBBB"), buf)
}

func TestFilesystem_OpenFile_ZeroLength(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)
	dev := newMemDevice(image, 512)
	fs := newTestFilesystem(dev, g)

	rs, err := fs.OpenFile(0, 0)
	require.NoError(t, err)
	got, err := io.ReadAll(rs)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFilesystem_OpenFile_DetectsCycle(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)
	setFATEntry(image, 2, 3)
	setFATEntry(image, 3, 2) // cycle

	dev := newMemDevice(image, 512)
	fs := newTestFilesystem(dev, g)

	// fileSize spans beyond one cluster, forcing the chain walk to revisit 2.
	_, err := fs.OpenFile(2, uint32(g.ClusterSizeBytes())*3)
	require.ErrorIs(t, err, ErrCorruptedChain)
}

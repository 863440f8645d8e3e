package fat32

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func putEntry(sector []byte, slot int, raw []byte) {
	copy(sector[slot*dirEntrySize:], raw)
}

func TestDirectoryWalker_SkipsDeletedAndStopsAtTerminator(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)

	sector := clusterData(image, g, 2)
	putEntry(sector, 0, buildStandardEntry("ONE     TXT", attrArchive, 5, 10))
	deleted := buildStandardEntry("DEAD    TXT", attrArchive, 6, 10)
	deleted[0] = entryDeletedMarker
	putEntry(sector, 1, deleted)
	putEntry(sector, 2, buildStandardEntry("TWO     TXT", attrArchive, 7, 20))
	// slot 3 left zeroed: terminator

	dev := newMemDevice(image, 512)
	rb := newReadBuffer(dev, g.SectorSize, make([]byte, 512))
	w, err := newClusterWalker(g, rb, 2)
	require.NoError(t, err)
	dw, err := newDirectoryWalker(w)
	require.NoError(t, err)

	entries, err := dw.WalkNamed()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "ONE.TXT", entries[0].Name)
	require.Equal(t, uint32(5), entries[0].FirstCluster)
	require.Equal(t, "TWO.TXT", entries[1].Name)
	require.Equal(t, uint32(7), entries[1].FirstCluster)
}

func TestDirectoryWalker_SkipsVolumeID(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)

	sector := clusterData(image, g, 2)
	putEntry(sector, 0, buildStandardEntry("VOLUME     ", attrVolumeID, 0, 0))
	putEntry(sector, 1, buildStandardEntry("FILE    TXT", attrArchive, 5, 10))

	dev := newMemDevice(image, 512)
	rb := newReadBuffer(dev, g.SectorSize, make([]byte, 512))
	w, err := newClusterWalker(g, rb, 2)
	require.NoError(t, err)
	dw, err := newDirectoryWalker(w)
	require.NoError(t, err)

	entries, err := dw.WalkNamed()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "FILE.TXT", entries[0].Name)
}

func TestDirectoryWalker_ResolvesLongName(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)

	sector := clusterData(image, g, 2)
	shortRaw := buildStandardEntry("README  TXT", attrArchive, 5, 10)
	std := newStandardEntry(shortRaw)
	checksum := shortNameChecksum(std.rawNameExt())
	longName := "a-very-long-na"
	units := utf16Units(longName)

	// On-disk order is highest sequence number first.
	putEntry(sector, 0, buildLFNEntry(2, true, checksum, units[13:]))
	putEntry(sector, 1, buildLFNEntry(1, false, checksum, units[:13]))
	putEntry(sector, 2, shortRaw)

	dev := newMemDevice(image, 512)
	rb := newReadBuffer(dev, g.SectorSize, make([]byte, 512))
	w, err := newClusterWalker(g, rb, 2)
	require.NoError(t, err)
	dw, err := newDirectoryWalker(w)
	require.NoError(t, err)

	entries, err := dw.WalkNamed()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, longName, entries[0].Name)
	require.Equal(t, "README.TXT", entries[0].ShortName)
}

func TestDirectoryWalker_CrossesClusterBoundary(t *testing.T) {
	g := smallGeometry(10)
	image := newTestImage(10)
	setFATEntry(image, 2, 3)
	setFATEntry(image, 3, fatEOCThreshold)

	s2 := clusterData(image, g, 2)
	putEntry(s2, 0, buildStandardEntry("ONE     TXT", attrArchive, 5, 10))
	// Every remaining slot in cluster 2 is a deleted (not terminator) entry,
	// so the walker fills the whole sector and must cross into cluster 3
	// rather than stopping early.
	deleted := buildStandardEntry("DEAD    TXT", attrArchive, 9, 1)
	deleted[0] = entryDeletedMarker
	for slot := 1; slot < 16; slot++ {
		putEntry(s2, slot, deleted)
	}

	s3 := clusterData(image, g, 3)
	putEntry(s3, 0, buildStandardEntry("TWO     TXT", attrArchive, 6, 20))

	dev := newMemDevice(image, 512)
	rb := newReadBuffer(dev, g.SectorSize, make([]byte, 512))
	w, err := newClusterWalker(g, rb, 2)
	require.NoError(t, err)
	dw, err := newDirectoryWalker(w)
	require.NoError(t, err)

	entries, err := dw.WalkNamed()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "ONE.TXT", entries[0].Name)
	require.Equal(t, "TWO.TXT", entries[1].Name)
}

package fat32

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildSector0 constructs a minimal, syntactically valid boot sector with
// the given parameters, leaving every other byte zero.
func buildSector0(bytesPerSector uint16, sectorsPerCluster uint8, reserved uint16, fatCount uint8, sectorsPerFat32 uint32, totalSectors32 uint32, rootCluster uint32, badSignature bool) []byte {
	b := make([]byte, 512)
	binary.LittleEndian.PutUint16(b[11:], bytesPerSector)
	b[13] = sectorsPerCluster
	binary.LittleEndian.PutUint16(b[14:], reserved)
	b[16] = fatCount
	binary.LittleEndian.PutUint32(b[32:], totalSectors32)
	binary.LittleEndian.PutUint32(b[36:], sectorsPerFat32)
	binary.LittleEndian.PutUint32(b[44:], rootCluster)

	if badSignature {
		binary.LittleEndian.PutUint16(b[510:], 0x1234)
	} else {
		binary.LittleEndian.PutUint16(b[510:], bootSignatureValue)
	}
	return b
}

func TestMount_SelectsFAT32AboveThreshold(t *testing.T) {
	// metaSectors = reserved(32) + fatCount(2)*sectorsPerFat(64) = 160.
	// dataSectors = totalSectors - 160 must yield clusterCount >= 65525.
	const sectorsPerCluster = 1
	const reserved = 32
	const fatCount = 2
	const sectorsPerFat = 64
	const clusterCount = 65525
	meta := uint32(reserved) + uint32(fatCount)*sectorsPerFat
	total := meta + clusterCount*sectorsPerCluster

	sector0 := buildSector0(512, sectorsPerCluster, reserved, fatCount, sectorsPerFat, total, 2, false)

	g, err := mount(sector0)
	require.NoError(t, err)
	require.Equal(t, Fat32, g.Variant)
	require.Equal(t, uint64(reserved), g.FirstFATSector)
	require.Equal(t, uint64(meta), g.FirstDataSector)
	require.Equal(t, uint32(2), g.RootCluster)
	require.Equal(t, uint32(clusterCount), g.ClusterCount)
}

func TestMount_BelowThresholdIsUnsupportedVariant(t *testing.T) {
	const sectorsPerCluster = 1
	const reserved = 32
	const fatCount = 2
	const sectorsPerFat = 8
	const clusterCount = 4000 // selects FAT12
	meta := uint32(reserved) + uint32(fatCount)*sectorsPerFat
	total := meta + clusterCount*sectorsPerCluster

	sector0 := buildSector0(512, sectorsPerCluster, reserved, fatCount, sectorsPerFat, total, 2, false)

	_, err := mount(sector0)
	require.ErrorIs(t, err, ErrUnsupportedVariant)
}

func TestMount_BadSignatureIsMalformed(t *testing.T) {
	sector0 := buildSector0(512, 1, 32, 2, 64, 32+128+65525, 2, true)

	_, err := mount(sector0)
	require.ErrorIs(t, err, ErrMalformedBpb)
}

func TestMount_AggregatesMultipleProblems(t *testing.T) {
	sector0 := buildSector0(513 /* invalid */, 0 /* invalid */, 32, 0 /* invalid */, 64, 100, 2, true /* invalid */)

	_, err := mount(sector0)
	require.ErrorIs(t, err, ErrMalformedBpb)

	// All four independent problems should be visible in the error text,
	// not just the first one encountered.
	msg := err.Error()
	require.Contains(t, msg, "boot signature")
	require.Contains(t, msg, "sector size")
	require.Contains(t, msg, "power of two")
	require.Contains(t, msg, "FAT count")
}

func TestMount_ShortSector0(t *testing.T) {
	_, err := mount(make([]byte, 10))
	require.True(t, errors.Is(err, ErrMalformedBpb))
}

func TestVariantFromClusterCount(t *testing.T) {
	require.Equal(t, Fat12, variantFromClusterCount(100))
	require.Equal(t, Fat16, variantFromClusterCount(5000))
	require.Equal(t, Fat32, variantFromClusterCount(70000))
}

package fat32

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildStandardEntry constructs a 32-byte standard 8.3 directory entry slot.
func buildStandardEntry(shortName string, attr uint8, firstCluster uint32, fileSize uint32) []byte {
	raw := make([]byte, dirEntrySize)
	name := []byte("           ") // 11 spaces
	for i := 0; i < len(shortName) && i < 11; i++ {
		name[i] = shortName[i]
	}
	copy(raw[0:11], name)
	raw[11] = attr
	binary.LittleEndian.PutUint16(raw[20:], uint16(firstCluster>>16))
	binary.LittleEndian.PutUint16(raw[26:], uint16(firstCluster))
	binary.LittleEndian.PutUint32(raw[28:], fileSize)
	return raw
}

// buildLFNEntry constructs one 32-byte LFN slot carrying up to 13 UTF-16
// code units of name, zero-padded/terminated per the on-disk format.
func buildLFNEntry(sequenceNumber uint8, last bool, checksum uint8, name []uint16) []byte {
	raw := make([]byte, dirEntrySize)
	order := sequenceNumber
	if last {
		order |= 0x40
	}
	raw[0] = order
	raw[11] = attrLFN
	raw[13] = checksum

	padded := make([]uint16, 13)
	for i := range padded {
		padded[i] = 0xFFFF
	}
	for i, u := range name {
		if i >= 13 {
			break
		}
		padded[i] = u
	}
	if len(name) < 13 {
		padded[len(name)] = 0
	}

	ranges := [][2]int{{1, 11}, {14, 26}, {28, 32}}
	idx := 0
	for _, r := range ranges {
		for off := r[0]; off < r[1]; off += 2 {
			binary.LittleEndian.PutUint16(raw[off:], padded[idx])
			idx++
		}
	}
	return raw
}

func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		units = append(units, uint16(r))
	}
	return units
}

func TestLFNRun_ResolvesTwoSlotName(t *testing.T) {
	shortRaw := buildStandardEntry("README  TXT", attrArchive, 5, 100)
	std := newStandardEntry(shortRaw)
	checksum := shortNameChecksum(std.rawNameExt())

	longName := "a-very-long-na" // 14 code units: splits into a 13-unit slot and a 1-unit slot
	units := utf16Units(longName)

	var run lfnRun
	// Slots are pushed in on-disk order, which descends from highest
	// sequence number to lowest; resolve sorts them back into order.
	run.push(buildLFNEntry(2, true, checksum, units[13:]))
	run.push(buildLFNEntry(1, false, checksum, units[:13]))

	name, err := run.resolve(std)
	require.NoError(t, err)
	require.Equal(t, longName, name)
}

func TestLFNRun_ChecksumMismatchFallsBack(t *testing.T) {
	shortRaw := buildStandardEntry("README  TXT", attrArchive, 5, 100)
	std := newStandardEntry(shortRaw)

	units := utf16Units("mismatched")
	var run lfnRun
	run.push(buildLFNEntry(1, true, 0xFF /* wrong checksum */, units))

	_, err := run.resolve(std)
	require.ErrorIs(t, err, ErrNameMismatch)
	require.Equal(t, "README.TXT", std.ShortName())
}

func TestLFNRun_NonContiguousOrderingRejected(t *testing.T) {
	shortRaw := buildStandardEntry("A       TXT", attrArchive, 5, 100)
	std := newStandardEntry(shortRaw)
	checksum := shortNameChecksum(std.rawNameExt())

	units := utf16Units("gap")
	var run lfnRun
	run.push(buildLFNEntry(3, true, checksum, units)) // sequence 1 missing

	_, err := run.resolve(std)
	require.ErrorIs(t, err, ErrNameMismatch)
}

func TestLFNRun_EmptyRunIsNameMismatch(t *testing.T) {
	var run lfnRun
	shortRaw := buildStandardEntry("A       TXT", attrArchive, 5, 100)
	std := newStandardEntry(shortRaw)

	_, err := run.resolve(std)
	require.ErrorIs(t, err, ErrNameMismatch)
}

func TestShortNameChecksum_Deterministic(t *testing.T) {
	raw := buildStandardEntry("FOO     BAR", attrArchive, 1, 1)
	std := newStandardEntry(raw)
	c1 := shortNameChecksum(std.rawNameExt())
	c2 := shortNameChecksum(std.rawNameExt())
	require.Equal(t, c1, c2)
}

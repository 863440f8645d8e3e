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

	"github.com/hashicorp/go-multierror"
)

// Variant identifies which FAT flavor a volume's cluster count selects.
type Variant int

const (
	Fat12 Variant = iota
	Fat16
	Fat32
)

func (v Variant) String() string {
	switch v {
	case Fat12:
		return "FAT12"
	case Fat16:
		return "FAT16"
	case Fat32:
		return "FAT32"
	default:
		return "unknown"
	}
}

// Geometry is the immutable layout record derived once at mount time. Every
// field is fixed for the lifetime of a Filesystem; nothing in this package
// mutates a Geometry after mount returns it.
type Geometry struct {
	SectorSize          uint16
	SectorsPerCluster   uint8
	FirstFATSector      uint64
	FirstDataSector     uint64
	RootCluster         uint32
	Variant             Variant
	ClusterCount        uint32
	SectorsPerFAT       uint32
	FATCount            uint8
	TotalSectors        uint32
}

// ClusterSizeBytes returns the size in bytes of one cluster.
func (g Geometry) ClusterSizeBytes() uint32 {
	return uint32(g.SectorsPerCluster) * uint32(g.SectorSize)
}

// FirstSectorOfCluster returns the absolute sector index of the first sector
// belonging to data cluster c. c must be >= 2; callers validate this via
// ErrInvalidCluster before calling.
func (g Geometry) FirstSectorOfCluster(c uint32) uint64 {
	return g.FirstDataSector + uint64(c-2)*uint64(g.SectorsPerCluster)
}

// validSectorSizes enumerates the only byte-per-sector values the format
// permits; anything else indicates a corrupt or non-FAT image.
var validSectorSizes = map[uint16]bool{512: true, 1024: true, 2048: true, 4096: true}

// mount reads sector 0 (exactly 512 bytes), parses the BPB, and computes the
// Geometry. Every structural problem found is collected into a single
// aggregated error rather than returned on the first failure, so a caller
// diagnosing a bad image sees the whole picture in one pass.
func mount(sector0 []byte) (Geometry, error) {
	if len(sector0) < 512 {
		return Geometry{}, fmt.Errorf("%w: boot sector short read (%d bytes)", ErrMalformedBpb, len(sector0))
	}

	common := newCommonBPB(sector0)
	ext := newExtendedFAT32BPB(sector0)

	var merr *multierror.Error

	if common.bootSignature() != bootSignatureValue {
		merr = multierror.Append(merr, fmt.Errorf("boot signature 0x%04X, expected 0x%04X", common.bootSignature(), bootSignatureValue))
	}
	if !validSectorSizes[common.bytesPerSector()] {
		merr = multierror.Append(merr, fmt.Errorf("implausible sector size %d", common.bytesPerSector()))
	}
	if common.sectorsPerCluster() == 0 || (common.sectorsPerCluster()&(common.sectorsPerCluster()-1)) != 0 {
		merr = multierror.Append(merr, fmt.Errorf("sectors-per-cluster %d is not a power of two", common.sectorsPerCluster()))
	}
	if common.fatCount() == 0 {
		merr = multierror.Append(merr, fmt.Errorf("FAT count is zero"))
	}

	sectorsPerFat := uint32(common.sectorsPerFat16())
	if sectorsPerFat == 0 {
		sectorsPerFat = ext.sectorsPerFat32()
	}
	if sectorsPerFat == 0 {
		merr = multierror.Append(merr, fmt.Errorf("sectors-per-FAT is zero"))
	}

	rootDirSectors := uint32(0)
	if common.bytesPerSector() != 0 {
		rootDirSectors = (uint32(common.rootEntryCount())*32 + uint32(common.bytesPerSector()) - 1) / uint32(common.bytesPerSector())
	}

	metaSectors := uint32(common.reservedSectorCount()) + uint32(common.fatCount())*sectorsPerFat + rootDirSectors
	totalSectors := common.totalSectors()

	if totalSectors < metaSectors {
		merr = multierror.Append(merr, fmt.Errorf("total sectors (%d) smaller than metadata region (%d)", totalSectors, metaSectors))
	}

	if merr.ErrorOrNil() != nil {
		merr.ErrorFormat = singleLineErrorFormat
		return Geometry{}, fmt.Errorf("%w: %v", ErrMalformedBpb, merr)
	}

	dataSectors := totalSectors - metaSectors
	clusterCount := uint32(0)
	if common.sectorsPerCluster() != 0 {
		clusterCount = dataSectors / uint32(common.sectorsPerCluster())
	}

	variant := variantFromClusterCount(clusterCount)
	if variant != Fat32 {
		return Geometry{}, fmt.Errorf("%w: cluster count %d selects %s", ErrUnsupportedVariant, clusterCount, variant)
	}

	return Geometry{
		SectorSize:        common.bytesPerSector(),
		SectorsPerCluster: common.sectorsPerCluster(),
		FirstFATSector:    uint64(common.reservedSectorCount()),
		FirstDataSector:   uint64(metaSectors),
		RootCluster:       ext.rootCluster(),
		Variant:           variant,
		ClusterCount:      clusterCount,
		SectorsPerFAT:     sectorsPerFat,
		FATCount:          common.fatCount(),
		TotalSectors:      totalSectors,
	}, nil
}

// variantFromClusterCount applies the Microsoft-specified thresholds. These
// are legal requirements of the on-disk format, not a heuristic: a volume's
// variant is a function of its cluster count alone.
func variantFromClusterCount(clusterCount uint32) Variant {
	switch {
	case clusterCount < 4085:
		return Fat12
	case clusterCount < 65525:
		return Fat16
	default:
		return Fat32
	}
}

// singleLineErrorFormat renders a multierror.Error as a single semicolon
// separated line, since ErrMalformedBpb is typically logged alongside other
// single-line diagnostics rather than as a free-standing multi-line block.
func singleLineErrorFormat(errs []error) string {
	s := ""
	for i, e := range errs {
		if i > 0 {
			s += "; "
		}
		s += e.Error()
	}
	return s
}

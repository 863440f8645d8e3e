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

import "errors"

// Sentinel errors returned by this package. Wrap with fmt.Errorf("...: %w", ...)
// at call sites that need extra context; callers should match with errors.Is.
var (
	// ErrUnsupportedVariant is returned at mount time when the volume's cluster
	// count selects FAT12 or FAT16 rather than FAT32. Only FAT32 data regions
	// are read by this package.
	ErrUnsupportedVariant = errors.New("fat32: unsupported FAT variant (FAT12/FAT16)")

	// ErrInvalidCluster is returned when a cluster index below 2 (the reserved
	// sentinels) is passed where a data cluster is required.
	ErrInvalidCluster = errors.New("fat32: invalid cluster index")

	// ErrCorruptedChain is returned when a FAT entry resolves to the bad-cluster
	// sentinel, or when chain traversal revisits a cluster already seen in the
	// current walk.
	ErrCorruptedChain = errors.New("fat32: corrupted cluster chain")

	// ErrDeviceShortRead is returned when the block device reads zero blocks,
	// or when the blocks it does read stop short of the requested sector.
	ErrDeviceShortRead = errors.New("fat32: short read from block device")

	// ErrMalformedBpb is returned when the boot sector fails structural
	// validation (bad signature, inconsistent sector/cluster arithmetic).
	ErrMalformedBpb = errors.New("fat32: malformed BIOS parameter block")

	// ErrNameMismatch is returned internally by the long-filename assembler
	// when a buffered LFN run's checksum does not match the standard entry
	// that follows it; callers never see this directly, since the assembler
	// falls back to the short name instead of propagating it.
	ErrNameMismatch = errors.New("fat32: long filename checksum mismatch")
)

//go:build !linux
// +build !linux

package fuse

import (
	"fmt"

	"github.com/ostafen/fatro/pkg/fat32"
)

func Mount(mountpoint string, filesystem *fat32.Filesystem) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}

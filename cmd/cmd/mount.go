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
package cmd

import (
	"path/filepath"
	"strings"

	"github.com/ostafen/fatro/internal/fuse"
	"github.com/spf13/cobra"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mount <image_path>",
		Short:        "Mount a FAT32 volume or disk image read-only over FUSE",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runMount,
	}

	cmd.Flags().StringP("mountpoint", "m", "", "Absolute path to the directory where the filesystem will be mounted. If not specified, a default will be generated.")
	cmd.Flags().Bool("mmap", false, "Use the memory-mapped block device backend instead of plain file reads.")
	return cmd
}

func runMount(cmd *cobra.Command, args []string) error {
	useMmap, _ := cmd.Flags().GetBool("mmap")

	filesystem, device, err := openVolume(args[0], useMmap)
	if err != nil {
		return err
	}
	defer device.Close()

	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		mountpoint = defaultMountpoint(args[0])
	}

	g := filesystem.Geometry()
	log.Infof("mounting %s (%s, cluster size %d bytes) at %s", args[0], g.Variant, g.ClusterSizeBytes(), mountpoint)

	return fuse.Mount(mountpoint, filesystem)
}

// defaultMountpoint derives a mountpoint name from the image path by
// stripping its extension, e.g. "disk.img" -> "disk_mnt".
func defaultMountpoint(imagePath string) string {
	baseName := filepath.Base(imagePath)
	ext := filepath.Ext(baseName)
	baseName = strings.TrimSuffix(baseName, ext)
	return baseName + "_mnt"
}

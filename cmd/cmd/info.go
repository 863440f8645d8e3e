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
	"fmt"

	"github.com/ostafen/fatro/internal/disk"
	"github.com/ostafen/fatro/pkg/sysinfo"
	"github.com/ostafen/fatro/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "info <image_path>",
		Short:        "Print the geometry of a FAT32 volume or disk image",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runInfo,
	}

	cmd.Flags().Bool("mmap", false, "Use the memory-mapped block device backend instead of plain file reads.")
	return cmd
}

func runInfo(cmd *cobra.Command, args []string) error {
	useMmap, _ := cmd.Flags().GetBool("mmap")

	probe, err := disk.Probe(args[0])
	if err != nil {
		return err
	}

	filesystem, device, err := openVolume(args[0], useMmap)
	if err != nil {
		return err
	}
	defer device.Close()

	g := filesystem.Geometry()

	kind := "file"
	if probe.IsDevice {
		kind = "device"
	}

	fmt.Printf("path:                %s (%s, %s)\n", probe.Path, kind, format.FormatBytes(probe.Size))
	fmt.Printf("variant:             %s\n", g.Variant)
	fmt.Printf("sector size:         %d bytes\n", g.SectorSize)
	fmt.Printf("sectors per cluster: %d\n", g.SectorsPerCluster)
	fmt.Printf("cluster size:        %s\n", format.FormatBytes(int64(g.ClusterSizeBytes())))
	fmt.Printf("FAT count:           %d\n", g.FATCount)
	fmt.Printf("sectors per FAT:     %d\n", g.SectorsPerFAT)
	fmt.Printf("first FAT sector:    %d\n", g.FirstFATSector)
	fmt.Printf("first data sector:   %d\n", g.FirstDataSector)
	fmt.Printf("root cluster:        %d\n", g.RootCluster)

	if sys, err := sysinfo.Stat(); err == nil {
		fmt.Printf("host:                %s %s (%s)\n", sys.Name, sys.Release, sys.Version)
	}
	return nil
}

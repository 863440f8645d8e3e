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
	"io"
	"os"

	"github.com/ostafen/fatro/pkg/pbar"
	"github.com/spf13/cobra"
)

func DefineExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "extract <image_path> <volume_path> <dest_path>",
		Short:        "Copy a single file out of a FAT32 volume",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE:         runExtract,
	}

	cmd.Flags().Bool("mmap", false, "Use the memory-mapped block device backend instead of plain file reads.")
	cmd.Flags().Bool("quiet", false, "Suppress the progress bar.")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	useMmap, _ := cmd.Flags().GetBool("mmap")
	quiet, _ := cmd.Flags().GetBool("quiet")

	imagePath, volumePath, destPath := args[0], args[1], args[2]

	filesystem, device, err := openVolume(imagePath, useMmap)
	if err != nil {
		return err
	}
	defer device.Close()

	entry, err := resolvePath(filesystem, volumePath)
	if err != nil {
		return err
	}
	if entry.IsDirectory() {
		return fmt.Errorf("fatro: %s is a directory, not a file", volumePath)
	}

	src, err := filesystem.OpenFile(entry.FirstCluster, entry.FileSize)
	if err != nil {
		return fmt.Errorf("fatro: opening %s: %w", volumePath, err)
	}

	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("fatro: creating %s: %w", destPath, err)
	}
	defer dst.Close()

	if quiet || entry.FileSize == 0 {
		_, err = io.Copy(dst, src)
		return err
	}
	return copyWithProgress(dst, src, int64(entry.FileSize))
}

// copyWithProgress streams src into dst in fixed-size chunks, rendering a
// progress bar after each chunk the way pbar was built to be driven.
func copyWithProgress(dst io.Writer, src io.Reader, totalBytes int64) error {
	state := pbar.NewProgressBarState(totalBytes)
	defer state.Finish()

	buf := make([]byte, 256*1024)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			state.ProcessedBytes += int64(n)
			state.Render(false)
		}
		if err == io.EOF {
			state.Render(true)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

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
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/ostafen/fatro/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineLsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ls <image_path> [volume_path]",
		Short:        "List a directory's contents",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE:         runLs,
	}

	cmd.Flags().Bool("mmap", false, "Use the memory-mapped block device backend instead of plain file reads.")
	cmd.Flags().Bool("csv", false, "Print the listing as CSV instead of a table.")
	return cmd
}

// lsRow is one CSV-serializable listing row; gocsv reflects over its "csv"
// tags to build both the header and each record.
type lsRow struct {
	Name      string `csv:"name"`
	Type      string `csv:"type"`
	Size      int64  `csv:"size_bytes"`
	ReadOnly  bool   `csv:"read_only"`
	Hidden    bool   `csv:"hidden"`
	ShortName string `csv:"short_name"`
}

func runLs(cmd *cobra.Command, args []string) error {
	useMmap, _ := cmd.Flags().GetBool("mmap")
	asCSV, _ := cmd.Flags().GetBool("csv")

	volumePath := "/"
	if len(args) == 2 {
		volumePath = args[1]
	}

	filesystem, device, err := openVolume(args[0], useMmap)
	if err != nil {
		return err
	}
	defer device.Close()

	dir, err := resolvePath(filesystem, volumePath)
	if err != nil {
		return err
	}
	if !dir.IsDirectory() {
		return fmt.Errorf("fatro: %s is not a directory", volumePath)
	}

	entries, err := listDirectory(filesystem, dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	rows := make([]*lsRow, len(entries))
	for i, e := range entries {
		typ := "file"
		if e.IsDirectory() {
			typ = "dir"
		}
		rows[i] = &lsRow{
			Name:      e.Name,
			Type:      typ,
			Size:      int64(e.FileSize),
			ReadOnly:  e.IsReadOnly(),
			Hidden:    e.IsHidden(),
			ShortName: e.ShortName,
		}
	}

	if asCSV {
		out, err := gocsv.MarshalString(rows)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, out)
		return nil
	}

	printTable(rows)
	return nil
}

func printTable(rows []*lsRow) {
	nameWidth := len("NAME")
	for _, r := range rows {
		if len(r.Name) > nameWidth {
			nameWidth = len(r.Name)
		}
	}

	fmt.Printf("%-*s  %-4s  %10s  %s\n", nameWidth, "NAME", "TYPE", "SIZE", "FLAGS")
	for _, r := range rows {
		size := format.FormatBytes(r.Size)
		if r.Type == "dir" {
			size = "-"
		}

		flags := ""
		if r.ReadOnly {
			flags += "R"
		}
		if r.Hidden {
			flags += "H"
		}
		fmt.Printf("%-*s  %-4s  %10s  %s\n", nameWidth, r.Name, r.Type, size, flags)
	}
}

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

	"github.com/ostafen/partlet/internal/disk"
	"github.com/ostafen/partlet/internal/fuse"
	"github.com/ostafen/partlet/pkg/part"
	"github.com/spf13/cobra"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mount <device> <mountpoint>",
		Short:        "Mount the partitions of an image file or disk as virtual files",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunMount,
	}

	addTableFlags(cmd)
	cmd.Flags().Bool("mmap", false, "memory-map the source instead of reading it through the file")

	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)

	src, err := disk.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	table, err := part.ListTable(src.Reader(), tableOptions(cmd, src))
	if err != nil {
		return err
	}
	if len(table.Partitions) == 0 {
		return fmt.Errorf("no partitions to mount")
	}

	entries := make([]fuse.FileEntry, 0, len(table.Partitions))
	for _, p := range table.Partitions {
		entries = append(entries, fuse.FileEntry{
			Name:   fmt.Sprintf("p%d", p.ID),
			Offset: p.FirstByte,
			Size:   p.Len,
		})
	}

	r := src.ReaderAt()
	if useMmap, _ := cmd.Flags().GetBool("mmap"); useMmap {
		mr, closer, err := mapSource(src.Path)
		if err != nil {
			return err
		}
		defer closer.Close()
		r = mr
	}

	log.Infof("mounting %d partitions at %s", len(entries), args[1])
	return fuse.Mount(args[1], r, entries)
}

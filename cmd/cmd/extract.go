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
	"path/filepath"

	"github.com/ostafen/partlet/internal/disk"
	"github.com/ostafen/partlet/internal/logger"
	"github.com/ostafen/partlet/pkg/part"
	"github.com/ostafen/partlet/pkg/pbar"
	"github.com/ostafen/partlet/pkg/reader"
	"github.com/ostafen/partlet/pkg/util/format"
	osutil "github.com/ostafen/partlet/pkg/util/os"
	"github.com/spf13/cobra"
)

func DefineExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "extract <device>",
		Short:        "Extract partitions of an image file or disk to separate files",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunExtract,
	}

	addTableFlags(cmd)
	cmd.Flags().IntP("partition", "p", -1, "slot of the partition to extract (default: all)")
	cmd.Flags().StringP("dump", "d", ".", "directory where partition files are written")
	cmd.Flags().String("concat", "", "write the selected partitions back to back into a single file")

	return cmd
}

func RunExtract(cmd *cobra.Command, args []string) error {
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

	slot, _ := cmd.Flags().GetInt("partition")
	selected, err := selectPartitions(table.Partitions, slot)
	if err != nil {
		return err
	}

	concat, _ := cmd.Flags().GetString("concat")
	if concat != "" {
		return extractConcat(log, src, selected, concat)
	}

	dumpDir, _ := cmd.Flags().GetString("dump")
	if _, err := osutil.EnsureDir(dumpDir, false); err != nil {
		return err
	}

	for _, p := range selected {
		path := filepath.Join(dumpDir, fmt.Sprintf("p%d.img", p.ID))
		if err := extractOne(log, src, p, path); err != nil {
			return err
		}
	}
	return nil
}

// selectPartitions filters the table down to the requested slot, or returns
// it unchanged when slot is negative.
func selectPartitions(partitions []part.Partition, slot int) ([]part.Partition, error) {
	if slot < 0 {
		if len(partitions) == 0 {
			return nil, fmt.Errorf("no partitions to extract")
		}
		return partitions, nil
	}

	for _, p := range partitions {
		if p.ID == slot {
			return []part.Partition{p}, nil
		}
	}
	return nil, fmt.Errorf("no partition in slot %d", slot)
}

func extractOne(log *logger.Logger, src *disk.Source, p part.Partition, path string) error {
	pr, err := part.OpenPartition(src.Reader(), p)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	log.Infof("extracting partition %d (%s) to %s", p.ID, format.FormatBytes(pr.Size()), path)
	return copyWithProgress(f, pr, pr.Size())
}

// extractConcat writes the selected partitions into a single contiguous
// file, in table order. The range readers all borrow the same source, which
// is safe here because MultiReadSeeker drains them one at a time.
func extractConcat(log *logger.Logger, src *disk.Source, partitions []part.Partition, path string) error {
	readers := make([]io.ReadSeeker, 0, len(partitions))
	sizes := make([]int64, 0, len(partitions))

	var total int64
	for _, p := range partitions {
		pr, err := part.OpenPartition(src.Reader(), p)
		if err != nil {
			return err
		}
		readers = append(readers, pr)
		sizes = append(sizes, pr.Size())
		total += pr.Size()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	log.Infof("writing %d partitions (%s) to %s", len(partitions), format.FormatBytes(total), path)
	return copyWithProgress(f, reader.NewMultiReadSeeker(readers, sizes), total)
}

func copyWithProgress(dst io.Writer, src io.Reader, total int64) error {
	pbs := pbar.NewProgressBarState(total)

	buf := make([]byte, readBufferSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				pbs.Finish()
				return werr
			}
			pbs.ProcessedBytes += int64(n)
			pbs.Render(false)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			pbs.Finish()
			return err
		}
	}

	pbs.Render(true)
	pbs.Finish()
	return nil
}

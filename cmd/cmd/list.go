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
	"math"
	"os"

	"github.com/ostafen/partlet/internal/disk"
	"github.com/ostafen/partlet/internal/env"
	"github.com/ostafen/partlet/internal/logger"
	"github.com/ostafen/partlet/pkg/dfxml"
	"github.com/ostafen/partlet/pkg/part"
	"github.com/ostafen/partlet/pkg/reader"
	"github.com/ostafen/partlet/pkg/util/format"
	"github.com/spf13/cobra"
)

// readBufferSize is the size of the sliding buffer placed between the
// partition readers and the underlying device.
const readBufferSize = 64 * 1024

func DefineListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list <device>",
		Short:        "List the partitions of an image file or disk",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunList,
	}

	addTableFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "write a DFXML report of the partition table to the specified file")

	return cmd
}

// addTableFlags registers the flags shared by every command that reads a
// partition table.
func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().Uint16("sector-size", 0, "sector size in bytes (0 = guess from the partition table)")
	cmd.Flags().Bool("no-gpt", false, "never read a GPT, even behind a protective MBR")
	cmd.Flags().Bool("require-gpt", false, "fail unless the disk carries a GPT")
}

// tableOptions builds the reading options from the shared flags. When the
// source is a block device and no explicit sector size was given, the size
// reported by the kernel is used.
func tableOptions(cmd *cobra.Command, src *disk.Source) part.Options {
	sectorSize, _ := cmd.Flags().GetUint16("sector-size")
	noGPT, _ := cmd.Flags().GetBool("no-gpt")
	requireGPT, _ := cmd.Flags().GetBool("require-gpt")

	opts := part.Options{SectorSize: sectorSize}
	if opts.SectorSize == 0 && src.SectorSize > 0 && src.SectorSize <= math.MaxUint16 {
		opts.SectorSize = uint16(src.SectorSize)
	}

	if noGPT {
		opts.GPT = part.ReadGPTNever
	}
	if requireGPT {
		opts.MBR = part.ReadMBRNever
	}
	return opts
}

func newLogger(cmd *cobra.Command) *logger.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.New(os.Stdout, logger.ParseLevel(level))
}

func RunList(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)

	src, err := disk.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	log.Debugf("opened %s: size=%s, device=%v, sector size=%d",
		src.Path, format.FormatBytes(src.Size), src.IsDevice, src.SectorSize)

	r := reader.NewBufferedReadSeeker(src.Reader(), readBufferSize)
	table, err := part.ListTable(r, tableOptions(cmd, src))
	if err != nil {
		return err
	}

	log.Infof("found %s partition table with %d partitions", table.Scheme, len(table.Partitions))
	if table.Scheme == part.SchemeGPT {
		log.Infof("disk GUID: %s", table.DiskUUID())
	}

	for _, p := range table.Partitions {
		fmt.Println(p.String())
		fmt.Println()
	}

	outputFile, _ := cmd.Flags().GetString("output")
	if outputFile != "" {
		if err := writeReport(outputFile, src, table); err != nil {
			return err
		}
		log.Infof("report written to %s", outputFile)
	}
	return nil
}

// writeReport serializes the partition table as a DFXML document, one
// <volume> element per partition.
func writeReport(path string, src *disk.Source, table *part.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := dfxml.NewDFXMLWriter(f)

	hdr := dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: dfxml.Source{
			ImageFilename: src.Path,
			SectorSize:    int(src.SectorSize),
			ImageSize:     uint64(src.Size),
		},
	}
	if err := w.WriteHeader(hdr); err != nil {
		return err
	}

	for _, p := range table.Partitions {
		v := dfxml.Volume{
			Offset:    p.FirstByte,
			Index:     p.ID,
			Length:    p.Len,
			TableType: table.Scheme.String(),
		}
		switch attrs := p.Attrs.(type) {
		case part.MBRAttributes:
			v.TypeCode = fmt.Sprintf("0x%02X", attrs.TypeCode)
			v.Bootable = attrs.Bootable
		case part.GPTAttributes:
			v.TypeGUID = attrs.TypeUUID().String()
			v.PartitionGUID = attrs.PartitionUUID().String()
			v.Name = attrs.Name
		}

		if err := w.WriteVolume(v); err != nil {
			return err
		}
	}
	return w.Close()
}

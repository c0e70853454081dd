package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/isis-group/isis-sub000/pkg/compression"
	"github.com/isis-group/isis-sub000/pkg/config"
	"github.com/isis-group/isis-sub000/pkg/data"
	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/formats/columnar"
	"github.com/isis-group/isis-sub000/pkg/logger"
	"github.com/isis-group/isis-sub000/pkg/rawio"
)

func (a *app) rawCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raw",
		Short: "Work with raw element files",
		Long: `Raw files hold the elements of one plain kind back to back, optionally
compressed. The codec is picked from the file extension (.gz, .sz, .lz4, .zst,
.s2, .deflate) unless --compression names one.`,
	}
	pf := cmd.PersistentFlags()
	pf.String("compression", "", "codec for input files (none, gzip, snappy, lz4, zstd, s2, deflate)")
	pf.String("level", "", "compression level (fastest, default, better, best)")
	pf.String("byte-order", "", "byte order of stored elements (native, little, big)")
	pf.Bool("mmap", true, "memory map uncompressed input files")
	a.bind(pf, "raw.compression", "compression")
	a.bind(pf, "raw.level", "level")
	a.bind(pf, "raw.byte_order", "byte-order")
	a.bind(pf, "raw.use_mmap", "mmap")

	cmd.AddCommand(a.rawConvertCommand(), a.rawStatCommand(), a.rawExportCommand(), a.rawImportCommand())
	return cmd
}

func (a *app) readRaw(path, typeName string) (data.Array, error) {
	id, err := resolveType(typeName)
	if err != nil {
		return nil, err
	}
	return rawio.ReadFile(path, id, a.cfg.Raw)
}

// outputRaw is the raw configuration for written files. Their codec follows
// the extension unless given explicitly.
func (a *app) outputRaw(codec string) config.RawConfig {
	out := a.cfg.Raw
	out.Compression = codec
	return out
}

func (a *app) rawConvertCommand() *cobra.Command {
	var inType, outType, outCodec string
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a raw file to another element kind",
		Example: `  isisconv raw convert scan.raw scan8.raw.zst --in-type s16bit --out-type u8bit
  isisconv raw convert big.raw little.raw --in-type float --out-type float --byte-order big`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readRaw(args[0], inType)
			if err != nil {
				return err
			}
			defer src.Release()

			dst := src.TypeID()
			if outType != "" {
				if dst, err = resolveType(outType); err != nil {
					return err
				}
			}
			policy, err := a.cfg.Conversion.Policy()
			if err != nil {
				return err
			}
			out := a.outputRaw(outCodec)
			// --byte-order describes the input, output is native
			out.ByteOrder = "native"
			if err := rawio.WriteArray(args[1], src, dst, policy, out); err != nil {
				return err
			}
			logger.Info("converted raw file", zap.String("in", args[0]), zap.String("out", args[1]),
				zap.Object("source", rawio.Stat(src)), zap.String("to", dst.ArrayName()))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s => %s (%d elements)\n", src.TypeName(), dst.ArrayName(), src.Len())
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&inType, "in-type", "", "element kind of the input")
	f.StringVar(&outType, "out-type", "", "element kind of the output (default: same as input)")
	f.StringVar(&outCodec, "out-compression", "", "codec for the output (default: from extension)")
	_ = cmd.MarkFlagRequired("in-type")
	return cmd
}

func (a *app) rawStatCommand() *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "stat <file>",
		Short: "Print element count and value range of a raw file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arr, err := a.readRaw(args[0], typeName)
			if err != nil {
				return err
			}
			defer arr.Release()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rawio.Stat(arr).String())
			return err
		},
	}
	cmd.Flags().StringVar(&typeName, "type", "", "element kind")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// isParquet tells the two table formats apart by extension.
func isParquet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".parquet")
}

func (a *app) rawExportCommand() *cobra.Command {
	var typeName, out, name, codec string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a raw file as a single column Arrow IPC or Parquet file",
		Long: `Export writes the elements of a raw file as one column. Output files
ending in .parquet are written as Parquet, everything else as Arrow IPC.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arr, err := a.readRaw(args[0], typeName)
			if err != nil {
				return err
			}
			defer arr.Release()

			if out == "" {
				_, trimmed := compression.FromPath(args[0])
				out = strings.TrimSuffix(trimmed, filepath.Ext(trimmed)) + ".arrow"
			}
			if name == "" {
				name = arr.TypeID().Name()
			}
			f, err := os.Create(out) //nolint:gosec // G304: output path is a CLI argument
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeFile, "failed to create "+out)
			}
			cols := []columnar.Column{{Name: name, Array: arr}}
			if isParquet(out) {
				err = columnar.WriteParquet(f, cols, compression.Algorithm(codec))
			} else {
				err = columnar.WriteIPC(f, cols)
			}
			if err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, errors.ErrorTypeFile, "failed to close "+out)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s column %q to %s\n", arr.TypeName(), name, out)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&typeName, "type", "", "element kind")
	f.StringVar(&out, "out", "", "output file (default: input name with .arrow)")
	f.StringVar(&name, "name", "", "column name (default: the kind name)")
	f.StringVar(&codec, "parquet-compression", "snappy", "page codec for Parquet output (none, snappy, gzip, lz4, zstd)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (a *app) rawImportCommand() *cobra.Command {
	var column, outCodec string
	cmd := &cobra.Command{
		Use:   "import <table> <out>",
		Short: "Write one column of an Arrow IPC or Parquet file as a raw file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0]) //nolint:gosec // G304: input path is a CLI argument
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeFile, "failed to open "+args[0])
			}
			defer f.Close()

			var cols []columnar.Column
			if isParquet(args[0]) {
				cols, err = columnar.ReadParquet(cmd.Context(), f)
			} else {
				cols, err = columnar.ReadIPC(f)
			}
			if err != nil {
				return err
			}
			defer func() {
				for _, c := range cols {
					c.Array.Release()
				}
			}()

			var picked *columnar.Column
			for i := range cols {
				if column == "" || cols[i].Name == column {
					picked = &cols[i]
					break
				}
			}
			if picked == nil {
				return errors.Newf(errors.ErrorTypeValidation, "no column %q in %s", column, args[0])
			}
			if err := rawio.WriteFile(args[1], picked.Array, a.outputRaw(outCodec)); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote column %q (%s, %d elements) to %s\n",
				picked.Name, picked.Array.TypeName(), picked.Array.Len(), args[1])
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&column, "column", "", "column to write (default: the first)")
	f.StringVar(&outCodec, "out-compression", "", "codec for the output (default: from extension)")
	return cmd
}

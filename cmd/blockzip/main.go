package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blockzip/blockzip"
	"github.com/blockzip/blockzip/codec"
)

var (
	blockSize   int
	codecName   string
	parallelism int
)

func main() {
	cmd := &cobra.Command{
		Use:           "blockzip <source> <dest>",
		Short:         "Compress a file into a random-access blockzip container",
		Args:          cobra.ExactArgs(2),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().IntVar(&blockSize, "block-size", blockzip.DefaultBlockSize, "uncompressed bytes per block")
	cmd.Flags().StringVar(&codecName, "codec", "snappy", "block codec (snappy or zstd)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "blocks compressed concurrently")

	if err := cmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	c, ok := codec.ByName(codecName)
	if !ok {
		return fmt.Errorf("unknown codec %q", codecName)
	}

	stats, err := blockzip.EncodeFile(args[0], args[1],
		blockzip.WithBlockSize(blockSize),
		blockzip.WithCodec(c),
		blockzip.WithParallelism(parallelism),
	)
	if err != nil {
		return err
	}

	fmt.Printf("Uncompressed: %d KiB\n", stats.Uncompressed/1024)
	fmt.Printf("  Compressed: %d KiB + Index: %d KiB\n", stats.Compressed/1024, stats.IndexBytes/1024)
	fmt.Printf("       Ratio: x%.2f\n", stats.Ratio())

	return nil
}

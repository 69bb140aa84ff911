package blockzip

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/blockzip/blockzip/binary"
	"github.com/blockzip/blockzip/codec"
)

// Stats summarizes a finished encode.
type Stats struct {
	Uncompressed int64
	Compressed   int64
	IndexBytes   int64
	Blocks       int
}

// Ratio is the space saving of the whole artifact: source bytes over
// compressed bytes plus index overhead.
func (s Stats) Ratio() float64 {
	return float64(s.Uncompressed) / float64(s.Compressed+s.IndexBytes)
}

type options struct {
	blockSize   int
	codec       codec.Codec
	parallelism int
	cacheBlocks int
}

// An Option configures an encode or an open.
type Option func(*options)

// WithBlockSize sets the number of uncompressed bytes per block for Encode.
func WithBlockSize(n int) Option {
	return func(o *options) { o.blockSize = n }
}

// WithCodec selects the block codec. Both sides of one container must use
// the same codec; the default is snappy.
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithParallelism lets Encode compress up to n blocks concurrently. The
// produced container is byte-identical to a sequential encode.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// WithBlockCache gives an opened container an LRU of up to n decompressed
// blocks. Purely a performance option; read semantics are unchanged.
func WithBlockCache(n int) Option {
	return func(o *options) { o.cacheBlocks = n }
}

func newOptions(opts []Option) *options {
	o := &options{
		blockSize:   DefaultBlockSize,
		codec:       codec.Snappy,
		parallelism: 1,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Encode compresses total bytes from src into dst as a container.
//
// The write is two-phase: the header and index region is reserved up front,
// compressed blocks are appended in a single forward pass, and the header and
// index are patched in once every block's compressed size is known. A failed
// encode leaves dst in an unusable state and the caller must discard it.
func Encode(dst io.WriteSeeker, src io.Reader, total int64, opts ...Option) (Stats, error) {
	o := newOptions(opts)

	if total < 0 {
		return Stats{}, errors.Errorf("blockzip: negative source length %d", total)
	}

	blockCount := blockCountFor(total, o.blockSize)
	indexBytes := int64(blockCount) * indexEntrySize
	dataStart := int64(headerSize) + indexBytes

	// Reserve the header+index region; it is only known in full after
	// compression.
	if _, err := dst.Seek(dataStart, io.SeekStart); err != nil {
		return Stats{}, errors.Wrap(err, "blockzip: reserving header")
	}

	var index []int
	var err error

	if o.parallelism > 1 {
		index, err = encodeBlocksParallel(dst, src, total, blockCount, o)
	} else {
		index, err = encodeBlocks(dst, src, total, blockCount, o)
	}

	if err != nil {
		return Stats{}, err
	}

	if _, err := dst.Seek(0, io.SeekStart); err != nil {
		return Stats{}, errors.Wrap(err, "blockzip: seeking to header")
	}

	if err := binary.WriteInt32(dst, o.blockSize); err != nil {
		return Stats{}, errors.Wrap(err, "blockzip: writing header")
	}

	if err := binary.WriteInt32(dst, blockCount); err != nil {
		return Stats{}, errors.Wrap(err, "blockzip: writing header")
	}

	stats := Stats{
		Uncompressed: total,
		IndexBytes:   indexBytes,
		Blocks:       blockCount,
	}

	for _, length := range index {
		if err := binary.WriteUint16(dst, length); err != nil {
			return Stats{}, errors.Wrap(err, "blockzip: writing index")
		}

		stats.Compressed += int64(length)
	}

	// The backpatched header+index must land exactly on the reserved
	// region; anything else is a bug, not a recoverable condition.
	pos, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return Stats{}, errors.Wrap(err, "blockzip: checking header position")
	}

	if pos != dataStart {
		return Stats{}, errors.Errorf("blockzip: header+index ended at byte %d, reserved %d", pos, dataStart)
	}

	return stats, nil
}

// EncodeFile encodes the file at srcPath into a new container at dstPath.
func EncodeFile(srcPath, dstPath string, opts ...Option) (Stats, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return Stats{}, errors.Wrap(err, "blockzip: opening source")
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return Stats{}, errors.Wrap(err, "blockzip: sizing source")
	}

	dst, err := os.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return Stats{}, errors.Wrap(err, "blockzip: opening destination")
	}

	stats, err := Encode(dst, src, info.Size(), opts...)

	if cerr := dst.Close(); err == nil {
		err = cerr
	}

	return stats, err
}

// chunkLength returns how many source bytes block i holds.
func chunkLength(i, blockCount, blockSize int, total int64) int {
	if i == blockCount-1 {
		return int(total - int64(blockSize)*int64(blockCount-1))
	}

	return blockSize
}

func encodeBlocks(dst io.Writer, src io.Reader, total int64, blockCount int, o *options) ([]int, error) {
	index := make([]int, 0, blockCount)
	chunk := make([]byte, o.blockSize)

	for i := 0; i < blockCount; i++ {
		want := chunkLength(i, blockCount, o.blockSize, total)

		if _, err := io.ReadFull(src, chunk[:want]); err != nil {
			return nil, errors.Wrapf(err, "blockzip: reading source block %d", i)
		}

		block := o.codec.Compress(nil, chunk[:want])

		if len(block) > MaxBlockLength {
			return nil, formatErrorf("block %d compresses to %d bytes, index limit is %d", i, len(block), MaxBlockLength)
		}

		if _, err := dst.Write(block); err != nil {
			return nil, errors.Wrapf(err, "blockzip: writing block %d", i)
		}

		index = append(index, len(block))
	}

	return index, nil
}

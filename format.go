package blockzip

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/blockzip/blockzip/binary"
)

const (
	headerSize     = 8
	indexEntrySize = 2

	// MaxBlockLength is the largest compressed block the uint16 index can
	// describe.
	MaxBlockLength = 1<<16 - 1

	// DefaultBlockSize is the number of uncompressed bytes per block.
	DefaultBlockSize = 4096
)

// format is the decoded header and block-length index of a container, plus
// the physical block offsets precomputed as prefix sums over the index.
// It is immutable after readFormat and shared by concurrent reads without
// synchronization.
type format struct {
	blockSize  int
	blockCount int
	index      []int
	offsets    []int64
	dataStart  int64
}

// blockCountFor keeps the reference encoder's arithmetic: integer division
// plus one, so a stream whose length is an exact multiple of the block size
// (the empty stream included) carries a trailing empty block.
func blockCountFor(total int64, blockSize int) int {
	return int(total/int64(blockSize)) + 1
}

// readFormat loads and validates the header and index of a container whose
// physical size is known.
func readFormat(r io.ReaderAt, size int64) (*format, error) {
	head, err := binary.ReadBytesAt(r, headerSize, 0)
	if err == io.ErrUnexpectedEOF {
		return nil, formatErrorf("truncated header")
	} else if err != nil {
		return nil, errors.Wrap(err, "blockzip: reading header")
	}

	buf := bytes.NewReader(head)
	blockSize, _ := binary.ReadInt32(buf)
	blockCount, _ := binary.ReadInt32(buf)

	if blockSize <= 0 {
		return nil, formatErrorf("invalid block size %d", blockSize)
	}

	if blockCount <= 0 {
		return nil, formatErrorf("invalid block count %d", blockCount)
	}

	indexBytes := int64(blockCount) * indexEntrySize
	raw, err := binary.ReadBytesAt(r, indexBytes, headerSize)
	if err == io.ErrUnexpectedEOF {
		return nil, formatErrorf("truncated index: have %d bytes, need %d", size-headerSize, indexBytes)
	} else if err != nil {
		return nil, errors.Wrap(err, "blockzip: reading index")
	}

	f := &format{
		blockSize:  blockSize,
		blockCount: blockCount,
		index:      make([]int, blockCount),
		offsets:    make([]int64, blockCount),
		dataStart:  headerSize + indexBytes,
	}

	offset := f.dataStart
	entries := bytes.NewReader(raw)

	for i := range f.index {
		length, _ := binary.ReadUint16(entries)
		f.index[i] = length
		f.offsets[i] = offset
		offset += int64(length)
	}

	if offset != size {
		return nil, formatErrorf("layout describes %d bytes, container is %d", offset, size)
	}

	return f, nil
}

func (f *format) blockOffset(i int) int64 {
	return f.offsets[i]
}

func (f *format) blockLength(i int) int {
	return f.index[i]
}

// physicalRange returns where block i's compressed bytes live in the
// container file.
func (f *format) physicalRange(i int) (offset int64, length int) {
	return f.offsets[i], f.index[i]
}

// logicalBlockRange returns the span of the uncompressed stream covered by
// block i. Every block spans blockSize bytes except the last, which covers
// whatever remains of the stream and may be empty.
func (f *format) logicalBlockRange(i int, total int64) (offset int64, length int) {
	offset = int64(i) * int64(f.blockSize)

	if i == f.blockCount-1 {
		return offset, int(total - offset)
	}

	return offset, f.blockSize
}

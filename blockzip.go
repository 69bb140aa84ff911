/*
The blockzip package stores an immutable byte stream inside a compressed
container that supports random access: arbitrary byte ranges of the original
stream can be read back without decompressing anything but the blocks the
range touches.

The container layout is a fixed 8-byte header (block size and block count, both
little-endian int32), a block-length index of little-endian uint16 compressed
lengths, and the compressed blocks themselves, back to back in order. Every
block holds exactly blockSize bytes of the source except the last, which
holds the remainder and is empty when the source length is an exact multiple
of the block size.

Containers are immutable once encoded. An open Container is safe for
concurrent readers: the header and index are loaded once and never change,
and each read works entirely out of call-local buffers.
*/
package blockzip

import (
	"io"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/blockzip/blockzip/codec"
)

// Container is an open blockzip container.
type Container struct {
	file   io.ReaderAt
	closer io.Closer
	codec  codec.Codec
	format *format
	total  int64
	cache  *lru.Cache[int, []byte]
}

// Open opens the container file at path for reading.
func Open(path string, opts ...Option) (*Container, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "blockzip: opening container")
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, "blockzip: sizing container")
	}

	container, err := NewContainer(file, info.Size(), opts...)
	if err != nil {
		file.Close()
		return nil, err
	}

	container.closer = file

	return container, nil
}

// NewContainer opens a container stored in r, whose total physical size must
// be given. The codec must match the one the container was encoded with.
func NewContainer(r io.ReaderAt, size int64, opts ...Option) (*Container, error) {
	o := newOptions(opts)

	f, err := readFormat(r, size)
	if err != nil {
		return nil, err
	}

	container := &Container{
		file:   r,
		codec:  o.codec,
		format: f,
	}

	if o.cacheBlocks > 0 {
		container.cache, _ = lru.New[int, []byte](o.cacheBlocks)
	}

	// The stream length isn't stored; it falls out of the block arithmetic
	// once the last block's decompressed size is known.
	last := f.blockCount - 1
	var scratch []byte

	raw, err := container.readPhysical(last, &scratch)
	if err != nil {
		return nil, err
	}

	lastLen, err := container.codec.DecompressedLen(raw)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptData, "sizing last block: %v", err)
	}

	if lastLen > f.blockSize {
		return nil, formatErrorf("last block decompresses to %d bytes, block size is %d", lastLen, f.blockSize)
	}

	container.total = int64(f.blockSize)*int64(last) + int64(lastLen)

	return container, nil
}

// Size returns the length of the uncompressed stream.
func (c *Container) Size() int64 {
	return c.total
}

// BlockSize returns the number of uncompressed bytes per block.
func (c *Container) BlockSize() int {
	return c.format.blockSize
}

// Blocks returns the number of blocks in the container, counting the
// trailing empty block present when the stream length is an exact multiple
// of the block size.
func (c *Container) Blocks() int {
	return c.format.blockCount
}

// ReadAt implements io.ReaderAt over the uncompressed stream. A range that
// crosses the end of the stream returns the available remainder and io.EOF,
// like os.File. Safe for concurrent callers.
func (c *Container) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, errors.New("blockzip: negative read offset")
	}

	if len(p) == 0 {
		return 0, nil
	}

	if off >= c.total {
		return 0, io.EOF
	}

	block := int(off / int64(c.format.blockSize))
	within := int(off % int64(c.format.blockSize))

	var scratch []byte

	for n < len(p) && block < c.format.blockCount {
		data, err := c.block(block, &scratch)
		if err != nil {
			return n, err
		}

		if within >= len(data) {
			break
		}

		n += copy(p[n:], data[within:])
		within = 0
		block++
	}

	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Reader returns a sequential io.ReadSeeker view of the uncompressed stream.
func (c *Container) Reader() *io.SectionReader {
	return io.NewSectionReader(c, 0, c.total)
}

// Close closes the underlying file, if Open created it.
func (c *Container) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}

	return nil
}

// block returns the decompressed contents of block i, from the cache when
// one is configured. Cached slices are shared between calls and must never
// be written to; ReadAt only copies out of them.
func (c *Container) block(i int, scratch *[]byte) ([]byte, error) {
	if c.cache != nil {
		if data, ok := c.cache.Get(i); ok {
			return data, nil
		}
	}

	raw, err := c.readPhysical(i, scratch)
	if err != nil {
		return nil, err
	}

	_, want := c.format.logicalBlockRange(i, c.total)

	data, err := c.codec.Decompress(nil, raw, want)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptData, "block %d: %v", i, err)
	}

	if c.cache != nil {
		c.cache.Add(i, data)
	}

	return data, nil
}

// readPhysical reads block i's compressed bytes in one positioned read,
// reusing *scratch across the blocks of a single call.
func (c *Container) readPhysical(i int, scratch *[]byte) ([]byte, error) {
	offset, length := c.format.physicalRange(i)

	if cap(*scratch) < length {
		*scratch = make([]byte, length)
	}

	buf := (*scratch)[:length]

	if _, err := c.file.ReadAt(buf, offset); err != nil && !(err == io.EOF && length == 0) {
		return nil, errors.Wrapf(err, "blockzip: reading block %d", i)
	}

	return buf, nil
}

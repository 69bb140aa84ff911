package vfs

import (
	"github.com/sirupsen/logrus"

	"github.com/blockzip/blockzip"
	"github.com/blockzip/blockzip/codec"
)

// Compressed decorates a base VFS so that files opened through it are read
// as blockzip containers: reads see the uncompressed stream, any write or
// truncate is rejected with blockzip.ErrReadOnly, and every operation
// outside the read path forwards to the base backend untouched.
type Compressed struct {
	VFS

	codec codec.Codec
	cache int
	log   *logrus.Logger
}

// A CompressedOption configures the shim.
type CompressedOption func(*Compressed)

// WithCodec selects the codec the containers were encoded with. Defaults to
// snappy.
func WithCodec(c codec.Codec) CompressedOption {
	return func(v *Compressed) { v.codec = c }
}

// WithBlockCache gives each opened container an LRU of up to n decompressed
// blocks.
func WithBlockCache(n int) CompressedOption {
	return func(v *Compressed) { v.cache = n }
}

// WithLogger enables debug logging of container opens.
func WithLogger(log *logrus.Logger) CompressedOption {
	return func(v *Compressed) { v.log = log }
}

func NewCompressed(base VFS, opts ...CompressedOption) *Compressed {
	v := &Compressed{VFS: base, codec: codec.Snappy}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Open opens name as a container through the base VFS. The requested flags
// are ignored in favor of read-only access; containers are immutable.
func (v *Compressed) Open(name string, flags OpenFlag) (File, error) {
	real, err := v.VFS.Open(name, OpenReadOnly)
	if err != nil {
		return nil, err
	}

	size, err := real.Size()
	if err != nil {
		real.Close()
		return nil, err
	}

	opts := []blockzip.Option{blockzip.WithCodec(v.codec)}
	if v.cache > 0 {
		opts = append(opts, blockzip.WithBlockCache(v.cache))
	}

	container, err := blockzip.NewContainer(real, size, opts...)
	if err != nil {
		real.Close()
		return nil, err
	}

	if v.log != nil {
		v.log.WithFields(logrus.Fields{
			"name":   name,
			"codec":  v.codec.Name(),
			"size":   container.Size(),
			"blocks": container.Blocks(),
		}).Debug("opened compressed container")
	}

	return &containerFile{File: real, container: container}, nil
}

// containerFile serves the uncompressed stream from a container while
// forwarding everything outside the read and write paths to the real file
// underneath.
type containerFile struct {
	File

	container *blockzip.Container
}

func (f *containerFile) ReadAt(p []byte, off int64) (int, error) {
	return f.container.ReadAt(p, off)
}

func (f *containerFile) WriteAt(p []byte, off int64) (int, error) {
	return 0, blockzip.ErrReadOnly
}

func (f *containerFile) Truncate(size int64) error {
	return blockzip.ErrReadOnly
}

// Size reports the logical, uncompressed length of the stream, not the
// container's physical size.
func (f *containerFile) Size() (int64, error) {
	return f.container.Size(), nil
}

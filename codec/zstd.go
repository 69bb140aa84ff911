package codec

import (
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Zstd trades compression speed for a better ratio than snappy.
var Zstd Codec = newZstdCodec()

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() *zstdCodec {
	// Zero-length blocks must still produce a valid frame, otherwise the
	// trailing empty block of an exact-multiple stream has no framing to
	// size it by.
	enc, _ := zstd.NewWriter(nil, zstd.WithZeroFrames(true))
	dec, _ := zstd.NewReader(nil)

	return &zstdCodec{enc: enc, dec: dec}
}

func (c *zstdCodec) Name() string { return "zstd" }

func (c *zstdCodec) Compress(dst, src []byte) []byte {
	return c.enc.EncodeAll(src, dst[:0])
}

func (c *zstdCodec) Decompress(dst, src []byte, expected int) ([]byte, error) {
	out, err := c.dec.DecodeAll(src, dst[:0])
	if err != nil {
		return nil, errors.Wrap(err, "zstd")
	}

	if len(out) != expected {
		return nil, errors.Errorf("zstd: block decompressed to %d bytes, expected %d", len(out), expected)
	}

	return out, nil
}

func (c *zstdCodec) DecompressedLen(src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	var header zstd.Header
	if err := header.Decode(src); err != nil {
		return 0, errors.Wrap(err, "zstd")
	}

	if !header.HasFCS {
		return 0, errors.New("zstd: frame does not declare its content size")
	}

	return int(header.FrameContentSize), nil
}

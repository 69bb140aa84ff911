package codec

import (
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// Snappy is the default codec.
var Snappy Codec = snappyCodec{}

type snappyCodec struct{}

func (snappyCodec) Name() string { return "snappy" }

func (snappyCodec) Compress(dst, src []byte) []byte {
	return snappy.Encode(dst, src)
}

func (snappyCodec) Decompress(dst, src []byte, expected int) ([]byte, error) {
	out, err := snappy.Decode(dst, src)
	if err != nil {
		return nil, errors.Wrap(err, "snappy")
	}

	if len(out) != expected {
		return nil, errors.Errorf("snappy: block decompressed to %d bytes, expected %d", len(out), expected)
	}

	return out, nil
}

func (snappyCodec) DecompressedLen(src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	n, err := snappy.DecodedLen(src)
	if err != nil {
		return 0, errors.Wrap(err, "snappy")
	}

	return n, nil
}

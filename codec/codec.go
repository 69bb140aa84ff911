/*
The codec package provides the pluggable block compression capability used by
blockzip containers. A codec compresses one bounded-size block at a time and
decompresses a block back to an exact expected length, failing otherwise.

The container format carries no record of which codec produced it, so the
encoder and every reader of one container must be constructed with the same
codec. Snappy is the default on both sides.
*/
package codec

// A Codec compresses and decompresses individual blocks.
//
// Implementations must be safe for concurrent use: readers decompress blocks
// from many goroutines at once, and the parallel encoder compresses blocks
// from several workers.
type Codec interface {
	Name() string

	// Compress returns the compressed form of src. dst may be used as
	// scratch space to avoid an allocation, and may be nil.
	Compress(dst, src []byte) []byte

	// Decompress returns the decompressed form of src, using dst as scratch
	// space when possible. It fails if src is malformed or does not
	// decompress to exactly expected bytes.
	Decompress(dst, src []byte, expected int) ([]byte, error)

	// DecompressedLen reports how many bytes src decompresses to, using the
	// codec's own framing, without decompressing.
	DecompressedLen(src []byte) (int, error)
}

// ByName returns the codec registered under name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "snappy":
		return Snappy, true
	case "zstd":
		return Zstd, true
	}

	return nil, false
}

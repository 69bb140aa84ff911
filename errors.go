package blockzip

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrReadOnly is returned for any write or truncate against a container.
	// Containers are immutable once encoded.
	ErrReadOnly = errors.New("blockzip: container is read-only")

	// ErrCorruptData is returned when a block fails to decompress or
	// decompresses to the wrong length. It is scoped to the read that hit
	// the bad block; other ranges of the container stay readable.
	ErrCorruptData = errors.New("blockzip: corrupt block data")
)

// FormatError reports a structural problem with a container: a bad header,
// a truncated index, a layout that disagrees with the file's actual size, or
// a block that compresses past what the index can record.
type FormatError struct {
	msg string
}

func formatErrorf(format string, args ...interface{}) *FormatError {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

func (e *FormatError) Error() string {
	return "blockzip: " + e.msg
}

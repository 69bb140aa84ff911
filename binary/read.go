package binary

import (
	"encoding/binary"
	"io"
)

// ReadBytesAt reads exactly num bytes at the given offset, failing with
// io.ErrUnexpectedEOF when fewer are available.
func ReadBytesAt(r io.ReaderAt, num, offset int64) ([]byte, error) {
	bytes := make([]byte, num)
	n, err := r.ReadAt(bytes, offset)

	if err == io.EOF && int64(n) < num {
		err = io.ErrUnexpectedEOF
	} else if err == io.EOF {
		err = nil
	}

	if err != nil {
		return nil, err
	}

	return bytes, nil
}

func ReadUint16(r io.Reader) (int, error) {
	var i uint16
	err := binary.Read(r, binary.LittleEndian, &i)
	return int(i), err
}

func ReadInt32(r io.Reader) (int, error) {
	var i int32
	err := binary.Read(r, binary.LittleEndian, &i)
	return int(i), err
}

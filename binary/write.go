package binary

import (
	"encoding/binary"
	"io"
)

func WriteUint16(w io.Writer, num int) error {
	return binary.Write(w, binary.LittleEndian, uint16(num))
}

func WriteInt32(w io.Writer, num int) error {
	return binary.Write(w, binary.LittleEndian, int32(num))
}

package binary

import (
	"bytes"
	"io"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)

	WriteInt32(buf, 4096)
	WriteInt32(buf, 3)
	WriteUint16(buf, 65535)

	if got := buf.Bytes(); !bytes.Equal(got, []byte("\x00\x10\x00\x00\x03\x00\x00\x00\xff\xff")) {
		t.Errorf("Wrong encoding: got: %x", got)
	}

	if n, err := ReadInt32(buf); n != 4096 || err != nil {
		t.Errorf("Wrong int32: want: 4096,<nil> got: %d,%v", n, err)
	}

	if n, err := ReadInt32(buf); n != 3 || err != nil {
		t.Errorf("Wrong int32: want: 3,<nil> got: %d,%v", n, err)
	}

	if n, err := ReadUint16(buf); n != 65535 || err != nil {
		t.Errorf("Wrong uint16: want: 65535,<nil> got: %d,%v", n, err)
	}
}

func TestReadBytesAt(t *testing.T) {
	r := bytes.NewReader([]byte("abcdefgh"))

	if b, err := ReadBytesAt(r, 3, 2); string(b) != "cde" || err != nil {
		t.Errorf("Wrong read: want: cde,<nil> got: %q,%v", b, err)
	}

	if b, err := ReadBytesAt(r, 8, 0); string(b) != "abcdefgh" || err != nil {
		t.Errorf("Wrong full read: want: abcdefgh,<nil> got: %q,%v", b, err)
	}

	if _, err := ReadBytesAt(r, 4, 6); err != io.ErrUnexpectedEOF {
		t.Errorf("Wrong truncation error: want: ErrUnexpectedEOF got: %v", err)
	}
}

package blockzip

import (
	"bytes"
	"errors"
	"testing"

	"github.com/blockzip/blockzip/codec"
)

func TestReadFormatErrors(t *testing.T) {
	valid := encodeBytes(t, patternBytes(10000))

	var tests = []struct {
		name string
		data []byte
	}{
		{"truncated header", valid[:5]},
		{"zero block size", append(append([]byte{}, 0, 0, 0, 0), valid[4:]...)},
		{"negative block count", append(append([]byte{}, valid[:4]...), append([]byte{0xff, 0xff, 0xff, 0xff}, valid[8:]...)...)},
		{"truncated index", valid[:9]},
		{"truncated blocks", valid[:len(valid)-1]},
		{"trailing garbage", append(append([]byte{}, valid...), 0x00)},
	}

	for _, test := range tests {
		_, err := readFormat(bytes.NewReader(test.data), int64(len(test.data)))

		var ferr *FormatError
		if !errors.As(err, &ferr) {
			t.Errorf("Wrong error for %s: want: FormatError got: %v", test.name, err)
		}
	}
}

func TestPhysicalRanges(t *testing.T) {
	src := patternBytes(10000)
	data := encodeBytes(t, src)

	layout, err := readFormat(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}

	if layout.dataStart != headerSize+2*3 {
		t.Errorf("Wrong data start: want: 14 got: %d", layout.dataStart)
	}

	// Each block's physical range must hold exactly the compressed form of
	// its logical span.
	for i := 0; i < layout.blockCount; i++ {
		offset, length := layout.physicalRange(i)

		if offset != layout.blockOffset(i) || length != layout.blockLength(i) {
			t.Fatalf("Inconsistent range accessors for block %d", i)
		}

		logical, want := layout.logicalBlockRange(i, 10000)

		got, err := codec.Snappy.Decompress(nil, data[offset:offset+int64(length)], want)
		if err != nil {
			t.Fatalf("Block %d: %v", i, err)
		}

		if !bytes.Equal(got, src[logical:logical+int64(want)]) {
			t.Errorf("Wrong bytes in block %d", i)
		}
	}
}

func TestLogicalBlockRange(t *testing.T) {
	f := &format{blockSize: 4096, blockCount: 3}

	var tests = []struct {
		block  int
		total  int64
		offset int64
		length int
	}{
		{0, 10000, 0, 4096},
		{1, 10000, 4096, 4096},
		{2, 10000, 8192, 1808},
		{2, 12288, 8192, 0},
	}

	for i, test := range tests {
		offset, length := f.logicalBlockRange(test.block, test.total)

		if offset != test.offset || length != test.length {
			t.Errorf("Wrong range for Case %d: want: %d,%d got: %d,%d", i, test.offset, test.length, offset, length)
		}
	}
}

func TestBlockCountFor(t *testing.T) {
	var tests = []struct {
		total  int64
		blocks int
	}{
		{0, 1},
		{1, 1},
		{4096, 2},
		{8192, 3},
		{10000, 3},
	}

	for i, test := range tests {
		if got := blockCountFor(test.total, 4096); got != test.blocks {
			t.Errorf("Wrong count for Case %d: want: %d got: %d", i, test.blocks, got)
		}
	}
}

package vfs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blockzip/blockzip"
	"github.com/blockzip/blockzip/codec"
)

func buildContainer(t *testing.T, size int) (path string, src []byte) {
	t.Helper()

	src = make([]byte, size)
	for i := range src {
		src[i] = byte(i * 13)
	}

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source")
	path = filepath.Join(dir, "source.bz")

	require.NoError(t, os.WriteFile(srcPath, src, 0644))

	_, err := blockzip.EncodeFile(srcPath, path)
	require.NoError(t, err)

	return path, src
}

func TestCompressedOpenRead(t *testing.T) {
	path, src := buildContainer(t, 10000)

	shim := NewCompressed(NewOS(), WithBlockCache(4))

	file, err := shim.Open(path, OpenReadOnly)
	require.NoError(t, err)
	defer file.Close()

	size, err := file.Size()
	require.NoError(t, err)
	require.Equal(t, int64(10000), size, "size must be the uncompressed length")

	for _, r := range []struct {
		offset int64
		length int
	}{
		{0, 10000},
		{4096, 4096},
		{9000, 1000},
		{100, 5000},
	} {
		got := make([]byte, r.length)
		n, err := file.ReadAt(got, r.offset)
		require.NoError(t, err, "read(%d,%d)", r.offset, r.length)
		require.Equal(t, r.length, n)
		require.True(t, bytes.Equal(got, src[r.offset:r.offset+int64(r.length)]), "read(%d,%d)", r.offset, r.length)
	}
}

func TestCompressedRejectsWrites(t *testing.T) {
	path, _ := buildContainer(t, 10000)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	shim := NewCompressed(NewOS())

	file, err := shim.Open(path, OpenReadWrite)
	require.NoError(t, err)
	defer file.Close()

	_, err = file.WriteAt([]byte("overwrite"), 0)
	require.ErrorIs(t, err, blockzip.ErrReadOnly)

	require.ErrorIs(t, file.Truncate(0), blockzip.ErrReadOnly)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.Equal(before, after), "container bytes must be unchanged")
}

func TestCompressedCodecMismatch(t *testing.T) {
	path, _ := buildContainer(t, 10000)

	shim := NewCompressed(NewOS(), WithCodec(codec.Zstd))

	file, err := shim.Open(path, OpenReadOnly)
	if err == nil {
		file.Close()
		t.Fatal("opening a snappy container with the zstd codec must fail")
	}
}

func TestCompressedForwards(t *testing.T) {
	dir := t.TempDir()
	scratch := filepath.Join(dir, "scratch")
	require.NoError(t, os.WriteFile(scratch, []byte("x"), 0644))

	shim := NewCompressed(NewOS())

	ok, err := shim.Access(scratch, AccessExists)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = shim.Access(filepath.Join(dir, "missing"), AccessExists)
	require.NoError(t, err)
	require.False(t, ok)

	full, err := shim.FullPathname(scratch)
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(full))

	require.NoError(t, shim.Delete(scratch, false))

	ok, err = shim.Access(scratch, AccessExists)
	require.NoError(t, err)
	require.False(t, ok)

	buf := make([]byte, 16)
	n, err := shim.Randomness(buf)
	require.NoError(t, err)
	require.Equal(t, 16, n)

	slept := shim.Sleep(time.Millisecond)
	require.GreaterOrEqual(t, slept, time.Millisecond)

	_, err = shim.DlOpen("libsnappy.so")
	require.Error(t, err)
}

func TestCurrentTime(t *testing.T) {
	v := NewOS()

	julian, err := v.CurrentTime()
	require.NoError(t, err)

	millis, err := v.CurrentTimeInt64()
	require.NoError(t, err)

	// Both clocks express the same instant in different units.
	require.InDelta(t, julian, float64(millis)/86400000.0, 0.001)

	// A Julian Day in 2026 sits a bit past 2461000.
	require.Greater(t, julian, 2461000.0)
}

func TestSystemCallOverrides(t *testing.T) {
	v := NewOS()

	noop := func(args ...interface{}) (int64, error) { return 0, nil }

	require.NoError(t, v.SetSystemCall("open", noop))
	require.NoError(t, v.SetSystemCall("read", noop))

	_, ok := v.GetSystemCall("open")
	require.True(t, ok)

	_, ok = v.GetSystemCall("write")
	require.False(t, ok)

	require.Equal(t, "open", v.NextSystemCall(""))
	require.Equal(t, "read", v.NextSystemCall("open"))
	require.Equal(t, "", v.NextSystemCall("read"))

	require.NoError(t, v.SetSystemCall("open", nil))
	_, ok = v.GetSystemCall("open")
	require.False(t, ok)
}

func TestOSFileLocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	v := NewOS()
	file, err := v.Open(path, OpenReadWrite)
	require.NoError(t, err)
	defer file.Close()

	reserved, err := file.CheckReservedLock()
	require.NoError(t, err)
	require.False(t, reserved)

	require.NoError(t, file.Lock(LockReserved))

	reserved, err = file.CheckReservedLock()
	require.NoError(t, err)
	require.True(t, reserved)

	require.NoError(t, file.Unlock(LockNone))

	reserved, err = file.CheckReservedLock()
	require.NoError(t, err)
	require.False(t, reserved)
}

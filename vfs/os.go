package vfs

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Milliseconds between the Julian epoch (4714 B.C.) and the Unix epoch.
const unixJulianOffsetMillis = 210866760000000

// OS is a VFS backed by the operating system.
type OS struct {
	mu       sync.Mutex
	syscalls map[string]SystemCall
	lastErr  error
}

func NewOS() *OS {
	return &OS{syscalls: make(map[string]SystemCall)}
}

func (v *OS) Open(name string, flags OpenFlag) (File, error) {
	mode := os.O_RDONLY

	if flags&OpenReadWrite != 0 {
		mode = os.O_RDWR
	}

	if flags&OpenCreate != 0 {
		mode |= os.O_CREATE
	}

	file, err := os.OpenFile(name, mode, 0644)
	if err != nil {
		v.setLastError(err)
		return nil, err
	}

	return &osFile{file: file}, nil
}

func (v *OS) Delete(name string, syncDir bool) error {
	if err := os.Remove(name); err != nil {
		v.setLastError(err)
		return err
	}

	if syncDir {
		dir, err := os.Open(filepath.Dir(name))
		if err != nil {
			return err
		}
		defer dir.Close()

		return dir.Sync()
	}

	return nil
}

func (v *OS) Access(name string, flag AccessFlag) (bool, error) {
	info, err := os.Stat(name)

	if os.IsNotExist(err) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if flag == AccessReadWrite && info.Mode().Perm()&0200 == 0 {
		return false, nil
	}

	return true, nil
}

func (v *OS) FullPathname(name string) (string, error) {
	return filepath.Abs(name)
}

// DlOpen is never supported by the pure-Go backend.
func (v *OS) DlOpen(name string) (Library, error) {
	return nil, errors.Errorf("vfs: dynamic library loading is not supported (%s)", name)
}

func (v *OS) Randomness(p []byte) (int, error) {
	return rand.Read(p)
}

func (v *OS) Sleep(d time.Duration) time.Duration {
	start := time.Now()
	time.Sleep(d)
	return time.Since(start)
}

func (v *OS) CurrentTime() (float64, error) {
	return float64(time.Now().UnixMilli())/86400000.0 + 2440587.5, nil
}

func (v *OS) CurrentTimeInt64() (int64, error) {
	return time.Now().UnixMilli() + unixJulianOffsetMillis, nil
}

func (v *OS) GetLastError() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.lastErr
}

func (v *OS) setLastError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lastErr = err
}

func (v *OS) SetSystemCall(name string, fn SystemCall) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if fn == nil {
		delete(v.syscalls, name)
		return nil
	}

	v.syscalls[name] = fn

	return nil
}

func (v *OS) GetSystemCall(name string) (SystemCall, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fn, ok := v.syscalls[name]

	return fn, ok
}

// NextSystemCall enumerates overridden system calls in name order: pass ""
// for the first, and the previous name for each one after. Returns "" when
// the list is exhausted.
func (v *OS) NextSystemCall(name string) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	names := make([]string, 0, len(v.syscalls))
	for n := range v.syscalls {
		names = append(names, n)
	}

	sort.Strings(names)

	for _, n := range names {
		if n > name {
			return n
		}
	}

	return ""
}

type osFile struct {
	file *os.File

	mu   sync.Mutex
	lock LockLevel
}

func (f *osFile) ReadAt(p []byte, off int64) (int, error) {
	return f.file.ReadAt(p, off)
}

func (f *osFile) WriteAt(p []byte, off int64) (int, error) {
	return f.file.WriteAt(p, off)
}

func (f *osFile) Close() error {
	return f.file.Close()
}

func (f *osFile) Truncate(size int64) error {
	return f.file.Truncate(size)
}

func (f *osFile) Sync(flag SyncFlag) error {
	return f.file.Sync()
}

func (f *osFile) Size() (int64, error) {
	info, err := f.file.Stat()
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

// Lock levels are tracked per handle; deployments needing cross-process
// exclusion layer it on the filesystem's own advisory locks.
func (f *osFile) Lock(level LockLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if level > f.lock {
		f.lock = level
	}

	return nil
}

func (f *osFile) Unlock(level LockLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if level < f.lock {
		f.lock = level
	}

	return nil
}

func (f *osFile) CheckReservedLock() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lock >= LockReserved, nil
}

func (f *osFile) SectorSize() int64 {
	return 4096
}

func (f *osFile) DeviceCharacteristics() int {
	return 0
}

func (f *osFile) ShmMap(region, size int, extend bool) ([]byte, error) {
	return nil, errors.New("vfs: shared memory is not supported")
}

func (f *osFile) ShmLock(offset, n int, flags int) error {
	return errors.New("vfs: shared memory is not supported")
}

func (f *osFile) ShmBarrier() {}

func (f *osFile) ShmUnmap(del bool) error {
	return nil
}

/*
The vfs package abstracts the pluggable storage backend a database engine
performs its file I/O through, and provides a shim that serves blockzip
containers through that same interface.

The original shim design was a table of function pointers with one delegating
stub per operation. Here the base backend is embedded directly in the
decorator, so only the operations the shim actually changes are implemented;
everything else forwards by default.
*/
package vfs

import (
	"io"
	"time"
)

// OpenFlag controls how a file is opened.
type OpenFlag int

const (
	OpenReadOnly OpenFlag = 1 << iota
	OpenReadWrite
	OpenCreate
)

// AccessFlag selects what an Access check tests for.
type AccessFlag int

const (
	AccessExists AccessFlag = iota
	AccessRead
	AccessReadWrite
)

// LockLevel is a file lock state, ordered from none to exclusive.
type LockLevel int

const (
	LockNone LockLevel = iota
	LockShared
	LockReserved
	LockPending
	LockExclusive
)

// SyncFlag selects the durability of a Sync.
type SyncFlag int

const (
	SyncNormal SyncFlag = iota
	SyncFull
)

// A SystemCall is an overridable low-level operation, keyed by name.
type SystemCall func(args ...interface{}) (int64, error)

// A Library is an opened dynamic library. Lookup errors are returned
// directly rather than fetched through a separate error-string call.
type Library interface {
	Sym(name string) (interface{}, error)
	Close() error
}

// A VFS is a storage backend. All methods must be safe for concurrent use.
type VFS interface {
	Open(name string, flags OpenFlag) (File, error)
	Delete(name string, syncDir bool) error
	Access(name string, flag AccessFlag) (bool, error)
	FullPathname(name string) (string, error)

	DlOpen(name string) (Library, error)

	Randomness(p []byte) (int, error)
	Sleep(d time.Duration) time.Duration

	// CurrentTime returns the current time as a floating-point Julian Day
	// number; CurrentTimeInt64 returns it as milliseconds since the Julian
	// epoch.
	CurrentTime() (float64, error)
	CurrentTimeInt64() (int64, error)

	GetLastError() error

	SetSystemCall(name string, fn SystemCall) error
	GetSystemCall(name string) (SystemCall, bool)
	NextSystemCall(name string) string
}

// A File is an open file handle on a VFS. Positioned reads must be safe for
// concurrent callers.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer

	Truncate(size int64) error
	Sync(flag SyncFlag) error
	Size() (int64, error)

	Lock(level LockLevel) error
	Unlock(level LockLevel) error
	CheckReservedLock() (bool, error)

	SectorSize() int64
	DeviceCharacteristics() int

	ShmMap(region, size int, extend bool) ([]byte, error)
	ShmLock(offset, n int, flags int) error
	ShmBarrier()
	ShmUnmap(del bool) error
}

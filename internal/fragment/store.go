package fragment

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// File is one open fragment. Reads are positional; writes always append.
type File interface {
	io.ReaderAt
	io.Writer
	io.Closer
	Name() string
	Size() (int64, error)
	Sync() error
}

// Store looks fragments up by sequence number.
type Store interface {
	Open(seq uint32) (File, error)
	OpenAppend(seq uint32) (File, error)
	Exists(seq uint32) (bool, error)
}

// DirStore keeps one file per fragment in a single directory.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) DirStore {
	return DirStore{dir: dir}
}

func (s DirStore) Dir() string {
	return s.dir
}

func (s DirStore) Path(seq uint32) string {
	return filepath.Join(s.dir, FormatSequence(seq))
}

// Open opens an existing fragment read-only.
func (s DirStore) Open(seq uint32) (File, error) {
	f, err := OpenFile(s.Path(seq))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("fragment %s: %w", FormatSequence(seq), ErrFragmentMissing)
		}
		return nil, fmt.Errorf("fragment %s: open: %w", FormatSequence(seq), err)
	}
	return f, nil
}

// OpenAppend opens a fragment for reading and appending, creating it if absent.
// The file holds an exclusive flock until Close. A concurrent appender gets
// ErrFragmentBusy.
func (s DirStore) OpenAppend(seq uint32) (File, error) {
	f, err := os.OpenFile(s.Path(seq), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("fragment %s: open for append: %w", FormatSequence(seq), err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("fragment %s: %w", FormatSequence(seq), ErrFragmentBusy)
		}
		return nil, fmt.Errorf("fragment %s: lock: %w", FormatSequence(seq), err)
	}
	return osFile{File: f}, nil
}

func (s DirStore) Exists(seq uint32) (bool, error) {
	_, err := os.Stat(s.Path(seq))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("fragment %s: stat: %w", FormatSequence(seq), err)
}

// OpenFile opens a single fragment by path, whatever its name.
func OpenFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return osFile{File: f}, nil
}

type osFile struct {
	*os.File
}

func (f osFile) Size() (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

package vfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// MaxDiskBytes is the guest disk quota in bytes (1.44MB).
const MaxDiskBytes = 1474560

// validPath matches POSIX-style absolute paths rooted at a virtual drive
// letter, e.g. /C/PROJECT/HELLO.C. Each component is a short name with an
// optional extension.
var validPath = regexp.MustCompile(`^/[A-Z](/[A-Za-z0-9_]{1,16}(\.[A-Za-z0-9]{1,3})?)+$`)

var (
	ErrFileNotFound  = errors.New("file not found")
	ErrInvalidPath   = errors.New("invalid path")
	ErrQuotaExceeded = errors.New("disk quota exceeded")
)

type FileEntry struct {
	Data     []byte
	Created  time.Time
	Modified time.Time
}

// Disk is an in-memory guest file store keyed by virtual-drive paths.
// Concurrent reads and writes to different paths never corrupt each
// other; that contract is what the compile pipeline assumes.
type Disk struct {
	mu         sync.RWMutex
	files      map[string]*FileEntry
	dirtyFiles map[string]bool
	usedBytes  int
}

// NewDisk creates an empty guest disk.
func NewDisk() *Disk {
	return &Disk{
		files:      make(map[string]*FileEntry),
		dirtyFiles: make(map[string]bool),
	}
}

// WriteBinary stores data at path, overwriting any previous content.
// It validates the path, enforces the quota, and deep copies the data so
// later caller mutations cannot leak in.
func (d *Disk) WriteBinary(path string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !validPath.MatchString(path) {
		return ErrInvalidPath
	}

	oldSize := 0
	var entry *FileEntry
	if existing, ok := d.files[path]; ok {
		oldSize = len(existing.Data)
		entry = existing
	}

	if d.usedBytes-oldSize+len(data) > MaxDiskBytes {
		return ErrQuotaExceeded
	}

	newData := make([]byte, len(data))
	copy(newData, data)

	if entry == nil {
		entry = &FileEntry{Created: time.Now()}
		d.files[path] = entry
	}
	entry.Data = newData
	entry.Modified = time.Now()

	d.dirtyFiles[path] = true
	d.usedBytes = d.usedBytes - oldSize + len(newData)
	return nil
}

// ReadText returns the content at path as a string. Missing paths fail
// with ErrFileNotFound.
func (d *Disk) ReadText(path string) (string, error) {
	data, err := d.Read(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Read returns the raw bytes stored at path.
func (d *Disk) Read(path string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !validPath.MatchString(path) {
		return nil, ErrInvalidPath
	}
	entry, ok := d.files[path]
	if !ok {
		return nil, ErrFileNotFound
	}
	return entry.Data, nil
}

// Size returns the stored size of path in bytes.
func (d *Disk) Size(path string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !validPath.MatchString(path) {
		return 0, ErrInvalidPath
	}
	entry, ok := d.files[path]
	if !ok {
		return 0, ErrFileNotFound
	}
	return len(entry.Data), nil
}

// Delete removes path from the disk.
func (d *Disk) Delete(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !validPath.MatchString(path) {
		return ErrInvalidPath
	}
	entry, ok := d.files[path]
	if !ok {
		return ErrFileNotFound
	}

	d.usedBytes -= len(entry.Data)
	delete(d.files, path)

	// Stays dirty so persistence removes the host mirror too.
	d.dirtyFiles[path] = true
	return nil
}

// FreeSpace returns the number of free bytes on the disk.
func (d *Disk) FreeSpace() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return MaxDiskBytes - d.usedBytes
}

// List returns all stored paths in sorted order.
func (d *Disk) List() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	paths := make([]string, 0, len(d.files))
	for p := range d.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// GetMeta returns the creation and modification time of path.
func (d *Disk) GetMeta(path string) (time.Time, time.Time, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !validPath.MatchString(path) {
		return time.Time{}, time.Time{}, ErrInvalidPath
	}
	entry, ok := d.files[path]
	if !ok {
		return time.Time{}, time.Time{}, ErrFileNotFound
	}
	return entry.Created, entry.Modified, nil
}

// hostPath maps a virtual path to a location under the host mirror root:
// /C/PROJECT/HELLO.C becomes <root>/C/PROJECT/HELLO.C.
func hostPath(root, virtual string) string {
	return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(virtual, "/")))
}

// virtualPath reverses hostPath. The second return value is false for
// host files whose relative location does not form a valid virtual path.
func virtualPath(root, host string) (string, bool) {
	rel, err := filepath.Rel(root, host)
	if err != nil {
		return "", false
	}
	v := "/" + filepath.ToSlash(rel)
	if !validPath.MatchString(v) {
		return "", false
	}
	return v, true
}

// LoadFrom populates the disk from a host directory mirror. Host files
// that do not map to a valid virtual path are skipped silently. A missing
// directory is not an error (first run).
func (d *Disk) LoadFrom(root string) error {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		v, ok := virtualPath(root, p)
		if !ok {
			return nil
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		oldSize := 0
		if old, ok := d.files[v]; ok {
			oldSize = len(old.Data)
		}
		// The mirror may hold more than the guest disk; files that
		// would blow the quota are skipped like invalid names are.
		if d.usedBytes-oldSize+len(raw) > MaxDiskBytes {
			return nil
		}

		fe := &FileEntry{Data: raw, Created: time.Now(), Modified: time.Now()}
		if info, err := entry.Info(); err == nil {
			fe.Created = info.ModTime()
			fe.Modified = info.ModTime()
		}
		d.files[v] = fe
		d.usedBytes = d.usedBytes - oldSize + len(raw)
		return nil
	})
}

// PersistTo writes every dirty file to the host directory mirror and
// removes the mirrors of deleted files. Returns the first error
// encountered; files that failed to write stay dirty.
func (d *Disk) PersistTo(root string) error {
	// Snapshot dirty entries under the lock, then do host I/O without it.
	d.mu.Lock()
	snapshot := make(map[string]*FileEntry)
	deleted := make([]string, 0)
	for p := range d.dirtyFiles {
		if entry, ok := d.files[p]; ok {
			data := make([]byte, len(entry.Data))
			copy(data, entry.Data)
			snapshot[p] = &FileEntry{Data: data, Created: entry.Created, Modified: entry.Modified}
		} else {
			deleted = append(deleted, p)
		}
		delete(d.dirtyFiles, p)
	}
	d.mu.Unlock()

	var firstErr error

	for _, p := range deleted {
		err := os.Remove(hostPath(root, p))
		if err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}

	for p, entry := range snapshot {
		hp := hostPath(root, p)
		if err := os.MkdirAll(filepath.Dir(hp), 0755); err != nil {
			firstErr = d.keepDirty(p, firstErr, err)
			continue
		}
		if err := os.WriteFile(hp, entry.Data, 0644); err != nil {
			firstErr = d.keepDirty(p, firstErr, err)
			continue
		}
		_ = os.Chtimes(hp, time.Now(), entry.Modified)
	}
	return firstErr
}

func (d *Disk) keepDirty(path string, firstErr, err error) error {
	d.mu.Lock()
	d.dirtyFiles[path] = true
	d.mu.Unlock()
	if firstErr == nil {
		return err
	}
	return firstErr
}

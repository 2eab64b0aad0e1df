package vfs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDisk_WriteBinary(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		data         []byte
		expectError  bool
		expectedUsed int
	}{
		{
			name:         "Valid write",
			path:         "/C/PROJECT/TEST.TXT",
			data:         []byte{1, 2, 3},
			expectError:  false,
			expectedUsed: 3,
		},
		{
			name:        "Relative path rejected",
			path:        "PROJECT/TEST.TXT",
			data:        []byte{1},
			expectError: true,
		},
		{
			name:        "Lowercase drive rejected",
			path:        "/c/PROJECT/TEST.TXT",
			data:        []byte{1},
			expectError: true,
		},
		{
			name:        "Path traversal rejected",
			path:        "/C/../passwd",
			data:        []byte{1},
			expectError: true,
		},
		{
			name:        "Quota exceeded",
			path:        "/C/BIG.BIN",
			data:        make([]byte, MaxDiskBytes+1),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDisk()
			err := d.WriteBinary(tt.path, tt.data)

			if (err != nil) != tt.expectError {
				t.Errorf("WriteBinary() error = %v, expectError %v", err, tt.expectError)
			}

			if !tt.expectError {
				if d.usedBytes != tt.expectedUsed {
					t.Errorf("usedBytes = %d, expected %d", d.usedBytes, tt.expectedUsed)
				}
				stored, ok := d.files[tt.path]
				if !ok {
					t.Fatalf("path %s not found in map", tt.path)
				}
				if !reflect.DeepEqual(stored.Data, tt.data) {
					t.Errorf("stored data = %v, expected %v", stored.Data, tt.data)
				}
				if stored.Created.IsZero() || stored.Modified.IsZero() {
					t.Errorf("timestamps not set: Created=%v, Modified=%v", stored.Created, stored.Modified)
				}
			}
		})
	}
}

func TestDisk_ReadText(t *testing.T) {
	d := NewDisk()
	if err := d.WriteBinary("/C/PROJECT/HELLO.C", []byte("int main")); err != nil {
		t.Fatalf("WriteBinary failed: %v", err)
	}

	got, err := d.ReadText("/C/PROJECT/HELLO.C")
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if got != "int main" {
		t.Errorf("ReadText = %q, want %q", got, "int main")
	}

	if _, err := d.ReadText("/C/PROJECT/MISSING.C"); err != ErrFileNotFound {
		t.Errorf("missing path error = %v, expected ErrFileNotFound", err)
	}
	if _, err := d.ReadText("not-a-path"); err != ErrInvalidPath {
		t.Errorf("invalid path error = %v, expected ErrInvalidPath", err)
	}
}

func TestDisk_UpdateSize(t *testing.T) {
	d := NewDisk()
	path := "/C/UPDATE.TXT"

	if err := d.WriteBinary(path, []byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("initial write failed: %v", err)
	}
	if d.usedBytes != 5 {
		t.Errorf("usedBytes after initial write = %d, expected 5", d.usedBytes)
	}

	created1 := d.files[path].Created

	time.Sleep(1 * time.Millisecond)

	if err := d.WriteBinary(path, []byte{1, 2, 3, 4, 5, 6, 7}); err != nil {
		t.Fatalf("update (larger) failed: %v", err)
	}
	if d.usedBytes != 7 {
		t.Errorf("usedBytes after larger update = %d, expected 7", d.usedBytes)
	}

	entry := d.files[path]
	if !entry.Created.Equal(created1) {
		t.Error("Created time should not change on update")
	}
	if !entry.Modified.After(entry.Created) {
		t.Error("Modified time should be after Created time after update")
	}

	if err := d.WriteBinary(path, []byte{1, 2}); err != nil {
		t.Fatalf("update (smaller) failed: %v", err)
	}
	if d.usedBytes != 2 {
		t.Errorf("usedBytes after smaller update = %d, expected 2", d.usedBytes)
	}
}

func TestDisk_DeepCopy(t *testing.T) {
	d := NewDisk()
	data := []byte{1, 2, 3}

	if err := d.WriteBinary("/C/MUT.BIN", data); err != nil {
		t.Fatalf("WriteBinary failed: %v", err)
	}

	data[0] = 99

	got, err := d.Read("/C/MUT.BIN")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got[0] == 99 {
		t.Error("WriteBinary did not deep copy; caller mutation reached stored data")
	}
}

func TestDisk_QuotaExact(t *testing.T) {
	d := NewDisk()

	if err := d.WriteBinary("/C/FILE1.BIN", make([]byte, MaxDiskBytes-1)); err != nil {
		t.Fatalf("WriteBinary failed: %v", err)
	}

	if err := d.WriteBinary("/C/FILE2.BIN", []byte{1, 2}); err == nil {
		t.Error("expected quota error, got nil")
	}

	if err := d.WriteBinary("/C/FILE2.BIN", []byte{1}); err != nil {
		t.Errorf("expected success, got error: %v", err)
	}

	if d.usedBytes != MaxDiskBytes {
		t.Errorf("usedBytes = %d, expected %d", d.usedBytes, MaxDiskBytes)
	}
}

func TestDisk_Persistence(t *testing.T) {
	tempDir := t.TempDir()

	d := NewDisk()

	d.WriteBinary("/C/PROJECT/FILE1.TXT", []byte{'a'})
	if !d.dirtyFiles["/C/PROJECT/FILE1.TXT"] {
		t.Error("FILE1.TXT should be dirty")
	}
	d.WriteBinary("/C/PROJECT/FILE2.TXT", []byte{'b'})

	if err := d.PersistTo(tempDir); err != nil {
		t.Fatalf("PersistTo failed: %v", err)
	}
	if len(d.dirtyFiles) != 0 {
		t.Errorf("dirtyFiles should be empty, got %d", len(d.dirtyFiles))
	}

	host1 := filepath.Join(tempDir, "C", "PROJECT", "FILE1.TXT")
	host2 := filepath.Join(tempDir, "C", "PROJECT", "FILE2.TXT")
	if _, err := os.Stat(host1); os.IsNotExist(err) {
		t.Error("FILE1.TXT not persisted")
	}
	if _, err := os.Stat(host2); os.IsNotExist(err) {
		t.Error("FILE2.TXT not persisted")
	}

	d.WriteBinary("/C/PROJECT/FILE1.TXT", []byte{'c'})
	if d.dirtyFiles["/C/PROJECT/FILE2.TXT"] {
		t.Error("FILE2.TXT should NOT be dirty")
	}

	d.Delete("/C/PROJECT/FILE2.TXT")
	if !d.dirtyFiles["/C/PROJECT/FILE2.TXT"] {
		t.Error("FILE2.TXT should be dirty (marked for deletion)")
	}

	if err := d.PersistTo(tempDir); err != nil {
		t.Fatalf("PersistTo failed: %v", err)
	}
	if _, err := os.Stat(host2); !os.IsNotExist(err) {
		t.Error("FILE2.TXT should have been deleted from the host mirror")
	}

	// A fresh disk loads the mirror back, including the path mapping.
	reloaded := NewDisk()
	if err := reloaded.LoadFrom(tempDir); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	got, err := reloaded.Read("/C/PROJECT/FILE1.TXT")
	if err != nil {
		t.Fatalf("Read after LoadFrom failed: %v", err)
	}
	if !reflect.DeepEqual(got, []byte{'c'}) {
		t.Errorf("reloaded data = %v, expected ['c']", got)
	}
}

func TestDisk_LoadFromRespectsQuota(t *testing.T) {
	tempDir := t.TempDir()
	driveDir := filepath.Join(tempDir, "C")
	if err := os.MkdirAll(driveDir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	// BIG.BIN nearly fills the disk; SMALL.BIN would push it over.
	// WalkDir visits them in lexical order.
	if err := os.WriteFile(filepath.Join(driveDir, "BIG.BIN"), make([]byte, MaxDiskBytes-5), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(driveDir, "SMALL.BIN"), make([]byte, 10), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	d := NewDisk()
	if err := d.LoadFrom(tempDir); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if _, err := d.Read("/C/BIG.BIN"); err != nil {
		t.Errorf("BIG.BIN should have loaded: %v", err)
	}
	if _, err := d.Read("/C/SMALL.BIN"); err != ErrFileNotFound {
		t.Errorf("over-quota SMALL.BIN error = %v, expected ErrFileNotFound", err)
	}
	if free := d.FreeSpace(); free != 5 {
		t.Errorf("FreeSpace = %d, expected 5", free)
	}
}

func TestDisk_ListAndDelete(t *testing.T) {
	d := NewDisk()

	if d.FreeSpace() != MaxDiskBytes {
		t.Errorf("initial FreeSpace = %d, expected %d", d.FreeSpace(), MaxDiskBytes)
	}

	d.WriteBinary("/C/TEST.TXT", []byte{1, 2, 3})
	if d.FreeSpace() != MaxDiskBytes-3 {
		t.Errorf("FreeSpace after write = %d, expected %d", d.FreeSpace(), MaxDiskBytes-3)
	}

	created, modified, err := d.GetMeta("/C/TEST.TXT")
	if err != nil {
		t.Errorf("GetMeta failed: %v", err)
	}
	if created.IsZero() || modified.IsZero() {
		t.Error("timestamps zero")
	}

	d.WriteBinary("/C/A.TXT", []byte{1})
	d.WriteBinary("/C/CC.TXT", []byte{1})
	d.WriteBinary("/C/B.TXT", []byte{1})

	list := d.List()
	expected := []string{"/C/A.TXT", "/C/B.TXT", "/C/CC.TXT", "/C/TEST.TXT"}
	if !reflect.DeepEqual(list, expected) {
		t.Errorf("List = %v, expected %v", list, expected)
	}

	if err := d.Delete("/C/B.TXT"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, ok := d.files["/C/B.TXT"]; ok {
		t.Error("/C/B.TXT still exists after delete")
	}

	if err := d.Delete("/C/MISSING.TXT"); err != ErrFileNotFound {
		t.Errorf("Delete missing path error = %v, expected ErrFileNotFound", err)
	}
}

package pathcache

import (
	"errors"
	"testing"

	"github.com/rgsskit/rgssfs/vfs"
	"github.com/rgsskit/rgssfs/vfs/host"
)

// countingFS counts ReadDir calls so tests can assert memoization.
type countingFS struct {
	vfs.FS
	readDirs int
}

func (c *countingFS) ReadDir(path string) ([]vfs.DirEntry, error) {
	c.readDirs++
	return c.FS.ReadDir(path)
}

func backend(t *testing.T) *countingFS {
	t.Helper()
	fs := host.NewMem()
	files := []string{
		"Data/Map001.rxdata",
		"Data/Scripts.rxdata",
		"Data/System/Config.rxdata",
		"Graphics/Pictures/Title Screen.png",
		"Game.ini",
	}
	for _, path := range files {
		if err := fs.CreateDir(vfs.Dir(path)); err != nil {
			t.Fatalf("CreateDir: %v", err)
		}
		if err := vfs.Write(fs, path, []byte(path)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	return &countingFS{FS: fs}
}

func TestDesensitize(t *testing.T) {
	p := New(backend(t))

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "exact", path: "Data/Map001.rxdata", expected: "Data/Map001.rxdata"},
		{name: "lowercase", path: "data/map001.rxdata", expected: "Data/Map001.rxdata"},
		{name: "uppercase", path: "DATA/MAP001.RXDATA", expected: "Data/Map001.rxdata"},
		{name: "backslashes", path: "data\\map001.rxdata", expected: "Data/Map001.rxdata"},
		{name: "missing extension", path: "data/map001", expected: "Data/Map001.rxdata"},
		{name: "directory", path: "data/system", expected: "Data/System"},
		{name: "nested", path: "data/system/config.rxdata", expected: "Data/System/Config.rxdata"},
		{name: "spaces", path: "graphics/pictures/title screen", expected: "Graphics/Pictures/Title Screen.png"},
		{name: "root file", path: "game.INI", expected: "Game.ini"},
		{name: "root", path: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Desensitize(tt.path)
			if err != nil {
				t.Fatalf("Desensitize(%q): %v", tt.path, err)
			}
			if got != tt.expected {
				t.Errorf("Desensitize(%q) = %q, expected %q", tt.path, got, tt.expected)
			}
		})
	}

	if _, err := p.Desensitize("data/map999.rxdata"); !errors.Is(err, vfs.ErrNotExist) {
		t.Errorf("Desensitize on missing path = %v, expected ErrNotExist", err)
	}
}

func TestGlobPrefersExactExtension(t *testing.T) {
	fs := host.NewMem()
	if err := vfs.Write(fs, "map.json", []byte("json")); err != nil {
		t.Fatal(err)
	}
	if err := vfs.Write(fs, "Map.png", []byte("png")); err != nil {
		t.Fatal(err)
	}
	p := New(fs)

	got, err := p.Desensitize("MAP.PNG")
	if err != nil || got != "Map.png" {
		t.Errorf("exact extension lookup = %q, %v", got, err)
	}
	got, err = p.Desensitize("MAP.JSON")
	if err != nil || got != "map.json" {
		t.Errorf("exact extension lookup = %q, %v", got, err)
	}

	// Extensionless lookup falls back to the glob, which picks the
	// smallest extension key for determinism.
	got, err = p.Desensitize("map")
	if err != nil || got != "map.json" {
		t.Errorf("glob lookup = %q, %v", got, err)
	}
}

func TestRegenIsMemoized(t *testing.T) {
	fs := backend(t)
	p := New(fs)

	if _, err := p.Desensitize("data/map001.rxdata"); err != nil {
		t.Fatal(err)
	}
	listed := fs.readDirs
	if listed == 0 {
		t.Fatal("first resolution listed nothing")
	}

	// Same path again: fully cached.
	if _, err := p.Desensitize("DATA/MAP001.RXDATA"); err != nil {
		t.Fatal(err)
	}
	if fs.readDirs != listed {
		t.Errorf("second resolution listed %d more directories", fs.readDirs-listed)
	}

	// A sibling was warmed by the same listing.
	if _, err := p.Desensitize("data/scripts.rxdata"); err != nil {
		t.Fatal(err)
	}
	if fs.readDirs != listed {
		t.Errorf("sibling resolution listed %d more directories", fs.readDirs-listed)
	}

	// A deeper path reuses the cached prefix: exactly one more listing.
	if _, err := p.Desensitize("data/system/config.rxdata"); err != nil {
		t.Fatal(err)
	}
	if fs.readDirs != listed+1 {
		t.Errorf("nested resolution listed %d directories, expected 1", fs.readDirs-listed)
	}
}

func TestExtensionCloneShortcut(t *testing.T) {
	fs := backend(t)
	p := New(fs)

	if _, err := p.Desensitize("data/map001.rxdata"); err != nil {
		t.Fatal(err)
	}
	if err := vfs.Write(fs.FS, "Data/Map001.json", []byte("sibling")); err != nil {
		t.Fatal(err)
	}
	listed := fs.readDirs

	// Same stem, new extension: confirmed with one Exists call against
	// the backend, no directory listing.
	got, err := p.Desensitize("DATA/MAP001.json")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Data/Map001.json" {
		t.Errorf("extension clone resolved %q", got)
	}
	if fs.readDirs != listed {
		t.Errorf("extension clone listed %d directories", fs.readDirs-listed)
	}

	// The clone is memoized under the folded extension.
	if got, err := p.Desensitize("data/map001.JSON"); err != nil || got != "Data/Map001.json" {
		t.Errorf("folded extension lookup = %q, %v", got, err)
	}
	if fs.readDirs != listed {
		t.Errorf("memoized clone listed %d directories", fs.readDirs-listed)
	}
}

func TestStemRefreshPicksUpNewExtensions(t *testing.T) {
	fs := backend(t)
	p := New(fs)

	if _, err := p.Desensitize("data/map001.rxdata"); err != nil {
		t.Fatal(err)
	}
	if err := vfs.Write(fs.FS, "Data/Map001.json", []byte("sibling")); err != nil {
		t.Fatal(err)
	}
	listed := fs.readDirs

	// The requested extension's casing does not match the backend, so
	// the clone probe misses and the parent is re-listed once.
	got, err := p.Desensitize("data/map001.JsOn")
	if err != nil {
		t.Fatalf("resolution via refresh: %v", err)
	}
	if got != "Data/Map001.json" {
		t.Errorf("refresh resolved %q", got)
	}
	if fs.readDirs != listed+1 {
		t.Errorf("refresh listed %d directories, expected 1", fs.readDirs-listed)
	}
}

func TestMissesAreNotNegativelyCached(t *testing.T) {
	fs := backend(t)
	p := New(fs)

	if _, err := p.Desensitize("data/later.txt"); !errors.Is(err, vfs.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}

	if err := vfs.Write(fs.FS, "Data/Later.txt", []byte("x")); err != nil {
		t.Fatal(err)
	}
	got, err := p.Desensitize("data/later.txt")
	if err != nil {
		t.Fatalf("resolution after create: %v", err)
	}
	if got != "Data/Later.txt" {
		t.Errorf("resolved %q", got)
	}
}

func TestForwardedOperations(t *testing.T) {
	p := New(backend(t))

	got, err := vfs.ReadString(p, "DATA/map001.RXDATA")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "Data/Map001.rxdata" {
		t.Errorf("read wrong content %q", got)
	}

	meta, err := p.Metadata("data/system")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.IsFile {
		t.Error("directory reported as file")
	}

	ok, err := p.Exists("DATA/SYSTEM/CONFIG")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
	ok, err = p.Exists("data/nothing")
	if err != nil || ok {
		t.Errorf("Exists on miss = %v, %v", ok, err)
	}

	entries, err := p.ReadDir("data/SYSTEM")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].FileName() != "Config.rxdata" {
		t.Errorf("ReadDir entries = %+v", entries)
	}

	if _, err := p.ReadDir("no/such/dir"); !errors.Is(err, vfs.ErrNotExist) {
		t.Errorf("ReadDir miss = %v", err)
	}
}

func TestMutationsInvalidate(t *testing.T) {
	fs := backend(t)
	p := New(fs)

	// Case-insensitive remove.
	if err := p.RemoveFile("DATA/SCRIPTS.rxdata"); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if ok, _ := fs.FS.Exists("Data/Scripts.rxdata"); ok {
		t.Error("backend still has the removed file")
	}
	if _, err := p.Desensitize("data/scripts.rxdata"); !errors.Is(err, vfs.ErrNotExist) {
		t.Errorf("removed file still resolves: %v", err)
	}

	// Rename purges the stale source entry.
	if _, err := p.Desensitize("data/map001"); err != nil {
		t.Fatal(err)
	}
	if err := p.Rename("data/MAP001.rxdata", "Data/Map099.rxdata"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := p.Desensitize("data/map001.rxdata"); !errors.Is(err, vfs.ErrNotExist) {
		t.Errorf("renamed-away file still resolves: %v", err)
	}
	if got, err := p.Desensitize("data/map099"); err != nil || got != "Data/Map099.rxdata" {
		t.Errorf("rename target = %q, %v", got, err)
	}

	// RemoveDir drops the whole subtree from the cache.
	if _, err := p.Desensitize("data/system/config"); err != nil {
		t.Fatal(err)
	}
	if err := p.RemoveDir("DATA/system"); err != nil {
		t.Fatalf("RemoveDir: %v", err)
	}
	if _, err := p.Desensitize("data/system/config.rxdata"); !errors.Is(err, vfs.ErrNotExist) {
		t.Errorf("removed subtree still resolves: %v", err)
	}
}

func TestOpenFileCreate(t *testing.T) {
	fs := backend(t)
	p := New(fs)

	// The parent resolves case-insensitively; the new base name is taken
	// literally.
	file, err := p.OpenFile("DATA/system/Notes.txt", vfs.FlagWrite|vfs.FlagCreate)
	if err != nil {
		t.Fatalf("OpenFile create: %v", err)
	}
	if _, err := file.Write([]byte("note")); err != nil {
		t.Fatal(err)
	}
	file.Close()

	if ok, _ := fs.FS.Exists("Data/System/Notes.txt"); !ok {
		t.Error("created file not at the resolved parent")
	}
	if got, err := p.Desensitize("data/system/notes"); err != nil || got != "Data/System/Notes.txt" {
		t.Errorf("new file resolves to %q, %v", got, err)
	}

	// Creating under a missing parent fails rather than inventing
	// directories.
	if _, err := p.OpenFile("audio/bgm/Theme.ogg", vfs.FlagWrite|vfs.FlagCreate); !errors.Is(err, vfs.ErrNotExist) {
		t.Errorf("create under missing parent = %v", err)
	}
}

func TestCreateDir(t *testing.T) {
	fs := backend(t)
	p := New(fs)

	// Existing prefix keeps its real casing, the remainder is literal.
	if err := p.CreateDir("data/Backups/Old"); err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	if ok, _ := fs.FS.Exists("Data/Backups/Old"); !ok {
		t.Error("directory not created under the resolved prefix")
	}

	if got, err := p.Desensitize("DATA/backups/old"); err != nil || got != "Data/Backups/Old" {
		t.Errorf("new directory resolves to %q, %v", got, err)
	}
}

func TestRebuild(t *testing.T) {
	fs := backend(t)
	p := New(fs)

	if _, err := p.Desensitize("data/map001"); err != nil {
		t.Fatal(err)
	}

	// Mutate the backend behind the cache's back.
	if err := fs.FS.Rename("Data/Map001.rxdata", "Data/Map777.rxdata"); err != nil {
		t.Fatal(err)
	}

	// The memo is stale but self-consistent.
	if got, _ := p.Desensitize("data/map001"); got != "Data/Map001.rxdata" {
		t.Errorf("stale resolution = %q", got)
	}

	p.Rebuild()
	if _, err := p.Desensitize("data/map001"); !errors.Is(err, vfs.ErrNotExist) {
		t.Errorf("resolution after Rebuild = %v", err)
	}
	if got, err := p.Desensitize("data/map777"); err != nil || got != "Data/Map777.rxdata" {
		t.Errorf("fresh resolution = %q, %v", got, err)
	}
}

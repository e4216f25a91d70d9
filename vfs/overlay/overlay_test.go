package overlay

import (
	"errors"
	"testing"

	"github.com/rgsskit/rgssfs/vfs"
	"github.com/rgsskit/rgssfs/vfs/host"
)

func layerWith(t *testing.T, files map[string]string) *host.FS {
	t.Helper()
	fs := host.NewMem()
	for path, content := range files {
		if err := fs.CreateDir(vfs.Dir(path)); err != nil {
			t.Fatalf("CreateDir: %v", err)
		}
		if err := vfs.Write(fs, path, []byte(content)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	return fs
}

func TestFirstLayerWins(t *testing.T) {
	project := layerWith(t, map[string]string{
		"Data/Map001.rxdata": "project",
	})
	rtp := layerWith(t, map[string]string{
		"Data/Map001.rxdata":  "rtp",
		"Graphics/Title.png":  "rtp title",
		"Audio/BGM/theme.ogg": "rtp theme",
	})

	o := New(project, rtp)

	got, err := vfs.ReadString(o, "Data/Map001.rxdata")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "project" {
		t.Errorf("shadowed file read %q, expected the first layer's copy", got)
	}

	// Falls through to the lower layer when the top misses.
	got, err = vfs.ReadString(o, "Graphics/Title.png")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "rtp title" {
		t.Errorf("fallthrough read %q", got)
	}

	if _, err := vfs.Read(o, "Data/missing"); !errors.Is(err, vfs.ErrNotExist) {
		t.Errorf("miss in every layer = %v, expected ErrNotExist", err)
	}
}

func TestReadDirMerges(t *testing.T) {
	project := layerWith(t, map[string]string{
		"Data/Map001.rxdata": "project",
		"Data/Custom.rxdata": "project",
	})
	rtp := layerWith(t, map[string]string{
		"Data/Map001.rxdata": "rtp",
		"Data/Map002.rxdata": "rtp",
	})

	o := New(project, rtp)

	entries, err := o.ReadDir("Data")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	names := map[string]bool{}
	for _, entry := range entries {
		if names[entry.FileName()] {
			t.Errorf("duplicate entry %s", entry.FileName())
		}
		names[entry.FileName()] = true
	}
	for _, expected := range []string{"Map001.rxdata", "Map002.rxdata", "Custom.rxdata"} {
		if !names[expected] {
			t.Errorf("merged listing is missing %s", expected)
		}
	}
	if len(entries) != 3 {
		t.Errorf("merged listing has %d entries", len(entries))
	}

	// The shadowing copy supplies the metadata.
	got, err := vfs.ReadString(o, "Data/Map001.rxdata")
	if err != nil || got != "project" {
		t.Errorf("shadowed read = %q, %v", got, err)
	}

	if _, err := o.ReadDir("Nowhere"); !errors.Is(err, vfs.ErrNotExist) {
		t.Errorf("ReadDir on missing dir = %v", err)
	}
}

func TestMutationsGoToFirstLayer(t *testing.T) {
	project := layerWith(t, map[string]string{
		"Data/Custom.rxdata": "project",
	})
	rtp := layerWith(t, map[string]string{
		"Data/Map002.rxdata": "rtp",
	})

	o := New(project, rtp)

	if err := vfs.Write(o, "Data/New.rxdata", []byte("new")); err != nil {
		t.Fatalf("write through overlay: %v", err)
	}
	if ok, _ := project.Exists("Data/New.rxdata"); !ok {
		t.Error("new file did not land in the first layer")
	}
	if ok, _ := rtp.Exists("Data/New.rxdata"); ok {
		t.Error("new file leaked into a lower layer")
	}

	// Removing a lower-layer file is an error on the first layer, not a
	// write-through.
	if err := o.RemoveFile("Data/Map002.rxdata"); err == nil {
		t.Error("RemoveFile on a file that only exists below succeeded")
	}
	if ok, _ := rtp.Exists("Data/Map002.rxdata"); !ok {
		t.Error("lower layer was mutated")
	}

	if err := o.Rename("Data/Custom.rxdata", "Data/Renamed.rxdata"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if ok, _ := project.Exists("Data/Renamed.rxdata"); !ok {
		t.Error("rename did not apply to the first layer")
	}
}

func TestEmptyOverlay(t *testing.T) {
	o := New()
	if _, err := o.OpenFile("x", vfs.FlagWrite|vfs.FlagCreate); !errors.Is(err, vfs.ErrNoFilesystems) {
		t.Errorf("write on empty overlay = %v", err)
	}
	if err := o.CreateDir("x"); !errors.Is(err, vfs.ErrNoFilesystems) {
		t.Errorf("CreateDir on empty overlay = %v", err)
	}
	if ok, err := o.Exists("x"); ok || err != nil {
		t.Errorf("Exists on empty overlay = %v, %v", ok, err)
	}

	o.Push(host.NewMem())
	if o.Layers() != 1 {
		t.Errorf("Layers = %d", o.Layers())
	}
	if err := o.CreateDir("x"); err != nil {
		t.Errorf("CreateDir after push: %v", err)
	}
}

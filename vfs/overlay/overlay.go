package overlay

import (
	"github.com/rgsskit/rgssfs/vfs"
)

// FS resolves the storage contract against an ordered list of layers.
type FS struct {
	layers []vfs.FS
}

// New returns an overlay over the given layers, first layer having the
// highest precedence.
func New(layers ...vfs.FS) *FS {
	return &FS{layers: layers}
}

// Push appends a layer with lower precedence than everything already
// pushed. Layers must all be in place before the overlay is used; the
// order never changes afterwards.
func (o *FS) Push(layer vfs.FS) {
	o.layers = append(o.layers, layer)
}

// Layers reports how many layers the overlay holds.
func (o *FS) Layers() int {
	return len(o.layers)
}

// top returns the only writable layer.
func (o *FS) top() (vfs.FS, error) {
	if len(o.layers) == 0 {
		return nil, vfs.ErrNoFilesystems
	}
	return o.layers[0], nil
}

// first returns the first layer containing path. Backend errors are
// forwarded as-is; only a miss in every layer becomes ErrNotExist.
func (o *FS) first(path string) (vfs.FS, error) {
	for _, layer := range o.layers {
		ok, err := layer.Exists(path)
		if err != nil {
			return nil, err
		}
		if ok {
			return layer, nil
		}
	}
	return nil, vfs.ErrNotExist
}

func (o *FS) OpenFile(path string, flags vfs.OpenFlags) (vfs.File, error) {
	if flags.Has(vfs.FlagWrite) || flags.Has(vfs.FlagCreate) || flags.Has(vfs.FlagTruncate) {
		layer, err := o.top()
		if err != nil {
			return nil, err
		}
		return layer.OpenFile(path, flags)
	}
	layer, err := o.first(path)
	if err != nil {
		return nil, err
	}
	return layer.OpenFile(path, flags)
}

func (o *FS) Metadata(path string) (vfs.Metadata, error) {
	layer, err := o.first(path)
	if err != nil {
		return vfs.Metadata{}, err
	}
	return layer.Metadata(path)
}

func (o *FS) Exists(path string) (bool, error) {
	for _, layer := range o.layers {
		ok, err := layer.Exists(path)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ReadDir merges the directory's entries across all layers. An entry from
// an earlier layer suppresses same-named entries from later ones.
func (o *FS) ReadDir(path string) ([]vfs.DirEntry, error) {
	var (
		entries []vfs.DirEntry
		seen    map[string]struct{}
		found   bool
	)
	for _, layer := range o.layers {
		ok, err := layer.Exists(path)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		layerEntries, err := layer.ReadDir(path)
		if err != nil {
			return nil, err
		}
		found = true
		if seen == nil {
			seen = make(map[string]struct{}, len(layerEntries))
		}
		for _, entry := range layerEntries {
			name := entry.FileName()
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			entries = append(entries, entry)
		}
	}
	if !found {
		return nil, vfs.ErrNotExist
	}
	return entries, nil
}

// Mutations apply to the first layer only; they never fall through to
// runtime packages or archives.

func (o *FS) Rename(from, to string) error {
	layer, err := o.top()
	if err != nil {
		return err
	}
	return layer.Rename(from, to)
}

func (o *FS) CreateDir(path string) error {
	layer, err := o.top()
	if err != nil {
		return err
	}
	return layer.CreateDir(path)
}

func (o *FS) RemoveDir(path string) error {
	layer, err := o.top()
	if err != nil {
		return err
	}
	return layer.RemoveDir(path)
}

func (o *FS) RemoveFile(path string) error {
	layer, err := o.top()
	if err != nil {
		return err
	}
	return layer.RemoveFile(path)
}

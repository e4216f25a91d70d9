package pathcache

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rgsskit/rgssfs/vfs"
)

// extMap maps a lowercased file extension (or "" for none) to the cactus
// store index holding the entry's original-case path. Directories are
// keyed under "" like extension-less files.
type extMap = map[string]int

// cache is the memo structure: a trie keyed by lowercased,
// extension-stripped paths, plus the cactus component arena its leaves
// point into.
type cache struct {
	trie   *vfs.Trie[extMap]
	cactus cactusStore
}

func newCache() *cache {
	return &cache{trie: vfs.NewTrie[extMap]()}
}

// FS adds case-folding resolution on top of any storage backend. One
// read/write lock guards the whole memo; resolution paths take the write
// lock because even nominal reads may extend the cache.
type FS struct {
	fs    vfs.FS
	mu    sync.RWMutex
	cache *cache
}

// New wraps fs in an empty path cache.
func New(fs vfs.FS) *FS {
	return &FS{fs: fs, cache: newCache()}
}

// Fs returns the wrapped backend.
func (p *FS) Fs() vfs.FS {
	return p.fs
}

// Rebuild drops the entire memo. Callers use it to recover from staleness
// after the backing store changed behind the cache's back.
func (p *FS) Rebuild() {
	p.mu.Lock()
	p.cache = newCache()
	p.mu.Unlock()
}

// Desensitize finds the correct letter casing and file extension for the
// given case-insensitive path.
//
// The lookup is first exact (case-insensitive, extension-exact); if that
// finds nothing it is retried with a ".*" glob appended, so "data/map"
// also finds "Data/Map.json". Returns ErrNotExist when neither matches
// even after regenerating the cache from the backing store.
func (p *FS) Desensitize(path string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.cache.regen(p.fs, path); err != nil {
		return "", err
	}
	real, ok := p.cache.desensitize(path)
	if !ok {
		return "", vfs.ErrNotExist
	}
	return real, nil
}

// lowercase folds a path to the canonical cache key form.
func lowercase(path string) string {
	return strings.ToLower(vfs.Clean(path))
}

// firstIndex picks the cactus index for the lexicographically smallest
// extension, so glob fallback is deterministic.
func firstIndex(m extMap) (int, bool) {
	if len(m) == 0 {
		return 0, false
	}
	exts := make([]string, 0, len(m))
	for ext := range m {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return m[exts[0]], true
}

// desensitize resolves against the memo only; regen must have run first.
func (c *cache) desensitize(path string) (string, bool) {
	lower := lowercase(path)
	if lower == "" {
		return "", true
	}
	ext := vfs.Ext(lower)
	stem := vfs.TrimExt(lower)

	if m, ok := c.trie.GetFile(stem); ok {
		if index, ok := m[ext]; ok {
			return c.cactus.path(index), true
		}
	}
	// Glob fallback: the full lowercased path as a stem, any extension.
	if m, ok := c.trie.GetFile(lower); ok {
		if index, ok := firstIndex(m); ok {
			return c.cactus.path(index), true
		}
	}
	return "", false
}

// regen extends the memo to cover path. It is memoized: a path that
// already desensitizes costs nothing. Otherwise the longest cached prefix
// is reused and only the remaining suffix components cause real directory
// listings, one per component, each of which warms the whole sibling set.
func (c *cache) regen(fs vfs.FS, path string) error {
	if _, ok := c.desensitize(path); ok {
		return nil
	}

	origExt := vfs.Ext(vfs.Clean(path))
	lower := lowercase(path)
	stem := vfs.TrimExt(lower)

	// If only the extension differs from a cached sibling, confirm the
	// sibling exists under the new extension and clone its cactus node
	// instead of re-listing the directory.
	if m, ok := c.trie.GetFile(stem); ok {
		if index, ok := firstIndex(m); ok {
			sibling := c.cactus.path(index)
			candidate := vfs.TrimExt(sibling)
			if origExt != "" {
				candidate += "." + origExt
			}
			exists, err := fs.Exists(candidate)
			if err != nil {
				return fmt.Errorf("regenerating cache for path %q: %w", path, err)
			}
			if exists {
				node, _ := c.cactus.get(index)
				cloned := c.cactus.insert(cactusNode{
					value:  vfs.Base(candidate),
					next:   node.next,
					length: node.length,
				})
				m[strings.ToLower(origExt)] = cloned
				return nil
			}
		}
	}

	ext := strings.ToLower(origExt)

	prefix := c.trie.DirPrefix(stem)
	cactusIndex := noParent
	if prefix != "" {
		if m, ok := c.trie.GetFile(prefix); ok {
			if index, ok := m[ext]; ok {
				cactusIndex = index
			} else if index, ok := firstIndex(m); ok {
				cactusIndex = index
			}
		}
	}
	length := len(vfs.Split(prefix))

	lowerPath := prefix
	originalPath := ""
	if cactusIndex != noParent {
		originalPath = c.cactus.path(cactusIndex)
	}

	remaining := vfs.Split(strings.TrimPrefix(stem, prefix))
	if len(remaining) == 0 {
		// The stem is already cached but the requested extension is
		// not. Refresh the listing of its parent to pick up entries
		// added since the last scan.
		node, ok := c.cactus.get(cactusIndex)
		if !ok {
			return nil
		}
		_, err := c.warm(fs, vfs.Dir(stem), vfs.Dir(originalPath), node.next, node.length, "")
		if err != nil {
			return fmt.Errorf("regenerating cache for path %q: %w", path, err)
		}
		return nil
	}

	for _, name := range remaining {
		length++
		match, err := c.warm(fs, lowerPath, originalPath, cactusIndex, length, name)
		if err != nil {
			return fmt.Errorf("regenerating cache for path %q: %w", path, err)
		}
		if match == nil {
			// The component does not exist under any casing; the
			// caller's desensitize will surface NotExist.
			return nil
		}
		lowerPath = vfs.Join(lowerPath, name)
		originalPath = vfs.Join(originalPath, match.fileName)
		cactusIndex = match.index
	}
	return nil
}

type warmMatch struct {
	fileName string
	index    int
}

// warm lists originalDir and memoizes every entry, so one real directory
// listing resolves all siblings at once. want, if non-empty, names the
// lowercased stem the caller is navigating into; warm returns its entry.
func (c *cache) warm(fs vfs.FS, lowerDir, originalDir string, parentIndex, length int, want string) (*warmMatch, error) {
	entries, err := fs.ReadDir(originalDir)
	if err != nil {
		return nil, err
	}

	var match *warmMatch
	for _, entry := range entries {
		fileName := entry.FileName()
		entryStem := strings.ToLower(vfs.TrimExt(fileName))
		entryExt := strings.ToLower(vfs.Ext(fileName))

		// Replaced indices are leaked, not freed: children cached from
		// an earlier listing may still chain through them.
		index := c.cactus.insert(cactusNode{
			value:  fileName,
			next:   parentIndex,
			length: length,
		})
		key := vfs.Join(lowerDir, entryStem)
		m, ok := c.trie.GetFile(key)
		if !ok {
			m = make(extMap)
			c.trie.CreateFile(key, m)
		}
		m[entryExt] = index

		if want != "" && entryStem == want {
			match = &warmMatch{fileName: fileName, index: index}
		}
	}
	return match, nil
}

// purge drops the memo subtree rooted at the given lowercased stem and
// frees its cactus nodes.
func (c *cache) purge(stem string) {
	c.trie.WalkFiles(stem, func(_ string, m extMap) bool {
		for _, index := range m {
			c.cactus.remove(index)
		}
		return true
	})
	c.trie.RemoveDir(stem)
}

// resolve regenerates and desensitizes path under the held lock, mapping
// a miss to ErrNotExist.
func (p *FS) resolve(path string) (string, error) {
	if err := p.cache.regen(p.fs, path); err != nil {
		return "", err
	}
	real, ok := p.cache.desensitize(path)
	if !ok {
		return "", vfs.ErrNotExist
	}
	return real, nil
}

func (p *FS) OpenFile(path string, flags vfs.OpenFlags) (vfs.File, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.cache.regen(p.fs, path); err != nil {
		return nil, fmt.Errorf("opening file %q in a path cache: %w", path, err)
	}

	if _, ok := p.cache.desensitize(path); !ok && flags.Has(vfs.FlagCreate) {
		// The path cannot exist: regen just ran and found nothing. The
		// parent must resolve, though; new files never create their
		// parent directories implicitly.
		parent, ok := p.cache.desensitize(vfs.Dir(path))
		if !ok {
			return nil, fmt.Errorf("opening file %q in a path cache: %w", path, vfs.ErrNotExist)
		}
		real := vfs.Join(parent, vfs.Base(path))
		file, err := p.fs.OpenFile(real, flags)
		if err != nil {
			return nil, fmt.Errorf("opening file %q in a path cache: %w", path, err)
		}
		// Absorb the new entry.
		if err := p.cache.regen(p.fs, real); err != nil {
			file.Close()
			return nil, fmt.Errorf("opening file %q in a path cache: %w", path, err)
		}
		return file, nil
	}

	real, ok := p.cache.desensitize(path)
	if !ok {
		return nil, fmt.Errorf("opening file %q in a path cache: %w", path, vfs.ErrNotExist)
	}
	return p.fs.OpenFile(real, flags)
}

func (p *FS) Metadata(path string) (vfs.Metadata, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	real, err := p.resolve(path)
	if err != nil {
		return vfs.Metadata{}, fmt.Errorf("getting metadata for %q in a path cache: %w", path, err)
	}
	return p.fs.Metadata(real)
}

func (p *FS) Exists(path string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.cache.regen(p.fs, path); err != nil {
		return false, fmt.Errorf("checking if %q exists in a path cache: %w", path, err)
	}
	_, ok := p.cache.desensitize(path)
	return ok, nil
}

func (p *FS) ReadDir(path string) ([]vfs.DirEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	real, err := p.resolve(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %q in a path cache: %w", path, err)
	}
	return p.fs.ReadDir(real)
}

func (p *FS) Rename(from, to string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	real, err := p.resolve(from)
	if err != nil {
		return fmt.Errorf("renaming %q to %q in a path cache: %w", from, to, err)
	}
	if err := p.fs.Rename(real, to); err != nil {
		return fmt.Errorf("renaming %q to %q in a path cache: %w", from, to, err)
	}
	p.cache.purge(vfs.TrimExt(lowercase(real)))
	return nil
}

func (p *FS) CreateDir(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.cache.regen(p.fs, path); err != nil {
		return fmt.Errorf("creating directory %q in a path cache: %w", path, err)
	}

	// Resolve as much of the path as the cache knows, then append the
	// remaining components literally.
	lower := vfs.TrimExt(lowercase(path))
	prefix := p.cache.trie.DirPrefix(lower)
	cactusIndex := noParent
	if prefix != "" {
		if m, ok := p.cache.trie.GetFile(prefix); ok {
			if index, ok := m[strings.ToLower(vfs.Ext(path))]; ok {
				cactusIndex = index
			} else if index, ok := firstIndex(m); ok {
				cactusIndex = index
			}
		}
	}
	originalPrefix := ""
	if cactusIndex != noParent {
		originalPrefix = p.cache.cactus.path(cactusIndex)
	}

	parts := vfs.Split(path)
	known := len(vfs.Split(originalPrefix))
	var real string
	switch {
	case known == 0:
		real = vfs.Clean(path)
	case known == len(parts):
		real = originalPrefix
	default:
		real = vfs.Join(append([]string{originalPrefix}, parts[known:]...)...)
	}
	if err := p.fs.CreateDir(real); err != nil {
		return fmt.Errorf("creating directory %q in a path cache: %w", path, err)
	}
	return nil
}

func (p *FS) RemoveDir(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	real, err := p.resolve(path)
	if err != nil {
		return fmt.Errorf("removing directory %q in a path cache: %w", path, err)
	}
	if err := p.fs.RemoveDir(real); err != nil {
		return fmt.Errorf("removing directory %q in a path cache: %w", path, err)
	}
	p.cache.purge(vfs.TrimExt(lowercase(real)))
	return nil
}

func (p *FS) RemoveFile(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	real, err := p.resolve(path)
	if err != nil {
		return fmt.Errorf("removing file %q in a path cache: %w", path, err)
	}
	if err := p.fs.RemoveFile(real); err != nil {
		return fmt.Errorf("removing file %q in a path cache: %w", path, err)
	}

	lower := lowercase(real)
	ext := vfs.Ext(lower)
	stem := vfs.TrimExt(lower)

	// Exact extension first, then the same ".*" glob desensitize uses.
	if m, ok := p.cache.trie.GetFile(stem); ok {
		if index, ok := m[ext]; ok {
			p.cache.cactus.remove(index)
			delete(m, ext)
			if len(m) == 0 {
				p.cache.trie.RemoveFile(stem)
			}
			return nil
		}
	}
	if m, ok := p.cache.trie.GetFile(lower); ok {
		if index, ok := firstIndex(m); ok {
			p.cache.cactus.remove(index)
			for key, value := range m {
				if value == index {
					delete(m, key)
					break
				}
			}
		}
		if len(m) == 0 {
			p.cache.trie.RemoveFile(lower)
		}
	}
	return nil
}

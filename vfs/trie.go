package vfs

import "slices"

// Trie is a directory-tree index mapping paths to values of type V. A path
// can simultaneously name a value ("file") and a directory holding deeper
// entries; the archive index and the path cache both rely on that.
//
// The zero Trie is not usable; call NewTrie.
type Trie[V any] struct {
	root *trieNode[V]
}

type trieNode[V any] struct {
	children map[string]*trieNode[V]
	value    V
	hasValue bool
	isDir    bool
}

// TrieEntry is one entry of a trie directory listing.
type TrieEntry[V any] struct {
	Name   string
	IsFile bool
	IsDir  bool
	Value  V
}

// NewTrie returns an empty trie whose root is an existing directory.
func NewTrie[V any]() *Trie[V] {
	return &Trie[V]{root: &trieNode[V]{isDir: true}}
}

func (t *Trie[V]) lookup(path string) *trieNode[V] {
	node := t.root
	for _, part := range Split(path) {
		node = node.children[part]
		if node == nil {
			return nil
		}
	}
	return node
}

// ensure walks to path, creating intermediate directory nodes.
func (t *Trie[V]) ensure(path string) *trieNode[V] {
	node := t.root
	for _, part := range Split(path) {
		child := node.children[part]
		if child == nil {
			child = &trieNode[V]{}
			if node.children == nil {
				node.children = make(map[string]*trieNode[V])
			}
			node.children[part] = child
			node.isDir = true
		}
		node = child
	}
	return node
}

// CreateDir adds a directory at path, creating parents as needed.
func (t *Trie[V]) CreateDir(path string) {
	t.ensure(path).isDir = true
}

// CreateFile sets the value at path, creating parent directories as
// needed. An existing value is replaced.
func (t *Trie[V]) CreateFile(path string, value V) {
	node := t.ensure(path)
	node.value = value
	node.hasValue = true
}

// GetFile returns the value at path.
func (t *Trie[V]) GetFile(path string) (V, bool) {
	if node := t.lookup(path); node != nil && node.hasValue {
		return node.value, true
	}
	var zero V
	return zero, false
}

// UpdateFile replaces the value at path only if one exists.
func (t *Trie[V]) UpdateFile(path string, value V) bool {
	if node := t.lookup(path); node != nil && node.hasValue {
		node.value = value
		return true
	}
	return false
}

// ContainsFile reports whether path names a value.
func (t *Trie[V]) ContainsFile(path string) bool {
	node := t.lookup(path)
	return node != nil && node.hasValue
}

// ContainsDir reports whether path names a directory.
func (t *Trie[V]) ContainsDir(path string) bool {
	node := t.lookup(path)
	return node != nil && (node.isDir || len(node.children) > 0)
}

// Contains reports whether path names a value or a directory.
func (t *Trie[V]) Contains(path string) bool {
	return t.lookup(path) != nil
}

// DirLen returns the number of entries in the directory at path.
func (t *Trie[V]) DirLen(path string) (int, bool) {
	node := t.lookup(path)
	if node == nil || !(node.isDir || len(node.children) > 0) {
		return 0, false
	}
	return len(node.children), true
}

// DirPrefix returns the longest prefix of path that exists in the trie,
// possibly the empty (root) path.
func (t *Trie[V]) DirPrefix(path string) string {
	node := t.root
	parts := Split(path)
	prefix := 0
	for i, part := range parts {
		node = node.children[part]
		if node == nil {
			break
		}
		prefix = i + 1
	}
	return Join(parts[:prefix]...)
}

// RemoveFile removes the value at path, pruning the node if nothing else
// hangs off it.
func (t *Trie[V]) RemoveFile(path string) (V, bool) {
	var zero V
	parent := t.lookup(Dir(path))
	if parent == nil {
		return zero, false
	}
	name := Base(path)
	node := parent.children[name]
	if node == nil || !node.hasValue {
		return zero, false
	}
	value := node.value
	node.value = zero
	node.hasValue = false
	if len(node.children) == 0 && !node.isDir {
		delete(parent.children, name)
	}
	return value, true
}

// RemoveDir removes the directory at path together with its entire
// subtree, including any value stored at path itself.
func (t *Trie[V]) RemoveDir(path string) bool {
	if Clean(path) == "" {
		t.root = &trieNode[V]{isDir: true}
		return true
	}
	parent := t.lookup(Dir(path))
	if parent == nil {
		return false
	}
	name := Base(path)
	if parent.children[name] == nil {
		return false
	}
	delete(parent.children, name)
	return true
}

// ListDir returns the entries of the directory at path sorted by name.
func (t *Trie[V]) ListDir(path string) ([]TrieEntry[V], bool) {
	node := t.lookup(path)
	if node == nil || !(node.isDir || len(node.children) > 0) {
		return nil, false
	}
	entries := make([]TrieEntry[V], 0, len(node.children))
	for name, child := range node.children {
		entries = append(entries, TrieEntry[V]{
			Name:   name,
			IsFile: child.hasValue,
			IsDir:  child.isDir || len(child.children) > 0,
			Value:  child.value,
		})
	}
	slices.SortFunc(entries, func(a, b TrieEntry[V]) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
	return entries, true
}

// WalkFiles visits every value at or under prefix in unspecified order.
// Returning false from fn stops the walk.
func (t *Trie[V]) WalkFiles(prefix string, fn func(path string, value V) bool) {
	node := t.lookup(prefix)
	if node == nil {
		return
	}
	walkFiles(node, Clean(prefix), fn)
}

func walkFiles[V any](node *trieNode[V], path string, fn func(string, V) bool) bool {
	if node.hasValue && !fn(path, node.value) {
		return false
	}
	for name, child := range node.children {
		if !walkFiles(child, Join(path, name), fn) {
			return false
		}
	}
	return true
}

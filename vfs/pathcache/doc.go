// Package pathcache wraps a storage backend with case-insensitive,
// extension-fuzzy path resolution.
//
// RPG Maker game data refers to assets with arbitrary letter casing and
// often without file extensions, while the backing storage may be
// case-sensitive. The cache resolves such a path to the real one by
// memoizing directory listings in a trie of lowercased, extension-stripped
// paths whose leaves point into a cactus store: a slab arena of path
// components chained to their parents, so common prefixes share storage
// and full paths are reconstructed by one reverse walk.
//
// The memo is built lazily, one real directory listing per uncached path
// component, warming the whole sibling set of each listed directory. It is
// never pre-populated and never evicted; mutations purge the affected
// subtree and Rebuild drops everything when the caller suspects the
// backing store changed underneath.
package pathcache

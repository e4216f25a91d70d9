package pathcache

import "strings"

// cactusNode is one original-case path component. next points at the
// parent component's node, so nodes for a shared path prefix are shared
// across every leaf under it (siblings never share nodes with each other,
// hence "cactus"). length is the chain length including this node, used
// to size the reconstruction buffer without walking twice.
type cactusNode struct {
	value  string
	next   int
	length int
	live   bool
}

// noParent terminates a cactus chain.
const noParent = -1

// cactusStore is a slab arena of cactus nodes addressed by stable index,
// with removal by index in O(1) through a free list.
type cactusStore struct {
	nodes []cactusNode
	free  []int
}

func (s *cactusStore) insert(node cactusNode) int {
	node.live = true
	if n := len(s.free); n > 0 {
		index := s.free[n-1]
		s.free = s.free[:n-1]
		s.nodes[index] = node
		return index
	}
	s.nodes = append(s.nodes, node)
	return len(s.nodes) - 1
}

func (s *cactusStore) remove(index int) {
	if index < 0 || index >= len(s.nodes) || !s.nodes[index].live {
		return
	}
	s.nodes[index] = cactusNode{}
	s.free = append(s.free, index)
}

func (s *cactusStore) get(index int) (cactusNode, bool) {
	if index < 0 || index >= len(s.nodes) || !s.nodes[index].live {
		return cactusNode{}, false
	}
	return s.nodes[index], true
}

// path reconstructs the full original-case path for the chain ending at
// index by collecting components parent-ward and reversing.
func (s *cactusStore) path(index int) string {
	node, ok := s.get(index)
	if !ok {
		return ""
	}
	parts := make([]string, node.length)
	for i := node.length - 1; i >= 0; i-- {
		parts[i] = node.value
		if node.next == noParent {
			break
		}
		node, ok = s.get(node.next)
		if !ok {
			break
		}
	}
	return strings.Join(parts, "/")
}

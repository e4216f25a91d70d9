package vfs

import (
	"sort"
	"testing"
)

func buildTrie() *Trie[int] {
	trie := NewTrie[int]()
	trie.CreateFile("Data/Map001.rxdata", 1)
	trie.CreateFile("Data/Map002.rxdata", 2)
	trie.CreateFile("Data/System/Config.rxdata", 3)
	trie.CreateFile("Game.ini", 4)
	trie.CreateDir("Graphics")
	return trie
}

func TestTrieLookups(t *testing.T) {
	trie := buildTrie()

	if v, ok := trie.GetFile("Data/Map001.rxdata"); !ok || v != 1 {
		t.Errorf("GetFile = %d, %v", v, ok)
	}
	if _, ok := trie.GetFile("Data"); ok {
		t.Error("GetFile on a directory should miss")
	}
	if !trie.ContainsDir("Data/System") {
		t.Error("ContainsDir missed an implicit directory")
	}
	if !trie.ContainsDir("Graphics") {
		t.Error("ContainsDir missed an explicit empty directory")
	}
	if trie.ContainsFile("Graphics") {
		t.Error("ContainsFile matched a directory")
	}
	if n, ok := trie.DirLen("Data"); !ok || n != 3 {
		t.Errorf("DirLen(Data) = %d, %v", n, ok)
	}
	if _, ok := trie.DirLen("Data/Map001.rxdata"); ok {
		t.Error("DirLen on a plain file should miss")
	}
}

func TestTrieFileAndDirSamePath(t *testing.T) {
	trie := NewTrie[int]()
	trie.CreateFile("Data", 1)
	trie.CreateFile("Data/Map001.rxdata", 2)

	if !trie.ContainsFile("Data") {
		t.Error("Data should still be a file")
	}
	if !trie.ContainsDir("Data") {
		t.Error("Data should also be a directory")
	}
}

func TestTrieDirPrefix(t *testing.T) {
	trie := buildTrie()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "full path exists", path: "Data/System/Config.rxdata", expected: "Data/System/Config.rxdata"},
		{name: "partial", path: "Data/System/missing/deeper", expected: "Data/System"},
		{name: "nothing", path: "Audio/BGM/battle", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trie.DirPrefix(tt.path); got != tt.expected {
				t.Errorf("DirPrefix(%q) = %q, expected %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestTrieListDir(t *testing.T) {
	trie := buildTrie()

	entries, ok := trie.ListDir("Data")
	if !ok {
		t.Fatal("ListDir(Data) missed")
	}
	if len(entries) != 3 {
		t.Fatalf("ListDir(Data) returned %d entries", len(entries))
	}
	if !sort.SliceIsSorted(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name }) {
		t.Error("ListDir entries are not sorted")
	}
	if entries[0].Name != "Map001.rxdata" || !entries[0].IsFile || entries[0].Value != 1 {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[2].Name != "System" || entries[2].IsFile || !entries[2].IsDir {
		t.Errorf("System entry = %+v", entries[2])
	}

	if _, ok := trie.ListDir("missing"); ok {
		t.Error("ListDir on a missing path should miss")
	}
}

func TestTrieRemove(t *testing.T) {
	trie := buildTrie()

	if v, ok := trie.RemoveFile("Data/Map001.rxdata"); !ok || v != 1 {
		t.Errorf("RemoveFile = %d, %v", v, ok)
	}
	if trie.Contains("Data/Map001.rxdata") {
		t.Error("removed file is still present")
	}
	if _, ok := trie.RemoveFile("Data/Map001.rxdata"); ok {
		t.Error("double remove should miss")
	}

	if !trie.RemoveDir("Data/System") {
		t.Error("RemoveDir missed")
	}
	if trie.Contains("Data/System/Config.rxdata") {
		t.Error("subtree survived RemoveDir")
	}
	if n, _ := trie.DirLen("Data"); n != 1 {
		t.Errorf("DirLen(Data) after removals = %d", n)
	}
}

func TestTrieWalkFiles(t *testing.T) {
	trie := buildTrie()

	seen := map[string]int{}
	trie.WalkFiles("Data", func(path string, value int) bool {
		seen[path] = value
		return true
	})
	if len(seen) != 3 {
		t.Fatalf("walk under Data visited %d files", len(seen))
	}
	if seen["Data/System/Config.rxdata"] != 3 {
		t.Errorf("walk results: %v", seen)
	}

	// The prefix node's own value is included.
	trie.CreateFile("Data", 9)
	count := 0
	trie.WalkFiles("Data", func(string, int) bool {
		count++
		return true
	})
	if count != 4 {
		t.Errorf("walk including prefix value visited %d files", count)
	}

	// Early termination.
	count = 0
	trie.WalkFiles("", func(string, int) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("terminated walk visited %d files", count)
	}
}

package cmd

import (
	"testing"
)

func TestPathsOverlap(t *testing.T) {
	tests := []struct {
		name     string
		path1    string
		path2    string
		expected bool
	}{
		{
			name:     "identical paths",
			path1:    "/games/project",
			path2:    "/games/project",
			expected: true,
		},
		{
			name:     "path1 contains path2",
			path1:    "/games/project/mnt",
			path2:    "/games/project",
			expected: true,
		},
		{
			name:     "path2 contains path1",
			path1:    "/games/project",
			path2:    "/games/project/mnt",
			expected: true,
		},
		{
			name:     "completely separate paths",
			path1:    "/games/project",
			path2:    "/mnt/game",
			expected: false,
		},
		{
			name:     "sibling directories",
			path1:    "/games/project",
			path2:    "/games/mnt",
			expected: false,
		},
		{
			name:     "relative paths - overlapping",
			path1:    "project",
			path2:    "project/mnt",
			expected: true,
		},
		{
			name:     "relative paths - separate",
			path1:    "project",
			path2:    "mnt",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pathsOverlap(tt.path1, tt.path2)
			if result != tt.expected {
				t.Errorf("pathsOverlap(%q, %q) = %v, expected %v", tt.path1, tt.path2, result, tt.expected)
			}
		})
	}
}

// Package main provides the rgssfs command-line interface.
//
// rgssfs is a virtual filesystem for RPG Maker XP/VX/VX Ace projects. It
// reads and writes the encrypted RGSSAD archive formats, merges a project
// directory with RTP directories and the game archive into a single view,
// and resolves paths case-insensitively the way the RGSS engine does.
//
// The main binary supports multiple subcommands:
//   - mount: Mount a project's merged filesystem view over FUSE
//   - resolve: Resolve case-insensitive paths against a project
//   - pack: Pack a directory tree into an RGSSAD archive
//   - unpack: Extract an RGSSAD archive to a directory
//   - ls: List archive entries
//   - validate: Validate archive structure
//   - seed: Generate a mixed-case test project
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/rgsskit/rgssfs/internal/cmd"
)

func main() {
	if err := fang.Execute(context.Background(), cmd.NewRootCmd()); err != nil {
		os.Exit(1)
	}
}

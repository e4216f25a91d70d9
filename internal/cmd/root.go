package cmd

import (
	"github.com/rgsskit/rgssfs/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root cobra command for the rgssfs CLI.
// It sets up all subcommands, command groups, and basic configuration.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rgssfs",
		Short: "rgssfs - A virtual filesystem for RPG Maker projects and RGSSAD archives",
		Long: `rgssfs is a virtual filesystem for RPG Maker XP/VX/VX Ace projects.

It reads and writes the encrypted RGSSAD archive formats, merges a project
directory with RTP directories and the game archive into a single view, and
resolves paths case-insensitively the way the RGSS engine does on Windows.

Use subcommands to perform different operations:
  - mount: Mount a project's merged filesystem view over FUSE
  - resolve: Resolve case-insensitive paths against a project
  - pack: Pack a directory tree into an RGSSAD archive
  - unpack: Extract an RGSSAD archive to a directory
  - ls: List archive entries
  - validate: Validate archive structure`,
		Version: version.GetFullVersion(),
	}

	groupFilesystem := "filesystem"
	groupArchive := "archive"
	groupUtilities := "utilities"

	// Add command groups for better organization
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupArchive,
		Title: "Archive Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	mountCmd := NewMountCmd()
	resolveCmd := NewResolveCmd()
	packCmd := NewPackCmd()
	unpackCmd := NewUnpackCmd()
	lsCmd := NewLsCmd()
	validateCmd := NewValidateCmd()
	seedCmd := NewSeedCmd()

	mountCmd.GroupID = groupFilesystem
	resolveCmd.GroupID = groupFilesystem
	packCmd.GroupID = groupArchive
	unpackCmd.GroupID = groupArchive
	lsCmd.GroupID = groupArchive
	validateCmd.GroupID = groupArchive
	seedCmd.GroupID = groupUtilities

	// Add subcommands
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(unpackCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(seedCmd)

	return rootCmd
}

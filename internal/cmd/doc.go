// Package cmd provides the command-line interface implementation for rgssfs.
//
// This package contains all the subcommand implementations for the rgssfs CLI
// tool. It uses the Cobra library for command structure and Fang for beautiful
// styling.
//
// The package is organized into the following commands:
//   - root: Main command coordinator and entry point
//   - mount: FUSE mounting of a project's merged filesystem view
//   - resolve: Case-insensitive path resolution against a project
//   - pack: Directory tree to RGSSAD archive conversion
//   - unpack: RGSSAD archive extraction
//   - ls: Archive entry listing
//   - validate: Archive structure validation
//   - seed: Mixed-case test project generation
//
// Each command is implemented as a separate file with its own constructor
// function that returns a *cobra.Command. The commands lean on the vfs
// packages for all archive and filesystem operations.
package cmd

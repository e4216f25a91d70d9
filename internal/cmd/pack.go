package cmd

import (
	"context"
	"fmt"
	"iter"
	"log"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/rgsskit/rgssfs/vfs"
	"github.com/rgsskit/rgssfs/vfs/archive"
	"github.com/rgsskit/rgssfs/vfs/host"
	"github.com/rgsskit/rgssfs/vfs/project"
)

// NewPackCmd creates and returns the pack subcommand for the rgssfs CLI.
// It packs a directory tree into an encrypted RGSSAD archive.
func NewPackCmd() *cobra.Command {
	var (
		formatVersion int
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "pack INPUT_DIR ARCHIVE",
		Short: "Pack a directory tree into an RGSSAD archive",
		Long: `Pack a directory tree into an encrypted RGSSAD archive.

INPUT_DIR is the directory whose contents will be archived.
ARCHIVE is the output file; its extension picks the format version
(.rgssad and .rgss2a produce version 1, .rgss3a produces version 3)
unless --format overrides it.

The archive is written to a temporary file first and renamed into place
only on success.`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runPack(args[0], args[1], formatVersion, verbose)
		},
	}

	cmd.Flags().IntVarP(&formatVersion, "format", "f", 0, "Archive format version (1, 2, or 3; default from extension)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}

func runPack(inputPath, archivePath string, formatVersion int, verbose bool) {
	// Validate input directory exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Input directory does not exist: %s", inputPath)
	}

	version := byte(formatVersion)
	if version == 0 {
		version = project.ArchiveVersion(archivePath)
	}
	if version == 0 {
		log.Fatalf("Cannot infer archive format from %s, use --format", archivePath)
	}

	if verbose {
		fmt.Printf("Packing %s into %s (format version %d)\n", inputPath, archivePath, version)
	}

	input := host.NewDir(inputPath)

	tmpPath := archivePath + ".tmp"
	out := host.NewOS()
	stream, err := out.OpenFile(tmpPath, vfs.FlagWrite|vfs.FlagCreate|vfs.FlagTruncate)
	if err != nil {
		log.Fatalf("Failed to create archive: %v", err)
	}

	count := 0
	_, err = archive.FromFiles(context.Background(), stream, version, packSources(input, verbose, &count))
	stream.Close()
	if err != nil {
		os.Remove(tmpPath)
		log.Fatalf("Failed to write archive: %v", err)
	}

	if err := os.Rename(tmpPath, archivePath); err != nil {
		os.Remove(tmpPath)
		log.Fatalf("Failed to move archive into place: %v", err)
	}

	fmt.Printf("Packed %d files into %s\n", count, archivePath)
}

// packSources walks input depth-first and yields every file as an archive
// source. Files are opened lazily, one at a time.
func packSources(input vfs.FS, verbose bool, count *int) iter.Seq2[archive.Source, error] {
	return func(yield func(archive.Source, error) bool) {
		var walk func(dir string) bool
		walk = func(dir string) bool {
			entries, err := input.ReadDir(dir)
			if err != nil {
				yield(archive.Source{}, fmt.Errorf("listing %q: %w", dir, err))
				return false
			}
			for _, entry := range entries {
				if !entry.Metadata.IsFile {
					if !walk(entry.Path) {
						return false
					}
					continue
				}
				if entry.Metadata.Size > math.MaxUint32 {
					yield(archive.Source{}, fmt.Errorf("file %q exceeds the archive size limit", entry.Path))
					return false
				}
				file, err := input.OpenFile(entry.Path, vfs.FlagRead)
				if err != nil {
					yield(archive.Source{}, fmt.Errorf("opening %q: %w", entry.Path, err))
					return false
				}
				if verbose {
					fmt.Printf("  %s (%d bytes)\n", entry.Path, entry.Metadata.Size)
				}
				ok := yield(archive.Source{
					Path:   entry.Path,
					Size:   uint32(entry.Metadata.Size),
					Reader: file,
				}, nil)
				file.Close()
				if !ok {
					return false
				}
				*count++
			}
			return true
		}
		walk("")
	}
}

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgsskit/rgssfs/vfs"
	"github.com/rgsskit/rgssfs/vfs/archive"
	"github.com/rgsskit/rgssfs/vfs/host"
)

// NewUnpackCmd creates and returns the unpack subcommand for the rgssfs CLI.
// It extracts an encrypted RGSSAD archive into a directory tree.
func NewUnpackCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "unpack ARCHIVE OUTPUT_DIR",
		Short: "Extract an RGSSAD archive to a directory",
		Long: `Extract all entries of an encrypted RGSSAD archive into OUTPUT_DIR.

Entry paths inside the archive become paths relative to OUTPUT_DIR.
Parent directories are created as needed.`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runUnpack(args[0], args[1], verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show progress while extracting")

	return cmd
}

func runUnpack(archivePath, outputPath string, verbose bool) {
	stream, err := host.NewOS().OpenFile(archivePath, vfs.FlagRead)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer stream.Close()

	src, err := archive.New(stream)
	if err != nil {
		log.Fatalf("Failed to read archive: %v", err)
	}

	if err := os.MkdirAll(outputPath, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	out := host.NewDir(outputPath)

	var extracted atomic.Uint64

	done := make(chan struct{})
	if verbose {
		ticker := time.NewTicker(time.Second)
		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					fmt.Printf("Extracted %d files...\n", extracted.Load())
				case <-done:
					return
				}
			}
		}()
	}

	if err := extractDir(src, out, "", &extracted); err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
	close(done)

	fmt.Printf("Extracted %d files to %s\n", extracted.Load(), outputPath)
}

func extractDir(src *archive.FS, out vfs.FS, dir string, extracted *atomic.Uint64) error {
	entries, err := src.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.Metadata.IsFile {
			if err := out.CreateDir(entry.Path); err != nil {
				return err
			}
			if err := extractDir(src, out, entry.Path, extracted); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(src, out, entry.Path); err != nil {
			return err
		}
		extracted.Add(1)
	}
	return nil
}

func extractFile(src *archive.FS, out vfs.FS, path string) error {
	in, err := src.OpenFile(path, vfs.FlagRead)
	if err != nil {
		return err
	}
	defer in.Close()

	dst, err := out.OpenFile(path, vfs.FlagWrite|vfs.FlagCreate|vfs.FlagTruncate)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, in); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

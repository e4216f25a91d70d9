package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/rgsskit/rgssfs/vfs"
	"github.com/rgsskit/rgssfs/vfs/archive"
	"github.com/rgsskit/rgssfs/vfs/host"
)

// NewLsCmd creates and returns the ls subcommand for the rgssfs CLI.
// It lists the entries of an encrypted RGSSAD archive.
func NewLsCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "ls ARCHIVE [PATH]",
		Short: "List archive entries",
		Long: `List the entries of an encrypted RGSSAD archive.

Without PATH the whole archive is listed recursively. With PATH only the
entries of that directory are shown.`,
		Args: cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			path := ""
			if len(args) > 1 {
				path = args[1]
			}
			runLs(args[0], path, long)
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show entry sizes")

	return cmd
}

func runLs(archivePath, path string, long bool) {
	stream, err := host.NewOS().OpenFile(archivePath, vfs.FlagRead)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer stream.Close()

	src, err := archive.New(stream)
	if err != nil {
		log.Fatalf("Failed to read archive: %v", err)
	}

	if path != "" {
		entries, err := src.ReadDir(path)
		if err != nil {
			log.Fatalf("Failed to list %s: %v", path, err)
		}
		for _, entry := range entries {
			printEntry(entry, long)
		}
		return
	}

	if err := lsDir(src, "", long); err != nil {
		log.Fatalf("Failed to list archive: %v", err)
	}
}

func lsDir(src *archive.FS, dir string, long bool) error {
	entries, err := src.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		printEntry(entry, long)
		if !entry.Metadata.IsFile {
			if err := lsDir(src, entry.Path, long); err != nil {
				return err
			}
		}
	}
	return nil
}

func printEntry(entry vfs.DirEntry, long bool) {
	if !long {
		fmt.Println(entry.Path)
		return
	}
	if entry.Metadata.IsFile {
		fmt.Printf("%10d  %s\n", entry.Metadata.Size, entry.Path)
	} else {
		fmt.Printf("%10s  %s/\n", "-", entry.Path)
	}
}

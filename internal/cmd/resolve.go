package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/rgsskit/rgssfs/vfs"
	"github.com/rgsskit/rgssfs/vfs/project"
)

// NewResolveCmd creates and returns the resolve subcommand for the rgssfs
// CLI. It resolves case-insensitive paths the way the RGSS engine does.
func NewResolveCmd() *cobra.Command {
	var rtps []string

	cmd := &cobra.Command{
		Use:   "resolve PROJECT_PATH VIRTUAL_PATH...",
		Short: "Resolve case-insensitive paths against a project",
		Long: `Resolve case-insensitive virtual paths against a project's merged view.

Each VIRTUAL_PATH is looked up the way the RGSS engine loads assets:
case-insensitively, with the file extension optional, across the project
directory, any --rtp directories, and the game archive. The resolved
path with its real casing is printed for every match.`,
		Args: cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runResolve(args[0], args[1:], rtps)
		},
	}

	cmd.Flags().StringSliceVar(&rtps, "rtp", nil, "RTP directory to layer beneath the project (repeatable)")

	return cmd
}

func runResolve(projectPath string, paths, rtps []string) {
	proj, err := project.Load(projectPath, rtps...)
	if err != nil {
		log.Fatalf("Failed to load project: %v", err)
	}

	misses := 0
	for _, path := range paths {
		real, err := proj.FS.Desensitize(path)
		switch {
		case errors.Is(err, vfs.ErrNotExist):
			fmt.Printf("%s: not found\n", path)
			misses++
		case err != nil:
			log.Fatalf("Failed to resolve %s: %v", path, err)
		default:
			fmt.Printf("%s -> %s\n", path, real)
		}
	}

	if misses > 0 {
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	_ "bazil.org/fuse/fs/fstestutil"
	"github.com/spf13/cobra"

	"github.com/rgsskit/rgssfs/mountfs"
	"github.com/rgsskit/rgssfs/vfs"
	"github.com/rgsskit/rgssfs/vfs/archive"
	"github.com/rgsskit/rgssfs/vfs/host"
	"github.com/rgsskit/rgssfs/vfs/pathcache"
	"github.com/rgsskit/rgssfs/vfs/project"
	"github.com/rgsskit/rgssfs/version"
)

// NewMountCmd creates and returns the mount subcommand for the rgssfs CLI.
// It serves a project's merged filesystem view over FUSE.
func NewMountCmd() *cobra.Command {
	var rtps []string

	cmd := &cobra.Command{
		Use:   "mount PROJECT_PATH MOUNTPOINT",
		Short: "Mount a project's merged filesystem view",
		Long: `Mount an RPG Maker project at the specified mountpoint.

PROJECT_PATH is the path to the game directory, or directly to an
encrypted archive file.
MOUNTPOINT is the directory where the merged view will be mounted.

The mounted filesystem is read-only and resolves paths case-insensitively
across the project directory, any --rtp directories, and the game archive.`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runMount(args[0], args[1], rtps)
		},
	}

	cmd.Flags().StringSliceVar(&rtps, "rtp", nil, "RTP directory to layer beneath the project (repeatable)")

	return cmd
}

func runMount(projectPath, mountpoint string, rtps []string) {
	// Print version info on startup
	fmt.Printf("rgssfs %s starting...\n", version.GetFullVersion())

	if pathsOverlap(projectPath, mountpoint) {
		log.Fatalf("Mountpoint %s overlaps project directory %s", mountpoint, projectPath)
	}

	source, err := loadMountSource(projectPath, rtps)
	if err != nil {
		log.Fatalf("Failed to load project: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("rgssfs %s mounted at %s (project: %s)", version.GetVersion(), mountpoint, projectPath)
	if err := mountfs.New(source).Serve(ctx, mountpoint); err != nil && err != context.Canceled {
		log.Fatal(err)
	}
	log.Println("Shutdown complete")
}

// loadMountSource accepts either a game directory or a bare archive file.
func loadMountSource(path string, rtps []string) (vfs.FS, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		stream, err := host.NewOS().OpenFile(path, vfs.FlagRead)
		if err != nil {
			return nil, err
		}
		src, err := archive.New(stream)
		if err != nil {
			stream.Close()
			return nil, err
		}
		return pathcache.New(src), nil
	}

	proj, err := project.Load(path, rtps...)
	if err != nil {
		return nil, err
	}
	if proj.Archive != "" {
		log.Printf("Using archive %s", proj.Archive)
	}
	return proj.FS, nil
}

// pathsOverlap reports whether one path contains the other. Mounting
// inside the project directory would make the mount visible to itself.
func pathsOverlap(path1, path2 string) bool {
	abs1, err := filepath.Abs(path1)
	if err != nil {
		abs1 = filepath.Clean(path1)
	}
	abs2, err := filepath.Abs(path2)
	if err != nil {
		abs2 = filepath.Clean(path2)
	}

	if abs1 == abs2 {
		return true
	}
	return strings.HasPrefix(abs1, abs2+string(filepath.Separator)) ||
		strings.HasPrefix(abs2, abs1+string(filepath.Separator))
}

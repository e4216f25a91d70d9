package project

import (
	"fmt"
	"strings"

	"github.com/rgsskit/rgssfs/vfs"
	"github.com/rgsskit/rgssfs/vfs/archive"
	"github.com/rgsskit/rgssfs/vfs/host"
	"github.com/rgsskit/rgssfs/vfs/overlay"
	"github.com/rgsskit/rgssfs/vfs/pathcache"
)

// Edition identifies which RPG Maker release a project was made with.
type Edition string

const (
	EditionUnknown Edition = ""
	EditionXP      Edition = "xp"
	EditionVX      Edition = "vx"
	EditionAce     Edition = "ace"
)

// archiveEditions maps encrypted archive extensions to the editions that
// produce them.
var archiveEditions = map[string]Edition{
	"rgssad": EditionXP,
	"rgss2a": EditionVX,
	"rgss3a": EditionAce,
}

// ArchiveVersion returns the wire format version for an archive file
// name, or 0 if the extension is not an archive extension.
func ArchiveVersion(name string) byte {
	switch archiveEditions[strings.ToLower(vfs.Ext(name))] {
	case EditionXP, EditionVX:
		return 1
	case EditionAce:
		return 3
	}
	return 0
}

// Project is a loaded game directory. Its FS resolves paths
// case-insensitively across the project directory, any RTP directories,
// and the game archive.
type Project struct {
	FS   *pathcache.FS
	Host *host.FS

	Root string
	// Archive is the file name of the encrypted archive in the project
	// root, or "" if the project ships unpacked.
	Archive string
}

// Load opens the project at root. Any RTP directories are layered after
// the project directory, and an encrypted archive found in the project
// root is layered last, so loose files always win over packed ones.
func Load(root string, rtps ...string) (*Project, error) {
	hostFS := host.NewDir(root)

	layers := []vfs.FS{hostFS}
	for _, rtp := range rtps {
		layers = append(layers, host.NewDir(rtp))
	}

	archiveName, err := findArchive(hostFS)
	if err != nil {
		return nil, fmt.Errorf("loading project at %q: %w", root, err)
	}
	if archiveName != "" {
		stream, err := hostFS.OpenFile(archiveName, vfs.FlagRead)
		if err != nil {
			return nil, fmt.Errorf("loading project at %q: %w", root, err)
		}
		archiveFS, err := archive.New(stream)
		if err != nil {
			stream.Close()
			return nil, fmt.Errorf("loading project at %q: %w", root, err)
		}
		layers = append(layers, archiveFS)
	}

	return &Project{
		FS:      pathcache.New(overlay.New(layers...)),
		Host:    hostFS,
		Root:    root,
		Archive: archiveName,
	}, nil
}

// findArchive returns the name of the first encrypted archive in the
// project root, or "" if there is none.
func findArchive(fs vfs.FS) (string, error) {
	entries, err := fs.ReadDir("")
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if !entry.Metadata.IsFile {
			continue
		}
		if _, ok := archiveEditions[strings.ToLower(vfs.Ext(entry.Path))]; ok {
			return entry.FileName(), nil
		}
	}
	return "", nil
}

// Edition sniffs which RPG Maker edition the project targets, first by
// the well-known data files and then by the archive extension. Returns
// EditionUnknown if neither gives an answer.
func (p *Project) Edition() Edition {
	probes := []struct {
		path    string
		edition Edition
	}{
		{"Data/Actors.rxdata", EditionXP},
		{"Data/Actors.rvdata", EditionVX},
		{"Data/Actors.rvdata2", EditionAce},
	}
	for _, probe := range probes {
		if ok, err := p.FS.Exists(probe.path); err == nil && ok {
			return probe.edition
		}
	}
	if p.Archive != "" {
		return archiveEditions[strings.ToLower(vfs.Ext(p.Archive))]
	}
	return EditionUnknown
}

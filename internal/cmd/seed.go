package cmd

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/taigrr/colorhash"
)

// seedDirs mirrors the asset layout of a real RPG Maker project. Casing
// is deliberately inconsistent so the generated tree exercises
// case-insensitive resolution.
var seedDirs = []string{
	"Data",
	"data/System",
	"Graphics/Pictures",
	"graphics/Characters",
	"GRAPHICS/Tilesets",
	"Audio/BGM",
	"audio/SE",
}

var seedExts = []string{"png", "ogg", "txt", "rxdata"}

// NewSeedCmd creates and returns the seed subcommand for the rgssfs CLI.
// It generates a mixed-case test project for exercising path resolution.
func NewSeedCmd() *cobra.Command {
	var (
		outputPath string
		fileCount  int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a mixed-case test project",
		Long: `Generate a test project tree for exercising rgssfs functionality.

Creates an RPG Maker style directory layout with deliberately inconsistent
letter casing, populated with small files whose names mix upper and lower
case. Each file contains a single UUID line. Useful as input for pack and
as a target for resolve and mount.`,
		Run: func(cmd *cobra.Command, args []string) {
			runSeed(outputPath, fileCount, verbose)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&fileCount, "count", "c", 200, "Number of files to generate")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("output")

	return cmd
}

func runSeed(outputPath string, fileCount int, verbose bool) {
	if verbose {
		fmt.Printf("Generating %d test files in %s\n", fileCount, outputPath)
	}

	// Create the directory skeleton up front
	for _, dir := range seedDirs {
		if err := os.MkdirAll(filepath.Join(outputPath, filepath.FromSlash(dir)), 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	// Generate pool of 50 UUIDs
	uuidPool := make([]string, 50)
	for i := 0; i < 50; i++ {
		uuidPool[i] = uuid.New().String()
	}

	filesCreated := 0
	dirFileCounts := make(map[string]int)

	for filesCreated < fileCount {
		nameNum, _ := rand.Int(rand.Reader, big.NewInt(0xFFFFFF))
		name := fmt.Sprintf("Asset%06X", nameNum.Int64())

		// Randomly mangle the casing of the base name
		caseRand, _ := rand.Int(rand.Reader, big.NewInt(3))
		switch caseRand.Int64() {
		case 1:
			name = mangleCase(name, true)
		case 2:
			name = mangleCase(name, false)
		}

		// Distribute files across directories by color hash so the
		// spread is stable for a given name
		bucket := colorhash.HashString(name) % len(seedDirs)
		dir := seedDirs[bucket]

		extRand, _ := rand.Int(rand.Reader, big.NewInt(int64(len(seedExts))))
		filename := name + "." + seedExts[extRand.Int64()]
		filePath := filepath.Join(outputPath, filepath.FromSlash(dir), filename)

		// Skip if file already exists
		if _, err := os.Stat(filePath); err == nil {
			continue
		}

		// Select random UUID from pool
		uuidIndex, _ := rand.Int(rand.Reader, big.NewInt(50))
		content := uuidPool[uuidIndex.Int64()] + "\n"

		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			log.Printf("Warning: Failed to write file %s: %v", filePath, err)
			continue
		}

		dirFileCounts[dir]++
		filesCreated++

		if verbose && filesCreated%100 == 0 {
			fmt.Printf("Created %d/%d files...\n", filesCreated, fileCount)
		}
	}

	if verbose {
		fmt.Printf("Successfully created %d files\n", filesCreated)
		fmt.Printf("Files distributed across %d directories\n", len(dirFileCounts))
	}
}

// mangleCase uppercases or lowercases every other character.
func mangleCase(s string, even bool) string {
	out := []byte(s)
	for i, c := range out {
		flip := (i%2 == 0) == even
		switch {
		case flip && c >= 'a' && c <= 'z':
			out[i] = c - 'a' + 'A'
		case !flip && c >= 'A' && c <= 'Z':
			out[i] = c - 'A' + 'a'
		}
	}
	return string(out)
}

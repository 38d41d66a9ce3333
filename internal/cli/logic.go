package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwhitehere/acme-disk-use/internal/diskuse"
)

// Options configures a CLI invocation.
type Options struct {
	// Path is the directory to analyze.
	Path string
	// IgnoreCache bypasses the cache entirely.
	IgnoreCache bool
	// NonHumanReadable prints raw byte counts.
	NonHumanReadable bool
	// CacheFile overrides the cache file location.
	CacheFile string
}

// open builds the analyzer for the configured cache location.
func open(options Options) *diskuse.DiskUse {
	if options.CacheFile != "" {
		return diskuse.New(options.CacheFile)
	}

	return diskuse.NewWithDefaultCache()
}

func scan(options Options) error {
	if _, err := os.Stat(options.Path); err != nil {
		return fmt.Errorf("accessing path %q: %w", options.Path, err)
	}

	analyzer := open(options)
	defer analyzer.Close()

	// In-place status line only when stderr is a terminal
	showStatus := isatty.IsTerminal(os.Stderr.Fd())
	if showStatus {
		fmt.Fprintf(os.Stderr, "Scanning %s…\r", options.Path)
	}

	totalSize, err := analyzer.ScanWithOptions(options.Path, options.IgnoreCache)

	// Clear the status line
	if showStatus {
		fmt.Fprint(os.Stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	fileCount, err := analyzer.FileCount(options.Path, options.IgnoreCache)
	if err != nil {
		return err
	}

	//nolint:forbidigo // Result output to console
	fmt.Printf("Found %d files, total size: %s\n",
		fileCount, formatSize(totalSize, !options.NonHumanReadable))

	// Explicit save surfaces write failures; Close would swallow them.
	if !options.IgnoreCache {
		return analyzer.SaveCache()
	}

	return nil
}

func clean(options Options) error {
	analyzer := open(options)
	defer analyzer.Close()

	if err := analyzer.ClearCache(); err != nil {
		return err
	}

	//nolint:forbidigo // Result output to console
	fmt.Println("Cache cleared successfully.")

	return nil
}

// formatSize renders a byte count for display.
func formatSize(bytes uint64, humanReadable bool) string {
	if !humanReadable {
		return fmt.Sprintf("%d bytes", bytes)
	}

	return humanize.IBytes(bytes)
}

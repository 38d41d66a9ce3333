// Package cli implements the command-line interface for acme-disk-use.
package cli

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given version.
func New(version string) *CLI {
	var options Options

	rootCmd := &cobra.Command{
		Use:   "acme-disk-use [flags] [path]",
		Short: "A disk usage analyzer with caching support",
		Long: heredoc.Doc(`
			acme-disk-use computes the total size and file count of a directory tree.

			Results are cached per subtree. On later runs, subtrees whose modification
			times are unchanged since the previous scan are reused without rescanning,
			so repeated scans of mostly-immutable trees are fast. Deleted directories
			are pruned from the cache and totals re-aggregated automatically.

			The cache lives in the user cache directory by default; set the
			ACME_DISK_USE_CACHE environment variable to relocate it. Log level is
			controlled via ACME_DISK_USE_LOG.
		`),
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			options.Path = "."
			if len(args) > 0 {
				options.Path = args[0]
			}

			return scan(options)
		},
	}

	rootCmd.Flags().BoolVar(&options.IgnoreCache, "ignore-cache", false, "Ignore cache and scan fresh")
	rootCmd.Flags().BoolVar(
		&options.NonHumanReadable,
		"non-human-readable",
		false,
		"Show raw bytes instead of human-readable sizes",
	)
	rootCmd.PersistentFlags().StringVar(
		&options.CacheFile,
		"cache-file",
		"",
		"Cache file to use (defaults to the standard location)",
	)

	rootCmd.AddCommand(newCleanCmd(&options))

	return &CLI{version: version, rootCmd: rootCmd}
}

// Execute runs the CLI with the provided arguments.
func (c *CLI) Execute() error {
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func newCleanCmd(options *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Clear the cache contents",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return clean(*options)
		},
	}
}

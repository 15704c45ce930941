// Package app provides the reel command line.
package app

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

// rootOptions holds flags shared by every command
type rootOptions struct {
	configDir string
	noCache   bool
	debug     bool
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:               "reel",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "TMDB favorites and watchlist, cached locally",
		Long: `reel keeps your TMDB favorites and watchlist in a local cache so they
stay browsable offline. Use "reel login" once, then "reel sync" or "reel watch".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "Config directory (default: OS config dir)")
	rootCmd.PersistentFlags().BoolVar(&opts.noCache, "no-cache", false, "Keep the cache in memory only")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newSyncCmd(opts),
		newSearchCmd(opts),
		newFlagCmd(opts, flagFavorite),
		newFlagCmd(opts, flagWatchlist),
		newListCmd(opts),
		newPruneCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func newVersionCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versionInfo{
				Version:   Version,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}

			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("error formatting version info as JSON: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reel %s (%s, %s)\n", info.Version, info.GoVersion, info.Platform)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format (json)")
	return cmd
}

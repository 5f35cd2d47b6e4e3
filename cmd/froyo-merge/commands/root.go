package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath   string
	projectDir   string
	manifestFile string
	verbose      bool
	jsonOutput   bool

	// logLevel comes from the environment and overrides the configured
	// telemetry log level when set.
	logLevel string
)

// BuildInfo carries the version stamped into the binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// Execute runs the root command
func Execute(ctx context.Context, info BuildInfo, level string) error {
	logLevel = level
	rootCmd := newRootCommand(info.Version, info.Commit, info.BuildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "froyo-merge",
		Short: "Merge satellite package manifests into a root manifest",
		Long: `froyo-merge folds the requirements, autoload rules, repositories, scripts
and extra data of satellite manifests into a project's root manifest.

Satellites are selected by the include and require glob patterns of the
root manifest's extra.merge-plugin block. The merged result is what the
package manager resolves; the root manifest on disk is never rewritten.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.Logger = log.Logger.Level(zerolog.DebugLevel)
			}
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "d", ".", "project directory")
	rootCmd.PersistentFlags().StringVarP(&manifestFile, "manifest", "m", "", "root manifest file name (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newMergeCommand())
	rootCmd.AddCommand(newFilesCommand())
	rootCmd.AddCommand(newStabilityCommand())
	rootCmd.AddCommand(newInstallCommand())
	rootCmd.AddCommand(newWatchCommand())

	return rootCmd
}

// Package cmd provides command-line interface functionality for bnktools.
// bnktools is a collection of utilities for inspecting and modifying
// chunk-based audio banks (.bnk).
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/hansbonini/bnktools/pkg/common"
	"github.com/spf13/cobra"
)

// configFile is the path given with --config
var configFile string

// rootCmd represents the base command when called without any subcommands.
// It provides the main entry point for the bnktools application.
var rootCmd = &cobra.Command{
	Use:   "bnktools",
	Short: "Tools for modding audio bank files",
	Long: `bnktools - A collection of utilities for inspecting and modifying
chunk-based audio banks (.bnk).

Currently supports:
  - Bank layout reports (info, YAML manifest)
  - Embedded media extraction and replacement
  - Display names from the bank's text index
  - Round-trip verification and backup restore

Examples:
  bnktools bnk info Music.bnk
  bnktools bnk manifest Music.bnk -o music.yaml
  bnktools bnk extract Music.bnk ./media/ --names Music.txt
  bnktools bnk replace Music.bnk 123456 new.wem -o Music_modified.bnk
  bnktools bnk import Music.bnk ./media/
  bnktools bnk verify Music.bnk

Use 'bnktools [command] --help' for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
// An interrupt cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		common.LogError("%v", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the file given with --config, falling back to defaults
func loadConfig() (*common.Config, error) {
	cfg, err := common.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}

// setVerbose enables debug output when the command's verbose flag is set
func setVerbose(cmd *cobra.Command) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("error getting verbose flag: %w", err)
	}
	common.SetVerboseMode(verbose)
	return nil
}

// init initializes the root command with flags and configuration settings.
func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file (workers, history_limit, backup, extract_format)")
}

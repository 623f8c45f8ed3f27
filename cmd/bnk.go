// Package cmd provides command-line interface for sound bank processing.
// This file contains commands for inspecting, extracting and replacing
// the media embedded in .bnk files.
package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/hansbonini/bnktools/pkg"
	"github.com/spf13/cobra"
)

// bnkCmd represents the parent command for all bank operations.
var bnkCmd = &cobra.Command{
	Use:   "bnk",
	Short: "Process audio bank (.bnk) files",
	Long: `Process chunk-based audio bank files.

Commands:
  info      Show the chunk layout and embedded assets
  manifest  Write the bank layout as YAML
  extract   Extract embedded media files
  replace   Replace one embedded media file
  import    Replace embedded media from a directory
  names     Show display names from a text index
  verify    Check that the bank rebuilds byte for byte
  restore   Restore the bank saved before the last overwrite

Examples:
  bnktools bnk info Music.bnk
  bnktools bnk extract Music.bnk ./media/
  bnktools bnk replace Music.bnk 123456 new.wem`,
}

// newProcessor loads the configuration and sets verbosity for cmd
func newProcessor(cmd *cobra.Command) (*pkg.BNKProcessor, error) {
	if err := setVerbose(cmd); err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return pkg.NewBNKProcessor(cfg), nil
}

// bnkInfoCmd prints the chunk layout and the embedded assets of a bank.
var bnkInfoCmd = &cobra.Command{
	Use:   "info [input_file]",
	Short: "Show the chunk layout and embedded assets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := newProcessor(cmd)
		if err != nil {
			return err
		}

		m, err := processor.Info(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Bank: %s\n", args[0])
		fmt.Printf("Version: %d\n", m.Version)
		fmt.Printf("Bank ID: %d\n", m.BankID)
		fmt.Printf("Size: %d bytes\n", m.Size)
		fmt.Println("Chunks:")
		for _, s := range m.Sections {
			fmt.Printf("  %s  offset=0x%08X  size=%d\n", s.Tag, s.Offset, s.Size)
		}
		fmt.Printf("Assets: %d (%d bytes)\n", len(m.Assets), m.MediaSize)
		for _, a := range m.Assets {
			fmt.Printf("  %10d  offset=0x%08X  size=%d\n", a.ID, a.Offset, a.Size)
		}
		return nil
	},
}

// bnkManifestCmd writes the YAML manifest of a bank.
var bnkManifestCmd = &cobra.Command{
	Use:   "manifest [input_file]",
	Short: "Write the bank layout as YAML",
	Long: `Write the chunk layout and embedded assets of a bank as YAML.

Output:
  - YAML manifest on stdout, or in the file given with -o

Example:
  bnktools bnk manifest Music.bnk -o music.yaml --names Music.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := newProcessor(cmd)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		names, _ := cmd.Flags().GetString("names")

		if output == "" {
			return processor.WriteManifest(cmd.Context(), args[0], names, os.Stdout)
		}
		return processor.WriteManifestFile(cmd.Context(), args[0], names, output)
	},
}

// bnkExtractCmd writes every embedded media file to a directory.
var bnkExtractCmd = &cobra.Command{
	Use:   "extract [input_file] [output_dir]",
	Short: "Extract embedded media files",
	Long: `Extract every embedded media file of a bank.

Output:
  - One file per asset, named after its id (or its display name with --names)

Example:
  bnktools bnk extract Music.bnk ./media/ --names Music.txt`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := newProcessor(cmd)
		if err != nil {
			return err
		}
		names, _ := cmd.Flags().GetString("names")

		fmt.Printf("Processing bank: %s\n", args[0])
		fmt.Printf("Output directory: %s\n", args[1])

		paths, err := processor.Extract(cmd.Context(), args[0], args[1], names)
		if err != nil {
			return err
		}

		fmt.Printf("Extracted %d files successfully!\n", len(paths))
		return nil
	},
}

// bnkReplaceCmd replaces a single embedded media file.
var bnkReplaceCmd = &cobra.Command{
	Use:   "replace [input_file] [asset_id] [media_file]",
	Short: "Replace one embedded media file",
	Long: `Replace the payload of one embedded asset and rebuild the bank.

The bank is overwritten unless -o is given. A compressed backup of the
previous file is kept next to it when backups are enabled.

Example:
  bnktools bnk replace Music.bnk 123456 new.wem -o Music_modified.bnk`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := newProcessor(cmd)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		if err := processor.Replace(cmd.Context(), args[0], args[1], args[2], output); err != nil {
			return err
		}

		fmt.Println("Asset replaced successfully!")
		return nil
	},
}

// bnkImportCmd replaces every asset that has a matching file in a directory.
var bnkImportCmd = &cobra.Command{
	Use:   "import [input_file] [input_dir]",
	Short: "Replace embedded media from a directory",
	Long: `Replace embedded assets with the files of a directory.

Files are matched by asset id (123456.wem) or, with --names, by display
name. Nothing is written unless every file converts.

Example:
  bnktools bnk import Music.bnk ./media/ -o Music_modified.bnk`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := newProcessor(cmd)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		names, _ := cmd.Flags().GetString("names")

		n, err := processor.Import(cmd.Context(), args[0], args[1], names, output)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d files successfully!\n", n)
		return nil
	},
}

// bnkNamesCmd shows the display names a text index assigns.
var bnkNamesCmd = &cobra.Command{
	Use:   "names [input_file] [index_file]",
	Short: "Show display names from a text index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := newProcessor(cmd)
		if err != nil {
			return err
		}

		names, err := processor.AssignNames(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		ids := make([]uint32, 0, len(names))
		for id := range names {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			fmt.Printf("%10d  %s\n", id, names[id])
		}
		return nil
	},
}

// bnkVerifyCmd checks that a bank survives a parse and rebuild unchanged.
var bnkVerifyCmd = &cobra.Command{
	Use:   "verify [input_file]",
	Short: "Check that the bank rebuilds byte for byte",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := newProcessor(cmd)
		if err != nil {
			return err
		}

		report, err := processor.Verify(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !report.Identical {
			return fmt.Errorf("rebuild differs from source at offset 0x%X", report.MismatchOffset)
		}

		fmt.Printf("Bank verified: %d chunks, %d assets\n", len(report.Chunks), report.Assets)
		return nil
	},
}

// bnkRestoreCmd restores the backup kept by the last overwrite.
var bnkRestoreCmd = &cobra.Command{
	Use:   "restore [input_file]",
	Short: "Restore the bank saved before the last overwrite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := newProcessor(cmd)
		if err != nil {
			return err
		}

		if err := processor.Restore(args[0]); err != nil {
			return err
		}

		fmt.Println("Bank restored successfully!")
		return nil
	},
}

// init initializes the bnk command and its subcommands with appropriate flags.
func init() {
	// Register the bnk command with the root command
	rootCmd.AddCommand(bnkCmd)

	subcommands := []*cobra.Command{
		bnkInfoCmd,
		bnkManifestCmd,
		bnkExtractCmd,
		bnkReplaceCmd,
		bnkImportCmd,
		bnkNamesCmd,
		bnkVerifyCmd,
		bnkRestoreCmd,
	}
	for _, sub := range subcommands {
		bnkCmd.AddCommand(sub)
		// Add verbose flag to every subcommand for detailed output
		sub.Flags().BoolP("verbose", "v", false, "Enable verbose output (show debug messages)")
	}

	bnkManifestCmd.Flags().StringP("output", "o", "", "Write the manifest to this file instead of stdout")
	bnkManifestCmd.Flags().String("names", "", "Text index used to assign display names")

	bnkExtractCmd.Flags().String("names", "", "Text index used to name the extracted files")

	bnkReplaceCmd.Flags().StringP("output", "o", "", "Write the rebuilt bank here instead of overwriting the input")

	bnkImportCmd.Flags().StringP("output", "o", "", "Write the rebuilt bank here instead of overwriting the input")
	bnkImportCmd.Flags().String("names", "", "Text index used to match files by display name")
}

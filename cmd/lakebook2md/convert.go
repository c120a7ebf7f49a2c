package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lakebook2md/internal/book"
	"github.com/pdiddy/lakebook2md/internal/store"
	"github.com/pdiddy/lakebook2md/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [path]",
	Short: "Convert lakebook archives to Markdown files",
	Long: `Convert unpacks a .lakeb archive and writes one Markdown file per
document under <output-dir>/<archive basename>/. Given a directory, every
.lakeb file in it (non-recursive) is processed in sequence; a broken archive
fails alone and the batch continues.

With no path argument, convert prompts for one on standard input and keeps
prompting until it gets a usable path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := convertConfig(cmd)

	var path string
	var err error
	if len(args) > 0 {
		path = args[0]
		if err := validateInput(path, cfg.ArchiveExt); err != nil {
			return err
		}
	} else {
		path, err = promptForInput(os.Stdin, os.Stderr, cfg.ArchiveExt)
		if err != nil {
			return err
		}
	}

	sess := &book.Session{
		OutputBase: cfg.OutputDir,
		ScratchDir: cfg.ScratchDir,
		ArchiveExt: cfg.ArchiveExt,
		Out:        os.Stdout,
		Errout:     os.Stderr,
	}

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		ledger, err := store.Open(ledgerPath(cfg))
		if err != nil {
			// The ledger is advisory; conversion proceeds without it.
			fmt.Fprintf(os.Stderr, "warning: conversion ledger unavailable: %v\n", err)
		} else {
			defer ledger.Close()
			sess.Ledger = ledger
		}
	}

	_, err = sess.Convert(path)
	return err
}

// convertConfig resolves conversion settings: flags override the config
// file, defaults fill the rest.
func convertConfig(cmd *cobra.Command) types.ConvertConfig {
	cfg := types.ConvertConfig{
		OutputDir:  viper.GetString("convert.output_dir"),
		ScratchDir: viper.GetString("convert.scratch_dir"),
		ArchiveExt: viper.GetString("convert.archive_ext"),
	}
	if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	if v, _ := cmd.Flags().GetString("scratch-dir"); v != "" {
		cfg.ScratchDir = v
	}
	cfg.ApplyDefaults()
	return cfg
}

// ledgerPath resolves the ledger location from config, defaulting to the
// output directory.
func ledgerPath(cfg types.ConvertConfig) string {
	if p := viper.GetString("store.path"); p != "" {
		return p
	}
	return store.DefaultPath(cfg.OutputDir)
}

func init() {
	convertCmd.Flags().String("output-dir", "", "base directory for converted books (default \"output\")")
	convertCmd.Flags().String("scratch-dir", "", "temporary extraction directory (default \".laketmp\")")
	convertCmd.Flags().Bool("no-history", false, "do not record this run in the conversion ledger")

	rootCmd.AddCommand(convertCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lakebook2md CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the lakebook2md CLI.
var rootCmd = &cobra.Command{
	Use:   "lakebook2md",
	Short: "Convert lakebook archives to Markdown",
	Long: `lakebook2md unpacks .lakeb documentation bundles, reads their embedded
table of contents, and rewrites each document's HTML body as a Markdown file
named after its title.

Point convert at a single .lakeb file or at a directory to process every
archive it contains. Conversion outcomes are recorded in a SQLite ledger
that the history command reads back.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lakebook2md.yaml or ~/.config/lakebook2md/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lakebook2md")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lakebook2md"))
		}
	}

	viper.SetEnvPrefix("LAKEBOOK2MD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of lakebook2md",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lakebook2md %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

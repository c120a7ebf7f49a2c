package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lakebook2md/internal/store"
	"github.com/pdiddy/lakebook2md/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent conversion runs from the ledger",
	Long: `History reads the conversion ledger and lists recent runs, newest
first, with their document totals. Use --archives to include per-archive
outcomes.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := types.ConvertConfig{OutputDir: viper.GetString("convert.output_dir")}
	cfg.ApplyDefaults()

	ledger, err := store.Open(ledgerPath(cfg))
	if err != nil {
		return err
	}
	defer ledger.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := ledger.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No conversion runs recorded.")
		return nil
	}

	showArchives, _ := cmd.Flags().GetBool("archives")
	for _, r := range runs {
		fmt.Printf("run %d  %s  %s  (%d archives, %d converted, %d failed)\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Input,
			r.Archives, r.Converted, r.Failed)

		if !showArchives {
			continue
		}
		archives, err := ledger.RunArchives(r.ID)
		if err != nil {
			return err
		}
		for _, a := range archives {
			if a.Error != "" {
				fmt.Printf("  %-9s %s (%s)\n", a.Status, filepath.Base(a.Path), a.Error)
				continue
			}
			fmt.Printf("  %-9s %s (%d converted, %d skipped, %d failed)\n",
				a.Status, filepath.Base(a.Path), a.Converted, a.Skipped, a.Failed)
		}
	}
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 10, "maximum number of runs to list")
	historyCmd.Flags().Bool("archives", false, "include per-archive outcomes")

	rootCmd.AddCommand(historyCmd)
}

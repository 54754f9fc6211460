package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bnema/wtfcopy/internal/config"
	"github.com/bnema/wtfcopy/internal/logger"
	"github.com/bnema/wtfcopy/internal/ui/progress"
)

var cleanAll bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove snapshots and logs (never touches game files)",
	Long: `Removes data written by wtfcopy itself:
  - Destination snapshots (~/.local/share/wtfcopy)
  - Log file (~/.cache/wtfcopy)

The config file is kept unless --all is given.
Nothing inside the World of Warcraft directory is removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cleanAll {
			progress.PrintTitle("Full Clean")
		} else {
			progress.PrintTitle("Cleaning wtfcopy Data")
		}

		// the log file is held open by this very command
		logger.Close()

		targets := []struct {
			label string
			path  string
		}{
			{"Snapshots removed", config.DataDir()},
			{"Logs removed", filepath.Dir(logger.GetLogPath())},
		}

		for _, target := range targets {
			if err := os.RemoveAll(target.path); err != nil {
				progress.PrintError("Failed to clean: " + err.Error())
				return fmt.Errorf("failed to remove %s: %w", target.path, err)
			}
			progress.PrintComplete(target.label)
			progress.PrintDetail(target.path)
		}

		if cleanAll {
			// only the file: --config may point into a shared directory
			if err := os.Remove(cfg.Path()); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config: %w", err)
			}
			progress.PrintComplete("Config removed")
			progress.PrintDetail(cfg.Path())
		} else {
			progress.PrintDetail("Config preserved at: " + cfg.Path())
		}

		progress.PrintNewline()
		progress.PrintComplete("Clean complete")
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanAll, "all", "a", false, "Also remove the config file")
	rootCmd.AddCommand(cleanCmd)
}

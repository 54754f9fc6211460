package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bnema/wtfcopy/internal/config"
	"github.com/bnema/wtfcopy/internal/logger"
	"github.com/bnema/wtfcopy/internal/ui/progress"
	"github.com/bnema/wtfcopy/internal/wow"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change wtfcopy settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		progress.PrintTitle("wtfcopy settings")

		fmt.Printf("  %-18s %s\n", "config file:", cfg.Path())
		fmt.Printf("  %-18s %s\n", "install dir:", cfg.InstallDir)
		fmt.Printf("  %-18s %s\n", "effective dir:", cfg.ResolveInstallDir(installDir))
		if env := os.Getenv(config.EnvInstallDir); env != "" {
			progress.PrintDetail(config.EnvInstallDir + " is set and overrides the config file")
		}
		fmt.Printf("  %-18s %t\n", "snapshots:", cfg.Snapshots)
		fmt.Printf("  %-18s %d\n", "max snapshots:", cfg.MaxSnapshots)
		fmt.Printf("  %-18s %s\n", "snapshot dir:", config.SnapshotDir())
		fmt.Printf("  %-18s %s\n", "log file:", logger.GetLogPath())
		return nil
	},
}

var configSetInstallDirCmd = &cobra.Command{
	Use:   "set-install-dir <path>",
	Short: "Remember the World of Warcraft installation directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		// saved even when the scan fails, the game may not be installed yet
		if inst, err := wow.NewScanner(getLogger()).Scan(dir); err != nil {
			progress.PrintWarning(err.Error())
		} else {
			progress.PrintComplete(fmt.Sprintf("Found %d version(s)", len(inst.Versions)))
		}

		cfg.InstallDir = dir
		if err := cfg.Save(); err != nil {
			return err
		}
		progress.PrintComplete("Install directory saved to " + cfg.Path())
		return nil
	},
}

var configSetSnapshotsCmd = &cobra.Command{
	Use:   "set-snapshots <on|off> [max]",
	Short: "Snapshot destination characters before every copy",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "on", "true", "1":
			cfg.Snapshots = true
		case "off", "false", "0":
			cfg.Snapshots = false
		default:
			return fmt.Errorf("expected on or off, got %q", args[0])
		}

		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("max snapshots must be a positive number, got %q", args[1])
			}
			cfg.MaxSnapshots = n
		}

		if err := cfg.Save(); err != nil {
			return err
		}
		progress.PrintComplete(fmt.Sprintf("Snapshots %s (keeping %d per character)", args[0], cfg.MaxSnapshots))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetInstallDirCmd)
	configCmd.AddCommand(configSetSnapshotsCmd)
	rootCmd.AddCommand(configCmd)
}

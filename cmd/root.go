package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bnema/wtfcopy/internal/config"
	"github.com/bnema/wtfcopy/internal/logger"
	"github.com/bnema/wtfcopy/internal/transfer"
	"github.com/bnema/wtfcopy/internal/ui/picker"
	"github.com/bnema/wtfcopy/internal/ui/progress"
	"github.com/bnema/wtfcopy/internal/wow"
)

// Version info set via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
)

var (
	verbose    bool
	installDir string
	cfgFile    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "wtfcopy",
	Short:   "Copy WoW settings between characters",
	Version: version + " (" + commit + ")",
	Long: `Copy World of Warcraft UI settings, keybindings, macros and addon
saved variables from one character to another, within a client version or
across versions (retail, classic, PTR...).

When run without subcommands, opens an interactive picker.

Quick start:
  wtfcopy                                   Pick source and destination interactively
  wtfcopy scan                              Show versions and characters found
  wtfcopy copy --from retail:ACC/Realm/Main --to classic:ACC/Realm/Alt`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(verbose); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		getLogger().Debug("Config loaded", "path", cfg.Path(), "install_dir", cfg.InstallDir)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := scanInstallation()
		if err != nil {
			return err
		}

		final, err := picker.Run(inst, picker.Options{
			Copy: func(sel transfer.Selection) picker.Result {
				return performCopy(sel, cfg.Snapshots)
			},
			Scan: scanInstallation,
		})
		if err != nil {
			return fmt.Errorf("error running picker: %w", err)
		}

		// the picker ran on the alternate screen; leave the last
		// transcript in the terminal
		if result, ok := final.LastResult(); ok {
			printResult(result)
			return result.Err
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringVar(&installDir, "install-dir", "", "World of Warcraft installation directory (overrides "+config.EnvInstallDir+" and config)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/wtfcopy/config.json)")
}

// getLogger returns the application logger, falling back to the default
// logger when called before initialization
func getLogger() *log.Logger {
	if logger.Log != nil {
		return logger.Log
	}
	return log.Default()
}

// scanInstallation scans the configured installation directory
func scanInstallation() (*wow.Installation, error) {
	root := cfg.ResolveInstallDir(installDir)

	inst, err := wow.NewScanner(getLogger()).Scan(root)
	if err != nil {
		if errors.Is(err, wow.ErrNotAnInstallation) || errors.Is(err, wow.ErrRootUnreadable) {
			return nil, fmt.Errorf("%w\n  set the game directory with --install-dir or 'wtfcopy config set-install-dir <path>'", err)
		}
		return nil, err
	}
	return inst, nil
}

// printResult prints a copy result the same way for every command
func printResult(result picker.Result) {
	for _, note := range result.Notes {
		progress.PrintDetail(note)
	}
	progress.PrintTranscript(transfer.WithOutcome(result.Transcript, result.Err))

	failures := result.Transcript.Failures()
	switch {
	case result.Err != nil:
		progress.PrintError("Copy aborted, files copied before the failure stay in place")
	case failures > 0:
		progress.PrintSummary("%d of %d item(s) could not be copied or removed", failures, len(result.Transcript))
	default:
		progress.PrintComplete("Copy finished")
	}
}

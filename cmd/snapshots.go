package cmd

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/bnema/wtfcopy/internal/backup"
	"github.com/bnema/wtfcopy/internal/config"
	"github.com/bnema/wtfcopy/internal/ui/progress"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots <VERSION:ACCOUNT/REALM/CHARACTER>",
	Short: "List snapshots taken of a character",
	Long: `List the snapshots taken of a destination character before copies, newest
first. Snapshots are plain directories: restore one by copying its files back
into the game folder while the game is closed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := scanInstallation()
		if err != nil {
			return err
		}

		v, p, err := resolveReference(inst, args[0], false)
		if err != nil {
			return err
		}

		manager := backup.NewManager(osfs.New(config.SnapshotDir()), cfg.MaxSnapshots, getLogger())
		snapshots, err := manager.List(v.Folder, p)
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}

		progress.PrintTitle(fmt.Sprintf("Snapshots of %s (%s)", p, v.DisplayName()))
		if len(snapshots) == 0 {
			progress.PrintWarning("No snapshots yet")
			progress.PrintDetail("enable them with: wtfcopy config set-snapshots on")
			return nil
		}

		for _, name := range snapshots {
			progress.PrintComplete(name)
			progress.PrintDetail(manager.Path(v.Folder, p, name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
}

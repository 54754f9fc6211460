package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/wtfcopy/internal/ui/styles"
	"github.com/bnema/wtfcopy/internal/wow"
)

var (
	scanJSON    bool
	scanSources bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Show the versions and characters of the installation",
	Long: `Scan the installation directory and list every client version with its
characters. Characters without a SavedVariables directory are marked: they can
receive settings but cannot be used as a source.

Examples:
  wtfcopy scan              # Human readable listing
  wtfcopy scan --sources    # Only characters usable as a source
  wtfcopy scan --json       # Machine readable output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := scanInstallation()
		if err != nil {
			return err
		}

		if scanSources {
			inst = sourcesOnly(inst)
		}

		if scanJSON {
			return writeInstallationJSON(os.Stdout, inst)
		}

		printInstallation(os.Stdout, inst)
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output JSON")
	scanCmd.Flags().BoolVar(&scanSources, "sources", false, "Only list characters usable as a copy source")
	rootCmd.AddCommand(scanCmd)
}

// sourcesOnly returns a copy of inst keeping only source profiles
func sourcesOnly(inst *wow.Installation) *wow.Installation {
	out := &wow.Installation{Root: inst.Root}
	for _, v := range inst.Versions {
		out.Versions = append(out.Versions, wow.Version{
			Folder:   v.Folder,
			Profiles: v.SourceProfiles(),
		})
	}
	return out
}

func writeInstallationJSON(w io.Writer, inst *wow.Installation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(inst)
}

func printInstallation(w io.Writer, inst *wow.Installation) {
	_, _ = fmt.Fprintf(w, "%s %s\n\n", styles.Title.Render("Installation"), styles.MutedText.Render(inst.Root))

	total := 0
	for _, v := range inst.Versions {
		_, _ = fmt.Fprintln(w, styles.FormatVersion(v.DisplayName(), v.Folder))

		if len(v.Profiles) == 0 {
			_, _ = fmt.Fprintf(w, "  %s\n\n", styles.MutedText.Render("no characters"))
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, p := range v.Profiles {
			_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
				styles.CharacterName.Render(p.Character),
				styles.RealmName.Render(p.Realm),
				styles.AccountName.Render(p.Account),
				styles.FormatSavedVariablesBadge(p.HasSavedVariables),
			)
		}
		_ = tw.Flush()
		_, _ = fmt.Fprintln(w)
		total += len(v.Profiles)
	}

	_, _ = fmt.Fprintf(w, "%d version(s), %d character(s)\n", len(inst.Versions), total)
}

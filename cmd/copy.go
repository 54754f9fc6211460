package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/bnema/wtfcopy/internal/backup"
	"github.com/bnema/wtfcopy/internal/config"
	"github.com/bnema/wtfcopy/internal/transfer"
	"github.com/bnema/wtfcopy/internal/ui/picker"
	"github.com/bnema/wtfcopy/internal/ui/progress"
	"github.com/bnema/wtfcopy/internal/wow"
)

var (
	ErrInvalidReference = errors.New("invalid profile reference")
	ErrVersionNotFound  = errors.New("version not found")
	ErrProfileNotFound  = errors.New("character not found")
	ErrNotASource       = errors.New("character cannot be copied from")
)

var (
	copyFrom     string
	copyTo       string
	copySnapshot bool
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy settings from one character to another",
	Long: `Copy account settings, character settings and saved variables from one
character to another without the interactive picker.

Characters are given as VERSION:ACCOUNT/REALM/CHARACTER. The version can be the
folder name (_retail_) or its display name (retail, "classic era"). When the
part after the colon is not an exact ACCOUNT/REALM/CHARACTER, it is matched
fuzzily against the characters of that version.

Only characters with a SavedVariables directory can be used as a source.

Examples:
  wtfcopy copy --from _retail_:ACC1/Stormrage/Thrall --to _retail_:ACC2/Stormrage/Jaina
  wtfcopy copy --from retail:thrall --to classic:jaina --snapshot`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if copyFrom == "" || copyTo == "" {
			return fmt.Errorf("%w: both --from and --to are required", ErrInvalidReference)
		}

		inst, err := scanInstallation()
		if err != nil {
			return err
		}

		srcVersion, srcProfile, err := resolveReference(inst, copyFrom, true)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		dstVersion, dstProfile, err := resolveReference(inst, copyTo, false)
		if err != nil {
			return fmt.Errorf("destination: %w", err)
		}

		sel := transfer.NewSelection(inst).
			WithSourceVersion(srcVersion).
			WithSourceProfile(srcProfile).
			WithDestinationVersion(dstVersion).
			WithDestinationProfile(dstProfile)

		snapshot := cfg.Snapshots
		if cmd.Flags().Changed("snapshot") {
			snapshot = copySnapshot
		}

		progress.PrintTitle(fmt.Sprintf("Copying %s (%s) to %s (%s)",
			srcProfile, srcVersion.DisplayName(), dstProfile, dstVersion.DisplayName()))

		result := performCopy(sel, snapshot)
		printResult(result)
		return result.Err
	},
}

func init() {
	copyCmd.Flags().StringVar(&copyFrom, "from", "", "Source character (VERSION:ACCOUNT/REALM/CHARACTER)")
	copyCmd.Flags().StringVar(&copyTo, "to", "", "Destination character (VERSION:ACCOUNT/REALM/CHARACTER)")
	copyCmd.Flags().BoolVar(&copySnapshot, "snapshot", false, "Snapshot the destination before copying (default from config)")
	rootCmd.AddCommand(copyCmd)
}

// performCopy snapshots the destination when asked, then runs the copy.
// A failed snapshot is reported but does not prevent the copy.
func performCopy(sel transfer.Selection, snapshot bool) picker.Result {
	var result picker.Result

	if snapshot {
		path, err := snapshotDestination(sel)
		if err != nil {
			getLogger().Warn("Snapshot failed", "error", err)
			result.Notes = append(result.Notes, "snapshot failed: "+err.Error())
		} else {
			result.Notes = append(result.Notes, "snapshot saved to "+path)
		}
	}

	result.Transcript, result.Err = transfer.NewEngine(getLogger()).Copy(sel)
	return result
}

func snapshotDestination(sel transfer.Selection) (string, error) {
	v, vok := sel.DestinationVersion()
	p, pok := sel.DestinationProfile()
	if !vok || !pok {
		return "", transfer.ErrNotReady
	}

	dir := config.SnapshotDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	manager := backup.NewManager(osfs.New(dir), cfg.MaxSnapshots, getLogger())
	return manager.Snapshot(osfs.New(sel.Installation().Root), v.Folder, p)
}

// parseReference splits VERSION:QUERY
func parseReference(ref string) (version, query string, err error) {
	version, query, ok := strings.Cut(ref, ":")
	version = strings.TrimSpace(version)
	query = strings.TrimSpace(query)
	if !ok || version == "" || query == "" {
		return "", "", fmt.Errorf("%w: %q (expected VERSION:ACCOUNT/REALM/CHARACTER)", ErrInvalidReference, ref)
	}
	return version, query, nil
}

// resolveReference finds the version and character a reference points to.
// Source references only match characters that have saved variables.
func resolveReference(inst *wow.Installation, ref string, source bool) (wow.Version, wow.Profile, error) {
	versionName, query, err := parseReference(ref)
	if err != nil {
		return wow.Version{}, wow.Profile{}, err
	}

	v, ok := inst.FindVersion(versionName)
	if !ok {
		return wow.Version{}, wow.Profile{}, fmt.Errorf("%w: %s", ErrVersionNotFound, versionName)
	}

	candidates := v.Profiles
	if source {
		candidates = v.SourceProfiles()
	}

	// an exact reference to a known character is final, it never goes
	// through fuzzy matching
	if parts := strings.Split(query, "/"); len(parts) == 3 {
		if p, ok := v.FindProfile(parts[0], parts[1], parts[2]); ok {
			if source && !p.HasSavedVariables {
				return wow.Version{}, wow.Profile{}, fmt.Errorf("%w: %s has no SavedVariables, cannot be a source", ErrNotASource, p.Key())
			}
			return v, p, nil
		}
	}

	keys := make([]string, len(candidates))
	for i, p := range candidates {
		keys[i] = p.Key()
	}

	matches := fuzzy.Find(query, keys)
	if len(matches) == 0 {
		return wow.Version{}, wow.Profile{}, fmt.Errorf("%w in %s: %s", ErrProfileNotFound, v.DisplayName(), query)
	}

	best := matches[0]
	if len(matches) > 1 && matches[0].Score == matches[1].Score {
		return wow.Version{}, wow.Profile{}, fmt.Errorf("%w: %q matches both %s and %s", ErrInvalidReference, query, best.Str, matches[1].Str)
	}

	getLogger().Debug("Resolved reference", "ref", ref, "profile", best.Str, "score", best.Score)
	return v, candidates[best.Index], nil
}

package wow

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

var (
	ErrRootUnreadable    = errors.New("installation directory is not readable")
	ErrNotAnInstallation = errors.New("didn't find a wow install here")
)

// scanErrorKind tells the scanner what to do with a failure inside a version folder
type scanErrorKind int

const (
	// scanErrorResidue marks leftovers from old or partial installs; the version is skipped
	scanErrorResidue scanErrorKind = iota
	// scanErrorFatal aborts the whole scan
	scanErrorFatal
)

// classifyScanError is the single place deciding which enumeration
// failures are ignorable
func classifyScanError(err error) scanErrorKind {
	if errors.Is(err, fs.ErrNotExist) {
		return scanErrorResidue
	}
	return scanErrorFatal
}

// Scanner reduces an installation directory to its version/profile hierarchy
type Scanner struct {
	log *log.Logger
}

// NewScanner creates a new installation scanner
func NewScanner(logger *log.Logger) *Scanner {
	return &Scanner{log: logger}
}

// Scan reads an installation root from the local filesystem
func (s *Scanner) Scan(root string) (*Installation, error) {
	return s.ScanFS(osfs.New(root), root)
}

// ScanFS reads an installation from fsys, whose root is the installation
// root. root is only recorded in the result.
func (s *Scanner) ScanFS(fsys billy.Filesystem, root string) (*Installation, error) {
	s.log.Debug("Scanning installation", "root", root)

	entries, err := fsys.ReadDir(rootPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}

	found := false
	var versions []Version
	for _, entry := range entries {
		if !IsVersionFolder(entry) {
			continue
		}
		found = true

		profiles, err := s.scanVersion(fsys, entry.Name())
		if err != nil {
			if classifyScanError(err) == scanErrorResidue {
				s.log.Debug("Skipping incomplete version folder", "version", entry.Name(), "error", err)
				continue
			}
			return nil, fmt.Errorf("failed to scan %s: %w", entry.Name(), err)
		}

		versions = append(versions, Version{
			Folder:   entry.Name(),
			Profiles: profiles,
		})
	}

	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotAnInstallation, root)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s (no version folder has a WTF/Account directory)", ErrNotAnInstallation, root)
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Folder < versions[j].Folder
	})

	s.log.Info("Installation scanned", "root", root, "versions", len(versions))
	return &Installation{
		Root:     root,
		Versions: versions,
	}, nil
}

// scanVersion lists WTF/Account/<account>/<realm>/<character> for one version folder
func (s *Scanner) scanVersion(fsys billy.Filesystem, version string) ([]Profile, error) {
	accountRoot := fsys.Join(rootPath, version, "WTF", "Account")

	accounts, err := fsys.ReadDir(accountRoot)
	if err != nil {
		return nil, err
	}

	var profiles []Profile
	for _, account := range accounts {
		if !account.IsDir() || IsReservedName(account.Name()) {
			continue
		}

		accountDir := fsys.Join(accountRoot, account.Name())
		realms, err := fsys.ReadDir(accountDir)
		if err != nil {
			return nil, err
		}

		for _, realm := range realms {
			if !realm.IsDir() || IsReservedName(realm.Name()) {
				continue
			}

			// Any subdirectory of a realm is a character
			realmDir := fsys.Join(accountDir, realm.Name())
			characters, err := fsys.ReadDir(realmDir)
			if err != nil {
				return nil, err
			}

			for _, character := range characters {
				if !character.IsDir() {
					continue
				}
				svDir := fsys.Join(realmDir, character.Name(), SavedVariablesDir)
				profiles = append(profiles, Profile{
					Account:           account.Name(),
					Realm:             realm.Name(),
					Character:         character.Name(),
					HasSavedVariables: isDir(fsys, svDir),
				})
			}
		}
	}

	SortProfiles(profiles)
	s.log.Debug("Version scanned", "version", version, "profiles", len(profiles))
	return profiles, nil
}

func isDir(fsys billy.Filesystem, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.IsDir()
}

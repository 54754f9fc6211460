package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/bnema/wtfcopy/internal/wow"
)

const (
	// TimestampFormat is the format used for snapshot directory names
	TimestampFormat = "20060102-150405"

	characterDir = "character"
	accountDir   = "account"
)

var ErrNoSnapshots = errors.New("no snapshots found")

// Manager keeps point-in-time copies of a destination profile, taken
// before a copy overwrites it. Snapshots are only ever created, listed and
// pruned; putting one back is left to the user.
type Manager struct {
	store billy.Filesystem
	max   int
	log   *log.Logger
	now   func() time.Time
}

// NewManager creates a snapshot manager storing under store, keeping at most
// max snapshots per character
func NewManager(store billy.Filesystem, max int, logger *log.Logger) *Manager {
	if max < 1 {
		max = 1
	}
	return &Manager{
		store: store,
		max:   max,
		log:   logger,
		now:   time.Now,
	}
}

// profileDir is the store directory holding every snapshot of a profile
func profileDir(version string, p wow.Profile) string {
	return filepath.Join("/", version, p.Account, p.Realm, p.Character)
}

// Snapshot copies the destination character directory, plus the files of
// its account, from install into a new timestamped snapshot. It returns the
// snapshot location as seen on disk.
func (m *Manager) Snapshot(install billy.Filesystem, version string, p wow.Profile) (string, error) {
	base := profileDir(version, p)
	if err := m.store.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	name, err := m.nextName(base)
	if err != nil {
		return "", err
	}
	snapPath := m.store.Join(base, name)

	if err := m.take(install, version, p, snapPath); err != nil {
		_ = util.RemoveAll(m.store, snapPath)
		return "", fmt.Errorf("failed to snapshot %s: %w", p.Key(), err)
	}

	m.log.Info("Snapshot created", "profile", p.Key(), "version", version, "path", m.location(snapPath))

	if err := m.prune(version, p); err != nil {
		m.log.Warn("Failed to prune old snapshots", "profile", p.Key(), "error", err)
	}

	return m.location(snapPath), nil
}

func (m *Manager) take(install billy.Filesystem, version string, p wow.Profile, snapPath string) error {
	if err := copyTree(install, wow.CharacterDir(version, p), m.store, m.store.Join(snapPath, characterDir)); err != nil {
		return err
	}

	// account level: loose files and the account saved variables, not
	// the realm directories of other characters
	accountSrc := wow.AccountDir(version, p.Account)
	accountDst := m.store.Join(snapPath, accountDir)
	if err := m.store.MkdirAll(accountDst, 0755); err != nil {
		return err
	}

	entries, err := install.ReadDir(accountSrc)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		src := install.Join(accountSrc, entry.Name())
		dst := m.store.Join(accountDst, entry.Name())

		switch {
		case entry.Name() == wow.SavedVariablesDir && entry.IsDir():
			if err := copyTree(install, src, m.store, dst); err != nil {
				return err
			}
		case entry.Mode().IsRegular():
			if err := copyFile(install, src, m.store, dst, entry.Mode().Perm()); err != nil {
				return err
			}
		}
	}
	return nil
}

// nextName returns a timestamp name not yet used under base
func (m *Manager) nextName(base string) (string, error) {
	stamp := m.now().Format(TimestampFormat)
	name := stamp
	for i := 1; ; i++ {
		_, err := m.store.Stat(m.store.Join(base, name))
		if errors.Is(err, os.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", err
		}
		name = fmt.Sprintf("%s-%d", stamp, i)
	}
}

// List returns the snapshots of a profile, newest first
func (m *Manager) List(version string, p wow.Profile) ([]string, error) {
	entries, err := m.store.ReadDir(profileDir(version, p))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	var snapshots []string
	for _, entry := range entries {
		if entry.IsDir() {
			snapshots = append(snapshots, entry.Name())
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(snapshots)))
	return snapshots, nil
}

// Latest returns the location of the newest snapshot of a profile
func (m *Manager) Latest(version string, p wow.Profile) (string, error) {
	snapshots, err := m.List(version, p)
	if err != nil {
		return "", err
	}
	if len(snapshots) == 0 {
		return "", fmt.Errorf("%w for %s", ErrNoSnapshots, p.Key())
	}
	return m.Path(version, p, snapshots[0]), nil
}

// Path returns the on-disk location of a named snapshot
func (m *Manager) Path(version string, p wow.Profile, name string) string {
	return m.location(m.store.Join(profileDir(version, p), name))
}

// prune removes the oldest snapshots beyond the configured maximum
func (m *Manager) prune(version string, p wow.Profile) error {
	snapshots, err := m.List(version, p)
	if err != nil {
		return err
	}
	if len(snapshots) <= m.max {
		return nil
	}

	for _, name := range snapshots[m.max:] {
		m.log.Debug("Removing old snapshot", "profile", p.Key(), "snapshot", name)
		if err := util.RemoveAll(m.store, m.store.Join(profileDir(version, p), name)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) location(p string) string {
	return filepath.Join(m.store.Root(), p)
}

// copyTree recursively copies src from one filesystem to dst on another
func copyTree(from billy.Filesystem, src string, to billy.Filesystem, dst string) error {
	return util.Walk(from, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := to.Join(dst, rel)

		if info.IsDir() {
			return to.MkdirAll(target, 0755)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(from, path, to, target, info.Mode().Perm())
	})
}

func copyFile(from billy.Filesystem, src string, to billy.Filesystem, dst string, perm os.FileMode) error {
	srcFile, err := from.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := to.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	return dstFile.Close()
}

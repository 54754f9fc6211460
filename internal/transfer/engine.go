package transfer

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/bnema/wtfcopy/internal/wow"
)

var ErrNotReady = errors.New("operation not ready for copying")

// AccountFiles are the client-wide settings copied between accounts
var AccountFiles = []string{
	"bindings-cache.wtf",
	"config-cache.wtf",
	"macros-cache.txt",
	"edit-mode-cache-account.txt",
}

// CharacterFiles are the per-character settings copied between characters
var CharacterFiles = []string{
	"AddOns.txt",
	"config-cache.wtf",
	"layout-local.txt",
	"macros-cache.txt",
	"edit-mode-cache-character.txt",
}

// Phase identifies which half of a copy run an abort happened in
type Phase string

const (
	PhaseAccount   Phase = "account"
	PhaseCharacter Phase = "character"
)

// AbortError reports a directory-level failure that stopped a copy run
// before it finished. Files copied before the failure stay copied.
type AbortError struct {
	Phase      Phase
	Op         string
	Path       string
	Err        error
	Transcript Transcript
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s phase: failed to %s %s: %v", e.Phase, e.Op, e.Path, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// Engine copies settings from one character profile to another.
//
// An Engine holds no per-run state, but it does not coordinate with other
// callers: running two copies that touch the same destination at the same
// time is undefined.
type Engine struct {
	fsys billy.Filesystem
	log  *log.Logger
}

// NewEngine creates an engine working on the local filesystem, rooted at
// the installation root of each selection it copies
func NewEngine(logger *log.Logger) *Engine {
	return &Engine{log: logger}
}

// NewEngineFS creates an engine working on fsys, which must be rooted at
// the installation root
func NewEngineFS(fsys billy.Filesystem, logger *log.Logger) *Engine {
	return &Engine{fsys: fsys, log: logger}
}

// run carries the state of a single Copy call
type run struct {
	fsys       billy.Filesystem
	root       string
	log        *log.Logger
	transcript Transcript
}

// Copy transfers account and character settings for a ready selection.
// The returned transcript is always valid, including when err is an
// *AbortError; it is the record of what actually happened on disk.
func (e *Engine) Copy(sel Selection) (Transcript, error) {
	if !sel.IsReady() {
		return nil, ErrNotReady
	}

	inst := sel.Installation()
	srcVersion, _ := sel.SourceVersion()
	srcProfile, _ := sel.SourceProfile()
	dstVersion, _ := sel.DestinationVersion()
	dstProfile, _ := sel.DestinationProfile()

	fsys := e.fsys
	if fsys == nil {
		fsys = osfs.New(inst.Root)
	}

	r := &run{
		fsys:       fsys,
		root:       inst.Root,
		log:        e.log,
		transcript: Transcript{},
	}

	e.log.Info("Copying profile",
		"from_version", srcVersion.Folder,
		"from", srcProfile.Key(),
		"to_version", dstVersion.Folder,
		"to", dstProfile.Key(),
	)

	srcAccount := wow.AccountDir(srcVersion.Folder, srcProfile.Account)
	dstAccount := wow.AccountDir(dstVersion.Folder, dstProfile.Account)

	if srcProfile.Account == dstProfile.Account {
		r.transcript.add(SkipAccountLine)
	} else if err := r.accountPhase(srcAccount, dstAccount); err != nil {
		return r.abort(err)
	}

	srcCharacter := wow.CharacterDir(srcVersion.Folder, srcProfile)
	dstCharacter := wow.CharacterDir(dstVersion.Folder, dstProfile)
	if err := r.characterPhase(srcCharacter, dstCharacter); err != nil {
		return r.abort(err)
	}

	e.log.Info("Copy complete", "lines", len(r.transcript), "failures", r.transcript.Failures())
	return r.transcript, nil
}

func (r *run) abort(err error) (Transcript, error) {
	var abortErr *AbortError
	if errors.As(err, &abortErr) {
		abortErr.Transcript = r.transcript.Lines()
	}
	r.log.Error("Copy aborted", "error", err)
	return r.transcript, err
}

// accountPhase copies client-wide settings and account saved variables
func (r *run) accountPhase(src, dst string) error {
	r.copyAllowList(src, dst, AccountFiles)

	if err := r.copySavedVariables(PhaseAccount, src, dst); err != nil {
		return err
	}

	r.removeCache(dst)
	return nil
}

// characterPhase copies per-character settings and saved variables,
// creating the destination SavedVariables directory when needed
func (r *run) characterPhase(src, dst string) error {
	r.copyAllowList(src, dst, CharacterFiles)

	dstSV := r.fsys.Join(dst, wow.SavedVariablesDir)
	if _, err := r.fsys.Stat(dstSV); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return &AbortError{Phase: PhaseCharacter, Op: "stat", Path: r.osPath(dstSV), Err: err}
		}
		r.transcript.add("destination saved-variables directory missing, creating: " + r.osPath(dstSV))
		if err := r.fsys.MkdirAll(dstSV, 0755); err != nil {
			return &AbortError{Phase: PhaseCharacter, Op: "create", Path: r.osPath(dstSV), Err: err}
		}
	}

	if err := r.copySavedVariables(PhaseCharacter, src, dst); err != nil {
		return err
	}

	r.removeCache(dst)
	return nil
}

func (r *run) copyAllowList(src, dst string, names []string) {
	for _, name := range names {
		r.copyItem(r.fsys.Join(src, name), r.fsys.Join(dst, name), name)
	}
}

// copySavedVariables copies every .lua file from src/SavedVariables to
// dst/SavedVariables. Failing to list the source is fatal.
func (r *run) copySavedVariables(phase Phase, src, dst string) error {
	srcSV := r.fsys.Join(src, wow.SavedVariablesDir)
	dstSV := r.fsys.Join(dst, wow.SavedVariablesDir)

	entries, err := r.fsys.ReadDir(srcSV)
	if err != nil {
		return &AbortError{Phase: phase, Op: "list", Path: r.osPath(srcSV), Err: err}
	}

	for _, entry := range entries {
		if !wow.IsSavedVariableFile(entry.Name()) {
			continue
		}
		r.copyItem(r.fsys.Join(srcSV, entry.Name()), r.fsys.Join(dstSV, entry.Name()), entry.Name())
	}
	return nil
}

func (r *run) copyItem(src, dst, name string) {
	err := r.transcript.attempt(actionCopy, name, func() error {
		return copyFile(r.fsys, src, dst)
	})
	if err != nil {
		r.log.Debug("Copy failed", "file", src, "error", err)
		return
	}
	r.log.Debug("Copied", "src", src, "dst", dst)
}

// removeCache deletes dir/cache.md5 so the client rebuilds it
func (r *run) removeCache(dir string) {
	cache := r.fsys.Join(dir, wow.CacheFile)
	err := r.transcript.attempt(actionRemove, wow.CacheFile, func() error {
		return r.fsys.Remove(cache)
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.log.Warn("Failed to remove cache file", "path", r.osPath(cache), "error", err)
	}
}

func (r *run) osPath(p string) string {
	return filepath.Join(r.root, p)
}

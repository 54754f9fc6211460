package transfer

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wtfcopy/internal/wow"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0755))
	}
}

func readFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func exists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(name)))
	return err == nil
}

// selectProfiles scans root and selects src and dst, given as "account/realm/character"
func selectProfiles(t *testing.T, root, version, src, dst string) Selection {
	t.Helper()
	inst, err := wow.NewScanner(discardLogger()).Scan(root)
	require.NoError(t, err)
	return selectIn(t, inst, version, src, dst)
}

func selectIn(t *testing.T, inst *wow.Installation, version, src, dst string) Selection {
	t.Helper()
	v, ok := inst.FindVersion(version)
	require.True(t, ok, "version %s", version)

	find := func(key string) wow.Profile {
		parts := strings.Split(key, "/")
		require.Len(t, parts, 3)
		p, ok := v.FindProfile(parts[0], parts[1], parts[2])
		require.True(t, ok, "profile %s", key)
		return p
	}

	return NewSelection(inst).
		WithSourceVersion(v).
		WithSourceProfile(find(src)).
		WithDestinationVersion(v).
		WithDestinationProfile(find(dst))
}

func TestCopy_NotReady(t *testing.T) {
	inst := &wow.Installation{Root: "/nowhere", Versions: []wow.Version{{Folder: "_retail_"}}}
	sel := NewSelection(inst).WithSourceVersion(inst.Versions[0])

	// any filesystem call on the embedded nil interface would panic
	engine := NewEngineFS(struct{ billy.Filesystem }{}, discardLogger())

	transcript, err := engine.Copy(sel)
	require.ErrorIs(t, err, ErrNotReady)
	assert.Nil(t, transcript)
}

func TestCopy_ExampleScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "_retail_/WTF/Account/ACC1/bindings-cache.wtf", "bindings")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/SavedVariables/Accountwide.lua", "account vars")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua", "foo")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua.bak", "old foo")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/AddOns.txt", "addons")
	mkdirs(t, root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/SavedVariables", "_retail_/WTF/Account/ACC2/SavedVariables")
	writeFile(t, root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/cache.md5", "stale")

	sel := selectProfiles(t, root, "_retail_", "ACC1/REALM1/CHAR1", "ACC2/REALM2/CHAR2")

	transcript, err := NewEngine(discardLogger()).Copy(sel)
	require.NoError(t, err)

	lines := transcript.Lines()
	require.Len(t, lines, 13)

	assert.Equal(t, "copied bindings-cache.wtf", lines[0])
	for i, name := range AccountFiles[1:] {
		assert.True(t, strings.HasPrefix(lines[i+1], "error copying "+name+": "), lines[i+1])
	}
	assert.Equal(t, "copied Accountwide.lua", lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "error removing cache.md5: "), lines[5])

	assert.Equal(t, "copied AddOns.txt", lines[6])
	for i, name := range CharacterFiles[1:] {
		assert.True(t, strings.HasPrefix(lines[i+7], "error copying "+name+": "), lines[i+7])
	}
	assert.Equal(t, "copied Foo.lua", lines[11])
	assert.Equal(t, "removed cache.md5", lines[12])

	assert.Equal(t, 8, transcript.Failures())
	assert.Equal(t, "bindings", readFile(t, root, "_retail_/WTF/Account/ACC2/bindings-cache.wtf"))
	assert.Equal(t, "account vars", readFile(t, root, "_retail_/WTF/Account/ACC2/SavedVariables/Accountwide.lua"))
	assert.Equal(t, "addons", readFile(t, root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/AddOns.txt"))
	assert.Equal(t, "foo", readFile(t, root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/SavedVariables/Foo.lua"))
	assert.False(t, exists(root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/SavedVariables/Foo.lua.bak"))
	assert.False(t, exists(root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/cache.md5"))
}

func TestCopy_SameAccountSkipsAccountPhase(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "_retail_/WTF/Account/ACC1/bindings-cache.wtf", "bindings")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/cache.md5", "account cache")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua", "foo")
	mkdirs(t, root, "_retail_/WTF/Account/ACC1/REALM2/CHAR2/SavedVariables")

	sel := selectProfiles(t, root, "_retail_", "ACC1/REALM1/CHAR1", "ACC1/REALM2/CHAR2")

	transcript, err := NewEngine(discardLogger()).Copy(sel)
	require.NoError(t, err)

	require.NotEmpty(t, transcript)
	assert.Equal(t, SkipAccountLine, transcript[0])
	for _, line := range transcript {
		for _, name := range []string{"bindings-cache.wtf", "edit-mode-cache-account.txt"} {
			assert.NotContains(t, line, name)
		}
	}

	assert.Equal(t, "bindings", readFile(t, root, "_retail_/WTF/Account/ACC1/bindings-cache.wtf"))
	assert.Equal(t, "account cache", readFile(t, root, "_retail_/WTF/Account/ACC1/cache.md5"))
	assert.Equal(t, "foo", readFile(t, root, "_retail_/WTF/Account/ACC1/REALM2/CHAR2/SavedVariables/Foo.lua"))
}

func TestCopy_CreatesDestinationSavedVariables(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua", "foo")
	mkdirs(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR2")

	sel := selectProfiles(t, root, "_retail_", "ACC1/REALM1/CHAR1", "ACC1/REALM1/CHAR2")

	transcript, err := NewEngine(discardLogger()).Copy(sel)
	require.NoError(t, err)

	want := "destination saved-variables directory missing, creating: " +
		filepath.Join(root, "_retail_", "WTF", "Account", "ACC1", "REALM1", "CHAR2", "SavedVariables")
	assert.Contains(t, transcript.Lines(), want)
	assert.Contains(t, transcript.Lines(), "copied Foo.lua")
	assert.Equal(t, "foo", readFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR2/SavedVariables/Foo.lua"))
}

func TestCopy_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "_retail_/WTF/Account/ACC1/config-cache.wtf", "cfg")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/SavedVariables/A.lua", "a")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua", "foo")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/layout-local.txt", "layout")
	writeFile(t, root, "_retail_/WTF/Account/ACC2/SavedVariables/B.lua", "b")
	writeFile(t, root, "_retail_/WTF/Account/ACC2/cache.md5", "x")
	writeFile(t, root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/SavedVariables/Bar.lua", "bar")
	writeFile(t, root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/cache.md5", "x")

	sel := selectProfiles(t, root, "_retail_", "ACC1/REALM1/CHAR1", "ACC2/REALM2/CHAR2")
	engine := NewEngine(discardLogger())

	first, err := engine.Copy(sel)
	require.NoError(t, err)
	second, err := engine.Copy(sel)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		if strings.Contains(first[i], wow.CacheFile) {
			assert.True(t, strings.HasPrefix(second[i], "error removing cache.md5: "), second[i])
			continue
		}
		assert.Equal(t, first[i], second[i])
	}
	assert.Equal(t, "bar", readFile(t, root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/SavedVariables/Bar.lua"))
	assert.Equal(t, "foo", readFile(t, root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/SavedVariables/Foo.lua"))
}

func TestCopy_AccountSavedVariablesMissingAborts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "_retail_/WTF/Account/ACC1/macros-cache.txt", "macros")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua", "foo")
	mkdirs(t, root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/SavedVariables")

	sel := selectProfiles(t, root, "_retail_", "ACC1/REALM1/CHAR1", "ACC2/REALM2/CHAR2")

	transcript, err := NewEngine(discardLogger()).Copy(sel)
	require.Error(t, err)

	var abortErr *AbortError
	require.True(t, errors.As(err, &abortErr))
	assert.Equal(t, PhaseAccount, abortErr.Phase)
	assert.Equal(t, "list", abortErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, transcript.Lines(), abortErr.Transcript.Lines())

	// the allow-list copies before the abort stay on disk
	require.Len(t, transcript, len(AccountFiles))
	assert.Equal(t, "copied macros-cache.txt", transcript[2])
	assert.Equal(t, "macros", readFile(t, root, "_retail_/WTF/Account/ACC2/macros-cache.txt"))
	assert.False(t, exists(root, "_retail_/WTF/Account/ACC2/REALM2/CHAR2/SavedVariables/Foo.lua"))

	shown := WithOutcome(transcript, err)
	assert.Equal(t, "aborted: "+err.Error(), shown[len(shown)-1])
}

func TestCopy_CharacterSavedVariablesMissingAborts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/AddOns.txt", "addons")
	mkdirs(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR2/SavedVariables")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR2/cache.md5", "x")

	sel := selectProfiles(t, root, "_retail_", "ACC1/REALM1/CHAR1", "ACC1/REALM1/CHAR2")

	transcript, err := NewEngine(discardLogger()).Copy(sel)

	var abortErr *AbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, PhaseCharacter, abortErr.Phase)
	assert.Equal(t, filepath.Join(root, "_retail_", "WTF", "Account", "ACC1", "REALM1", "CHAR1", "SavedVariables"), abortErr.Path)

	require.Len(t, transcript, 1+len(CharacterFiles))
	assert.Equal(t, SkipAccountLine, transcript[0])
	assert.Equal(t, "copied AddOns.txt", transcript[1])
	assert.True(t, exists(root, "_retail_/WTF/Account/ACC1/REALM1/CHAR2/cache.md5"))
}

func TestCopy_SameProfileKeepsFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/AddOns.txt", "addons")
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua", "foo")

	sel := selectProfiles(t, root, "_retail_", "ACC1/REALM1/CHAR1", "ACC1/REALM1/CHAR1")

	transcript, err := NewEngine(discardLogger()).Copy(sel)
	require.NoError(t, err)

	assert.Contains(t, transcript.Lines(), "error copying Foo.lua: "+errSameFile.Error())
	assert.Equal(t, "addons", readFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/AddOns.txt"))
	assert.Equal(t, "foo", readFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua"))
}

func TestCopy_SavedVariableDirectoryIsPerItemFailure(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua", "foo")
	mkdirs(t, root,
		"_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Odd.lua",
		"_retail_/WTF/Account/ACC1/REALM1/CHAR2/SavedVariables",
	)

	sel := selectProfiles(t, root, "_retail_", "ACC1/REALM1/CHAR1", "ACC1/REALM1/CHAR2")

	transcript, err := NewEngine(discardLogger()).Copy(sel)
	require.NoError(t, err)

	var oddLine string
	for _, line := range transcript {
		if strings.Contains(line, "Odd.lua") {
			oddLine = line
		}
	}
	assert.True(t, strings.HasPrefix(oddLine, "error copying Odd.lua: "), oddLine)
	assert.Contains(t, transcript.Lines(), "copied Foo.lua")
}

func TestCopy_AcrossVersionsInMemory(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "/_classic_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua", []byte("foo"), 0644))
	require.NoError(t, util.WriteFile(fsys, "/_classic_/WTF/Account/ACC1/SavedVariables/Acc.lua", []byte("acc"), 0644))
	require.NoError(t, fsys.MkdirAll("/_retail_/WTF/Account/ACC1/REALM1/CHAR1", 0755))

	inst, err := wow.NewScanner(discardLogger()).ScanFS(fsys, "/wow")
	require.NoError(t, err)

	classic, ok := inst.FindVersion("Classic")
	require.True(t, ok)
	retail, ok := inst.FindVersion("Retail")
	require.True(t, ok)
	src, ok := classic.FindProfile("ACC1", "REALM1", "CHAR1")
	require.True(t, ok)
	dst, ok := retail.FindProfile("ACC1", "REALM1", "CHAR1")
	require.True(t, ok)

	sel := NewSelection(inst).
		WithSourceVersion(classic).
		WithSourceProfile(src).
		WithDestinationVersion(retail).
		WithDestinationProfile(dst)

	transcript, err := NewEngineFS(fsys, discardLogger()).Copy(sel)
	require.NoError(t, err)

	// account names match, so account scope is skipped even across versions
	assert.Equal(t, SkipAccountLine, transcript[0])
	assert.Contains(t, transcript.Lines(), "copied Foo.lua")

	data, err := util.ReadFile(fsys, "/_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua")
	require.NoError(t, err)
	assert.Equal(t, "foo", string(data))

	_, err = fsys.Stat("/_retail_/WTF/Account/ACC1/SavedVariables/Acc.lua")
	assert.Error(t, err)
}

func TestCopy_CreatesMissingDestinationAncestors(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "/_retail_/WTF/Account/ACC1/REALM1/CHAR1/SavedVariables/Foo.lua", []byte("foo"), 0644))
	require.NoError(t, util.WriteFile(fsys, "/_retail_/WTF/Account/ACC1/REALM1/CHAR1/AddOns.txt", []byte("addons"), 0644))

	inst, err := wow.NewScanner(discardLogger()).ScanFS(fsys, "/wow")
	require.NoError(t, err)
	retail, ok := inst.FindVersion("_retail_")
	require.True(t, ok)
	src, ok := retail.FindProfile("ACC1", "REALM1", "CHAR1")
	require.True(t, ok)

	// neither the realm nor the character directory exists yet
	dst := wow.Profile{Account: "ACC1", Realm: "REALM2", Character: "NEWCHAR"}
	_, err = fsys.Stat("/_retail_/WTF/Account/ACC1/REALM2")
	require.ErrorIs(t, err, os.ErrNotExist)

	sel := NewSelection(inst).
		WithSourceVersion(retail).
		WithSourceProfile(src).
		WithDestinationVersion(retail).
		WithDestinationProfile(dst)

	transcript, err := NewEngineFS(fsys, discardLogger()).Copy(sel)
	require.NoError(t, err)

	lines := transcript.Lines()
	assert.Equal(t, SkipAccountLine, lines[0])
	assert.Contains(t, lines, "destination saved-variables directory missing, creating: "+
		filepath.Join("/wow", "_retail_", "WTF", "Account", "ACC1", "REALM2", "NEWCHAR", "SavedVariables"))
	assert.Contains(t, lines, "copied Foo.lua")

	// allow-list files never create their directory
	var addOnsLine string
	for _, line := range lines {
		if strings.Contains(line, "AddOns.txt") {
			addOnsLine = line
		}
	}
	assert.True(t, strings.HasPrefix(addOnsLine, "error copying AddOns.txt: "), addOnsLine)

	for _, dir := range []string{
		"/_retail_/WTF/Account/ACC1/REALM2",
		"/_retail_/WTF/Account/ACC1/REALM2/NEWCHAR",
		"/_retail_/WTF/Account/ACC1/REALM2/NEWCHAR/SavedVariables",
	} {
		info, err := fsys.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}

	data, err := util.ReadFile(fsys, "/_retail_/WTF/Account/ACC1/REALM2/NEWCHAR/SavedVariables/Foo.lua")
	require.NoError(t, err)
	assert.Equal(t, "foo", string(data))
}

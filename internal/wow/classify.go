package wow

import (
	"io/fs"
	"path/filepath"
	"strings"
)

const (
	// SavedVariablesDir is the sibling directory holding addon state files.
	// It appears next to realms inside an account and next to files inside a
	// character, and is never an account or realm itself.
	SavedVariablesDir = "SavedVariables"

	// SavedVariableExt is the extension of addon state source files
	SavedVariableExt = ".lua"

	// CacheFile is the integrity cache the client regenerates on startup
	CacheFile = "cache.md5"
)

// IsVersionFolder reports whether entry is a client version directory
// such as _retail_ or _classic_era_.
func IsVersionFolder(entry fs.FileInfo) bool {
	return entry.IsDir() && IsVersionFolderName(entry.Name())
}

// IsVersionFolderName reports whether name both starts and ends with an underscore
func IsVersionFolderName(name string) bool {
	return strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_")
}

// IsReservedName reports whether name is the saved-variables sibling directory
func IsReservedName(name string) bool {
	return name == SavedVariablesDir
}

// IsSavedVariableFile reports whether path has the saved-variable extension.
// The match is case-sensitive and ignores the rest of the file name, but a
// bare dotfile such as ".lua" has no extension.
func IsSavedVariableFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && strings.Count(base, ".") == 1 {
		return false
	}
	return filepath.Ext(base) == SavedVariableExt
}

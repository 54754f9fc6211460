package transfer

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
)

var (
	errIsDirectory = errors.New("is a directory")
	errSameFile    = errors.New("source and destination are the same file")
)

// copyFile copies a single file, overwriting dst. Unlike billy's
// OpenFile, it refuses to create a missing destination directory.
func copyFile(fsys billy.Filesystem, src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return errSameFile
	}

	srcInfo, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if srcInfo.IsDir() {
		return &os.PathError{Op: "copy", Path: src, Err: errIsDirectory}
	}

	dstDir := filepath.Dir(dst)
	dirInfo, err := fsys.Stat(dstDir)
	if err != nil {
		return err
	}
	if !dirInfo.IsDir() {
		return &os.PathError{Op: "copy", Path: dstDir, Err: errors.New("not a directory")}
	}

	srcFile, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	return dstFile.Close()
}

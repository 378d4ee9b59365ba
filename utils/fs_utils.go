package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileExists returns a boolean indicating whether a file at the given path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// DirectoryExists returns a boolean indicating whether a directory at the given path exists.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// CopyFile copies a file from the source path to the target path, preserving its permissions. The target's parent
// directories are created as needed.
func CopyFile(sourcePath string, targetPath string) error {
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return errors.WithStack(err)
	}

	if err = os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return errors.WithStack(err)
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer source.Close()

	target, err := os.Create(targetPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer target.Close()

	if _, err = io.Copy(target, source); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.Chmod(targetPath, sourceInfo.Mode()))
}

// GetFileNameWithoutExtension obtains a filename without the extension from a given file path.
func GetFileNameWithoutExtension(filePath string) string {
	return strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
}

// FindFilesWithExtension recursively collects files under the given directory carrying the provided extension
// (including the leading dot). Results are returned in lexical walk order.
func FindFilesWithExtension(directory string, extension string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(directory, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && filepath.Ext(path) == extension {
			matches = append(matches, path)
		}
		return nil
	})
	return matches, errors.WithStack(err)
}

// Package file provides small filesystem helper predicates used throughout
// the pipeline (is this a regular file, a block device, a directory...).
package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/v2vconvert/v2v-convert/internal/logger"
)

// IsFile reports whether path exists and is a regular file.
func IsFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat (%s):\n%w", path, err)
	}

	return info.Mode().IsRegular(), nil
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat (%s):\n%w", path, err)
	}

	return info.IsDir(), nil
}

// PathExists reports whether path exists at all, regardless of type.
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat (%s):\n%w", path, err)
}

// IsBlockDevice reports whether path is (or, if it is a symlink, resolves
// to) a block device.
func IsBlockDevice(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat (%s):\n%w", path, err)
	}

	return info.Mode()&os.ModeDevice != 0 && info.Mode()&os.ModeCharDevice == 0, nil
}

// Size returns the apparent size, in bytes, of the file at path.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat (%s):\n%w", path, err)
	}

	return info.Size(), nil
}

// RemoveIfExists deletes path, logging and swallowing any error other than
// "does not exist"; used by best-effort cleanup paths.
func RemoveIfExists(path string) {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		logger.Log.Debugf("failed to remove (%s) during cleanup:\n%v", path, err)
	}
}

// CopyFile copies srcPath to destPath, creating destPath's parent directory
// if needed.
func CopyFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open (%s):\n%w", srcPath, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for (%s):\n%w", destPath, err)
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create (%s):\n%w", destPath, err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("failed to copy (%s) to (%s):\n%w", srcPath, destPath, err)
	}

	return nil
}

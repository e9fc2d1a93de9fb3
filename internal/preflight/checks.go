package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Path: path, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Path: path, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Path: path, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Path: path, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Path: path, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSourceRoot verifies the download directory. Files are moved out of it
// and empty directories removed, so it must be writable as well as readable.
func CheckSourceRoot(path string) Result {
	if path == "" {
		return Result{Name: "Source directory", Detail: "no source directory given"}
	}
	return CheckDirectoryAccess("Source directory", path)
}

// CheckLibraryRoot verifies a destination root. A root that does not exist
// yet passes when its nearest existing ancestor is writable, since the first
// move creates it.
func CheckLibraryRoot(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured (pass it on the command line or set it in [library])"}
	}
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	} else if !os.IsNotExist(err) {
		return Result{Name: name, Path: path, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	parent := CheckDirectoryAccess(name, ancestor)
	if !parent.Passed {
		return Result{Name: name, Path: path, Detail: fmt.Sprintf("%s (error: cannot be created: %s)", path, parent.Detail)}
	}
	return Result{Name: name, Path: path, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

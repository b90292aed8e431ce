package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// Dir returns the runtime directory holding the bridge socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) %LOCALAPPDATA%\deskbridge on Windows (created)
// 3) /run/user/<uid> (if present)
// 4) /tmp/deskbridge-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	if runtime.GOOS == "windows" {
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = os.TempDir()
		}
		dir := filepath.Join(base, "deskbridge")
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", errors.Wrap(err, "failed to create runtime dir")
		}
		return dir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/deskbridge-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", errors.Wrap(err, "failed to create runtime dir")
	}
	return tmpDir, nil
}

// SocketPath returns the bridge socket path.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "deskbridge.sock"), nil
}

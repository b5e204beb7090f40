// Package paths resolves the configuration directory and the include
// search path.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// ProjectConfigDirName is the working-directory configuration directory.
// When it exists it takes precedence over the platform default, so a
// source tree can carry its own include path.
const ProjectConfigDirName = ".keeper"

// Environment variable names for overrides.
const (
	EnvConfigDir   = "KEEPER_CONFIG_DIR"
	EnvIncludePath = "KEEPER_INCLUDE_PATH"
)

const appName = "recordkeeper"

// platformDir holds platform lookups; tests replace them.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	workDir       func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	workDir:       os.Getwd,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/recordkeeper (fallback ~/.config/recordkeeper)
// macOS:   ~/Library/Application Support/recordkeeper
// Windows: %APPDATA%/recordkeeper
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
}

// ResolveConfigDir returns the configuration directory: the flag, then
// KEEPER_CONFIG_DIR, then ./.keeper if it is a directory, then
// DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	wd, err := platformDir.workDir()
	if err != nil {
		return "", err
	}
	project := filepath.Join(wd, ProjectConfigDirName)
	if info, err := os.Stat(project); err == nil && info.IsDir() {
		return project, nil
	}
	return DefaultConfigDir()
}

// ResolveIncludeDirs returns the include search path: directories given by
// flag first, then those from config.yaml, then the entries of
// KEEPER_INCLUDE_PATH. Every entry is made absolute and duplicates after
// the first occurrence are dropped.
func ResolveIncludeDirs(flagDirs, configDirs []string) ([]string, error) {
	var all []string
	all = append(all, flagDirs...)
	all = append(all, configDirs...)
	if env := os.Getenv(EnvIncludePath); env != "" {
		all = append(all, filepath.SplitList(env)...)
	}

	seen := make(map[string]bool, len(all))
	dirs := make([]string, 0, len(all))
	for _, d := range all {
		if d == "" {
			continue
		}
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, err
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		dirs = append(dirs, abs)
	}
	return dirs, nil
}

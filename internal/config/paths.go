// ABOUTME: Standard filesystem paths for flowplugin configuration
// ABOUTME: Resolves ~/.flowplugin/ for global and <dir>/.flowplugin/ for plugin-local files

package config

import (
	"os"
	"path/filepath"
)

const dirName = ".flowplugin"

// configNames are tried in order inside a config directory.
var configNames = []string{"config.yaml", "config.yml", "config.toml"}

// GlobalDir returns the user-global config directory (~/.flowplugin/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", dirName)
	}
	return filepath.Join(home, dirName)
}

// LocalDir returns the plugin-local config directory (.flowplugin/ in pluginDir).
func LocalDir(pluginDir string) string {
	return filepath.Join(pluginDir, dirName)
}

// GlobalConfigFile returns the global config file, or "" when none exists.
func GlobalConfigFile() string {
	return findConfig(GlobalDir())
}

// LocalConfigFile returns the plugin-local config file, or "" when none exists.
func LocalConfigFile(pluginDir string) string {
	return findConfig(LocalDir(pluginDir))
}

func findConfig(dir string) string {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

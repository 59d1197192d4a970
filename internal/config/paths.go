package config

import (
	"os"
	"path/filepath"
)

// DevhelperPath returns the root directory for devhelper data.
// It uses $DEVHELPER_PATH if set, otherwise defaults to ~/.devhelper.
func DevhelperPath() string {
	if v := os.Getenv("DEVHELPER_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".devhelper")
	}
	return filepath.Join(home, ".devhelper")
}

// ConfigPath returns the path to the devhelper config file.
func ConfigPath() string {
	return filepath.Join(DevhelperPath(), "config.jsonc")
}

// DotenvPath returns the path to the devhelper .env file.
func DotenvPath() string {
	return filepath.Join(DevhelperPath(), ".env")
}

// LogPath returns the default TUI log file.
func LogPath() string {
	return filepath.Join(DevhelperPath(), "tui.log")
}

// FixturesPath returns the default fixtures file of the development service.
func FixturesPath() string {
	return filepath.Join(DevhelperPath(), "fixtures.yaml")
}

// HeartbeatPath returns the liveness file written by the development service.
func HeartbeatPath() string {
	return filepath.Join(DevhelperPath(), "serve.heartbeat.json")
}

// Package config carries environment-driven defaults for the CLI.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds the exporter defaults.
type Config struct {
	// BackupRoot is the directory holding per-device backup folders.
	// The export source is one device folder inside it.
	BackupRoot string

	// ContactsPath optionally points at a YAML sender-alias file.
	ContactsPath string
}

// DefaultBackupRoot returns the MobileSync backup directory for the
// current OS, or empty when there is no conventional location.
func DefaultBackupRoot() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MobileSync", "Backup")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return ""
		}
		return filepath.Join(appData, "Apple Computer", "MobileSync", "Backup")
	default:
		return ""
	}
}

// Load returns a Config instance with env overrides and defaults.
func Load() *Config {
	return &Config{
		BackupRoot:   getEnv("IMSGEXPORT_BACKUP_ROOT", DefaultBackupRoot()),
		ContactsPath: getEnv("IMSGEXPORT_CONTACTS", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

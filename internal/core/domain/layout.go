package domain

import (
	"path/filepath"
	"time"
)

const (
	// DataDirName is the name of the local data directory.
	DataDirName = ".daybook"

	// DatabaseFileName is the name of the local sqlite database.
	DatabaseFileName = "daybook.db"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "daybook.yaml"

	// DefaultAppURL is the base URL of a locally served application.
	DefaultAppURL = "http://localhost:5173"

	// UpdatePasswordPath is the page a password reset link points to.
	UpdatePasswordPath = "/update-password"

	// DefaultRemoteTimeout bounds every remote store call.
	DefaultRemoteTimeout = 10 * time.Second

	// DefaultToastTTL is how long a notification stays visible.
	DefaultToastTTL = 3 * time.Second

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750
)

// DefaultDatabasePath returns the default path of the local sqlite database.
// It joins .daybook and daybook.db.
func DefaultDatabasePath() string {
	return filepath.Join(DataDirName, DatabaseFileName)
}

// Package backend opens the configured data store.
package backend

import "finassist/internal/storage"

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Backend is an opened store. Cleanup releases it and is never nil.
type Backend struct {
	Type    Type
	Store   storage.Connector
	Seeder  storage.Seeder
	Cleanup CleanupFunc
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Memory specific; a missing seed file yields an empty store.
	MemorySeedPath string
}

// Type represents the type of backend
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

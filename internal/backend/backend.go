package backend

import (
	"budget/internal/store"
)

// Type selects which storage backend serves the process.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{SQLiteBackend, MemoryBackend}
}

// Config holds what backend construction needs.
type Config struct {
	Type Type

	// SQLite specific
	DBPath string
}

// CleanupFunc releases backend resources at process exit.
type CleanupFunc func() error

// Result contains the built store and its optional cleanup function.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Package backend selects and wires the transaction store from
// configuration. The web server only ever sees the resulting service.
package backend

import (
	"context"

	"duit/internal/services"
)

// Factory creates a transaction service from backend configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*services.TransactionService, error)
}

// Config holds everything needed to build any of the backends.
type Config struct {
	Type BackendType

	// File backend
	StorePath string

	// SQLite backend
	SQLiteDBPath string

	// Optional sync queue, any backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType names a storage backend.
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid reports whether the backend type is known.
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// BackendTypes lists every valid backend type.
func BackendTypes() []BackendType {
	return []BackendType{FileBackend, SQLiteBackend, MemoryBackend}
}

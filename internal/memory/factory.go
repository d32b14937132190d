package memory

import (
	"fmt"
	"log/slog"
)

// Supported backends for NewStore.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// NewStore creates the store selected by backend. For sqlite the location is
// a file path; for postgres it is a connection URL.
func NewStore(backend, location string, logger *slog.Logger) (Store, error) {
	switch backend {
	case "", BackendSQLite:
		return NewSQLiteStore(location, logger), nil
	case BackendPostgres:
		return NewPostgresStore(location, logger)
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", ErrInvalidArgument, backend)
	}
}

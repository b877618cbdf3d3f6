package storage

import "fmt"

// NewStore resolves the configured backend. An empty backend name selects
// the in-memory store; "sqlite" needs a binary built with the sqlite tag.
func NewStore(backend, dbPath string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(dbPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// CloseIfSupported releases backends that hold external resources. The
// in-memory store has nothing to release and is passed through.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

package backend

import (
	"context"
	"fmt"

	applog "finassist/internal/log"
	"finassist/internal/storage"
	"finassist/internal/storage/memory"
)

// Factory opens backends.
type Factory struct {
	log *applog.Logger
}

func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &Factory{log: logger.WithComponent(applog.ComponentStorage)}
}

// Open creates the backend described by config. The sqlite backend runs pending
// migrations before returning.
func (f *Factory) Open(ctx context.Context, config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.openSQLite(ctx, config)
	case MemoryBackend:
		return f.openMemory(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *Factory) openSQLite(ctx context.Context, config Config) (*Backend, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.log.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Backend{
		Type:    SQLiteBackend,
		Store:   repo,
		Seeder:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *Factory) openMemory(ctx context.Context, config Config) (*Backend, error) {
	store := memory.New()
	if config.MemorySeedPath != "" {
		seeded, err := memory.NewFromFile(config.MemorySeedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to seed memory backend: %w", err)
		}
		store = seeded
	}

	f.log.InfoContext(ctx, "Initialized memory backend", "seed_file", config.MemorySeedPath)

	return &Backend{
		Type:    MemoryBackend,
		Store:   store,
		Seeder:  store,
		Cleanup: func() error { return nil },
	}, nil
}

package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/cache"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/notify"
	ports "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/sheets/cached"
	gsheet "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets/google"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/sheets/memory"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the row store for config.Type and attaches the
// notification history. The read cache is only added when CacheTTL is set.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		raw ports.Store
		err error
	)
	switch config.Type {
	case SheetsBackend:
		raw, err = f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		raw = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	interval := config.CleanInterval
	if interval <= 0 {
		interval = defaultCleanInterval
	}
	caches := cache.NewManager(f.logger.WithComponent(log.ComponentCache).Logger)

	var closers []func() error
	var history *notify.History
	if config.HistoryDBPath != "" {
		repo, err := storage.NewSQLiteRepository(config.HistoryDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		closers = append(closers, repo.Close)
		history = notify.NewHistory(repo, caches)
		f.logger.InfoContext(ctx, "Notification history persisted", "db_path", config.HistoryDBPath)
	} else {
		history = notify.NewHistory(nil, caches)
	}

	store := raw
	if config.CacheTTL > 0 {
		store = cached.New(raw, config.CacheTTL, caches)
		f.logger.InfoContext(ctx, "Store read cache enabled", "ttl", config.CacheTTL.String())
	}
	caches.StartCleanup(interval)
	closers = append(closers, func() error {
		caches.Stop()
		return nil
	})

	return &BackendResult{
		Store:   store,
		History: history,
		Caches:  caches,
		Cleanup: func() error {
			var errs []error
			for i := len(closers) - 1; i >= 0; i-- {
				errs = append(errs, closers[i]())
			}
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (ports.Store, error) {
	cli, err := gsheet.New(ctx, config.Sheets)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized Google Sheets backend", "spreadsheet_id", config.Sheets.SpreadsheetID)
	return cli, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) ports.Store {
	dataDir := config.SeedDir
	if dataDir == "" {
		dataDir = "data"
	}
	store := memory.NewFromFiles(dataDir)
	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return store
}

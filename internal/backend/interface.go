package backend

import (
	"context"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/cache"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/notify"
	ports "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult is a ready store plus the pieces built around it.
type BackendResult struct {
	// Store is the row store wrapped in the read cache.
	Store ports.Store
	// History is the notification log, persisted when a history database
	// is configured.
	History *notify.History
	Caches  *cache.Manager
	Cleanup CleanupFunc
}

// Close runs Cleanup if set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

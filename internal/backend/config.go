package backend

import (
	"errors"
	"fmt"
	"time"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/config"
	gsheet "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets/google"
)

// BackendType selects where rows live.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SheetsBackend BackendType = "sheets"
)

const defaultCleanInterval = 5 * time.Minute

func (t BackendType) String() string { return string(t) }

func (t BackendType) IsValid() bool {
	return t == MemoryBackend || t == SheetsBackend
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory backend seed directory (categories.yaml)
	SeedDir string

	// Google Sheets layout; credentials come from the environment.
	Sheets gsheet.Config

	// CacheTTL > 0 wraps the store in a per-process read cache. Zero, the
	// default, fetches every table on every read.
	CacheTTL      time.Duration
	CleanInterval time.Duration

	// HistoryDBPath enables the sqlite notification log when set.
	HistoryDBPath string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:    backendType,
		SeedDir: appConfig.SeedDir,
		Sheets: gsheet.Config{
			SpreadsheetID:     appConfig.GoogleSpreadsheetID,
			TransactionsSheet: appConfig.TransactionsSheet,
			BudgetsSheet:      appConfig.BudgetsSheet,
			CategoriesSheet:   appConfig.CategoriesSheet,
			UsersSheet:        appConfig.UsersSheet,
		},
		CacheTTL:      appConfig.StoreCacheTTL,
		HistoryDBPath: appConfig.HistoryDBPath,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SheetsBackend && c.Sheets.SpreadsheetID == "" {
		return errors.New("Google Spreadsheet ID is required for sheets backend")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("invalid cache ttl %v", c.CacheTTL)
	}
	return nil
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	return []string{MemoryBackend.String(), SheetsBackend.String()}
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // containers often ship without a zone database
)

type Config struct {
	// Telegram
	BotToken       string
	PollTimeout    int // seconds
	ReconnectDelay time.Duration
	AdminUserIDs   []int64

	// Backend selection
	DataBackend string
	SeedDir     string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleCredentialsFile    string
	TransactionsSheet        string
	BudgetsSheet             string
	CategoriesSheet          string
	UsersSheet               string

	// Notifications
	Timezone             string
	NotificationsEnabled bool
	MorningSchedule      string
	LunchSchedule        string
	EveningSchedule      string
	WeeklySchedule       string
	MonthlySchedule      string
	AlertSchedule        string
	AlertThreshold       int // percent
	BroadcastInterval    time.Duration
	HistoryDBPath        string // empty keeps history in memory

	// StoreCacheTTL > 0 serves table reads from a per-process cache.
	// Zero reads the store on every call.
	StoreCacheTTL time.Duration

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	LogLevel string
}

var validBackends = []string{"memory", "sheets"}

func Load() *Config {
	cfg := &Config{
		BotToken:       getEnv("BOT_TOKEN", getEnv("TELEGRAM_BOT_TOKEN", "")),
		PollTimeout:    getEnvInt("POLL_TIMEOUT", 60),
		ReconnectDelay: getEnvDuration("RECONNECT_DELAY", 5*time.Second),
		AdminUserIDs:   getEnvList("ADMIN_USER_IDS"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),
		SeedDir:     getEnv("SEED_DIR", "data"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleCredentialsFile:    getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		TransactionsSheet:        getEnv("TRANSACTIONS_SHEET", "Sheet1"),
		BudgetsSheet:             getEnv("BUDGETS_SHEET", "Sheet2"),
		CategoriesSheet:          getEnv("CATEGORIES_SHEET", "Sheet3"),
		UsersSheet:               getEnv("USERS_SHEET", "Users"),

		Timezone:             getEnv("TIMEZONE", "Asia/Jakarta"),
		NotificationsEnabled: getEnvBool("NOTIFICATIONS_ENABLED", true),
		MorningSchedule:      getEnv("MORNING_SCHEDULE", "0 8 * * *"),
		LunchSchedule:        getEnv("LUNCH_SCHEDULE", "0 12 * * *"),
		EveningSchedule:      getEnv("EVENING_SCHEDULE", "0 20 * * *"),
		WeeklySchedule:       getEnv("WEEKLY_SCHEDULE", "0 9 * * 1"),
		MonthlySchedule:      getEnv("MONTHLY_SCHEDULE", "0 9 * * *"),
		AlertSchedule:        getEnv("ALERT_SCHEDULE", "0 */3 * * *"),
		AlertThreshold:       getEnvInt("ALERT_THRESHOLD", 80),
		BroadcastInterval:    getEnvDuration("BROADCAST_INTERVAL", 50*time.Millisecond),
		HistoryDBPath:        getEnv("HISTORY_DB_PATH", ""),
		StoreCacheTTL:        getEnvDuration("STORE_CACHE_TTL", 0),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "perhitunganku"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_confirmations"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Location resolves Timezone, falling back to UTC+7 when the zone database
// is unavailable.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("WIB", 7*60*60)
}

// IsAdmin reports whether userID may run admin commands.
func (c *Config) IsAdmin(userID int64) bool {
	return slices.Contains(c.AdminUserIDs, userID)
}

// Validate validates the configuration and returns an error if invalid.
// The bot token is checked separately by the binaries that need it.
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" && c.GoogleCredentialsFile == "" {
			errors = append(errors, "one of GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided for sheets backend")
		}
		for _, f := range []string{c.GoogleServiceAccountFile, c.GoogleCredentialsFile} {
			if f == "" {
				continue
			}
			if _, err := os.Stat(f); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", f))
			}
		}
		for name, sheet := range map[string]string{
			"TRANSACTIONS_SHEET": c.TransactionsSheet,
			"BUDGETS_SHEET":      c.BudgetsSheet,
			"CATEGORIES_SHEET":   c.CategoriesSheet,
			"USERS_SHEET":        c.UsersSheet,
		} {
			if strings.TrimSpace(sheet) == "" {
				errors = append(errors, fmt.Sprintf("%s cannot be empty when using sheets backend", name))
			}
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.AlertThreshold < 1 || c.AlertThreshold > 1000 {
		errors = append(errors, fmt.Sprintf("invalid alert threshold %d: must be between 1 and 1000", c.AlertThreshold))
	}

	if c.PollTimeout < 0 || c.PollTimeout > 600 {
		errors = append(errors, fmt.Sprintf("invalid poll timeout %d: must be between 0 and 600 seconds", c.PollTimeout))
	}
	if c.ReconnectDelay < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid reconnect delay %v: must be at least 100ms", c.ReconnectDelay))
	}

	if c.StoreCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid store cache ttl %v: must not be negative", c.StoreCacheTTL))
	}

	// Check if the history directory exists or can be created
	if c.HistoryDBPath != "" {
		dir := filepath.Dir(c.HistoryDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create history database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		slices.Sort(errors)
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateBot additionally requires a bot token.
func (c *Config) ValidateBot() error {
	err := c.Validate()
	if c.BotToken != "" {
		return err
	}
	const missing = "BOT_TOKEN (or TELEGRAM_BOT_TOKEN) is required"
	if err == nil {
		return fmt.Errorf("configuration validation failed:\n- %s", missing)
	}
	return fmt.Errorf("%w\n- %s", err, missing)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList reads a comma separated list of numeric ids, skipping bad entries.
func getEnvList(key string) []int64 {
	var ids []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

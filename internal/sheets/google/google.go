package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	ports "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets"
)

// Config names the spreadsheet and its four logical tables.
type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
	BudgetsSheet      string
	CategoriesSheet   string
	UsersSheet        string
}

// Defaults match the layout of the bot's original spreadsheet.
func DefaultConfig() Config {
	return Config{
		TransactionsSheet: "Sheet1",
		BudgetsSheet:      "Sheet2",
		CategoriesSheet:   "Sheet3",
		UsersSheet:        "Users",
	}
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	txSheet       string
	budgetSheet   string
	catSheet      string
	userSheet     string
}

// Ensure interface conformance
var _ ports.Store = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS
// Optional sheet names: TRANSACTIONS_SHEET, BUDGETS_SHEET, CATEGORIES_SHEET, USERS_SHEET.
func NewFromEnv(ctx context.Context) (*Client, error) {
	cfg := DefaultConfig()
	cfg.SpreadsheetID = strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if v := strings.TrimSpace(os.Getenv("TRANSACTIONS_SHEET")); v != "" {
		cfg.TransactionsSheet = v
	}
	if v := strings.TrimSpace(os.Getenv("BUDGETS_SHEET")); v != "" {
		cfg.BudgetsSheet = v
	}
	if v := strings.TrimSpace(os.Getenv("CATEGORIES_SHEET")); v != "" {
		cfg.CategoriesSheet = v
	}
	if v := strings.TrimSpace(os.Getenv("USERS_SHEET")); v != "" {
		cfg.UsersSheet = v
	}
	return New(ctx, cfg)
}

// New creates a client for cfg, authenticating with the service account
// found in the environment.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newWithService(svc, cfg), nil
}

func newWithService(svc *gsheet.Service, cfg Config) *Client {
	def := DefaultConfig()
	pick := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return strings.TrimSpace(v)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		txSheet:       pick(cfg.TransactionsSheet, def.TransactionsSheet),
		budgetSheet:   pick(cfg.BudgetsSheet, def.BudgetsSheet),
		catSheet:      pick(cfg.CategoriesSheet, def.CategoriesSheet),
		userSheet:     pick(cfg.UsersSheet, def.UsersSheet),
	}
}

// serviceAccountJSON resolves credentials from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func serviceAccountJSON(ctx context.Context) ([]byte, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline service account credentials", "json_length", len(inline))
		return []byte(inline), nil
	case file != "":
		slog.InfoContext(ctx, "Reading service account credentials from file", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// newSheetsService builds an authenticated Sheets service. The token source
// wraps a pooled HTTP client so every API call reuses connections.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON, err := serviceAccountJSON(ctx)
	if err != nil {
		return nil, err
	}
	creds, err := oauthgoogle.CredentialsFromJSON(ctx, credentialsJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	base := context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	httpClient := oauth2.NewClient(base, creds.TokenSource)

	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "project_id", creds.ProjectID)
	return service, nil
}

// newHTTPClientWithPooling creates an HTTP client tuned for the Sheets API
// with connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// AppendTransaction appends one row to the transactions sheet and returns
// the updated range.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	return c.appendRow(ctx, c.txSheet, EncodeTransactionRow(t))
}

// AppendBudget appends one row to the budgets sheet. Earlier rows for the
// same category are left alone; readers sum them.
func (c *Client) AppendBudget(ctx context.Context, b core.Budget) (string, error) {
	if err := b.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	return c.appendRow(ctx, c.budgetSheet, EncodeBudgetRow(b))
}

func (c *Client) appendRow(ctx context.Context, sheet string, row []any) (string, error) {
	if c.svc == nil {
		return "", ports.ErrNotReady
	}
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, sheet+"!A:A", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", sheet, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return sheet, nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	values, err := c.readAll(ctx, c.txSheet)
	if err != nil {
		return nil, err
	}
	return decodeTransactions(values), nil
}

func (c *Client) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	values, err := c.readAll(ctx, c.budgetSheet)
	if err != nil {
		return nil, err
	}
	return decodeBudgets(values), nil
}

func (c *Client) ListCategoryGroups(ctx context.Context) ([]core.CategoryGroup, error) {
	values, err := c.readAll(ctx, c.catSheet)
	if err != nil {
		return nil, err
	}
	return decodeCategories(values), nil
}

// readAll fetches every row of a sheet. Numbers come back unformatted and
// dates as their displayed string so ParseDate sees dd-mm-yyyy.
func (c *Client) readAll(ctx context.Context, sheet string) ([][]any, error) {
	if c.svc == nil {
		return nil, ports.ErrNotReady
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	return resp.Values, nil
}

func decodeTransactions(values [][]any) []core.Transaction {
	if len(values) == 0 {
		return nil
	}
	h := NewHeader(values[0])
	out := make([]core.Transaction, 0, len(values))
	for _, row := range values {
		if t, ok := DecodeTransactionRow(h, row); ok {
			out = append(out, t)
		}
	}
	return out
}

func decodeBudgets(values [][]any) []core.Budget {
	if len(values) == 0 {
		return nil
	}
	h := NewHeader(values[0])
	out := make([]core.Budget, 0, len(values))
	for _, row := range values {
		if b, ok := DecodeBudgetRow(h, row); ok {
			out = append(out, b)
		}
	}
	return out
}

func decodeCategories(values [][]any) []core.CategoryGroup {
	if len(values) == 0 {
		return nil
	}
	h := NewHeader(values[0])
	seen := map[string]struct{}{}
	out := make([]core.CategoryGroup, 0, len(values))
	for _, row := range values {
		g, ok := DecodeCategoryRow(h, row)
		if !ok {
			continue
		}
		if _, dup := seen[g.Category]; dup {
			continue
		}
		seen[g.Category] = struct{}{}
		out = append(out, g)
	}
	return out
}

package google

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	ports "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets"
)

func setenv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
		if v == "" {
			os.Unsetenv(k)
		}
	}
}

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	setenv(t, map[string]string{"GOOGLE_SPREADSHEET_ID": ""})

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	setenv(t, map[string]string{
		"GOOGLE_SPREADSHEET_ID":          "test-id",
		"GOOGLE_SERVICE_ACCOUNT_JSON":    "",
		"GOOGLE_SERVICE_ACCOUNT_FILE":    "",
		"GOOGLE_APPLICATION_CREDENTIALS": "",
	})

	_, err := NewFromEnv(context.Background())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestNewFromEnv_InvalidJSON(t *testing.T) {
	setenv(t, map[string]string{
		"GOOGLE_SPREADSHEET_ID":       "test-id",
		"GOOGLE_SERVICE_ACCOUNT_JSON": "invalid-json",
	})

	_, err := NewFromEnv(context.Background())
	if err == nil || !strings.Contains(err.Error(), "parse service account credentials") {
		t.Fatalf("expected credential parse error, got %v", err)
	}
}

func TestNewFromEnv_UnreadableFile(t *testing.T) {
	setenv(t, map[string]string{
		"GOOGLE_SPREADSHEET_ID":       "test-id",
		"GOOGLE_SERVICE_ACCOUNT_JSON": "",
		"GOOGLE_SERVICE_ACCOUNT_FILE": "/nonexistent/sa.json",
	})

	_, err := NewFromEnv(context.Background())
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected file read error, got %v", err)
	}
}

func TestDefaultSheetNames(t *testing.T) {
	c := newWithService(nil, Config{SpreadsheetID: "x", BudgetsSheet: " Anggaran "})
	if c.txSheet != "Sheet1" || c.budgetSheet != "Anggaran" || c.catSheet != "Sheet3" || c.userSheet != "Users" {
		t.Fatalf("unexpected sheet names: %+v", c)
	}
}

func TestClient_ValidatesBeforeRemoteCall(t *testing.T) {
	c := newWithService(nil, Config{SpreadsheetID: "test"}) // svc is nil

	_, err := c.AppendTransaction(context.Background(), core.Transaction{
		Date: core.NewDate(2024, 1, 1), Description: "x", Amount: 1, Category: "", Kind: core.KindExpense, UserID: 1,
	})
	if !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got: %v", err)
	}

	_, err = c.AppendBudget(context.Background(), core.Budget{
		Date: core.NewDate(2024, 1, 1), Category: "makanan", Amount: 1000, UserID: 1,
	})
	if !errors.Is(err, ports.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got: %v", err)
	}
}

func TestClient_NilServiceReads(t *testing.T) {
	c := newWithService(nil, Config{SpreadsheetID: "test"})
	ctx := context.Background()
	if _, err := c.ListTransactions(ctx); !errors.Is(err, ports.ErrNotReady) {
		t.Errorf("ListTransactions: %v", err)
	}
	if _, err := c.ListUsers(ctx); !errors.Is(err, ports.ErrNotReady) {
		t.Errorf("ListUsers: %v", err)
	}
	if err := c.UpdateUser(ctx, core.UserPrefs{UserID: 1}); !errors.Is(err, ports.ErrNotReady) {
		t.Errorf("UpdateUser: %v", err)
	}
	if err := c.EnsureUserTable(ctx); !errors.Is(err, ports.ErrNotReady) {
		t.Errorf("EnsureUserTable: %v", err)
	}
	if err := c.AddUser(ctx, core.UserPrefs{}); !errors.Is(err, core.ErrMissingUser) {
		t.Errorf("AddUser without id: %v", err)
	}
}

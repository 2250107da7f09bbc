package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setMemoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SEED_DIR", t.TempDir())
	t.Setenv("HISTORY_DB_PATH", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("TIMEZONE", "Asia/Jakarta")
	t.Setenv("LOG_LEVEL", "error")
}

func TestExportCommandWritesWorkbook(t *testing.T) {
	setMemoryEnv(t)
	dir := t.TempDir()

	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs([]string{"export", "42", "01-01-2024", "31-01-2024", "-o", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}

	path := filepath.Join(dir, "Export_Enhanced_42_20240101_20240131.xlsx")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("workbook not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("workbook is empty")
	}
	if !strings.Contains(out.String(), "01-01-2024 s/d 31-01-2024") {
		t.Errorf("output = %q", out.String())
	}
}

func TestExportCommandRejectsBadArgs(t *testing.T) {
	setMemoryEnv(t)
	for _, args := range [][]string{
		{"export", "abc"},
		{"export", "42", "kemarin"},
		{"export"},
	} {
		cmd := newRootCommand(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		if err := cmd.Execute(); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestSetupSheetsNeedsSheetsBackend(t *testing.T) {
	setMemoryEnv(t)
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"setup-sheets"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "DATA_BACKEND=sheets") {
		t.Fatalf("err = %v", err)
	}
}

func TestNotifyCommandNeedsToken(t *testing.T) {
	setMemoryEnv(t)
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"notify", "morning"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "BOT_TOKEN") {
		t.Fatalf("err = %v", err)
	}
}

func TestSendAndAlertRejectBadUserID(t *testing.T) {
	setMemoryEnv(t)
	for _, args := range [][]string{
		{"send", "nol", "halo"},
		{"send", "-5", "halo"},
		{"alert", "0"},
	} {
		cmd := newRootCommand(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "invalid user id") {
			t.Errorf("%v: err = %v", args, err)
		}
	}
}

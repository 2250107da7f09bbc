package cli

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/config"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
)

func TestSchedule(t *testing.T) {
	cfg := &config.Config{
		MorningSchedule: "0 7 * * *",
		LunchSchedule:   "",
		EveningSchedule: "0 21 * * *",
		WeeklySchedule:  "0 9 * * 1",
		MonthlySchedule: "0 9 * * *",
		AlertSchedule:   "0 */2 * * *",
	}
	s := Schedule(cfg)
	if s.Morning != "0 7 * * *" || s.Evening != "0 21 * * *" || s.Alerts != "0 */2 * * *" {
		t.Errorf("schedule not copied: %+v", s)
	}
	if s.Lunch != "" {
		t.Errorf("empty spec must disable the job, got %q", s.Lunch)
	}
	if s.Prune == "" {
		t.Error("prune keeps its default")
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level not applied")
	}
	if logger.Component() != log.ComponentApp {
		t.Errorf("component = %q", logger.Component())
	}
}

func TestGracefulShutdownFollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	cleaned := make(chan struct{})
	ctx, done := GracefulShutdown(parent, SetupLogger("error"), time.Second, func(context.Context) {
		close(cleaned)
	})

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	if ctx.Err() == nil {
		t.Error("context not cancelled")
	}
	select {
	case <-cleaned:
	default:
		t.Error("cleanup not run")
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/backend"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/cli"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/config"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/export"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/notify"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/present"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
	gsheet "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets/google"
)

// env is what every subcommand starts from.
type env struct {
	cfg    *config.Config
	logger *log.Logger
}

func loadEnv(bot bool) (*env, error) {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent("admin")

	validate := cfg.Validate
	if bot {
		validate = cfg.ValidateBot
	}
	if err := validate(); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) openBackend(ctx context.Context) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(e.cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(e.logger).CreateBackend(ctx, bcfg)
}

func (e *env) notifier(ctx context.Context) (*notify.Service, func() error, error) {
	api, err := tgbotapi.NewBotAPI(e.cfg.BotToken)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to Telegram: %w", err)
	}
	res, err := e.openBackend(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cli.NewNotifier(e.cfg, res, api, e.logger), res.Close, nil
}

func newRootCommand(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "perhitunganku-admin",
		Short: "Maintenance commands for the Perhitunganku bot",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(
		newSetupSheetsCommand(),
		newNotifyCommand(),
		newBroadcastCommand(),
		newSendCommand(),
		newAlertCommand(),
		newAchievementCommand(),
		newGoalCommand(),
		newExportCommand(),
	)
	return rootCmd
}

func newSetupSheetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup-sheets",
		Short: "Write missing sheet headers and create the Users sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(false)
			if err != nil {
				return err
			}
			if e.cfg.DataBackend != string(backend.SheetsBackend) {
				return fmt.Errorf("setup-sheets needs DATA_BACKEND=sheets, got %q", e.cfg.DataBackend)
			}
			bcfg, err := backend.FromAppConfig(e.cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := gsheet.New(ctx, bcfg.Sheets)
			if err != nil {
				return err
			}
			if err := client.EnsureHeaders(ctx); err != nil {
				return err
			}
			if err := client.EnsureUserTable(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sheets ready:", bcfg.Sheets.SpreadsheetID)
			return nil
		},
	}
}

func newNotifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "notify <job>",
		Short: "Run one notification job now",
		Long: "Run one notification job now. Jobs: " + strings.Join([]string{
			notify.JobMorning, notify.JobLunch, notify.JobEvening, notify.JobAlerts,
			notify.JobWeekly, notify.JobMonthly, notify.JobMonthlyCheck, notify.JobPrune,
		}, ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(true)
			if err != nil {
				return err
			}
			svc, closeFn, err := e.notifier(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], res)
			return nil
		},
	}
}

func newBroadcastCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "broadcast <text>",
		Short: "Send a message to every user with notifications enabled",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(true)
			if err != nil {
				return err
			}
			svc, closeFn, err := e.notifier(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			text := strings.Join(args, " ")
			if !raw {
				text = present.Esc(text)
			}
			n, err := svc.Broadcast(cmd.Context(), text, nil)
			fmt.Fprintf(cmd.OutOrStdout(), "Broadcast sent to %d users\n", n)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "html", false, "send the text as HTML without escaping")
	return cmd
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func newSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send <user-id> <text>",
		Short: "Send one HTML message to a user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			e, err := loadEnv(true)
			if err != nil {
				return err
			}
			svc, closeFn, err := e.notifier(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return svc.SendCustom(cmd.Context(), userID, strings.Join(args[1:], " "))
		},
	}
}

func newAlertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "alert <user-id>",
		Short: "Check one user's budgets and send an alert if any is over the threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			e, err := loadEnv(true)
			if err != nil {
				return err
			}
			svc, closeFn, err := e.notifier(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			sent, err := svc.CheckAndSendBudgetAlert(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if sent {
				fmt.Fprintln(cmd.OutOrStdout(), "Alert sent")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No budget over the threshold")
			}
			return nil
		},
	}
}

func newAchievementCommand() *cobra.Command {
	var points int
	cmd := &cobra.Command{
		Use:   "achievement <user-id> <name> <description>",
		Short: "Announce an unlocked achievement to a user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			e, err := loadEnv(true)
			if err != nil {
				return err
			}
			svc, closeFn, err := e.notifier(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return svc.SendAchievement(cmd.Context(), userID, args[1], args[2], points)
		},
	}
	cmd.Flags().IntVar(&points, "points", 10, "points awarded")
	return cmd
}

func newGoalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "goal <user-id> <name> <current> <target>",
		Short: "Report savings-goal progress to a user (sent from 75%)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			current := core.CleanInteger(args[2])
			target := core.CleanInteger(args[3])
			if !current.Ok() || !target.Ok() || target.Value <= 0 {
				return fmt.Errorf("invalid amounts %q / %q", args[2], args[3])
			}
			e, err := loadEnv(true)
			if err != nil {
				return err
			}
			svc, closeFn, err := e.notifier(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			err = svc.SendSavingsGoal(cmd.Context(), userID, args[1], current.Value, target.Value)
			if errors.Is(err, notify.ErrNotSent) {
				fmt.Fprintln(cmd.OutOrStdout(), "Goal below 75%, nothing sent")
				return nil
			}
			return err
		},
	}
}

func newExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <user-id> [tahun | dd-mm-yyyy dd-mm-yyyy]",
		Short: "Write a user's xlsx export to disk",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			e, err := loadEnv(false)
			if err != nil {
				return err
			}

			today := core.Today(time.Now(), e.cfg.Location())
			r, err := core.RangeFromArgs(strings.Join(args[1:], " "), today)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			res, err := e.openBackend(ctx)
			if err != nil {
				return err
			}
			defer res.Close()

			buf, name, err := export.New(report.NewLoader(res.Store, e.logger.Logger)).Export(ctx, userID, r)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = name
			} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				path = filepath.Join(path, name)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", path, r)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (default: generated name)")
	return cmd
}

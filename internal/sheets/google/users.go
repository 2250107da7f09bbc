package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gsheet "google.golang.org/api/sheets/v4"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	ports "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets"
)

func (c *Client) ListUsers(ctx context.Context) ([]core.UserPrefs, error) {
	values, err := c.readAll(ctx, c.userSheet)
	if err != nil {
		return nil, err
	}
	users, _ := decodeUsers(values)
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (core.UserPrefs, error) {
	values, err := c.readAll(ctx, c.userSheet)
	if err != nil {
		return core.UserPrefs{}, err
	}
	users, _ := decodeUsers(values)
	for _, u := range users {
		if u.UserID == userID {
			return u, nil
		}
	}
	return core.UserPrefs{}, ports.ErrUserNotFound
}

func (c *Client) AddUser(ctx context.Context, p core.UserPrefs) error {
	if p.UserID == 0 {
		return core.ErrMissingUser
	}
	if _, err := c.GetUser(ctx, p.UserID); err == nil {
		return ports.ErrUserExists
	} else if !errors.Is(err, ports.ErrUserNotFound) {
		return err
	}
	_, err := c.appendRow(ctx, c.userSheet, EncodeUserRow(p))
	return err
}

// UpdateUser rewrites the flag, last_active and timezone columns of the
// user's row in place.
func (c *Client) UpdateUser(ctx context.Context, p core.UserPrefs) error {
	values, err := c.readAll(ctx, c.userSheet)
	if err != nil {
		return err
	}
	_, rows := decodeUsers(values)
	rowNum, ok := rows[p.UserID]
	if !ok {
		return ports.ErrUserNotFound
	}
	rng := fmt.Sprintf("%s!C%d:J%d", c.userSheet, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{encodeUserPrefs(p)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// EnsureUserTable adds the users sheet with its header when the spreadsheet
// does not have one yet.
func (c *Client) EnsureUserTable(ctx context.Context) error {
	if c.svc == nil {
		return ports.ErrNotReady
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && strings.EqualFold(sh.Properties.Title, c.userSheet) {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: c.userSheet}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", c.userSheet, err)
	}
	rng := fmt.Sprintf("%s!A1:J1", c.userSheet)
	vr := &gsheet.ValueRange{Values: [][]any{UserHeader}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s header: %w", c.userSheet, err)
	}
	slog.InfoContext(ctx, "Created users sheet", "sheet", c.userSheet)
	return nil
}

// EnsureHeaders writes the header row of any data sheet whose first row is
// empty. Used by the admin setup command.
func (c *Client) EnsureHeaders(ctx context.Context) error {
	if c.svc == nil {
		return ports.ErrNotReady
	}
	sheets := []struct {
		name   string
		header []any
	}{
		{c.txSheet, TransactionHeader},
		{c.budgetSheet, BudgetHeader},
		{c.catSheet, CategoryHeader},
	}
	for _, s := range sheets {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, s.name+"!1:1").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("read %s header: %w", s.name, err)
		}
		if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
			continue
		}
		vr := &gsheet.ValueRange{Values: [][]any{s.header}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, s.name+"!A1", vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write %s header: %w", s.name, err)
		}
		slog.InfoContext(ctx, "Wrote sheet header", "sheet", s.name)
	}
	return nil
}

// decodeUsers returns the users in sheet order and the 1-based sheet row of
// each user id. The first occurrence of an id wins.
func decodeUsers(values [][]any) ([]core.UserPrefs, map[int64]int) {
	rows := map[int64]int{}
	if len(values) == 0 {
		return nil, rows
	}
	h := NewHeader(values[0])
	out := make([]core.UserPrefs, 0, len(values))
	for i, row := range values {
		p, ok := DecodeUserRow(h, row)
		if !ok {
			continue
		}
		if _, dup := rows[p.UserID]; dup {
			continue
		}
		rows[p.UserID] = i + 1
		out = append(out, p)
	}
	return out, rows
}

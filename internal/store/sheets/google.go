package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"expns/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and credentials used for export.
type Config struct {
	SpreadsheetID string
	SheetName     string // base name; the year of the row is prefixed
	// Service account credentials, inline JSON wins over the file.
	CredentialsJSON string
	CredentialsFile string
}

// valuesAppender is the slice of the Sheets API the exporter needs.
type valuesAppender interface {
	Append(ctx context.Context, spreadsheetID, rng string, values [][]any) (updatedRange string, err error)
}

// Client appends exported ledger rows to a Google Sheet.
type Client struct {
	values        valuesAppender
	spreadsheetID string
	sheetBase     string
}

var _ store.RowAppender = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)
	return newClient(apiValues{svc: svc}, cfg), nil
}

func newClient(values valuesAppender, cfg Config) *Client {
	base := strings.TrimSpace(cfg.SheetName)
	if base == "" {
		base = "Transactions"
	}
	return &Client{values: values, spreadsheetID: cfg.SpreadsheetID, sheetBase: base}
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// AppendRow writes one transaction below the last row of the year's sheet.
func (c *Client) AppendRow(ctx context.Context, row store.Row) (string, error) {
	if c.values == nil {
		return "", errors.New("sheets service not initialized")
	}

	year := time.Now().Year()
	if ts, err := time.Parse(time.RFC3339Nano, row.Recorded); err == nil {
		year = ts.Year()
	}
	rng := fmt.Sprintf("%s!A:F", yearPrefixedName(c.sheetBase, year))

	ref, err := c.values.Append(ctx, c.spreadsheetID, rng, [][]any{rowValues(row)})
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", rng, err)
	}
	return ref, nil
}

func rowValues(row store.Row) []any {
	return []any{row.Session, row.Seq, row.Title, row.Category, row.Amount, row.Recorded}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

type apiValues struct {
	svc *gsheet.Service
}

func (a apiValues) Append(ctx context.Context, spreadsheetID, rng string, values [][]any) (string, error) {
	resp, err := a.svc.Spreadsheets.Values.Append(spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return resp.TableRange, nil
}

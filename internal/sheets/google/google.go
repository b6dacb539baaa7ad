// Package google implements the spreadsheet ports on top of the Google
// Sheets API. Authorization uses an OAuth client plus a previously issued
// refresh token, both supplied inline or as file paths.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"duit/internal/core"
	"duit/internal/export"
	ports "duit/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.TransactionWriter = (*Client)(nil)

// Options configures the Sheets client. Credentials may be passed inline
// (JSON) or as file paths; inline wins when both are set.
type Options struct {
	SpreadsheetID string
	SheetName     string

	OAuthClientFile string
	OAuthTokenFile  string
	OAuthClientJSON string
	OAuthTokenJSON  string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Transaksi"
	}

	httpClient, err := oauthHTTPClient(ctx, opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// NewWithService wires an already constructed Sheets service. Tests use
// this to point the client at a stub server.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// oauthHTTPClient builds an authorized HTTP client from the OAuth client
// definition and the stored token.
func oauthHTTPClient(ctx context.Context, opts Options) (*http.Client, error) {
	clientBytes, err := resolveCredential("OAuth client", opts.OAuthClientJSON, opts.OAuthClientFile)
	if err != nil {
		return nil, err
	}
	tokenBytes, err := resolveCredential("OAuth token", opts.OAuthTokenJSON, opts.OAuthTokenFile)
	if err != nil {
		return nil, err
	}

	cfg, err := oauthgoogle.ConfigFromJSON(clientBytes, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse OAuth client: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenBytes, &token); err != nil {
		return nil, fmt.Errorf("parse OAuth token: %w", err)
	}

	return cfg.Client(ctx, &token), nil
}

func resolveCredential(what, inlineJSON, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inlineJSON) != "":
		return []byte(inlineJSON), nil
	case strings.TrimSpace(file) != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s file: %w", what, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("missing %s (set inline JSON or a file path)", what)
	}
}

// Append writes the transaction as one row at the bottom of the sheet and
// returns the updated range reference.
func (c *Client) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rows := export.Rows([]core.Transaction{tx})
	vr := &gsheet.ValueRange{Values: [][]any{rows[0].SheetValues()}}

	rng := fmt.Sprintf("%s!A:F", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

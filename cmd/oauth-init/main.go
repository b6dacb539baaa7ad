// Command oauth-init runs the one-time OAuth consent flow for the
// spreadsheet sync and writes the refresh token to disk. Run it once on
// a machine with a browser, then ship the token file to the worker.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"duit/internal/cli"
	"duit/internal/config"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	clientJSON, err := loadClientCredentials(cfg)
	if err != nil {
		log.Fatalf("oauth-init: %v", err)
	}

	oauthCfg, err := google.ConfigFromJSON(clientJSON, sheets.SpreadsheetsScope)
	if err != nil {
		log.Fatalf("oauth-init: parse client credentials: %v", err)
	}

	// The OAuth client must list this redirect URI as authorized.
	redirectPort := os.Getenv("OAUTH_REDIRECT_PORT")
	if redirectPort == "" {
		redirectPort = "8085"
	}
	oauthCfg.RedirectURL = "http://localhost:" + redirectPort + "/callback"

	codeCh := make(chan string, 1)
	srv := &http.Server{Addr: ":" + redirectPort}
	http.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Otorisasi selesai. Tutup jendela ini dan kembali ke terminal.")
		codeCh <- r.URL.Query().Get("code")
		go func() { time.Sleep(500 * time.Millisecond); _ = srv.Close() }()
	})
	go func() { _ = srv.ListenAndServe() }()

	authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open this URL to authorize:\n%s\n", authURL)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	select {
	case code := <-codeCh:
		token, err := oauthCfg.Exchange(context.Background(), code)
		if err != nil {
			log.Fatalf("oauth-init: token exchange: %v", err)
		}
		if err := saveToken(tokenPath(cfg), token); err != nil {
			log.Fatalf("oauth-init: %v", err)
		}
	case <-time.After(5 * time.Minute):
		log.Fatalf("oauth-init: authorization timed out")
	case <-sigCh:
		log.Fatalf("oauth-init: interrupted")
	}
}

func loadClientCredentials(cfg *config.Config) ([]byte, error) {
	switch {
	case cfg.GoogleOAuthClientJSON != "":
		return []byte(cfg.GoogleOAuthClientJSON), nil
	case cfg.GoogleOAuthClientFile != "":
		b, err := os.ReadFile(cfg.GoogleOAuthClientFile)
		if err != nil {
			return nil, fmt.Errorf("read client file: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}
}

func tokenPath(cfg *config.Config) string {
	if cfg.GoogleOAuthTokenFile != "" {
		return cfg.GoogleOAuthTokenFile
	}
	return "token.json"
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	fmt.Printf("Saved token to %s\n", path)
	return nil
}

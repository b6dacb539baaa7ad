// Package analysis forwards spending data to a hosted generative-text
// model and returns its answer verbatim. The contract is deliberately
// thin: send {category, amount} pairs, receive a string or an error. No
// retry, no parsing, no structured use of the result.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"duit/internal/core"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// ErrUnconfigured is returned when no API key is set; the handler renders
// it as an inline message instead of calling out.
var ErrUnconfigured = errors.New("analysis API key not configured")

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}
}

// Request/response shapes for the generateContent endpoint. Only the
// fields this client touches are declared.
type (
	generateRequest struct {
		Contents []content `json:"contents"`
	}
	content struct {
		Parts []part `json:"parts"`
	}
	part struct {
		Text string `json:"text"`
	}
	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}
)

// BuildPrompt serializes the expense pairs into the analysis prompt. The
// returned text asks for the largest category, wasteful habits, and saving
// suggestions, answered in Indonesian.
func BuildPrompt(pairs []core.CategoryAmount) string {
	items := make([]string, len(pairs))
	for i, p := range pairs {
		items[i] = fmt.Sprintf("%s: Rp%d", p.Category, p.Amount.Rupiah)
	}
	return "Kamu adalah asisten keuangan. Analisis data pengeluaran berikut: " +
		strings.Join(items, ", ") + ".\n\n" +
		"Berikan insight singkat:\n" +
		"- kategori mana yang paling besar,\n" +
		"- apakah ada pengeluaran boros,\n" +
		"- saran hemat.\n" +
		"Tulis ringkas dalam bahasa Indonesia."
}

// Analyze sends the pairs and returns the model's text verbatim. Failures
// propagate as errors; the caller converts them to a display string and
// never re-throws past that boundary.
func (c *Client) Analyze(ctx context.Context, pairs []core.CategoryAmount) (string, error) {
	if c.apiKey == "" {
		return "", ErrUnconfigured
	}

	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: BuildPrompt(pairs)}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal analysis request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call analysis API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("analysis API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode analysis response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("analysis API returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"duit/internal/core"
	applog "duit/internal/log"
	"duit/internal/services"
	"duit/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *services.TransactionService) {
	t.Helper()

	cfg := applog.DefaultConfig()
	cfg.Handler = slog.NewTextHandler(io.Discard, nil)
	logger := applog.New(cfg)

	service := services.NewTransactionService(storage.NewMemoryStore(), nil, logger)
	srv := NewServer(":0", service, nil, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, service
}

func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validForm() url.Values {
	return url.Values{
		"title":    {"Makan siang"},
		"amount":   {"45000"},
		"category": {"Food & Dining"},
		"type":     {"expense"},
		"date":     {"2025-08-12"},
	}
}

func mustCreate(t *testing.T, service *services.TransactionService, tx core.Transaction) core.Transaction {
	t.Helper()
	created, err := service.Create(context.Background(), tx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return created
}

func sampleTx(title string, amount int64, txType core.Type, date string) core.Transaction {
	d, _ := time.Parse("2006-01-02", date)
	return core.Transaction{
		Title:    title,
		Amount:   core.Money{Rupiah: amount},
		Category: "Food & Dining",
		Type:     txType,
		Date:     d,
	}
}

func TestIndexRendersShell(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `hx-post="/transactions"`) {
		t.Error("expected the create form in the shell")
	}
	if !strings.Contains(body, `hx-get="/ui/metrics"`) {
		t.Error("expected the metrics partial mount point")
	}
}

func TestCreateTransaction(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, formRequest(http.MethodPost, "/transactions", validForm()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("HX-Trigger"); got != "transaction:created" {
		t.Errorf("HX-Trigger = %q, want transaction:created", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Transaksi tersimpan") || !strings.Contains(body, "Rp45.000") {
		t.Errorf("unexpected feedback fragment: %s", body)
	}

	list := do(srv, httptest.NewRequest(http.MethodGet, "/ui/transactions", nil))
	if !strings.Contains(list.Body.String(), "Makan siang") {
		t.Error("created transaction missing from the list partial")
	}
}

func TestCreateRejectsInvalidForm(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(url.Values)
		message string
	}{
		{"empty title", func(f url.Values) { f.Set("title", "") }, "Judul tidak boleh kosong"},
		{"bad amount", func(f url.Values) { f.Set("amount", "abc") }, "Jumlah tidak valid"},
		{"negative amount", func(f url.Values) { f.Set("amount", "-500") }, "Jumlah tidak valid"},
		{"empty category", func(f url.Values) { f.Set("category", "") }, "Kategori harus dipilih"},
		{"bad type", func(f url.Values) { f.Set("type", "loan") }, "Tipe transaksi tidak valid"},
		{"bad date", func(f url.Values) { f.Set("date", "12-08-2025") }, "Tanggal tidak valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			form := validForm()
			tt.mutate(form)

			rec := do(srv, formRequest(http.MethodPost, "/transactions", form))

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.message) {
				t.Errorf("body %q missing %q", rec.Body.String(), tt.message)
			}
			if rec.Header().Get("HX-Trigger") != "" {
				t.Error("rejected form must not trigger a refresh")
			}
		})
	}
}

func TestUpdateTransaction(t *testing.T) {
	srv, service := newTestServer(t)
	created := mustCreate(t, service, sampleTx("Kopi", 20000, core.Expense, "2025-08-10"))

	form := validForm()
	form.Set("title", "Kopi susu")
	rec := do(srv, formRequest(http.MethodPut, "/transactions/"+created.ID, form))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("HX-Trigger"); got != "transaction:updated" {
		t.Errorf("HX-Trigger = %q, want transaction:updated", got)
	}

	list := do(srv, httptest.NewRequest(http.MethodGet, "/ui/transactions", nil))
	if !strings.Contains(list.Body.String(), "Kopi susu") {
		t.Error("updated title missing from the list partial")
	}
}

func TestUpdateUnknownTransactionIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, formRequest(http.MethodPut, "/transactions/nope", validForm()))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Transaksi tidak ditemukan") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv, service := newTestServer(t)
	created := mustCreate(t, service, sampleTx("Kopi", 20000, core.Expense, "2025-08-10"))

	rec := do(srv, httptest.NewRequest(http.MethodDelete, "/transactions/"+created.ID, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("HX-Trigger"); got != "transaction:deleted" {
		t.Errorf("HX-Trigger = %q, want transaction:deleted", got)
	}
	if _, err := service.Get(context.Background(), created.ID); err == nil {
		t.Error("transaction should be gone after delete")
	}
}

func TestDeleteUnknownTransactionIsSuccess(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodDelete, "/transactions/nope", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("HX-Trigger"); got != "transaction:deleted" {
		t.Errorf("HX-Trigger = %q, want transaction:deleted", got)
	}
}

func TestEditFormPrefills(t *testing.T) {
	srv, service := newTestServer(t)
	created := mustCreate(t, service, sampleTx("Kopi", 20000, core.Expense, "2025-08-10"))

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/transactions/"+created.ID+"/edit", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`value="Kopi"`, `value="20000"`, `value="2025-08-10"`} {
		if !strings.Contains(body, want) {
			t.Errorf("edit form missing %s", want)
		}
	}
}

func TestEditUnknownTransactionIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/transactions/nope/edit", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMetricsPartial(t *testing.T) {
	srv, service := newTestServer(t)
	mustCreate(t, service, sampleTx("Gaji", 5000000, core.Income, "2025-08-01"))
	mustCreate(t, service, sampleTx("Kopi", 20000, core.Expense, "2025-08-10"))

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/ui/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Rp5.000.000", "Rp20.000", "Rp4.980.000"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics partial missing %s in %s", want, body)
		}
	}
}

func TestReportFiltersByMonthAndQuery(t *testing.T) {
	srv, service := newTestServer(t)
	mustCreate(t, service, sampleTx("Kopi pagi", 20000, core.Expense, "2025-08-10"))
	mustCreate(t, service, sampleTx("Makan siang", 45000, core.Expense, "2025-08-12"))
	mustCreate(t, service, sampleTx("Kopi sore", 15000, core.Expense, "2025-07-20"))

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/ui/report?month=2025-08&q=kopi", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Kopi pagi") {
		t.Error("expected the August match in the report")
	}
	if strings.Contains(body, "Makan siang") {
		t.Error("query filter should exclude non-matching titles")
	}
	if strings.Contains(body, "Kopi sore") {
		t.Error("month filter should exclude July rows")
	}
}

func TestReportDefaultsToLatestMonth(t *testing.T) {
	srv, service := newTestServer(t)
	mustCreate(t, service, sampleTx("Lama", 10000, core.Expense, "2025-06-01"))
	mustCreate(t, service, sampleTx("Baru", 10000, core.Expense, "2025-08-01"))

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/ui/report", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "Baru") {
		t.Error("default report should show the most recent month")
	}
	if strings.Contains(body, ">Lama<") {
		t.Error("default report should not include older months")
	}
}

func TestCSVExport(t *testing.T) {
	srv, service := newTestServer(t)
	mustCreate(t, service, sampleTx("Makan siang", 45000, core.Expense, "2025-08-12"))

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/export/csv", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want an attachment", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Tanggal,Judul,Kategori,Tipe,Jumlah,Dibuat") {
		t.Errorf("unexpected header row: %s", body)
	}
	if !strings.Contains(body, "12/08/2025,Makan siang") {
		t.Errorf("missing data row: %s", body)
	}
}

func TestAnalyzeWithoutExpenses(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodPost, "/analyze", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Belum ada pengeluaran") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAnalyzeWithoutAnalyzer(t *testing.T) {
	srv, service := newTestServer(t)
	mustCreate(t, service, sampleTx("Kopi", 20000, core.Expense, "2025-08-10"))

	rec := do(srv, httptest.NewRequest(http.MethodPost, "/analyze", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Analisis AI belum dikonfigurasi") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

type stubAnalyzer struct {
	text string
	err  error
}

func (a stubAnalyzer) Analyze(_ context.Context, _ []core.CategoryAmount) (string, error) {
	return a.text, a.err
}

func TestAnalyzeRendersResult(t *testing.T) {
	cfg := applog.DefaultConfig()
	cfg.Handler = slog.NewTextHandler(io.Discard, nil)
	logger := applog.New(cfg)

	service := services.NewTransactionService(storage.NewMemoryStore(), nil, logger)
	srv := NewServer(":0", service, stubAnalyzer{text: "Pengeluaran terbesar ada di kategori makanan."}, logger)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	mustCreate(t, service, sampleTx("Kopi", 20000, core.Expense, "2025-08-10"))

	rec := do(srv, httptest.NewRequest(http.MethodPost, "/analyze", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Pengeluaran terbesar") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/nope") {
		t.Error("expected the missing path in the 404 page")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	health := do(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if health.Code != http.StatusOK || health.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", health.Code, health.Body.String())
	}

	ready := do(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if ready.Code != http.StatusOK || ready.Body.String() != "ready" {
		t.Errorf("readyz = %d %q", ready.Code, ready.Body.String())
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Content-Security-Policy"); !strings.Contains(got, "default-src 'self'") {
		t.Errorf("unexpected CSP: %q", got)
	}
}

func TestMutationsAreRateLimitedReadsAreNot(t *testing.T) {
	srv, _ := newTestServer(t)

	// Exhaust the per-minute mutation budget from one client.
	var last *httptest.ResponseRecorder
	for i := 0; i < 61; i++ {
		last = do(srv, formRequest(http.MethodPost, "/transactions", validForm()))
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after exhausting the window", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry Retry-After")
	}
	if !strings.Contains(last.Body.String(), "Terlalu banyak permintaan") {
		t.Errorf("unexpected body: %s", last.Body.String())
	}

	read := do(srv, httptest.NewRequest(http.MethodGet, "/ui/transactions", nil))
	if read.Code != http.StatusOK {
		t.Errorf("read status = %d, want 200; reads must not be limited", read.Code)
	}
}

func TestListSnapshotRefreshesAfterMutation(t *testing.T) {
	srv, service := newTestServer(t)
	created := mustCreate(t, service, sampleTx("Kopi", 20000, core.Expense, "2025-08-10"))

	// Warm the snapshot cache, then mutate and read again.
	_ = do(srv, httptest.NewRequest(http.MethodGet, "/ui/transactions", nil))
	if err := service.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/ui/transactions", nil))
	if strings.Contains(rec.Body.String(), "Kopi") {
		t.Error("list partial served a stale snapshot after a mutation")
	}
}

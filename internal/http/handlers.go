package http

import (
	"net/http"
	"time"

	"duit/internal/core"
	"duit/internal/export"
)

// typeOption pairs a transaction type value with its display label.
type typeOption struct {
	Value core.Type
	Label string
}

func typeOptions() []typeOption {
	return []typeOption{
		{Value: core.Expense, Label: export.TypeLabel(core.Expense)},
		{Value: core.Income, Label: export.TypeLabel(core.Income)},
	}
}

// handleIndex renders the page shell. The metric cards, charts, list and
// report arrive as htmx partials that reload on transaction events.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Categories []string
		Types      []typeOption
		Today      string
	}{
		Categories: core.Categories,
		Types:      typeOptions(),
		Today:      time.Now().Format("2006-01-02"),
	}
	s.render(w, r, "index.html", data)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderStatus(w, r, http.StatusNotFound, "notfound.html", struct {
		Path string
	}{Path: r.URL.Path})
}

package http

import (
	"errors"
	"net/http"
	"strconv"

	"duit/internal/core"
	applog "duit/internal/log"
	"duit/internal/storage"
)

// Mutations answer with a feedback fragment plus an HX-Trigger event;
// the metric cards, charts, list and report partials all listen for the
// events and reload themselves.

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := parseTransactionForm(r)
	if err != nil {
		writeInlineError(w, http.StatusUnprocessableEntity, formErrorMessage(err))
		return
	}

	created, err := s.service.Create(r.Context(), tx)
	if err != nil {
		s.reqLogger(r).ErrorContext(r.Context(), "create transaction failed",
			applog.FieldOperation, applog.OpCreate,
			applog.FieldError, err.Error())
		writeInlineError(w, http.StatusInternalServerError, "Gagal menyimpan transaksi")
		return
	}

	w.Header().Set("HX-Trigger", "transaction:created")
	writeInlineSuccess(w, "Transaksi tersimpan: "+created.Title+" ("+core.FormatRupiah(created.Amount)+")")
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	tx, err := s.service.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeInlineError(w, http.StatusNotFound, "Transaksi tidak ditemukan")
		return
	}
	if err != nil {
		s.reqLogger(r).ErrorContext(r.Context(), "load transaction failed",
			applog.FieldTransactionID, id,
			applog.FieldError, err.Error())
		writeInlineError(w, http.StatusInternalServerError, "Gagal memuat transaksi")
		return
	}

	data := struct {
		ID         string
		Title      string
		Amount     string
		Category   string
		Type       core.Type
		Date       string
		Categories []string
		Types      []typeOption
	}{
		ID:         tx.ID,
		Title:      tx.Title,
		Amount:     strconv.FormatInt(tx.Amount.Rupiah, 10),
		Category:   tx.Category,
		Type:       tx.Type,
		Date:       tx.Date.Format("2006-01-02"),
		Categories: core.Categories,
		Types:      typeOptions(),
	}
	s.render(w, r, "transaction_edit.html", data)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	tx, err := parseTransactionForm(r)
	if err != nil {
		writeInlineError(w, http.StatusUnprocessableEntity, formErrorMessage(err))
		return
	}

	updated, err := s.service.Update(r.Context(), id, tx)
	if errors.Is(err, storage.ErrNotFound) {
		writeInlineError(w, http.StatusNotFound, "Transaksi tidak ditemukan")
		return
	}
	if err != nil {
		s.reqLogger(r).ErrorContext(r.Context(), "update transaction failed",
			applog.FieldTransactionID, id,
			applog.FieldOperation, applog.OpUpdate,
			applog.FieldError, err.Error())
		writeInlineError(w, http.StatusInternalServerError, "Gagal memperbarui transaksi")
		return
	}

	w.Header().Set("HX-Trigger", "transaction:updated")
	writeInlineSuccess(w, "Transaksi diperbarui: "+updated.Title)
}

// Deleting an id that is already gone counts as success: the end state
// the caller asked for holds either way.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.service.Delete(r.Context(), id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.reqLogger(r).ErrorContext(r.Context(), "delete transaction failed",
			applog.FieldTransactionID, id,
			applog.FieldOperation, applog.OpDelete,
			applog.FieldError, err.Error())
		writeInlineError(w, http.StatusInternalServerError, "Gagal menghapus transaksi")
		return
	}

	w.Header().Set("HX-Trigger", "transaction:deleted")
	w.WriteHeader(http.StatusOK)
}

func formErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyTitle):
		return "Judul tidak boleh kosong"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Jumlah tidak valid"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Kategori harus dipilih"
	case errors.Is(err, core.ErrInvalidType):
		return "Tipe transaksi tidak valid"
	case errors.Is(err, core.ErrInvalidDate):
		return "Tanggal tidak valid"
	default:
		return "Data transaksi tidak valid"
	}
}

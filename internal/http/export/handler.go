package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fleetledger/internal/export"
	"github.com/MrJamesThe3rd/fleetledger/internal/http/respond"
	"github.com/MrJamesThe3rd/fleetledger/internal/metrics"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/statement.{format}", h.statement)
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	format := chi.URLParam(r, "format")
	if !export.Supported(format) {
		http.Error(w, "unsupported format", http.StatusNotFound)
		return
	}

	window, err := respond.DateWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()

	st, err := h.svc.Build(r.Context(), companyID, window)

	var (
		data        []byte
		contentType string
	)

	if err == nil {
		data, contentType, err = export.Render(st, format)
	}

	metrics.ObserveExport(format, time.Since(start), err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(st, format)))

	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write statement", "format", format, "error", err)
	}
}

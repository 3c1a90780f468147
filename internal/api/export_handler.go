package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clipforge/clipforge-agent/internal/export"
)

// exportSelectionHandler writes a completed selection to disk as an EDL,
// JSON, or CSV timeline.
func exportSelectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "selection id required", "BAD_REQUEST")
			return
		}

		var req export.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		req.SelectionID = id
		req.Format = strings.ToLower(req.Format)
		if req.Format == "" {
			req.Format = export.FormatEDL
		}

		resp, err := cfg.ExportService.Export(r.Context(), req)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "EXPORT_FAILED")
			return
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clipforge/clipforge-agent/internal/catalog"
)

// createSelectionHandler enqueues a selection run. Missing parameters fall
// back to configured defaults; validation happens in the catalog service so
// the API and CLI reject the same inputs.
func createSelectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		d := cfg.SelectionDefaults
		sel := &catalog.Selection{
			Policy:          req.Policy,
			ClipLengthSec:   req.ClipLengthSec,
			TargetTotalSec:  req.TargetTotalSec,
			DiversityWeight: req.DiversityWeight,
			MinSceneScore:   req.MinSceneScore,
			MinGapSec:       req.MinGapSec,
			Seed:            req.Seed,
		}
		if sel.Policy == "" {
			sel.Policy = d.Policy
		}
		if sel.ClipLengthSec == 0 {
			sel.ClipLengthSec = d.ClipLengthSec
		}
		if sel.TargetTotalSec == 0 {
			sel.TargetTotalSec = d.TargetTotalSec
		}
		if sel.DiversityWeight == 0 {
			sel.DiversityWeight = d.DiversityWeight
		}
		if sel.MinSceneScore == 0 {
			sel.MinSceneScore = d.MinSceneScore
		}
		if sel.MinGapSec == 0 {
			sel.MinGapSec = d.MinGapSec
		}
		if sel.Seed == 0 {
			sel.Seed = d.Seed
		}

		job, err := cfg.CatalogService.RequestSelection(r.Context(), sel)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusAccepted, SelectionAcceptedResponse{
			SelectionID: sel.ID,
			JobID:       job.ID,
		})
	}
}

func listSelectionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if l := r.URL.Query().Get("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}

		selections, err := cfg.CatalogService.ListSelections(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list selections", "INTERNAL_ERROR")
			return
		}

		resp := SelectionsResponse{Selections: make([]SelectionResponse, len(selections))}
		for i, s := range selections {
			resp.Selections[i] = SelectionToResponse(s)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getSelectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "selection id required", "BAD_REQUEST")
			return
		}

		sel, err := cfg.CatalogService.GetSelection(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if sel == nil {
			WriteError(w, http.StatusNotFound, "selection not found", "NOT_FOUND")
			return
		}

		WriteJSON(w, http.StatusOK, SelectionToResponse(sel))
	}
}

func getSelectionClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "selection id required", "BAD_REQUEST")
			return
		}

		sel, err := cfg.CatalogService.GetSelection(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if sel == nil {
			WriteError(w, http.StatusNotFound, "selection not found", "NOT_FOUND")
			return
		}

		clips, err := cfg.CatalogService.GetSelectionClips(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		resp := SelectionClipsResponse{Clips: make([]SelectionClipResponse, len(clips))}
		for i, c := range clips {
			resp.Clips[i] = SelectionClipToResponse(c)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

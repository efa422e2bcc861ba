package api

import (
	"net/http"
	"time"

	"github.com/konnekonnekonne/Little-Helpers/internal/errs"
	"github.com/konnekonnekonne/Little-Helpers/internal/models"
	"github.com/konnekonnekonne/Little-Helpers/internal/timer"
)

// presetView is a preset plus its derived total duration.
type presetView struct {
	models.TimerPreset
	Total time.Duration `json:"total"`
}

func (s *Server) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	presets := s.Presets.All()
	views := make([]presetView, len(presets))
	for i, p := range presets {
		views[i] = presetView{TimerPreset: p, Total: timer.TotalDuration(p)}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleAddPreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Interval string `json:"interval"` // Go duration string, e.g. "45s"
		Break    string `json:"break"`
		Rounds   int    `json:"rounds"`
	}
	if !decode(w, r, &req) {
		return
	}

	interval, err := time.ParseDuration(req.Interval)
	if err != nil {
		writeError(w, errs.Validationf("invalid interval: %v", err))
		return
	}
	brk := time.Duration(0)
	if req.Break != "" {
		if brk, err = time.ParseDuration(req.Break); err != nil {
			writeError(w, errs.Validationf("invalid break: %v", err))
			return
		}
	}

	preset, err := s.Presets.Add(r.Context(), req.Name, interval, brk, req.Rounds)
	writeMutation(w, http.StatusCreated, preset, err)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	writeMutation(w, http.StatusOK, map[string]string{"deleted": id.String()},
		s.Presets.Delete(r.Context(), id))
}

func (s *Server) handlePresetState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	elapsed, err := time.ParseDuration(r.URL.Query().Get("elapsed"))
	if err != nil {
		writeError(w, errs.Validationf("invalid elapsed: %v", err))
		return
	}

	for _, p := range s.Presets.All() {
		if p.ID == id {
			writeJSON(w, http.StatusOK, timer.StateAt(p, elapsed))
			return
		}
	}
	writeError(w, errs.NotFound("timer preset", id.String()))
}

// Package api exposes the helpers over JSON HTTP. Handlers stay thin:
// decode, call the service, map the error taxonomy onto status codes.
//
// One deliberate quirk: when a mutation succeeds in memory but fails to
// persist, the handler still returns the entity with a success status and
// attaches a Warning header. In-memory state is authoritative; persistence
// failures are surfaced, not rolled back.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/konnekonnekonne/Little-Helpers/internal/auth"
	"github.com/konnekonnekonne/Little-Helpers/internal/clock"
	"github.com/konnekonnekonne/Little-Helpers/internal/convert"
	"github.com/konnekonnekonne/Little-Helpers/internal/countdown"
	"github.com/konnekonnekonne/Little-Helpers/internal/errs"
	"github.com/konnekonnekonne/Little-Helpers/internal/ledger"
	"github.com/konnekonnekonne/Little-Helpers/internal/rates"
	"github.com/konnekonnekonne/Little-Helpers/internal/timer"
	"github.com/konnekonnekonne/Little-Helpers/internal/todo"
)

// Server bundles the helper services behind HTTP handlers.
type Server struct {
	Ledger     *ledger.Ledger
	Todos      *todo.Service
	Countdowns *countdown.Service
	Presets    *timer.Presets
	Converter  *convert.Converter
	Rates      *rates.Service
	Clock      clock.Clock

	// Gate and JWT are nil when the API runs unprotected.
	Gate *auth.Gate
	JWT  *auth.JWTManager
}

// Routes registers all handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/v1/login", s.handleLogin)

	mux.HandleFunc("GET /api/v1/projects", s.handleListProjects)
	mux.HandleFunc("POST /api/v1/projects", s.handleCreateProject)
	mux.HandleFunc("GET /api/v1/projects/{projectID}", s.handleGetProject)
	mux.HandleFunc("DELETE /api/v1/projects/{projectID}", s.handleDeleteProject)
	mux.HandleFunc("POST /api/v1/projects/{projectID}/people", s.handleAddPerson)
	mux.HandleFunc("DELETE /api/v1/projects/{projectID}/people/{personID}", s.handleRemovePerson)
	mux.HandleFunc("POST /api/v1/projects/{projectID}/expenses", s.handleAddExpense)
	mux.HandleFunc("PUT /api/v1/projects/{projectID}/expenses/{expenseID}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/v1/projects/{projectID}/expenses/{expenseID}", s.handleRemoveExpense)
	mux.HandleFunc("GET /api/v1/projects/{projectID}/settlements", s.handleSettlements)
	mux.HandleFunc("GET /api/v1/projects/{projectID}/balances", s.handleBalances)

	mux.HandleFunc("GET /api/v1/todos", s.handleListTodos)
	mux.HandleFunc("POST /api/v1/todos", s.handleAddTodo)
	mux.HandleFunc("POST /api/v1/todos/{id}/toggle", s.handleToggleTodo)
	mux.HandleFunc("POST /api/v1/todos/{id}/flag", s.handleFlagTodo)
	mux.HandleFunc("DELETE /api/v1/todos/{id}", s.handleDeleteTodo)

	mux.HandleFunc("GET /api/v1/countdowns", s.handleListCountdowns)
	mux.HandleFunc("POST /api/v1/countdowns", s.handleAddCountdown)
	mux.HandleFunc("DELETE /api/v1/countdowns/{id}", s.handleDeleteCountdown)
	mux.HandleFunc("POST /api/v1/countdowns/{id}/move", s.handleMoveCountdown)

	mux.HandleFunc("GET /api/v1/units", s.handleListUnits)
	mux.HandleFunc("GET /api/v1/convert", s.handleConvert)
	mux.HandleFunc("POST /api/v1/rates/refresh", s.handleRefreshRates)

	mux.HandleFunc("GET /api/v1/tip", s.handleTip)

	mux.HandleFunc("GET /api/v1/presets", s.handleListPresets)
	mux.HandleFunc("POST /api/v1/presets", s.handleAddPreset)
	mux.HandleFunc("DELETE /api/v1/presets/{id}", s.handleDeletePreset)
	mux.HandleFunc("GET /api/v1/presets/{id}/state", s.handlePresetState)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.Gate == nil || s.JWT == nil {
		writeJSON(w, http.StatusOK, map[string]string{"token": ""})
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := s.Gate.Verify(req.Password); err != nil {
		slog.Warn("Login rejected")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	token, err := s.JWT.Generate()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// pathUUID parses a UUID path segment, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, errs.Validationf("invalid %s: %v", name, err))
		return uuid.Nil, false
	}
	return id, true
}

// decode reads the JSON body into dest, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, errs.Validationf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeMutation responds to a mutating call. A PersistenceError does not
// fail the request: the entity is returned with a Warning header instead.
func writeMutation(w http.ResponseWriter, status int, payload any, err error) {
	var pe *errs.PersistenceError
	switch {
	case err == nil:
	case errors.As(err, &pe):
		w.Header().Set("Warning", fmt.Sprintf("199 - %q", pe.Error()))
	default:
		writeError(w, err)
		return
	}
	writeJSON(w, status, payload)
}

func writeError(w http.ResponseWriter, err error) {
	var (
		ve *errs.ValidationError
		nf *errs.NotFoundError
		ne *errs.NetworkError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &ne):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		slog.Error("Request error", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

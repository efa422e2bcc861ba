package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/konnekonnekonne/Little-Helpers/internal/convert"
	"github.com/konnekonnekonne/Little-Helpers/internal/countdown"
	"github.com/konnekonnekonne/Little-Helpers/internal/errs"
	"github.com/konnekonnekonne/Little-Helpers/internal/models"
	"github.com/konnekonnekonne/Little-Helpers/internal/tip"
	"github.com/konnekonnekonne/Little-Helpers/internal/todo"
)

// --- To-do list ---

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	tab := todo.Tab(r.URL.Query().Get("tab"))
	switch tab {
	case "", todo.TabAll, todo.TabFlagged, todo.TabDone:
	default:
		writeError(w, errs.Validationf("unknown tab %q", tab))
		return
	}
	writeJSON(w, http.StatusOK, s.Todos.Items(tab))
}

func (s *Server) handleAddTodo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if !decode(w, r, &req) {
		return
	}

	item, err := s.Todos.Add(r.Context(), req.Title)
	writeMutation(w, http.StatusCreated, item, err)
}

func (s *Server) handleToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	item, err := s.Todos.Toggle(r.Context(), id)
	writeMutation(w, http.StatusOK, item, err)
}

func (s *Server) handleFlagTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	item, err := s.Todos.Flag(r.Context(), id)
	writeMutation(w, http.StatusOK, item, err)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	writeMutation(w, http.StatusOK, map[string]string{"deleted": id.String()},
		s.Todos.Delete(r.Context(), id))
}

// --- Countdown ---

// countdownView is a countdown event plus its live remaining time.
type countdownView struct {
	models.CountdownEvent
	Remaining countdown.Remaining `json:"remaining"`
	Display   string              `json:"display"`
	Completed bool                `json:"completed"`
}

func (s *Server) handleListCountdowns(w http.ResponseWriter, _ *http.Request) {
	now := s.Clock.Now()
	events := s.Countdowns.Events()
	views := make([]countdownView, len(events))
	for i, e := range events {
		remaining := countdown.Until(e, now)
		views[i] = countdownView{
			CountdownEvent: e,
			Remaining:      remaining,
			Display:        remaining.String(),
			Completed:      countdown.Completed(e, now),
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleAddCountdown(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title         string    `json:"title"`
		Date          time.Time `json:"date"`
		HasCustomTime bool      `json:"hasCustomTime"`
	}
	if !decode(w, r, &req) {
		return
	}

	event, err := s.Countdowns.Add(r.Context(), req.Title, req.Date, req.HasCustomTime)
	writeMutation(w, http.StatusCreated, event, err)
}

func (s *Server) handleDeleteCountdown(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	writeMutation(w, http.StatusOK, map[string]string{"deleted": id.String()},
		s.Countdowns.Delete(r.Context(), id))
}

func (s *Server) handleMoveCountdown(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		To int `json:"to"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeMutation(w, http.StatusOK, map[string]string{"moved": id.String()},
		s.Countdowns.Move(r.Context(), id, req.To))
}

// --- Unit converter ---

func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	kind := convert.Kind(r.URL.Query().Get("kind"))
	units := s.Converter.Units(kind)
	if len(units) == 0 {
		writeError(w, errs.Validationf("unknown unit kind %q", kind))
		return
	}
	writeJSON(w, http.StatusOK, units)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := convert.Kind(q.Get("kind"))
	value, err := strconv.ParseFloat(q.Get("value"), 64)
	if err != nil {
		writeError(w, errs.Validationf("invalid value: %v", err))
		return
	}

	offline := false
	if kind == convert.Currency {
		// Currency conversions use live rates, refreshed only past the TTL.
		table, off, err := s.Rates.Current(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		offline = off
		s.Converter.ApplyRates(table)
	}

	result, err := s.Converter.Convert(kind, q.Get("from"), q.Get("to"), value)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kind":    kind,
		"from":    q.Get("from"),
		"to":      q.Get("to"),
		"value":   value,
		"result":  result,
		"offline": offline,
	})
}

func (s *Server) handleRefreshRates(w http.ResponseWriter, r *http.Request) {
	table, offline, err := s.Rates.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"base":      table.Base,
		"rates":     table.Rates,
		"fetchedAt": table.FetchedAt,
		"offline":   offline,
	})
}

// --- Tip calculator ---

func (s *Server) handleTip(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bill, err := strconv.ParseFloat(q.Get("bill"), 64)
	if err != nil {
		writeError(w, errs.Validationf("invalid bill: %v", err))
		return
	}

	var result tip.Result
	switch {
	case q.Has("percentage"):
		percentage, perr := strconv.ParseFloat(q.Get("percentage"), 64)
		if perr != nil {
			writeError(w, errs.Validationf("invalid percentage: %v", perr))
			return
		}
		result, err = tip.FromPercentage(bill, percentage)
	case q.Has("total"):
		total, terr := strconv.ParseFloat(q.Get("total"), 64)
		if terr != nil {
			writeError(w, errs.Validationf("invalid total: %v", terr))
			return
		}
		result, err = tip.FromTotal(bill, total)
	default:
		err = errs.Validationf("either percentage or total is required")
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Package todo implements the to-do list helper: open/flagged/done views,
// plus a housekeeping sweep that drops items completed more than 24 hours
// ago.
package todo

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/konnekonnekonne/Little-Helpers/internal/clock"
	"github.com/konnekonnekonne/Little-Helpers/internal/errs"
	"github.com/konnekonnekonne/Little-Helpers/internal/models"
	"github.com/konnekonnekonne/Little-Helpers/internal/storage"
)

// retention is how long completed items stay before the sweep removes them.
const retention = 24 * time.Hour

// Tab selects a filtered view of the list.
type Tab string

const (
	TabAll     Tab = "all"     // open items
	TabFlagged Tab = "flagged" // open and flagged
	TabDone    Tab = "done"    // completed items
)

// Service is the mutex-guarded to-do list, persisted through the storage
// port after every mutation.
type Service struct {
	mu    sync.Mutex
	store storage.Store
	clock clock.Clock
	items []models.TodoItem
}

// New creates a Service, loading previously persisted items. Load failures
// other than "never saved" leave the list empty and return a
// PersistenceError; the service is still usable.
func New(store storage.Store, clk clock.Clock) (*Service, error) {
	s := &Service{store: store, clock: clk}
	err := store.Load(context.Background(), storage.KeyTodoItems, &s.items)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.items = nil
		return s, &errs.PersistenceError{Op: "load todo items", Err: err}
	}
	return s, nil
}

// Add creates a new open item.
func (s *Service) Add(ctx context.Context, title string) (models.TodoItem, error) {
	if title == "" {
		return models.TodoItem{}, errs.Validationf("todo title must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.TodoItem{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: s.clock.Now(),
	}
	s.items = append(s.items, item)
	return item, s.persist(ctx)
}

// Toggle flips the completion state. Completing stamps completedAt, which
// starts the 24-hour retention window; reopening clears it.
func (s *Service) Toggle(ctx context.Context, id uuid.UUID) (models.TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		s.items[i].Completed = !s.items[i].Completed
		if s.items[i].Completed {
			now := s.clock.Now()
			s.items[i].CompletedAt = &now
		} else {
			s.items[i].CompletedAt = nil
		}
		return s.items[i], s.persist(ctx)
	}
	return models.TodoItem{}, errs.NotFound("todo item", id.String())
}

// Flag flips the flagged state.
func (s *Service) Flag(ctx context.Context, id uuid.UUID) (models.TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Flagged = !s.items[i].Flagged
			return s.items[i], s.persist(ctx)
		}
	}
	return models.TodoItem{}, errs.NotFound("todo item", id.String())
}

// Delete removes an item by ID.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persist(ctx)
		}
	}
	return errs.NotFound("todo item", id.String())
}

// Items returns the tab's view, newest first.
func (s *Service) Items(tab Tab) []models.TodoItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.TodoItem
	for _, item := range s.items {
		switch tab {
		case TabFlagged:
			if item.Flagged && !item.Completed {
				out = append(out, item)
			}
		case TabDone:
			if item.Completed {
				out = append(out, item)
			}
		default:
			if !item.Completed {
				out = append(out, item)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Sweep removes items whose retention window has passed and returns how
// many were dropped.
func (s *Service) Sweep(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	kept := s.items[:0]
	removed := 0
	for _, item := range s.items {
		if item.CompletedAt != nil && now.Sub(*item.CompletedAt) >= retention {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept

	if removed > 0 {
		slog.Info("Swept completed todo items", "removed", removed)
		if err := s.persist(ctx); err != nil {
			slog.Warn("Failed to persist after sweep", "error", err)
		}
	}
	return removed
}

// RunSweeper sweeps on every tick until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// persist writes the full item list. Callers hold the lock.
func (s *Service) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, storage.KeyTodoItems, s.items); err != nil {
		slog.Warn("Failed to persist todo items, in-memory state kept", "error", err)
		return &errs.PersistenceError{Op: "save todo items", Err: err}
	}
	return nil
}

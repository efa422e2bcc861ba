// Package countdown implements the countdown tracker: dated events whose
// remaining (or elapsed) time is decomposed into days, hours, minutes and
// seconds. Past events keep counting, just negative.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/konnekonnekonne/Little-Helpers/internal/clock"
	"github.com/konnekonnekonne/Little-Helpers/internal/errs"
	"github.com/konnekonnekonne/Little-Helpers/internal/models"
	"github.com/konnekonnekonne/Little-Helpers/internal/storage"
)

// Remaining is the time to (or since) an event, split into components.
type Remaining struct {
	// Negative means the event date has passed.
	Negative bool `json:"negative"`

	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// String formats the components as DD:HH:MM:SS, with a leading minus once
// the event has passed.
func (r Remaining) String() string {
	prefix := ""
	if r.Negative {
		prefix = "-"
	}
	return fmt.Sprintf("%s%02d:%02d:%02d:%02d", prefix, r.Days, r.Hours, r.Minutes, r.Seconds)
}

// ShowSeconds reports whether the display should tick seconds: only within
// the last day.
func (r Remaining) ShowSeconds() bool {
	return r.Days == 0
}

// Until computes the components between now and the event date.
func Until(e models.CountdownEvent, now time.Time) Remaining {
	d := e.Date.Sub(now)
	negative := d < 0
	if negative {
		d = -d
	}

	return Remaining{
		Negative: negative,
		Days:     int(d / (24 * time.Hour)),
		Hours:    int(d / time.Hour % 24),
		Minutes:  int(d / time.Minute % 60),
		Seconds:  int(d / time.Second % 60),
	}
}

// Completed reports whether the event date has been reached.
func Completed(e models.CountdownEvent, now time.Time) bool {
	return !now.Before(e.Date)
}

// Service is the mutex-guarded event list, persisted after every mutation.
// Order is user-controlled via Move.
type Service struct {
	mu     sync.Mutex
	store  storage.Store
	clock  clock.Clock
	events []models.CountdownEvent
}

// New creates a Service, loading previously persisted events. Load failures
// other than "never saved" leave the list empty and return a
// PersistenceError; the service is still usable.
func New(store storage.Store, clk clock.Clock) (*Service, error) {
	s := &Service{store: store, clock: clk}
	err := store.Load(context.Background(), storage.KeyCountdowns, &s.events)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.events = nil
		return s, &errs.PersistenceError{Op: "load countdown events", Err: err}
	}
	return s, nil
}

// Add creates an event. Without a custom time the date is normalized to the
// start of its day.
func (s *Service) Add(ctx context.Context, title string, date time.Time, hasCustomTime bool) (models.CountdownEvent, error) {
	if title == "" {
		return models.CountdownEvent{}, errs.Validationf("countdown title must not be empty")
	}

	if !hasCustomTime {
		y, m, d := date.Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event := models.CountdownEvent{
		ID:            uuid.New(),
		Title:         title,
		Date:          date,
		HasCustomTime: hasCustomTime,
		CreatedAt:     s.clock.Now(),
	}
	s.events = append(s.events, event)
	return event, s.persist(ctx)
}

// Delete removes an event by ID.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return s.persist(ctx)
		}
	}
	return errs.NotFound("countdown event", id.String())
}

// Move reorders the event with the given ID to position to.
func (s *Service) Move(ctx context.Context, id uuid.UUID, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if to < 0 || to >= len(s.events) {
		return errs.Validationf("position %d out of range", to)
	}

	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		event := s.events[i]
		s.events = append(s.events[:i], s.events[i+1:]...)
		s.events = append(s.events[:to], append([]models.CountdownEvent{event}, s.events[to:]...)...)
		return s.persist(ctx)
	}
	return errs.NotFound("countdown event", id.String())
}

// Events returns a snapshot in display order.
func (s *Service) Events() []models.CountdownEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CountdownEvent(nil), s.events...)
}

func (s *Service) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, storage.KeyCountdowns, s.events); err != nil {
		return &errs.PersistenceError{Op: "save countdown events", Err: err}
	}
	return nil
}

// Package timer implements the fitness interval timer: persisted presets
// and pure schedule arithmetic over them. The actual ticking belongs to the
// presentation layer; this package only answers "which phase is active after
// t elapsed".
package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/konnekonnekonne/Little-Helpers/internal/errs"
	"github.com/konnekonnekonne/Little-Helpers/internal/models"
	"github.com/konnekonnekonne/Little-Helpers/internal/storage"
)

// Phase is a stage of a running interval timer.
type Phase string

const (
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
	PhaseDone  Phase = "done"
)

// State describes the timer at a given elapsed offset.
type State struct {
	Phase Phase `json:"phase"`

	// Round is the 1-based work round, capped at the preset's round count.
	Round int `json:"round"`

	// Remaining is the time left in the current phase; zero when done.
	Remaining time.Duration `json:"remaining"`
}

// TotalDuration is the full length of a preset run: rounds of work with a
// break between consecutive rounds (no trailing break).
func TotalDuration(p models.TimerPreset) time.Duration {
	if p.Rounds <= 0 {
		return 0
	}
	return time.Duration(p.Rounds)*p.Interval + time.Duration(p.Rounds-1)*p.Break
}

// StateAt computes the phase, round, and remaining time after elapsed time.
func StateAt(p models.TimerPreset, elapsed time.Duration) State {
	total := TotalDuration(p)
	if elapsed >= total || p.Rounds <= 0 {
		return State{Phase: PhaseDone, Round: p.Rounds}
	}
	if elapsed < 0 {
		elapsed = 0
	}

	cycle := p.Interval + p.Break
	round := int(elapsed/cycle) + 1
	offset := elapsed % cycle

	if offset < p.Interval {
		return State{Phase: PhaseWork, Round: round, Remaining: p.Interval - offset}
	}
	return State{Phase: PhaseBreak, Round: round, Remaining: cycle - offset}
}

// Presets is the mutex-guarded preset collection, persisted after every
// mutation.
type Presets struct {
	mu      sync.Mutex
	store   storage.Store
	presets []models.TimerPreset
}

// NewPresets creates the collection, loading previously persisted presets.
// Load failures other than "never saved" leave it empty and return a
// PersistenceError; the collection is still usable.
func NewPresets(store storage.Store) (*Presets, error) {
	p := &Presets{store: store}
	err := store.Load(context.Background(), storage.KeyPresets, &p.presets)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		p.presets = nil
		return p, &errs.PersistenceError{Op: "load timer presets", Err: err}
	}
	return p, nil
}

// Add validates and stores a new preset.
func (p *Presets) Add(ctx context.Context, name string, interval, brk time.Duration, rounds int) (models.TimerPreset, error) {
	if name == "" {
		return models.TimerPreset{}, errs.Validationf("preset name must not be empty")
	}
	if interval <= 0 {
		return models.TimerPreset{}, errs.Validationf("interval must be positive")
	}
	if brk < 0 {
		return models.TimerPreset{}, errs.Validationf("break must not be negative")
	}
	if rounds <= 0 {
		return models.TimerPreset{}, errs.Validationf("rounds must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	preset := models.TimerPreset{
		ID:       uuid.New(),
		Name:     name,
		Interval: interval,
		Break:    brk,
		Rounds:   rounds,
	}
	p.presets = append(p.presets, preset)
	return preset, p.persist(ctx)
}

// Delete removes a preset by ID.
func (p *Presets) Delete(ctx context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.presets {
		if p.presets[i].ID == id {
			p.presets = append(p.presets[:i], p.presets[i+1:]...)
			return p.persist(ctx)
		}
	}
	return errs.NotFound("timer preset", id.String())
}

// All returns a snapshot of the presets.
func (p *Presets) All() []models.TimerPreset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.TimerPreset(nil), p.presets...)
}

func (p *Presets) persist(ctx context.Context) error {
	if err := p.store.Save(ctx, storage.KeyPresets, p.presets); err != nil {
		return &errs.PersistenceError{Op: "save timer presets", Err: err}
	}
	return nil
}

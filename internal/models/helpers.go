package models

import (
	"time"

	"github.com/google/uuid"
)

// TodoItem is a to-do list entry.
type TodoItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID uuid.UUID `json:"id"`

	// Title is the task text.
	Title string `json:"title"`

	// Completed marks the task as done.
	Completed bool `json:"completed"`

	// Flagged marks the task as important.
	Flagged bool `json:"flagged"`

	// CreatedAt is when the item was added. Items are listed newest first.
	CreatedAt time.Time `json:"createdAt"`

	// CompletedAt is set when the item is completed and cleared when it is
	// reopened. Items completed more than 24 hours ago are swept away.
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CountdownEvent is a dated event counted down to. Once the date passes the
// countdown keeps running negative (time since the event).
type CountdownEvent struct {
	// ID is the unique identifier for the event (UUID format).
	ID uuid.UUID `json:"id"`

	// Title is the event name.
	Title string `json:"title"`

	// Date is the moment counted down to. Normalized to the start of the
	// day unless HasCustomTime is set.
	Date time.Time `json:"date"`

	// HasCustomTime indicates the user picked a time of day, not just a date.
	HasCustomTime bool `json:"hasCustomTime"`

	// CreatedAt is when the event was added.
	CreatedAt time.Time `json:"createdAt"`
}

// TimerPreset is a saved fitness timer configuration.
type TimerPreset struct {
	// ID is the unique identifier for the preset (UUID format).
	ID uuid.UUID `json:"id"`

	// Name is the preset name (e.g., "Tabata").
	Name string `json:"name"`

	// Interval is the work phase duration.
	Interval time.Duration `json:"interval"`

	// Break is the rest phase duration between rounds.
	Break time.Duration `json:"break"`

	// Rounds is the number of work intervals. Always positive.
	Rounds int `json:"rounds"`
}

// RateTable is a set of currency exchange rates relative to a base currency.
type RateTable struct {
	// Base is the currency code the rates are relative to (e.g., "USD").
	Base string `json:"base"`

	// Rates maps currency code to its rate against the base.
	Rates map[string]float64 `json:"rates"`

	// FetchedAt is when the table was retrieved, used for the 24h TTL.
	FetchedAt time.Time `json:"fetchedAt"`
}

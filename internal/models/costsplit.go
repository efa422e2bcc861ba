package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Person is a member of a cost-split project.
// Identity is the ID; two people in one project may share a name.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID uuid.UUID `json:"id"`

	// Name is the display name. Not unique.
	Name string `json:"name"`
}

// Expense is a shared cost paid by one person and split equally among
// its participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	// Immutable once created.
	ID uuid.UUID `json:"id"`

	// Title is the human-readable description (e.g., "Groceries").
	Title string `json:"title"`

	// Amount is the full expense amount. Always positive.
	Amount decimal.Decimal `json:"amount"`

	// PaidBy is the ID of the person who paid.
	// The payer does not have to be a participant.
	PaidBy uuid.UUID `json:"paidBy"`

	// Participants are the IDs of the people the expense is split among.
	// Never empty, no duplicates.
	Participants []uuid.UUID `json:"participants"`

	// Date is when the expense occurred.
	Date time.Time `json:"date"`
}

// HasParticipant reports whether the person is part of the split.
func (e Expense) HasParticipant(personID uuid.UUID) bool {
	for _, id := range e.Participants {
		if id == personID {
			return true
		}
	}
	return false
}

// Involves reports whether the person paid the expense or shares in it.
func (e Expense) Involves(personID uuid.UUID) bool {
	return e.PaidBy == personID || e.HasParticipant(personID)
}

// Project is a named group of people sharing expenses. A project owns its
// people and expenses exclusively; deleting it deletes everything it contains.
type Project struct {
	// ID is the unique identifier for the project (UUID format).
	ID uuid.UUID `json:"id"`

	// Name is the display name (e.g., "Ski Trip 2026").
	Name string `json:"name"`

	// People are the members, in insertion order, unique by ID.
	People []Person `json:"people"`

	// Expenses are the shared costs, in insertion order.
	Expenses []Expense `json:"expenses"`

	// LastAccessed is updated on every mutation, used to order the
	// project list by recency.
	LastAccessed time.Time `json:"lastAccessed"`
}

// PersonByID returns the member with the given ID, if present.
func (p Project) PersonByID(id uuid.UUID) (Person, bool) {
	for _, person := range p.People {
		if person.ID == id {
			return person, true
		}
	}
	return Person{}, false
}

// HasPerson reports whether the ID belongs to a project member.
func (p Project) HasPerson(id uuid.UUID) bool {
	_, ok := p.PersonByID(id)
	return ok
}

// Settlement is a suggested payment that moves outstanding balances toward
// zero. Settlements are derived from the current people and expenses of a
// project; they are recomputed on every mutation and never persisted.
type Settlement struct {
	// From is the debtor making the payment.
	From Person `json:"from"`

	// To is the creditor receiving it.
	To Person `json:"to"`

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal `json:"amount"`
}

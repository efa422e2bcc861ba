// Package ledger owns the cost-split entity graph: projects, their people,
// and their expenses. It guarantees referential consistency and persists
// every mutation through the storage port.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/konnekonnekonne/Little-Helpers/internal/clock"
	"github.com/konnekonnekonne/Little-Helpers/internal/errs"
	"github.com/konnekonnekonne/Little-Helpers/internal/models"
	"github.com/konnekonnekonne/Little-Helpers/internal/settlement"
	"github.com/konnekonnekonne/Little-Helpers/internal/storage"
)

var settlementsComputed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "costsplit_settlements_computed_total",
	Help: "Number of settlement recomputations (cache misses).",
})

// ExpenseInput carries the caller-supplied fields of an expense.
type ExpenseInput struct {
	Title        string
	Amount       decimal.Decimal
	PaidBy       uuid.UUID
	Participants []uuid.UUID

	// Date is optional. Zero means "now" on add and "keep the original
	// date" on update.
	Date time.Time
}

// Ledger is the authoritative, mutex-guarded set of projects.
//
// Every mutation applies to memory first and then persists the full project
// list synchronously. If persistence fails the mutation stays applied and
// the method returns a PersistenceError the caller must surface; the next
// successful mutation writes the current state anyway.
type Ledger struct {
	mu       sync.Mutex
	store    storage.Store
	clock    clock.Clock
	projects []models.Project
	cache    map[uuid.UUID][]models.Settlement
}

// New creates a Ledger backed by store, loading any previously persisted
// projects. A load failure other than "never saved" leaves the ledger empty
// and returns a PersistenceError; the ledger is still usable.
func New(store storage.Store, clk clock.Clock) (*Ledger, error) {
	l := &Ledger{
		store: store,
		clock: clk,
		cache: make(map[uuid.UUID][]models.Settlement),
	}

	err := store.Load(context.Background(), storage.KeyProjects, &l.projects)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		l.projects = nil
		return l, &errs.PersistenceError{Op: "load projects", Err: err}
	}
	return l, nil
}

// CreateProject creates an empty project with lastAccessed set to now.
func (l *Ledger) CreateProject(ctx context.Context, name string) (models.Project, error) {
	if name == "" {
		return models.Project{}, errs.Validationf("project name must not be empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	project := models.Project{
		ID:           uuid.New(),
		Name:         name,
		People:       []models.Person{},
		Expenses:     []models.Expense{},
		LastAccessed: l.clock.Now(),
	}
	l.projects = append(l.projects, project)

	slog.Info("Project created", "project_id", project.ID, "name", name)
	return project, l.persist(ctx)
}

// Projects returns a snapshot of all projects in creation order.
func (l *Ledger) Projects() []models.Project {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Project, len(l.projects))
	for i, p := range l.projects {
		out[i] = copyProject(p)
	}
	return out
}

// Project returns a snapshot of the project with the given ID.
func (l *Ledger) Project(id uuid.UUID) (models.Project, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(id)
	if err != nil {
		return models.Project{}, err
	}
	return copyProject(*p), nil
}

// DeleteProject removes the project and everything it contains.
func (l *Ledger) DeleteProject(ctx context.Context, id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, p := range l.projects {
		if p.ID == id {
			l.projects = append(l.projects[:i], l.projects[i+1:]...)
			delete(l.cache, id)
			slog.Info("Project deleted", "project_id", id)
			return l.persist(ctx)
		}
	}
	return errs.NotFound("project", id.String())
}

// AddPerson appends a new person to the project. Existing balances are
// unaffected: a person with no expenses is absent from every settlement.
func (l *Ledger) AddPerson(ctx context.Context, projectID uuid.UUID, name string) (models.Person, error) {
	if name == "" {
		return models.Person{}, errs.Validationf("person name must not be empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(projectID)
	if err != nil {
		return models.Person{}, err
	}

	person := models.Person{ID: uuid.New(), Name: name}
	p.People = append(p.People, person)
	l.touch(p)

	slog.Info("Person added", "project_id", projectID, "person_id", person.ID, "name", name)
	return person, l.persist(ctx)
}

// RemovePerson removes the person from the project along with every expense
// they paid or shared in. Deleting the whole expense avoids silently
// changing historical amounts for the remaining participants, at the cost
// of losing that expense history.
func (l *Ledger) RemovePerson(ctx context.Context, projectID, personID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(projectID)
	if err != nil {
		return err
	}
	if !p.HasPerson(personID) {
		return errs.NotFound("person", personID.String())
	}

	people := p.People[:0]
	for _, person := range p.People {
		if person.ID != personID {
			people = append(people, person)
		}
	}
	p.People = people

	removed := 0
	expenses := p.Expenses[:0]
	for _, e := range p.Expenses {
		if e.Involves(personID) {
			removed++
			continue
		}
		expenses = append(expenses, e)
	}
	p.Expenses = expenses
	l.touch(p)

	slog.Info("Person removed", "project_id", projectID, "person_id", personID, "expenses_removed", removed)
	return l.persist(ctx)
}

// AddExpense validates and appends a new expense.
func (l *Ledger) AddExpense(ctx context.Context, projectID uuid.UUID, in ExpenseInput) (models.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(projectID)
	if err != nil {
		return models.Expense{}, err
	}
	if err := validateExpense(p, in); err != nil {
		return models.Expense{}, err
	}

	date := in.Date
	if date.IsZero() {
		date = l.clock.Now()
	}
	expense := models.Expense{
		ID:           uuid.New(),
		Title:        in.Title,
		Amount:       in.Amount,
		PaidBy:       in.PaidBy,
		Participants: append([]uuid.UUID(nil), in.Participants...),
		Date:         date,
	}
	p.Expenses = append(p.Expenses, expense)
	l.touch(p)

	slog.Info("Expense added",
		"project_id", projectID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"participants", len(expense.Participants),
	)
	return expense, l.persist(ctx)
}

// UpdateExpense replaces the expense's fields in place. The ID is preserved
// and the original date is kept unless the input carries one. Validation is
// the same as for AddExpense.
func (l *Ledger) UpdateExpense(ctx context.Context, projectID, expenseID uuid.UUID, in ExpenseInput) (models.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(projectID)
	if err != nil {
		return models.Expense{}, err
	}
	if err := validateExpense(p, in); err != nil {
		return models.Expense{}, err
	}

	for i, e := range p.Expenses {
		if e.ID != expenseID {
			continue
		}
		date := in.Date
		if date.IsZero() {
			date = e.Date
		}
		p.Expenses[i] = models.Expense{
			ID:           e.ID,
			Title:        in.Title,
			Amount:       in.Amount,
			PaidBy:       in.PaidBy,
			Participants: append([]uuid.UUID(nil), in.Participants...),
			Date:         date,
		}
		l.touch(p)

		slog.Info("Expense updated", "project_id", projectID, "expense_id", expenseID)
		return p.Expenses[i], l.persist(ctx)
	}
	return models.Expense{}, errs.NotFound("expense", expenseID.String())
}

// RemoveExpense removes the expense by ID.
func (l *Ledger) RemoveExpense(ctx context.Context, projectID, expenseID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(projectID)
	if err != nil {
		return err
	}

	for i, e := range p.Expenses {
		if e.ID == expenseID {
			p.Expenses = append(p.Expenses[:i], p.Expenses[i+1:]...)
			l.touch(p)
			slog.Info("Expense removed", "project_id", projectID, "expense_id", expenseID)
			return l.persist(ctx)
		}
	}
	return errs.NotFound("expense", expenseID.String())
}

// Settlements returns the payment plan for the project's current state.
// The result is cached until the next balance-affecting mutation, so
// repeated calls on an unchanged ledger return the identical list.
func (l *Ledger) Settlements(projectID uuid.UUID) ([]models.Settlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(projectID)
	if err != nil {
		return nil, err
	}

	if cached, ok := l.cache[projectID]; ok {
		return append([]models.Settlement(nil), cached...), nil
	}

	settlementsComputed.Inc()
	result, err := settlement.Compute(p.People, p.Expenses)
	if err != nil {
		return nil, err
	}
	l.cache[projectID] = result
	// Callers get a copy, same as Projects: the cache must not be reachable
	// through a returned slice.
	return append([]models.Settlement(nil), result...), nil
}

// Balances returns the per-person net positions for the project.
func (l *Ledger) Balances(projectID uuid.UUID) ([]settlement.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(projectID)
	if err != nil {
		return nil, err
	}
	return settlement.Balances(p.People, p.Expenses)
}

// find returns a pointer into the projects slice. Callers hold the lock.
func (l *Ledger) find(id uuid.UUID) (*models.Project, error) {
	for i := range l.projects {
		if l.projects[i].ID == id {
			return &l.projects[i], nil
		}
	}
	return nil, errs.NotFound("project", id.String())
}

// touch stamps lastAccessed and invalidates the settlement cache.
// Callers hold the lock.
func (l *Ledger) touch(p *models.Project) {
	p.LastAccessed = l.clock.Now()
	delete(l.cache, p.ID)
}

// persist writes the full project list. Callers hold the lock.
func (l *Ledger) persist(ctx context.Context) error {
	if err := l.store.Save(ctx, storage.KeyProjects, l.projects); err != nil {
		slog.Warn("Failed to persist projects, in-memory state kept", "error", err)
		return &errs.PersistenceError{Op: "save projects", Err: err}
	}
	return nil
}

func validateExpense(p *models.Project, in ExpenseInput) error {
	if in.Title == "" {
		return errs.Validationf("expense title must not be empty")
	}
	if in.Amount.Sign() <= 0 {
		return errs.Validationf("expense amount must be positive, got %s", in.Amount)
	}
	if len(in.Participants) == 0 {
		return errs.Validationf("expense must have at least one participant")
	}
	if !p.HasPerson(in.PaidBy) {
		return errs.Validationf("payer %s is not a project member", in.PaidBy)
	}
	seen := make(map[uuid.UUID]bool, len(in.Participants))
	for _, id := range in.Participants {
		if seen[id] {
			return errs.Validationf("duplicate participant %s", id)
		}
		seen[id] = true
		if !p.HasPerson(id) {
			return errs.Validationf("participant %s is not a project member", id)
		}
	}
	return nil
}

func copyProject(p models.Project) models.Project {
	out := p
	out.People = append([]models.Person(nil), p.People...)
	out.Expenses = make([]models.Expense, len(p.Expenses))
	for i, e := range p.Expenses {
		e.Participants = append([]uuid.UUID(nil), e.Participants...)
		out.Expenses[i] = e
	}
	return out
}

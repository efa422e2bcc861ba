package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/konnekonnekonne/Little-Helpers/internal/clock"
	"github.com/konnekonnekonne/Little-Helpers/internal/errs"
	"github.com/konnekonnekonne/Little-Helpers/internal/models"
	"github.com/konnekonnekonne/Little-Helpers/internal/storage"
)

func newTestLedger(t *testing.T) (*Ledger, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l, err := New(storage.NewMemory(), clk)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return l, clk
}

func seedProject(t *testing.T, l *Ledger, names ...string) (models.Project, []models.Person) {
	t.Helper()
	ctx := context.Background()
	project, err := l.CreateProject(ctx, "Trip")
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	people := make([]models.Person, len(names))
	for i, name := range names {
		p, err := l.AddPerson(ctx, project.ID, name)
		if err != nil {
			t.Fatalf("AddPerson(%s) failed: %v", name, err)
		}
		people[i] = p
	}
	return project, people
}

func TestProjectLifecycle(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	project, err := l.CreateProject(ctx, "Sailing 2025")
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if project.Name != "Sailing 2025" {
		t.Errorf("name = %q", project.Name)
	}
	if project.People == nil || project.Expenses == nil {
		t.Error("new project should have non-nil empty slices")
	}

	got, err := l.Project(project.ID)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if got.ID != project.ID {
		t.Errorf("fetched wrong project: %s", got.ID)
	}

	if all := l.Projects(); len(all) != 1 {
		t.Errorf("expected 1 project, got %d", len(all))
	}

	if err := l.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	if _, err := l.Project(project.ID); err == nil {
		t.Error("expected NotFound after delete")
	}
}

func TestCreateProjectValidation(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.CreateProject(context.Background(), "")
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAddExpense(t *testing.T) {
	l, clk := newTestLedger(t)
	ctx := context.Background()
	project, people := seedProject(t, l, "Alice", "Bob")

	expense, err := l.AddExpense(ctx, project.ID, ExpenseInput{
		Title:        "Dinner",
		Amount:       decimal.NewFromInt(100),
		PaidBy:       people[0].ID,
		Participants: []uuid.UUID{people[0].ID, people[1].ID},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if !expense.Date.Equal(clk.Now()) {
		t.Errorf("zero input date should default to now, got %v", expense.Date)
	}

	got, err := l.Project(project.ID)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(got.Expenses) != 1 || got.Expenses[0].ID != expense.ID {
		t.Errorf("expense not stored: %+v", got.Expenses)
	}
}

func TestExpenseValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	project, people := seedProject(t, l, "Alice", "Bob")
	alice, bob := people[0], people[1]
	outsider := uuid.New()

	valid := ExpenseInput{
		Title:        "Dinner",
		Amount:       decimal.NewFromInt(100),
		PaidBy:       alice.ID,
		Participants: []uuid.UUID{alice.ID, bob.ID},
	}

	tests := []struct {
		name   string
		mutate func(in *ExpenseInput)
	}{
		{"empty title", func(in *ExpenseInput) { in.Title = "" }},
		{"zero amount", func(in *ExpenseInput) { in.Amount = decimal.Zero }},
		{"negative amount", func(in *ExpenseInput) { in.Amount = decimal.NewFromInt(-5) }},
		{"no participants", func(in *ExpenseInput) { in.Participants = nil }},
		{"unknown payer", func(in *ExpenseInput) { in.PaidBy = outsider }},
		{"unknown participant", func(in *ExpenseInput) { in.Participants = []uuid.UUID{alice.ID, outsider} }},
		{"duplicate participant", func(in *ExpenseInput) { in.Participants = []uuid.UUID{alice.ID, alice.ID} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			in.Participants = append([]uuid.UUID(nil), valid.Participants...)
			tt.mutate(&in)

			_, err := l.AddExpense(ctx, project.ID, in)
			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	// Failed mutations must not leave partial state behind.
	got, err := l.Project(project.ID)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(got.Expenses) != 0 {
		t.Errorf("rejected expenses leaked into the project: %d", len(got.Expenses))
	}
}

func TestUpdateExpense(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	project, people := seedProject(t, l, "Alice", "Bob")

	original, err := l.AddExpense(ctx, project.ID, ExpenseInput{
		Title:        "Dinner",
		Amount:       decimal.NewFromInt(100),
		PaidBy:       people[0].ID,
		Participants: []uuid.UUID{people[0].ID, people[1].ID},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	updated, err := l.UpdateExpense(ctx, project.ID, original.ID, ExpenseInput{
		Title:        "Dinner and drinks",
		Amount:       decimal.NewFromInt(140),
		PaidBy:       people[1].ID,
		Participants: []uuid.UUID{people[0].ID, people[1].ID},
	})
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if updated.ID != original.ID {
		t.Error("update must preserve the expense ID")
	}
	if !updated.Date.Equal(original.Date) {
		t.Error("update without a date must keep the original date")
	}
	if !updated.Amount.Equal(decimal.NewFromInt(140)) || updated.PaidBy != people[1].ID {
		t.Errorf("fields not updated: %+v", updated)
	}

	_, err = l.UpdateExpense(ctx, project.ID, uuid.New(), ExpenseInput{
		Title:        "Ghost",
		Amount:       decimal.NewFromInt(1),
		PaidBy:       people[0].ID,
		Participants: []uuid.UUID{people[0].ID},
	})
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRemovePersonCascades(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	project, people := seedProject(t, l, "Alice", "Bob", "Charlie")
	alice, bob, charlie := people[0], people[1], people[2]

	add := func(title string, amt int64, paidBy models.Person, parts ...models.Person) models.Expense {
		t.Helper()
		ids := make([]uuid.UUID, len(parts))
		for i, p := range parts {
			ids[i] = p.ID
		}
		e, err := l.AddExpense(ctx, project.ID, ExpenseInput{
			Title:        title,
			Amount:       decimal.NewFromInt(amt),
			PaidBy:       paidBy.ID,
			Participants: ids,
		})
		if err != nil {
			t.Fatalf("AddExpense(%s) failed: %v", title, err)
		}
		return e
	}

	add("Hotel", 90, alice, alice, bob, charlie) // involves Bob: goes
	add("Fuel", 30, bob, alice, charlie)         // paid by Bob: goes
	kept := add("Museum", 20, alice, alice, charlie)

	if err := l.RemovePerson(ctx, project.ID, bob.ID); err != nil {
		t.Fatalf("RemovePerson failed: %v", err)
	}

	got, err := l.Project(project.ID)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(got.People) != 2 {
		t.Errorf("expected 2 people left, got %d", len(got.People))
	}
	if len(got.Expenses) != 1 || got.Expenses[0].ID != kept.ID {
		t.Errorf("expected only %q to survive, got %+v", kept.Title, got.Expenses)
	}

	// Remaining state still settles cleanly: Charlie owes Alice 10.
	settlements, err := l.Settlements(project.ID)
	if err != nil {
		t.Fatalf("Settlements failed: %v", err)
	}
	if len(settlements) != 1 {
		t.Fatalf("expected 1 settlement, got %d", len(settlements))
	}
	s := settlements[0]
	if s.From.ID != charlie.ID || s.To.ID != alice.ID || !s.Amount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected Charlie->Alice 10, got %s->%s %s", s.From.Name, s.To.Name, s.Amount)
	}

	err = l.RemovePerson(ctx, project.ID, bob.ID)
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError on second removal, got %v", err)
	}
}

func TestSettlementsCached(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	project, people := seedProject(t, l, "Alice", "Bob")

	_, err := l.AddExpense(ctx, project.ID, ExpenseInput{
		Title:        "Dinner",
		Amount:       decimal.NewFromInt(100),
		PaidBy:       people[0].ID,
		Participants: []uuid.UUID{people[0].ID, people[1].ID},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	first, err := l.Settlements(project.ID)
	if err != nil {
		t.Fatalf("Settlements failed: %v", err)
	}
	second, err := l.Settlements(project.ID)
	if err != nil {
		t.Fatalf("Settlements failed: %v", err)
	}
	if len(first) != 1 || len(second) != 1 || !first[0].Amount.Equal(second[0].Amount) {
		t.Error("repeated calls without mutation must return the same plan")
	}

	// A mutation invalidates the cache and changes the plan.
	_, err = l.AddExpense(ctx, project.ID, ExpenseInput{
		Title:        "Breakfast",
		Amount:       decimal.NewFromInt(20),
		PaidBy:       people[1].ID,
		Participants: []uuid.UUID{people[0].ID, people[1].ID},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	third, err := l.Settlements(project.ID)
	if err != nil {
		t.Fatalf("Settlements failed: %v", err)
	}
	if !third[0].Amount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected refreshed plan with 40, got %s", third[0].Amount)
	}
}

func TestSettlementsCacheIsolated(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	project, people := seedProject(t, l, "Alice", "Bob")

	_, err := l.AddExpense(ctx, project.ID, ExpenseInput{
		Title:        "Dinner",
		Amount:       decimal.NewFromInt(100),
		PaidBy:       people[0].ID,
		Participants: []uuid.UUID{people[0].ID, people[1].ID},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	first, err := l.Settlements(project.ID)
	if err != nil {
		t.Fatalf("Settlements failed: %v", err)
	}
	first[0].Amount = decimal.NewFromInt(9999)
	first[0].From.Name = "Mallory"

	again, err := l.Settlements(project.ID)
	if err != nil {
		t.Fatalf("Settlements failed: %v", err)
	}
	if !again[0].Amount.Equal(decimal.NewFromInt(50)) || again[0].From.Name != "Bob" {
		t.Error("mutating a returned plan leaked into the cache")
	}
}

func TestPersistedAcrossRestart(t *testing.T) {
	store := storage.NewMemory()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	l, err := New(store, clk)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	project, err := l.CreateProject(ctx, "Trip")
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	alice, err := l.AddPerson(ctx, project.ID, "Alice")
	if err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}
	_, err = l.AddExpense(ctx, project.ID, ExpenseInput{
		Title:        "Dinner",
		Amount:       decimal.RequireFromString("33.33"),
		PaidBy:       alice.ID,
		Participants: []uuid.UUID{alice.ID},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	reloaded, err := New(store, clk)
	if err != nil {
		t.Fatalf("New after restart failed: %v", err)
	}
	got, err := reloaded.Project(project.ID)
	if err != nil {
		t.Fatalf("Project after restart failed: %v", err)
	}
	if len(got.Expenses) != 1 || !got.Expenses[0].Amount.Equal(decimal.RequireFromString("33.33")) {
		t.Errorf("amount did not round-trip: %+v", got.Expenses)
	}
}

// failingStore succeeds on load and fails every save.
type failingStore struct {
	saveErr error
}

func (f *failingStore) Save(context.Context, string, any) error { return f.saveErr }
func (f *failingStore) Load(context.Context, string, any) error { return storage.ErrNotFound }
func (f *failingStore) Close() error                            { return nil }

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l, err := New(&failingStore{saveErr: errors.New("disk full")}, clk)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	project, err := l.CreateProject(context.Background(), "Trip")
	var pe *errs.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}

	// The mutation stays applied despite the failed write.
	got, err := l.Project(project.ID)
	if err != nil {
		t.Fatalf("project lost after failed save: %v", err)
	}
	if got.Name != "Trip" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	l, _ := newTestLedger(t)
	project, _ := seedProject(t, l, "Alice")

	snapshot := l.Projects()[0]
	snapshot.People[0].Name = "Mallory"
	snapshot.Name = "Hijacked"

	got, err := l.Project(project.ID)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if got.People[0].Name != "Alice" {
		t.Error("mutating a snapshot leaked into the ledger")
	}
}

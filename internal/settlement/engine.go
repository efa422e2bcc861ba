// Package settlement computes how a group settles its shared expenses with
// as few payments as possible (the minimum cash flow problem).
//
// The engine is pure: it takes an immutable snapshot of people and expenses,
// has no side effects, and is deterministic for the same input.
package settlement

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/konnekonnekonne/Little-Helpers/internal/errs"
	"github.com/konnekonnekonne/Little-Helpers/internal/models"
)

// epsilon is the threshold below which a balance counts as settled.
// Amounts are exact decimals, but equal shares (10 split 3 ways) are still
// inexact at finite division precision, so a tiny residue per person is
// expected and dropped.
var epsilon = decimal.New(1, -9) // 1e-9

// Balance is one person's net position across all expenses.
type Balance struct {
	// Person is the project member the balance belongs to.
	Person models.Person `json:"person"`

	// TotalPaid is the sum of expense amounts this person paid.
	TotalPaid decimal.Decimal `json:"totalPaid"`

	// TotalOwed is the sum of this person's shares across all expenses.
	TotalOwed decimal.Decimal `json:"totalOwed"`

	// Net is TotalPaid minus TotalOwed.
	// Positive = owed money, negative = owes money.
	Net decimal.Decimal `json:"net"`
}

// Balances computes the net position of every person, in people order.
// The balances of a project always sum to zero (up to division residue).
//
// It returns a ValidationError if an expense has no participants or
// references a person that is not in people.
func Balances(people []models.Person, expenses []models.Expense) ([]Balance, error) {
	index := make(map[uuid.UUID]int, len(people))
	for i, p := range people {
		if _, dup := index[p.ID]; !dup {
			index[p.ID] = i
		}
	}

	paid := make([]decimal.Decimal, len(people))
	owed := make([]decimal.Decimal, len(people))

	for _, e := range expenses {
		if len(e.Participants) == 0 {
			return nil, errs.Validationf("expense %q has no participants", e.Title)
		}
		payer, ok := index[e.PaidBy]
		if !ok {
			return nil, errs.Validationf("expense %q paid by unknown person %s", e.Title, e.PaidBy)
		}

		share := e.Amount.Div(decimal.NewFromInt(int64(len(e.Participants))))
		paid[payer] = paid[payer].Add(e.Amount)
		for _, id := range e.Participants {
			i, ok := index[id]
			if !ok {
				return nil, errs.Validationf("expense %q split with unknown person %s", e.Title, id)
			}
			owed[i] = owed[i].Add(share)
		}
	}

	balances := make([]Balance, len(people))
	for i, p := range people {
		balances[i] = Balance{
			Person:    p,
			TotalPaid: paid[i],
			TotalOwed: owed[i],
			Net:       paid[i].Sub(owed[i]),
		}
	}
	return balances, nil
}

// side is one person's remaining amount during greedy matching.
type side struct {
	person    models.Person
	remaining decimal.Decimal // positive magnitude
}

// Compute reduces the group's balances to an ordered list of payments.
//
// Greedy matching: the largest outstanding debtor pays the largest
// outstanding creditor the smaller of the two remaining amounts, both sides
// shrink, and whichever reaches zero drops out. Ties on magnitude go to
// whoever appears first in people, which makes the output stable for
// identical input.
//
// The result satisfies:
//   - every amount is positive and no one pays themselves
//   - at most len(debtors)+len(creditors)-1 payments are emitted
//   - the payments sum to the total positive balance, within epsilon
func Compute(people []models.Person, expenses []models.Expense) ([]models.Settlement, error) {
	balances, err := Balances(people, expenses)
	if err != nil {
		return nil, err
	}

	// Partition in people order so the tie-break is the list order.
	var debtors, creditors []side
	for _, b := range balances {
		switch {
		case b.Net.Abs().LessThan(epsilon):
			// settled
		case b.Net.Sign() < 0:
			debtors = append(debtors, side{person: b.Person, remaining: b.Net.Neg()})
		default:
			creditors = append(creditors, side{person: b.Person, remaining: b.Net})
		}
	}

	settlements := []models.Settlement{}
	for len(debtors) > 0 && len(creditors) > 0 {
		di := largest(debtors)
		ci := largest(creditors)

		amount := decimal.Min(debtors[di].remaining, creditors[ci].remaining)
		settlements = append(settlements, models.Settlement{
			From:   debtors[di].person,
			To:     creditors[ci].person,
			Amount: amount,
		})

		debtors[di].remaining = debtors[di].remaining.Sub(amount)
		creditors[ci].remaining = creditors[ci].remaining.Sub(amount)
		if debtors[di].remaining.LessThan(epsilon) {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
		if creditors[ci].remaining.LessThan(epsilon) {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
	}

	// Anything still outstanding means the matching loop failed, which is a
	// bug worth surfacing, not hiding.
	for _, s := range append(debtors, creditors...) {
		if !s.remaining.LessThan(epsilon) {
			return nil, fmt.Errorf("unresolved balance of %s for %s", s.remaining, s.person.Name)
		}
	}

	return settlements, nil
}

// largest returns the index of the side with the biggest remaining amount.
// Earlier entries win ties.
func largest(sides []side) int {
	best := 0
	for i := 1; i < len(sides); i++ {
		if sides[i].remaining.GreaterThan(sides[best].remaining) {
			best = i
		}
	}
	return best
}

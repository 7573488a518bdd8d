package schedule

import "github.com/shopspring/decimal"

// State is the settlement state of one week. States are assigned by
// classify in a fixed precedence order, so two states can hold numerically
// for the same week while only the first one is reported.
type State string

const (
	StateSettled          State = "SETTLED"
	StateAwaitingApproval State = "AWAITING_APPROVAL"
	StatePartiallyCovered State = "PARTIALLY_COVERED"
	StateOverdue          State = "OVERDUE"
	StateUpcoming         State = "UPCOMING"
)

func (s State) String() string {
	return string(s)
}

// classify evaluates the cascade for a week whose cumulative due is due and
// whose own amount is amount. past reports whether the week's date is
// strictly before now.
func classify(approved, pending, due, amount decimal.Decimal, past bool) State {
	switch {
	case approved.GreaterThanOrEqual(due):
		return StateSettled
	case approved.Add(pending).GreaterThanOrEqual(due):
		return StateAwaitingApproval
	case approved.GreaterThan(due.Sub(amount)):
		// Some approved money lands inside this week's band; approved < due
		// holds here, the first case failed.
		return StatePartiallyCovered
	case past:
		return StateOverdue
	default:
		return StateUpcoming
	}
}

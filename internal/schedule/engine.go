package schedule

import (
	"errors"
	"time"

	"github.com/andymarkow/pandero/internal/domain/members"
	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/shopspring/decimal"
)

var half = decimal.New(5, -1)

// Outcome tells a resolved schedule apart from the degraded results.
type Outcome string

const (
	OutcomeResolved     Outcome = "RESOLVED"
	OutcomeNoGroup      Outcome = "NO_GROUP"
	OutcomeGroupDeleted Outcome = "GROUP_DELETED"
)

// Week is one row of a member's schedule.
type Week struct {
	Number int
	Date   time.Time
	Amount decimal.Decimal
	State  State
}

type Schedule struct {
	Outcome   Outcome
	GroupName string
	Share     members.Share
	Weeks     []Week
}

// OverdueWeeks counts weeks in the overdue state.
func (s Schedule) OverdueWeeks() int {
	n := 0

	for _, w := range s.Weeks {
		if w.State == StateOverdue {
			n++
		}
	}

	return n
}

// SettledAmount sums the amounts of settled weeks.
func (s Schedule) SettledAmount() decimal.Decimal {
	total := decimal.Zero

	for _, w := range s.Weeks {
		if w.State == StateSettled {
			total = total.Add(w.Amount)
		}
	}

	return total
}

// Compute builds the weekly schedule of memberID against its group.
//
// All of the member's payments into the group form one pool: approved and
// pending amounts are summed and compared with the cumulative theoretical due,
// so the earliest weeks settle first whatever week a payment was labelled
// with. Rejected payments and unparsable amounts do not count.
func Compute(memberID string, now time.Time, snap *Snapshot) Schedule {
	membership, ok := snap.membership(memberID)
	if !ok {
		return Schedule{Outcome: OutcomeNoGroup, Share: members.ShareFull}
	}

	share := membership.Share
	if share != members.ShareHalf {
		share = members.ShareFull
	}

	sched := Schedule{
		GroupName: membership.GroupName,
		Share:     share,
	}

	cfg, err := Resolve(membership.GroupName, snap.Groups, now)
	if errors.Is(err, ErrGroupNotFound) {
		sched.Outcome = OutcomeGroupDeleted

		return sched
	}

	base, premium := cfg.BaseAmount, cfg.PremiumAmount
	if share == members.ShareHalf {
		base, premium = base.Mul(half), premium.Mul(half)
	}

	turn := turnOrZero(membership.Turn)
	approved, pending := poolTotals(memberID, membership.GroupName, snap.Payments)

	sched.Outcome = OutcomeResolved
	sched.Weeks = make([]Week, 0, cfg.DurationWeeks)

	due := decimal.Zero

	for i := 0; i < cfg.DurationWeeks; i++ {
		number := i + 1
		date := cfg.StartDate.AddDate(0, 0, 7*i)

		amount := base
		if turn > 0 && number > turn {
			amount = premium
		}

		due = due.Add(amount)

		sched.Weeks = append(sched.Weeks, Week{
			Number: number,
			Date:   date,
			Amount: amount,
			State:  classify(approved, pending, due, amount, date.Before(now)),
		})
	}

	return sched
}

func poolTotals(memberID, groupName string, pmts []*payments.Payment) (approved, pending decimal.Decimal) {
	approved, pending = decimal.Zero, decimal.Zero

	for _, p := range pmts {
		if p.MemberID != memberID || p.GroupName != groupName {
			continue
		}

		switch p.Status {
		case payments.StatusApproved:
			approved = approved.Add(amountOrZero(p.Amount))
		case payments.StatusPending:
			pending = pending.Add(amountOrZero(p.Amount))
		}
	}

	return approved, pending
}

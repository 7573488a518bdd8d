package schedule

import (
	"time"

	"github.com/andymarkow/pandero/internal/domain/payments"
)

// GroupSummary is the admin overview of a group.
type GroupSummary struct {
	Name          string
	Config        Config
	EndDate       time.Time
	CurrentWeek   int
	Members       int
	PendingReview int
}

// Summarize reports where groupName stands at now. The current week is
// counted from the start date and clamped to the group's duration.
func Summarize(groupName string, now time.Time, snap *Snapshot) (GroupSummary, error) {
	cfg, err := Resolve(groupName, snap.Groups, now)
	if err != nil {
		return GroupSummary{}, err
	}

	days := calendarDays(cfg.StartDate, now)

	current := max(0, days/7) + 1
	if current > cfg.DurationWeeks {
		current = cfg.DurationWeeks
	}

	summary := GroupSummary{
		Name:        groupName,
		Config:      cfg,
		EndDate:     cfg.EndDate(),
		CurrentWeek: current,
	}

	for _, m := range snap.Memberships {
		if m.GroupName == groupName {
			summary.Members++
		}
	}

	for _, p := range snap.Payments {
		if p.GroupName == groupName && p.Status == payments.StatusPending {
			summary.PendingReview++
		}
	}

	return summary, nil
}

// calendarDays counts the days from from to to by their calendar dates, so
// a daylight saving change in between does not shorten the count.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()

	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)

	return int(end.Sub(start).Hours() / 24)
}

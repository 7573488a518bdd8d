package schedule

import (
	"errors"
	"time"

	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/shopspring/decimal"
)

var ErrGroupNotFound = errors.New("group not found")

// Config holds a group's parameters after coercion.
type Config struct {
	StartDate     time.Time
	DurationWeeks int
	BaseAmount    decimal.Decimal
	PremiumAmount decimal.Decimal
}

// EndDate is the date one week after the last scheduled week.
func (c Config) EndDate() time.Time {
	return c.StartDate.AddDate(0, 0, 7*c.DurationWeeks)
}

// Resolve looks up groupName and coerces its fields. Every malformed field is
// replaced by its default independently: the start date by the calendar date
// of now, duration by 25 weeks and the amounts by 400 and 430.
func Resolve(groupName string, grps []*groups.Group, now time.Time) (Config, error) {
	for _, grp := range grps {
		if grp.Name != groupName {
			continue
		}

		return Config{
			StartDate:     dateOr(grp.StartDate, now),
			DurationWeeks: durationOr(grp.DurationWeeks, DefaultDurationWeeks),
			BaseAmount:    positiveDecimalOr(grp.BaseAmount, DefaultBaseAmount),
			PremiumAmount: positiveDecimalOr(grp.PremiumAmount, DefaultPremiumAmount),
		}, nil
	}

	return Config{}, ErrGroupNotFound
}

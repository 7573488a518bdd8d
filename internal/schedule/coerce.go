package schedule

import (
	"math"
	"strings"
	"time"

	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/shopspring/decimal"
)

const DefaultDurationWeeks = 25

var (
	DefaultBaseAmount    = decimal.NewFromInt(400)
	DefaultPremiumAmount = decimal.NewFromInt(430)
)

// parseDate reads the date part of a "YYYY-MM-DD[ hh:mm:ss]" field in loc.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}

	t, err := time.ParseInLocation(groups.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

// maxInt bounds parseInt; larger values are malformed, not wrapped.
var maxInt = decimal.NewFromInt(math.MaxInt32)

// parseInt truncates numeric text to an integer so that "25.0" reads as 25.
func parseInt(s string) (int, bool) {
	d, ok := parseDecimal(s)
	if !ok || d.Abs().GreaterThan(maxInt) {
		return 0, false
	}

	return int(d.IntPart()), true
}

func dateOr(s string, fallback time.Time) time.Time {
	if t, ok := parseDate(s, fallback.Location()); ok {
		return t
	}

	return truncateDay(fallback)
}

// durationOr accepts durations a group can be created with.
func durationOr(s string, fallback int) int {
	if n, ok := parseInt(s); ok && n >= groups.MinDurationWeeks && n <= groups.MaxDurationWeeks {
		return n
	}

	return fallback
}

func positiveDecimalOr(s string, fallback decimal.Decimal) decimal.Decimal {
	if d, ok := parseDecimal(s); ok && d.IsPositive() {
		return d
	}

	return fallback
}

// amountOrZero is used for payment amounts: a corrupt row adds nothing.
func amountOrZero(s string) decimal.Decimal {
	d, _ := parseDecimal(s)

	return d
}

func turnOrZero(s string) int {
	if n, ok := parseInt(s); ok && n > 0 {
		return n
	}

	return 0
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

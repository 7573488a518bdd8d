//nolint:wrapcheck
package groups

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout of a group's start date.
const DateLayout = "2006-01-02"

const (
	MinDurationWeeks = 1
	MaxDurationWeeks = 50
)

var (
	ErrGroupNameEmpty       = errors.New("group name is empty")
	ErrGroupDurationInvalid = errors.New("group duration is out of range")
	ErrGroupAmountInvalid   = errors.New("group amount must be positive")
)

// Group is a rotating-savings cohort as it is kept in the store. The numeric
// and date fields are text: rows may come from a loosely typed spreadsheet and
// are coerced with defaults only when a schedule is computed.
type Group struct {
	Name          string
	StartDate     string
	DurationWeeks string
	BaseAmount    string
	PremiumAmount string
}

// Params is the strictly typed form of a group used by admin actions.
type Params struct {
	StartDate     time.Time
	DurationWeeks int
	BaseAmount    decimal.Decimal
	PremiumAmount decimal.Decimal
}

func NewGroup(name string, params Params) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameEmpty
	}

	grp := &Group{Name: name}

	if err := grp.Apply(params); err != nil {
		return nil, err
	}

	return grp, nil
}

// Apply validates params and overwrites the group's stored fields with them.
func (g *Group) Apply(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}

	g.StartDate = params.StartDate.Format(DateLayout)
	g.DurationWeeks = strconv.Itoa(params.DurationWeeks)
	g.BaseAmount = params.BaseAmount.String()
	g.PremiumAmount = params.PremiumAmount.String()

	return nil
}

func (p Params) Validate() error {
	if p.DurationWeeks < MinDurationWeeks || p.DurationWeeks > MaxDurationWeeks {
		return fmt.Errorf("%w: %d not in [%d, %d]",
			ErrGroupDurationInvalid, p.DurationWeeks, MinDurationWeeks, MaxDurationWeeks)
	}

	if !p.BaseAmount.IsPositive() || !p.PremiumAmount.IsPositive() {
		return ErrGroupAmountInvalid
	}

	return nil
}

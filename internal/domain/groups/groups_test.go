package groups_test

import (
	"testing"
	"time"

	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() groups.Params {
	return groups.Params{
		StartDate:     time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		DurationWeeks: 20,
		BaseAmount:    decimal.NewFromInt(400),
		PremiumAmount: decimal.RequireFromString("430.50"),
	}
}

func TestNewGroup(t *testing.T) {
	grp, err := groups.NewGroup(" Amigos ", validParams())
	require.NoError(t, err)

	assert.Equal(t, &groups.Group{
		Name:          "Amigos",
		StartDate:     "2024-03-04",
		DurationWeeks: "20",
		BaseAmount:    "400",
		PremiumAmount: "430.5",
	}, grp)

	_, err = groups.NewGroup("", validParams())
	assert.ErrorIs(t, err, groups.ErrGroupNameEmpty)
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(p *groups.Params)
		wantErr error
	}{
		{"valid", func(*groups.Params) {}, nil},
		{"minimum duration", func(p *groups.Params) { p.DurationWeeks = 1 }, nil},
		{"maximum duration", func(p *groups.Params) { p.DurationWeeks = 50 }, nil},
		{"zero duration", func(p *groups.Params) { p.DurationWeeks = 0 }, groups.ErrGroupDurationInvalid},
		{"too long", func(p *groups.Params) { p.DurationWeeks = 51 }, groups.ErrGroupDurationInvalid},
		{"zero base", func(p *groups.Params) { p.BaseAmount = decimal.Zero }, groups.ErrGroupAmountInvalid},
		{"negative premium", func(p *groups.Params) { p.PremiumAmount = decimal.NewFromInt(-1) }, groups.ErrGroupAmountInvalid},
		{"premium below base", func(p *groups.Params) { p.PremiumAmount = decimal.NewFromInt(10) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.modify(&params)

			err := params.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGroupApplyKeepsFieldsOnError(t *testing.T) {
	grp := &groups.Group{Name: "G", DurationWeeks: "abc"}

	params := validParams()
	params.DurationWeeks = 0

	require.Error(t, grp.Apply(params))
	assert.Equal(t, "abc", grp.DurationWeeks)
}

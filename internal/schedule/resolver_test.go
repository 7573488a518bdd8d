package schedule_test

import (
	"testing"
	"time"

	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/andymarkow/pandero/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	now := time.Date(2024, time.June, 5, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		grp  groups.Group
		want schedule.Config
	}{
		{
			name: "well formed",
			grp: groups.Group{
				Name: "G", StartDate: "2024-01-01", DurationWeeks: "20",
				BaseAmount: "350.50", PremiumAmount: "380",
			},
			want: schedule.Config{
				StartDate: date(2024, time.January, 1), DurationWeeks: 20,
				BaseAmount: dec("350.50"), PremiumAmount: dec("380"),
			},
		},
		{
			name: "timestamp suffix and float duration",
			grp: groups.Group{
				Name: "G", StartDate: "2024-01-01 00:00:00", DurationWeeks: "12.0",
				BaseAmount: "400.0", PremiumAmount: "430.0",
			},
			want: schedule.Config{
				StartDate: date(2024, time.January, 1), DurationWeeks: 12,
				BaseAmount: dec("400"), PremiumAmount: dec("430"),
			},
		},
		{
			name: "every field malformed",
			grp: groups.Group{
				Name: "G", StartDate: "01/01/2024", DurationWeeks: "veinte",
				BaseAmount: "", PremiumAmount: "n/a",
			},
			want: schedule.Config{
				StartDate: date(2024, time.June, 5), DurationWeeks: 25,
				BaseAmount: dec("400"), PremiumAmount: dec("430"),
			},
		},
		{
			name: "non-positive values default",
			grp: groups.Group{
				Name: "G", StartDate: "2024-01-01", DurationWeeks: "0",
				BaseAmount: "-10", PremiumAmount: "0",
			},
			want: schedule.Config{
				StartDate: date(2024, time.January, 1), DurationWeeks: 25,
				BaseAmount: dec("400"), PremiumAmount: dec("430"),
			},
		},
		{
			name: "duration above the maximum defaults",
			grp: groups.Group{
				Name: "G", StartDate: "2024-01-01", DurationWeeks: "1e20",
				BaseAmount: "400", PremiumAmount: "430",
			},
			want: schedule.Config{
				StartDate: date(2024, time.January, 1), DurationWeeks: 25,
				BaseAmount: dec("400"), PremiumAmount: dec("430"),
			},
		},
		{
			name: "duration beyond int range defaults",
			grp: groups.Group{
				Name: "G", StartDate: "2024-01-01", DurationWeeks: "9223372036854775807",
				BaseAmount: "400", PremiumAmount: "430",
			},
			want: schedule.Config{
				StartDate: date(2024, time.January, 1), DurationWeeks: 25,
				BaseAmount: dec("400"), PremiumAmount: dec("430"),
			},
		},
		{
			name: "maximum duration is kept",
			grp: groups.Group{
				Name: "G", StartDate: "2024-01-01", DurationWeeks: "50",
				BaseAmount: "400", PremiumAmount: "430",
			},
			want: schedule.Config{
				StartDate: date(2024, time.January, 1), DurationWeeks: 50,
				BaseAmount: dec("400"), PremiumAmount: dec("430"),
			},
		},
		{
			name: "premium below base is kept",
			grp: groups.Group{
				Name: "G", StartDate: "2024-01-01", DurationWeeks: "5",
				BaseAmount: "500", PremiumAmount: "450",
			},
			want: schedule.Config{
				StartDate: date(2024, time.January, 1), DurationWeeks: 5,
				BaseAmount: dec("500"), PremiumAmount: dec("450"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grp := tt.grp

			cfg, err := schedule.Resolve("G", []*groups.Group{&grp}, now)
			require.NoError(t, err)

			assert.True(t, tt.want.StartDate.Equal(cfg.StartDate), "start %s", cfg.StartDate)
			assert.Equal(t, tt.want.DurationWeeks, cfg.DurationWeeks)
			assert.True(t, tt.want.BaseAmount.Equal(cfg.BaseAmount), "base %s", cfg.BaseAmount)
			assert.True(t, tt.want.PremiumAmount.Equal(cfg.PremiumAmount), "premium %s", cfg.PremiumAmount)
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	_, err := schedule.Resolve("missing", []*groups.Group{{Name: "G"}}, time.Now())

	assert.ErrorIs(t, err, schedule.ErrGroupNotFound)
}

func TestResolve_FirstMatchingRowWins(t *testing.T) {
	grps := []*groups.Group{
		{Name: "G", DurationWeeks: "3"},
		{Name: "G", DurationWeeks: "9"},
	}

	cfg, err := schedule.Resolve("G", grps, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.DurationWeeks)
}

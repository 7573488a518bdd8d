package members_test

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/andymarkow/pandero/internal/domain/members"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShare(t *testing.T) {
	tests := []struct {
		in      string
		want    members.Share
		wantErr bool
	}{
		{"", members.ShareFull, false},
		{"FULL", members.ShareFull, false},
		{"Completo", members.ShareFull, false},
		{"half", members.ShareHalf, false},
		{" Medio ", members.ShareHalf, false},
		{"quarter", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := members.ParseShare(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, members.ErrShareInvalid)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewMembership(t *testing.T) {
	m, err := members.NewMembership("G1", "m1", 3, members.ShareHalf)
	require.NoError(t, err)
	assert.Equal(t, "3", m.Turn)

	_, err = members.NewMembership("", "m1", 0, members.ShareFull)
	assert.ErrorIs(t, err, members.ErrGroupNameEmpty)

	_, err = members.NewMembership("G1", "m1", -1, members.ShareFull)
	assert.ErrorIs(t, err, members.ErrTurnInvalid)

	_, err = members.NewMembership("G1", "m1", 1, members.Share("X"))
	assert.ErrorIs(t, err, members.ErrShareInvalid)
}

func TestDrawTurns(t *testing.T) {
	ms := []*members.Membership{
		{GroupName: "G1", MemberID: "a"},
		{GroupName: "G1", MemberID: "b"},
		{GroupName: "G1", MemberID: "c"},
		{GroupName: "G1", MemberID: "d"},
	}

	turns, err := members.DrawTurns(ms, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Len(t, turns, 4)

	got := make([]int, 0, len(turns))
	for _, turn := range turns {
		got = append(got, turn)
	}

	sort.Ints(got)
	assert.Equal(t, []int{1, 2, 3, 4}, got)

	_, err = members.DrawTurns(nil, rand.New(rand.NewPCG(1, 2)))
	assert.ErrorIs(t, err, members.ErrNoMembersToDraw)
}

package members

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/andymarkow/pandero/internal/domain/users"
)

var (
	ErrGroupNameEmpty  = errors.New("membership group name is empty")
	ErrTurnInvalid     = errors.New("membership turn is negative")
	ErrShareInvalid    = errors.New("membership share is invalid")
	ErrNoMembersToDraw = errors.New("group has no members to draw turns for")
)

// Share is the fraction of the weekly amount a member is responsible for.
type Share string

const (
	ShareFull Share = "FULL"
	ShareHalf Share = "HALF"
)

func (s Share) String() string {
	return string(s)
}

// ParseShare accepts the canonical names as well as the spreadsheet's
// "Completo"/"Medio" labels.
func ParseShare(share string) (Share, error) {
	switch strings.ToLower(strings.TrimSpace(share)) {
	case "", "full", "completo":
		return ShareFull, nil
	case "half", "medio":
		return ShareHalf, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrShareInvalid, share)
	}
}

// Membership joins one user to one group. Turn is kept as text like the
// rest of the relation; "0" or anything unparsable means no turn assigned.
type Membership struct {
	GroupName string
	MemberID  string
	Turn      string
	Share     Share
}

func NewMembership(groupName, memberID string, turn int, share Share) (*Membership, error) {
	if strings.TrimSpace(groupName) == "" {
		return nil, ErrGroupNameEmpty
	}

	if err := users.ValidateID(memberID); err != nil {
		return nil, err //nolint:wrapcheck
	}

	if turn < 0 {
		return nil, ErrTurnInvalid
	}

	if share != ShareFull && share != ShareHalf {
		return nil, fmt.Errorf("%w: %s", ErrShareInvalid, share)
	}

	return &Membership{
		GroupName: groupName,
		MemberID:  memberID,
		Turn:      strconv.Itoa(turn),
		Share:     share,
	}, nil
}

// DrawTurns shuffles turns 1..N across the given members. It returns the new
// turn of every member keyed by member id.
func DrawTurns(ms []*Membership, rnd *rand.Rand) (map[string]int, error) {
	if len(ms) == 0 {
		return nil, ErrNoMembersToDraw
	}

	perm := rnd.Perm(len(ms))

	turns := make(map[string]int, len(ms))
	for i, m := range ms {
		turns[m.MemberID] = perm[i] + 1
	}

	return turns, nil
}

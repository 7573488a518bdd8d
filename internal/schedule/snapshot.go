package schedule

import (
	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/andymarkow/pandero/internal/domain/members"
	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/domain/users"
)

// Snapshot is a consistent read of the four relations. The engine never
// modifies it.
type Snapshot struct {
	Users       []*users.User
	Groups      []*groups.Group
	Memberships []*members.Membership
	Payments    []*payments.Payment
}

func (s *Snapshot) membership(memberID string) (*members.Membership, bool) {
	for _, m := range s.Memberships {
		if m.MemberID == memberID {
			return m, true
		}
	}

	return nil, false
}

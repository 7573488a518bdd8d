package inmemory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/andymarkow/pandero/internal/domain/members"
	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/domain/users"
	"github.com/andymarkow/pandero/internal/schedule"
	"github.com/andymarkow/pandero/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

// Rows are kept in insertion order; lookups that return "the first row"
// depend on it. Stores are always locked in declaration order.

type UserStore struct {
	users []users.User
	mu    sync.Mutex
}

type GroupStore struct {
	groups []groups.Group
	mu     sync.Mutex
}

type MembershipStore struct {
	memberships []members.Membership
	mu          sync.Mutex
}

type PaymentStore struct {
	payments []payments.Payment
	mu       sync.Mutex
}

type Storage struct {
	UserStore       UserStore
	GroupStore      GroupStore
	MembershipStore MembershipStore
	PaymentStore    PaymentStore
}

func NewStorage() *Storage {
	return &Storage{}
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) Ping(_ context.Context) error {
	return nil
}

func (s *Storage) CreateUser(_ context.Context, usr *users.User) error {
	s.UserStore.mu.Lock()
	defer s.UserStore.mu.Unlock()

	for _, u := range s.UserStore.users {
		if u.ID == usr.ID {
			return storage.ErrUserAlreadyExists
		}
	}

	s.UserStore.users = append(s.UserStore.users, *usr)

	return nil
}

func (s *Storage) GetUser(_ context.Context, id string) (*users.User, error) {
	s.UserStore.mu.Lock()
	defer s.UserStore.mu.Unlock()

	for _, u := range s.UserStore.users {
		if u.ID == id {
			return &u, nil
		}
	}

	return nil, storage.ErrUserNotFound
}

func (s *Storage) GetUsers(_ context.Context) ([]*users.User, error) {
	s.UserStore.mu.Lock()
	defer s.UserStore.mu.Unlock()

	return copyRows(s.UserStore.users), nil
}

func (s *Storage) CreateGroup(_ context.Context, grp *groups.Group) error {
	s.GroupStore.mu.Lock()
	defer s.GroupStore.mu.Unlock()

	for _, g := range s.GroupStore.groups {
		if g.Name == grp.Name {
			return storage.ErrGroupAlreadyExists
		}
	}

	s.GroupStore.groups = append(s.GroupStore.groups, *grp)

	return nil
}

func (s *Storage) GetGroup(_ context.Context, name string) (*groups.Group, error) {
	s.GroupStore.mu.Lock()
	defer s.GroupStore.mu.Unlock()

	for _, g := range s.GroupStore.groups {
		if g.Name == name {
			return &g, nil
		}
	}

	return nil, storage.ErrGroupNotFound
}

func (s *Storage) GetGroups(_ context.Context) ([]*groups.Group, error) {
	s.GroupStore.mu.Lock()
	defer s.GroupStore.mu.Unlock()

	return copyRows(s.GroupStore.groups), nil
}

func (s *Storage) UpdateGroup(_ context.Context, grp *groups.Group) error {
	s.GroupStore.mu.Lock()
	defer s.GroupStore.mu.Unlock()

	for i, g := range s.GroupStore.groups {
		if g.Name == grp.Name {
			s.GroupStore.groups[i] = *grp

			return nil
		}
	}

	return storage.ErrGroupNotFound
}

func (s *Storage) CreateMembership(_ context.Context, membership *members.Membership) error {
	s.MembershipStore.mu.Lock()
	defer s.MembershipStore.mu.Unlock()

	for _, m := range s.MembershipStore.memberships {
		if m.GroupName == membership.GroupName && m.MemberID == membership.MemberID {
			return storage.ErrMembershipAlreadyExists
		}
	}

	s.MembershipStore.memberships = append(s.MembershipStore.memberships, *membership)

	return nil
}

func (s *Storage) GetMembershipsByGroup(_ context.Context, groupName string) ([]*members.Membership, error) {
	s.MembershipStore.mu.Lock()
	defer s.MembershipStore.mu.Unlock()

	var ms []*members.Membership

	for _, m := range s.MembershipStore.memberships {
		if m.GroupName == groupName {
			ms = append(ms, &m)
		}
	}

	return ms, nil
}

func (s *Storage) UpdateMembershipTurns(_ context.Context, groupName string, turns map[string]int) error {
	s.MembershipStore.mu.Lock()
	defer s.MembershipStore.mu.Unlock()

	idx := make(map[string]int, len(turns))

	for i, m := range s.MembershipStore.memberships {
		if m.GroupName == groupName {
			idx[m.MemberID] = i
		}
	}

	for memberID := range turns {
		if _, ok := idx[memberID]; !ok {
			return fmt.Errorf("%w: %s in %s", storage.ErrMembershipNotFound, memberID, groupName)
		}
	}

	for memberID, turn := range turns {
		s.MembershipStore.memberships[idx[memberID]].Turn = strconv.Itoa(turn)
	}

	return nil
}

func (s *Storage) CreatePayment(_ context.Context, pmt *payments.Payment) error {
	s.PaymentStore.mu.Lock()
	defer s.PaymentStore.mu.Unlock()

	for _, p := range s.PaymentStore.payments {
		if p.ID == pmt.ID {
			return storage.ErrPaymentAlreadyExists
		}
	}

	s.PaymentStore.payments = append(s.PaymentStore.payments, *pmt)

	return nil
}

func (s *Storage) GetPayment(_ context.Context, id string) (*payments.Payment, error) {
	s.PaymentStore.mu.Lock()
	defer s.PaymentStore.mu.Unlock()

	for _, p := range s.PaymentStore.payments {
		if p.ID == id {
			return &p, nil
		}
	}

	return nil, storage.ErrPaymentNotFound
}

func (s *Storage) GetPaymentsByMember(_ context.Context, memberID string) ([]*payments.Payment, error) {
	s.PaymentStore.mu.Lock()
	defer s.PaymentStore.mu.Unlock()

	var pmts []*payments.Payment

	for _, p := range s.PaymentStore.payments {
		if p.MemberID == memberID {
			pmts = append(pmts, &p)
		}
	}

	sortByDateDesc(pmts)

	return pmts, nil
}

func (s *Storage) GetPaymentsByGroup(
	_ context.Context, groupName string, statuses ...payments.Status,
) ([]*payments.Payment, error) {
	s.PaymentStore.mu.Lock()
	defer s.PaymentStore.mu.Unlock()

	var pmts []*payments.Payment

	for _, p := range s.PaymentStore.payments {
		if p.GroupName == groupName && hasStatus(p.Status, statuses) {
			pmts = append(pmts, &p)
		}
	}

	sortByDateDesc(pmts)

	return pmts, nil
}

func (s *Storage) SetPaymentStatus(_ context.Context, id string, status payments.Status) (*payments.Payment, error) {
	s.PaymentStore.mu.Lock()
	defer s.PaymentStore.mu.Unlock()

	for i, p := range s.PaymentStore.payments {
		if p.ID != id {
			continue
		}

		next, err := payments.Transition(p.Status, status)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrPaymentNotPending, err)
		}

		s.PaymentStore.payments[i].Status = next
		updated := s.PaymentStore.payments[i]

		return &updated, nil
	}

	return nil, storage.ErrPaymentNotFound
}

func (s *Storage) Snapshot(_ context.Context) (*schedule.Snapshot, error) {
	s.UserStore.mu.Lock()
	defer s.UserStore.mu.Unlock()

	s.GroupStore.mu.Lock()
	defer s.GroupStore.mu.Unlock()

	s.MembershipStore.mu.Lock()
	defer s.MembershipStore.mu.Unlock()

	s.PaymentStore.mu.Lock()
	defer s.PaymentStore.mu.Unlock()

	return &schedule.Snapshot{
		Users:       copyRows(s.UserStore.users),
		Groups:      copyRows(s.GroupStore.groups),
		Memberships: copyRows(s.MembershipStore.memberships),
		Payments:    copyRows(s.PaymentStore.payments),
	}, nil
}

// copyRows returns pointers to copies so callers never alias stored rows.
func copyRows[T any](rows []T) []*T {
	out := make([]*T, len(rows))

	for i := range rows {
		row := rows[i]
		out[i] = &row
	}

	return out
}

func hasStatus(status payments.Status, statuses []payments.Status) bool {
	if len(statuses) == 0 {
		return true
	}

	for _, st := range statuses {
		if st == status {
			return true
		}
	}

	return false
}

func sortByDateDesc(pmts []*payments.Payment) {
	sort.SliceStable(pmts, func(i, j int) bool {
		return pmts[i].Date.After(pmts[j].Date)
	})
}

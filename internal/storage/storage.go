package storage

import (
	"context"
	"errors"

	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/andymarkow/pandero/internal/domain/members"
	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/domain/users"
	"github.com/andymarkow/pandero/internal/schedule"
)

var (
	ErrUserAlreadyExists       = errors.New("user already exists")
	ErrUserNotFound            = errors.New("user not found")
	ErrGroupAlreadyExists      = errors.New("group already exists")
	ErrGroupNotFound           = errors.New("group not found")
	ErrMembershipAlreadyExists = errors.New("membership already exists")
	ErrMembershipNotFound      = errors.New("membership not found")
	ErrPaymentAlreadyExists    = errors.New("payment already exists")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentNotPending       = errors.New("payment is not pending")
)

type UserStorage interface {
	GetUser(ctx context.Context, id string) (*users.User, error)
	GetUsers(ctx context.Context) ([]*users.User, error)
	CreateUser(ctx context.Context, usr *users.User) error
}

type GroupStorage interface {
	GetGroup(ctx context.Context, name string) (*groups.Group, error)
	GetGroups(ctx context.Context) ([]*groups.Group, error)
	CreateGroup(ctx context.Context, grp *groups.Group) error
	UpdateGroup(ctx context.Context, grp *groups.Group) error
}

type MembershipStorage interface {
	GetMembershipsByGroup(ctx context.Context, groupName string) ([]*members.Membership, error)
	CreateMembership(ctx context.Context, membership *members.Membership) error
	// UpdateMembershipTurns sets the turn of every listed member of the group
	// in one step.
	UpdateMembershipTurns(ctx context.Context, groupName string, turns map[string]int) error
}

type PaymentStorage interface {
	GetPayment(ctx context.Context, id string) (*payments.Payment, error)
	GetPaymentsByMember(ctx context.Context, memberID string) ([]*payments.Payment, error)
	GetPaymentsByGroup(ctx context.Context, groupName string, statuses ...payments.Status) ([]*payments.Payment, error)
	CreatePayment(ctx context.Context, pmt *payments.Payment) error
	// SetPaymentStatus moves a pending payment to status. It fails with
	// ErrPaymentNotPending if the payment was already reviewed.
	SetPaymentStatus(ctx context.Context, id string, status payments.Status) (*payments.Payment, error)
}

type Storage interface {
	UserStorage
	GroupStorage
	MembershipStorage
	PaymentStorage
	// Snapshot reads the four relations together.
	Snapshot(ctx context.Context) (*schedule.Snapshot, error)
	Close() error
	Ping(ctx context.Context) error
}

func NewStorage(store Storage) Storage {
	return store
}

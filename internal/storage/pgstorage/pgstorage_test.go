package pgstorage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/andymarkow/pandero/internal/domain/members"
	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/domain/users"
	"github.com/andymarkow/pandero/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "connection refused", err: fmt.Errorf("dial: %w", syscall.ECONNREFUSED), want: true},
		{name: "connection failure", err: &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, want: true},
		{name: "serialization failure", err: &pgconn.PgError{Code: pgerrcode.SerializationFailure}, want: true},
		{name: "unique violation", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0

	err := WithRetry(func() error {
		calls++

		return storage.ErrUserNotFound
	})

	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.Equal(t, 1, calls)
}

// newTestStorage connects to PANDERO_TEST_DATABASE_URI; the test is skipped
// when it is not set.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dsn := os.Getenv("PANDERO_TEST_DATABASE_URI")
	if dsn == "" {
		t.Skip("PANDERO_TEST_DATABASE_URI is not set")
	}

	store, err := NewStorage(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Bootstrap(context.Background()))

	return store
}

func TestStorage_RoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	suffix := uuid.NewString()
	groupName := "G-" + suffix
	memberID := "m-" + suffix

	usr, err := users.NewUser(memberID, "Rosa", "999")
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(ctx, usr))
	assert.ErrorIs(t, store.CreateUser(ctx, usr), storage.ErrUserAlreadyExists)

	grp := &groups.Group{Name: groupName, StartDate: "2024-01-01", DurationWeeks: "4", BaseAmount: "100", PremiumAmount: "150"}
	require.NoError(t, store.CreateGroup(ctx, grp))
	assert.ErrorIs(t, store.CreateGroup(ctx, grp), storage.ErrGroupAlreadyExists)

	m, err := members.NewMembership(groupName, memberID, 0, members.ShareHalf)
	require.NoError(t, err)
	require.NoError(t, store.CreateMembership(ctx, m))
	require.NoError(t, store.UpdateMembershipTurns(ctx, groupName, map[string]int{memberID: 2}))
	assert.ErrorIs(t,
		store.UpdateMembershipTurns(ctx, groupName, map[string]int{"ghost": 1}),
		storage.ErrMembershipNotFound)

	ms, err := store.GetMembershipsByGroup(ctx, groupName)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "2", ms[0].Turn)
	assert.Equal(t, members.ShareHalf, ms[0].Share)

	pmt, err := payments.NewPayment(memberID, groupName, decimal.NewFromInt(250), "", "")
	require.NoError(t, err)
	require.NoError(t, store.CreatePayment(ctx, pmt))

	pending, err := store.GetPaymentsByGroup(ctx, groupName, payments.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = store.SetPaymentStatus(ctx, pmt.ID, payments.StatusApproved)
	require.NoError(t, err)

	_, err = store.SetPaymentStatus(ctx, pmt.ID, payments.StatusRejected)
	assert.ErrorIs(t, err, storage.ErrPaymentNotPending)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Groups)
	assert.NotEmpty(t, snap.Payments)
}

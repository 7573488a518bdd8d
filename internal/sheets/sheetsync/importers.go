package sheetsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/andymarkow/pandero/internal/sheets/sheetclient"
	"github.com/andymarkow/pandero/internal/storage"
)

func importUser(ctx context.Context, s storage.Storage, row sheetclient.Row, _ int) (bool, error) {
	usr, err := row.User()
	if err != nil {
		return false, fmt.Errorf("row.User: %w", err)
	}

	return created(s.CreateUser(ctx, usr), storage.ErrUserAlreadyExists)
}

func importGroup(ctx context.Context, s storage.Storage, row sheetclient.Row, _ int) (bool, error) {
	grp, err := row.Group()
	if err != nil {
		return false, fmt.Errorf("row.Group: %w", err)
	}

	return created(s.CreateGroup(ctx, grp), storage.ErrGroupAlreadyExists)
}

func importMembership(ctx context.Context, s storage.Storage, row sheetclient.Row, _ int) (bool, error) {
	membership, err := row.Membership()
	if err != nil {
		return false, fmt.Errorf("row.Membership: %w", err)
	}

	return created(s.CreateMembership(ctx, membership), storage.ErrMembershipAlreadyExists)
}

func importPayment(ctx context.Context, s storage.Storage, row sheetclient.Row, occurrence int) (bool, error) {
	pmt, err := row.Payment(occurrence)
	if err != nil {
		return false, fmt.Errorf("row.Payment: %w", err)
	}

	return created(s.CreatePayment(ctx, pmt), storage.ErrPaymentAlreadyExists)
}

func created(err, exists error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, exists):
		return false, nil
	default:
		return false, err
	}
}

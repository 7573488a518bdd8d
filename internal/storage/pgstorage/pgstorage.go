package pgstorage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"syscall"
	"time"

	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/andymarkow/pandero/internal/domain/members"
	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/domain/users"
	"github.com/andymarkow/pandero/internal/schedule"
	"github.com/andymarkow/pandero/internal/storage"
	"github.com/andymarkow/pandero/internal/storage/dbmodels"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	// Postgres driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var _ storage.Storage = (*Storage)(nil)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	userColumns       = `id, name, contact`
	groupColumns      = `name, start_date, duration_weeks, base_amount, premium_amount`
	membershipColumns = `group_name, member_id, turn, share`
	paymentColumns    = `id, paid_at, member_id, group_name, amount, status, attachment_ref, week_label`
)

type Storage struct {
	db *sql.DB
}

type Config struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxIdleTime time.Duration
	connMaxLifetime time.Duration
}

type Option func(s *Config)

func WithMaxOpenConns(conns int) Option {
	return func(c *Config) {
		c.maxOpenConns = conns
	}
}

func WithMaxIdleConns(conns int) Option {
	return func(c *Config) {
		c.maxIdleConns = conns
	}
}

func WithConnMaxIdleTime(idleTime time.Duration) Option {
	return func(c *Config) {
		c.connMaxIdleTime = idleTime
	}
}

func WithConnMaxLifetime(lifetime time.Duration) Option {
	return func(c *Config) {
		c.connMaxLifetime = lifetime
	}
}

func NewStorage(connStr string, opts ...Option) (*Storage, error) {
	cfg := &Config{
		maxOpenConns:    10,
		maxIdleConns:    5,
		connMaxIdleTime: 180 * time.Second,
		connMaxLifetime: 3600 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	db.SetMaxOpenConns(cfg.maxOpenConns)
	db.SetMaxIdleConns(cfg.maxIdleConns)
	db.SetConnMaxIdleTime(cfg.connMaxIdleTime)
	db.SetConnMaxLifetime(cfg.connMaxLifetime)

	return &Storage{
		db: db,
	}, nil
}

// Bootstrap applies the embedded migrations.
func (s *Storage) Bootstrap(ctx context.Context) error {
	migrationsDir, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("fs.Sub: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, s.db, migrationsDir)
	if err != nil {
		return fmt.Errorf("goose.NewProvider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("provider.Up: %w", err)
	}

	return nil
}

func (s *Storage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("db.Close: %w", err)
	}

	return nil
}

// isRetryableError checks if error is retryable.
func isRetryableError(err error) bool {
	// Connection refused error
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgErr.Code == pgerrcode.SerializationFailure
	}

	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code)
}

// WithRetry retries operations in case of retryable errors.
func WithRetry(operation func() error) error {
	retryCount := 3

	var retryWaitTime time.Duration

	// Define the interval between retries
	retryWaitInterval := 2

	var err error

	for i := 0; i < retryCount; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return err
		}

		retryWaitTime = time.Duration((i*retryWaitInterval + 1)) * time.Second // 1s, 3s, 5s

		time.Sleep(retryWaitTime)
	}

	return fmt.Errorf("retry attempts exceeded: %w", err)
}

func (s *Storage) Ping(ctx context.Context) error {
	return WithRetry(func() error {
		if err := s.db.PingContext(ctx); err != nil {
			return fmt.Errorf("db.PingContext: %w", err)
		}

		return nil
	})
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Storage) CreateUser(ctx context.Context, usr *users.User) error {
	return WithRetry(func() error {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3)`,
			usr.ID, usr.Name, usr.Contact,
		); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrUserAlreadyExists
			}

			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return nil
	})
}

func (s *Storage) GetUser(ctx context.Context, id string) (*users.User, error) {
	usrs, err := s.queryUsers(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	if len(usrs) == 0 {
		return nil, storage.ErrUserNotFound
	}

	return usrs[0], nil
}

func (s *Storage) GetUsers(ctx context.Context) ([]*users.User, error) {
	return s.queryUsers(ctx, s.db, `SELECT `+userColumns+` FROM users ORDER BY seq`)
}

func (s *Storage) queryUsers(ctx context.Context, q queryer, query string, args ...any) ([]*users.User, error) {
	var usrs []*users.User

	err := WithRetry(func() error {
		usrs = usrs[:0]

		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			dbUser := new(dbmodels.User)

			if err := rows.Scan(&dbUser.ID, &dbUser.Name, &dbUser.Contact); err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			usrs = append(usrs, &users.User{ID: dbUser.ID, Name: dbUser.Name, Contact: dbUser.Contact})
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return usrs, nil
}

func (s *Storage) CreateGroup(ctx context.Context, grp *groups.Group) error {
	return WithRetry(func() error {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO groups (`+groupColumns+`) VALUES ($1, $2, $3, $4, $5)`,
			grp.Name, grp.StartDate, grp.DurationWeeks, grp.BaseAmount, grp.PremiumAmount,
		); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrGroupAlreadyExists
			}

			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return nil
	})
}

func (s *Storage) UpdateGroup(ctx context.Context, grp *groups.Group) error {
	return WithRetry(func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE groups SET start_date = $2, duration_weeks = $3, base_amount = $4, premium_amount = $5`+
				` WHERE name = $1`,
			grp.Name, grp.StartDate, grp.DurationWeeks, grp.BaseAmount, grp.PremiumAmount,
		)
		if err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return expectAffected(res, storage.ErrGroupNotFound)
	})
}

func (s *Storage) GetGroup(ctx context.Context, name string) (*groups.Group, error) {
	grps, err := s.queryGroups(ctx, s.db, `SELECT `+groupColumns+` FROM groups WHERE name = $1`, name)
	if err != nil {
		return nil, err
	}

	if len(grps) == 0 {
		return nil, storage.ErrGroupNotFound
	}

	return grps[0], nil
}

func (s *Storage) GetGroups(ctx context.Context) ([]*groups.Group, error) {
	return s.queryGroups(ctx, s.db, `SELECT `+groupColumns+` FROM groups ORDER BY seq`)
}

func (s *Storage) queryGroups(ctx context.Context, q queryer, query string, args ...any) ([]*groups.Group, error) {
	var grps []*groups.Group

	err := WithRetry(func() error {
		grps = grps[:0]

		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			dbGroup := new(dbmodels.Group)

			if err := rows.Scan(
				&dbGroup.Name, &dbGroup.StartDate, &dbGroup.DurationWeeks, &dbGroup.BaseAmount, &dbGroup.PremiumAmount,
			); err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			grps = append(grps, &groups.Group{
				Name:          dbGroup.Name,
				StartDate:     dbGroup.StartDate,
				DurationWeeks: dbGroup.DurationWeeks,
				BaseAmount:    dbGroup.BaseAmount,
				PremiumAmount: dbGroup.PremiumAmount,
			})
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return grps, nil
}

func (s *Storage) CreateMembership(ctx context.Context, membership *members.Membership) error {
	return WithRetry(func() error {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO memberships (`+membershipColumns+`) VALUES ($1, $2, $3, $4)`,
			membership.GroupName, membership.MemberID, membership.Turn, membership.Share.String(),
		); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrMembershipAlreadyExists
			}

			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return nil
	})
}

func (s *Storage) GetMembershipsByGroup(ctx context.Context, groupName string) ([]*members.Membership, error) {
	return s.queryMemberships(ctx, s.db,
		`SELECT `+membershipColumns+` FROM memberships WHERE group_name = $1 ORDER BY seq`, groupName)
}

func (s *Storage) UpdateMembershipTurns(ctx context.Context, groupName string, turns map[string]int) error {
	return WithRetry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("db.BeginTx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		for memberID, turn := range turns {
			res, err := tx.ExecContext(ctx,
				`UPDATE memberships SET turn = $3 WHERE group_name = $1 AND member_id = $2`,
				groupName, memberID, strconv.Itoa(turn),
			)
			if err != nil {
				return fmt.Errorf("tx.ExecContext: %w", err)
			}

			if err := expectAffected(res, storage.ErrMembershipNotFound); err != nil {
				return fmt.Errorf("%w: %s in %s", err, memberID, groupName)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("tx.Commit: %w", err)
		}

		return nil
	})
}

func (s *Storage) queryMemberships(
	ctx context.Context, q queryer, query string, args ...any,
) ([]*members.Membership, error) {
	var ms []*members.Membership

	err := WithRetry(func() error {
		ms = ms[:0]

		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			dbMembership := new(dbmodels.Membership)

			if err := rows.Scan(
				&dbMembership.GroupName, &dbMembership.MemberID, &dbMembership.Turn, &dbMembership.Share,
			); err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			// An unknown share is read as full, like the engine does.
			share, err := members.ParseShare(dbMembership.Share)
			if err != nil {
				share = members.ShareFull
			}

			ms = append(ms, &members.Membership{
				GroupName: dbMembership.GroupName,
				MemberID:  dbMembership.MemberID,
				Turn:      dbMembership.Turn,
				Share:     share,
			})
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return ms, nil
}

func (s *Storage) CreatePayment(ctx context.Context, pmt *payments.Payment) error {
	return WithRetry(func() error {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO payments (`+paymentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			pmt.ID, pmt.Date, pmt.MemberID, pmt.GroupName, pmt.Amount,
			pmt.Status.String(), pmt.AttachmentRef, pmt.WeekLabel,
		); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrPaymentAlreadyExists
			}

			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return nil
	})
}

func (s *Storage) GetPayment(ctx context.Context, id string) (*payments.Payment, error) {
	pmts, err := s.queryPayments(ctx, s.db, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	if len(pmts) == 0 {
		return nil, storage.ErrPaymentNotFound
	}

	return pmts[0], nil
}

func (s *Storage) GetPaymentsByMember(ctx context.Context, memberID string) ([]*payments.Payment, error) {
	return s.queryPayments(ctx, s.db,
		`SELECT `+paymentColumns+` FROM payments WHERE member_id = $1 ORDER BY paid_at DESC`, memberID)
}

func (s *Storage) GetPaymentsByGroup(
	ctx context.Context, groupName string, statuses ...payments.Status,
) ([]*payments.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE group_name = $1`
	args := []any{groupName}

	if len(statuses) > 0 {
		sts := make([]string, len(statuses))
		for i, st := range statuses {
			sts[i] = st.String()
		}

		query += ` AND status = ANY($2)`

		args = append(args, pq.Array(sts))
	}

	query += ` ORDER BY paid_at DESC`

	return s.queryPayments(ctx, s.db, query, args...)
}

func (s *Storage) SetPaymentStatus(ctx context.Context, id string, status payments.Status) (*payments.Payment, error) {
	var updated *payments.Payment

	err := WithRetry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("db.BeginTx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		pmts, err := s.queryPayments(ctx, tx,
			`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}

		if len(pmts) == 0 {
			return storage.ErrPaymentNotFound
		}

		pmt := pmts[0]

		next, err := payments.Transition(pmt.Status, status)
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrPaymentNotPending, err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE payments SET status = $2 WHERE id = $1`, id, next.String(),
		); err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("tx.Commit: %w", err)
		}

		pmt.Status = next
		updated = pmt

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Storage) queryPayments(ctx context.Context, q queryer, query string, args ...any) ([]*payments.Payment, error) {
	var pmts []*payments.Payment

	err := WithRetry(func() error {
		pmts = pmts[:0]

		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			dbPayment := new(dbmodels.Payment)

			if err := rows.Scan(
				&dbPayment.ID,
				&dbPayment.PaidAt,
				&dbPayment.MemberID,
				&dbPayment.GroupName,
				&dbPayment.Amount,
				&dbPayment.Status,
				&dbPayment.AttachmentRef,
				&dbPayment.WeekLabel,
			); err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			// Unknown statuses are kept verbatim; the engine ignores them.
			status, err := payments.ParseStatus(dbPayment.Status)
			if err != nil {
				status = payments.Status(dbPayment.Status)
			}

			pmts = append(pmts, &payments.Payment{
				ID:            dbPayment.ID,
				Date:          dbPayment.PaidAt,
				MemberID:      dbPayment.MemberID,
				GroupName:     dbPayment.GroupName,
				Amount:        dbPayment.Amount,
				Status:        status,
				AttachmentRef: dbPayment.AttachmentRef,
				WeekLabel:     dbPayment.WeekLabel,
			})
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return pmts, nil
}

// Snapshot reads all four relations in one repeatable-read transaction.
func (s *Storage) Snapshot(ctx context.Context) (*schedule.Snapshot, error) {
	snap := new(schedule.Snapshot)

	err := WithRetry(func() error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
		if err != nil {
			return fmt.Errorf("db.BeginTx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		if snap.Users, err = s.queryUsers(ctx, tx,
			`SELECT `+userColumns+` FROM users ORDER BY seq`); err != nil {
			return err
		}

		if snap.Groups, err = s.queryGroups(ctx, tx,
			`SELECT `+groupColumns+` FROM groups ORDER BY seq`); err != nil {
			return err
		}

		if snap.Memberships, err = s.queryMemberships(ctx, tx,
			`SELECT `+membershipColumns+` FROM memberships ORDER BY seq`); err != nil {
			return err
		}

		if snap.Payments, err = s.queryPayments(ctx, tx,
			`SELECT `+paymentColumns+` FROM payments ORDER BY seq`); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("tx.Commit: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("res.RowsAffected: %w", err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/ayush/auth-service/internal/models"
)

// PgxDB is the subset of *pgxpool.Pool the store uses.
type PgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore handles account persistence against PostgreSQL. Uniqueness is
// enforced by case-insensitive unique indexes, so concurrent inserts of the
// same username or email cannot both commit.
type PostgresStore struct {
	db PgxDB
}

func NewPostgresStore(db PgxDB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `id::text, username, email, password_hash, created_at, updated_at`

// Migrate creates the accounts table and its unique indexes if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username      TEXT        NOT NULL,
			email         TEXT        NOT NULL,
			password_hash TEXT        NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS accounts_username_key ON accounts (LOWER(username));
		CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_key ON accounts (LOWER(email));
	`)
	if err != nil {
		return oops.Code("ACCOUNT_MIGRATE_FAILED").Wrap(err)
	}
	return nil
}

func (s *PostgresStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.Account, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($2)
		 LIMIT 1`, email, username)
	return scanAccount(row, "find by email or username")
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE LOWER(email) = LOWER($1)`, email)
	return scanAccount(row, "find by email")
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Account, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id::text = $1`, id)
	return scanAccount(row, "find by id")
}

func (s *PostgresStore) InsertUnique(ctx context.Context, account *models.Account) (*models.Account, error) {
	out := *account
	err := s.db.QueryRow(ctx,
		`INSERT INTO accounts (username, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id::text, created_at, updated_at`,
		account.Username, account.Email, account.PasswordHash, account.CreatedAt, account.UpdatedAt,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, oops.Code("ACCOUNT_EXISTS").
				With("constraint", pgErr.ConstraintName).
				Wrap(models.ErrAccountExists)
		}
		return nil, oops.Code("ACCOUNT_INSERT_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}
	return &out, nil
}

func scanAccount(row pgx.Row, operation string) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_LOOKUP_FAILED").
			With("operation", operation).
			Wrap(err)
	}
	return &a, nil
}

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solstice-id/solstice/internal/platform/db"
	"github.com/solstice-id/solstice/internal/shared"
)

// Repository defines persistence operations for accounts. Public lookups
// never include the password hash; FindForAuth is the explicit opt-in used
// only by login and change-password. Soft-deleted rows are invisible to every
// method.
type Repository interface {
	Create(ctx context.Context, input NewAccount) (*Account, error)
	FindByPublicID(ctx context.Context, publicID uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context, limit, offset int) ([]Account, int, error)
	FindForAuth(ctx context.Context, identifier string) (*AuthRecord, error)
	FindForAuthByID(ctx context.Context, id int64) (*AuthRecord, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*Account, error)
	// UpdatePassword applies a compare-and-swap on the version column so two
	// concurrent password mutations cannot silently overwrite each other.
	UpdatePassword(ctx context.Context, id int64, passwordHash string, version int64) error
	SetStatus(ctx context.Context, id int64, status Status) error
	SoftDelete(ctx context.Context, id int64) error
}

const publicColumns = `id, public_id, username, email, full_name, phone, role, status, created_at, updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a new account and returns its public projection.
func (r *PGRepository) Create(ctx context.Context, input NewAccount) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (public_id, username, email, password_hash, full_name, phone, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'active')
		RETURNING `+publicColumns,
		uuid.New(), input.Username, strings.ToLower(input.Email), input.PasswordHash,
		input.FullName, input.Phone, input.Role,
	)
	acc, err := scanAccount(row)
	if err != nil {
		return nil, mapConstraint(err)
	}
	return acc, nil
}

// FindByPublicID fetches the public projection of an account.
func (r *PGRepository) FindByPublicID(ctx context.Context, publicID uuid.UUID) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+publicColumns+` FROM accounts
		WHERE public_id = $1 AND deleted_at IS NULL`, publicID)
	return scanAccountNotFound(row)
}

// FindByEmail fetches the public projection of an account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+publicColumns+` FROM accounts
		WHERE email = $1 AND deleted_at IS NULL`, strings.ToLower(email))
	return scanAccountNotFound(row)
}

// List returns a page of accounts plus the total count, newest first. The
// count and the page read the same snapshot.
func (r *PGRepository) List(ctx context.Context, limit, offset int) ([]Account, int, error) {
	var (
		accounts []Account
		total    int
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`SELECT count(*) FROM accounts WHERE deleted_at IS NULL`).Scan(&total); err != nil {
			return fmt.Errorf("account: count: %w", err)
		}

		rows, err := tx.Query(ctx, `
			SELECT `+publicColumns+` FROM accounts
			WHERE deleted_at IS NULL
			ORDER BY id DESC
			LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return fmt.Errorf("account: list: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			acc, err := scanAccount(rows)
			if err != nil {
				return err
			}
			accounts = append(accounts, *acc)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// FindForAuth fetches the credential projection by username or email.
func (r *PGRepository) FindForAuth(ctx context.Context, identifier string) (*AuthRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, public_id, username, email, password_hash, role, status, version
		FROM accounts
		WHERE (username = $1 OR email = lower($1)) AND deleted_at IS NULL`, identifier)
	return scanAuthRecord(row)
}

// FindForAuthByID fetches the credential projection by internal id.
func (r *PGRepository) FindForAuthByID(ctx context.Context, id int64) (*AuthRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, public_id, username, email, password_hash, role, status, version
		FROM accounts
		WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanAuthRecord(row)
}

// UpdateProfile mutates the profile fields that are set in the update.
func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET full_name = COALESCE($2, full_name),
		    phone     = COALESCE($3, phone),
		    updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+publicColumns,
		id, update.FullName, update.Phone)
	return scanAccountNotFound(row)
}

// UpdatePassword swaps the password hash when the version still matches.
func (r *PGRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, version int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET password_hash = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3 AND deleted_at IS NULL`,
		id, passwordHash, version)
	if err != nil {
		return fmt.Errorf("account: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrVersionConflict
	}
	return nil
}

// SetStatus flips the administrative status.
func (r *PGRepository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET status = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id, status)
	if err != nil {
		return fmt.Errorf("account: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SoftDelete marks the account deleted without removing the row. Deleted
// accounts disappear from every lookup, including authentication.
func (r *PGRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("account: soft delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*Account, error) {
	var acc Account
	if err := row.Scan(
		&acc.ID, &acc.PublicID, &acc.Username, &acc.Email, &acc.FullName,
		&acc.Phone, &acc.Role, &acc.Status, &acc.CreatedAt, &acc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &acc, nil
}

func scanAccountNotFound(row rowScanner) (*Account, error) {
	acc, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return acc, nil
}

func scanAuthRecord(row rowScanner) (*AuthRecord, error) {
	var rec AuthRecord
	if err := row.Scan(
		&rec.ID, &rec.PublicID, &rec.Username, &rec.Email, &rec.PasswordHash,
		&rec.Role, &rec.Status, &rec.Version,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// mapConstraint converts unique-violation SQLSTATEs into the conflict
// taxonomy by constraint name.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return shared.ErrUsernameTaken
		case strings.Contains(pgErr.ConstraintName, "email"):
			return shared.ErrEmailTaken
		}
	}
	return err
}

var _ Repository = (*PGRepository)(nil)

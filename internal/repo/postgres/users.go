package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/toryoki/jobhub/internal/domain/user"
	"github.com/toryoki/jobhub/internal/observability"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)

const userColumns = `id, name, email, role, password_hash,
         password_changed_at, password_reset_token_hash, password_reset_expires,
         active, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.PasswordHash,
		&u.PasswordChangedAt,
		&u.PasswordResetTokenHash,
		&u.PasswordResetExpires,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateParams) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Email:        p.Email,
		Role:         p.Role,
		PasswordHash: p.PasswordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, role, password_hash, active, created_at, updated_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Name, u.Email, u.Role, u.PasswordHash, u.Active, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, ErrEmailAlreadyUsed
		}
		return user.User{}, err
	}

	return u, nil
}

// GetByEmail defaults to active users only; soft-deleted accounts stay
// invisible unless the caller explicitly opts in.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string, includeInactive bool) (user.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	if !includeInactive {
		q += ` AND active`
	}

	var u user.User
	var err error

	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx, q, email))
		return err
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string, includeInactive bool) (user.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	if !includeInactive {
		q += ` AND active`
	}

	var u user.User
	var err error

	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx, q, id))
		return err
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// GetByResetTokenHash resolves an unexpired reset secret to its user. The
// hash is the lookup key; expiry is enforced in the predicate so an expired
// secret behaves exactly like a nonexistent one.
func (r *UsersRepo) GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_reset_token", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+`
         FROM users
         WHERE password_reset_token_hash = $1
           AND password_reset_expires > $2
           AND active`,
			tokenHash, now,
		))
		return err
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// UpdateProfile mutates name/email only. The password fields are not
// reachable from this path.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, name, email *string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.update_profile", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
         SET name = COALESCE($2, name),
             email = COALESCE($3, email),
             updated_at = NOW()
         WHERE id = $1 AND active
         RETURNING `+userColumns,
			id, name, email,
		))
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, ErrEmailAlreadyUsed
		}
		return user.User{}, err
	}
	return u, nil
}

// UpdatePassword stores a new hash, stamps password_changed_at and clears any
// outstanding reset secret in one statement.
func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("users.update_password", func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE users
         SET password_hash = $2,
             password_changed_at = $3,
             password_reset_token_hash = NULL,
             password_reset_expires = NULL,
             updated_at = NOW()
         WHERE id = $1 AND active`,
			id, passwordHash, changedAt,
		)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetResetToken is a validation-bypassing partial save: only the two reset
// fields change.
func (r *UsersRepo) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("users.set_reset_token", func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE users
         SET password_reset_token_hash = $2,
             password_reset_expires = $3,
             updated_at = NOW()
         WHERE id = $1 AND active`,
			id, tokenHash, expiresAt,
		)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClearResetToken is the compensating action for failed reset-mail delivery,
// and the single-use cleanup after a successful reset.
func (r *UsersRepo) ClearResetToken(ctx context.Context, id string) error {
	return r.observe("users.clear_reset_token", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users
         SET password_reset_token_hash = NULL,
             password_reset_expires = NULL,
             updated_at = NOW()
         WHERE id = $1`,
			id,
		)
		return err
	})
}

// Deactivate soft-deletes: the record is kept, normal lookups stop seeing it.
func (r *UsersRepo) Deactivate(ctx context.Context, id string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("users.deactivate", func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE users SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active`,
			id,
		)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

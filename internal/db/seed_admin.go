package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/toryoki/jobhub/internal/auth"
	"github.com/toryoki/jobhub/internal/config"
	"github.com/toryoki/jobhub/internal/domain/user"
	"github.com/toryoki/jobhub/internal/repo/postgres"
	"github.com/toryoki/jobhub/internal/security"
)

// EnsureAdminUser seeds the bootstrap admin account once, if configured.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	repo := postgres.NewUsersRepo(pool, nil)

	_, err = repo.Create(ctx, user.CreateParams{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
	})

	return err
}

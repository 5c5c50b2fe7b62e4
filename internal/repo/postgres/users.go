package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/courseapi/internal/domain/user"
	"github.com/geocoder89/courseapi/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const emailUniqueConstraint = "users_email_address_key"

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	u.EmailAddress = user.NormalizeEmail(u.EmailAddress)

	err := observe(r.prom, "users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, first_name, last_name, email_address, password_hash, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.FirstName, u.LastName, u.EmailAddress, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if isUniqueViolation(err, emailUniqueConstraint) {
			return user.User{}, user.ErrEmailTaken()
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := observe(r.prom, "users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, first_name, last_name, email_address, password_hash, created_at, updated_at
			FROM users
			WHERE email_address = $1`,
			user.NormalizeEmail(email),
		).Scan(
			&u.ID,
			&u.FirstName,
			&u.LastName,
			&u.EmailAddress,
			&u.PasswordHash,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := observe(r.prom, "users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, first_name, last_name, email_address, password_hash, created_at, updated_at
			FROM users
			WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.FirstName,
			&u.LastName,
			&u.EmailAddress,
			&u.PasswordHash,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

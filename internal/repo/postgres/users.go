package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkaraca/userhub/internal/domain/user"
)

// Postgres error class for unique constraint violations.
const uniqueViolationCode = "23505"

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

// Create inserts a new record. Email uniqueness is enforced by the unique
// index on users.email; a violation surfaces as user.ErrEmailTaken. There is
// deliberately no select-then-insert pre-check, so concurrent registrations
// with the same email race only inside the database.
func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash string, age *int) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Age:          age,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, age, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Age, u.CreatedAt, u.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx,
		`SELECT id, name, email, password_hash, age, created_at, updated_at
		 FROM users
		 WHERE email = $1`,
		email,
	)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx,
		`SELECT id, name, email, password_hash, age, created_at, updated_at
		 FROM users
		 WHERE id = $1`,
		id,
	)
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, password_hash, age, created_at, updated_at
		 FROM users
		 ORDER BY created_at ASC, id ASC`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]user.User, 0)

	for rows.Next() {
		var u user.User

		err = rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Age, &u.CreatedAt, &u.UpdatedAt)

		if err != nil {
			return nil, err
		}

		output = append(output, u)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}

// Update merges the non-nil request fields into the stored record. COALESCE
// keeps the stored value when a field is absent from the request body.
func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(ctx,
		`UPDATE users
			SET name = COALESCE($2, name),
					email = COALESCE($3, email),
					age = COALESCE($4, age),
					updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, name, email, password_hash, age, created_at, updated_at`,
		id,
		req.Name,
		req.Email,
		req.Age,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Age,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

	if err != nil {
		return err
	}

	// if no rows were deleted the id did not exist
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) getOne(ctx context.Context, query string, arg any) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Age,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

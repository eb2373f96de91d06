package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type Repository interface {
	Create(ctx context.Context, params RegisterParams, hashedPassword string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateAddress(ctx context.Context, userID int64, addr Address) error
	// AdjustPoints applies a signed delta to the user's balance. The update
	// is conditional so the balance can never go negative.
	AdjustPoints(ctx context.Context, userID int64, delta int) error
	HasRole(ctx context.Context, userID int64, role Role) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, full_name, email, password, phone, points, role, city, street, building, apartment, created_at`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.Password, &u.Phone,
		&u.Points, &u.Role, &u.City, &u.Street, &u.Building, &u.Apartment,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, params RegisterParams, hashedPassword string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (full_name, email, password, phone, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		params.FullName, params.Email, hashedPassword, params.Phone, params.Role,
	)

	u, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) UpdateAddress(ctx context.Context, userID int64, addr Address) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET city = $1, street = $2, building = $3, apartment = $4
		WHERE id = $5
	`, addr.City, addr.Street, addr.Building, addr.Apartment, userID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) AdjustPoints(ctx context.Context, userID int64, delta int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET points = points + $1
		WHERE id = $2 AND points + $1 >= 0
	`, delta, userID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		// distinguish a missing user from a balance guard rejection
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		return ErrNegativeBalance
	}
	return nil
}

func (r *repository) HasRole(ctx context.Context, userID int64, role Role) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND role = $2)`, userID, role).Scan(&ok)
	return ok, err
}

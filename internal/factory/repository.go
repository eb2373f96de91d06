package factory

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNoFactoryAvailable = errors.New("no factory available")

type Repository interface {
	Create(ctx context.Context, f *Factory) (*Factory, error)
	List(ctx context.Context) ([]*Factory, error)
	// FirstAvailable is the current routing policy: any registered factory
	// will do, so take the oldest one.
	FirstAvailable(ctx context.Context) (*Factory, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *Factory) (*Factory, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO factories (name, city, street, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, f.Name, f.City, f.Street, f.Capacity).Scan(&f.ID)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *repository) List(ctx context.Context) ([]*Factory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, city, street, capacity FROM factories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var factories []*Factory
	for rows.Next() {
		var f Factory
		if err := rows.Scan(&f.ID, &f.Name, &f.City, &f.Street, &f.Capacity); err != nil {
			return nil, err
		}
		factories = append(factories, &f)
	}
	return factories, rows.Err()
}

func (r *repository) FirstAvailable(ctx context.Context) (*Factory, error) {
	var f Factory
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, city, street, capacity FROM factories ORDER BY id LIMIT 1`).
		Scan(&f.ID, &f.Name, &f.City, &f.Street, &f.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoFactoryAvailable
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

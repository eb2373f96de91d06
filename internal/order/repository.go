package order

import (
	"context"
	"database/sql"
	"errors"

	"greencycle-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Insert(ctx context.Context, o *Order) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListByCollector(ctx context.Context, collectorID int64) ([]*Order, error)
	ListByFactory(ctx context.Context, factoryID int64) ([]*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]*Order, error)
	// ListAvailable returns PENDING orders with no collector assigned.
	ListAvailable(ctx context.Context) ([]*Order, error)

	// Accept assigns the collector if and only if the order is still PENDING
	// and unassigned. Exactly one of two racing collectors can win.
	Accept(ctx context.Context, orderID, collectorID int64) (bool, error)

	// UpdateStatus flips the status only when the current value still matches
	// from. A false return means the caller lost a race.
	UpdateStatus(ctx context.Context, orderID int64, from, to Status) (bool, error)

	// CompleteTx finalizes the order and credits the user's points as one
	// transaction. Both writes commit together or not at all.
	CompleteTx(ctx context.Context, orderID, userID int64, pts int) error

	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, status, order_date, material, quantity, user_id, collector_id, factory_id, city, street, building, apartment, created_at, updated_at`

func scanOrder(s interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := s.Scan(
		&o.ID, &o.Status, &o.OrderDate, &o.Material, &o.Quantity,
		&o.UserID, &o.CollectorID, &o.FactoryID,
		&o.City, &o.Street, &o.Building, &o.Apartment,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) Insert(ctx context.Context, o *Order) (*Order, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (
			status, order_date, material, quantity,
			user_id, factory_id, city, street, building, apartment
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at
	`,
		o.Status, o.OrderDate, o.Material, o.Quantity,
		o.UserID, o.FactoryID, o.City, o.Street, o.Building, o.Apartment,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (r *repository) list(ctx context.Context, where string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+where+` ORDER BY order_date DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]*Order, error) {
	return r.list(ctx, `user_id = $1`, userID)
}

func (r *repository) ListByCollector(ctx context.Context, collectorID int64) ([]*Order, error) {
	return r.list(ctx, `collector_id = $1`, collectorID)
}

func (r *repository) ListByFactory(ctx context.Context, factoryID int64) ([]*Order, error) {
	return r.list(ctx, `factory_id = $1`, factoryID)
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]*Order, error) {
	return r.list(ctx, `status = $1`, status)
}

func (r *repository) ListAvailable(ctx context.Context) ([]*Order, error) {
	return r.list(ctx, `status = $1 AND collector_id IS NULL`, StatusPending)
}

func (r *repository) Accept(ctx context.Context, orderID, collectorID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET collector_id = $1, status = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4 AND collector_id IS NULL
	`, collectorID, StatusAccepted, orderID, StatusPending)
	if err != nil {
		return false, err
	}

	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID int64, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, orderID, from)
	if err != nil {
		return false, err
	}

	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (r *repository) CompleteTx(ctx context.Context, orderID, userID int64, pts int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CompleteTx"),
		zap.Int64("order_id", orderID),
		zap.Int("points", pts),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, StatusCompleted, orderID, StatusDelivered)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		// a concurrent completion already flipped the status
		return ErrConflict
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET points = points + $1
		WHERE id = $2
	`, pts, userID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit completion", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order completed, points credited", zap.Int64("user_id", userID))
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

package reward

import (
	"context"
	"database/sql"
	"errors"

	"greencycle-be/internal/history"
	"greencycle-be/internal/logger"
	"greencycle-be/internal/user"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Insert(ctx context.Context, params CreateParams) (*Reward, error)
	GetByID(ctx context.Context, id int64) (*Reward, error)
	Update(ctx context.Context, params UpdateParams) (*Reward, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	HasHistory(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	SetAvailability(ctx context.Context, id int64, available bool) error

	ListAvailable(ctx context.Context, maxPoints *int) ([]*Reward, error)
	ListByCategory(ctx context.Context, category string) ([]*Reward, error)
	Search(ctx context.Context, term string) ([]*Reward, error)
	Categories(ctx context.Context) ([]string, error)
	ListLowStock(ctx context.Context, threshold int) ([]*Reward, error)
	GetStats(ctx context.Context, id int64) (*Stats, error)
	Popular(ctx context.Context, limit int) ([]*PopularReward, error)

	// UpdateStock applies a stock delta, clamping at zero, and keeps
	// is_available in line with stock_quantity > 0.
	UpdateStock(ctx context.Context, id int64, delta int) (*Reward, error)

	// RedeemTx is the settlement: lock user and reward rows, re-check points
	// and stock, deduct both, and write the history record. All of it
	// commits together or rolls back together.
	RedeemTx(ctx context.Context, userID, rewardID int64, quantity int) (*history.Redemption, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const rewardColumns = `id, name, description, category, required_points, stock_quantity, is_available, image_url, created_at, updated_at`

func scanReward(s interface{ Scan(...any) error }) (*Reward, error) {
	var r Reward
	err := s.Scan(
		&r.ID, &r.Name, &r.Description, &r.Category,
		&r.RequiredPoints, &r.StockQuantity, &r.IsAvailable, &r.ImageURL,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *repository) Insert(ctx context.Context, params CreateParams) (*Reward, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO rewards (name, description, category, required_points, stock_quantity, is_available, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+rewardColumns,
		params.Name, params.Description, params.Category,
		params.RequiredPoints, params.StockQuantity, params.StockQuantity > 0, params.ImageURL,
	)

	rw, err := scanReward(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return rw, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Reward, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+rewardColumns+` FROM rewards WHERE id = $1`, id)

	rw, err := scanReward(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRewardNotFound
	}
	return rw, err
}

func (r *repository) Update(ctx context.Context, params UpdateParams) (*Reward, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE rewards
		SET name = $1, description = $2, category = $3, required_points = $4,
		    image_url = COALESCE($5, image_url), updated_at = NOW()
		WHERE id = $6
		RETURNING `+rewardColumns,
		params.Name, params.Description, params.Category,
		params.RequiredPoints, params.ImageURL, params.ID,
	)

	rw, err := scanReward(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRewardNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return rw, nil
}

func (r *repository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM rewards WHERE LOWER(name) = LOWER($1) AND id <> $2
		)`, name, excludeID).Scan(&exists)
	return exists, err
}

func (r *repository) HasHistory(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM history_rewards WHERE reward_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rewards WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrRewardNotFound
	}
	return nil
}

func (r *repository) SetAvailability(ctx context.Context, id int64, available bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rewards SET is_available = $1, updated_at = NOW() WHERE id = $2
	`, available, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrRewardNotFound
	}
	return nil
}

func (r *repository) listRewards(ctx context.Context, query string, args ...any) ([]*Reward, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rewards []*Reward
	for rows.Next() {
		rw, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, rw)
	}
	return rewards, rows.Err()
}

func (r *repository) ListAvailable(ctx context.Context, maxPoints *int) ([]*Reward, error) {
	if maxPoints != nil {
		return r.listRewards(ctx, `
			SELECT `+rewardColumns+` FROM rewards
			WHERE is_available = TRUE AND required_points <= $1
			ORDER BY required_points
		`, *maxPoints)
	}
	return r.listRewards(ctx, `
		SELECT `+rewardColumns+` FROM rewards
		WHERE is_available = TRUE
		ORDER BY required_points
	`)
}

func (r *repository) ListByCategory(ctx context.Context, category string) ([]*Reward, error) {
	return r.listRewards(ctx, `
		SELECT `+rewardColumns+` FROM rewards
		WHERE LOWER(category) = LOWER($1)
		ORDER BY required_points
	`, category)
}

func (r *repository) Search(ctx context.Context, term string) ([]*Reward, error) {
	return r.listRewards(ctx, `
		SELECT `+rewardColumns+` FROM rewards
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY name
	`, "%"+term+"%")
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM rewards ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) ListLowStock(ctx context.Context, threshold int) ([]*Reward, error) {
	return r.listRewards(ctx, `
		SELECT `+rewardColumns+` FROM rewards
		WHERE stock_quantity <= $1
		ORDER BY stock_quantity
	`, threshold)
}

func (r *repository) GetStats(ctx context.Context, id int64) (*Stats, error) {
	rw, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Reward: *rw}
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2)
		FROM history_rewards
		WHERE reward_id = $1
	`, id, history.StatusPending).Scan(&stats.TotalRedemptions, &stats.PendingRedemptions)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *repository) Popular(ctx context.Context, limit int) ([]*PopularReward, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.description, r.category, r.required_points,
		       r.stock_quantity, r.is_available, r.image_url, r.created_at, r.updated_at,
		       COUNT(h.id) AS redemptions
		FROM rewards r
		JOIN history_rewards h ON h.reward_id = r.id
		GROUP BY r.id
		ORDER BY redemptions DESC, r.id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var popular []*PopularReward
	for rows.Next() {
		var p PopularReward
		err := rows.Scan(
			&p.Reward.ID, &p.Reward.Name, &p.Reward.Description, &p.Reward.Category,
			&p.Reward.RequiredPoints, &p.Reward.StockQuantity, &p.Reward.IsAvailable,
			&p.Reward.ImageURL, &p.Reward.CreatedAt, &p.Reward.UpdatedAt,
			&p.Redemptions,
		)
		if err != nil {
			return nil, err
		}
		popular = append(popular, &p)
	}
	return popular, rows.Err()
}

func (r *repository) UpdateStock(ctx context.Context, id int64, delta int) (*Reward, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE rewards
		SET stock_quantity = GREATEST(stock_quantity + $1, 0),
		    is_available = GREATEST(stock_quantity + $1, 0) > 0,
		    updated_at = NOW()
		WHERE id = $2
		RETURNING `+rewardColumns, delta, id)

	rw, err := scanReward(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRewardNotFound
	}
	return rw, err
}

func (r *repository) RedeemTx(ctx context.Context, userID, rewardID int64, quantity int) (*history.Redemption, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "RedeemTx"),
		zap.Int64("user_id", userID),
		zap.Int64("reward_id", rewardID),
		zap.Int("quantity", quantity),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// lock the user row so concurrent redemptions serialize on the balance
	var userPoints int
	err = tx.QueryRowContext(ctx,
		`SELECT points FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&userPoints)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, mapTxError(err)
	}

	var (
		rewardName     string
		requiredPoints int
		stock          int
		isAvailable    bool
	)
	err = tx.QueryRowContext(ctx, `
		SELECT name, required_points, stock_quantity, is_available
		FROM rewards
		WHERE id = $1
		FOR UPDATE
	`, rewardID).Scan(&rewardName, &requiredPoints, &stock, &isAvailable)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRewardNotFound
	}
	if err != nil {
		return nil, mapTxError(err)
	}

	// re-check the business rules under lock; the pre-flight validation in
	// the service may have raced another transaction
	if !isAvailable {
		return nil, ErrRewardUnavailable
	}
	if stock < quantity {
		return nil, ErrInsufficientStock
	}

	required := requiredPoints * quantity
	if userPoints < required {
		return nil, ErrInsufficientPoints
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET points = points - $1 WHERE id = $2
	`, required, userID); err != nil {
		return nil, mapTxError(err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE rewards
		SET stock_quantity = stock_quantity - $1,
		    is_available = (stock_quantity - $1) > 0,
		    updated_at = NOW()
		WHERE id = $2
	`, quantity, rewardID); err != nil {
		return nil, mapTxError(err)
	}

	h := &history.Redemption{
		UserID:     userID,
		RewardID:   rewardID,
		RewardName: rewardName,
		Quantity:   quantity,
		PointsUsed: required,
		Status:     history.StatusPending,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO history_rewards (user_id, reward_id, quantity, points_used, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, redeemed_at
	`, h.UserID, h.RewardID, h.Quantity, h.PointsUsed, h.Status).Scan(&h.ID, &h.RedeemedAt)
	if err != nil {
		return nil, mapTxError(err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit redemption", zap.Error(err))
		return nil, mapTxError(err)
	}

	committed = true
	log.Info("redemption settled",
		zap.Int64("redemption_id", h.ID),
		zap.Int("points_used", required),
	)
	return h, nil
}

// mapTxError surfaces serialization failures and deadlocks as a retryable
// conflict instead of an opaque driver error.
func mapTxError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return ErrConflict
		}
	}
	return err
}

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"greencycle-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Redemption, error)
	ListByUser(ctx context.Context, userID int64) ([]*Redemption, error)
	ListPaged(ctx context.Context, params QueryParams) (*Page, error)
	SummaryByUser(ctx context.Context, userID int64) (*Summary, error)
	// UpdateStatus flips the fulfillment status only when the current value
	// still matches from.
	UpdateStatus(ctx context.Context, id int64, from, to RedemptionStatus) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const redemptionColumns = `
	hr.id, hr.user_id, hr.reward_id, r.name,
	hr.quantity, hr.points_used, hr.redeemed_at, hr.status
`

func scanRedemption(s interface{ Scan(...any) error }) (*Redemption, error) {
	var h Redemption
	err := s.Scan(
		&h.ID, &h.UserID, &h.RewardID, &h.RewardName,
		&h.Quantity, &h.PointsUsed, &h.RedeemedAt, &h.Status,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Redemption, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+redemptionColumns+`
		FROM history_rewards hr
		JOIN rewards r ON r.id = hr.reward_id
		WHERE hr.id = $1
	`, id)

	h, err := scanRedemption(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRedemptionNotFound
	}
	return h, err
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]*Redemption, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+redemptionColumns+`
		FROM history_rewards hr
		JOIN rewards r ON r.id = hr.reward_id
		WHERE hr.user_id = $1
		ORDER BY hr.redeemed_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Redemption
	for rows.Next() {
		h, err := scanRedemption(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

func (r *repository) ListPaged(ctx context.Context, params QueryParams) (*Page, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListPaged"),
	)

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	where := "WHERE 1=1"
	args := []any{}
	argIndex := 1

	if params.UserID != nil {
		where += fmt.Sprintf(" AND hr.user_id = $%d", argIndex)
		args = append(args, *params.UserID)
		argIndex++
	}
	if params.RewardID != nil {
		where += fmt.Sprintf(" AND hr.reward_id = $%d", argIndex)
		args = append(args, *params.RewardID)
		argIndex++
	}
	if params.Status != nil {
		where += fmt.Sprintf(" AND hr.status = $%d", argIndex)
		args = append(args, *params.Status)
		argIndex++
	}
	if params.From != nil {
		where += fmt.Sprintf(" AND hr.redeemed_at >= $%d", argIndex)
		args = append(args, *params.From)
		argIndex++
	}
	if params.To != nil {
		where += fmt.Sprintf(" AND hr.redeemed_at <= $%d", argIndex)
		args = append(args, *params.To)
		argIndex++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM history_rewards hr ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count redemptions", zap.Error(err))
		return nil, err
	}

	orderBy := "hr.redeemed_at DESC"
	dir := "ASC"
	if params.SortDesc {
		dir = "DESC"
	}
	switch strings.ToLower(params.SortBy) {
	case "points_used":
		orderBy = "hr.points_used " + dir
	case "redeemed_at":
		orderBy = "hr.redeemed_at " + dir
	}

	query := `
		SELECT ` + redemptionColumns + `
		FROM history_rewards hr
		JOIN rewards r ON r.id = hr.reward_id
		` + where + `
		ORDER BY ` + orderBy +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query redemptions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*Redemption
	for rows.Next() {
		h, err := scanRedemption(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Page{Items: items, TotalCount: total, Page: page, PageSize: pageSize}, nil
}

func (r *repository) SummaryByUser(ctx context.Context, userID int64) (*Summary, error) {
	var s Summary
	s.UserID = userID
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(points_used), 0)
		FROM history_rewards
		WHERE user_id = $1 AND status <> $2
	`, userID, StatusCancelled).Scan(&s.TotalCount, &s.TotalPointsUsed)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to RedemptionStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE history_rewards
		SET status = $1
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, err
	}

	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

package history

import (
	"context"

	"greencycle-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	GetByID(ctx context.Context, id int64) (*Redemption, error)
	ListByUser(ctx context.Context, userID int64) ([]*Redemption, error)
	ListPaged(ctx context.Context, params QueryParams) (*Page, error)
	SummaryByUser(ctx context.Context, userID int64) (*Summary, error)
	// AdvanceStatus moves a redemption through the fulfillment workflow.
	AdvanceStatus(ctx context.Context, id int64, to RedemptionStatus) error
	// Cancel soft-deletes the record by flipping its status to CANCELLED.
	// The row and its points_used snapshot stay in place.
	Cancel(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id int64) (*Redemption, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]*Redemption, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListPaged(ctx context.Context, params QueryParams) (*Page, error) {
	return s.repo.ListPaged(ctx, params)
}

func (s *service) SummaryByUser(ctx context.Context, userID int64) (*Summary, error) {
	return s.repo.SummaryByUser(ctx, userID)
}

func (s *service) AdvanceStatus(ctx context.Context, id int64, to RedemptionStatus) error {
	log := logger.FromCtx(ctx).With(
		zap.Int64("redemption_id", id),
		zap.String("to", string(to)),
	)

	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !CanAdvance(h.Status, to) {
		return &InvalidFulfillmentError{From: h.Status, To: to}
	}

	ok, err := s.repo.UpdateStatus(ctx, id, h.Status, to)
	if err != nil {
		return err
	}
	if !ok {
		// lost a race with another fulfillment update, report the fresh state
		cur, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return &InvalidFulfillmentError{From: cur.Status, To: to}
	}

	log.Info("redemption status advanced", zap.String("from", string(h.Status)))
	return nil
}

func (s *service) Cancel(ctx context.Context, id int64) error {
	return s.AdvanceStatus(ctx, id, StatusCancelled)
}

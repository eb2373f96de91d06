package reward

import (
	"context"

	"greencycle-be/internal/history"
	"greencycle-be/internal/logger"
	"greencycle-be/internal/user"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, params CreateParams) (*Reward, error)
	GetByID(ctx context.Context, id int64) (*Reward, error)
	Update(ctx context.Context, params UpdateParams) (*Reward, error)
	// Delete hard-deletes a reward without redemption history and refuses
	// otherwise; SetAvailability(false) is the soft path.
	Delete(ctx context.Context, id int64) error
	SetAvailability(ctx context.Context, id int64, available bool) error

	ListAvailable(ctx context.Context, forUserID *int64) ([]*Reward, error)
	ListByCategory(ctx context.Context, category string) ([]*Reward, error)
	Search(ctx context.Context, term string) ([]*Reward, error)
	Categories(ctx context.Context) ([]string, error)
	ListLowStock(ctx context.Context, threshold int) ([]*Reward, error)
	GetStats(ctx context.Context, id int64) (*Stats, error)
	// Popular ranks rewards by redemption count, most redeemed first.
	Popular(ctx context.Context, limit int) ([]*PopularReward, error)

	UpdateStock(ctx context.Context, id int64, delta int) (*Reward, error)

	// Redeem settles a redemption: points down, stock down, history row in,
	// atomically. Returns the history record written inside the transaction.
	Redeem(ctx context.Context, userID, rewardID int64, quantity int) (*history.Redemption, error)
	// ValidateRedeem runs the same predicates as Redeem without mutating
	// anything. A nil return means Redeem would only fail on a race.
	ValidateRedeem(ctx context.Context, userID, rewardID int64, quantity int) error
}

type service struct {
	repo  Repository
	users user.Repository
}

func NewService(repo Repository, users user.Repository) Service {
	return &service{repo: repo, users: users}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Reward, error) {
	log := logger.FromCtx(ctx).With(zap.String("name", params.Name))

	taken, err := s.repo.ExistsByName(ctx, params.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	rw, err := s.repo.Insert(ctx, params)
	if err != nil {
		log.Error("failed to create reward", zap.Error(err))
		return nil, err
	}

	log.Info("reward created", zap.Int64("reward_id", rw.ID))
	return rw, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Reward, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, params UpdateParams) (*Reward, error) {
	taken, err := s.repo.ExistsByName(ctx, params.Name, params.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	return s.repo.Update(ctx, params)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	has, err := s.repo.HasHistory(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return ErrHasHistory
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) SetAvailability(ctx context.Context, id int64, available bool) error {
	return s.repo.SetAvailability(ctx, id, available)
}

func (s *service) ListAvailable(ctx context.Context, forUserID *int64) ([]*Reward, error) {
	if forUserID == nil {
		return s.repo.ListAvailable(ctx, nil)
	}

	u, err := s.users.GetByID(ctx, *forUserID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAvailable(ctx, &u.Points)
}

func (s *service) ListByCategory(ctx context.Context, category string) ([]*Reward, error) {
	return s.repo.ListByCategory(ctx, category)
}

func (s *service) Search(ctx context.Context, term string) ([]*Reward, error) {
	return s.repo.Search(ctx, term)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *service) ListLowStock(ctx context.Context, threshold int) ([]*Reward, error) {
	return s.repo.ListLowStock(ctx, threshold)
}

func (s *service) GetStats(ctx context.Context, id int64) (*Stats, error) {
	return s.repo.GetStats(ctx, id)
}

const (
	defaultPopularLimit = 5
	maxPopularLimit     = 50
)

func (s *service) Popular(ctx context.Context, limit int) ([]*PopularReward, error) {
	if limit < 1 {
		limit = defaultPopularLimit
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}
	return s.repo.Popular(ctx, limit)
}

func (s *service) UpdateStock(ctx context.Context, id int64, delta int) (*Reward, error) {
	log := logger.FromCtx(ctx).With(
		zap.Int64("reward_id", id),
		zap.Int("delta", delta),
	)

	rw, err := s.repo.UpdateStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}

	log.Info("stock updated",
		zap.Int("stock", rw.StockQuantity),
		zap.Bool("is_available", rw.IsAvailable),
	)
	return rw, nil
}

func (s *service) Redeem(ctx context.Context, userID, rewardID int64, quantity int) (*history.Redemption, error) {
	log := logger.FromCtx(ctx).With(
		zap.Int64("user_id", userID),
		zap.Int64("reward_id", rewardID),
		zap.Int("quantity", quantity),
	)

	// business rules are checked before any mutation; RedeemTx re-checks
	// them under row locks to close the validation/commit gap
	if err := s.ValidateRedeem(ctx, userID, rewardID, quantity); err != nil {
		log.Warn("redemption rejected", zap.Error(err))
		return nil, err
	}

	h, err := s.repo.RedeemTx(ctx, userID, rewardID, quantity)
	if err != nil {
		log.Warn("redemption failed to settle", zap.Error(err))
		return nil, err
	}

	log.Info("redemption completed",
		zap.Int64("redemption_id", h.ID),
		zap.Int("points_used", h.PointsUsed),
	)
	return h, nil
}

func (s *service) ValidateRedeem(ctx context.Context, userID, rewardID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	rw, err := s.repo.GetByID(ctx, rewardID)
	if err != nil {
		return err
	}

	if !rw.IsAvailable {
		return ErrRewardUnavailable
	}
	if rw.StockQuantity < quantity {
		return ErrInsufficientStock
	}
	if u.Points < rw.RequiredPoints*quantity {
		return ErrInsufficientPoints
	}
	return nil
}

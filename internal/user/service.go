package user

import (
	"context"
	"errors"

	"greencycle-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, params RegisterParams) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	// AdjustPoints is the admin correction path. Order completion and
	// redemption mutate points through their own transactions, not here.
	AdjustPoints(ctx context.Context, userID int64, delta int) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, params RegisterParams) (string, *User, error) {
	log := logger.FromCtx(ctx)

	if params.Role == "" {
		params.Role = RoleUser
	}

	hashed, err := HashPassword(params.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, err
	}

	u, err := s.repo.Create(ctx, params, hashed)
	if err != nil {
		log.Error("failed to create user", zap.String("email", params.Email), zap.Error(err))
		return "", nil, err
	}

	token, err := GenerateJWT(u.ID, string(u.Role), u.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Int64("user_id", u.ID), zap.Error(err))
		return "", nil, err
	}

	log.Info("register completed",
		zap.Int64("user_id", u.ID),
		zap.String("email", u.Email),
		zap.String("role", string(u.Role)),
	)

	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.New("invalid email or password")
	}

	if !CheckPasswordHash(password, u.Password) {
		return "", nil, errors.New("invalid email or password")
	}

	token, err := GenerateJWT(u.ID, string(u.Role), u.Email)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) AdjustPoints(ctx context.Context, userID int64, delta int) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.Int64("user_id", userID),
		zap.Int("delta", delta),
	)

	if err := s.repo.AdjustPoints(ctx, userID, delta); err != nil {
		log.Warn("point adjustment rejected", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	log.Info("points adjusted", zap.Int("balance", u.Points))
	return u, nil
}

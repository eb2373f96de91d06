package order

import (
	"context"
	"time"

	"greencycle-be/internal/factory"
	"greencycle-be/internal/logger"
	"greencycle-be/internal/points"
	"greencycle-be/internal/user"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, params CreateParams) (*Order, error)
	GetByID(ctx context.Context, orderID int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListByCollector(ctx context.Context, collectorID int64) ([]*Order, error)
	ListByFactory(ctx context.Context, factoryID int64) ([]*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]*Order, error)
	ListAvailable(ctx context.Context) ([]*Order, error)

	CollectorAccept(ctx context.Context, orderID, collectorID int64) error
	CollectorUpdateStatus(ctx context.Context, orderID, collectorID int64, newStatus Status) error
	// Complete finalizes a DELIVERED order and returns the points awarded.
	Complete(ctx context.Context, orderID int64) (int, error)
	UserCancel(ctx context.Context, orderID, userID int64) error
	AdminCancel(ctx context.Context, orderID int64) error
	Delete(ctx context.Context, orderID int64) error
}

type service struct {
	repo      Repository
	users     user.Repository
	factories factory.Repository
	calc      *points.Calculator
}

func NewService(repo Repository, users user.Repository, factories factory.Repository, calc *points.Calculator) Service {
	return &service{
		repo:      repo,
		users:     users,
		factories: factories,
		calc:      calc,
	}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("material", string(params.Material)),
		zap.Float64("quantity_kg", params.Quantity),
	)

	if params.Quantity < MinQuantityKg {
		log.Warn("quantity below minimum")
		return nil, ErrInvalidQuantity
	}
	if !params.Material.Valid() {
		log.Warn("unknown material")
		return nil, ErrInvalidMaterial
	}

	u, err := s.users.FindByEmail(ctx, params.Email)
	if err != nil {
		log.Warn("failed to resolve user", zap.String("email", params.Email), zap.Error(err))
		return nil, err
	}

	f, err := s.factories.FirstAvailable(ctx)
	if err != nil {
		log.Error("failed to resolve factory", zap.Error(err))
		return nil, err
	}

	// keep the pickup address on the user profile once it is known
	if u.City == nil || *u.City == "" {
		if err := s.users.UpdateAddress(ctx, u.ID, params.Address); err != nil {
			log.Error("failed to persist user address", zap.Error(err))
			return nil, err
		}
	}

	o := &Order{
		Status:    StatusPending,
		OrderDate: time.Now(),
		Material:  params.Material,
		Quantity:  params.Quantity,
		UserID:    u.ID,
		FactoryID: f.ID,
		City:      params.Address.City,
		Street:    params.Address.Street,
		Building:  params.Address.Building,
		Apartment: params.Address.Apartment,
	}

	o, err = s.repo.Insert(ctx, o)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", u.ID),
		zap.Int64("factory_id", f.ID),
	)
	return o, nil
}

func (s *service) GetByID(ctx context.Context, orderID int64) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListByCollector(ctx context.Context, collectorID int64) ([]*Order, error) {
	return s.repo.ListByCollector(ctx, collectorID)
}

func (s *service) ListByFactory(ctx context.Context, factoryID int64) ([]*Order, error) {
	return s.repo.ListByFactory(ctx, factoryID)
}

func (s *service) ListByStatus(ctx context.Context, status Status) ([]*Order, error) {
	if !status.Valid() {
		return nil, ErrUnknownStatus
	}
	return s.repo.ListByStatus(ctx, status)
}

func (s *service) ListAvailable(ctx context.Context) ([]*Order, error) {
	return s.repo.ListAvailable(ctx)
}

func (s *service) CollectorAccept(ctx context.Context, orderID, collectorID int64) error {
	log := logger.FromCtx(ctx).With(
		zap.Int64("order_id", orderID),
		zap.Int64("collector_id", collectorID),
	)

	isCollector, err := s.users.HasRole(ctx, collectorID, user.RoleCollector)
	if err != nil {
		return err
	}
	if !isCollector {
		return user.ErrCollectorNotFound
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !CanTransition(o.Status, StatusAccepted) {
		return newInvalidTransition(o.Status, StatusAccepted)
	}

	ok, err := s.repo.Accept(ctx, orderID, collectorID)
	if err != nil {
		return err
	}
	if !ok {
		// another collector won the race; report against the fresh status
		cur, err := s.repo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		return newInvalidTransition(cur.Status, StatusAccepted)
	}

	log.Info("order accepted by collector")
	return nil
}

func (s *service) CollectorUpdateStatus(ctx context.Context, orderID, collectorID int64, newStatus Status) error {
	log := logger.FromCtx(ctx).With(
		zap.Int64("order_id", orderID),
		zap.Int64("collector_id", collectorID),
		zap.String("new_status", string(newStatus)),
	)

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if o.CollectorID == nil || *o.CollectorID != collectorID {
		log.Warn("collector does not own order")
		return ErrUnauthorized
	}

	// completion credits points and stays an admin/system action
	if newStatus == StatusCompleted {
		return ErrUnauthorized
	}

	if !CanTransition(o.Status, newStatus) {
		return newInvalidTransition(o.Status, newStatus)
	}

	ok, err := s.repo.UpdateStatus(ctx, orderID, o.Status, newStatus)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	log.Info("order status updated")
	return nil
}

func (s *service) Complete(ctx context.Context, orderID int64) (int, error) {
	log := logger.FromCtx(ctx).With(zap.Int64("order_id", orderID))

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if o.Status != StatusDelivered {
		return 0, newInvalidTransition(o.Status, StatusCompleted)
	}

	pts := s.calc.Points(o.Material, o.Quantity)

	if err := s.repo.CompleteTx(ctx, orderID, o.UserID, pts); err != nil {
		log.Warn("completion did not commit", zap.Error(err))
		return 0, err
	}

	log.Info("order completed",
		zap.Int64("user_id", o.UserID),
		zap.Int("points_awarded", pts),
	)
	return pts, nil
}

func (s *service) UserCancel(ctx context.Context, orderID, userID int64) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.UserID != userID {
		return ErrUnauthorized
	}
	return s.cancel(ctx, o)
}

func (s *service) AdminCancel(ctx context.Context, orderID int64) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return s.cancel(ctx, o)
}

func (s *service) cancel(ctx context.Context, o *Order) error {
	if !CanTransition(o.Status, StatusCancelled) {
		return newInvalidTransition(o.Status, StatusCancelled)
	}

	ok, err := s.repo.UpdateStatus(ctx, o.ID, o.Status, StatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	logger.FromCtx(ctx).Info("order cancelled", zap.Int64("order_id", o.ID))
	return nil
}

func (s *service) Delete(ctx context.Context, orderID int64) error {
	log := logger.FromCtx(ctx).With(zap.Int64("order_id", orderID))

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if o.Status == StatusCompleted {
		// awarded points are a sunk reward, deletion does not claw them back
		log.Warn("deleting completed order, awarded points are kept",
			zap.Int64("user_id", o.UserID))
	}

	return s.repo.Delete(ctx, orderID)
}

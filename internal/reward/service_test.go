package reward

import (
	"context"
	"testing"
	"time"

	"greencycle-be/internal/history"
	"greencycle-be/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, params CreateParams) (*Reward, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reward), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Reward, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reward), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, params UpdateParams) (*Reward, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reward), args.Error(1)
}

func (m *MockRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) HasHistory(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}

func (m *MockRepository) ListAvailable(ctx context.Context, maxPoints *int) ([]*Reward, error) {
	args := m.Called(ctx, maxPoints)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Reward), args.Error(1)
}

func (m *MockRepository) ListByCategory(ctx context.Context, category string) ([]*Reward, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Reward), args.Error(1)
}

func (m *MockRepository) Search(ctx context.Context, term string) ([]*Reward, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Reward), args.Error(1)
}

func (m *MockRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) ListLowStock(ctx context.Context, threshold int) ([]*Reward, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Reward), args.Error(1)
}

func (m *MockRepository) GetStats(ctx context.Context, id int64) (*Stats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stats), args.Error(1)
}

func (m *MockRepository) Popular(ctx context.Context, limit int) ([]*PopularReward, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*PopularReward), args.Error(1)
}

func (m *MockRepository) UpdateStock(ctx context.Context, id int64, delta int) (*Reward, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reward), args.Error(1)
}

func (m *MockRepository) RedeemTx(ctx context.Context, userID, rewardID int64, quantity int) (*history.Redemption, error) {
	args := m.Called(ctx, userID, rewardID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.Redemption), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, params user.RegisterParams, hashed string) (*user.User, error) {
	args := m.Called(ctx, params, hashed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) UpdateAddress(ctx context.Context, userID int64, addr user.Address) error {
	args := m.Called(ctx, userID, addr)
	return args.Error(0)
}

func (m *MockUserRepository) AdjustPoints(ctx context.Context, userID int64, delta int) error {
	args := m.Called(ctx, userID, delta)
	return args.Error(0)
}

func (m *MockUserRepository) HasRole(ctx context.Context, userID int64, role user.Role) (bool, error) {
	args := m.Called(ctx, userID, role)
	return args.Bool(0), args.Error(1)
}

// --- Tests ---

func TestService_ValidateRedeem(t *testing.T) {
	ctx := context.Background()
	userID := int64(1)
	rewardID := int64(2)

	available := &Reward{ID: rewardID, Name: "Tote Bag", RequiredPoints: 40, StockQuantity: 5, IsAvailable: true}

	tests := []struct {
		name     string
		quantity int
		user     *user.User
		userErr  error
		reward   *Reward
		wantErr  error
	}{
		{"OK", 2, &user.User{ID: userID, Points: 100}, nil, available, nil},
		{"ZeroQuantity", 0, nil, nil, nil, ErrInvalidQuantity},
		{"UserMissing", 1, nil, user.ErrUserNotFound, nil, user.ErrUserNotFound},
		{"Unavailable", 1, &user.User{ID: userID, Points: 100}, nil,
			&Reward{ID: rewardID, RequiredPoints: 40, StockQuantity: 5, IsAvailable: false}, ErrRewardUnavailable},
		{"NotEnoughStock", 6, &user.User{ID: userID, Points: 1000}, nil, available, ErrInsufficientStock},
		{"NotEnoughPoints", 3, &user.User{ID: userID, Points: 100}, nil, available, ErrInsufficientPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			mockUsers := new(MockUserRepository)
			svc := NewService(mockRepo, mockUsers)

			if tt.user != nil || tt.userErr != nil {
				mockUsers.On("GetByID", ctx, userID).Return(tt.user, tt.userErr)
			}
			if tt.reward != nil {
				mockRepo.On("GetByID", ctx, rewardID).Return(tt.reward, nil)
			}

			err := svc.ValidateRedeem(ctx, userID, rewardID, tt.quantity)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestService_Redeem(t *testing.T) {
	ctx := context.Background()
	userID := int64(1)
	rewardID := int64(2)

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockUsers := new(MockUserRepository)
		svc := NewService(mockRepo, mockUsers)

		mockUsers.On("GetByID", ctx, userID).Return(&user.User{ID: userID, Points: 100}, nil)
		mockRepo.On("GetByID", ctx, rewardID).
			Return(&Reward{ID: rewardID, RequiredPoints: 40, StockQuantity: 5, IsAvailable: true}, nil)
		mockRepo.On("RedeemTx", ctx, userID, rewardID, 2).Return(&history.Redemption{
			ID: 9, UserID: userID, RewardID: rewardID,
			Quantity: 2, PointsUsed: 80, Status: history.StatusPending,
			RedeemedAt: time.Now(),
		}, nil)

		h, err := svc.Redeem(ctx, userID, rewardID, 2)
		require.NoError(t, err)
		assert.Equal(t, 80, h.PointsUsed)
		assert.Equal(t, history.StatusPending, h.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ValidationFailureNeverReachesTx", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockUsers := new(MockUserRepository)
		svc := NewService(mockRepo, mockUsers)

		mockUsers.On("GetByID", ctx, userID).Return(&user.User{ID: userID, Points: 10}, nil)
		mockRepo.On("GetByID", ctx, rewardID).
			Return(&Reward{ID: rewardID, RequiredPoints: 40, StockQuantity: 5, IsAvailable: true}, nil)

		_, err := svc.Redeem(ctx, userID, rewardID, 1)
		assert.ErrorIs(t, err, ErrInsufficientPoints)
		mockRepo.AssertNotCalled(t, "RedeemTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("TxRaceSurfacesAsIs", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockUsers := new(MockUserRepository)
		svc := NewService(mockRepo, mockUsers)

		mockUsers.On("GetByID", ctx, userID).Return(&user.User{ID: userID, Points: 100}, nil)
		mockRepo.On("GetByID", ctx, rewardID).
			Return(&Reward{ID: rewardID, RequiredPoints: 40, StockQuantity: 5, IsAvailable: true}, nil)
		mockRepo.On("RedeemTx", ctx, userID, rewardID, 1).Return(nil, ErrConflict)

		_, err := svc.Redeem(ctx, userID, rewardID, 1)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockUserRepository))

		params := CreateParams{Name: "Tote Bag", RequiredPoints: 40, StockQuantity: 10}
		mockRepo.On("ExistsByName", ctx, "Tote Bag", int64(0)).Return(false, nil)
		mockRepo.On("Insert", ctx, params).
			Return(&Reward{ID: 1, Name: "Tote Bag", StockQuantity: 10, IsAvailable: true}, nil)

		rw, err := svc.Create(ctx, params)
		require.NoError(t, err)
		assert.True(t, rw.IsAvailable)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockUserRepository))

		mockRepo.On("ExistsByName", ctx, "Tote Bag", int64(0)).Return(true, nil)

		_, err := svc.Create(ctx, CreateParams{Name: "Tote Bag"})
		assert.ErrorIs(t, err, ErrNameTaken)
		mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	rewardID := int64(2)

	t.Run("NoHistoryHardDeletes", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockUserRepository))

		mockRepo.On("HasHistory", ctx, rewardID).Return(false, nil)
		mockRepo.On("Delete", ctx, rewardID).Return(nil)

		assert.NoError(t, svc.Delete(ctx, rewardID))
	})

	t.Run("WithHistoryRefuses", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockUserRepository))

		mockRepo.On("HasHistory", ctx, rewardID).Return(true, nil)

		assert.ErrorIs(t, svc.Delete(ctx, rewardID), ErrHasHistory)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestService_ListAvailable_ForUser(t *testing.T) {
	ctx := context.Background()
	uid := int64(1)

	mockRepo := new(MockRepository)
	mockUsers := new(MockUserRepository)
	svc := NewService(mockRepo, mockUsers)

	mockUsers.On("GetByID", ctx, uid).Return(&user.User{ID: uid, Points: 75}, nil)
	points := 75
	mockRepo.On("ListAvailable", ctx, &points).
		Return([]*Reward{{ID: 1, RequiredPoints: 40}}, nil)

	rewards, err := svc.ListAvailable(ctx, &uid)
	require.NoError(t, err)
	assert.Len(t, rewards, 1)
	mockRepo.AssertExpectations(t)
}

func TestService_Popular(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"PassesThroughValidLimit", 3, 3},
		{"ZeroFallsBackToDefault", 0, 5},
		{"NegativeFallsBackToDefault", -1, 5},
		{"OversizedLimitIsClamped", 500, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			mockUsers := new(MockUserRepository)
			svc := NewService(mockRepo, mockUsers)

			mockRepo.On("Popular", ctx, tt.wantLimit).
				Return([]*PopularReward{{Reward: Reward{ID: 1}, Redemptions: 7}}, nil)

			popular, err := svc.Popular(ctx, tt.limit)
			require.NoError(t, err)
			assert.Len(t, popular, 1)
			assert.Equal(t, 7, popular[0].Redemptions)
			mockRepo.AssertExpectations(t)
		})
	}
}

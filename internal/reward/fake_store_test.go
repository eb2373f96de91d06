package reward

import (
	"context"
	"sort"
	"sync"
	"time"

	"greencycle-be/internal/history"
	"greencycle-be/internal/user"
)

// fakeStore is an in-memory Repository plus the user.Repository slice the
// service reads from. RedeemTx holds one mutex for the whole settlement, the
// same all-or-nothing effect the SQL implementation gets from its transaction
// and row locks. failAfterStock injects a fault between the stock decrement
// and the history insert so the rollback path can be observed.
type fakeStore struct {
	mu             sync.Mutex
	nextID         int64
	rewards        map[int64]*Reward
	balances       map[int64]int
	redemptions    []*history.Redemption
	failAfterStock error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:   1,
		rewards:  make(map[int64]*Reward),
		balances: make(map[int64]int),
	}
}

func (f *fakeStore) addReward(rw Reward) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	rw.ID = f.nextID
	f.nextID++
	f.rewards[rw.ID] = &rw
	return rw.ID
}

func (f *fakeStore) addUser(id int64, points int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[id] = points
}

func (f *fakeStore) balance(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[id]
}

func (f *fakeStore) stock(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rewards[id].StockQuantity
}

func (f *fakeStore) redemptionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.redemptions)
}

// --- reward.Repository ---

func (f *fakeStore) Insert(_ context.Context, params CreateParams) (*Reward, error) {
	id := f.addReward(Reward{
		Name:           params.Name,
		Description:    params.Description,
		Category:       params.Category,
		RequiredPoints: params.RequiredPoints,
		StockQuantity:  params.StockQuantity,
		IsAvailable:    params.StockQuantity > 0,
		ImageURL:       params.ImageURL,
	})
	return f.GetByID(context.Background(), id)
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rw, ok := f.rewards[id]
	if !ok {
		return nil, ErrRewardNotFound
	}
	cp := *rw
	return &cp, nil
}

func (f *fakeStore) Update(_ context.Context, params UpdateParams) (*Reward, error) {
	return nil, nil
}

func (f *fakeStore) ExistsByName(_ context.Context, name string, excludeID int64) (bool, error) {
	return false, nil
}

func (f *fakeStore) HasHistory(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, h := range f.redemptions {
		if h.RewardID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rewards, id)
	return nil
}

func (f *fakeStore) SetAvailability(_ context.Context, id int64, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rw, ok := f.rewards[id]
	if !ok {
		return ErrRewardNotFound
	}
	rw.IsAvailable = available
	return nil
}

func (f *fakeStore) ListAvailable(_ context.Context, maxPoints *int) ([]*Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*Reward
	for _, rw := range f.rewards {
		if !rw.IsAvailable {
			continue
		}
		if maxPoints != nil && rw.RequiredPoints > *maxPoints {
			continue
		}
		cp := *rw
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) ListByCategory(_ context.Context, category string) ([]*Reward, error) {
	return nil, nil
}

func (f *fakeStore) Search(_ context.Context, term string) ([]*Reward, error) {
	return nil, nil
}

func (f *fakeStore) Categories(_ context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeStore) ListLowStock(_ context.Context, threshold int) ([]*Reward, error) {
	return nil, nil
}

func (f *fakeStore) GetStats(_ context.Context, id int64) (*Stats, error) {
	return nil, nil
}

func (f *fakeStore) Popular(_ context.Context, limit int) ([]*PopularReward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[int64]int)
	for _, h := range f.redemptions {
		counts[h.RewardID]++
	}

	var popular []*PopularReward
	for id, n := range counts {
		if rw, ok := f.rewards[id]; ok {
			popular = append(popular, &PopularReward{Reward: *rw, Redemptions: n})
		}
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].Redemptions != popular[j].Redemptions {
			return popular[i].Redemptions > popular[j].Redemptions
		}
		return popular[i].Reward.ID < popular[j].Reward.ID
	})
	if len(popular) > limit {
		popular = popular[:limit]
	}
	return popular, nil
}

func (f *fakeStore) UpdateStock(_ context.Context, id int64, delta int) (*Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rw, ok := f.rewards[id]
	if !ok {
		return nil, ErrRewardNotFound
	}
	rw.StockQuantity += delta
	if rw.StockQuantity < 0 {
		rw.StockQuantity = 0
	}
	rw.IsAvailable = rw.StockQuantity > 0
	cp := *rw
	return &cp, nil
}

func (f *fakeStore) RedeemTx(_ context.Context, userID, rewardID int64, quantity int) (*history.Redemption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	balance, ok := f.balances[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	rw, ok := f.rewards[rewardID]
	if !ok {
		return nil, ErrRewardNotFound
	}

	if !rw.IsAvailable {
		return nil, ErrRewardUnavailable
	}
	if rw.StockQuantity < quantity {
		return nil, ErrInsufficientStock
	}
	cost := rw.RequiredPoints * quantity
	if balance < cost {
		return nil, ErrInsufficientPoints
	}

	// stage every write, publish only on success
	newBalance := balance - cost
	newStock := rw.StockQuantity - quantity

	if f.failAfterStock != nil {
		return nil, f.failAfterStock
	}

	f.balances[userID] = newBalance
	rw.StockQuantity = newStock
	rw.IsAvailable = newStock > 0

	h := &history.Redemption{
		ID:         int64(len(f.redemptions) + 1),
		UserID:     userID,
		RewardID:   rewardID,
		RewardName: rw.Name,
		Quantity:   quantity,
		PointsUsed: cost,
		RedeemedAt: time.Now(),
		Status:     history.StatusPending,
	}
	f.redemptions = append(f.redemptions, h)

	out := *h
	return &out, nil
}

// --- user.Repository ---

func (f *fakeStore) Create(_ context.Context, params user.RegisterParams, hashed string) (*user.User, error) {
	return nil, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	balance, ok := f.balances[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &user.User{ID: id, Points: balance}, nil
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (f *fakeStore) UpdateAddress(_ context.Context, userID int64, addr user.Address) error {
	return nil
}

func (f *fakeStore) AdjustPoints(_ context.Context, userID int64, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.balances[userID]+delta < 0 {
		return user.ErrNegativeBalance
	}
	f.balances[userID] += delta
	return nil
}

func (f *fakeStore) HasRole(_ context.Context, userID int64, role user.Role) (bool, error) {
	return true, nil
}

// fakeUsers adapts fakeStore to user.Repository, whose GetByID collides with
// the reward Repository method of the same name.
type fakeUsers struct {
	*fakeStore
}

func (f fakeUsers) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return f.GetUserByID(ctx, id)
}

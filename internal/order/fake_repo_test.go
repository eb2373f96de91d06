package order

import (
	"context"
	"sync"
	"time"
)

// fakeRepo is an in-memory Repository with the same compare-and-set
// semantics the SQL implementation gets from conditional UPDATEs. It backs
// the lifecycle and race tests.
type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*Order
	points map[int64]int // userID -> balance
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID: 1,
		orders: make(map[int64]*Order),
		points: make(map[int64]int),
	}
}

func (f *fakeRepo) Insert(_ context.Context, o *Order) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *o
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.nextID++
	f.orders[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRepo) filter(pred func(*Order) bool) []*Order {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*Order
	for _, o := range f.orders {
		if pred(o) {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out
}

func (f *fakeRepo) ListByUser(_ context.Context, userID int64) ([]*Order, error) {
	return f.filter(func(o *Order) bool { return o.UserID == userID }), nil
}

func (f *fakeRepo) ListByCollector(_ context.Context, collectorID int64) ([]*Order, error) {
	return f.filter(func(o *Order) bool { return o.CollectorID != nil && *o.CollectorID == collectorID }), nil
}

func (f *fakeRepo) ListByFactory(_ context.Context, factoryID int64) ([]*Order, error) {
	return f.filter(func(o *Order) bool { return o.FactoryID == factoryID }), nil
}

func (f *fakeRepo) ListByStatus(_ context.Context, status Status) ([]*Order, error) {
	return f.filter(func(o *Order) bool { return o.Status == status }), nil
}

func (f *fakeRepo) ListAvailable(_ context.Context) ([]*Order, error) {
	return f.filter(func(o *Order) bool { return o.Status == StatusPending && o.CollectorID == nil }), nil
}

func (f *fakeRepo) Accept(_ context.Context, orderID, collectorID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[orderID]
	if !ok || o.Status != StatusPending || o.CollectorID != nil {
		return false, nil
	}
	cid := collectorID
	o.CollectorID = &cid
	o.Status = StatusAccepted
	o.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, orderID int64, from, to Status) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRepo) CompleteTx(_ context.Context, orderID, userID int64, pts int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[orderID]
	if !ok || o.Status != StatusDelivered {
		return ErrConflict
	}
	o.Status = StatusCompleted
	o.UpdatedAt = time.Now()
	f.points[userID] += pts
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(f.orders, id)
	return nil
}

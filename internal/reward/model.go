package reward

import "time"

// Reward is a catalog item exchangeable for points. IsAvailable tracks
// stock: it drops to false when stock hits zero and comes back when
// restocked, unless an admin holds it unavailable on purpose.
type Reward struct {
	ID             int64
	Name           string
	Description    string
	Category       string
	RequiredPoints int
	StockQuantity  int
	IsAvailable    bool
	ImageURL       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateParams struct {
	Name           string
	Description    string
	Category       string
	RequiredPoints int
	StockQuantity  int
	ImageURL       *string
}

type UpdateParams struct {
	ID             int64
	Name           string
	Description    string
	Category       string
	RequiredPoints int
	ImageURL       *string
}

// Stats augments a reward with its redemption counters.
type Stats struct {
	Reward             Reward
	TotalRedemptions   int
	PendingRedemptions int
}

// PopularReward is a catalog item ranked by how often it has been redeemed.
type PopularReward struct {
	Reward      Reward
	Redemptions int
}

package history

import "time"

type RedemptionStatus string

const (
	StatusPending   RedemptionStatus = "PENDING"
	StatusApproved  RedemptionStatus = "APPROVED"
	StatusShipped   RedemptionStatus = "SHIPPED"
	StatusDelivered RedemptionStatus = "DELIVERED"
	StatusCancelled RedemptionStatus = "CANCELLED"
)

func (s RedemptionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// fulfillment moves strictly forward; CANCELLED is the soft-delete escape
// hatch from any non-terminal state.
var nextFulfillment = map[RedemptionStatus]map[RedemptionStatus]bool{
	StatusPending:   {StatusApproved: true, StatusCancelled: true},
	StatusApproved:  {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

func CanAdvance(from, to RedemptionStatus) bool {
	return nextFulfillment[from][to]
}

// Redemption is one successful reward redemption. PointsUsed is a snapshot
// taken at redemption time and never changes, even if the reward is
// repriced later.
type Redemption struct {
	ID         int64
	UserID     int64
	RewardID   int64
	RewardName string
	Quantity   int
	PointsUsed int
	RedeemedAt time.Time
	Status     RedemptionStatus
}

// QueryParams filters and sorts paged history listings.
type QueryParams struct {
	UserID   *int64
	RewardID *int64
	Status   *RedemptionStatus
	From     *time.Time
	To       *time.Time
	SortBy   string // "redeemed_at" or "points_used"
	SortDesc bool
	Page     int
	PageSize int
}

type Page struct {
	Items      []*Redemption
	TotalCount int
	Page       int
	PageSize   int
}

// Summary aggregates a user's redemption activity.
type Summary struct {
	UserID          int64
	TotalCount      int
	TotalPointsUsed int
}

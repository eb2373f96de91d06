package httpx

import (
	"time"

	"greencycle-be/internal/history"
	"greencycle-be/internal/order"
	"greencycle-be/internal/reward"
	"greencycle-be/internal/user"
	"greencycle-be/internal/utils"
)

type userResponse struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Points   int    `json:"points"`
	Role     string `json:"role"`
	City     string `json:"city,omitempty"`
	Street   string `json:"street,omitempty"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Phone:    utils.PtrString(u.Phone),
		Points:   u.Points,
		Role:     string(u.Role),
		City:     utils.PtrString(u.City),
		Street:   utils.PtrString(u.Street),
	}
}

type orderResponse struct {
	ID          int64     `json:"id"`
	Status      string    `json:"status"`
	OrderDate   time.Time `json:"order_date"`
	Material    string    `json:"material"`
	Quantity    float64   `json:"quantity_kg"`
	UserID      int64     `json:"user_id"`
	CollectorID *int64    `json:"collector_id,omitempty"`
	FactoryID   int64     `json:"factory_id"`
	City        string    `json:"city"`
	Street      string    `json:"street"`
	Building    string    `json:"building"`
	Apartment   string    `json:"apartment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:          o.ID,
		Status:      string(o.Status),
		OrderDate:   o.OrderDate,
		Material:    string(o.Material),
		Quantity:    o.Quantity,
		UserID:      o.UserID,
		CollectorID: o.CollectorID,
		FactoryID:   o.FactoryID,
		City:        o.City,
		Street:      o.Street,
		Building:    o.Building,
		Apartment:   o.Apartment,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toOrderResponses(list []*order.Order) []orderResponse {
	out := make([]orderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	return out
}

type rewardResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category,omitempty"`
	RequiredPoints int       `json:"required_points"`
	StockQuantity  int       `json:"stock_quantity"`
	IsAvailable    bool      `json:"is_available"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toRewardResponse(rw *reward.Reward) rewardResponse {
	return rewardResponse{
		ID:             rw.ID,
		Name:           rw.Name,
		Description:    rw.Description,
		Category:       rw.Category,
		RequiredPoints: rw.RequiredPoints,
		StockQuantity:  rw.StockQuantity,
		IsAvailable:    rw.IsAvailable,
		ImageURL:       utils.PtrString(rw.ImageURL),
		CreatedAt:      rw.CreatedAt,
		UpdatedAt:      rw.UpdatedAt,
	}
}

func toRewardResponses(list []*reward.Reward) []rewardResponse {
	out := make([]rewardResponse, 0, len(list))
	for _, rw := range list {
		out = append(out, toRewardResponse(rw))
	}
	return out
}

type redemptionResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	RewardID   int64     `json:"reward_id"`
	RewardName string    `json:"reward_name"`
	Quantity   int       `json:"quantity"`
	PointsUsed int       `json:"points_used"`
	RedeemedAt time.Time `json:"redeemed_at"`
	Status     string    `json:"status"`
}

func toRedemptionResponse(h *history.Redemption) redemptionResponse {
	return redemptionResponse{
		ID:         h.ID,
		UserID:     h.UserID,
		RewardID:   h.RewardID,
		RewardName: h.RewardName,
		Quantity:   h.Quantity,
		PointsUsed: h.PointsUsed,
		RedeemedAt: h.RedeemedAt,
		Status:     string(h.Status),
	}
}

func toRedemptionResponses(list []*history.Redemption) []redemptionResponse {
	out := make([]redemptionResponse, 0, len(list))
	for _, h := range list {
		out = append(out, toRedemptionResponse(h))
	}
	return out
}

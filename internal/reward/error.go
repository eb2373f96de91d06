package reward

import "errors"

var (
	ErrRewardNotFound     = errors.New("reward not found")
	ErrRewardUnavailable  = errors.New("reward is not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrNameTaken          = errors.New("reward name already exists")
	ErrHasHistory         = errors.New("reward has redemption history, disable instead of deleting")
	ErrConflict           = errors.New("redemption conflicted with a concurrent transaction, retry")
)

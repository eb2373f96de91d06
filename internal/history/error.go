package history

import (
	"errors"
	"fmt"
)

var ErrRedemptionNotFound = errors.New("redemption record not found")

// InvalidFulfillmentError reports an illegal fulfillment status change.
type InvalidFulfillmentError struct {
	From RedemptionStatus
	To   RedemptionStatus
}

func (e *InvalidFulfillmentError) Error() string {
	return fmt.Sprintf("invalid fulfillment transition %s -> %s", e.From, e.To)
}

package httpx

import (
	"errors"
	"net/http"

	"greencycle-be/internal/factory"
	"greencycle-be/internal/history"
	"greencycle-be/internal/logger"
	"greencycle-be/internal/order"
	"greencycle-be/internal/reward"
	"greencycle-be/internal/user"
	"greencycle-be/internal/utils"

	"go.uber.org/zap"
)

// writeError translates a domain error into an HTTP status. Anything not
// recognized is a 500 and gets logged with its request ID.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidTransition *order.InvalidTransitionError
	var invalidFulfillment *history.InvalidFulfillmentError

	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, reward.ErrRewardNotFound),
		errors.Is(err, history.ErrRedemptionNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, order.ErrUnauthorized),
		errors.Is(err, user.ErrCollectorNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusForbidden)

	case errors.As(err, &invalidTransition),
		errors.As(err, &invalidFulfillment),
		errors.Is(err, order.ErrConflict),
		errors.Is(err, reward.ErrConflict),
		errors.Is(err, user.ErrEmailExists),
		errors.Is(err, reward.ErrNameTaken),
		errors.Is(err, reward.ErrHasHistory),
		errors.Is(err, factory.ErrNoFactoryAvailable):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)

	case errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidMaterial),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, reward.ErrInvalidQuantity):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, reward.ErrInsufficientStock),
		errors.Is(err, reward.ErrInsufficientPoints),
		errors.Is(err, reward.ErrRewardUnavailable),
		errors.Is(err, user.ErrNegativeBalance):
		utils.WriteJSONError(w, err.Error(), http.StatusUnprocessableEntity)

	default:
		logger.FromCtx(r.Context()).Error("unhandled error", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

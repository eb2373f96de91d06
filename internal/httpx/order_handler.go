package httpx

import (
	"encoding/json"
	"net/http"

	"greencycle-be/internal/order"
	"greencycle-be/internal/points"
	"greencycle-be/internal/user"
	"greencycle-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	Orders order.Service
}

type createOrderRequest struct {
	Material  string  `json:"material"`
	Quantity  float64 `json:"quantity_kg"`
	City      string  `json:"city"`
	Street    string  `json:"street"`
	Building  string  `json:"building"`
	Apartment string  `json:"apartment"`
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	o, err := h.Orders.Create(r.Context(), order.CreateParams{
		Email:    utils.GetUserEmailFromContext(r.Context()),
		Material: points.MaterialType(req.Material),
		Quantity: req.Quantity,
		Address: user.Address{
			City:      req.City,
			Street:    req.Street,
			Building:  req.Building,
			Apartment: req.Apartment,
		},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, toOrderResponse(o))
}

func orderID(r *http.Request) (int64, bool) {
	id, err := utils.ToInt64(chi.URLParam(r, "id"))
	return id, err == nil
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	o, err := h.Orders.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// an order is visible to its owner, its collector and admins
	userID, _ := utils.GetUserIDFromContext(r.Context())
	role := utils.GetUserRoleFromContext(r.Context())
	isCollector := o.CollectorID != nil && *o.CollectorID == userID
	if o.UserID != userID && !isCollector && role != string(user.RoleAdmin) {
		writeError(w, r, order.ErrUnauthorized)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) listMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	list, err := h.Orders.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toOrderResponses(list))
}

func (h *OrderHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	if err := h.Orders.UserCancel(r.Context(), id, userID); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": string(order.StatusCancelled)})
}

// collector endpoints

func (h *OrderHandler) listAvailable(w http.ResponseWriter, r *http.Request) {
	list, err := h.Orders.ListAvailable(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toOrderResponses(list))
}

func (h *OrderHandler) listAssigned(w http.ResponseWriter, r *http.Request) {
	collectorID, _ := utils.GetUserIDFromContext(r.Context())

	list, err := h.Orders.ListByCollector(r.Context(), collectorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toOrderResponses(list))
}

func (h *OrderHandler) accept(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	collectorID, _ := utils.GetUserIDFromContext(r.Context())
	if err := h.Orders.CollectorAccept(r.Context(), id, collectorID); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": string(order.StatusAccepted)})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	newStatus := order.Status(req.Status)
	if !newStatus.Valid() {
		utils.WriteJSONError(w, "unknown status", http.StatusBadRequest)
		return
	}

	collectorID, _ := utils.GetUserIDFromContext(r.Context())
	if err := h.Orders.CollectorUpdateStatus(r.Context(), id, collectorID, newStatus); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// admin endpoints

func (h *OrderHandler) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	pts, err := h.Orders.Complete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"status":         string(order.StatusCompleted),
		"points_awarded": pts,
	})
}

func (h *OrderHandler) adminCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	if err := h.Orders.AdminCancel(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": string(order.StatusCancelled)})
}

func (h *OrderHandler) adminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	if err := h.Orders.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) adminList(w http.ResponseWriter, r *http.Request) {
	status := order.Status(r.URL.Query().Get("status"))
	if status == "" {
		utils.WriteJSONError(w, "status query parameter is required", http.StatusBadRequest)
		return
	}

	list, err := h.Orders.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toOrderResponses(list))
}

package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"greencycle-be/internal/reward"
	"greencycle-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type RewardHandler struct {
	Rewards reward.Service
}

func rewardID(r *http.Request) (int64, bool) {
	id, err := utils.ToInt64(chi.URLParam(r, "id"))
	return id, err == nil
}

func (h *RewardHandler) list(w http.ResponseWriter, r *http.Request) {
	// ?affordable=true narrows the catalog to what the caller can pay for
	var forUserID *int64
	if r.URL.Query().Get("affordable") == "true" {
		if uid, ok := utils.GetUserIDFromContext(r.Context()); ok {
			forUserID = &uid
		}
	}

	list, err := h.Rewards.ListAvailable(r.Context(), forUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toRewardResponses(list))
}

func (h *RewardHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := rewardID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid reward id", http.StatusBadRequest)
		return
	}

	rw, err := h.Rewards.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toRewardResponse(rw))
}

func (h *RewardHandler) search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		utils.WriteJSONError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}

	list, err := h.Rewards.Search(r.Context(), term)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toRewardResponses(list))
}

type popularRewardResponse struct {
	rewardResponse
	Redemptions int `json:"redemptions"`
}

func (h *RewardHandler) popular(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.WriteJSONError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	list, err := h.Rewards.Popular(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]popularRewardResponse, 0, len(list))
	for _, p := range list {
		out = append(out, popularRewardResponse{
			rewardResponse: toRewardResponse(&p.Reward),
			Redemptions:    p.Redemptions,
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (h *RewardHandler) categories(w http.ResponseWriter, r *http.Request) {
	list, err := h.Rewards.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *RewardHandler) byCategory(w http.ResponseWriter, r *http.Request) {
	list, err := h.Rewards.ListByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toRewardResponses(list))
}

type redeemRequest struct {
	RewardID int64 `json:"reward_id"`
	Quantity int   `json:"quantity"`
}

func (h *RewardHandler) redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	record, err := h.Rewards.Redeem(r.Context(), userID, req.RewardID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, toRedemptionResponse(record))
}

// admin endpoints

type upsertRewardRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	RequiredPoints int     `json:"required_points"`
	StockQuantity  int     `json:"stock_quantity"`
	ImageURL       *string `json:"image_url"`
}

func (h *RewardHandler) create(w http.ResponseWriter, r *http.Request) {
	var req upsertRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	// the schema allows zero-cost rewards; the admin API requires at least
	// one point per item
	if req.Name == "" || req.RequiredPoints < 1 || req.StockQuantity < 0 {
		utils.WriteJSONError(w, "name, positive required_points and non-negative stock_quantity are required", http.StatusBadRequest)
		return
	}

	rw, err := h.Rewards.Create(r.Context(), reward.CreateParams{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		RequiredPoints: req.RequiredPoints,
		StockQuantity:  req.StockQuantity,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, toRewardResponse(rw))
}

func (h *RewardHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := rewardID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid reward id", http.StatusBadRequest)
		return
	}

	var req upsertRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	rw, err := h.Rewards.Update(r.Context(), reward.UpdateParams{
		ID:             id,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		RequiredPoints: req.RequiredPoints,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toRewardResponse(rw))
}

func (h *RewardHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := rewardID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid reward id", http.StatusBadRequest)
		return
	}

	if err := h.Rewards.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

func (h *RewardHandler) setAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := rewardID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid reward id", http.StatusBadRequest)
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := h.Rewards.SetAvailability(r.Context(), id, req.Available); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"available": req.Available})
}

type stockRequest struct {
	Delta int `json:"delta"`
}

func (h *RewardHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := rewardID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid reward id", http.StatusBadRequest)
		return
	}

	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	rw, err := h.Rewards.UpdateStock(r.Context(), id, req.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toRewardResponse(rw))
}

func (h *RewardHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 5
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.WriteJSONError(w, "invalid threshold", http.StatusBadRequest)
			return
		}
		threshold = n
	}

	list, err := h.Rewards.ListLowStock(r.Context(), threshold)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toRewardResponses(list))
}

func (h *RewardHandler) stats(w http.ResponseWriter, r *http.Request) {
	id, ok := rewardID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid reward id", http.StatusBadRequest)
		return
	}

	stats, err := h.Rewards.GetStats(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"reward":              toRewardResponse(&stats.Reward),
		"total_redemptions":   stats.TotalRedemptions,
		"pending_redemptions": stats.PendingRedemptions,
	})
}

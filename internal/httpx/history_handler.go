package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"greencycle-be/internal/history"
	"greencycle-be/internal/user"
	"greencycle-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type HistoryHandler struct {
	History history.Service
}

func redemptionID(r *http.Request) (int64, bool) {
	id, err := utils.ToInt64(chi.URLParam(r, "id"))
	return id, err == nil
}

func (h *HistoryHandler) listMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	list, err := h.History.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toRedemptionResponses(list))
}

func (h *HistoryHandler) summary(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	s, err := h.History.SummaryByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":           s.UserID,
		"total_count":       s.TotalCount,
		"total_points_used": s.TotalPointsUsed,
	})
}

func (h *HistoryHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := redemptionID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid redemption id", http.StatusBadRequest)
		return
	}

	record, err := h.History.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// visible to its owner and admins only
	userID, _ := utils.GetUserIDFromContext(r.Context())
	if record.UserID != userID && utils.GetUserRoleFromContext(r.Context()) != string(user.RoleAdmin) {
		utils.WriteJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toRedemptionResponse(record))
}

func (h *HistoryHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := redemptionID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid redemption id", http.StatusBadRequest)
		return
	}

	record, err := h.History.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	if record.UserID != userID && utils.GetUserRoleFromContext(r.Context()) != string(user.RoleAdmin) {
		utils.WriteJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.History.Cancel(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": string(history.StatusCancelled)})
}

// admin endpoints

func (h *HistoryHandler) adminList(w http.ResponseWriter, r *http.Request) {
	params, err := parseHistoryQuery(r)
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.History.ListPaged(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"items":       toRedemptionResponses(page.Items),
		"total_count": page.TotalCount,
		"page":        page.Page,
		"page_size":   page.PageSize,
	})
}

type advanceStatusRequest struct {
	Status string `json:"status"`
}

func (h *HistoryHandler) advanceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := redemptionID(r)
	if !ok {
		utils.WriteJSONError(w, "invalid redemption id", http.StatusBadRequest)
		return
	}

	var req advanceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	to := history.RedemptionStatus(req.Status)
	if !to.Valid() {
		utils.WriteJSONError(w, "unknown status", http.StatusBadRequest)
		return
	}

	if err := h.History.AdvanceStatus(r.Context(), id, to); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func parseHistoryQuery(r *http.Request) (history.QueryParams, error) {
	var params history.QueryParams
	q := r.URL.Query()

	if raw := q.Get("user_id"); raw != "" {
		id, err := utils.ToInt64(raw)
		if err != nil {
			return params, errInvalidQuery("user_id")
		}
		params.UserID = &id
	}
	if raw := q.Get("reward_id"); raw != "" {
		id, err := utils.ToInt64(raw)
		if err != nil {
			return params, errInvalidQuery("reward_id")
		}
		params.RewardID = &id
	}
	if raw := q.Get("status"); raw != "" {
		status := history.RedemptionStatus(raw)
		if !status.Valid() {
			return params, errInvalidQuery("status")
		}
		params.Status = &status
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, errInvalidQuery("from")
		}
		params.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, errInvalidQuery("to")
		}
		params.To = &t
	}

	params.SortBy = q.Get("sort_by")
	params.SortDesc = q.Get("order") == "desc"
	if raw := q.Get("page"); raw != "" {
		params.Page, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("page_size"); raw != "" {
		params.PageSize, _ = strconv.Atoi(raw)
	}

	return params, nil
}

type queryError string

func errInvalidQuery(field string) error {
	return queryError("invalid " + field + " query parameter")
}

func (e queryError) Error() string {
	return string(e)
}

package httpx

import (
	"encoding/json"
	"net/http"

	"greencycle-be/internal/factory"
	"greencycle-be/internal/user"
	"greencycle-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

// AdminHandler covers point corrections and factory management.
type AdminHandler struct {
	Users     user.Service
	Factories factory.Repository
}

type adjustPointsRequest struct {
	Delta int `json:"delta"`
}

func (h *AdminHandler) adjustPoints(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToInt64(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req adjustPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Delta == 0 {
		utils.WriteJSONError(w, "delta must be non-zero", http.StatusBadRequest)
		return
	}

	u, err := h.Users.AdjustPoints(r.Context(), id, req.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

type createFactoryRequest struct {
	Name     string `json:"name"`
	City     string `json:"city"`
	Street   string `json:"street"`
	Capacity int    `json:"capacity"`
}

type factoryResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Street   string `json:"street"`
	Capacity int    `json:"capacity"`
}

func toFactoryResponse(f *factory.Factory) factoryResponse {
	return factoryResponse{
		ID: f.ID, Name: f.Name, City: f.City, Street: f.Street, Capacity: f.Capacity,
	}
}

func (h *AdminHandler) createFactory(w http.ResponseWriter, r *http.Request) {
	var req createFactoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.City == "" {
		utils.WriteJSONError(w, "name and city are required", http.StatusBadRequest)
		return
	}

	f, err := h.Factories.Create(r.Context(), &factory.Factory{
		Name: req.Name, City: req.City, Street: req.Street, Capacity: req.Capacity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, toFactoryResponse(f))
}

func (h *AdminHandler) listFactories(w http.ResponseWriter, r *http.Request) {
	list, err := h.Factories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]factoryResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFactoryResponse(f))
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

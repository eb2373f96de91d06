package httpx

import (
	"encoding/json"
	"net/http"

	"greencycle-be/internal/user"
	"greencycle-be/internal/utils"
)

type AuthHandler struct {
	Users user.Service
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		utils.WriteJSONError(w, "full_name, email and password are required", http.StatusBadRequest)
		return
	}

	params := user.RegisterParams{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     user.Role(req.Role),
	}
	if req.Phone != "" {
		params.Phone = &req.Phone
	}
	// the public endpoint only mints regular accounts
	if params.Role != "" && params.Role != user.RoleUser {
		utils.WriteJSONError(w, "role is not self-assignable", http.StatusBadRequest)
		return
	}

	token, u, err := h.Users.Register(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(u)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	token, u, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteJSONError(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	utils.WriteJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(u)})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	u, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

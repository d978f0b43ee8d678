package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ftcscout/scout-backend/internal/domain"
	"github.com/ftcscout/scout-backend/internal/service"
)

// AuthHandler обрабатывает эндпоинты жизненного цикла аккаунта
type AuthHandler struct {
	accounts *service.AccountLifecycleEngine
}

// NewAuthHandler создает новый AuthHandler
func NewAuthHandler(accounts *service.AccountLifecycleEngine) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
	}
}

// RegisterRequest представляет тело запроса на регистрацию
type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	TeamNumber string `json:"teamNumber,omitempty"`
	InviteCode string `json:"inviteCode,omitempty"`
}

// LoginRequest представляет тело запроса на логин
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest представляет тело запроса на смену пароля
type ChangePasswordRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// DeleteAccountRequest представляет тело запроса на удаление аккаунта
type DeleteAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse представляет ответ с публичной проекцией пользователя
type UserResponse struct {
	User *domain.UserProfile `json:"user"`
}

// Register обрабатывает POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	profile, err := h.accounts.Register(r.Context(), req.Username, req.Password, req.TeamNumber, req.InviteCode)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, UserResponse{User: profile})
}

// Login обрабатывает POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	profile, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// Неизвестное имя и неверный пароль не различаются в ответе
		if errors.Is(err, domain.ErrUserNotFound) {
			err = domain.ErrInvalidPassword
		}
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{User: profile})
}

// ChangePassword обрабатывает POST /auth/changePassword
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), req.Username, req.CurrentPassword, req.NewPassword); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// DeleteAccount обрабатывает POST /auth/deleteAccount (удаление своего аккаунта)
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), req.Username, req.Password, true); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

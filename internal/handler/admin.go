package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ftcscout/scout-backend/internal/domain"
	"github.com/ftcscout/scout-backend/internal/service"
)

// AdminHandler обрабатывает административные эндпоинты.
// Доступ к ним ограничивается middleware с разделяемым секретом.
type AdminHandler struct {
	accounts *service.AccountLifecycleEngine
	scouting *service.ScoutingService
}

// NewAdminHandler создает новый AdminHandler
func NewAdminHandler(accounts *service.AccountLifecycleEngine, scouting *service.ScoutingService) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		scouting: scouting,
	}
}

// AdminDeleteUserRequest представляет тело запроса на удаление пользователя
type AdminDeleteUserRequest struct {
	Username string `json:"username"`
}

// AllDataResponse представляет полный дамп хранилища
type AllDataResponse struct {
	Users        map[string]*domain.User    `json:"users"`
	Teams        map[string]*domain.Team    `json:"teams"`
	ScoutingData map[string]json.RawMessage `json:"scoutingData"`
}

// AllData обрабатывает GET /admin/allData
func (h *AdminHandler) AllData(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.scouting.DumpAll(r.Context())
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, AllDataResponse{
		Users:        snapshot.Users,
		Teams:        snapshot.Teams,
		ScoutingData: snapshot.ScoutingData,
	})
}

// DeleteUser обрабатывает POST /admin/deleteUser.
// Пароль владельца не проверяется: запрос уже прошел административный секрет.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req AdminDeleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Username == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "username is required")
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), req.Username, "", false); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ftcscout/scout-backend/internal/domain"
	"github.com/ftcscout/scout-backend/internal/service"
)

// TeamHandler обрабатывает эндпоинты членства в командах
type TeamHandler struct {
	membership *service.TeamMembershipEngine
}

// NewTeamHandler создает новый TeamHandler
func NewTeamHandler(membership *service.TeamMembershipEngine) *TeamHandler {
	return &TeamHandler{
		membership: membership,
	}
}

// JoinRequest представляет тело запроса на вступление в команду
type JoinRequest struct {
	Username   string `json:"username"`
	TeamNumber string `json:"teamNumber,omitempty"`
	InviteCode string `json:"inviteCode,omitempty"`
}

// LeaveRequest представляет тело запроса на выход из команды
type LeaveRequest struct {
	Username string `json:"username"`
}

// RemoveMemberRequest представляет тело запроса на исключение участника
type RemoveMemberRequest struct {
	Username   string `json:"username"`
	TeamNumber string `json:"teamNumber"`
	Member     string `json:"member"`
}

// DissolveRequest представляет тело запроса на роспуск команды
type DissolveRequest struct {
	Username   string `json:"username"`
	TeamNumber string `json:"teamNumber"`
}

// RefreshInviteCodeRequest представляет тело запроса на обновление инвайт-кода
type RefreshInviteCodeRequest struct {
	Username   string `json:"username"`
	TeamNumber string `json:"teamNumber"`
}

// TransferCaptaincyRequest представляет тело запроса на передачу капитанства
type TransferCaptaincyRequest struct {
	Username   string `json:"username"`
	TeamNumber string `json:"teamNumber"`
	NewCaptain string `json:"newCaptain"`
}

// TeamResponse представляет ответ с командой
type TeamResponse struct {
	Team *domain.Team `json:"team"`
}

// InviteCodeResponse представляет ответ с новым инвайт-кодом
type InviteCodeResponse struct {
	InviteCode string `json:"inviteCode"`
}

// Join обрабатывает POST /team/join.
// Инвайт-код имеет приоритет над номером команды.
func (h *TeamHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Username == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "username is required")
		return
	}

	var team *domain.Team
	var err error
	if req.InviteCode != "" {
		team, err = h.membership.JoinByInviteCode(r.Context(), req.Username, req.InviteCode)
	} else {
		team, err = h.membership.CreateOrJoinByNumber(r.Context(), req.Username, req.TeamNumber)
	}
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TeamResponse{Team: team})
}

// Leave обрабатывает POST /team/leave
func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Username == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "username is required")
		return
	}

	if err := h.membership.LeaveTeam(r.Context(), req.Username); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// RemoveMember обрабатывает POST /team/removeMember
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	var req RemoveMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Username == "" || req.TeamNumber == "" || req.Member == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "username, teamNumber and member are required")
		return
	}

	if err := h.membership.RemoveMember(r.Context(), req.Username, req.TeamNumber, req.Member); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// Dissolve обрабатывает POST /team/dissolve
func (h *TeamHandler) Dissolve(w http.ResponseWriter, r *http.Request) {
	var req DissolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Username == "" || req.TeamNumber == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "username and teamNumber are required")
		return
	}

	if err := h.membership.DissolveTeam(r.Context(), req.Username, req.TeamNumber); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// RefreshInviteCode обрабатывает POST /team/refreshInviteCode
func (h *TeamHandler) RefreshInviteCode(w http.ResponseWriter, r *http.Request) {
	var req RefreshInviteCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Username == "" || req.TeamNumber == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "username and teamNumber are required")
		return
	}

	inviteCode, err := h.membership.RefreshInviteCode(r.Context(), req.Username, req.TeamNumber)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, InviteCodeResponse{InviteCode: inviteCode})
}

// TransferCaptaincy обрабатывает POST /team/transferCaptaincy
func (h *TeamHandler) TransferCaptaincy(w http.ResponseWriter, r *http.Request) {
	var req TransferCaptaincyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Username == "" || req.TeamNumber == "" || req.NewCaptain == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "username, teamNumber and newCaptain are required")
		return
	}

	if err := h.membership.TransferCaptaincy(r.Context(), req.Username, req.TeamNumber, req.NewCaptain); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// GetTeam обрабатывает GET /team/get?team_number=...&username=...
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamNumber := r.URL.Query().Get("team_number")
	if teamNumber == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "team_number query parameter is required")
		return
	}

	team, err := h.membership.GetTeam(r.Context(), teamNumber, r.URL.Query().Get("username"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TeamResponse{Team: team})
}

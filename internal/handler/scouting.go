package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ftcscout/scout-backend/internal/service"
)

// ScoutingHandler обрабатывает эндпоинты записей скаутинга
type ScoutingHandler struct {
	scouting *service.ScoutingService
}

// NewScoutingHandler создает новый ScoutingHandler
func NewScoutingHandler(scouting *service.ScoutingService) *ScoutingHandler {
	return &ScoutingHandler{
		scouting: scouting,
	}
}

// SaveRecordRequest представляет тело запроса на сохранение записи
type SaveRecordRequest struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// DeleteRecordRequest представляет тело запроса на удаление записи
type DeleteRecordRequest struct {
	ID string `json:"id"`
}

// SaveRecordResponse представляет ответ на сохранение записи
type SaveRecordResponse struct {
	ID string `json:"id"`
}

// ListRecordsResponse представляет ответ со списком записей
type ListRecordsResponse struct {
	Records map[string]json.RawMessage `json:"records"`
}

// SaveRecord обрабатывает POST /scouting/save
func (h *ScoutingHandler) SaveRecord(w http.ResponseWriter, r *http.Request) {
	var req SaveRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.ID == "" || len(req.Data) == 0 {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "id and data are required")
		return
	}

	recordID, err := h.scouting.SaveRecord(r.Context(), req.ID, req.Data)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, SaveRecordResponse{ID: recordID.String()})
}

// ListRecords обрабатывает GET /scouting/list?team_number=...&user=...
func (h *ScoutingHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.scouting.ListRecords(
		r.Context(),
		r.URL.Query().Get("team_number"),
		r.URL.Query().Get("user"),
	)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, ListRecordsResponse{Records: records})
}

// DeleteRecord обрабатывает POST /scouting/delete
func (h *ScoutingHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	var req DeleteRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.ID == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "id is required")
		return
	}

	if err := h.scouting.DeleteRecord(r.Context(), req.ID); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

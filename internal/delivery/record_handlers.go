package delivery

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"

	"github.com/Vovarama1992/genbot/internal/history"
	"github.com/Vovarama1992/genbot/internal/ports"
)

type RecordHandler struct {
	recordService ports.RecordService
	log           *logger.ZapLogger
}

func NewRecordHandler(recordService ports.RecordService, log *logger.ZapLogger) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		log:           log,
	}
}

// parseFilter принимает те же токены, что и кнопки бота: last5, days7, all, high_5, low_10.
// Префикс history_ можно не указывать.
func parseFilter(v string) (history.Filter, bool) {
	if v == "" {
		return history.All(), true
	}
	if f, ok := history.ParseToken(v); ok {
		return f, true
	}
	return history.ParseToken(history.HistoryPrefix + v)
}

// GET /history/{telegram_id}?filter=last5
func (h *RecordHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	tidStr := chi.URLParam(r, "telegram_id")
	tid, err := strconv.ParseInt(tidStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid telegram_id", http.StatusBadRequest)
		return
	}

	f, ok := parseFilter(r.URL.Query().Get("filter"))
	if !ok {
		http.Error(w, "invalid filter", http.StatusBadRequest)
		return
	}

	rows, err := h.recordService.History(r.Context(), tid, f)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "db error", Service: "genbot", Error: err})
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []history.Row{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"telegram_id": tid,
		"filter":      f.Label(),
		"records":     rows,
	})
}

func (h *RecordHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.recordService.ListUsers(r.Context())
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "list users failed", Service: "genbot", Error: err})
		http.Error(w, "failed to list users: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []ports.User{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(users); err != nil {
		http.Error(w, "failed to encode response: "+err.Error(), http.StatusInternalServerError)
	}
}

package handler

import (
	"database/sql"
	"net/http"
)

// HealthHandler reports service and database health.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandlePing handles GET /api/v1/db/ping requests by counting users as a
// connectivity probe.
func (h *HealthHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	var count int64
	err := h.db.QueryRowContext(r.Context(), "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("database unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "connection ok",
		"users_count": count,
	})
}

package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/brettonwoods/internal/api/middleware"
	"github.com/mcoot/brettonwoods/internal/api/response"
	"github.com/mcoot/brettonwoods/internal/services/room"
)

// Clearer wipes rooms and non-admin users
type Clearer interface {
	AdminClear(ctx context.Context, actor room.Actor) (int, int, error)
}

// AdminHandler handles superadmin endpoints
type AdminHandler struct {
	clearer Clearer
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(clearer Clearer) *AdminHandler {
	return &AdminHandler{clearer: clearer}
}

// Clear handles POST /api/v1/admin/clear
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	rooms, users, err := h.clearer.AdminClear(r.Context(), middleware.MustGetActor(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ClearResponse{RemovedRooms: rooms, RemovedUsers: users})
}

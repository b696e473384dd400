package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/floorplan-studio/backend/internal/materials"
	"github.com/floorplan-studio/backend/internal/models"
	"github.com/floorplan-studio/backend/internal/plan"
	"github.com/floorplan-studio/backend/internal/store"
)

// Handler handles API requests.
type Handler struct {
	plans   *plan.Manager
	exports *store.ExportStore
	library *models.MaterialLibrary
	hub     *PlanHub
}

// NewHandler creates a new API handler. exports may be nil when export
// storage is disabled.
func NewHandler(plans *plan.Manager, exports *store.ExportStore) *Handler {
	return &Handler{
		plans:   plans,
		exports: exports,
		library: materials.DefaultLibrary(),
	}
}

// SetHub attaches the WebSocket hub used for live plan-update broadcasts.
func (h *Handler) SetHub(hub *PlanHub) {
	h.hub = hub
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// HandleCreatePlan creates a new empty plan.
func (h *Handler) HandleCreatePlan(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid JSON body", err))
	}
	if strings.TrimSpace(req.Name) == "" {
		return RespondWithError(c, NewValidationError("name"))
	}

	p := h.plans.CreatePlan(req.Name)
	return c.JSON(http.StatusCreated, p.Info)
}

// HandleListPlans returns recent plans, most recently updated first.
func (h *Handler) HandleListPlans(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	list, err := h.plans.ListPlans(limit)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to list plans", err))
	}
	if list == nil {
		list = []*models.PlanInfo{}
	}
	return c.JSON(http.StatusOK, list)
}

// HandleGetPlan returns a full plan: info, walls and rooms.
func (h *Handler) HandleGetPlan(c echo.Context) error {
	id := c.Param("id")
	p, err := h.plans.OpenPlan(id)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("plan", id))
	}
	return c.JSON(http.StatusOK, p)
}

// HandleRenamePlan updates the display name of a plan.
func (h *Handler) HandleRenamePlan(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}
	if req.Name == "" {
		return RespondWithError(c, NewValidationError("name"))
	}

	p, err := h.plans.RenamePlan(id, req.Name)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("plan", id))
	}
	return c.JSON(http.StatusOK, p.Info)
}

// HandleDeletePlan removes a plan.
func (h *Handler) HandleDeletePlan(c echo.Context) error {
	id := c.Param("id")
	if err := h.plans.DeletePlan(id); err != nil {
		return RespondWithError(c, NewNotFoundError("plan", id))
	}
	return c.NoContent(http.StatusNoContent)
}

// broadcastUpdate pushes the fresh geometry snapshot to WebSocket
// subscribers of the plan, when a hub is attached.
func (h *Handler) broadcastUpdate(planID string) {
	if h.hub == nil {
		return
	}
	snapshot, err := h.plans.Snapshot(planID)
	if err != nil {
		return
	}
	h.hub.BroadcastPlanUpdate(planID, snapshot)
}

package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/floorplan-studio/backend/internal/geometry"
	"github.com/floorplan-studio/backend/internal/materials"
)

// wallRequest is the wall payload produced by the drawing tool. A zero
// thickness falls back to the material's default from the library.
type wallRequest struct {
	ID             string           `json:"id,omitempty"`
	Start          geometry.Point2D `json:"startPoint"`
	End            geometry.Point2D `json:"endPoint"`
	Thickness      float64          `json:"thickness"`
	Material       string           `json:"material,omitempty"`
	ConnectedWalls []string         `json:"connectedWalls,omitempty"`
}

func (h *Handler) wallFromRequest(req wallRequest) *geometry.Wall {
	thickness := req.Thickness
	if thickness <= 0 && req.Material != "" {
		if m, ok := materials.Lookup(h.library, req.Material); ok {
			thickness = m.DefaultThickness
		}
	}
	return &geometry.Wall{
		ID:             req.ID,
		Start:          req.Start,
		End:            req.End,
		Thickness:      thickness,
		Material:       req.Material,
		ConnectedWalls: req.ConnectedWalls,
	}
}

// HandleAddWall adds a wall to a plan and returns the wall with derived
// faces populated.
func (h *Handler) HandleAddWall(c echo.Context) error {
	planID := c.Param("id")
	var req wallRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid wall payload", err))
	}

	w, err := h.plans.AddWall(planID, h.wallFromRequest(req))
	if err != nil {
		return RespondWithError(c, NewBadRequestError("failed to add wall", err))
	}

	h.broadcastUpdate(planID)
	return c.JSON(http.StatusCreated, w)
}

// HandleUpdateWall replaces a wall's centerline, thickness, material and
// connectivity.
func (h *Handler) HandleUpdateWall(c echo.Context) error {
	planID := c.Param("id")
	wallID := c.Param("wallId")
	var req wallRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid wall payload", err))
	}
	req.ID = wallID

	w, err := h.plans.UpdateWall(planID, h.wallFromRequest(req))
	if err != nil {
		return RespondWithError(c, NewNotFoundError("wall", wallID))
	}

	h.broadcastUpdate(planID)
	return c.JSON(http.StatusOK, w)
}

// HandleDeleteWall removes a wall from a plan.
func (h *Handler) HandleDeleteWall(c echo.Context) error {
	planID := c.Param("id")
	wallID := c.Param("wallId")

	if err := h.plans.RemoveWall(planID, wallID); err != nil {
		return RespondWithError(c, NewNotFoundError("wall", wallID))
	}

	h.broadcastUpdate(planID)
	return c.NoContent(http.StatusNoContent)
}

package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/floorplan-studio/backend/internal/geometry"
)

// HandleGetGeometry returns the full derived geometry for a plan: trimmed
// wall faces, join records, rooms, warnings and run stats.
func (h *Handler) HandleGetGeometry(c echo.Context) error {
	planID := c.Param("id")
	snapshot, err := h.plans.Snapshot(planID)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("plan", planID))
	}
	return c.JSON(http.StatusOK, snapshot)
}

// HandleGetGeometryMsgpack returns the geometry snapshot as MessagePack.
// The canvas renderer prefers this for large plans: the payload is a
// fraction of the JSON size and decodes faster.
func (h *Handler) HandleGetGeometryMsgpack(c echo.Context) error {
	planID := c.Param("id")
	snapshot, err := h.plans.Snapshot(planID)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("plan", planID))
	}

	data, err := msgpack.Marshal(snapshot)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to encode geometry", err))
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleGetRooms returns just the detected rooms of a plan.
func (h *Handler) HandleGetRooms(c echo.Context) error {
	planID := c.Param("id")
	snapshot, err := h.plans.Snapshot(planID)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("plan", planID))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"rooms":    snapshot.Rooms,
		"warnings": snapshot.Warnings,
		"stats":    snapshot.Stats,
	})
}

// HandleUpdateRoom applies a user override (name and/or color) to a room.
func (h *Handler) HandleUpdateRoom(c echo.Context) error {
	planID := c.Param("id")
	roomID := c.Param("roomId")
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}
	if req.Name == "" && req.Color == "" {
		return RespondWithError(c, NewValidationError("name or color"))
	}

	room, err := h.plans.UpdateRoom(planID, roomID, req.Name, req.Color)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("room", roomID))
	}

	h.broadcastUpdate(planID)
	return c.JSON(http.StatusOK, room)
}

// HandleMergeRooms approximately merges two rooms into one.
func (h *Handler) HandleMergeRooms(c echo.Context) error {
	planID := c.Param("id")
	var req struct {
		RoomA string `json:"roomA"`
		RoomB string `json:"roomB"`
	}
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}
	if req.RoomA == "" || req.RoomB == "" {
		return RespondWithError(c, NewValidationError("roomA and roomB"))
	}

	merged, err := h.plans.MergeRooms(planID, req.RoomA, req.RoomB)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("room", req.RoomA+"/"+req.RoomB))
	}

	h.broadcastUpdate(planID)
	return c.JSON(http.StatusOK, merged)
}

// HandleSplitRoom approximately splits a room along a cutting line.
func (h *Handler) HandleSplitRoom(c echo.Context) error {
	planID := c.Param("id")
	roomID := c.Param("roomId")
	var req struct {
		Cut geometry.Line `json:"cut"`
	}
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}

	halves, err := h.plans.SplitRoom(planID, roomID, req.Cut)
	if err != nil {
		return RespondWithError(c, NewBadRequestError("failed to split room", err))
	}

	h.broadcastUpdate(planID)
	return c.JSON(http.StatusOK, halves)
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/floorplan-studio/backend/internal/models"
)

// HandleExportPlan serializes a plan verbatim to a JSON export file and
// returns the export metadata.
func (h *Handler) HandleExportPlan(c echo.Context) error {
	if h.exports == nil {
		return RespondWithError(c, NewConflictError("export storage is disabled"))
	}
	planID := c.Param("id")
	p, err := h.plans.OpenPlan(planID)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("plan", planID))
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to serialize plan", err))
	}

	info, err := h.exports.Save(p.Info.Name+".plan.json", planID, bytes.NewReader(data))
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to save export", err))
	}
	return c.JSON(http.StatusCreated, info)
}

// HandleRecentExports lists recent plan exports.
func (h *Handler) HandleRecentExports(c echo.Context) error {
	if h.exports == nil {
		return c.JSON(http.StatusOK, []*models.ExportInfo{})
	}
	list, err := h.exports.List(20)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to list exports", err))
	}
	if list == nil {
		list = []*models.ExportInfo{}
	}
	return c.JSON(http.StatusOK, list)
}

// HandleDownloadExport streams an export file.
func (h *Handler) HandleDownloadExport(c echo.Context) error {
	if h.exports == nil {
		return RespondWithError(c, NewConflictError("export storage is disabled"))
	}
	id := c.Param("id")
	info, err := h.exports.Get(id)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("export", id))
	}
	path, err := h.exports.GetFilePath(id)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("export", id))
	}
	return c.Attachment(path, info.Name)
}

// HandleImportPlan creates a new plan from an uploaded export file. The
// imported plan gets fresh identity; walls keep their ids so room
// overrides tied to boundary signatures survive.
func (h *Handler) HandleImportPlan(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return RespondWithError(c, NewBadRequestError("file is required", err))
	}
	src, err := file.Open()
	if err != nil {
		return RespondWithError(c, NewBadRequestError("failed to open upload", err))
	}
	defer src.Close()

	var imported models.Plan
	if err := json.NewDecoder(src).Decode(&imported); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid plan file", err))
	}

	name := imported.Info.Name
	if name == "" {
		name = file.Filename
	}
	p := h.plans.CreatePlan(name)
	for _, w := range imported.Walls {
		if _, err := h.plans.AddWall(p.Info.ID, w); err != nil {
			return RespondWithError(c, NewBadRequestError("invalid wall in plan file", err))
		}
	}

	h.broadcastUpdate(p.Info.ID)
	created, err := h.plans.OpenPlan(p.Info.ID)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to reopen imported plan", err))
	}
	return c.JSON(http.StatusCreated, created)
}

// fileExists reports whether a path exists; used by default-library
// loading at startup.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

package api

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/floorplan-studio/backend/internal/materials"
)

// LoadDefaultLibrary loads the default material library YAML if present.
// Missing files are not an error; the built-in catalog applies.
func (h *Handler) LoadDefaultLibrary(dataDir string) error {
	path := filepath.Join(dataDir, "defaults", "materials.yaml")
	if !fileExists(path) {
		return nil
	}

	lib, err := materials.ParseLibrary(path)
	if err != nil {
		return fmt.Errorf("failed to parse default material library: %w", err)
	}
	h.library = lib
	return nil
}

// HandleGetMaterials returns the active material library.
func (h *Handler) HandleGetMaterials(c echo.Context) error {
	return c.JSON(http.StatusOK, h.library)
}

// HandleUploadMaterials replaces the material library from an uploaded
// YAML file.
func (h *Handler) HandleUploadMaterials(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return RespondWithError(c, NewBadRequestError("file is required", err))
	}
	src, err := file.Open()
	if err != nil {
		return RespondWithError(c, NewBadRequestError("failed to open upload", err))
	}
	defer src.Close()

	lib, err := materials.ParseLibraryFromReader(src)
	if err != nil {
		return RespondWithError(c, NewBadRequestError("invalid material library", err))
	}

	h.library = lib
	return c.JSON(http.StatusCreated, lib)
}

// Package materials loads the YAML material library consumed by the wall
// editing endpoints.
package materials

import (
	"io"
	"os"
	"strings"

	"github.com/floorplan-studio/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// ParseLibrary parses a YAML material library file.
func ParseLibrary(filePath string) (*models.MaterialLibrary, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseLibraryFromReader(file)
}

// ParseLibraryFromReader parses a material library from an io.Reader.
func ParseLibraryFromReader(r io.Reader) (*models.MaterialLibrary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var lib models.MaterialLibrary
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, err
	}

	return &lib, nil
}

// DefaultLibrary is the built-in catalog used when no library file has
// been uploaded.
func DefaultLibrary() *models.MaterialLibrary {
	return &models.MaterialLibrary{
		DefaultMaterial: "drywall",
		Materials: []models.Material{
			{Name: "drywall", DefaultThickness: 100, Color: "#D8D3C8"},
			{Name: "brick", DefaultThickness: 240, Color: "#B0563C"},
			{Name: "concrete", DefaultThickness: 200, Color: "#9A9A9A"},
			{Name: "timber", DefaultThickness: 150, Color: "#B58E5A"},
			{Name: "partition", DefaultThickness: 70, Color: "#E3E0DA"},
		},
	}
}

// Lookup finds a material by name, case-insensitively. ok is false when
// the material is not in the library.
func Lookup(lib *models.MaterialLibrary, name string) (models.Material, bool) {
	for _, m := range lib.Materials {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return models.Material{}, false
}

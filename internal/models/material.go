package models

// MaterialLibrary is the YAML-configured catalog of wall materials plus
// the room color palette offered by the editor.
type MaterialLibrary struct {
	DefaultMaterial string     `json:"defaultMaterial" yaml:"default_material"`
	Materials       []Material `json:"materials" yaml:"materials"`
	RoomPalette     []string   `json:"roomPalette" yaml:"room_palette"`
}

// Material describes one wall material preset.
type Material struct {
	Name             string  `json:"name" yaml:"name"`
	DefaultThickness float64 `json:"defaultThickness" yaml:"default_thickness"` // mm
	Color            string  `json:"color" yaml:"color"`
}

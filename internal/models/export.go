package models

import "time"

// ExportInfo represents metadata about an exported plan file.
type ExportInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PlanID    string    `json:"planId"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

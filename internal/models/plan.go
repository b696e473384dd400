package models

import (
	"time"

	"github.com/floorplan-studio/backend/internal/geometry"
)

// PlanInfo is the lightweight listing record for a floor plan.
type PlanInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	WallCount int       `json:"wallCount"`
	RoomCount int       `json:"roomCount"`
}

// Plan is a complete floor plan: its wall set plus the rooms from the most
// recent detection run. Walls are the source of truth; rooms and wall
// faces are derived and recomputed after every mutation.
type Plan struct {
	Info  PlanInfo         `json:"info"`
	Walls []*geometry.Wall `json:"walls"`
	Rooms []*geometry.Room `json:"rooms"`
}

// NewPlan creates an empty plan.
func NewPlan(id, name string) *Plan {
	now := time.Now()
	return &Plan{
		Info:  PlanInfo{ID: id, Name: name, CreatedAt: now, UpdatedAt: now},
		Walls: []*geometry.Wall{},
		Rooms: []*geometry.Room{},
	}
}

// Touch refreshes the plan's update timestamp and derived counts.
func (p *Plan) Touch() {
	p.Info.UpdatedAt = time.Now()
	p.Info.WallCount = len(p.Walls)
	p.Info.RoomCount = len(p.Rooms)
}

// GeometrySnapshot is the full derived-geometry payload served to the
// rendering frontend: trimmed wall faces, join records and detected rooms.
type GeometrySnapshot struct {
	PlanID   string                          `json:"planId"`
	Walls    []*geometry.Wall                `json:"walls"`
	Joins    map[string][]geometry.JoinData  `json:"joins"`
	Rooms    []*geometry.Room                `json:"rooms"`
	Warnings []string                        `json:"warnings"`
	Stats    geometry.DetectionStats         `json:"stats"`
}

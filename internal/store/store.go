// Package store persists floor plans. The geometry engine itself has no
// serialization format; plans are stored verbatim as wall and room rows.
package store

import "github.com/floorplan-studio/backend/internal/models"

// PlanStore defines the interface for plan persistence.
type PlanStore interface {
	SavePlan(plan *models.Plan) error
	LoadPlan(id string) (*models.Plan, error)
	ListPlans(limit int) ([]*models.PlanInfo, error)
	DeletePlan(id string) error
	Close() error
}

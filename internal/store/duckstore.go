package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/floorplan-studio/backend/internal/geometry"
	"github.com/floorplan-studio/backend/internal/models"
)

// DuckPlanStore persists plans in a single DuckDB file. Walls and rooms
// are flattened into columnar rows; vector-valued fields (polygons,
// connected-wall lists) are stored as JSON text.
type DuckPlanStore struct {
	db     *sql.DB
	dbPath string
}

// NewDuckPlanStore opens (or creates) the plan database at dbPath.
func NewDuckPlanStore(dbPath string) (*DuckPlanStore, error) {
	fmt.Printf("[PlanStore] Opening database at: %s\n", dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='512MB'",
			"PRAGMA threads=4",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				fmt.Printf("[PlanStore] Pragma warning: %v\n", err)
				// Non-fatal - continue even if pragma fails
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS plans (
			id         VARCHAR PRIMARY KEY,
			name       VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS walls (
			plan_id   VARCHAR NOT NULL,
			id        VARCHAR NOT NULL,
			start_x   DOUBLE NOT NULL,
			start_y   DOUBLE NOT NULL,
			end_x     DOUBLE NOT NULL,
			end_y     DOUBLE NOT NULL,
			thickness DOUBLE NOT NULL,
			material  VARCHAR,
			connected VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			plan_id       VARCHAR NOT NULL,
			id            VARCHAR NOT NULL,
			name          VARCHAR NOT NULL,
			color         VARCHAR,
			user_override BOOLEAN NOT NULL,
			wall_ids      VARCHAR,
			polygon       VARCHAR,
			area          DOUBLE NOT NULL,
			perimeter     DOUBLE NOT NULL,
			centroid_x    DOUBLE NOT NULL,
			centroid_y    DOUBLE NOT NULL,
			furniture_ids VARCHAR
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &DuckPlanStore{db: db, dbPath: dbPath}, nil
}

// SavePlan writes the plan and all of its walls and rooms in one
// transaction, replacing any previous rows for the same plan id.
func (s *DuckPlanStore) SavePlan(plan *models.Plan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM walls WHERE plan_id = ?",
		"DELETE FROM rooms WHERE plan_id = ?",
		"DELETE FROM plans WHERE id = ?",
	} {
		if _, err := tx.Exec(stmt, plan.Info.ID); err != nil {
			return fmt.Errorf("clear previous rows: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO plans (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		plan.Info.ID, plan.Info.Name, plan.Info.CreatedAt, plan.Info.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	for _, w := range plan.Walls {
		connected, _ := json.Marshal(w.ConnectedWalls)
		if _, err := tx.Exec(
			`INSERT INTO walls (plan_id, id, start_x, start_y, end_x, end_y, thickness, material, connected)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			plan.Info.ID, w.ID, w.Start.X, w.Start.Y, w.End.X, w.End.Y,
			w.Thickness, w.Material, string(connected),
		); err != nil {
			return fmt.Errorf("insert wall %s: %w", w.ID, err)
		}
	}

	for _, r := range plan.Rooms {
		wallIDs, _ := json.Marshal(r.BoundaryWallIDs)
		polygon, _ := json.Marshal(r.BoundaryPolygon)
		furniture, _ := json.Marshal(r.FurnitureIDs)
		if _, err := tx.Exec(
			`INSERT INTO rooms (plan_id, id, name, color, user_override, wall_ids, polygon,
			                    area, perimeter, centroid_x, centroid_y, furniture_ids)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			plan.Info.ID, r.ID, r.Name, r.Color, r.UserOverride, string(wallIDs), string(polygon),
			r.Area, r.Perimeter, r.Centroid.X, r.Centroid.Y, string(furniture),
		); err != nil {
			return fmt.Errorf("insert room %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// LoadPlan reads one plan with its walls and rooms. Derived wall faces are
// not stored; the caller recomputes them after loading.
func (s *DuckPlanStore) LoadPlan(id string) (*models.Plan, error) {
	var info models.PlanInfo
	err := s.db.QueryRow(
		"SELECT id, name, created_at, updated_at FROM plans WHERE id = ?", id,
	).Scan(&info.ID, &info.Name, &info.CreatedAt, &info.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plan not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}

	plan := &models.Plan{Info: info, Walls: []*geometry.Wall{}, Rooms: []*geometry.Room{}}

	rows, err := s.db.Query(
		"SELECT id, start_x, start_y, end_x, end_y, thickness, material, connected FROM walls WHERE plan_id = ?", id,
	)
	if err != nil {
		return nil, fmt.Errorf("load walls: %w", err)
	}
	for rows.Next() {
		w := &geometry.Wall{}
		var material, connected sql.NullString
		if err := rows.Scan(&w.ID, &w.Start.X, &w.Start.Y, &w.End.X, &w.End.Y,
			&w.Thickness, &material, &connected); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan wall: %w", err)
		}
		w.Material = material.String
		if connected.Valid && connected.String != "" {
			json.Unmarshal([]byte(connected.String), &w.ConnectedWalls)
		}
		plan.Walls = append(plan.Walls, w)
	}
	rows.Close()

	rows, err = s.db.Query(
		`SELECT id, name, color, user_override, wall_ids, polygon, area, perimeter,
		        centroid_x, centroid_y, furniture_ids
		 FROM rooms WHERE plan_id = ?`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	for rows.Next() {
		r := &geometry.Room{}
		var wallIDs, polygon, furniture sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &r.Color, &r.UserOverride, &wallIDs, &polygon,
			&r.Area, &r.Perimeter, &r.Centroid.X, &r.Centroid.Y, &furniture); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan room: %w", err)
		}
		if wallIDs.Valid {
			json.Unmarshal([]byte(wallIDs.String), &r.BoundaryWallIDs)
		}
		if polygon.Valid {
			json.Unmarshal([]byte(polygon.String), &r.BoundaryPolygon)
		}
		if furniture.Valid && furniture.String != "null" {
			json.Unmarshal([]byte(furniture.String), &r.FurnitureIDs)
		}
		plan.Rooms = append(plan.Rooms, r)
	}
	rows.Close()

	plan.Info.WallCount = len(plan.Walls)
	plan.Info.RoomCount = len(plan.Rooms)
	return plan, nil
}

// ListPlans returns plan metadata, most recently updated first.
func (s *DuckPlanStore) ListPlans(limit int) ([]*models.PlanInfo, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM walls w WHERE w.plan_id = p.id),
		       (SELECT COUNT(*) FROM rooms r WHERE r.plan_id = p.id)
		FROM plans p
		ORDER BY p.updated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var list []*models.PlanInfo
	for rows.Next() {
		info := &models.PlanInfo{}
		var created, updated time.Time
		if err := rows.Scan(&info.ID, &info.Name, &created, &updated,
			&info.WallCount, &info.RoomCount); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		info.CreatedAt = created
		info.UpdatedAt = updated
		list = append(list, info)
	}
	return list, nil
}

// DeletePlan removes a plan and its rows.
func (s *DuckPlanStore) DeletePlan(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM plans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("plan not found: %s", id)
	}
	if _, err := tx.Exec("DELETE FROM walls WHERE plan_id = ?", id); err != nil {
		return fmt.Errorf("delete walls: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM rooms WHERE plan_id = ?", id); err != nil {
		return fmt.Errorf("delete rooms: %w", err)
	}
	return tx.Commit()
}

// Close closes the database.
func (s *DuckPlanStore) Close() error {
	return s.db.Close()
}

// Package plan owns the open floor plans: wall mutations, derived-geometry
// recomputation and persistence. The geometry engine itself is stateless;
// this package is the wrapper that carries state between runs.
package plan

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/floorplan-studio/backend/internal/geometry"
	"github.com/floorplan-studio/backend/internal/models"
	"github.com/floorplan-studio/backend/internal/store"
)

// MaxOpenPlans limits concurrently open plans to bound memory.
const MaxOpenPlans = 50

// PlanMaxAge is how long an untouched plan stays open before cleanup.
// Persisted plans can always be reopened from the store.
const PlanMaxAge = 60 * time.Minute

// State is an open plan plus its derived geometry. Joins, warnings and
// stats are ephemeral: rebuilt whenever the wall set changes.
type State struct {
	Plan         *models.Plan
	Joins        map[string][]geometry.JoinData
	Warnings     []string
	Stats        geometry.DetectionStats
	LastAccessed time.Time

	lastHash uint64 // wall-content hash of the last geometry pass
}

// Manager handles open plans behind one lock. All geometry recomputation
// funnels through recompute so the content-hash gate is applied uniformly.
type Manager struct {
	mu    sync.RWMutex
	plans map[string]*State
	store store.PlanStore // nil when persistence is disabled
	opts  geometry.Options
}

// NewManager creates a plan manager. st may be nil to run memory-only.
func NewManager(st store.PlanStore, opts geometry.Options) *Manager {
	return &Manager{
		plans: make(map[string]*State),
		store: st,
		opts:  opts,
	}
}

// CreatePlan opens a new empty plan.
func (m *Manager) CreatePlan(name string) *models.Plan {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictIfNeededLocked()

	id := uuid.New().String()
	p := models.NewPlan(id, name)
	m.plans[id] = &State{
		Plan:         p,
		Joins:        map[string][]geometry.JoinData{},
		LastAccessed: time.Now(),
	}
	fmt.Printf("[Plan %s] Created %q\n", shortID(id), name)
	m.persistLocked(m.plans[id])
	return p
}

// OpenPlan returns an open plan, loading it from the store if needed.
func (m *Manager) OpenPlan(id string) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state, ok := m.plans[id]; ok {
		state.LastAccessed = time.Now()
		return state.Plan, nil
	}
	if m.store == nil {
		return nil, fmt.Errorf("plan not found: %s", id)
	}

	p, err := m.store.LoadPlan(id)
	if err != nil {
		return nil, err
	}
	m.evictIfNeededLocked()
	state := &State{Plan: p, Joins: map[string][]geometry.JoinData{}, LastAccessed: time.Now()}
	m.plans[id] = state
	m.recomputeLocked(state)
	fmt.Printf("[Plan %s] Loaded from store: %d walls\n", shortID(id), len(p.Walls))
	return p, nil
}

// ListPlans returns plan metadata, preferring the store when available so
// closed plans are listed too.
func (m *Manager) ListPlans(limit int) ([]*models.PlanInfo, error) {
	if m.store != nil {
		return m.store.ListPlans(limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []*models.PlanInfo
	for _, state := range m.plans {
		info := state.Plan.Info
		list = append(list, &info)
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// RenamePlan updates a plan's display name.
func (m *Manager) RenamePlan(id, name string) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.stateLocked(id)
	if err != nil {
		return nil, err
	}
	state.Plan.Info.Name = name
	state.Plan.Touch()
	m.persistLocked(state)
	return state.Plan, nil
}

// DeletePlan closes and deletes a plan.
func (m *Manager) DeletePlan(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, open := m.plans[id]
	delete(m.plans, id)
	if m.store != nil {
		if err := m.store.DeletePlan(id); err != nil && !open {
			return err
		}
	} else if !open {
		return fmt.Errorf("plan not found: %s", id)
	}
	fmt.Printf("[Plan %s] Deleted\n", shortID(id))
	return nil
}

// AddWall appends a wall to the plan and recomputes geometry. A missing
// wall id is assigned; thickness must be positive.
func (m *Manager) AddWall(planID string, w *geometry.Wall) (*geometry.Wall, error) {
	if w.Thickness <= 0 {
		return nil, fmt.Errorf("wall thickness must be positive, got %v", w.Thickness)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.stateLocked(planID)
	if err != nil {
		return nil, err
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	state.Plan.Walls = append(state.Plan.Walls, w)
	m.afterMutationLocked(state)
	return w, nil
}

// UpdateWall replaces the centerline, thickness, material and connectivity
// of an existing wall, then recomputes geometry.
func (m *Manager) UpdateWall(planID string, updated *geometry.Wall) (*geometry.Wall, error) {
	if updated.Thickness <= 0 {
		return nil, fmt.Errorf("wall thickness must be positive, got %v", updated.Thickness)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.stateLocked(planID)
	if err != nil {
		return nil, err
	}
	for i, w := range state.Plan.Walls {
		if w.ID == updated.ID {
			state.Plan.Walls[i] = updated
			m.afterMutationLocked(state)
			return updated, nil
		}
	}
	return nil, fmt.Errorf("wall not found: %s", updated.ID)
}

// RemoveWall deletes a wall and recomputes geometry.
func (m *Manager) RemoveWall(planID, wallID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.stateLocked(planID)
	if err != nil {
		return err
	}
	for i, w := range state.Plan.Walls {
		if w.ID == wallID {
			state.Plan.Walls = append(state.Plan.Walls[:i], state.Plan.Walls[i+1:]...)
			m.afterMutationLocked(state)
			return nil
		}
	}
	return fmt.Errorf("wall not found: %s", wallID)
}

// UpdateRoom applies a user override (name, color) to a detected room.
// Overrides survive re-detection as long as the boundary wall set does.
func (m *Manager) UpdateRoom(planID, roomID, name, color string) (*geometry.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.stateLocked(planID)
	if err != nil {
		return nil, err
	}
	for _, r := range state.Plan.Rooms {
		if r.ID == roomID {
			if name != "" {
				r.Name = name
				r.UserOverride = true
			}
			if color != "" {
				r.Color = color
			}
			state.Plan.Touch()
			m.persistLocked(state)
			return r, nil
		}
	}
	return nil, fmt.Errorf("room not found: %s", roomID)
}

// MergeRooms approximately merges two rooms. The wall set is untouched,
// so the next wall mutation re-detects real topology.
func (m *Manager) MergeRooms(planID, roomA, roomB string) (*geometry.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.stateLocked(planID)
	if err != nil {
		return nil, err
	}
	a := findRoom(state.Plan.Rooms, roomA)
	b := findRoom(state.Plan.Rooms, roomB)
	if a == nil || b == nil {
		return nil, fmt.Errorf("room not found")
	}
	merged := geometry.MergeRooms(a, b)
	var rooms []*geometry.Room
	for _, r := range state.Plan.Rooms {
		if r.ID != roomA && r.ID != roomB {
			rooms = append(rooms, r)
		}
	}
	state.Plan.Rooms = append(rooms, merged)
	state.Plan.Touch()
	m.persistLocked(state)
	return merged, nil
}

// SplitRoom approximately splits a room along a cutting line.
func (m *Manager) SplitRoom(planID, roomID string, cut geometry.Line) ([]*geometry.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.stateLocked(planID)
	if err != nil {
		return nil, err
	}
	r := findRoom(state.Plan.Rooms, roomID)
	if r == nil {
		return nil, fmt.Errorf("room not found: %s", roomID)
	}
	left, right, ok := geometry.SplitRoom(r, cut)
	if !ok {
		return nil, fmt.Errorf("cut line does not divide room %s", roomID)
	}
	var rooms []*geometry.Room
	for _, other := range state.Plan.Rooms {
		if other.ID != roomID {
			rooms = append(rooms, other)
		}
	}
	state.Plan.Rooms = append(rooms, left, right)
	state.Plan.Touch()
	m.persistLocked(state)
	return []*geometry.Room{left, right}, nil
}

// Snapshot returns the full derived-geometry payload for a plan.
func (m *Manager) Snapshot(planID string) (*models.GeometrySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.stateLocked(planID)
	if err != nil {
		return nil, err
	}
	m.recomputeLocked(state)
	return &models.GeometrySnapshot{
		PlanID:   planID,
		Walls:    state.Plan.Walls,
		Joins:    state.Joins,
		Rooms:    state.Plan.Rooms,
		Warnings: state.Warnings,
		Stats:    state.Stats,
	}, nil
}

// CleanupOldPlans drops open plans that have not been touched within
// maxAge. Persisted plans can be reopened later; memory-only plans are
// kept to avoid silent data loss.
func (m *Manager) CleanupOldPlans(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	for id, state := range m.plans {
		if state.LastAccessed.Before(cutoff) && m.store != nil {
			fmt.Printf("[Plan %s] Closing idle plan\n", shortID(id))
			delete(m.plans, id)
		}
	}
}

func (m *Manager) stateLocked(id string) (*State, error) {
	state, ok := m.plans[id]
	if !ok {
		if m.store == nil {
			return nil, fmt.Errorf("plan not found: %s", id)
		}
		p, err := m.store.LoadPlan(id)
		if err != nil {
			return nil, err
		}
		state = &State{Plan: p, Joins: map[string][]geometry.JoinData{}}
		m.plans[id] = state
	}
	state.LastAccessed = time.Now()
	return state, nil
}

// afterMutationLocked recomputes geometry and persists after a wall-set
// change.
func (m *Manager) afterMutationLocked(state *State) {
	m.recomputeLocked(state)
	state.Plan.Touch()
	m.persistLocked(state)
}

// recomputeLocked reruns junction resolution and room detection unless the
// wall content hash is unchanged since the last pass.
func (m *Manager) recomputeLocked(state *State) {
	h := WallsHash(state.Plan.Walls)
	if h == state.lastHash {
		return
	}

	start := time.Now()
	state.Joins = geometry.ResolveJunctions(state.Plan.Walls, m.opts)
	result := geometry.DetectRooms(state.Plan.Walls, m.opts)
	result.Rooms = geometry.MergeRoomDetections(state.Plan.Rooms, result.Rooms)

	state.Plan.Rooms = result.Rooms
	state.Warnings = result.Warnings
	state.Stats = result.Stats
	state.lastHash = h

	fmt.Printf("[Plan %s] Geometry pass: %d walls, %d rooms, %d warnings in %v\n",
		shortID(state.Plan.Info.ID), len(state.Plan.Walls), len(result.Rooms),
		len(result.Warnings), time.Since(start))
}

func (m *Manager) persistLocked(state *State) {
	if m.store == nil {
		return
	}
	if err := m.store.SavePlan(state.Plan); err != nil {
		fmt.Printf("[Plan %s] WARNING: persist failed: %v\n", shortID(state.Plan.Info.ID), err)
	}
}

// evictIfNeededLocked drops the least recently used persisted plan when at
// the open-plan limit.
func (m *Manager) evictIfNeededLocked() {
	if len(m.plans) < MaxOpenPlans || m.store == nil {
		return
	}
	oldestID := ""
	var oldest time.Time
	for id, state := range m.plans {
		if oldestID == "" || state.LastAccessed.Before(oldest) {
			oldestID = id
			oldest = state.LastAccessed
		}
	}
	if oldestID != "" {
		fmt.Printf("[Plan %s] Evicting for capacity\n", shortID(oldestID))
		delete(m.plans, oldestID)
	}
}

// WallsHash is a content hash over wall ids, endpoints and thickness.
// Identical wall content hashes identically regardless of face state, so
// no-op geometry passes are skipped.
func WallsHash(walls []*geometry.Wall) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	writeF := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	for _, w := range walls {
		h.Write([]byte(w.ID))
		writeF(w.Start.X)
		writeF(w.Start.Y)
		writeF(w.End.X)
		writeF(w.End.Y)
		writeF(w.Thickness)
	}
	return h.Sum64()
}

func findRoom(rooms []*geometry.Room, id string) *geometry.Room {
	for _, r := range rooms {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

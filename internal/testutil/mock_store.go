// mock_store.go - Mock plan store implementation for testing
package testutil

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/floorplan-studio/backend/internal/models"
)

// MockPlanStore implements store.PlanStore in memory for testing. Plans
// are deep-copied through JSON so tests cannot alias stored state.
type MockPlanStore struct {
	mu    sync.RWMutex
	plans map[string][]byte
}

// NewMockPlanStore creates an empty mock store.
func NewMockPlanStore() *MockPlanStore {
	return &MockPlanStore{plans: make(map[string][]byte)}
}

func (m *MockPlanStore) SavePlan(plan *models.Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[plan.Info.ID] = data
	return nil
}

func (m *MockPlanStore) LoadPlan(id string) (*models.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan not found: %s", id)
	}
	var plan models.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (m *MockPlanStore) ListPlans(limit int) ([]*models.PlanInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []*models.PlanInfo
	for _, data := range m.plans {
		var plan models.Plan
		if err := json.Unmarshal(data, &plan); err != nil {
			continue
		}
		info := plan.Info
		list = append(list, &info)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockPlanStore) DeletePlan(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return fmt.Errorf("plan not found: %s", id)
	}
	delete(m.plans, id)
	return nil
}

func (m *MockPlanStore) Close() error { return nil }

package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/floorplan-studio/backend/internal/models"
)

// ExportStore keeps exported plan JSON files on the local filesystem so
// users can pass plans between installations without a shared database.
type ExportStore struct {
	mu        sync.RWMutex
	exportDir string
	files     map[string]*models.ExportInfo
}

// NewExportStore creates an ExportStore rooted at exportDir.
func NewExportStore(exportDir string) (*ExportStore, error) {
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	return &ExportStore{
		exportDir: exportDir,
		files:     make(map[string]*models.ExportInfo),
	}, nil
}

// Save writes an export file and records its metadata.
func (s *ExportStore) Save(name, planID string, r io.Reader) (*models.ExportInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.exportDir, id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing export file: %w", err)
	}

	info := &models.ExportInfo{
		ID:        id,
		Name:      name,
		PlanID:    planID,
		Size:      size,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = info

	return info, nil
}

// Get retrieves export metadata by ID.
func (s *ExportStore) Get(id string) (*models.ExportInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("export not found: %s", id)
	}

	return info, nil
}

// List returns the most recent exports.
func (s *ExportStore) List(limit int) ([]*models.ExportInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.ExportInfo
	for _, info := range s.files {
		list = append(list, info)
	}

	// Sort by CreatedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes an export file.
func (s *ExportStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("export not found: %s", id)
	}

	path := filepath.Join(s.exportDir, id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting export file: %w", err)
	}

	delete(s.files, id)
	return nil
}

// GetFilePath returns the absolute path to an export file.
func (s *ExportStore) GetFilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.files[id]; !ok {
		return "", fmt.Errorf("export not found: %s", id)
	}

	return filepath.Join(s.exportDir, id), nil
}

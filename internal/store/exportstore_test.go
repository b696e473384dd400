package store

import (
	"os"
	"strings"
	"testing"
)

func TestExportStoreSaveGetDelete(t *testing.T) {
	s, err := NewExportStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create export store: %v", err)
	}

	info, err := s.Save("flat.plan.json", "plan-1", strings.NewReader(`{"info":{}}`))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if info.ID == "" || info.Size != 11 {
		t.Errorf("Unexpected export info: %+v", info)
	}
	if info.PlanID != "plan-1" || info.Name != "flat.plan.json" {
		t.Errorf("Unexpected export metadata: %+v", info)
	}

	got, err := s.Get(info.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != info.ID {
		t.Errorf("Expected same export back, got %s", got.ID)
	}

	path, err := s.GetFilePath(info.ID)
	if err != nil {
		t.Fatalf("GetFilePath failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}
	if string(data) != `{"info":{}}` {
		t.Errorf("Unexpected file content: %s", data)
	}

	if err := s.Delete(info.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(info.ID); err == nil {
		t.Error("Expected deleted export gone")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected export file removed")
	}
}

func TestExportStoreList(t *testing.T) {
	s, err := NewExportStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create export store: %v", err)
	}

	for _, name := range []string{"a.json", "b.json", "c.json"} {
		if _, err := s.Save(name, "plan-1", strings.NewReader("{}")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	list, err := s.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected list limited to 2, got %d", len(list))
	}
}

func TestExportStoreUnknownID(t *testing.T) {
	s, _ := NewExportStore(t.TempDir())
	if _, err := s.Get("ghost"); err == nil {
		t.Error("Expected error for unknown export")
	}
	if err := s.Delete("ghost"); err == nil {
		t.Error("Expected error deleting unknown export")
	}
	if _, err := s.GetFilePath("ghost"); err == nil {
		t.Error("Expected error for unknown export path")
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/floorplan-studio/backend/internal/geometry"
	"github.com/floorplan-studio/backend/internal/models"
	"github.com/floorplan-studio/backend/internal/plan"
	"github.com/floorplan-studio/backend/internal/store"
	"github.com/floorplan-studio/backend/internal/testutil"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	mgr := plan.NewManager(testutil.NewMockPlanStore(), geometry.DefaultOptions())
	exports, err := store.NewExportStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create export store: %v", err)
	}
	return NewHandler(mgr, exports)
}

func createTestPlan(t *testing.T, e *echo.Echo, h *Handler, name string) models.PlanInfo {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"name": name})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.HandleCreatePlan(c); err != nil {
		t.Fatalf("HandleCreatePlan failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var info models.PlanInfo
	json.Unmarshal(rec.Body.Bytes(), &info)
	return info
}

func addTestWall(t *testing.T, e *echo.Echo, h *Handler, planID string, w map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(w)
	req := httptest.NewRequest(http.MethodPost, "/api/plans/:id/walls", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(planID)
	if err := h.HandleAddWall(c); err != nil {
		t.Fatalf("HandleAddWall failed: %v", err)
	}
	return rec
}

func addTestRectangle(t *testing.T, e *echo.Echo, h *Handler, planID string) {
	t.Helper()
	corners := [][4]float64{
		{0, 0, 4000, 0},
		{4000, 0, 4000, 3000},
		{4000, 3000, 0, 3000},
		{0, 3000, 0, 0},
	}
	for i, cn := range corners {
		rec := addTestWall(t, e, h, planID, map[string]interface{}{
			"id":         fmt.Sprintf("w%d", i),
			"startPoint": map[string]float64{"x": cn[0], "y": cn[1]},
			"endPoint":   map[string]float64{"x": cn[2], "y": cn[3]},
			"thickness":  150,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected wall created, got %d: %s", rec.Code, rec.Body.String())
		}
	}
}

func TestPlanHandlers(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	// Create
	info := createTestPlan(t, e, h, "Apartment")
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "Apartment", info.Name)

	// Empty name rejected
	body, _ := json.Marshal(map[string]string{"name": "  "})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if assert.NoError(t, h.HandleCreatePlan(e.NewContext(req, rec))) {
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	}

	// List
	req = httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	rec = httptest.NewRecorder()
	if assert.NoError(t, h.HandleListPlans(e.NewContext(req, rec))) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), info.ID)
	}

	// Get
	req = httptest.NewRequest(http.MethodGet, "/api/plans/:id", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(info.ID)
	if assert.NoError(t, h.HandleGetPlan(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// Get unknown
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/plans/:id", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if assert.NoError(t, h.HandleGetPlan(c)) {
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "NOT_FOUND")
	}

	// Rename
	body, _ = json.Marshal(map[string]string{"name": "Penthouse"})
	req = httptest.NewRequest(http.MethodPut, "/api/plans/:id", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(info.ID)
	if assert.NoError(t, h.HandleRenamePlan(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Penthouse")
	}

	// Delete
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/plans/:id", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(info.ID)
	if assert.NoError(t, h.HandleDeletePlan(c)) {
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestWallHandlers(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	info := createTestPlan(t, e, h, "Studio")

	// Add with explicit thickness
	rec := addTestWall(t, e, h, info.ID, map[string]interface{}{
		"startPoint": map[string]float64{"x": 0, "y": 0},
		"endPoint":   map[string]float64{"x": 1000, "y": 0},
		"thickness":  100,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created geometry.Wall
	json.Unmarshal(rec.Body.Bytes(), &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 100.0, created.Thickness)

	// Material default thickness from the built-in catalog
	rec = addTestWall(t, e, h, info.ID, map[string]interface{}{
		"startPoint": map[string]float64{"x": 0, "y": 500},
		"endPoint":   map[string]float64{"x": 1000, "y": 500},
		"material":   "brick",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var brick geometry.Wall
	json.Unmarshal(rec.Body.Bytes(), &brick)
	assert.Equal(t, 240.0, brick.Thickness)

	// Zero thickness and unknown material rejected
	rec = addTestWall(t, e, h, info.ID, map[string]interface{}{
		"startPoint": map[string]float64{"x": 0, "y": 0},
		"endPoint":   map[string]float64{"x": 1000, "y": 0},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Update
	body, _ := json.Marshal(map[string]interface{}{
		"startPoint": map[string]float64{"x": 0, "y": 0},
		"endPoint":   map[string]float64{"x": 2000, "y": 0},
		"thickness":  120.0,
	})
	req := httptest.NewRequest(http.MethodPut, "/api/plans/:id/walls/:wallId", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "wallId")
	c.SetParamValues(info.ID, created.ID)
	if assert.NoError(t, h.HandleUpdateWall(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		var updated geometry.Wall
		json.Unmarshal(rec.Body.Bytes(), &updated)
		assert.Equal(t, 2000.0, updated.End.X)
		assert.Equal(t, 120.0, updated.Thickness)
	}

	// Delete
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/plans/:id/walls/:wallId", nil), rec)
	c.SetParamNames("id", "wallId")
	c.SetParamValues(info.ID, created.ID)
	if assert.NoError(t, h.HandleDeleteWall(c)) {
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	// Delete unknown wall
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/plans/:id/walls/:wallId", nil), rec)
	c.SetParamNames("id", "wallId")
	c.SetParamValues(info.ID, "ghost")
	if assert.NoError(t, h.HandleDeleteWall(c)) {
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
}

func TestGeometryHandlers(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	info := createTestPlan(t, e, h, "Flat")
	addTestRectangle(t, e, h, info.ID)

	// JSON snapshot with walls, joins and one room
	req := httptest.NewRequest(http.MethodGet, "/api/plans/:id/geometry", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(info.ID)
	if !assert.NoError(t, h.HandleGetGeometry(c)) {
		return
	}
	assert.Equal(t, http.StatusOK, rec.Code)

	var snap models.GeometrySnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}
	assert.Len(t, snap.Walls, 4)
	assert.Len(t, snap.Joins, 4)
	if assert.Len(t, snap.Rooms, 1) {
		assert.InDelta(t, 11.48, snap.Rooms[0].Area, 0.1)
	}

	// MessagePack snapshot decodes to the same payload
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/plans/:id/geometry/msgpack", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(info.ID)
	if assert.NoError(t, h.HandleGetGeometryMsgpack(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))
		var packed models.GeometrySnapshot
		if assert.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &packed)) {
			assert.Equal(t, len(snap.Walls), len(packed.Walls))
			assert.Equal(t, len(snap.Rooms), len(packed.Rooms))
		}
	}

	// Rooms endpoint
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/plans/:id/rooms", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(info.ID)
	if assert.NoError(t, h.HandleGetRooms(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"rooms"`)
		assert.Contains(t, rec.Body.String(), `"stats"`)
	}

	// Room rename override
	roomID := snap.Rooms[0].ID
	body, _ := json.Marshal(map[string]string{"name": "Living Room", "color": "#123456"})
	req = httptest.NewRequest(http.MethodPut, "/api/plans/:id/rooms/:roomId", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id", "roomId")
	c.SetParamValues(info.ID, roomID)
	if assert.NoError(t, h.HandleUpdateRoom(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Living Room")
	}

	// Empty override rejected
	body, _ = json.Marshal(map[string]string{})
	req = httptest.NewRequest(http.MethodPut, "/api/plans/:id/rooms/:roomId", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id", "roomId")
	c.SetParamValues(info.ID, roomID)
	if assert.NoError(t, h.HandleUpdateRoom(c)) {
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	info := createTestPlan(t, e, h, "Exported Flat")
	addTestRectangle(t, e, h, info.ID)

	// Export
	req := httptest.NewRequest(http.MethodPost, "/api/plans/:id/export", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(info.ID)
	if !assert.NoError(t, h.HandleExportPlan(c)) {
		return
	}
	assert.Equal(t, http.StatusCreated, rec.Code)
	var exportInfo models.ExportInfo
	json.Unmarshal(rec.Body.Bytes(), &exportInfo)
	assert.NotEmpty(t, exportInfo.ID)

	// Listed
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/exports/recent", nil), rec)
	if assert.NoError(t, h.HandleRecentExports(c)) {
		assert.Contains(t, rec.Body.String(), exportInfo.ID)
	}

	// Download through the router so the path param binding is exercised,
	// using the same route shape the server registers.
	e.GET("/api/exports/:id/download", h.HandleDownloadExport)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/"+exportInfo.ID+"/download", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.Bytes()
	assert.Contains(t, string(exported), "Exported Flat")

	// Unknown export ids 404 through the router too
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/ghost/download", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Import back as a new plan
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "plan.json")
	part.Write(exported)
	writer.Close()

	req = httptest.NewRequest(http.MethodPost, "/api/plans/import", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if !assert.NoError(t, h.HandleImportPlan(c)) {
		return
	}
	assert.Equal(t, http.StatusCreated, rec.Code)

	var imported models.Plan
	json.Unmarshal(rec.Body.Bytes(), &imported)
	assert.NotEqual(t, info.ID, imported.Info.ID)
	assert.Len(t, imported.Walls, 4)
	assert.Len(t, imported.Rooms, 1)
}

func TestMaterialsHandlers(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	// Built-in catalog served by default
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/materials", nil), rec)
	if assert.NoError(t, h.HandleGetMaterials(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "brick")
	}

	// Upload replaces the library
	yaml := "default_material: adobe\nmaterials:\n  - name: adobe\n    default_thickness: 300\n    color: \"#B8860B\"\n"
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "materials.yaml")
	part.Write([]byte(yaml))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/materials", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if assert.NoError(t, h.HandleUploadMaterials(c)) {
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "adobe")
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/materials", nil), rec)
	if assert.NoError(t, h.HandleGetMaterials(c)) {
		assert.Contains(t, rec.Body.String(), "adobe")
		assert.NotContains(t, rec.Body.String(), "brick")
	}
}

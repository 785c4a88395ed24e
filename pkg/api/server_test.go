package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rigwatch/rigwatch/pkg/db"
	"github.com/rigwatch/rigwatch/pkg/ingest"
	"github.com/rigwatch/rigwatch/pkg/models"
)

type fakeIngestor struct {
	result *ingest.Result
	err    error
	calls  int
}

func (f *fakeIngestor) Ingest(_ context.Context, _ *models.Telemetry) (*ingest.Result, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	return f.result, nil
}

type fakeAnalytics struct {
	health *models.HealthMetrics
	recs   []models.Recommendation
	fleet  *models.FleetAggregate
	err    error
}

func (f *fakeAnalytics) HealthMetrics(string) (*models.HealthMetrics, error) {
	return f.health, f.err
}

func (f *fakeAnalytics) Recommendations(string) ([]models.Recommendation, error) {
	return f.recs, f.err
}

func (f *fakeAnalytics) FleetAnalysis() (*models.FleetAggregate, error) {
	return f.fleet, f.err
}

func float64Ptr(v float64) *float64 { return &v }

func TestPostTelemetryProcessed(t *testing.T) {
	ingestor := &fakeIngestor{result: &ingest.Result{GPUID: "gpu-1", EventID: "evt-1"}}
	s := NewServer(Options{Pipeline: ingestor})

	body := bytes.NewBufferString(`{"gpu_uuid":"gpu-1","gpu_temp_celsius":72.5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/telemetry", body)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "processed", resp.Status)
	assert.Equal(t, "gpu-1", resp.GPUID)
	assert.Equal(t, "evt-1", resp.EventID)
}

func TestPostTelemetryInvalidJSON(t *testing.T) {
	ingestor := &fakeIngestor{}
	s := NewServer(Options{Pipeline: ingestor})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/telemetry", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, ingestor.calls)
}

func TestPostTelemetryValidationError(t *testing.T) {
	ingestor := &fakeIngestor{err: fmt.Errorf("%w: gpu_uuid is required", ingest.ErrValidation)}
	s := NewServer(Options{Pipeline: ingestor})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/telemetry", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "gpu_uuid")
}

func TestPostTelemetryStoreError(t *testing.T) {
	ingestor := &fakeIngestor{err: fmt.Errorf("%w: resolve gpu: disk full", ingest.ErrStoreUnavailable)}
	s := NewServer(Options{Pipeline: ingestor})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/telemetry", bytes.NewBufferString(`{"gpu_uuid":"gpu-1"}`))
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPostTelemetryRateLimited(t *testing.T) {
	ingestor := &fakeIngestor{result: &ingest.Result{GPUID: "gpu-1", EventID: "evt-1"}}
	s := NewServer(Options{
		Pipeline:        ingestor,
		IngestRateLimit: 1,
		IngestRateBurst: 1,
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/telemetry",
			bytes.NewBufferString(`{"gpu_uuid":"gpu-1"}`))
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, req)

		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestGetGPUs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().ListGPUs().Return([]models.GPU{
		{GPUUUID: "gpu-1", RigName: "rig-1"},
	}, nil)

	s := NewServer(Options{Store: mockDB})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gpus", nil)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var gpus []models.GPU
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gpus))
	require.Len(t, gpus, 1)
	assert.Equal(t, "gpu-1", gpus[0].GPUUUID)
}

func TestGetGPUsEmptyIsEmptyArray(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().ListGPUs().Return(nil, nil)

	s := NewServer(Options{Store: mockDB})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gpus", nil)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetLatest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().GetLatestReadings().Return([]models.TemperatureReading{
		{GPUUUID: "gpu-1", GPUTemp: float64Ptr(72.5)},
	}, nil)

	s := NewServer(Options{Store: mockDB})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/latest", nil)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var readings []models.TemperatureReading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &readings))
	require.Len(t, readings, 1)
	require.NotNil(t, readings[0].GPUTemp)
	assert.Equal(t, 72.5, *readings[0].GPUTemp)
	assert.Nil(t, readings[0].HotspotTemp)
}

func TestGetTemperatureHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().
		GetGPUHistory("gpu-1", gomock.Any(), maxHistoryRows).
		Return([]models.TemperatureReading{{GPUUUID: "gpu-1"}}, nil)

	s := NewServer(Options{Store: mockDB})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/temperatures/gpu-1?hours=48", nil)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetTemperatureHistoryBadHours(t *testing.T) {
	s := NewServer(Options{})

	for _, hours := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/temperatures/gpu-1?hours="+hours, nil)
		w := httptest.NewRecorder()

		s.Router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "hours=%s", hours)
	}
}

func TestGetAlerts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().GetActiveAlerts().Return([]models.Alert{
		{AlertID: "alert-1", Severity: models.SeverityCritical, Status: models.AlertStatusActive},
	}, nil)

	s := NewServer(Options{Store: mockDB})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var alerts []models.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertStatusActive, alerts[0].Status)
}

func TestGetHealthMetrics(t *testing.T) {
	analytics := &fakeAnalytics{health: &models.HealthMetrics{
		GPUUUID: "gpu-1",
		Score:   65,
		Status:  "warning",
	}}

	s := NewServer(Options{Analytics: analytics})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health-metrics/gpu-1", nil)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var health models.HealthMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, 65, health.Score)
	assert.Equal(t, "warning", health.Status)
}

func TestGetRecommendationsEmpty(t *testing.T) {
	s := NewServer(Options{Analytics: &fakeAnalytics{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/gpu-1", nil)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetFleetAnalysis(t *testing.T) {
	analytics := &fakeAnalytics{fleet: &models.FleetAggregate{
		GPUCount:    2,
		AlertCounts: map[string]int{"WARNING": 1},
	}}

	s := NewServer(Options{Analytics: analytics})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fleet-analysis", nil)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var agg models.FleetAggregate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &agg))
	assert.Equal(t, 2, agg.GPUCount)
	assert.Equal(t, 1, agg.AlertCounts["WARNING"])
}

func TestCORSHeaders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().ListGPUs().Return(nil, nil)

	s := NewServer(Options{Store: mockDB})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gpus", nil)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rigwatch/rigwatch/pkg/db"
	"github.com/rigwatch/rigwatch/pkg/models"
)

func TestHealthMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)

	mockDB.EXPECT().GetTempStats("gpu-1", gomock.Any()).Return(&models.TempStats{
		Avg:     float64Ptr(81.0),
		Max:     float64Ptr(91.0),
		Samples: 48,
	}, nil)
	mockDB.EXPECT().GetAlertsSince("gpu-1", gomock.Any()).Return([]models.Alert{
		{Severity: models.SeverityCritical},
		{Severity: models.SeverityWarning},
		{Severity: models.SeverityInfo},
	}, nil)

	e := NewEngine(mockDB)

	health, err := e.HealthMetrics("gpu-1")
	require.NoError(t, err)

	// 100 - 20 (avg) - 15 (max) - 10 (critical) - 5 (warning); info alerts
	// never deduct.
	assert.Equal(t, 50, health.Score)
	assert.Equal(t, StatusCritical, health.Status)
	assert.Equal(t, 1, health.CriticalAlerts)
	assert.Equal(t, 1, health.WarningAlerts)
}

func TestHealthMetricsNoData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)

	mockDB.EXPECT().GetTempStats("gpu-silent", gomock.Any()).Return(&models.TempStats{}, nil)
	mockDB.EXPECT().GetAlertsSince("gpu-silent", gomock.Any()).Return(nil, nil)

	e := NewEngine(mockDB)

	health, err := e.HealthMetrics("gpu-silent")
	require.NoError(t, err)
	assert.Equal(t, 100, health.Score)
	assert.Equal(t, StatusHealthy, health.Status)
	assert.Nil(t, health.AvgTemp)
}

func TestRecommendationsUnknownGPU(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().GetGPU("gpu-missing").Return(nil, nil)

	e := NewEngine(mockDB)

	recs, err := e.Recommendations("gpu-missing")
	require.NoError(t, err)
	assert.Nil(t, recs)
}

func TestRecommendationsYoungGPUSkipsDegradation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)

	gpu := &models.GPU{
		GPUUUID:   "gpu-1",
		CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
	}

	mockDB.EXPECT().GetGPU("gpu-1").Return(gpu, nil)
	// No GetAverageTemp expectations: a young card never queries the
	// degradation windows.
	mockDB.EXPECT().GetLatestReading("gpu-1").Return(&models.TemperatureReading{
		GPUTemp: float64Ptr(82.0),
	}, nil)

	e := NewEngine(mockDB)

	recs, err := e.Recommendations("gpu-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "reduce_core_clock", recs[0].Action)
}

func TestRecommendationsOldDegradedGPU(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)

	created := time.Now().Add(-600 * 24 * time.Hour)
	gpu := &models.GPU{GPUUUID: "gpu-old", CreatedAt: created}

	mockDB.EXPECT().GetGPU("gpu-old").Return(gpu, nil)
	mockDB.EXPECT().GetLatestReading("gpu-old").Return(&models.TemperatureReading{
		GPUTemp: float64Ptr(65.0),
	}, nil)
	mockDB.EXPECT().GetAverageTemp("gpu-old", created, gomock.Any()).Return(float64Ptr(60.0), nil)
	mockDB.EXPECT().GetAverageTemp("gpu-old", gomock.Any(), gomock.Any()).Return(float64Ptr(72.0), nil)

	e := NewEngine(mockDB)

	recs, err := e.Recommendations("gpu-old")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "consider_replacement", recs[0].Action)
	assert.Equal(t, models.RecSeverityLow, recs[0].Severity)
}

func TestFleetAnalysis(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)

	mockDB.EXPECT().GetFleetAggregate().Return(&models.FleetAggregate{
		GPUCount:       3,
		AvgTemp:        float64Ptr(68.5),
		TotalPowerDraw: float64Ptr(720.0),
		AlertCounts:    map[string]int{"CRITICAL": 1},
	}, nil)

	e := NewEngine(mockDB)

	agg, err := e.FleetAnalysis()
	require.NoError(t, err)
	assert.Equal(t, 3, agg.GPUCount)
	assert.Equal(t, 720.0, *agg.TotalPowerDraw)
}

func TestEngineStoreErrorsPropagate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().GetTempStats("gpu-1", gomock.Any()).Return(nil, errors.New("db closed"))

	e := NewEngine(mockDB)

	_, err := e.HealthMetrics("gpu-1")
	require.Error(t, err)
}

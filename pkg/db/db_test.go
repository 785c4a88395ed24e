package db

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigwatch/rigwatch/pkg/models"
)

func newTestDB(t *testing.T) Service {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func float64Ptr(v float64) *float64 { return &v }

func testGPU(uuid string) *models.GPU {
	return &models.GPU{
		GPUUUID:      uuid,
		RigName:      "rig-1",
		GPUIndex:     0,
		Model:        "RTX 3080",
		Vendor:       "NVIDIA",
		MemorySizeMB: 10240,
	}
}

func TestUpsertGPUFirstSight(t *testing.T) {
	store := newTestDB(t)

	gpu, err := store.UpsertGPU(testGPU("gpu-1"))
	require.NoError(t, err)

	assert.Greater(t, gpu.ID, int64(0))
	assert.Equal(t, "gpu-1", gpu.GPUUUID)
	assert.Equal(t, "rig-1", gpu.RigName)
	assert.True(t, gpu.IsActive)
	assert.False(t, gpu.CreatedAt.IsZero())
}

func TestUpsertGPUIsIdempotent(t *testing.T) {
	store := newTestDB(t)

	first, err := store.UpsertGPU(testGPU("gpu-1"))
	require.NoError(t, err)

	// A second sighting keeps the original row, including identity fields
	// that differ in the resubmission.
	resubmit := testGPU("gpu-1")
	resubmit.RigName = "rig-renamed"

	second, err := store.UpsertGPU(resubmit)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "rig-1", second.RigName)

	gpus, err := store.ListGPUs()
	require.NoError(t, err)
	assert.Len(t, gpus, 1)
}

func TestUpsertGPUConcurrentSameUUID(t *testing.T) {
	store := newTestDB(t)

	const workers = 20

	var wg sync.WaitGroup

	errs := make(chan error, workers)
	ids := make(chan int64, workers)

	// Concurrent submissions for the same card must converge on one row;
	// the unique constraint on gpu_uuid backstops the insert-or-select race.
	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			gpu, err := store.UpsertGPU(testGPU("gpu-race"))
			if err != nil {
				errs <- err
				return
			}

			ids <- gpu.ID
		}()
	}

	wg.Wait()
	close(errs)
	close(ids)

	for err := range errs {
		require.NoError(t, err)
	}

	var firstID int64

	for id := range ids {
		if firstID == 0 {
			firstID = id
		}

		assert.Equal(t, firstID, id)
	}

	gpus, err := store.ListGPUs()
	require.NoError(t, err)
	require.Len(t, gpus, 1)
	assert.Equal(t, "gpu-race", gpus[0].GPUUUID)
}

func TestUpsertGPUDefaults(t *testing.T) {
	store := newTestDB(t)

	gpu, err := store.UpsertGPU(&models.GPU{GPUUUID: "gpu-bare"})
	require.NoError(t, err)

	assert.Equal(t, "unknown", gpu.RigName)
	assert.Equal(t, "unknown", gpu.Model)
	assert.Equal(t, "unknown", gpu.Vendor)
}

func TestUpsertGPURequiresUUID(t *testing.T) {
	store := newTestDB(t)

	_, err := store.UpsertGPU(&models.GPU{})
	assert.ErrorIs(t, err, ErrMissingGPUUUID)

	_, err = store.UpsertGPU(nil)
	assert.ErrorIs(t, err, ErrMissingGPUUUID)
}

func TestAppendReadingAndLatest(t *testing.T) {
	store := newTestDB(t)

	gpu, err := store.UpsertGPU(testGPU("gpu-1"))
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.AppendReading(gpu.ID, &models.TemperatureReading{
		GPUTemp:   float64Ptr(70.0),
		PowerDraw: float64Ptr(250.0),
		Timestamp: base.Add(-time.Minute),
	}))
	require.NoError(t, store.AppendReading(gpu.ID, &models.TemperatureReading{
		GPUTemp:   float64Ptr(72.5),
		FanSpeed:  float64Ptr(60.0),
		Timestamp: base,
	}))

	latest, err := store.GetLatestReading("gpu-1")
	require.NoError(t, err)
	require.NotNil(t, latest)

	assert.Equal(t, "gpu-1", latest.GPUUUID)
	require.NotNil(t, latest.GPUTemp)
	assert.Equal(t, 72.5, *latest.GPUTemp)
	require.NotNil(t, latest.FanSpeed)
	assert.Equal(t, 60.0, *latest.FanSpeed)

	// Absent metrics stay absent through the round trip.
	assert.Nil(t, latest.HotspotTemp)
	assert.Nil(t, latest.PowerDraw)
}

func TestAppendReadingRejectsBadRef(t *testing.T) {
	store := newTestDB(t)

	err := store.AppendReading(0, &models.TemperatureReading{})
	assert.ErrorIs(t, err, ErrInvalidGPURef)
}

func TestGetLatestReadingsPerGPU(t *testing.T) {
	store := newTestDB(t)

	base := time.Now().UTC().Truncate(time.Second)

	for _, uuid := range []string{"gpu-a", "gpu-b"} {
		gpu, err := store.UpsertGPU(testGPU(uuid))
		require.NoError(t, err)

		require.NoError(t, store.AppendReading(gpu.ID, &models.TemperatureReading{
			GPUTemp:   float64Ptr(60.0),
			Timestamp: base.Add(-time.Hour),
		}))
		require.NoError(t, store.AppendReading(gpu.ID, &models.TemperatureReading{
			GPUTemp:   float64Ptr(65.0),
			Timestamp: base,
		}))
	}

	latest, err := store.GetLatestReadings()
	require.NoError(t, err)
	require.Len(t, latest, 2)

	for _, r := range latest {
		require.NotNil(t, r.GPUTemp)
		assert.Equal(t, 65.0, *r.GPUTemp)
	}
}

func TestGetGPUHistoryWindowAndLimit(t *testing.T) {
	store := newTestDB(t)

	gpu, err := store.UpsertGPU(testGPU("gpu-1"))
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendReading(gpu.ID, &models.TemperatureReading{
			GPUTemp:   float64Ptr(60.0 + float64(i)),
			Timestamp: base.Add(time.Duration(-i) * time.Hour),
		}))
	}

	history, err := store.GetGPUHistory("gpu-1", base.Add(-2*time.Hour), 100)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Newest first.
	assert.Equal(t, 60.0, *history[0].GPUTemp)
	assert.Equal(t, 62.0, *history[2].GPUTemp)

	limited, err := store.GetGPUHistory("gpu-1", base.Add(-24*time.Hour), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestAppendEvent(t *testing.T) {
	store := newTestDB(t)

	event := &models.Event{
		EventID:       "evt-1",
		EventType:     models.EventTypeTelemetryReceived,
		AggregateType: models.AggregateTypeGPU,
		AggregateID:   "gpu-1",
		Payload:       []byte(`{"gpu_uuid":"gpu-1"}`),
		Metadata:      []byte(`{"source":"rig-agent"}`),
		CorrelationID: "corr-1",
		Timestamp:     time.Now().UTC(),
	}

	require.NoError(t, store.AppendEvent(event))

	// The event log is append-only with unique event ids.
	err := store.AppendEvent(event)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailedToInsert)

	err = store.AppendEvent(&models.Event{})
	assert.ErrorIs(t, err, ErrMissingEventID)
}

func TestInsertAlertAndQueries(t *testing.T) {
	store := newTestDB(t)

	gpu, err := store.UpsertGPU(testGPU("gpu-1"))
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.InsertAlert(gpu.ID, &models.Alert{
		AlertID:        "alert-1",
		Type:           models.AlertHighGPUTemp,
		Severity:       models.SeverityCritical,
		TriggeredValue: 87.0,
		ThresholdValue: 80.0,
		TriggerEventID: "evt-1",
		CreatedAt:      now,
	}))
	require.NoError(t, store.InsertAlert(gpu.ID, &models.Alert{
		AlertID:        "alert-2",
		Type:           models.AlertHighPower,
		Severity:       models.SeverityWarning,
		TriggeredValue: 320.0,
		ThresholdValue: 300.0,
		TriggerEventID: "evt-2",
		CreatedAt:      now.Add(-48 * time.Hour),
	}))

	active, err := store.GetActiveAlerts()
	require.NoError(t, err)
	require.Len(t, active, 2)

	for _, a := range active {
		assert.Equal(t, models.AlertStatusActive, a.Status)
		assert.Equal(t, "gpu-1", a.GPUUUID)
	}

	recent, err := store.GetAlertsSince("gpu-1", now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "alert-1", recent[0].AlertID)
	assert.Equal(t, 87.0, recent[0].TriggeredValue)
}

func TestGetFleetAggregateEmpty(t *testing.T) {
	store := newTestDB(t)

	agg, err := store.GetFleetAggregate()
	require.NoError(t, err)

	assert.Equal(t, 0, agg.GPUCount)
	assert.Nil(t, agg.AvgTemp)
	assert.Nil(t, agg.TotalPowerDraw)
	assert.Empty(t, agg.AlertCounts)
}

func TestGetFleetAggregate(t *testing.T) {
	store := newTestDB(t)

	base := time.Now().UTC().Truncate(time.Second)

	gpuA, err := store.UpsertGPU(testGPU("gpu-a"))
	require.NoError(t, err)
	gpuB, err := store.UpsertGPU(testGPU("gpu-b"))
	require.NoError(t, err)

	// Older readings must not leak into the latest-per-GPU aggregate.
	require.NoError(t, store.AppendReading(gpuA.ID, &models.TemperatureReading{
		GPUTemp:   float64Ptr(90.0),
		PowerDraw: float64Ptr(400.0),
		Timestamp: base.Add(-time.Hour),
	}))
	require.NoError(t, store.AppendReading(gpuA.ID, &models.TemperatureReading{
		GPUTemp:   float64Ptr(60.0),
		PowerDraw: float64Ptr(200.0),
		Timestamp: base,
	}))
	require.NoError(t, store.AppendReading(gpuB.ID, &models.TemperatureReading{
		GPUTemp:   float64Ptr(70.0),
		PowerDraw: float64Ptr(300.0),
		Timestamp: base,
	}))

	require.NoError(t, store.InsertAlert(gpuA.ID, &models.Alert{
		AlertID:        "alert-1",
		Type:           models.AlertHighGPUTemp,
		Severity:       models.SeverityCritical,
		TriggerEventID: "evt-1",
	}))

	agg, err := store.GetFleetAggregate()
	require.NoError(t, err)

	assert.Equal(t, 2, agg.GPUCount)
	require.NotNil(t, agg.AvgTemp)
	assert.InDelta(t, 65.0, *agg.AvgTemp, 0.001)
	require.NotNil(t, agg.TotalPowerDraw)
	assert.InDelta(t, 500.0, *agg.TotalPowerDraw, 0.001)
	assert.Equal(t, 1, agg.AlertCounts["CRITICAL"])
}

func TestGetTempStats(t *testing.T) {
	store := newTestDB(t)

	gpu, err := store.UpsertGPU(testGPU("gpu-1"))
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.AppendReading(gpu.ID, &models.TemperatureReading{
		GPUTemp:   float64Ptr(60.0),
		Timestamp: base.Add(-time.Minute),
	}))
	require.NoError(t, store.AppendReading(gpu.ID, &models.TemperatureReading{
		GPUTemp:   float64Ptr(80.0),
		Timestamp: base,
	}))

	// A reading without a gpu temperature contributes nothing.
	require.NoError(t, store.AppendReading(gpu.ID, &models.TemperatureReading{
		FanSpeed:  float64Ptr(50.0),
		Timestamp: base,
	}))

	stats, err := store.GetTempStats("gpu-1", base.Add(-time.Hour))
	require.NoError(t, err)

	require.NotNil(t, stats.Avg)
	assert.InDelta(t, 70.0, *stats.Avg, 0.001)
	require.NotNil(t, stats.Max)
	assert.Equal(t, 80.0, *stats.Max)
	assert.Equal(t, 2, stats.Samples)
}

func TestGetAverageTempEmptyWindow(t *testing.T) {
	store := newTestDB(t)

	_, err := store.UpsertGPU(testGPU("gpu-1"))
	require.NoError(t, err)

	avg, err := store.GetAverageTemp("gpu-1", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Nil(t, avg)
}

func TestCleanOldReadings(t *testing.T) {
	store := newTestDB(t)

	gpu, err := store.UpsertGPU(testGPU("gpu-1"))
	require.NoError(t, err)

	now := time.Now().UTC()

	require.NoError(t, store.AppendReading(gpu.ID, &models.TemperatureReading{
		GPUTemp:   float64Ptr(60.0),
		Timestamp: now.Add(-48 * time.Hour),
	}))
	require.NoError(t, store.AppendReading(gpu.ID, &models.TemperatureReading{
		GPUTemp:   float64Ptr(65.0),
		Timestamp: now,
	}))

	require.NoError(t, store.AppendEvent(&models.Event{
		EventID:       "evt-old",
		EventType:     models.EventTypeTelemetryReceived,
		AggregateType: models.AggregateTypeGPU,
		AggregateID:   "gpu-1",
		Payload:       []byte(`{}`),
		Timestamp:     now.Add(-48 * time.Hour),
	}))

	require.NoError(t, store.CleanOldReadings(24*time.Hour))

	history, err := store.GetGPUHistory("gpu-1", now.Add(-72*time.Hour), 100)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 65.0, *history[0].GPUTemp)

	// The event log is never cleaned.
	var count int
	raw := store.(*DB)
	require.NoError(t, raw.QueryRow(`SELECT COUNT(*) FROM event_store`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCleanOldReadingsSurfacesTxErrors(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.CleanOldReadings(time.Hour)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailedToBeginTx)
}

func TestGetGPUUnknownUUID(t *testing.T) {
	store := newTestDB(t)

	gpu, err := store.GetGPU("gpu-nope")
	require.NoError(t, err)
	assert.Nil(t, gpu)
}

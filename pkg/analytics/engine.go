// Package analytics pkg/analytics/engine.go is the read-only query engine
// over the event store: health scoring, fleet aggregation and the
// recommendation engine.
package analytics

import (
	"fmt"
	"time"

	"github.com/rigwatch/rigwatch/pkg/db"
	"github.com/rigwatch/rigwatch/pkg/models"
)

const (
	healthLookback     = 24 * time.Hour
	degradationWindow  = 30 * 24 * time.Hour
	hoursPerDay        = 24.0
	replacementMinDays = replacementAgeDays
)

// Engine derives analytics from the event store. All methods are
// side-effect-free.
type Engine struct {
	store db.Service
	now   func() time.Time
}

// NewEngine creates an Engine over the given store.
func NewEngine(store db.Service) *Engine {
	return &Engine{
		store: store,
		now:   time.Now,
	}
}

// HealthMetrics computes the 24h health score for one GPU. An unknown or
// silent GPU scores a full 100: no data, no deductions.
func (e *Engine) HealthMetrics(gpuUUID string) (*models.HealthMetrics, error) {
	since := e.now().Add(-healthLookback)

	stats, err := e.store.GetTempStats(gpuUUID, since)
	if err != nil {
		return nil, fmt.Errorf("health metrics: %w", err)
	}

	alerts, err := e.store.GetAlertsSince(gpuUUID, since)
	if err != nil {
		return nil, fmt.Errorf("health metrics: %w", err)
	}

	var critical, warning int

	for _, alert := range alerts {
		switch alert.Severity {
		case models.SeverityCritical:
			critical++
		case models.SeverityWarning:
			warning++
		}
	}

	score, status := ComputeHealthScore(stats.Avg, stats.Max, critical, warning)

	return &models.HealthMetrics{
		GPUUUID:        gpuUUID,
		Score:          score,
		Status:         status,
		AvgTemp:        stats.Avg,
		MaxTemp:        stats.Max,
		CriticalAlerts: critical,
		WarningAlerts:  warning,
	}, nil
}

// Recommendations runs the recommendation rules for one GPU. An unknown
// gpu_uuid yields an empty list, not an error.
func (e *Engine) Recommendations(gpuUUID string) ([]models.Recommendation, error) {
	gpu, err := e.store.GetGPU(gpuUUID)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}

	if gpu == nil {
		return nil, nil
	}

	latest, err := e.store.GetLatestReading(gpuUUID)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}

	now := e.now()
	ageDays := now.Sub(gpu.CreatedAt).Hours() / hoursPerDay

	var degradation float64

	// The degradation baseline is only worth computing once the card is old
	// enough for the replacement rule to apply.
	if ageDays > replacementMinDays {
		degradation, err = e.thermalDegradation(gpu, now)
		if err != nil {
			return nil, fmt.Errorf("recommendations: %w", err)
		}
	}

	return BuildRecommendations(latest, ageDays, degradation), nil
}

// FleetAnalysis returns the fleet-wide aggregate snapshot.
func (e *Engine) FleetAnalysis() (*models.FleetAggregate, error) {
	agg, err := e.store.GetFleetAggregate()
	if err != nil {
		return nil, fmt.Errorf("fleet analysis: %w", err)
	}

	return agg, nil
}

func (e *Engine) thermalDegradation(gpu *models.GPU, now time.Time) (float64, error) {
	firstAvg, err := e.store.GetAverageTemp(gpu.GPUUUID, gpu.CreatedAt, gpu.CreatedAt.Add(degradationWindow))
	if err != nil {
		return 0, err
	}

	recentAvg, err := e.store.GetAverageTemp(gpu.GPUUUID, now.Add(-degradationWindow), now)
	if err != nil {
		return 0, err
	}

	return ThermalDegradation(firstAvg, recentAvg), nil
}

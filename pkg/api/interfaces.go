// Package api pkg/api/interfaces.go
package api

import (
	"context"

	"github.com/rigwatch/rigwatch/pkg/ingest"
	"github.com/rigwatch/rigwatch/pkg/models"
)

// Ingestor accepts one telemetry submission.
type Ingestor interface {
	Ingest(ctx context.Context, telemetry *models.Telemetry) (*ingest.Result, error)
}

// Analytics is the derived-data side of the query engine.
type Analytics interface {
	HealthMetrics(gpuUUID string) (*models.HealthMetrics, error)
	Recommendations(gpuUUID string) ([]models.Recommendation, error)
	FleetAnalysis() (*models.FleetAggregate, error)
}

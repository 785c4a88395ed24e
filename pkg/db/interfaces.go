// Package db pkg/db/interfaces.go
package db

import (
	"time"

	"github.com/rigwatch/rigwatch/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/rigwatch/rigwatch/pkg/db Service

// Service represents all event store operations.
type Service interface {
	// Core database operations.

	Close() error

	// Write path. The ingestion pipeline is the only caller.

	UpsertGPU(identity *models.GPU) (*models.GPU, error)
	AppendReading(gpuID int64, reading *models.TemperatureReading) error
	AppendEvent(event *models.Event) error
	InsertAlert(gpuID int64, alert *models.Alert) error

	// Read-only projections. All tolerate an empty result set.

	ListGPUs() ([]models.GPU, error)
	GetGPU(gpuUUID string) (*models.GPU, error)
	GetLatestReadings() ([]models.TemperatureReading, error)
	GetLatestReading(gpuUUID string) (*models.TemperatureReading, error)
	GetGPUHistory(gpuUUID string, since time.Time, limit int) ([]models.TemperatureReading, error)
	GetActiveAlerts() ([]models.Alert, error)
	GetAlertsSince(gpuUUID string, since time.Time) ([]models.Alert, error)
	GetFleetAggregate() (*models.FleetAggregate, error)
	GetTempStats(gpuUUID string, since time.Time) (*models.TempStats, error)
	GetAverageTemp(gpuUUID string, from, to time.Time) (*float64, error)

	// Maintenance operations.

	CleanOldReadings(retentionPeriod time.Duration) error
}

// Package db pkg/db/queries.go holds the read-only projections over the
// event store. All of them tolerate an empty result set (zero GPUs) without
// error.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rigwatch/rigwatch/pkg/models"
)

// ListGPUs returns every registered GPU, newest rig first.
func (db *DB) ListGPUs() ([]models.GPU, error) {
	const querySQL = `
        SELECT id, gpu_uuid, rig_name, gpu_index, model, vendor, memory_size_mb, created_at, is_active
        FROM gpus
        ORDER BY rig_name, gpu_index
    `

	rows, err := db.Query(querySQL) //nolint:rowserrcheck // rows.Close() is deferred
	if err != nil {
		return nil, fmt.Errorf("%w gpus: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	var gpus []models.GPU

	for rows.Next() {
		var g models.GPU

		if err := rows.Scan(
			&g.ID,
			&g.GPUUUID,
			&g.RigName,
			&g.GPUIndex,
			&g.Model,
			&g.Vendor,
			&g.MemorySizeMB,
			&g.CreatedAt,
			&g.IsActive,
		); err != nil {
			return nil, fmt.Errorf("%w gpu row: %w", ErrFailedToScan, err)
		}

		gpus = append(gpus, g)
	}

	return gpus, nil
}

// GetGPU looks up a single GPU by uuid. Returns (nil, nil) when the uuid is
// unknown; an unknown GPU is an empty query result, not an error.
func (db *DB) GetGPU(gpuUUID string) (*models.GPU, error) {
	const querySQL = `
        SELECT id, gpu_uuid, rig_name, gpu_index, model, vendor, memory_size_mb, created_at, is_active
        FROM gpus
        WHERE gpu_uuid = ?
    `

	var g models.GPU

	err := db.QueryRow(querySQL, gpuUUID).Scan(
		&g.ID,
		&g.GPUUUID,
		&g.RigName,
		&g.GPUIndex,
		&g.Model,
		&g.Vendor,
		&g.MemorySizeMB,
		&g.CreatedAt,
		&g.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w gpu: %w", ErrFailedToQuery, err)
	}

	return &g, nil
}

// GetLatestReadings returns the most recent reading per GPU. Latest is the
// max-timestamp row; the row id breaks timestamp ties.
func (db *DB) GetLatestReadings() ([]models.TemperatureReading, error) {
	const querySQL = `
        SELECT g.gpu_uuid,
               r.gpu_temp_celsius, r.hotspot_temp_celsius, r.memory_temp_celsius,
               r.load_percentage, r.power_draw_watt, r.fan_speed_percentage,
               r.fan_speed_rpm, r.ambient_temp_celsius, r.timestamp
        FROM temperature_readings r
        JOIN gpus g ON g.id = r.gpu_id
        WHERE r.id IN (
            SELECT id FROM temperature_readings tr
            WHERE tr.gpu_id = r.gpu_id
            ORDER BY tr.timestamp DESC, tr.id DESC
            LIMIT 1
        )
        ORDER BY g.gpu_uuid
    `

	rows, err := db.Query(querySQL) //nolint:rowserrcheck // rows.Close() is deferred
	if err != nil {
		return nil, fmt.Errorf("%w latest readings: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	return scanReadings(rows)
}

// GetLatestReading returns the most recent reading for one GPU, or (nil, nil)
// when the GPU has no readings.
func (db *DB) GetLatestReading(gpuUUID string) (*models.TemperatureReading, error) {
	const querySQL = `
        SELECT g.gpu_uuid,
               r.gpu_temp_celsius, r.hotspot_temp_celsius, r.memory_temp_celsius,
               r.load_percentage, r.power_draw_watt, r.fan_speed_percentage,
               r.fan_speed_rpm, r.ambient_temp_celsius, r.timestamp
        FROM temperature_readings r
        JOIN gpus g ON g.id = r.gpu_id
        WHERE g.gpu_uuid = ?
        ORDER BY r.timestamp DESC, r.id DESC
        LIMIT 1
    `

	var reading models.TemperatureReading

	err := db.QueryRow(querySQL, gpuUUID).Scan(
		&reading.GPUUUID,
		&reading.GPUTemp,
		&reading.HotspotTemp,
		&reading.MemoryTemp,
		&reading.Load,
		&reading.PowerDraw,
		&reading.FanSpeed,
		&reading.FanSpeedRPM,
		&reading.AmbientTemp,
		&reading.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w latest reading: %w", ErrFailedToQuery, err)
	}

	return &reading, nil
}

// GetGPUHistory retrieves readings for one GPU since the given time, newest
// first, bounded by limit.
func (db *DB) GetGPUHistory(gpuUUID string, since time.Time, limit int) ([]models.TemperatureReading, error) {
	const querySQL = `
        SELECT g.gpu_uuid,
               r.gpu_temp_celsius, r.hotspot_temp_celsius, r.memory_temp_celsius,
               r.load_percentage, r.power_draw_watt, r.fan_speed_percentage,
               r.fan_speed_rpm, r.ambient_temp_celsius, r.timestamp
        FROM temperature_readings r
        JOIN gpus g ON g.id = r.gpu_id
        WHERE g.gpu_uuid = ? AND r.timestamp >= ?
        ORDER BY r.timestamp DESC, r.id DESC
        LIMIT ?
    `

	rows, err := db.Query(querySQL, gpuUUID, since, limit) //nolint:rowserrcheck // rows.Close() is deferred
	if err != nil {
		return nil, fmt.Errorf("%w gpu history: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	return scanReadings(rows)
}

// GetActiveAlerts returns every alert still in the active state, newest first.
func (db *DB) GetActiveAlerts() ([]models.Alert, error) {
	const querySQL = `
        SELECT a.alert_id, g.gpu_uuid, a.alert_type, a.severity, a.status,
               a.triggered_value, a.threshold_value, a.trigger_event_id, a.created_at
        FROM alerts a
        JOIN gpus g ON g.id = a.gpu_id
        WHERE a.status = ?
        ORDER BY a.created_at DESC, a.id DESC
    `

	rows, err := db.Query(querySQL, string(models.AlertStatusActive)) //nolint:rowserrcheck // rows.Close() is deferred
	if err != nil {
		return nil, fmt.Errorf("%w active alerts: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	return scanAlerts(rows)
}

// GetAlertsSince returns alerts for one GPU created at or after the given
// time, newest first.
func (db *DB) GetAlertsSince(gpuUUID string, since time.Time) ([]models.Alert, error) {
	const querySQL = `
        SELECT a.alert_id, g.gpu_uuid, a.alert_type, a.severity, a.status,
               a.triggered_value, a.threshold_value, a.trigger_event_id, a.created_at
        FROM alerts a
        JOIN gpus g ON g.id = a.gpu_id
        WHERE g.gpu_uuid = ? AND a.created_at >= ?
        ORDER BY a.created_at DESC, a.id DESC
    `

	rows, err := db.Query(querySQL, gpuUUID, since) //nolint:rowserrcheck // rows.Close() is deferred
	if err != nil {
		return nil, fmt.Errorf("%w alerts since: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	return scanAlerts(rows)
}

// GetFleetAggregate computes the fleet-wide snapshot: GPU count, average
// temperature and total power over the latest reading per GPU, and active
// alert counts by severity.
func (db *DB) GetFleetAggregate() (*models.FleetAggregate, error) {
	agg := &models.FleetAggregate{
		AlertCounts: make(map[string]int),
	}

	err := db.QueryRow(`SELECT COUNT(*) FROM gpus WHERE is_active = 1`).Scan(&agg.GPUCount)
	if err != nil {
		return nil, fmt.Errorf("%w gpu count: %w", ErrFailedToQuery, err)
	}

	const latestSQL = `
        SELECT AVG(r.gpu_temp_celsius), SUM(r.power_draw_watt)
        FROM temperature_readings r
        WHERE r.id IN (
            SELECT id FROM temperature_readings tr
            WHERE tr.gpu_id = r.gpu_id
            ORDER BY tr.timestamp DESC, tr.id DESC
            LIMIT 1
        )
    `

	err = db.QueryRow(latestSQL).Scan(&agg.AvgTemp, &agg.TotalPowerDraw)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w fleet averages: %w", ErrFailedToQuery, err)
	}

	const countsSQL = `
        SELECT severity, COUNT(*)
        FROM alerts
        WHERE status = ?
        GROUP BY severity
    `

	rows, err := db.Query(countsSQL, string(models.AlertStatusActive)) //nolint:rowserrcheck // rows.Close() is deferred
	if err != nil {
		return nil, fmt.Errorf("%w alert counts: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var (
			severity string
			count    int
		)

		if err := rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("%w alert count row: %w", ErrFailedToScan, err)
		}

		agg.AlertCounts[severity] = count
	}

	return agg, nil
}

// GetTempStats summarizes gpu_temp_celsius samples for one GPU since the
// given time. Rows with no gpu temperature are excluded.
func (db *DB) GetTempStats(gpuUUID string, since time.Time) (*models.TempStats, error) {
	const querySQL = `
        SELECT AVG(r.gpu_temp_celsius), MAX(r.gpu_temp_celsius), COUNT(r.gpu_temp_celsius)
        FROM temperature_readings r
        JOIN gpus g ON g.id = r.gpu_id
        WHERE g.gpu_uuid = ? AND r.timestamp >= ? AND r.gpu_temp_celsius IS NOT NULL
    `

	var stats models.TempStats

	err := db.QueryRow(querySQL, gpuUUID, since).Scan(&stats.Avg, &stats.Max, &stats.Samples)
	if err != nil {
		return nil, fmt.Errorf("%w temp stats: %w", ErrFailedToQuery, err)
	}

	return &stats, nil
}

// GetAverageTemp returns the average gpu temperature over [from, to), or nil
// when the window holds no samples.
func (db *DB) GetAverageTemp(gpuUUID string, from, to time.Time) (*float64, error) {
	const querySQL = `
        SELECT AVG(r.gpu_temp_celsius)
        FROM temperature_readings r
        JOIN gpus g ON g.id = r.gpu_id
        WHERE g.gpu_uuid = ? AND r.timestamp >= ? AND r.timestamp < ?
          AND r.gpu_temp_celsius IS NOT NULL
    `

	var avg *float64

	err := db.QueryRow(querySQL, gpuUUID, from, to).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("%w average temp: %w", ErrFailedToQuery, err)
	}

	return avg, nil
}

func scanReadings(rows *sql.Rows) ([]models.TemperatureReading, error) {
	var readings []models.TemperatureReading

	for rows.Next() {
		var r models.TemperatureReading

		if err := rows.Scan(
			&r.GPUUUID,
			&r.GPUTemp,
			&r.HotspotTemp,
			&r.MemoryTemp,
			&r.Load,
			&r.PowerDraw,
			&r.FanSpeed,
			&r.FanSpeedRPM,
			&r.AmbientTemp,
			&r.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("%w reading row: %w", ErrFailedToScan, err)
		}

		readings = append(readings, r)
	}

	return readings, nil
}

func scanAlerts(rows *sql.Rows) ([]models.Alert, error) {
	var alerts []models.Alert

	for rows.Next() {
		var a models.Alert

		if err := rows.Scan(
			&a.AlertID,
			&a.GPUUUID,
			&a.Type,
			&a.Severity,
			&a.Status,
			&a.TriggeredValue,
			&a.ThresholdValue,
			&a.TriggerEventID,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w alert row: %w", ErrFailedToScan, err)
		}

		alerts = append(alerts, a)
	}

	return alerts, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("failed to close rows: %v", err)
	}
}

// Package db pkg/db/db.go provides the SQLite event store for rigwatch: the
// append-only event log plus the derived relational state (GPU registry,
// temperature readings, alerts). This package is the only writer of ground
// truth.
package db

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/rigwatch/rigwatch/pkg/models"
)

const (
	// SQL statements for database initialization.
	createTablesSQL = `
	-- GPU registry: created on first telemetry sighting, never deleted.
	CREATE TABLE IF NOT EXISTS gpus (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		gpu_uuid TEXT NOT NULL UNIQUE,
		rig_name TEXT NOT NULL DEFAULT 'unknown',
		gpu_index INTEGER NOT NULL DEFAULT 0,
		model TEXT NOT NULL DEFAULT 'unknown',
		vendor TEXT NOT NULL DEFAULT 'unknown',
		memory_size_mb INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		is_active BOOLEAN NOT NULL DEFAULT 1
	);

	-- Immutable telemetry samples; latest is derived, never updated in place.
	CREATE TABLE IF NOT EXISTS temperature_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		gpu_id INTEGER NOT NULL,
		gpu_temp_celsius REAL,
		hotspot_temp_celsius REAL,
		memory_temp_celsius REAL,
		load_percentage REAL,
		power_draw_watt REAL,
		fan_speed_percentage REAL,
		fan_speed_rpm REAL,
		ambient_temp_celsius REAL,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (gpu_id) REFERENCES gpus(id)
	);

	-- Append-only audit trail of domain events.
	CREATE TABLE IF NOT EXISTS event_store (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT NOT NULL UNIQUE,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		metadata TEXT,
		correlation_id TEXT,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Alerts derived from rule evaluation; status is write-once 'active'.
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		alert_id TEXT NOT NULL UNIQUE,
		gpu_id INTEGER NOT NULL,
		alert_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		triggered_value REAL NOT NULL,
		threshold_value REAL NOT NULL,
		trigger_event_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (gpu_id) REFERENCES gpus(id)
	);

	-- Indexes for the hot query paths
	CREATE INDEX IF NOT EXISTS idx_readings_gpu_time
		ON temperature_readings(gpu_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_events_aggregate_time
		ON event_store(aggregate_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_alerts_gpu_time
		ON alerts(gpu_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_alerts_status
		ON alerts(status);

	PRAGMA journal_mode=WAL;
	PRAGMA foreign_keys=ON;
	`
)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
}

// New creates a new database connection and initializes the schema.
func New(dbPath string) (Service, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	db := &DB{sqlDB}
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

// UpsertGPU resolves a GPU by its uuid, inserting the identity row on first
// sight. The insert-or-select runs in one transaction so that concurrent
// ingestions for the same gpu_uuid cannot create duplicate rows; the unique
// constraint on gpu_uuid backstops the race.
func (db *DB) UpsertGPU(identity *models.GPU) (*models.GPU, error) {
	if identity == nil || identity.GPUUUID == "" {
		return nil, ErrMissingGPUUUID
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}
	defer rollbackOnError(tx, &err)

	_, err = tx.Exec(`
        INSERT INTO gpus (gpu_uuid, rig_name, gpu_index, model, vendor, memory_size_mb)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(gpu_uuid) DO NOTHING
    `,
		identity.GPUUUID,
		defaultString(identity.RigName),
		identity.GPUIndex,
		defaultString(identity.Model),
		defaultString(identity.Vendor),
		identity.MemorySizeMB,
	)
	if err != nil {
		return nil, fmt.Errorf("%w gpu: %w", ErrFailedToInsert, err)
	}

	var gpu models.GPU

	err = tx.QueryRow(`
        SELECT id, gpu_uuid, rig_name, gpu_index, model, vendor, memory_size_mb, created_at, is_active
        FROM gpus
        WHERE gpu_uuid = ?
    `, identity.GPUUUID).Scan(
		&gpu.ID,
		&gpu.GPUUUID,
		&gpu.RigName,
		&gpu.GPUIndex,
		&gpu.Model,
		&gpu.Vendor,
		&gpu.MemorySizeMB,
		&gpu.CreatedAt,
		&gpu.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("%w gpu: %w", ErrFailedToScan, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToCommit, err)
	}

	return &gpu, nil
}

// AppendReading inserts one immutable temperature reading row.
func (db *DB) AppendReading(gpuID int64, reading *models.TemperatureReading) error {
	if gpuID <= 0 {
		return ErrInvalidGPURef
	}

	ts := reading.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := db.Exec(`
        INSERT INTO temperature_readings
            (gpu_id, gpu_temp_celsius, hotspot_temp_celsius, memory_temp_celsius,
             load_percentage, power_draw_watt, fan_speed_percentage, fan_speed_rpm,
             ambient_temp_celsius, timestamp)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		gpuID,
		reading.GPUTemp,
		reading.HotspotTemp,
		reading.MemoryTemp,
		reading.Load,
		reading.PowerDraw,
		reading.FanSpeed,
		reading.FanSpeedRPM,
		reading.AmbientTemp,
		ts,
	)
	if err != nil {
		return fmt.Errorf("%w reading: %w", ErrFailedToInsert, err)
	}

	return nil
}

// AppendEvent inserts one immutable event row. The event_id is generated by
// the caller.
func (db *DB) AppendEvent(event *models.Event) error {
	if event.EventID == "" {
		return ErrMissingEventID
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := db.Exec(`
        INSERT INTO event_store
            (event_id, event_type, aggregate_type, aggregate_id, payload, metadata, correlation_id, timestamp)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `,
		event.EventID,
		event.EventType,
		event.AggregateType,
		event.AggregateID,
		string(event.Payload),
		string(event.Metadata),
		event.CorrelationID,
		ts,
	)
	if err != nil {
		return fmt.Errorf("%w event: %w", ErrFailedToInsert, err)
	}

	return nil
}

// InsertAlert inserts one alert row. Existing rows for the same violation are
// never updated; duplicate alerts across ingestions are expected.
func (db *DB) InsertAlert(gpuID int64, alert *models.Alert) error {
	if gpuID <= 0 {
		return ErrInvalidGPURef
	}

	ts := alert.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := db.Exec(`
        INSERT INTO alerts
            (alert_id, gpu_id, alert_type, severity, status, triggered_value, threshold_value, trigger_event_id, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		alert.AlertID,
		gpuID,
		string(alert.Type),
		string(alert.Severity),
		string(models.AlertStatusActive),
		alert.TriggeredValue,
		alert.ThresholdValue,
		alert.TriggerEventID,
		ts,
	)
	if err != nil {
		return fmt.Errorf("%w alert: %w", ErrFailedToInsert, err)
	}

	return nil
}

func defaultString(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}

func rollbackOnError(tx *sql.Tx, err *error) {
	if *err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Error rolling back transaction: %v", rbErr)
		}
	}
}

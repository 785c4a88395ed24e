// Package models pkg/models/models.go holds the domain types shared across
// the telemetry pipeline: GPU identity, readings, events, alerts and the
// derived analytics structures.
package models

import (
	"encoding/json"
	"time"
)

// Severity levels for alerts.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// AlertType identifies which rule raised an alert.
type AlertType string

const (
	AlertHighGPUTemp     AlertType = "HIGH_GPU_TEMPERATURE"
	AlertHighHotspotTemp AlertType = "HIGH_HOTSPOT_TEMPERATURE"
	AlertHighMemoryTemp  AlertType = "HIGH_MEMORY_TEMPERATURE"
	AlertHighPower       AlertType = "HIGH_POWER_CONSUMPTION"
	AlertSustainedLoad   AlertType = "SUSTAINED_HIGH_LOAD"
	AlertFanMaxSpeed     AlertType = "FAN_MAX_SPEED"
)

// AlertStatus is the lifecycle state of an alert. Alerts are written once as
// active; no resolution trigger is defined yet.
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "active"
	AlertStatusResolved AlertStatus = "resolved"
)

// EventTypeTelemetryReceived is the only event type emitted today. Future
// types are reserved.
const EventTypeTelemetryReceived = "gpu_telemetry_received"

// AggregateTypeGPU is the aggregate type recorded on telemetry events.
const AggregateTypeGPU = "gpu"

// GPU is the identity record for one card. Created on first sight, never
// deleted, only deactivated. The numeric ID is a storage-layer detail; the
// gpu_uuid is the only externally visible identifier.
type GPU struct {
	ID           int64     `json:"-"`
	GPUUUID      string    `json:"gpu_uuid"`
	RigName      string    `json:"rig_name"`
	GPUIndex     int       `json:"gpu_index"`
	Model        string    `json:"model"`
	Vendor       string    `json:"vendor"`
	MemorySizeMB int64     `json:"memory_size_mb"`
	CreatedAt    time.Time `json:"created_at"`
	IsActive     bool      `json:"is_active"`
}

// Telemetry is one submission from a rig agent. Only gpu_uuid is mandatory;
// numeric fields are pointers so that an absent value is distinguishable from
// zero and simply skips the rules and columns that depend on it.
type Telemetry struct {
	GPUUUID      string   `json:"gpu_uuid" validate:"required"`
	RigName      string   `json:"rig_name,omitempty"`
	Model        string   `json:"model,omitempty"`
	Vendor       string   `json:"vendor,omitempty"`
	GPUIndex     *int     `json:"gpu_index,omitempty"`
	MemorySizeMB *int64   `json:"memory_size_mb,omitempty"`
	GPUTemp      *float64 `json:"gpu_temp_celsius,omitempty"`
	HotspotTemp  *float64 `json:"hotspot_temp_celsius,omitempty"`
	MemoryTemp   *float64 `json:"memory_temp_celsius,omitempty"`
	Load         *float64 `json:"load_percentage,omitempty"`
	PowerDraw    *float64 `json:"power_draw_watt,omitempty"`
	FanSpeed     *float64 `json:"fan_speed_percentage,omitempty"`
	FanSpeedRPM  *float64 `json:"fan_speed_rpm,omitempty"`
	AmbientTemp  *float64 `json:"ambient_temp_celsius,omitempty"`
}

// TemperatureReading is one immutable sample as stored. "Latest" is always
// derived by max-timestamp-per-GPU, never mutated in place.
type TemperatureReading struct {
	GPUUUID     string    `json:"gpu_uuid"`
	GPUTemp     *float64  `json:"gpu_temp_celsius,omitempty"`
	HotspotTemp *float64  `json:"hotspot_temp_celsius,omitempty"`
	MemoryTemp  *float64  `json:"memory_temp_celsius,omitempty"`
	Load        *float64  `json:"load_percentage,omitempty"`
	PowerDraw   *float64  `json:"power_draw_watt,omitempty"`
	FanSpeed    *float64  `json:"fan_speed_percentage,omitempty"`
	FanSpeedRPM *float64  `json:"fan_speed_rpm,omitempty"`
	AmbientTemp *float64  `json:"ambient_temp_celsius,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Event is the generic envelope for every accepted domain occurrence.
// Append-only and immutable; forms the audit trail.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Alert is a derived record marking a rule violation at a point in time.
// TriggerEventID points back at the event that caused it.
type Alert struct {
	AlertID        string      `json:"alert_id"`
	GPUUUID        string      `json:"gpu_uuid"`
	Type           AlertType   `json:"alert_type"`
	Severity       Severity    `json:"severity"`
	Status         AlertStatus `json:"status"`
	TriggeredValue float64     `json:"triggered_value"`
	ThresholdValue float64     `json:"threshold_value"`
	TriggerEventID string      `json:"trigger_event_id"`
	CreatedAt      time.Time   `json:"created_at"`
}

// AlertCandidate is a rule violation before it is persisted.
type AlertCandidate struct {
	Type           AlertType `json:"alert_type"`
	Severity       Severity  `json:"severity"`
	TriggeredValue float64   `json:"triggered_value"`
	ThresholdValue float64   `json:"threshold_value"`
}

// Recommendation is computed on request from recent history and never
// persisted.
type Recommendation struct {
	Type           string             `json:"type"`
	Action         string             `json:"action"`
	Severity       string             `json:"severity"`
	Reason         string             `json:"reason"`
	ExpectedImpact map[string]float64 `json:"expected_impact,omitempty"`
}

// Recommendation severity levels, most urgent first.
const (
	RecSeverityCritical = "critical"
	RecSeverityHigh     = "high"
	RecSeverityMedium   = "medium"
	RecSeverityLow      = "low"
)

// HealthMetrics is the 0-100 composite health score for one GPU over the
// last 24 hours.
type HealthMetrics struct {
	GPUUUID        string   `json:"gpu_uuid"`
	Score          int      `json:"score"`
	Status         string   `json:"status"`
	AvgTemp        *float64 `json:"avg_temp_celsius,omitempty"`
	MaxTemp        *float64 `json:"max_temp_celsius,omitempty"`
	CriticalAlerts int      `json:"critical_alerts"`
	WarningAlerts  int      `json:"warning_alerts"`
}

// TempStats summarizes temperature samples over a window.
type TempStats struct {
	Avg     *float64 `json:"avg_temp_celsius,omitempty"`
	Max     *float64 `json:"max_temp_celsius,omitempty"`
	Samples int      `json:"samples"`
}

// FleetAggregate is the fleet-wide snapshot: GPU count, averages over the
// latest reading per GPU, and active alert counts by severity.
type FleetAggregate struct {
	GPUCount       int            `json:"gpu_count"`
	AvgTemp        *float64       `json:"avg_temp_celsius,omitempty"`
	TotalPowerDraw *float64       `json:"total_power_draw_watt,omitempty"`
	AlertCounts    map[string]int `json:"alert_counts"`
}

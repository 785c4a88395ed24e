// Package ingest pkg/ingest/pipeline.go drives one telemetry submission
// through storage, alert evaluation and broadcast.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rigwatch/rigwatch/pkg/bus"
	"github.com/rigwatch/rigwatch/pkg/db"
	"github.com/rigwatch/rigwatch/pkg/metrics"
	"github.com/rigwatch/rigwatch/pkg/models"
)

const notifyTimeout = 10 * time.Second

// Publisher is the broadcast side of the pipeline.
type Publisher interface {
	Publish(channel string, payload []byte)
}

// AlertNotifier is an optional outbound lane for critical alerts. Failures
// are logged, never surfaced to the ingestion caller.
type AlertNotifier interface {
	Notify(ctx context.Context, gpuUUID string, alert *models.Alert) error
	IsEnabled() bool
}

// Result identifies what one accepted submission produced.
type Result struct {
	GPUID   string `json:"gpu_id"`
	EventID string `json:"event_id"`
}

// TelemetryUpdate is the message published on the telemetry channel: the
// submitted metrics enriched with the resolved GPU reference and event id.
type TelemetryUpdate struct {
	models.Telemetry

	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertNotification is the single message published on the alerts channel
// when an ingestion raises one or more alerts.
type AlertNotification struct {
	GPUUUID   string         `json:"gpu_uuid"`
	EventID   string         `json:"event_id"`
	Alerts    []models.Alert `json:"alerts"`
	Timestamp time.Time      `json:"timestamp"`
}

// Pipeline accepts telemetry submissions and fans them out. Safe for
// concurrent use; the event store's uniqueness constraint makes concurrent
// upserts for the same gpu_uuid race-free.
type Pipeline struct {
	store    db.Service
	pub      Publisher
	notifier AlertNotifier
	metrics  *metrics.Metrics
	validate *validator.Validate
	now      func() time.Time
}

// New creates a Pipeline. notifier and m may be nil.
func New(store db.Service, pub Publisher, notifier AlertNotifier, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		store:    store,
		pub:      pub,
		notifier: notifier,
		metrics:  m,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Ingest runs one submission through the fixed step order: resolve GPU,
// persist reading, persist event, persist alerts, publish. A failure aborts
// the remaining steps and is reported without undoing prior writes; the rig
// agent resubmits a later sample instead.
func (p *Pipeline) Ingest(ctx context.Context, telemetry *models.Telemetry) (*Result, error) {
	if telemetry == nil {
		return nil, fmt.Errorf("%w: missing telemetry body", ErrValidation)
	}

	if err := p.validate.Struct(telemetry); err != nil {
		p.countIngestError()
		return nil, fmt.Errorf("%w: gpu_uuid is required", ErrValidation)
	}

	now := p.now().UTC()

	// Step 1: resolve or create the GPU identity.
	gpu, err := p.store.UpsertGPU(identityFrom(telemetry))
	if err != nil {
		return nil, p.storeFailure("resolve gpu", err)
	}

	// Step 2: persist the immutable reading.
	if err := p.store.AppendReading(gpu.ID, readingFrom(telemetry, now)); err != nil {
		return nil, p.storeFailure("append reading", err)
	}

	// Step 3: persist the domain event with a fresh correlation id.
	event, err := p.buildEvent(telemetry, gpu.GPUUUID, now)
	if err != nil {
		return nil, err
	}

	if err := p.store.AppendEvent(event); err != nil {
		return nil, p.storeFailure("append event", err)
	}

	// Step 4: evaluate alert rules against the just-persisted metrics.
	alerts, err := p.persistAlerts(gpu, event.EventID, telemetry, now)
	if err != nil {
		return nil, err
	}

	// Step 5: broadcast.
	p.publishUpdate(telemetry, event.EventID, now)
	p.publishAlerts(gpu.GPUUUID, event.EventID, alerts, now)
	p.notifyCritical(ctx, gpu.GPUUUID, alerts)

	if p.metrics != nil {
		p.metrics.TelemetryIngested.Inc()
	}

	return &Result{GPUID: gpu.GPUUUID, EventID: event.EventID}, nil
}

func (p *Pipeline) buildEvent(telemetry *models.Telemetry, gpuUUID string, now time.Time) (*models.Event, error) {
	payload, err := json.Marshal(telemetry)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrValidation, err)
	}

	return &models.Event{
		EventID:       uuid.NewString(),
		EventType:     models.EventTypeTelemetryReceived,
		AggregateType: models.AggregateTypeGPU,
		AggregateID:   gpuUUID,
		Payload:       payload,
		Metadata:      json.RawMessage(`{"source":"rig-agent","version":"1.0"}`),
		CorrelationID: uuid.NewString(),
		Timestamp:     now,
	}, nil
}

func (p *Pipeline) persistAlerts(
	gpu *models.GPU, eventID string, telemetry *models.Telemetry, now time.Time) ([]models.Alert, error) {
	candidates := Evaluate(telemetry)
	if len(candidates) == 0 {
		return nil, nil
	}

	alerts := make([]models.Alert, 0, len(candidates))

	for _, c := range candidates {
		alert := models.Alert{
			AlertID:        uuid.NewString(),
			GPUUUID:        gpu.GPUUUID,
			Type:           c.Type,
			Severity:       c.Severity,
			Status:         models.AlertStatusActive,
			TriggeredValue: c.TriggeredValue,
			ThresholdValue: c.ThresholdValue,
			TriggerEventID: eventID,
			CreatedAt:      now,
		}

		if err := p.store.InsertAlert(gpu.ID, &alert); err != nil {
			return nil, p.storeFailure("insert alert", err)
		}

		if p.metrics != nil {
			p.metrics.AlertsRaised.WithLabelValues(string(alert.Severity)).Inc()
		}

		alerts = append(alerts, alert)
	}

	return alerts, nil
}

func (p *Pipeline) publishUpdate(telemetry *models.Telemetry, eventID string, now time.Time) {
	update := TelemetryUpdate{
		Telemetry: *telemetry,
		EventID:   eventID,
		Timestamp: now,
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("failed to encode telemetry update: %v", err)
		return
	}

	p.pub.Publish(bus.ChannelTelemetry, data)
}

func (p *Pipeline) publishAlerts(gpuUUID, eventID string, alerts []models.Alert, now time.Time) {
	if len(alerts) == 0 {
		return
	}

	notification := AlertNotification{
		GPUUUID:   gpuUUID,
		EventID:   eventID,
		Alerts:    alerts,
		Timestamp: now,
	}

	data, err := json.Marshal(notification)
	if err != nil {
		log.Printf("failed to encode alert notification: %v", err)
		return
	}

	p.pub.Publish(bus.ChannelAlerts, data)
}

// notifyCritical forwards critical alerts to the webhook notifier without
// blocking the ingestion response.
func (p *Pipeline) notifyCritical(_ context.Context, gpuUUID string, alerts []models.Alert) {
	if p.notifier == nil || !p.notifier.IsEnabled() {
		return
	}

	for _, alert := range alerts {
		if alert.Severity != models.SeverityCritical {
			continue
		}

		go func(alert models.Alert) {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()

			if err := p.notifier.Notify(ctx, gpuUUID, &alert); err != nil {
				log.Printf("alert webhook failed for GPU %s: %v", gpuUUID, err)
			}
		}(alert)
	}
}

func (p *Pipeline) storeFailure(step string, err error) error {
	p.countIngestError()

	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, step, err)
}

func (p *Pipeline) countIngestError() {
	if p.metrics != nil {
		p.metrics.IngestErrors.Inc()
	}
}

func identityFrom(telemetry *models.Telemetry) *models.GPU {
	identity := &models.GPU{
		GPUUUID: telemetry.GPUUUID,
		RigName: telemetry.RigName,
		Model:   telemetry.Model,
		Vendor:  telemetry.Vendor,
	}

	if telemetry.GPUIndex != nil {
		identity.GPUIndex = *telemetry.GPUIndex
	}

	if telemetry.MemorySizeMB != nil {
		identity.MemorySizeMB = *telemetry.MemorySizeMB
	}

	return identity
}

func readingFrom(telemetry *models.Telemetry, now time.Time) *models.TemperatureReading {
	return &models.TemperatureReading{
		GPUUUID:     telemetry.GPUUUID,
		GPUTemp:     telemetry.GPUTemp,
		HotspotTemp: telemetry.HotspotTemp,
		MemoryTemp:  telemetry.MemoryTemp,
		Load:        telemetry.Load,
		PowerDraw:   telemetry.PowerDraw,
		FanSpeed:    telemetry.FanSpeed,
		FanSpeedRPM: telemetry.FanSpeedRPM,
		AmbientTemp: telemetry.AmbientTemp,
		Timestamp:   now,
	}
}

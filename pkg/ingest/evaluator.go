// Package ingest pkg/ingest/evaluator.go holds the stateless alert rule
// evaluation. Each rule is checked independently per sample; a missing metric
// never triggers its rule. Rule names implying sustained conditions are
// evaluated per-sample today; see the design notes.
package ingest

import (
	"github.com/rigwatch/rigwatch/pkg/models"
)

// Alert rule thresholds. All comparisons are strict: a value exactly at the
// threshold does not trigger.
const (
	GPUTempThreshold         = 80.0
	GPUTempCriticalAbove     = 85.0
	HotspotTempThreshold     = 90.0
	HotspotTempCriticalAbove = 95.0
	MemoryTempThreshold      = 85.0
	MemoryTempCriticalAbove  = 90.0
	PowerDrawThreshold       = 300.0
	LoadThreshold            = 95.0
	FanSpeedThreshold        = 95.0
)

type rule struct {
	alertType models.AlertType
	metric    func(*models.Telemetry) *float64
	threshold float64
	severity  func(value float64) models.Severity
}

func fixedSeverity(s models.Severity) func(float64) models.Severity {
	return func(float64) models.Severity { return s }
}

func splitSeverity(criticalAbove float64) func(float64) models.Severity {
	return func(value float64) models.Severity {
		if value > criticalAbove {
			return models.SeverityCritical
		}

		return models.SeverityWarning
	}
}

var alertRules = []rule{
	{
		alertType: models.AlertHighGPUTemp,
		metric:    func(t *models.Telemetry) *float64 { return t.GPUTemp },
		threshold: GPUTempThreshold,
		severity:  splitSeverity(GPUTempCriticalAbove),
	},
	{
		alertType: models.AlertHighHotspotTemp,
		metric:    func(t *models.Telemetry) *float64 { return t.HotspotTemp },
		threshold: HotspotTempThreshold,
		severity:  splitSeverity(HotspotTempCriticalAbove),
	},
	{
		alertType: models.AlertHighMemoryTemp,
		metric:    func(t *models.Telemetry) *float64 { return t.MemoryTemp },
		threshold: MemoryTempThreshold,
		severity:  splitSeverity(MemoryTempCriticalAbove),
	},
	{
		alertType: models.AlertHighPower,
		metric:    func(t *models.Telemetry) *float64 { return t.PowerDraw },
		threshold: PowerDrawThreshold,
		severity:  fixedSeverity(models.SeverityWarning),
	},
	{
		alertType: models.AlertSustainedLoad,
		metric:    func(t *models.Telemetry) *float64 { return t.Load },
		threshold: LoadThreshold,
		severity:  fixedSeverity(models.SeverityInfo),
	},
	{
		alertType: models.AlertFanMaxSpeed,
		metric:    func(t *models.Telemetry) *float64 { return t.FanSpeed },
		threshold: FanSpeedThreshold,
		severity:  fixedSeverity(models.SeverityWarning),
	},
}

// Evaluate runs every alert rule against one telemetry sample and returns the
// violations. Deterministic: same input, same output, no stored state.
func Evaluate(telemetry *models.Telemetry) []models.AlertCandidate {
	var candidates []models.AlertCandidate

	for _, r := range alertRules {
		value := r.metric(telemetry)
		if value == nil {
			continue
		}

		if *value > r.threshold {
			candidates = append(candidates, models.AlertCandidate{
				Type:           r.alertType,
				Severity:       r.severity(*value),
				TriggeredValue: *value,
				ThresholdValue: r.threshold,
			})
		}
	}

	return candidates
}

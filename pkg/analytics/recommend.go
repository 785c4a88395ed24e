// Package analytics pkg/analytics/recommend.go derives maintenance and
// performance recommendations from the latest reading, the GPU's age and its
// thermal degradation trend. Rules are independent: every matching rule
// contributes a recommendation.
package analytics

import (
	"fmt"
	"sort"

	"github.com/rigwatch/rigwatch/pkg/models"
)

// Recommendation rule thresholds.
const (
	recGPUTempThreshold      = 80.0
	recGPUTempCriticalAbove  = 85.0
	recHotspotThreshold      = 95.0
	recFanSpeedThreshold     = 90.0
	recFanTempThreshold      = 75.0
	recPowerDrawThreshold    = 300.0
	replacementAgeDays       = 540.0
	degradationThresholdPct  = 15.0
	replacementPaybackMonths = 18.0
)

var severityRank = map[string]int{
	models.RecSeverityCritical: 0,
	models.RecSeverityHigh:     1,
	models.RecSeverityMedium:   2,
	models.RecSeverityLow:      3,
}

// BuildRecommendations evaluates every rule against the latest reading plus
// the GPU's age and degradation. latest may be nil (GPU without readings);
// only rules whose inputs are present can fire.
func BuildRecommendations(latest *models.TemperatureReading, ageDays, degradationPct float64) []models.Recommendation {
	var recs []models.Recommendation

	if latest != nil && latest.GPUTemp != nil && *latest.GPUTemp > recGPUTempThreshold {
		severity := models.RecSeverityHigh
		if *latest.GPUTemp > recGPUTempCriticalAbove {
			severity = models.RecSeverityCritical
		}

		recs = append(recs, models.Recommendation{
			Type:     "performance_optimization",
			Action:   "reduce_core_clock",
			Severity: severity,
			Reason: fmt.Sprintf(
				"GPU core temperature is %.1f°C; reducing the core clock lowers thermal load", *latest.GPUTemp),
			ExpectedImpact: map[string]float64{
				"temp_reduction": -5,
				"hashrate_loss":  -10,
				"power_savings":  20,
			},
		})
	}

	if latest != nil && latest.HotspotTemp != nil && *latest.HotspotTemp > recHotspotThreshold {
		recs = append(recs, models.Recommendation{
			Type:     "thermal_management",
			Action:   "improve_cooling",
			Severity: models.RecSeverityCritical,
			Reason: fmt.Sprintf(
				"Hotspot temperature is %.1f°C; check thermal paste, pads and airflow", *latest.HotspotTemp),
		})
	}

	if latest != nil && latest.FanSpeed != nil && latest.GPUTemp != nil &&
		*latest.FanSpeed > recFanSpeedThreshold && *latest.GPUTemp > recFanTempThreshold {
		recs = append(recs, models.Recommendation{
			Type:     "maintenance",
			Action:   "clean_fans",
			Severity: models.RecSeverityMedium,
			Reason: fmt.Sprintf(
				"Fans at %.0f%% while the core runs %.1f°C suggests dust buildup",
				*latest.FanSpeed, *latest.GPUTemp),
		})
	}

	if ageDays > replacementAgeDays && degradationPct > degradationThresholdPct {
		recs = append(recs, models.Recommendation{
			Type:     "replacement",
			Action:   "consider_replacement",
			Severity: models.RecSeverityLow,
			Reason: fmt.Sprintf(
				"Card is %.0f days old with %.1f%% thermal degradation since its first month",
				ageDays, degradationPct),
			ExpectedImpact: map[string]float64{
				"degradation_percent":      degradationPct,
				"estimated_payback_months": replacementPaybackMonths,
			},
		})
	}

	if latest != nil && latest.PowerDraw != nil && *latest.PowerDraw > recPowerDrawThreshold {
		recs = append(recs, models.Recommendation{
			Type:     "efficiency",
			Action:   "optimize_power_limit",
			Severity: models.RecSeverityMedium,
			Reason: fmt.Sprintf(
				"Drawing %.0fW; a lower power limit usually costs little hashrate", *latest.PowerDraw),
		})
	}

	SortBySeverity(recs)

	return recs
}

// SortBySeverity orders recommendations critical, high, medium, low. The sort
// is stable: ties keep their input order.
func SortBySeverity(recs []models.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return severityRank[recs[i].Severity] < severityRank[recs[j].Severity]
	})
}

// ThermalDegradation is the relative increase of the recent 30-day average
// temperature over the first 30-day average, in percent. A missing or
// non-positive baseline means insufficient data and yields 0, so the
// replacement rule cannot fire on it.
func ThermalDegradation(firstAvg, recentAvg *float64) float64 {
	if firstAvg == nil || recentAvg == nil || *firstAvg <= 0 {
		return 0
	}

	return (*recentAvg - *firstAvg) / *firstAvg * 100
}

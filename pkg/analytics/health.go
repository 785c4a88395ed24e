// Package analytics pkg/analytics/health.go computes the 0-100 composite
// health score from recent temperature and alert history.
package analytics

// Health score deductions and status boundaries.
const (
	maxScore = 100

	avgTempSevereThreshold   = 80.0
	avgTempHighThreshold     = 75.0
	avgTempElevatedThreshold = 70.0
	avgTempSevereDeduction   = 20
	avgTempHighDeduction     = 10
	avgTempElevatedDeduction = 5

	maxTempSevereThreshold = 90.0
	maxTempHighThreshold   = 85.0
	maxTempSevereDeduction = 15
	maxTempHighDeduction   = 10

	criticalAlertDeduction = 10
	warningAlertDeduction  = 5

	healthyAbove = 80
	warningAbove = 60
)

// Health status labels.
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// ComputeHealthScore derives the score and status label from the 24h average
// and maximum temperature plus the 24h alert counts. A missing temperature
// (no samples) deducts nothing.
func ComputeHealthScore(avgTemp, maxTemp *float64, criticalAlerts, warningAlerts int) (int, string) {
	score := maxScore

	if avgTemp != nil {
		switch {
		case *avgTemp > avgTempSevereThreshold:
			score -= avgTempSevereDeduction
		case *avgTemp > avgTempHighThreshold:
			score -= avgTempHighDeduction
		case *avgTemp > avgTempElevatedThreshold:
			score -= avgTempElevatedDeduction
		}
	}

	if maxTemp != nil {
		switch {
		case *maxTemp > maxTempSevereThreshold:
			score -= maxTempSevereDeduction
		case *maxTemp > maxTempHighThreshold:
			score -= maxTempHighDeduction
		}
	}

	score -= criticalAlerts * criticalAlertDeduction
	score -= warningAlerts * warningAlertDeduction

	if score < 0 {
		score = 0
	}

	if score > maxScore {
		score = maxScore
	}

	return score, statusLabel(score)
}

func statusLabel(score int) string {
	switch {
	case score > healthyAbove:
		return StatusHealthy
	case score > warningAbove:
		return StatusWarning
	default:
		return StatusCritical
	}
}

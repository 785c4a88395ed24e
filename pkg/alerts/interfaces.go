// Package alerts pkg/alerts/interfaces.go

//go:generate mockgen -destination=mock_alerts.go -package=alerts github.com/rigwatch/rigwatch/pkg/alerts Notifier

package alerts

import (
	"context"

	"github.com/rigwatch/rigwatch/pkg/models"
)

// Notifier defines the interface for outbound alert notification.
type Notifier interface {
	// Notify sends one alert through the service
	Notify(ctx context.Context, gpuUUID string, alert *models.Alert) error

	// IsEnabled returns whether the notifier is enabled
	IsEnabled() bool
}

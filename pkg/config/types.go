package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rigwatch/rigwatch/pkg/alerts"
)

var (
	errInvalidDuration = errors.New("invalid duration")
	errMissingListen   = errors.New("listen_addr is required")
	errMissingDBPath   = errors.New("db_path is required")
	errNegativeLimit   = errors.New("ingest_rate_limit must not be negative")
	errShortRetention  = errors.New("reading_retention must be at least one hour")
	errWebhookNeedsURL = errors.New("webhook.url is required when the webhook is enabled")
)

const minReadingRetention = time.Hour

// Duration wraps time.Duration to accept "30s"-style JSON strings.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

// ServerConfig is the configuration for the rigwatch server.
type ServerConfig struct {
	ListenAddr string `json:"listen_addr"` // e.g., :8080
	DBPath     string `json:"db_path"`     // e.g., /var/lib/rigwatch/rigwatch.db

	// IngestRateLimit caps telemetry submissions per second; 0 disables
	// the limiter.
	IngestRateLimit float64 `json:"ingest_rate_limit"`
	IngestRateBurst int     `json:"ingest_rate_burst"`

	// ReadingRetention prunes temperature readings older than the window;
	// 0 keeps everything. Events and alerts are never pruned.
	ReadingRetention Duration `json:"reading_retention"`

	Webhook alerts.WebhookConfig `json:"webhook"`
}

// Validate implements Validator.
func (c *ServerConfig) Validate() error {
	if c.ListenAddr == "" {
		return errMissingListen
	}

	if c.DBPath == "" {
		return errMissingDBPath
	}

	if c.IngestRateLimit < 0 {
		return errNegativeLimit
	}

	if c.ReadingRetention != 0 && time.Duration(c.ReadingRetention) < minReadingRetention {
		return errShortRetention
	}

	if c.Webhook.Enabled && c.Webhook.URL == "" {
		return errWebhookNeedsURL
	}

	return nil
}

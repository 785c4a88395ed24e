// Package alerts pkg/alerts/webhook.go posts critical alerts to an external
// webhook. Delivery is best-effort and rate-limited per GPU and alert type;
// a failed post never affects the ingestion pipeline.
package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rigwatch/rigwatch/pkg/models"
)

var (
	errWebhookDisabled = fmt.Errorf("webhook notifier is disabled")
	errWebhookCooldown = fmt.Errorf("alert is within cooldown period")
	errWebhookStatus   = fmt.Errorf("webhook returned non-200 status")
)

const webhookTimeout = 10 * time.Second

// Header is one custom header sent with every webhook post.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// WebhookConfig configures the outbound webhook.
type WebhookConfig struct {
	Enabled  bool          `json:"enabled"`
	URL      string        `json:"url"`
	Headers  []Header      `json:"headers,omitempty"` // Custom headers
	Cooldown time.Duration `json:"cooldown,omitempty"`
}

func (w *WebhookConfig) UnmarshalJSON(data []byte) error {
	type Alias WebhookConfig

	aux := &struct {
		Cooldown string `json:"cooldown"`
		*Alias
	}{
		Alias: (*Alias)(w),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	// Parse the cooldown duration
	if aux.Cooldown != "" {
		duration, err := time.ParseDuration(aux.Cooldown)
		if err != nil {
			return fmt.Errorf("invalid cooldown format: %w", err)
		}

		w.Cooldown = duration
	}

	return nil
}

// webhookPayload is the JSON body posted to the webhook.
type webhookPayload struct {
	Level          string  `json:"level"`
	Title          string  `json:"title"`
	Message        string  `json:"message"`
	GPUUUID        string  `json:"gpu_uuid"`
	AlertType      string  `json:"alert_type"`
	TriggeredValue float64 `json:"triggered_value"`
	ThresholdValue float64 `json:"threshold_value"`
	Timestamp      string  `json:"timestamp"`
}

// WebhookNotifier implements Notifier against a configured HTTP endpoint.
type WebhookNotifier struct {
	config        WebhookConfig
	client        *http.Client
	lastSentTimes map[string]time.Time
	mu            sync.Mutex
}

// NewWebhookNotifier creates a WebhookNotifier from config.
func NewWebhookNotifier(config WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		config: config,
		client: &http.Client{
			Timeout: webhookTimeout,
		},
		lastSentTimes: make(map[string]time.Time),
	}
}

// IsEnabled reports whether posts will be attempted.
func (w *WebhookNotifier) IsEnabled() bool {
	return w.config.Enabled
}

// Notify posts one alert. Repeats of the same GPU and alert type inside the
// cooldown window are suppressed.
func (w *WebhookNotifier) Notify(ctx context.Context, gpuUUID string, alert *models.Alert) error {
	if !w.config.Enabled {
		return errWebhookDisabled
	}

	if err := w.checkCooldown(gpuUUID, string(alert.Type)); err != nil {
		return err
	}

	payload := webhookPayload{
		Level:          string(alert.Severity),
		Title:          fmt.Sprintf("%s on GPU %s", alert.Type, gpuUUID),
		Message:        fmt.Sprintf("%s: %.1f exceeded threshold %.1f", alert.Type, alert.TriggeredValue, alert.ThresholdValue),
		GPUUUID:        gpuUUID,
		AlertType:      string(alert.Type),
		TriggeredValue: alert.TriggeredValue,
		ThresholdValue: alert.ThresholdValue,
		Timestamp:      alert.CreatedAt.UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for _, h := range w.config.Headers {
		req.Header.Set(h.Key, h.Value)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", errWebhookStatus, resp.StatusCode)
	}

	return nil
}

func (w *WebhookNotifier) checkCooldown(gpuUUID, alertType string) error {
	if w.config.Cooldown <= 0 {
		return nil
	}

	key := gpuUUID + ":" + alertType

	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.lastSentTimes[key]; ok && time.Since(last) < w.config.Cooldown {
		return errWebhookCooldown
	}

	w.lastSentTimes[key] = time.Now()

	return nil
}

// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/rigwatch/rigwatch/pkg/alerts"
	"github.com/rigwatch/rigwatch/pkg/analytics"
	"github.com/rigwatch/rigwatch/pkg/api"
	"github.com/rigwatch/rigwatch/pkg/bus"
	"github.com/rigwatch/rigwatch/pkg/config"
	"github.com/rigwatch/rigwatch/pkg/db"
	"github.com/rigwatch/rigwatch/pkg/ingest"
	"github.com/rigwatch/rigwatch/pkg/lifecycle"
	"github.com/rigwatch/rigwatch/pkg/metrics"
	"github.com/rigwatch/rigwatch/pkg/push"
)

func main() {
	configPath := flag.String("config", "/etc/rigwatch/server.json", "Path to config file")
	flag.Parse()

	var cfg config.ServerConfig
	if err := config.LoadAndValidate(*configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	m := metrics.New()
	eventBus := bus.New()

	var notifier ingest.AlertNotifier
	if cfg.Webhook.Enabled {
		notifier = alerts.NewWebhookNotifier(cfg.Webhook)
		log.Printf("Webhook notifications enabled: %s", cfg.Webhook.URL)
	}

	pipeline := ingest.New(store, eventBus, notifier, m)
	engine := analytics.NewEngine(store)
	gateway := push.NewGateway(push.NewRegistry(), eventBus, m)

	services := []lifecycle.Service{gateway}

	if cfg.ReadingRetention > 0 {
		retention := time.Duration(cfg.ReadingRetention)
		services = append(services, db.NewJanitor(store, retention))
		log.Printf("Reading retention enabled: %v", retention)
	}

	apiServer := api.NewServer(api.Options{
		Store:           store,
		Pipeline:        pipeline,
		Analytics:       engine,
		PushHandler:     gateway.HandleWebSocket,
		MetricsHandler:  m.Handler(),
		IngestRateLimit: cfg.IngestRateLimit,
		IngestRateBurst: cfg.IngestRateBurst,
	})

	if err := lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		ListenAddr:  cfg.ListenAddr,
		ServiceName: "rigwatch",
		Handler:     apiServer.Router(),
		Services:    services,
	}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

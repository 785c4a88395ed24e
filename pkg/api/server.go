// Package api pkg/api/server.go exposes the HTTP surface of the pipeline:
// the ingestion endpoint, the read-only query endpoints and the websocket
// push channel. All query endpoints are side-effect-free.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/rigwatch/rigwatch/pkg/db"
	"github.com/rigwatch/rigwatch/pkg/ingest"
	"github.com/rigwatch/rigwatch/pkg/models"
)

const (
	defaultLookbackHours = 24
	maxLookbackHours     = 24 * 30
	maxHistoryRows       = 1000
)

// Options wires the server's collaborators.
type Options struct {
	Store     db.Service
	Pipeline  Ingestor
	Analytics Analytics

	// PushHandler serves the websocket endpoint; nil disables it.
	PushHandler http.HandlerFunc

	// MetricsHandler serves /metrics; nil disables it.
	MetricsHandler http.Handler

	// IngestRateLimit caps telemetry submissions per second; 0 means
	// unlimited.
	IngestRateLimit float64
	IngestRateBurst int
}

// Server is the HTTP API server.
type Server struct {
	router    *mux.Router
	store     db.Service
	pipeline  Ingestor
	analytics Analytics
	limiter   *rate.Limiter
}

// NewServer creates the server and installs its routes.
func NewServer(opts Options) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		store:     opts.Store,
		pipeline:  opts.Pipeline,
		analytics: opts.Analytics,
	}

	if opts.IngestRateLimit > 0 {
		burst := opts.IngestRateBurst
		if burst < 1 {
			burst = 1
		}

		s.limiter = rate.NewLimiter(rate.Limit(opts.IngestRateLimit), burst)
	}

	s.setupRoutes(opts)

	return s
}

// Router returns the handler for mounting into an HTTP server.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(opts Options) {
	s.router.Use(commonMiddleware)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/telemetry", rateLimited(s.limiter, s.postTelemetry)).Methods("POST")
	api.HandleFunc("/gpus", s.getGPUs).Methods("GET")
	api.HandleFunc("/latest", s.getLatest).Methods("GET")
	api.HandleFunc("/temperatures/{gpu_uuid}", s.getTemperatureHistory).Methods("GET")
	api.HandleFunc("/alerts", s.getAlerts).Methods("GET")
	api.HandleFunc("/health-metrics/{gpu_uuid}", s.getHealthMetrics).Methods("GET")
	api.HandleFunc("/recommendations/{gpu_uuid}", s.getRecommendations).Methods("GET")
	api.HandleFunc("/fleet-analysis", s.getFleetAnalysis).Methods("GET")

	if opts.PushHandler != nil {
		api.HandleFunc("/ws", opts.PushHandler).Methods("GET")
	}

	if opts.MetricsHandler != nil {
		s.router.Handle("/metrics", opts.MetricsHandler).Methods("GET")
	}
}

type ingestResponse struct {
	Status  string `json:"status"`
	GPUID   string `json:"gpu_id"`
	EventID string `json:"event_id"`
}

func (s *Server) postTelemetry(w http.ResponseWriter, r *http.Request) {
	var telemetry models.Telemetry

	if err := json.NewDecoder(r.Body).Decode(&telemetry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.pipeline.Ingest(r.Context(), &telemetry)
	if err != nil {
		if errors.Is(err, ingest.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		log.Printf("telemetry ingestion failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Status:  "processed",
		GPUID:   result.GPUID,
		EventID: result.EventID,
	})
}

func (s *Server) getGPUs(w http.ResponseWriter, _ *http.Request) {
	gpus, err := s.store.ListGPUs()
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if gpus == nil {
		gpus = []models.GPU{}
	}

	writeJSON(w, http.StatusOK, gpus)
}

func (s *Server) getLatest(w http.ResponseWriter, _ *http.Request) {
	readings, err := s.store.GetLatestReadings()
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if readings == nil {
		readings = []models.TemperatureReading{}
	}

	writeJSON(w, http.StatusOK, readings)
}

func (s *Server) getTemperatureHistory(w http.ResponseWriter, r *http.Request) {
	gpuUUID := mux.Vars(r)["gpu_uuid"]

	hours := defaultLookbackHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}

		hours = parsed
	}

	if hours > maxLookbackHours {
		hours = maxLookbackHours
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	readings, err := s.store.GetGPUHistory(gpuUUID, since, maxHistoryRows)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if readings == nil {
		readings = []models.TemperatureReading{}
	}

	writeJSON(w, http.StatusOK, readings)
}

func (s *Server) getAlerts(w http.ResponseWriter, _ *http.Request) {
	alerts, err := s.store.GetActiveAlerts()
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}

	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) getHealthMetrics(w http.ResponseWriter, r *http.Request) {
	gpuUUID := mux.Vars(r)["gpu_uuid"]

	health, err := s.analytics.HealthMetrics(gpuUUID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, health)
}

func (s *Server) getRecommendations(w http.ResponseWriter, r *http.Request) {
	gpuUUID := mux.Vars(r)["gpu_uuid"]

	recommendations, err := s.analytics.Recommendations(gpuUUID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if recommendations == nil {
		recommendations = []models.Recommendation{}
	}

	writeJSON(w, http.StatusOK, recommendations)
}

func (s *Server) getFleetAnalysis(w http.ResponseWriter, _ *http.Request) {
	analysis, err := s.analytics.FleetAnalysis()
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeStoreError(w http.ResponseWriter, err error) {
	log.Printf("query failed: %v", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

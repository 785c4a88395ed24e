package db

import (
	"context"
	"log"
	"time"
)

const cleanupInterval = time.Hour

// Janitor periodically deletes temperature readings older than the
// configured retention period. Events and alerts are never cleaned.
type Janitor struct {
	store     Service
	retention time.Duration
}

func NewJanitor(store Service, retention time.Duration) *Janitor {
	return &Janitor{
		store:     store,
		retention: retention,
	}
}

// Start runs the cleanup loop until ctx is done.
func (j *Janitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	j.clean()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			j.clean()
		}
	}
}

func (j *Janitor) Stop(_ context.Context) error {
	return nil
}

func (j *Janitor) clean() {
	if err := j.store.CleanOldReadings(j.retention); err != nil {
		log.Printf("Error cleaning old readings: %v", err)
	}
}

package db

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

// CleanOldReadings removes temperature readings older than the retention
// period. The event store and alerts are never cleaned here: events are the
// audit trail, and alert retention has no defined policy yet.
func (db *DB) CleanOldReadings(retentionPeriod time.Duration) (err error) {
	cutoff := time.Now().Add(-retentionPeriod)

	var tx *sql.Tx

	tx, err = db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("failed to rollback: %v", rbErr)
			}

			return
		}

		if cmErr := tx.Commit(); cmErr != nil {
			err = fmt.Errorf("%w: %w", ErrFailedToCommit, cmErr)
		}
	}()

	if _, err = tx.Exec(
		"DELETE FROM temperature_readings WHERE timestamp < ?",
		cutoff,
	); err != nil {
		return fmt.Errorf("%w temperature readings: %w", ErrFailedToClean, err)
	}

	return err
}

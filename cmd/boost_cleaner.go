package main

import (
	"context"
	"log"
	"time"

	"subliBack/internal/services"
)

const (
	boostCleanerInterval = time.Hour
	boostCleanerTimeout  = 30 * time.Second
)

// startBoostCleaner runs the hourly sweep that drops the boost flag from
// listings whose paid window has lapsed.
func startBoostCleaner(ctx context.Context, svc *services.ListingService, infoLog, errorLog *log.Logger) {
	if svc == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(boostCleanerInterval)
		defer ticker.Stop()

		run := func() {
			runCtx, cancel := context.WithTimeout(ctx, boostCleanerTimeout)
			defer cancel()

			cleared, err := svc.ClearExpiredBoosts(runCtx, time.Now())
			if err != nil {
				if errorLog != nil {
					errorLog.Printf("boost cleaner: failed to clear expired boosts: %v", err)
				}
				return
			}
			if cleared > 0 && infoLog != nil {
				infoLog.Printf("boost cleaner: cleared boost from %d expired listings", cleared)
			}
		}

		run()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}

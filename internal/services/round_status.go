package services

import (
	"context"
	"sync"

	"github.com/google/logger"

	"loto/internal/lotoapi"
	"loto/internal/metrics"
	"loto/internal/models"
)

// StatusAPI fetches the public round status from the backend.
type StatusAPI interface {
	TicketStatus(ctx context.Context) (*models.TicketStatusPayload, error)
}

// RoundStatusReader fetches and holds the status of the current round.
type RoundStatusReader struct {
	mu      sync.RWMutex
	current models.RoundStatus
	api     StatusAPI
	metrics *metrics.Metrics
}

func NewRoundStatusReader(api StatusAPI, m *metrics.Metrics) *RoundStatusReader {
	return &RoundStatusReader{api: api, metrics: m}
}

// FetchCurrentRound reads the round status from the backend. A failed fetch is logged
// and the last known status (zero ticket count, no results, no active round at first) is returned.
func (r *RoundStatusReader) FetchCurrentRound(ctx context.Context) models.RoundStatus {
	payload, err := r.api.TicketStatus(ctx)
	if err != nil {
		if status := lotoapi.StatusOf(err); status != 0 {
			logger.Errorf("Error loading round status: backend answered %d: %v", status, err)
		} else {
			logger.Errorf("Error loading round status: %v", err)
		}
		r.metrics.IncrementRoundStatusFailures()
		return r.Current()
	}

	status := payload.ToRoundStatus()
	r.mu.Lock()
	r.current = status
	r.mu.Unlock()
	return status
}

// Current returns the last fetched status without contacting the backend.
func (r *RoundStatusReader) Current() models.RoundStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

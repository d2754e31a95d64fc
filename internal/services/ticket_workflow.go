package services

//go:generate mockgen -source=ticket_workflow.go -destination=mocks/mocks.go -package=mocks TokenProvider,TicketAPI

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/logger"

	"loto/internal/lotoapi"
	"loto/internal/metrics"
	"loto/internal/models"
)

// TokenProvider supplies a bearer token for each submission.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TicketAPI creates tickets on the backend.
type TicketAPI interface {
	CreateTicket(ctx context.Context, token string, ticket models.TicketRequest) (*lotoapi.TicketImage, error)
}

// State is where a TicketWorkflow is in its submission cycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateTokenPending
	StateSubmitting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateTokenPending:
		return "token_pending"
	case StateSubmitting:
		return "submitting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only copy of the form state for rendering.
type Snapshot struct {
	State   State
	OwnerID string
	Numbers string
	Image   *ImageHandle
	Err     *SubmissionError
}

// TicketWorkflow drives one ticket form: submit, show the confirmation image or a
// classified error, clear. At most one submission is in flight at a time and the
// workflow owns the single live image handle.
type TicketWorkflow struct {
	mu      sync.Mutex
	state   State
	closed  bool
	ownerID string
	numbers string
	image   *ImageHandle
	err     *SubmissionError

	tokens  TokenProvider
	api     TicketAPI
	images  *BlobStore
	metrics *metrics.Metrics
}

func NewTicketWorkflow(tokens TokenProvider, api TicketAPI, images *BlobStore, m *metrics.Metrics) *TicketWorkflow {
	return &TicketWorkflow{
		tokens:  tokens,
		api:     api,
		images:  images,
		metrics: m,
	}
}

// Submit runs one submission to completion. It returns false without doing anything
// when another submission is still in flight or the workflow has been closed.
// Every failure ends up in the snapshot's Err; Submit never returns a raw transport error.
func (w *TicketWorkflow) Submit(ctx context.Context, ticket models.TicketRequest) bool {
	w.mu.Lock()
	if w.closed || w.state != StateIdle {
		w.mu.Unlock()
		return false
	}
	w.state = StateValidating
	w.ownerID, w.numbers = ticket.OwnerID, ticket.Numbers
	w.releaseImageLocked()
	w.err = nil

	if field := ticket.MissingField(); field != "" {
		w.failLocked(validationError(field))
		w.mu.Unlock()
		return true
	}
	w.state = StateTokenPending
	w.mu.Unlock()

	token, err := w.tokens.Token(ctx)
	if err != nil {
		logger.Warningf("ticket submission: token unavailable: %v", err)
		w.finish(nil, tokenError(err))
		return true
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return true
	}
	w.state = StateSubmitting
	w.mu.Unlock()

	img, err := w.api.CreateTicket(ctx, token, ticket)
	if err == nil && img == nil {
		err = fmt.Errorf("ticket created without an image: %w", lotoapi.ErrMalformedResponse)
	}
	if err != nil {
		se := classifySubmitError(err)
		logger.Infof("ticket submission failed (%s): %v", se.Kind, err)
		w.finish(nil, se)
		return true
	}
	w.finish(img, nil)
	return true
}

// finish records the outcome of the network part of a submission and returns to idle.
// A response arriving after Close is dropped.
func (w *TicketWorkflow) finish(img *lotoapi.TicketImage, se *SubmissionError) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		logger.Infof("ticket submission finished after the form was closed; dropping response")
		return
	}
	if se != nil {
		w.failLocked(se)
		return
	}
	w.releaseImageLocked()
	w.image = w.images.Create(img.Data, img.ContentType)
	w.state = StateIdle
	w.metrics.ObserveSubmission("success")
}

func (w *TicketWorkflow) failLocked(se *SubmissionError) {
	w.err = se
	w.state = StateIdle
	w.metrics.ObserveSubmission(se.Kind.String())
}

func (w *TicketWorkflow) releaseImageLocked() {
	if w.image != nil {
		w.image.Release()
		w.image = nil
	}
}

// Clear releases the image and empties the form, whatever the current state.
func (w *TicketWorkflow) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.releaseImageLocked()
	w.ownerID, w.numbers = "", ""
	w.err = nil
}

// Close tears the workflow down. Later submissions are rejected and an in-flight one is discarded.
func (w *TicketWorkflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.state = StateClosed
	w.releaseImageLocked()
	w.err = nil
}

// Closed reports whether the workflow has been torn down.
func (w *TicketWorkflow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *TicketWorkflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Snapshot{
		State:   w.state,
		OwnerID: w.ownerID,
		Numbers: w.numbers,
		Image:   w.image,
		Err:     w.err,
	}
}

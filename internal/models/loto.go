package models

import "strings"

// TicketRequest is one ticket submission: who holds it and which numbers they picked.
// Numbers is passed to the backend as opaque comma-separated text.
type TicketRequest struct {
	OwnerID string `json:"owner_id"`
	Numbers string `json:"numbers"`
}

// MissingField reports which required field is empty after trimming, or "" when both are set.
func (r TicketRequest) MissingField() string {
	if strings.TrimSpace(r.OwnerID) == "" {
		return "owner_id"
	}
	if strings.TrimSpace(r.Numbers) == "" {
		return "numbers"
	}
	return ""
}

// ActiveRound is the part of the round status that tells whether tickets are still accepted.
type ActiveRound struct {
	ID        string `json:"id,omitempty"`
	StartedAt string `json:"started_at,omitempty"`
	Closed    bool   `json:"closed"`
}

// RoundStatus is the public view of the current round.
// Results is nil when no draw has happened yet.
type RoundStatus struct {
	TicketCount int
	Results     []int
	ActiveRound *ActiveRound
}

// IsActiveRound is true when a round is present and still open.
func (s RoundStatus) IsActiveRound() bool {
	return s.ActiveRound != nil && !s.ActiveRound.Closed
}

// HasResults is true when drawn numbers have been published.
func (s RoundStatus) HasResults() bool {
	return len(s.Results) > 0
}

// TicketStatusPayload is the raw body of GET /ticket-status. Every field may be absent or null.
type TicketStatusPayload struct {
	TicketCount *int         `json:"ticket_count"`
	Results     []int        `json:"results"`
	ActiveRound *ActiveRound `json:"active_round"`
}

// ToRoundStatus applies the defaults for missing fields.
func (p TicketStatusPayload) ToRoundStatus() RoundStatus {
	status := RoundStatus{
		Results:     p.Results,
		ActiveRound: p.ActiveRound,
	}
	if p.TicketCount != nil && *p.TicketCount > 0 {
		status.TicketCount = *p.TicketCount
	}
	return status
}

// ErrorPayload is the JSON body the backend returns with a non-2xx status.
type ErrorPayload struct {
	Detail string `json:"detail"`
}

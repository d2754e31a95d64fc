package services

import (
	"context"
	"testing"
	"time"

	"loto/internal/lotoapi"
	"loto/internal/models"
)

type stubTokens struct{}

func (stubTokens) Token(ctx context.Context) (string, error) { return "tok", nil }

type stubAPI struct{}

func (stubAPI) CreateTicket(ctx context.Context, token string, ticket models.TicketRequest) (*lotoapi.TicketImage, error) {
	return &lotoapi.TicketImage{Data: []byte("png"), ContentType: "image/png"}, nil
}

func TestFormSessions(t *testing.T) {
	images := NewBlobStore(nil)
	sessions := NewFormSessions(func() *TicketWorkflow {
		return NewTicketWorkflow(stubTokens{}, stubAPI{}, images, nil)
	}, nil)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }

	t.Run("Test same session gets same workflow", func(t *testing.T) {
		a := sessions.Get("session-a")
		if a != sessions.Get("session-a") {
			t.Fatal("Expected the same workflow for the same session")
		}
		if a == sessions.Get("session-b") {
			t.Fatal("Expected different workflows for different sessions")
		}
		if sessions.Len() != 2 {
			t.Errorf("Expected 2 sessions, but got %d", sessions.Len())
		}
	})

	t.Run("Test inactive sessions are closed and their images released", func(t *testing.T) {
		wf := sessions.Get("session-a")
		if !wf.Submit(context.Background(), models.TicketRequest{OwnerID: "123", Numbers: "1,2,3,4,5,6"}) {
			t.Fatal("Expected submission to run")
		}
		if images.Len() != 1 {
			t.Fatalf("Expected 1 live image, but got %d", images.Len())
		}

		now = now.Add(30 * time.Minute)
		sessions.Get("session-b") // keep b alive
		now = now.Add(45 * time.Minute)

		if removed := sessions.CleanUpInactiveSessions(time.Hour); removed != 1 {
			t.Fatalf("Expected 1 session to be removed, but got %d", removed)
		}
		if images.Len() != 0 {
			t.Errorf("Expected image to be released, but %d are live", images.Len())
		}
		if wf.Submit(context.Background(), models.TicketRequest{OwnerID: "123", Numbers: "1"}) {
			t.Error("Expected closed workflow to reject submissions")
		}
		if sessions.Get("session-a") == wf {
			t.Error("Expected a fresh workflow after the old session expired")
		}
	})

	t.Run("Test closed workflow is replaced on next access", func(t *testing.T) {
		wf := sessions.Get("session-b")
		wf.Close()
		fresh := sessions.Get("session-b")
		if fresh == wf {
			t.Fatal("Expected a fresh workflow after the old one was closed")
		}
		if !fresh.Submit(context.Background(), models.TicketRequest{OwnerID: "123", Numbers: "1,2,3,4,5,6"}) {
			t.Error("Expected the fresh workflow to accept a submission")
		}
		if sessions.Len() != 2 {
			t.Errorf("Expected 2 sessions, but got %d", sessions.Len())
		}
	})

	t.Run("Test Close and CloseAll", func(t *testing.T) {
		sessions.Close("session-a")
		sessions.Close("missing")
		if sessions.Len() != 1 {
			t.Errorf("Expected 1 session, but got %d", sessions.Len())
		}
		sessions.CloseAll()
		if sessions.Len() != 0 {
			t.Errorf("Expected 0 sessions, but got %d", sessions.Len())
		}
	})
}

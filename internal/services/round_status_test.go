package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loto/internal/lotoapi"
	"loto/internal/metrics"
	"loto/internal/models"
)

func statusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRoundStatusReader_FetchCurrentRound(t *testing.T) {
	ctx := context.Background()

	t.Run("open round without results", func(t *testing.T) {
		srv := statusServer(t, http.StatusOK, `{"ticket_count":5,"active_round":{"closed":false}}`)
		reader := NewRoundStatusReader(lotoapi.New(srv.URL, nil), nil)

		status := reader.FetchCurrentRound(ctx)
		assert.Equal(t, 5, status.TicketCount)
		assert.True(t, status.IsActiveRound())
		assert.False(t, status.HasResults())
	})

	t.Run("finished round with results", func(t *testing.T) {
		srv := statusServer(t, http.StatusOK, `{"active_round":null,"ticket_count":12,"results":[4,8,15,16,23,42]}`)
		reader := NewRoundStatusReader(lotoapi.New(srv.URL, nil), nil)

		status := reader.FetchCurrentRound(ctx)
		assert.Equal(t, 12, status.TicketCount)
		assert.False(t, status.IsActiveRound())
		assert.True(t, status.HasResults())
		assert.Equal(t, []int{4, 8, 15, 16, 23, 42}, status.Results)
	})

	t.Run("closed round is not active", func(t *testing.T) {
		srv := statusServer(t, http.StatusOK, `{"ticket_count":3,"active_round":{"closed":true},"results":[]}`)
		status := NewRoundStatusReader(lotoapi.New(srv.URL, nil), nil).FetchCurrentRound(ctx)
		assert.False(t, status.IsActiveRound())
		assert.False(t, status.HasResults())
	})

	t.Run("missing fields default", func(t *testing.T) {
		srv := statusServer(t, http.StatusOK, `{}`)
		status := NewRoundStatusReader(lotoapi.New(srv.URL, nil), nil).FetchCurrentRound(ctx)
		assert.Equal(t, models.RoundStatus{}, status)
		assert.Nil(t, status.Results)
	})

	t.Run("failure keeps defaults", func(t *testing.T) {
		srv := statusServer(t, http.StatusInternalServerError, `{"detail":"db down"}`)
		m := metrics.New()
		reader := NewRoundStatusReader(lotoapi.New(srv.URL, nil), m)

		status := reader.FetchCurrentRound(ctx)
		assert.Equal(t, models.RoundStatus{}, status)
		assert.False(t, status.IsActiveRound())
	})

	t.Run("failure keeps last good status", func(t *testing.T) {
		var fail atomic.Bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fail.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"ticket_count":7,"active_round":{"closed":false}}`))
		}))
		defer srv.Close()
		reader := NewRoundStatusReader(lotoapi.New(srv.URL, nil), nil)

		first := reader.FetchCurrentRound(ctx)
		require.Equal(t, 7, first.TicketCount)

		fail.Store(true)
		second := reader.FetchCurrentRound(ctx)
		assert.Equal(t, first, second)
		assert.Equal(t, first, reader.Current())
	})
}

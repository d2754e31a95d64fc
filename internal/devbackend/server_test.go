package devbackend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	t        *testing.T
	router   *gin.Engine
	verifier *Verifier
	store    *Store
	admin    string
	citizen  string
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := NewStore()
	verifier := NewVerifier("test-secret", "loto-test", "loto-api")
	router := gin.New()
	NewServer(store, verifier, "https://loto.test/").RegisterRoutes(router)

	admin, err := verifier.Mint("admin", []string{scopeManageRounds, scopeWriteResults}, time.Hour)
	require.NoError(t, err)
	citizen, err := verifier.Mint("citizen", nil, time.Hour)
	require.NoError(t, err)

	return &backend{t: t, router: router, verifier: verifier, store: store, admin: admin, citizen: citizen}
}

func (b *backend) do(method, path, token string, body any) *httptest.ResponseRecorder {
	b.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(b.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	return rec
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Detail
}

func ticket(owner, numbers string) map[string]string {
	return map[string]string{"owner_id": owner, "numbers": numbers}
}

func TestTicketStatus(t *testing.T) {
	b := newBackend(t)

	rec := b.do(http.MethodGet, "/ticket-status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active_round":null,"ticket_count":0,"results":null}`, rec.Body.String())

	require.Equal(t, http.StatusNoContent, b.do(http.MethodPost, "/new-round", b.admin, nil).Code)
	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/tickets", b.citizen, ticket("12345678901", "1,2,3,4,5,6")).Code)

	var status Status
	rec = b.do(http.MethodGet, "/ticket-status", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.NotNil(t, status.ActiveRound)
	assert.False(t, status.ActiveRound.Closed)
	assert.Equal(t, 1, status.TicketCount)
	assert.Nil(t, status.Results)

	require.Equal(t, http.StatusNoContent, b.do(http.MethodPost, "/close", b.admin, nil).Code)
	require.Equal(t, http.StatusNoContent, b.do(http.MethodPost, "/store-results", b.admin, map[string][]int{"numbers": {1, 2, 3, 40, 41, 42}}).Code)

	status = Status{}
	rec = b.do(http.MethodGet, "/ticket-status", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Nil(t, status.ActiveRound)
	assert.Equal(t, 1, status.TicketCount)
	assert.Equal(t, []int{1, 2, 3, 40, 41, 42}, status.Results)
}

func TestCreateTicket(t *testing.T) {
	b := newBackend(t)

	t.Run("no active round", func(t *testing.T) {
		rec := b.do(http.MethodPost, "/tickets", b.citizen, ticket("123", "1,2,3,4,5,6"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No active round for betting", detailOf(t, rec))
	})

	require.Equal(t, http.StatusNoContent, b.do(http.MethodPost, "/new-round", b.admin, nil).Code)

	t.Run("returns png", func(t *testing.T) {
		rec := b.do(http.MethodPost, "/tickets", b.citizen, ticket("12345678901", "3, 7, 22, 30, 31, 45"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
	})

	t.Run("out of range number", func(t *testing.T) {
		rec := b.do(http.MethodPost, "/tickets", b.citizen, ticket("12345678901", "1,2,3,4,5,99"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Broj 99 nije valjan", detailOf(t, rec))
	})

	t.Run("owner too long", func(t *testing.T) {
		rec := b.do(http.MethodPost, "/tickets", b.citizen, ticket(strings.Repeat("9", 21), "1,2,3,4,5,6"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := b.do(http.MethodPost, "/tickets", "", ticket("123", "1,2,3,4,5,6"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Missing or invalid Authorization header", detailOf(t, rec))
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := b.verifier.Mint("citizen", nil, -time.Minute)
		require.NoError(t, err)
		rec := b.do(http.MethodPost, "/tickets", expired, ticket("123", "1,2,3,4,5,6"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Token expired", detailOf(t, rec))
	})

	t.Run("foreign token", func(t *testing.T) {
		other, err := NewVerifier("other-secret", "loto-test", "loto-api").Mint("x", nil, time.Hour)
		require.NoError(t, err)
		rec := b.do(http.MethodPost, "/tickets", other, ticket("123", "1,2,3,4,5,6"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Token invalid", detailOf(t, rec))
	})
}

func TestRoundManagementNeedsScope(t *testing.T) {
	b := newBackend(t)

	rec := b.do(http.MethodPost, "/new-round", b.citizen, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Insufficient scope. Required: manage:rounds", detailOf(t, rec))

	rec = b.do(http.MethodPost, "/store-results", b.citizen, map[string][]int{"numbers": {1}})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStoreResultsRoundState(t *testing.T) {
	b := newBackend(t)
	results := map[string][]int{"numbers": {1, 2, 3, 4, 5, 6}}

	rec := b.do(http.MethodPost, "/store-results", b.admin, results)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid round state", detailOf(t, rec))

	b.do(http.MethodPost, "/new-round", b.admin, nil)
	require.Equal(t, http.StatusBadRequest, b.do(http.MethodPost, "/store-results", b.admin, results).Code)

	b.do(http.MethodPost, "/close", b.admin, nil)
	require.Equal(t, http.StatusNoContent, b.do(http.MethodPost, "/store-results", b.admin, results).Code)
	require.Equal(t, http.StatusBadRequest, b.do(http.MethodPost, "/store-results", b.admin, results).Code)
}

func TestShowTicket(t *testing.T) {
	b := newBackend(t)
	b.do(http.MethodPost, "/new-round", b.admin, nil)

	tk, err := b.store.AddTicket("12345678901", []int{22, 3, 7, 30, 31, 45})
	require.NoError(t, err)

	rec := b.do(http.MethodGet, "/ticket/"+tk.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "12345678901")
	assert.Contains(t, rec.Body.String(), "Izvlačenje još nije obavljeno")

	b.do(http.MethodPost, "/close", b.admin, nil)
	b.do(http.MethodPost, "/store-results", b.admin, map[string][]int{"numbers": {3, 7, 8, 9, 10, 11}})

	rec = b.do(http.MethodGet, "/ticket/"+tk.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pogođeno brojeva: 2/6")
	assert.Contains(t, rec.Body.String(), "Pogođeni brojevi: 3, 7")

	assert.Equal(t, http.StatusNotFound, b.do(http.MethodGet, "/ticket/not-a-uuid", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, b.do(http.MethodGet, "/ticket/00000000-0000-0000-0000-000000000000", "", nil).Code)
}

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		in     string
		want   []int
		detail string
	}{
		{in: "1,2,3,4,5,6", want: []int{1, 2, 3, 4, 5, 6}},
		{in: " 45 , 1,2,,3,4,5 ", want: []int{45, 1, 2, 3, 4, 5}},
		{in: "1,2,3,4,5,6,7,8,9,10", want: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{in: "1,2,3,4,5", detail: "Potrebno je odabrati od 6 do 10 brojeva"},
		{in: "1,2,3,4,5,6,7,8,9,10,11", detail: "Potrebno je odabrati od 6 do 10 brojeva"},
		{in: "1,2,3,4,5,5", detail: "Broj 5 je odabran više puta"},
		{in: "0,1,2,3,4,5", detail: "Broj 0 nije valjan"},
		{in: "1,2,3,4,5,x", detail: `Neispravan broj: "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumbers(tt.in)
			if tt.detail != "" {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.detail, ve.Detail)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

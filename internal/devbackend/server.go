package devbackend

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"loto/internal/models"
)

const (
	scopeManageRounds = "manage:rounds"
	scopeWriteResults = "write:results"

	qrSize = 256
)

// Server is an in-memory implementation of the loto backend API.
type Server struct {
	store     *Store
	verifier  *Verifier
	publicURL string
	page      *template.Template
}

// NewServer creates a Server. publicURL is encoded into ticket QR codes.
func NewServer(store *Store, verifier *Verifier, publicURL string) *Server {
	return &Server{
		store:     store,
		verifier:  verifier,
		publicURL: strings.TrimRight(publicURL, "/"),
		page:      template.Must(template.New("ticket").Funcs(template.FuncMap{"matched": matched}).Parse(ticketPage)),
	}
}

// RegisterRoutes registers the public and authenticated backend routes.
func (s *Server) RegisterRoutes(router gin.IRouter) {
	router.GET("/ticket-status", s.TicketStatus)
	router.GET("/ticket/:id", s.ShowTicket)

	authed := router.Group("/")
	authed.Use(s.verifier.RequireToken())
	authed.POST("/tickets", s.CreateTicket)
	authed.POST("/new-round", RequireScope(scopeManageRounds), s.NewRound)
	authed.POST("/close", RequireScope(scopeManageRounds), s.CloseRound)
	authed.POST("/store-results", RequireScope(scopeWriteResults), s.StoreResults)
}

// TicketStatus handles GET /ticket-status.
func (s *Server) TicketStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Status())
}

// CreateTicket handles POST /tickets and answers with the ticket's QR code.
func (s *Server) CreateTicket(c *gin.Context) {
	var in models.TicketRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		abortDetail(c, http.StatusBadRequest, "Neispravan zahtjev")
		return
	}

	if err := ValidateOwnerID(in.OwnerID); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}
	numbers, err := ParseNumbers(in.Numbers)
	if err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := s.store.AddTicket(in.OwnerID, numbers)
	if errors.Is(err, ErrNoActiveRound) {
		abortDetail(c, http.StatusBadRequest, "No active round for betting")
		return
	}
	if err != nil {
		logger.Errorf("storing ticket: %v", err)
		abortDetail(c, http.StatusInternalServerError, "Ticket could not be stored")
		return
	}

	png, err := qrcode.Encode(s.publicURL+"/ticket/"+ticket.ID.String(), qrcode.Medium, qrSize)
	if err != nil {
		logger.Errorf("rendering QR code for ticket %s: %v", ticket.ID, err)
		abortDetail(c, http.StatusInternalServerError, "QR code could not be generated")
		return
	}
	logger.Infof("Created ticket %s in round %s", ticket.ID, ticket.RoundID)
	c.Data(http.StatusOK, "image/png", png)
}

// NewRound handles POST /new-round. Opening while a round is open does nothing.
func (s *Server) NewRound(c *gin.Context) {
	if s.store.NewRound() {
		logger.Infof("Opened a new round")
	}
	c.Status(http.StatusNoContent)
}

// CloseRound handles POST /close.
func (s *Server) CloseRound(c *gin.Context) {
	if s.store.CloseRound() {
		logger.Infof("Closed the active round")
	}
	c.Status(http.StatusNoContent)
}

type storeResultsRequest struct {
	Numbers []int `json:"numbers"`
}

// StoreResults handles POST /store-results.
func (s *Server) StoreResults(c *gin.Context) {
	var in storeResultsRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		abortDetail(c, http.StatusBadRequest, "Neispravan zahtjev")
		return
	}
	if err := s.store.StoreResults(in.Numbers); err != nil {
		abortDetail(c, http.StatusBadRequest, "Invalid round state")
		return
	}
	c.Status(http.StatusNoContent)
}

type ticketView struct {
	ID         string
	OwnerID    string
	Numbers    []int
	Drawn      []int
	Matches    []int
	MatchCount int
}

// ShowTicket handles GET /ticket/:id, the public page a ticket's QR code points at.
func (s *Server) ShowTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortDetail(c, http.StatusNotFound, "Ticket not found")
		return
	}
	ticket, round, err := s.store.Ticket(id)
	if err != nil {
		abortDetail(c, http.StatusNotFound, "Ticket not found")
		return
	}

	view := ticketView{
		ID:      id.String(),
		OwnerID: ticket.OwnerID,
		Numbers: sorted(ticket.Numbers),
	}
	if len(round.Results) > 0 {
		view.Drawn = sorted(round.Results)
		for _, n := range view.Numbers {
			if slices.Contains(view.Drawn, n) {
				view.Matches = append(view.Matches, n)
			}
		}
		view.MatchCount = len(view.Matches)
	}

	buf := new(bytes.Buffer)
	if err := s.page.Execute(buf, view); err != nil {
		logger.Infof("Error executing ticket template: %v", err)
		c.String(http.StatusInternalServerError, "Template rendering error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func sorted(nums []int) []int {
	out := slices.Clone(nums)
	slices.Sort(out)
	return out
}

func matched(matches []int, n int) bool {
	return slices.Contains(matches, n)
}

package handlers

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"loto/internal/metrics"
	"loto/internal/models"
	"loto/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// LoginState answers whether the visitor can submit tickets right now.
type LoginState interface {
	IsAuthenticated(ctx context.Context) bool
}

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	rounds    *services.RoundStatusReader
	sessions  *services.FormSessions
	images    *services.BlobStore
	login     LoginState
	metrics   *metrics.Metrics
	templates *template.Template
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(
	rounds *services.RoundStatusReader,
	sessions *services.FormSessions,
	images *services.BlobStore,
	login LoginState,
	m *metrics.Metrics,
	templates *template.Template,
) *HTTPHandler {
	return &HTTPHandler{
		rounds:    rounds,
		sessions:  sessions,
		images:    images,
		login:     login,
		metrics:   m,
		templates: templates,
	}
}

// renderPage is a helper to perform a two-step template rendering.
// It first executes the content template into a buffer, then executes the main
// layout template, passing the rendered content as a variable.
func (h *HTTPHandler) renderPage(c *gin.Context, status int, pageData gin.H, contentTmpl string) {
	buf := new(bytes.Buffer)
	if err := h.templates.ExecuteTemplate(buf, contentTmpl, pageData); err != nil {
		logger.Infof("Error executing content template %s: %v", contentTmpl, err)
		c.String(http.StatusInternalServerError, "Template rendering error")
		return
	}

	pageData["PageContent"] = template.HTML(buf.String())

	page := new(bytes.Buffer)
	if err := h.templates.ExecuteTemplate(page, "layout.html", pageData); err != nil {
		logger.Infof("Error executing layout template: %v", err)
		c.String(http.StatusInternalServerError, "Template rendering error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", page.Bytes())
}

// RegisterPublicRoutes registers the routes that need no form session.
func (h *HTTPHandler) RegisterPublicRoutes(router gin.IRouter) {
	router.GET("/", h.ShowHome)
	router.GET("/qr/:id", h.GetTicketImage)
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
}

// RegisterSessionRoutes registers the ticket form routes. They must run behind SessionMiddleware.
func (h *HTTPHandler) RegisterSessionRoutes(router gin.IRouter) {
	router.GET("/ticket-form", h.ShowTicketForm)
	router.POST("/ticket-form", h.SubmitTicket)
	router.POST("/ticket-form/clear", h.ClearTicketForm)
}

// ShowHome renders the current round status.
func (h *HTTPHandler) ShowHome(c *gin.Context) {
	ctx := c.Request.Context()
	data := gin.H{
		"title":    "Početna",
		"Status":   h.rounds.FetchCurrentRound(ctx),
		"LoggedIn": h.login.IsAuthenticated(ctx),
	}
	h.renderPage(c, http.StatusOK, data, "home.html")
}

func (h *HTTPHandler) formPage(c *gin.Context, status int, form services.Snapshot, inFlight bool) {
	data := gin.H{
		"title":    "Uplata listića",
		"Form":     form,
		"InFlight": inFlight,
		"LoggedIn": h.login.IsAuthenticated(c.Request.Context()),
	}
	h.renderPage(c, status, data, "ticket_form.html")
}

// ShowTicketForm renders the form of the caller's session.
func (h *HTTPHandler) ShowTicketForm(c *gin.Context) {
	wf := h.sessions.Get(sessionID(c))
	h.formPage(c, http.StatusOK, wf.Snapshot(), false)
}

// SubmitTicket handles the form submission. A second submission while one is
// still running answers 409 and leaves the running one alone.
func (h *HTTPHandler) SubmitTicket(c *gin.Context) {
	ticket := models.TicketRequest{
		OwnerID: c.PostForm("ownerId"),
		Numbers: c.PostForm("numbers"),
	}
	wf := h.sessions.Get(sessionID(c))

	// Once issued the backend call runs to completion even if the browser goes away.
	ctx := context.WithoutCancel(c.Request.Context())
	submitted := wf.Submit(ctx, ticket)
	if !submitted && wf.Closed() {
		// The session expired between lookup and submit; start over on a fresh form.
		wf = h.sessions.Get(sessionID(c))
		submitted = wf.Submit(ctx, ticket)
	}
	if !submitted {
		h.formPage(c, http.StatusConflict, wf.Snapshot(), true)
		return
	}

	form := wf.Snapshot()
	status := http.StatusOK
	if form.Err != nil {
		status = errorStatus(services.KindOf(form.Err))
	}
	h.formPage(c, status, form, false)
}

// errorStatus is the status the form page is served with after a failed submission.
func errorStatus(kind services.ErrorKind) int {
	switch kind {
	case services.ValidationError, services.BadRequestError:
		return http.StatusBadRequest
	case services.AuthError:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

// ClearTicketForm releases the ticket image and empties the form.
func (h *HTTPHandler) ClearTicketForm(c *gin.Context) {
	h.sessions.Get(sessionID(c)).Clear()
	c.Redirect(http.StatusSeeOther, "/ticket-form")
}

// GetTicketImage serves a ticket confirmation image while its handle is live.
func (h *HTTPHandler) GetTicketImage(c *gin.Context) {
	data, contentType, ok := h.images.Get(c.Param("id"))
	if !ok {
		c.String(http.StatusNotFound, "Image not found")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}

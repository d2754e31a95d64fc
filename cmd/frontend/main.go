package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"loto/internal/auth"
	"loto/internal/config"
	"loto/internal/handlers"
	"loto/internal/lotoapi"
	"loto/internal/metrics"
	"loto/internal/services"
)

//go:embed all:templates
var templateFS embed.FS

//go:embed all:assets
var assetsFS embed.FS

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	addr := pflag.String("addr", "", "listen address (overrides config)")
	apiBaseURL := pflag.String("api-base-url", "", "loto backend base URL (overrides config)")
	verbose := pflag.BoolP("verbose", "v", true, "log to stdout")
	pflag.Parse()

	defer logger.Init("loto-frontend", *verbose, false, io.Discard).Close()

	// 1. Load configuration: file, environment, then flags.
	cfg, err := config.LoadFrontend(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *apiBaseURL != "" {
		cfg.APIBaseURL = *apiBaseURL
	}

	// 2. Initialize the backend client, token provider and services.
	m := metrics.New()
	api := lotoapi.New(cfg.APIBaseURL, nil)
	tokens := tokenProvider(cfg.Auth)
	images := services.NewBlobStore(m)
	sessions := services.NewFormSessions(func() *services.TicketWorkflow {
		return services.NewTicketWorkflow(tokens, api, images, m)
	}, m)
	rounds := services.NewRoundStatusReader(api, m)

	// 3. Load HTML templates from the embedded filesystem.
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		logger.Fatalf("Failed to parse templates: %v", err)
	}

	// 4. Initialize the HTTP Handler
	httpHandler := handlers.NewHTTPHandler(rounds, sessions, images, tokens, m, templates)

	// 5. Set up the Gin router
	r := gin.Default()

	assetsSubFS, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		logger.Fatalf("Failed to create assets sub-filesystem: %v", err)
	}
	r.StaticFS("/assets", http.FS(assetsSubFS))

	// 6. Register public routes, then the form routes behind the session middleware
	httpHandler.RegisterPublicRoutes(r)
	sessionRoutes := r.Group("/")
	sessionRoutes.Use(httpHandler.SessionMiddleware())
	httpHandler.RegisterSessionRoutes(sessionRoutes)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	g, ctx := errgroup.WithContext(ctx)

	// 7. Background janitor closes inactive form sessions and releases their images
	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				sessions.CloseAll()
				return nil
			case <-ticker.C:
				sessions.CleanUpInactiveSessions(cfg.SessionTTL)
			}
		}
	})

	// 8. Run the server until interrupted
	g.Go(func() error {
		logger.Infof("Server starting on %s (backend %s)", cfg.Addr, cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
	logger.Info("Server stopped")
}

// tokenProvider picks client credentials when a secret is configured, else the static token.
func tokenProvider(cfg config.Auth) auth.TokenProvider {
	if cfg.ClientSecret != "" {
		logger.Infof("Using client credentials from %s", cfg.Domain)
		return auth.NewClientCredentials(auth.ClientCredentialsConfig{
			Domain:       cfg.Domain,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Audience:     cfg.Audience,
			Scopes:       cfg.Scopes,
		})
	}
	if cfg.Token == "" {
		logger.Warning("No API token configured; ticket submissions will ask the user to log in")
	}
	return auth.NewStaticToken(cfg.Token)
}

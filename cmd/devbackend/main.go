package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"loto/internal/config"
	"loto/internal/devbackend"
)

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	addr := pflag.String("addr", "", "listen address (overrides config)")
	mint := pflag.String("mint-token", "", "print a token for this subject and exit")
	scopes := pflag.StringSlice("scopes", nil, "scopes for --mint-token, e.g. manage:rounds,write:results")
	ttl := pflag.Duration("ttl", 24*time.Hour, "lifetime of a minted token")
	pflag.Parse()

	defer logger.Init("loto-devbackend", true, false, io.Discard).Close()

	cfg, err := config.LoadBackend(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	verifier := devbackend.NewVerifier(cfg.JWTSecret, cfg.Issuer, cfg.Audience)
	if *mint != "" {
		token, err := verifier.Mint(*mint, *scopes, *ttl)
		if err != nil {
			logger.Fatalf("Failed to mint token: %v", err)
		}
		fmt.Println(token)
		return
	}

	r := gin.Default()
	devbackend.NewServer(devbackend.NewStore(), verifier, cfg.PublicURL).RegisterRoutes(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Development backend starting on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}

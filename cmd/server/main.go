// Package main starts the GophShare viewer host: it serves the static
// recipient page that decodes share links and decrypts them in the browser.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/GophShare/internal/config"
	"github.com/atinyakov/GophShare/internal/logger"
	"github.com/atinyakov/GophShare/internal/server/handler/http"
	"github.com/atinyakov/GophShare/web"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	viewerHandler := &http.ViewerHandler{Page: web.ViewerHTML, ModTime: time.Now()}
	healthHandler := &http.HealthHandler{Version: cmp.Or(version, "dev"), StartTime: time.Now()}
	router := http.NewRouter(viewerHandler, healthHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	var err error
	if options.TLSEnabled() {
		zapLogger.Info("starting HTTPS viewer host",
			zap.String("addr", options.Addr), zap.String("origin", options.Origin))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Warn("starting plain HTTP viewer host; browsers only allow decryption on localhost",
			zap.String("addr", options.Addr), zap.String("origin", options.Origin))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("viewer host stopped", zap.Error(err))
	}
	zapLogger.Info("viewer host stopped")
}

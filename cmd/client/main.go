// Package main runs the GophShare interactive shell: create secrets, share
// their links, and open links received from others.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atinyakov/GophShare/internal/client"
	"github.com/atinyakov/GophShare/internal/config"
	"github.com/atinyakov/GophShare/internal/lifecycle"
	"github.com/atinyakov/GophShare/internal/logger"
	"github.com/atinyakov/GophShare/internal/repository"
	"github.com/atinyakov/GophShare/internal/service"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

// reapInterval is how often expired secrets are swept while the shell is open.
const reapInterval = time.Second

// main parses flags and configuration, opens the secret store and runs the shell.
func main() {
	showVer := flag.Bool("version", false, "show build version and date")
	options := config.Parse()

	if *showVer {
		fmt.Printf("GophShare Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	store, err := repository.Open(repository.Options{
		DatabaseDSN: options.DatabaseDSN,
		BadgerDir:   options.BadgerDir,
		StorageFile: options.StorageFile,
	})
	if err != nil {
		zapLogger.Fatal("cannot open secret store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Error("closing secret store", zap.Error(err))
		}
	}()

	svc := service.NewSecretService(store, options.Origin, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lifecycle.StartExpiryReaper(ctx, svc, reapInterval, zapLogger)

	shell := client.NewShell(svc, os.Stdin, os.Stdout, client.SystemClipboard{}, zapLogger)
	if err := shell.Run(ctx); err != nil && ctx.Err() == nil {
		zapLogger.Error("shell stopped", zap.Error(err))
	}
}

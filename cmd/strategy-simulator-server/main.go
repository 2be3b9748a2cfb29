package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/strategy-simulator/internal/config"
	"github.com/iwvelando/strategy-simulator/internal/guidance"
	"github.com/iwvelando/strategy-simulator/internal/server"
	"github.com/iwvelando/strategy-simulator/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func loadModelConfiguration(path string) (*config.Configuration, error) {
	if path == "" {
		return config.LoadDefaults()
	}
	if _, err := os.Stat(path); err != nil && errors.Is(err, fs.ErrNotExist) {
		return config.LoadDefaults()
	}
	return config.LoadConfiguration(path)
}

func main() {
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	configLocation := flag.String("config", "", "path to model configuration file (overrides server config)")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	serverConf, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		serverConf.Address = *address
	}
	if *configLocation != "" {
		serverConf.ConfigFile = *configLocation
	}

	logger, err := config.NewLogger(serverConf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	conf, err := loadModelConfiguration(serverConf.ConfigFile)
	if err != nil {
		logger.Fatal("failed to load model configuration",
			zap.String("op", "main"),
			zap.String("path", serverConf.ConfigFile),
			zap.Error(err),
		)
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	c := conf.Constants()
	model := conf.StartingModel()
	handler := server.NewHandler(logger, server.Options{
		Constants:   &c,
		Targets:     &conf.Targets,
		Levers:      &model,
		Generator:   guidance.NewClient(conf.GuidanceClientConfig(), logger),
		MaxBodySize: serverConf.BodySizeBytes(),
		Version:     version,
	})

	srv := &http.Server{
		Addr:              serverConf.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("op", "main"),
			zap.String("address", serverConf.Address),
			zap.String("version", version),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.String("op", "main"), zap.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.String("op", "main"), zap.Error(err))
		}
		logger.Info("server stopped", zap.String("op", "main"))
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/meetspot/meetspot/internal/application"
	"github.com/meetspot/meetspot/internal/config"
	"github.com/meetspot/meetspot/internal/logging"
)

const shutdownGracePeriod = 10 * time.Second

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("meetspot", "MeetSpot - recommends meeting places reachable by all participants")
	configFile := kingpinApp.Flag("config", "Path to TOML configuration file (defaults to config/config.toml at the project root)").String()
	envFile := kingpinApp.Flag("env-file", "Dotenv file loaded before configuration resolution").Default(".env").String()
	portFlag := kingpinApp.Flag("port", "HTTP port (overrides the PORT environment variable)").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	// A missing dotenv file is normal outside local development.
	if *envFile != "" {
		_ = godotenv.Load(*envFile)
	}

	manager := config.NewManager(config.WithConfigFile(*configFile))
	settings := manager.Settings()

	logger, err := logging.New(settings.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	rt := application.ResolveRuntime(logger)
	if *portFlag > 0 {
		rt.Port = *portFlag
	}

	app, err := application.New(manager, rt, logger)
	if err != nil {
		logger.Error("failed to initialize application", zap.Error(err))
		fmt.Fprintf(os.Stderr, "startup failed: %v\ncheck that the web/ assets ship alongside the binary or a parent directory\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		logger.Error("failed to start server", zap.Error(err))
		os.Exit(1)
	}

	shutdown(app.Server(), shutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}

package application

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/meetspot/meetspot/internal/amap"
	"github.com/meetspot/meetspot/internal/api"
	"github.com/meetspot/meetspot/internal/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	cfg     *config.Manager
	places  amap.Finder
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	runtime Runtime
	server  *http.Server
}

// New initializes the application with all dependencies. Map credentials flow
// exclusively through the config manager, so a reload takes effect on the next
// outbound request.
func New(cfg *config.Manager, rt Runtime, logger *zap.Logger) (*App, error) {
	places := amap.NewClient(func() string {
		return cfg.Settings().AMap.APIKey
	})
	handler := api.NewHandler(places, cfg)
	apiRouter := api.NewRouter(handler, logger)

	rootHandler, err := BuildRootHandler(apiRouter)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", rt.Port),
		Handler:           rootHandler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return &App{
		cfg:     cfg,
		places:  places,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		runtime: rt,
		server:  server,
	}, nil
}

// BuildRootHandler constructs the root HTTP handler that serves the frontend
// and routes API requests.
func BuildRootHandler(apiHandler http.Handler) (http.Handler, error) {
	mux := http.NewServeMux()

	staticPath, err := resolveProjectPath(filepath.Join("web", "static"))
	if err != nil {
		return nil, err
	}
	staticDir := http.Dir(staticPath)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(staticDir)))
	mux.Handle("/api/", apiHandler)

	indexPath, err := resolveProjectPath(filepath.Join("web", "templates", "index.html"))
	if err != nil {
		return nil, err
	}
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, indexPath)
	}))

	return mux, nil
}

// Start prints the startup banner and starts the HTTP server in a goroutine.
func (a *App) Start() error {
	for _, line := range a.banner() {
		fmt.Println(line)
	}

	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.Bool("production", a.runtime.Production),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// banner returns the startup lines, varying with the deployment mode.
func (a *App) banner() []string {
	if a.runtime.Production {
		return []string{
			"MeetSpot production server starting",
			fmt.Sprintf("Serving on port %d", a.runtime.Port),
			"Health check: /api/health",
		}
	}
	return []string{
		"MeetSpot development server starting",
		fmt.Sprintf("Local address: http://localhost:%d", a.runtime.Port),
		"Health check: /api/health",
	}
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// resolveProjectPath locates a file or directory relative to the project root
// by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}

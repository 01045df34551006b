package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/meetspot/meetspot/internal/amap"
	"github.com/meetspot/meetspot/internal/config"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	defaultSearchKeywords = "咖啡厅"
	defaultSearchRadius   = 2000
	maxSearchRadius       = 50000
	maxMeetingLocations   = 10
)

// ConfigSource exposes the settings snapshot and reload to route handlers.
// Satisfied by *config.Manager.
type ConfigSource interface {
	Settings() config.AppSettings
	Reload()
}

// Handler wires the map client and configuration source into HTTP handlers.
type Handler struct {
	places amap.Finder
	cfg    ConfigSource

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(places amap.Finder, cfg ConfigSource, opts ...HandlerOption) *Handler {
	h := &Handler{
		places: places,
		cfg:    cfg,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleJSConfig serves the values the frontend map SDK needs. The REST API
// key itself is never exposed, only whether one is configured.
func (h *Handler) handleJSConfig(w http.ResponseWriter, r *http.Request) {
	_ = r
	settings := h.cfg.Settings()
	resp := jsConfigResponse{
		SecurityJSCode: settings.AMap.SecurityJSCode,
		KeyConfigured:  settings.AMap.APIKey != "",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleReloadConfig(w http.ResponseWriter, r *http.Request) {
	_ = r
	h.cfg.Reload()

	settings := h.cfg.Settings()
	resp := reloadResponse{
		KeyConfigured: settings.AMap.APIKey != "",
		Message:       "Configuration reloaded",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Locations) < 2 {
		writeError(w, http.StatusBadRequest, "Invalid request", "at least two meeting locations are required")
		return
	}
	if len(req.Locations) > maxMeetingLocations {
		writeError(w, http.StatusBadRequest, "Invalid request",
			fmt.Sprintf("at most %d meeting locations are supported", maxMeetingLocations))
		return
	}
	for i, loc := range req.Locations {
		if strings.TrimSpace(loc.Address) == "" {
			writeError(w, http.StatusBadRequest, "Invalid request",
				fmt.Sprintf("location %d is missing an address", i+1))
			return
		}
	}

	keywords := strings.TrimSpace(req.Keywords)
	if keywords == "" {
		keywords = defaultSearchKeywords
	}
	radius := req.Radius
	if radius <= 0 {
		radius = defaultSearchRadius
	}
	if radius > maxSearchRadius {
		radius = maxSearchRadius
	}

	start := time.Now()
	points := make([]amap.Location, 0, len(req.Locations))
	for _, loc := range req.Locations {
		point, err := h.places.Geocode(r.Context(), loc.Address, loc.City)
		if err != nil {
			h.writeAMapError(w, err, fmt.Sprintf("unable to locate %q", loc.Address))
			return
		}
		points = append(points, point)
	}

	center := amap.Midpoint(points...)
	places, err := h.places.SearchAround(r.Context(), center, keywords, radius)
	if err != nil {
		h.writeAMapError(w, err, "no places found around the midpoint")
		return
	}
	elapsed := time.Since(start)

	results := make([]placeResult, 0, len(places))
	for _, place := range places {
		results = append(results, placeResult{
			ID:        place.ID,
			Name:      place.Name,
			Type:      place.Type,
			Address:   place.Address,
			Longitude: place.Location.Longitude,
			Latitude:  place.Location.Latitude,
			Distance:  place.Distance,
		})
	}

	resp := recommendResponse{
		Center: coordinate{
			Longitude: center.Longitude,
			Latitude:  center.Latitude,
		},
		Keywords:     keywords,
		Radius:       radius,
		Places:       results,
		SearchTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeAMapError maps map client failures onto HTTP statuses.
func (h *Handler) writeAMapError(w http.ResponseWriter, err error, details string) {
	var apiErr *amap.APIError
	switch {
	case errors.Is(err, amap.ErrNoAPIKey):
		writeError(w, http.StatusServiceUnavailable, "Service not configured",
			"no AMap API key is configured; set AMAP_API_KEY or config/config.toml")
	case errors.Is(err, amap.ErrNoResult):
		suggestion := "Try different addresses, broader keywords, or a larger radius"
		writeError(w, http.StatusUnprocessableEntity, "No results", details, suggestion)
	case errors.As(err, &apiErr):
		writeError(w, http.StatusBadGateway, "Map service error", apiErr.Error())
	default:
		writeInternalError(w, err)
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type meetingLocation struct {
	Address string `json:"address"`
	City    string `json:"city,omitempty"`
}

type recommendRequest struct {
	Locations []meetingLocation `json:"locations"`
	Keywords  string            `json:"keywords,omitempty"`
	Radius    int               `json:"radius,omitempty"`
}

type coordinate struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type placeResult struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Address   string  `json:"address"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Distance  int     `json:"distance"`
}

type recommendResponse struct {
	Center       coordinate    `json:"center"`
	Keywords     string        `json:"keywords"`
	Radius       int           `json:"radius"`
	Places       []placeResult `json:"places"`
	SearchTimeMs int64         `json:"searchTimeMs"`
}

type jsConfigResponse struct {
	SecurityJSCode string `json:"securityJsCode"`
	KeyConfigured  bool   `json:"keyConfigured"`
}

type reloadResponse struct {
	KeyConfigured bool   `json:"keyConfigured"`
	Message       string `json:"message"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}

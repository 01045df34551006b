package amap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://restapi.amap.com"
	defaultTimeout = 10 * time.Second

	maxSearchResults = 20
)

// Client calls the AMap REST API. It reads the API key through a KeySource on
// every request so configuration reloads apply immediately.
type Client struct {
	keys       KeySource
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the AMap endpoint (primarily for tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient constructs a Client using the provided key source.
func NewClient(keys KeySource, opts ...ClientOption) *Client {
	c := &Client{
		keys:       keys,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geocodeResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Infocode string `json:"infocode"`
	Geocodes []struct {
		Location looseString `json:"location"`
	} `json:"geocodes"`
}

type aroundResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Infocode string `json:"infocode"`
	Pois     []struct {
		ID       looseString `json:"id"`
		Name     looseString `json:"name"`
		Type     looseString `json:"type"`
		Address  looseString `json:"address"`
		Location looseString `json:"location"`
		Distance looseString `json:"distance"`
	} `json:"pois"`
}

// Geocode resolves a street address to a coordinate via /v3/geocode/geo.
func (c *Client) Geocode(ctx context.Context, address, city string) (Location, error) {
	params := url.Values{}
	params.Set("address", address)
	if city != "" {
		params.Set("city", city)
	}

	var resp geocodeResponse
	if err := c.get(ctx, "/v3/geocode/geo", params, &resp); err != nil {
		return Location{}, err
	}
	if resp.Status != "1" {
		return Location{}, &APIError{Info: resp.Info, Infocode: resp.Infocode}
	}
	if len(resp.Geocodes) == 0 {
		return Location{}, fmt.Errorf("%w: geocode %q", ErrNoResult, address)
	}

	location, err := parseLocation(string(resp.Geocodes[0].Location))
	if err != nil {
		return Location{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	return location, nil
}

// SearchAround finds points of interest near a coordinate via /v3/place/around.
func (c *Client) SearchAround(ctx context.Context, center Location, keywords string, radius int) ([]Place, error) {
	params := url.Values{}
	params.Set("location", center.String())
	params.Set("keywords", keywords)
	params.Set("radius", strconv.Itoa(radius))
	params.Set("offset", strconv.Itoa(maxSearchResults))
	params.Set("sortrule", "distance")

	var resp aroundResponse
	if err := c.get(ctx, "/v3/place/around", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "1" {
		return nil, &APIError{Info: resp.Info, Infocode: resp.Infocode}
	}
	if len(resp.Pois) == 0 {
		return nil, fmt.Errorf("%w: no places near %s", ErrNoResult, center)
	}

	places := make([]Place, 0, len(resp.Pois))
	for _, poi := range resp.Pois {
		location, err := parseLocation(string(poi.Location))
		if err != nil {
			continue
		}
		distance, _ := strconv.Atoi(string(poi.Distance))
		places = append(places, Place{
			ID:       string(poi.ID),
			Name:     string(poi.Name),
			Type:     string(poi.Type),
			Address:  string(poi.Address),
			Location: location,
			Distance: distance,
		})
	}
	return places, nil
}

// get performs one authenticated GET request and decodes the JSON envelope.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	key := ""
	if c.keys != nil {
		key = strings.TrimSpace(c.keys())
	}
	if key == "" {
		return ErrNoAPIKey
	}
	params.Set("key", key)
	params.Set("output", "JSON")

	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build amap request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("amap request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("amap responded with status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode amap response: %w", err)
	}
	return nil
}

// parseLocation parses AMap's "lng,lat" wire format.
func parseLocation(raw string) (Location, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return Location{}, fmt.Errorf("malformed location %q", raw)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Location{}, fmt.Errorf("malformed longitude in %q", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Location{}, fmt.Errorf("malformed latitude in %q", raw)
	}
	return Location{Longitude: lng, Latitude: lat}, nil
}

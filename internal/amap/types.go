package amap

import (
	"context"
	"encoding/json"
	"fmt"
)

// Location is a WGS-84 coordinate pair in AMap's lng,lat order.
type Location struct {
	Longitude float64
	Latitude  float64
}

// String renders the location in the lng,lat wire format AMap expects.
func (l Location) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Longitude, l.Latitude)
}

// Place is one point of interest returned by a place search.
type Place struct {
	ID       string
	Name     string
	Type     string
	Address  string
	Location Location
	Distance int
}

// Finder describes the behaviour route handlers require from a map client.
type Finder interface {
	Geocode(ctx context.Context, address, city string) (Location, error)
	SearchAround(ctx context.Context, center Location, keywords string, radius int) ([]Place, error)
}

// KeySource supplies the API key at call time, so reloaded credentials take
// effect without rebuilding the client.
type KeySource func() string

// Midpoint returns the arithmetic center of the given locations. Adequate at
// city scale; meeting points are never far enough apart for spherical error
// to matter.
func Midpoint(points ...Location) Location {
	if len(points) == 0 {
		return Location{}
	}

	var lng, lat float64
	for _, p := range points {
		lng += p.Longitude
		lat += p.Latitude
	}
	n := float64(len(points))
	return Location{Longitude: lng / n, Latitude: lat / n}
}

// looseString decodes AMap string fields, which arrive as an empty JSON array
// when the value is absent.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		*s = ""
		return nil
	}
	*s = looseString(value)
	return nil
}

package providers

import (
	"context"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
)

// RouteProvider defines the interface for external routing services.
// Each adapter normalizes its provider's wire format into RouteResult.
type RouteProvider interface {
	// Name identifies the provider in logs and degradation flags
	Name() string

	// SupportsMode reports whether the provider can route the given mode
	SupportsMode(mode entities.TransportMode) bool

	// GetRoute computes a route between two points for a mode
	GetRoute(ctx context.Context, origin, dest entities.Coordinates, mode entities.TransportMode) (*entities.RouteResult, error)
}

// Geocoder resolves free-text place names outside the knowledge graph.
type Geocoder interface {
	// Geocode converts a place description to coordinates
	Geocode(ctx context.Context, query string) (*entities.Coordinates, string, error)
}

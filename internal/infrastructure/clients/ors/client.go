package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/imiq-project/Dashbot/pkg/config"
)

// Client is an OpenRouteService API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new OpenRouteService client
func NewClient(cfg *config.ORSConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// DirectionsRequest is the body for the directions endpoint
type DirectionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

// DirectionsResponse is the GeoJSON directions response
type DirectionsResponse struct {
	Features []Feature `json:"features"`
}

// Feature is one GeoJSON route feature
type Feature struct {
	Properties FeatureProperties `json:"properties"`
	Geometry   Geometry          `json:"geometry"`
}

// FeatureProperties holds route summary and segments
type FeatureProperties struct {
	Segments []Segment `json:"segments"`
	Summary  Summary   `json:"summary"`
}

// Summary holds route totals
type Summary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// Segment is one leg of a route
type Segment struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Steps    []Step  `json:"steps"`
}

// Step is one turn-by-turn instruction
type Step struct {
	Distance    float64 `json:"distance"`
	Duration    float64 `json:"duration"`
	Instruction string  `json:"instruction"`
	Name        string  `json:"name"`
	WayPoints   []int   `json:"way_points"`
}

// Geometry holds the route line
type Geometry struct {
	Coordinates [][]float64 `json:"coordinates"`
}

// GetDirections fetches a route for the given profile. Coordinates are
// (lon, lat) pairs per the GeoJSON convention.
func (c *Client) GetDirections(ctx context.Context, profile string, originLon, originLat, destLon, destLat float64) (*DirectionsResponse, error) {
	body, err := json.Marshal(DirectionsRequest{
		Coordinates: [][2]float64{{originLon, originLat}, {destLon, destLat}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", c.baseURL, profile)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create directions request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("directions request returned %d: %s", resp.StatusCode, string(data))
	}

	var directions DirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&directions); err != nil {
		return nil, fmt.Errorf("failed to decode directions response: %w", err)
	}
	return &directions, nil
}

// GeocodeResponse is the geocode search response
type GeocodeResponse struct {
	Features []GeocodeFeature `json:"features"`
}

// GeocodeFeature is one geocode hit
type GeocodeFeature struct {
	Geometry   PointGeometry     `json:"geometry"`
	Properties GeocodeProperties `json:"properties"`
}

// PointGeometry holds a single (lon, lat) point
type PointGeometry struct {
	Coordinates []float64 `json:"coordinates"`
}

// GeocodeProperties holds the resolved place label
type GeocodeProperties struct {
	Label string `json:"label"`
}

// Geocode resolves free text to coordinates, biased towards a focus point.
func (c *Client) Geocode(ctx context.Context, text string, focusLat, focusLon float64) (*GeocodeResponse, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("text", text)
	params.Set("focus.point.lat", fmt.Sprintf("%f", focusLat))
	params.Set("focus.point.lon", fmt.Sprintf("%f", focusLon))
	params.Set("size", "1")

	endpoint := fmt.Sprintf("%s/geocode/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geocode request returned %d: %s", resp.StatusCode, string(data))
	}

	var geocoded GeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&geocoded); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	return &geocoded, nil
}

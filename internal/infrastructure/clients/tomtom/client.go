package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/imiq-project/Dashbot/pkg/config"
)

// Client is a TomTom API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new TomTom client
func NewClient(cfg *config.TomTomConfig) *Client {
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

// RouteResponse is the calculateRoute response
type RouteResponse struct {
	Routes []Route `json:"routes"`
}

// Route is one computed route
type Route struct {
	Summary  RouteSummary `json:"summary"`
	Guidance Guidance     `json:"guidance"`
}

// RouteSummary holds route totals including live traffic delay
type RouteSummary struct {
	LengthInMeters        float64 `json:"lengthInMeters"`
	TravelTimeInSeconds   float64 `json:"travelTimeInSeconds"`
	TrafficDelayInSeconds float64 `json:"trafficDelayInSeconds"`
}

// Guidance holds turn-by-turn instructions
type Guidance struct {
	Instructions []Instruction `json:"instructions"`
}

// Instruction is one guidance step
type Instruction struct {
	Message             string  `json:"message"`
	Street              string  `json:"street"`
	RouteOffsetInMeters float64 `json:"routeOffsetInMeters"`
	Point               Point   `json:"point"`
}

// Point is a WGS84 coordinate
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CalculateRoute fetches a traffic-aware driving route with street-level
// guidance between two points.
func (c *Client) CalculateRoute(ctx context.Context, originLat, originLon, destLat, destLon float64) (*RouteResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("traffic", "true")
	params.Set("travelMode", "car")
	params.Set("instructionsType", "text")

	endpoint := fmt.Sprintf("%s/routing/1/calculateRoute/%f,%f:%f,%f/json?%s",
		c.baseURL, originLat, originLon, destLat, destLon, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create route request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("route request returned %d: %s", resp.StatusCode, string(data))
	}

	var route RouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
		return nil, fmt.Errorf("failed to decode route response: %w", err)
	}
	return &route, nil
}

// FlowResponse is the flow segment data response
type FlowResponse struct {
	FlowSegmentData FlowSegmentData `json:"flowSegmentData"`
}

// FlowSegmentData holds current vs free-flow speeds for the road segment
// closest to the queried point.
type FlowSegmentData struct {
	CurrentSpeed       float64 `json:"currentSpeed"`
	FreeFlowSpeed      float64 `json:"freeFlowSpeed"`
	CurrentTravelTime  float64 `json:"currentTravelTime"`
	FreeFlowTravelTime float64 `json:"freeFlowTravelTime"`
	RoadClosure        bool    `json:"roadClosure"`
}

// GetFlowSegment fetches live traffic flow for the road nearest a point.
func (c *Client) GetFlowSegment(ctx context.Context, lat, lon float64) (*FlowResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("point", fmt.Sprintf("%f,%f", lat, lon))

	endpoint := fmt.Sprintf("%s/traffic/services/4/flowSegmentData/absolute/10/json?%s",
		c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create flow request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flow request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("flow request returned %d: %s", resp.StatusCode, string(data))
	}

	var flow FlowResponse
	if err := json.NewDecoder(resp.Body).Decode(&flow); err != nil {
		return nil, fmt.Errorf("failed to decode flow response: %w", err)
	}
	return &flow, nil
}

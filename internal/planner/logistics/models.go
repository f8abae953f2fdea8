package logistics

import "github.com/logihub/logihub/internal/planner"

// Request payloads for the planning backend.

type extractRequest struct {
	RequestText string `json:"request_text"`
	SessionID   string `json:"session_id,omitempty"`
}

type optimizeRequest struct {
	ParsedLocations []planner.Location `json:"parsed_locations"`
	SessionID       string             `json:"session_id,omitempty"`
}

type manifestRequest struct {
	RouteID   string `json:"route_id"`
	Driver    string `json:"driver"`
	SessionID string `json:"session_id,omitempty"`
}

type summaryRequest struct {
	OptimizedRoute *planner.OptimizedRoute `json:"optimized_route"`
	Locations      []planner.Location      `json:"locations"`
	SessionID      string                  `json:"session_id,omitempty"`
}

// TrafficReport is the backend's traffic analysis for the active route.
type TrafficReport struct {
	CongestionStatus string `json:"congestion_status"`
	Details          string `json:"details"`
	MapFile          string `json:"map_file,omitempty"`
}

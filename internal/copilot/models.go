// Package copilot implements the LogiBOT conversational view: transcript
// management, message sending, and the live agent-status watcher.
package copilot

import "errors"

// Sentinel errors for copilot operations.
var (
	// ErrAgentUnavailable indicates the agent backend is unreachable.
	ErrAgentUnavailable = errors.New("agent backend unavailable")
	// ErrEmptyMessage indicates an empty message was submitted.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSessionNotReady indicates the session identifier is not available yet.
	ErrSessionNotReady = errors.New("session is still initializing")
)

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser marks messages typed by the user.
	RoleUser Role = "user"
	// RoleAssistant marks replies from LogiBOT.
	RoleAssistant Role = "assistant"
)

// Message is one entry in the append-only chat transcript.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// AgentStatus is the live backend-held execution state of the active
// manifest. The client only displays it and triggers refreshes; it never
// mutates it directly.
type AgentStatus struct {
	Active          bool          `json:"active"`
	Driver          string        `json:"driver,omitempty"`
	CurrentLocation string        `json:"current_location,omitempty"`
	NextStop        string        `json:"next_stop,omitempty"`
	RouteSummary    RouteProgress `json:"route_summary"`
}

// RouteProgress summarizes stop completion for the active route.
type RouteProgress struct {
	ProgressPercentage float64  `json:"progress_percentage"`
	Completed          []string `json:"completed"`
	Pending            []string `json:"pending"`
}

// QuickAction is a pre-written message shortcut feeding the normal send path.
type QuickAction struct {
	Label   string
	Message string
}

// QuickActions are the canned shortcuts offered in the chat view.
var QuickActions = []QuickAction{
	{Label: "Route status", Message: "What's the current route status?"},
	{Label: "Report delay", Message: "I'm delayed by 30 minutes due to traffic."},
	{Label: "Complete stop", Message: "Mark the current stop as completed."},
	{Label: "Check traffic", Message: "How is traffic looking ahead?"},
	{Label: "Check weather", Message: "Any weather issues on the remaining route?"},
}

// Package session owns the client session: the long-lived opaque identifier
// correlating backend calls, and persistence of the planning-session
// snapshot and chat transcript shared by the planner and copilot views.
package session

import "errors"

// ErrNoSnapshot indicates no session snapshot is persisted.
var ErrNoSnapshot = errors.New("no session snapshot")

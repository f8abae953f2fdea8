// Package render pretty-prints planner and copilot state as ANSI-colored
// terminal output.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/logihub/logihub/internal/copilot"
	"github.com/logihub/logihub/internal/geocode"
	"github.com/logihub/logihub/internal/planner"
)

const defaultWidth = 100

// Renderer pretty-prints planning state to the terminal.
type Renderer struct {
	// Width overrides the output width. Zero means the default.
	Width int
}

// New creates a terminal Renderer.
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) width() int {
	if r.Width > 0 {
		return r.Width
	}
	return defaultWidth
}

// Route writes the current planning view: the ordered stop list, route
// metrics, weather alerts and the manifest banner when one exists.
func (r *Renderer) Route(w io.Writer, v planner.View) error {
	if v.ErrMsg != "" {
		fmt.Fprintln(w, styleError.Render("✗ "+v.ErrMsg))
		return nil
	}

	switch v.Stage {
	case planner.StageInput:
		fmt.Fprintln(w, styleMeta.Render("No route planned yet. Use `logihub plan` to get started."))
		return nil
	case planner.StageProcessing:
		fmt.Fprintln(w, styleTyping.Render("Optimizing route..."))
		return nil
	}

	route := v.Route
	if route == nil {
		fmt.Fprintln(w, styleMeta.Render("No optimized route available."))
		return nil
	}

	fmt.Fprintln(w, styleTitle.Render("Optimized Route"))
	fmt.Fprintln(w, styleSeparator.Render(strings.Repeat("─", r.width())))

	for i, stop := range route.Stops {
		idx := styleStopIndex.Render(fmt.Sprintf("%2d.", i+1))
		name := styleStopName.Render(stop.Name)
		coords := styleCoords.Render(fmt.Sprintf("(%.4f, %.4f)", stop.Lat, stop.Lon))
		fmt.Fprintf(w, "  %s %s %s\n", idx, name, coords)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s    %s %s\n",
		styleStatLabel.Render("Distance:"),
		styleStat.Render(fmt.Sprintf("%.1f km", route.TotalDistanceKm)),
		styleStatLabel.Render("Duration:"),
		styleStat.Render(formatHours(route.TotalDurationHrs)),
	)

	for _, alert := range route.WeatherAlerts {
		fmt.Fprintln(w, styleAlert.Render("  ⚠ "+alert))
	}

	if v.ManifestCreated && route.Manifest != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleManifest.Render(fmt.Sprintf("  ✓ Manifest %s assigned to %s",
			route.Manifest.ManifestID, route.Manifest.Driver)))
	}

	if v.Summary != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleMeta.Render(wrap(v.Summary, r.width()-2, "  ")))
	}

	return nil
}

// TravelLog writes the optimizer's leg-by-leg travel log.
func (r *Renderer) TravelLog(w io.Writer, entries []planner.TravelEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, styleMeta.Render("No travel log available."))
		return nil
	}
	fmt.Fprintln(w, styleTitle.Render("Travel Log"))
	for _, e := range entries {
		switch e.Type {
		case "travel":
			fmt.Fprintf(w, "  %s %s %s\n",
				styleStopName.Render(e.From+" → "+e.To),
				styleCoords.Render(formatSeconds(e.DurationSec)),
				styleMeta.Render(e.Note))
		default:
			label := e.City
			if label == "" {
				label = e.Type
			}
			fmt.Fprintf(w, "  %s %s %s\n",
				styleStopName.Render(label),
				styleCoords.Render(formatSeconds(e.DurationSec)),
				styleMeta.Render(e.Note))
		}
	}
	return nil
}

// Picks writes the manually selected locations awaiting optimization.
func (r *Renderer) Picks(w io.Writer, picks []geocode.Pick) error {
	if len(picks) == 0 {
		fmt.Fprintln(w, styleMeta.Render("No locations picked yet."))
		return nil
	}
	fmt.Fprintln(w, styleTitle.Render("Picked Locations"))
	for i, p := range picks {
		fmt.Fprintf(w, "  %s %s %s %s\n",
			styleStopIndex.Render(fmt.Sprintf("%2d.", i+1)),
			styleStopName.Render(p.Name),
			styleCoords.Render(fmt.Sprintf("(%.4f, %.4f)", p.Lat, p.Lon)),
			styleMeta.Render(p.ID))
	}
	return nil
}

// Transcript writes the chat history as badge-prefixed message cards.
func (r *Renderer) Transcript(w io.Writer, messages []copilot.Message, typing bool) error {
	for _, msg := range messages {
		badge := styleAssistantBadge.Render("LogiBOT")
		if msg.Role == copilot.RoleUser {
			badge = styleUserBadge.Render("You")
		}
		fmt.Fprintf(w, "%s %s\n", badge, wrap(msg.Content, r.width()-10, "        "))
	}
	if typing {
		fmt.Fprintln(w, styleTyping.Render("LogiBOT is typing..."))
	}
	return nil
}

// Status writes the live agent execution status with a stop checklist.
func (r *Renderer) Status(w io.Writer, status *copilot.AgentStatus) error {
	if status == nil || !status.Active {
		fmt.Fprintln(w, styleMeta.Render("No active delivery run."))
		return nil
	}

	fmt.Fprintln(w, styleTitle.Render("Delivery Run"))
	if status.Driver != "" {
		fmt.Fprintf(w, "  %s %s\n", styleStatLabel.Render("Driver:"), styleStat.Render(status.Driver))
	}
	if status.CurrentLocation != "" {
		fmt.Fprintf(w, "  %s %s\n", styleStatLabel.Render("At:"), styleStat.Render(status.CurrentLocation))
	}
	if status.NextStop != "" {
		fmt.Fprintf(w, "  %s %s\n", styleStatLabel.Render("Next:"), styleStat.Render(status.NextStop))
	}

	progress := status.RouteSummary
	fmt.Fprintf(w, "  %s %s\n",
		styleStatLabel.Render("Progress:"),
		styleStat.Render(fmt.Sprintf("%.0f%%", progress.ProgressPercentage)))

	for _, name := range progress.Completed {
		fmt.Fprintln(w, styleDone.Render("    ✓ "+name))
	}
	for _, name := range progress.Pending {
		fmt.Fprintln(w, stylePending.Render("    ○ "+name))
	}
	return nil
}

// QuickActions writes the numbered canned-message shortcuts.
func (r *Renderer) QuickActions(w io.Writer, actions []copilot.QuickAction) error {
	for i, a := range actions {
		fmt.Fprintf(w, "  %s %s\n",
			styleStopIndex.Render(fmt.Sprintf("/%d", i+1)),
			styleMeta.Render(a.Label))
	}
	return nil
}

func formatHours(hrs float64) string {
	total := int(math.Round(hrs * 60))
	h, m := total/60, total%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

func formatSeconds(sec float64) string {
	m := int(sec) / 60
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}

// wrap breaks text into lines at word boundaries, indenting continuation
// lines with the given prefix.
func wrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i == 0 {
			b.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen+1+len(word) > width {
			b.WriteString("\n" + indent + word)
			lineLen = len(word)
			continue
		}
		b.WriteString(" " + word)
		lineLen += 1 + len(word)
	}
	return b.String()
}

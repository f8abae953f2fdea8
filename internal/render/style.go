package render

import "github.com/charmbracelet/lipgloss"

var (
	// Role colors: blue for the dispatcher, emerald for LogiBOT.
	colorUser      = lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"}
	colorAssistant = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34d399"}

	// UI colors.
	colorBright  = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}
	colorDanger  = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"}
)

var (
	styleUserBadge      = lipgloss.NewStyle().Foreground(colorUser).Bold(true)
	styleAssistantBadge = lipgloss.NewStyle().Foreground(colorAssistant).Bold(true)

	styleTitle = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleMeta  = lipgloss.NewStyle().Foreground(colorDim)

	styleStopIndex = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleStopName  = lipgloss.NewStyle().Foreground(colorBright)
	styleCoords    = lipgloss.NewStyle().Foreground(colorDim)

	styleStat      = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleStatLabel = lipgloss.NewStyle().Foreground(colorDim)

	styleAlert    = lipgloss.NewStyle().Foreground(colorWarning)
	styleError    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	styleManifest = lipgloss.NewStyle().Foreground(colorAssistant).Bold(true)
	styleTyping   = lipgloss.NewStyle().Foreground(colorDim).Italic(true)

	styleDone    = lipgloss.NewStyle().Foreground(colorAssistant)
	stylePending = lipgloss.NewStyle().Foreground(colorDim)

	styleSeparator = lipgloss.NewStyle().Foreground(colorDim)
)

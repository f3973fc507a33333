package tui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors so the bar and summary read on light and dark terminals.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#E6EDF3"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8B949E"}
	ColorMesh    = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"}
	ColorDone    = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	ColorCaution = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}
)

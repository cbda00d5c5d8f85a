package tui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette, true-color hex values.
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorRosewater lipgloss.Color = "#f5e0dc"
	colorFlamingo  lipgloss.Color = "#f2cdcd"
	colorPink      lipgloss.Color = "#f5c2e7"
	colorMauve     lipgloss.Color = "#cba6f7"
	colorRed       lipgloss.Color = "#f38ba8"
	colorMaroon    lipgloss.Color = "#eba0ac"
	colorPeach     lipgloss.Color = "#fab387"
	colorYellow    lipgloss.Color = "#f9e2af"
	colorGreen     lipgloss.Color = "#a6e3a1"
	colorTeal      lipgloss.Color = "#94e2d5"
	colorSky       lipgloss.Color = "#89dceb"
	colorSapphire  lipgloss.Color = "#74c7ec"
	colorBlue      lipgloss.Color = "#89b4fa"
	colorLavender  lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
	colorCrust    lipgloss.Color = "#11111b"
)

// Semantic aliases
const (
	colorAccent = colorMauve
	colorFocus  = colorLavender
	colorError  = colorRed
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	paneStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1)
	focusPaneStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocus).Padding(0, 1)
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorSubtext0)
	cursorStyle    = lipgloss.NewStyle().Foreground(colorCrust).Background(colorAccent)
	dimStyle       = lipgloss.NewStyle().Foreground(colorOverlay1)
	statusStyle    = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0).Padding(0, 1)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	arcStyle       = lipgloss.NewStyle().Foreground(colorTeal)
	frameStyle     = lipgloss.NewStyle().Foreground(colorPeach).Bold(true)
)

// layerAccentColors is the palette layer identities hash into, so a
// layer keeps its tint across every view that mentions it.
var layerAccentColors = []lipgloss.Color{
	colorGreen, colorTeal, colorPeach, colorBlue,
	colorMauve, colorPink, colorFlamingo, colorSapphire,
	colorLavender, colorYellow, colorMaroon, colorRosewater, colorSky,
}

// layerColor returns the deterministic accent color for a layer
// identifier.
func layerColor(identifier string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identifier))
	return layerAccentColors[h.Sum32()%uint32(len(layerAccentColors))]
}

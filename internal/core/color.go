package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for arena elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// playerPalette is cycled through when assigning head colors.
var playerPalette = []Color{
	ColorBrightRed,
	ColorBrightGreen,
	ColorBrightBlue,
	ColorBrightYellow,
	ColorBrightCyan,
	ColorBrightMagenta,
	ColorWhite,
	ColorOrange,
	ColorRed,
	ColorYellow,
	ColorGreen,
	ColorMagenta,
	ColorCyan,
	ColorBlue,
}

// PlayerColor returns the display color of a player.
func PlayerColor(id PlayerID) Color {
	i := int(id) % len(playerPalette)
	if i < 0 {
		i += len(playerPalette)
	}
	return playerPalette[i]
}

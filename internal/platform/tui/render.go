package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// Glyphs used on the arena grid.
const (
	glyphHead    = '@'
	glyphSegment = 'o'
	glyphFood    = '*'
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// Viewport maps the arena, centred on the origin, onto the interior of a box
// on the screen. Arena y grows downward, like terminal rows.
type Viewport struct {
	Box    core.Rect
	ArenaW float64
	ArenaH float64
}

// Cell returns the screen cell for an arena position. ok is false when the
// box has no interior.
func (v Viewport) Cell(p world.Position) (x, y int, ok bool) {
	innerW, innerH := v.Box.W-2, v.Box.H-2
	if innerW <= 0 || innerH <= 0 || v.ArenaW <= 0 || v.ArenaH <= 0 {
		return 0, 0, false
	}
	cx := int(math.Floor((p.X/v.ArenaW + 0.5) * float64(innerW)))
	cy := int(math.Floor((p.Y/v.ArenaH + 0.5) * float64(innerH)))
	cx = core.Clamp(cx, 0, innerW-1)
	cy = core.Clamp(cy, 0, innerH-1)
	return v.Box.X + 1 + cx, v.Box.Y + 1 + cy, true
}

// DrawWorld draws the border, food and every snake. Heads are drawn last so
// they stay visible over other bodies.
func DrawWorld(s *core.Screen, v Viewport, snap *world.WorldSnapshot) {
	s.DrawBox(v.Box)
	if snap == nil {
		return
	}

	for _, f := range snap.Foods {
		if x, y, ok := v.Cell(f.Pos); ok {
			s.SetColored(x, y, glyphFood, core.ColorYellow)
		}
	}

	for _, snake := range snap.Snakes {
		c := core.PlayerColor(snake.Player)
		for i := len(snake.Segments) - 1; i >= 1; i-- {
			if x, y, ok := v.Cell(snake.Segments[i]); ok {
				s.SetColored(x, y, glyphSegment, c)
			}
		}
	}
	for _, snake := range snap.Snakes {
		if head, ok := snake.Head(); ok {
			if x, y, ok := v.Cell(head); ok {
				s.SetColored(x, y, glyphHead, core.PlayerColor(snake.Player))
			}
		}
	}
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Adjacent cells with the same color share one style run.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

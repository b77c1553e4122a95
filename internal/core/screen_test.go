package core

import (
	"strings"
	"testing"
)

// screenText returns the runes of s, one line per row.
func screenText(s *Screen) string {
	rows := make([]string, s.Height())
	for y := range rows {
		var sb strings.Builder
		for x := 0; x < s.Width(); x++ {
			sb.WriteRune(s.GetCell(x, y).Rune)
		}
		rows[y] = sb.String()
	}
	return strings.Join(rows, "\n")
}

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.GetCell(x, y).Rune != ' ' {
				t.Fatalf("New screen should be filled with spaces, got %q at (%d, %d)", s.GetCell(x, y).Rune, x, y)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetColored(5, 5, 'X', ColorRed)
	if s.GetCell(5, 5).Rune != 'X' {
		t.Errorf("GetCell(5, 5).Rune = %q, expected 'X'", s.GetCell(5, 5).Rune)
	}
	if s.GetCell(5, 5).Color != ColorRed {
		t.Errorf("GetCell(5, 5).Color = %d, expected ColorRed", s.GetCell(5, 5).Color)
	}

	// Out of bounds should be silent
	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.Set(0, -1, 'A')
	s.Set(0, 100, 'A')

	if s.GetCell(-1, 0).Rune != ' ' {
		t.Error("Out of bounds GetCell should return space")
	}
}

func TestScreenDrawTextClips(t *testing.T) {
	s := NewScreen(5, 1)
	s.DrawTextColored(2, 0, "hello", ColorGreen)

	if got := screenText(s); got != "  hel" {
		t.Errorf("screen = %q, expected %q", got, "  hel")
	}
	if c := s.GetCell(4, 0); c.Color != ColorGreen {
		t.Errorf("GetCell(4, 0).Color = %d, expected ColorGreen", c.Color)
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawBox(NewRect(0, 0, 4, 3))

	expected := strings.Join([]string{
		"┌──┐",
		"│  │",
		"└──┘",
	}, "\n")
	if got := screenText(s); got != expected {
		t.Errorf("screen =\n%s\nexpected\n%s", got, expected)
	}
}

func TestScreenResizeClears(t *testing.T) {
	s := NewScreen(3, 3)
	s.Fill('#')
	s.Resize(4, 2)

	if s.Width() != 4 || s.Height() != 2 {
		t.Fatalf("Resize() gave %dx%d, expected 4x2", s.Width(), s.Height())
	}
	if s.GetCell(0, 0).Rune != ' ' {
		t.Errorf("Resize() should clear content, got %q", s.GetCell(0, 0).Rune)
	}
}

func TestPlayerColorStable(t *testing.T) {
	if PlayerColor(1) != PlayerColor(1) {
		t.Error("PlayerColor() should be deterministic")
	}
	if PlayerColor(0) == PlayerColor(1) {
		t.Error("adjacent players should get different colors")
	}
	_ = PlayerColor(-3) // must not panic
}

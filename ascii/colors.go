// Package ascii provides terminal ANSI color codes semantic names for
// colors so they can be grouped in themes.
package ascii

import "fmt"

const (
	Reset  = "\033[0m"
	Red    = "\033[1;31m"
	Yellow = "\033[1;33m"
	Green  = "\033[1;32m"
	Blue   = "\033[1;34m"
	Cyan   = "\033[1;36m"
	Gray   = "\033[90m" // Bright black, actually

	// 256-color palette
	Orange  = "\033[38;5;208m"
	Gray245 = "\033[1;38;5;245m" // Medium gray
	Purple  = "\033[1;38;5;99m"
	Pink    = "\033[1;38;5;127m"
)

// Theme maps what's being printed, parse trees, grammars and error
// reports, to colors.
type Theme struct {
	// Error reports
	Error   string
	Warning string
	Muted   string
	Success string

	// Parse trees and grammars
	Label    string
	Span     string
	Literal  string
	Illegal  string
	Operator string
	Operand  string
}

// DefaultTheme is meant to fair well on both dark and light terminal
// settings.
var DefaultTheme = Theme{
	Error:   Red,
	Warning: Yellow,
	Muted:   Gray,
	Success: Green,

	Label:    Blue,
	Span:     Orange,
	Literal:  Gray245,
	Illegal:  Pink,
	Operator: Purple,
	Operand:  Pink,
}

// NoColors keeps output plain, for terminals that aren't.
var NoColors = Theme{}

// Paint wraps s in color, leaving it untouched when color is empty.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + Reset
}

func Color(color, format string, args ...any) string {
	return Paint(color, fmt.Sprintf(format, args...))
}

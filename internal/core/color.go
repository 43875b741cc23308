package core

// Color represents a foreground color for a screen cell.
// The platform maps these onto ANSI 256-color codes.
type Color uint8

// Colors used by the board renderer.
const (
	ColorDefault     Color = iota
	ColorGreen             // snake body
	ColorBrightGreen       // snake head
	ColorRed               // food
	ColorYellow            // HUD score
	ColorCyan              // overlay text
	ColorGray              // board border
	ColorBrightWhite       // headings
)

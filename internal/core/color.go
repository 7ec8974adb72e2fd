package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for game elements.
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
	ColorTeal
	ColorSand
	ColorSalmon
	ColorLavender
	ColorLeaf
	ColorSky
	ColorPink
	ColorMint
)

// PieceColors is the block palette, indexed by piece color token minus one.
// Eight pastel tones, one per token.
var PieceColors = [8]Color{
	ColorTeal,
	ColorSand,
	ColorSalmon,
	ColorLavender,
	ColorLeaf,
	ColorSky,
	ColorPink,
	ColorMint,
}

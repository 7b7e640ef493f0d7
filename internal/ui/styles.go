package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Box drawing characters
const (
	TopLeft     = "╭"
	TopRight    = "╮"
	BottomLeft  = "╰"
	BottomRight = "╯"
	Horizontal  = "─"
	Vertical    = "│"
	LeftT       = "├"
	RightT      = "┤"
	TopT        = "┬"
	BottomT     = "┴"
	Cross       = "┼"
)

// Color palette
const (
	ColorBorder = "240"
	ColorHeader = "252"
	ColorName   = "81"
	ColorRegion = "252"
	ColorTier   = "245"
	ColorSize   = "214"
	ColorTotal  = "82"
	ColorFailed = "203"
	ColorMuted  = "240"
	ColorHint   = "245"
)

// Shared styles
var (
	BorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder))
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorHeader))
	NameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorName))
	RegionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRegion))
	TierStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorTier))
	SizeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSize))
	TotalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorTotal))
	FailedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorFailed))
	MutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted))
	HintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHint))
)

// padRight pads a string to the specified display width using runewidth
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return runewidth.Truncate(s, width, "...")
	}
	return s + strings.Repeat(" ", width-sw)
}

// padLeft right-aligns a string within the specified display width
func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return runewidth.Truncate(s, width, "...")
	}
	return strings.Repeat(" ", width-sw) + s
}

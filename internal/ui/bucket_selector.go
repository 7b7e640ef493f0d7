package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vietdv277/s3du/pkg/types"
)

var ErrSelectionCancelled = errors.New("selection cancelled")

const (
	bucketListHeight       = 8
	bucketDetailLabelWidth = 16
	minWidth               = 60
	maxWidth               = 120
)

// BucketModel represents the bubbletea model for bucket selection
type BucketModel struct {
	buckets      types.Buckets
	filtered     types.Buckets
	cursor       int
	offset       int
	search       string
	selected     *types.Bucket
	quitting     bool
	cancelled    bool
	termWidth    int
	contentWidth int
}

// NewBucketModel creates a new bucket selector model
func NewBucketModel(buckets types.Buckets) BucketModel {
	m := BucketModel{
		buckets:   buckets,
		filtered:  buckets,
		termWidth: 80,
	}
	m.calculateWidths()
	return m
}

func (m *BucketModel) calculateWidths() {
	m.contentWidth = m.termWidth - 2
	if m.contentWidth < minWidth {
		m.contentWidth = minWidth
	}
	if m.contentWidth > maxWidth {
		m.contentWidth = maxWidth
	}
}

// Selected returns the chosen bucket, nil until Enter is pressed
func (m BucketModel) Selected() *types.Bucket {
	return m.selected
}

// Cancelled reports whether the selector was dismissed
func (m BucketModel) Cancelled() bool {
	return m.cancelled
}

// Init implements tea.Model
func (m BucketModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update implements tea.Model
func (m BucketModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.calculateWidths()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			m.cancelled = true
			return m, tea.Quit

		case tea.KeyEnter:
			if len(m.filtered) > 0 {
				b := m.filtered[m.cursor]
				m.selected = &b
				m.quitting = true
				return m, tea.Quit
			}

		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}

		case tea.KeyDown:
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				if m.cursor >= m.offset+bucketListHeight {
					m.offset = m.cursor - bucketListHeight + 1
				}
			}

		case tea.KeyBackspace:
			if len(m.search) > 0 {
				m.search = m.search[:len(m.search)-1]
				m.filterBuckets()
			}

		case tea.KeyRunes:
			m.search += string(msg.Runes)
			m.filterBuckets()
		}
	}

	return m, nil
}

func (m *BucketModel) filterBuckets() {
	if m.search == "" {
		m.filtered = m.buckets
	} else {
		query := strings.ToLower(m.search)
		m.filtered = nil
		for _, b := range m.buckets {
			if strings.Contains(strings.ToLower(b.Name), query) ||
				strings.Contains(strings.ToLower(b.StorageTypesString()), query) {
				m.filtered = append(m.filtered, b)
			}
		}
	}
	if m.cursor >= len(m.filtered) {
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		} else {
			m.cursor = 0
		}
	}
	m.offset = 0
}

// View implements tea.Model
func (m BucketModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	w := m.contentWidth

	// Top border
	sb.WriteString(BorderStyle.Render(TopLeft))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(TopRight))
	sb.WriteString("\n")

	// Search input
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString(NameStyle.Render(padToWidth(" > "+m.search, w)))
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	sb.WriteString(m.emptyLine())

	// Bucket list
	visibleEnd := min(m.offset+bucketListHeight, len(m.filtered))
	for i := m.offset; i < visibleEnd; i++ {
		sb.WriteString(m.renderBucketRow(i))
	}

	// Fill remaining lines
	for i := visibleEnd - m.offset; i < bucketListHeight; i++ {
		sb.WriteString(m.emptyLine())
	}

	sb.WriteString(m.emptyLine())

	// Separator
	sb.WriteString(BorderStyle.Render(LeftT))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(RightT))
	sb.WriteString("\n")

	sb.WriteString(m.renderDetailsPanel())

	// Bottom border
	sb.WriteString(BorderStyle.Render(BottomLeft))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(BottomRight))
	sb.WriteString("\n")

	sb.WriteString(m.renderStatusBar())

	return sb.String()
}

func (m BucketModel) emptyLine() string {
	return BorderStyle.Render(Vertical) + strings.Repeat(" ", m.contentWidth) + BorderStyle.Render(Vertical) + "\n"
}

func (m BucketModel) renderBucketRow(idx int) string {
	b := m.filtered[idx]
	w := m.contentWidth

	var line strings.Builder
	plainWidth := 0

	// Cursor indicator
	if idx == m.cursor {
		line.WriteString(" > ")
	} else {
		line.WriteString("   ")
	}
	plainWidth += 3

	// Name
	nameWidth := max(w-plainWidth-2-16, 10)
	line.WriteString(NameStyle.Render(padRight(b.Name, nameWidth)))
	line.WriteString("  ")
	plainWidth += nameWidth + 2

	// Region
	regionWidth := min(16, w-plainWidth)
	line.WriteString(RegionStyle.Render(padRight(formatOptional(b.Region), regionWidth)))
	plainWidth += regionWidth

	if plainWidth < w {
		line.WriteString(strings.Repeat(" ", w-plainWidth))
	}

	return BorderStyle.Render(Vertical) + line.String() + BorderStyle.Render(Vertical) + "\n"
}

func (m BucketModel) renderDetailsPanel() string {
	var sb strings.Builder
	w := m.contentWidth

	// Header
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString(HeaderStyle.Render(padToWidth(" Bucket Details", w)))
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	// Underline
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString(MutedStyle.Render(padToWidth(" "+strings.Repeat("─", 20), w)))
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	if len(m.filtered) == 0 {
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString(MutedStyle.Render(padToWidth(" No buckets found", w)))
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString("\n")

		for i := 0; i < 2; i++ {
			sb.WriteString(m.emptyLine())
		}
	} else {
		b := m.filtered[m.cursor]

		details := []struct {
			label string
			value string
			style lipgloss.Style
		}{
			{"Name:", b.Name, NameStyle},
			{"Region:", formatOptional(b.Region), RegionStyle},
			{"Storage Types:", b.StorageTypesString(), TierStyle},
		}

		for _, d := range details {
			labelText := padRight(d.label, bucketDetailLabelWidth)
			valueText := d.value

			maxValueWidth := w - 1 - bucketDetailLabelWidth
			if runewidth.StringWidth(valueText) > maxValueWidth {
				valueText = runewidth.Truncate(valueText, maxValueWidth, "...")
			}

			plainWidth := 1 + bucketDetailLabelWidth + runewidth.StringWidth(valueText)
			line := MutedStyle.Render(" "+labelText) + d.style.Render(valueText)
			if plainWidth < w {
				line += strings.Repeat(" ", w-plainWidth)
			}

			sb.WriteString(BorderStyle.Render(Vertical))
			sb.WriteString(line)
			sb.WriteString(BorderStyle.Render(Vertical))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(m.emptyLine())

	return sb.String()
}

func (m BucketModel) renderStatusBar() string {
	w := m.contentWidth + 2

	countInfo := fmt.Sprintf("  %d/%d buckets", len(m.filtered), len(m.buckets))
	hintsPlain := "[Enter:select] [Esc:cancel]"

	padding := w - runewidth.StringWidth(countInfo) - runewidth.StringWidth(hintsPlain)

	var sb strings.Builder
	sb.WriteString(countInfo)
	if padding > 0 {
		sb.WriteString(strings.Repeat(" ", padding))
	}
	sb.WriteString(HintStyle.Render(hintsPlain))
	sb.WriteString("\n")

	return sb.String()
}

func padToWidth(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return runewidth.Truncate(s, width, "...")
	}
	return s + strings.Repeat(" ", width-sw)
}

// SelectBucket displays an interactive selector for buckets and returns
// the selected bucket
func SelectBucket(buckets types.Buckets) (*types.Bucket, error) {
	if len(buckets) == 0 {
		return nil, fmt.Errorf("no buckets available")
	}

	m := NewBucketModel(buckets)
	p := tea.NewProgram(m)

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(BucketModel)
	if result.cancelled {
		return nil, ErrSelectionCancelled
	}

	return result.selected, nil
}

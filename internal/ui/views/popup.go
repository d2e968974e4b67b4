package views

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PopupRenderer handles popup/modal rendering
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderPopupOverlay renders a popup centred on top of a greyed main content
func (pr *PopupRenderer) RenderPopupOverlay(mainContent, popupContent string, height, width int, popupStyle lipgloss.Style) string {
	styledPopup := popupStyle.Render(popupContent)

	modalW := lipgloss.Width(styledPopup)
	popLines := strings.Split(styledPopup, "\n")
	if height > 4 && len(popLines) > height-4 {
		popLines = popLines[:height-4]
	}
	x := max((width-modalW)/2, 0)
	y := max((height-len(popLines))/2, 0)

	baseLines := strings.Split(desaturateANSI(mainContent), "\n")
	for len(baseLines) < y+len(popLines) {
		baseLines = append(baseLines, "")
	}

	for i, pl := range popLines {
		row := y + i
		line := baseLines[row]
		left := ansi.Truncate(line, x, "")
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		right := ansi.TruncateLeft(line, x+modalW, "")
		baseLines[row] = left + pl + right
	}
	return strings.Join(baseLines, "\n")
}

// ANSI escape sequence regex to strip styles/colors
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// desaturateANSI strips ANSI color/style codes and recolors text dim gray
func desaturateANSI(s string) string {
	lines := strings.Split(ansiRE.ReplaceAllString(s, ""), "\n")
	gray := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	for i, line := range lines {
		lines[i] = gray.Render(line)
	}
	return strings.Join(lines, "\n")
}

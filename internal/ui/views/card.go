package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"metagrip/internal/domain"
	"metagrip/internal/metadata"
)

// ProgramBadge is the start/stop widget state shown on a program card
type ProgramBadge struct {
	Status  domain.ProgramStatus
	Loading bool
	Error   bool
}

// CardRenderer handles rendering of entity cards
type CardRenderer struct {
	styles *Styles
}

// NewCardRenderer creates a new card renderer
func NewCardRenderer(styles *Styles) *CardRenderer {
	return &CardRenderer{styles: styles}
}

// RenderCard renders one entity in a box of exactly width x height cells,
// the last column being the gap to the next card
func (r *CardRenderer) RenderCard(e domain.Entity, badge *ProgramBadge, selected bool, width, height int, spinner string) string {
	inner := max(width-5, 4) // border, padding and gap
	rows := max(height-2, 1)

	kind := lipgloss.NewStyle().
		Foreground(lipgloss.Color(GetCategoryColor(e.Type))).
		Render(strings.ToUpper(e.Type.DisplayName()))
	header := kind
	if badge != nil {
		right := r.renderBadge(badge, spinner)
		gap := inner - lipgloss.Width(kind) - lipgloss.Width(right)
		if gap < 1 {
			gap = 1
		}
		header = kind + strings.Repeat(" ", gap) + right
	}

	lines := []string{
		ansi.Truncate(header, inner, ""),
		r.styles.CardTitle.Render(ansi.Truncate(e.Title(), inner, "…")),
	}

	switch {
	case e.Type == domain.CategoryProgram:
		lines = append(lines, r.styles.Dim.Render(ansi.Truncate(e.Application+" · "+e.ProgramType, inner, "…")))
	case e.Version != "":
		lines = append(lines, r.styles.Dim.Render(ansi.Truncate("v"+e.Version, inner, "…")))
	default:
		lines = append(lines, r.styles.Dim.Render(ansi.Truncate(e.Namespace, inner, "…")))
	}

	descLines := wrap(e.Description, inner, max(rows-4, 0))
	lines = append(lines, descLines...)

	for len(lines) < rows-1 {
		lines = append(lines, "")
	}

	footer := ""
	if len(e.Tags) > 0 {
		footer = r.styles.Tag.Render(ansi.Truncate("#"+strings.Join(e.Tags, " #"), inner, "…"))
	} else if !e.CreationTime.IsZero() {
		footer = r.styles.Dim.Render(metadata.FormatCreationTime(e.CreationTime))
	}
	if rows > 3 {
		lines = append(lines[:rows-1], footer)
	}
	if len(lines) > rows {
		lines = lines[:rows]
	}

	style := r.styles.Card
	if selected {
		style = r.styles.CardSelected
	}
	box := style.Width(inner + 2).Height(rows).Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().PaddingRight(1).Render(box)
}

func (r *CardRenderer) renderBadge(b *ProgramBadge, spinner string) string {
	if b.Loading {
		return r.styles.StatusLoading.Render(spinner)
	}
	label := string(b.Status)
	if label == "" {
		label = "UNKNOWN"
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(GetStatusColor(b.Status)))
	icon := "▶"
	if b.Status.IsActive() {
		icon = "■"
	}
	return style.Render(fmt.Sprintf("%s %s", icon, label))
}

// wrap breaks s into at most n lines of width w, marking truncation
func wrap(s string, w, n int) []string {
	if n <= 0 || s == "" {
		return nil
	}
	var (
		out  []string
		line string
	)
	for _, word := range strings.Fields(s) {
		switch {
		case line == "":
			line = word
		case lipgloss.Width(line)+1+lipgloss.Width(word) <= w:
			line += " " + word
		default:
			out = append(out, line)
			line = word
		}
		if len(out) == n {
			break
		}
	}
	if line != "" && len(out) < n {
		out = append(out, line)
	}
	for i := range out {
		out[i] = ansi.Truncate(out[i], w, "…")
	}
	return out
}

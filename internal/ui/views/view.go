package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/lipgloss"

	"metagrip/internal/domain"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width    int
	Height   int
	Columns  int
	CardW    int
	CardH    int
	Entities []domain.Entity
	Badges   map[string]*ProgramBadge // by entity key
	Selected int

	Query     domain.QueryState
	Location  string
	Namespace string
	Page      int
	NumPages  int
	Total     int
	Loading   bool
	Errored   bool
	Spinner   string

	StatusMessage string
	InputMode     string // "", "search", "location", "sort", "filter"
	InputPrompt   string
	TextInput     string
	SortIndex     int
	FilterIndex   int

	Modal   *ModalState
	Splash  *SplashState
	Overlay string // help or other popup content
	Help    help.Model
	Keys    help.KeyMap
}

// ModalState is the start/stop confirmation
type ModalState struct {
	Title    string
	Question string
	Error    string
	Detail   string
	Loading  bool
}

// SplashState is the welcome screen
type SplashState struct {
	DontShow  bool
	ShowIntro bool
	Err       string
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	cardRender  *CardRenderer
	popupRender *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:      styles,
		cardRender:  NewCardRenderer(styles),
		popupRender: NewPopupRenderer(styles),
	}
}

// Styles exposes the renderer's styles
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.renderTitleLine(state))
	content.WriteString("\n")
	content.WriteString(r.renderFilterLine(state))
	content.WriteString("\n")

	switch state.InputMode {
	case "sort":
		content.WriteString(r.renderSortOptions(state))
	case "filter":
		content.WriteString(r.styles.Dim.Render("↑/↓ choose • space or 1-5 toggle • enter/esc close"))
	case "search", "location":
		content.WriteString(r.styles.Confirm.Render(state.InputPrompt) + state.TextInput)
	default:
		if state.StatusMessage != "" {
			content.WriteString(r.styles.Status.Render(state.StatusMessage))
		} else {
			content.WriteString(r.styles.Location.Render(state.Location))
		}
	}
	content.WriteString("\n\n")

	switch {
	case state.Errored:
		content.WriteString(r.styles.StatusError.Render("Search failed. Press r to retry."))
	case len(state.Entities) == 0 && state.Loading:
		content.WriteString(r.styles.Dim.Render(state.Spinner + " Searching..."))
	case len(state.Entities) == 0:
		content.WriteString(r.styles.Dim.Render("No entities match. Try another search or more filters."))
	default:
		content.WriteString(r.RenderGrid(state))
	}

	footer := r.renderFooter(state)

	// Push the footer to the bottom
	currentLines := strings.Count(content.String(), "\n") + 1
	availableLines := state.Height - 2
	if availableLines <= 0 {
		availableLines = 22
	}
	if pad := availableLines - currentLines - lipgloss.Height(footer); pad > 0 {
		content.WriteString(strings.Repeat("\n", pad))
	}
	content.WriteString("\n")
	content.WriteString(footer)

	mainStyle := r.styles.Main.MaxHeight(state.Height)
	finalContent := mainStyle.Render(content.String())

	switch {
	case state.Splash != nil:
		return r.popupRender.RenderPopupOverlay(finalContent, r.renderSplash(*state.Splash), state.Height, state.Width, r.styles.SplashBox)
	case state.Modal != nil:
		return r.popupRender.RenderPopupOverlay(finalContent, r.renderModal(*state.Modal, state.Spinner), state.Height, state.Width, r.styles.ModalBox)
	case state.Overlay != "":
		return r.popupRender.RenderPopupOverlay(finalContent, state.Overlay, state.Height, state.Width, r.styles.InfoBox)
	}
	return finalContent
}

func (r *Renderer) renderTitleLine(state ViewState) string {
	logo := r.styles.Title.Render("metagrip")
	right := r.styles.Dim.Render(fmt.Sprintf("ns:%s", state.Namespace))
	if state.Loading {
		right = r.styles.StatusLoading.Render(state.Spinner+" Searching") + "  " + right
	}

	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	padding := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + right
}

func (r *Renderer) renderFilterLine(state ViewState) string {
	var parts []string
	for i, c := range domain.Categories {
		mark := "[ ]"
		if state.Query.HasFilter(c) {
			mark = "[x]"
		}
		label := fmt.Sprintf("%s %d %s", mark, i+1, c.DisplayName())
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(GetCategoryColor(c)))
		if !state.Query.HasFilter(c) {
			style = r.styles.Dim
		}
		if state.InputMode == "filter" && i == state.FilterIndex {
			style = style.Inherit(r.styles.HighlightBg)
		}
		parts = append(parts, style.Render(label))
	}
	sortLabel := r.styles.Filter.Render("Sort: " + state.Query.Sort.DisplayName())
	query := ""
	if state.Query.Query != "" {
		query = "  " + r.styles.Highlight.Render("“"+state.Query.Query+"”")
	}
	return strings.Join(parts, "  ") + "   " + sortLabel + query
}

// RenderGrid lays the cards out in rows of Columns
func (r *Renderer) RenderGrid(state ViewState) string {
	cols := max(state.Columns, 1)
	var rows []string
	for start := 0; start < len(state.Entities); start += cols {
		end := min(start+cols, len(state.Entities))
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			e := state.Entities[i]
			cards = append(cards, r.cardRender.RenderCard(e, state.Badges[e.Key], i == state.Selected, state.CardW, state.CardH, state.Spinner))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (r *Renderer) renderFooter(state ViewState) string {
	p := paginator.New()
	p.Type = paginator.Arabic
	// an empty result still reads 1/1
	p.SetTotalPages(max(state.NumPages, 1))
	p.Page = min(max(state.Page, 1), p.TotalPages) - 1

	info := fmt.Sprintf("Page %s  •  %d results", p.View(), state.Total)
	line := r.styles.Status.Render(info)
	if state.Keys != nil {
		line += "\n" + state.Help.View(state.Keys)
	}
	return line
}

// renderSortOptions renders the sort picker
func (r *Renderer) renderSortOptions(state ViewState) string {
	var parts []string
	for i, opt := range domain.SortOptions {
		label := opt.DisplayName()
		if i == state.SortIndex {
			parts = append(parts, r.styles.Highlight.Render("› "+label))
		} else {
			parts = append(parts, r.styles.Dim.Render("  "+label))
		}
	}
	return "Sort by: " + strings.Join(parts, " ") + "  " + r.styles.Dim.Render("enter apply • esc cancel")
}

func (r *Renderer) renderModal(m ModalState, spinner string) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(m.Title))
	b.WriteString("\n\n")
	if m.Error != "" {
		b.WriteString(r.styles.StatusError.Render(m.Error))
		if m.Detail != "" {
			b.WriteString("\n")
			b.WriteString(r.styles.Dim.Render(m.Detail))
		}
		b.WriteString("\n\n")
		b.WriteString(r.styles.Help.Render("esc close"))
		return b.String()
	}
	b.WriteString(m.Question)
	b.WriteString("\n\n")
	if m.Loading {
		b.WriteString(r.styles.StatusLoading.Render(spinner + " working..."))
	} else {
		b.WriteString(r.styles.Help.Render("y confirm • esc cancel"))
	}
	return b.String()
}

func (r *Renderer) renderSplash(s SplashState) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Welcome to metagrip"))
	b.WriteString("\n\n")
	b.WriteString("Browse applications, artifacts, datasets, programs and streams.\n")
	b.WriteString("Search with /, filter with f, sort with s, page with n and p.\n")

	if s.ShowIntro {
		b.WriteString("\n")
		b.WriteString(r.styles.Dim.Render(introText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	check := "[ ]"
	if s.DontShow {
		check = "[x]"
	}
	b.WriteString(fmt.Sprintf("%s Don't show this again (space)\n", check))
	if s.Err != "" {
		b.WriteString(r.styles.StatusError.Render(s.Err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(r.styles.Help.Render("v intro • enter get started"))
	return b.String()
}

const introText = `Every card is a metadata entity. Program cards show their
live status; press space on one to start or stop it. The location
line mirrors your search and can be pasted back with : to return
to the same results.`

package views

import (
	"github.com/charmbracelet/lipgloss"

	"metagrip/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Confirm       lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Filter        lipgloss.Style
	Location      lipgloss.Style
	InfoBox       lipgloss.Style
	ModalBox      lipgloss.Style
	SplashBox     lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Highlight     lipgloss.Style
	HighlightBg   lipgloss.Style
	Card          lipgloss.Style
	CardSelected  lipgloss.Style
	CardTitle     lipgloss.Style
	Tag           lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusLoading lipgloss.Style
	StatusSuccess lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Confirm: lipgloss.NewStyle().Bold(true),
		Dim:     lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Filter:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Location: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		InfoBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(1).
			Width(60).
			BorderForeground(lipgloss.Color("241")),
		ModalBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2).
			Width(50).
			BorderForeground(lipgloss.Color("99")),
		SplashBox: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(1, 3).
			Width(64).
			BorderForeground(lipgloss.Color("39")),
		Help: lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().
			Padding(1, 2),
		Highlight:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		HighlightBg: lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		CardSelected: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1),
		CardTitle:     lipgloss.NewStyle().Bold(true),
		Tag:           lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
	}
}

// GetStatusColor returns the color for a program status
func GetStatusColor(status domain.ProgramStatus) string {
	switch status {
	case domain.StatusRunning:
		return "78" // green
	case domain.StatusStarting:
		return "214" // yellow
	case domain.StatusStopped:
		return "245" // gray
	case domain.StatusLoading:
		return "241"
	default:
		return "203" // red, unknown after a failure
	}
}

// GetCategoryColor returns the accent color of an entity kind
func GetCategoryColor(c domain.CategoryID) string {
	switch c {
	case domain.CategoryApp:
		return "39"
	case domain.CategoryArtifact:
		return "141"
	case domain.CategoryDataset:
		return "214"
	case domain.CategoryProgram:
		return "78"
	case domain.CategoryStream:
		return "51"
	default:
		return "252"
	}
}

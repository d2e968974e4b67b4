package ui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/noborus/ov/oviewer"
	"gopkg.in/yaml.v3"

	"metagrip/internal/domain"
	"metagrip/internal/metadata"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct {
	titleStyle   lipgloss.Style
	sectionStyle lipgloss.Style
	keyStyle     lipgloss.Style
	descStyle    lipgloss.Style
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		sectionStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginTop(1),
		keyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		descStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

type helpEntry struct {
	keys string
	desc string
}

var helpSections = []struct {
	title   string
	entries []helpEntry
}{
	{"Navigation", []helpEntry{
		{"↑/↓/←/→, hjkl", "Move between cards"},
		{"gg/G", "First/last card"},
		{"n, ], PgDn", "Next page"},
		{"p, [, PgUp", "Previous page"},
		{"b, Backspace", "Back to previous location"},
	}},
	{"Search & Filter", []helpEntry{
		{"/", "Search entities (prefix match)"},
		{"f", "Toggle category filters"},
		{"1-5", "Toggle a category in the filter menu"},
		{"s", "Sort options"},
		{":, o", "Go to a location, e.g. ?q=purch&page=2"},
	}},
	{"Entities", []helpEntry{
		{"Enter", "Show entity details"},
		{"Space, a", "Start or stop the selected program"},
		{"E", "List ETL applications and drafts"},
		{"r", "Refresh the current page"},
	}},
	{"Other", []helpEntry{
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}},
}

// RenderHelpContent renders the key reference
func (r *HelpRenderer) RenderHelpContent() string {
	var help strings.Builder

	help.WriteString(r.titleStyle.Render("metagrip Help"))
	help.WriteString("\n")

	for i, section := range helpSections {
		if i > 0 {
			help.WriteString("\n")
		}
		help.WriteString(r.sectionStyle.Render(section.title))
		help.WriteString("\n")
		for _, e := range section.entries {
			help.WriteString(fmt.Sprintf("  %-14s %s\n", r.keyStyle.Render(e.keys), r.descStyle.Render(e.desc)))
		}
	}
	return strings.TrimRight(help.String(), "\n")
}

// entityDetail is the pager view of one entity
type entityDetail struct {
	ID          string            `yaml:"id"`
	Type        string            `yaml:"type"`
	Namespace   string            `yaml:"namespace"`
	Application string            `yaml:"application,omitempty"`
	ProgramType string            `yaml:"programType,omitempty"`
	Version     string            `yaml:"version,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Created     string            `yaml:"created,omitempty"`
	Status      string            `yaml:"status,omitempty"`
	Tags        []string          `yaml:"tags,omitempty"`
	Properties  map[string]string `yaml:"properties,omitempty"`
}

// RenderEntityDetail renders an entity as YAML for the pager
func RenderEntityDetail(e domain.Entity, status domain.ProgramStatus) (string, error) {
	d := entityDetail{
		ID:          e.ID,
		Type:        string(e.Type),
		Namespace:   e.Namespace,
		Application: e.Application,
		ProgramType: e.ProgramType,
		Version:     e.Version,
		Description: e.Description,
		Status:      string(status),
		Tags:        e.Tags,
		Properties:  e.Properties,
	}
	if !e.CreationTime.IsZero() {
		d.Created = metadata.FormatCreationTime(e.CreationTime)
	}
	out, err := yaml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to render entity %s: %w", e.ID, err)
	}
	return string(out), nil
}

// RenderETLTable renders the ETL listing as a table
func RenderETLTable(apps []domain.ETLApp) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "TEMPLATE", "STATUS", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, a := range apps {
		t.Row(a.Name, a.Template, a.Status, a.Description)
	}
	return t.Render()
}

// pagerCommand runs ov on content as a tea.ExecCommand. ov opens the
// terminal itself, so the standard streams are ignored.
type pagerCommand struct {
	title   string
	content string
}

func (p *pagerCommand) SetStdin(io.Reader)  {}
func (p *pagerCommand) SetStdout(io.Writer) {}
func (p *pagerCommand) SetStderr(io.Writer) {}

func (p *pagerCommand) Run() error {
	root, err := oviewer.NewRoot(strings.NewReader(p.title + "\n\n" + p.content))
	if err != nil {
		return fmt.Errorf("failed to open pager: %w", err)
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// showInPager suspends the TUI and pages content
func showInPager(title, content string) tea.Cmd {
	return tea.Exec(&pagerCommand{title: title, content: content}, func(err error) tea.Msg {
		return pagerDoneMsg{title: title, err: err}
	})
}

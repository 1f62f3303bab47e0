package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scormlens/pkg/course"
)

// Tab styles
var (
	tabActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).
			Border(lipgloss.NormalBorder(), false, false, true, false).BorderForeground(colorCyan).Padding(0, 1)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	tabDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// chromeHeight is the number of lines taken by the header and footer.
const chromeHeight = 6

// =============================================================================
// ViewerModel - tabbed analysis viewer
// =============================================================================

// viewerTab is one page of the viewer.
type viewerTab struct {
	title string
	lines []string
}

// ViewerModel is the bubbletea model for browsing one analysis. Every tab
// is rendered once up front; switching tabs only changes what is shown.
type ViewerModel struct {
	Source string
	Tabs   []viewerTab
	Active int
	Offset int
	Height int
	Width  int
}

// NewViewerModel renders every view of m into a tab.
func NewViewerModel(m *course.Model) ViewerModel {
	views := []string{viewSummary, viewFindings, viewContent, viewTree, viewRaw}
	tabs := make([]viewerTab, len(views))
	for i, v := range views {
		body := strings.TrimRight(renderView(m, v, true), "\n")
		tabs[i] = viewerTab{title: viewTitle(v), lines: strings.Split(body, "\n")}
	}
	return ViewerModel{Source: m.Source, Tabs: tabs, Height: 20, Width: 80}
}

func (m ViewerModel) Init() tea.Cmd {
	return nil
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.selectTab(m.Active + 1)
		case "shift+tab", "left", "h":
			m.selectTab(m.Active - 1)
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			if i := int(key[0] - '1'); i < len(m.Tabs) {
				m.selectTab(i)
			}
		case "up", "k":
			m.scroll(-1)
		case "down", "j":
			m.scroll(1)
		case "pgup", "b":
			m.scroll(-m.Height)
		case "pgdown", "f", " ":
			m.scroll(m.Height)
		case "home", "g":
			m.Offset = 0
		case "end", "G":
			m.scroll(len(m.Tabs[m.Active].lines))
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = max(msg.Height-chromeHeight, 5)
		m.scroll(0)
	}
	return m, nil
}

// selectTab activates tab i, wrapping around at either end.
func (m *ViewerModel) selectTab(i int) {
	n := len(m.Tabs)
	m.Active = ((i % n) + n) % n
	m.Offset = 0
}

// scroll moves the window by delta lines, clamped to the tab's content.
func (m *ViewerModel) scroll(delta int) {
	limit := max(len(m.Tabs[m.Active].lines)-m.Height, 0)
	m.Offset = min(max(m.Offset+delta, 0), limit)
}

func (m ViewerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Source))
	b.WriteString("\n")

	headers := make([]string, len(m.Tabs))
	for i, t := range m.Tabs {
		label := fmt.Sprintf("%d %s", i+1, t.title)
		if i == m.Active {
			headers[i] = tabActiveStyle.Render(label)
		} else {
			headers[i] = tabInactiveStyle.Render(label)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Bottom, headers...))
	b.WriteString("\n\n")

	lines := m.Tabs[m.Active].lines
	end := min(m.Offset+m.Height, len(lines))
	for _, line := range lines[m.Offset:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for i := end - m.Offset; i < m.Height; i++ {
		b.WriteString("\n")
	}

	position := ""
	if len(lines) > m.Height {
		position = fmt.Sprintf("  [%d-%d/%d]", m.Offset+1, end, len(lines))
	}
	b.WriteString(tabDimStyle.Render("←/→ tabs  ↑/↓ scroll  q quit" + position))

	return b.String()
}

// =============================================================================
// view command
// =============================================================================

// viewCommand creates the interactive viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var opts analysisOptions

	cmd := &cobra.Command{
		Use:   "view <package.zip|url|->",
		Short: "Browse an analysis in an interactive terminal viewer",
		Long: `Open a tabbed viewer with the summary, validation findings, content
map, item hierarchy and raw manifest of a SCORM package.`,
		Args: packageArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.analyze(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewViewerModel(m), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	opts.register(cmd)
	return cmd
}

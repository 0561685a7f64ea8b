package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutview/pkg/snapshot"
)

// exploreCommand creates the interactive design browser.
func (c *CLI) exploreCommand() *cobra.Command {
	var files designFlags

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse the instances, nets and layers of a design",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), &files)
		},
	}
	files.register(cmd)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, flags *designFlags) error {
	files, err := flags.files()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, backendNone)
	if err != nil {
		return err
	}
	defer runner.Close()

	loaded, err := runner.LoadDesign(ctx, files)
	if err != nil {
		return err
	}
	defer loaded.Close()

	_, err = tea.NewProgram(newExploreModel(loaded.Design), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// exploreModel - Interactive design browser
// =============================================================================

type exploreTab int

const (
	tabInstances exploreTab = iota
	tabNets
	tabLayers
	tabCount
)

func (t exploreTab) String() string {
	return [...]string{"Instances", "Nets", "Layers"}[t]
}

var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorGray)
	listDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	detailStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// exploreModel is the bubbletea model of the explore command. Each tab
// keeps its own cursor and scroll offset.
type exploreModel struct {
	design *snapshot.Design
	tab    exploreTab
	cursor [tabCount]int
	offset [tabCount]int
	height int
}

func newExploreModel(d *snapshot.Design) exploreModel {
	return exploreModel{design: d, height: 15}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % tabCount
		case "shift+tab", "left", "h":
			m.tab = (m.tab + tabCount - 1) % tabCount
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.height)
		case "pgdown":
			m.move(m.height)
		case "home", "g":
			m.move(-m.rowCount())
		case "end", "G":
			m.move(m.rowCount())
		}
	case tea.WindowSizeMsg:
		// Room for the title, tabs, table borders and the detail pane.
		m.height = msg.Height - 16
		if m.height < 5 {
			m.height = 5
		}
		m.clampOffset()
	}
	return m, nil
}

// move shifts the cursor of the current tab by delta rows, clamped to the
// list, and scrolls to keep it visible.
func (m *exploreModel) move(delta int) {
	n := m.rowCount()
	if n == 0 {
		return
	}
	cur := m.cursor[m.tab] + delta
	cur = max(0, min(cur, n-1))
	m.cursor[m.tab] = cur
	m.clampOffset()
}

func (m *exploreModel) clampOffset() {
	cur, off := m.cursor[m.tab], m.offset[m.tab]
	if cur < off {
		off = cur
	}
	if cur >= off+m.height {
		off = cur - m.height + 1
	}
	m.offset[m.tab] = off
}

func (m exploreModel) rowCount() int {
	switch m.tab {
	case tabInstances:
		return len(m.design.Instances)
	case tabNets:
		return len(m.design.Nets)
	case tabLayers:
		return len(m.design.Layers)
	}
	return 0
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.design.Name))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("utilization %.2f%%", m.design.Utilization*100)))
	b.WriteString("\n")
	for t := exploreTab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%s (%d)", t, m.countOf(t))
		if t == m.tab {
			b.WriteString(tabActiveStyle.Render(label))
		} else {
			b.WriteString(tabInactiveStyle.Render(label))
		}
		b.WriteString("   ")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab switch  ↑/↓ navigate  q quit"))
	b.WriteString("\n")

	if m.rowCount() == 0 {
		b.WriteString(listDimStyle.Render("\n  (empty)\n"))
		return b.String()
	}

	b.WriteString(m.listTable().Render())
	b.WriteString("\n")
	b.WriteString(detailStyle.Render(m.detail()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor[m.tab]+1, m.rowCount())))
	return b.String()
}

func (m exploreModel) countOf(t exploreTab) int {
	saved := m.tab
	m.tab = t
	n := m.rowCount()
	m.tab = saved
	return n
}

// listTable renders the visible window of the current tab.
func (m exploreModel) listTable() *table.Table {
	var headers []string
	var rows [][]string
	start, end := m.offset[m.tab], min(m.offset[m.tab]+m.height, m.rowCount())

	switch m.tab {
	case tabInstances:
		headers = []string{"Name", "Master", "Type", "Orient", "Placed", "Pins"}
		for _, in := range m.design.Instances[start:end] {
			rows = append(rows, []string{in.Name, in.Master, in.MasterType.String(),
				in.Orientation.String(), yesNo(in.IsPlaced), strconv.Itoa(len(in.Pins))})
		}
	case tabNets:
		headers = []string{"Name", "Wire", "Pins", "Edges", "Special"}
		for _, n := range m.design.Nets[start:end] {
			rows = append(rows, []string{n.Name, n.WireType.String(),
				strconv.Itoa(len(n.Pins)), strconv.Itoa(len(n.Edges)), yesNo(n.IsSpecial)})
		}
	case tabLayers:
		headers = []string{"Name", "Type", "Direction", "Width", "Spacing"}
		for _, l := range m.design.Layers[start:end] {
			rows = append(rows, []string{layerName(l), l.Type.String(), l.Direction.String(),
				strconv.Itoa(l.Width), strconv.Itoa(l.Spacing)})
		}
	}

	cursor := m.cursor[m.tab] - start
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader.Padding(0, 1)
			case row == cursor:
				return lipgloss.NewStyle().Bold(true).Foreground(colorGreen).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
		})
}

// detail describes the selected row.
func (m exploreModel) detail() string {
	i := m.cursor[m.tab]
	switch m.tab {
	case tabInstances:
		return instanceDetail(m.design.Instances[i])
	case tabNets:
		return netDetail(m.design.Nets[i])
	case tabLayers:
		return layerDetail(m.design.Layers[i])
	}
	return ""
}

func instanceDetail(in *snapshot.Instance) string {
	lines := []string{StyleTitle.Render(in.Name) + " " + listDimStyle.Render(in.Master)}
	if in.Location != nil {
		lines = append(lines, fmt.Sprintf("location  (%d, %d)", in.Location.X, in.Location.Y))
	}
	if r := in.BoundingBox; r != nil {
		lines = append(lines, fmt.Sprintf("bbox      (%d, %d) - (%d, %d)", r.XMin, r.YMin, r.XMax, r.YMax))
	}
	if in.IsFiller {
		lines = append(lines, "filler")
	}
	var pins []string
	for _, p := range in.Pins {
		net := "-"
		if p.Net != nil {
			net = p.Net.Name
		}
		pins = append(pins, p.Name+"→"+net)
	}
	if len(pins) > 0 {
		lines = append(lines, "pins      "+strings.Join(pins, "  "))
	}
	return strings.Join(lines, "\n")
}

func netDetail(n *snapshot.Net) string {
	lines := []string{StyleTitle.Render(n.Name) + " " + listDimStyle.Render(n.WireType.String())}
	var pins []string
	for _, p := range n.Pins {
		switch {
		case p.IsBlock || p.Instance == nil:
			pins = append(pins, "PIN "+p.Name)
		default:
			pins = append(pins, p.Instance.Name+"/"+p.Name)
		}
	}
	if len(pins) > 0 {
		lines = append(lines, "pins      "+strings.Join(pins, "  "))
	}
	if len(n.Edges) > 0 {
		counts := map[snapshot.EdgeType]int{}
		var order []snapshot.EdgeType
		for _, e := range n.Edges {
			if counts[e.Type] == 0 {
				order = append(order, e.Type)
			}
			counts[e.Type]++
		}
		var parts []string
		for _, t := range order {
			parts = append(parts, fmt.Sprintf("%d %s", counts[t], t))
		}
		lines = append(lines, "edges     "+strings.Join(parts, ", "))
	}
	return strings.Join(lines, "\n")
}

func layerDetail(l *snapshot.Layer) string {
	lines := []string{StyleTitle.Render(layerName(l)) + " " + listDimStyle.Render(l.Type.String())}
	if l.LowerLayer != nil {
		lines = append(lines, "below     "+l.LowerLayer.Name)
	}
	if l.UpperLayer != nil {
		lines = append(lines, "above     "+l.UpperLayer.Name)
	}
	if l.Area > 0 {
		lines = append(lines, fmt.Sprintf("min area  %g", l.Area))
	}
	return strings.Join(lines, "\n")
}

func layerName(l *snapshot.Layer) string {
	if l.Alias != "" {
		return l.Name + " (" + l.Alias + ")"
	}
	return l.Name
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

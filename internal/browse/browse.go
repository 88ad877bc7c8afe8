// Package browse is an interactive terminal browser for an analyzed binary.
package browse

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ismailtsdln/BinaryInsight/internal/binfile"
)

// maxSymbolRows caps the symbols tab so huge symbol tables stay responsive.
const maxSymbolRows = 100

var tabTitles = []string{"Info", "Sections", "Symbols", "Strings", "Hex"}

const (
	tabInfo = iota
	tabSections
	tabSymbols
	tabStrings
	tabHex

	tabCount
)

const (
	styleReset     = "\x1b[0m"
	styleBold      = "\x1b[1m"
	styleDim       = "\x1b[2m"
	styleHighlight = "\x1b[1;33m"
)

type model struct {
	bin    *binfile.BinaryFile
	tab    int
	width  int
	height int
	// scroll holds the first visible row per list tab.
	scroll [tabCount]int
	hex    hexViewer
}

func newModel(bin *binfile.BinaryFile) model {
	return model{bin: bin, width: 80, height: 24}
}

// Run starts the browser and blocks until the user quits.
func Run(bin *binfile.BinaryFile) error {
	p := tea.NewProgram(newModel(bin), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right":
			m.tab = (m.tab + 1) % len(tabTitles)
		case "shift+tab", "left":
			m.tab = (m.tab + len(tabTitles) - 1) % len(tabTitles)
		case "down", "j":
			m.lineDown()
		case "up", "k":
			m.lineUp()
		case "pgdown":
			m.pageDown()
		case "pgup":
			m.pageUp()
		}
	}
	return m, nil
}

func (m *model) lineDown() {
	if m.tab == tabHex {
		m.hex.scrollDown(len(m.bin.Data))
		return
	}
	if m.scroll[m.tab]+1 < m.rowCount() {
		m.scroll[m.tab]++
	}
}

func (m *model) lineUp() {
	if m.tab == tabHex {
		m.hex.scrollUp()
		return
	}
	if m.scroll[m.tab] > 0 {
		m.scroll[m.tab]--
	}
}

func (m *model) pageDown() {
	if m.tab == tabHex {
		m.hex.pageDown(len(m.bin.Data), m.bodyRows())
		return
	}
	m.scroll[m.tab] = min(m.scroll[m.tab]+m.bodyRows(), max(m.rowCount()-1, 0))
}

func (m *model) pageUp() {
	if m.tab == tabHex {
		m.hex.pageUp(m.bodyRows())
		return
	}
	m.scroll[m.tab] = max(m.scroll[m.tab]-m.bodyRows(), 0)
}

// rowCount is the number of scrollable rows on the active list tab.
func (m *model) rowCount() int {
	switch m.tab {
	case tabSections:
		return len(m.bin.Info.Sections)
	case tabSymbols:
		return min(len(m.bin.Info.Symbols), maxSymbolRows)
	case tabStrings:
		return len(m.bin.Info.Strings)
	default:
		return 0
	}
}

// bodyRows is the number of content rows below the tab bar and headers.
func (m *model) bodyRows() int {
	return max(m.height-4, 1)
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	switch m.tab {
	case tabInfo:
		b.WriteString(m.infoView())
	case tabSections:
		b.WriteString(m.sectionsView())
	case tabSymbols:
		b.WriteString(m.symbolsView())
	case tabStrings:
		b.WriteString(m.stringsView())
	case tabHex:
		b.WriteString(m.hex.render(m.bin.Data, m.bodyRows()))
	}

	b.WriteString("\n")
	b.WriteString(styleDim + "q: quit · tab/←→: switch · j/k: scroll · pgup/pgdn: page" + styleReset)
	return b.String()
}

func (m model) tabBar() string {
	parts := make([]string, len(tabTitles))
	for i, title := range tabTitles {
		if i == m.tab {
			parts[i] = styleHighlight + "[" + title + "]" + styleReset
		} else {
			parts[i] = " " + title + " "
		}
	}
	return styleBold + "Binary Insight: " + m.bin.Name + styleReset + "  " + strings.Join(parts, " ")
}

func (m model) infoView() string {
	info := m.bin.Info
	var b strings.Builder
	fmt.Fprintf(&b, "File Name: %s\n", m.bin.Name)
	fmt.Fprintf(&b, "Format:    %s\n", info.Format)
	fmt.Fprintf(&b, "Arch:      %s\n", info.Arch)
	fmt.Fprintf(&b, "Entry Pt:  0x%x\n", info.EntryPoint)
	fmt.Fprintf(&b, "Size:      %d bytes\n", len(m.bin.Data))
	b.WriteString("\n")
	fmt.Fprintf(&b, "PIE: %t  NX: %t  RELRO: %t  Canary: %t\n", info.Security.PIE, info.Security.NX, info.Security.RELRO, info.Security.Canary)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total Sections: %d\n", len(info.Sections))
	fmt.Fprintf(&b, "Total Symbols:  %d\n", len(info.Symbols))
	fmt.Fprintf(&b, "Total Strings:  %d\n", len(info.Strings))
	return b.String()
}

func (m model) sectionsView() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%-24s %-18s %-18s%s\n", styleBold, "Name", "Address", "Size", styleReset)

	rows := m.visible(len(m.bin.Info.Sections))
	for _, s := range m.bin.Info.Sections[rows.start:rows.end] {
		fmt.Fprintf(&b, "%-24s 0x%-16x 0x%-16x\n", s.Name, s.Addr, s.Size)
	}
	return b.String()
}

func (m model) symbolsView() string {
	var b strings.Builder
	total := min(len(m.bin.Info.Symbols), maxSymbolRows)
	fmt.Fprintf(&b, "%sSymbols (first %d of %d)%s\n", styleBold, total, len(m.bin.Info.Symbols), styleReset)

	rows := m.visible(total)
	for _, sym := range m.bin.Info.Symbols[rows.start:rows.end] {
		name := sym.Name
		if name == "" {
			name = "<unknown>"
		}
		fmt.Fprintf(&b, "%-48s 0x%x\n", name, sym.Addr)
	}
	return b.String()
}

func (m model) stringsView() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sStrings (%d)%s\n", styleBold, len(m.bin.Info.Strings), styleReset)

	rows := m.visible(len(m.bin.Info.Strings))
	for _, s := range m.bin.Info.Strings[rows.start:rows.end] {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return b.String()
}

type rowRange struct {
	start, end int
}

// visible clamps the active tab's scroll offset into total rows and returns
// the window that fits the terminal height.
func (m model) visible(total int) rowRange {
	start := min(m.scroll[m.tab], max(total-1, 0))
	return rowRange{start: start, end: min(start+m.bodyRows(), total)}
}

package browse

import (
	"debug/elf"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ismailtsdln/BinaryInsight/internal/binfile"
	"github.com/ismailtsdln/BinaryInsight/internal/testbin"
)

func testModel(t *testing.T) model {
	t.Helper()
	data := testbin.ELF(testbin.ELFOptions{
		Type:     elf.ET_DYN,
		Entry:    0x1040,
		GNUStack: true,
		Relro:    true,
		Symbols:  []string{"main", "__stack_chk_fail"},
	})
	info, err := binfile.Parse(data, binfile.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return newModel(&binfile.BinaryFile{Name: "sample.so", Data: data, Info: info})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(model)
	if !ok {
		t.Fatalf("Update() returned %T, want model", next)
	}
	return got
}

func TestTabCycling(t *testing.T) {
	m := testModel(t)

	for want := 1; want < tabCount; want++ {
		m = update(t, m, key("tab"))
		if m.tab != want {
			t.Fatalf("after %d tabs, tab = %d", want, m.tab)
		}
	}
	m = update(t, m, key("tab"))
	if m.tab != 0 {
		t.Errorf("tab did not wrap, got %d", m.tab)
	}
	m = update(t, m, key("shift+tab"))
	if m.tab != tabCount-1 {
		t.Errorf("shift+tab did not wrap backwards, got %d", m.tab)
	}
}

func TestQuitKeys(t *testing.T) {
	m := testModel(t)
	for _, k := range []string{"q"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Errorf("key %q did not quit", k)
		}
	}
}

func TestInfoView(t *testing.T) {
	m := testModel(t)
	out := m.View()

	for _, want := range []string{
		"Binary Insight: sample.so",
		"Format:    ELF",
		"Arch:      x86_64",
		"Entry Pt:  0x1040",
		"Total Sections: 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("info view missing %q\n%s", want, out)
		}
	}
}

func TestSectionsView(t *testing.T) {
	m := testModel(t)
	m.tab = tabSections
	out := m.View()

	for _, want := range []string{".symtab", ".strtab", ".shstrtab"} {
		if !strings.Contains(out, want) {
			t.Errorf("sections view missing %q", want)
		}
	}
}

func TestSymbolsView(t *testing.T) {
	m := testModel(t)
	m.tab = tabSymbols
	out := m.View()

	if !strings.Contains(out, "__stack_chk_fail") {
		t.Errorf("symbols view missing canary symbol\n%s", out)
	}
}

func TestStringsViewScroll(t *testing.T) {
	m := testModel(t)
	m.tab = tabStrings
	m.height = 5 // one body row

	first := m.bin.Info.Strings[0]
	if out := m.View(); !strings.Contains(out, first) {
		t.Fatalf("strings view missing first string %q", first)
	}

	m = update(t, m, key("down"))
	if m.scroll[tabStrings] != 1 {
		t.Errorf("scroll = %d, want 1", m.scroll[tabStrings])
	}
	m = update(t, m, key("up"))
	m = update(t, m, key("up"))
	if m.scroll[tabStrings] != 0 {
		t.Errorf("scroll clamped low = %d, want 0", m.scroll[tabStrings])
	}
}

func TestHexScrollKeys(t *testing.T) {
	m := testModel(t)
	m.tab = tabHex

	m = update(t, m, key("down"))
	if m.hex.offset != hexBytesPerRow {
		t.Errorf("offset = %d, want %d", m.hex.offset, hexBytesPerRow)
	}
	m = update(t, m, key("up"))
	m = update(t, m, key("up"))
	if m.hex.offset != 0 {
		t.Errorf("offset clamped = %d, want 0", m.hex.offset)
	}
}

func TestWindowResize(t *testing.T) {
	m := testModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
}

func TestHexRender(t *testing.T) {
	data := []byte("Hello, World! This buffer spans more than one hex row.")
	var h hexViewer
	out := h.render(data, 10)

	if !strings.Contains(out, "00000000:") {
		t.Error("render missing first offset")
	}
	if !strings.Contains(out, "48 65 6c 6c 6f") {
		t.Errorf("render missing hex bytes\n%s", out)
	}
	if !strings.Contains(out, "|Hello, World! Th|") {
		t.Errorf("render missing ascii column\n%s", out)
	}
}

func TestHexRenderNonPrintable(t *testing.T) {
	var h hexViewer
	out := h.render([]byte{0x00, 0x41, 0x7f, 0x42}, 1)
	if !strings.Contains(out, "|.A.B|") {
		t.Errorf("non-printable bytes not dotted\n%s", out)
	}
}

func TestHexScrollBounds(t *testing.T) {
	var h hexViewer
	data := make([]byte, 40) // three rows

	h.scrollUp()
	if h.offset != 0 {
		t.Errorf("scroll above start: offset = %d", h.offset)
	}
	h.scrollDown(len(data))
	h.scrollDown(len(data))
	if h.offset != 32 {
		t.Errorf("offset = %d, want 32", h.offset)
	}
	h.scrollDown(len(data))
	if h.offset != 32 {
		t.Errorf("scrolled past last row: offset = %d", h.offset)
	}
}

func TestHexPageScroll(t *testing.T) {
	var h hexViewer
	data := make([]byte, 1024)

	h.pageDown(len(data), 10)
	if h.offset != 160 {
		t.Errorf("after page down, offset = %d, want 160", h.offset)
	}
	h.pageUp(10)
	if h.offset != 0 {
		t.Errorf("after page up, offset = %d, want 0", h.offset)
	}
	h.pageUp(10)
	if h.offset != 0 {
		t.Errorf("page up below start: offset = %d", h.offset)
	}
}

func TestHexRenderPastEnd(t *testing.T) {
	h := hexViewer{offset: 64}
	out := h.render([]byte("short"), 10)
	if strings.Contains(out, "|") {
		t.Errorf("render past end produced rows\n%s", out)
	}
}

package browse

import (
	"fmt"
	"strings"

	"github.com/ismailtsdln/BinaryInsight/internal/extractor"
)

const hexBytesPerRow = 16

// hexViewer tracks the scroll position of the hex dump tab. The offset is
// always a multiple of hexBytesPerRow.
type hexViewer struct {
	offset int
}

func (h *hexViewer) scrollDown(total int) {
	if h.offset+hexBytesPerRow < total {
		h.offset += hexBytesPerRow
	}
}

func (h *hexViewer) scrollUp() {
	if h.offset >= hexBytesPerRow {
		h.offset -= hexBytesPerRow
	}
}

func (h *hexViewer) pageDown(total, rows int) {
	jump := max(rows, 1) * hexBytesPerRow
	if h.offset+jump < total {
		h.offset += jump
	} else if total > jump {
		h.offset = (total - jump) / hexBytesPerRow * hexBytesPerRow
	}
}

func (h *hexViewer) pageUp(rows int) {
	jump := max(rows, 1) * hexBytesPerRow
	if h.offset >= jump {
		h.offset -= jump
	} else {
		h.offset = 0
	}
}

// render produces up to rows lines of "offset:  hex |ascii|" starting at the
// current scroll position.
func (h *hexViewer) render(data []byte, rows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hex View (Offset: 0x%x)\n\n", h.offset)

	start := h.offset
	if start >= len(data) {
		return b.String()
	}
	end := min(start+max(rows, 1)*hexBytesPerRow, len(data))

	for rowStart := start; rowStart < end; rowStart += hexBytesPerRow {
		chunk := data[rowStart:min(rowStart+hexBytesPerRow, end)]
		b.WriteString(hexRow(rowStart, chunk))
		b.WriteByte('\n')
	}
	return b.String()
}

func hexRow(offset int, chunk []byte) string {
	var hexPart, asciiPart strings.Builder
	for _, c := range chunk {
		fmt.Fprintf(&hexPart, "%02x ", c)
		if extractor.IsPrintable(c) {
			asciiPart.WriteByte(c)
		} else {
			asciiPart.WriteByte('.')
		}
	}
	for i := len(chunk); i < hexBytesPerRow; i++ {
		hexPart.WriteString("   ")
	}
	return fmt.Sprintf("%08x:  %s |%s|", offset, hexPart.String(), asciiPart.String())
}

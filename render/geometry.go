package render

import (
	"strings"
	"unicode/utf8"
)

// Geometry of the printed receipt in layout units (CSS pixels). Exports multiply by
// their scale factor.
const (
	pageWidth    = 380.0
	pagePadding  = 24.0
	contentWidth = pageWidth - 2*pagePadding

	titleSize = 20.0
	bodySize  = 14.0
	smallSize = 13.0

	qrSize   = 120.0
	qrBorder = 8.0

	// Go Mono glyphs advance 0.6em.
	monoAdvance = 0.6
)

// block is a laid out line with its vertical position.
// A pair whose label and value do not share a row is Split: Rows[0] is the label and
// the remaining rows are the wrapped value.
type block struct {
	Line
	Top    float64
	Height float64
	Rows   []string
	Split  bool
}

// values returns the rows holding a pair's value and the index of the first one.
func (b block) values() ([]string, int) {
	if b.Split {
		return b.Rows[1:], 1
	}
	return b.Rows, 0
}

// baseline returns the text baseline of row i within the block.
func (b block) baseline(i int) float64 {
	rowHeight := b.Height / float64(len(b.Rows))
	return b.Top + rowHeight*float64(i) + rowHeight*0.75
}

func (b block) middle() float64 {
	return b.Top + b.Height/2
}

func fontSize(l Line) float64 {
	switch {
	case l.Kind == KindTitle:
		return titleSize
	case l.Small:
		return smallSize
	default:
		return bodySize
	}
}

// place positions lines top to bottom and returns the total page height.
func place(lines []Line) ([]block, float64) {
	blocks := make([]block, 0, len(lines))
	y := pagePadding

	for _, l := range lines {
		var before, height float64
		var split bool
		rows := []string{l.Text}

		switch l.Kind {
		case KindTitle:
			height = 28
		case KindText:
			height = rowHeight(l)
		case KindPair:
			rows, split = pairRowsMono(l, contentWidth)
			height = rowHeight(l) * float64(len(rows))
		case KindEmphasis:
			before, height = 8, rowHeight(l)
		case KindNote:
			rows = wrapMono(l.Text, fontSize(l), contentWidth)
			before, height = 4, rowHeight(l)*float64(len(rows))
		case KindRule:
			height = 32
		case KindSeparator:
			height = 16
		case KindQR:
			before, height = 16, qrSize+2*qrBorder
		}

		y += before
		blocks = append(blocks, block{Line: l, Top: y, Height: height, Rows: rows, Split: split})
		y += height
	}

	return blocks, y + pagePadding
}

func rowHeight(l Line) float64 {
	if l.Small {
		return 17
	}
	return 18
}

// pairRowsMono keeps label and value on one row when they fit width with a column
// between them. Otherwise the label gets its own row and the value is wrapped below it.
func pairRowsMono(l Line, width float64) ([]string, bool) {
	columns := monoColumns(fontSize(l), width)
	if utf8.RuneCountInString(l.Left)+1+utf8.RuneCountInString(l.Right) <= columns {
		return []string{l.Right}, false
	}
	return append([]string{l.Left}, wrapColumns(l.Right, columns)...), true
}

func monoColumns(size, width float64) int {
	return int(width / (size * monoAdvance))
}

// wrapMono breaks text into rows that fit width when set in a monospaced face of the
// given size. Words longer than a row are split.
func wrapMono(text string, size, width float64) []string {
	return wrapColumns(text, monoColumns(size, width))
}

// wrapColumns breaks text into rows of at most limit runes.
func wrapColumns(text string, limit int) []string {
	if limit < 1 {
		limit = 1
	}

	var rows []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > limit {
			if current.Len() > 0 {
				rows = append(rows, current.String())
				current.Reset()
			}
			head, tail := splitRunes(word, limit)
			rows = append(rows, head)
			word = tail
		}

		switch {
		case current.Len() == 0:
			current.WriteString(word)
		case utf8.RuneCountInString(current.String())+1+utf8.RuneCountInString(word) <= limit:
			current.WriteByte(' ')
			current.WriteString(word)
		default:
			rows = append(rows, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 || len(rows) == 0 {
		rows = append(rows, current.String())
	}
	return rows
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

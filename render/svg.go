package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/skip2/go-qrcode"
	"github.com/tfkr-ae/raseed/domain"
)

const fontFamily = "'Go Mono', 'Courier New', monospace"

// SVG renders r as a standalone SVG document. Width and height are the layout size
// multiplied by scale; the view box stays in layout units.
func SVG(r *domain.Receipt, renderedAt time.Time, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}

	blocks, height := place(Layout(r, renderedAt))

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	svg := doc.CreateElement("svg")
	svg.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	svg.CreateAttr("width", num(pageWidth*scale))
	svg.CreateAttr("height", num(height*scale))
	svg.CreateAttr("viewBox", "0 0 "+num(pageWidth)+" "+num(height))
	svg.CreateAttr("font-family", fontFamily)
	svg.CreateAttr("fill", inkColor)

	bg := svg.CreateElement("rect")
	bg.CreateAttr("width", "100%")
	bg.CreateAttr("height", "100%")
	bg.CreateAttr("fill", "#ffffff")

	for _, b := range blocks {
		switch b.Kind {
		case KindTitle, KindText, KindEmphasis:
			t := text(svg, b.Text, pageWidth/2, b.baseline(0), fontSize(b.Line))
			t.CreateAttr("text-anchor", "middle")
			if b.Kind != KindText {
				t.CreateAttr("font-weight", "bold")
			}
		case KindPair:
			text(svg, b.Left, pagePadding, b.baseline(0), fontSize(b.Line))
			values, first := b.values()
			for i, row := range values {
				t := text(svg, row, pageWidth-pagePadding, b.baseline(first+i), fontSize(b.Line))
				t.CreateAttr("text-anchor", "end")
				t.CreateAttr("font-weight", "bold")
			}
		case KindNote:
			for i, row := range b.Rows {
				text(svg, row, pagePadding, b.baseline(i), fontSize(b.Line))
			}
		case KindRule, KindSeparator:
			line := svg.CreateElement("line")
			line.CreateAttr("x1", num(pagePadding))
			line.CreateAttr("x2", num(pageWidth-pagePadding))
			line.CreateAttr("y1", num(b.middle()))
			line.CreateAttr("y2", num(b.middle()))
			line.CreateAttr("stroke", ruleColor)
			line.CreateAttr("stroke-width", "1")
			if b.Kind == KindRule {
				line.CreateAttr("stroke-dasharray", "6 4")
			} else {
				line.CreateAttr("stroke-dasharray", "1 3")
			}
		case KindQR:
			code, err := qrcode.Encode(b.Text, qrcode.Medium, int(qrSize*scale))
			if err != nil {
				return nil, fmt.Errorf("encoding qr code: %w", err)
			}
			img := svg.CreateElement("image")
			img.CreateAttr("x", num((pageWidth-qrSize)/2))
			img.CreateAttr("y", num(b.Top+qrBorder))
			img.CreateAttr("width", num(qrSize))
			img.CreateAttr("height", num(qrSize))
			img.CreateAttr("href", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(code))
		}
	}

	doc.Indent(2)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing svg: %w", err)
	}
	return buf.Bytes(), nil
}

func text(parent *etree.Element, s string, x, y, size float64) *etree.Element {
	t := parent.CreateElement("text")
	t.CreateAttr("x", num(x))
	t.CreateAttr("y", num(y))
	t.CreateAttr("font-size", num(size))
	t.SetText(s)
	return t
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

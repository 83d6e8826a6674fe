package render

import (
	"bytes"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"
	"github.com/tfkr-ae/raseed/domain"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

const (
	inkColor  = "#1f2937"
	ruleColor = "#6b7280"
)

type fontSet struct {
	regular *opentype.Font
	bold    *opentype.Font
}

var loadFonts = sync.OnceValues(func() (*fontSet, error) {
	regular, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing go mono: %w", err)
	}
	bold, err := opentype.Parse(gomonobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing go mono bold: %w", err)
	}
	return &fontSet{regular: regular, bold: bold}, nil
})

// faces are created per render; opentype faces are not safe for concurrent use.
type faces struct {
	set   *fontSet
	scale float64
	cache map[string]font.Face
}

func (f *faces) get(bold bool, size float64) (font.Face, error) {
	key := fmt.Sprintf("%t-%f", bold, size)
	if face, ok := f.cache[key]; ok {
		return face, nil
	}
	src := f.set.regular
	if bold {
		src = f.set.bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size * f.scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}
	f.cache[key] = face
	return face, nil
}

func (f *faces) close() {
	for _, face := range f.cache {
		face.Close()
	}
}

// PNG rasterises r at scale times the layout density on an opaque white background.
func PNG(r *domain.Receipt, renderedAt time.Time, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}

	set, err := loadFonts()
	if err != nil {
		return nil, err
	}
	fc := &faces{set: set, scale: scale, cache: make(map[string]font.Face)}
	defer fc.close()

	blocks, height := place(Layout(r, renderedAt))
	px := func(v float64) float64 { return v * scale }

	dc := gg.NewContext(int(math.Ceil(px(pageWidth))), int(math.Ceil(px(height))))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	left, right, center := px(pagePadding), px(pageWidth-pagePadding), px(pageWidth/2)

	for _, b := range blocks {
		bold := b.Kind == KindTitle || b.Kind == KindEmphasis
		face, err := fc.get(bold, fontSize(b.Line))
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetHexColor(inkColor)

		switch b.Kind {
		case KindTitle, KindText, KindEmphasis:
			dc.DrawStringAnchored(b.Text, center, px(b.baseline(0)), 0.5, 0)
		case KindPair:
			dc.DrawStringAnchored(b.Left, left, px(b.baseline(0)), 0, 0)
			rightFace, err := fc.get(true, fontSize(b.Line))
			if err != nil {
				return nil, err
			}
			dc.SetFontFace(rightFace)
			values, first := b.values()
			for i, row := range values {
				dc.DrawStringAnchored(row, right, px(b.baseline(first+i)), 1, 0)
			}
		case KindNote:
			for i, row := range b.Rows {
				dc.DrawStringAnchored(row, left, px(b.baseline(i)), 0, 0)
			}
		case KindRule, KindSeparator:
			dc.SetHexColor(ruleColor)
			dc.SetLineWidth(px(1))
			if b.Kind == KindRule {
				dc.SetDash(px(6), px(4))
			} else {
				dc.SetDash(px(1), px(3))
			}
			dc.DrawLine(left, px(b.middle()), right, px(b.middle()))
			dc.Stroke()
			dc.SetDash()
		case KindQR:
			code, err := qrcode.New(b.Text, qrcode.Medium)
			if err != nil {
				return nil, fmt.Errorf("encoding qr code: %w", err)
			}
			code.DisableBorder = true
			img := code.Image(int(px(qrSize)))
			x := (dc.Width() - img.Bounds().Dx()) / 2
			dc.DrawImage(img, x, int(px(b.Top+qrBorder)))
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

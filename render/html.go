package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/skip2/go-qrcode"
	"github.com/tfkr-ae/raseed/domain"
	"github.com/yosssi/gohtml"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	PageForm     = "form.html"
	PageReceipt  = "receipt.html"
	PageNotFound = "notfound.html"
	PageError    = "error.html"
)

// Skins.
const (
	SkinThermal = "thermal"
	SkinWindow  = "window"
)

// FormRow is one domain row of the receipt form.
type FormRow struct {
	Index            int // position in the submission, used in field names
	Number           int // position shown to the user, starting at 1
	Name             string
	RegistrationDate string
	Notes            string
	NameError        string
	DateError        string
	Removable        bool
}

// FormPage is the data rendered by PageForm.
type FormPage struct {
	Rows          []FormRow
	TwitterHandle string
	Errors        []string
	Today         string
}

// ReceiptPage is the data rendered by PageReceipt.
type ReceiptPage struct {
	Receipt *domain.Receipt
	Lines   []Line
	QR      template.URL
	Skin    string
}

// MessagePage is the data rendered by PageNotFound and PageError.
type MessagePage struct {
	Title   string
	Message string
}

// NewReceiptPage lays out r for the browser. Unknown skins fall back to SkinThermal.
func NewReceiptPage(r *domain.Receipt, renderedAt time.Time, skin string) (*ReceiptPage, error) {
	if skin != SkinWindow {
		skin = SkinThermal
	}

	page := &ReceiptPage{
		Receipt: r,
		Lines:   Layout(r, renderedAt),
		Skin:    skin,
	}

	if r.TwitterHandle != "" {
		code, err := qrcode.Encode(TwitterURL(r.TwitterHandle), qrcode.Medium, int(qrSize*2))
		if err != nil {
			return nil, fmt.Errorf("encoding qr code: %w", err)
		}
		page.QR = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(code))
	}
	return page, nil
}

// HTML renders the web pages.
type HTML struct {
	tmpl *template.Template
}

// NewHTML parses the embedded page templates.
func NewHTML() (*HTML, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &HTML{tmpl: tmpl}, nil
}

// Render executes page with data and writes the indented result to w.
// Nothing is written when the template fails.
func (h *HTML) Render(w io.Writer, page string, data any) error {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, page, data); err != nil {
		return fmt.Errorf("rendering %s: %w", page, err)
	}
	if _, err := w.Write(gohtml.FormatBytes(buf.Bytes())); err != nil {
		return fmt.Errorf("writing %s: %w", page, err)
	}
	return nil
}

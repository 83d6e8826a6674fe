// Package render turns a receipt into its visible forms: the HTML pages served by the web
// front end, PNG and SVG exports, and a box-drawn terminal receipt.
//
// All renderers share the line layout built by Layout so the receipt reads the same
// everywhere.
package render

import (
	"net/url"
	"strings"
	"time"

	"github.com/tfkr-ae/raseed/domain"
)

// LineKind identifies how a receipt line is drawn.
type LineKind string

const (
	KindTitle     LineKind = "title"     // large bold heading
	KindText      LineKind = "text"      // centred text
	KindEmphasis  LineKind = "emphasis"  // centred bold text
	KindPair      LineKind = "pair"      // label on the left, value on the right
	KindNote      LineKind = "note"      // free text, left aligned, wrapped
	KindRule      LineKind = "rule"      // dashed rule between sections
	KindSeparator LineKind = "separator" // dotted rule between domains
	KindQR        LineKind = "qr"        // QR code for Text
)

// Line is one row of the receipt layout.
type Line struct {
	Kind  LineKind
	Text  string // text, note or QR content
	Left  string // pair label
	Right string // pair value
	Small bool   // drawn one size smaller
}

const (
	Title    = "DOMAIN RECEIPT"
	ThankYou = "THANK YOU FOR YOUR BUSINESS!"
)

// CreatedDate formats the receipt creation date for the header, e.g. "MONDAY, JANUARY 15, 2024".
func CreatedDate(t time.Time) string {
	return strings.ToUpper(t.Format("Monday, January 2, 2006"))
}

// RegisteredDate formats a registration date as MM/DD/YYYY.
func RegisteredDate(t time.Time) string {
	return t.Format("01/02/2006")
}

// ClockTime formats the footer time, e.g. "3:04:05 PM".
func ClockTime(t time.Time) string {
	return t.Format("3:04:05 PM")
}

// TwitterURL is the profile link encoded in the receipt's QR code.
func TwitterURL(handle string) string {
	return "https://twitter.com/" + url.PathEscape(handle)
}

// Filename is the download name of an exported receipt, e.g. "receipt-REC123.png".
func Filename(r *domain.Receipt, ext string) string {
	return "receipt-" + r.ReceiptNumber + "." + ext
}

// Layout lays out r as printed at renderedAt. The footer shows the render time,
// not the creation time.
func Layout(r *domain.Receipt, renderedAt time.Time) []Line {
	lines := []Line{
		{Kind: KindTitle, Text: Title},
		{Kind: KindText, Text: CreatedDate(r.CreatedAt)},
		{Kind: KindText, Text: "ORDER #" + r.ReceiptNumber},
		{Kind: KindRule},
	}

	for i, d := range r.Domains {
		lines = append(lines,
			Line{Kind: KindPair, Left: "DOMAIN NAME", Right: d.Name},
			Line{Kind: KindPair, Left: "REGISTERED", Right: RegisteredDate(d.RegistrationDate), Small: true},
		)
		if d.Notes != "" {
			lines = append(lines, Line{Kind: KindNote, Text: "NOTE: " + d.Notes, Small: true})
		}
		if i < len(r.Domains)-1 {
			lines = append(lines, Line{Kind: KindSeparator})
		}
	}

	if r.TwitterHandle != "" {
		lines = append(lines, Line{Kind: KindQR, Text: TwitterURL(r.TwitterHandle)})
	}

	lines = append(lines,
		Line{Kind: KindRule},
		Line{Kind: KindText, Text: ClockTime(renderedAt)},
	)
	if r.TwitterHandle != "" {
		lines = append(lines, Line{Kind: KindText, Text: "@" + r.TwitterHandle})
	}
	lines = append(lines, Line{Kind: KindEmphasis, Text: ThankYou})

	return lines
}

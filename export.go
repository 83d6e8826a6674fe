package raseed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tfkr-ae/raseed/domain"
	"github.com/tfkr-ae/raseed/render"
)

// ErrExport is wrapped by every failure to produce a receipt image.
var ErrExport = errors.New("export failed")

// Format is an export file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat maps a query or flag value to a Format. The empty string is FormatPNG.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Artifact is a produced export file.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

type exportResult struct {
	data []byte
	err  error
}

// Export produces the image of r in format, bounded by ctx and the configured export
// timeout. On cancellation the partial result is discarded. Errors wrap ErrExport.
func (app *App) Export(ctx context.Context, r *domain.Receipt, format Format) (*Artifact, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil receipt", ErrExport)
	}

	ctx, cancel := context.WithTimeout(ctx, app.Config.Export.Timeout)
	defer cancel()

	start := time.Now()
	renderedAt := app.Clock()
	scale := app.Config.Export.Scale

	var res exportResult
	if err := ctx.Err(); err != nil {
		res.err = err
	} else {
		done := make(chan exportResult, 1)
		go func() {
			done <- renderExport(r, renderedAt, format, scale)
		}()

		select {
		case <-ctx.Done():
			res.err = ctx.Err()
		case res = <-done:
		}
	}

	app.Metrics.ExportDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
	if res.err != nil {
		app.Metrics.Exports.WithLabelValues(string(format), "error").Inc()
		app.Logger.Error("exporting receipt", "receipt_id", r.ID, "format", format, "err", res.err)
		return nil, fmt.Errorf("%w: rendering receipt %s as %s: %w", ErrExport, r.ID, format, res.err)
	}
	app.Metrics.Exports.WithLabelValues(string(format), "ok").Inc()

	return &Artifact{
		Filename:    render.Filename(r, string(format)),
		ContentType: mimetype.Detect(res.data).String(),
		Data:        res.data,
	}, nil
}

func renderExport(r *domain.Receipt, renderedAt time.Time, format Format, scale float64) exportResult {
	var res exportResult
	switch format {
	case FormatPNG:
		res.data, res.err = render.PNG(r, renderedAt, scale)
	case FormatSVG:
		res.data, res.err = render.SVG(r, renderedAt, scale)
	default:
		res.err = fmt.Errorf("unsupported export format %q", format)
	}
	return res
}

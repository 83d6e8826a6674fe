package raseed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"png", FormatPNG, false},
		{"svg", FormatSVG, false},
		{"gif", "", true},
	}

	for _, tt := range tests {
		t.Run("should parse "+tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Fatalf("\nwanted:\n%q %v\ngot:\n%q %v", tt.want, tt.wantErr, got, err)
			}
		})
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("should export a png named after the receipt number", func(t *testing.T) {
		app, _ := setupTestApp(t)
		r, err := app.Submit(ctx, validForm())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, err := app.Export(ctx, r, FormatPNG)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if got.Filename != "receipt-RECLRER7LS0.png" {
			t.Fatalf("\nwanted:\nreceipt-RECLRER7LS0.png\ngot:\n%s", got.Filename)
		}
		if got.ContentType != "image/png" {
			t.Fatalf("\nwanted:\nimage/png\ngot:\n%s", got.ContentType)
		}
		if n := testutil.ToFloat64(app.Metrics.Exports.WithLabelValues("png", "ok")); n != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%v", n)
		}
	})

	t.Run("should export an svg", func(t *testing.T) {
		app, _ := setupTestApp(t)
		r, _ := app.Submit(ctx, validForm())

		got, err := app.Export(ctx, r, FormatSVG)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got.Filename != "receipt-RECLRER7LS0.svg" || !strings.HasPrefix(got.ContentType, "image/svg+xml") {
			t.Fatalf("\nwanted:\nsvg artifact\ngot:\n%s %s", got.Filename, got.ContentType)
		}
	})

	t.Run("should wrap failures in ErrExport", func(t *testing.T) {
		app, _ := setupTestApp(t)
		r, _ := app.Submit(ctx, validForm())

		_, err := app.Export(ctx, r, Format("gif"))
		if !errors.Is(err, ErrExport) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrExport, err)
		}
		if n := testutil.ToFloat64(app.Metrics.Exports.WithLabelValues("gif", "error")); n != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%v", n)
		}
	})

	t.Run("should give up when the context is done", func(t *testing.T) {
		app, _ := setupTestApp(t)
		r, _ := app.Submit(ctx, validForm())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := app.Export(cancelled, r, FormatPNG)
		if !errors.Is(err, ErrExport) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrExport, err)
		}
	})

	t.Run("should reject a nil receipt", func(t *testing.T) {
		app, _ := setupTestApp(t)
		app.Config.Export.Timeout = time.Second

		if _, err := app.Export(ctx, nil, FormatPNG); !errors.Is(err, ErrExport) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrExport, err)
		}
	})
}

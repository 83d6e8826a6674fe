package web

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

type compressWriter struct {
	http.ResponseWriter
	w io.Writer
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	return cw.w.Write(b)
}

// compress encodes responses with brotli or gzip when the client accepts it. Image
// downloads and metrics are passed through unchanged.
func compress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/download") || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		encoder := brotli.HTTPCompressor(w, r)
		defer func() {
			// Close writes the stream trailer, so it is skipped while panicking and
			// recoverPanics can still send a plain error.
			if v := recover(); v != nil {
				panic(v)
			}
			encoder.Close()
		}()
		next.ServeHTTP(&compressWriter{ResponseWriter: w, w: encoder}, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.logger.Error("handler panic", "path", r.URL.Path, "panic", v)
				// The error body is written uncompressed.
				w.Header().Del("Content-Encoding")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

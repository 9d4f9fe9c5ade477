package middleware

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes the Brotli middleware.
type BrotliConfig struct {
	Quality   int
	MinLength int
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// brotliWriter buffers the whole response so the encoding decision can be
// made once the body size is known and before any header is sent.
type brotliWriter struct {
	gin.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (bw *brotliWriter) WriteHeader(code int) {
	bw.status = code
}

func (bw *brotliWriter) WriteHeaderNow() {}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	return bw.buf.Write(data)
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.buf.WriteString(s)
}

func (bw *brotliWriter) Status() int {
	if bw.status == 0 {
		return http.StatusOK
	}
	return bw.status
}

func (bw *brotliWriter) Size() int {
	return bw.buf.Len()
}

func (bw *brotliWriter) Written() bool {
	return bw.status != 0 || bw.buf.Len() > 0
}

func (bw *brotliWriter) Flush() {}

// finish writes the buffered response to out, compressed when worthwhile.
func (bw *brotliWriter) finish(out gin.ResponseWriter, cfg BrotliConfig) error {
	status := bw.Status()
	h := out.Header()

	compress := bw.buf.Len() >= cfg.MinLength &&
		bodyAllowed(status) &&
		h.Get("Content-Encoding") == ""
	if !compress {
		out.WriteHeader(status)
		_, err := out.Write(bw.buf.Bytes())
		return err
	}

	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	out.WriteHeader(status)

	w := brotli.NewWriterLevel(out, cfg.Quality)
	if _, err := w.Write(bw.buf.Bytes()); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if shouldSkip(c) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		original := c.Writer
		bw := &brotliWriter{ResponseWriter: original}
		c.Writer = bw
		defer func() {
			c.Writer = original
			if err := bw.finish(original, cfg); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Next()
	}
}

// shouldSkip returns true for requests whose response must stream or be
// hijacked and so cannot be buffered.
func shouldSkip(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return true
	}
	return false
}

func acceptsBrotli(r *http.Request) bool {
	ae := r.Header.Get("Accept-Encoding")
	for _, enc := range strings.Split(ae, ",") {
		// Strip quality values such as "br;q=0.9".
		name, _, _ := strings.Cut(enc, ";")
		if strings.EqualFold(strings.TrimSpace(name), "br") {
			return true
		}
	}
	return false
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

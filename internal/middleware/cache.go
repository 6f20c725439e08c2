package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CacheControl sets the Cache-Control header for successful responses. Chart
// images depend on the dataset revision, so they are only cached privately.
// Error responses are always marked no-store so a reload shows up at once.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	value := "no-store"
	if maxAgeSeconds > 0 {
		value = fmt.Sprintf("private, max-age=%d", maxAgeSeconds)
	}
	return func(c *gin.Context) {
		c.Writer = &cacheControlWriter{ResponseWriter: c.Writer, value: value}
		c.Next()
	}
}

// cacheControlWriter picks the header once the status code is known.
type cacheControlWriter struct {
	gin.ResponseWriter
	value   string
	stamped bool
}

func (w *cacheControlWriter) stamp(code int) {
	if w.stamped {
		return
	}
	w.stamped = true
	if code >= http.StatusBadRequest {
		w.Header().Set("Cache-Control", "no-store")
		return
	}
	w.Header().Set("Cache-Control", w.value)
}

func (w *cacheControlWriter) WriteHeader(code int) {
	w.stamp(code)
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheControlWriter) WriteHeaderNow() {
	w.stamp(w.Status())
	w.ResponseWriter.WriteHeaderNow()
}

func (w *cacheControlWriter) Write(data []byte) (int, error) {
	w.stamp(w.Status())
	return w.ResponseWriter.Write(data)
}

func (w *cacheControlWriter) WriteString(s string) (int, error) {
	w.stamp(w.Status())
	return w.ResponseWriter.WriteString(s)
}

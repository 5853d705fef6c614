package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripboard/tripboard/internal/middleware"
)

// drainHandler reads the whole body the way a JSON decoder would and maps a
// failed read to 413.
var drainHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if _, err := io.ReadAll(r.Body); err != nil {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}
	w.WriteHeader(http.StatusOK)
})

func TestMaxBodySizeHandler(t *testing.T) {
	const limit = 100

	tests := []struct {
		name          string
		size          int
		contentLength int64
		want          int
	}{
		{name: "within limit", size: 50, contentLength: 50, want: http.StatusOK},
		{name: "exactly at limit", size: limit, contentLength: limit, want: http.StatusOK},
		{name: "declared length over limit", size: 200, contentLength: 200, want: http.StatusRequestEntityTooLarge},
		{name: "streamed body over limit", size: 200, contentLength: -1, want: http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := middleware.NewMaxBodySizeHandler(limit)(drainHandler)

			req := httptest.NewRequest(http.MethodPost, "/api/trips/1/expenses", strings.NewReader(strings.Repeat("x", tc.size)))
			req.ContentLength = tc.contentLength
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

package correlation_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportolo/jobs/pkg/correlation"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		reuseID bool
	}{
		{name: "generates id when missing", header: ""},
		{name: "reuses valid id", header: "wahoo-dispatch-000001", reuseID: true},
		{name: "replaces id with invalid characters", header: "bad id<script>"},
		{name: "replaces oversized id", header: strings.Repeat("a", 129)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			handler := correlation.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = correlation.FromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(correlation.Header, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusNoContent, rec.Code)
			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(correlation.Header))
			if tt.reuseID {
				assert.Equal(t, tt.header, seen)
			} else {
				assert.NotEqual(t, tt.header, seen)
				assert.True(t, correlation.IsValid(seen))
			}
		})
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := correlation.WithContext(context.Background(), "corr-1")
	assert.Equal(t, "corr-1", correlation.FromContext(ctx))

	assert.Empty(t, correlation.FromContext(context.Background()))
	assert.Empty(t, correlation.FromContext(nil)) //nolint:staticcheck // nil context is handled explicitly

	unchanged := correlation.WithContext(context.Background(), "")
	assert.Empty(t, correlation.FromContext(unchanged))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := correlation.LoggerExtractor()

	attr, ok := extract(correlation.WithContext(context.Background(), "corr-2"))
	require.True(t, ok)
	assert.Equal(t, "correlation_id", attr.Key)
	assert.Equal(t, "corr-2", attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}

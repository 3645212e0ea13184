package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"), "HSTS is only sent over TLS")

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		build  func() *http.Request
		reason string
	}{
		{
			name:  "normal API call",
			build: func() *http.Request { return httptest.NewRequest(http.MethodGet, "/api/reports?range=this-month", nil) },
		},
		{
			name: "curl is allowed",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
				r.Header.Set("User-Agent", "curl/8.4.0")
				return r
			},
		},
		{
			name:   "path traversal",
			build:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/static/..%2f../etc/passwd", nil) },
			reason: "path:",
		},
		{
			name:   "script in query",
			build:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/api/bills?next=javascript:alert(1)", nil) },
			reason: "query:",
		},
		{
			name: "scanner agent",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.Header.Set("User-Agent", "sqlmap/1.7")
				return r
			},
			reason: "agent:sqlmap",
		},
		{
			name:   "trace method",
			build:  func() *http.Request { return httptest.NewRequest("TRACE", "/", nil) },
			reason: "method:TRACE",
		},
		{
			name: "too many hops",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2, 3.3.3.3, 4.4.4.4, 5.5.5.5, 6.6.6.6, 7.7.7.7")
				return r
			},
			reason: "forwarded_hops",
		},
	}

	d := NewDetector()
	flagged := 0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := d.DetectSuspiciousRequest(tt.build())
			if tt.reason == "" {
				assert.False(t, ok, reason)
				return
			}
			flagged++
			assert.True(t, ok)
			assert.True(t, strings.HasPrefix(reason, tt.reason), reason)
		})
	}
	assert.Equal(t, int64(flagged), d.GetMetrics().SuspiciousRequests)
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.1.2.3")
	assert.Equal(t, "203.0.113.7", d.ExtractClientIP(req), "forwarded header honoured behind a trusted proxy")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.9:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "198.51.100.9", d.ExtractClientIP(req), "forwarded header ignored from untrusted peers")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1"
	req.Header.Set("X-Forwarded-For", "not-an-ip")
	req.Header.Set("X-Real-IP", "203.0.113.8")
	assert.Equal(t, "203.0.113.8", d.ExtractClientIP(req))
	assert.Equal(t, int64(1), d.GetMetrics().InvalidIPAttempts)
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()
	require.Error(t, d.AddTrustedProxy("nope"))
	require.NoError(t, d.AddTrustedProxy("198.51.100.0/24"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.9:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", d.ExtractClientIP(req))
}

func TestDetectorMiddlewareBlocks(t *testing.T) {
	d := NewDetector()
	served := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { served = true })

	rec := httptest.NewRecorder()
	d.Middleware(nil, true)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.env", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, served)

	rec = httptest.NewRecorder()
	d.Middleware(nil, false)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.env", nil))
	assert.True(t, served)
}

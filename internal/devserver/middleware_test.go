package devserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:       "forwarded from loopback peer",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 198.51.100.1"},
			remoteAddr: "127.0.0.1:54321",
			expected:   "203.0.113.1",
		},
		{
			name:       "forwarded with spaces",
			headers:    map[string]string{"X-Forwarded-For": " 203.0.113.1 ,198.51.100.1"},
			remoteAddr: "[::1]:54321",
			expected:   "203.0.113.1",
		},
		{
			name:       "real IP from loopback peer",
			headers:    map[string]string{"X-Real-IP": "192.168.1.100"},
			remoteAddr: "127.0.0.1:54321",
			expected:   "192.168.1.100",
		},
		{
			name:       "forwarded takes preference",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1", "X-Real-IP": "192.168.1.100"},
			remoteAddr: "127.0.0.1:54321",
			expected:   "203.0.113.1",
		},
		{
			name:       "forwarded ignored from remote peer",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1", "X-Real-IP": "192.168.1.100"},
			remoteAddr: "192.168.1.20:54321",
			expected:   "192.168.1.20",
		},
		{
			name:       "loopback without headers",
			remoteAddr: "127.0.0.1:54321",
			expected:   "127.0.0.1",
		},
		{
			name:       "IPv6 with port",
			remoteAddr: "[2001:db8::1]:54321",
			expected:   "2001:db8::1",
		},
		{
			name:       "no port",
			remoteAddr: "192.168.1.1",
			expected:   "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			require.Equal(t, tt.expected, ClientIP(r))
		})
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	handler := AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	r := httptest.NewRequest(http.MethodPost, "/orders", nil)
	r.RemoteAddr = "127.0.0.1:40000"
	r.Header.Set("X-Real-IP", "10.0.0.1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	out := buf.String()
	require.Contains(t, out, `"method":"POST"`)
	require.Contains(t, out, `"path":"/orders"`)
	require.Contains(t, out, `"client_ip":"10.0.0.1"`)
	require.Contains(t, out, `"status":201`)
	require.Contains(t, out, `"bytes":2`)
}

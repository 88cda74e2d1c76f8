package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		headers map[string]string
		want    string
	}{
		{name: "request host", host: "cache.local:3000", want: "http://cache.local:3000"},
		{name: "default port dropped", host: "cache.local:80", want: "http://cache.local"},
		{name: "no port", host: "cache.local", want: "http://cache.local"},
		{
			name:    "forwarded https",
			host:    "10.0.0.5:3000",
			headers: map[string]string{"X-Forwarded-Proto": "https", "X-Forwarded-Host": "api.example.com", "X-Forwarded-Port": "443"},
			want:    "https://api.example.com",
		},
		{
			name:    "forwarded custom port",
			host:    "10.0.0.5:3000",
			headers: map[string]string{"X-Forwarded-Proto": "https", "X-Forwarded-Host": "api.example.com", "X-Forwarded-Port": "8443"},
			want:    "https://api.example.com:8443",
		},
		{
			name:    "first of a forwarded list",
			host:    "10.0.0.5:3000",
			headers: map[string]string{"X-Forwarded-Proto": "https, http", "X-Forwarded-Host": "edge.example.com"},
			want:    "https://edge.example.com",
		},
		{name: "ipv6 literal", host: "[::1]:3000", want: "http://[::1]:3000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
			r.Host = tt.host
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, baseURL(r))
		})
	}
}

func TestBuildOpenAPI(t *testing.T) {
	doc := BuildOpenAPI("https://api.example.com")

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "3.0.3", decoded["openapi"])
	assert.Equal(t, map[string]any{"title": "Mudis Web Cache API", "version": "1.0.0"}, decoded["info"])
	assert.Equal(t, []any{map[string]any{"url": "https://api.example.com"}}, decoded["servers"])

	paths := decoded["paths"].(map[string]any)
	for _, p := range []string{"/health", "/metrics", "/metrics/reset", "/reset", "/cache/{key}", "/cache/{key}/inspect",
		"/exists/{key}", "/keys", "/namespace/{namespace}", "/least-touched", "/ql"} {
		assert.Contains(t, paths, p)
	}
	cacheKey := paths["/cache/{key}"].(map[string]any)
	assert.ElementsMatch(t, []string{"get", "post", "put", "delete"}, keysOf(cacheKey))

	write := cacheKey["post"].(map[string]any)
	body := write["requestBody"].(map[string]any)
	assert.Equal(t, true, body["required"])

	assert.Empty(t, BuildOpenAPI("").Servers)
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestDocsHandler(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/docs", nil)
	r.Host = "cache.local:3000"
	rec := httptest.NewRecorder()

	body, err := docsHandler(rec, r, nil)
	require.NoError(t, err)
	assert.Nil(t, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "swagger-ui-dist@5")
	assert.Contains(t, rec.Body.String(), "http://cache.local:3000/openapi.json")
}

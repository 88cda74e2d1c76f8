package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cachegate/cachegate/internal/errors"
)

func TestQueryParams_FirstValueWins(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/keys?namespace=a&namespace=b&count=3", nil)
	p := queryParams(r)

	assert.Equal(t, "a", p.String("namespace"))
	n, ok := p.Int("count")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestParams_Int(t *testing.T) {
	p := Params{"a": "12", "b": "abc", "c": float64(7), "d": "", "e": nil}

	n, ok := p.Int("a")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	for _, name := range []string{"b", "d", "e", "missing"} {
		_, ok := p.Int(name)
		assert.False(t, ok, name)
	}

	n, ok = p.Int("c")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
}

func TestParams_String(t *testing.T) {
	p := Params{"s": "x", "n": float64(1.5), "b": true, "z": nil}
	assert.Equal(t, "x", p.String("s"))
	assert.Equal(t, "1.5", p.String("n"))
	assert.Equal(t, "true", p.String("b"))
	assert.Equal(t, "", p.String("z"))
	assert.Equal(t, "", p.String("missing"))
}

func jsonRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/cache/k?namespace=q&value=fromquery", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestMergedParams(t *testing.T) {
	t.Run("body wins over query", func(t *testing.T) {
		p, err := mergedParams(jsonRequest(`{"value":{"a":1},"expires_in":30}`, "application/json; charset=utf-8"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": json.Number("1")}, p["value"])
		assert.Equal(t, "q", p.String("namespace"))
		n, ok := p.Int("expires_in")
		assert.True(t, ok)
		assert.Equal(t, 30, n)
	})

	t.Run("large integers keep their precision", func(t *testing.T) {
		p, err := mergedParams(jsonRequest(`{"value":9007199254740993,"expires_in":60}`, "application/json"))
		require.NoError(t, err)
		assert.Equal(t, json.Number("9007199254740993"), p["value"])
		assert.Equal(t, "9007199254740993", p.String("value"))
		n, ok := p.Int("expires_in")
		assert.True(t, ok)
		assert.Equal(t, 60, n)
	})

	t.Run("trailing data is rejected", func(t *testing.T) {
		_, err := mergedParams(jsonRequest(`{"value":1} {}`, "application/json"))
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("non-json content type is ignored", func(t *testing.T) {
		p, err := mergedParams(jsonRequest(`{"value":"body"}`, "text/plain"))
		require.NoError(t, err)
		assert.Equal(t, "fromquery", p["value"])
	})

	t.Run("empty body is ignored", func(t *testing.T) {
		p, err := mergedParams(jsonRequest("  \n", "application/json"))
		require.NoError(t, err)
		assert.Equal(t, "fromquery", p["value"])
	})

	t.Run("non-object body contributes nothing", func(t *testing.T) {
		p, err := mergedParams(jsonRequest(`[1,2,3]`, "application/json"))
		require.NoError(t, err)
		assert.Equal(t, "fromquery", p["value"])
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := mergedParams(jsonRequest(`{"value":`, "application/json"))
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "invalid JSON body", apperrors.PublicMessage(err))
	})

	t.Run("explicit null is kept", func(t *testing.T) {
		p, err := mergedParams(jsonRequest(`{"value":null}`, "application/json"))
		require.NoError(t, err)
		v, present := p["value"]
		assert.True(t, present)
		assert.Nil(t, v)
	})
}

package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/cachegate/cachegate/internal/core"
	"github.com/cachegate/cachegate/internal/domain/query"
	apperrors "github.com/cachegate/cachegate/internal/errors"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 8 << 20

// Params is the merged parameter set of one request.
type Params map[string]any

// String returns the named parameter as a string; absent or null parameters are "".
func (p Params) String(name string) string {
	switch v := p[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Int parses the named parameter; empty or non-numeric input reports ok=false.
func (p Params) Int(name string) (int, bool) {
	return query.ParseInt(p[name])
}

// queryParams returns the first value of each query-string parameter.
func queryParams(r *http.Request) Params {
	values := r.URL.Query()
	p := make(Params, len(values))
	for k, v := range values {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

// mergedParams merges query parameters with a JSON object body, body values winning.
// The body is read only when Content-Type declares JSON; a malformed body is a validation error.
func mergedParams(r *http.Request) (Params, error) {
	p := queryParams(r)
	if r.Body == nil {
		return p, nil
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return p, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid JSON body")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return p, nil
	}

	body, err := core.DecodeValue(raw)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid JSON body")
	}
	// Only an object contributes parameters.
	if obj, ok := body.(map[string]any); ok {
		for k, v := range obj {
			p[k] = v
		}
	}
	return p, nil
}

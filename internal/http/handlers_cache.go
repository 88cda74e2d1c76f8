package httpx

import (
	"net/http"
	"time"

	apperrors "github.com/cachegate/cachegate/internal/errors"
	"github.com/cachegate/cachegate/internal/service"
)

// CacheHandlers serves the cache operation routes.
type CacheHandlers struct {
	Svc  *service.CacheService
	Name string
}

func (h *CacheHandlers) Root(http.ResponseWriter, *http.Request, Params) (any, error) {
	name := h.Name
	if name == "" {
		name = "cachegate"
	}
	return map[string]string{"name": name, "status": "ok"}, nil
}

func (h *CacheHandlers) Health(http.ResponseWriter, *http.Request, Params) (any, error) {
	return map[string]string{"status": "ok"}, nil
}

func (h *CacheHandlers) Metrics(_ http.ResponseWriter, r *http.Request, _ Params) (any, error) {
	return h.Svc.Metrics(r.Context())
}

func (h *CacheHandlers) ResetMetrics(_ http.ResponseWriter, r *http.Request, _ Params) (any, error) {
	if err := h.Svc.ResetMetrics(r.Context()); err != nil {
		return nil, err
	}
	return map[string]string{"status": "metrics_reset"}, nil
}

func (h *CacheHandlers) Reset(_ http.ResponseWriter, r *http.Request, _ Params) (any, error) {
	if err := h.Svc.Reset(r.Context()); err != nil {
		return nil, err
	}
	return map[string]string{"status": "reset"}, nil
}

func pathKey(r *http.Request) (string, error) {
	key := r.PathValue("key")
	if key == "" {
		return "", apperrors.ValidationField("key", "key is required")
	}
	return key, nil
}

// Read handles GET /cache/{key}.
func (h *CacheHandlers) Read(_ http.ResponseWriter, r *http.Request, p Params) (any, error) {
	key, err := pathKey(r)
	if err != nil {
		return nil, err
	}
	value, err := h.Svc.Read(r.Context(), callerFrom(r), key, p.String("namespace"))
	if err != nil {
		return nil, err
	}
	return map[string]any{"value": value}, nil
}

// Write handles POST and PUT /cache/{key}. expires_in is in seconds; non-numeric or
// non-positive values fall back to the engine default.
func (h *CacheHandlers) Write(_ http.ResponseWriter, r *http.Request, p Params) (any, error) {
	key, err := pathKey(r)
	if err != nil {
		return nil, err
	}
	var expiresIn time.Duration
	if secs, ok := p.Int("expires_in"); ok && secs > 0 {
		expiresIn = time.Duration(secs) * time.Second
	}
	err = h.Svc.Write(r.Context(), callerFrom(r), service.WriteParams{
		Key:       key,
		Value:     p["value"],
		ExpiresIn: expiresIn,
		Namespace: p.String("namespace"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"status": "written", "key": key}, nil
}

// Delete handles DELETE /cache/{key}.
func (h *CacheHandlers) Delete(_ http.ResponseWriter, r *http.Request, p Params) (any, error) {
	key, err := pathKey(r)
	if err != nil {
		return nil, err
	}
	if err := h.Svc.Delete(r.Context(), callerFrom(r), key, p.String("namespace")); err != nil {
		return nil, err
	}
	return map[string]string{"status": "deleted", "key": key}, nil
}

// Inspect handles GET /cache/{key}/inspect and GET /inspect/{key}.
func (h *CacheHandlers) Inspect(_ http.ResponseWriter, r *http.Request, p Params) (any, error) {
	key, err := pathKey(r)
	if err != nil {
		return nil, err
	}
	return h.Svc.Inspect(r.Context(), callerFrom(r), key, p.String("namespace"))
}

func (h *CacheHandlers) Exists(_ http.ResponseWriter, r *http.Request, p Params) (any, error) {
	key, err := pathKey(r)
	if err != nil {
		return nil, err
	}
	ok, err := h.Svc.Exists(r.Context(), callerFrom(r), key, p.String("namespace"))
	if err != nil {
		return nil, err
	}
	return map[string]bool{"exists": ok}, nil
}

func (h *CacheHandlers) Keys(_ http.ResponseWriter, r *http.Request, p Params) (any, error) {
	keys, err := h.Svc.Keys(r.Context(), callerFrom(r), p.String("namespace"))
	if err != nil {
		return nil, err
	}
	return map[string]any{"keys": keys}, nil
}

// ClearNamespace handles DELETE /namespace/{namespace}; the path segment is the explicit namespace.
func (h *CacheHandlers) ClearNamespace(_ http.ResponseWriter, r *http.Request, _ Params) (any, error) {
	ns := r.PathValue("namespace")
	if ns == "" {
		return nil, apperrors.ValidationField("namespace", "namespace is required")
	}
	cleared, err := h.Svc.ClearNamespace(r.Context(), callerFrom(r), ns)
	if err != nil {
		return nil, err
	}
	return map[string]string{"status": "cleared", "namespace": cleared}, nil
}

// LeastTouched handles GET /least-touched. A missing or non-numeric count uses the default.
func (h *CacheHandlers) LeastTouched(_ http.ResponseWriter, r *http.Request, p Params) (any, error) {
	count := service.DefaultLeastTouchedCount
	if n, ok := p.Int("count"); ok {
		if n <= 0 {
			return nil, apperrors.ValidationField("count", "count must be a positive integer")
		}
		count = n
	}
	keys, err := h.Svc.LeastTouched(r.Context(), count)
	if err != nil {
		return nil, err
	}
	return map[string]any{"keys": keys}, nil
}

// Query handles POST /ql.
func (h *CacheHandlers) Query(_ http.ResponseWriter, r *http.Request, p Params) (any, error) {
	result, err := h.Svc.Query(r.Context(), callerFrom(r), p)
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": result}, nil
}

package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
	apperrors "github.com/cachegate/cachegate/internal/errors"
	"github.com/cachegate/cachegate/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth   *service.Authenticator
	Cache  *service.CacheService
	Name   string       // reported by GET /
	Logger *slog.Logger // Logger for request failures (optional)
}

// endpoint handles one matched route. A nil body with a nil error means the endpoint
// wrote the response itself.
type endpoint func(w http.ResponseWriter, r *http.Request, p Params) (any, error)

// route is one entry of the static route table.
type route struct {
	pattern string
	name    string
	access  domainauth.Access
	// body routes merge a JSON request body into the parameters.
	body   bool
	handle endpoint
}

// NewRouter builds the dispatcher: a ServeMux over the static route table, with every
// unmatched method/path answered by an authenticated JSON 404.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &dispatcher{auth: services.Auth, logger: logger}
	h := &CacheHandlers{Svc: services.Cache, Name: services.Name}

	mux := http.NewServeMux()
	for _, rt := range routeTable(h) {
		mux.Handle(rt.pattern, d.serve(rt))
	}
	return mux
}

func routeTable(h *CacheHandlers) []route {
	return []route{
		{pattern: "GET /{$}", name: "root", access: domainauth.AccessPublic, handle: h.Root},
		{pattern: "GET /health", name: "health", access: domainauth.AccessPublic, handle: h.Health},
		{pattern: "GET /openapi.json", name: "openapi", access: domainauth.AccessPublic, handle: openAPIHandler},
		{pattern: "GET /docs", name: "docs", access: domainauth.AccessPublic, handle: docsHandler},

		{pattern: "GET /metrics", name: "metrics.read", access: domainauth.AccessProtected, handle: h.Metrics},
		{pattern: "POST /metrics/reset", name: "metrics.reset", access: domainauth.AccessAdmin, handle: h.ResetMetrics},
		{pattern: "POST /reset", name: "reset", access: domainauth.AccessAdmin, handle: h.Reset},

		{pattern: "GET /cache/{key}", name: "cache.read", access: domainauth.AccessProtected, handle: h.Read},
		{pattern: "POST /cache/{key}", name: "cache.write", access: domainauth.AccessProtected, body: true, handle: h.Write},
		{pattern: "PUT /cache/{key}", name: "cache.write", access: domainauth.AccessProtected, body: true, handle: h.Write},
		{pattern: "DELETE /cache/{key}", name: "cache.delete", access: domainauth.AccessProtected, handle: h.Delete},
		{pattern: "GET /cache/{key}/inspect", name: "cache.inspect", access: domainauth.AccessProtected, handle: h.Inspect},
		{pattern: "GET /exists/{key}", name: "exists", access: domainauth.AccessProtected, handle: h.Exists},
		{pattern: "GET /inspect/{key}", name: "inspect", access: domainauth.AccessProtected, handle: h.Inspect},

		// An empty key segment reaches the handler so it is rejected as a validation error.
		{pattern: "GET /cache/{$}", name: "cache.read", access: domainauth.AccessProtected, handle: h.Read},
		{pattern: "POST /cache/{$}", name: "cache.write", access: domainauth.AccessProtected, body: true, handle: h.Write},
		{pattern: "PUT /cache/{$}", name: "cache.write", access: domainauth.AccessProtected, body: true, handle: h.Write},
		{pattern: "DELETE /cache/{$}", name: "cache.delete", access: domainauth.AccessProtected, handle: h.Delete},
		{pattern: "GET /exists/{$}", name: "exists", access: domainauth.AccessProtected, handle: h.Exists},
		{pattern: "GET /inspect/{$}", name: "inspect", access: domainauth.AccessProtected, handle: h.Inspect},

		{pattern: "GET /keys", name: "keys", access: domainauth.AccessProtected, handle: h.Keys},
		{pattern: "DELETE /namespace/{namespace}", name: "namespace.clear", access: domainauth.AccessAdmin, handle: h.ClearNamespace},
		{pattern: "GET /least-touched", name: "least_touched", access: domainauth.AccessProtected, handle: h.LeastTouched},
		{pattern: "POST /ql", name: "ql", access: domainauth.AccessProtected, body: true, handle: h.Query},

		// Anything else still authenticates before it is told the route does not exist.
		{pattern: "/", name: "", access: domainauth.AccessProtected, handle: notFound},
	}
}

func notFound(http.ResponseWriter, *http.Request, Params) (any, error) {
	return nil, apperrors.NotFound("not found")
}

// dispatcher runs authentication, parameter collection, the endpoint, and rendering for each route.
// It is the only place outcomes become wire responses.
type dispatcher struct {
	auth   *service.Authenticator
	logger *slog.Logger
}

func (d *dispatcher) serve(rt route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		noteRoute(r.Context(), rt.name)

		decision := d.authenticate(r, rt.access)
		if !decision.Allowed() {
			renderError(w, r, d.logger, decision.Err)
			return
		}
		r = r.WithContext(SetClaimsInContext(r.Context(), decision.Claims))

		var (
			params Params
			err    error
		)
		if rt.body {
			params, err = mergedParams(r)
		} else {
			params = queryParams(r)
		}
		if err != nil {
			renderError(w, r, d.logger, err)
			return
		}

		body, err := rt.handle(w, r, params)
		if err != nil {
			renderError(w, r, d.logger, err)
			return
		}
		if body != nil {
			WriteJSON(w, http.StatusOK, body)
		}
	})
}

func (d *dispatcher) authenticate(r *http.Request, access domainauth.Access) domainauth.Decision {
	if d.auth == nil {
		return domainauth.Allow(nil)
	}
	return d.auth.Authenticate(r.Header.Get("Authorization"), access)
}

// callerFrom threads the verified claims from the request context into service calls.
func callerFrom(r *http.Request) service.Caller {
	claims, _ := ClaimsFromContext(r.Context())
	return service.Caller{Claims: claims}
}

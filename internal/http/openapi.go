package httpx

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

const apiTitle = "Mudis Web Cache API"

// OpenAPIDocument is the subset of OpenAPI 3.0 the gateway publishes.
type OpenAPIDocument struct {
	OpenAPI string                          `json:"openapi"`
	Info    OpenAPIInfo                     `json:"info"`
	Servers []OpenAPIServer                 `json:"servers"`
	Paths   map[string]map[string]Operation `json:"paths"`
}

type OpenAPIInfo struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

type OpenAPIServer struct {
	URL string `json:"url"`
}

// Operation describes one method on one path.
type Operation struct {
	Summary     string              `json:"summary"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
}

type Parameter struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Required bool   `json:"required"`
	Schema   Schema `json:"schema"`
}

type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
}

type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content"`
}

type MediaType struct {
	Schema Schema `json:"schema"`
}

type Schema struct {
	Type        string            `json:"type,omitempty"`
	Description string            `json:"description,omitempty"`
	Nullable    bool              `json:"nullable,omitempty"`
	Minimum     *int              `json:"minimum,omitempty"`
	Items       *Schema           `json:"items,omitempty"`
	Properties  map[string]Schema `json:"properties,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

var (
	pathsOnce   sync.Once
	cachedPaths map[string]map[string]Operation
)

// BuildOpenAPI returns the document with servers pointing at baseURL; an empty baseURL
// publishes no servers.
func BuildOpenAPI(baseURL string) OpenAPIDocument {
	pathsOnce.Do(func() { cachedPaths = apiPaths() })
	servers := []OpenAPIServer{}
	if baseURL != "" {
		servers = append(servers, OpenAPIServer{URL: baseURL})
	}
	return OpenAPIDocument{
		OpenAPI: "3.0.3",
		Info:    OpenAPIInfo{Title: apiTitle, Version: "1.0.0"},
		Servers: servers,
		Paths:   cachedPaths,
	}
}

func apiPaths() map[string]map[string]Operation {
	key := Parameter{Name: "key", In: "path", Required: true, Schema: Schema{Type: "string"}}
	pathNS := Parameter{Name: "namespace", In: "path", Required: true, Schema: Schema{Type: "string"}}
	ns := Parameter{Name: "namespace", In: "query", Schema: Schema{Type: "string"}}
	one := 1
	count := Parameter{Name: "count", In: "query", Schema: Schema{Type: "integer", Minimum: &one}}

	write := jsonBody(Schema{
		Type: "object",
		Properties: map[string]Schema{
			"value":      {Description: "Value to store", Nullable: true},
			"expires_in": {Type: "integer", Description: "TTL in seconds", Nullable: true},
			"namespace":  {Type: "string", Nullable: true},
		},
		Required: []string{"value"},
	})
	ql := jsonBody(Schema{
		Type: "object",
		Properties: map[string]Schema{
			"namespace": {Type: "string", Nullable: true},
			"where":     {Type: "object", Nullable: true},
			"order":     {Type: "object", Nullable: true},
			"limit":     {Type: "integer", Nullable: true},
			"offset":    {Type: "integer", Nullable: true},
			"action":    {Type: "string", Nullable: true},
			"fields":    {Type: "array", Items: &Schema{Type: "string"}, Nullable: true},
			"field":     {Type: "string", Nullable: true},
		},
	})

	op := func(summary string, params ...Parameter) Operation {
		return Operation{Summary: summary, Parameters: params, Responses: jsonOK()}
	}
	withBody := func(o Operation, body *RequestBody) Operation {
		o.RequestBody = body
		return o
	}

	return map[string]map[string]Operation{
		"/health":        {"get": op("Health check")},
		"/metrics":       {"get": op("Get cache metrics")},
		"/metrics/reset": {"post": op("Reset cache metrics")},
		"/reset":         {"post": op("Reset cache data")},
		"/cache/{key}": {
			"get":    op("Read a cache key", key, ns),
			"post":   withBody(op("Write a cache key", key, ns), write),
			"put":    withBody(op("Write a cache key", key, ns), write),
			"delete": op("Delete a cache key", key, ns),
		},
		"/cache/{key}/inspect":   {"get": op("Inspect cache key metadata", key, ns)},
		"/exists/{key}":          {"get": op("Check if key exists", key, ns)},
		"/inspect/{key}":         {"get": op("Inspect cache key metadata", key, ns)},
		"/keys":                  {"get": op("List keys in a namespace", ns)},
		"/namespace/{namespace}": {"delete": op("Clear a namespace", pathNS)},
		"/least-touched":         {"get": op("List least-touched keys", count)},
		"/ql":                    {"post": withBody(op("Run a query"), ql)},
	}
}

func jsonOK() map[string]Response {
	return map[string]Response{
		"200": {
			Description: "OK",
			Content:     map[string]MediaType{"application/json": {Schema: Schema{Type: "object"}}},
		},
	}
}

func jsonBody(s Schema) *RequestBody {
	return &RequestBody{Required: true, Content: map[string]MediaType{"application/json": {Schema: s}}}
}

// baseURL derives the public origin from X-Forwarded-* headers, falling back to the request.
// Default ports are omitted.
func baseURL(r *http.Request) string {
	scheme := firstForwarded(r.Header.Get("X-Forwarded-Proto"))
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}

	hostport := firstForwarded(r.Header.Get("X-Forwarded-Host"))
	if hostport == "" {
		hostport = r.Host
	}
	host, port := splitHostPort(hostport)
	if fwd := firstForwarded(r.Header.Get("X-Forwarded-Port")); fwd != "" {
		port = fwd
	}

	defaultPort := "80"
	if scheme == "https" {
		defaultPort = "443"
	}
	if port == "" || port == defaultPort {
		return scheme + "://" + host
	}
	return scheme + "://" + host + ":" + port
}

func firstForwarded(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

// splitHostPort tolerates hosts without a port and bracketed IPv6 literals.
func splitHostPort(hostport string) (string, string) {
	i := strings.LastIndexByte(hostport, ':')
	if i < 0 || strings.HasSuffix(hostport, "]") {
		return hostport, ""
	}
	port := hostport[i+1:]
	if _, err := strconv.Atoi(port); err != nil {
		return hostport, ""
	}
	return hostport[:i], port
}

func openAPIHandler(_ http.ResponseWriter, r *http.Request, _ Params) (any, error) {
	return BuildOpenAPI(baseURL(r)), nil
}

var docsTemplate = template.Must(template.New("docs").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: {{.DocumentURL}},
      dom_id: "#swagger-ui"
    });
  </script>
</body>
</html>
`))

// docsHandler writes the Swagger UI page itself and returns no JSON body.
func docsHandler(w http.ResponseWriter, r *http.Request, _ Params) (any, error) {
	var b strings.Builder
	err := docsTemplate.Execute(&b, struct {
		Title   string
		DocumentURL string
	}{Title: apiTitle, DocumentURL: baseURL(r) + "/openapi.json"})
	if err != nil {
		return nil, fmt.Errorf("render docs: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(b.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
	return nil, nil
}

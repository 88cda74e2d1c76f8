package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: token verification and namespace binding
//   - engine.go: cache engine backend, limits and Redis connection
//   - http.go: HTTP server and TLS configuration
//   - observability.go: logging and metrics
type AppConfig struct {
	// Name is reported by the root endpoint.
	Name string `env:"APP_NAME" envDefault:"cachegate"`

	Auth AuthConfig

	Engine EngineConfig

	HTTP HTTPConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	if c.Name == "" {
		c.Name = defaultObservabilityName
	}
	c.Auth.Sanitize()
	c.Engine.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()
}

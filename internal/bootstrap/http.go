package bootstrap

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cachegate/cachegate/config"
	httpx "github.com/cachegate/cachegate/internal/http"
	"github.com/cachegate/cachegate/internal/observability/statsd"
)

const shutdownTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// BuildHTTPServer creates the HTTP server with the full middleware chain. It does not listen.
func BuildHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger: logger,
		Services: httpx.RouterServices{
			Auth:   cfg.Services.Auth,
			Cache:  cfg.Services.Cache,
			Name:   appCfg.Name,
			Logger: logger,
		},
		HTTP:    appCfg.HTTP,
		Metrics: cfg.Services.metricsSink(),
	})

	addr := appCfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":3000"
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       appCfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      appCfg.HTTP.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	if appCfg.HTTP.TLS.Usable() {
		server.TLSConfig = &tls.Config{MinVersion: appCfg.HTTP.TLS.MinTLSVersion()}
	}
	return server
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	HTTP     config.HTTPConfig
	Metrics  statsd.Sink
}

func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	router := httpx.NewRouter(cfg.Services)

	// Order: RequestID -> Recover -> Logging -> Metrics -> Compression -> Router
	h := router
	if cfg.HTTP.CompressionEnabled {
		cfg.Logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		h = httpx.Compression(httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel, Logger: cfg.Logger})(h)
	}
	h = httpx.Metrics(cfg.Metrics)(h)
	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)
	h = httpx.RequestID()(h)

	return h
}

// ServeHTTP listens until the server is shut down. TLS is used when the certificate and key
// are both configured; an enabled but incomplete TLS config falls back to plaintext with a warning.
func ServeHTTP(server *http.Server, tlsCfg config.TLSConfig, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	var err error
	switch {
	case tlsCfg.Usable():
		logger.Info("starting HTTPS server", "addr", server.Addr)
		err = server.ListenAndServeTLS(tlsCfg.CertFile, tlsCfg.KeyFile)
	default:
		if tlsCfg.Enabled {
			logger.Warn("TLS enabled but certificate or key missing; serving plaintext",
				"cert_file_empty", tlsCfg.CertFile == "",
				"key_file_empty", tlsCfg.KeyFile == "")
		}
		logger.Info("starting HTTP server", "addr", server.Addr)
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	// In-flight requests get the full timeout even when parent is already cancelled.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(parent), shutdownTimeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}

package config

import (
	"crypto/tls"
	"strings"
	"time"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":3000"`

	// CompressionEnabled enables gzip compression for JSON responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT"  envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`

	TLS TLSConfig `envPrefix:"TLS_"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	// Clamp compression level to valid gzip range (1-9)
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 15 * time.Second
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 30 * time.Second
	}
	h.TLS.Sanitize()
}

// TLSConfig controls TLS termination by the gateway itself.
type TLSConfig struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	CertFile   string `env:"CERT_FILE"`
	KeyFile    string `env:"KEY_FILE"`
	MinVersion string `env:"MIN_VERSION" envDefault:"1.2"`
}

// Sanitize trims file paths.
func (t *TLSConfig) Sanitize() {
	t.CertFile = strings.TrimSpace(t.CertFile)
	t.KeyFile = strings.TrimSpace(t.KeyFile)
}

// Usable reports whether TLS is enabled and has both a certificate and a key.
func (t *TLSConfig) Usable() bool {
	return t.Enabled && t.CertFile != "" && t.KeyFile != ""
}

// MinTLSVersion maps MinVersion to a crypto/tls constant, defaulting to TLS 1.2.
func (t *TLSConfig) MinTLSVersion() uint16 {
	switch strings.TrimSpace(t.MinVersion) {
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}

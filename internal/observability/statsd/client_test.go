package statsd

import (
	"net"
	"strings"
	"testing"
	"time"
)

func TestSanitizePrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  cachegate.http  ": "cachegate.http",
		"..foo..":            "foo",
		".":                  "",
		"":                   "",
	}

	for input, want := range tests {
		if got := sanitizePrefix(input); got != want {
			t.Fatalf("sanitizePrefix(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeMetricName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		" http/request ": "http_request",
		"foo..bar":       "foo.bar",
		"multi  space":   "multi__space",
		".edge.":         "edge",
	}

	for input, want := range tests {
		if got := normalizeMetricName(input); got != want {
			t.Fatalf("normalizeMetricName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{"env": "prod", " service ": " cachegate "}
	local := map[string]string{"status": " 200 ", "": "ignored", "env": "stage"}

	got := formatTags(global, local)
	want := "|#env:stage,service:cachegate,status:200"
	if got != want {
		t.Fatalf("formatTags mismatch\n got: %q\nwant: %q", got, want)
	}

	if got := formatTags(nil, nil); got != "" {
		t.Fatalf("formatTags(nil, nil) = %q, want empty string", got)
	}
}

func TestClientWritesLines(t *testing.T) {
	t.Parallel()

	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	client, err := NewClient(Config{
		Enabled:    true,
		Address:    listener.LocalAddr().String(),
		Prefix:     "cachegate",
		GlobalTags: map[string]string{"env": "test"},
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	defer client.Close()

	if !client.Enabled() {
		t.Fatal("expected client to be enabled")
	}

	client.Count("http.request", 1, map[string]string{"route": "cache.read"})
	client.Timing("http.duration", 1500*time.Microsecond, nil)

	want := []string{
		"cachegate.http.request:1|c|#env:test,route:cache.read",
		"cachegate.http.duration:1.5|ms|#env:test",
	}
	buf := make([]byte, 512)
	for _, w := range want {
		_ = listener.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, _, err := listener.ReadFrom(buf)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got := string(buf[:n]); got != w {
			t.Fatalf("line mismatch\n got: %q\nwant: %q", got, w)
		}
	}
}

func TestClientCloseAndNil(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	client := &Client{conn: clientConn}
	if !client.Enabled() {
		t.Fatal("expected client.Enabled to report true with active connection")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if client.Enabled() {
		t.Fatal("expected client.Enabled to report false after Close")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close (second call) error: %v", err)
	}

	// Writes after Close are dropped.
	client.Count("dropped", 1, nil)

	var nilClient *Client
	nilClient.Count("x", 1, nil)
	if nilClient.Enabled() {
		t.Fatal("nil client should report disabled")
	}
	if err := nilClient.Close(); err != nil {
		t.Fatalf("nil client Close error: %v", err)
	}
}

func TestNewClientDisabled(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{
		{Enabled: true, Address: "   "},
		{Enabled: false, Address: "127.0.0.1:8125"},
	} {
		client, err := NewClient(cfg)
		if err != nil {
			t.Fatalf("NewClient error: %v", err)
		}
		if client.Enabled() {
			t.Fatalf("expected client to stay disabled for %+v", cfg)
		}
	}
}

func TestNewClientDialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Enabled: true, Address: "bad address"})
	if err == nil {
		t.Fatal("expected NewClient to error for invalid address")
	}
	if !strings.Contains(err.Error(), "statsd dial") {
		t.Fatalf("unexpected error: %v", err)
	}
}

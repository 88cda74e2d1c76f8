package testutil

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// TestingTB is an interface that covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Cleanup(func())
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
}

// TestSecret is the HMAC secret used by token helpers.
const TestSecret = "test-secret"

// TestTime returns a fixed reference time for deterministic tests.
func TestTime() time.Time {
	return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
}

// Redis test utilities

// SetupMiniRedis starts an in-process Redis server and returns it with a connected client.
// Both are closed when the test ends.
func SetupMiniRedis(t TestingTB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: redis client close: %v", cerr)
		}
		mr.Close()
	})
	return mr, client
}

// SetupTestRedis returns a client for REDIS_ADDR when set (real server integration runs),
// and an in-process miniredis otherwise. The selected database is flushed first.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		_, client := SetupMiniRedis(t)
		return client
	}

	db, _ := strconv.Atoi(getEnvOrDefault("REDIS_TEST_DB", "15"))
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if envBool("TEST_REQUIRE_REDIS") {
			t.Fatalf("Redis not available for testing at %s: %v", addr, err)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}
	client.FlushDB(ctx)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Token helpers

// MintToken signs claims with HS256 and TestSecret.
func MintToken(t TestingTB, claims jwt.MapClaims) string {
	t.Helper()
	return MintTokenWith(t, jwt.SigningMethodHS256, []byte(TestSecret), claims)
}

// MintTokenWith signs claims with an explicit method and key.
func MintTokenWith(t TestingTB, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// ValidClaims returns claims expiring an hour from now, merged with extra.
func ValidClaims(extra map[string]any) jwt.MapClaims {
	claims := jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	return claims
}

// ExpiredClaims returns claims that expired an hour ago, merged with extra.
func ExpiredClaims(extra map[string]any) jwt.MapClaims {
	claims := ValidClaims(extra)
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	return claims
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to i.
func IntPtr(i int) *int {
	return &i
}

// Package mocks provides mock implementations of the cache engine ports for testing.
//
// This package uses go.uber.org/mock (gomock). To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	engine := mocks.NewMockEngine(ctrl)
//	engine.EXPECT().Read(gomock.Any(), "k", "ns").Return(nil, false, errors.New("boom"))
package mocks

// Generate mock for Engine interface from internal/core package.
// This creates MockEngine with methods for all Engine interface methods:
// Read, Write, Delete, Exists, Inspect, Keys, ClearNamespace, LeastTouched, AllKeys, Metrics, ResetMetrics, Reset, Scope
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=engine_mock.go github.com/cachegate/cachegate/internal/core Engine

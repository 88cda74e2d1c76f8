package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cachegate/cachegate/config"
	"github.com/cachegate/cachegate/internal/core"
	domainauth "github.com/cachegate/cachegate/internal/domain/auth"
	"github.com/cachegate/cachegate/internal/domain/query"
	"github.com/cachegate/cachegate/internal/engine/memory"
	apperrors "github.com/cachegate/cachegate/internal/errors"
	"github.com/cachegate/cachegate/internal/mocks"
	"github.com/cachegate/cachegate/internal/testutil"
)

func newMemoryCacheService(t *testing.T, bind config.BindConfig) (*CacheService, *memory.Engine) {
	t.Helper()
	engine := memory.New(memory.Options{Clock: core.NewFixedTimeProvider(testutil.TestTime())})
	svc := NewCacheService(CacheServiceOptions{Engine: engine, Binder: NewNamespaceBinder(bind)})
	return svc, engine
}

func TestCacheService_WriteReadDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryCacheService(t, config.BindConfig{})
	caller := Caller{}

	value := map[string]any{"name": "Ann", "age": json.Number("31")}
	require.NoError(t, svc.Write(ctx, caller, WriteParams{Key: "user", Value: value, Namespace: "tenant"}))

	got, err := svc.Read(ctx, caller, "user", "tenant")
	require.NoError(t, err)
	assert.Equal(t, value, got)

	exists, err := svc.Exists(ctx, caller, "user", "tenant")
	require.NoError(t, err)
	assert.True(t, exists)

	info, err := svc.Inspect(ctx, caller, "user", "tenant")
	require.NoError(t, err)
	assert.Equal(t, "user", info.Key)

	require.NoError(t, svc.Delete(ctx, caller, "user", "tenant"))
	_, err = svc.Read(ctx, caller, "user", "tenant")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.Inspect(ctx, caller, "user", "tenant")
	assert.True(t, apperrors.IsNotFound(err))

	// Deleting again is not an error.
	require.NoError(t, svc.Delete(ctx, caller, "user", "tenant"))
}

func TestCacheService_WriteRequiresValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	svc := NewCacheService(CacheServiceOptions{Engine: engine})

	err := svc.Write(context.Background(), Caller{}, WriteParams{Key: "k"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "value is required", apperrors.PublicMessage(err))
}

func TestCacheService_WritePassesExpiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	svc := NewCacheService(CacheServiceOptions{Engine: engine})

	engine.EXPECT().Write(gomock.Any(), core.WriteRequest{
		Key: "k", Value: "v", ExpiresIn: 30 * time.Second, Namespace: "ns",
	}).Return(nil)

	require.NoError(t, svc.Write(context.Background(), Caller{}, WriteParams{
		Key: "k", Value: "v", ExpiresIn: 30 * time.Second, Namespace: "ns",
	}))
}

func TestCacheService_KeysRequiresNamespaceWhenUnbound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryCacheService(t, config.BindConfig{})

	_, err := svc.Keys(ctx, Caller{}, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "namespace is required", apperrors.PublicMessage(err))

	require.NoError(t, svc.Write(ctx, Caller{}, WriteParams{Key: "a", Value: 1, Namespace: "ns"}))
	keys, err := svc.Keys(ctx, Caller{}, "ns")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}

func TestCacheService_Binding(t *testing.T) {
	ctx := context.Background()
	svc, engine := newMemoryCacheService(t, config.BindConfig{Enabled: true, NamespaceClaim: "sub", Prefix: "caller:"})
	acme := Caller{Claims: domainauth.Claims{"sub": "acme"}}

	require.NoError(t, svc.Write(ctx, acme, WriteParams{Key: "k", Value: "v"}))

	// Stored under the derived namespace.
	got, ok, err := engine.Read(ctx, "k", "caller:acme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", got)

	keys, err := svc.Keys(ctx, acme, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)

	_, err = svc.Read(ctx, acme, "k", "other")
	assert.True(t, apperrors.IsForbidden(err))

	err = svc.Write(ctx, acme, WriteParams{Key: "k", Value: "x", Namespace: "other"})
	assert.True(t, apperrors.IsForbidden(err))

	_, err = svc.ClearNamespace(ctx, acme, "other")
	assert.True(t, apperrors.IsForbidden(err))

	ns, err := svc.ClearNamespace(ctx, acme, "caller:acme")
	require.NoError(t, err)
	assert.Equal(t, "caller:acme", ns)

	_, err = svc.Read(ctx, Caller{Claims: domainauth.Claims{"role": "admin"}}, "k", "")
	assert.Equal(t, "missing bind claim", apperrors.PublicMessage(err))
}

func TestCacheService_BindingRejectsBeforeEngine(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	binder := NewNamespaceBinder(config.BindConfig{Enabled: true, NamespaceClaim: "sub"})
	svc := NewCacheService(CacheServiceOptions{Engine: engine, Binder: binder})

	// No engine expectations: any engine call fails the test.
	caller := Caller{Claims: domainauth.Claims{"sub": "acme"}}
	_, err := svc.Read(context.Background(), caller, "k", "other")
	assert.True(t, apperrors.IsForbidden(err))
	_, err = svc.Query(context.Background(), caller, map[string]any{"namespace": "other"})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCacheService_EngineErrorsPropagate(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	svc := NewCacheService(CacheServiceOptions{Engine: engine})
	boom := errors.New("connection refused")

	engine.EXPECT().Read(gomock.Any(), "k", "ns").Return(nil, false, boom)
	engine.EXPECT().Keys(gomock.Any(), "ns").Return(nil, boom)
	engine.EXPECT().Reset(gomock.Any()).Return(boom)

	_, err := svc.Read(context.Background(), Caller{}, "k", "ns")
	assert.ErrorIs(t, err, boom)
	_, err = svc.Keys(context.Background(), Caller{}, "ns")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, svc.Reset(context.Background()), boom)
}

func TestCacheService_LeastTouchedDefault(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	svc := NewCacheService(CacheServiceOptions{Engine: engine})

	engine.EXPECT().LeastTouched(gomock.Any(), DefaultLeastTouchedCount).Return([]core.TouchCount{}, nil)
	engine.EXPECT().LeastTouched(gomock.Any(), 3).Return([]core.TouchCount{{Key: "a", Touches: 1}}, nil)

	_, err := svc.LeastTouched(context.Background(), 0)
	require.NoError(t, err)
	got, err := svc.LeastTouched(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCacheService_Query(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryCacheService(t, config.BindConfig{})

	for key, age := range map[string]float64{"a": 17, "b": 18, "c": 25, "d": 30, "e": 31} {
		require.NoError(t, svc.Write(ctx, Caller{}, WriteParams{
			Key: key, Value: map[string]any{"age": age}, Namespace: "people",
		}))
	}

	result, err := svc.Query(ctx, Caller{}, map[string]any{
		"namespace": "people",
		"where":     map[string]any{"age": map[string]any{"range": []any{float64(18), float64(30)}}},
		"order":     map[string]any{"field": "age", "direction": "desc"},
		"limit":     float64(2),
		"action":    "all",
	})
	require.NoError(t, err)
	records, ok := result.([]query.Record)
	require.True(t, ok)
	require.Len(t, records, 2)
	assert.Equal(t, "d", records[0]["_key"])
	assert.Equal(t, "c", records[1]["_key"])

	count, err := svc.Query(ctx, Caller{}, map[string]any{"namespace": "people", "action": "count"})
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestCacheService_QueryUnknownActionNeverReachesEngine(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	svc := NewCacheService(CacheServiceOptions{Engine: engine})

	_, err := svc.Query(context.Background(), Caller{}, map[string]any{"action": "delete_all"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "unknown action: delete_all", apperrors.PublicMessage(err))
}

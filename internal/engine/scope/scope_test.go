package scope

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachegate/cachegate/internal/domain/query"
)

func people() Loader {
	return func(context.Context) ([]query.Record, error) {
		return []query.Record{
			NewRecord("ann", map[string]any{"name": "Ann", "age": float64(31), "team": "red", "address": map[string]any{"city": "Oslo"}}),
			NewRecord("bob", map[string]any{"name": "Bob", "age": float64(18), "team": "blue", "address": map[string]any{"city": "Rome"}}),
			NewRecord("cid", map[string]any{"name": "Cid", "age": float64(25), "team": "red"}),
			NewRecord("dee", map[string]any{"name": "Dee", "age": float64(30), "team": "blue"}),
			NewRecord("eve", "just a string"),
		}, nil
	}
}

func TestScope_RangeOrderLimit(t *testing.T) {
	spec, err := query.Compile(map[string]any{
		"where":  map[string]any{"age": map[string]any{"range": []any{float64(18), float64(30)}}},
		"order":  map[string]any{"field": "age", "direction": "desc"},
		"limit":  float64(5),
		"action": "pluck",
		"fields": "_key",
	})
	require.NoError(t, err)

	got, err := spec.Execute(context.Background(), New(people()))
	require.NoError(t, err)
	assert.Equal(t, []any{"dee", "cid", "bob"}, got)
}

func TestScope_OffsetAndLimit(t *testing.T) {
	ctx := context.Background()
	s := New(people()).Order("_key", query.Asc).Offset(1).Limit(2)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bob", all[0]["_key"])
	assert.Equal(t, "cid", all[1]["_key"])

	empty, err := New(people()).Offset(10).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestScope_MissingValuesSortLast(t *testing.T) {
	ctx := context.Background()
	for _, dir := range []query.Direction{query.Asc, query.Desc} {
		last, err := New(people()).Order("age", dir).Last(ctx)
		require.NoError(t, err)
		assert.Equal(t, "eve", last["_key"], "direction %s", dir)
	}
}

func TestScope_NestedLookup(t *testing.T) {
	ctx := context.Background()
	first, err := New(people()).
		Where([]query.Condition{{Field: "address.city", Predicate: query.Equality{Value: "Rome"}}}).
		First(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", first["_key"])
}

func TestScope_Aggregates(t *testing.T) {
	ctx := context.Background()
	s := New(people())

	sum, err := s.Sum(ctx, "age")
	require.NoError(t, err)
	assert.InDelta(t, 104.0, sum, 0.0001)

	avg, err := s.Average(ctx, "age")
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 26.0, *avg, 0.0001)

	none, err := s.Average(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, none)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	groups, err := s.GroupBy(ctx, "team")
	require.NoError(t, err)
	assert.Len(t, groups["red"], 2)
	assert.Len(t, groups["blue"], 2)
	assert.Len(t, groups[""], 1)

	rows, err := s.Order("_key", query.Asc).Limit(1).Pluck(ctx, "name", "team")
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{"Ann", "red"}}, rows)
}

func TestScope_EmptyTerminals(t *testing.T) {
	ctx := context.Background()
	s := New(people()).Where([]query.Condition{{Field: "team", Predicate: query.Equality{Value: "green"}}})

	first, err := s.First(ctx)
	require.NoError(t, err)
	assert.Nil(t, first)

	exists, err := s.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestScope_BuildersDoNotMutate(t *testing.T) {
	ctx := context.Background()
	base := New(people())
	_ = base.Where([]query.Condition{{Field: "team", Predicate: query.Equality{Value: "red"}}})

	n, err := base.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestScope_LoaderError(t *testing.T) {
	boom := errors.New("boom")
	s := New(func(context.Context) ([]query.Record, error) { return nil, boom })

	_, err := s.All(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestNewRecord(t *testing.T) {
	obj := map[string]any{"a": 1}
	rec := NewRecord("k", obj)
	assert.Equal(t, query.Record{"a": 1, "_key": "k"}, rec)
	assert.NotContains(t, obj, "_key")

	assert.Equal(t, query.Record{"_key": "k", "value": float64(2)}, NewRecord("k", float64(2)))
}

// Package scope implements query.Scope over any engine able to load the records of a namespace.
package scope

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/cachegate/cachegate/internal/domain/query"
)

// Loader returns the live records of one namespace, each carrying its "_key".
type Loader func(ctx context.Context) ([]query.Record, error)

// Scope is an immutable query over a Loader. Builder methods return narrowed copies.
type Scope struct {
	load   Loader
	conds  []query.Condition
	order  *query.Order
	limit  *int
	offset *int
}

var _ query.Scope = (*Scope)(nil)

// New creates a scope that evaluates against load.
func New(load Loader) *Scope {
	return &Scope{load: load}
}

func (s *Scope) clone() *Scope {
	c := *s
	c.conds = append([]query.Condition(nil), s.conds...)
	return &c
}

func (s *Scope) Where(conds []query.Condition) query.Scope {
	c := s.clone()
	c.conds = append(c.conds, conds...)
	return c
}

func (s *Scope) Order(field string, dir query.Direction) query.Scope {
	c := s.clone()
	c.order = &query.Order{Field: field, Direction: dir}
	return c
}

func (s *Scope) Limit(n int) query.Scope {
	c := s.clone()
	c.limit = &n
	return c
}

func (s *Scope) Offset(n int) query.Scope {
	c := s.clone()
	c.offset = &n
	return c
}

// evaluate loads, filters, orders and pages the records.
func (s *Scope) evaluate(ctx context.Context) ([]query.Record, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := records[:0:0]
	for _, rec := range records {
		if s.matches(rec) {
			out = append(out, rec)
		}
	}

	if s.order != nil {
		sortRecords(out, s.order)
	}

	if s.offset != nil {
		if *s.offset >= len(out) {
			out = out[:0]
		} else {
			out = out[*s.offset:]
		}
	}
	if s.limit != nil && *s.limit < len(out) {
		out = out[:*s.limit]
	}
	return out, nil
}

func (s *Scope) matches(rec query.Record) bool {
	for _, cond := range s.conds {
		v, _ := Lookup(rec, cond.Field)
		if !cond.Predicate.Match(v) {
			return false
		}
	}
	return true
}

// sortRecords orders by field, keeping records with missing or incomparable values last.
func sortRecords(records []query.Record, order *query.Order) {
	sort.SliceStable(records, func(i, j int) bool {
		a, _ := Lookup(records[i], order.Field)
		b, _ := Lookup(records[j], order.Field)
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		c, ok := query.CompareValues(a, b)
		if !ok {
			return false
		}
		if order.Direction == query.Desc {
			return c > 0
		}
		return c < 0
	})
}

// Lookup resolves field in rec. A direct key wins; dotted paths are resolved as JMESPath
// expressions so nested objects can be filtered (address.city).
func Lookup(rec query.Record, field string) (any, bool) {
	if v, ok := rec[field]; ok {
		return v, true
	}
	if !strings.Contains(field, ".") {
		return nil, false
	}
	v, err := jmespath.Search(field, map[string]any(rec))
	if err != nil {
		slog.Debug("field path lookup failed", "field", field, "error", err)
		return nil, false
	}
	return v, v != nil
}

func (s *Scope) All(ctx context.Context) ([]query.Record, error) {
	return s.evaluate(ctx)
}

func (s *Scope) First(ctx context.Context) (query.Record, error) {
	records, err := s.evaluate(ctx)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

func (s *Scope) Last(ctx context.Context) (query.Record, error) {
	records, err := s.evaluate(ctx)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[len(records)-1], nil
}

func (s *Scope) Count(ctx context.Context) (int, error) {
	records, err := s.evaluate(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *Scope) Exists(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx)
	return n > 0, err
}

// Pluck returns field values per record: bare values for one field, value lists for several.
func (s *Scope) Pluck(ctx context.Context, fields ...string) ([]any, error) {
	records, err := s.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(records))
	for _, rec := range records {
		if len(fields) == 1 {
			v, _ := Lookup(rec, fields[0])
			out = append(out, v)
			continue
		}
		row := make([]any, len(fields))
		for i, f := range fields {
			row[i], _ = Lookup(rec, f)
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Scope) numbers(ctx context.Context, field string) ([]float64, error) {
	records, err := s.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	var nums []float64
	for _, rec := range records {
		v, _ := Lookup(rec, field)
		if f, ok := query.ToFloat(v); ok {
			nums = append(nums, f)
		}
	}
	return nums, nil
}

// Sum adds the numeric values of field; non-numeric values are skipped.
func (s *Scope) Sum(ctx context.Context, field string) (float64, error) {
	nums, err := s.numbers(ctx, field)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, n := range nums {
		total += n
	}
	return total, nil
}

// Average returns the mean of the numeric values of field, or nil when there are none.
func (s *Scope) Average(ctx context.Context, field string) (*float64, error) {
	nums, err := s.numbers(ctx, field)
	if err != nil || len(nums) == 0 {
		return nil, err
	}
	var total float64
	for _, n := range nums {
		total += n
	}
	avg := total / float64(len(nums))
	return &avg, nil
}

// GroupBy buckets records by the string form of field. Missing values group under "".
func (s *Scope) GroupBy(ctx context.Context, field string) (map[string][]query.Record, error) {
	records, err := s.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	groups := make(map[string][]query.Record)
	for _, rec := range records {
		v, _ := Lookup(rec, field)
		key := ""
		if v != nil {
			key = fmt.Sprint(v)
		}
		groups[key] = append(groups[key], rec)
	}
	return groups, nil
}

// NewRecord builds the query view of a stored value: objects gain "_key", other values are
// wrapped as {"_key": key, "value": v}.
func NewRecord(key string, value any) query.Record {
	if obj, ok := value.(map[string]any); ok {
		rec := make(query.Record, len(obj)+1)
		for k, v := range obj {
			rec[k] = v
		}
		rec["_key"] = key
		return rec
	}
	return query.Record{"_key": key, "value": value}
}

// Package query compiles declarative filter/order/pagination/action descriptions into the
// predicate forms a cache query scope executes.
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	apperrors "github.com/cachegate/cachegate/internal/errors"
)

// Action is the terminal operation run against a compiled scope.
type Action string

const (
	ActionAll     Action = "all"
	ActionFirst   Action = "first"
	ActionLast    Action = "last"
	ActionCount   Action = "count"
	ActionExists  Action = "exists"
	ActionPluck   Action = "pluck"
	ActionSum     Action = "sum"
	ActionAverage Action = "average"
	ActionGroupBy Action = "group_by"
)

// ParseAction validates an action name against the enumerated set.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionAll, ActionFirst, ActionLast, ActionCount, ActionExists,
		ActionPluck, ActionSum, ActionAverage, ActionGroupBy:
		return a, nil
	default:
		return "", apperrors.ValidationField("action", "unknown action: "+s)
	}
}

// Direction is the sort direction of an ordering.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Condition pairs a record field with its compiled predicate.
type Condition struct {
	Field     string
	Predicate Predicate
}

// Order is a compiled ordering clause.
type Order struct {
	Field     string
	Direction Direction
}

// Spec is a fully compiled, ready-to-execute query.
type Spec struct {
	Namespace string
	Where     []Condition
	Order     *Order
	Limit     *int
	Offset    *int
	Action    Action
	// Fields holds the pluck field list.
	Fields []string
	// Field holds the sum/average/group_by field.
	Field string
}

// Record is one queryable cache entry: the stored object plus its "_key".
type Record map[string]any

// Scope is the query surface of a cache engine. Builder methods return a narrowed scope;
// terminal methods evaluate it.
type Scope interface {
	Where(conds []Condition) Scope
	Order(field string, dir Direction) Scope
	Limit(n int) Scope
	Offset(n int) Scope

	All(ctx context.Context) ([]Record, error)
	First(ctx context.Context) (Record, error)
	Last(ctx context.Context) (Record, error)
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context) (bool, error)
	Pluck(ctx context.Context, fields ...string) ([]any, error)
	Sum(ctx context.Context, field string) (float64, error)
	Average(ctx context.Context, field string) (*float64, error)
	GroupBy(ctx context.Context, field string) (map[string][]Record, error)
}

// Compile translates a decoded request parameter set into a Spec.
// Any input problem is returned as a validation error and nothing reaches the engine.
func Compile(params map[string]any) (*Spec, error) {
	spec := &Spec{}

	if ns, ok := params["namespace"]; ok && ns != nil {
		spec.Namespace = toString(ns)
	}

	action := ActionAll
	if raw, ok := params["action"]; ok && raw != nil {
		parsed, err := ParseAction(toString(raw))
		if err != nil {
			return nil, err
		}
		action = parsed
	}
	spec.Action = action

	if where, ok := params["where"].(map[string]any); ok {
		conds, err := compileWhere(where)
		if err != nil {
			return nil, err
		}
		spec.Where = conds
	}

	if raw, ok := params["order"]; ok && raw != nil {
		order, err := compileOrder(raw)
		if err != nil {
			return nil, err
		}
		spec.Order = order
	}

	var err error
	if spec.Limit, err = compilePagination(params, "limit"); err != nil {
		return nil, err
	}
	if spec.Offset, err = compilePagination(params, "offset"); err != nil {
		return nil, err
	}

	if err := spec.compileActionParams(params); err != nil {
		return nil, err
	}

	return spec, nil
}

func (s *Spec) compileActionParams(params map[string]any) error {
	switch s.Action {
	case ActionPluck:
		s.Fields = toStringList(params["fields"])
		if len(s.Fields) == 0 {
			return apperrors.ValidationField("fields", "fields is required for pluck")
		}
	case ActionSum, ActionAverage, ActionGroupBy:
		raw, ok := params["field"]
		if !ok || raw == nil || toString(raw) == "" {
			return apperrors.ValidationField("field", fmt.Sprintf("field is required for %s", s.Action))
		}
		s.Field = toString(raw)
	}
	return nil
}

func compileWhere(where map[string]any) ([]Condition, error) {
	fields := make([]string, 0, len(where))
	for f := range where {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	conds := make([]Condition, 0, len(fields))
	for _, field := range fields {
		pred, err := ParseCondition(where[field])
		if err != nil {
			return nil, apperrors.ValidationField(field, fmt.Sprintf("invalid condition for %s: %v", field, err))
		}
		conds = append(conds, Condition{Field: field, Predicate: pred})
	}
	return conds, nil
}

// ParseCondition classifies one client condition. A non-object is a literal equality value.
// Objects are checked in a fixed order: regex, then range, then in; anything else is opaque
// equality on the whole object.
func ParseCondition(raw any) (Predicate, error) {
	cond, ok := raw.(map[string]any)
	if !ok {
		return Equality{Value: raw}, nil
	}

	if pattern, ok := cond["regex"]; ok {
		source, flags := toString(pattern), toString(cond["flags"])
		re, err := compileRegex(source, flags)
		if err != nil {
			return nil, err
		}
		return Regex{Source: source, Flags: flags, re: re}, nil
	}

	if raw, ok := cond["range"]; ok {
		if r, ok := parseRange(raw); ok {
			return r, nil
		}
	}

	if raw, ok := cond["in"]; ok {
		return Membership{Values: toList(raw)}, nil
	}

	return Equality{Value: cond}, nil
}

type rangeBounds struct {
	Min any `mapstructure:"min"`
	Max any `mapstructure:"max"`
}

func parseRange(raw any) (Range, bool) {
	switch r := raw.(type) {
	case []any:
		if len(r) != 2 {
			return Range{}, false
		}
		return Range{Min: r[0], Max: r[1], Inclusive: true}, true
	case map[string]any:
		var bounds rangeBounds
		if err := mapstructure.Decode(r, &bounds); err != nil {
			return Range{}, false
		}
		inclusive := true
		if v, present := r["inclusive"]; present {
			inclusive = truthy(v)
		}
		return Range{Min: bounds.Min, Max: bounds.Max, Inclusive: inclusive}, true
	default:
		return Range{}, false
	}
}

type orderInput struct {
	Field     string `mapstructure:"field"`
	Direction string `mapstructure:"direction"`
}

func compileOrder(raw any) (*Order, error) {
	switch o := raw.(type) {
	case string:
		if o == "" {
			return nil, nil
		}
		return &Order{Field: o, Direction: Asc}, nil
	case map[string]any:
		var in orderInput
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &in,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(o); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid order")
		}
		if in.Field == "" {
			return nil, apperrors.ValidationField("order", "order field is required")
		}
		dir := Direction(strings.ToLower(strings.TrimSpace(in.Direction)))
		switch dir {
		case "":
			dir = Asc
		case Asc, Desc:
		default:
			return nil, apperrors.ValidationField("order", "invalid order direction: "+in.Direction)
		}
		return &Order{Field: in.Field, Direction: dir}, nil
	default:
		return nil, apperrors.ValidationField("order", "order must be a field name or an object")
	}
}

func compilePagination(params map[string]any, name string) (*int, error) {
	n, ok := ParseInt(params[name])
	if !ok {
		return nil, nil
	}
	if n < 0 {
		return nil, apperrors.ValidationField(name, name+" must not be negative")
	}
	return &n, nil
}

// Apply narrows scope by the compiled where, order, offset and limit clauses.
func (s *Spec) Apply(scope Scope) Scope {
	if len(s.Where) > 0 {
		scope = scope.Where(s.Where)
	}
	if s.Order != nil {
		scope = scope.Order(s.Order.Field, s.Order.Direction)
	}
	if s.Limit != nil {
		scope = scope.Limit(*s.Limit)
	}
	if s.Offset != nil {
		scope = scope.Offset(*s.Offset)
	}
	return scope
}

// Execute applies the spec to scope and runs its action.
func (s *Spec) Execute(ctx context.Context, scope Scope) (any, error) {
	scope = s.Apply(scope)

	switch s.Action {
	case ActionAll:
		return scope.All(ctx)
	case ActionFirst:
		return scope.First(ctx)
	case ActionLast:
		return scope.Last(ctx)
	case ActionCount:
		return scope.Count(ctx)
	case ActionExists:
		return scope.Exists(ctx)
	case ActionPluck:
		return scope.Pluck(ctx, s.Fields...)
	case ActionSum:
		return scope.Sum(ctx, s.Field)
	case ActionAverage:
		return scope.Average(ctx, s.Field)
	case ActionGroupBy:
		return scope.GroupBy(ctx, s.Field)
	default:
		return nil, apperrors.ValidationField("action", "unknown action: "+string(s.Action))
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func toList(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	default:
		return []any{t}
	}
}

func toStringList(v any) []string {
	items := toList(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := toString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	default:
		return true
	}
}

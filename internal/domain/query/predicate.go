package query

import (
	"regexp"
)

// Kind tags the predicate variant.
type Kind string

const (
	KindEquality   Kind = "equality"
	KindRegex      Kind = "regex"
	KindRange      Kind = "range"
	KindMembership Kind = "membership"
)

// Predicate is a compiled per-field condition. The set of implementations is closed:
// Equality, Regex, Range and Membership.
type Predicate interface {
	Kind() Kind
	Match(v any) bool
	predicate()
}

// Equality matches values equal to Value. Numbers compare numerically, objects and lists deeply.
type Equality struct {
	Value any
}

func (Equality) Kind() Kind { return KindEquality }
func (Equality) predicate() {}

// Match reports whether v equals the literal.
func (p Equality) Match(v any) bool { return valuesEqual(v, p.Value) }

// Regex matches string values against a compiled pattern. Non-string values never match.
type Regex struct {
	Source string
	Flags  string
	re     *regexp.Regexp
}

func (Regex) Kind() Kind { return KindRegex }
func (Regex) predicate() {}

// Match reports whether v is a string matched by the pattern.
func (p Regex) Match(v any) bool {
	s, ok := v.(string)
	if !ok || p.re == nil {
		return false
	}
	return p.re.MatchString(s)
}

// Pattern returns the compiled expression.
func (p Regex) Pattern() *regexp.Regexp { return p.re }

// Range matches values between Min and Max. A nil bound is open. Inclusive controls the upper bound;
// the lower bound is always inclusive.
type Range struct {
	Min       any
	Max       any
	Inclusive bool
}

func (Range) Kind() Kind { return KindRange }
func (Range) predicate() {}

// Match reports whether v falls within the range. Values not comparable with a bound never match.
func (p Range) Match(v any) bool {
	if v == nil {
		return false
	}
	if p.Min != nil {
		c, ok := compareValues(v, p.Min)
		if !ok || c < 0 {
			return false
		}
	}
	if p.Max != nil {
		c, ok := compareValues(v, p.Max)
		if !ok {
			return false
		}
		if p.Inclusive {
			return c <= 0
		}
		return c < 0
	}
	return true
}

// Membership matches values equal to any element of Values.
type Membership struct {
	Values []any
}

func (Membership) Kind() Kind { return KindMembership }
func (Membership) predicate() {}

// Match reports whether v is one of the listed values.
func (p Membership) Match(v any) bool {
	for _, candidate := range p.Values {
		if valuesEqual(v, candidate) {
			return true
		}
	}
	return false
}

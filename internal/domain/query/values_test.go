package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuesEqual_Numbers(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "json number and float", a: json.Number("30"), b: float64(30), want: true},
		{name: "json number and int", a: json.Number("30"), b: 30, want: true},
		{name: "large integers stay distinct", a: json.Number("9007199254740993"), b: json.Number("9007199254740992"), want: false},
		{name: "large integer equals itself", a: json.Number("9007199254740993"), b: json.Number("9007199254740993"), want: true},
		{name: "fraction", a: json.Number("1.5"), b: float64(1.5), want: true},
		{name: "number and string", a: json.Number("1"), b: "1", want: false},
		{name: "nested", a: map[string]any{"n": json.Number("2")}, b: map[string]any{"n": float64(2)}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valuesEqual(tt.a, tt.b))
		})
	}
}

func TestCompareValues_LargeIntegers(t *testing.T) {
	c, ok := compareValues(json.Number("9007199254740993"), json.Number("9007199254740992"))
	assert.True(t, ok)
	assert.Equal(t, 1, c)

	c, ok = compareValues(json.Number("2.5"), 3)
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	_, ok = compareValues(json.Number("1"), "1")
	assert.False(t, ok)
}

func TestParseInt_JSONNumber(t *testing.T) {
	n, ok := ParseInt(json.Number("25"))
	assert.True(t, ok)
	assert.Equal(t, 25, n)

	n, ok = ParseInt(json.Number("2.9"))
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = ParseInt(json.Number("abc"))
	assert.False(t, ok)
}

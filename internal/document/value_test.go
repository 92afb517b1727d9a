package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeepsNumbers(t *testing.T) {
	v, err := Decode([]byte(`{"year": 2020, "ratio": 0.5, "big": 12345678901234567890, "ok": true, "n": null}`))
	require.NoError(t, err)

	m, ok := v.(Map)
	require.True(t, ok)
	assert.Equal(t, Number("2020"), m["year"])
	assert.Equal(t, Number("0.5"), m["ratio"])
	assert.Equal(t, Number("12345678901234567890"), m["big"])
	assert.Equal(t, Bool(true), m["ok"])
	assert.Equal(t, Null{}, m["n"])
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"prose", "Here is the resume: {}"},
		{"trailing", `{"a": 1} and more`},
		{"two values", `{} {}`},
		{"truncated", `{"a": [1, 2`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDecodeAllowsSurroundingWhitespace(t *testing.T) {
	v, err := Decode([]byte("\n  [1, \"a\"]  \n"))
	require.NoError(t, err)
	assert.Equal(t, List{Number("1"), String("a")}, v)
}

func TestMarshalRoundTripsNumbersAndNull(t *testing.T) {
	v := Map{
		"year": Number("2020"),
		"gpa":  Number("3.85"),
		"none": Null{},
		"tags": List{String("go"), Bool(false)},
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":2020,"gpa":3.85,"none":null,"tags":["go",false]}`, string(data))
}

func TestNative(t *testing.T) {
	v := Map{
		"i": Number("7"),
		"f": Number("1.5"),
		"e": Number("2e3"),
		"l": List{Null{}, String("x")},
	}
	got := Native(v).(map[string]any)
	assert.Equal(t, int64(7), got["i"])
	assert.Equal(t, 1.5, got["f"])
	assert.Equal(t, int64(2000), got["e"])
	assert.Equal(t, []any{nil, "x"}, got["l"])
}

func TestFromNative(t *testing.T) {
	v, err := FromNative(map[string]any{
		"a": 1,
		"b": []any{"x", 2.5, nil},
		"c": map[string]any{"d": true},
	})
	require.NoError(t, err)
	assert.Equal(t, Map{
		"a": Number("1"),
		"b": List{String("x"), Number("2.5"), Null{}},
		"c": Map{"d": Bool(true)},
	}, v)

	_, err = FromNative(struct{}{})
	assert.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	orig := Map{"basics": Map{"skills": List{String("go")}}}
	cp := Clone(orig).(Map)
	cp["basics"].(Map)["skills"] = List{}
	cp["new"] = Bool(true)

	assert.Equal(t, List{String("go")}, orig["basics"].(Map)["skills"])
	_, ok := orig["new"]
	assert.False(t, ok)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{nil, false},
		{Null{}, false},
		{Bool(false), false},
		{Bool(true), true},
		{Number("0"), false},
		{Number("0.0"), false},
		{Number("-3"), true},
		{String(""), false},
		{String("Acme"), true},
		{List{}, false},
		{List{Null{}}, true},
		{Map{}, false},
		{Map{"a": Null{}}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truthy(tt.v), "Truthy(%#v)", tt.v)
	}
}

func TestNumberInt(t *testing.T) {
	i, ok := Number("2021").Int()
	assert.True(t, ok)
	assert.Equal(t, int64(2021), i)

	_, ok = Number("20.5").Int()
	assert.False(t, ok)

	_, ok = Number("abc").Int()
	assert.False(t, ok)
}

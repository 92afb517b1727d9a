// Package document models decoded JSON as a closed set of value kinds so that
// recursive traversals can switch on them exhaustively.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one of Null, Bool, Number, String, List or Map.
type Value interface {
	Kind() Kind
}

type (
	Null   struct{}
	Bool   bool
	Number json.Number
	String string
	List   []Value
	Map    map[string]Value
)

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }
func (Map) Kind() Kind    { return KindMap }

func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("0"), nil
	}
	return []byte(n), nil
}

// Float reports the numeric value of n.
func (n Number) Float() (float64, bool) {
	f, err := strconv.ParseFloat(string(n), 64)
	return f, err == nil
}

// IsZero reports whether n is numerically zero. Unparseable numbers are not zero.
func (n Number) IsZero() bool {
	f, ok := n.Float()
	return ok && f == 0
}

// Int returns n as an int64 when it holds an integral value.
func (n Number) Int() (int64, bool) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, true
	}
	f, ok := n.Float()
	if !ok || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

// Int builds a Number from an integer.
func Int(i int64) Number { return Number(strconv.FormatInt(i, 10)) }

var ErrTrailingData = errors.New("document: trailing data after JSON value")

// Decode parses exactly one JSON value. Numbers keep their textual form.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return FromNative(raw)
}

// FromNative converts the output of encoding/json (or a hand-built tree of
// maps, slices and scalars) into a Value.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case float32:
		return Number(strconv.FormatFloat(float64(t), 'f', -1, 32)), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case []any:
		out := make(List, 0, len(t))
		for i, e := range t {
			v, err := FromNative(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	case map[string]any:
		out := make(Map, len(t))
		for k, e := range t {
			v, err := FromNative(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("document: unsupported type %T", x)
}

// Native converts v into plain Go values. Integral numbers become int64,
// other numbers float64.
func Native(v Value) any {
	switch t := v.(type) {
	case Null:
		return nil
	case Bool:
		return bool(t)
	case Number:
		if i, ok := t.Int(); ok {
			return i
		}
		f, _ := t.Float()
		return f
	case String:
		return string(t)
	case List:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Native(e)
		}
		return out
	case Map:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Native(e)
		}
		return out
	}
	return nil
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch t := v.(type) {
	case List:
		out := make(List, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case Map:
		out := make(Map, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	}
	return v
}

// Truthy reports whether v carries content. Null, false, zero, empty strings
// and empty containers do not.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(t)
	case Number:
		return !t.IsZero()
	case String:
		return t != ""
	case List:
		return len(t) > 0
	case Map:
		return len(t) > 0
	}
	return false
}

// GetString returns m[key] when it is a String.
func (m Map) GetString(key string) (string, bool) {
	s, ok := m[key].(String)
	return string(s), ok
}

// GetMap returns m[key] when it is a Map.
func (m Map) GetMap(key string) (Map, bool) {
	sub, ok := m[key].(Map)
	return sub, ok
}

// GetList returns m[key] when it is a List.
func (m Map) GetList(key string) (List, bool) {
	l, ok := m[key].(List)
	return l, ok
}

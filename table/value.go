package table

import (
	"math"
	"strconv"
)

// Kind is the inferred type of a cell.
type Kind int

const (
	Null Kind = iota
	Int
	Float
	String
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single immutable cell.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

func NullValue() Value { return Value{kind: Null} }
func IntValue(i int64) Value { return Value{kind: Int, i: i} }
func FloatValue(f float64) Value { return Value{kind: Float, f: f} }
func StringValue(s string) Value { return Value{kind: String, s: s} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

// Int returns integer content of the cell. Floats with integral value are
// accepted so that identifiers survive a column promoted to float by nulls.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case Int:
		return v.i, true
	case Float:
		if v.f == math.Trunc(v.f) && !math.IsInf(v.f, 0) && !math.IsNaN(v.f) {
			return int64(v.f), true
		}
	}
	return 0, false
}

// Float returns numeric content of the cell.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case Int:
		return float64(v.i), true
	case Float:
		return v.f, true
	}
	return 0, false
}

// Text returns string content of a string cell.
func (v Value) Text() (string, bool) {
	if v.kind == String {
		return v.s, true
	}
	return "", false
}

// Format renders the cell, floats are rounded to precision digits, nulls
// render as "nan".
func (v Value) Format(precision int) string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'f', precision, 64)
	case String:
		return v.s
	default:
		return "nan"
	}
}

// String renders the cell with the shortest float representation.
func (v Value) String() string {
	return v.Format(-1)
}

// SPDX-License-Identifier: EPL-2.0

package store

import "strconv"

// Value is either a float or a string. The zero Value is the float 0.
type Value struct {
	f        float64
	s        string
	isString bool
}

func Float(v float64) Value { return Value{f: v} }
func String(s string) Value { return Value{s: s, isString: true} }

func (v Value) IsString() bool { return v.isString }

// AsFloat returns the float payload, parsing string values when possible.
func (v Value) AsFloat() float64 {
	if !v.isString {
		return v.f
	}
	f, err := strconv.ParseFloat(v.s, 64)
	if err != nil {
		return 0
	}

	return f
}

// AsString returns the string payload, formatting float values.
func (v Value) AsString() string {
	if v.isString {
		return v.s
	}

	return strconv.FormatFloat(v.f, 'g', -1, 64)
}

func (v Value) String() string { return v.AsString() }

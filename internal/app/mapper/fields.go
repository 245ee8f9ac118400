// Package mapper turns the storefront API's loosely cased JSON into the
// canonical models. The API serializes the same entity with camelCase or
// PascalCase keys depending on the endpoint, so every field is resolved by
// probing an ordered list of key variants.
package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var ErrNotObject = errors.New("json value is not an object")

// Fields is one decoded JSON object.
type Fields map[string]interface{}

// Decode parses body into an interface{} tree, keeping numbers as json.Number.
func Decode(body []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeObject parses body and requires a top-level object.
func DecodeObject(body []byte) (Fields, error) {
	v, err := Decode(body)
	if err != nil {
		return nil, err
	}
	f, ok := AsFields(v)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, v)
	}
	return f, nil
}

func AsFields(v interface{}) (Fields, bool) {
	switch m := v.(type) {
	case Fields:
		return m, true
	case map[string]interface{}:
		return Fields(m), true
	}
	return nil, false
}

// Keys expands each camelCase name into itself followed by its PascalCase form.
func Keys(names ...string) []string {
	out := make([]string, 0, len(names)*2)
	for _, n := range names {
		out = append(out, n)
		if p := pascal(n); p != n {
			out = append(out, p)
		}
	}
	return out
}

func pascal(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Int returns the first variant holding a usable integer.
func (f Fields) Int(keys ...string) (int64, bool) {
	for _, k := range keys {
		if n, ok := toInt(f[k]); ok {
			return n, true
		}
	}
	return 0, false
}

func (f Fields) Float(keys ...string) (float64, bool) {
	for _, k := range keys {
		if n, ok := toFloat(f[k]); ok {
			return n, true
		}
	}
	return 0, false
}

// String returns the first variant holding a string (numbers are formatted).
// An empty string is a value, not an absence.
func (f Fields) String(keys ...string) (string, bool) {
	for _, k := range keys {
		switch v := f[k].(type) {
		case string:
			return v, true
		case json.Number:
			return v.String(), true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
	}
	return "", false
}

// Text is String for display names: an empty variant does not hide a
// non-empty one further down the list. When every variant present is empty
// the result is "" with ok true.
func (f Fields) Text(keys ...string) (string, bool) {
	found := false
	for _, k := range keys {
		s, ok := f.String(k)
		if !ok {
			continue
		}
		if s != "" {
			return s, true
		}
		found = true
	}
	return "", found
}

func (f Fields) Bool(keys ...string) (bool, bool) {
	for _, k := range keys {
		switch v := f[k].(type) {
		case bool:
			return v, true
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b, true
			}
		}
	}
	return false, false
}

func (f Fields) Time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		if s, ok := f[k].(string); ok {
			if t, ok := parseTime(s); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func (f Fields) Array(keys ...string) ([]interface{}, bool) {
	for _, k := range keys {
		if a, ok := f[k].([]interface{}); ok {
			return a, true
		}
	}
	return nil, false
}

func (f Fields) Object(keys ...string) (Fields, bool) {
	for _, k := range keys {
		if o, ok := AsFields(f[k]); ok {
			return o, true
		}
	}
	return nil, false
}

// Pointer helpers for the optional canonical fields.

func (f Fields) IntPtr(keys ...string) *int64 {
	if n, ok := f.Int(keys...); ok {
		return &n
	}
	return nil
}

func (f Fields) FloatPtr(keys ...string) *float64 {
	if n, ok := f.Float(keys...); ok {
		return &n
	}
	return nil
}

func (f Fields) StringPtr(keys ...string) *string {
	if s, ok := f.String(keys...); ok {
		return &s
	}
	return nil
}

func (f Fields) TextPtr(keys ...string) *string {
	if s, ok := f.Text(keys...); ok {
		return &s
	}
	return nil
}

func (f Fields) TimePtr(keys ...string) *time.Time {
	if t, ok := f.Time(keys...); ok {
		return &t
	}
	return nil
}

func toInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if fl, err := n.Float64(); err == nil && fl == math.Trunc(fl) {
			return int64(fl), true
		}
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		if fl, err := n.Float64(); err == nil {
			return fl, true
		}
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if fl, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return fl, true
		}
	}
	return 0, false
}

// The API emits both offset timestamps and zone-less ones.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// List accepts either a bare array or an envelope such as
// {"items": [...], "totalCount": n}. total falls back to len(items).
func List(v interface{}) (items []Fields, total int64) {
	var arr []interface{}
	switch raw := v.(type) {
	case []interface{}:
		arr = raw
	default:
		obj, ok := AsFields(v)
		if !ok {
			return nil, 0
		}
		arr, _ = obj.Array(Keys("items", "data", "results")...)
		if n, ok := obj.Int(Keys("totalCount", "total", "count")...); ok {
			total = n
		}
	}

	items = make([]Fields, 0, len(arr))
	for _, el := range arr {
		if f, ok := AsFields(el); ok {
			items = append(items, f)
		}
	}
	if total == 0 {
		total = int64(len(items))
	}
	return items, total
}

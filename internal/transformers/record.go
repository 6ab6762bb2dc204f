// Package transformers maps loosely-typed backend records (English or French keys)
// into entities and back. Nothing here returns an error or panics: a malformed
// record degrades to defaults.
package transformers

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
)

// Record is one decoded backend JSON object.
type Record map[string]any

// Keys is the candidate key list of one field, in precedence order:
// English/camelCase first, then the French/snake_case aliases.
type Keys []string

// nowFunc is the clock used for date defaults.
var nowFunc = time.Now

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// AsRecord accepts a Record or a plain decoded JSON object.
func AsRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, m != nil
	case map[string]any:
		return Record(m), m != nil
	}
	return nil, false
}

// Records converts a decoded JSON array; non-object items are skipped.
func Records(v any) []Record {
	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []Record:
		return list
	case []map[string]any:
		out := make([]Record, 0, len(list))
		for _, m := range list {
			out = append(out, Record(m))
		}
		return out
	default:
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if rec, ok := AsRecord(item); ok {
			out = append(out, rec)
		}
	}
	return out
}

// lookup returns the first candidate whose value is present under the
// falsy-skipping rule: nil, "" and numeric zero fall through to the next key.
func (r Record) lookup(keys Keys) (any, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || isFalsy(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	case json.Number:
		return x.String() == "0"
	}
	return false
}

// String resolves a scalar field. Numbers are formatted and a nested object
// contributes its "id".
func (r Record) String(keys Keys, def string) string {
	v, ok := r.lookup(keys)
	if !ok {
		return def
	}
	if s, ok := scalarString(v); ok && s != "" {
		return s
	}
	return def
}

// NullString is String with absence kept distinct from "".
func (r Record) NullString(keys Keys) null.String {
	s := r.String(keys, "")
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case map[string]any:
		return scalarString(x["id"])
	case Record:
		return scalarString(x["id"])
	}
	return "", false
}

// StringSlice resolves a list field. A present list wins even when empty.
func (r Record) StringSlice(keys Keys) ([]string, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch list := v.(type) {
		case []string:
			return append([]string{}, list...), true
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				if s, ok := scalarString(item); ok && s != "" {
					out = append(out, s)
				}
			}
			return out, true
		}
	}
	return nil, false
}

// StringsOr is StringSlice with a non-nil default.
func (r Record) StringsOr(keys Keys) []string {
	if out, ok := r.StringSlice(keys); ok {
		return out
	}
	return []string{}
}

// Int resolves a number. Zero falls through like any other falsy value.
func (r Record) Int(keys Keys, def int) int {
	v, ok := r.lookup(keys)
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return int(f)
	}
	return def
}

func (r Record) Float(keys Keys) (float64, bool) {
	v, ok := r.lookup(keys)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

// Bool returns the first candidate that is present at all; false is a value.
func (r Record) Bool(keys Keys, def bool) bool {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch x := v.(type) {
		case bool:
			return x
		case string:
			if b, err := strconv.ParseBool(x); err == nil {
				return b
			}
		}
	}
	return def
}

// AnyTrue is the `a || b || false` chain.
func (r Record) AnyTrue(keys Keys) bool {
	for _, k := range keys {
		if b, ok := r[k].(bool); ok && b {
			return true
		}
	}
	return false
}

// Time parses the first present candidate. ok is false when nothing parses.
func (r Record) Time(keys Keys) (time.Time, bool) {
	v, ok := r.lookup(keys)
	if !ok {
		return time.Time{}, false
	}
	return parseTime(v)
}

// TimeOrNow is Time with the forgiving "now" fallback; defaulted reports it.
func (r Record) TimeOrNow(keys Keys) (t time.Time, defaulted bool) {
	if t, ok := r.Time(keys); ok {
		return t, false
	}
	return nowFunc(), true
}

func (r Record) NullTime(keys Keys) null.Time {
	if t, ok := r.Time(keys); ok {
		return null.TimeFrom(t)
	}
	return null.Time{}
}

func parseTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	case float64:
		// epoch milliseconds, as a JS Date would take it
		return time.UnixMilli(int64(x)).UTC(), true
	case int64:
		return time.UnixMilli(x).UTC(), true
	}
	return time.Time{}, false
}

// Record returns a nested object field.
func (r Record) Record(keys Keys) (Record, bool) {
	for _, k := range keys {
		if rec, ok := AsRecord(r[k]); ok {
			return rec, true
		}
	}
	return nil, false
}

// List returns a nested array-of-objects field.
func (r Record) List(keys Keys) []Record {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return Records(v)
		}
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

package records

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Record is one flat row as exchanged with the record store.
type Record map[string]any

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// ParseInt reads the leading integer of v the way a lenient form parser
// would: "12abc" is 12, 5.7 is 5, "" and nil are not numbers.
func ParseInt(v any) (int, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case float32:
		return truncate(float64(x))
	case float64:
		return truncate(x)
	case json.Number:
		return ParseInt(string(x))
	case string:
		m := intPrefix.FindString(strings.TrimSpace(x))
		if m == "" {
			return 0, false
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return ParseInt(fmt.Sprint(x))
	}
}

func truncate(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// ParseFloat reads the leading decimal number of v.
func ParseFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case float64:
		return x, !math.IsNaN(x)
	case json.Number:
		return ParseFloat(string(x))
	case string:
		m := floatPrefix.FindString(strings.TrimSpace(x))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return ParseFloat(fmt.Sprint(x))
	}
}

// Truthy reports whether v counts as set: non-empty strings, non-zero
// numbers, true, and any other non-nil value.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int32:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0 && !math.IsNaN(x)
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}

// Text renders v as a string; nil is "".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func (r Record) ID() int {
	n, _ := ParseInt(r[FieldID])
	return n
}

// Int is ParseInt with 0 for non-numbers.
func (r Record) Int(key string) int {
	n, _ := ParseInt(r[key])
	return n
}

// IntOr returns def when the field is zero or not a number.
func (r Record) IntOr(key string, def int) int {
	if n, ok := ParseInt(r[key]); ok && n != 0 {
		return n
	}
	return def
}

// Float is ParseFloat with 0 for non-numbers.
func (r Record) Float(key string) float64 {
	f, _ := ParseFloat(r[key])
	return f
}

func (r Record) String(key string) string { return Text(r[key]) }

// StringOr returns the first non-empty field among keys.
func (r Record) StringOr(keys ...string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}

func (r Record) Bool(key string) bool { return Truthy(r[key]) }

// Lines splits a newline-joined text field and drops blank entries.
// A missing or empty field yields an empty, non-nil slice.
func (r Record) Lines(key string) []string {
	out := []string{}
	s := r.String(key)
	if s == "" {
		return out
	}
	for _, part := range strings.Split(s, "\n") {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinLines is the write-side counterpart of Lines.
func JoinLines(values []string) string {
	return strings.Join(values, "\n")
}

// DecodeJSON decodes a JSON text field into out. An empty field leaves out
// untouched. Backends that return structured values instead of text are
// accepted too.
func (r Record) DecodeJSON(key string, out any) error {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}
	var raw []byte
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		raw = []byte(x)
	case []byte:
		raw = x
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		raw = b
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}
	return nil
}

// EncodeJSON renders v as JSON text for storage in a text field.
func EncodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

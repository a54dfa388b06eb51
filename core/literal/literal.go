// Package literal turns Go values into SQL literals.
//
// It is used wherever a value has to appear verbatim in generated SQL: enum
// labels, and column defaults given in a snapshot as JSON objects or arrays.
// Encoding is driven by the column's SQL type:
//
//   - array types ("integer[]", "text[][]") produce PostgreSQL array literals
//     with one level of braces per dimension, e.g. '{{1,2},{3,4}}'
//   - json and jsonb marshal the value and quote the resulting text
//   - date, time and timestamp types format time.Time values, truncated to
//     millisecond precision
//   - point and line accept Point and Line values
//   - everything else is encoded by Go kind (strings are quoted, numbers and
//     booleans are written bare)
//
// Single quotes inside string literals are always doubled.
package literal

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupported is returned for values that have no SQL literal form.
var ErrUnsupported = errors.New("unsupported literal value")

// Point is a geometric point.
type Point struct {
	X, Y float64
}

// Line is the infinite line Ax + By + C = 0.
type Line struct {
	A, B, C float64
}

// String quotes s as an SQL string literal.
func String(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Enum quotes an enum label. When typ is not empty the literal is cast to
// the (optionally schema-qualified) enum type, which PostgreSQL needs when
// the label alone is ambiguous.
func Enum(value, schema, typ string) string {
	lit := String(value)
	if typ == "" {
		return lit
	}
	if schema == "" {
		return lit + `::"` + typ + `"`
	}
	return lit + `::"` + schema + `"."` + typ + `"`
}

// Encode returns the SQL literal for v as a value of sqlType.
func Encode(v any, sqlType string) (string, error) {
	if v == nil {
		return "NULL", nil
	}
	typ := strings.ToLower(strings.TrimSpace(sqlType))

	if dims := strings.Count(typ, "[]"); dims > 0 {
		body, err := arrayBody(reflect.ValueOf(v), strings.TrimSuffix(typ, strings.Repeat("[]", dims)), dims)
		if err != nil {
			return "", err
		}
		return String(body), nil
	}

	switch {
	case typ == "json" || typ == "jsonb":
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnsupported, err)
		}
		return String(string(data)), nil
	case typ == "point":
		p, ok := v.(Point)
		if !ok {
			break
		}
		return String("(" + formatFloat(p.X) + "," + formatFloat(p.Y) + ")"), nil
	case typ == "line":
		l, ok := v.(Line)
		if !ok {
			break
		}
		return String("{" + formatFloat(l.A) + "," + formatFloat(l.B) + "," + formatFloat(l.C) + "}"), nil
	}

	if t, ok := v.(time.Time); ok {
		return String(formatTime(t, typ)), nil
	}
	return scalar(reflect.ValueOf(v))
}

func scalar(rv reflect.Value) (string, error) {
	switch rv.Kind() {
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float()), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, rv.Type())
}

// arrayBody renders the unquoted body of an array literal. Elements are
// written with PostgreSQL's array-element quoting; the caller quotes the
// whole body as a string literal.
func arrayBody(rv reflect.Value, elemType string, dims int) (string, error) {
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "NULL", nil
		}
		rv = rv.Elem()
	}
	if dims == 0 {
		return arrayElement(rv, elemType)
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return "", fmt.Errorf("%w: %s is not an array with %d dimension(s)", ErrUnsupported, rv.Type(), dims)
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		p, err := arrayBody(rv.Index(i), elemType, dims-1)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

func arrayElement(rv reflect.Value, elemType string) (string, error) {
	switch {
	case rv.Type() == reflect.TypeOf(time.Time{}):
		return quoteElement(formatTime(rv.Interface().(time.Time), elemType)), nil
	case elemType == "json" || elemType == "jsonb":
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnsupported, err)
		}
		return quoteElement(string(data)), nil
	case rv.Kind() == reflect.String:
		return quoteElement(rv.String()), nil
	}
	return scalarBare(rv)
}

func scalarBare(rv reflect.Value) (string, error) {
	if rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return scalar(rv)
}

func quoteElement(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func formatTime(t time.Time, typ string) string {
	switch {
	case typ == "date":
		return t.Format("2006-01-02")
	case strings.HasPrefix(typ, "time") && !strings.HasPrefix(typ, "timestamp"):
		return t.Format("15:04:05.000")
	case strings.Contains(typ, "with time zone") || typ == "timestamptz":
		return t.Format("2006-01-02 15:04:05.000Z07:00")
	default:
		return t.Format("2006-01-02 15:04:05.000")
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

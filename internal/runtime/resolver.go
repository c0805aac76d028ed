package runtime

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// ResolveURL combines a base endpoint URL with caller-supplied params.
//
// Mappings with string keys become key=value pairs in ascending key order. Pairs are
// joined with "?", not "&": this reproduces the observed behavior for multi-key mappings.
// The block is attached with "?" unless base already has a query, in which case "&" is
// used. Strings are appended verbatim. Anything else leaves base unchanged.
func ResolveURL(base string, params any) string {
	switch p := params.(type) {
	case nil:
		return base
	case string:
		return base + p
	}

	v := reflect.ValueOf(params)
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return base
	}
	return attachQuery(base, pairs(v))
}

func pairs(m reflect.Value) []string {
	values := make(map[string]any, m.Len())
	iter := m.MapRange()
	for iter.Next() {
		values[iter.Key().String()] = iter.Value().Interface()
	}

	out := make([]string, 0, len(values))
	for _, k := range slices.Sorted(maps.Keys(values)) {
		out = append(out, k+"="+formatValue(values[k]))
	}
	return out
}

// formatValue renders a param value as it appears in a query.
// Numbers never use exponent notation; lists are comma joined.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatValue(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, rv.Type().Bits())
	}
	return fmt.Sprint(v)
}

func attachQuery(base string, pairs []string) string {
	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
	}
	return base + separator + strings.Join(pairs, "?")
}

package normalisers

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// FormatValue renders a decoded JSON or YAML value as fact text.
// Numbers use their shortest form, objects join their values in key order
// and lists join their elements with ", ". It returns false for nil and for
// values that render to an empty string.
func FormatValue(v any) (string, bool) {
	s := formatValue(v)
	return s, s != ""
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case json.Number:
		return val.String()
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := formatValue(val[k]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, e := range val {
			if s := formatValue(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return formatValue(toAnySlice(val))
	default:
		return strings.TrimSpace(toString(val))
	}
}

// toString handles values decoded by YAML that have no dedicated case.
func toString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.Trim(string(b), `"`)
}

func toAnySlice(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// ValueList expands a flat attribute value: a list yields one value per
// element and anything else yields a single value. Empty values are dropped.
func ValueList(v any) []string {
	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case []string:
		items = toAnySlice(val)
	default:
		items = []any{val}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := FormatValue(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// CanonicalName converts an attribute key to lower snake case.
// "Product Name", "productName" and "product-name" all become "product_name".
func CanonicalName(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	pendingSep := false
	var prev rune
	for _, r := range strings.TrimSpace(key) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				pendingSep = true
			}
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
		prev = r
	}
	return b.String()
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package textreplace substitutes $[keyword] placeholders in description text.
//
// Placeholders come in four shapes: $[key], $[prefix.key], $[key.suffix] and
// $[prefix.key.suffix]. Unknown placeholders are left untouched so that a
// later pass with another prefix can fill them.
package textreplace

import (
	"sort"
	"strconv"
	"strings"
)

// Replace substitutes $[key] for every key in values.
func Replace(text string, values map[string]string) string {
	return ReplaceAffixed(text, "", values, "")
}

// ReplacePrefix substitutes $[prefix.key].
func ReplacePrefix(text, prefix string, values map[string]string) string {
	return ReplaceAffixed(text, prefix, values, "")
}

// ReplaceSuffix substitutes $[key.suffix].
func ReplaceSuffix(text string, values map[string]string, suffix string) string {
	return ReplaceAffixed(text, "", values, suffix)
}

// ReplaceAffixed substitutes $[prefix.key.suffix]; an empty prefix or suffix
// is omitted together with its dot.
func ReplaceAffixed(text, prefix string, values map[string]string, suffix string) string {
	if len(values) == 0 || !strings.Contains(text, "$[") {
		return text
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	// stable order keeps output deterministic when placeholders overlap
	sort.Strings(keys)

	pairs := make([]string, 0, len(values)*2)
	for _, k := range keys {
		pairs = append(pairs, placeholder(prefix, k, suffix), values[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func placeholder(prefix, key, suffix string) string {
	var b strings.Builder
	b.WriteString("$[")
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteByte('.')
	}
	b.WriteString(key)
	if suffix != "" {
		b.WriteByte('.')
		b.WriteString(suffix)
	}
	b.WriteByte(']')
	return b.String()
}

// Number formats v with at most two decimals and no trailing zeros.
func Number(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

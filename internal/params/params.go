// Package params reads the string parameter maps that data-driven factories
// receive. Malformed values fall back to the supplied default.
package params

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNotRegistered is wrapped by the factory registries when a type name
// has no factory.
var ErrNotRegistered = errors.New("not registered")

// Params holds factory parameters keyed by name.
type Params map[string]string

// String returns the value of key, or def when absent.
func (p Params) String(key, def string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Float parses key as float64.
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// Int parses key as int.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// Bool parses key as bool.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// List splits a comma separated value, dropping empty items.
func (p Params) List(key string) []string {
	v, ok := p[key]
	if !ok {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Sub returns the entries whose key starts with prefix, with the prefix
// stripped. Used to pass nested configuration to a child factory.
func (p Params) Sub(prefix string) Params {
	out := make(Params)
	for k, v := range p {
		if rest, ok := strings.CutPrefix(k, prefix); ok && rest != "" {
			out[rest] = v
		}
	}
	return out
}

package stat

import "gopkg.in/yaml.v3"

// ScaleFloat is a number optionally scaled by a stat: Default * (1 + stat).
// Stat holds a stat code; empty means unscaled.
type ScaleFloat struct {
	Default float64 `yaml:"default"`
	Stat    string  `yaml:"stat"`
}

// GetValue resolves the value against stats. A nil set or a missing stat
// yields Default.
func (f ScaleFloat) GetValue(stats *Stats) float64 {
	if f.Stat == "" || stats == nil {
		return f.Default
	}
	if st, ok := stats.TryGet(f.Stat); ok {
		return f.Default * (1 + st.Value())
	}
	return f.Default
}

// UnmarshalYAML accepts a bare number as an unscaled value.
func (f *ScaleFloat) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*f = ScaleFloat{}
		return n.Decode(&f.Default)
	}
	type plain ScaleFloat
	return n.Decode((*plain)(f))
}

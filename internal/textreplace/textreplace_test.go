package textreplace

import "testing"

func TestReplaceAffixed(t *testing.T) {
	values := map[string]string{"damage": "30", "range": "5"}

	tests := []struct {
		name   string
		text   string
		prefix string
		suffix string
		want   string
	}{
		{"plain", "deals $[damage] in $[range]m", "", "", "deals 30 in 5m"},
		{"prefix", "$[effectAction.damage] dmg", "effectAction", "", "30 dmg"},
		{"suffix", "$[damage.0] / $[damage.1]", "", "0", "30 / $[damage.1]"},
		{"prefix and suffix", "$[effectAction.damage.2]", "effectAction", "2", "30"},
		{"unknown key kept", "$[heal]", "", "", "$[heal]"},
		{"no placeholders", "plain text", "", "", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplaceAffixed(tt.text, tt.prefix, values, tt.suffix); got != tt.want {
				t.Errorf("ReplaceAffixed() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplaceHelpers(t *testing.T) {
	values := map[string]string{"k": "v"}
	if got := Replace("$[k]", values); got != "v" {
		t.Errorf("Replace() = %q", got)
	}
	if got := ReplacePrefix("$[p.k]", "p", values); got != "v" {
		t.Errorf("ReplacePrefix() = %q", got)
	}
	if got := ReplaceSuffix("$[k.s]", values, "s"); got != "v" {
		t.Errorf("ReplaceSuffix() = %q", got)
	}
	if got := Replace("$[k]", nil); got != "$[k]" {
		t.Errorf("Replace(nil) = %q", got)
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10, "10"},
		{0.5, "0.5"},
		{1.256, "1.26"},
		{-0.001, "0"},
		{0, "0"},
		{120.10, "120.1"},
	}

	for _, tt := range tests {
		if got := Number(tt.in); got != tt.want {
			t.Errorf("Number(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

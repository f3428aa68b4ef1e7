package database

import (
	"testing"
)

func TestAllowedOriginsSlice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single origin", "https://app.studyhub.io", []string{"https://app.studyhub.io"}},
		{"multiple origins", "https://app.studyhub.io, http://localhost:3000", []string{"https://app.studyhub.io", "http://localhost:3000"}},
		{"duplicates collapsed", "a, a, b", []string{"a", "b"}},
		{"whitespace trimmed", "  a  ,  b  ", []string{"a", "b"}},
		{"trailing comma", "a,b,", []string{"a", "b"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AllowedOriginsSlice(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("AllowedOriginsSlice(%q) length = %d, want %d", tt.raw, len(got), len(tt.want))
			}
			seen := make(map[string]bool)
			for _, s := range got {
				seen[s] = true
			}
			for _, w := range tt.want {
				if !seen[w] {
					t.Errorf("AllowedOriginsSlice(%q) missing %q", tt.raw, w)
				}
			}
		})
	}
}

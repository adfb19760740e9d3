package css

import (
	"strings"
	"testing"

	"github.com/opd-ai/go-barcard/internal/colors"
)

func TestSolid(t *testing.T) {
	theme := colors.Theme{"--primary-color": "#03a9f4"}

	tests := []struct {
		in   string
		want string
	}{
		{"#03a9f4", "#03a9f4"},
		{"var(--primary-color)", "#03a9f4"},
		{"rgba(0, 0, 0, 0.25)", "rgba(0,0,0,0.25)"},
		{"garbage", "#808080"},
	}
	for _, tt := range tests {
		if got := Solid(tt.in, theme); got != tt.want {
			t.Errorf("Solid(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPattern(t *testing.T) {
	stripes := Pattern(PatternStripes, "#ff0000", nil)
	if !strings.HasPrefix(stripes, "repeating-linear-gradient(45deg") || !strings.HasSuffix(stripes, ", #ff0000") {
		t.Errorf("stripes = %q", stripes)
	}

	shimmer := Pattern(PatternShimmer, "red", nil)
	if !strings.HasPrefix(shimmer, "linear-gradient(90deg") || !strings.HasSuffix(shimmer, ", #ff0000") {
		t.Errorf("shimmer = %q", shimmer)
	}
}

func TestParsePattern(t *testing.T) {
	if k, err := ParsePattern("Shimmer"); err != nil || k != PatternShimmer {
		t.Errorf("ParsePattern(Shimmer) = %v, %v", k, err)
	}
	if k, err := ParsePattern(""); err != nil || k != PatternStripes {
		t.Errorf("ParsePattern(\"\") = %v, %v", k, err)
	}
	if _, err := ParsePattern("zigzag"); err == nil {
		t.Error("ParsePattern(zigzag) should fail")
	}
}

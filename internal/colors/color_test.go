package colors

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Value
		wantErr  bool
	}{
		{"hex #RRGGBB", "#FF0000", RGB(255, 0, 0), false},
		{"hex lowercase", "#00ff00", RGB(0, 255, 0), false},
		{"hex mixed", "#1A2B3C", RGB(26, 43, 60), false},
		{"hex #RRGGBBAA full", "#FF0000FF", RGB(255, 0, 0), false},
		{"hex #RRGGBBAA zero", "#FF000000", Value{R: 255, A: 0}, false},
		{"hex #RRGGBBAA half", "#FF000080", Value{R: 255, A: 128.0 / 255}, false},
		{"hex #RGB", "#F0F", RGB(255, 0, 255), false},
		{"hex #RGBA", "#F008", Value{R: 255, A: 136.0 / 255}, false},
		{"hex bad length", "#12345", Value{}, true},
		{"hex bad digit", "#GG0000", Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFunctions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Value
		wantErr  bool
	}{
		{"rgb", "rgb(255, 128, 0)", RGB(255, 128, 0), false},
		{"rgb no spaces", "rgb(1,2,3)", RGB(1, 2, 3), false},
		{"rgb decimals rounded", "rgb(10.4, 10.5, 254.6)", RGB(10, 11, 255), false},
		{"rgb clamped", "rgb(300, -5, 0)", RGB(255, 0, 0), false},
		{"rgba", "rgba(255, 0, 0, 0.5)", Value{R: 255, A: 0.5}, false},
		{"rgba uppercase", "RGBA(0, 0, 255, 0.25)", Value{B: 255, A: 0.25}, false},
		{"rgba alpha clamped", "rgba(0, 0, 0, 3)", Value{A: 1}, false},
		{"rgba percent alpha", "rgba(0, 0, 0, 40%)", Value{A: 0.4}, false},
		{"hsl red", "hsl(0, 100%, 50%)", RGB(255, 0, 0), false},
		{"hsl green deg", "hsl(120deg, 100%, 50%)", RGB(0, 255, 0), false},
		{"hsla", "hsla(240, 100%, 50%, 0.5)", Value{B: 255, A: 0.5}, false},
		{"rgb too few", "rgb(1, 2)", Value{}, true},
		{"rgb not a number", "rgb(a, b, c)", Value{}, true},
		{"rgb unterminated", "rgb(1, 2, 3", Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
	}{
		{"transparent", Transparent},
		{"TRANSPARENT", Transparent},
		{"red", RGB(255, 0, 0)},
		{"green", RGB(0, 128, 0)},
		{"  orange  ", RGB(255, 165, 0)},
		{"CornflowerBlue", RGB(100, 149, 237)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"", ErrEmptyColor},
		{"   ", ErrEmptyColor},
		{"var(--primary-color)", ErrIndirectReference},
		{"--accent", ErrIndirectReference},
		{"notacolor", ErrUnrecognizedFormat},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.input, err, tt.want)
			}
		})
	}
}

func TestMustParse(t *testing.T) {
	if got := MustParse("#ffffff"); got != RGB(255, 255, 255) {
		t.Errorf("MustParse(#ffffff) = %+v", got)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustParse should panic on invalid input")
		}
	}()
	MustParse("invalid")
}

func TestValueString(t *testing.T) {
	tests := []struct {
		input Value
		want  string
	}{
		{RGB(255, 0, 0), "#ff0000"},
		{RGB(0, 0, 0), "#000000"},
		{Value{R: 255, G: 128, B: 0, A: 0.5}, "rgba(255,128,0,0.5)"},
		{Transparent, "rgba(0,0,0,0)"},
		{Value{R: 1, G: 2, B: 3, A: 0.25}, "rgba(1,2,3,0.25)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.input.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	red := RGB(255, 0, 0)
	yellow := RGB(255, 255, 0)

	tests := []struct {
		name   string
		c1, c2 Value
		factor float64
		want   Value
	}{
		{"start", red, yellow, 0, red},
		{"end", red, yellow, 1, yellow},
		{"half rounds up", red, yellow, 0.5, RGB(255, 128, 0)},
		{"quarter", RGB(0, 0, 0), RGB(100, 200, 40), 0.25, RGB(25, 50, 10)},
		{"alpha continuous", Value{A: 0}, Value{A: 1}, 0.3, Value{A: 0.3}},
		{"alpha preserved", Value{R: 255, A: 0.5}, Value{B: 255, A: 0.5}, 0.5, Value{R: 128, B: 128, A: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lerp(tt.c1, tt.c2, tt.factor)
			if got.R != tt.want.R || got.G != tt.want.G || got.B != tt.want.B {
				t.Errorf("Lerp() rgb = (%d,%d,%d), want (%d,%d,%d)",
					got.R, got.G, got.B, tt.want.R, tt.want.G, tt.want.B)
			}
			if math.Abs(got.A-tt.want.A) > 1e-9 {
				t.Errorf("Lerp() alpha = %v, want %v", got.A, tt.want.A)
			}
		})
	}
}

func genValue(t *rapid.T, label string) Value {
	return Value{
		R: uint8(rapid.IntRange(0, 255).Draw(t, label+"_r")),
		G: uint8(rapid.IntRange(0, 255).Draw(t, label+"_g")),
		B: uint8(rapid.IntRange(0, 255).Draw(t, label+"_b")),
		A: rapid.Float64Range(0, 1).Draw(t, label+"_a"),
	}
}

func TestLerpEndpointsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c1 := genValue(t, "c1")
		c2 := genValue(t, "c2")

		if got := Lerp(c1, c2, 0); got != c1 {
			t.Fatalf("Lerp(c1, c2, 0) = %+v, want %+v", got, c1)
		}
		if got := Lerp(c1, c2, 1); got != c2 {
			t.Fatalf("Lerp(c1, c2, 1) = %+v, want %+v", got, c2)
		}
	})
}

func between(v, a, b float64) bool {
	return v >= math.Min(a, b) && v <= math.Max(a, b)
}

func TestLerpBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c1 := genValue(t, "c1")
		c2 := genValue(t, "c2")
		f1 := rapid.Float64Range(0, 1).Draw(t, "f1")
		f2 := rapid.Float64Range(f1, 1).Draw(t, "f2")

		got := Lerp(c1, c2, f1)
		if !between(float64(got.R), float64(c1.R), float64(c2.R)) ||
			!between(float64(got.G), float64(c1.G), float64(c2.G)) ||
			!between(float64(got.B), float64(c1.B), float64(c2.B)) {
			t.Fatalf("Lerp(%+v, %+v, %v) = %+v escapes channel bounds", c1, c2, f1, got)
		}
		if !between(got.A, c1.A, c2.A) {
			t.Fatalf("alpha %v escapes [%v, %v]", got.A, c1.A, c2.A)
		}

		later := Lerp(c1, c2, f2)
		if c2.A >= c1.A && later.A < got.A {
			t.Fatalf("alpha not monotonic: f=%v -> %v, f=%v -> %v", f1, got.A, f2, later.A)
		}
		if c2.A < c1.A && later.A > got.A {
			t.Fatalf("alpha not monotonic: f=%v -> %v, f=%v -> %v", f1, got.A, f2, later.A)
		}
	})
}

func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SampledFrom([]string{
			"#%02x%02x%02x",
			"#%02x%02x%02x%02x",
			"rgb(%d, %d, %d)",
			"rgba(%d, %d, %d, 0.%d)",
		}).Draw(t, "format")

		var s string
		r := rapid.IntRange(0, 255).Draw(t, "r")
		g := rapid.IntRange(0, 255).Draw(t, "g")
		b := rapid.IntRange(0, 255).Draw(t, "b")
		switch input {
		case "#%02x%02x%02x", "rgb(%d, %d, %d)":
			s = fmt.Sprintf(input, r, g, b)
		default:
			s = fmt.Sprintf(input, r, g, b, rapid.IntRange(0, 99).Draw(t, "a"))
		}

		first, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", s, err)
		}
		second, err := Parse(first.String())
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", first.String(), err)
		}
		if second != first {
			t.Fatalf("round trip of %q: %+v != %+v", s, second, first)
		}
	})
}

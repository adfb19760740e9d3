package animation

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/opd-ai/go-barcard/internal/entity"
)

func states() *entity.Store {
	s := entity.NewStore()
	s.Set("binary_sensor.door", "on")
	s.Set("sensor.temp", 21.5)
	s.Set("alarm.home", "triggered")
	s.SetAttribute("climate.living", "hvac_action", "heating")
	s.Set("climate.living", "heat")
	return s
}

func TestResolve(t *testing.T) {
	lookup := states()

	tests := []struct {
		name     string
		regular  Trigger
		override Trigger
		want     Result
	}{
		{
			name:    "disabled regular",
			regular: Trigger{Enabled: false, Animation: Pulse},
			want:    Result{OutcomeNone, None},
		},
		{
			name:    "regular without animation",
			regular: Trigger{Enabled: true, Animation: None, Entity: "binary_sensor.door", Match: "on"},
			want:    Result{OutcomeNone, None},
		},
		{
			name:    "always on without entity",
			regular: Trigger{Enabled: true, Animation: Glow},
			want:    Result{OutcomeRegular, Glow},
		},
		{
			name:    "always on without match value",
			regular: Trigger{Enabled: true, Animation: Glow, Entity: "binary_sensor.door"},
			want:    Result{OutcomeRegular, Glow},
		},
		{
			name:    "state match",
			regular: Trigger{Enabled: true, Animation: Blink, Entity: "binary_sensor.door", Match: "on"},
			want:    Result{OutcomeRegular, Blink},
		},
		{
			name:    "state mismatch",
			regular: Trigger{Enabled: true, Animation: Blink, Entity: "binary_sensor.door", Match: "off"},
			want:    Result{OutcomeNone, None},
		},
		{
			name:    "match is case sensitive",
			regular: Trigger{Enabled: true, Animation: Blink, Entity: "binary_sensor.door", Match: "ON"},
			want:    Result{OutcomeNone, None},
		},
		{
			name:    "numeric state compares as string",
			regular: Trigger{Enabled: true, Animation: Shake, Entity: "sensor.temp", Match: "21.5"},
			want:    Result{OutcomeRegular, Shake},
		},
		{
			name:    "missing entity",
			regular: Trigger{Enabled: true, Animation: Blink, Entity: "sensor.gone", Match: "on"},
			want:    Result{OutcomeNone, None},
		},
		{
			name: "attribute match",
			regular: Trigger{Enabled: true, Animation: Pulse, Entity: "climate.living",
				Kind: KindAttribute, Attribute: "hvac_action", Match: "heating"},
			want: Result{OutcomeRegular, Pulse},
		},
		{
			name: "attribute kind without name reads state",
			regular: Trigger{Enabled: true, Animation: Pulse, Entity: "climate.living",
				Kind: KindAttribute, Match: "heat"},
			want: Result{OutcomeRegular, Pulse},
		},
		{
			name:     "override wins over regular",
			regular:  Trigger{Enabled: true, Animation: Glow},
			override: Trigger{Animation: Shake, Entity: "alarm.home", Match: "triggered"},
			want:     Result{OutcomeOverride, Shake},
		},
		{
			name:     "override applies when regular is disabled",
			regular:  Trigger{Enabled: false, Animation: Glow},
			override: Trigger{Animation: Bounce, Entity: "alarm.home", Match: "triggered"},
			want:     Result{OutcomeOverride, Bounce},
		},
		{
			name:     "override mismatch falls back to regular",
			regular:  Trigger{Enabled: true, Animation: Glow},
			override: Trigger{Animation: Shake, Entity: "alarm.home", Match: "disarmed"},
			want:     Result{OutcomeRegular, Glow},
		},
		{
			name:     "override has no always-on",
			override: Trigger{Enabled: true, Animation: Shake},
			want:     Result{OutcomeNone, None},
		},
		{
			name:     "override none is unconfigured",
			override: Trigger{Animation: None, Entity: "alarm.home", Match: "triggered"},
			want:     Result{OutcomeNone, None},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.regular, tt.override, lookup); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveNilLookup(t *testing.T) {
	regular := Trigger{Enabled: true, Animation: Fade, Entity: "x", Match: "y"}
	if got := Resolve(regular, Trigger{}, nil); got.Outcome != OutcomeNone {
		t.Errorf("Resolve() with nil lookup = %+v", got)
	}
	regular.Entity = ""
	if got := Resolve(regular, Trigger{}, nil); got.Animation != Fade {
		t.Errorf("always-on with nil lookup = %+v", got)
	}
}

func TestOverrideAlwaysWinsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		state := rapid.SampledFrom([]string{"on", "off", "idle"}).Draw(t, "state")
		lookup := entity.LookupFunc(func(id, attr string) (any, bool) {
			return state, true
		})
		regular := Trigger{
			Enabled:   rapid.Bool().Draw(t, "enabled"),
			Animation: rapid.SampledFrom(Types).Draw(t, "regular"),
			Entity:    rapid.SampledFrom([]string{"", "a"}).Draw(t, "regularEntity"),
			Match:     rapid.SampledFrom([]string{"", "on", "off"}).Draw(t, "regularMatch"),
		}
		override := Trigger{
			Animation: rapid.SampledFrom(Types[1:]).Draw(t, "override"),
			Entity:    "b",
			Match:     state,
		}
		got := Resolve(regular, override, lookup)
		if got.Outcome != OutcomeOverride || got.Animation != override.Animation {
			t.Fatalf("Resolve() = %+v, want override %v", got, override.Animation)
		}
	})
}

func TestParseType(t *testing.T) {
	for _, typ := range Types {
		got, err := ParseType(string(typ))
		if err != nil || got != typ {
			t.Errorf("ParseType(%q) = %v, %v", typ, got, err)
		}
	}
	if got, err := ParseType(" Pulse "); err != nil || got != Pulse {
		t.Errorf("ParseType(\" Pulse \") = %v, %v", got, err)
	}
	if got, _ := ParseType(""); got != None {
		t.Errorf("ParseType(\"\") = %v, want none", got)
	}
	if _, err := ParseType("wiggle"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("ParseType(wiggle) error = %v", err)
	}
}

func TestCSSClass(t *testing.T) {
	if got := Pulse.CSSClass(); got != "bar-anim-pulse" {
		t.Errorf("CSSClass() = %q", got)
	}
	if got := None.CSSClass(); got != "" {
		t.Errorf("None.CSSClass() = %q, want empty", got)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("attribute"); err != nil || k != KindAttribute {
		t.Errorf("ParseKind(attribute) = %v, %v", k, err)
	}
	if k, err := ParseKind(""); err != nil || k != KindState {
		t.Errorf("ParseKind(\"\") = %v, %v", k, err)
	}
	if _, err := ParseKind("history"); err == nil {
		t.Error("ParseKind(history) should fail")
	}
}

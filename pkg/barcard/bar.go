package barcard

import (
	"fmt"

	"github.com/opd-ai/go-barcard/internal/animation"
	"github.com/opd-ai/go-barcard/internal/colors"
	"github.com/opd-ai/go-barcard/internal/config"
	"github.com/opd-ai/go-barcard/internal/css"
	"github.com/opd-ai/go-barcard/internal/entity"
	"github.com/opd-ai/go-barcard/internal/fill"
	"github.com/opd-ai/go-barcard/internal/gradient"
	"github.com/opd-ai/go-barcard/internal/percent"
)

// Result is one rendered bar, ready to be applied to a DOM node.
type Result struct {
	Name string
	// Background is the CSS background value of the filled element.
	Background string
	// Percentage is the fill length in [0,100].
	Percentage float64
	// Animation is the resolved animation id, "none" when idle.
	Animation string
	// AnimationClass is the CSS class for Animation, "" when idle.
	AnimationClass string
	// Style is the inline declaration for the filled element.
	Style string
}

// Animated reports whether the bar plays an animation.
func (r Result) Animated() bool {
	return r.AnimationClass != ""
}

// compiled is a bar with everything the outputs need.
type compiled struct {
	result    Result
	spec      fill.Spec
	fallbacks int
	// stateErr is set when the percentage source failed and 0 was used.
	stateErr error
}

// compileBar renders b against the given collaborators. It never fails:
// source errors are reported in stateErr and render as 0%.
func compileBar(b *config.BarConfig, r colors.Resolver, lookup entity.Lookup, eval percent.TemplateEvaluator) compiled {
	var out compiled

	pct, err := barPercentage(b.Source, lookup, eval)
	if err != nil {
		out.stateErr = err
	}
	dir, _ := css.ParseDirection(b.Direction)
	spec := fill.Spec{Percentage: pct, Direction: dir}

	var background string
	switch b.Fill {
	case config.FillSolid:
		c, ok := colors.Resolve(r, b.Color)
		if !ok {
			out.fallbacks++
		}
		spec.Kind, spec.Color = fill.KindSolid, c
		background = css.Solid(b.Color, r)

	case config.FillPattern:
		kind, _ := css.ParsePattern(b.Pattern)
		c, ok := colors.Resolve(r, b.Color)
		if !ok {
			out.fallbacks++
		}
		spec.Kind, spec.Color, spec.Pattern = fill.KindPattern, c, kind
		background = css.Pattern(kind, b.Color, r)

	default:
		mode, _ := css.ParseMode(b.Gradient.Mode)
		resolved, n := gradient.ResolveStops(stopsOf(b.Gradient.Stops), r)
		out.fallbacks += n
		spec.Kind, spec.Mode, spec.Stops = fill.KindGradient, mode, resolved
		background = css.BackgroundResolved(resolved, mode, pct, dir)
	}

	anim := animation.Resolve(triggerOf(b.Animation), triggerOf(b.Override), lookup)

	out.spec = spec
	out.result = Result{
		Name:           b.Name,
		Background:     background,
		Percentage:     pct,
		Animation:      string(anim.Animation),
		AnimationClass: anim.Animation.CSSClass(),
		Style:          fmt.Sprintf("background: %s; width: %s", background, css.Percent(pct)),
	}
	return out
}

func barPercentage(sc config.SourceConfig, lookup entity.Lookup, eval percent.TemplateEvaluator) (float64, error) {
	mode, err := percent.ParseMode(sc.Mode)
	if err != nil {
		return 0, err
	}
	src, err := percent.Config{
		Mode:            mode,
		Entity:          sc.Entity,
		Max:             sc.Max,
		Attribute:       sc.Attribute,
		AttributeEntity: sc.AttributeEntity,
		CurrentEntity:   sc.CurrentEntity,
		TotalEntity:     sc.TotalEntity,
		Template:        sc.Template,
	}.Source(lookup, eval)
	if err != nil {
		return 0, err
	}
	return percent.Resolve(src)
}

func stopsOf(cfg []config.StopConfig) []gradient.Stop {
	stops := make([]gradient.Stop, len(cfg))
	for i, s := range cfg {
		stops[i] = gradient.Stop{ID: i + 1, Position: s.Position, Color: s.Color}
	}
	return stops
}

// triggerOf converts a card trigger. Unknown animation names and kinds
// were reported by validation and degrade to no animation here.
func triggerOf(tc config.TriggerConfig) animation.Trigger {
	typ, err := animation.ParseType(tc.Animation)
	if err != nil {
		typ = animation.None
	}
	kind, _ := animation.ParseKind(tc.Kind)
	return animation.Trigger{
		Enabled:   tc.IsEnabled(),
		Animation: typ,
		Entity:    tc.Entity,
		Kind:      kind,
		Attribute: tc.Attribute,
		Match:     tc.Match,
	}
}

// statesOf converts card states for an entity.Store.
func statesOf(cfg map[string]config.StateConfig) map[string]entity.State {
	states := make(map[string]entity.State, len(cfg))
	for id, sc := range cfg {
		states[id] = entity.State{Value: sc.State, Attributes: sc.Attributes}
	}
	return states
}

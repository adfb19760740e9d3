package barcard

import (
	"github.com/opd-ai/go-barcard/internal/animation"
	"github.com/opd-ai/go-barcard/internal/colors"
	"github.com/opd-ai/go-barcard/internal/css"
	"github.com/opd-ai/go-barcard/internal/entity"
	"github.com/opd-ai/go-barcard/internal/gradient"
	"github.com/opd-ai/go-barcard/internal/percent"
)

// Types used by the package-level operations.
type (
	Color            = colors.Value
	ColorResolver    = colors.Resolver
	Theme            = colors.Theme
	Stop             = gradient.Stop
	StopList         = gradient.List
	RenderMode       = css.Mode
	Direction        = css.Direction
	StateLookup      = entity.Lookup
	StateFunc        = entity.LookupFunc
	StateStore       = entity.Store
	Trigger          = animation.Trigger
	AnimationType    = animation.Type
	AnimationResult  = animation.Result
	PercentageSource = percent.Source
	PercentageConfig = percent.Config
	EntitySource     = percent.Entity
	AttributeSource  = percent.Attribute
	DifferenceSource = percent.Difference
	TemplateSource   = percent.Template
	TemplateFunc     = percent.TemplateFunc
	TemplateEval     = percent.TemplateEvaluator
)

// Render modes and directions.
const (
	ModeFull       = css.ModeFull
	ModeCropped    = css.ModeCropped
	ModeValueBased = css.ModeValueBased

	LeftToRight = css.LeftToRight
	RightToLeft = css.RightToLeft
)

// ResolvePercentage reduces a value source to a fill length in [0,100].
// Only a source of an unknown type is an error; missing or malformed
// values resolve to 0.
func ResolvePercentage(src PercentageSource) (float64, error) {
	return percent.Resolve(src)
}

// ResolvePercentageConfig builds the source described by cfg from live
// state and resolves it. eval may be nil.
func ResolvePercentageConfig(cfg PercentageConfig, states StateLookup, eval TemplateEval) (float64, error) {
	src, err := cfg.Source(states, eval)
	if err != nil {
		return 0, err
	}
	return percent.Resolve(src)
}

// RenderGradientBackground renders stops as a CSS background for a bar
// filled to percentage. r may be nil, in which case theme references fall
// back to neutral gray.
func RenderGradientBackground(stops []Stop, mode RenderMode, percentage float64, dir Direction, r ColorResolver) string {
	return css.Background(stops, css.Options{
		Mode:       mode,
		Percentage: percentage,
		Direction:  dir,
		Resolver:   r,
	})
}

// InterpolateColor blends a toward b. factor 0 yields a, 1 yields b.
func InterpolateColor(a, b Color, factor float64) Color {
	return colors.Lerp(a, b, factor)
}

// InsertStopAtLargestGap adds a stop in the middle of the widest gap and
// returns the new list with the inserted stop.
func InsertStopAtLargestGap(stops StopList, r ColorResolver) (StopList, Stop) {
	return stops.InsertAtLargestGap(r)
}

// ResolveAnimation picks the animation for a bar. The override wins
// whenever it matches.
func ResolveAnimation(regular, override Trigger, states StateLookup) AnimationResult {
	return animation.Resolve(regular, override, states)
}

// NewStateStore creates an empty in-memory state store for Options.States.
func NewStateStore() *StateStore {
	return entity.NewStore()
}

// ParseColor parses a concrete CSS color.
func ParseColor(s string) (Color, error) {
	return colors.Parse(s)
}

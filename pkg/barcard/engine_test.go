package barcard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"
)

const (
	systemYAML = "../../test/configs/system.yaml"
	systemLua  = "../../test/configs/system.lua"
)

// minimalCard has one solid bar reading sensor.x; cardWithState fills in
// the state.
const minimalCard = `
states:
  sensor.x:
    state: %s
bars:
  - name: x
    fill: solid
    color: "#ff0000"
    source:
      entity: sensor.x
`

func cardWithState(state string) string {
	return strings.Replace(minimalCard, "%s", state, 1)
}

func testOptions() *Options {
	opts := DefaultOptions()
	opts.Metrics = NewMetrics()
	return &opts
}

func writeCard(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write card: %v", err)
	}
}

func newSystemEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(systemYAML, testOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestRenderSystemCard(t *testing.T) {
	e := newSystemEngine(t)

	tests := []struct {
		name       string
		background string
		prefix     string
		percentage float64
	}{
		{"cpu", "linear-gradient(to right, #43a047 0%, #c7a415 100%)", "", 42},
		{"memory", "#ffcc00", "", 40},
		{"battery", "#7e57c2", "", 18},
		{"disk", "", "repeating-linear-gradient(45deg", 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Render(tt.name)
			if err != nil {
				t.Fatalf("Render(%q) error = %v", tt.name, err)
			}
			if tt.background != "" && res.Background != tt.background {
				t.Errorf("Background = %q, want %q", res.Background, tt.background)
			}
			if tt.prefix != "" && !strings.HasPrefix(res.Background, tt.prefix) {
				t.Errorf("Background = %q, want prefix %q", res.Background, tt.prefix)
			}
			if math.Abs(res.Percentage-tt.percentage) > 1e-9 {
				t.Errorf("Percentage = %v, want %v", res.Percentage, tt.percentage)
			}
			if res.Animation != "none" || res.AnimationClass != "" || res.Animated() {
				t.Errorf("Animation = %q class %q, want none", res.Animation, res.AnimationClass)
			}
			if !strings.HasPrefix(res.Style, "background: "+res.Background+"; width: ") {
				t.Errorf("Style = %q", res.Style)
			}
		})
	}
}

func TestRenderStyle(t *testing.T) {
	e := newSystemEngine(t)
	res, err := e.Render("battery")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if want := "background: #7e57c2; width: 18%"; res.Style != want {
		t.Errorf("Style = %q, want %q", res.Style, want)
	}
}

func TestRenderPatternKeepsBaseColor(t *testing.T) {
	e := newSystemEngine(t)
	res, _ := e.Render("disk")
	if !strings.HasSuffix(res.Background, ", #03a9f4") {
		t.Errorf("pattern background = %q, want base color last", res.Background)
	}
}

func TestRenderUnknownBar(t *testing.T) {
	e := newSystemEngine(t)
	if _, err := e.Render("gpu"); !errors.Is(err, ErrBarNotFound) {
		t.Errorf("Render(gpu) error = %v, want %v", err, ErrBarNotFound)
	}
}

func TestRenderAllOrderAndNames(t *testing.T) {
	e := newSystemEngine(t)
	want := []string{"cpu", "memory", "battery", "disk"}

	if got := e.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	results := e.RenderAll()
	if len(results) != len(want) {
		t.Fatalf("RenderAll() returned %d results, want %d", len(results), len(want))
	}
	for i, res := range results {
		if res.Name != want[i] {
			t.Errorf("RenderAll()[%d].Name = %q, want %q", i, res.Name, want[i])
		}
	}
}

func TestLuaAndYAMLCardsRenderTheSame(t *testing.T) {
	fromYAML := newSystemEngine(t)
	fromLua, err := New(systemLua, testOptions())
	if err != nil {
		t.Fatalf("New(lua) error = %v", err)
	}
	defer fromLua.Close()

	if y, l := fromYAML.RenderAll(), fromLua.RenderAll(); !reflect.DeepEqual(y, l) {
		t.Errorf("Lua card renders differently:\nyaml: %+v\nlua:  %+v", y, l)
	}
}

func TestAnimationFollowsState(t *testing.T) {
	opts := testOptions()
	e, err := New(systemYAML, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	e.SetState("sensor.cpu_load", 100)
	res, _ := e.Render("cpu")
	if res.Animation != "pulse" || res.AnimationClass != "bar-anim-pulse" {
		t.Errorf("cpu at 100%% animation = %q class %q, want pulse", res.Animation, res.AnimationClass)
	}
	if res.Percentage != 100 {
		t.Errorf("cpu percentage = %v, want 100", res.Percentage)
	}

	e.SetState("alarm.home", "triggered")
	res, _ = e.Render("battery")
	if res.Animation != "shake" {
		t.Errorf("battery with alarm triggered animation = %q, want shake", res.Animation)
	}

	if got := opts.Metrics.Snapshot().AnimatedRender; got != 2 {
		t.Errorf("AnimatedRender = %d, want 2", got)
	}
}

func TestSetAttribute(t *testing.T) {
	e := newSystemEngine(t)
	e.SetAttribute("sensor.memory_used", "max", 16)
	res, _ := e.Render("memory")
	if math.Abs(res.Percentage-20) > 1e-9 {
		t.Errorf("memory percentage = %v, want 20", res.Percentage)
	}
}

func TestExternalStates(t *testing.T) {
	store := NewStateStore()
	store.Set("sensor.x", 64)

	opts := testOptions()
	opts.States = store
	opts.StrictValidation = true
	e, err := NewFromReader(strings.NewReader(`
bars:
  - name: x
    fill: solid
    color: "#00ff00"
    source:
      entity: sensor.x
`), FormatYAML, opts)
	if err != nil {
		t.Fatalf("NewFromReader() error = %v", err)
	}

	res, _ := e.Render("x")
	if res.Percentage != 64 {
		t.Errorf("Percentage = %v, want 64", res.Percentage)
	}

	// Card-local states are ignored when States is set.
	e.SetState("sensor.x", 1)
	if res, _ := e.Render("x"); res.Percentage != 64 {
		t.Errorf("Percentage after SetState = %v, want 64", res.Percentage)
	}
}

const templateCard = `
bars:
  - name: t
    fill: solid
    color: "#0000ff"
    source:
      mode: template
      template: "0.73"
`

func TestTemplateSource(t *testing.T) {
	literal, err := NewFromReader(strings.NewReader(templateCard), FormatAuto, testOptions())
	if err != nil {
		t.Fatalf("NewFromReader() error = %v", err)
	}
	if res, _ := literal.Render("t"); math.Abs(res.Percentage-73) > 1e-9 {
		t.Errorf("literal template percentage = %v, want 73", res.Percentage)
	}

	opts := testOptions()
	opts.Templates = TemplateFunc(func(string) (any, error) { return 0.5, nil })
	evaluated, err := NewFromReader(strings.NewReader(templateCard), FormatAuto, opts)
	if err != nil {
		t.Fatalf("NewFromReader() error = %v", err)
	}
	if res, _ := evaluated.Render("t"); res.Percentage != 50 {
		t.Errorf("evaluated template percentage = %v, want 50", res.Percentage)
	}
}

func TestTemplateErrorRendersZero(t *testing.T) {
	boom := errors.New("boom")
	opts := testOptions()
	opts.Templates = TemplateFunc(func(string) (any, error) { return nil, boom })
	e, err := NewFromReader(strings.NewReader(templateCard), FormatYAML, opts)
	if err != nil {
		t.Fatalf("NewFromReader() error = %v", err)
	}

	errs := make(chan error, 1)
	e.SetErrorHandler(func(err error) { errs <- err })

	res, err := e.Render("t")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Percentage != 0 {
		t.Errorf("Percentage = %v, want 0", res.Percentage)
	}

	select {
	case got := <-errs:
		if !errors.Is(got, boom) || CategoryOf(got) != ErrorCategoryState {
			t.Errorf("handler got %v (category %s), want state error wrapping boom", got, CategoryOf(got))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error handler was not called")
	}
	if !errors.Is(e.Status().LastError, boom) {
		t.Errorf("Status().LastError = %v", e.Status().LastError)
	}
}

const grayCard = `
states:
  sensor.x:
    state: 10
bars:
  - name: gray
    fill: solid
    color: var(--missing)
    source:
      entity: sensor.x
`

func TestUnresolvedColorFallsBackToGray(t *testing.T) {
	opts := testOptions()
	e, err := NewFromReader(strings.NewReader(grayCard), FormatYAML, opts)
	if err != nil {
		t.Fatalf("NewFromReader() error = %v", err)
	}

	res, _ := e.Render("gray")
	if res.Background != "#808080" {
		t.Errorf("Background = %q, want neutral gray", res.Background)
	}
	if got := opts.Metrics.Snapshot().ColorFallbacks; got != 1 {
		t.Errorf("ColorFallbacks = %d, want 1", got)
	}
}

func TestStrictValidationRejectsUnresolvedColor(t *testing.T) {
	opts := testOptions()
	opts.StrictValidation = true
	_, err := NewFromReader(strings.NewReader(grayCard), FormatYAML, opts)
	if err == nil {
		t.Fatal("strict validation should reject var(--missing)")
	}
	if CategoryOf(err) != ErrorCategoryConfig {
		t.Errorf("error category = %s, want config", CategoryOf(err))
	}
}

func TestNewFromReaderErrors(t *testing.T) {
	if _, err := NewFromReader(strings.NewReader(""), "toml", nil); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("unknown format error = %v, want %v", err, ErrInvalidFormat)
	}

	_, err := NewFromReader(strings.NewReader("bars: [unclosed"), FormatYAML, testOptions())
	if err == nil || CategoryOf(err) != ErrorCategoryConfig {
		t.Errorf("malformed YAML error = %v, want a config error", err)
	}

	_, err = NewFromReader(strings.NewReader("bars:\n  - name: a\n  - name: a\n"), FormatYAML, testOptions())
	if err == nil {
		t.Error("duplicate bar names should fail validation")
	}
}

func TestNewMissingFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("New() should fail for a missing file")
	}
}

func TestNewFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"cards/x.yaml": {Data: []byte(cardWithState("30"))},
	}
	e, err := NewFromFS(fsys, "cards/x.yaml", testOptions())
	if err != nil {
		t.Fatalf("NewFromFS() error = %v", err)
	}
	if res, _ := e.Render("x"); res.Percentage != 30 {
		t.Errorf("Percentage = %v, want 30", res.Percentage)
	}
	if got := e.Status().ConfigSource; got != "embedded:cards/x.yaml" {
		t.Errorf("ConfigSource = %q", got)
	}
	if err := e.Watch(); !errors.Is(err, ErrNotWatchable) {
		t.Errorf("Watch() error = %v, want %v", err, ErrNotWatchable)
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yaml")
	writeCard(t, path, cardWithState("10"))

	opts := testOptions()
	e, err := New(path, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	events := make(chan Event, 4)
	e.SetEventHandler(func(ev Event) { events <- ev })

	writeCard(t, path, cardWithState("80"))
	if err := e.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if res, _ := e.Render("x"); res.Percentage != 80 {
		t.Errorf("Percentage after reload = %v, want 80", res.Percentage)
	}
	if got := opts.Metrics.Snapshot().ConfigReloads; got != 1 {
		t.Errorf("ConfigReloads = %d, want 1", got)
	}

	select {
	case ev := <-events:
		if ev.Type != EventConfigReloaded {
			t.Errorf("event = %s, want %s", ev.Type, EventConfigReloaded)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reload event")
	}
}

func TestReloadFailureKeepsCard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yaml")
	writeCard(t, path, cardWithState("10"))

	opts := testOptions()
	e, err := New(path, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	writeCard(t, path, "bars: [unclosed")
	if err := e.Reload(); err == nil {
		t.Fatal("Reload() should fail for a malformed card")
	}
	if res, err := e.Render("x"); err != nil || res.Percentage != 10 {
		t.Errorf("Render() after failed reload = %v, %v; want the previous card", res.Percentage, err)
	}
	if got := opts.Metrics.Snapshot().ReloadFailures; got != 1 {
		t.Errorf("ReloadFailures = %d, want 1", got)
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yaml")
	writeCard(t, path, cardWithState("10"))

	opts := testOptions()
	opts.WatchConfig = true
	opts.WatchDebounce = 20 * time.Millisecond
	e, err := New(path, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	if !e.Status().Watching || !opts.Metrics.Snapshot().Watching {
		t.Fatal("engine should be watching")
	}
	if err := e.Watch(); err != nil {
		t.Errorf("second Watch() error = %v", err)
	}

	writeCard(t, path, cardWithState("55"))
	reloaded := waitFor(t, 3*time.Second, func() bool {
		res, _ := e.Render("x")
		return res.Percentage == 55
	})
	if !reloaded {
		t.Error("card was not reloaded after the file changed")
	}
}

func TestWatchReportsFailedReloadOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yaml")
	writeCard(t, path, cardWithState("10"))

	opts := testOptions()
	opts.WatchConfig = true
	opts.WatchDebounce = 20 * time.Millisecond
	e, err := New(path, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	var calls atomic.Int64
	e.SetErrorHandler(func(error) { calls.Add(1) })

	writeCard(t, path, "bars: [unclosed")
	if !waitFor(t, 3*time.Second, func() bool { return opts.Metrics.Snapshot().ReloadFailures > 0 }) {
		t.Fatal("malformed card did not trigger a reload")
	}
	time.Sleep(200 * time.Millisecond)

	snap := opts.Metrics.Snapshot()
	if snap.ErrorsTotal != snap.ReloadFailures {
		t.Errorf("ErrorsTotal = %d, want %d (one per failed reload)", snap.ErrorsTotal, snap.ReloadFailures)
	}
	if got := calls.Load(); got != int64(snap.ReloadFailures) {
		t.Errorf("error handler called %d times, want %d", got, snap.ReloadFailures)
	}
}

// stateCard has one solid bar named name reading entity id.
func stateCard(name, id, state string) string {
	return fmt.Sprintf(`
states:
  %[2]s:
    state: %[3]s
bars:
  - name: %[1]s
    fill: solid
    color: "#ff0000"
    source:
      entity: %[2]s
`, name, id, state)
}

func TestReloadPublishesStatesWithCard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yaml")
	writeCard(t, path, stateCard("a", "sensor.a", "10"))

	e, err := New(path, testOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	done := make(chan float64, 1)
	go func() {
		for {
			if res, err := e.Render("b"); err == nil {
				done <- res.Percentage
				return
			}
		}
	}()

	writeCard(t, path, stateCard("b", "sensor.b", "90"))
	if err := e.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	select {
	case got := <-done:
		if got != 90 {
			t.Errorf("first render of the new card = %v, want 90", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("new card never rendered")
	}
}

func TestClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yaml")
	writeCard(t, path, cardWithState("10"))

	e, err := New(path, testOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if e.Status().Watching {
		t.Error("closed engine should not be watching")
	}
	if err := e.Reload(); !errors.Is(err, ErrClosed) {
		t.Errorf("Reload() after Close = %v, want %v", err, ErrClosed)
	}
	if err := e.Watch(); !errors.Is(err, ErrClosed) {
		t.Errorf("Watch() after Close = %v, want %v", err, ErrClosed)
	}
	if _, err := e.Render("x"); err != nil {
		t.Errorf("Render() after Close = %v", err)
	}
}

func TestStatus(t *testing.T) {
	e := newSystemEngine(t)
	st := e.Status()
	if st.ConfigSource != systemYAML || st.Bars != 4 || st.LastReload.IsZero() {
		t.Errorf("Status() = %+v", st)
	}
	if st.LastError != nil {
		t.Errorf("LastError = %v, want nil", st.LastError)
	}
}

func TestWritePreview(t *testing.T) {
	e := newSystemEngine(t)

	var buf bytes.Buffer
	if err := e.WritePreview(&buf, PreviewOptions{Width: 20, TrueColor: true}); err != nil {
		t.Fatalf("WritePreview() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"cpu", "memory", "battery", "disk", " 42.0%", " 18.0%", "48;2;"} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 4 {
		t.Errorf("preview has %d lines, want 4", lines)
	}
}

func TestRunWindowCancelled(t *testing.T) {
	if testing.Short() {
		t.Skip("opens a window")
	}
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		t.Skip("no display available")
	}
	e := newSystemEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.RunWindow(ctx); err != nil && !errors.Is(err, ErrNoWindow) {
		t.Errorf("RunWindow() with cancelled context = %v", err)
	}
}

// Package barcard renders the bars of a dashboard bar card. A card file
// (Lua or YAML) lists bars; each bar reads a value from entity state,
// turns it into a fill length and colors the fill with a solid color, a
// gradient or an animated pattern.
//
// # Basic Usage
//
//	e, err := barcard.New("/path/to/card.yaml", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer e.Close()
//
//	for _, res := range e.RenderAll() {
//		fmt.Printf("%s: %s\n", res.Name, res.Style)
//	}
//
// # Configuration Sources
//
//   - Disk file: use [New]; the file can be watched with [Engine.Watch]
//   - Embedded FS: use [NewFromFS]
//   - io.Reader: use [NewFromReader]
//
// # Entity State
//
// By default the engine serves the states declared in the card, which
// [Engine.SetState] updates. Pass [Options].States to read live state
// from elsewhere.
//
// # Outputs
//
// [Engine.Render] returns CSS for a DOM consumer. [Engine.WritePreview]
// draws the card in a terminal and [Engine.RunWindow] opens a window
// (not available when built with the noebiten tag).
//
// # Error Handling
//
// Rendering never fails for degraded input: unknown colors render as
// neutral gray and missing values as 0%. Such events are counted in
// [Metrics] and reported through the [ErrorHandler]:
//
//	e.SetErrorHandler(func(err error) {
//		log.Printf("barcard: %v", err)
//	})
package barcard

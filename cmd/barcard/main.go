// Package main provides the barcard command: it loads a bar card and prints
// the rendered CSS, a terminal preview or a live window.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-barcard/internal/config"
	"github.com/opd-ai/go-barcard/pkg/barcard"
)

// Version is the current version of barcard.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	bar        string
	watch      bool
	preview    bool
	window     bool
	jsonOut    bool
	export     bool
	version    bool
	debug      bool
	strict     bool
	width      int
	trueColor  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("barcard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "c", "", "Path to card file (YAML or Lua)")
	fs.StringVar(&o.bar, "bar", "", "Render only the named bar")
	fs.BoolVar(&o.watch, "watch", false, "Re-render whenever the card file changes")
	fs.BoolVar(&o.preview, "preview", false, "Draw the bars in the terminal")
	fs.BoolVar(&o.window, "window", false, "Open a window showing the bars")
	fs.BoolVar(&o.jsonOut, "json", false, "Print render results as JSON")
	fs.BoolVar(&o.export, "export", false, "Convert a YAML card to Lua and print it")
	fs.BoolVar(&o.version, "v", false, "Print version and exit")
	fs.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&o.strict, "strict", false, "Reject unknown entities and unresolvable colors")
	fs.IntVar(&o.width, "width", 0, "Terminal preview width in cells")
	fs.BoolVar(&o.trueColor, "truecolor", false, "Force 24-bit color in the terminal preview")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	if o.version {
		fmt.Fprintf(stdout, "barcard version %s\n", Version)
		return 0
	}

	if o.configPath == "" {
		fmt.Fprintln(stderr, "No card file specified. Use -c to specify a card file.")
		fmt.Fprintln(stderr, "Usage: barcard -c <card-file> [-bar name] [-preview|-window|-json] [-watch]")
		return 1
	}
	if _, err := os.Stat(o.configPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(stderr, "Card file not found: %s\n", o.configPath)
		} else {
			fmt.Fprintf(stderr, "Error accessing card file %s: %v\n", o.configPath, err)
		}
		return 1
	}

	if o.export {
		return runExport(o.configPath, stdout, stderr)
	}

	opts := barcard.DefaultOptions()
	opts.StrictValidation = o.strict
	opts.Logger = barcard.NopLogger()
	if o.debug {
		opts.Logger = barcard.DebugLogger()
	}

	e, err := barcard.New(o.configPath, &opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading card: %v\n", err)
		return 1
	}
	defer e.Close()

	e.SetErrorHandler(func(err error) {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if o.window {
		if o.watch {
			if err := e.Watch(); err != nil {
				fmt.Fprintf(stderr, "Watch failed: %v\n", err)
				return 1
			}
		}
		if err := e.RunWindow(ctx); err != nil {
			fmt.Fprintf(stderr, "Window error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := output(e, o, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if !o.watch {
		return 0
	}
	return watch(ctx, e, o, stdout, stderr)
}

// watch re-renders after every reload until ctx is done. SIGHUP forces a
// reload.
func watch(ctx context.Context, e *barcard.Engine, o options, stdout, stderr io.Writer) int {
	reloaded := make(chan struct{}, 1)
	e.SetEventHandler(func(ev barcard.Event) {
		if ev.Type != barcard.EventConfigReloaded {
			return
		}
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	if err := e.Watch(); err != nil {
		fmt.Fprintf(stderr, "Watch failed: %v\n", err)
		return 1
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return 0
		case <-hup:
			if err := e.Reload(); err != nil {
				fmt.Fprintf(stderr, "Reload failed: %v\n", err)
			}
		case <-reloaded:
			if err := output(e, o, stdout); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
			}
		}
	}
}

// output prints the card in the format selected by the flags.
func output(e *barcard.Engine, o options, w io.Writer) error {
	if o.preview {
		return e.WritePreview(w, barcard.PreviewOptions{Width: o.width, TrueColor: o.trueColor})
	}

	var results []barcard.Result
	if o.bar != "" {
		res, err := e.Render(o.bar)
		if err != nil {
			return err
		}
		results = []barcard.Result{res}
	} else {
		results = e.RenderAll()
	}

	if o.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, res := range results {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", res.Name, res.Animation, res.Style); err != nil {
			return err
		}
	}
	return nil
}

// runExport converts a YAML card to Lua and prints it.
func runExport(path string, stdout, stderr io.Writer) int {
	lua, err := config.MigrateYAMLFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error converting card: %v\n", err)
		return 1
	}
	if _, err := stdout.Write(lua); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	return 0
}

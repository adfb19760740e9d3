package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/opd-ai/go-barcard/pkg/barcard"
)

const systemCard = "../../test/configs/system.yaml"

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	code, out, _ := runCLI("-v")
	if code != 0 || !strings.Contains(out, Version) {
		t.Errorf("-v = %d, %q", code, out)
	}
}

func TestMissingConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no flag", nil, "No card file specified"},
		{"missing file", []string{"-c", "/nonexistent/card.yaml"}, "Card file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(tt.args...)
			if code != 1 || !strings.Contains(errOut, tt.want) {
				t.Errorf("run() = %d, stderr %q; want 1 and %q", code, errOut, tt.want)
			}
		})
	}
}

func TestBadFlag(t *testing.T) {
	if code, _, _ := runCLI("-nope"); code != 2 {
		t.Errorf("run(-nope) = %d, want 2", code)
	}
}

func TestRenderAll(t *testing.T) {
	code, out, errOut := runCLI("-c", systemCard)
	if code != 0 {
		t.Fatalf("run() = %d, stderr %q", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out)
	}
	if want := "battery\tnone\tbackground: #7e57c2; width: 18%"; lines[2] != want {
		t.Errorf("line 3 = %q, want %q", lines[2], want)
	}
}

func TestRenderOneBarJSON(t *testing.T) {
	code, out, errOut := runCLI("-c", systemCard, "-bar", "cpu", "-json")
	if code != 0 {
		t.Fatalf("run() = %d, stderr %q", code, errOut)
	}
	var results []barcard.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(results) != 1 || results[0].Name != "cpu" || results[0].Percentage != 42 {
		t.Errorf("results = %+v", results)
	}
}

func TestRenderUnknownBar(t *testing.T) {
	code, _, errOut := runCLI("-c", systemCard, "-bar", "gpu")
	if code != 1 || !strings.Contains(errOut, "bar not found") {
		t.Errorf("run() = %d, stderr %q", code, errOut)
	}
}

func TestPreview(t *testing.T) {
	code, out, errOut := runCLI("-c", systemCard, "-preview", "-width", "10", "-truecolor")
	if code != 0 {
		t.Fatalf("run() = %d, stderr %q", code, errOut)
	}
	if !strings.Contains(out, "memory") || !strings.Contains(out, " 40.0%") {
		t.Errorf("preview output = %q", out)
	}
}

func TestExport(t *testing.T) {
	code, out, errOut := runCLI("-c", systemCard, "-export")
	if code != 0 {
		t.Fatalf("run() = %d, stderr %q", code, errOut)
	}
	if !strings.Contains(out, "card = {") || !strings.Contains(out, "sensor.cpu_load") {
		t.Errorf("export output = %q", out)
	}
}

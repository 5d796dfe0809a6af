package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/atlaspack/pkg/pipeline"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })
	return &buf
}

func TestPrintPackStats(t *testing.T) {
	tests := []struct {
		cached bool
		want   string
	}{
		{false, "fresh"},
		{true, "cached"},
	}
	for _, tt := range tests {
		buf := captureOutput(t)
		printPackStats(pipeline.Stats{Width: 146, Height: 144, Attempts: 3, Efficiency: 0.5}, tt.cached)
		got := buf.String()
		for _, s := range []string{"146x144", "50.0% used", "3 attempts", tt.want} {
			if !strings.Contains(got, s) {
				t.Errorf("printPackStats(cached=%v) = %q, missing %q", tt.cached, got, s)
			}
		}
	}
}

func TestPrintHelpers(t *testing.T) {
	buf := captureOutput(t)
	printSuccess("wrote %d files", 2)
	printKeyValue("Texture", "atlas.png")
	printFile("out/atlas.json")

	got := buf.String()
	for _, s := range []string{iconSuccess, "wrote 2 files", "Texture", "atlas.png", iconArrow, "out/atlas.json"} {
		if !strings.Contains(got, s) {
			t.Errorf("output %q missing %q", got, s)
		}
	}
	if n := strings.Count(got, "\n"); n != 3 {
		t.Errorf("line count = %d, want 3", n)
	}
}

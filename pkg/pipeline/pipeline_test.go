package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/atlaspack/pkg/cache"
	apperr "github.com/matzehuels/atlaspack/pkg/errors"
	descio "github.com/matzehuels/atlaspack/pkg/io"
	"github.com/matzehuels/atlaspack/pkg/observability"
	"github.com/matzehuels/atlaspack/pkg/pack"
	"github.com/matzehuels/atlaspack/pkg/pixel"
	"github.com/matzehuels/atlaspack/pkg/sprite"
)

func TestValidateImageFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"jpeg", false},
		{"gif", false},
		{"bmp", false},
		{"tiff", false},
		{"webp", true},
		{"PNG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateImageFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateImageFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestImageFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"atlas.png":  FormatPNG,
		"atlas.JPG":  FormatJPEG,
		"atlas.tif":  FormatTIFF,
		"atlas.bmp":  FormatBMP,
		"atlas":      FormatPNG,
		"atlas.webp": FormatPNG,
	}
	for path, want := range tests {
		if got := ImageFormatFromPath(path); got != want {
			t.Errorf("ImageFormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Inputs: []string{"sprites"}, Resource: "atlas.json"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Packer != pack.DefaultPacker || opts.Ordering != pack.DefaultOrdering {
		t.Errorf("packer, ordering = %q, %q", opts.Packer, opts.Ordering)
	}
	if opts.MaxSize != DefaultMaxSize || opts.Output != DefaultOutput || opts.ImageFormat != FormatPNG {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if opts.ResourceFormat != descio.FormatJSON {
		t.Errorf("ResourceFormat = %q, want json", opts.ResourceFormat)
	}

	tests := []struct {
		name string
		opts Options
		code apperr.Code
	}{
		{"no inputs", Options{}, apperr.ErrCodeInvalidInput},
		{"negative padding", Options{Inputs: []string{"x"}, Padding: -1}, apperr.ErrCodeInvalidInput},
		{"unknown packer", Options{Inputs: []string{"x"}, Packer: "guillotine"}, apperr.ErrCodeInvalidInput},
		{"unknown ordering", Options{Inputs: []string{"x"}, Ordering: "random"}, apperr.ErrCodeInvalidInput},
		{"bad image format", Options{Inputs: []string{"x"}, ImageFormat: "svg"}, apperr.ErrCodeInvalidFormat},
		{"bad resource format", Options{Inputs: []string{"x"}, Resource: "a.res", ResourceFormat: "plist"}, apperr.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !apperr.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %v", err, tt.code)
			}
		})
	}
}

func writeSprites(t *testing.T, dir string, sizes ...image.Point) {
	t.Helper()
	for i, sz := range sizes {
		img := imaging.New(sz.X, sz.Y, color.NRGBA{R: uint8(50 * i), G: 128, B: 255, A: 255})
		if err := imaging.Save(img, filepath.Join(dir, fmt.Sprintf("s%02d.png", i))); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "sprites")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSprites(t, src, image.Pt(64, 64), image.Pt(64, 64), image.Pt(32, 32), image.Pt(10, 40))

	c, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{
		Inputs:   []string{src},
		TrimPath: src,
		Output:   filepath.Join(dir, "atlas.png"),
		Resource: filepath.Join(dir, "atlas.xml"),
		Padding:  1,
	}

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("first run should miss the layout cache")
	}
	if res.Stats.SpriteCount != 4 || len(res.Descriptor.Sprites) != 4 {
		t.Errorf("sprites = %d / %d, want 4", res.Stats.SpriteCount, len(res.Descriptor.Sprites))
	}
	if res.Stats.Efficiency <= 0 || res.Stats.Efficiency > 1 {
		t.Errorf("Efficiency = %v, want (0,1]", res.Stats.Efficiency)
	}

	img, err := imaging.Decode(bytes.NewReader(res.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("decode atlas: %v", err)
	}
	if b := img.Bounds(); b.Dx() != res.Layout.Size.Width || b.Dy() != res.Layout.Size.Height {
		t.Errorf("atlas bounds = %v, want %v", b, res.Layout.Size)
	}
	if !bytes.Contains(res.Artifacts[descio.FormatXML], []byte(`id="s00" texture="atlas.png"`)) {
		t.Errorf("descriptor missing sprite s00:\n%s", res.Artifacts[descio.FormatXML])
	}

	again, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !again.CacheInfo.LayoutHit {
		t.Error("second run should hit the layout cache")
	}
	for i := range res.Layout.Pieces {
		if res.Layout.Pieces[i].Rect != again.Layout.Pieces[i].Rect {
			t.Errorf("cached piece %d = %v, want %v", i, again.Layout.Pieces[i].Rect, res.Layout.Pieces[i].Rect)
		}
	}
	if !bytes.Equal(res.Artifacts[FormatPNG], again.Artifacts[FormatPNG]) {
		t.Error("cached layout produced a different atlas")
	}

	opts.Refresh = true
	fresh, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.LayoutHit {
		t.Error("Refresh should bypass the layout cache")
	}

	if err := WriteFiles(res, opts); err != nil {
		t.Fatalf("WriteFiles() error = %v", err)
	}
	d, err := descio.Import(opts.Resource)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(d.Sprites) != 4 {
		t.Errorf("written descriptor has %d sprites, want 4", len(d.Sprites))
	}
	if _, err := os.Stat(opts.Output); err != nil {
		t.Errorf("atlas not written: %v", err)
	}
}

func TestExecuteNoSprites(t *testing.T) {
	for _, border := range []int{0, 2} {
		t.Run(fmt.Sprintf("border %d", border), func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "empty")
			if err := os.MkdirAll(src, 0o755); err != nil {
				t.Fatal(err)
			}
			runner := NewRunner(nil, nil, log.New(io.Discard))
			opts := Options{
				Inputs: []string{src},
				Output: filepath.Join(dir, "atlas.png"),
				Border: border,
			}

			res, err := runner.Execute(context.Background(), opts)
			if err == nil {
				t.Fatalf("Execute() = %v, want error", res.Layout.Size)
			}
			if got := apperr.GetCode(err); got != apperr.ErrCodeInvalidInput {
				t.Errorf("GetCode() = %v, want %v (err %v)", got, apperr.ErrCodeInvalidInput, err)
			}
			if _, err := os.Stat(opts.Output); !os.IsNotExist(err) {
				t.Errorf("atlas written for empty input: %v", err)
			}
		})
	}
}

func TestExecuteSkipInvalid(t *testing.T) {
	dir := t.TempDir()
	writeSprites(t, dir, image.Pt(8, 8), image.Pt(4, 4))
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	runner := NewRunner(nil, nil, log.New(&logs))
	opts := Options{Inputs: []string{dir}, TrimPath: dir, Output: filepath.Join(dir, "out", "atlas.png")}

	if _, err := runner.Execute(context.Background(), opts); !apperr.Is(err, apperr.ErrCodeDecode) {
		t.Fatalf("Execute() error = %v, want %v", err, apperr.ErrCodeDecode)
	}

	opts.SkipInvalid = true
	res, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute(SkipInvalid) error = %v", err)
	}
	if res.Stats.SpriteCount != 2 {
		t.Errorf("SpriteCount = %d, want 2", res.Stats.SpriteCount)
	}
	if !strings.Contains(logs.String(), "broken.png") {
		t.Errorf("no warning for broken.png in logs:\n%s", logs.String())
	}
}

func memSprite(id string, w, h int) *sprite.Sprite {
	buf := pixel.New(w, h)
	return &sprite.Sprite{Name: id, Image: buf, Source: buf.Size()}
}

func TestBuildRejected(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Build(context.Background(),
		[]*sprite.Sprite{memSprite("big", 300, 300)},
		Options{MaxSize: 256, Padding: 1})
	if !pack.IsRejected(err) || !pack.IsSizeExceeded(err) {
		t.Errorf("Build() error = %v, want rejected size", err)
	}
}

func TestBuildOrdering(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	in := []*sprite.Sprite{memSprite("small", 4, 4), memSprite("large", 16, 16), memSprite("mid", 8, 8)}

	res, err := runner.Build(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := []string{"large", "mid", "small"}
	for i, s := range res.Sprites {
		if s.ID() != want[i] {
			t.Errorf("Sprites[%d] = %s, want %s", i, s.ID(), want[i])
		}
	}
	if in[0].ID() != "small" {
		t.Error("Build reordered the caller's slice")
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	attempts int
	packed   int
}

func (h *countingHooks) OnPackAttempt(context.Context, string, int, int) { h.attempts++ }
func (h *countingHooks) OnPackComplete(context.Context, string, int, int, int, time.Duration, error) {
	h.packed++
}

func TestPipelineHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	runner := NewRunner(nil, nil, nil)
	in := []*sprite.Sprite{memSprite("a", 64, 64), memSprite("b", 64, 64), memSprite("c", 32, 32)}
	res, err := runner.Build(context.Background(), in, Options{Padding: 1})
	if err != nil {
		t.Fatal(err)
	}
	if hooks.attempts != len(res.Layout.Attempts) {
		t.Errorf("OnPackAttempt calls = %d, want %d", hooks.attempts, len(res.Layout.Attempts))
	}
	if hooks.packed != 1 {
		t.Errorf("OnPackComplete calls = %d, want 1", hooks.packed)
	}
}

func TestRestoreLayoutMismatch(t *testing.T) {
	a := []*sprite.Sprite{memSprite("a", 4, 4)}
	res := &pack.Result{Pieces: []pack.Piece{{Sprite: a[0], Rect: a[0].Image.Bounds()}}}
	data := mustJSON(t, snapshot(res))

	if _, err := restoreLayout(data, a); err != nil {
		t.Errorf("restoreLayout(match) error = %v", err)
	}
	if _, err := restoreLayout(data, []*sprite.Sprite{memSprite("b", 4, 4)}); err == nil {
		t.Error("restoreLayout should reject a different sprite id")
	}
	if _, err := restoreLayout(data, []*sprite.Sprite{memSprite("a", 5, 4)}); err == nil {
		t.Error("restoreLayout should reject a different sprite size")
	}
	if _, err := restoreLayout([]byte("{"), a); err == nil {
		t.Error("restoreLayout should reject invalid JSON")
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

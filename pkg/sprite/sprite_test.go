package sprite

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	apperr "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/geom"
	"github.com/matzehuels/atlaspack/pkg/pack"
)

var _ pack.Sprite = (*Sprite)(nil)

func TestID(t *testing.T) {
	tests := []struct {
		path     string
		trimPath string
		want     string
		wantErr  bool
	}{
		{"hero.png", "", "hero", false},
		{"./art/ui/button.png", "", "art_ui_button", false},
		{"./art/ui/button.png", "art/", "ui_button", false},
		{"art/ui/button.png", "./art", "ui_button", false},
		{"art/ui/button.tar.png", "art/", "ui_button.tar", false},
		{"art/noext", "", "art_noext", false},
		{"art/ui/button.png", "other/", "", true},
		{"art.png", "art.png", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path+"|"+tt.trimPath, func(t *testing.T) {
			got, err := ID(tt.path, tt.trimPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !apperr.Is(err, apperr.ErrCodeInvalidPath) {
					t.Errorf("code = %v, want %v", apperr.GetCode(err), apperr.ErrCodeInvalidPath)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ID() = %q, want %q", got, tt.want)
			}
		})
	}
}

// framed returns a w x h image, transparent except for an opaque block at r.
func framed(w, h int, r image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("Save(%s) error = %v", path, err)
	}
}

func TestDecodeTrim(t *testing.T) {
	var buf bytes.Buffer
	img := framed(10, 8, image.Rect(2, 3, 6, 7))
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}

	s, err := Decode("icons/star.png", bytes.NewReader(buf.Bytes()), LoadOptions{Trim: true})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s.ID() != "icons_star" {
		t.Errorf("ID() = %q, want %q", s.ID(), "icons_star")
	}
	if got, want := s.Size(), (geom.Size{Width: 4, Height: 4}); got != want {
		t.Errorf("Size() = %v, want %v", got, want)
	}
	if got, want := s.Source, (geom.Size{Width: 10, Height: 8}); got != want {
		t.Errorf("Source = %v, want %v", got, want)
	}
	if s.Offset != image.Pt(2, 3) || !s.Trimmed {
		t.Errorf("Offset, Trimmed = %v, %v; want (2,3), true", s.Offset, s.Trimmed)
	}
	if got := s.Pixels().At(0, 0); got.A != 255 || got.R != 200 {
		t.Errorf("At(0,0) = %v, want opaque source pixel", got)
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode("bad.png", bytes.NewReader([]byte("not an image")), LoadOptions{})
	if !apperr.Is(err, apperr.ErrCodeDecode) {
		t.Errorf("Decode() error = %v, want %v", err, apperr.ErrCodeDecode)
	}
}

func TestOpaque(t *testing.T) {
	tests := []struct {
		name string
		img  *image.NRGBA
		want image.Rectangle
	}{
		{"block", framed(8, 8, image.Rect(1, 2, 5, 3)), image.Rect(1, 2, 5, 3)},
		{"full", framed(3, 3, image.Rect(0, 0, 3, 3)), image.Rect(0, 0, 3, 3)},
		{"empty", framed(4, 4, image.Rectangle{}), image.Rect(0, 0, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode("x.png", encodePNG(t, tt.img), LoadOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if got := Opaque(s.Image, 0); got != tt.want {
				t.Errorf("Opaque() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrimNoop(t *testing.T) {
	s, err := Decode("x.png", encodePNG(t, framed(3, 3, image.Rect(0, 0, 3, 3))), LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if Trim(s) {
		t.Error("Trim() = true for opaque image, want false")
	}
	if s.Trimmed || s.Offset != (image.Point{}) {
		t.Errorf("Trimmed, Offset = %v, %v; want false, (0,0)", s.Trimmed, s.Offset)
	}
}

func encodePNG(t *testing.T, img image.Image) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	img := framed(2, 2, image.Rect(0, 0, 2, 2))
	writePNG(t, filepath.Join(dir, "b.png"), img)
	writePNG(t, filepath.Join(dir, "a.png"), img)
	writePNG(t, filepath.Join(dir, "sub", "c.png"), img)
	writePNG(t, filepath.Join(dir, ".hidden", "d.png"), img)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Collect([]string{dir + "/"})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "sub", "c.png"),
	}
	if len(got) != len(want) {
		t.Fatalf("Collect() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Collect()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := Collect([]string{filepath.Join(dir, "missing")}); !apperr.Is(err, apperr.ErrCodeFileNotFound) {
		t.Errorf("Collect(missing) error = %v, want %v", err, apperr.ErrCodeFileNotFound)
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, name := range []string{"c.png", "a.png", "b.png"} {
		p := filepath.Join(dir, name)
		writePNG(t, p, framed(i+1, i+2, image.Rect(0, 0, i+1, i+2)))
		paths = append(paths, p)
	}

	got, err := LoadAll(context.Background(), paths, LoadOptions{TrimPath: dir, Workers: 2})
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	for i, s := range got {
		if s.Path != paths[i] {
			t.Errorf("sprite %d Path = %s, want %s", i, s.Path, paths[i])
		}
		if want := (geom.Size{Width: i + 1, Height: i + 2}); s.Size() != want {
			t.Errorf("sprite %d Size = %v, want %v", i, s.Size(), want)
		}
	}
	if got[0].ID() != "c" {
		t.Errorf("ID() = %q, want %q", got[0].ID(), "c")
	}

	_, err = LoadAll(context.Background(), append(paths, filepath.Join(dir, "nope.png")), LoadOptions{})
	if !apperr.Is(err, apperr.ErrCodeFileNotFound) {
		t.Errorf("LoadAll(missing) error = %v, want %v", err, apperr.ErrCodeFileNotFound)
	}
}

func TestLoadAllSkipInvalid(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.png")
	bad := filepath.Join(dir, "b.png")
	writePNG(t, good, framed(4, 4, image.Rect(0, 0, 4, 4)))
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	paths := []string{good, bad}

	_, err := LoadAll(context.Background(), paths, LoadOptions{})
	if !apperr.Is(err, apperr.ErrCodeDecode) {
		t.Fatalf("LoadAll() error = %v, want %v", err, apperr.ErrCodeDecode)
	}

	var logs bytes.Buffer
	got, err := LoadAll(context.Background(), paths, LoadOptions{SkipInvalid: true, Logger: log.New(&logs)})
	if err != nil {
		t.Fatalf("LoadAll(SkipInvalid) error = %v", err)
	}
	if len(got) != 1 || got[0].Path != good {
		t.Fatalf("LoadAll(SkipInvalid) = %d sprites, want only %s", len(got), good)
	}
	if !strings.Contains(logs.String(), "b.png") {
		t.Errorf("skip warning missing path: %q", logs.String())
	}

	_, err = LoadAll(context.Background(), []string{good, filepath.Join(dir, "nope.png")}, LoadOptions{SkipInvalid: true})
	if !apperr.Is(err, apperr.ErrCodeFileNotFound) {
		t.Errorf("LoadAll(SkipInvalid, missing) error = %v, want %v", err, apperr.ErrCodeFileNotFound)
	}
}

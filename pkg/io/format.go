package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperr "github.com/matzehuels/atlaspack/pkg/errors"
)

// Format names.
const (
	FormatXML  = "xml"
	FormatJSON = "json"
)

// Writer encodes a descriptor.
type Writer func(Descriptor, io.Writer) error

// Reader decodes a descriptor.
type Reader func(io.Reader) (Descriptor, error)

var (
	writers = map[string]Writer{FormatXML: WriteXML, FormatJSON: WriteJSON}
	readers = map[string]Reader{FormatXML: ReadXML, FormatJSON: ReadJSON}
)

// Formats returns the supported descriptor formats in sorted order.
func Formats() []string {
	out := make([]string, 0, len(writers))
	for f := range writers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// FormatFromPath guesses the format from a file extension. Unknown
// extensions map to xml.
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if _, ok := writers[ext]; ok {
		return ext
	}
	return FormatXML
}

// Write encodes d in the named format.
func Write(d Descriptor, format string, w io.Writer) error {
	enc, ok := writers[format]
	if !ok {
		return apperr.New(apperr.ErrCodeInvalidFormat, "unknown descriptor format %q (available: %v)", format, Formats())
	}
	return enc(d, w)
}

// Read decodes a descriptor in the named format.
func Read(format string, r io.Reader) (Descriptor, error) {
	dec, ok := readers[format]
	if !ok {
		return Descriptor{}, apperr.New(apperr.ErrCodeInvalidFormat, "unknown descriptor format %q (available: %v)", format, Formats())
	}
	return dec(r)
}

// Export writes d to a file at path.
func Export(d Descriptor, format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(d, format, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Import reads a descriptor file, choosing the format from its extension.
func Import(path string) (Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(FormatFromPath(path), f)
}

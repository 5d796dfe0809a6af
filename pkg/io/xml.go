package io

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

type xmlObjects struct {
	XMLName xml.Name    `xml:"objects"`
	Sprites []xmlSprite `xml:"sprite"`
}

type xmlSprite struct {
	ID      string `xml:"id,attr"`
	Texture string `xml:"texture,attr"`
	Rect    string `xml:"rect,attr"`
	Hotspot string `xml:"hotspot,attr"`
}

// WriteXML writes d in the flat <objects> format.
func WriteXML(d Descriptor, w io.Writer) error {
	out := xmlObjects{Sprites: make([]xmlSprite, len(d.Sprites))}
	for i, f := range d.Sprites {
		out.Sprites[i] = xmlSprite{
			ID:      f.ID,
			Texture: d.Texture,
			Rect:    fmt.Sprintf("%d %d %d %d", f.X, f.Y, f.W, f.H),
			Hotspot: formatFloat(f.HotspotX) + " " + formatFloat(f.HotspotY),
		}
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return nil
}

// ReadXML decodes a descriptor written by [WriteXML]. The atlas size is
// not part of the format and is left zero; the texture name is taken from
// the first sprite.
func ReadXML(r io.Reader) (Descriptor, error) {
	var in xmlObjects
	if err := xml.NewDecoder(r).Decode(&in); err != nil {
		return Descriptor{}, fmt.Errorf("decode: %w", err)
	}

	d := Descriptor{Sprites: make([]Frame, len(in.Sprites))}
	for i, s := range in.Sprites {
		if d.Texture == "" {
			d.Texture = s.Texture
		}
		f := Frame{ID: s.ID}
		if _, err := fmt.Sscanf(s.Rect, "%d %d %d %d", &f.X, &f.Y, &f.W, &f.H); err != nil {
			return Descriptor{}, fmt.Errorf("sprite %s: rect %q: %w", s.ID, s.Rect, err)
		}
		if _, err := fmt.Sscanf(s.Hotspot, "%g %g", &f.HotspotX, &f.HotspotY); err != nil {
			return Descriptor{}, fmt.Errorf("sprite %s: hotspot %q: %w", s.ID, s.Hotspot, err)
		}
		d.Sprites[i] = f
	}
	return d, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

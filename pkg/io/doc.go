// Package io writes and reads atlas resource descriptors.
//
// # Overview
//
// A descriptor tells a game or UI toolkit where each sprite lives inside
// the packed atlas texture. Two formats are supported:
//
//   - xml: the classic flat format, one element per sprite
//   - json: a richer format that also records trim offsets and the
//     original sprite size
//
// # XML Format
//
//	<objects>
//	    <sprite id="ui_button" texture="atlas.png" rect="0 0 64 32" hotspot="32 16"></sprite>
//	</objects>
//
// rect is "x y width height" in atlas pixels. hotspot is the center of
// the sprite relative to its own top-left corner.
//
// # JSON Format
//
//	{
//	  "texture": "atlas.png",
//	  "width": 128,
//	  "height": 64,
//	  "sprites": [
//	    {
//	      "id": "ui_button",
//	      "x": 0, "y": 0, "w": 64, "h": 32,
//	      "hotspot_x": 32, "hotspot_y": 16,
//	      "offset_x": 2, "offset_y": 1,
//	      "source_w": 68, "source_h": 34
//	    }
//	  ]
//	}
//
// offset and source fields are only present for trimmed sprites.
//
// # Usage
//
//	d := io.NewDescriptor("atlas.png", result)
//	if err := io.Export(d, "json", "atlas.json"); err != nil {
//	    return err
//	}
package io

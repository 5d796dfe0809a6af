package pack

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT digraph of the current split tree.
//
// Interior nodes show the region they split. Leaves holding a sprite are
// labeled with its id and filled; free leaves are dashed so leftover space
// stands out.
func (t *TreePacker) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph SplitTree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	if len(t.nodes) > 0 {
		t.writeDOTNode(&buf, 0)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (t *TreePacker) writeDOTNode(buf *bytes.Buffer, idx int) {
	n := t.nodes[idx]
	r := n.area
	geo := fmt.Sprintf("%dx%d@%d,%d", r.Width(), r.Height(), r.Left, r.Top)

	switch {
	case !n.leaf():
		fmt.Fprintf(buf, "  n%d [label=%q, shape=ellipse];\n", idx, geo)
		fmt.Fprintf(buf, "  n%d -> n%d;\n", idx, n.a)
		fmt.Fprintf(buf, "  n%d -> n%d;\n", idx, n.b)
		t.writeDOTNode(buf, n.a)
		t.writeDOTNode(buf, n.b)
	case n.piece > 0:
		id := t.pieces[n.piece-1].Sprite.ID()
		fmt.Fprintf(buf, "  n%d [label=%q, shape=box, style=\"filled,rounded\", fillcolor=lightblue];\n", idx, id+"\n"+geo)
	default:
		fmt.Fprintf(buf, "  n%d [label=%q, shape=box, style=\"dashed,rounded\"];\n", idx, geo)
	}
}

// RenderSVG renders a DOT document to SVG with Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

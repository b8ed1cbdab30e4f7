package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackpip/pkg/install"
	"github.com/matzehuels/stackpip/pkg/manifest"
)

// Options configures graph rendering.
type Options struct {
	// Detailed adds the interpreter version and requirement count to
	// node labels. When false, only the signature is shown.
	Detailed bool
	// Status colors nodes by run outcome, keyed by task signature.
	Status map[string]install.Status
}

var statusColors = map[install.Status]string{
	install.StatusSuccess: "palegreen",
	install.StatusFailed:  "lightcoral",
	install.StatusSkipped: "lightgrey",
}

// ToDOT converts the manifest's queued tasks and their requires edges to
// Graphviz DOT format.
func ToDOT(m *manifest.Manifest, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var (
		families = make(map[string][]*manifest.Task)
		order    []string
	)
	for _, t := range m.Queue() {
		if !t.Parametrized() {
			fmt.Fprintf(&buf, "  %q [%s];\n", t.Signature(), strings.Join(fmtAttrs(t, opts), ", "))
			continue
		}
		if _, ok := families[t.Name]; !ok {
			order = append(order, t.Name)
		}
		families[t.Name] = append(families[t.Name], t)
	}
	for i, name := range order {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", name)
		buf.WriteString("    style=\"rounded,dashed\";\n")
		for _, t := range families[name] {
			fmt.Fprintf(&buf, "    %q [%s];\n", t.Signature(), strings.Join(fmtAttrs(t, opts), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range m.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From.Signature(), e.To.Signature())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(t *manifest.Task, detailed bool) string {
	if !detailed {
		return t.Signature()
	}
	parts := []string{t.Signature()}
	if t.Python != "" {
		parts = append(parts, "python "+t.Python)
	}
	parts = append(parts, fmt.Sprintf("%d requirements", len(t.Install)))
	return strings.Join(parts, "\n")
}

func fmtAttrs(t *manifest.Task, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(t, opts.Detailed))}
	if color, ok := statusColors[opts.Status[t.Signature()]]; ok {
		attrs = append(attrs, "fillcolor="+color)
	}
	if t.Description != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", t.Description))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from a
// zero origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

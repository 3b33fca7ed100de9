package main

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/sync/errgroup"
)

// Node boxes in image exports, in layout units.
const (
	exportCharWidth = 7.0
	exportBoxHeight = 28.0
	exportMinBoxW   = 64.0
	exportMaxChars  = 28
	exportPadding   = 40.0
)

type sceneNode struct {
	view  NodeView
	label string
	w, h  float64
}

// scene is a projection placed on an image: every node box is centered on
// its position and the whole thing is shifted so the top left is at the
// padding.
type scene struct {
	nodes   []sceneNode
	index   map[NodeID]int
	edges   []EdgeView
	offsetX float64
	offsetY float64
	width   int
	height  int
	bg      string
}

func buildScene(p Projection, bg string) (*scene, error) {
	if len(p.Nodes) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}
	if bg == "" {
		bg = defaultBgColor
	}
	sc := &scene{index: make(map[NodeID]int, len(p.Nodes)), edges: p.Edges, bg: bg}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range p.Nodes {
		label := truncateLabel(v.Title, exportMaxChars)
		if v.Collapsed {
			label += " +"
		}
		w := math.Max(exportMinBoxW, float64(len([]rune(label)))*exportCharWidth+20)
		sc.index[v.ID] = len(sc.nodes)
		sc.nodes = append(sc.nodes, sceneNode{view: v, label: label, w: w, h: exportBoxHeight})

		minX = math.Min(minX, v.Position.X-w/2)
		maxX = math.Max(maxX, v.Position.X+w/2)
		minY = math.Min(minY, v.Position.Y-exportBoxHeight/2)
		maxY = math.Max(maxY, v.Position.Y+exportBoxHeight/2)
	}
	sc.offsetX = exportPadding - minX
	sc.offsetY = exportPadding - minY
	sc.width = int(math.Ceil(maxX - minX + 2*exportPadding))
	sc.height = int(math.Ceil(maxY - minY + 2*exportPadding))
	return sc, nil
}

// center returns the image coordinates of the node at i.
func (sc *scene) center(i int) (float64, float64) {
	p := sc.nodes[i].view.Position
	return p.X + sc.offsetX, p.Y + sc.offsetY
}

// edgeEnds connects the facing sides of parent and child boxes.
func (sc *scene) edgeEnds(e EdgeView) (x1, y1, x2, y2 float64, ok bool) {
	pi, ok1 := sc.index[e.Source]
	ci, ok2 := sc.index[e.Target]
	if !ok1 || !ok2 {
		return 0, 0, 0, 0, false
	}
	px, py := sc.center(pi)
	cx, cy := sc.center(ci)
	pw, cw := sc.nodes[pi].w/2, sc.nodes[ci].w/2
	if cx >= px {
		return px + pw, py, cx - cw, cy, true
	}
	return px - pw, py, cx + cw, cy, true
}

func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func nodeFill(c string) string {
	if c == "" {
		return defaultNodeColor
	}
	return c
}

// ExportPNG draws the projection to filename.
func ExportPNG(filename string, p Projection, bg string) error {
	sc, err := buildScene(p, bg)
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return renderPNG(f, sc)
}

func renderPNG(w io.Writer, sc *scene) error {
	dc := gg.NewContext(sc.width, sc.height)
	dc.SetHexColor(sc.bg)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	// Edges first so boxes sit on top.
	dc.SetLineWidth(1.5)
	dc.SetColor(color.RGBA{0x88, 0x8c, 0x99, 0xff})
	for _, e := range sc.edges {
		x1, y1, x2, y2, ok := sc.edgeEnds(e)
		if !ok {
			continue
		}
		mid := (x1 + x2) / 2
		dc.MoveTo(x1, y1)
		dc.CubicTo(mid, y1, mid, y2, x2, y2)
		dc.Stroke()
	}

	for i, n := range sc.nodes {
		cx, cy := sc.center(i)
		x, y := cx-n.w/2, cy-n.h/2
		dc.SetHexColor(nodeFill(n.view.Color))
		dc.DrawRoundedRectangle(x, y, n.w, n.h, 6)
		dc.Fill()
		dc.SetColor(color.RGBA{0x33, 0x36, 0x3f, 0xff})
		dc.SetLineWidth(1.2)
		if n.view.IsRoot {
			dc.SetLineWidth(2.4)
		}
		dc.DrawRoundedRectangle(x, y, n.w, n.h, 6)
		dc.Stroke()
		dc.DrawStringAnchored(n.label, cx, cy, 0.5, 0.35)
	}

	return dc.EncodePNG(w)
}

// ExportSVG writes the projection as an SVG document.
func ExportSVG(w io.Writer, p Projection, bg string) error {
	sc, err := buildScene(p, bg)
	if err != nil {
		return err
	}
	canvas := svg.New(w)
	canvas.Start(sc.width, sc.height)
	canvas.Rect(0, 0, sc.width, sc.height, fmt.Sprintf("fill:%s", sc.bg))

	for _, e := range sc.edges {
		x1, y1, x2, y2, ok := sc.edgeEnds(e)
		if !ok {
			continue
		}
		mid := int((x1 + x2) / 2)
		canvas.Polyline(
			[]int{int(x1), mid, mid, int(x2)},
			[]int{int(y1), int(y1), int(y2), int(y2)},
			"fill:none;stroke:#888c99;stroke-width:1.5")
	}

	for i, n := range sc.nodes {
		cx, cy := sc.center(i)
		stroke := 1.2
		if n.view.IsRoot {
			stroke = 2.4
		}
		canvas.Roundrect(int(cx-n.w/2), int(cy-n.h/2), int(n.w), int(n.h), 6, 6,
			fmt.Sprintf("fill:%s;stroke:#33363f;stroke-width:%.1f", nodeFill(n.view.Color), stroke))
		canvas.Text(int(cx), int(cy)+4, n.label,
			"fill:#1d1f24;font-size:12px;font-family:monospace;text-anchor:middle")
	}

	canvas.End()
	return nil
}

// WriteOutline writes every node of m as an indented list, collapsed or not.
func WriteOutline(w io.Writer, m *Map) error {
	if m == nil {
		return ErrNoMap
	}
	var walk func(id NodeID, depth int) error
	walk = func(id NodeID, depth int) error {
		n := m.Nodes[id]
		if n == nil {
			return nil
		}
		line := strings.Repeat("  ", depth) + "- " + n.Title
		if n.Collapsed && len(n.Children) > 0 {
			line += " [+]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if n.Description != "" {
			for _, d := range strings.Split(n.Description, "\n") {
				if _, err := fmt.Fprintln(w, strings.Repeat("  ", depth+1)+"  "+d); err != nil {
					return err
				}
			}
		}
		for _, cid := range n.Children {
			if err := walk(cid, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(m.RootID, 0)
}

// ExportResult lists the files written by ExportAll.
type ExportResult struct {
	Files []string
}

// ExportAll writes the JSON payload, PNG, SVG and outline next to each other
// in dir. The session is read up front; the files are written in parallel.
func (s *Session) ExportAll(ctx context.Context, dir string) (ExportResult, error) {
	payload, err := s.ExportPayload()
	if err != nil {
		return ExportResult{}, err
	}
	proj := s.Project()
	bg := s.doc.BgColor
	doc := s.doc.Clone()

	jsonName := ExportFileName(doc.Title, s.now())
	base := strings.TrimSuffix(jsonName, ".json")
	files := []string{
		filepath.Join(dir, jsonName),
		filepath.Join(dir, base+".png"),
		filepath.Join(dir, base+".svg"),
		filepath.Join(dir, base+".txt"),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return os.WriteFile(files[0], payload, 0o644)
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return ExportPNG(files[1], proj, bg)
	})
	g.Go(func() error {
		return writeFileWith(files[2], func(w io.Writer) error { return ExportSVG(w, proj, bg) })
	})
	g.Go(func() error {
		return writeFileWith(files[3], func(w io.Writer) error { return WriteOutline(w, doc) })
	})
	if err := g.Wait(); err != nil {
		return ExportResult{}, err
	}
	debugLog("exported %d files to %s", len(files), dir)
	return ExportResult{Files: files}, nil
}

func writeFileWith(filename string, write func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

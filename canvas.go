package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Layout units per terminal cell. Rows are taller than columns are wide.
const (
	unitsPerCol   = 10.0
	unitsPerRow   = 16.0
	maxLabelWidth = 24
)

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellEdge
	cellNode
	cellSelected
	cellEditing
)

type cell struct {
	r     rune // 0 marks the trailing half of a wide rune
	kind  cellKind
	color string
	lines uint8 // edge directions, see lineUp and friends
}

const (
	lineUp uint8 = 1 << iota
	lineDown
	lineLeft
	lineRight
)

var lineRunes = [16]rune{
	' ', '│', '│', '│',
	'─', '┘', '┐', '┤',
	'─', '└', '┌', '├',
	'─', '┴', '┬', '┼',
}

// Canvas rasterizes a projection onto a grid of terminal cells. The
// viewport is centered on the root and shifted by the pan offset, both in
// cells.
type Canvas struct {
	width  int
	height int
	panX   int
	panY   int
	cells  [][]cell
}

func NewCanvas(width, height, panX, panY int) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c := &Canvas{width: width, height: height, panX: panX, panY: panY}
	c.cells = make([][]cell, height)
	for y := range c.cells {
		c.cells[y] = make([]cell, width)
		for x := range c.cells[y] {
			c.cells[y][x].r = ' '
		}
	}
	return c
}

// ScreenOf maps a layout position onto a cell of the viewport. The cell
// may lie outside of it.
func (c *Canvas) ScreenOf(p Point) (int, int) {
	col := int(math.Round(p.X / unitsPerCol))
	row := int(math.Round(p.Y / unitsPerRow))
	return c.width/2 + col - c.panX, c.height/2 + row - c.panY
}

func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

func nodeLabel(v NodeView) string {
	title := v.Title
	if title == "" {
		title = " "
	}
	title = runewidth.Truncate(title, maxLabelWidth, "…")
	if v.Collapsed {
		return "[" + title + " +]"
	}
	return "[" + title + "]"
}

type labelBox struct {
	x, y, w int
}

// Draw renders p with selected highlighted. Edges go first so labels cover
// them.
func (c *Canvas) Draw(p Projection, selected NodeID) {
	boxes := make(map[NodeID]labelBox, len(p.Nodes))
	for _, v := range p.Nodes {
		label := nodeLabel(v)
		w := runewidth.StringWidth(label)
		sx, sy := c.ScreenOf(v.Position)
		boxes[v.ID] = labelBox{x: sx - w/2, y: sy, w: w}
	}

	for _, e := range p.Edges {
		from, ok1 := boxes[e.Source]
		to, ok2 := boxes[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		c.drawEdge(from, to)
	}

	for _, v := range p.Nodes {
		kind := cellNode
		switch {
		case v.PendingEdit:
			kind = cellEditing
		case v.ID == selected:
			kind = cellSelected
		}
		b := boxes[v.ID]
		c.drawLabel(b.x, b.y, nodeLabel(v), kind, v.Color)
	}
}

// drawEdge routes an elbow from the facing side of the parent label to the
// facing side of the child label.
func (c *Canvas) drawEdge(from, to labelBox) {
	var x1, x2 int
	if to.x >= from.x+from.w {
		x1, x2 = from.x+from.w, to.x-1
	} else {
		x1, x2 = from.x-1, to.x+to.w
	}
	mid := (x1 + x2) / 2
	c.hline(from.y, x1, mid)
	c.vline(mid, from.y, to.y)
	c.hline(to.y, mid, x2)
}

func (c *Canvas) hline(y, x1, x2 int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y < 0 || y >= c.height {
		return
	}
	if x1 != x2 {
		x1, x2 = clampInt(x1, -1, c.width), clampInt(x2, -1, c.width)
	}
	for x := x1; x <= x2; x++ {
		var bits uint8
		if x > x1 {
			bits |= lineLeft
		}
		if x < x2 {
			bits |= lineRight
		}
		if x1 == x2 {
			bits = lineLeft | lineRight
		}
		c.addLine(x, y, bits)
	}
}

func (c *Canvas) vline(x, y1, y2 int) {
	if y1 == y2 {
		return
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if x < 0 || x >= c.width {
		return
	}
	y1, y2 = clampInt(y1, -1, c.height), clampInt(y2, -1, c.height)
	for y := y1; y <= y2; y++ {
		var bits uint8
		if y > y1 {
			bits |= lineUp
		}
		if y < y2 {
			bits |= lineDown
		}
		c.addLine(x, y, bits)
	}
}

// clampInt limits v to [lo, hi]. Line ends are clamped one cell past the
// grid so the visible part keeps its through-joins.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (c *Canvas) addLine(x, y int, bits uint8) {
	if !c.inBounds(x, y) {
		return
	}
	cl := &c.cells[y][x]
	if cl.kind != cellEmpty && cl.kind != cellEdge {
		return
	}
	cl.lines |= bits
	cl.kind = cellEdge
	cl.r = lineRunes[cl.lines]
}

func (c *Canvas) drawLabel(x, y int, label string, kind cellKind, color string) {
	if y < 0 || y >= c.height {
		return
	}
	for _, r := range label {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if c.inBounds(x, y) {
			c.cells[y][x] = cell{r: r, kind: kind, color: color}
		}
		if w == 2 && c.inBounds(x+1, y) {
			c.cells[y][x+1] = cell{r: 0, kind: kind, color: color}
		}
		x += w
	}
}

// PlainLines returns the grid without styling, trailing spaces trimmed.
func (c *Canvas) PlainLines() []string {
	lines := make([]string, c.height)
	for y, row := range c.cells {
		var b strings.Builder
		for _, cl := range row {
			if cl.r != 0 {
				b.WriteRune(cl.r)
			}
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

var (
	edgeStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9AA0AD", Dark: "#5C6370"})
	nodeStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1D1F24", Dark: "#E8E8E8"})
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	editingStyle  = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#F1FA8C"))
)

func cellStyle(cl cell) lipgloss.Style {
	switch cl.kind {
	case cellEdge:
		return edgeStyle
	case cellSelected:
		return selectedStyle
	case cellEditing:
		return editingStyle
	case cellNode:
		if cl.color != "" && !strings.EqualFold(cl.color, defaultNodeColor) {
			return nodeStyle.Foreground(lipgloss.Color(cl.color))
		}
		return nodeStyle
	}
	return lipgloss.NewStyle()
}

// Lines renders the grid with styles, grouping runs of equal cells.
func (c *Canvas) Lines() []string {
	lines := make([]string, c.height)
	for y, row := range c.cells {
		var b strings.Builder
		var run strings.Builder
		var cur cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur.kind == cellEmpty {
				b.WriteString(run.String())
			} else {
				b.WriteString(cellStyle(cur).Render(run.String()))
			}
			run.Reset()
		}
		for x, cl := range row {
			if cl.r == 0 {
				continue
			}
			if x == 0 || cl.kind != cur.kind || cl.color != cur.color {
				flush()
				cur = cl
			}
			run.WriteRune(cl.r)
		}
		flush()
		lines[y] = b.String()
	}
	return lines
}

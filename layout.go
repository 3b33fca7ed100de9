package main

import (
	"fmt"
	"math"
	"time"
)

type Density string

const (
	DensityComfortable Density = "comfortable"
	DensityCompact     Density = "compact"
	DensityDense       Density = "dense"
)

var densities = []Density{DensityComfortable, DensityCompact, DensityDense}

func ParseDensity(s string) (Density, error) {
	for _, d := range densities {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown layout density %q", s)
}

// LayoutOptions are the three spacing distances of the tidy tree. Zero
// values fall back to the comfortable preset.
type LayoutOptions struct {
	LevelGap     float64 // horizontal distance per depth
	SiblingGap   float64 // vertical gap between sibling subtrees
	RootChildGap float64 // vertical gap between top-level branches
}

func (d Density) Options() LayoutOptions {
	switch d {
	case DensityDense:
		return LayoutOptions{LevelGap: 140, SiblingGap: 32, RootChildGap: 40}
	case DensityCompact:
		return LayoutOptions{LevelGap: 176, SiblingGap: 48, RootChildGap: 60}
	default:
		return LayoutOptions{LevelGap: 220, SiblingGap: 80, RootChildGap: 96}
	}
}

func (o LayoutOptions) withDefaults() LayoutOptions {
	if o.LevelGap <= 0 {
		o.LevelGap = 220
	}
	if o.SiblingGap <= 0 {
		o.SiblingGap = 80
	}
	if o.RootChildGap <= 0 {
		o.RootChildGap = math.Round(o.SiblingGap * 1.2)
	}
	return o
}

type relPos struct {
	id    NodeID
	depth int
	y     float64
}

type subtreeLayout struct {
	nodes []relPos
	span  float64
}

// visibleSet returns the root plus every node reachable through
// non-collapsed ancestors.
func visibleSet(m *Map) map[NodeID]bool {
	visible := make(map[NodeID]bool)
	var collect func(NodeID)
	collect = func(id NodeID) {
		if visible[id] {
			return
		}
		visible[id] = true
		n, ok := m.Nodes[id]
		if !ok || n.Collapsed {
			return
		}
		for _, cid := range n.Children {
			if _, ok := m.Nodes[cid]; ok {
				collect(cid)
			}
		}
	}
	collect(m.RootID)
	return visible
}

// ComputeLayout places the visible part of m as a two-sided tidy tree: the
// root sits at the origin, root children alternate right (even index) and
// left (odd index), and every parent is centered on its children's block.
// Invisible nodes get no entry. The result depends only on m and opts.
func ComputeLayout(m *Map, opts LayoutOptions) Positions {
	start := time.Now()
	pos := make(Positions)
	if m == nil {
		return pos
	}
	if _, ok := m.Nodes[m.RootID]; !ok {
		return pos
	}
	opts = opts.withDefaults()
	visible := visibleSet(m)

	visibleChildren := func(id NodeID) []NodeID {
		n, ok := m.Nodes[id]
		if !ok || n.Collapsed {
			return nil
		}
		out := make([]NodeID, 0, len(n.Children))
		for _, cid := range n.Children {
			if visible[cid] {
				out = append(out, cid)
			}
		}
		return out
	}

	placed := make(map[NodeID]bool)
	var layoutSubtree func(id NodeID, depth int) subtreeLayout
	layoutSubtree = func(id NodeID, depth int) subtreeLayout {
		placed[id] = true
		var children []NodeID
		for _, cid := range visibleChildren(id) {
			if !placed[cid] {
				children = append(children, cid)
			}
		}
		if len(children) == 0 {
			return subtreeLayout{nodes: []relPos{{id: id, depth: depth}}, span: opts.SiblingGap}
		}

		childLayouts := make([]subtreeLayout, len(children))
		total := opts.SiblingGap * float64(len(children)-1)
		for i, cid := range children {
			childLayouts[i] = layoutSubtree(cid, depth+1)
			total += childLayouts[i].span
		}

		var nodes []relPos
		cursor := -total / 2
		for _, cl := range childLayouts {
			center := cursor + cl.span/2
			for _, n := range cl.nodes {
				n.y += center
				nodes = append(nodes, n)
			}
			cursor += cl.span + opts.SiblingGap
		}
		nodes = append(nodes, relPos{id: id, depth: depth})
		return subtreeLayout{nodes: nodes, span: math.Max(opts.SiblingGap, total)}
	}

	placed[m.RootID] = true
	pos[m.RootID] = Point{}

	var right, left []NodeID
	for i, cid := range visibleChildren(m.RootID) {
		if i%2 == 0 {
			right = append(right, cid)
		} else {
			left = append(left, cid)
		}
	}

	placeSide := func(branches []NodeID, sign float64) {
		if len(branches) == 0 {
			return
		}
		layouts := make([]subtreeLayout, len(branches))
		total := opts.RootChildGap * float64(len(branches)-1)
		for i, cid := range branches {
			layouts[i] = layoutSubtree(cid, 1)
			total += layouts[i].span
		}
		cursor := -total / 2
		for _, lay := range layouts {
			center := cursor + lay.span/2
			for _, n := range lay.nodes {
				pos[n.id] = Point{
					X: sign * float64(n.depth) * opts.LevelGap,
					Y: n.y + center,
				}
			}
			cursor += lay.span + opts.RootChildGap
		}
	}

	placeSide(right, 1)
	placeSide(left, -1)

	debugTiming(fmt.Sprintf("layout of %d nodes", len(pos)), time.Since(start))
	return pos
}

// side reports +1 for right-branch nodes, -1 for left-branch nodes and 0 for
// the root, based on the computed layout.
func side(layout Positions, id NodeID) int {
	p, ok := layout[id]
	switch {
	case !ok || p.X == 0:
		return 0
	case p.X > 0:
		return 1
	default:
		return -1
	}
}

package main

import (
	"math"
	"reflect"
	"sort"
	"testing"
)

// abcMap builds a root with children A, B, C added in that order.
func abcMap(t *testing.T) (*Map, *IDAllocator, [3]NodeID) {
	t.Helper()
	m, ids := newTestMap(t)
	var out [3]NodeID
	for i := range out {
		data, err := m.AddChild(ids, m.RootID)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = data.ID
	}
	return m, ids, out
}

func TestLayoutRootAtOrigin(t *testing.T) {
	m, _ := newTestMap(t)
	pos := ComputeLayout(m, DensityComfortable.Options())
	if len(pos) != 1 {
		t.Fatalf("expected one position, got %d", len(pos))
	}
	if pos[m.RootID] != (Point{}) {
		t.Errorf("root should sit at the origin, got %+v", pos[m.RootID])
	}
}

func TestLayoutABC(t *testing.T) {
	m, _, abc := abcMap(t)
	opts := DensityComfortable.Options()
	pos := ComputeLayout(m, opts)
	a, b, c := pos[abc[0]], pos[abc[1]], pos[abc[2]]

	if a.X != opts.LevelGap || c.X != opts.LevelGap {
		t.Errorf("A and C should be right at %v, got %v and %v", opts.LevelGap, a.X, c.X)
	}
	if b.X != -opts.LevelGap {
		t.Errorf("B should be left at %v, got %v", -opts.LevelGap, b.X)
	}
	// Two right branches of one sibling span each around zero.
	wantA := -(opts.SiblingGap + opts.RootChildGap) / 2
	if a.Y != wantA || c.Y != -wantA {
		t.Errorf("expected A.y=%v C.y=%v, got %v %v", wantA, -wantA, a.Y, c.Y)
	}
	if b.Y != 0 {
		t.Errorf("single left branch should be centered, got %v", b.Y)
	}
	if a.Y == c.Y {
		t.Error("A and C must not overlap")
	}
}

func TestLayoutDeleteAndUndoRestoresSlot(t *testing.T) {
	s := newTestSession(t)
	root := s.Map().RootID
	s.AddChild(root)
	s.AddChild(root)
	b, _ := s.AddChild(root) // third child, right side
	before := s.Layout()
	want := before[b]

	s.DeleteSubtree(b)
	if _, ok := s.Layout()[b]; ok {
		t.Fatal("deleted node should have no position")
	}
	s.Undo()
	children := s.Map().ChildrenOf(root)
	if children[len(children)-1] != b {
		t.Fatalf("restored node should be last, got %v", children)
	}
	if got := s.Layout()[b]; got != want {
		t.Errorf("expected %+v after undo, got %+v", want, got)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	m, ids, abc := abcMap(t)
	for i := 0; i < 4; i++ {
		m.AddChild(ids, abc[i%3])
	}
	opts := DensityCompact.Options()
	first := ComputeLayout(m, opts)
	for i := 0; i < 5; i++ {
		if got := ComputeLayout(m.Clone(), opts); !reflect.DeepEqual(first, got) {
			t.Fatalf("layout changed between runs")
		}
	}
}

func TestLayoutParentCenteredOnChildren(t *testing.T) {
	m, ids := newTestMap(t)
	a, _ := m.AddChild(ids, m.RootID)
	var kids []NodeID
	for i := 0; i < 3; i++ {
		k, _ := m.AddChild(ids, a.ID)
		kids = append(kids, k.ID)
	}
	pos := ComputeLayout(m, DensityComfortable.Options())

	mid := (pos[kids[0]].Y + pos[kids[2]].Y) / 2
	if math.Abs(pos[a.ID].Y-mid) > 1e-9 {
		t.Errorf("parent y %v should be centered on children %v", pos[a.ID].Y, mid)
	}
	for _, k := range kids {
		if pos[k].X != 2*220 {
			t.Errorf("depth 2 node should be at x=440, got %v", pos[k].X)
		}
	}
}

func TestLayoutSiblingsDoNotOverlap(t *testing.T) {
	m, ids, abc := abcMap(t)
	for i := 0; i < 3; i++ {
		m.AddChild(ids, abc[0])
		m.AddChild(ids, abc[2])
	}
	opts := DensityDense.Options()
	pos := ComputeLayout(m, opts)

	// Nodes sharing a depth and side must be at least a sibling gap apart.
	columns := map[float64][]float64{}
	for _, p := range pos {
		columns[p.X] = append(columns[p.X], p.Y)
	}
	for x, ys := range columns {
		sort.Float64s(ys)
		for i := 1; i < len(ys); i++ {
			if ys[i]-ys[i-1] < opts.SiblingGap-1e-9 {
				t.Errorf("column x=%v: %v and %v closer than %v", x, ys[i-1], ys[i], opts.SiblingGap)
			}
		}
	}
}

func TestLayoutCollapseHidesDescendants(t *testing.T) {
	m, ids := newTestMap(t)
	a, _ := m.AddChild(ids, m.RootID)
	a1, _ := m.AddChild(ids, a.ID)
	a2, _ := m.AddChild(ids, a1.ID)
	opts := DensityComfortable.Options()
	open := ComputeLayout(m, opts)

	m.ToggleCollapse(a.ID)
	closed := ComputeLayout(m, opts)
	if _, ok := closed[a1.ID]; ok {
		t.Error("child of collapsed node should be hidden")
	}
	if _, ok := closed[a2.ID]; ok {
		t.Error("grandchild of collapsed node should be hidden")
	}
	if _, ok := closed[a.ID]; !ok {
		t.Error("collapsed node itself stays visible")
	}

	m.ToggleCollapse(a.ID)
	if got := ComputeLayout(m, opts); !reflect.DeepEqual(open, got) {
		t.Error("expanding again should restore the layout")
	}
}

func TestDensityPresets(t *testing.T) {
	c, k, d := DensityComfortable.Options(), DensityCompact.Options(), DensityDense.Options()
	if !(c.LevelGap > k.LevelGap && k.LevelGap > d.LevelGap) {
		t.Error("level gaps should shrink with density")
	}
	if !(c.SiblingGap > k.SiblingGap && k.SiblingGap > d.SiblingGap) {
		t.Error("sibling gaps should shrink with density")
	}
	if k != (LayoutOptions{LevelGap: 176, SiblingGap: 48, RootChildGap: 60}) {
		t.Errorf("unexpected compact preset %+v", k)
	}
	if _, err := ParseDensity("cozy"); err == nil {
		t.Error("unknown density should fail to parse")
	}
}

func TestLayoutOptionDefaults(t *testing.T) {
	got := LayoutOptions{SiblingGap: 50}.withDefaults()
	want := LayoutOptions{LevelGap: 220, SiblingGap: 50, RootChildGap: 60}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestSessionLayoutMemoized(t *testing.T) {
	s := newTestSession(t)
	s.AddChild(s.Map().RootID)
	first := s.Layout()
	second := s.Layout()
	if reflect.ValueOf(first).Pointer() != reflect.ValueOf(second).Pointer() {
		t.Error("unchanged session should reuse the cached layout")
	}
	s.SetLayoutDensity(DensityDense)
	if reflect.ValueOf(s.Layout()).Pointer() == reflect.ValueOf(first).Pointer() {
		t.Error("density change should recompute")
	}
}

func TestToggleParentKeepsDescendantCollapse(t *testing.T) {
	m, ids := newTestMap(t)
	a := mustAdd(t, m, ids, m.RootID)
	a1 := mustAdd(t, m, ids, a)
	leaf := mustAdd(t, m, ids, a1)
	opts := DensityCompact.Options()

	if err := m.ToggleCollapse(a1); err != nil {
		t.Fatal(err)
	}
	if err := m.ToggleCollapse(a); err != nil {
		t.Fatal(err)
	}
	pos := ComputeLayout(m, opts)
	if _, ok := pos[a1]; ok {
		t.Errorf("%s should be hidden while %s is collapsed", a1, a)
	}

	if err := m.ToggleCollapse(a); err != nil {
		t.Fatal(err)
	}
	if !m.Nodes[a1].Collapsed {
		t.Fatalf("re-expanding %s must not expand %s", a, a1)
	}
	pos = ComputeLayout(m, opts)
	if _, ok := pos[a1]; !ok {
		t.Errorf("%s should be visible again", a1)
	}
	if _, ok := pos[leaf]; ok {
		t.Errorf("%s should stay hidden under collapsed %s", leaf, a1)
	}

	if err := m.ToggleCollapse(a1); err != nil {
		t.Fatal(err)
	}
	if _, ok := ComputeLayout(m, opts)[leaf]; !ok {
		t.Errorf("%s should appear once %s is expanded", leaf, a1)
	}
}

func mustAdd(t *testing.T, m *Map, ids *IDAllocator, parent NodeID) NodeID {
	t.Helper()
	data, err := m.AddChild(ids, parent)
	if err != nil {
		t.Fatalf("AddChild(%s): %v", parent, err)
	}
	return data.ID
}

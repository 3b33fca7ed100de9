package main

import (
	"strings"
	"testing"
	"time"
)

func TestCanvasScreenOf(t *testing.T) {
	c := NewCanvas(80, 24, 0, 0)
	if x, y := c.ScreenOf(Point{}); x != 40 || y != 12 {
		t.Errorf("origin should map to the center, got %d,%d", x, y)
	}
	if x, y := c.ScreenOf(Point{X: 200, Y: -32}); x != 60 || y != 10 {
		t.Errorf("unexpected cell %d,%d", x, y)
	}
	c = NewCanvas(80, 24, 5, -3)
	if x, y := c.ScreenOf(Point{}); x != 35 || y != 15 {
		t.Errorf("pan should shift the view, got %d,%d", x, y)
	}
}

func TestCanvasDrawsLabelsAndEdges(t *testing.T) {
	s := newTestSession(t)
	root := s.Map().RootID
	a, _ := s.AddChild(root)
	s.AddChild(root)
	s.FocusEdit("")
	title := "Alpha"
	s.EditNode(a, NodePatch{Title: &title})

	c := NewCanvas(100, 20, 0, 0)
	c.Draw(s.Project(), root)
	out := strings.Join(c.PlainLines(), "\n")

	for _, want := range []string{"[Root]", "[Alpha]", "[New node]"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in\n%s", want, out)
		}
	}
	if !strings.ContainsAny(out, "─│┌┐└┘├┤") {
		t.Errorf("expected edge lines in\n%s", out)
	}

	// Alpha is the right branch, the other child the left one.
	lines := c.PlainLines()
	for _, line := range lines {
		if i := strings.Index(line, "[Alpha]"); i >= 0 && i < 50 {
			t.Errorf("Alpha should be right of center, found at column %d", i)
		}
		if i := strings.Index(line, "[New node]"); i >= 50 {
			t.Errorf("left branch should be left of center, found at column %d", i)
		}
	}
}

func TestCanvasCollapsedMarker(t *testing.T) {
	s := newTestSession(t)
	root := s.Map().RootID
	a, _ := s.AddChild(root)
	s.AddChild(a)
	s.ToggleCollapse(a)

	c := NewCanvas(100, 20, 0, 0)
	c.Draw(s.Project(), "")
	if out := strings.Join(c.PlainLines(), "\n"); !strings.Contains(out, "[New node +]") {
		t.Errorf("collapsed node should be marked:\n%s", out)
	}
}

func TestCanvasClipsOffscreen(t *testing.T) {
	s := newTestSession(t)
	c := NewCanvas(10, 3, 500, 500)
	c.Draw(s.Project(), "")
	for _, line := range c.PlainLines() {
		if line != "" {
			t.Errorf("expected empty viewport, got %q", line)
		}
	}
}

func TestNodeLabelTruncates(t *testing.T) {
	label := nodeLabel(NodeView{Title: strings.Repeat("x", 60)})
	if w := len([]rune(label)); w > maxLabelWidth+2 {
		t.Errorf("label too wide: %d", w)
	}
	if !strings.HasSuffix(label, "…]") {
		t.Errorf("expected ellipsis, got %q", label)
	}
}

func TestLineJoins(t *testing.T) {
	c := NewCanvas(5, 5, 0, 0)
	c.hline(2, 0, 4)
	c.vline(2, 0, 4)
	if got := c.PlainLines()[2]; got != "──┼──" {
		t.Errorf("expected a crossing, got %q", got)
	}
	if got := c.PlainLines()[0]; got != "  │" {
		t.Errorf("expected a vertical stub, got %q", got)
	}
}

func TestCanvasFarOffscreenNode(t *testing.T) {
	s := newTestSession(t)
	root := s.Map().RootID
	a, _ := s.AddChild(root)
	b, _ := s.AddChild(root)
	s.BeginMove(a, 0, 0)
	s.EndMove(a, 1e12, 1e13)
	s.BeginMove(b, 0, 0)
	s.EndMove(b, -1e12, -1e13)

	done := make(chan []string, 1)
	go func() {
		c := NewCanvas(80, 24, 0, 0)
		c.Draw(s.Project(), root)
		done <- c.PlainLines()
	}()

	select {
	case lines := <-done:
		out := strings.Join(lines, "\n")
		if !strings.Contains(out, "[Root]") {
			t.Errorf("root should still be drawn:\n%s", out)
		}
		if !strings.ContainsAny(out, "─│") {
			t.Errorf("edges toward off-screen nodes should be drawn up to the border:\n%s", out)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("drawing an off-screen node should not walk every cell up to it")
	}
}

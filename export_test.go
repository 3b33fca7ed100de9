package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleSession(t *testing.T) *Session {
	t.Helper()
	s := newTestSession(t)
	root := s.Map().RootID
	a, _ := s.AddChild(root)
	title := "Alpha"
	s.EditNode(a, NodePatch{Title: &title})
	a1, _ := s.AddChild(a)
	desc := "line one\nline two"
	s.EditNode(a1, NodePatch{Description: &desc})
	b, _ := s.AddChild(root)
	s.AddChild(b)
	s.ToggleCollapse(b)
	return s
}

func TestWriteOutline(t *testing.T) {
	s := sampleSession(t)
	var buf bytes.Buffer
	if err := WriteOutline(&buf, s.Map()); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"- Root",
		"  - Alpha",
		"    - New node",
		"        line one",
		"        line two",
		"  - New node [+]",
		"    - New node",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("unexpected outline:\n%s\nwant:\n%s", got, want)
	}
}

func TestExportSVG(t *testing.T) {
	s := sampleSession(t)
	var buf bytes.Buffer
	if err := ExportSVG(&buf, s.Project(), s.Map().BgColor); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Fatal("not an svg document")
	}
	// Four visible nodes; the collapsed branch hides one.
	if n := strings.Count(out, "<rect") - 1; n != 4 {
		t.Errorf("expected 4 node boxes, got %d", n)
	}
	if !strings.Contains(out, "Alpha") {
		t.Error("node titles should be drawn")
	}
	if !strings.Contains(out, "New node +") {
		t.Error("collapsed nodes should be marked")
	}
}

func TestExportEmptyProjection(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportSVG(&buf, Projection{}, ""); err == nil {
		t.Error("expected an error for an empty projection")
	}
}

func TestRenderPNG(t *testing.T) {
	s := sampleSession(t)
	sc, err := buildScene(s.Project(), s.Map().BgColor)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := renderPNG(&buf, sc); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != sc.width || b.Dy() != sc.height {
		t.Errorf("unexpected size %v", b)
	}
}

func TestSceneBounds(t *testing.T) {
	s := sampleSession(t)
	sc, err := buildScene(s.Project(), "")
	if err != nil {
		t.Fatal(err)
	}
	if sc.bg != defaultBgColor {
		t.Errorf("empty background should fall back, got %q", sc.bg)
	}
	for i, n := range sc.nodes {
		x, y := sc.center(i)
		if x-n.w/2 < exportPadding-1e-9 || y-n.h/2 < exportPadding-1e-9 {
			t.Errorf("%s sticks out of the top left", n.view.ID)
		}
		if x+n.w/2 > float64(sc.width) || y+n.h/2 > float64(sc.height) {
			t.Errorf("%s sticks out of the bottom right", n.view.ID)
		}
	}
}

func TestExportAll(t *testing.T) {
	s := sampleSession(t)
	dir := t.TempDir()
	res, err := s.ExportAll(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 4 {
		t.Fatalf("expected 4 files, got %v", res.Files)
	}
	if filepath.Base(res.Files[0]) != "Root_2024-03-01.json" {
		t.Errorf("unexpected json name %s", res.Files[0])
	}
	for _, f := range res.Files {
		info, err := os.Stat(f)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s missing or empty", f)
		}
	}

	data, _ := os.ReadFile(res.Files[0])
	other := NewSession()
	if err := other.ImportPayload(data); err != nil {
		t.Errorf("exported json should import: %v", err)
	}
}

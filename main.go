package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mindterm:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", ConfigPath(), "path to config.yaml")
	printOutline := flag.Bool("print", false, "print the autosaved map as an outline and exit")
	flag.Parse()

	cfg, err := LoadConfigFrom(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mindterm: using defaults:", err)
		cfg = DefaultConfig()
	}
	if err := initDebug(cfg.Debug, filepath.Join(StateDir(), "debug.log")); err != nil {
		fmt.Fprintln(os.Stderr, "mindterm:", err)
	}
	defer closeDebug()

	ctx := context.Background()
	store, err := OpenSQLiteStore(ctx, cfg.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	session := NewSession(append(cfg.SessionOptions(), WithStore(store))...)
	if err := session.Restore(ctx); err != nil {
		return err
	}

	if *printOutline || !term.IsTerminal(int(os.Stdout.Fd())) {
		if !session.HasMap() {
			return fmt.Errorf("no saved map")
		}
		return WriteOutline(os.Stdout, session.Map())
	}

	var watcher *ConfigWatcher
	if *configPath != "" {
		if err := os.MkdirAll(filepath.Dir(*configPath), 0o755); err == nil {
			watcher, err = WatchConfig(*configPath)
			if err != nil {
				debugLog("config watcher disabled: %v", err)
			}
		}
	}
	if watcher != nil {
		defer watcher.Close()
	}

	p := tea.NewProgram(newModel(session, cfg, *configPath, watcher), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type model struct {
	session    *Session
	config     Config
	configPath string
	watcher    *ConfigWatcher

	width  int
	height int
	panX   int
	panY   int

	mode     Mode
	help     bool
	selected NodeID

	input     textinput.Model
	editField EditField
	editNode  NodeID
	newMap    *newMapForm

	fileOp        FileOperation
	confirmAction ConfirmAction
	confirmNode   NodeID
	pendingImport []byte

	moveNode NodeID
	movePos  Point

	showDetails bool
	md          *glamour.TermRenderer
	mdWidth     int

	errorMessage   string
	successMessage string
}

type viewportState struct {
	PanX int `json:"panX"`
	PanY int `json:"panY"`
}

type configChangedMsg struct{}

type exportDoneMsg struct {
	files []string
	err   error
}

func newModel(session *Session, cfg Config, configPath string, watcher *ConfigWatcher) model {
	ti := textinput.New()
	ti.CharLimit = 512

	m := model{
		session:    session,
		config:     cfg,
		configPath: configPath,
		watcher:    watcher,
		input:      ti,
		mode:       ModeNormal,
	}
	if raw := session.Viewport(); len(raw) > 0 {
		var vp viewportState
		if err := json.Unmarshal(raw, &vp); err == nil {
			m.panX, m.panY = vp.PanX, vp.PanY
		}
	}
	if session.HasMap() {
		m.selected = session.Map().RootID
	} else if cfg.StartMenu {
		m.mode = ModeStartup
	} else {
		m.newMap = newNewMapForm()
		m.mode = ModeCreating
	}
	return m
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.newMap != nil {
		cmds = append(cmds, m.newMap.Init())
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForConfigChange(m.watcher))
	}
	return tea.Batch(cmds...)
}

func waitForConfigChange(w *ConfigWatcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return configChangedMsg{}
	}
}

func (m *model) reloadConfig() {
	cfg, err := LoadConfigFrom(m.configPath)
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	if cfg.LayoutDensity != m.config.LayoutDensity {
		if d, err := ParseDensity(cfg.LayoutDensity); err == nil {
			m.session.SetLayoutDensity(d)
		}
	}
	m.config = cfg
	m.successMessage = "Config reloaded"
}

func (m *model) saveViewport() {
	raw, err := json.Marshal(viewportState{PanX: m.panX, PanY: m.panY})
	if err != nil {
		return
	}
	m.session.SetViewport(raw)
}

// canvasSize is the area left for the map after the status line and the
// details pane.
func (m *model) canvasSize() (int, int) {
	width, height := m.width, m.height-1
	if m.showDetails {
		height -= detailsHeight
	}
	if width < 1 {
		width = 80
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

const detailsHeight = 8

// fixSelection moves the selection to the nearest visible ancestor when the
// selected node was deleted or hidden.
func (m *model) fixSelection() {
	doc := m.session.Map()
	if doc == nil {
		m.selected = ""
		return
	}
	layout := m.session.Layout()
	if _, ok := layout[m.selected]; ok {
		return
	}
	if doc.Nodes[m.selected] != nil {
		for _, id := range doc.AncestorsOf(m.selected) {
			if _, ok := layout[id]; ok {
				m.selected = id
				return
			}
		}
	}
	m.selected = doc.RootID
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.session.HasMap() {
			m.ensureSelectedVisible()
		}
		return m, nil

	case configChangedMsg:
		m.reloadConfig()
		return m, waitForConfigChange(m.watcher)

	case exportDoneMsg:
		if msg.err != nil {
			m.errorMessage = "Export failed: " + msg.err.Error()
		} else {
			m.successMessage = fmt.Sprintf("Exported %d files", len(msg.files))
		}
		return m, nil
	}

	if m.mode == ModeCreating && m.newMap != nil {
		return m.updateNewMap(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.mode == ModeEditing || m.mode == ModeFileInput {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if keyMsg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.help {
		switch keyMsg.String() {
		case "esc", "q", "?":
			m.help = false
		}
		return m, nil
	}

	m.errorMessage = ""
	switch m.mode {
	case ModeStartup:
		return m.updateStartup(keyMsg)
	case ModeEditing:
		return m.updateEditing(keyMsg)
	case ModeMove:
		return m.updateMove(keyMsg)
	case ModeFileInput:
		return m.updateFileInput(keyMsg)
	case ModeConfirm:
		return m.updateConfirm(keyMsg)
	}
	return m.updateNormal(keyMsg)
}

func (m model) updateNewMap(msg tea.Msg) (tea.Model, tea.Cmd) {
	done, submitted, cmd := m.newMap.Update(msg)
	if !done {
		return m, cmd
	}
	form := m.newMap
	m.newMap = nil
	if !submitted {
		if m.session.HasMap() {
			m.mode = ModeNormal
		} else {
			m.mode = ModeStartup
		}
		return m, nil
	}
	if err := form.submit(m.session); err != nil {
		m.errorMessage = err.Error()
		m.mode = ModeStartup
		return m, nil
	}
	m.session.ResetLayout()
	m.panX, m.panY = 0, 0
	m.saveViewport()
	m.selected = m.session.Map().RootID
	m.mode = ModeNormal
	m.successMessage = "Created " + m.session.Map().Title
	return m, nil
}

func (m model) updateStartup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		m.newMap = newNewMapForm()
		m.mode = ModeCreating
		return m, m.newMap.Init()
	case "o":
		return m, m.startFileInput(FileOpImport, "")
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.successMessage = ""
	s := m.session

	switch key {
	case "?":
		m.help = true
		return m, nil
	case "q":
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	case "n":
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmNewMap
			return m, nil
		}
		m.newMap = newNewMapForm()
		m.mode = ModeCreating
		return m, m.newMap.Init()
	case "o":
		return m, m.startFileInput(FileOpImport, "")
	case "h", "j", "k", "l", "left", "right", "up", "down":
		return m.handleNavigation(key)
	case "H", "J", "K", "L", "shift+left", "shift+right", "shift+up", "shift+down":
		return m.handlePan(key), nil
	case "0":
		m.panX, m.panY = 0, 0
		m.saveViewport()
		return m, nil
	}

	if !s.HasMap() {
		return m, nil
	}

	switch key {
	case "tab":
		if id, ok := s.AddChild(m.selected); ok {
			m.selected = id
			return m, m.startEdit(id, EditTitle)
		}
	case "enter":
		if id, ok := s.AddSibling(m.selected); ok {
			m.selected = id
			return m, m.startEdit(id, EditTitle)
		}
	case "e":
		return m, m.startEdit(m.selected, EditTitle)
	case "E":
		return m, m.startEdit(m.selected, EditDescription)
	case " ":
		s.ToggleCollapse(m.selected)
	case "C":
		s.CollapseAll()
		m.fixSelection()
	case "X":
		s.ExpandAll()
	case "d", "delete", "backspace":
		if m.selected == s.Map().RootID {
			m.errorMessage = "The root cannot be deleted"
			return m, nil
		}
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmDeleteNode
			m.confirmNode = m.selected
			return m, nil
		}
		m.deleteSelected(m.selected)
	case "m":
		pos, ok := s.Position(m.selected)
		if ok && s.BeginMove(m.selected, pos.X, pos.Y) {
			m.mode = ModeMove
			m.moveNode = m.selected
			m.movePos = pos
		}
	case "u", "ctrl+z":
		if !s.Undo() {
			m.successMessage = "Nothing to undo"
		}
		m.fixSelection()
	case "U", "ctrl+r", "ctrl+y":
		if !s.Redo() {
			m.successMessage = "Nothing to redo"
		}
		m.fixSelection()
	case "1", "2", "3":
		d := map[string]Density{"1": DensityComfortable, "2": DensityCompact, "3": DensityDense}[key]
		s.SetLayoutDensity(d)
		m.successMessage = "Layout: " + string(d)
		m.ensureSelectedVisible()
	case "r":
		if m.config.Confirmations && len(s.Overrides()) > 0 {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmResetLayout
			return m, nil
		}
		s.ResetLayout()
	case "c":
		m.cycleColor()
	case "y":
		if n := s.Map().Nodes[m.selected]; n != nil {
			if err := writeClipboardText(n.Title); err != nil {
				m.errorMessage = "Copy failed: " + err.Error()
			} else {
				m.successMessage = "Copied title"
			}
		}
	case "p":
		m.pasteAsChild()
	case "i":
		m.showDetails = !m.showDetails
		m.ensureSelectedVisible()
	case "s":
		return m, m.startFileInput(FileOpExportJSON, ExportFileName(s.Map().Title, time.Now()))
	case "S":
		return m, m.startFileInput(FileOpExportPNG, m.exportName(".png"))
	case "V":
		return m, m.startFileInput(FileOpExportSVG, m.exportName(".svg"))
	case "T":
		return m, m.startFileInput(FileOpExportTXT, m.exportName(".txt"))
	case "A":
		return m, m.startFileInput(FileOpExportAll, m.config.SaveDirectory)
	}
	return m, nil
}

func (m *model) exportName(ext string) string {
	name := ExportFileName(m.session.Map().Title, time.Now())
	return strings.TrimSuffix(name, ".json") + ext
}

func (m *model) deleteSelected(id NodeID) {
	parent := m.session.Map().Nodes[id].ParentID
	if m.session.DeleteSubtree(id) {
		m.selected = parent
		m.fixSelection()
	}
}

func (m *model) cycleColor() {
	n := m.session.Map().Nodes[m.selected]
	if n == nil {
		return
	}
	next := nodePalette[0]
	for i, c := range nodePalette {
		if strings.EqualFold(c, n.Color) {
			next = nodePalette[(i+1)%len(nodePalette)]
			break
		}
	}
	m.session.EditNode(m.selected, NodePatch{Color: &next})
}

func (m *model) pasteAsChild() {
	raw, err := readClipboardText()
	if err != nil {
		m.errorMessage = "Paste failed: " + err.Error()
		return
	}
	title, description, ok := clipboardFields(raw)
	if !ok {
		m.errorMessage = "Clipboard is empty"
		return
	}
	id, ok := m.session.AddChild(m.selected)
	if !ok {
		return
	}
	m.session.EditNode(id, NodePatch{Title: &title, Description: &description})
	m.session.FocusEdit("")
	m.selected = id
	m.ensureSelectedVisible()
}

// startEdit opens the inline editor on id, picking up an unexpired draft
// when there is one.
func (m *model) startEdit(id NodeID, field EditField) tea.Cmd {
	n := m.session.Map().Nodes[id]
	if n == nil {
		return nil
	}
	value := n.Title
	if field == EditDescription {
		value = n.Description
	}
	if n.Title == defaultNodeTitle && field == EditTitle && id == m.session.PendingEdit() {
		value = ""
	}
	if d, ok := m.session.Draft(id); ok {
		if field == EditTitle && d.Patch.Title != nil {
			value = *d.Patch.Title
		}
		if field == EditDescription && d.Patch.Description != nil {
			value = *d.Patch.Description
		}
	}

	m.session.FocusEdit(id)
	m.editNode = id
	m.editField = field
	m.mode = ModeEditing
	m.input.Reset()
	m.input.Prompt = "Title: "
	m.input.Placeholder = defaultNodeTitle
	if field == EditDescription {
		m.input.Prompt = "Description: "
		m.input.Placeholder = "markdown, \\n for new lines"
		value = strings.ReplaceAll(value, "\n", "\\n")
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.ensureSelectedVisible()
	return m.input.Focus()
}

func (m *model) editPatch() NodePatch {
	value := m.input.Value()
	if m.editField == EditDescription {
		value = strings.ReplaceAll(value, "\\n", "\n")
		return NodePatch{Description: &value}
	}
	return NodePatch{Title: &value}
}

func (m model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		patch := m.editPatch()
		if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
			m.session.CancelEdit(m.editNode)
		} else {
			m.session.EditNode(m.editNode, patch)
		}
		m.session.FocusEdit("")
		m.input.Blur()
		m.mode = ModeNormal
		return m, nil
	case "esc":
		m.session.CancelEdit(m.editNode)
		m.input.Blur()
		m.mode = ModeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SaveDraft(m.editNode, m.editPatch())
	return m, cmd
}

func (m model) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "enter", "m":
		if m.session.EndMove(m.moveNode, m.movePos.X, m.movePos.Y) {
			m.successMessage = "Moved"
		}
		m.mode = ModeNormal
		return m, nil
	case "esc":
		m.session.CancelMove(m.moveNode)
		m.mode = ModeNormal
		return m, nil
	}
	step := m.getMoveStep(key)
	switch key {
	case "h", "left", "H", "shift+left":
		m.movePos.X -= step * unitsPerCol
	case "l", "right", "L", "shift+right":
		m.movePos.X += step * unitsPerCol
	case "k", "up", "K", "shift+up":
		m.movePos.Y -= step * unitsPerRow
	case "j", "down", "J", "shift+down":
		m.movePos.Y += step * unitsPerRow
	default:
		return m, nil
	}
	m.session.DragNode(m.moveNode, m.movePos.X, m.movePos.Y)
	m.ensureSelectedVisible()
	return m, nil
}

func (m *model) startFileInput(op FileOperation, value string) tea.Cmd {
	m.fileOp = op
	m.mode = ModeFileInput
	m.input.Reset()
	switch op {
	case FileOpImport:
		m.input.Prompt = "Import from: "
		m.input.Placeholder = "map.json"
	case FileOpExportAll:
		m.input.Prompt = "Export all to directory: "
		m.input.Placeholder = "."
	default:
		m.input.Prompt = "Export to: "
		m.input.Placeholder = ""
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m model) updateFileInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		if m.session.HasMap() {
			m.mode = ModeNormal
		} else {
			m.mode = ModeStartup
		}
		return m, nil
	case "enter":
		m.input.Blur()
		name := expandHome(strings.TrimSpace(m.input.Value()))
		m.mode = ModeNormal
		if !m.session.HasMap() {
			m.mode = ModeStartup
		}
		return m.runFileOp(name)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) runFileOp(name string) (tea.Model, tea.Cmd) {
	s := m.session
	if name == "" && m.fileOp != FileOpExportAll {
		m.errorMessage = "No file name given"
		return m, nil
	}
	if m.fileOp != FileOpImport && !filepath.IsAbs(name) && m.fileOp != FileOpExportAll {
		name = m.config.GetSavePath(name)
	}

	var err error
	switch m.fileOp {
	case FileOpImport:
		var data []byte
		if data, err = os.ReadFile(name); err != nil {
			break
		}
		if _, err = DecodePayload(data); err != nil {
			break
		}
		if s.HasMap() && m.config.Confirmations {
			m.pendingImport = data
			m.mode = ModeConfirm
			m.confirmAction = ConfirmImport
			return m, nil
		}
		m.importPayload(data)
		return m, nil
	case FileOpExportJSON:
		var data []byte
		if data, err = s.ExportPayload(); err == nil {
			err = os.WriteFile(name, data, 0o644)
		}
	case FileOpExportPNG:
		err = ExportPNG(name, s.Project(), s.Map().BgColor)
	case FileOpExportSVG:
		err = writeFileWith(name, func(w io.Writer) error { return ExportSVG(w, s.Project(), s.Map().BgColor) })
	case FileOpExportTXT:
		err = writeFileWith(name, func(w io.Writer) error { return WriteOutline(w, s.Map()) })
	case FileOpExportAll:
		dir := name
		if dir == "" {
			dir = "."
		}
		return m, exportAllCmd(s, dir)
	}
	if err != nil {
		m.errorMessage = err.Error()
		return m, nil
	}
	m.successMessage = "Saved " + name
	return m, nil
}

// exportAllCmd snapshots the session on the update goroutine and writes the
// files in the background.
func exportAllCmd(s *Session, dir string) tea.Cmd {
	if !s.HasMap() {
		return nil
	}
	payload, err := s.ExportPayload()
	if err != nil {
		return func() tea.Msg { return exportDoneMsg{err: err} }
	}
	snap := NewSession(WithClock(s.now), WithDensity(s.Density()))
	if err := snap.ImportPayload(payload); err != nil {
		return func() tea.Msg { return exportDoneMsg{err: err} }
	}
	return func() tea.Msg {
		res, err := snap.ExportAll(context.Background(), dir)
		return exportDoneMsg{files: res.Files, err: err}
	}
}

func (m *model) importPayload(data []byte) {
	if err := m.session.ImportPayload(data); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.panX, m.panY = 0, 0
	if raw := m.session.Viewport(); len(raw) > 0 {
		var vp viewportState
		if err := json.Unmarshal(raw, &vp); err == nil {
			m.panX, m.panY = vp.PanX, vp.PanY
		}
	}
	m.selected = m.session.Map().RootID
	m.mode = ModeNormal
	m.successMessage = "Imported " + m.session.Map().Title
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmDeleteNode:
			m.deleteSelected(m.confirmNode)
		case ConfirmNewMap:
			m.newMap = newNewMapForm()
			m.mode = ModeCreating
			return m, m.newMap.Init()
		case ConfirmResetLayout:
			m.session.ResetLayout()
		case ConfirmImport:
			m.importPayload(m.pendingImport)
			m.pendingImport = nil
		}
	case "n", "N", "esc":
		m.mode = ModeNormal
		m.pendingImport = nil
	}
	return m, nil
}

func (m model) confirmPrompt() string {
	switch m.confirmAction {
	case ConfirmQuit:
		return "Quit? (y/n)"
	case ConfirmDeleteNode:
		title := ""
		if n := m.session.Map().Nodes[m.confirmNode]; n != nil {
			title = n.Title
		}
		return fmt.Sprintf("Delete %q and everything under it? (y/n)", title)
	case ConfirmNewMap:
		return "Start a new map? The current one stays autosaved until then. (y/n)"
	case ConfirmResetLayout:
		return "Drop every manually placed position? (y/n)"
	case ConfirmImport:
		return "Replace the current map with the imported one? (y/n)"
	}
	return "(y/n)"
}

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E8E8E8"})
	modeStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("#6272A4")).Foreground(lipgloss.Color("#F8F8F2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).BorderForeground(lipgloss.Color("#6272A4"))
)

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	switch m.mode {
	case ModeStartup:
		return m.startupView()
	case ModeCreating:
		if m.newMap != nil {
			return m.newMap.View()
		}
	}

	width, height := m.canvasSize()
	canvas := NewCanvas(width, height, m.panX, m.panY)
	canvas.Draw(m.session.Project(), m.selected)

	var b strings.Builder
	b.WriteString(strings.Join(canvas.Lines(), "\n"))
	if m.showDetails {
		b.WriteString("\n")
		b.WriteString(m.detailsView(width))
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine(width))
	return b.String()
}

func (m model) startupView() string {
	lines := []string{
		"mindterm",
		"",
		"  n  New map",
		"  o  Import a map",
		"  q  Quit",
	}
	if m.mode == ModeFileInput {
		lines = append(lines, "", m.input.View())
	}
	if m.errorMessage != "" {
		lines = append(lines, "", errorStyle.Render(m.errorMessage))
	}
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 3).Render(strings.Join(lines, "\n"))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// detailsView renders the selected node's description as markdown.
func (m *model) detailsView(width int) string {
	n := m.session.Map().Nodes[m.selected]
	if n == nil {
		return ""
	}
	text := "## " + n.Title + "\n\n" + n.Description
	if n.Description == "" {
		text += "_No description_"
	}
	out := text
	if r := m.markdownRenderer(width); r != nil {
		if rendered, err := r.Render(text); err == nil {
			out = strings.Trim(rendered, "\n")
		}
	}
	lines := strings.Split(out, "\n")
	if len(lines) > detailsHeight-1 {
		lines = lines[:detailsHeight-1]
	}
	for len(lines) < detailsHeight-1 {
		lines = append(lines, "")
	}
	return paneStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *model) markdownRenderer(width int) *glamour.TermRenderer {
	if m.md != nil && m.mdWidth == width {
		return m.md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		return nil
	}
	m.md, m.mdWidth = r, width
	return r
}

func (m model) statusLine(width int) string {
	var right string
	switch m.mode {
	case ModeEditing, ModeFileInput:
		right = m.input.View()
	case ModeConfirm:
		right = m.confirmPrompt()
	case ModeMove:
		right = "hjkl move  enter place  esc cancel"
	default:
		switch {
		case m.errorMessage != "":
			right = errorStyle.Render(m.errorMessage)
		case m.successMessage != "":
			right = successStyle.Render(m.successMessage)
		default:
			undo, redo := m.session.History().Stats()
			title := ""
			if doc := m.session.Map(); doc != nil {
				title = doc.Title
			}
			right = statusStyle.Render(fmt.Sprintf("%s  %s  undo %d redo %d  ? help", title, m.session.Density(), undo, redo))
		}
	}
	line := modeStyle.Render(m.modeString()) + " " + right
	if lipgloss.Width(line) > width {
		return lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}

func (m model) modeString() string {
	switch m.mode {
	case ModeStartup:
		return "STARTUP"
	case ModeNormal:
		return "NORMAL"
	case ModeCreating:
		return "CREATE"
	case ModeEditing:
		return "EDIT"
	case ModeMove:
		return "MOVE"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func (m model) helpView() string {
	helpLines := []string{
		"mindterm help",
		"=============",
		"",
		"Navigation:",
		"  h/j/k/l, arrows   Move between parent, children and siblings",
		"  H/J/K/L           Pan the view",
		"  0                 Center on the root",
		"",
		"Editing:",
		"  Tab               Add a child and edit it",
		"  Enter             Add a sibling and edit it",
		"  e / E             Edit title / description",
		"  c                 Cycle node color",
		"  d                 Delete node and its subtree",
		"  space             Collapse or expand",
		"  C / X             Collapse all / expand all",
		"  y / p             Copy title / paste clipboard as a child",
		"  u / U             Undo / redo",
		"",
		"Layout:",
		"  m                 Move node (hjkl, Enter to place, Esc to cancel)",
		"  r                 Reset manual positions",
		"  1 / 2 / 3         Comfortable / compact / dense spacing",
		"  i                 Toggle the details pane",
		"",
		"Files:",
		"  s                 Export JSON",
		"  S / V / T         Export PNG / SVG / text outline",
		"  A                 Export everything to a directory",
		"  o                 Import JSON",
		"  n                 New map",
		"  q                 Quit",
		"",
		"Press ? or Esc to close",
	}
	return strings.Join(helpLines, "\n")
}

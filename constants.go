package main

type Mode int

const (
	ModeStartup Mode = iota
	ModeNormal
	ModeCreating
	ModeEditing
	ModeMove
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpExportJSON FileOperation = iota
	FileOpExportPNG
	FileOpExportSVG
	FileOpExportTXT
	FileOpExportAll
	FileOpImport
)

type ConfirmAction int

const (
	ConfirmDeleteNode ConfirmAction = iota
	ConfirmQuit
	ConfirmNewMap
	ConfirmResetLayout
	ConfirmImport
)

type EditField int

const (
	EditTitle EditField = iota
	EditDescription
)

type ActionType int

const (
	ActionAddNode ActionType = iota
	ActionEditNode
	ActionDeleteSubtree
	ActionMoveNode
)

func (t ActionType) String() string {
	switch t {
	case ActionAddNode:
		return "add-node"
	case ActionEditNode:
		return "edit-node"
	case ActionDeleteSubtree:
		return "delete-subtree"
	case ActionMoveNode:
		return "move-node"
	default:
		return "unknown"
	}
}

const (
	payloadVersion   = 1
	defaultNodeTitle = "New node"
	defaultNodeColor = "#ffffff"
	defaultBgColor   = "#F6F7FB"
	idPrefix         = "n_"
)

// Store keys for the autosaved session.
const (
	keyLastMap       = "mm:lastMap"
	keyLastPositions = "mm:lastPositions"
	keyLastViewport  = "mm:lastViewport"
)

// nodePalette is cycled by the color key in the terminal host.
var nodePalette = []string{
	"#ffffff",
	"#fde68a",
	"#bbf7d0",
	"#bfdbfe",
	"#fbcfe8",
	"#fecaca",
	"#ddd6fe",
	"#e5e7eb",
}

package state

type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Tool selects how a new stroke is drawn.
type Tool string

const (
	ToolPencil Tool = "pencil"
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
)

// Valid reports whether t is one of the known tools.
func (t Tool) Valid() bool {
	switch t {
	case ToolPencil, ToolPen, ToolEraser:
		return true
	}
	return false
}

// Color is a named colour. Any string is accepted; the constants are the
// palette offered by the toolbar.
type Color string

const (
	ColorWhite  Color = "white"
	ColorBlack  Color = "black"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
)

// Palette is the ordered set of colours shown in the toolbar.
var Palette = []Color{ColorWhite, ColorBlack, ColorRed, ColorGreen, ColorBlue, ColorYellow}

const (
	PencilWidth float32 = 2
	PenWidth    float32 = 4
)

// DrawingPath is one stroke. Its style is fixed when the stroke starts.
type DrawingPath struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	Tool   Tool    `json:"tool"`
	Color  Color   `json:"color"`
	Width  float32 `json:"width"`
}

func (p DrawingPath) clone() DrawingPath {
	p.Points = append([]Point(nil), p.Points...)
	return p
}

// ChangeType names the mutation that triggered an OnChange callback.
type ChangeType string

const (
	ChangeStroke ChangeType = "stroke"
	ChangeCommit ChangeType = "commit"
	ChangeCancel ChangeType = "cancel"
	ChangeUndo   ChangeType = "undo"
	ChangeRedo   ChangeType = "redo"
	ChangeTool   ChangeType = "tool"
	ChangeColor  ChangeType = "color"
	ChangeEraser ChangeType = "eraser"
	ChangeView   ChangeType = "view"
)

type Change struct {
	Type ChangeType
	// PathID is set for stroke, commit, cancel, undo and redo changes.
	PathID string
}

// Snapshot is a detached copy of a DrawingState, safe to hand to other
// goroutines.
type Snapshot struct {
	Tool        Tool          `json:"tool"`
	Color       Color         `json:"color"`
	EraserSize  float32       `json:"eraser_size"`
	Scale       float32       `json:"scale"`
	Offset      Point         `json:"offset"`
	Paths       []DrawingPath `json:"paths"`
	CurrentPath *DrawingPath  `json:"current_path,omitempty"`
	CanUndo     bool          `json:"can_undo"`
	CanRedo     bool          `json:"can_redo"`
}

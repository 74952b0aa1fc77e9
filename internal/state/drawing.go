package state

import (
	"github.com/sirupsen/logrus"
)

// Settings are the initial selections of a new drawing session.
type Settings struct {
	Tool       Tool
	Color      Color
	EraserSize float32
	Scale      float32
}

func DefaultSettings() Settings {
	return Settings{
		Tool:       ToolPencil,
		Color:      ColorWhite,
		EraserSize: 20,
		Scale:      1,
	}
}

// DrawingState owns everything mutable about one drawing session: the tool
// and colour selection, the view transform, the committed strokes and the
// redo stack.
//
// It is not safe for concurrent use. All calls are expected to come from the
// UI goroutine; other goroutines read a Snapshot instead.
type DrawingState struct {
	currentTool  Tool
	currentColor Color
	eraserSize   float32
	scale        float32
	offset       Point

	paths       []DrawingPath
	redoPaths   []DrawingPath
	currentPath *DrawingPath

	// OnChange, when set, is called after every mutation that changed state.
	OnChange func(Change)
}

func NewDrawingState() *DrawingState {
	return New(DefaultSettings())
}

func New(s Settings) *DrawingState {
	return &DrawingState{
		currentTool:  s.Tool,
		currentColor: s.Color,
		eraserSize:   s.EraserSize,
		scale:        s.Scale,
	}
}

func (d *DrawingState) notify(t ChangeType, pathID string) {
	if d.OnChange != nil {
		d.OnChange(Change{Type: t, PathID: pathID})
	}
}

// widthFor returns the stroke width the current tool draws with.
func (d *DrawingState) widthFor(t Tool) float32 {
	switch t {
	case ToolPencil:
		return PencilWidth
	case ToolPen:
		return PenWidth
	default:
		return d.eraserSize
	}
}

// StartNewPath begins a stroke at p. An unfinished stroke is dropped.
func (d *DrawingState) StartNewPath(p Point) {
	if d.currentPath != nil {
		logrus.WithField("path_id", d.currentPath.ID).Debug("Discarding unfinished stroke")
	}
	d.currentPath = &DrawingPath{
		ID:     newPathID(),
		Points: []Point{p},
		Tool:   d.currentTool,
		Color:  d.currentColor,
		Width:  d.widthFor(d.currentTool),
	}
	d.notify(ChangeStroke, d.currentPath.ID)
}

func (d *DrawingState) AddPointToCurrentPath(p Point) {
	if d.currentPath == nil {
		return
	}
	d.currentPath.Points = append(d.currentPath.Points, p)
	d.notify(ChangeStroke, d.currentPath.ID)
}

// FinishCurrentPath commits the active stroke and invalidates redo history.
func (d *DrawingState) FinishCurrentPath() {
	if d.currentPath == nil {
		return
	}
	path := *d.currentPath
	d.paths = append(d.paths, path)
	d.redoPaths = nil
	d.currentPath = nil
	logrus.WithFields(logrus.Fields{
		"path_id": path.ID,
		"tool":    path.Tool,
		"points":  len(path.Points),
	}).Debug("Stroke committed")
	d.notify(ChangeCommit, path.ID)
}

// CancelCurrentPath drops the active stroke without committing it.
func (d *DrawingState) CancelCurrentPath() {
	if d.currentPath == nil {
		return
	}
	id := d.currentPath.ID
	d.currentPath = nil
	d.notify(ChangeCancel, id)
}

func (d *DrawingState) SetTool(t Tool) {
	d.currentTool = t
	d.notify(ChangeTool, "")
}

func (d *DrawingState) SetColor(c Color) {
	d.currentColor = c
	d.notify(ChangeColor, "")
}

// SetEraserSize only affects eraser strokes started afterwards.
func (d *DrawingState) SetEraserSize(size float32) {
	d.eraserSize = size
	d.notify(ChangeEraser, "")
}

func (d *DrawingState) Undo() {
	if !d.CanUndo() {
		return
	}
	last := len(d.paths) - 1
	path := d.paths[last]
	d.paths = d.paths[:last]
	d.redoPaths = append(d.redoPaths, path)
	logrus.WithField("path_id", path.ID).Debug("Undo")
	d.notify(ChangeUndo, path.ID)
}

func (d *DrawingState) Redo() {
	if !d.CanRedo() {
		return
	}
	last := len(d.redoPaths) - 1
	path := d.redoPaths[last]
	d.redoPaths = d.redoPaths[:last]
	d.paths = append(d.paths, path)
	logrus.WithField("path_id", path.ID).Debug("Redo")
	d.notify(ChangeRedo, path.ID)
}

func (d *DrawingState) UpdateScale(v float32) {
	d.scale = v
	d.notify(ChangeView, "")
}

func (d *DrawingState) UpdateOffset(x, y float32) {
	d.offset = Point{X: x, Y: y}
	d.notify(ChangeView, "")
}

func (d *DrawingState) CanUndo() bool { return len(d.paths) > 0 }
func (d *DrawingState) CanRedo() bool { return len(d.redoPaths) > 0 }

func (d *DrawingState) CurrentTool() Tool   { return d.currentTool }
func (d *DrawingState) CurrentColor() Color { return d.currentColor }
func (d *DrawingState) EraserSize() float32 { return d.eraserSize }
func (d *DrawingState) Scale() float32      { return d.scale }
func (d *DrawingState) Offset() Point       { return d.offset }

// Paths returns the committed strokes, oldest first. The returned slice is
// owned by the caller; the point slices inside it must not be modified.
func (d *DrawingState) Paths() []DrawingPath {
	return append([]DrawingPath(nil), d.paths...)
}

// RedoPaths returns the undone strokes, most recently undone last.
func (d *DrawingState) RedoPaths() []DrawingPath {
	return append([]DrawingPath(nil), d.redoPaths...)
}

// CurrentPath returns a copy of the stroke being drawn, if any.
func (d *DrawingState) CurrentPath() (DrawingPath, bool) {
	if d.currentPath == nil {
		return DrawingPath{}, false
	}
	return d.currentPath.clone(), true
}

// Snapshot deep-copies the readable state.
func (d *DrawingState) Snapshot() Snapshot {
	s := Snapshot{
		Tool:       d.currentTool,
		Color:      d.currentColor,
		EraserSize: d.eraserSize,
		Scale:      d.scale,
		Offset:     d.offset,
		Paths:      make([]DrawingPath, 0, len(d.paths)),
		CanUndo:    d.CanUndo(),
		CanRedo:    d.CanRedo(),
	}
	for _, p := range d.paths {
		s.Paths = append(s.Paths, p.clone())
	}
	if d.currentPath != nil {
		cp := d.currentPath.clone()
		s.CurrentPath = &cp
	}
	return s
}

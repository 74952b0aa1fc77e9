package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"LocalBoard/internal/state"
)

// BoardWidget renders a DrawingState and turns pointer input into drawing
// operations. It reads the state on every refresh and mutates it only through
// the DrawingState methods.
type BoardWidget struct {
	widget.BaseWidget
	state      *state.DrawingState
	background color.Color
	drawing    bool

	// Right-button panning. The driver sends no drag events for the
	// secondary button, so the pan follows MouseMoved.
	panning bool
	panFrom fyne.Position

	strokeOnly bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(s *state.DrawingState, background color.Color) *BoardWidget {
	b := &BoardWidget{state: s, background: background}
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	switch e.Button {
	case desktop.MouseButtonPrimary:
		b.drawing = true
		b.state.StartNewPath(viewportOf(b.state).toCanvas(e.Position))
	case desktop.MouseButtonSecondary:
		b.panning = true
		b.panFrom = e.Position
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	switch e.Button {
	case desktop.MouseButtonPrimary:
		if b.drawing {
			b.drawing = false
			b.state.FinishCurrentPath()
		}
	case desktop.MouseButtonSecondary:
		b.panning = false
	}
}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	if !b.panning {
		return
	}
	dx, dy := e.Position.X-b.panFrom.X, e.Position.Y-b.panFrom.Y
	b.panFrom = e.Position
	off := b.state.Offset()
	b.state.UpdateOffset(off.X+dx, off.Y+dy)
}

func (b *BoardWidget) MouseOut() {
	b.panning = false
}

// Dragged extends the stroke while drawing and pans the view otherwise
// (middle-button drags).
func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.drawing {
		b.state.AddPointToCurrentPath(viewportOf(b.state).toCanvas(e.Position))
		return
	}
	off := b.state.Offset()
	b.state.UpdateOffset(off.X+e.Dragged.DX, off.Y+e.Dragged.DY)
}

func (b *BoardWidget) DragEnd() {
	if b.drawing {
		b.drawing = false
		b.state.FinishCurrentPath()
	}
}

// Scrolled zooms around the pointer.
func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	factor := zoomStep
	if e.Scrolled.DY < 0 {
		factor = 1 / zoomStep
	} else if e.Scrolled.DY == 0 {
		return
	}
	v := viewportOf(b.state).zoomAt(e.Position, factor)
	b.state.UpdateScale(v.scale)
	b.state.UpdateOffset(v.offset.X, v.offset.Y)
}

// CancelStroke drops the stroke being drawn.
func (b *BoardWidget) CancelStroke() {
	b.drawing = false
	b.state.CancelCurrentPath()
}

// ResetView restores the default zoom and pan.
func (b *BoardWidget) ResetView() {
	b.state.UpdateScale(1)
	b.state.UpdateOffset(0, 0)
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}

// RefreshStroke redraws only the stroke in progress. Committed strokes and
// the view must be unchanged since the last Refresh.
func (b *BoardWidget) RefreshStroke() {
	b.strokeOnly = true
	b.Refresh()
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b, background: canvas.NewRectangle(b.background)}
	r.rebuild()
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	committed  []fyne.CanvasObject
	objects    []fyne.CanvasObject
}

func (r *boardWidgetRenderer) strokeColor(p state.DrawingPath) color.Color {
	if p.Tool == state.ToolEraser {
		return r.board.background
	}
	return toColor(p.Color, color.Black)
}

func (r *boardWidgetRenderer) appendPath(objects []fyne.CanvasObject, v viewport, p state.DrawingPath) []fyne.CanvasObject {
	c := r.strokeColor(p)
	width := p.Width * v.scale
	if len(p.Points) == 1 {
		dot := canvas.NewCircle(c)
		center := v.toScreen(p.Points[0])
		dot.Move(fyne.NewPos(center.X-width/2, center.Y-width/2))
		dot.Resize(fyne.NewSize(width, width))
		return append(objects, dot)
	}
	for i := 1; i < len(p.Points); i++ {
		segment := canvas.NewLine(c)
		segment.StrokeWidth = width
		segment.Position1 = v.toScreen(p.Points[i-1])
		segment.Position2 = v.toScreen(p.Points[i])
		objects = append(objects, segment)
	}
	return objects
}

func (r *boardWidgetRenderer) rebuild() {
	v := viewportOf(r.board.state)
	committed := []fyne.CanvasObject{r.background}
	for _, p := range r.board.state.Paths() {
		committed = r.appendPath(committed, v, p)
	}
	r.committed = committed
	r.rebuildStroke()
}

// rebuildStroke reuses the committed objects and redraws the current stroke.
func (r *boardWidgetRenderer) rebuildStroke() {
	objects := r.committed[:len(r.committed):len(r.committed)]
	if p, ok := r.board.state.CurrentPath(); ok {
		objects = r.appendPath(objects, viewportOf(r.board.state), p)
	}
	r.objects = objects
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *boardWidgetRenderer) Refresh() {
	r.background.FillColor = r.board.background
	if r.board.strokeOnly {
		r.rebuildStroke()
	} else {
		r.rebuild()
	}
	r.board.strokeOnly = false
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardWidgetRenderer) Destroy() {}

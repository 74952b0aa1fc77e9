package ui

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalBoard/internal/config"
	"LocalBoard/internal/state"
)

func press(b *BoardWidget, x, y float32, button desktop.MouseButton) {
	b.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: button})
}

func release(b *BoardWidget, x, y float32, button desktop.MouseButton) {
	b.MouseUp(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: button})
}

func drag(b *BoardWidget, x, y, dx, dy float32) {
	b.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Dragged: fyne.NewDelta(dx, dy)})
}

func TestBoardStroke(t *testing.T) {
	test.NewTempApp(t)
	d := state.NewDrawingState()
	d.UpdateScale(2)
	d.UpdateOffset(10, 10)
	b := NewBoardWidget(d, color.Black)

	press(b, 10, 10, desktop.MouseButtonPrimary)
	drag(b, 30, 50, 20, 40)
	release(b, 30, 50, desktop.MouseButtonPrimary)

	paths := d.Paths()
	require.Len(t, paths, 1)
	assert.Equal(t, []state.Point{{X: 0, Y: 0}, {X: 10, Y: 20}}, paths[0].Points)
	assert.Equal(t, state.PencilWidth, paths[0].Width)
}

func move(b *BoardWidget, x, y float32) {
	b.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}})
}

func TestBoardSecondaryButtonPans(t *testing.T) {
	test.NewTempApp(t)
	d := state.NewDrawingState()
	b := NewBoardWidget(d, color.Black)

	press(b, 10, 10, desktop.MouseButtonSecondary)
	move(b, 15, 7)
	move(b, 25, 4)
	release(b, 25, 4, desktop.MouseButtonSecondary)
	move(b, 100, 100)

	assert.Equal(t, state.Point{X: 15, Y: -6}, d.Offset())
	assert.Empty(t, d.Paths())
	_, ok := d.CurrentPath()
	assert.False(t, ok)
}

func TestBoardMouseOutStopsPan(t *testing.T) {
	test.NewTempApp(t)
	d := state.NewDrawingState()
	b := NewBoardWidget(d, color.Black)

	press(b, 0, 0, desktop.MouseButtonSecondary)
	b.MouseOut()
	move(b, 50, 50)

	assert.Equal(t, state.Point{}, d.Offset())
}

func TestBoardMouseMoveWithoutButtonIgnored(t *testing.T) {
	test.NewTempApp(t)
	d := state.NewDrawingState()
	b := NewBoardWidget(d, color.Black)

	move(b, 5, 5)
	move(b, 50, 50)

	assert.Equal(t, state.Point{}, d.Offset())
}

func TestBoardMiddleDragPans(t *testing.T) {
	test.NewTempApp(t)
	d := state.NewDrawingState()
	b := NewBoardWidget(d, color.Black)

	press(b, 50, 50, desktop.MouseButtonTertiary)
	drag(b, 55, 47, 5, -3)
	drag(b, 60, 44, 5, -3)
	release(b, 60, 44, desktop.MouseButtonTertiary)

	assert.Equal(t, state.Point{X: 10, Y: -6}, d.Offset())
	assert.Empty(t, d.Paths())
}

func TestBoardDragEndFinishesStroke(t *testing.T) {
	test.NewTempApp(t)
	d := state.NewDrawingState()
	b := NewBoardWidget(d, color.Black)

	press(b, 0, 0, desktop.MouseButtonPrimary)
	drag(b, 5, 5, 5, 5)
	b.DragEnd()

	assert.Len(t, d.Paths(), 1)
}

func TestBoardCancelStroke(t *testing.T) {
	test.NewTempApp(t)
	d := state.NewDrawingState()
	b := NewBoardWidget(d, color.Black)

	press(b, 0, 0, desktop.MouseButtonPrimary)
	b.CancelStroke()
	release(b, 0, 0, desktop.MouseButtonPrimary)

	assert.Empty(t, d.Paths())
}

func TestBoardScrollZooms(t *testing.T) {
	test.NewTempApp(t)
	d := state.NewDrawingState()
	b := NewBoardWidget(d, color.Black)

	b.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 100)}, Scrolled: fyne.NewDelta(0, 1)})
	assert.InDelta(t, zoomStep, d.Scale(), 1e-6)

	b.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -1)})
	assert.InDelta(t, 1, d.Scale(), 1e-6)

	b.ResetView()
	assert.Equal(t, float32(1), d.Scale())
	assert.Equal(t, state.Point{}, d.Offset())
}

func TestRendererObjects(t *testing.T) {
	test.NewTempApp(t)
	d := state.NewDrawingState()
	b := NewBoardWidget(d, color.Black)

	d.StartNewPath(state.Point{})
	d.AddPointToCurrentPath(state.Point{X: 1})
	d.AddPointToCurrentPath(state.Point{X: 2})
	d.FinishCurrentPath()
	d.StartNewPath(state.Point{X: 5})

	r := b.CreateRenderer()
	// background, two segments, one dot for the in-progress stroke
	assert.Len(t, r.Objects(), 4)

	d.Undo()
	d.CancelCurrentPath()
	r.Refresh()
	assert.Len(t, r.Objects(), 1)
}

func TestRefreshStrokeKeepsCommittedObjects(t *testing.T) {
	test.NewTempApp(t)
	d := state.NewDrawingState()
	b := NewBoardWidget(d, color.Black)
	d.StartNewPath(state.Point{})
	d.AddPointToCurrentPath(state.Point{X: 1})
	d.FinishCurrentPath()

	r := b.CreateRenderer().(*boardWidgetRenderer)
	committed := r.Objects()[1]

	d.StartNewPath(state.Point{X: 5})
	d.AddPointToCurrentPath(state.Point{X: 6})
	b.strokeOnly = true
	r.Refresh()

	objects := r.Objects()
	require.Len(t, objects, 3)
	assert.Same(t, committed, objects[1])
	assert.False(t, b.strokeOnly)

	d.FinishCurrentPath()
	r.Refresh()
	assert.Len(t, r.Objects(), 3)
	assert.NotSame(t, committed, r.Objects()[1])
}

func TestWorkspaceSyncsToolbar(t *testing.T) {
	test.NewTempApp(t)
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()
	d := cfg.NewDrawingState()
	var changes []state.ChangeType
	w := newWorkspace(cfg, d, func(c state.Change) { changes = append(changes, c.Type) })

	assert.True(t, w.toolbar.undo.Disabled())
	assert.True(t, w.toolbar.redo.Disabled())

	press(w.board, 0, 0, desktop.MouseButtonPrimary)
	drag(w.board, 4, 4, 4, 4)
	release(w.board, 4, 4, desktop.MouseButtonPrimary)
	assert.False(t, w.toolbar.undo.Disabled())
	assert.True(t, w.toolbar.redo.Disabled())

	test.Tap(w.toolbar.undo)
	assert.True(t, w.toolbar.undo.Disabled())
	assert.False(t, w.toolbar.redo.Disabled())

	test.Tap(w.toolbar.redo)
	assert.Len(t, d.Paths(), 1)
	assert.Contains(t, changes, state.ChangeUndo)
	assert.Contains(t, changes, state.ChangeRedo)

	w.toolbar.tools.SetSelected(string(state.ToolEraser))
	assert.Equal(t, state.ToolEraser, d.CurrentTool())

	d.SetTool(state.ToolPen)
	assert.Equal(t, string(state.ToolPen), w.toolbar.tools.Selected)
}

func TestToolbarFollowsEraserAndColor(t *testing.T) {
	test.NewTempApp(t)
	cfg := config.Default()
	d := cfg.NewDrawingState()
	w := newWorkspace(cfg, d, nil)

	d.SetEraserSize(42)
	assert.Equal(t, float64(42), w.toolbar.eraser.Value)

	d.SetEraserSize(250)
	assert.Equal(t, float64(250), w.toolbar.eraser.Value)
	assert.Equal(t, float32(250), d.EraserSize(), "out of range sizes are not clamped by the slider")

	d.SetColor(state.ColorRed)
	for _, sw := range w.toolbar.swatches {
		assert.Equal(t, sw.name == state.ColorRed, sw.selected, "swatch %s", sw.name)
	}

	test.Tap(w.toolbar.swatches[0])
	assert.Equal(t, state.Palette[0], d.CurrentColor())
	assert.True(t, w.toolbar.swatches[0].selected)
}

func TestWorkspaceStrokeRefreshesOnlyStroke(t *testing.T) {
	test.NewTempApp(t)
	cfg := config.Default()
	d := cfg.NewDrawingState()
	var changes []state.ChangeType
	w := newWorkspace(cfg, d, func(c state.Change) { changes = append(changes, c.Type) })

	press(w.board, 0, 0, desktop.MouseButtonPrimary)
	drag(w.board, 3, 3, 3, 3)

	assert.True(t, w.toolbar.undo.Disabled(), "stroke changes leave the toolbar alone")
	assert.Equal(t, []state.ChangeType{state.ChangeStroke, state.ChangeStroke}, changes)

	release(w.board, 3, 3, desktop.MouseButtonPrimary)
	assert.False(t, w.toolbar.undo.Disabled())
}

func TestWorkspaceExport(t *testing.T) {
	test.NewTempApp(t)
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()
	d := cfg.NewDrawingState()
	w := newWorkspace(cfg, d, nil)

	_, err := w.exportPDF()
	assert.Error(t, err)

	d.StartNewPath(state.Point{})
	d.FinishCurrentPath()
	path, err := w.exportPDF()
	require.NoError(t, err)
	assert.Equal(t, cfg.Export.Dir, filepath.Dir(path))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

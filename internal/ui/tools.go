package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"LocalBoard/internal/state"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	name     state.Color
	color    color.Color
	border   *canvas.Rectangle
	selected bool
	OnTapped func(state.Color)
}

func newColorSwatch(name state.Color, tapped func(state.Color)) *colorSwatch {
	s := &colorSwatch{name: name, color: toColor(name, color.Black), OnTapped: tapped}
	s.border = canvas.NewRectangle(color.Transparent)
	s.styleBorder()
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) styleBorder() {
	if s.selected {
		s.border.StrokeColor = theme.Color(theme.ColorNamePrimary)
		s.border.StrokeWidth = 3
	} else {
		s.border.StrokeColor = color.Gray{Y: 150}
		s.border.StrokeWidth = 1
	}
}

// SetSelected marks the swatch as the active colour.
func (s *colorSwatch) SetSelected(selected bool) {
	if s.selected == selected {
		return
	}
	s.selected = selected
	s.styleBorder()
	s.border.Refresh()
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	return widget.NewSimpleRenderer(container.NewStack(rect, s.border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.name)
	}
}

var toolNames = []string{string(state.ToolPencil), string(state.ToolPen), string(state.ToolEraser)}

// Toolbar holds the controls that drive a DrawingState's selection and
// history. Update must be called after the state changes.
type Toolbar struct {
	state    *state.DrawingState
	tools    *widget.RadioGroup
	swatches []*colorSwatch
	eraser   *widget.Slider
	undo     *widget.Button
	redo     *widget.Button
	export   *widget.Button

	// OnExport is called by the export button.
	OnExport func()
}

func NewToolbar(s *state.DrawingState) *Toolbar {
	t := &Toolbar{state: s}

	t.tools = widget.NewRadioGroup(toolNames, func(selected string) {
		if selected != "" && state.Tool(selected) != t.state.CurrentTool() {
			t.state.SetTool(state.Tool(selected))
		}
	})
	t.tools.Horizontal = true
	t.tools.Required = true

	t.eraser = widget.NewSlider(1, 100)
	t.eraser.SetValue(float64(s.EraserSize()))
	t.eraser.OnChanged = func(v float64) {
		if float32(v) != t.state.EraserSize() {
			t.state.SetEraserSize(float32(v))
		}
	}

	for _, c := range state.Palette {
		t.swatches = append(t.swatches, newColorSwatch(c, t.state.SetColor))
	}

	t.undo = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), t.state.Undo)
	t.redo = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), t.state.Redo)
	t.export = widget.NewButtonWithIcon("PDF", theme.DocumentSaveIcon(), func() {
		if t.OnExport != nil {
			t.OnExport()
		}
	})

	t.Update()
	return t
}

// Update syncs the controls with the state.
func (t *Toolbar) Update() {
	if t.tools.Selected != string(t.state.CurrentTool()) {
		t.tools.SetSelected(string(t.state.CurrentTool()))
	}
	// Assigned directly: SetValue would clamp to the slider range and
	// write the clamped size back through OnChanged.
	if size := float64(t.state.EraserSize()); t.eraser.Value != size {
		t.eraser.Value = size
		t.eraser.Refresh()
	}
	for _, sw := range t.swatches {
		sw.SetSelected(sw.name == t.state.CurrentColor())
	}
	setEnabled(t.undo, t.state.CanUndo())
	setEnabled(t.redo, t.state.CanRedo())
	setEnabled(t.export, t.state.CanUndo())
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (t *Toolbar) CanvasObject() fyne.CanvasObject {
	colors := container.NewHBox()
	for _, sw := range t.swatches {
		colors.Add(sw)
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.eraser)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		t.tools,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colors,
		widget.NewSeparator(),
		widget.NewLabel("Eraser:"),
		sliderContainer,
		widget.NewSeparator(),
		t.undo,
		t.redo,
		layout.NewSpacer(),
		t.export,
	)
}

package ui

import (
	"fyne.io/fyne/v2"

	"LocalBoard/internal/state"
)

const (
	minScale float32 = 0.1
	maxScale float32 = 10
	zoomStep float32 = 1.2
)

// viewport maps canvas coordinates to widget coordinates:
// screen = canvas*scale + offset.
type viewport struct {
	scale  float32
	offset state.Point
}

func viewportOf(d *state.DrawingState) viewport {
	s := d.Scale()
	if s == 0 {
		s = 1
	}
	return viewport{scale: s, offset: d.Offset()}
}

func (v viewport) toCanvas(p fyne.Position) state.Point {
	return state.Point{
		X: (p.X - v.offset.X) / v.scale,
		Y: (p.Y - v.offset.Y) / v.scale,
	}
}

func (v viewport) toScreen(p state.Point) fyne.Position {
	return fyne.NewPos(p.X*v.scale+v.offset.X, p.Y*v.scale+v.offset.Y)
}

// zoomAt returns the viewport scaled by factor, keeping the canvas point under
// anchor fixed on screen.
func (v viewport) zoomAt(anchor fyne.Position, factor float32) viewport {
	scale := v.scale * factor
	if scale < minScale {
		scale = minScale
	}
	if scale > maxScale {
		scale = maxScale
	}
	c := v.toCanvas(anchor)
	return viewport{
		scale:  scale,
		offset: state.Point{X: anchor.X - c.X*scale, Y: anchor.Y - c.Y*scale},
	}
}

package export

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"

	"LocalBoard/internal/state"
)

var ErrNoPaths = errors.New("nothing to export")

// Options control how canvas units map onto the page.
type Options struct {
	// UnitsPerMM is how many canvas units make one millimetre on paper.
	UnitsPerMM float64
	// Background is the page fill and the colour eraser strokes paint with.
	Background state.RGB
}

func DefaultOptions() Options {
	return Options{UnitsPerMM: 3, Background: state.RGB{R: 255, G: 255, B: 255}}
}

// colorFor maps a path colour onto the page. White ink on a white page would
// vanish, so it prints black.
func colorFor(p state.DrawingPath, bg state.RGB) state.RGB {
	if p.Tool == state.ToolEraser {
		return bg
	}
	c, ok := p.Color.RGB()
	if !ok {
		return state.RGB{}
	}
	if c == bg {
		return state.RGB{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B}
	}
	return c
}

// PDF renders the committed strokes of snap as an A4 page onto w.
func PDF(w io.Writer, snap state.Snapshot, opts Options) error {
	if len(snap.Paths) == 0 {
		return ErrNoPaths
	}
	if opts.UnitsPerMM <= 0 {
		opts.UnitsPerMM = DefaultOptions().UnitsPerMM
	}

	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()
	pw, ph := p.GetPageSize()
	bg := opts.Background
	p.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	p.Rect(0, 0, pw, ph, "F")
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	scale := 1 / opts.UnitsPerMM
	for _, path := range snap.Paths {
		c := colorFor(path, opts.Background)
		p.SetDrawColor(int(c.R), int(c.G), int(c.B))
		p.SetFillColor(int(c.R), int(c.G), int(c.B))
		width := float64(path.Width) * scale
		p.SetLineWidth(width)

		if len(path.Points) == 1 {
			pt := path.Points[0]
			p.Circle(float64(pt.X)*scale, float64(pt.Y)*scale, width/2, "F")
			continue
		}
		for i := 1; i < len(path.Points); i++ {
			p.Line(
				float64(path.Points[i-1].X)*scale, float64(path.Points[i-1].Y)*scale,
				float64(path.Points[i].X)*scale, float64(path.Points[i].Y)*scale,
			)
		}
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	logrus.WithField("paths", len(snap.Paths)).Info("Exported PDF")
	return nil
}

// PDFFile writes the export to path.
func PDFFile(path string, snap state.Snapshot, opts Options) error {
	if len(snap.Paths) == 0 {
		return ErrNoPaths
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := PDF(f, snap, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

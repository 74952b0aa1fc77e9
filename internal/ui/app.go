package ui

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"LocalBoard/internal/config"
	"LocalBoard/internal/export"
	"LocalBoard/internal/state"
)

var defaultBackground = color.NRGBA{R: 30, G: 30, B: 30, A: 255}

// workspace is the board, its toolbar and status line bound to one
// DrawingState.
type workspace struct {
	cfg     config.Config
	state   *state.DrawingState
	board   *BoardWidget
	toolbar *Toolbar
	status  *widget.Label
}

// newWorkspace takes over s.OnChange; onChange, if set, is called after the
// widgets have been refreshed.
func newWorkspace(cfg config.Config, s *state.DrawingState, onChange func(state.Change)) *workspace {
	var bg color.Color = defaultBackground
	if rgb, err := state.ParseHex(cfg.Drawing.Background); err != nil {
		logrus.WithError(err).Warn("Using default background")
	} else {
		bg = nrgba(rgb)
	}

	w := &workspace{
		cfg:     cfg,
		state:   s,
		board:   NewBoardWidget(s, bg),
		toolbar: NewToolbar(s),
		status:  widget.NewLabel("Ready"),
	}
	w.toolbar.OnExport = func() {
		if path, err := w.exportPDF(); err != nil {
			w.status.SetText(fmt.Sprintf("Export failed: %v", err))
		} else {
			w.status.SetText("Exported " + path)
		}
	}
	s.OnChange = func(c state.Change) {
		if c.Type == state.ChangeStroke {
			w.board.RefreshStroke()
		} else {
			w.board.Refresh()
			w.toolbar.Update()
		}
		if onChange != nil {
			onChange(c)
		}
	}
	return w
}

func (w *workspace) exportPDF() (string, error) {
	name := fmt.Sprintf("board-%s.pdf", time.Now().Format("20060102-150405"))
	path := filepath.Join(w.cfg.Export.Dir, name)
	if err := export.PDFFile(path, w.state.Snapshot(), export.DefaultOptions()); err != nil {
		if !errors.Is(err, export.ErrNoPaths) {
			logrus.WithError(err).Error("PDF export failed")
		}
		return "", err
	}
	return path, nil
}

func (w *workspace) content() fyne.CanvasObject {
	return container.NewBorder(w.toolbar.CanvasObject(), w.status, nil, nil, w.board)
}

// bindKeys installs undo/redo shortcuts, Escape to cancel a stroke and Home
// to reset the view.
func (w *workspace) bindKeys(c fyne.Canvas) {
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { w.state.Undo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		func(fyne.Shortcut) { w.state.Redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { w.state.Redo() })
	c.SetOnTypedKey(func(k *fyne.KeyEvent) {
		switch k.Name {
		case fyne.KeyEscape:
			w.board.CancelStroke()
		case fyne.KeyHome:
			w.board.ResetView()
		}
	})
}

// RunApp opens the board window and blocks until it is closed.
func RunApp(cfg config.Config, s *state.DrawingState, shareLink string, onChange func(state.Change)) {
	myApp := app.New()
	myWindow := myApp.NewWindow(cfg.Window.Title)
	myWindow.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))

	w := newWorkspace(cfg, s, onChange)
	if shareLink != "" {
		w.status.SetText("Live view: " + shareLink)
	}
	w.bindKeys(myWindow.Canvas())

	myWindow.SetContent(w.content())
	myWindow.ShowAndRun()
}

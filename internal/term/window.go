package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keyline/internal/edit/textunit"
)

// Window is a rectangular region on the screen with its own cursor
// position and current style. All coordinates are window-relative.
type Window struct {
	mgr     *Manager
	name    string
	lines   int
	cols    int
	originY int
	originX int
	curY    int
	curX    int
	style   tcell.Style
}

// Name returns the window name.
func (w *Window) Name() string { return w.name }

// Size returns the window dimensions.
func (w *Window) Size() (lines, cols int) { return w.lines, w.cols }

// Move places the window cursor. Out-of-range coordinates are clamped
// to the window edge.
func (w *Window) Move(y, x int) {
	w.curY = clamp(y, 0, w.lines-1)
	w.curX = clamp(x, 0, w.cols-1)
}

// Cursor returns the window cursor position.
func (w *Window) Cursor() (y, x int) { return w.curY, w.curX }

// SetAttr turns a named attribute on or off for subsequent output.
func (w *Window) SetAttr(name string, on bool) error {
	mask, ok := attrs[name]
	if !ok {
		return fmt.Errorf("term: unknown attribute %q", name)
	}
	w.style = w.style.Attributes(w.attrMask(mask, on))
	return nil
}

func (w *Window) attrMask(mask tcell.AttrMask, on bool) tcell.AttrMask {
	_, _, cur := w.style.Decompose()
	if on {
		return cur | mask
	}
	return cur &^ mask
}

// SetColor sets the foreground and background colors by name. An empty
// name leaves that side unchanged; "default" resets it.
func (w *Window) SetColor(fg, bg string) error {
	if fg != "" {
		c, err := lookupColor(fg)
		if err != nil {
			return err
		}
		w.style = w.style.Foreground(c)
	}
	if bg != "" {
		c, err := lookupColor(bg)
		if err != nil {
			return err
		}
		w.style = w.style.Background(c)
	}
	return nil
}

func lookupColor(name string) (tcell.Color, error) {
	if name == "default" {
		return tcell.ColorDefault, nil
	}
	c, ok := tcell.ColorNames[name]
	if !ok {
		return 0, fmt.Errorf("term: unknown color %q", name)
	}
	return c, nil
}

// WriteUnit draws one unit at the cursor and advances by its display
// width. Output past the right edge wraps to the next line; past the
// bottom it is discarded.
func (w *Window) WriteUnit(u textunit.Unit) {
	r := rune(u)
	width := w.mgr.codec.Width(u)
	if width <= 0 {
		width = 1
	}
	if w.curX+width > w.cols {
		w.curY++
		w.curX = 0
	}
	if w.curY >= w.lines {
		return
	}
	w.mgr.screen.SetContent(w.originX+w.curX, w.originY+w.curY, r, nil, w.style)
	w.curX += width
}

// WriteString draws a string unit by unit.
func (w *Window) WriteString(s string) {
	for _, r := range s {
		w.WriteUnit(textunit.Unit(r))
	}
}

// Clear blanks the window with the current style.
func (w *Window) Clear() {
	for y := 0; y < w.lines; y++ {
		for x := 0; x < w.cols; x++ {
			w.mgr.screen.SetContent(w.originX+x, w.originY+y, ' ', nil, w.style)
		}
	}
	w.curY, w.curX = 0, 0
}

// Refresh flushes pending output and places the hardware cursor at
// this window's cursor.
func (w *Window) Refresh() {
	w.mgr.screen.ShowCursor(w.originX+w.curX, w.originY+w.curY)
	w.mgr.screen.Show()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ABOUTME: Zoom and pan transform for the seat map viewer
// ABOUTME: Maps a text canvas through scale and offset into a fixed-size window

package viewport

import (
	"fmt"
	"math"
	"strings"
)

const (
	MinScale  = 0.5
	MaxScale  = 3.0
	ScaleStep = 0.25
)

// Viewport holds the zoom level and pan offset in screen cells. The zero
// value is not at 100%; use New.
type Viewport struct {
	Scale float64
	X, Y  int
}

// New returns a viewport at 100% with no offset
func New() Viewport {
	return Viewport{Scale: 1}
}

// CanZoomIn reports whether another zoom-in step is allowed
func (v Viewport) CanZoomIn() bool { return v.Scale < MaxScale }

// CanZoomOut reports whether another zoom-out step is allowed
func (v Viewport) CanZoomOut() bool { return v.Scale > MinScale }

// CanPan reports whether the view is zoomed in far enough to drag
func (v Viewport) CanPan() bool { return v.Scale > 1 }

// ZoomIn increases the scale by one step, capped at MaxScale
func (v *Viewport) ZoomIn() bool {
	if !v.CanZoomIn() {
		return false
	}
	v.Scale = math.Min(v.Scale+ScaleStep, MaxScale)
	return true
}

// ZoomOut decreases the scale by one step, floored at MinScale. The pan
// offset is kept.
func (v *Viewport) ZoomOut() bool {
	if !v.CanZoomOut() {
		return false
	}
	v.Scale = math.Max(v.Scale-ScaleStep, MinScale)
	return true
}

// Pan moves the view by dx, dy cells. Ignored unless zoomed in.
func (v *Viewport) Pan(dx, dy int) bool {
	if !v.CanPan() {
		return false
	}
	v.X += dx
	v.Y += dy
	return true
}

// Reset restores 100% and centers the view
func (v *Viewport) Reset() {
	*v = New()
}

// Percent returns the zoom level as a rounded percentage
func (v Viewport) Percent() int {
	return int(math.Round(v.Scale * 100))
}

// Label returns the zoom level for display, e.g. "125%"
func (v Viewport) Label() string {
	return fmt.Sprintf("%d%%", v.Percent())
}

// Render samples canvas into a width x height window. The canvas center
// sits at the window center, scaled by Scale and shifted by the offset.
// Cells outside the canvas are blank.
func (v Viewport) Render(canvas []string, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	scale := v.Scale
	if scale <= 0 {
		scale = 1
	}

	rows := make([][]rune, len(canvas))
	srcW := 0
	for i, line := range canvas {
		rows[i] = []rune(line)
		srcW = max(srcW, len(rows[i]))
	}
	srcCX, srcCY := float64(srcW)/2, float64(len(rows))/2
	dstCX, dstCY := float64(width)/2, float64(height)/2

	out := make([]string, height)
	var b strings.Builder
	for y := 0; y < height; y++ {
		b.Reset()
		sy := int(math.Floor((float64(y)+0.5-dstCY-float64(v.Y))/scale + srcCY))
		for x := 0; x < width; x++ {
			sx := int(math.Floor((float64(x)+0.5-dstCX-float64(v.X))/scale + srcCX))
			r := ' '
			if sy >= 0 && sy < len(rows) && sx >= 0 && sx < len(rows[sy]) {
				r = rows[sy][sx]
			}
			b.WriteRune(r)
		}
		out[y] = strings.TrimRight(b.String(), " ")
	}
	return out
}

package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/framereview/annotate"
	"github.com/user/framereview/raster"
	"github.com/user/framereview/tui/styles"
)

// overlayImage rasterizes shapes onto a transparent w x h surface. It is
// both pushed to mpv and sampled for the terminal preview.
func overlayImage(shapes []annotate.Shape, w, h int) *image.RGBA {
	if len(shapes) == 0 || w <= 0 || h <= 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	raster.DrawShapes(img, shapes)
	return img
}

// canvasGrid fits a w x h surface into at most maxCols x maxRows terminal
// cells, keeping the aspect ratio. A cell is taken to be twice as tall as
// it is wide.
func canvasGrid(w, h, maxCols, maxRows int) (cols, rows int) {
	if w <= 0 || h <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	cols = maxCols
	rows = int(float64(cols)*float64(h)/float64(w)/2 + 0.5)
	if rows > maxRows {
		rows = maxRows
		cols = int(float64(rows)*2*float64(w)/float64(h) + 0.5)
	}
	return max(cols, 1), max(rows, 1)
}

// canvasView renders img at cols x rows cells, two pixels rows per cell
// using half blocks. A half cell takes the colour of the first opaque
// pixel in its region, so thin strokes survive downsampling.
func canvasView(img *image.RGBA, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	type cell struct{ top, bottom color.RGBA }
	var b strings.Builder
	for r := 0; r < rows; r++ {
		var run []rune
		var runCell cell
		flush := func() {
			if len(run) > 0 {
				b.WriteString(cellStyle(runCell.top, runCell.bottom).Render(string(run)))
				run = run[:0]
			}
		}
		for c := 0; c < cols; c++ {
			cl := cell{
				top:    sample(img, c, 2*r, cols, 2*rows),
				bottom: sample(img, c, 2*r+1, cols, 2*rows),
			}
			if cl != runCell {
				flush()
				runCell = cl
			}
			run = append(run, glyph(cl.top, cl.bottom))
		}
		flush()
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// sample returns the first opaque pixel of sub-cell (c, r) on a cols x rows
// grid over img, or the zero colour.
func sample(img *image.RGBA, c, r, cols, rows int) color.RGBA {
	if img == nil {
		return color.RGBA{}
	}
	bw, bh := img.Bounds().Dx(), img.Bounds().Dy()
	x0, x1 := c*bw/cols, (c+1)*bw/cols
	y0, y1 := r*bh/rows, (r+1)*bh/rows
	for y := y0; y < max(y1, y0+1) && y < bh; y++ {
		for x := x0; x < max(x1, x0+1) && x < bw; x++ {
			px := img.RGBAAt(x, y)
			if px.A >= 0x80 {
				px.A = 0xff
				return px
			}
		}
	}
	return color.RGBA{}
}

func glyph(top, bottom color.RGBA) rune {
	switch {
	case top.A == 0 && bottom.A == 0:
		return ' '
	case top.A == 0:
		return '▄'
	case top == bottom:
		return '█'
	}
	return '▀'
}

func cellStyle(top, bottom color.RGBA) lipgloss.Style {
	st := lipgloss.NewStyle().Background(styles.CanvasBg)
	switch {
	case top.A == 0 && bottom.A == 0:
		return st
	case top.A == 0:
		return st.Foreground(hex(bottom))
	case bottom.A == 0, top == bottom:
		return st.Foreground(hex(top))
	}
	return st.Foreground(hex(top)).Background(hex(bottom))
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

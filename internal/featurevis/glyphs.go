package featurevis

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// starGlyph is a filled five-pointed star with an optional outline.
type starGlyph struct {
	Outline color.Color
}

// Ratio of inner to outer radius of a regular pentagram.
const starInnerRatio = 0.382

// DrawGlyph implements the draw.GlyphDrawer interface.
func (g starGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	pts := make([]vg.Point, 0, 11)
	for i := 0; i < 10; i++ {
		r := sty.Radius
		if i%2 == 1 {
			r *= starInnerRatio
		}
		theta := math.Pi/2 + float64(i)*math.Pi/5
		pts = append(pts, vg.Point{
			X: pt.X + r*vg.Length(math.Cos(theta)),
			Y: pt.Y + r*vg.Length(math.Sin(theta)),
		})
	}
	c.FillPolygon(sty.Color, pts)
	if g.Outline != nil {
		c.StrokeLines(draw.LineStyle{Color: g.Outline, Width: vg.Points(1)}, append(pts, pts[0]))
	}
}

// crossGlyph is an 'x' drawn with a configurable stroke width.
type crossGlyph struct {
	Width vg.Length
}

// DrawGlyph implements the draw.GlyphDrawer interface.
func (g crossGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	r := sty.Radius * vg.Length(math.Sqrt2/2)
	ls := draw.LineStyle{Color: sty.Color, Width: g.Width}
	c.StrokeLine2(ls, pt.X-r, pt.Y-r, pt.X+r, pt.Y+r)
	c.StrokeLine2(ls, pt.X-r, pt.Y+r, pt.X+r, pt.Y-r)
}

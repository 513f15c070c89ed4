package featurevis

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// arrow is a vector drawn from Tail to Tail+Delta.
type arrow struct {
	Tail  Point2D
	Delta Point2D
	Color color.Color
}

// Tip returns the end of the shaft, where the head is attached.
func (a arrow) Tip() Point2D {
	return a.Tail.Add(a.Delta)
}

// arrowField is a plotter for a set of arrows. Head sizes are in data units
// and the head extends past the tip, so the drawn length is
// |Delta| + HeadLength.
type arrowField struct {
	Arrows     []arrow
	HeadWidth  float64
	HeadLength float64
	Width      vg.Length
}

// head returns the head triangle in data coordinates, or nil for a
// zero-length arrow whose direction is undefined.
func (f *arrowField) head(a arrow) []Point2D {
	n := math.Hypot(a.Delta.X, a.Delta.Y)
	if n == 0 {
		return nil
	}
	dir := a.Delta.Scale(1 / n)
	normal := Point2D{X: -dir.Y, Y: dir.X}
	tip := a.Tip()
	half := f.HeadWidth / 2
	return []Point2D{
		tip.Add(normal.Scale(half)),
		tip.Add(dir.Scale(f.HeadLength)),
		tip.Add(normal.Scale(-half)),
	}
}

// Plot implements the plot.Plotter interface.
func (f *arrowField) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	tr := func(pt Point2D) vg.Point {
		return vg.Point{X: trX(pt.X), Y: trY(pt.Y)}
	}

	for _, a := range f.Arrows {
		shaft := []vg.Point{tr(a.Tail), tr(a.Tip())}
		c.StrokeLines(draw.LineStyle{Color: a.Color, Width: f.Width}, c.ClipLinesXY(shaft)...)

		tri := f.head(a)
		if tri == nil {
			continue
		}
		pts := make([]vg.Point, len(tri))
		for i, pt := range tri {
			pts[i] = tr(pt)
		}
		if clipped := c.ClipPolygonXY(pts); len(clipped) > 0 {
			c.FillPolygon(a.Color, clipped)
		}
	}
}

// DataRange implements the plot.DataRanger interface.
func (f *arrowField) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, a := range f.Arrows {
		pts := append([]Point2D{a.Tail, a.Tip()}, f.head(a)...)
		for _, pt := range pts {
			xmin, xmax = math.Min(xmin, pt.X), math.Max(xmax, pt.X)
			ymin, ymax = math.Min(ymin, pt.Y), math.Max(ymax, pt.Y)
		}
	}
	return xmin, xmax, ymin, ymax
}

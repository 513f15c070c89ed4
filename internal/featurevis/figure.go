package featurevis

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// figure is a 2x2 grid of panels, indexed [row][col].
type figure struct {
	panels [][]*plot.Plot

	// equalAspect marks panels, in reading order, whose axes share one
	// length per data unit.
	equalAspect [4]bool
}

// newFigure returns a figure whose four panels all keep equal aspect.
func newFigure(a, b, c, d *plot.Plot) *figure {
	return &figure{
		panels:      [][]*plot.Plot{{a, b}, {c, d}},
		equalAspect: [4]bool{true, true, true, true},
	}
}

// panel returns the i'th panel in reading order (A=0 .. D=3).
func (f *figure) panel(i int) *plot.Plot {
	return f.panels[i/2][i%2]
}

var figureTiles = draw.Tiles{
	Rows:      2,
	Cols:      2,
	PadX:      vg.Millimeter * 6,
	PadY:      vg.Millimeter * 6,
	PadTop:    vg.Millimeter * 2,
	PadBottom: vg.Millimeter * 2,
	PadLeft:   vg.Millimeter * 2,
	PadRight:  vg.Millimeter * 2,
}

// canvases lays the panels out on dc. Equal-aspect panels are shrunk about
// their tile centre until their data area has the same scale on both axes.
func (f *figure) canvases(dc draw.Canvas) [][]draw.Canvas {
	cs := plot.Align(f.panels, figureTiles, dc)
	for i, equal := range f.equalAspect {
		j, k := i/2, i%2
		if equal && f.panels[j][k] != nil {
			cs[j][k] = fitAspect(f.panels[j][k], cs[j][k])
		}
	}
	return cs
}

// fitAspect trims c about its centre so that p's data area spans the same
// length per unit on x and y. The data area shrinks linearly as the canvas
// is trimmed, at a rate set by where the outermost glyphs sit, so the rate
// is measured with a small trial trim and the final trim solved from it.
func fitAspect(p *plot.Plot, c draw.Canvas) draw.Canvas {
	sx, sy := p.X.Max-p.X.Min, p.Y.Max-p.Y.Min
	if !(sx > 0) || !(sy > 0) {
		return c
	}

	w0, h0 := dataSize(p, c)
	if w0 <= 0 || h0 <= 0 {
		return c
	}
	const trial = 1.0 // pt
	w1, h1 := dataSize(p, trimCanvas(c, trial, trial))
	rateX, rateY := (w0-w1)/(2*trial), (h0-h1)/(2*trial)

	scale := math.Min(w0/sx, h0/sy)
	var dx, dy float64
	if excess := w0 - scale*sx; excess > 0 && rateX > 0 {
		dx = excess / (2 * rateX)
	}
	if excess := h0 - scale*sy; excess > 0 && rateY > 0 {
		dy = excess / (2 * rateY)
	}
	return trimCanvas(c, dx, dy)
}

// dataSize returns the width and height in points of p's data area on c.
func dataSize(p *plot.Plot, c draw.Canvas) (w, h float64) {
	da := p.DataCanvas(c)
	return float64(da.Max.X - da.Min.X), float64(da.Max.Y - da.Min.Y)
}

// trimCanvas removes dx points from the left and right of c and dy from the
// top and bottom.
func trimCanvas(c draw.Canvas, dx, dy float64) draw.Canvas {
	c.Min.X += vg.Length(dx)
	c.Max.X -= vg.Length(dx)
	c.Min.Y += vg.Length(dy)
	c.Max.Y -= vg.Length(dy)
	return c
}

// writePNG draws every panel onto one image and encodes it as PNG.
func (f *figure) writePNG(w io.Writer, width, height vg.Length, dpi int) error {
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
	dc := draw.New(img)

	canvases := f.canvases(dc)
	for j := range f.panels {
		for i := range f.panels[j] {
			if f.panels[j][i] != nil {
				f.panels[j][i].Draw(canvases[j][i])
			}
		}
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// newPanel creates a plot with the shared title and grid styling.
func newPanel(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	return p
}

// addGrid draws grid lines at 30% opacity. Vertical lines are omitted for
// bar charts.
func addGrid(p *plot.Plot, vertical bool) {
	g := plotter.NewGrid()
	g.Horizontal.Color = gridColor
	if vertical {
		g.Vertical.Color = gridColor
	} else {
		g.Vertical.Color = nil
	}
	p.Add(g)
}

// applyWindow fixes both axes to the query window. It must be called after
// every plotter has been added, since Add widens the axes to the data.
func applyWindow(p *plot.Plot, q QueryWindow) {
	p.X.Min, p.X.Max = q.xmin(), q.xmax()
	p.Y.Min, p.Y.Max = q.ymin(), q.ymax()
}

var gridColor = color.NRGBA{A: 77}

// withAlpha returns an opaque colour with the given opacity in [0,1].
func withAlpha(c color.Color, alpha float64) color.NRGBA {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(math.Round(alpha * 255)),
	}
}

// markerRadius converts a marker area in points² to a glyph radius.
func markerRadius(area float64) vg.Length {
	return vg.Points(math.Sqrt(area) / 2)
}

func toXYs(pts []Point2D) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i].X, xys[i].Y = p.X, p.Y
	}
	return xys
}

func newScatter(pts []Point2D, clr color.Color, area float64, shape draw.GlyphDrawer) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(toXYs(pts))
	if err != nil {
		return nil, err
	}
	s.GlyphStyle = draw.GlyphStyle{
		Color:  clr,
		Radius: markerRadius(area),
		Shape:  shape,
	}
	return s, nil
}

func newPolyline(pts []Point2D, clr color.Color, width vg.Length) (*plotter.Line, error) {
	l, err := plotter.NewLine(toXYs(pts))
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = clr
	l.LineStyle.Width = width
	return l, nil
}

// newLabels places text at data coordinates with a common style.
func newLabels(pts []Point2D, labels []string, clr color.Color, size vg.Length, yAlign text.YAlignment) (*plotter.Labels, error) {
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: toXYs(pts), Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Color = clr
		l.TextStyle[i].Font.Size = size
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = yAlign
	}
	return l, nil
}

// addQueryMarker draws the query centre as a heavy black cross.
func addQueryMarker(p *plot.Plot, q QueryWindow, legend string) error {
	s, err := newScatter([]Point2D{q.Center}, color.Black, 200, crossGlyph{Width: vg.Points(3)})
	if err != nil {
		return err
	}
	p.Add(s)
	if legend != "" {
		p.Legend.Add(legend, s)
	}
	return nil
}

// addEgoMarker draws the query centre as a red star.
func addEgoMarker(p *plot.Plot, q QueryWindow, legend string) error {
	s, err := newScatter([]Point2D{q.Center}, paletteEgo, 200, starGlyph{})
	if err != nil {
		return err
	}
	p.Add(s)
	if legend != "" {
		p.Legend.Add(legend, s)
	}
	return nil
}

// circlePoints samples a closed circle as a polyline.
func circlePoints(center Point2D, radius float64, segments int) []Point2D {
	pts := make([]Point2D, segments+1)
	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = Point2D{X: center.X + radius*math.Cos(theta), Y: center.Y + radius*math.Sin(theta)}
	}
	return pts
}

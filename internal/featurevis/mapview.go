package featurevis

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Direction arrow parameters for the centreline panel.
const (
	directionStride = 3
	directionScale  = 5.0
)

// signalLegend lists every state whether or not it occurs in the snapshot.
var signalLegend = []TrafficLightStatus{TrafficLightUnknown, TrafficLightGreen, TrafficLightYellow, TrafficLightRed}

// legendEntry is one row of a fixed legend.
type legendEntry struct {
	Name  string
	Color color.Color
	Area  float64
	Shape draw.GlyphDrawer
}

// signalLegendEntries returns the traffic light legend rows in display order.
func signalLegendEntries() []legendEntry {
	entries := make([]legendEntry, 0, len(signalLegend))
	for _, st := range signalLegend {
		var shape draw.GlyphDrawer = draw.BoxGlyph{}
		if st == TrafficLightUnknown {
			shape = draw.CircleGlyph{}
		}
		entries = append(entries, legendEntry{Name: st.String(), Color: st.Color(), Area: 64, Shape: shape})
	}
	return entries
}

// mapLine is one sampled boundary line of a polygon.
type mapLine struct {
	Polygon int
	Line    int
	Type    PolygonType
	Points  []Point2D
}

// polygonMark is a polygon centre with its route and signal attributes.
type polygonMark struct {
	Polygon int
	Center  Point2D
	Type    PolygonType
	OnRoute bool
	Signal  TrafficLightStatus
}

// routeStyle returns the colour, marker area and shape for the route panel.
func (m polygonMark) routeStyle() (color.Color, float64, draw.GlyphDrawer) {
	if m.OnRoute {
		return paletteOnRoute, 100, draw.BoxGlyph{}
	}
	return m.Type.Color(), 50, draw.CircleGlyph{}
}

// signalStyle returns the colour, marker area and shape for the traffic
// light panel. Only UNKNOWN uses the small circle.
func (m polygonMark) signalStyle() (color.Color, float64, draw.GlyphDrawer) {
	if m.Signal == TrafficLightUnknown {
		return m.Signal.Color(), 30, draw.CircleGlyph{}
	}
	return m.Signal.Color(), 80, draw.BoxGlyph{}
}

// mapScene is everything drawn for one MapSnapshot, in data terms.
type mapScene struct {
	NumPolygons int
	NumSamples  int
	Lines       []mapLine
	Directions  []arrow
	Polygons    []polygonMark
}

// layoutMap selects what each panel draws. The snapshot must already be
// validated.
func layoutMap(s *MapSnapshot) *mapScene {
	sc := &mapScene{NumPolygons: s.NumPolygons(), NumSamples: s.NumSamples()}

	for i := 0; i < s.NumPolygons(); i++ {
		typ := s.PolygonType[i]

		for side := 0; side < BoundaryLines; side++ {
			if pts := s.PointPosition[i][side]; len(pts) > 0 {
				sc.Lines = append(sc.Lines, mapLine{Polygon: i, Line: side, Type: typ, Points: pts})
			}
		}

		// Centreline only; vectors may be shorter than the sample list.
		pts, vecs := s.PointPosition[i][0], s.PointVector[i][0]
		for j := 0; j < len(pts) && j < len(vecs); j += directionStride {
			sc.Directions = append(sc.Directions, arrow{
				Tail:  pts[j],
				Delta: vecs[j].Scale(directionScale),
				Color: withAlpha(typ.Color(), 0.7),
			})
		}

		sc.Polygons = append(sc.Polygons, polygonMark{
			Polygon: i,
			Center:  s.PolygonCenter[i],
			Type:    typ,
			OnRoute: s.OnRoute[i],
			Signal:  s.TrafficLight[i],
		})
	}
	return sc
}

// figure draws the scene's four panels.
func (sc *mapScene) figure(q QueryWindow) (*figure, error) {
	a, err := sc.samplePanel(q)
	if err != nil {
		return nil, fmt.Errorf("sample panel: %w", err)
	}
	b, err := sc.directionPanel(q)
	if err != nil {
		return nil, fmt.Errorf("direction panel: %w", err)
	}
	c, err := sc.routePanel(q)
	if err != nil {
		return nil, fmt.Errorf("route panel: %w", err)
	}
	d, err := sc.signalPanel(q)
	if err != nil {
		return nil, fmt.Errorf("traffic light panel: %w", err)
	}
	tracef("map: m=%d p=%d lines=%d arrows=%d", sc.NumPolygons, sc.NumSamples, len(sc.Lines), len(sc.Directions))
	return newFigure(a, b, c, d), nil
}

func (sc *mapScene) samplePanel(q QueryWindow) (*plot.Plot, error) {
	p := newPanel(fmt.Sprintf("Map Sample Points (M=%d, P=%d)", sc.NumPolygons, sc.NumSamples))
	addGrid(p, true)

	for _, l := range sc.Lines {
		clr := l.Type.Color()
		line, err := newPolyline(l.Points, withAlpha(clr, 0.7), vg.Points(1))
		if err != nil {
			return nil, err
		}
		pts, err := newScatter(l.Points, withAlpha(clr, 0.8), 8, draw.CircleGlyph{})
		if err != nil {
			return nil, err
		}
		p.Add(line, pts)
	}

	circle, err := newPolyline(circlePoints(q.Center, q.Radius, 128), withAlpha(color.Black, 0.5), vg.Points(1))
	if err != nil {
		return nil, err
	}
	circle.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(circle)

	if err := addEgoMarker(p, q, "Ego Position"); err != nil {
		return nil, err
	}
	p.Legend.Top = true

	applyWindow(p, q)
	return p, nil
}

func (sc *mapScene) directionPanel(q QueryWindow) (*plot.Plot, error) {
	p := newPanel("Direction Vectors Visualization")
	addGrid(p, true)

	if len(sc.Directions) > 0 {
		p.Add(&arrowField{Arrows: sc.Directions, HeadWidth: 2, HeadLength: 1, Width: vg.Points(1)})
	}

	if err := addEgoMarker(p, q, ""); err != nil {
		return nil, err
	}

	applyWindow(p, q)
	return p, nil
}

func (sc *mapScene) routePanel(q QueryWindow) (*plot.Plot, error) {
	p := newPanel("Route Planning Information")
	addGrid(p, true)

	for _, m := range sc.Polygons {
		clr, area, shape := m.routeStyle()
		s, err := newScatter([]Point2D{m.Center}, withAlpha(clr, 0.8), area, shape)
		if err != nil {
			return nil, err
		}
		p.Add(s)
	}

	if err := addEgoMarker(p, q, ""); err != nil {
		return nil, err
	}

	applyWindow(p, q)
	return p, nil
}

func (sc *mapScene) signalPanel(q QueryWindow) (*plot.Plot, error) {
	p := newPanel("Traffic Light Status")
	addGrid(p, true)

	for _, m := range sc.Polygons {
		clr, area, shape := m.signalStyle()
		s, err := newScatter([]Point2D{m.Center}, withAlpha(clr, 0.8), area, shape)
		if err != nil {
			return nil, err
		}
		p.Add(s)
	}

	if err := addEgoMarker(p, q, ""); err != nil {
		return nil, err
	}

	for _, e := range signalLegendEntries() {
		thumb, err := newScatter([]Point2D{q.Center}, e.Color, e.Area, e.Shape)
		if err != nil {
			return nil, err
		}
		p.Legend.Add(e.Name, thumb)
	}
	p.Legend.Top = true

	applyWindow(p, q)
	return p, nil
}

// MapRenderer draws MapSnapshots into an Output.
type MapRenderer struct {
	out *Output
}

// NewMapRenderer returns a renderer writing map_features_NNNN.png files.
func NewMapRenderer(out *Output) *MapRenderer {
	return &MapRenderer{out: out}
}

// Render draws snap within q and writes the figure, returning its path.
// On error no file is written and the Output's counter does not advance.
func (r *MapRenderer) Render(snap *MapSnapshot, q QueryWindow) (string, error) {
	if err := snap.Validate(); err != nil {
		return "", fmt.Errorf("map snapshot: %w", err)
	}
	if err := q.validate(); err != nil {
		return "", fmt.Errorf("map snapshot: %w", err)
	}

	fig, err := layoutMap(snap).figure(q)
	if err != nil {
		return "", fmt.Errorf("map snapshot: %w", err)
	}
	return r.out.save(mapKind, fig)
}

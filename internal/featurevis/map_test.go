package featurevis

import (
	"testing"

	"github.com/banshee-data/featurevis/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg/draw"
)

// straightLine returns n samples along +x starting at x0, spaced 1 m apart.
func straightLine(x0, y float64, n int) []Point2D {
	pts := make([]Point2D, n)
	for j := range pts {
		pts[j] = Point2D{X: x0 + float64(j), Y: y}
	}
	return pts
}

func unitVectors(n int) []Point2D {
	v := make([]Point2D, n)
	for j := range v {
		v[j] = Point2D{X: 1}
	}
	return v
}

func TestLayoutMap_LinesSkipEmpty(t *testing.T) {
	s := &MapSnapshot{
		PointPosition: [][BoundaryLines][]Point2D{
			{straightLine(0, 0, 4), straightLine(0, 1, 4), straightLine(0, -1, 4)},
			{straightLine(10, 0, 3), nil, {}},
		},
		PointVector:   [][BoundaryLines][]Point2D{{}, {}},
		PolygonCenter: []Point2D{{X: 2}, {X: 11}},
		PolygonType:   []PolygonType{PolygonLane, PolygonCrosswalk},
		OnRoute:       []bool{false, false},
		TrafficLight:  []TrafficLightStatus{TrafficLightUnknown, TrafficLightUnknown},
	}
	require.NoError(t, s.Validate())

	sc := layoutMap(s)
	assert.Equal(t, 2, sc.NumPolygons)
	assert.Equal(t, 4, sc.NumSamples)

	require.Len(t, sc.Lines, 4)
	type key struct{ polygon, line int }
	var got []key
	for _, l := range sc.Lines {
		got = append(got, key{l.Polygon, l.Line})
	}
	assert.Equal(t, []key{{0, 0}, {0, 1}, {0, 2}, {1, 0}}, got)
	assert.Equal(t, PolygonCrosswalk, sc.Lines[3].Type)

	// No vectors, no arrows.
	assert.Empty(t, sc.Directions)
}

func TestLayoutMap_DirectionStride(t *testing.T) {
	s := &MapSnapshot{
		PointPosition: [][BoundaryLines][]Point2D{{straightLine(0, 0, 7), straightLine(0, 1, 7), straightLine(0, -1, 7)}},
		PointVector:   [][BoundaryLines][]Point2D{{unitVectors(7), unitVectors(7), unitVectors(7)}},
		PolygonCenter: []Point2D{{X: 3}},
		PolygonType:   []PolygonType{PolygonLaneConnector},
		OnRoute:       []bool{true},
		TrafficLight:  []TrafficLightStatus{TrafficLightRed},
	}

	sc := layoutMap(s)
	require.Len(t, sc.Directions, 3, "samples 0, 3 and 6")
	for i, a := range sc.Directions {
		assert.Equal(t, Point2D{X: float64(3 * i)}, a.Tail)
		assert.Equal(t, Point2D{X: 5}, a.Delta)
		assert.Equal(t, withAlpha(PolygonLaneConnector.Color(), 0.7), a.Color)
	}

	// Vectors shorter than positions bound the stride.
	s.PointVector[0][0] = unitVectors(4)
	sc = layoutMap(s)
	require.Len(t, sc.Directions, 2, "samples 0 and 3")

	// Only the centreline contributes.
	s.PointVector[0][0] = nil
	sc = layoutMap(s)
	assert.Empty(t, sc.Directions)
}

func TestPolygonMark_RouteStyle(t *testing.T) {
	on := polygonMark{Type: PolygonCrosswalk, OnRoute: true}
	clr, area, shape := on.routeStyle()
	assert.Equal(t, paletteOnRoute, clr)
	assert.Equal(t, 100.0, area)
	assert.IsType(t, draw.BoxGlyph{}, shape)

	off := polygonMark{Type: PolygonLaneConnector}
	clr, area, shape = off.routeStyle()
	assert.Equal(t, PolygonLaneConnector.Color(), clr)
	assert.Equal(t, 50.0, area)
	assert.IsType(t, draw.CircleGlyph{}, shape)

	// Unknown polygon types share the crosswalk colour.
	clr, _, _ = polygonMark{Type: 9}.routeStyle()
	assert.Equal(t, PolygonCrosswalk.Color(), clr)
}

func TestPolygonMark_SignalStyle(t *testing.T) {
	tests := []struct {
		status TrafficLightStatus
		area   float64
		shape  draw.GlyphDrawer
	}{
		{TrafficLightUnknown, 30, draw.CircleGlyph{}},
		{TrafficLightGreen, 80, draw.BoxGlyph{}},
		{TrafficLightYellow, 80, draw.BoxGlyph{}},
		{TrafficLightRed, 80, draw.BoxGlyph{}},
		{42, 80, draw.BoxGlyph{}},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			clr, area, shape := polygonMark{Signal: tt.status}.signalStyle()
			assert.Equal(t, tt.status.Color(), clr)
			assert.Equal(t, tt.area, area)
			assert.IsType(t, tt.shape, shape)
		})
	}
	// Codes outside the enumeration are drawn gray.
	clr, _, _ := polygonMark{Signal: 42}.signalStyle()
	assert.Equal(t, paletteGray, clr)
}

func TestSignalLegend_ListsEveryState(t *testing.T) {
	var names []string
	for _, st := range signalLegend {
		names = append(names, st.String())
	}
	assert.Equal(t, []string{"Unknown", "Green", "Yellow", "Red"}, names)
}

func TestSignalLegendEntries(t *testing.T) {
	entries := signalLegendEntries()
	require.Len(t, entries, 4)

	want := []struct {
		name  string
		clr   TrafficLightStatus
		shape draw.GlyphDrawer
	}{
		{"Unknown", TrafficLightUnknown, draw.CircleGlyph{}},
		{"Green", TrafficLightGreen, draw.BoxGlyph{}},
		{"Yellow", TrafficLightYellow, draw.BoxGlyph{}},
		{"Red", TrafficLightRed, draw.BoxGlyph{}},
	}
	for i, w := range want {
		e := entries[i]
		assert.Equal(t, w.name, e.Name)
		assert.Equal(t, w.clr.Color(), e.Color)
		assert.IsType(t, w.shape, e.Shape)
		assert.Equal(t, 64.0, e.Area)
	}
}

func TestMapFigure_TitlesAndLimits(t *testing.T) {
	q := QueryWindow{Center: Point2D{X: 5, Y: 5}, Radius: 10}
	fig, err := layoutMap(singleLane()).figure(q)
	require.NoError(t, err)

	want := []string{
		"Map Sample Points (M=1, P=3)",
		"Direction Vectors Visualization",
		"Route Planning Information",
		"Traffic Light Status",
	}
	for i, title := range want {
		p := fig.panel(i)
		assert.Equal(t, title, p.Title.Text)
		assert.Equal(t, -5.0, p.X.Min, "panel %d", i)
		assert.Equal(t, 15.0, p.X.Max, "panel %d", i)
		assert.Equal(t, -5.0, p.Y.Min, "panel %d", i)
		assert.Equal(t, 15.0, p.Y.Max, "panel %d", i)
	}
}

func TestMapFigure_EmptySnapshot(t *testing.T) {
	sc := layoutMap(&MapSnapshot{})
	assert.Zero(t, sc.NumPolygons)
	assert.Zero(t, sc.NumSamples)

	fig, err := sc.figure(QueryWindow{Radius: 10})
	require.NoError(t, err)
	assert.Equal(t, "Map Sample Points (M=0, P=0)", fig.panel(0).Title.Text)
}

func TestMapRenderer_EndToEnd(t *testing.T) {
	out, mfs := newTestOutput(t)

	path, err := NewMapRenderer(out).Render(singleLane(), QueryWindow{Radius: 20})
	require.NoError(t, err)
	assert.Equal(t, "/vis/map_features_0000.png", path)

	data, err := mfs.ReadFile(path)
	require.NoError(t, err)
	testutil.AssertPNGSize(t, data, 180, 180)
}

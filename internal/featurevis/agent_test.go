package featurevis

import (
	"testing"

	"github.com/banshee-data/featurevis/internal/config"
	"github.com/banshee-data/featurevis/internal/fsutil"
	"github.com/banshee-data/featurevis/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrowScale(t *testing.T) {
	tests := []struct {
		speed float64
		want  float64
	}{
		{0, 10},
		{0.5, 10},
		{1, 10},
		{2, 10},
		{4, 5},
		{10, 2},
		{40, 0.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ArrowScale(tt.speed), 1e-12, "speed %v", tt.speed)
	}
}

func TestLayoutAgents_SingleVehicle(t *testing.T) {
	sc := layoutAgents(singleVehicle())

	wantBoxes := []agentBox{{Index: 0, Center: Point2D{}, Size: Extent{Width: 2, Length: 4}, Category: CategoryVehicle}}
	if diff := cmp.Diff(wantBoxes, sc.Boxes); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []Point2D{{X: -2, Y: -1}, {X: 2, Y: -1}, {X: 2, Y: 1}, {X: -2, Y: 1}}, sc.Boxes[0].corners())

	require.Len(t, sc.Velocities, 1)
	v := sc.Velocities[0]
	assert.True(t, v.HasArrow())
	assert.InDelta(t, 1.0, v.Speed, 1e-12)
	assert.InDelta(t, 10.0, v.Scale, 1e-12)
	assert.Equal(t, Point2D{X: 10}, v.Velocity.Scale(v.Scale))
	assert.Equal(t, "1.0m/s", v.Label())

	// One timestep only: no trajectory line, but the present star remains.
	assert.Empty(t, sc.Tracks)
	assert.Len(t, sc.Present, 1)

	assert.Equal(t, []categoryCount{{Category: CategoryVehicle, Count: 1}}, sc.Histogram)
	assert.Equal(t, "VEHICLE", sc.Histogram[0].Category.String())
}

// mixedAgents has three agents over four timesteps with present index 2:
// agent 0 is valid throughout, agent 1 is invalid at present, agent 2 is
// valid only at present.
func mixedAgents() *AgentSnapshot {
	pos := func(x float64) []Point2D {
		return []Point2D{{X: x}, {X: x + 1}, {X: x + 2}, {X: x + 3}}
	}
	still := []Point2D{{}, {}, {}, {}}
	shape := []Extent{{1, 1}, {1, 1}, {1, 1}, {1, 1}}
	return &AgentSnapshot{
		Position: [][]Point2D{pos(0), pos(10), pos(20)},
		Velocity: [][]Point2D{
			{{X: 3, Y: 4}, {X: 3, Y: 4}, {X: 3, Y: 4}, {X: 3, Y: 4}},
			still,
			{{X: 0.05}, {X: 0.05}, {X: 0.05}, {X: 0.05}},
		},
		Shape:    [][]Extent{shape, shape, shape},
		Category: []AgentCategory{CategoryEgo, CategoryPedestrian, CategoryVehicle},
		Valid: [][]bool{
			{true, true, true, true},
			{true, true, false, true},
			{false, false, true, false},
		},
		PresentIdx: 2,
	}
}

func TestLayoutAgents_ValidityRules(t *testing.T) {
	sc := layoutAgents(mixedAgents())

	assert.Equal(t, 3, sc.NumAgents)

	var boxIdx []int
	for _, b := range sc.Boxes {
		boxIdx = append(boxIdx, b.Index)
	}
	assert.Equal(t, []int{0, 2}, boxIdx, "agent invalid at present must not get a box")

	var velIdx []int
	for _, v := range sc.Velocities {
		velIdx = append(velIdx, v.Index)
	}
	assert.Equal(t, []int{0, 2}, velIdx, "agent invalid at present must not get a velocity mark")

	// Agent 1 has three valid points away from present; agent 2 has one.
	var trackIdx []int
	for _, tr := range sc.Tracks {
		trackIdx = append(trackIdx, tr.Index)
	}
	assert.Equal(t, []int{0, 1}, trackIdx)
	assert.Equal(t, []Point2D{{X: 10}, {X: 11}, {X: 13}}, sc.Tracks[1].Points)

	// Speed threshold: agent 0 at 5 m/s draws an arrow, agent 2 at 0.05 m/s does not.
	assert.True(t, sc.Velocities[0].HasArrow())
	assert.InDelta(t, 5.0, sc.Velocities[0].Speed, 1e-12)
	assert.InDelta(t, 4.0, sc.Velocities[0].Scale, 1e-12)
	assert.False(t, sc.Velocities[1].HasArrow())

	want := []categoryCount{{CategoryEgo, 1}, {CategoryVehicle, 1}}
	if diff := cmp.Diff(want, sc.Histogram); diff != "" {
		t.Errorf("histogram mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, sc.placeholder())
}

func TestVelocityMark_Label(t *testing.T) {
	tests := []struct {
		speed float64
		want  string
	}{
		{1, "1.0m/s"},
		{5, "5.0m/s"},
		{0.15, "0.1m/s"},
		{12.345, "12.3m/s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, velocityMark{Speed: tt.speed}.Label())
	}
}

func TestLayoutAgents_HistogramOrderAndUnknown(t *testing.T) {
	n := 5
	s := &AgentSnapshot{
		Position:   make([][]Point2D, n),
		Velocity:   make([][]Point2D, n),
		Shape:      make([][]Extent, n),
		Category:   []AgentCategory{CategoryBicycle, 7, CategoryBicycle, CategoryEgo, 7},
		Valid:      make([][]bool, n),
		PresentIdx: 0,
	}
	for i := 0; i < n; i++ {
		s.Position[i] = []Point2D{{X: float64(i)}}
		s.Velocity[i] = []Point2D{{}}
		s.Shape[i] = []Extent{{1, 2}}
		s.Valid[i] = []bool{true}
	}
	require.NoError(t, s.Validate())

	sc := layoutAgents(s)
	want := []categoryCount{{CategoryBicycle, 2}, {7, 2}, {CategoryEgo, 1}}
	if diff := cmp.Diff(want, sc.Histogram); diff != "" {
		t.Errorf("histogram mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Unknown(7)", sc.Histogram[1].Category.String())
	assert.Equal(t, paletteGray, sc.Histogram[1].Category.Color())
}

func TestAgentFigure_ViewLimits(t *testing.T) {
	q := QueryWindow{Center: Point2D{}, Radius: 10}
	fig, err := layoutAgents(mixedAgents()).figure(q)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p := fig.panel(i)
		assert.Equal(t, -10.0, p.X.Min, "panel %d", i)
		assert.Equal(t, 10.0, p.X.Max, "panel %d", i)
		assert.Equal(t, -10.0, p.Y.Min, "panel %d", i)
		assert.Equal(t, 10.0, p.Y.Max, "panel %d", i)
	}

	// Offset window.
	fig, err = layoutAgents(mixedAgents()).figure(QueryWindow{Center: Point2D{X: 100, Y: -5}, Radius: 25})
	require.NoError(t, err)
	p := fig.panel(1)
	assert.Equal(t, 75.0, p.X.Min)
	assert.Equal(t, 125.0, p.X.Max)
	assert.Equal(t, -30.0, p.Y.Min)
	assert.Equal(t, 20.0, p.Y.Max)
}

func TestAgentFigure_Titles(t *testing.T) {
	fig, err := layoutAgents(mixedAgents()).figure(QueryWindow{Radius: 10})
	require.NoError(t, err)

	want := []string{
		"Current Agent Distribution (N=3)",
		"Agent History and Future Trajectories",
		"Agent Velocity Vectors",
		"Agent Type Distribution",
	}
	for i, title := range want {
		assert.Equal(t, title, fig.panel(i).Title.Text)
	}
}

func TestAgentFigure_HistogramBars(t *testing.T) {
	fig, err := layoutAgents(mixedAgents()).figure(QueryWindow{Radius: 10})
	require.NoError(t, err)

	d := fig.panel(3)
	assert.Equal(t, "Count", d.Y.Label.Text)
	assert.Equal(t, -0.5, d.X.Min)
	assert.Equal(t, 1.5, d.X.Max)
	assert.InDelta(t, 1.2, d.Y.Max, 1e-12)
}

func TestAgentFigure_NoValidAgentsPlaceholder(t *testing.T) {
	s := mixedAgents()
	for i := range s.Valid {
		for k := range s.Valid[i] {
			s.Valid[i][k] = false
		}
	}

	sc := layoutAgents(s)
	assert.Empty(t, sc.Histogram)
	assert.Empty(t, sc.Boxes)
	assert.Empty(t, sc.Velocities)
	assert.Empty(t, sc.Tracks)
	assert.Equal(t, "No valid agents", sc.placeholder())

	fig, err := sc.figure(QueryWindow{Radius: 10})
	require.NoError(t, err)

	// The placeholder panel uses a unit canvas and no count axis.
	d := fig.panel(3)
	assert.Equal(t, "", d.Y.Label.Text)
	assert.Equal(t, 0.0, d.X.Min)
	assert.Equal(t, 1.0, d.X.Max)
	assert.Equal(t, 1.0, d.Y.Max)
}

func TestAgentRenderer_EndToEnd(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	dir := "/vis"
	dpi := 100
	size := 6.0
	out, err := NewOutput(mfs, &config.VisConfig{OutputDir: &dir, DPI: &dpi, FigureWidthIn: &size, FigureHeightIn: &size})
	require.NoError(t, err)

	path, err := NewAgentRenderer(out).Render(singleVehicle(), QueryWindow{Radius: 50})
	require.NoError(t, err)
	assert.Equal(t, "/vis/agent_features_0000.png", path)
	assert.Equal(t, 1, out.Counter())

	data, err := mfs.ReadFile(path)
	require.NoError(t, err)
	testutil.AssertPNGSize(t, data, 600, 600)

	// The opaque present-position star and box outline use the vehicle blue.
	img := testutil.DecodePNG(t, data)
	blue := CategoryVehicle.Color()
	assert.Greater(t, testutil.CountNear(img, blue, 12), 0)
	// No other category colours appear.
	assert.Zero(t, testutil.CountNear(img, CategoryBicycle.Color(), 4))
	assert.Zero(t, testutil.CountNear(img, CategoryPedestrian.Color(), 4))
}

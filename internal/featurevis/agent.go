package featurevis

import (
	"fmt"
	"image/color"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Velocity arrow parameters.
const (
	// minArrowSpeed is the speed (m/s) at or below which no arrow is drawn.
	minArrowSpeed = 0.1
	// maxArrowScale caps the arrow length multiplier for slow agents.
	maxArrowScale = 10.0
	// arrowSpan is the nominal arrow length (m) for agents faster than 1 m/s.
	arrowSpan = 20.0
)

// ArrowScale returns the multiplier applied to a velocity to draw its arrow:
// min(10, 20/max(speed, 1)).
func ArrowScale(speed float64) float64 {
	return min(maxArrowScale, arrowSpan/max(speed, 1.0))
}

// agentBox is an agent footprint at the present index.
type agentBox struct {
	Index    int
	Center   Point2D
	Size     Extent
	Category AgentCategory
}

// corners returns the axis-aligned footprint. Length runs along x.
func (b agentBox) corners() []Point2D {
	hl, hw := b.Size.Length/2, b.Size.Width/2
	return []Point2D{
		{X: b.Center.X - hl, Y: b.Center.Y - hw},
		{X: b.Center.X + hl, Y: b.Center.Y - hw},
		{X: b.Center.X + hl, Y: b.Center.Y + hw},
		{X: b.Center.X - hl, Y: b.Center.Y + hw},
	}
}

// agentTrack is the polyline through an agent's valid positions.
type agentTrack struct {
	Index    int
	Category AgentCategory
	Points   []Point2D
}

// agentMark is an agent's position at the present index.
type agentMark struct {
	Index    int
	Position Point2D
	Category AgentCategory
}

// velocityMark is an agent's present velocity and its arrow scale.
type velocityMark struct {
	Index    int
	Position Point2D
	Velocity Point2D
	Speed    float64
	Scale    float64
	Category AgentCategory
}

// HasArrow reports whether the agent moves fast enough to draw an arrow.
func (v velocityMark) HasArrow() bool {
	return v.Speed > minArrowSpeed
}

// Label returns the speed annotation drawn at the arrow tip.
func (v velocityMark) Label() string {
	return fmt.Sprintf("%.1fm/s", v.Speed)
}

// categoryCount is one bar of the type histogram.
type categoryCount struct {
	Category AgentCategory
	Count    int
}

// agentScene is everything drawn for one AgentSnapshot, in data terms.
type agentScene struct {
	NumAgents  int
	Boxes      []agentBox
	Tracks     []agentTrack
	Present    []agentMark
	Velocities []velocityMark
	Histogram  []categoryCount
}

// noAgentsText replaces the histogram when no agent is valid at present.
const noAgentsText = "No valid agents"

// placeholder returns the text shown instead of the histogram, or "" when
// there are bars to draw.
func (sc *agentScene) placeholder() string {
	if len(sc.Histogram) > 0 {
		return ""
	}
	return noAgentsText
}

// layoutAgents selects what each panel draws. Only agents valid at the
// present index contribute boxes, velocities and histogram counts; tracks
// need at least two valid timesteps. The snapshot must already be validated.
func layoutAgents(s *AgentSnapshot) *agentScene {
	sc := &agentScene{NumAgents: s.NumAgents()}
	histIdx := make(map[AgentCategory]int)

	for i := 0; i < s.NumAgents(); i++ {
		cat := s.Category[i]

		var pts []Point2D
		for t, ok := range s.Valid[i] {
			if ok {
				pts = append(pts, s.Position[i][t])
			}
		}
		if len(pts) > 1 {
			sc.Tracks = append(sc.Tracks, agentTrack{Index: i, Category: cat, Points: pts})
		}

		if !s.ValidAt(i) {
			continue
		}

		pos := s.Position[i][s.PresentIdx]
		vel := s.Velocity[i][s.PresentIdx]
		speed := floats.Norm([]float64{vel.X, vel.Y}, 2)

		sc.Boxes = append(sc.Boxes, agentBox{Index: i, Center: pos, Size: s.Shape[i][s.PresentIdx], Category: cat})
		sc.Present = append(sc.Present, agentMark{Index: i, Position: pos, Category: cat})
		sc.Velocities = append(sc.Velocities, velocityMark{
			Index:    i,
			Position: pos,
			Velocity: vel,
			Speed:    speed,
			Scale:    ArrowScale(speed),
			Category: cat,
		})

		if j, ok := histIdx[cat]; ok {
			sc.Histogram[j].Count++
		} else {
			histIdx[cat] = len(sc.Histogram)
			sc.Histogram = append(sc.Histogram, categoryCount{Category: cat, Count: 1})
		}
	}
	return sc
}

// figure draws the scene's four panels.
func (sc *agentScene) figure(q QueryWindow) (*figure, error) {
	a, err := sc.distributionPanel(q)
	if err != nil {
		return nil, fmt.Errorf("distribution panel: %w", err)
	}
	b, err := sc.trajectoryPanel(q)
	if err != nil {
		return nil, fmt.Errorf("trajectory panel: %w", err)
	}
	c, err := sc.velocityPanel(q)
	if err != nil {
		return nil, fmt.Errorf("velocity panel: %w", err)
	}
	d, err := sc.histogramPanel()
	if err != nil {
		return nil, fmt.Errorf("histogram panel: %w", err)
	}
	tracef("agents: n=%d boxes=%d tracks=%d categories=%d", sc.NumAgents, len(sc.Boxes), len(sc.Tracks), len(sc.Histogram))
	fig := newFigure(a, b, c, d)
	fig.equalAspect[3] = false
	return fig, nil
}

func (sc *agentScene) distributionPanel(q QueryWindow) (*plot.Plot, error) {
	p := newPanel(fmt.Sprintf("Current Agent Distribution (N=%d)", sc.NumAgents))
	addGrid(p, true)

	ids := make([]string, 0, len(sc.Boxes))
	centers := make([]Point2D, 0, len(sc.Boxes))
	for _, b := range sc.Boxes {
		poly, err := plotter.NewPolygon(toXYs(b.corners()))
		if err != nil {
			return nil, err
		}
		clr := b.Category.Color()
		poly.Color = withAlpha(clr, 0.6)
		poly.LineStyle.Color = clr
		poly.LineStyle.Width = vg.Points(2)
		p.Add(poly)

		ids = append(ids, strconv.Itoa(b.Index))
		centers = append(centers, b.Center)
	}

	if len(ids) > 0 {
		labels, err := newLabels(centers, ids, color.White, vg.Points(8), text.YCenter)
		if err != nil {
			return nil, err
		}
		p.Add(labels)
	}

	if err := addQueryMarker(p, q, "Query Center"); err != nil {
		return nil, err
	}
	p.Legend.Top = true

	applyWindow(p, q)
	return p, nil
}

func (sc *agentScene) trajectoryPanel(q QueryWindow) (*plot.Plot, error) {
	p := newPanel("Agent History and Future Trajectories")
	addGrid(p, true)

	for _, tr := range sc.Tracks {
		clr := tr.Category.Color()

		line, err := newPolyline(tr.Points, withAlpha(clr, 0.7), vg.Points(2))
		if err != nil {
			return nil, err
		}
		p.Add(line)

		first, err := newScatter(tr.Points[:1], withAlpha(clr, 0.8), 50, draw.CircleGlyph{})
		if err != nil {
			return nil, err
		}
		last, err := newScatter(tr.Points[len(tr.Points)-1:], withAlpha(clr, 0.8), 50, draw.BoxGlyph{})
		if err != nil {
			return nil, err
		}
		p.Add(first, last)
	}

	for _, m := range sc.Present {
		star, err := newScatter([]Point2D{m.Position}, m.Category.Color(), 100, starGlyph{Outline: color.Black})
		if err != nil {
			return nil, err
		}
		p.Add(star)
	}

	if err := addQueryMarker(p, q, ""); err != nil {
		return nil, err
	}

	applyWindow(p, q)
	return p, nil
}

func (sc *agentScene) velocityPanel(q QueryWindow) (*plot.Plot, error) {
	p := newPanel("Agent Velocity Vectors")
	addGrid(p, true)

	field := &arrowField{HeadWidth: 2, HeadLength: 1.5, Width: vg.Points(1)}
	var tips []Point2D
	var speeds []string
	for _, v := range sc.Velocities {
		if !v.HasArrow() {
			continue
		}
		a := arrow{Tail: v.Position, Delta: v.Velocity.Scale(v.Scale), Color: withAlpha(v.Category.Color(), 0.8)}
		field.Arrows = append(field.Arrows, a)
		tips = append(tips, a.Tip())
		speeds = append(speeds, v.Label())
	}
	if len(field.Arrows) > 0 {
		p.Add(field)
		labels, err := newLabels(tips, speeds, color.Black, vg.Points(8), text.YBottom)
		if err != nil {
			return nil, err
		}
		p.Add(labels)
	}

	// Every present agent gets a point, moving or not.
	for _, v := range sc.Velocities {
		pt, err := newScatter([]Point2D{v.Position}, withAlpha(v.Category.Color(), 0.6), 80, draw.CircleGlyph{})
		if err != nil {
			return nil, err
		}
		p.Add(pt)
	}

	if err := addQueryMarker(p, q, ""); err != nil {
		return nil, err
	}

	applyWindow(p, q)
	return p, nil
}

// histogramPanel draws one bar per observed category, or a placeholder
// when no agent is valid at the present index.
func (sc *agentScene) histogramPanel() (*plot.Plot, error) {
	p := newPanel("Agent Type Distribution")
	p.X.Label.Text = ""
	p.Y.Label.Text = ""

	if msg := sc.placeholder(); msg != "" {
		label, err := newLabels([]Point2D{{X: 0.5, Y: 0.5}}, []string{msg}, color.Black, vg.Points(14), text.YCenter)
		if err != nil {
			return nil, err
		}
		p.Add(label)
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
		return p, nil
	}

	addGrid(p, false)
	p.Y.Label.Text = "Count"

	names := make([]string, len(sc.Histogram))
	counts := make([]float64, len(sc.Histogram))
	tops := make([]Point2D, len(sc.Histogram))
	labels := make([]string, len(sc.Histogram))
	for i, h := range sc.Histogram {
		bar, err := plotter.NewBarChart(plotter.Values{float64(h.Count)}, vg.Points(48))
		if err != nil {
			return nil, err
		}
		bar.XMin = float64(i)
		bar.Color = withAlpha(h.Category.Color(), 0.7)
		bar.LineStyle.Width = 0
		p.Add(bar)

		names[i] = h.Category.String()
		counts[i] = float64(h.Count)
		tops[i] = Point2D{X: float64(i), Y: float64(h.Count) + 0.1}
		labels[i] = strconv.Itoa(h.Count)
	}
	p.NominalX(names...)

	countLabels, err := newLabels(tops, labels, color.Black, vg.Points(10), text.YBottom)
	if err != nil {
		return nil, err
	}
	p.Add(countLabels)

	p.X.Min, p.X.Max = -0.5, float64(len(names))-0.5
	p.Y.Min, p.Y.Max = 0, floats.Max(counts)*1.2
	return p, nil
}

// AgentRenderer draws AgentSnapshots into an Output.
type AgentRenderer struct {
	out *Output
}

// NewAgentRenderer returns a renderer writing agent_features_NNNN.png files.
func NewAgentRenderer(out *Output) *AgentRenderer {
	return &AgentRenderer{out: out}
}

// Render draws snap within q and writes the figure, returning its path.
// On error no file is written and the Output's counter does not advance.
func (r *AgentRenderer) Render(snap *AgentSnapshot, q QueryWindow) (string, error) {
	if err := snap.Validate(); err != nil {
		return "", fmt.Errorf("agent snapshot: %w", err)
	}
	if err := q.validate(); err != nil {
		return "", fmt.Errorf("agent snapshot: %w", err)
	}

	fig, err := layoutAgents(snap).figure(q)
	if err != nil {
		return "", fmt.Errorf("agent snapshot: %w", err)
	}
	return r.out.save(agentKind, fig)
}

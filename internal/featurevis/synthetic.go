package featurevis

// This file provides synthetic feature snapshots for demos and tests.

import (
	"math"
	"math/rand"
)

// SyntheticScene generates plausible agent and map snapshots around the
// origin. The same seed always yields the same snapshots.
type SyntheticScene struct {
	// Configuration
	AgentCount   int     // agents including ego
	Steps        int     // timesteps per agent
	PresentIdx   int     // index of "now" within Steps
	StepSeconds  float64 // time between samples
	PolygonCount int     // map polygons
	Samples      int     // points per boundary line
	AreaRadius   float64 // metres, agents and polygons are placed within this radius
	DropoutRate  float64 // probability that a sample is marked invalid

	rng *rand.Rand
}

// NewSyntheticScene creates a generator seeded with seed.
func NewSyntheticScene(seed int64) *SyntheticScene {
	return &SyntheticScene{
		AgentCount:   12,
		Steps:        21,
		PresentIdx:   10,
		StepSeconds:  0.1,
		PolygonCount: 16,
		Samples:      20,
		AreaRadius:   50.0,
		DropoutRate:  0.1,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Window returns the query window covering the generated area.
func (g *SyntheticScene) Window() QueryWindow {
	return QueryWindow{Radius: g.AreaRadius}
}

// footprint returns a typical width/length for the category.
func (g *SyntheticScene) footprint(cat AgentCategory) Extent {
	switch cat {
	case CategoryPedestrian:
		return Extent{Width: 0.6, Length: 0.6}
	case CategoryBicycle:
		return Extent{Width: 0.7, Length: 1.8}
	default:
		return Extent{Width: 1.8 + 0.4*g.rng.Float64(), Length: 4.2 + 0.8*g.rng.Float64()}
	}
}

// speed returns a typical speed (m/s) for the category.
func (g *SyntheticScene) speed(cat AgentCategory) float64 {
	switch cat {
	case CategoryPedestrian:
		return 0.5 + g.rng.Float64()
	case CategoryBicycle:
		return 3 + 3*g.rng.Float64()
	default:
		// Some vehicles are parked.
		if g.rng.Float64() < 0.2 {
			return 0
		}
		return 5 + 10*g.rng.Float64()
	}
}

// Agents generates constant-velocity agents. Agent 0 is the ego vehicle,
// always valid and centred on the origin at the present index.
func (g *SyntheticScene) Agents() *AgentSnapshot {
	n, t := g.AgentCount, g.Steps
	s := &AgentSnapshot{
		Position:   make([][]Point2D, n),
		Velocity:   make([][]Point2D, n),
		Shape:      make([][]Extent, n),
		Category:   make([]AgentCategory, n),
		Valid:      make([][]bool, n),
		PresentIdx: g.PresentIdx,
	}

	for i := 0; i < n; i++ {
		cat := CategoryEgo
		origin := Point2D{}
		if i > 0 {
			cat = AgentCategory(1 + g.rng.Intn(3))
			r := g.AreaRadius * 0.8 * math.Sqrt(g.rng.Float64())
			theta := 2 * math.Pi * g.rng.Float64()
			origin = Point2D{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
		}
		heading := 2 * math.Pi * g.rng.Float64()
		v := Point2D{X: math.Cos(heading), Y: math.Sin(heading)}.Scale(g.speed(cat))
		size := g.footprint(cat)

		s.Category[i] = cat
		s.Position[i] = make([]Point2D, t)
		s.Velocity[i] = make([]Point2D, t)
		s.Shape[i] = make([]Extent, t)
		s.Valid[i] = make([]bool, t)
		for k := 0; k < t; k++ {
			dt := float64(k-g.PresentIdx) * g.StepSeconds
			s.Position[i][k] = origin.Add(v.Scale(dt))
			s.Velocity[i][k] = v
			s.Shape[i][k] = size
			s.Valid[i][k] = i == 0 || g.rng.Float64() >= g.DropoutRate
		}
	}
	return s
}

// Map generates straight polygons with parallel boundaries. Lanes run along
// random headings; roughly a third are on the planned route.
func (g *SyntheticScene) Map() *MapSnapshot {
	m, p := g.PolygonCount, g.Samples
	s := &MapSnapshot{
		PointPosition: make([][BoundaryLines][]Point2D, m),
		PointVector:   make([][BoundaryLines][]Point2D, m),
		PolygonCenter: make([]Point2D, m),
		PolygonType:   make([]PolygonType, m),
		OnRoute:       make([]bool, m),
		TrafficLight:  make([]TrafficLightStatus, m),
	}

	for i := 0; i < m; i++ {
		typ := PolygonType(g.rng.Intn(3))
		halfWidth := 1.75
		length := 30.0
		if typ == PolygonCrosswalk {
			halfWidth, length = 2.0, 8.0
		}

		center := Point2D{
			X: (2*g.rng.Float64() - 1) * g.AreaRadius * 0.7,
			Y: (2*g.rng.Float64() - 1) * g.AreaRadius * 0.7,
		}
		heading := 2 * math.Pi * g.rng.Float64()
		dir := Point2D{X: math.Cos(heading), Y: math.Sin(heading)}
		normal := Point2D{X: -dir.Y, Y: dir.X}
		step := length / float64(max(p-1, 1))
		start := center.Add(dir.Scale(-length / 2))

		offsets := [BoundaryLines]float64{0, halfWidth, -halfWidth}
		for side, off := range offsets {
			pts := make([]Point2D, p)
			vecs := make([]Point2D, p)
			for j := 0; j < p; j++ {
				pts[j] = start.Add(dir.Scale(float64(j) * step)).Add(normal.Scale(off))
				vecs[j] = dir.Scale(step)
			}
			s.PointPosition[i][side] = pts
			s.PointVector[i][side] = vecs
		}

		s.PolygonCenter[i] = center
		s.PolygonType[i] = typ
		s.OnRoute[i] = typ != PolygonCrosswalk && g.rng.Float64() < 0.35
		s.TrafficLight[i] = TrafficLightStatus(g.rng.Intn(4))
	}
	return s
}

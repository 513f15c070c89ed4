package featurevis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// BoundaryLines is the number of sampled lines per map polygon:
// centreline, left boundary, right boundary.
const BoundaryLines = 3

var (
	// ErrShapeMismatch reports arrays whose leading dimensions disagree.
	ErrShapeMismatch = errors.New("feature array shape mismatch")
	// ErrPresentIndex reports a present index outside the time axis.
	ErrPresentIndex = errors.New("present index out of range")
	// ErrRadius reports a query radius that cannot form a viewport.
	ErrRadius = errors.New("query radius must be positive and finite")
)

// AgentSnapshot holds per-agent time series. Position, Velocity, Shape and
// Valid are indexed [agent][timestep]; Category is indexed [agent].
type AgentSnapshot struct {
	Position   [][]Point2D     `json:"position"`
	Velocity   [][]Point2D     `json:"velocity"`
	Shape      [][]Extent      `json:"shape"`
	Category   []AgentCategory `json:"category"`
	Valid      [][]bool        `json:"valid_mask"`
	PresentIdx int             `json:"present_idx"`
}

// NumAgents returns N.
func (s *AgentSnapshot) NumAgents() int { return len(s.Position) }

// NumSteps returns T, or 0 for an empty snapshot.
func (s *AgentSnapshot) NumSteps() int {
	if len(s.Position) == 0 {
		return 0
	}
	return len(s.Position[0])
}

// ValidAt reports whether agent i was observed at the present index.
func (s *AgentSnapshot) ValidAt(i int) bool {
	return s.Valid[i][s.PresentIdx]
}

// Validate checks that every array shares the agent and timestep dimensions
// and that PresentIdx addresses a timestep.
func (s *AgentSnapshot) Validate() error {
	n := len(s.Position)
	if len(s.Velocity) != n || len(s.Shape) != n || len(s.Category) != n || len(s.Valid) != n {
		return fmt.Errorf("%w: agents position=%d velocity=%d shape=%d category=%d valid=%d",
			ErrShapeMismatch, n, len(s.Velocity), len(s.Shape), len(s.Category), len(s.Valid))
	}
	if n == 0 {
		return nil
	}
	t := len(s.Position[0])
	for i := 0; i < n; i++ {
		if len(s.Position[i]) != t || len(s.Velocity[i]) != t || len(s.Shape[i]) != t || len(s.Valid[i]) != t {
			return fmt.Errorf("%w: agent %d has timesteps position=%d velocity=%d shape=%d valid=%d, want %d",
				ErrShapeMismatch, i, len(s.Position[i]), len(s.Velocity[i]), len(s.Shape[i]), len(s.Valid[i]), t)
		}
	}
	if s.PresentIdx < 0 || s.PresentIdx >= t {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrPresentIndex, s.PresentIdx, t)
	}
	return nil
}

// MapSnapshot holds per-polygon map features. PointPosition and PointVector
// are indexed [polygon][line][sample]; the rest are indexed [polygon].
type MapSnapshot struct {
	PointPosition [][BoundaryLines][]Point2D `json:"point_position"`
	PointVector   [][BoundaryLines][]Point2D `json:"point_vector"`
	PolygonCenter []Point2D                  `json:"polygon_center"`
	PolygonType   []PolygonType              `json:"polygon_type"`
	OnRoute       []bool                     `json:"polygon_on_route"`
	TrafficLight  []TrafficLightStatus       `json:"polygon_tl_status"`
}

// NumPolygons returns M.
func (s *MapSnapshot) NumPolygons() int { return len(s.PointPosition) }

// NumSamples returns the sample count of the first centreline, or 0.
func (s *MapSnapshot) NumSamples() int {
	if len(s.PointPosition) == 0 {
		return 0
	}
	return len(s.PointPosition[0][0])
}

// UnmarshalJSON decodes a snapshot, rejecting polygons that do not carry
// exactly BoundaryLines sampled lines.
func (s *MapSnapshot) UnmarshalJSON(data []byte) error {
	type plain MapSnapshot
	var raw struct {
		plain
		PointPosition [][][]Point2D `json:"point_position"`
		PointVector   [][][]Point2D `json:"point_vector"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	pos, err := boundaryLines("point_position", raw.PointPosition)
	if err != nil {
		return err
	}
	vec, err := boundaryLines("point_vector", raw.PointVector)
	if err != nil {
		return err
	}

	*s = MapSnapshot(raw.plain)
	s.PointPosition, s.PointVector = pos, vec
	return nil
}

func boundaryLines(field string, polys [][][]Point2D) ([][BoundaryLines][]Point2D, error) {
	if polys == nil {
		return nil, nil
	}
	out := make([][BoundaryLines][]Point2D, len(polys))
	for i, lines := range polys {
		if len(lines) != BoundaryLines {
			return nil, fmt.Errorf("%w: %s polygon %d has %d lines, want %d",
				ErrShapeMismatch, field, i, len(lines), BoundaryLines)
		}
		copy(out[i][:], lines)
	}
	return out, nil
}

// Validate checks that every array shares the polygon dimension.
func (s *MapSnapshot) Validate() error {
	m := len(s.PointPosition)
	if len(s.PointVector) != m || len(s.PolygonCenter) != m || len(s.PolygonType) != m ||
		len(s.OnRoute) != m || len(s.TrafficLight) != m {
		return fmt.Errorf("%w: polygons position=%d vector=%d center=%d type=%d on_route=%d tl_status=%d",
			ErrShapeMismatch, m, len(s.PointVector), len(s.PolygonCenter), len(s.PolygonType),
			len(s.OnRoute), len(s.TrafficLight))
	}
	return nil
}

func (q QueryWindow) validate() error {
	if !(q.Radius > 0) || math.IsInf(q.Radius, 0) {
		return fmt.Errorf("%w: %v", ErrRadius, q.Radius)
	}
	return nil
}

// AgentFrame is the on-disk form of one agent render request.
type AgentFrame struct {
	Query    Point2D       `json:"query"`
	Radius   float64       `json:"radius"`
	Snapshot AgentSnapshot `json:"snapshot"`
}

// Window returns the frame's query window.
func (f *AgentFrame) Window() QueryWindow {
	return QueryWindow{Center: f.Query, Radius: f.Radius}
}

// MapFrame is the on-disk form of one map render request.
type MapFrame struct {
	Query    Point2D     `json:"query"`
	Radius   float64     `json:"radius"`
	Snapshot MapSnapshot `json:"snapshot"`
}

// Window returns the frame's query window.
func (f *MapFrame) Window() QueryWindow {
	return QueryWindow{Center: f.Query, Radius: f.Radius}
}

// DecodeAgentFrame reads and validates an AgentFrame from JSON.
func DecodeAgentFrame(r io.Reader) (*AgentFrame, error) {
	var f AgentFrame
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode agent frame: %w", err)
	}
	if err := f.Snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent frame: %w", err)
	}
	return &f, nil
}

// DecodeMapFrame reads and validates a MapFrame from JSON.
func DecodeMapFrame(r io.Reader) (*MapFrame, error) {
	var f MapFrame
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode map frame: %w", err)
	}
	if err := f.Snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("invalid map frame: %w", err)
	}
	return &f, nil
}

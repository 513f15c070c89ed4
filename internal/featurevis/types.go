// Package featurevis renders debug snapshots of planner input features.
//
// Two renderers share one Output: AgentRenderer draws per-agent time series
// and MapRenderer draws sampled map polygons. Each call produces a 2x2 PNG
// figure named <kind>_<NNNN>.png, where NNNN is a sequence number shared by
// every renderer attached to the same Output.
package featurevis

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// Point2D is a position or vector in the query frame, in metres.
type Point2D struct {
	X float64
	Y float64
}

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p * k.
func (p Point2D) Scale(k float64) Point2D {
	return Point2D{X: p.X * k, Y: p.Y * k}
}

// MarshalJSON encodes the point as [x, y].
func (p Point2D) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes [x, y, ...]. Components past the second are ignored
// so that 3D polygon centres decode as their ground-plane projection.
func (p *Point2D) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) < 2 {
		return fmt.Errorf("point needs at least 2 components, got %d", len(v))
	}
	p.X, p.Y = v[0], v[1]
	return nil
}

// Extent is an agent footprint. Width is lateral, Length is longitudinal.
type Extent struct {
	Width  float64
	Length float64
}

// MarshalJSON encodes the extent as [width, length].
func (e Extent) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{e.Width, e.Length})
}

// UnmarshalJSON decodes [width, length].
func (e *Extent) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) != 2 {
		return fmt.Errorf("extent needs 2 components, got %d", len(v))
	}
	e.Width, e.Length = v[0], v[1]
	return nil
}

// QueryWindow is the square viewport shared by all panels of a figure.
type QueryWindow struct {
	Center Point2D
	Radius float64
}

func (q QueryWindow) xmin() float64 { return q.Center.X - q.Radius }
func (q QueryWindow) xmax() float64 { return q.Center.X + q.Radius }
func (q QueryWindow) ymin() float64 { return q.Center.Y - q.Radius }
func (q QueryWindow) ymax() float64 { return q.Center.Y + q.Radius }

// AgentCategory is the semantic class of a tracked agent.
type AgentCategory int

const (
	CategoryEgo AgentCategory = iota
	CategoryVehicle
	CategoryPedestrian
	CategoryBicycle
)

var agentCategoryStyles = [...]struct {
	name  string
	color color.RGBA
}{
	CategoryEgo:        {"EGO", color.RGBA{R: 0xF4, G: 0x43, B: 0x36, A: 0xFF}},
	CategoryVehicle:    {"VEHICLE", color.RGBA{R: 0x21, G: 0x96, B: 0xF3, A: 0xFF}},
	CategoryPedestrian: {"PEDESTRIAN", color.RGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}},
	CategoryBicycle:    {"BICYCLE", color.RGBA{R: 0xFF, G: 0x98, B: 0x00, A: 0xFF}},
}

func (c AgentCategory) known() bool {
	return c >= 0 && int(c) < len(agentCategoryStyles)
}

// String returns the category name, or Unknown(<code>) for codes outside
// the enumeration.
func (c AgentCategory) String() string {
	if !c.known() {
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
	return agentCategoryStyles[c].name
}

// Color returns the category's palette entry. Unknown codes are gray.
func (c AgentCategory) Color() color.Color {
	if !c.known() {
		return paletteGray
	}
	return agentCategoryStyles[c].color
}

// PolygonType is the semantic class of a map polygon.
type PolygonType int

const (
	PolygonLane PolygonType = iota
	PolygonLaneConnector
	PolygonCrosswalk
)

var polygonTypeStyles = [...]struct {
	name  string
	color color.RGBA
}{
	PolygonLane:          {"LANE", color.RGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}},
	PolygonLaneConnector: {"LANE_CONNECTOR", color.RGBA{R: 0xFF, G: 0x98, B: 0x00, A: 0xFF}},
	PolygonCrosswalk:     {"CROSSWALK", color.RGBA{R: 0x9C, G: 0x27, B: 0xB0, A: 0xFF}},
}

func (t PolygonType) known() bool {
	return t >= 0 && int(t) < len(polygonTypeStyles)
}

func (t PolygonType) String() string {
	if !t.known() {
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
	return polygonTypeStyles[t].name
}

// Color returns the polygon palette entry. Codes outside the enumeration
// share the crosswalk colour.
func (t PolygonType) Color() color.Color {
	if !t.known() {
		return polygonTypeStyles[PolygonCrosswalk].color
	}
	return polygonTypeStyles[t].color
}

// TrafficLightStatus is the signal state controlling a map polygon.
type TrafficLightStatus int

const (
	TrafficLightUnknown TrafficLightStatus = iota
	TrafficLightGreen
	TrafficLightYellow
	TrafficLightRed
)

var trafficLightStyles = [...]struct {
	name  string
	color color.RGBA
}{
	TrafficLightUnknown: {"Unknown", paletteGray},
	TrafficLightGreen:   {"Green", color.RGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}},
	TrafficLightYellow:  {"Yellow", color.RGBA{R: 0xFF, G: 0xEB, B: 0x3B, A: 0xFF}},
	TrafficLightRed:     {"Red", color.RGBA{R: 0xF4, G: 0x43, B: 0x36, A: 0xFF}},
}

func (s TrafficLightStatus) known() bool {
	return s >= 0 && int(s) < len(trafficLightStyles)
}

func (s TrafficLightStatus) String() string {
	if !s.known() {
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
	return trafficLightStyles[s].name
}

// Color returns the signal palette entry. Unknown codes are gray.
func (s TrafficLightStatus) Color() color.Color {
	if !s.known() {
		return paletteGray
	}
	return trafficLightStyles[s].color
}

var (
	paletteGray    = color.RGBA{R: 0x9E, G: 0x9E, B: 0x9E, A: 0xFF}
	paletteOnRoute = color.RGBA{R: 0x21, G: 0x96, B: 0xF3, A: 0xFF}
	paletteEgo     = color.RGBA{R: 0xF4, G: 0x43, B: 0x36, A: 0xFF}
)

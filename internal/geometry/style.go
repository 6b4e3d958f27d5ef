package geometry

// FillStyle selects the fill pattern used when a shape is drawn.
type FillStyle string

const (
	FillHachure    FillStyle = "hachure"
	FillCrossHatch FillStyle = "cross-hatch"
	FillSolid      FillStyle = "solid"
)

// EdgeStyle is the corner-radius category for rectangles and diamonds.
// The numeric value is the corner radius in canvas units, matching the wire
// format.
type EdgeStyle float64

const (
	EdgeSharp EdgeStyle = 0
	EdgeRound EdgeStyle = 20
)

// Arrowhead selects how an arrow terminates.
type Arrowhead string

const (
	ArrowheadArrow           Arrowhead = "arrow"
	ArrowheadTriangle        Arrowhead = "triangle"
	ArrowheadTriangleOutline Arrowhead = "triangleOutline"
)

// Options carries the style attributes shared by every shape variant.
// Roughness is serialized as "sloppiness" for compatibility with the wire
// format.
type Options struct {
	Stroke      string    `json:"stroke,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	StrokeDash  float64   `json:"strokeDashOffset,omitempty"`
	FillStyle   FillStyle `json:"fillStyle,omitempty"`
	Roughness   float64   `json:"sloppiness,omitempty"`
}

package model

// Position is a 3D coordinate. Z defaults to 0 for planar layouts.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation is an angle around an axis. The default axis is Z, matching the
// planar rotation convention of the simulation engine.
type Rotation struct {
	Angle float64 `json:"angle"`
	AxisX float64 `json:"axisX"`
	AxisY float64 `json:"axisY"`
	AxisZ float64 `json:"axisZ"`
}

// NewRotation returns a rotation around the default Z axis.
func NewRotation(angle float64) Rotation {
	return Rotation{Angle: angle, AxisZ: 1.0}
}

// Boundary describes object dimensions.
type Boundary struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// NewBoundary returns a boundary with the default height (1.0) and unit
// ("meter") applied where the arguments are zero-valued.
func NewBoundary(width, depth, height float64, unit string) Boundary {
	if height == 0 {
		height = 1.0
	}
	if unit == "" {
		unit = "meter"
	}
	return Boundary{Width: width, Depth: depth, Height: height, Unit: unit}
}

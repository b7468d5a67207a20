// Package geom provides the small amount of 3D geometry the circuit
// calculator needs: device connection points and straight-line distance
// between them. Coordinates are in feet, matching the wire-length units
// used everywhere else.
package geom

import "math"

// Point is a device connection point in 3D space, in feet.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
	Z float64 `json:"z" toml:"z"`
}

// Distance returns the straight-line distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

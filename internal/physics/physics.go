// Package physics provides hit testing and distance utilities.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(DistanceSquared(x1, y1, x2, y2))
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// PointInCircle checks if a point is within radius of a target position.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) <= radius*radius
}

// PointInEllipse checks if a point lies inside the axis-aligned ellipse
// centered at (cx, cy) with radii rx and ry. A disc drawn on a canvas whose
// axes scale differently is an ellipse in logical space.
func PointInEllipse(px, py, cx, cy, rx, ry float64) bool {
	if rx <= 0 || ry <= 0 {
		return false
	}
	dx := (px - cx) / rx
	dy := (py - cy) / ry
	return dx*dx+dy*dy <= 1
}

// Nearest returns the index of the point closest to (px, py) among those
// within radius, or -1 if none is.
func Nearest(px, py, radius float64, xs, ys []float64) int {
	best := -1
	bestDist := radius * radius
	for i := range xs {
		if d := DistanceSquared(px, py, xs[i], ys[i]); d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

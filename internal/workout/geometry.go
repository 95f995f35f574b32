package workout

import "math"

// vectors shorter than this are considered degenerate (coincident joints)
const degenerateVectorEpsilon = 1e-6

// Angle returns the angle in degrees at vertex b, between the rays b->a
// and b->c. The second return value is false when either vector is
// degenerate, i.e. no meaningful angle exists for the triple.
func Angle(a, b, c Keypoint) (float64, bool) {
	v1x, v1y := a.X-b.X, a.Y-b.Y
	v2x, v2y := c.X-b.X, c.Y-b.Y

	norm1 := math.Hypot(v1x, v1y)
	norm2 := math.Hypot(v2x, v2y)
	if norm1 < degenerateVectorEpsilon || norm2 < degenerateVectorEpsilon {
		return 0, false
	}

	cosine := (v1x*v2x + v1y*v2y) / (norm1 * norm2)
	cosine = math.Max(-1, math.Min(1, cosine))

	deg := math.Acos(cosine) * 180 / math.Pi
	if deg < 0 || deg > 180 {
		return 0, false
	}
	return deg, true
}

package game

import "math"

// Vec3 is a world-space vector. Units are meters, Y is up and the arena
// floor is the XZ plane.
type Vec3 struct {
	X, Y, Z float64
}

// V3 is shorthand for constructing a Vec3.
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3         { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3         { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3    { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64      { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64            { return math.Sqrt(v.Dot(v)) }
func (v Vec3) Dist(o Vec3) float64     { return v.Sub(o).Len() }
func (v Vec3) Flat() Vec3              { return Vec3{v.X, 0, v.Z} }
func (v Vec3) FlatDist(o Vec3) float64 { return math.Hypot(v.X-o.X, v.Z-o.Z) }

// degenerateLen is the magnitude below which a direction cannot be normalized.
const degenerateLen = 1e-9

// Normalize returns the unit vector along v. The bool is false when v is too
// short to carry a direction; callers treat that as a no-op.
func (v Vec3) Normalize() (Vec3, bool) {
	l := v.Len()
	if l < degenerateLen || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec3{}, false
	}
	return v.Scale(1 / l), true
}

// Reflect mirrors v about the plane with normal n: r = v - 2(v·n)n.
// n is expected to be unit length.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return v.Sub(n.Scale(2 * v.Dot(n)))
}

// Lerp interpolates between v and o by t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

// HeadingOf returns the yaw angle (radians) of v on the floor plane.
// 0 faces +X, pi/2 faces +Z.
func HeadingOf(v Vec3) float64 {
	return math.Atan2(v.Z, v.X)
}

// HeadingVec returns the unit floor-plane vector for a yaw angle.
func HeadingVec(yaw float64) Vec3 {
	return Vec3{math.Cos(yaw), 0, math.Sin(yaw)}
}

// DirFromAngles builds a unit direction from yaw (floor plane) and pitch
// (positive is up).
func DirFromAngles(yaw, pitch float64) Vec3 {
	cp := math.Cos(pitch)
	return Vec3{math.Cos(yaw) * cp, math.Sin(pitch), math.Sin(yaw) * cp}
}

// AnglesOf is the inverse of DirFromAngles for a unit vector.
func AnglesOf(dir Vec3) (yaw, pitch float64) {
	yaw = math.Atan2(dir.Z, dir.X)
	pitch = math.Asin(math.Max(-1, math.Min(1, dir.Y)))
	return yaw, pitch
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// turnToward rotates heading toward target by at most maxStep radians.
func turnToward(heading, target, maxStep float64) float64 {
	diff := normalizeAngle(target - heading)
	if math.Abs(diff) <= maxStep {
		return target
	}
	if diff > 0 {
		return normalizeAngle(heading + maxStep)
	}
	return normalizeAngle(heading - maxStep)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

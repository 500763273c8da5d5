package game

import "math"

// Box is an axis-aligned box in world space.
type Box struct {
	Min, Max Vec3
}

// BoxAt builds a box from a floor-plane footprint and a height, resting on y=0.
func BoxAt(x, z, w, d, h float64) Box {
	return Box{Min: Vec3{x, 0, z}, Max: Vec3{x + w, h, z + d}}
}

// Contains reports whether p lies inside (or on) the box.
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// segmentBoxHitT returns the first segment parameter t in [0,1] where the
// segment a->b enters the box, plus the outward face normal at that point.
// When a starts inside the box t is 0 and the normal opposes the segment.
func segmentBoxHitT(a, b Vec3, box Box) (float64, Vec3, bool) {
	d := b.Sub(a)
	origin := [3]float64{a.X, a.Y, a.Z}
	dir := [3]float64{d.X, d.Y, d.Z}
	lo := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}

	tMin := 0.0
	tMax := 1.0
	entryAxis := -1
	entrySign := 0.0

	for axis := 0; axis < 3; axis++ {
		if math.Abs(dir[axis]) < 1e-12 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, Vec3{}, false
			}
			continue
		}
		invD := 1.0 / dir[axis]
		t1 := (lo[axis] - origin[axis]) * invD
		t2 := (hi[axis] - origin[axis]) * invD
		sign := -1.0 // entering through the min face
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tMin {
			tMin = t1
			entryAxis = axis
			entrySign = sign
		}
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, Vec3{}, false
		}
	}

	if tMax < 0 || tMin > 1 {
		return 0, Vec3{}, false
	}

	var n Vec3
	switch entryAxis {
	case 0:
		n = Vec3{X: entrySign}
	case 1:
		n = Vec3{Y: entrySign}
	case 2:
		n = Vec3{Z: entrySign}
	default:
		// Started inside: push back along the segment.
		if u, ok := d.Normalize(); ok {
			n = u.Scale(-1)
		} else {
			n = Vec3{Y: 1}
		}
	}
	return tMin, n, true
}

// segmentIntersectsBox checks if the segment a->b touches the box.
func segmentIntersectsBox(a, b Vec3, box Box) bool {
	_, _, hit := segmentBoxHitT(a, b, box)
	return hit
}

// HasLineOfSight returns true if the segment from a to b does not intersect
// any wall box.
func HasLineOfSight(a, b Vec3, walls []Box) bool {
	for _, w := range walls {
		if segmentIntersectsBox(a, b, w) {
			return false
		}
	}
	return true
}

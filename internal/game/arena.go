package game

import (
	"math"
	"math/rand"
)

// SpawnProvider supplies spawn candidates and ground projection to the
// wave scheduler.
type SpawnProvider interface {
	SpawnPoints() []Vec3
	// GroundProject returns the nearest walkable floor point to p.
	GroundProject(p Vec3) (Vec3, bool)
}

// Arena is the static level geometry: walls, spawn points and the nav grid
// rasterized from them.
type Arena struct {
	Width       float64
	Depth       float64
	Walls       []Box
	PlayerStart Vec3
	Nav         *NavGrid

	spawns []Vec3
}

// groundSearchRings bounds how far GroundProject looks for a walkable cell.
const groundSearchRings = 8

// NewArena builds the arena from configuration. agentRadius pads walls in
// the nav grid.
func NewArena(cfg ArenaConfig, agentRadius float64) *Arena {
	a := &Arena{
		Width:       cfg.Width,
		Depth:       cfg.Depth,
		PlayerStart: Vec3{X: cfg.PlayerStart.X, Z: cfg.PlayerStart.Z},
	}
	for _, w := range cfg.Walls {
		a.Walls = append(a.Walls, BoxAt(w.X, w.Z, w.W, w.D, w.H))
	}
	for _, p := range cfg.SpawnPoints {
		a.spawns = append(a.spawns, Vec3{X: p.X, Z: p.Z})
	}
	a.Nav = NewNavGrid(cfg.Width, cfg.Depth, cfg.CellSize, a.Walls, agentRadius)
	return a
}

// Geometry returns the wall boxes shots collide with.
func (a *Arena) Geometry() []Box { return a.Walls }

// SpawnPoints returns the configured spawn candidates.
func (a *Arena) SpawnPoints() []Vec3 { return a.spawns }

// GroundProject drops p onto the floor and moves it to the nearest walkable
// cell.
func (a *Arena) GroundProject(p Vec3) (Vec3, bool) {
	return a.Nav.NearestWalkable(Vec3{X: p.X, Z: p.Z}, groundSearchRings)
}

// PickSpawnPoint chooses a random spawn point, jitters it within radius and
// projects it onto walkable ground.
func PickSpawnPoint(sp SpawnProvider, rng *rand.Rand, jitter float64) (Vec3, bool) {
	points := sp.SpawnPoints()
	if len(points) == 0 {
		return Vec3{}, false
	}
	base := points[rng.Intn(len(points))]
	return sp.GroundProject(base.Add(randomInDisc(rng, jitter)))
}

// RandomPointNear returns a walkable point within radius of center.
func (a *Arena) RandomPointNear(rng *rand.Rand, center Vec3, radius float64) (Vec3, bool) {
	for range 8 {
		p := center.Flat().Add(randomInDisc(rng, radius))
		if a.Nav.Walkable(p) {
			return p, true
		}
	}
	return Vec3{}, false
}

// PathClear reports whether an agent can walk straight from a to b.
func (a *Arena) PathClear(from, to Vec3) bool {
	return a.Nav.LineWalkable(from, to)
}

// Move applies a floor displacement, sliding along blocked cells one axis
// at a time. The result is always walkable if from was.
func (a *Arena) Move(from, delta Vec3) Vec3 {
	to := Vec3{X: from.X + delta.X, Y: from.Y, Z: from.Z + delta.Z}
	if a.Nav.Walkable(to) {
		return to
	}
	if x := (Vec3{X: from.X + delta.X, Y: from.Y, Z: from.Z}); delta.X != 0 && a.Nav.Walkable(x) {
		return x
	}
	if z := (Vec3{X: from.X, Y: from.Y, Z: from.Z + delta.Z}); delta.Z != 0 && a.Nav.Walkable(z) {
		return z
	}
	return from
}

func randomInDisc(rng *rand.Rand, radius float64) Vec3 {
	if radius <= 0 {
		return Vec3{}
	}
	r := radius * math.Sqrt(rng.Float64())
	theta := rng.Float64() * 2 * math.Pi
	return Vec3{X: r * math.Cos(theta), Z: r * math.Sin(theta)}
}

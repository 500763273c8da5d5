package game

import (
	"math"
	"math/rand"
)

// HitKind is what a trajectory ended on.
type HitKind int

const (
	HitNone HitKind = iota
	HitGeometry
	HitTarget
)

func (h HitKind) String() string {
	switch h {
	case HitGeometry:
		return "geometry"
	case HitTarget:
		return "target"
	default:
		return "none"
	}
}

// ShotWorld is everything a trajectory can collide with.
type ShotWorld interface {
	Geometry() []Box
	Targets() []*Agent
}

// AimOffset is an angular perturbation applied to the aim direction, in
// radians. Weapons use it to carry recoil into the engine.
type AimOffset struct {
	Yaw   float64
	Pitch float64
}

// Shot is a request to fire one trigger pull.
type Shot struct {
	Origin    Vec3
	Aim       Vec3
	Weapon    WeaponArchetype
	Aimed     bool
	ShooterID int
	Mask      LayerMask
	Offset    AimOffset
}

// Trace is the outcome of one trajectory (one pellet).
type Trace struct {
	Start    Vec3
	End      Vec3
	Hit      HitKind
	TargetID int
	Normal   Vec3
	Distance float64 // path length travelled before the hit
	Damage   int
	Critical bool
	Killed   bool
	// Penetration is the single reflected hop taken after a target hit,
	// nil when the weapon has no penetration or nothing was hit.
	Penetration *Trace
}

// ShotResult collects the traces of one trigger pull.
type ShotResult struct {
	Traces []Trace
}

// Hits counts traces that struck a target, including penetration hops.
func (r ShotResult) Hits() int {
	n := 0
	for _, t := range r.Traces {
		if t.Hit == HitTarget {
			n++
		}
		if t.Penetration != nil && t.Penetration.Hit == HitTarget {
			n++
		}
	}
	return n
}

// TotalDamage sums the damage of every target hit.
func (r ShotResult) TotalDamage() int {
	n := 0
	for _, t := range r.Traces {
		n += t.Damage
		if t.Penetration != nil {
			n += t.Penetration.Damage
		}
	}
	return n
}

// BallisticEngine steps shot trajectories through the world and applies
// damage to whatever they strike.
type BallisticEngine struct {
	Gravity              float64
	StepTime             float64
	MaxSteps             int
	PenetrationReduction float64
	PenetrationRange     float64
	HeadFraction         float64

	world ShotWorld
	rng   *rand.Rand
	emit  func(Event)
}

// NewBallisticEngine creates an engine over the given world. emit may be nil.
func NewBallisticEngine(cfg SimConfig, world ShotWorld, rng *rand.Rand, emit func(Event)) *BallisticEngine {
	if rng == nil {
		rng = rand.New(rand.NewSource(1)) // #nosec G404 -- game only
	}
	if emit == nil {
		emit = func(Event) {}
	}
	step := cfg.StepTime
	if step <= 0 {
		step = 1.0 / 120
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 512
	}
	return &BallisticEngine{
		Gravity:              cfg.Gravity,
		StepTime:             step,
		MaxSteps:             maxSteps,
		PenetrationReduction: clamp01(cfg.PenetrationReduction),
		PenetrationRange:     cfg.PenetrationRange,
		HeadFraction:         cfg.HeadFraction,
		world:                world,
		rng:                  rng,
		emit:                 emit,
	}
}

// Rand exposes the engine's random source for spread-adjacent randomness
// such as recoil.
func (e *BallisticEngine) Rand() *rand.Rand { return e.rng }

// FalloffDamage is round(base * clamp01(1 - dist/range)). Beyond range the
// result is 0.
func FalloffDamage(base int, dist, maxRange float64) int {
	if maxRange <= 0 || base <= 0 {
		return 0
	}
	mult := clamp01(1 - dist/maxRange)
	return int(math.Round(float64(base) * mult))
}

// Fire resolves one trigger pull: one trajectory per pellet, each with its
// own spread sample. A degenerate aim direction fires nothing.
func (e *BallisticEngine) Fire(shot Shot) ShotResult {
	aim, ok := shot.Aim.Normalize()
	if !ok {
		return ShotResult{}
	}
	e.emit(Event{
		Kind:     EventFire,
		AgentID:  shot.ShooterID,
		SourceID: shot.ShooterID,
		Position: shot.Origin,
		Weapon:   shot.Weapon.Kind,
	})

	spreadDeg := shot.Weapon.HipSpread
	if shot.Aimed {
		spreadDeg = shot.Weapon.AimSpread
	}
	spread := spreadDeg * math.Pi / 180

	yaw, pitch := AnglesOf(aim)
	yaw += shot.Offset.Yaw
	pitch += shot.Offset.Pitch

	pellets := max(1, shot.Weapon.Pellets)
	res := ShotResult{Traces: make([]Trace, 0, pellets)}
	for range pellets {
		dir := DirFromAngles(yaw+e.spreadSample(spread), pitch+e.spreadSample(spread))
		res.Traces = append(res.Traces, e.fireTrajectory(shot, dir))
	}
	return res
}

// spreadSample draws a triangular-distributed offset in [-spread, spread],
// denser toward the aim line.
func (e *BallisticEngine) spreadSample(spread float64) float64 {
	if spread <= 0 {
		return 0
	}
	return spread * (e.rng.Float64() + e.rng.Float64() - 1)
}

func (e *BallisticEngine) fireTrajectory(shot Shot, dir Vec3) Trace {
	w := shot.Weapon
	speed := w.MuzzleVelocity
	if speed <= 0 {
		speed = 400
	}
	pos := shot.Origin
	vel := dir.Scale(speed)
	traveled := 0.0
	tr := Trace{Start: shot.Origin, End: shot.Origin, TargetID: -1}

	for step := 0; step < e.MaxSteps; step++ {
		vel.Y -= e.Gravity * e.StepTime
		next := pos.Add(vel.Scale(e.StepTime))
		segLen := next.Dist(pos)
		if segLen < degenerateLen {
			break
		}
		last := false
		if traveled+segLen >= w.Range {
			frac := (w.Range - traveled) / segLen
			next = pos.Lerp(next, frac)
			segLen = w.Range - traveled
			last = true
		}

		if h, ok := e.sweep(pos, next, shot.Mask, shot.ShooterID, nil); ok {
			tr.End = h.point
			tr.Normal = h.normal
			tr.Distance = traveled + segLen*h.t
			travelDir, _ := vel.Normalize()
			e.resolve(&tr, h, travelDir, shot)
			return tr
		}
		traveled += segLen
		pos = next
		if last {
			break
		}
	}
	tr.End = pos
	tr.Distance = traveled
	return tr
}

// resolve applies the effect of a trajectory ending on h, including the
// single penetration hop.
func (e *BallisticEngine) resolve(tr *Trace, h sweepHit, travelDir Vec3, shot Shot) {
	w := shot.Weapon
	if h.target == nil {
		tr.Hit = HitGeometry
		e.emitImpact(h, shot.ShooterID, w.Kind)
		return
	}
	tr.Hit = HitTarget
	tr.TargetID = h.target.ID
	dmg := FalloffDamage(w.Damage, tr.Distance, w.Range)
	tr.Damage, tr.Critical, tr.Killed = e.damageTarget(h.target, h.point, h.normal, dmg, w, shot.ShooterID)

	if w.Penetration <= 0 {
		return
	}
	penDmg := int(math.Round(float64(dmg) * (1 - e.PenetrationReduction)))
	tr.Penetration = e.penetrate(h, travelDir, penDmg, shot)
}

// penetrate casts one short straight ray from the hit point along the
// travel direction reflected about the surface normal.
func (e *BallisticEngine) penetrate(first sweepHit, travelDir Vec3, dmg int, shot Shot) *Trace {
	dir, ok := travelDir.Reflect(first.normal).Normalize()
	if !ok {
		return nil
	}
	length := e.PenetrationRange * shot.Weapon.Penetration
	if length <= 0 {
		return nil
	}
	start := first.point.Add(dir.Scale(1e-3))
	end := start.Add(dir.Scale(length))
	pen := &Trace{Start: start, End: end, TargetID: -1}

	h, ok := e.sweep(start, end, shot.Mask, shot.ShooterID, first.target)
	if !ok {
		return pen
	}
	pen.End = h.point
	pen.Normal = h.normal
	pen.Distance = length * h.t
	if h.target == nil {
		pen.Hit = HitGeometry
		e.emitImpact(h, shot.ShooterID, shot.Weapon.Kind)
		return pen
	}
	pen.Hit = HitTarget
	pen.TargetID = h.target.ID
	pen.Damage, pen.Critical, pen.Killed = e.damageTarget(h.target, h.point, h.normal, dmg, shot.Weapon, shot.ShooterID)
	return pen
}

// damageTarget applies a hit of dmg (before the critical multiplier).
// The hit event is emitted before the damage so that any death the damage
// causes is reported after it.
func (e *BallisticEngine) damageTarget(target *Agent, point, normal Vec3, dmg int, w WeaponArchetype, shooterID int) (int, bool, bool) {
	crit := target.isHead(point, e.HeadFraction)
	if crit && w.CriticalMultiplier > 0 {
		dmg = int(math.Round(float64(dmg) * w.CriticalMultiplier))
	}
	e.emit(Event{
		Kind:      EventHit,
		AgentID:   target.ID,
		AgentKind: target.Kind,
		SourceID:  shooterID,
		Position:  point,
		Normal:    normal,
		HasNormal: true,
		Weapon:    w.Kind,
		Damage:    dmg,
		Critical:  crit,
	})
	wasDead := target.Health.Dead()
	target.Health.ApplyDamage(DamageInfo{
		Amount:   dmg,
		SourceID: shooterID,
		Critical: crit,
		Point:    point,
		Weapon:   w.Kind,
	})
	return dmg, crit, !wasDead && target.Health.Dead()
}

func (e *BallisticEngine) emitImpact(h sweepHit, shooterID int, weapon WeaponKind) {
	e.emit(Event{
		Kind:      EventImpact,
		AgentID:   -1,
		SourceID:  shooterID,
		Position:  h.point,
		Normal:    h.normal,
		HasNormal: true,
		Weapon:    weapon,
	})
}

type sweepHit struct {
	t      float64
	point  Vec3
	normal Vec3
	target *Agent // nil for geometry
}

// sweep finds the nearest collidable on segment a->b within mask. The
// shooter and skip are never struck, and dead or nil targets are misses.
func (e *BallisticEngine) sweep(a, b Vec3, mask LayerMask, shooterID int, skip *Agent) (sweepHit, bool) {
	best := sweepHit{t: math.Inf(1)}
	found := false
	if e.world == nil {
		return best, false
	}
	if mask.Has(LayerGeometry) {
		for _, w := range e.world.Geometry() {
			if t, n, ok := segmentBoxHitT(a, b, w); ok && t < best.t {
				best = sweepHit{t: t, normal: n}
				found = true
			}
		}
	}
	for _, ag := range e.world.Targets() {
		if ag == nil || ag == skip || ag.ID == shooterID || !ag.Alive() || !mask.Has(ag.Layer()) {
			continue
		}
		if t, n, ok := segmentBoxHitT(a, b, ag.Hitbox()); ok && t < best.t {
			best = sweepHit{t: t, normal: n, target: ag}
			found = true
		}
	}
	if found {
		best.point = a.Lerp(b, best.t)
	}
	return best, found
}

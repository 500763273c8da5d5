package game

// Projectile is a slow shot that lives across ticks. It is stepped with the
// same gravity and segment tests as an instant trajectory.
type Projectile struct {
	ID        int
	Pos       Vec3
	Vel       Vec3
	ShooterID int
	TargetID  int
	Weapon    WeaponArchetype
	Mask      LayerMask

	traveled float64
	steps    int
	done     bool
	trail    Vec3 // position at the start of the last advance, for drawing
}

// NewProjectile aims a projectile from origin toward target at the weapon's
// muzzle velocity. The bool is false for a degenerate aim.
func NewProjectile(id int, origin, target Vec3, w WeaponArchetype, shooterID, targetID int, mask LayerMask) (*Projectile, bool) {
	dir, ok := target.Sub(origin).Normalize()
	if !ok {
		return nil, false
	}
	speed := w.MuzzleVelocity
	if speed <= 0 {
		speed = 20
	}
	return &Projectile{
		ID:        id,
		Pos:       origin,
		Vel:       dir.Scale(speed),
		ShooterID: shooterID,
		TargetID:  targetID,
		Weapon:    w,
		Mask:      mask,
		trail:     origin,
	}, true
}

// Done reports whether the projectile has resolved or expired.
func (p *Projectile) Done() bool { return p.done }

// Cancel drops the projectile without resolving it.
func (p *Projectile) Cancel() { p.done = true }

// Trail is where the projectile was before its latest advance.
func (p *Projectile) Trail() Vec3 { return p.trail }

// Traveled is the path length covered so far.
func (p *Projectile) Traveled() float64 { return p.traveled }

// Advance moves p forward by dt seconds in engine-sized substeps. It returns
// the trace once the projectile strikes something or runs out of range or
// steps; the bool is false while it is still in flight.
func (e *BallisticEngine) Advance(p *Projectile, dt float64) (Trace, bool) {
	if p.done {
		return Trace{}, false
	}
	p.trail = p.Pos
	remaining := dt
	for remaining > 1e-12 {
		if p.steps >= e.MaxSteps {
			return e.expire(p), true
		}
		h := e.StepTime
		if remaining < h {
			h = remaining
		}
		remaining -= h
		p.steps++

		p.Vel.Y -= e.Gravity * h
		next := p.Pos.Add(p.Vel.Scale(h))
		segLen := next.Dist(p.Pos)
		if segLen < degenerateLen {
			continue
		}
		last := false
		if p.traveled+segLen >= p.Weapon.Range {
			frac := (p.Weapon.Range - p.traveled) / segLen
			next = p.Pos.Lerp(next, frac)
			segLen = p.Weapon.Range - p.traveled
			last = true
		}

		if hit, ok := e.sweep(p.Pos, next, p.Mask, p.ShooterID, nil); ok {
			p.done = true
			tr := Trace{
				Start:    p.trail,
				End:      hit.point,
				Normal:   hit.normal,
				Distance: p.traveled + segLen*hit.t,
				TargetID: -1,
			}
			p.Pos = hit.point
			p.traveled = tr.Distance
			travelDir, _ := p.Vel.Normalize()
			e.resolve(&tr, hit, travelDir, Shot{
				Origin:    tr.Start,
				Weapon:    p.Weapon,
				ShooterID: p.ShooterID,
				Mask:      p.Mask,
			})
			return tr, true
		}
		p.traveled += segLen
		p.Pos = next
		if last {
			return e.expire(p), true
		}
	}
	return Trace{}, false
}

func (e *BallisticEngine) expire(p *Projectile) Trace {
	p.done = true
	return Trace{Start: p.trail, End: p.Pos, Distance: p.traveled, TargetID: -1}
}

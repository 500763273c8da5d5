package game

import "math"

// AIState is a hostile's behaviour state. Death is not a state: a dead
// agent's brain is disabled and the agent is removed after a grace delay.
type AIState int

const (
	AIStatePatrol AIState = iota
	AIStateChase
	AIStateAttack
)

func (s AIState) String() string {
	switch s {
	case AIStatePatrol:
		return "patrol"
	case AIStateChase:
		return "chase"
	case AIStateAttack:
		return "attack"
	default:
		return "unknown"
	}
}

// patrolSpeedFactor slows agents to a walk while patrolling.
const patrolSpeedFactor = 0.5

// Brain is the per-hostile state machine. Every wait is a deadline on the
// sim clock.
type Brain struct {
	state   AIState
	enabled bool

	patrolPoint Vec3
	hasPoint    bool
	dwelling    bool
	dwellUntil  float64

	cooldownUntil float64

	path     []Vec3
	pathIdx  int
	repathAt float64

	transitions int
}

// NewBrain starts in Patrol.
func NewBrain() *Brain {
	return &Brain{state: AIStatePatrol, enabled: true}
}

func (b *Brain) State() AIState         { return b.state }
func (b *Brain) Enabled() bool          { return b.enabled }
func (b *Brain) Transitions() int       { return b.transitions }
func (b *Brain) PatrolPoint() Vec3      { return b.patrolPoint }
func (b *Brain) CooldownUntil() float64 { return b.cooldownUntil }

// Disable freezes the brain; no further transitions happen.
func (b *Brain) Disable() { b.enabled = false }

// nextState evaluates the transition table once. At most one transition
// happens per evaluation.
func nextState(cur AIState, dist, detect, attack float64, detected bool) AIState {
	switch cur {
	case AIStatePatrol:
		if dist <= detect && detected {
			return AIStateChase
		}
	case AIStateChase:
		if dist > detect {
			return AIStatePatrol
		}
		if dist <= attack {
			return AIStateAttack
		}
	case AIStateAttack:
		if dist > detect {
			return AIStatePatrol
		}
		if dist > attack {
			return AIStateChase
		}
	}
	return cur
}

// think runs one AI tick for a live hostile.
func (s *Sim) think(a *Agent) {
	b := a.Brain
	if b == nil || !b.enabled || !a.Alive() {
		return
	}
	target := s.player.Agent
	if !target.Alive() {
		if b.state != AIStatePatrol {
			s.logger.Warn("target lost", "agent", a.Label(), "state", b.state)
			s.setState(a, AIStatePatrol)
		}
		s.patrol(a)
		return
	}

	dist := a.Pos.FlatDist(target.Pos)
	detected := true
	if b.state == AIStatePatrol && s.cfg.Sim.RequireLineOfSight {
		detected = HasLineOfSight(a.Eye(), target.Eye(), s.arena.Walls)
	}
	if next := nextState(b.state, dist, a.Arch.DetectionRange, a.Arch.AttackRange, detected); next != b.state {
		s.setState(a, next)
	}

	switch b.state {
	case AIStatePatrol:
		s.patrol(a)
	case AIStateChase:
		s.chase(a, target)
	case AIStateAttack:
		s.attack(a, target)
	}
}

func (s *Sim) setState(a *Agent, next AIState) {
	b := a.Brain
	prev := b.state
	b.state = next
	b.transitions++
	b.path = nil
	b.hasPoint = false
	b.dwelling = false

	s.simLog.Add(s.tick, a.Label(), string(a.Kind), "ai", "state", prev.String()+" → "+next.String(), float64(next))
	if next == AIStateChase {
		s.bus.emit(Event{
			Kind:      EventAlert,
			AgentID:   a.ID,
			AgentKind: a.Kind,
			SourceID:  -1,
			Position:  a.Eye(),
			Wave:      a.wave,
		})
	}
}

func (s *Sim) patrol(a *Agent) {
	b := a.Brain
	if b.dwelling {
		if s.now < b.dwellUntil {
			return
		}
		b.dwelling = false
		b.hasPoint = false
	}
	if !b.hasPoint {
		p, ok := s.arena.RandomPointNear(s.rng, a.Spawn, s.cfg.Sim.PatrolRadius)
		if !ok {
			return
		}
		b.patrolPoint = p
		b.hasPoint = true
	}
	if a.Pos.FlatDist(b.patrolPoint) <= s.cfg.Sim.ArriveThreshold {
		b.dwelling = true
		b.dwellUntil = s.now + s.cfg.Sim.PatrolDwell
		return
	}
	if moved := s.steer(a, b.patrolPoint, a.Arch.Speed*patrolSpeedFactor, 0); moved < 1e-6 {
		// Wedged against geometry; choose somewhere else next tick.
		b.hasPoint = false
	}
}

func (s *Sim) chase(a *Agent, target *Agent) {
	b := a.Brain
	standoff := a.Arch.Radius + target.Arch.Radius
	if s.arena.PathClear(a.Pos, target.Pos) {
		b.path = nil
		s.steer(a, target.Pos, a.Arch.Speed, standoff)
		return
	}
	if b.path == nil || s.now >= b.repathAt {
		b.path = s.arena.Nav.FindPath(a.Pos, target.Pos)
		b.pathIdx = 0
		if len(b.path) > 1 {
			b.pathIdx = 1
		}
		b.repathAt = s.now + s.cfg.Sim.RepathInterval
	}
	if b.pathIdx >= len(b.path) {
		s.steer(a, target.Pos, a.Arch.Speed, standoff)
		return
	}
	wp := b.path[b.pathIdx]
	if a.Pos.FlatDist(wp) <= s.cfg.Sim.ArriveThreshold {
		b.pathIdx++
	}
	s.steer(a, wp, a.Arch.Speed, 0)
}

func (s *Sim) attack(a *Agent, target *Agent) {
	b := a.Brain
	s.face(a, target.Pos)
	if s.now < b.cooldownUntil {
		return
	}
	if a.Arch.Ranged {
		if !HasLineOfSight(a.Eye(), target.Chest(), s.arena.Walls) {
			s.steer(a, target.Pos, a.Arch.Speed, a.Arch.Radius+target.Arch.Radius)
			return
		}
		s.rangedAttack(a, target)
	} else {
		s.meleeAttack(a)
	}
	b.cooldownUntil = s.now + a.Arch.AttackCooldown
}

// meleeAttack strikes every player-layer target within MeleeRadius of the
// point MeleeReach ahead of the agent.
func (s *Sim) meleeAttack(a *Agent) {
	origin := a.Pos.Add(a.Forward().Scale(a.Arch.MeleeReach))
	for _, t := range s.Targets() {
		if t == nil || !t.Alive() || t.Layer() != LayerPlayer {
			continue
		}
		if origin.FlatDist(t.Pos) > a.Arch.MeleeRadius+t.Arch.Radius {
			continue
		}
		s.bus.emit(Event{
			Kind:      EventHit,
			AgentID:   t.ID,
			AgentKind: t.Kind,
			SourceID:  a.ID,
			Position:  t.Chest(),
			Damage:    a.Arch.MeleeDamage,
		})
		t.Health.ApplyDamage(DamageInfo{
			Amount:   a.Arch.MeleeDamage,
			SourceID: a.ID,
			Point:    t.Chest(),
		})
	}
}

func (s *Sim) rangedAttack(a *Agent, target *Agent) {
	w, ok := s.cfg.Weapon(a.Arch.Weapon)
	if !ok {
		s.logger.Warn("ranged agent has no weapon archetype", "agent", a.Label(), "weapon", a.Arch.Weapon)
		return
	}
	mask := LayerGeometry | LayerPlayer
	if !a.Arch.Projectile {
		res := s.engine.Fire(Shot{
			Origin:    a.Eye(),
			Aim:       target.Chest().Sub(a.Eye()),
			Weapon:    w,
			ShooterID: a.ID,
			Mask:      mask,
		})
		s.traces = append(s.traces, res.Traces...)
		return
	}

	// Lob: raise the aim point by the gravity drop over the flight time.
	aimAt := target.Chest()
	if w.MuzzleVelocity > 0 {
		t := a.Eye().Dist(aimAt) / w.MuzzleVelocity
		aimAt.Y += 0.5 * s.cfg.Sim.Gravity * t * t
	}
	p, ok := NewProjectile(s.allocID(), a.Eye(), aimAt, w, a.ID, target.ID, mask)
	if !ok {
		return
	}
	s.projectiles = append(s.projectiles, p)
	s.bus.emit(Event{
		Kind:     EventFire,
		AgentID:  a.ID,
		SourceID: a.ID,
		Position: a.Eye(),
		Weapon:   w.Kind,
	})
}

// face turns the agent toward a point at its bounded turn rate.
func (s *Sim) face(a *Agent, p Vec3) {
	d := p.Sub(a.Pos).Flat()
	if d.Len() < 1e-6 {
		return
	}
	maxStep := a.Arch.TurnRate * math.Pi / 180 * s.dt
	a.Heading = turnToward(a.Heading, HeadingOf(d), maxStep)
}

// steer moves the agent straight toward goal at speed, stopping standoff
// short of it, and turns its facing toward the movement direction. It
// returns the distance actually covered.
func (s *Sim) steer(a *Agent, goal Vec3, speed, standoff float64) float64 {
	d := goal.Sub(a.Pos).Flat()
	dist := d.Len()
	if dist <= standoff || dist < 1e-6 {
		return 0
	}
	s.face(a, goal)
	step := math.Min(speed*s.dt, dist-standoff)
	before := a.Pos
	a.Pos = s.arena.Move(a.Pos, d.Scale(step/dist))
	return a.Pos.FlatDist(before)
}

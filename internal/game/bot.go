package game

import "math"

// BotPilot is the scripted input collaborator used for headless runs. It
// aims at the nearest visible hostile, backs away from anything inside its
// danger radius and reloads when nothing is close.
type BotPilot struct {
	DangerRadius float64
	CalmRadius   float64 // no hostile this close means it is safe to reload
	AimDown      bool

	strafe    float64
	strafeFor int
	lastShot  int
}

// NewBotPilot returns a bot with sensible defaults for the default arena.
func NewBotPilot() *BotPilot {
	return &BotPilot{DangerRadius: 6, CalmRadius: 12, AimDown: true, strafe: 1}
}

// Input decides this tick's input for s's player.
func (b *BotPilot) Input(s *Sim) PlayerInput {
	p := s.Player()
	in := PlayerInput{Aimed: b.AimDown}
	if !p.Alive() {
		return in
	}

	var target *Agent
	nearest := math.Inf(1)
	for _, a := range s.Hostiles() {
		if !a.Alive() {
			continue
		}
		d := a.Pos.FlatDist(p.Pos)
		if d < nearest && HasLineOfSight(p.Eye(), a.Chest(), s.Arena().Walls) {
			nearest = d
			target = a
		}
	}

	w := p.Weapon()
	if target == nil {
		if w != nil && w.Magazine() < w.Arch.MagazineSize {
			in.Reload = true
		}
		in.Move = s.Arena().PlayerStart.Sub(p.Pos).Flat()
		if in.Move.Len() < 1 {
			in.Move = Vec3{}
		}
		return in
	}

	in.Aim = target.Chest().Sub(p.Eye())
	in.Select = b.pickSlot(p, nearest)
	if w != nil && w.Magazine() == 0 && nearest > b.CalmRadius {
		in.Reload = true
	}

	// Semi-automatic weapons need the trigger released between shots.
	in.Trigger = true
	if w != nil && !w.Arch.Automatic && b.lastShot == s.CurrentTick()-1 {
		in.Trigger = false
	}
	if in.Trigger {
		b.lastShot = s.CurrentTick()
	}

	if nearest < b.DangerRadius {
		away, _ := p.Pos.Sub(target.Pos).Flat().Normalize()
		side := Vec3{X: -away.Z, Z: away.X}.Scale(b.strafe)
		in.Move = away.Add(side.Scale(0.5))
		b.strafeFor++
		if b.strafeFor > 90 {
			b.strafe = -b.strafe
			b.strafeFor = 0
		}
	}
	return in
}

// pickSlot prefers the shotgun up close and the sniper at range when those
// are carried and loaded. It returns a 1-based slot or 0 to keep the current
// weapon.
func (b *BotPilot) pickSlot(p *Player, dist float64) int {
	want := WeaponAssaultRifle
	switch {
	case dist < 8:
		want = WeaponShotgun
	case dist > 35:
		want = WeaponSniper
	}
	for i, w := range p.Weapons {
		if w.Kind() == want && (w.Magazine() > 0 || w.Reserve() > 0) {
			if i == p.CurrentSlot() {
				return 0
			}
			return i + 1
		}
	}
	if cur := p.Weapon(); cur != nil && cur.Magazine() == 0 && cur.Reserve() == 0 {
		for i, w := range p.Weapons {
			if w.Magazine() > 0 {
				return i + 1
			}
		}
	}
	return 0
}

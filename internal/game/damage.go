package game

// DamageInfo describes one application of damage.
type DamageInfo struct {
	Amount   int
	SourceID int  // agent that dealt the damage, or -1 for the environment
	Critical bool // head-zone hit
	Point    Vec3
	Weapon   WeaponKind // empty for melee
}

// DamageTarget is the health/damage contract every agent exposes.
type DamageTarget interface {
	Health() int
	MaxHealth() int
	Dead() bool
	// ApplyDamage returns the health actually removed.
	ApplyDamage(info DamageInfo) int
	// ApplyHeal returns the health actually restored.
	ApplyHeal(amount int) int
}

// Health is the standard DamageTarget. Current health is always clamped to
// [0, max]; reaching 0 fires the death listeners exactly once and every
// later damage/heal call is a no-op.
type Health struct {
	current int
	max     int
	dead    bool

	invulnerableFor float64 // seconds remaining

	regenPerSecond float64
	regenDelay     float64 // seconds after the last damage before regen resumes
	sinceDamage    float64
	regenAccum     float64

	lastHit DamageInfo

	onChange []func(prev, cur int)
	onDeath  []func(last DamageInfo)
}

// NewHealth creates a full-health target. A non-positive max is clamped to 1.
func NewHealth(maxHP int) *Health {
	if maxHP < 1 {
		maxHP = 1
	}
	return &Health{current: maxHP, max: maxHP}
}

func (h *Health) Health() int    { return h.current }
func (h *Health) MaxHealth() int { return h.max }
func (h *Health) Dead() bool     { return h.dead }

// Fraction returns current/max in [0,1].
func (h *Health) Fraction() float64 {
	return float64(h.current) / float64(h.max)
}

// LastHit returns the most recent damage that landed.
func (h *Health) LastHit() DamageInfo { return h.lastHit }

// Invulnerable reports whether the invulnerability timer is running.
func (h *Health) Invulnerable() bool { return h.invulnerableFor > 0 }

// SetInvulnerable ignores incoming damage for the given number of seconds.
func (h *Health) SetInvulnerable(seconds float64) {
	if seconds > h.invulnerableFor {
		h.invulnerableFor = seconds
	}
}

// SetRegen enables regeneration of perSecond health, resuming delay seconds
// after the most recent damage. perSecond <= 0 disables it.
func (h *Health) SetRegen(perSecond, delay float64) {
	h.regenPerSecond = perSecond
	h.regenDelay = delay
}

// OnChange registers a listener for health changes.
func (h *Health) OnChange(fn func(prev, cur int)) {
	h.onChange = append(h.onChange, fn)
}

// OnDeath registers a listener for the single death transition.
func (h *Health) OnDeath(fn func(last DamageInfo)) {
	h.onDeath = append(h.onDeath, fn)
}

// ApplyDamage removes health. Negative amounts are treated as zero.
func (h *Health) ApplyDamage(info DamageInfo) int {
	if h.dead || info.Amount <= 0 || h.invulnerableFor > 0 {
		return 0
	}
	prev := h.current
	h.current = clampInt(h.current-info.Amount, 0, h.max)
	h.sinceDamage = 0
	h.regenAccum = 0
	h.lastHit = info
	applied := prev - h.current
	h.notifyChange(prev)
	if h.current == 0 {
		h.dead = true
		for _, fn := range h.onDeath {
			fn(info)
		}
	}
	return applied
}

// ApplyHeal restores health up to max.
func (h *Health) ApplyHeal(amount int) int {
	if h.dead || amount <= 0 {
		return 0
	}
	prev := h.current
	h.current += min(amount, h.max-h.current)
	h.notifyChange(prev)
	return h.current - prev
}

// Update advances the invulnerability timer and regeneration by dt seconds.
func (h *Health) Update(dt float64) {
	if h.dead || dt <= 0 {
		return
	}
	if h.invulnerableFor > 0 {
		h.invulnerableFor -= dt
		if h.invulnerableFor < 0 {
			h.invulnerableFor = 0
		}
	}
	h.sinceDamage += dt
	if h.regenPerSecond <= 0 || h.current >= h.max || h.sinceDamage < h.regenDelay {
		return
	}
	h.regenAccum += h.regenPerSecond * dt
	if whole := int(h.regenAccum); whole > 0 {
		h.regenAccum -= float64(whole)
		h.ApplyHeal(whole)
	}
}

func (h *Health) notifyChange(prev int) {
	if prev == h.current {
		return
	}
	for _, fn := range h.onChange {
		fn(prev, h.current)
	}
}

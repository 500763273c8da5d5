package game

// PlayerInput is what the input/movement collaborator hands the core each
// tick. The core never polls devices itself.
type PlayerInput struct {
	Move    Vec3 // floor-plane direction; longer than 1 is normalized
	Aim     Vec3 // aim direction; zero keeps the previous aim
	Trigger bool
	Aimed   bool // aiming down sights
	Reload  bool
	Select  int // 1-based weapon slot, 0 keeps the current weapon
}

// Player is the single player-controlled agent and its weapon inventory.
type Player struct {
	*Agent
	Weapons []*Weapon
	Aim     Vec3
	Aimed   bool

	current int
}

// NewPlayer creates the player at pos with one weapon per loadout entry.
func NewPlayer(cfg *Config, pos Vec3) *Player {
	arch := AgentArchetype{
		Kind:      AgentPlayer,
		MaxHealth: cfg.Sim.PlayerMaxHealth,
		Speed:     cfg.Sim.PlayerSpeed,
		Radius:    cfg.Sim.PlayerRadius,
		Height:    cfg.Sim.PlayerHeight,
	}
	p := &Player{
		Agent: NewAgent(0, arch, pos, 1),
		Aim:   Vec3{X: 1},
	}
	p.Health.SetRegen(cfg.Sim.PlayerRegen, cfg.Sim.PlayerRegenDelay)
	for _, k := range cfg.Sim.PlayerLoadout {
		if w, ok := cfg.Weapon(k); ok {
			p.Weapons = append(p.Weapons, NewWeapon(w))
		}
	}
	if len(p.Weapons) == 0 && len(cfg.Weapons) > 0 {
		p.Weapons = append(p.Weapons, NewWeapon(cfg.Weapons[0]))
	}
	return p
}

// Weapon returns the selected weapon, or nil with an empty inventory.
func (p *Player) Weapon() *Weapon {
	if p.current < 0 || p.current >= len(p.Weapons) {
		return nil
	}
	return p.Weapons[p.current]
}

// CurrentSlot is the 0-based index of the selected weapon.
func (p *Player) CurrentSlot() int { return p.current }

// SelectWeapon switches to slot i (0-based). Switching away cancels a
// reload in progress. Selecting the current or a missing slot is a no-op.
func (p *Player) SelectWeapon(i int) bool {
	if i < 0 || i >= len(p.Weapons) || i == p.current {
		return false
	}
	if w := p.Weapon(); w != nil {
		w.CancelReload()
	}
	p.current = i
	return true
}

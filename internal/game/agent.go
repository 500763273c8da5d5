package game

import "fmt"

// LayerMask selects which collidable layers a shot can strike.
type LayerMask uint8

const (
	LayerGeometry LayerMask = 1 << iota
	LayerPlayer
	LayerHostile
)

// Has reports whether every bit of l is set in m.
func (m LayerMask) Has(l LayerMask) bool { return m&l == l }

// Agent is any combatant: the player or a hostile. Hostiles carry a Brain;
// the player is driven by PlayerInput.
type Agent struct {
	ID   int
	Kind AgentKind
	Arch AgentArchetype
	Boss bool

	Pos     Vec3    // feet position on the floor
	Heading float64 // yaw, radians
	Spawn   Vec3

	Health *Health
	Brain  *Brain

	wave       int
	spawnTick  int
	removeAt   float64
	pendingDel bool
}

// NewAgent builds an agent from an archetype with health scaled by
// difficulty (1 = archetype health).
func NewAgent(id int, arch AgentArchetype, pos Vec3, difficulty float64) *Agent {
	if difficulty <= 0 {
		difficulty = 1
	}
	hp := int(float64(arch.MaxHealth)*difficulty + 0.5)
	return &Agent{
		ID:     id,
		Kind:   arch.Kind,
		Arch:   arch,
		Pos:    pos,
		Spawn:  pos,
		Health: NewHealth(hp),
	}
}

// Label is a short human-readable identifier, e.g. "grunt#12".
func (a *Agent) Label() string {
	return fmt.Sprintf("%s#%d", a.Kind, a.ID)
}

// Alive reports whether the agent still has health.
func (a *Agent) Alive() bool {
	return a != nil && !a.Health.Dead()
}

// Layer is the collision layer the agent occupies.
func (a *Agent) Layer() LayerMask {
	if a.Kind == AgentPlayer {
		return LayerPlayer
	}
	return LayerHostile
}

// Hitbox is the agent's axis-aligned collision box.
func (a *Agent) Hitbox() Box {
	r := a.Arch.Radius
	return Box{
		Min: Vec3{a.Pos.X - r, a.Pos.Y, a.Pos.Z - r},
		Max: Vec3{a.Pos.X + r, a.Pos.Y + a.Arch.Height, a.Pos.Z + r},
	}
}

// Eye is the origin used for sight checks and shots.
func (a *Agent) Eye() Vec3 {
	return a.Pos.Add(Vec3{Y: a.Arch.Height * 0.9})
}

// Chest is the aim point other agents shoot at.
func (a *Agent) Chest() Vec3 {
	return a.Pos.Add(Vec3{Y: a.Arch.Height * 0.6})
}

// Forward is the unit floor-plane facing vector.
func (a *Agent) Forward() Vec3 {
	return HeadingVec(a.Heading)
}

// State returns the AI state, or AIStatePatrol for agents without a brain.
func (a *Agent) State() AIState {
	if a.Brain == nil {
		return AIStatePatrol
	}
	return a.Brain.State()
}

// Wave is the wave the agent was spawned in.
func (a *Agent) Wave() int { return a.wave }

// isHead reports whether a world point on the hitbox lies in the head zone.
func (a *Agent) isHead(p Vec3, headFraction float64) bool {
	if headFraction <= 0 {
		return false
	}
	top := a.Pos.Y + a.Arch.Height
	return p.Y >= top-a.Arch.Height*headFraction
}

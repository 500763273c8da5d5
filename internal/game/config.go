package game

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration errors are fatal at start-up; the simulation never tries to
// recover from them mid-run.
var (
	ErrNoWeapons      = errors.New("config: weapon archetype table is empty")
	ErrNoAgents       = errors.New("config: agent archetype table is empty")
	ErrNoSpawnPoints  = errors.New("config: arena has no spawn points")
	ErrBadWaveConfig  = errors.New("config: invalid wave table")
	ErrUnknownLoadout = errors.New("config: player loadout references unknown weapon")
)

// WeaponKind identifies a weapon archetype.
type WeaponKind string

const (
	WeaponPistol       WeaponKind = "pistol"
	WeaponAssaultRifle WeaponKind = "assault_rifle"
	WeaponSniper       WeaponKind = "sniper"
	WeaponShotgun      WeaponKind = "shotgun"
	WeaponSpit         WeaponKind = "spit"
)

// RecoilPattern describes the aim kick applied per shot.
type RecoilPattern struct {
	Kick       float64 `yaml:"kick"`       // degrees of pitch per shot
	Yaw        float64 `yaml:"yaw"`        // max degrees of random horizontal kick
	Randomness float64 `yaml:"randomness"` // 0-1 fraction of Kick that is randomized
	Recovery   float64 `yaml:"recovery"`   // seconds for the offset to settle back to zero
}

// WeaponArchetype is the fixed stat block shared by every weapon of a kind.
type WeaponArchetype struct {
	Kind               WeaponKind    `yaml:"kind"`
	Damage             int           `yaml:"damage"`
	FireInterval       float64       `yaml:"fire_interval"` // seconds between shots
	Range              float64       `yaml:"range"`
	HipSpread          float64       `yaml:"hip_spread"` // degrees
	AimSpread          float64       `yaml:"aim_spread"` // degrees
	Pellets            int           `yaml:"pellets"`
	Penetration        float64       `yaml:"penetration"`
	MagazineSize       int           `yaml:"magazine_size"`
	ReserveAmmo        int           `yaml:"reserve_ammo"`
	ReloadTime         float64       `yaml:"reload_time"`
	Automatic          bool          `yaml:"automatic"`
	MuzzleVelocity     float64       `yaml:"muzzle_velocity"` // m/s
	CriticalMultiplier float64       `yaml:"critical_multiplier"`
	Recoil             RecoilPattern `yaml:"recoil"`
}

// AgentKind is the explicit type tag carried by every agent.
type AgentKind string

const (
	AgentPlayer  AgentKind = "player"
	AgentGrunt   AgentKind = "grunt"
	AgentRunner  AgentKind = "runner"
	AgentGunner  AgentKind = "gunner"
	AgentSpitter AgentKind = "spitter"
	AgentBrute   AgentKind = "brute"
)

// AgentArchetype is the stat block for a hostile agent type.
type AgentArchetype struct {
	Kind           AgentKind  `yaml:"kind"`
	MaxHealth      int        `yaml:"max_health"`
	Speed          float64    `yaml:"speed"`     // m/s
	TurnRate       float64    `yaml:"turn_rate"` // degrees per second
	DetectionRange float64    `yaml:"detection_range"`
	AttackRange    float64    `yaml:"attack_range"`
	AttackCooldown float64    `yaml:"attack_cooldown"` // seconds
	Ranged         bool       `yaml:"ranged"`
	Projectile     bool       `yaml:"projectile"` // ranged attacks spawn a projectile entity
	Weapon         WeaponKind `yaml:"weapon"`
	MeleeDamage    int        `yaml:"melee_damage"`
	MeleeRadius    float64    `yaml:"melee_radius"`
	MeleeReach     float64    `yaml:"melee_reach"` // distance of the strike point ahead of the agent
	Radius         float64    `yaml:"radius"`
	Height         float64    `yaml:"height"`
}

// SpawnWeight is one entry in a wave's composition table.
type SpawnWeight struct {
	Kind    AgentKind `yaml:"kind"`
	Weight  int       `yaml:"weight"`
	MinWave int       `yaml:"min_wave"`
}

// WaveConfig drives the encounter scheduler.
type WaveConfig struct {
	BaseEnemies       int           `yaml:"base_enemies"`
	QuotaScaling      float64       `yaml:"quota_scaling"`
	DifficultyScaling float64       `yaml:"difficulty_scaling"`
	MaxWaves          int           `yaml:"max_waves"`
	Infinite          bool          `yaml:"infinite"`
	ConcurrencyCap    int           `yaml:"concurrency_cap"`
	SpawnInterval     float64       `yaml:"spawn_interval"`
	PollInterval      float64       `yaml:"poll_interval"`
	InterWaveDelay    float64       `yaml:"inter_wave_delay"`
	StartDelay        float64       `yaml:"start_delay"`
	SpawnJitter       float64       `yaml:"spawn_jitter"`
	BossWave          int           `yaml:"boss_wave"`
	BossKind          AgentKind     `yaml:"boss_kind"`
	DefaultKind       AgentKind     `yaml:"default_kind"`
	Composition       []SpawnWeight `yaml:"composition"`
}

// PointConfig is a floor-plane coordinate.
type PointConfig struct {
	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`
}

// WallConfig is a box resting on the floor.
type WallConfig struct {
	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`
	W float64 `yaml:"w"`
	D float64 `yaml:"d"`
	H float64 `yaml:"h"`
}

// ArenaConfig describes the level geometry handed to the core.
type ArenaConfig struct {
	Width       float64       `yaml:"width"`
	Depth       float64       `yaml:"depth"`
	CellSize    float64       `yaml:"cell_size"`
	Walls       []WallConfig  `yaml:"walls"`
	SpawnPoints []PointConfig `yaml:"spawn_points"`
	PlayerStart PointConfig   `yaml:"player_start"`
}

// SimConfig holds the global simulation constants.
type SimConfig struct {
	Gravity              float64      `yaml:"gravity"`
	StepTime             float64      `yaml:"step_time"` // trajectory integration step, seconds
	MaxSteps             int          `yaml:"max_steps"`
	PenetrationReduction float64      `yaml:"penetration_reduction"`
	PenetrationRange     float64      `yaml:"penetration_range"`
	HeadFraction         float64      `yaml:"head_fraction"`
	DeathGrace           float64      `yaml:"death_grace"`
	PatrolRadius         float64      `yaml:"patrol_radius"`
	PatrolDwell          float64      `yaml:"patrol_dwell"`
	ArriveThreshold      float64      `yaml:"arrive_threshold"`
	RepathInterval       float64      `yaml:"repath_interval"`
	RequireLineOfSight   bool         `yaml:"require_line_of_sight"`
	PlayerMaxHealth      int          `yaml:"player_max_health"`
	PlayerRegen          float64      `yaml:"player_regen"`
	PlayerRegenDelay     float64      `yaml:"player_regen_delay"`
	PlayerSpeed          float64      `yaml:"player_speed"`
	PlayerRadius         float64      `yaml:"player_radius"`
	PlayerHeight         float64      `yaml:"player_height"`
	PlayerLoadout        []WeaponKind `yaml:"player_loadout"`
	ResupplyMagazines    int          `yaml:"resupply_magazines"` // magazines of reserve per weapon on wave completion
}

// Config is the full configuration surface, loaded once at start.
type Config struct {
	Weapons []WeaponArchetype `yaml:"weapons"`
	Agents  []AgentArchetype  `yaml:"agents"`
	Waves   WaveConfig        `yaml:"waves"`
	Arena   ArenaConfig       `yaml:"arena"`
	Sim     SimConfig         `yaml:"sim"`
}

// Weapon looks up a weapon archetype by kind.
func (c *Config) Weapon(kind WeaponKind) (WeaponArchetype, bool) {
	for _, w := range c.Weapons {
		if w.Kind == kind {
			return w, true
		}
	}
	return WeaponArchetype{}, false
}

// Agent looks up an agent archetype by kind.
func (c *Config) Agent(kind AgentKind) (AgentArchetype, bool) {
	for _, a := range c.Agents {
		if a.Kind == kind {
			return a, true
		}
	}
	return AgentArchetype{}, false
}

// LoadConfig reads a YAML configuration file layered over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig, fills per-entry defaults and
// validates the result. Scalars missing from the document keep their
// default values; a list present in the document replaces the default list.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the simulation cannot start with.
func (c *Config) Validate() error {
	if len(c.Weapons) == 0 {
		return ErrNoWeapons
	}
	if len(c.Agents) == 0 {
		return ErrNoAgents
	}
	if len(c.Arena.SpawnPoints) == 0 {
		return ErrNoSpawnPoints
	}
	w := c.Waves
	switch {
	case w.BaseEnemies < 1:
		return fmt.Errorf("%w: base_enemies must be >= 1, got %d", ErrBadWaveConfig, w.BaseEnemies)
	case w.QuotaScaling <= 0:
		return fmt.Errorf("%w: quota_scaling must be > 0, got %g", ErrBadWaveConfig, w.QuotaScaling)
	case w.DifficultyScaling <= 0:
		return fmt.Errorf("%w: difficulty_scaling must be > 0, got %g", ErrBadWaveConfig, w.DifficultyScaling)
	case w.ConcurrencyCap < 1:
		return fmt.Errorf("%w: concurrency_cap must be >= 1, got %d", ErrBadWaveConfig, w.ConcurrencyCap)
	case !w.Infinite && w.MaxWaves < 1:
		return fmt.Errorf("%w: max_waves must be >= 1 unless infinite", ErrBadWaveConfig)
	}
	for _, k := range c.Sim.PlayerLoadout {
		if _, ok := c.Weapon(k); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLoadout, k)
		}
	}
	return nil
}

// normalize fills zero-valued per-entry fields that have a sensible default.
func (c *Config) normalize() {
	for i := range c.Weapons {
		w := &c.Weapons[i]
		if w.Pellets < 1 {
			w.Pellets = 1
		}
		if w.MagazineSize < 1 {
			w.MagazineSize = 1
		}
		if w.ReserveAmmo < 0 {
			w.ReserveAmmo = 0
		}
		if w.MuzzleVelocity <= 0 {
			w.MuzzleVelocity = 400
		}
		if w.CriticalMultiplier <= 0 {
			w.CriticalMultiplier = 1
		}
		if w.Range <= 0 {
			w.Range = 50
		}
	}
	for i := range c.Agents {
		a := &c.Agents[i]
		if a.MaxHealth < 1 {
			a.MaxHealth = 1
		}
		if a.Radius <= 0 {
			a.Radius = 0.4
		}
		if a.Height <= 0 {
			a.Height = 1.8
		}
		if a.TurnRate <= 0 {
			a.TurnRate = 270
		}
		if a.AttackRange > a.DetectionRange {
			a.DetectionRange = a.AttackRange
		}
	}
	if c.Waves.PollInterval <= 0 {
		c.Waves.PollInterval = 0.25
	}
	if c.Arena.CellSize <= 0 {
		c.Arena.CellSize = 1
	}
	if c.Sim.StepTime <= 0 {
		c.Sim.StepTime = 1.0 / 120
	}
	if c.Sim.ResupplyMagazines < 0 {
		c.Sim.ResupplyMagazines = 0
	}
	if c.Sim.MaxSteps <= 0 {
		c.Sim.MaxSteps = 512
	}
	if c.Sim.PlayerRadius <= 0 {
		c.Sim.PlayerRadius = 0.4
	}
	if c.Sim.PlayerHeight <= 0 {
		c.Sim.PlayerHeight = 1.8
	}
	if c.Sim.PlayerMaxHealth < 1 {
		c.Sim.PlayerMaxHealth = 100
	}
}

// DefaultConfig returns the built-in archetype tables and a 60x60 m arena.
func DefaultConfig() Config {
	return Config{
		Weapons: []WeaponArchetype{
			{
				Kind: WeaponPistol, Damage: 20, FireInterval: 0.25, Range: 50,
				HipSpread: 2.5, AimSpread: 0.8, Pellets: 1, MagazineSize: 12, ReserveAmmo: 60,
				ReloadTime: 1.2, MuzzleVelocity: 350, CriticalMultiplier: 1.5,
				Recoil: RecoilPattern{Kick: 1.2, Yaw: 0.4, Randomness: 0.3, Recovery: 0.3},
			},
			{
				Kind: WeaponAssaultRifle, Damage: 25, FireInterval: 0.1, Range: 100,
				HipSpread: 3, AimSpread: 1, Pellets: 1, MagazineSize: 30, ReserveAmmo: 120,
				ReloadTime: 2, Automatic: true, MuzzleVelocity: 700, CriticalMultiplier: 1.5,
				Recoil: RecoilPattern{Kick: 0.6, Yaw: 0.5, Randomness: 0.4, Recovery: 0.35},
			},
			{
				Kind: WeaponSniper, Damage: 90, FireInterval: 1.2, Range: 250,
				HipSpread: 6, AimSpread: 0.05, Pellets: 1, Penetration: 1, MagazineSize: 5, ReserveAmmo: 25,
				ReloadTime: 3, MuzzleVelocity: 900, CriticalMultiplier: 2,
				Recoil: RecoilPattern{Kick: 4, Yaw: 1, Randomness: 0.2, Recovery: 0.8},
			},
			{
				Kind: WeaponShotgun, Damage: 12, FireInterval: 0.8, Range: 30,
				HipSpread: 7, AimSpread: 5, Pellets: 8, MagazineSize: 6, ReserveAmmo: 36,
				ReloadTime: 2.5, MuzzleVelocity: 400, CriticalMultiplier: 1,
				Recoil: RecoilPattern{Kick: 3, Yaw: 1.5, Randomness: 0.3, Recovery: 0.6},
			},
			{
				Kind: WeaponSpit, Damage: 8, FireInterval: 0, Range: 40,
				HipSpread: 3, AimSpread: 3, Pellets: 1, MagazineSize: 1,
				MuzzleVelocity: 22, CriticalMultiplier: 1,
			},
		},
		Agents: []AgentArchetype{
			{
				Kind: AgentGrunt, MaxHealth: 100, Speed: 3, TurnRate: 270,
				DetectionRange: 18, AttackRange: 1.8, AttackCooldown: 1,
				MeleeDamage: 10, MeleeRadius: 1.2, MeleeReach: 0.9, Radius: 0.4, Height: 1.8,
			},
			{
				Kind: AgentRunner, MaxHealth: 60, Speed: 5.5, TurnRate: 360,
				DetectionRange: 22, AttackRange: 1.5, AttackCooldown: 0.7,
				MeleeDamage: 6, MeleeRadius: 1, MeleeReach: 0.8, Radius: 0.35, Height: 1.6,
			},
			{
				Kind: AgentGunner, MaxHealth: 80, Speed: 2.5, TurnRate: 200,
				DetectionRange: 30, AttackRange: 20, AttackCooldown: 1.5,
				Ranged: true, Weapon: WeaponPistol, Radius: 0.4, Height: 1.8,
			},
			{
				Kind: AgentSpitter, MaxHealth: 70, Speed: 2.2, TurnRate: 180,
				DetectionRange: 25, AttackRange: 16, AttackCooldown: 2,
				Ranged: true, Projectile: true, Weapon: WeaponSpit, Radius: 0.45, Height: 1.5,
			},
			{
				Kind: AgentBrute, MaxHealth: 600, Speed: 2, TurnRate: 120,
				DetectionRange: 40, AttackRange: 2.5, AttackCooldown: 2,
				MeleeDamage: 35, MeleeRadius: 1.5, MeleeReach: 1.4, Radius: 0.9, Height: 2.6,
			},
		},
		Waves: WaveConfig{
			BaseEnemies:       5,
			QuotaScaling:      1.25,
			DifficultyScaling: 1.1,
			MaxWaves:          10,
			ConcurrencyCap:    6,
			SpawnInterval:     1.5,
			PollInterval:      0.5,
			InterWaveDelay:    5,
			StartDelay:        2,
			SpawnJitter:       1.5,
			BossWave:          5,
			BossKind:          AgentBrute,
			DefaultKind:       AgentGrunt,
			Composition: []SpawnWeight{
				{Kind: AgentGrunt, Weight: 5, MinWave: 1},
				{Kind: AgentRunner, Weight: 3, MinWave: 2},
				{Kind: AgentGunner, Weight: 2, MinWave: 3},
				{Kind: AgentSpitter, Weight: 2, MinWave: 4},
			},
		},
		Arena: ArenaConfig{
			Width:    60,
			Depth:    60,
			CellSize: 1,
			Walls: []WallConfig{
				{X: 0, Z: 0, W: 60, D: 1, H: 4},
				{X: 0, Z: 59, W: 60, D: 1, H: 4},
				{X: 0, Z: 0, W: 1, D: 60, H: 4},
				{X: 59, Z: 0, W: 1, D: 60, H: 4},
				{X: 14, Z: 14, W: 4, D: 4, H: 3},
				{X: 42, Z: 14, W: 4, D: 4, H: 3},
				{X: 14, Z: 42, W: 4, D: 4, H: 3},
				{X: 42, Z: 42, W: 4, D: 4, H: 3},
				{X: 27, Z: 20, W: 6, D: 1, H: 1},
				{X: 27, Z: 39, W: 6, D: 1, H: 1},
			},
			SpawnPoints: []PointConfig{
				{X: 4, Z: 4}, {X: 56, Z: 4}, {X: 4, Z: 56}, {X: 56, Z: 56},
				{X: 30, Z: 3}, {X: 30, Z: 57},
			},
			PlayerStart: PointConfig{X: 30, Z: 30},
		},
		Sim: SimConfig{
			Gravity:              9.81,
			StepTime:             1.0 / 120,
			MaxSteps:             512,
			PenetrationReduction: 0.5,
			PenetrationRange:     6,
			HeadFraction:         0.15,
			DeathGrace:           2,
			PatrolRadius:         6,
			PatrolDwell:          2,
			ArriveThreshold:      0.5,
			RepathInterval:       0.5,
			RequireLineOfSight:   true,
			PlayerMaxHealth:      100,
			PlayerRegen:          5,
			PlayerRegenDelay:     4,
			PlayerSpeed:          5,
			PlayerRadius:         0.4,
			PlayerHeight:         1.8,
			PlayerLoadout:        []WeaponKind{WeaponPistol, WeaponAssaultRifle, WeaponSniper, WeaponShotgun},
			ResupplyMagazines:    1,
		},
	}
}

package game

import "fmt"

// harnessDT is the fixed step the harness ticks with (60 TPS).
const harnessDT = 1.0 / 60

// TestSim is a headless simulation harness used by tests and the headless
// report. It wraps a Sim built from a tweakable config and keeps every
// event it produced.
type TestSim struct {
	*Sim
	Cfg      Config
	Events   []Event
	Reporter *RunReporter

	verbose bool
	seed    int64
	player  *Vec3
	spawns  []pendingHostile
}

type pendingHostile struct {
	kind AgentKind
	pos  Vec3
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // config, arena, seed, verbose; applied first
	simOptAgent                      // place agents after the Sim exists
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithConfig edits the config before the Sim is built.
func WithConfig(edit func(*Config)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		edit(&ts.Cfg)
	}}
}

// WithTestSeed sets the RNG seed for deterministic runs.
func WithTestSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.seed = seed
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.verbose = v
	}}
}

// WithOpenArena replaces the arena with an empty w×d floor, spawn points
// near the four corners and the player in the middle.
func WithOpenArena(w, d float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Cfg.Arena = ArenaConfig{
			Width:    w,
			Depth:    d,
			CellSize: 1,
			SpawnPoints: []PointConfig{
				{X: 3, Z: 3}, {X: w - 3, Z: 3}, {X: 3, Z: d - 3}, {X: w - 3, Z: d - 3},
			},
			PlayerStart: PointConfig{X: w / 2, Z: d / 2},
		}
	}}
}

// WithWall adds a wall box to the arena.
func WithWall(x, z, w, d, h float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Cfg.Arena.Walls = append(ts.Cfg.Arena.Walls, WallConfig{X: x, Z: z, W: w, D: d, H: h})
	}}
}

// WithPerfectAim removes spread and recoil from every weapon.
func WithPerfectAim() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		for i := range ts.Cfg.Weapons {
			ts.Cfg.Weapons[i].HipSpread = 0
			ts.Cfg.Weapons[i].AimSpread = 0
			ts.Cfg.Weapons[i].Recoil = RecoilPattern{}
		}
	}}
}

// WithoutWaves keeps the scheduler idle for the whole test.
func WithoutWaves() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Cfg.Waves.StartDelay = 1e9
	}}
}

// WithPlayerAt places the player.
func WithPlayerAt(x, z float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		p := V3(x, 0, z)
		ts.player = &p
	}}
}

// WithHostile places a hostile outside the wave loop.
func WithHostile(kind AgentKind, x, z float64) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.spawns = append(ts.spawns, pendingHostile{kind: kind, pos: V3(x, 0, z)})
	}}
}

// NewTestSim constructs a TestSim from the given options in two ordered passes:
//  1. Infrastructure (config, arena, seed, verbose)
//  2. Agents
//
// It panics on an invalid config; tests want that loudly.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{Cfg: DefaultConfig(), seed: 1}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	ts.Cfg.normalize()
	ts.Reporter = NewRunReporter(0)
	sim, err := NewSim(ts.Cfg, nil,
		WithSeed(ts.seed),
		WithSimLog(NewSimLog(ts.verbose)),
		WithObserver(ts.Reporter),
	)
	if err != nil {
		panic(fmt.Sprintf("test harness: %v", err))
	}
	ts.Sim = sim
	if ts.player != nil {
		sim.Player().Pos = *ts.player
	}
	for _, o := range opts {
		if o.kind == simOptAgent {
			o.fn(ts)
		}
	}
	for _, h := range ts.spawns {
		if _, ok := sim.Spawn(h.kind, h.pos); !ok {
			panic(fmt.Sprintf("test harness: unknown hostile kind %q", h.kind))
		}
	}
	return ts
}

// Step advances one tick with the given input and records its events.
func (ts *TestSim) Step(in PlayerInput) []Event {
	evs := ts.Tick(harnessDT, in)
	ts.Events = append(ts.Events, evs...)
	if ts.verbose {
		p := ts.Player()
		ts.Log().AddVerbose(ts.CurrentTick(), "player", string(AgentPlayer), "move", "position",
			fmt.Sprintf("(%.1f,%.1f) hp %d", p.Pos.X, p.Pos.Z, p.Health.Health()), float64(p.Health.Health()))
	}
	return evs
}

// RunTicks advances the simulation n ticks with a constant input.
func (ts *TestSim) RunTicks(n int, in PlayerInput) {
	for i := 0; i < n; i++ {
		ts.Step(in)
	}
}

// RunFor advances roughly seconds of sim time with a constant input.
func (ts *TestSim) RunFor(seconds float64, in PlayerInput) {
	ts.RunTicks(int(seconds/harnessDT+0.5), in)
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int, input func(*TestSim) PlayerInput) int {
	for i := 0; i < maxTicks; i++ {
		var in PlayerInput
		if input != nil {
			in = input(ts)
		}
		ts.Step(in)
		if predicate(ts) {
			return ts.CurrentTick()
		}
	}
	return -1
}

// CountEvents counts recorded events of a kind.
func (ts *TestSim) CountEvents(kind EventKind) int {
	n := 0
	for _, e := range ts.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// EventsFor returns recorded events of a kind concerning agent id.
func (ts *TestSim) EventsFor(kind EventKind, id int) []Event {
	var out []Event
	for _, e := range ts.Events {
		if e.Kind == kind && e.AgentID == id {
			out = append(out, e)
		}
	}
	return out
}

// Hostile returns the i-th present hostile, or nil.
func (ts *TestSim) Hostile(i int) *Agent {
	hs := ts.Hostiles()
	if i < 0 || i >= len(hs) {
		return nil
	}
	return hs[i]
}

// AimAt returns an input aiming the player's eye at a's chest.
func (ts *TestSim) AimAt(a *Agent) PlayerInput {
	return PlayerInput{Aim: a.Chest().Sub(ts.Player().Eye())}
}

// KillAll kills every live hostile as if shot by the player.
func (ts *TestSim) KillAll() {
	for _, a := range ts.Hostiles() {
		if a.Alive() {
			a.Health.ApplyDamage(DamageInfo{Amount: a.Health.Health(), SourceID: ts.Player().ID})
		}
	}
}

// Snapshot captures a lightweight state summary.
type SimSnapshot struct {
	Tick     int
	Wave     WaveState
	Hostiles []AgentSnapshot
}

// AgentSnapshot is a lightweight copy of a hostile's state at a tick.
type AgentSnapshot struct {
	ID     int
	Label  string
	Kind   AgentKind
	X, Z   float64
	State  AIState
	Health int
	Alive  bool
}

// Snapshot returns the current state of all hostiles.
func (ts *TestSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: ts.CurrentTick(), Wave: ts.Scheduler().State()}
	for _, a := range ts.Hostiles() {
		snap.Hostiles = append(snap.Hostiles, AgentSnapshot{
			ID:     a.ID,
			Label:  a.Label(),
			Kind:   a.Kind,
			X:      a.Pos.X,
			Z:      a.Pos.Z,
			State:  a.State(),
			Health: a.Health.Health(),
			Alive:  a.Alive(),
		})
	}
	return snap
}

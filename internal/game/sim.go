package game

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Option configures a Sim at construction.
type Option func(*Sim)

// WithSeed seeds the simulation's random source (spread, recoil, patrol
// points, spawn choice).
func WithSeed(seed int64) Option {
	return func(s *Sim) {
		s.seed = seed
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Sim) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver subscribes an observer to every notification.
func WithObserver(o Observer) Option {
	return func(s *Sim) {
		if o != nil {
			s.bus.observers = append(s.bus.observers, o)
		}
	}
}

// WithSimLog records structured simulation events into l.
func WithSimLog(l *SimLog) Option {
	return func(s *Sim) {
		if l != nil {
			s.simLog = l
		}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id uuid.UUID) Option {
	return func(s *Sim) {
		s.runID = id
	}
}

// Sim is the combat and encounter core. Everything advances synchronously
// inside Tick; nothing here is safe for concurrent use, and independent
// Sims share no state.
type Sim struct {
	cfg    Config
	arena  *Arena
	engine *BallisticEngine
	sched  *Scheduler

	player      *Player
	hostiles    []*Agent
	projectiles []*Projectile
	traces      []Trace
	targetBuf   []*Agent

	now    float64
	dt     float64
	tick   int
	nextID int

	seed    int64
	rng     *rand.Rand
	logger  *log.Logger
	simLog  *SimLog
	bus     eventBus
	runID   uuid.UUID
	outcome RunOutcome
}

// NewSim validates cfg and builds a simulation over arena. A nil arena is
// built from cfg.Arena.
func NewSim(cfg Config, arena *Arena, opts ...Option) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sim{
		cfg:    cfg,
		seed:   1,
		logger: NewDiscardLogger(),
		simLog: NewSimLog(false),
		runID:  uuid.New(),
		nextID: 1,
	}
	for _, o := range opts {
		o(s)
	}
	if arena == nil {
		arena = NewArena(cfg.Arena, cfg.Sim.PlayerRadius)
	}
	if len(arena.SpawnPoints()) == 0 {
		return nil, fmt.Errorf("new sim: %w", ErrNoSpawnPoints)
	}
	s.arena = arena
	s.rng = rand.New(rand.NewSource(s.seed)) // #nosec G404 -- game only
	s.engine = NewBallisticEngine(cfg.Sim, s, s.rng, s.bus.emit)
	s.sched = NewScheduler(cfg.Waves, s, s.rng, s.emitWave, s.logger)

	start, ok := arena.GroundProject(arena.PlayerStart)
	if !ok {
		s.logger.Warn("player start is not walkable", "x", arena.PlayerStart.X, "z", arena.PlayerStart.Z)
		start = arena.PlayerStart
	}
	s.player = NewPlayer(&s.cfg, start)
	pa := s.player.Agent
	pa.Health.OnDeath(func(last DamageInfo) {
		s.bus.emit(Event{
			Kind:      EventDeath,
			AgentID:   pa.ID,
			AgentKind: pa.Kind,
			SourceID:  last.SourceID,
			Position:  pa.Pos,
			Critical:  last.Critical,
		})
		s.simLog.Add(s.tick, "player", string(AgentPlayer), "combat", "player_death", fmt.Sprintf("by #%d", last.SourceID), 0)
	})

	s.logger.Debug("sim created", "run", s.runID, "seed", s.seed)
	return s, nil
}

func (s *Sim) Config() *Config            { return &s.cfg }
func (s *Sim) Arena() *Arena              { return s.arena }
func (s *Sim) Engine() *BallisticEngine   { return s.engine }
func (s *Sim) Scheduler() *Scheduler      { return s.sched }
func (s *Sim) Player() *Player            { return s.player }
func (s *Sim) Hostiles() []*Agent         { return s.hostiles }
func (s *Sim) Projectiles() []*Projectile { return s.projectiles }
func (s *Sim) Log() *SimLog               { return s.simLog }
func (s *Sim) Logger() *log.Logger        { return s.logger }
func (s *Sim) RunID() uuid.UUID           { return s.runID }
func (s *Sim) Seed() int64                { return s.seed }
func (s *Sim) Now() float64               { return s.now }
func (s *Sim) CurrentTick() int           { return s.tick }
func (s *Sim) Outcome() RunOutcome        { return s.outcome }
func (s *Sim) TickTraces() []Trace        { return s.traces }
func (s *Sim) Geometry() []Box            { return s.arena.Walls }

// Targets lists every agent a shot can strike: the player first, then the
// hostiles. The slice is reused between calls.
func (s *Sim) Targets() []*Agent {
	s.targetBuf = append(s.targetBuf[:0], s.player.Agent)
	s.targetBuf = append(s.targetBuf, s.hostiles...)
	return s.targetBuf
}

// LiveHostiles counts hostiles that have not died yet.
func (s *Sim) LiveHostiles() int {
	n := 0
	for _, a := range s.hostiles {
		if a.Alive() {
			n++
		}
	}
	return n
}

// AgentByID finds a present agent; removed agents return nil.
func (s *Sim) AgentByID(id int) *Agent {
	if id == s.player.ID {
		return s.player.Agent
	}
	for _, a := range s.hostiles {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// emitWave forwards scheduler events and mirrors them into the sim log.
func (s *Sim) emitWave(e Event) {
	if e.Kind == EventWaveComplete {
		s.resupply()
	}
	s.bus.emit(e)
	st := s.sched.State()
	s.simLog.Add(s.tick, "--", "--", "wave", e.Kind.String(),
		fmt.Sprintf("wave %d quota %d", e.Wave, st.Quota), float64(e.Wave))
}

// resupply tops up every player weapon's reserve by ResupplyMagazines
// magazines.
func (s *Sim) resupply() {
	n := s.cfg.Sim.ResupplyMagazines
	if n <= 0 {
		return
	}
	for _, w := range s.player.Weapons {
		w.AddReserve(n * w.Arch.MagazineSize)
	}
	s.simLog.Add(s.tick, "player", string(AgentPlayer), "combat", "resupply", fmt.Sprintf("%d magazines", n), float64(n))
}

func (s *Sim) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

// Tick advances the simulation by dt seconds and returns the events raised
// during the tick. Order: player, scheduler, agents already present before
// this tick, projectiles, removals. Once the run has an outcome Tick is a
// no-op.
func (s *Sim) Tick(dt float64, in PlayerInput) []Event {
	if s.outcome != OutcomeInProgress || dt <= 0 {
		return nil
	}
	s.tick++
	s.now += dt
	s.dt = dt
	s.traces = s.traces[:0]
	s.bus.begin(s.tick, s.now)

	s.updatePlayer(in)
	s.sched.Update(s.now)

	for _, a := range s.hostiles {
		if a.spawnTick == s.tick || !a.Alive() {
			continue
		}
		a.Health.Update(dt)
		s.think(a)
	}

	s.updateProjectiles()
	s.removeExpired()
	s.updateOutcome()
	return s.bus.drain()
}

func (s *Sim) updatePlayer(in PlayerInput) {
	p := s.player
	if !p.Alive() {
		return
	}
	p.Health.Update(s.dt)

	if in.Select > 0 {
		p.SelectWeapon(in.Select - 1)
	}
	for i, w := range p.Weapons {
		if w.Update(s.now, s.dt) && i == p.current {
			s.bus.emit(Event{Kind: EventReloadComplete, AgentID: p.ID, SourceID: p.ID, Weapon: w.Kind()})
		}
	}

	move := in.Move.Flat()
	if l := move.Len(); l > 1 {
		move = move.Scale(1 / l)
	}
	if move.Len() > 0 {
		p.Pos = s.arena.Move(p.Pos, move.Scale(p.Arch.Speed*s.dt))
	}
	if aim, ok := in.Aim.Normalize(); ok {
		p.Aim = aim
		p.Heading = HeadingOf(aim)
	}
	p.Aimed = in.Aimed

	w := p.Weapon()
	if w == nil {
		return
	}
	if in.Reload && w.Reload(s.now) {
		s.bus.emit(Event{Kind: EventReloadStart, AgentID: p.ID, SourceID: p.ID, Weapon: w.Kind()})
	}
	wasReloading := w.Reloading()
	res, fired := w.Trigger(s.now, in.Trigger, s.engine, Shot{
		Origin:    p.Eye(),
		Aim:       p.Aim,
		Aimed:     p.Aimed,
		ShooterID: p.ID,
		Mask:      LayerGeometry | LayerHostile,
	})
	if !fired {
		return
	}
	s.traces = append(s.traces, res.Traces...)
	if !wasReloading && w.Reloading() {
		s.bus.emit(Event{Kind: EventReloadStart, AgentID: p.ID, SourceID: p.ID, Weapon: w.Kind()})
	}
}

// SpawnHostile implements Spawner. A missing archetype falls back to the
// wave's default kind with a warning.
func (s *Sim) SpawnHostile(kind AgentKind, wave int, difficulty float64, boss bool) (*Agent, bool) {
	arch, ok := s.cfg.Agent(kind)
	if !ok {
		s.logger.Warn("agent archetype missing, using default", "kind", kind, "default", s.cfg.Waves.DefaultKind)
		arch, ok = s.cfg.Agent(s.cfg.Waves.DefaultKind)
		if !ok {
			arch = s.cfg.Agents[0]
		}
	}
	pos, ok := PickSpawnPoint(s.arena, s.rng, s.cfg.Waves.SpawnJitter)
	if !ok {
		s.logger.Warn("no valid spawn point", "kind", arch.Kind, "wave", wave)
		return nil, false
	}

	a := NewAgent(s.allocID(), arch, pos, difficulty)
	a.Boss = boss
	a.wave = wave
	a.spawnTick = s.tick
	a.Brain = NewBrain()
	a.Heading = HeadingOf(s.player.Pos.Sub(pos))
	a.Health.OnDeath(func(last DamageInfo) { s.onHostileDeath(a, last) })
	s.hostiles = append(s.hostiles, a)

	kindEv := EventSpawn
	if boss {
		kindEv = EventBossSpawn
	}
	s.bus.emit(Event{Kind: kindEv, AgentID: a.ID, AgentKind: a.Kind, SourceID: -1, Position: pos, Wave: wave})
	s.simLog.Add(s.tick, a.Label(), string(a.Kind), "spawn", "spawned",
		fmt.Sprintf("wave %d hp %d at (%.1f, %.1f)", wave, a.Health.MaxHealth(), pos.X, pos.Z), float64(a.Health.MaxHealth()))
	s.logger.Debug("spawned hostile", "agent", a.Label(), "wave", wave, "boss", boss, "hp", a.Health.MaxHealth())
	return a, true
}

// Spawn places a hostile outside the wave loop, for tests and scripted
// encounters. It is not counted toward any wave quota.
func (s *Sim) Spawn(kind AgentKind, pos Vec3) (*Agent, bool) {
	arch, ok := s.cfg.Agent(kind)
	if !ok {
		s.logger.Warn("agent archetype missing", "kind", kind)
		return nil, false
	}
	a := NewAgent(s.allocID(), arch, pos, 1)
	a.wave = -1
	a.spawnTick = s.tick
	a.Brain = NewBrain()
	a.Heading = HeadingOf(s.player.Pos.Sub(pos))
	a.Health.OnDeath(func(last DamageInfo) { s.onHostileDeath(a, last) })
	s.hostiles = append(s.hostiles, a)
	s.bus.emit(Event{Kind: EventSpawn, AgentID: a.ID, AgentKind: a.Kind, SourceID: -1, Position: pos})
	return a, true
}

// onHostileDeath takes effect immediately inside the tick that dealt the
// damage: the brain stops, death and kill are reported exactly once, the
// scheduler is told and removal is scheduled after the grace delay.
func (s *Sim) onHostileDeath(a *Agent, last DamageInfo) {
	if a.Brain != nil {
		a.Brain.Disable()
	}
	a.removeAt = s.now + s.cfg.Sim.DeathGrace
	a.pendingDel = true

	s.bus.emit(Event{
		Kind:      EventDeath,
		AgentID:   a.ID,
		AgentKind: a.Kind,
		SourceID:  last.SourceID,
		Position:  a.Pos,
		Critical:  last.Critical,
		Weapon:    last.Weapon,
		Wave:      a.wave,
	})
	s.bus.emit(Event{
		Kind:      EventKill,
		AgentID:   a.ID,
		AgentKind: a.Kind,
		SourceID:  last.SourceID,
		Position:  a.Pos,
		Critical:  last.Critical,
		Weapon:    last.Weapon,
		Wave:      a.wave,
	})
	if a.wave >= 0 {
		s.sched.NotifyDeath(a)
	}
	s.simLog.Add(s.tick, a.Label(), string(a.Kind), "combat", "kill",
		fmt.Sprintf("by #%d weapon %s critical %v", last.SourceID, last.Weapon, last.Critical), float64(last.Amount))
}

func (s *Sim) updateProjectiles() {
	for _, p := range s.projectiles {
		if p.Done() {
			continue
		}
		if s.AgentByID(p.TargetID) == nil {
			p.Cancel()
			continue
		}
		if tr, done := s.engine.Advance(p, s.dt); done {
			s.traces = append(s.traces, tr)
		}
	}
}

func (s *Sim) removeExpired() {
	kept := s.hostiles[:0]
	for _, a := range s.hostiles {
		if a.pendingDel && s.now >= a.removeAt {
			s.simLog.Add(s.tick, a.Label(), string(a.Kind), "spawn", "removed", "", 0)
			continue
		}
		kept = append(kept, a)
	}
	clear(s.hostiles[len(kept):])
	s.hostiles = kept

	live := s.projectiles[:0]
	for _, p := range s.projectiles {
		if !p.Done() {
			live = append(live, p)
		}
	}
	clear(s.projectiles[len(live):])
	s.projectiles = live
}

// ClearHostiles removes every hostile immediately without crediting kills.
// Pending projectiles aimed at removed agents become no-ops.
func (s *Sim) ClearHostiles() {
	for _, a := range s.hostiles {
		if a.Alive() && a.wave >= 0 {
			s.sched.NotifyRemoved(a)
		}
		if a.Brain != nil {
			a.Brain.Disable()
		}
	}
	n := len(s.hostiles)
	clear(s.hostiles)
	s.hostiles = s.hostiles[:0]
	s.logger.Info("hostiles cleared", "count", n)
	s.simLog.Add(s.tick, "--", "--", "wave", "cleared", fmt.Sprintf("%d hostiles", n), float64(n))
}

func (s *Sim) updateOutcome() {
	switch {
	case !s.player.Alive():
		s.outcome = OutcomePlayerDied
	case s.sched.Phase() == WavePhaseAllComplete:
		s.outcome = OutcomeAllWavesComplete
	}
}

package game

// EventKind classifies a notification emitted by the simulation.
type EventKind int

const (
	EventFire EventKind = iota
	EventImpact
	EventHit
	EventAlert
	EventDeath
	EventKill
	EventSpawn
	EventBossSpawn
	EventWaveStart
	EventWaveComplete
	EventAllWavesComplete
	EventReloadStart
	EventReloadComplete
)

func (k EventKind) String() string {
	switch k {
	case EventFire:
		return "fire"
	case EventImpact:
		return "impact"
	case EventHit:
		return "hit"
	case EventAlert:
		return "alert"
	case EventDeath:
		return "death"
	case EventKill:
		return "kill"
	case EventSpawn:
		return "spawn"
	case EventBossSpawn:
		return "boss_spawn"
	case EventWaveStart:
		return "wave_start"
	case EventWaveComplete:
		return "wave_complete"
	case EventAllWavesComplete:
		return "all_waves_complete"
	case EventReloadStart:
		return "reload_start"
	case EventReloadComplete:
		return "reload_complete"
	default:
		return "unknown"
	}
}

// Event is one notification raised during a tick. Which fields are set
// depends on Kind; AgentID is the subject (shooter, victim, alerted agent)
// and SourceID the attacker where there is one.
type Event struct {
	Kind      EventKind
	Tick      int
	Time      float64
	AgentID   int
	AgentKind AgentKind
	SourceID  int
	Position  Vec3
	Normal    Vec3
	HasNormal bool
	Weapon    WeaponKind
	Damage    int
	Critical  bool
	Wave      int
}

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=./mocks/observer_mock.go -package=mocks . Observer

// Observer receives simulation notifications as they happen. Effects, audio
// and score collaborators implement the subset they care about and embed
// NopObserver for the rest.
type Observer interface {
	OnFire(e Event)
	OnImpact(e Event)
	OnAlert(e Event)
	OnKill(e Event)
	OnDeath(e Event)
	OnWave(e Event)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) OnFire(Event)   {}
func (NopObserver) OnImpact(Event) {}
func (NopObserver) OnAlert(Event)  {}
func (NopObserver) OnKill(Event)   {}
func (NopObserver) OnDeath(Event)  {}
func (NopObserver) OnWave(Event)   {}

// dispatch routes an event to the matching observer callback. Spawn and
// reload events are only reported through the per-tick event list.
func dispatch(o Observer, e Event) {
	switch e.Kind {
	case EventFire:
		o.OnFire(e)
	case EventImpact, EventHit:
		o.OnImpact(e)
	case EventAlert:
		o.OnAlert(e)
	case EventKill:
		o.OnKill(e)
	case EventDeath:
		o.OnDeath(e)
	case EventWaveStart, EventWaveComplete, EventAllWavesComplete, EventBossSpawn:
		o.OnWave(e)
	}
}

// eventBus stamps events with the current tick/time, buffers them for the
// tick's return value and fans them out to observers.
type eventBus struct {
	tick      int
	time      float64
	pending   []Event
	observers []Observer
}

func (b *eventBus) begin(tick int, now float64) {
	b.tick = tick
	b.time = now
	b.pending = nil
}

func (b *eventBus) emit(e Event) {
	e.Tick = b.tick
	e.Time = b.time
	b.pending = append(b.pending, e)
	for _, o := range b.observers {
		dispatch(o, e)
	}
}

func (b *eventBus) drain() []Event {
	out := b.pending
	b.pending = nil
	return out
}

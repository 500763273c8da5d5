package game

import (
	"math"
	"math/rand"

	"github.com/charmbracelet/log"
)

// WavePhase is the scheduler's progress state.
type WavePhase int

const (
	WavePhaseIdle WavePhase = iota
	WavePhaseSpawning
	WavePhaseAllComplete
)

func (p WavePhase) String() string {
	switch p {
	case WavePhaseIdle:
		return "idle"
	case WavePhaseSpawning:
		return "spawning"
	case WavePhaseAllComplete:
		return "all_complete"
	default:
		return "unknown"
	}
}

// maxQuota keeps infinite-mode quotas from overflowing.
const maxQuota = 1 << 16

// Spawner instantiates hostiles on behalf of the scheduler. It returns
// false when no agent could be placed.
type Spawner interface {
	SpawnHostile(kind AgentKind, wave int, difficulty float64, boss bool) (*Agent, bool)
}

// WaveState is a snapshot of scheduler counters.
type WaveState struct {
	Phase      WavePhase
	Wave       int
	Quota      int
	Spawned    int
	Killed     int
	Live       int
	BossLive   int
	Difficulty float64
	Cap        int
	NextAt     float64
}

// Scheduler runs the wave loop: idle, spawn under the concurrency cap,
// detect completion by kill count, then idle again or finish.
type Scheduler struct {
	cfg     WaveConfig
	spawner Spawner
	rng     *rand.Rand
	emit    func(Event)
	logger  *log.Logger

	phase      WavePhase
	wave       int
	quota      int
	spawned    int
	killed     int
	live       int
	bossLive   int
	difficulty float64

	nextAt      float64
	bossPending bool
	peakLive    int
}

// NewScheduler creates an idle scheduler whose first wave starts after
// cfg.StartDelay.
func NewScheduler(cfg WaveConfig, sp Spawner, rng *rand.Rand, emit func(Event), logger *log.Logger) *Scheduler {
	if emit == nil {
		emit = func(Event) {}
	}
	if logger == nil {
		logger = NewDiscardLogger()
	}
	return &Scheduler{
		cfg:        cfg,
		spawner:    sp,
		rng:        rng,
		emit:       emit,
		logger:     logger,
		difficulty: 1,
		nextAt:     cfg.StartDelay,
	}
}

// QuotaFor is round(base * scaling^(wave-1)), at least 1.
func QuotaFor(cfg WaveConfig, wave int) int {
	if wave < 1 {
		wave = 1
	}
	q := math.Round(float64(cfg.BaseEnemies) * math.Pow(cfg.QuotaScaling, float64(wave-1)))
	if math.IsNaN(q) || q > maxQuota {
		return maxQuota
	}
	return max(1, int(q))
}

// DifficultyFor is DifficultyScaling^(wave-1).
func DifficultyFor(cfg WaveConfig, wave int) float64 {
	if wave < 1 {
		wave = 1
	}
	return math.Pow(cfg.DifficultyScaling, float64(wave-1))
}

// State returns the current counters.
func (s *Scheduler) State() WaveState {
	return WaveState{
		Phase:      s.phase,
		Wave:       s.wave,
		Quota:      s.quota,
		Spawned:    s.spawned,
		Killed:     s.killed,
		Live:       s.live,
		BossLive:   s.bossLive,
		Difficulty: s.difficulty,
		Cap:        s.cfg.ConcurrencyCap,
		NextAt:     s.nextAt,
	}
}

func (s *Scheduler) Phase() WavePhase { return s.phase }
func (s *Scheduler) Wave() int        { return s.wave }

// PeakLive is the highest live count observed when a spawn was attempted.
func (s *Scheduler) PeakLive() int { return s.peakLive }

// Update advances the scheduler to time now. It is called once per tick
// before agents think.
func (s *Scheduler) Update(now float64) {
	switch s.phase {
	case WavePhaseAllComplete:
		return
	case WavePhaseIdle:
		if now < s.nextAt {
			return
		}
		s.startWave(now)
	}
	s.spawnStep(now)
	if s.killed >= s.quota && s.bossLive == 0 && !s.bossPending {
		s.completeWave(now)
	}
}

func (s *Scheduler) startWave(now float64) {
	s.wave++
	s.spawned = 0
	s.killed = 0
	s.quota = QuotaFor(s.cfg, s.wave)
	s.difficulty = DifficultyFor(s.cfg, s.wave)
	s.bossPending = s.cfg.BossWave > 0 && s.wave == s.cfg.BossWave
	s.phase = WavePhaseSpawning
	s.nextAt = now

	s.logger.Info("wave started", "wave", s.wave, "quota", s.quota, "difficulty", s.difficulty)
	s.emit(Event{Kind: EventWaveStart, AgentID: -1, SourceID: -1, Wave: s.wave})
}

func (s *Scheduler) spawnStep(now float64) {
	// The boss ignores the cap, so live hostiles may reach cap+1 on the boss wave.
	if s.bossPending {
		if _, ok := s.spawner.SpawnHostile(s.cfg.BossKind, s.wave, s.difficulty, true); ok {
			s.bossPending = false
			s.bossLive++
		}
	}
	if s.spawned >= s.quota || now < s.nextAt {
		return
	}
	s.peakLive = max(s.peakLive, s.live)
	if s.live >= s.cfg.ConcurrencyCap {
		s.nextAt = now + s.cfg.PollInterval
		return
	}
	if _, ok := s.spawner.SpawnHostile(s.PickKind(), s.wave, s.difficulty, false); !ok {
		s.nextAt = now + s.cfg.PollInterval
		return
	}
	s.spawned++
	s.live++
	s.nextAt = now + s.cfg.SpawnInterval
}

func (s *Scheduler) completeWave(now float64) {
	s.logger.Info("wave complete", "wave", s.wave, "killed", s.killed)
	s.emit(Event{Kind: EventWaveComplete, AgentID: -1, SourceID: -1, Wave: s.wave})
	if !s.cfg.Infinite && s.wave >= s.cfg.MaxWaves {
		s.phase = WavePhaseAllComplete
		s.logger.Info("all waves complete", "waves", s.wave)
		s.emit(Event{Kind: EventAllWavesComplete, AgentID: -1, SourceID: -1, Wave: s.wave})
		return
	}
	s.phase = WavePhaseIdle
	s.nextAt = now + s.cfg.InterWaveDelay
}

// NotifyDeath is the death-accounting hook for a hostile spawned by this
// scheduler. Bosses are tracked outside the quota.
func (s *Scheduler) NotifyDeath(a *Agent) {
	if a.Boss {
		s.bossLive = max(0, s.bossLive-1)
		return
	}
	s.live = max(0, s.live-1)
	if a.wave == s.wave && s.killed < s.spawned {
		s.killed++
	}
}

// NotifyRemoved accounts for a live hostile removed without being killed.
// The slot is returned to the quota so the wave can still complete.
func (s *Scheduler) NotifyRemoved(a *Agent) {
	if a.Boss {
		s.bossLive = max(0, s.bossLive-1)
		return
	}
	s.live = max(0, s.live-1)
	if a.wave == s.wave && s.spawned > s.killed {
		s.spawned--
	}
}

// PickKind draws a hostile kind from the wave's composition table, weighted
// and filtered by minimum wave. An empty draw falls back to DefaultKind.
func (s *Scheduler) PickKind() AgentKind {
	total := 0
	for _, c := range s.cfg.Composition {
		if c.Weight > 0 && c.MinWave <= s.wave {
			total += c.Weight
		}
	}
	if total == 0 {
		return s.cfg.DefaultKind
	}
	roll := s.rng.Intn(total)
	for _, c := range s.cfg.Composition {
		if c.Weight <= 0 || c.MinWave > s.wave {
			continue
		}
		if roll < c.Weight {
			return c.Kind
		}
		roll -= c.Weight
	}
	return s.cfg.DefaultKind
}

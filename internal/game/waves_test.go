package game

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// fakeSpawner hands out bare agents and remembers them.
type fakeSpawner struct {
	nextID int
	fail   bool
	agents []*Agent
}

func (f *fakeSpawner) SpawnHostile(kind AgentKind, wave int, difficulty float64, boss bool) (*Agent, bool) {
	if f.fail {
		return nil, false
	}
	f.nextID++
	a := &Agent{ID: f.nextID, Kind: kind, Boss: boss, wave: wave, Health: NewHealth(int(100 * difficulty))}
	f.agents = append(f.agents, a)
	return a, true
}

// kill marks the oldest live non-boss agent dead and returns it.
func (f *fakeSpawner) kill() *Agent {
	for _, a := range f.agents {
		if !a.Boss && a.Alive() {
			a.Health.ApplyDamage(DamageInfo{Amount: a.Health.Health()})
			return a
		}
	}
	return nil
}

func (f *fakeSpawner) boss() *Agent {
	for _, a := range f.agents {
		if a.Boss {
			return a
		}
	}
	return nil
}

func testWaveConfig() WaveConfig {
	return WaveConfig{
		BaseEnemies:       5,
		QuotaScaling:      1.5,
		DifficultyScaling: 1.2,
		MaxWaves:          3,
		ConcurrencyCap:    3,
		SpawnInterval:     0,
		PollInterval:      0.25,
		InterWaveDelay:    2,
		StartDelay:        0,
		DefaultKind:       AgentGrunt,
	}
}

type waveRecorder struct {
	events []Event
}

func (r *waveRecorder) emit(e Event) { r.events = append(r.events, e) }

func (r *waveRecorder) count(kind EventKind) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func newTestScheduler(cfg WaveConfig) (*Scheduler, *fakeSpawner, *waveRecorder) {
	sp := &fakeSpawner{}
	rec := &waveRecorder{}
	return NewScheduler(cfg, sp, rand.New(rand.NewSource(1)), rec.emit, nil), sp, rec
}

func TestQuotaAndDifficultyForWave(t *testing.T) {
	cfg := testWaveConfig()
	assert.Equal(t, 5, QuotaFor(cfg, 1))
	assert.Equal(t, 8, QuotaFor(cfg, 2), "round(7.5)")
	assert.Equal(t, 11, QuotaFor(cfg, 3), "round(11.25)")
	assert.Equal(t, 5, QuotaFor(cfg, 0), "waves below 1 use wave 1")

	assert.InDelta(t, 1.0, DifficultyFor(cfg, 1), 1e-12)
	assert.InDelta(t, 1.44, DifficultyFor(cfg, 3), 1e-12)

	cfg.BaseEnemies = 1
	cfg.QuotaScaling = 0.1
	assert.Equal(t, 1, QuotaFor(cfg, 4), "quota never drops below 1")

	cfg.QuotaScaling = 10
	assert.Equal(t, maxQuota, QuotaFor(cfg, 400), "quota saturates instead of overflowing")
}

func TestSchedulerQuotaUnderCap(t *testing.T) {
	cfg := testWaveConfig()
	s, sp, rec := newTestScheduler(cfg)

	now := 0.0
	for s.Wave() < 2 && now < 60 {
		s.Update(now)
		st := s.State()
		require.LessOrEqual(t, st.Live, cfg.ConcurrencyCap, "live hostiles exceeded the cap at %.1f", now)
		if st.Wave == 1 && st.Live > 0 && (st.Live == cfg.ConcurrencyCap || st.Spawned == st.Quota) {
			a := sp.kill()
			require.NotNil(t, a)
			s.NotifyDeath(a)
		}
		now += 0.1
	}

	require.Equal(t, 2, s.Wave(), "second wave should have started")
	assert.Equal(t, 1, rec.count(EventWaveComplete), "wave 1 completes exactly once")
	assert.Equal(t, 2, rec.count(EventWaveStart))
	assert.Equal(t, QuotaFor(cfg, 2), s.State().Quota)
	assert.InDelta(t, 1.2, s.State().Difficulty, 1e-12)
	assert.LessOrEqual(t, s.PeakLive(), cfg.ConcurrencyCap)

	wave1 := 0
	for _, a := range sp.agents {
		if a.wave == 1 {
			wave1++
		}
	}
	assert.Equal(t, 5, wave1, "wave 1 spawns exactly its quota")
}

func TestSchedulerHonoursDelays(t *testing.T) {
	cfg := testWaveConfig()
	cfg.StartDelay = 3
	cfg.SpawnInterval = 1
	s, sp, _ := newTestScheduler(cfg)

	s.Update(2.9)
	assert.Equal(t, WavePhaseIdle, s.Phase())
	assert.Empty(t, sp.agents)

	s.Update(3)
	assert.Equal(t, WavePhaseSpawning, s.Phase())
	assert.Len(t, sp.agents, 1)

	s.Update(3.5)
	assert.Len(t, sp.agents, 1, "spawn interval not respected")
	s.Update(4)
	assert.Len(t, sp.agents, 2)
}

func TestSchedulerCompletesAllWaves(t *testing.T) {
	cfg := testWaveConfig()
	cfg.MaxWaves = 2
	cfg.BaseEnemies = 2
	cfg.QuotaScaling = 1
	s, sp, rec := newTestScheduler(cfg)

	for now := 0.0; now < 30 && s.Phase() != WavePhaseAllComplete; now += 0.1 {
		s.Update(now)
		if a := sp.kill(); a != nil {
			s.NotifyDeath(a)
		}
	}
	require.Equal(t, WavePhaseAllComplete, s.Phase())
	assert.Equal(t, 2, s.Wave())
	assert.Equal(t, 1, rec.count(EventAllWavesComplete))

	spawned := len(sp.agents)
	s.Update(100)
	assert.Len(t, sp.agents, spawned, "a finished scheduler spawns nothing")
	assert.Equal(t, 2, s.Wave())
}

func TestSchedulerInfiniteKeepsGoing(t *testing.T) {
	cfg := testWaveConfig()
	cfg.Infinite = true
	cfg.MaxWaves = 0
	cfg.BaseEnemies = 1
	cfg.QuotaScaling = 1
	cfg.InterWaveDelay = 0
	s, sp, _ := newTestScheduler(cfg)

	for now := 0.0; now < 10; now += 0.1 {
		s.Update(now)
		if a := sp.kill(); a != nil {
			s.NotifyDeath(a)
		}
	}
	assert.NotEqual(t, WavePhaseAllComplete, s.Phase())
	assert.Greater(t, s.Wave(), 10)
}

func TestSchedulerBossWave(t *testing.T) {
	cfg := testWaveConfig()
	cfg.BossWave = 1
	cfg.BossKind = AgentBrute
	cfg.BaseEnemies = 2
	s, sp, rec := newTestScheduler(cfg)

	s.Update(0)
	boss := sp.boss()
	require.NotNil(t, boss, "boss spawns as the boss wave starts")
	assert.Equal(t, AgentBrute, boss.Kind)
	assert.Equal(t, 1, s.State().BossLive)
	assert.Equal(t, 1, s.State().Spawned, "the boss is not counted toward the quota")

	for now := 0.1; now < 2; now += 0.1 {
		s.Update(now)
		if a := sp.kill(); a != nil {
			s.NotifyDeath(a)
		}
	}
	assert.Equal(t, 2, s.State().Killed)
	assert.Equal(t, 1, s.Wave())
	assert.Zero(t, rec.count(EventWaveComplete), "wave waits for the boss")

	boss.Health.ApplyDamage(DamageInfo{Amount: boss.Health.Health()})
	s.NotifyDeath(boss)
	s.Update(2)
	assert.Equal(t, 1, rec.count(EventWaveComplete))
	assert.Equal(t, WavePhaseIdle, s.Phase())
}

func TestSchedulerRetriesFailedSpawn(t *testing.T) {
	cfg := testWaveConfig()
	s, sp, _ := newTestScheduler(cfg)
	sp.fail = true

	s.Update(0)
	st := s.State()
	assert.Equal(t, 1, st.Wave)
	assert.Zero(t, st.Spawned)
	assert.InDelta(t, cfg.PollInterval, st.NextAt, 1e-12, "retry after the poll interval")

	sp.fail = false
	s.Update(0.1)
	assert.Empty(t, sp.agents, "no retry before the poll deadline")
	s.Update(cfg.PollInterval)
	assert.Len(t, sp.agents, 1)
}

func TestSchedulerNotifyRemovedReturnsSlot(t *testing.T) {
	cfg := testWaveConfig()
	cfg.BaseEnemies = 2
	s, sp, _ := newTestScheduler(cfg)

	s.Update(0)
	s.Update(0.1)
	require.Len(t, sp.agents, 2)

	s.NotifyRemoved(sp.agents[0])
	st := s.State()
	assert.Equal(t, 1, st.Spawned)
	assert.Equal(t, 1, st.Live)

	s.Update(0.2)
	assert.Len(t, sp.agents, 3, "the removed slot is spawned again")
}

func TestSchedulerIgnoresStaleWaveDeaths(t *testing.T) {
	cfg := testWaveConfig()
	s, _, _ := newTestScheduler(cfg)
	s.Update(0)

	stale := &Agent{wave: 0, Health: NewHealth(1)}
	s.NotifyDeath(stale)
	assert.Zero(t, s.State().Killed, "a death from another wave does not count")
}

func TestPickKindFiltersAndFallsBack(t *testing.T) {
	cfg := testWaveConfig()
	s, _, _ := newTestScheduler(cfg)
	assert.Equal(t, AgentGrunt, s.PickKind(), "empty composition falls back to the default")

	cfg.Composition = []SpawnWeight{
		{Kind: AgentRunner, Weight: 3, MinWave: 1},
		{Kind: AgentGunner, Weight: 5, MinWave: 3},
		{Kind: AgentSpitter, Weight: 0, MinWave: 1},
	}
	s, _, _ = newTestScheduler(cfg)
	s.Update(0)
	for range 50 {
		assert.Equal(t, AgentRunner, s.PickKind(), "only runners are eligible in wave 1")
	}

	s.wave = 3
	seen := map[AgentKind]bool{}
	for range 200 {
		seen[s.PickKind()] = true
	}
	assert.True(t, seen[AgentRunner] && seen[AgentGunner])
	assert.False(t, seen[AgentSpitter], "zero weight is never drawn")
}

func TestSchedulerInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := testWaveConfig()
		cfg.BaseEnemies = rapid.IntRange(1, 12).Draw(t, "base")
		cfg.ConcurrencyCap = rapid.IntRange(1, 6).Draw(t, "cap")
		cfg.SpawnInterval = rapid.Float64Range(0, 1).Draw(t, "interval")
		cfg.MaxWaves = rapid.IntRange(1, 5).Draw(t, "waves")
		if rapid.Bool().Draw(t, "boss") {
			cfg.BossWave = rapid.IntRange(1, 5).Draw(t, "bossWave")
			cfg.BossKind = AgentBrute
		}
		s, sp, rec := newTestScheduler(cfg)

		now := 0.0
		prevWave := 0
		steps := rapid.IntRange(1, 400).Draw(t, "steps")
		for range steps {
			now += rapid.Float64Range(0.01, 0.5).Draw(t, "dt")
			s.Update(now)

			st := s.State()
			if st.Live > cfg.ConcurrencyCap {
				t.Fatalf("live %d exceeds cap %d", st.Live, cfg.ConcurrencyCap)
			}
			if st.Wave < prevWave || st.Wave > prevWave+1 {
				t.Fatalf("wave went %d -> %d in one update", prevWave, st.Wave)
			}
			if st.Killed > st.Spawned || st.Spawned > st.Quota {
				t.Fatalf("counters out of order: killed %d spawned %d quota %d", st.Killed, st.Spawned, st.Quota)
			}
			prevWave = st.Wave

			switch rapid.IntRange(0, 2).Draw(t, "action") {
			case 1:
				if a := sp.kill(); a != nil {
					s.NotifyDeath(a)
				}
			case 2:
				if b := sp.boss(); b != nil && b.Alive() {
					b.Health.ApplyDamage(DamageInfo{Amount: b.Health.Health()})
					s.NotifyDeath(b)
				}
			}
		}
		if got := rec.count(EventWaveComplete); got > cfg.MaxWaves || got < s.Wave()-1 {
			t.Fatalf("%d completions for wave %d of %d", got, s.Wave(), cfg.MaxWaves)
		}
		if s.Phase() == WavePhaseAllComplete && s.Wave() != cfg.MaxWaves {
			t.Fatalf("finished at wave %d of %d", s.Wave(), cfg.MaxWaves)
		}
		if math.IsNaN(s.State().Difficulty) || s.State().Difficulty < 1 {
			t.Fatalf("bad difficulty %v", s.State().Difficulty)
		}
	})
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quickWaves(c *Config) {
	c.Waves.StartDelay = 0
	c.Waves.MaxWaves = 2
	c.Waves.BaseEnemies = 2
	c.Waves.QuotaScaling = 1
	c.Waves.ConcurrencyCap = 2
	c.Waves.SpawnInterval = 0.2
	c.Waves.InterWaveDelay = 0.5
	c.Waves.BossWave = 0
}

func TestSimRunsAllWavesToCompletion(t *testing.T) {
	ts := NewTestSim(WithOpenArena(60, 60), WithConfig(quickWaves))

	for i := 0; i < 3000 && ts.Outcome() == OutcomeInProgress; i++ {
		ts.Step(PlayerInput{})
		ts.KillAll()
	}

	require.Equal(t, OutcomeAllWavesComplete, ts.Outcome())
	assert.Equal(t, 4, ts.Reporter.TotalKills())
	assert.Equal(t, 2, ts.Reporter.WavesCompleted)
	assert.True(t, ts.Reporter.Finished)

	reason := DetermineRunOutcome(ts.Sim)
	assert.Equal(t, "flawless_all_waves_cleared", reason.Description)
	assert.Equal(t, 2, reason.WavesCompleted)

	tick := ts.CurrentTick()
	assert.Nil(t, ts.Step(PlayerInput{}), "a finished run does not tick")
	assert.Equal(t, tick, ts.CurrentTick())
}

func TestSimPlayerDeathEndsRun(t *testing.T) {
	ts := NewTestSim(WithOpenArena(60, 60), WithoutWaves())
	ts.Step(PlayerInput{})
	ts.Player().Health.ApplyDamage(DamageInfo{Amount: 1000, SourceID: 99})
	ts.Step(PlayerInput{})

	require.Equal(t, OutcomePlayerDied, ts.Outcome())
	assert.True(t, ts.Reporter.PlayerDied)
	reason := DetermineRunOutcome(ts.Sim)
	assert.Equal(t, OutcomePlayerDied, reason.Outcome)
	assert.Equal(t, "player_died", reason.Description)

	tick := ts.CurrentTick()
	ts.RunTicks(5, PlayerInput{Trigger: true})
	assert.Equal(t, tick, ts.CurrentTick(), "a dead player's run does not tick")
}

func TestSimSpawnedAgentSkipsItsFirstTick(t *testing.T) {
	ts := NewTestSim(
		WithOpenArena(60, 60),
		WithConfig(func(c *Config) {
			quickWaves(c)
			for i := range c.Agents {
				c.Agents[i].DetectionRange = 100
			}
		}),
	)

	ts.Step(PlayerInput{})
	require.Len(t, ts.Hostiles(), 1, "the first wave spawns immediately")
	a := ts.Hostile(0)
	assert.Equal(t, AIStatePatrol, a.State())
	assert.Zero(t, a.Brain.Transitions(), "no AI on the spawn tick")

	ts.Step(PlayerInput{})
	assert.Equal(t, AIStateChase, a.State())
}

func TestSimClearHostilesReturnsQuota(t *testing.T) {
	ts := NewTestSim(WithOpenArena(60, 60), WithConfig(quickWaves))
	ts.RunTicks(15, PlayerInput{})
	require.NotEmpty(t, ts.Hostiles())

	ts.ClearHostiles()
	assert.Empty(t, ts.Hostiles())
	st := ts.Scheduler().State()
	assert.Zero(t, st.Live)
	assert.Zero(t, st.Spawned)
	assert.Zero(t, ts.Reporter.TotalKills(), "cleared hostiles are not kills")

	ts.RunTicks(30, PlayerInput{})
	assert.NotEmpty(t, ts.Hostiles(), "the wave refills after a clear")
	assert.Equal(t, 1, ts.Scheduler().Wave())
}

func TestSimPlayerShotKillsAndCredits(t *testing.T) {
	ts := NewTestSim(
		WithOpenArena(60, 60),
		WithoutWaves(),
		WithPerfectAim(),
		WithPlayerAt(20, 30),
		WithHostile(AgentRunner, 30, 30),
	)
	r := ts.Hostile(0)

	ts.RunUntil(func(ts *TestSim) bool { return !r.Alive() }, 600, func(ts *TestSim) PlayerInput {
		in := ts.AimAt(r)
		in.Trigger = true
		in.Select = 2
		return in
	})

	require.False(t, r.Alive(), "runner should die to sustained rifle fire")
	kills := ts.EventsFor(EventKill, r.ID)
	require.Len(t, kills, 1)
	assert.Equal(t, ts.Player().ID, kills[0].SourceID)
	assert.Equal(t, WeaponAssaultRifle, kills[0].Weapon)
	assert.Len(t, ts.EventsFor(EventDeath, r.ID), 1)
	assert.Equal(t, 1, ts.Reporter.Kills[AgentRunner])
	assert.Greater(t, ts.Reporter.ShotsFired, 0)
	assert.Equal(t, 1, ts.Log().CountCategory("combat", "kill"))
}

func TestSimPlayerReloadEvents(t *testing.T) {
	ts := NewTestSim(WithOpenArena(60, 60), WithoutWaves())
	w := ts.Player().Weapon()
	ts.Step(PlayerInput{Trigger: true})
	require.Equal(t, w.Arch.MagazineSize-1, w.Magazine())

	ts.Step(PlayerInput{Reload: true})
	require.True(t, w.Reloading())
	require.Len(t, ts.EventsFor(EventReloadStart, ts.Player().ID), 1)

	ts.RunFor(w.Arch.ReloadTime+0.1, PlayerInput{})
	assert.False(t, w.Reloading())
	assert.Equal(t, w.Arch.MagazineSize, w.Magazine())
	assert.Len(t, ts.EventsFor(EventReloadComplete, ts.Player().ID), 1)
}

func TestSimSwitchingWeaponCancelsReload(t *testing.T) {
	ts := NewTestSim(WithOpenArena(60, 60), WithoutWaves())
	p := ts.Player()
	pistol := p.Weapon()
	ts.Step(PlayerInput{Trigger: true})
	ts.Step(PlayerInput{Reload: true})
	require.True(t, pistol.Reloading())

	ts.Step(PlayerInput{Select: 2})
	assert.Equal(t, 1, p.CurrentSlot())
	assert.False(t, pistol.Reloading())
	assert.Equal(t, pistol.Arch.MagazineSize-1, pistol.Magazine())
}

func TestSimIsDeterministicPerSeed(t *testing.T) {
	run := func() (SimSnapshot, int, int) {
		ts := NewTestSim(WithTestSeed(42), WithConfig(func(c *Config) {
			c.Waves.StartDelay = 0
			c.Waves.SpawnInterval = 0.3
		}))
		bot := NewBotPilot()
		for range 900 {
			ts.Step(bot.Input(ts.Sim))
		}
		return ts.Snapshot(), ts.Reporter.ShotsFired, ts.Player().Health.Health()
	}
	snapA, shotsA, hpA := run()
	snapB, shotsB, hpB := run()
	assert.Equal(t, snapA, snapB)
	assert.Equal(t, shotsA, shotsB)
	assert.Equal(t, hpA, hpB)
}

func TestScoreBoardAttributesPlayerKills(t *testing.T) {
	b := NewScoreBoard(0)
	b.OnKill(Event{Kind: EventKill, SourceID: 0, AgentKind: AgentGrunt, Critical: true, Weapon: WeaponSniper, Wave: 2})
	b.OnKill(Event{Kind: EventKill, SourceID: 7, AgentKind: AgentRunner})
	b.OnWave(Event{Kind: EventWaveStart, Wave: 3})
	b.OnWave(Event{Kind: EventWaveComplete, Wave: 1})
	b.OnWave(Event{Kind: EventWaveComplete, Wave: 2})

	require.Len(t, b.Kills, 1)
	assert.True(t, b.Kills[0].Critical)
	assert.Equal(t, 2, b.Kills[0].Wave)
	assert.Equal(t, map[AgentKind]int{AgentGrunt: 1}, b.KillsByKind())
	assert.Equal(t, 2, b.HighestWave())
	assert.Zero(t, NewScoreBoard(0).HighestWave())
}

func TestRunReporterAccounting(t *testing.T) {
	r := NewRunReporter(0)
	r.OnFire(Event{Kind: EventFire, AgentID: 0})
	r.OnFire(Event{Kind: EventFire, AgentID: 0})
	r.OnFire(Event{Kind: EventFire, AgentID: 5})
	r.OnImpact(Event{Kind: EventHit, AgentID: 5, SourceID: 0, Damage: 40, Critical: true})
	r.OnImpact(Event{Kind: EventHit, AgentID: 0, SourceID: 5, Damage: 8})
	r.OnImpact(Event{Kind: EventImpact, AgentID: -1, SourceID: 0})
	r.OnKill(Event{Kind: EventKill, AgentKind: AgentGrunt, SourceID: 0, Critical: true})
	r.OnWave(Event{Kind: EventBossSpawn})
	r.OnWave(Event{Kind: EventWaveComplete})

	assert.Equal(t, 2, r.ShotsFired)
	assert.Equal(t, 1, r.Hits)
	assert.Equal(t, 40, r.DamageDealt)
	assert.Equal(t, 8, r.DamageTaken)
	assert.Equal(t, 1, r.Impacts)
	assert.InDelta(t, 0.5, r.Accuracy(), 1e-12)
	assert.Equal(t, 1, r.CriticalKills)

	out := r.Format(RunOutcomeReason{Outcome: OutcomePlayerDied, Description: "player_died", Wave: 3})
	assert.Contains(t, out, "player_died")
	assert.Contains(t, out, "grunt=1")
	assert.Contains(t, out, "bosses 1")
	assert.Zero(t, NewRunReporter(0).Accuracy())
}

func TestSimReporterWindow(t *testing.T) {
	ts := NewTestSim(
		WithOpenArena(60, 60),
		WithoutWaves(),
		WithPlayerAt(20, 30),
		WithHostile(AgentGrunt, 25, 30),
		WithHostile(AgentGrunt, 50, 50),
	)
	rep := NewSimReporter(120)
	assert.Nil(t, rep.WindowSummary())
	assert.Equal(t, "(no snapshots)\n", rep.FormatLatest())

	for i := 1; i <= 180; i++ {
		ts.Step(PlayerInput{})
		if i%60 == 0 {
			rep.Collect(ts.Sim)
		}
	}
	require.Len(t, rep.History(), 3)
	latest := rep.Latest()
	assert.Equal(t, 180, latest.Tick)
	assert.GreaterOrEqual(t, latest.NearestHostile, 0.0)
	assert.Less(t, latest.NearestHostile, 6.0)
	assert.Equal(t, 2, latest.States[AIStatePatrol]+latest.States[AIStateChase]+latest.States[AIStateAttack])

	wr := rep.WindowSummary()
	require.NotNil(t, wr)
	assert.Equal(t, 3, wr.Samples)
	assert.Equal(t, 60, wr.FromTick)
	assert.Contains(t, wr.Format(), "Behaviour Report")
	assert.Contains(t, rep.FormatLatest(), "T=180")
}

func TestSimResuppliesOnWaveComplete(t *testing.T) {
	ts := NewTestSim(WithOpenArena(60, 60), WithConfig(quickWaves), WithVerbose(true))
	p := ts.Player()
	before := make([]int, len(p.Weapons))
	for i, w := range p.Weapons {
		before[i] = w.Reserve()
	}

	for i := 0; i < 3000 && ts.CountEvents(EventWaveComplete) == 0; i++ {
		ts.Step(PlayerInput{})
		ts.KillAll()
	}
	require.Equal(t, 1, ts.CountEvents(EventWaveComplete), ts.Log().Format())
	for i, w := range p.Weapons {
		assert.Equal(t, before[i]+w.Arch.MagazineSize, w.Reserve(), "%s reserve", w.Kind())
	}

	e, ok := ts.Log().LastOf("combat", "resupply")
	require.True(t, ok)
	assert.Equal(t, 1.0, e.NumVal)
	assert.True(t, ts.Log().HasEntry("wave", "wave_complete", "wave 1"))
	assert.False(t, ts.Log().HasEntry("wave", "wave_complete", "wave 2"))

	mine := ts.Log().FilterAgent("player")
	require.NotEmpty(t, mine)
	moves := 0
	for _, e := range mine {
		assert.Equal(t, "player", e.Agent)
		if e.Category == "move" {
			moves++
		}
	}
	assert.Equal(t, ts.CurrentTick(), moves, "verbose logging records one position per tick")
}

func TestSimResupplyDisabled(t *testing.T) {
	ts := NewTestSim(WithOpenArena(60, 60), WithConfig(func(c *Config) {
		quickWaves(c)
		c.Sim.ResupplyMagazines = 0
	}))
	w := ts.Player().Weapon()
	reserve := w.Reserve()
	for i := 0; i < 3000 && ts.CountEvents(EventWaveComplete) == 0; i++ {
		ts.Step(PlayerInput{})
		ts.KillAll()
	}
	require.Equal(t, 1, ts.CountEvents(EventWaveComplete))
	assert.Equal(t, reserve, w.Reserve())
	_, ok := ts.Log().LastOf("combat", "resupply")
	assert.False(t, ok)
}

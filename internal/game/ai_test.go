package game

import (
	"testing"

	"pgregory.net/rapid"
)

func TestNextStateTable(t *testing.T) {
	cases := []struct {
		name     string
		cur      AIState
		dist     float64
		detected bool
		want     AIState
	}{
		{"patrol far", AIStatePatrol, 20, true, AIStatePatrol},
		{"patrol in range", AIStatePatrol, 9, true, AIStateChase},
		{"patrol in range but hidden", AIStatePatrol, 9, false, AIStatePatrol},
		{"patrol point blank goes to chase first", AIStatePatrol, 1, true, AIStateChase},
		{"chase lost", AIStateChase, 11, true, AIStatePatrol},
		{"chase closing", AIStateChase, 5, true, AIStateChase},
		{"chase in reach", AIStateChase, 2, true, AIStateAttack},
		{"attack holds", AIStateAttack, 1.5, true, AIStateAttack},
		{"attack backs off", AIStateAttack, 3, true, AIStateChase},
		{"attack lost", AIStateAttack, 10.5, true, AIStatePatrol},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextState(tc.cur, tc.dist, 10, 2, tc.detected); got != tc.want {
				t.Fatalf("nextState(%s, %.1f) = %s, want %s", tc.cur, tc.dist, got, tc.want)
			}
		})
	}
}

func TestNextStateProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		attack := rapid.Float64Range(0.5, 20).Draw(t, "attack")
		detect := attack + rapid.Float64Range(0, 30).Draw(t, "extra")
		dist := rapid.Float64Range(0, 80).Draw(t, "dist")
		cur := AIState(rapid.IntRange(0, 2).Draw(t, "state"))
		detected := rapid.Bool().Draw(t, "detected")

		next := nextState(cur, dist, detect, attack, detected)
		if dist > detect && next != AIStatePatrol {
			t.Fatalf("%s at %.2f beyond detection %.2f went to %s", cur, dist, detect, next)
		}
		if cur == AIStatePatrol && next == AIStateAttack {
			t.Fatal("patrol jumped straight to attack")
		}
		if next == AIStateAttack && dist > attack {
			t.Fatalf("attack at %.2f beyond reach %.2f", dist, attack)
		}
		// Evaluating again from the result must not skip a state either.
		if cur == AIStatePatrol && next == AIStateChase && dist <= attack {
			if again := nextState(next, dist, detect, attack, detected); again != AIStateAttack {
				t.Fatalf("expected chase to escalate to attack on the next tick, got %s", again)
			}
		}
	})
}

// stationaryGrunt makes the grunt immobile with detection 10 and reach 2.
func stationaryGrunt(c *Config) {
	for i := range c.Agents {
		if c.Agents[i].Kind == AgentGrunt {
			c.Agents[i].DetectionRange = 10
			c.Agents[i].AttackRange = 2
			c.Agents[i].Speed = 0
		}
	}
}

func TestAIPatrolChaseAttackByDistance(t *testing.T) {
	ts := NewTestSim(
		WithOpenArena(60, 60),
		WithoutWaves(),
		WithConfig(stationaryGrunt),
		WithPlayerAt(20, 40),
		WithHostile(AgentGrunt, 20, 20),
	)
	g := ts.Hostile(0)
	p := ts.Player()

	ts.RunTicks(3, PlayerInput{})
	if g.State() != AIStatePatrol {
		t.Fatalf("expected patrol at 20 m, got %s", g.State())
	}

	p.Pos = V3(20, 0, 29)
	ts.Step(PlayerInput{})
	if g.State() != AIStateChase {
		t.Fatalf("expected chase at 9 m, got %s", g.State())
	}
	if alerts := ts.EventsFor(EventAlert, g.ID); len(alerts) != 1 {
		t.Fatalf("expected one alert on entering chase, got %d", len(alerts))
	}

	p.Pos = V3(20, 0, 21.5)
	evs := ts.Step(PlayerInput{})
	if g.State() != AIStateAttack {
		t.Fatalf("expected attack at 1.5 m, got %s", g.State())
	}
	struck := false
	for _, e := range evs {
		if e.Kind == EventHit && e.SourceID == g.ID && e.AgentID == p.ID {
			struck = true
		}
	}
	if !struck {
		t.Fatalf("expected a melee strike on entering attack, got %v", evs)
	}
	if p.Health.Health() != p.Health.MaxHealth()-g.Arch.MeleeDamage {
		t.Fatalf("expected %d melee damage, hp %d", g.Arch.MeleeDamage, p.Health.Health())
	}

	// Cooldown: no second strike inside AttackCooldown.
	ts.RunTicks(30, PlayerInput{})
	if hits := len(ts.EventsFor(EventHit, p.ID)); hits != 1 {
		t.Fatalf("expected a single strike inside the cooldown, got %d", hits)
	}

	p.Pos = V3(20, 0, 45)
	ts.Step(PlayerInput{})
	if g.State() != AIStatePatrol {
		t.Fatalf("expected patrol once out of detection, got %s", g.State())
	}
	if g.Brain.Transitions() != 3 {
		t.Fatalf("expected 3 transitions, got %d", g.Brain.Transitions())
	}
}

func TestAIWallBlocksDetection(t *testing.T) {
	ts := NewTestSim(
		WithOpenArena(60, 60),
		WithoutWaves(),
		WithConfig(stationaryGrunt),
		WithWall(10, 24, 20, 1, 4),
		WithPlayerAt(20, 28),
		WithHostile(AgentGrunt, 20, 20),
	)
	ts.RunTicks(10, PlayerInput{})
	if s := ts.Hostile(0).State(); s != AIStatePatrol {
		t.Fatalf("expected the wall to hide the player, got %s", s)
	}
}

func TestAIDeadAgentNeverTransitions(t *testing.T) {
	ts := NewTestSim(
		WithOpenArena(60, 60),
		WithoutWaves(),
		WithConfig(stationaryGrunt),
		WithPlayerAt(20, 40),
		WithHostile(AgentGrunt, 20, 20),
	)
	g := ts.Hostile(0)
	ts.Step(PlayerInput{})
	ts.KillAll()
	if g.Brain.Enabled() {
		t.Fatal("brain should be disabled on death")
	}
	before := g.Brain.Transitions()

	ts.Player().Pos = V3(20, 0, 21.5)
	ts.RunTicks(10, PlayerInput{})
	if g.Brain.Transitions() != before || g.State() != AIStatePatrol {
		t.Fatalf("dead agent transitioned: %d -> %d (%s)", before, g.Brain.Transitions(), g.State())
	}
	if ts.Player().Health.Health() != ts.Player().Health.MaxHealth() {
		t.Fatal("dead agent attacked")
	}
	if len(ts.Hostiles()) != 1 {
		t.Fatal("dead agent should linger for the grace period")
	}

	ts.RunFor(ts.Cfg.Sim.DeathGrace, PlayerInput{})
	if len(ts.Hostiles()) != 0 {
		t.Fatal("dead agent should be removed after the grace period")
	}
}

func TestAIRangedAttackFiresThroughEngine(t *testing.T) {
	ts := NewTestSim(
		WithOpenArena(60, 60),
		WithoutWaves(),
		WithPerfectAim(),
		WithPlayerAt(30, 40),
		WithHostile(AgentGunner, 30, 30),
	)
	g := ts.Hostile(0)
	ts.RunTicks(30, PlayerInput{})

	if g.State() != AIStateAttack {
		t.Fatalf("expected the gunner to attack from 10 m, got %s", g.State())
	}
	if fires := ts.EventsFor(EventFire, g.ID); len(fires) != 1 {
		t.Fatalf("expected one shot inside the cooldown, got %d", len(fires))
	}
	hit := false
	for _, e := range ts.EventsFor(EventHit, ts.Player().ID) {
		if e.SourceID == g.ID && e.Damage > 0 {
			hit = true
		}
	}
	if !hit || ts.Player().Health.Health() >= ts.Player().Health.MaxHealth() {
		t.Fatalf("expected the shot to wound the player, hp %d", ts.Player().Health.Health())
	}
}

func TestAISpitterLaunchesProjectile(t *testing.T) {
	ts := NewTestSim(
		WithOpenArena(60, 60),
		WithoutWaves(),
		WithPerfectAim(),
		WithPlayerAt(30, 40),
		WithHostile(AgentSpitter, 30, 30),
	)
	spitter := ts.Hostile(0)
	launched := ts.RunUntil(func(ts *TestSim) bool { return len(ts.Projectiles()) > 0 }, 30, nil)
	if launched < 0 {
		t.Fatal("expected the spitter to launch a projectile")
	}
	if p := ts.Projectiles()[0]; p.ShooterID != spitter.ID || p.TargetID != ts.Player().ID {
		t.Fatalf("unexpected projectile %+v", p)
	}
	if d := ts.Projectiles()[0].Traveled(); d <= 0 || d >= 10 {
		t.Fatalf("expected the projectile part way to the player, traveled %.2f", d)
	}

	// 10 m at 22 m/s lands well before the next launch.
	ts.RunFor(1.5, PlayerInput{})
	if len(ts.Projectiles()) != 0 {
		t.Fatalf("projectile still in flight after 1.5 s: %d", len(ts.Projectiles()))
	}
}

func TestAIIdleWhenPlayerDead(t *testing.T) {
	ts := NewTestSim(
		WithOpenArena(60, 60),
		WithoutWaves(),
		WithConfig(stationaryGrunt),
		WithPlayerAt(20, 25),
		WithHostile(AgentGrunt, 20, 20),
	)
	g := ts.Hostile(0)
	ts.Step(PlayerInput{})
	if g.State() != AIStateChase {
		t.Fatalf("expected chase, got %s", g.State())
	}
	ts.Player().Health.ApplyDamage(DamageInfo{Amount: 1000, SourceID: g.ID})
	ts.think(g)
	if g.State() != AIStatePatrol {
		t.Fatalf("expected patrol once the target is dead, got %s", g.State())
	}
}

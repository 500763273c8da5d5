package game

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestHealthDamageAndDeathFiresOnce(t *testing.T) {
	h := NewHealth(100)
	deaths := 0
	var last DamageInfo
	h.OnDeath(func(info DamageInfo) {
		deaths++
		last = info
	})

	if got := h.ApplyDamage(DamageInfo{Amount: 30, SourceID: 7}); got != 30 {
		t.Fatalf("expected 30 applied, got %d", got)
	}
	if h.Health() != 70 {
		t.Fatalf("expected 70 hp, got %d", h.Health())
	}
	if got := h.ApplyDamage(DamageInfo{Amount: 500, SourceID: 9, Critical: true}); got != 70 {
		t.Fatalf("expected the overkill to apply only the remaining 70, got %d", got)
	}
	if !h.Dead() || h.Health() != 0 {
		t.Fatalf("expected dead at 0 hp, got dead=%v hp=%d", h.Dead(), h.Health())
	}
	if deaths != 1 || last.SourceID != 9 || !last.Critical {
		t.Fatalf("expected one death credited to #9 (critical), got %d deaths, %+v", deaths, last)
	}

	if got := h.ApplyDamage(DamageInfo{Amount: 10}); got != 0 {
		t.Fatalf("damage after death should be a no-op, applied %d", got)
	}
	if got := h.ApplyHeal(50); got != 0 || h.Health() != 0 {
		t.Fatalf("heal after death should be a no-op, applied %d hp %d", got, h.Health())
	}
	if deaths != 1 {
		t.Fatalf("death fired %d times", deaths)
	}
}

func TestHealthIgnoresNonPositiveAmounts(t *testing.T) {
	h := NewHealth(50)
	if h.ApplyDamage(DamageInfo{Amount: -5}) != 0 || h.ApplyDamage(DamageInfo{}) != 0 {
		t.Fatal("non-positive damage should apply nothing")
	}
	h.ApplyDamage(DamageInfo{Amount: 20})
	if h.ApplyHeal(-3) != 0 {
		t.Fatal("negative heal should apply nothing")
	}
	if got := h.ApplyHeal(100); got != 20 || h.Health() != 50 {
		t.Fatalf("heal should clamp at max: applied %d hp %d", got, h.Health())
	}
}

func TestNewHealthClampsMax(t *testing.T) {
	if h := NewHealth(0); h.MaxHealth() != 1 || h.Health() != 1 {
		t.Fatalf("expected max clamped to 1, got %d/%d", h.Health(), h.MaxHealth())
	}
}

func TestHealthOnChange(t *testing.T) {
	h := NewHealth(10)
	var changes [][2]int
	h.OnChange(func(prev, cur int) { changes = append(changes, [2]int{prev, cur}) })
	h.ApplyDamage(DamageInfo{Amount: 4})
	h.ApplyHeal(1)
	h.ApplyHeal(5) // clamps to +3
	h.ApplyHeal(5) // full: no change
	want := [][2]int{{10, 6}, {6, 7}, {7, 10}}
	if len(changes) != len(want) {
		t.Fatalf("expected %v, got %v", want, changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("change %d: expected %v, got %v", i, want[i], changes[i])
		}
	}
}

func TestHealthInvulnerability(t *testing.T) {
	h := NewHealth(100)
	h.SetInvulnerable(1)
	if h.ApplyDamage(DamageInfo{Amount: 50}) != 0 {
		t.Fatal("invulnerable target took damage")
	}
	h.Update(0.6)
	if !h.Invulnerable() {
		t.Fatal("invulnerability ended early")
	}
	h.Update(0.6)
	if h.Invulnerable() {
		t.Fatal("invulnerability should have expired")
	}
	if h.ApplyDamage(DamageInfo{Amount: 50}) != 50 {
		t.Fatal("expected damage after invulnerability expired")
	}
}

func TestHealthRegenWaitsForDelay(t *testing.T) {
	h := NewHealth(100)
	h.SetRegen(10, 2)
	h.ApplyDamage(DamageInfo{Amount: 50})

	h.Update(1.5)
	if h.Health() != 50 {
		t.Fatalf("regen started before the delay: hp %d", h.Health())
	}
	h.Update(1.0) // the whole step counts once past the delay
	if h.Health() != 60 {
		t.Fatalf("expected 10 hp regenerated, got hp %d", h.Health())
	}

	// Fresh damage restarts the delay.
	h.ApplyDamage(DamageInfo{Amount: 5})
	h.Update(1)
	if h.Health() != 55 {
		t.Fatalf("regen should pause after new damage, hp %d", h.Health())
	}
	for i := 0; i < 100; i++ {
		h.Update(1)
	}
	if h.Health() != 100 {
		t.Fatalf("regen should stop at max, hp %d", h.Health())
	}
}

func TestHealthHugeHealStopsAtMax(t *testing.T) {
	h := NewHealth(100)
	deaths := 0
	h.OnDeath(func(DamageInfo) { deaths++ })
	h.ApplyDamage(DamageInfo{Amount: 50})

	if applied := h.ApplyHeal(math.MaxInt); applied != 50 {
		t.Fatalf("expected 50 healed, got %d", applied)
	}
	if h.Health() != 100 || h.Dead() || deaths != 0 {
		t.Fatalf("expected full health alive, hp %d dead %v deaths %d", h.Health(), h.Dead(), deaths)
	}
	if applied := h.ApplyHeal(math.MaxInt); applied != 0 {
		t.Fatalf("expected no heal at max, got %d", applied)
	}
}

func TestHealthInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxHP := rapid.IntRange(1, 1000).Draw(t, "max")
		h := NewHealth(maxHP)
		deaths := 0
		h.OnDeath(func(DamageInfo) { deaths++ })

		ops := rapid.IntRange(1, 60).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			amount := rapid.IntRange(-50, 400).Draw(t, "amount")
			if rapid.Bool().Draw(t, "huge") {
				amount = math.MaxInt - rapid.IntRange(0, 1000).Draw(t, "below_max")
			}
			before := h.Health()
			wasDead := h.Dead()
			var applied int
			if rapid.Bool().Draw(t, "heal") {
				applied = h.ApplyHeal(amount)
				if applied < 0 || h.Health() != before+applied {
					t.Fatalf("heal accounting broken: before %d applied %d after %d", before, applied, h.Health())
				}
			} else {
				applied = h.ApplyDamage(DamageInfo{Amount: amount})
				if applied < 0 || h.Health() != before-applied {
					t.Fatalf("damage accounting broken: before %d applied %d after %d", before, applied, h.Health())
				}
			}
			if h.Health() < 0 || h.Health() > h.MaxHealth() {
				t.Fatalf("health %d escaped [0, %d]", h.Health(), h.MaxHealth())
			}
			if wasDead && applied != 0 {
				t.Fatalf("dead target changed by %d", applied)
			}
			if h.Dead() != (h.Health() == 0) {
				t.Fatalf("dead=%v with hp %d", h.Dead(), h.Health())
			}
		}
		if deaths > 1 || (deaths == 1) != h.Dead() {
			t.Fatalf("death fired %d times, dead=%v", deaths, h.Dead())
		}
	})
}

package game

import (
	"math"
	"math/rand"
)

// Weapon is the per-instance ammo, reload, fire-rate and recoil state of one
// weapon. All timing is expressed as sim-clock deadlines.
type Weapon struct {
	Arch WeaponArchetype

	magazine int
	reserve  int

	reloading  bool
	reloadDone float64

	lastFire float64
	hasFired bool

	recoil     AimOffset
	recoilRate AimOffset // radians per second back toward zero

	triggerHeld bool
}

// NewWeapon returns a weapon with a full magazine and the archetype's
// reserve.
func NewWeapon(arch WeaponArchetype) *Weapon {
	if arch.MagazineSize < 1 {
		arch.MagazineSize = 1
	}
	return &Weapon{
		Arch:     arch,
		magazine: arch.MagazineSize,
		reserve:  max(0, arch.ReserveAmmo),
	}
}

func (w *Weapon) Kind() WeaponKind  { return w.Arch.Kind }
func (w *Weapon) Magazine() int     { return w.magazine }
func (w *Weapon) Reserve() int      { return w.reserve }
func (w *Weapon) Reloading() bool   { return w.reloading }
func (w *Weapon) Recoil() AimOffset { return w.recoil }

// ReloadProgress is 0-1 through the current reload, or 0 when idle.
func (w *Weapon) ReloadProgress(now float64) float64 {
	if !w.reloading || w.Arch.ReloadTime <= 0 {
		return 0
	}
	return clamp01(1 - (w.reloadDone-now)/w.Arch.ReloadTime)
}

// CanFire reports whether a shot is allowed at time now.
func (w *Weapon) CanFire(now float64) bool {
	if w.reloading || w.magazine <= 0 {
		return false
	}
	return !w.hasFired || now-w.lastFire >= w.Arch.FireInterval
}

// Fire spends one round and resolves the shot through the engine. The
// weapon's archetype and current recoil offset are filled into shot.
// Emptying the magazine starts a reload automatically.
func (w *Weapon) Fire(now float64, engine *BallisticEngine, shot Shot) (ShotResult, bool) {
	if !w.CanFire(now) {
		return ShotResult{}, false
	}
	w.magazine--
	w.lastFire = now
	w.hasFired = true

	shot.Weapon = w.Arch
	shot.Offset = AimOffset{
		Yaw:   shot.Offset.Yaw + w.recoil.Yaw,
		Pitch: shot.Offset.Pitch + w.recoil.Pitch,
	}
	res := engine.Fire(shot)
	w.kick(engine.Rand())

	if w.magazine == 0 {
		w.Reload(now)
	}
	return res, true
}

// Trigger applies the trigger state for one tick. Automatic weapons fire
// every tick the trigger is held; semi-automatic weapons need a fresh press.
func (w *Weapon) Trigger(now float64, held bool, engine *BallisticEngine, shot Shot) (ShotResult, bool) {
	pressed := held && !w.triggerHeld
	w.triggerHeld = held
	if !held {
		return ShotResult{}, false
	}
	if !w.Arch.Automatic && !pressed {
		return ShotResult{}, false
	}
	return w.Fire(now, engine, shot)
}

// Reload starts a reload. It is rejected while already reloading, with no
// reserve, or with a full magazine.
func (w *Weapon) Reload(now float64) bool {
	if w.reloading || w.reserve <= 0 || w.magazine >= w.Arch.MagazineSize {
		return false
	}
	w.reloading = true
	w.reloadDone = now + w.Arch.ReloadTime
	return true
}

// CancelReload abandons a reload in progress without moving any rounds.
func (w *Weapon) CancelReload() {
	w.reloading = false
}

// Update advances recoil recovery by dt and finishes a due reload. It
// returns true on the tick a reload completes.
func (w *Weapon) Update(now, dt float64) bool {
	w.recoil.Yaw = decayToward0(w.recoil.Yaw, w.recoilRate.Yaw*dt)
	w.recoil.Pitch = decayToward0(w.recoil.Pitch, w.recoilRate.Pitch*dt)

	if !w.reloading || now < w.reloadDone {
		return false
	}
	moved := min(w.Arch.MagazineSize-w.magazine, w.reserve)
	if moved < 0 {
		moved = 0
	}
	w.magazine += moved
	w.reserve -= moved
	w.reloading = false
	return true
}

// AddReserve tops up reserve ammo, saturating at math.MaxInt.
func (w *Weapon) AddReserve(n int) {
	if n > 0 {
		w.reserve = min(w.reserve, math.MaxInt-n) + n
	}
}

// kick applies the archetype's recoil pattern with bounded randomness. The
// offset then recovers linearly to zero over Recoil.Recovery seconds.
func (w *Weapon) kick(rng *rand.Rand) {
	rp := w.Arch.Recoil
	if rp.Kick == 0 && rp.Yaw == 0 {
		return
	}
	rnd := clamp01(rp.Randomness)
	pitch := rp.Kick * (1 - rnd + rnd*rng.Float64())
	yaw := rp.Yaw * (2*rng.Float64() - 1)

	w.recoil.Pitch += pitch * math.Pi / 180
	w.recoil.Yaw += yaw * math.Pi / 180

	if rp.Recovery <= 0 {
		w.recoil = AimOffset{}
		w.recoilRate = AimOffset{}
		return
	}
	w.recoilRate = AimOffset{
		Yaw:   math.Abs(w.recoil.Yaw) / rp.Recovery,
		Pitch: math.Abs(w.recoil.Pitch) / rp.Recovery,
	}
}

func decayToward0(v, step float64) float64 {
	if math.Abs(v) <= step {
		return 0
	}
	if v > 0 {
		return v - step
	}
	return v + step
}

package game

import (
	"fmt"
	"sort"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-behaviour reports (~10s at 60TPS).
const reportWindowTicks = 600

// --- Snapshot types ---

// SimReport is a snapshot of the simulation at one tick.
type SimReport struct {
	Tick int
	Time float64

	Wave       int
	Phase      WavePhase
	Quota      int
	Killed     int
	Live       int
	Difficulty float64

	PlayerHealth int
	PlayerMax    int
	Magazine     int
	Reserve      int
	Reloading    bool

	// Hostile AI state distribution (AIState → count), live hostiles only.
	States map[AIState]int

	// Nearest live hostile, -1 when none.
	NearestHostile float64
	Projectiles    int
}

// --- Snapshot reporter ---

// SimReporter collects periodic snapshots and produces summaries over
// sliding time windows.
type SimReporter struct {
	history     []SimReport
	windowTicks int
}

// NewSimReporter creates a reporter with the given window size.
func NewSimReporter(windowTicks int) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{windowTicks: windowTicks}
}

// Collect gathers a snapshot from the current simulation state.
// Call this periodically (e.g. every 60 ticks / 1s).
func (r *SimReporter) Collect(s *Sim) {
	st := s.Scheduler().State()
	p := s.Player()
	report := SimReport{
		Tick:           s.CurrentTick(),
		Time:           s.Now(),
		Wave:           st.Wave,
		Phase:          st.Phase,
		Quota:          st.Quota,
		Killed:         st.Killed,
		Live:           st.Live,
		Difficulty:     st.Difficulty,
		PlayerHealth:   p.Health.Health(),
		PlayerMax:      p.Health.MaxHealth(),
		States:         make(map[AIState]int),
		NearestHostile: -1,
		Projectiles:    len(s.Projectiles()),
	}
	if w := p.Weapon(); w != nil {
		report.Magazine = w.Magazine()
		report.Reserve = w.Reserve()
		report.Reloading = w.Reloading()
	}
	for _, a := range s.Hostiles() {
		if !a.Alive() {
			continue
		}
		report.States[a.State()]++
		if d := a.Pos.FlatDist(p.Pos); report.NearestHostile < 0 || d < report.NearestHostile {
			report.NearestHostile = d
		}
	}
	r.history = append(r.history, report)
}

// Latest returns the most recent snapshot, or nil.
func (r *SimReporter) Latest() *SimReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all collected snapshots.
func (r *SimReporter) History() []SimReport {
	return r.history
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	Samples          int

	StatePct        map[AIState]float64
	AvgLive         float64
	AvgPlayerHealth float64
	MinPlayerHealth int
	ReloadingPct    float64
	AvgNearest      float64 // over samples with a hostile present
}

// WindowSummary returns an aggregated summary over the recent time window.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	last := r.history[len(r.history)-1]
	from := last.Tick - r.windowTicks

	wr := &WindowReport{
		ToTick:          last.Tick,
		FromTick:        last.Tick,
		StatePct:        make(map[AIState]float64),
		MinPlayerHealth: last.PlayerHealth,
	}
	stateTotal := 0
	nearestSamples := 0
	for _, rpt := range r.history {
		if rpt.Tick < from {
			continue
		}
		wr.Samples++
		wr.FromTick = min(wr.FromTick, rpt.Tick)
		wr.AvgLive += float64(rpt.Live)
		wr.AvgPlayerHealth += float64(rpt.PlayerHealth)
		wr.MinPlayerHealth = min(wr.MinPlayerHealth, rpt.PlayerHealth)
		if rpt.Reloading {
			wr.ReloadingPct++
		}
		if rpt.NearestHostile >= 0 {
			wr.AvgNearest += rpt.NearestHostile
			nearestSamples++
		}
		for st, n := range rpt.States {
			wr.StatePct[st] += float64(n)
			stateTotal += n
		}
	}
	n := float64(wr.Samples)
	wr.AvgLive /= n
	wr.AvgPlayerHealth /= n
	wr.ReloadingPct = wr.ReloadingPct / n * 100
	if nearestSamples > 0 {
		wr.AvgNearest /= float64(nearestSamples)
	}
	if stateTotal > 0 {
		for st := range wr.StatePct {
			wr.StatePct[st] = wr.StatePct[st] / float64(stateTotal) * 100
		}
	}
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Behaviour Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.Samples)
	sb.WriteString("Hostile states:\n")
	for _, st := range []AIState{AIStatePatrol, AIStateChase, AIStateAttack} {
		fmt.Fprintf(&sb, "  %-8s %5.1f%%\n", st, wr.StatePct[st])
	}
	fmt.Fprintf(&sb, "Pressure: avg live=%.1f  avg nearest=%.1fm\n", wr.AvgLive, wr.AvgNearest)
	fmt.Fprintf(&sb, "Player:   avg hp=%.1f  min hp=%d  reloading=%.1f%%\n",
		wr.AvgPlayerHealth, wr.MinPlayerHealth, wr.ReloadingPct)
	return sb.String()
}

// FormatLatest returns a concise snapshot of the most recent collected report.
func (r *SimReporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "(no snapshots)\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Snapshot T=%d (%.1fs) ---\n", rpt.Tick, rpt.Time)
	fmt.Fprintf(&sb, "Wave %d [%s] killed=%d/%d live=%d difficulty=x%.2f\n",
		rpt.Wave, rpt.Phase, rpt.Killed, rpt.Quota, rpt.Live, rpt.Difficulty)
	fmt.Fprintf(&sb, "Player hp=%d/%d ammo=%d+%d reloading=%v\n",
		rpt.PlayerHealth, rpt.PlayerMax, rpt.Magazine, rpt.Reserve, rpt.Reloading)
	fmt.Fprintf(&sb, "Hostiles patrol=%d chase=%d attack=%d projectiles=%d\n",
		rpt.States[AIStatePatrol], rpt.States[AIStateChase], rpt.States[AIStateAttack], rpt.Projectiles)
	return sb.String()
}

// --- Run reporter ---

// RunReporter is an Observer that aggregates combat statistics for one
// player over a whole run.
type RunReporter struct {
	PlayerID int

	ShotsFired     int
	Hits           int
	Criticals      int
	DamageDealt    int
	DamageTaken    int
	Impacts        int
	Alerts         int
	Kills          map[AgentKind]int
	CriticalKills  int
	WavesStarted   int
	WavesCompleted int
	BossesSeen     int
	Finished       bool
	PlayerDied     bool
}

// NewRunReporter creates a reporter tracking the given player agent ID.
func NewRunReporter(playerID int) *RunReporter {
	return &RunReporter{PlayerID: playerID, Kills: make(map[AgentKind]int)}
}

func (r *RunReporter) OnFire(e Event) {
	if e.AgentID == r.PlayerID {
		r.ShotsFired++
	}
}

func (r *RunReporter) OnImpact(e Event) {
	if e.Kind == EventImpact {
		r.Impacts++
		return
	}
	switch {
	case e.SourceID == r.PlayerID:
		r.Hits++
		r.DamageDealt += e.Damage
		if e.Critical {
			r.Criticals++
		}
	case e.AgentID == r.PlayerID:
		r.DamageTaken += e.Damage
	}
}

func (r *RunReporter) OnAlert(Event) { r.Alerts++ }

func (r *RunReporter) OnKill(e Event) {
	if e.SourceID != r.PlayerID {
		return
	}
	r.Kills[e.AgentKind]++
	if e.Critical {
		r.CriticalKills++
	}
}

func (r *RunReporter) OnDeath(e Event) {
	if e.AgentID == r.PlayerID {
		r.PlayerDied = true
	}
}

func (r *RunReporter) OnWave(e Event) {
	switch e.Kind {
	case EventWaveStart:
		r.WavesStarted++
	case EventWaveComplete:
		r.WavesCompleted++
	case EventAllWavesComplete:
		r.Finished = true
	case EventBossSpawn:
		r.BossesSeen++
	}
}

// TotalKills sums kills across agent kinds.
func (r *RunReporter) TotalKills() int {
	n := 0
	for _, k := range r.Kills {
		n += k
	}
	return n
}

// Accuracy is hits per shot fired, counting every pellet hit.
func (r *RunReporter) Accuracy() float64 {
	if r.ShotsFired == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.ShotsFired)
}

// Format renders the run report used by the headless CLI and the viewer's
// clipboard export.
func (r *RunReporter) Format(reason RunOutcomeReason) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Run Report: %s (%s) ===\n", reason.Outcome, reason.Description)
	fmt.Fprintf(&sb, "Waves: reached %d, completed %d", reason.Wave, r.WavesCompleted)
	if r.BossesSeen > 0 {
		fmt.Fprintf(&sb, ", bosses %d", r.BossesSeen)
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "Shots: %d fired, %d hits (%.1f%%), %d critical\n",
		r.ShotsFired, r.Hits, r.Accuracy()*100, r.Criticals)
	fmt.Fprintf(&sb, "Damage: dealt %d, taken %d\n", r.DamageDealt, r.DamageTaken)
	fmt.Fprintf(&sb, "Kills: %d (%d headshot)", r.TotalKills(), r.CriticalKills)
	kinds := make([]string, 0, len(r.Kills))
	for k := range r.Kills {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&sb, "  %s=%d", k, r.Kills[AgentKind(k)])
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "Alerts: %d  Impacts: %d\n", r.Alerts, r.Impacts)
	fmt.Fprintf(&sb, "Player: %d/%d hp\n", reason.PlayerHealth, reason.PlayerMax)
	return sb.String()
}

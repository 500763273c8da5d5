package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded simulation event.
type SimLogEntry struct {
	Tick     int
	Agent    string  // label e.g. "grunt#3", "player", or "--" for global events
	Kind     string  // agent kind, or "--"
	Category string  // ai, combat, spawn, wave
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] grunt#3    ai        state            patrol → chase
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-10s %-9s %-16s %s",
		e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a simulation run.
// Unlike CombatLog (UI ring-buffer), SimLog is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position and
// health entries are also recorded (useful for detailed debugging).
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, agent, kind, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Agent:    agent,
		Kind:     kind,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, agent, kind, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, agent, kind, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterAgent returns entries for a specific agent label.
func (sl *SimLog) FilterAgent(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the simulation state.
func (sl *SimLog) Summary(s *Sim) string {
	var sb strings.Builder
	st := s.Scheduler().State()
	fmt.Fprintf(&sb, "--- Summary at T=%03d (%.1fs) ---\n", s.CurrentTick(), s.Now())
	fmt.Fprintf(&sb, "Wave %d [%s]: killed %d/%d  spawned %d  live %d/%d  difficulty x%.2f\n",
		st.Wave, st.Phase, st.Killed, st.Quota, st.Spawned, st.Live, st.Cap, st.Difficulty)

	p := s.Player()
	if w := p.Weapon(); w != nil {
		fmt.Fprintf(&sb, "Player: hp %d/%d  %s %d/%d (+%d)\n",
			p.Health.Health(), p.Health.MaxHealth(), w.Kind(), w.Magazine(), w.Arch.MagazineSize, w.Reserve())
	}

	states := map[AIState]int{}
	for _, a := range s.Hostiles() {
		if a.Alive() {
			states[a.State()]++
		}
	}
	fmt.Fprintf(&sb, "Hostiles: patrol=%d  chase=%d  attack=%d\n",
		states[AIStatePatrol], states[AIStateChase], states[AIStateAttack])
	return sb.String()
}

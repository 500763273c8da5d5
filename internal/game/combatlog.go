package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 300
	logMaxEntries = 60
	logLineHeight = 11
)

// CombatEntry is a single line in the combat log.
type CombatEntry struct {
	Tick    int
	Kind    EventKind
	Message string
}

// CombatLog is a ring buffer of notable events rendered on-screen.
type CombatLog struct {
	entries []CombatEntry
	head    int
	count   int
}

// NewCombatLog creates a combat log with a fixed capacity.
func NewCombatLog() *CombatLog {
	return &CombatLog{
		entries: make([]CombatEntry, logMaxEntries),
	}
}

// Add appends an entry to the log.
func (cl *CombatLog) Add(tick int, kind EventKind, msg string) {
	cl.entries[cl.head] = CombatEntry{
		Tick:    tick,
		Kind:    kind,
		Message: msg,
	}
	cl.head = (cl.head + 1) % logMaxEntries
	if cl.count < logMaxEntries {
		cl.count++
	}
}

// AddEvent records the events worth showing to a player; fire, impact and
// hit events are too frequent and are skipped.
func (cl *CombatLog) AddEvent(e Event) {
	var msg string
	switch e.Kind {
	case EventAlert:
		msg = fmt.Sprintf("%s#%d spotted you", e.AgentKind, e.AgentID)
	case EventKill:
		msg = fmt.Sprintf("killed %s#%d", e.AgentKind, e.AgentID)
		if e.Critical {
			msg += " (headshot)"
		}
	case EventDeath:
		if e.AgentKind != AgentPlayer {
			return
		}
		msg = fmt.Sprintf("you were killed by #%d", e.SourceID)
	case EventBossSpawn:
		msg = fmt.Sprintf("BOSS %s#%d has entered", e.AgentKind, e.AgentID)
	case EventWaveStart:
		msg = fmt.Sprintf("wave %d begins", e.Wave)
	case EventWaveComplete:
		msg = fmt.Sprintf("wave %d cleared", e.Wave)
	case EventAllWavesComplete:
		msg = "all waves cleared"
	case EventReloadStart:
		msg = fmt.Sprintf("reloading %s", e.Weapon)
	default:
		return
	}
	cl.Add(e.Tick, e.Kind, msg)
}

// Recent returns entries in chronological order (oldest first).
func (cl *CombatLog) Recent() []CombatEntry {
	result := make([]CombatEntry, cl.count)
	for i := 0; i < cl.count; i++ {
		idx := (cl.head - cl.count + i + logMaxEntries) % logMaxEntries
		result[i] = cl.entries[idx]
	}
	return result
}

func combatEntryColor(k EventKind) color.RGBA {
	switch k {
	case EventKill:
		return color.RGBA{R: 90, G: 210, B: 90, A: 255}
	case EventAlert:
		return color.RGBA{R: 230, G: 190, B: 60, A: 255}
	case EventDeath, EventBossSpawn:
		return color.RGBA{R: 220, G: 60, B: 60, A: 255}
	case EventWaveStart, EventWaveComplete, EventAllWavesComplete:
		return color.RGBA{R: 90, G: 150, B: 230, A: 255}
	default:
		return color.RGBA{R: 150, G: 150, B: 150, A: 255}
	}
}

// Draw renders the combat log panel on the right side of the screen.
func (cl *CombatLog) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 14, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 16, color.RGBA{R: 20, G: 24, B: 34, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "COMBAT LOG", panelX+8, 2)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+logPanelWidth), 16, 1.0, color.RGBA{R: 50, G: 60, B: 90, A: 200}, false)

	entries := cl.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}
	visible := entries[startIdx:]
	recent := 3

	y := 20
	for i, e := range visible {
		if i >= len(visible)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 34, B: 44, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+3), 3, 5, combatEntryColor(e.Kind), false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5d %s", e.Tick, e.Message), panelX+12, y)
		y += logLineHeight
	}
}

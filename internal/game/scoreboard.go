package game

// KillRecord is one kill attributed to the player.
type KillRecord struct {
	Kind     AgentKind
	Critical bool
	Weapon   WeaponKind
	Wave     int
	Time     float64
}

// ScoreBoard is the score/progression collaborator: it receives kill and
// wave notifications and keeps the attribution. Turning that into points is
// left to the persistence layer.
type ScoreBoard struct {
	NopObserver

	PlayerID int
	Kills    []KillRecord
	Waves    []int // completed wave indices, in order
}

// NewScoreBoard attributes kills made by playerID.
func NewScoreBoard(playerID int) *ScoreBoard {
	return &ScoreBoard{PlayerID: playerID}
}

func (b *ScoreBoard) OnKill(e Event) {
	if e.SourceID != b.PlayerID {
		return
	}
	b.Kills = append(b.Kills, KillRecord{
		Kind:     e.AgentKind,
		Critical: e.Critical,
		Weapon:   e.Weapon,
		Wave:     e.Wave,
		Time:     e.Time,
	})
}

func (b *ScoreBoard) OnWave(e Event) {
	if e.Kind == EventWaveComplete {
		b.Waves = append(b.Waves, e.Wave)
	}
}

// HighestWave is the last completed wave, 0 if none.
func (b *ScoreBoard) HighestWave() int {
	if len(b.Waves) == 0 {
		return 0
	}
	return b.Waves[len(b.Waves)-1]
}

// KillsByKind tallies kills per agent kind.
func (b *ScoreBoard) KillsByKind() map[AgentKind]int {
	out := make(map[AgentKind]int)
	for _, k := range b.Kills {
		out[k.Kind]++
	}
	return out
}

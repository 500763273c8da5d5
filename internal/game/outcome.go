package game

type RunOutcome int

const (
	OutcomeInProgress RunOutcome = iota
	OutcomePlayerDied
	OutcomeAllWavesComplete
)

func (o RunOutcome) String() string {
	switch o {
	case OutcomeInProgress:
		return "in_progress"
	case OutcomePlayerDied:
		return "player_died"
	case OutcomeAllWavesComplete:
		return "all_waves_complete"
	default:
		return "unknown"
	}
}

type RunOutcomeReason struct {
	Outcome        RunOutcome
	Wave           int
	WavesCompleted int
	WaveKilled     int
	WaveQuota      int
	LiveHostiles   int
	PlayerHealth   int
	PlayerMax      int
	Description    string
}

// DetermineRunOutcome explains where a run stands: how it ended, or how far
// it got when it was cut off.
func DetermineRunOutcome(s *Sim) RunOutcomeReason {
	st := s.Scheduler().State()
	p := s.Player()

	completed := st.Wave - 1
	if st.Phase == WavePhaseIdle || st.Phase == WavePhaseAllComplete {
		completed = st.Wave
	}
	completed = max(0, completed)

	r := RunOutcomeReason{
		Outcome:        s.Outcome(),
		Wave:           st.Wave,
		WavesCompleted: completed,
		WaveKilled:     st.Killed,
		WaveQuota:      st.Quota,
		LiveHostiles:   s.LiveHostiles(),
		PlayerHealth:   p.Health.Health(),
		PlayerMax:      p.Health.MaxHealth(),
	}

	switch {
	case r.Outcome == OutcomeAllWavesComplete && r.PlayerHealth == r.PlayerMax:
		r.Description = "flawless_all_waves_cleared"
	case r.Outcome == OutcomeAllWavesComplete:
		r.Description = "all_waves_cleared"
	case r.Outcome == OutcomePlayerDied && st.Phase == WavePhaseSpawning && st.Killed*2 >= st.Quota:
		r.Description = "player_died_late_in_wave"
	case r.Outcome == OutcomePlayerDied:
		r.Description = "player_died"
	case st.Wave == 0:
		r.Description = "not_started"
	case st.Phase == WavePhaseIdle:
		r.Description = "between_waves"
	default:
		r.Description = "wave_in_progress"
	}
	return r
}

package game

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Performance grading thresholds.
const (
	perfMinShots     = 10 // below this, marksmanship is not graded
	perfMinKills     = 3
	perfSprayShots   = 40
	perfSprayAcc     = 0.2
	perfSharpAcc     = 0.6
	perfHeadhunter   = 0.35 // critical kills / kills
	perfTankedDamage = 2.0  // damage taken / player max health
)

// RunGrade is the computed performance grade for one run.
type RunGrade struct {
	Grade    string  // A+, A, B+, B, C+, C, D, F
	Score    float64 // 0-100
	Survived bool

	// Situation scores (0-100; -1 = not enough data to grade).
	MarksmanshipScore float64
	SurvivalScore     float64
	ProgressScore     float64
	LethalityScore    float64

	GoodTraits []string
	BadTraits  []string

	Accuracy     float64
	KillsPerWave float64
}

// GradeRun grades a finished (or abandoned) run from its reporter counters
// and outcome. maxWaves <= 0 means the run was infinite and progress is
// judged on waves cleared alone.
func GradeRun(r *RunReporter, reason RunOutcomeReason, maxWaves int) RunGrade {
	g := RunGrade{
		Survived:          reason.Outcome != OutcomePlayerDied,
		MarksmanshipScore: -1,
		SurvivalScore:     -1,
		ProgressScore:     -1,
		LethalityScore:    -1,
		Accuracy:          r.Accuracy(),
	}
	kills := r.TotalKills()
	waves := max(reason.WavesCompleted, 1)
	g.KillsPerWave = float64(kills) / float64(waves)

	// --- Marksmanship: hits per shot, with a bonus for criticals ---
	if r.ShotsFired >= perfMinShots {
		s := 20.0
		s += 60.0 * g.Accuracy
		s += 20.0 * perfFrac(r.Criticals, r.Hits)
		g.MarksmanshipScore = perfClamp(s)
	}

	// --- Survival: health kept, damage soaked ---
	if reason.PlayerMax > 0 {
		s := 30.0
		s += 50.0 * float64(reason.PlayerHealth) / float64(reason.PlayerMax)
		s -= 20.0 * math.Min(1, float64(r.DamageTaken)/float64(reason.PlayerMax*4))
		if !g.Survived {
			s = math.Min(s, 25)
		}
		g.SurvivalScore = perfClamp(s)
	}

	// --- Progress: waves cleared ---
	if maxWaves > 0 {
		g.ProgressScore = perfClamp(100 * perfFrac(reason.WavesCompleted, maxWaves))
	} else if reason.Wave > 0 {
		g.ProgressScore = perfClamp(10 * float64(reason.WavesCompleted))
	}

	// --- Lethality: kills, weighted toward critical kills ---
	if kills >= perfMinKills {
		s := 50.0
		s += 30.0 * perfFrac(r.CriticalKills, kills)
		s += 20.0 * math.Min(1, g.KillsPerWave/10)
		g.LethalityScore = perfClamp(s)
	}

	type scoredWeight struct {
		score  float64
		weight float64
	}
	var items []scoredWeight
	if g.MarksmanshipScore >= 0 {
		items = append(items, scoredWeight{g.MarksmanshipScore, 0.30})
	}
	if g.SurvivalScore >= 0 {
		items = append(items, scoredWeight{g.SurvivalScore, 0.25})
	}
	if g.ProgressScore >= 0 {
		items = append(items, scoredWeight{g.ProgressScore, 0.30})
	}
	if g.LethalityScore >= 0 {
		items = append(items, scoredWeight{g.LethalityScore, 0.15})
	}

	if len(items) > 0 {
		totalW := 0.0
		totalS := 0.0
		for _, it := range items {
			totalW += it.weight
			totalS += it.score * it.weight
		}
		g.Score = totalS / totalW
	} else {
		g.Score = 50.0
	}
	if g.Survived && reason.Outcome == OutcomeAllWavesComplete {
		g.Score = math.Min(100, g.Score+5)
	}

	g.Grade = PerfLetterGrade(g.Score)
	g.GoodTraits, g.BadTraits = perfDetectTraits(r, reason)
	return g
}

func perfDetectTraits(r *RunReporter, reason RunOutcomeReason) (good, bad []string) {
	kills := r.TotalKills()
	acc := r.Accuracy()

	if r.ShotsFired >= perfMinShots && acc >= perfSharpAcc {
		good = append(good, "sharpshooter")
	}
	if kills >= perfMinKills && perfFrac(r.CriticalKills, kills) >= perfHeadhunter {
		good = append(good, "headhunter")
	}
	if reason.Outcome == OutcomeAllWavesComplete && r.DamageTaken == 0 {
		good = append(good, "untouched")
	}
	if r.BossesSeen > 0 && reason.WavesCompleted > 0 && reason.Outcome != OutcomePlayerDied {
		good = append(good, "boss_survivor")
	}

	if r.ShotsFired >= perfSprayShots && acc < perfSprayAcc {
		bad = append(bad, "spray_and_pray")
	}
	if r.Impacts > r.Hits && r.ShotsFired >= perfMinShots {
		bad = append(bad, "shooting_walls")
	}
	if reason.PlayerMax > 0 && float64(r.DamageTaken) >= perfTankedDamage*float64(reason.PlayerMax) {
		bad = append(bad, "bullet_sponge")
	}
	if reason.Outcome == OutcomePlayerDied && reason.WavesCompleted == 0 {
		bad = append(bad, "early_death")
	}
	return good, bad
}

// FormatGrade returns a human-readable grade block for one run.
func FormatGrade(g RunGrade) string {
	var sb strings.Builder
	status := "survived"
	if !g.Survived {
		status = "KIA"
	}
	fmt.Fprintf(&sb, "grade: %-3s score=%.0f [%s] accuracy=%.0f%% kills/wave=%.1f\n",
		g.Grade, g.Score, status, g.Accuracy*100, g.KillsPerWave)
	if len(g.GoodTraits) > 0 {
		fmt.Fprintf(&sb, "  Good: %s\n", strings.Join(g.GoodTraits, ", "))
	}
	if len(g.BadTraits) > 0 {
		fmt.Fprintf(&sb, "  Bad:  %s\n", strings.Join(g.BadTraits, ", "))
	}

	var scores []string
	if g.MarksmanshipScore >= 0 {
		scores = append(scores, fmt.Sprintf("Aim=%.0f", g.MarksmanshipScore))
	}
	if g.SurvivalScore >= 0 {
		scores = append(scores, fmt.Sprintf("Survival=%.0f", g.SurvivalScore))
	}
	if g.ProgressScore >= 0 {
		scores = append(scores, fmt.Sprintf("Progress=%.0f", g.ProgressScore))
	}
	if g.LethalityScore >= 0 {
		scores = append(scores, fmt.Sprintf("Lethality=%.0f", g.LethalityScore))
	}
	if len(scores) > 0 {
		fmt.Fprintf(&sb, "  Scores: %s\n", strings.Join(scores, "  "))
	}
	return sb.String()
}

// FormatGradesSummary returns a compact summary over many runs: the mean
// grade and the most common traits.
func FormatGradesSummary(grades []RunGrade) string {
	if len(grades) == 0 {
		return ""
	}
	var sb strings.Builder
	goodCount := map[string]int{}
	badCount := map[string]int{}
	sum := 0.0
	survived := 0
	for _, g := range grades {
		sum += g.Score
		if g.Survived {
			survived++
		}
		for _, t := range g.GoodTraits {
			goodCount[t]++
		}
		for _, t := range g.BadTraits {
			badCount[t]++
		}
	}
	avg := sum / float64(len(grades))
	fmt.Fprintf(&sb, "avg_grade=%s (%.1f) survived=%d/%d\n", PerfLetterGrade(avg), avg, survived, len(grades))
	if len(goodCount) > 0 {
		fmt.Fprintf(&sb, "  Top good: %s\n", perfTopTraits(goodCount, 4))
	}
	if len(badCount) > 0 {
		fmt.Fprintf(&sb, "  Top bad:  %s\n", perfTopTraits(badCount, 4))
	}
	return sb.String()
}

func perfFrac(num, denom int) float64 {
	if denom <= 0 {
		return 0
	}
	return float64(num) / float64(denom)
}

func perfClamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// PerfLetterGrade maps a 0-100 score to a letter grade.
func PerfLetterGrade(score float64) string {
	switch {
	case score >= 93:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 78:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 62:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 45:
		return "D"
	default:
		return "F"
	}
}

func perfTopTraits(counts map[string]int, n int) string {
	type kv struct {
		trait string
		count int
	}
	var items []kv
	for k, v := range counts {
		items = append(items, kv{k, v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return items[i].trait < items[j].trait
	})
	if len(items) > n {
		items = items[:n]
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s(%d)", it.trait, it.count)
	}
	return strings.Join(parts, ", ")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/Arena-Sense/internal/game"
	"github.com/Garsondee/Arena-Sense/internal/scores"
)

const tickDT = 1.0 / 60

type runStats struct {
	runIndex int
	seed     int64
	ticks    int

	reason   game.RunOutcomeReason
	grade    game.RunGrade
	report   *game.RunReporter
	board    *game.ScoreBoard
	record   scores.Run
	peakLive int

	firstAlertTick int
	firstKillTick  int
	stateChanges   int

	windowSummary *game.WindowReport

	// Printed with -verbose.
	killWindow string
	summary    string
}

func main() {
	var runs int
	var parallel int
	var seedBase int64
	var seedStep int64
	var maxSeconds float64
	var configPath string
	var dbPath string
	var top int
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless runs")
	flag.IntVar(&parallel, "parallel", 4, "runs simulated concurrently")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.Float64Var(&maxSeconds, "max-seconds", 900, "sim-time cap per run")
	flag.StringVar(&configPath, "config", "", "arena config YAML (defaults when empty)")
	flag.StringVar(&dbPath, "db", "", "SQLite file to record runs into (skipped when empty)")
	flag.IntVar(&top, "top", 5, "leaderboard size printed after recording")
	flag.BoolVar(&verbose, "verbose", false, "debug logging")
	flag.Parse()

	logger := game.NewStderrLogger(verbose)

	if runs <= 0 {
		logger.Fatal("-runs must be > 0")
	}
	if maxSeconds <= 0 {
		logger.Fatal("-max-seconds must be > 0")
	}

	cfg := game.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = game.LoadConfig(configPath); err != nil {
			logger.Fatal("load config", "path", configPath, "err", err)
		}
	}

	fmt.Printf("=== Headless Arena Report ===\n")
	fmt.Printf("runs=%d max_seconds=%.0f seed_base=%d seed_step=%d waves=%d\n\n",
		runs, maxSeconds, seedBase, seedStep, cfg.Waves.MaxWaves)

	ctx := context.Background()
	all, err := runAll(ctx, cfg, runs, parallel, seedBase, seedStep, maxSeconds, logger)
	if err != nil {
		logger.Fatal("headless runs", "err", err)
	}
	for _, rs := range all {
		printRun(rs)
		if verbose {
			fmt.Print(rs.killWindow, rs.summary, "\n")
		}
	}
	printAggregate(summarize(all))
	grades := make([]game.RunGrade, len(all))
	for i, rs := range all {
		grades[i] = rs.grade
	}
	fmt.Print(game.FormatGradesSummary(grades))

	if dbPath != "" {
		if err := recordRuns(ctx, dbPath, all, top); err != nil {
			logger.Fatal("record runs", "db", dbPath, "err", err)
		}
	}
}

// runAll simulates every run on its own Sim. Sims share nothing, so the
// group only bounds how many run at once.
func runAll(ctx context.Context, cfg game.Config, runs, parallel int, seedBase, seedStep int64, maxSeconds float64, logger *log.Logger) ([]runStats, error) {
	all := make([]runStats, runs)
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		g.Go(func() error {
			rs, err := runOne(ctx, cfg, i+1, seed, maxSeconds, logger.With("run", i+1))
			if err != nil {
				return fmt.Errorf("run %d (seed %d): %w", i+1, seed, err)
			}
			all[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

// runOne drives a Sim with the bot until the run ends or the time cap hits.
func runOne(ctx context.Context, cfg game.Config, runIndex int, seed int64, maxSeconds float64, logger *log.Logger) (runStats, error) {
	report := game.NewRunReporter(0)
	board := game.NewScoreBoard(0)
	simLog := game.NewSimLog(false)
	sim, err := game.NewSim(cfg, nil,
		game.WithSeed(seed),
		game.WithLogger(logger),
		game.WithSimLog(simLog),
		game.WithObserver(report),
		game.WithObserver(board),
	)
	if err != nil {
		return runStats{}, err
	}
	bot := game.NewBotPilot()
	snapshots := game.NewSimReporter(0)

	for sim.Outcome() == game.OutcomeInProgress && sim.Now() < maxSeconds {
		sim.Tick(tickDT, bot.Input(sim))
		if sim.CurrentTick()%60 == 0 {
			snapshots.Collect(sim)
			if err := ctx.Err(); err != nil {
				return runStats{}, err
			}
		}
	}

	reason := game.DetermineRunOutcome(sim)
	logger.Info("run finished", "outcome", reason.Outcome, "reason", reason.Description, "wave", reason.Wave, "ticks", sim.CurrentTick())

	bossKind := cfg.Waves.BossKind
	firstKill := firstTick(simLog.Entries(), "combat", "kill", "")
	return runStats{
		runIndex:       runIndex,
		seed:           seed,
		ticks:          sim.CurrentTick(),
		reason:         reason,
		grade:          game.GradeRun(report, reason, maxWavesFor(cfg)),
		report:         report,
		board:          board,
		record:         scores.FromScoreBoard(sim.RunID(), seed, reason, board, bossKind),
		peakLive:       sim.Scheduler().PeakLive(),
		firstAlertTick: firstTick(simLog.Entries(), "ai", "state", "→ chase"),
		firstKillTick:  firstKill,
		stateChanges:   simLog.CountCategory("ai", "state"),
		windowSummary:  snapshots.WindowSummary(),
		killWindow:     killWindow(simLog, firstKill),
		summary:        simLog.Summary(sim),
	}, nil
}

func maxWavesFor(cfg game.Config) int {
	if cfg.Waves.Infinite {
		return 0
	}
	return cfg.Waves.MaxWaves
}

// killWindow is the log from two seconds before the first kill to the kill
// itself, or empty when nothing died.
func killWindow(l *game.SimLog, kill int) string {
	if kill < 0 {
		return ""
	}
	return "first kill:\n" + l.FormatRange(max(0, kill-120), kill)
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d, %d ticks) ---\n", rs.runIndex, rs.seed, rs.ticks)
	fmt.Print(rs.report.Format(rs.reason))
	fmt.Print(game.FormatGrade(rs.grade))
	fmt.Printf("phase_markers: first_chase=%d first_kill=%d state_changes=%d peak_live=%d score=%d\n",
		rs.firstAlertTick, rs.firstKillTick, rs.stateChanges, rs.peakLive, rs.record.Score)
	if rs.windowSummary != nil {
		fmt.Print(rs.windowSummary.Format())
	}
	fmt.Println()
}

type aggregate struct {
	runs      int
	outcomes  map[string]int
	reasons   map[string]int
	avgWave   float64
	avgKills  float64
	avgScore  float64
	accuracy  float64 // over all shots in all runs
	bestRun   int
	bestScore int
}

func summarize(all []runStats) aggregate {
	agg := aggregate{
		runs:      len(all),
		outcomes:  map[string]int{},
		reasons:   map[string]int{},
		bestRun:   -1,
		bestScore: -1,
	}
	waves, kills, score, shots, hits := 0, 0, 0, 0, 0
	for _, rs := range all {
		agg.outcomes[rs.reason.Outcome.String()]++
		agg.reasons[rs.reason.Description]++
		waves += rs.reason.Wave
		kills += rs.report.TotalKills()
		score += rs.record.Score
		shots += rs.report.ShotsFired
		hits += rs.report.Hits
		if rs.record.Score > agg.bestScore {
			agg.bestScore = rs.record.Score
			agg.bestRun = rs.runIndex
		}
	}
	agg.avgWave = avg(waves, len(all))
	agg.avgKills = avg(kills, len(all))
	agg.avgScore = avg(score, len(all))
	if shots > 0 {
		agg.accuracy = float64(hits) / float64(shots)
	}
	return agg
}

func printAggregate(agg aggregate) {
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d outcomes=[%s]\n", agg.runs, joinCounts(agg.outcomes))
	fmt.Printf("reasons=[%s]\n", joinCounts(agg.reasons))
	fmt.Printf("avg_wave=%.1f avg_kills=%.1f avg_score=%.0f accuracy=%.1f%%\n",
		agg.avgWave, agg.avgKills, agg.avgScore, agg.accuracy*100)
	if agg.bestRun >= 0 {
		fmt.Printf("best_run=%d score=%d\n", agg.bestRun, agg.bestScore)
	}
}

func recordRuns(ctx context.Context, path string, all []runStats, top int) error {
	store, err := scores.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, rs := range all {
		if err := store.Record(ctx, rs.record); err != nil {
			return err
		}
	}
	best, err := store.Top(ctx, top)
	if err != nil {
		return err
	}
	fmt.Printf("\n=== Leaderboard (%s) ===\n", path)
	for i, r := range best {
		fmt.Printf("%2d. %6d  wave=%-2d kills=%-3d %-18s seed=%d %s\n",
			i+1, r.Score, r.Wave, r.Kills, r.Outcome, r.Seed, r.ID)
	}
	return nil
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, ",")
}

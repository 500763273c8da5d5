package main

import (
	"flag"

	"github.com/Garsondee/Arena-Sense/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	var configPath string
	var seed int64
	var verbose bool
	var autopilot bool

	flag.StringVar(&configPath, "config", "", "arena config YAML (defaults are used when empty)")
	flag.Int64Var(&seed, "seed", 1, "RNG seed")
	flag.BoolVar(&verbose, "verbose", false, "debug logging")
	flag.BoolVar(&autopilot, "bot", false, "start with the bot driving the player")
	flag.Parse()

	logger := game.NewStderrLogger(verbose)

	cfg := game.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = game.LoadConfig(configPath); err != nil {
			logger.Fatal("load config", "path", configPath, "err", err)
		}
	}

	g, err := game.New(cfg, game.WithSeed(seed), game.WithLogger(logger))
	if err != nil {
		logger.Fatal("create game", "err", err)
	}
	g.SetAutopilot(autopilot)

	ebiten.SetWindowTitle("Arena Sense")
	ebiten.SetWindowSize(g.Layout(0, 0))
	if err := ebiten.RunGame(g); err != nil {
		logger.Fatal("run game", "err", err)
	}
}

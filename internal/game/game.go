package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// borderWidth is the pixel gap between the window edge and the arena.
const borderWidth = 24

// hudScale is the integer upscale factor applied to all HUD text (2 = 2× larger).
const hudScale = 2

// pixelsPerMeter maps arena meters onto the playfield.
const pixelsPerMeter = 14

// tickRate is the fixed rate the viewer drives the Sim at.
const tickRate = 60

// statusFrames is how long a HUD status message stays up (~2s).
const statusFrames = 120

var stateColors = map[AIState]color.RGBA{
	AIStatePatrol: {R: 120, G: 160, B: 120, A: 255},
	AIStateChase:  {R: 240, G: 190, B: 60, A: 255},
	AIStateAttack: {R: 240, G: 70, B: 60, A: 255},
}

// Game is the interactive ebiten front end over one Sim. The player is
// driven by keyboard and mouse, or by a BotPilot when autopilot is on.
type Game struct {
	width      int
	height     int
	gameWidth  int // playfield width (log panel takes the rest)
	gameHeight int // playfield height (inside border)
	offX       int
	offY       int

	cfg  Config
	opts []Option

	sim       *Sim
	bot       *BotPilot
	autopilot bool
	combatLog *CombatLog
	effects   *Effects
	run       *RunReporter
	reporter  *SimReporter

	showHUD bool
	status  string // transient HUD message, e.g. the clipboard result
	statusT int

	// Simulation speed control.
	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64

	// Offscreen buffer for the arena, blitted at the border offset.
	worldBuf *ebiten.Image
	// Offscreen buffer for HUD text, rendered at 1x then blitted at hudScale.
	hudBuf *ebiten.Image

	inspector Inspector
	inspBuf   *ebiten.Image
}

// New builds a viewer over a fresh Sim built from cfg.
func New(cfg Config, opts ...Option) (*Game, error) {
	g := &Game{
		cfg:      cfg,
		opts:     opts,
		bot:      NewBotPilot(),
		showHUD:  true,
		simSpeed: 1,
	}
	if err := g.restart(); err != nil {
		return nil, err
	}
	gw := int(math.Ceil(g.sim.Arena().Width * pixelsPerMeter))
	gh := int(math.Ceil(g.sim.Arena().Depth * pixelsPerMeter))
	g.width = borderWidth + gw + borderWidth + logPanelWidth
	g.height = borderWidth + gh + borderWidth
	g.gameWidth = gw
	g.gameHeight = gh
	g.offX = borderWidth
	g.offY = borderWidth
	g.worldBuf = ebiten.NewImage(gw, gh)
	g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	g.inspBuf = ebiten.NewImage(inspBufW, inspBufH)
	return g, nil
}

// restart throws the current run away and starts a new one from the same
// config and options.
func (g *Game) restart() error {
	run := NewRunReporter(0)
	opts := append(g.opts[:len(g.opts):len(g.opts)], WithObserver(run))
	sim, err := NewSim(g.cfg, nil, opts...)
	if err != nil {
		return err
	}
	g.sim = sim
	g.run = run
	g.combatLog = NewCombatLog()
	g.effects = NewEffects()
	g.reporter = NewSimReporter(0)
	g.tickAccum = 0
	sim.Logger().Info("run started", "run", sim.RunID(), "seed", sim.Seed())
	return nil
}

// Sim exposes the running simulation.
func (g *Game) Sim() *Sim { return g.sim }

// SetAutopilot hands the player to the bot, or back to the keyboard.
func (g *Game) SetAutopilot(on bool) { g.autopilot = on }

func (g *Game) Update() error {
	// Handle input every frame regardless of sim speed.
	in := g.handleInput()

	// Effects keep fading while paused.
	g.effects.Update()
	if g.statusT > 0 {
		g.statusT--
	}

	if g.simSpeed <= 0 || g.sim.Outcome() != OutcomeInProgress {
		return nil
	}

	// For speeds > 1 run multiple sim ticks per frame; below 1 accumulate.
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 && g.sim.Outcome() == OutcomeInProgress {
		g.tickAccum -= 1.0
		if g.autopilot {
			in = g.bot.Input(g.sim)
		}
		g.simTick(in)
		// Edges apply once per frame.
		in.Reload = false
		in.Select = 0
	}
	return nil
}

// simTick runs one simulation tick and feeds the viewer's collaborators.
func (g *Game) simTick(in PlayerInput) {
	p := g.sim.Player()
	evs := g.sim.Tick(1.0/tickRate, in)
	for _, e := range evs {
		g.combatLog.AddEvent(e)
		g.effects.AddEvent(e, p.ID)
	}
	g.effects.AddTraces(g.sim.TickTraces(), p.Eye())

	if g.sim.CurrentTick()%tickRate == 0 {
		g.reporter.Collect(g.sim)
	}
	if o := g.sim.Outcome(); o != OutcomeInProgress {
		reason := DetermineRunOutcome(g.sim)
		g.sim.Logger().Info("run finished", "outcome", o, "reason", reason.Description, "wave", reason.Wave)
	}
}

// handleInput reads the keyboard and mouse into this frame's player input
// and processes viewer toggles.
func (g *Game) handleInput() PlayerInput {
	var in PlayerInput

	// Movement: WASD or arrows, in screen space (up is -Z).
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		in.Move.Z--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		in.Move.Z++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		in.Move.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		in.Move.X++
	}

	in.Aim = g.cursorAim()
	in.Trigger = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	in.Aimed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	in.Reload = inpututil.IsKeyJustPressed(ebiten.KeyR)

	slotKeys := []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4}
	for i, k := range slotKeys {
		if inpututil.IsKeyJustPressed(k) {
			in.Select = i + 1
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		mx, my := ebiten.CursorPosition()
		g.handleInspectorClick(mx, my)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		g.inspector.rawView = !g.inspector.rawView
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.autopilot = !g.autopilot
		g.setStatus(fmt.Sprintf("autopilot %v", g.autopilot))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		g.sim.ClearHostiles()
		g.setStatus("hostiles cleared")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyReport()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && g.sim.Outcome() != OutcomeInProgress {
		if err := g.restart(); err != nil {
			g.setStatus(err.Error())
		}
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.5, 1, 2, 4}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		for i, s := range speeds {
			if s >= g.simSpeed && i > 0 {
				g.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		for i, s := range speeds {
			if s <= g.simSpeed && i < len(speeds)-1 && speeds[i+1] > g.simSpeed {
				g.simSpeed = speeds[i+1]
				break
			}
		}
	}
	return in
}

// cursorAim aims from the player's eye at the hostile under the cursor, or
// level across the floor toward the cursor.
func (g *Game) cursorAim() Vec3 {
	mx, my := ebiten.CursorPosition()
	wx := float64(mx-g.offX) / pixelsPerMeter
	wz := float64(my-g.offY) / pixelsPerMeter
	p := g.sim.Player()
	eye := p.Eye()
	for _, a := range g.sim.Hostiles() {
		if a.Alive() && math.Hypot(a.Pos.X-wx, a.Pos.Z-wz) <= a.Arch.Radius*1.5 {
			return a.Chest().Sub(eye)
		}
	}
	return V3(wx, eye.Y, wz).Sub(eye)
}

// copyReport puts the run report on the system clipboard.
func (g *Game) copyReport() {
	reason := DetermineRunOutcome(g.sim)
	maxWaves := g.cfg.Waves.MaxWaves
	if g.cfg.Waves.Infinite {
		maxWaves = 0
	}
	report := g.run.Format(reason) + FormatGrade(GradeRun(g.run, reason, maxWaves)) + g.reporter.FormatLatest()
	if wr := g.reporter.WindowSummary(); wr != nil {
		report += wr.Format()
	}
	if err := clipboard.WriteAll(report); err != nil {
		g.sim.Logger().Warn("clipboard unavailable", "err", err)
		g.setStatus("clipboard unavailable")
		return
	}
	g.setStatus("report copied")
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusT = statusFrames
}

// toScreen maps a world point onto worldBuf.
func toScreen(p Vec3) (float32, float32) {
	return float32(p.X * pixelsPerMeter), float32(p.Z * pixelsPerMeter)
}

func (g *Game) Draw(screen *ebiten.Image) {
	// Window background: very dark, outside the arena.
	screen.Fill(color.RGBA{R: 12, G: 13, B: 16, A: 255})

	g.worldBuf.Clear()
	g.drawWorld(g.worldBuf)

	var blit ebiten.DrawImageOptions
	blit.GeoM.Translate(float64(g.offX), float64(g.offY))
	screen.DrawImage(g.worldBuf, &blit)
	g.drawVignette(screen, g.offX, g.offY)

	// Arena border frame.
	ox, oy := float32(g.offX), float32(g.offY)
	gw, gh := float32(g.gameWidth), float32(g.gameHeight)
	vector.StrokeRect(screen, ox-1, oy-1, gw+2, gh+2, 2.0, color.RGBA{R: 70, G: 80, B: 100, A: 255}, false)
	vector.StrokeRect(screen, ox-3, oy-3, gw+6, gh+6, 1.0, color.RGBA{R: 45, G: 50, B: 70, A: 100}, false)

	logX := g.offX + g.gameWidth + g.offX
	g.combatLog.Draw(screen, logX, g.height)

	if g.showHUD {
		g.drawHUD(screen)
	}
	g.drawInspector(screen)
	if g.sim.Outcome() != OutcomeInProgress {
		g.drawOutcome(screen)
	}
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	gw, gh := float32(g.gameWidth), float32(g.gameHeight)
	vector.FillRect(screen, 0, 0, gw, gh, color.RGBA{R: 38, G: 40, B: 44, A: 255}, false)
	drawGridOffset(screen, 0, 0, g.gameWidth, g.gameHeight, 5*pixelsPerMeter, color.RGBA{R: 52, G: 55, B: 60, A: 255})

	for _, sp := range g.sim.Arena().SpawnPoints() {
		x, y := toScreen(sp)
		vector.StrokeCircle(screen, x, y, 10, 1.5, color.RGBA{R: 150, G: 60, B: 60, A: 120}, false)
	}

	// Walls: taller walls are drawn lighter; low walls can be shot over.
	for _, w := range g.sim.Arena().Walls {
		x0, y0 := toScreen(w.Min)
		x1, y1 := toScreen(w.Max)
		shade := uint8(70 + min(w.Max.Y, 4)*20)
		vector.FillRect(screen, x0, y0, x1-x0, y1-y0, color.RGBA{R: shade, G: shade, B: shade + 10, A: 255}, false)
		vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, color.RGBA{R: 30, G: 30, B: 36, A: 255}, false)
	}

	for _, pr := range g.sim.Projectiles() {
		ax, ay := toScreen(pr.Trail())
		x, y := toScreen(pr.Pos)
		vector.StrokeLine(screen, ax, ay, x, y, 1.5, color.RGBA{R: 120, G: 230, B: 90, A: 120}, false)
		vector.FillCircle(screen, x, y, 3, color.RGBA{R: 140, G: 255, B: 100, A: 255}, false)
	}

	for _, a := range g.sim.Hostiles() {
		g.drawHostile(screen, a)
	}
	g.drawPlayer(screen)
	g.effects.Draw(screen, toScreen)
}

func (g *Game) drawHostile(screen *ebiten.Image, a *Agent) {
	x, y := toScreen(a.Pos)
	r := float32(a.Arch.Radius * pixelsPerMeter)
	if !a.Alive() {
		vector.FillCircle(screen, x, y, r, color.RGBA{R: 60, G: 50, B: 50, A: 160}, false)
		return
	}
	col := stateColors[a.State()]
	vector.FillCircle(screen, x, y, r, col, false)
	if a.Boss {
		vector.StrokeCircle(screen, x, y, r+3, 2, color.RGBA{R: 255, G: 60, B: 200, A: 255}, false)
	}
	f := a.Forward()
	vector.StrokeLine(screen, x, y, x+float32(f.X)*r*1.6, y+float32(f.Z)*r*1.6, 1.5, color.RGBA{R: 20, G: 20, B: 20, A: 255}, false)

	frac := float32(a.Health.Health()) / float32(a.Health.MaxHealth())
	vector.FillRect(screen, x-r, y-r-6, 2*r, 3, color.RGBA{R: 40, G: 0, B: 0, A: 200}, false)
	vector.FillRect(screen, x-r, y-r-6, 2*r*frac, 3, color.RGBA{R: 220, G: 40, B: 40, A: 255}, false)
}

func (g *Game) drawPlayer(screen *ebiten.Image) {
	p := g.sim.Player()
	x, y := toScreen(p.Pos)
	r := float32(p.Arch.Radius * pixelsPerMeter)
	col := color.RGBA{R: 80, G: 170, B: 255, A: 255}
	if !p.Alive() {
		col = color.RGBA{R: 50, G: 60, B: 80, A: 200}
	}
	vector.FillCircle(screen, x, y, r, col, false)
	aim := p.Aim.Flat()
	if d, ok := aim.Normalize(); ok {
		reach := float32(6 * pixelsPerMeter)
		vector.StrokeLine(screen, x, y, x+float32(d.X)*reach, y+float32(d.Z)*reach, 1, color.RGBA{R: 120, G: 200, B: 255, A: 90}, false)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	st := g.sim.Scheduler().State()
	p := g.sim.Player()

	speedStr := fmt.Sprintf("%.1fx", g.simSpeed)
	if g.simSpeed == 0 {
		speedStr = "PAUSED"
	}
	lines := []string{
		fmt.Sprintf("WAVE %d [%s]  %d/%d  live %d  x%.2f", st.Wave, st.Phase, st.Killed, st.Quota, st.Live, st.Difficulty),
		fmt.Sprintf("HP %d/%d", p.Health.Health(), p.Health.MaxHealth()),
	}
	for i, w := range p.Weapons {
		mark := " "
		if i == p.CurrentSlot() {
			mark = ">"
		}
		line := fmt.Sprintf("%s[%d] %-13s %2d/%-3d", mark, i+1, w.Kind(), w.Magazine(), w.Reserve())
		if w.Reloading() {
			line += fmt.Sprintf(" reload %3.0f%%", w.ReloadProgress(g.sim.Now())*100)
		}
		lines = append(lines, line)
	}
	lines = append(lines,
		fmt.Sprintf("SIM: %s  P=pause  ,/. speed  B=bot(%v)", speedStr, g.autopilot),
		"WASD move  LMB fire  RMB aim  R reload",
		"C copy report  X clear  H hide HUD",
	)
	if g.statusT > 0 {
		lines = append(lines, "> "+g.status)
	}

	const lineH = 14
	const charW = 7
	const padX = 5
	const padY = 4

	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)
	bufH := float32(g.height / hudScale)
	bx := float32(4)
	by := bufH - boxH - 4

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 6, G: 8, B: 12, A: 210}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 80, B: 120, A: 180}, false)
	for i, line := range lines {
		drawText(g.hudBuf, line, int(bx)+padX, int(by)+padY+(i+1)*lineH-3, color.RGBA{R: 220, G: 225, B: 235, A: 255})
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(g.hudBuf, opts)
}

// drawOutcome shades the arena and prints how the run ended.
func (g *Game) drawOutcome(screen *ebiten.Image) {
	reason := DetermineRunOutcome(g.sim)
	vector.FillRect(screen, float32(g.offX), float32(g.offY), float32(g.gameWidth), float32(g.gameHeight), color.RGBA{A: 150}, false)
	cx := g.offX + g.gameWidth/2 - 90
	cy := g.offY + g.gameHeight/2
	title := "ALL WAVES CLEARED"
	if reason.Outcome == OutcomePlayerDied {
		title = "YOU DIED"
	}
	drawText(screen, title, cx, cy, color.White)
	drawText(screen, fmt.Sprintf("wave %d  kills %d  accuracy %.0f%%", reason.Wave, g.run.TotalKills(), g.run.Accuracy()*100), cx, cy+18, color.White)
	drawText(screen, "Enter restart  C copy report", cx, cy+36, color.RGBA{R: 180, G: 180, B: 190, A: 255})
}

// drawText wraps the classic text.Draw signature with the fixed HUD face.
func drawText(img *ebiten.Image, s string, x, y int, col color.Color) {
	text.Draw(img, s, basicfont.Face7x13, x, y, col)
}

func (g *Game) drawVignette(screen *ebiten.Image, offX, offY int) {
	ox, oy := float32(offX), float32(offY)
	gw, gh := float32(g.gameWidth), float32(g.gameHeight)

	outer := float32(24)
	outerDark := color.RGBA{R: 0, G: 0, B: 0, A: 70}
	vector.FillRect(screen, ox, oy, gw, outer, outerDark, false)
	vector.FillRect(screen, ox, oy+gh-outer, gw, outer, outerDark, false)
	vector.FillRect(screen, ox, oy, outer, gh, outerDark, false)
	vector.FillRect(screen, ox+gw-outer, oy, outer, gh, outerDark, false)
}

func drawGridOffset(screen *ebiten.Image, offX, offY, w, h, spacing int, c color.Color) {
	if spacing <= 0 {
		return
	}
	ox, oy := float32(offX), float32(offY)
	for x := 0; x <= w; x += spacing {
		xf := ox + float32(x)
		vector.StrokeLine(screen, xf, oy, xf, oy+float32(h), 1.0, c, false)
	}
	for y := 0; y <= h; y += spacing {
		yf := oy + float32(y)
		vector.StrokeLine(screen, ox, yf, ox+float32(w), yf, 1.0, c, false)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// GameWidth returns the playfield width (excluding the log panel).
func (g *Game) GameWidth() int {
	return g.gameWidth
}

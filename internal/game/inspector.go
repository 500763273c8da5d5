package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Inspector panel, rendered into an offscreen buffer at 1x then blitted at inspScale.
const (
	inspScale = 2   // scale factor for inspector text rendering
	inspBufW  = 200 // buffer width in pixels (~33 chars at debug font)
	inspBufH  = 230 // buffer height in pixels
	inspPad   = 4   // padding in buffer-space pixels
	inspLineH = 13  // line height in buffer-space pixels
)

// Inspector holds the selected hostile and view toggle state.
type Inspector struct {
	selected *Agent
	rawView  bool // false = curated, true = raw dump
}

// Selected is the inspected hostile, nil when nothing is selected or the
// selection has been removed from the arena.
func (in *Inspector) Selected(s *Sim) *Agent {
	if in.selected == nil {
		return nil
	}
	if s.AgentByID(in.selected.ID) != in.selected {
		in.selected = nil
	}
	return in.selected
}

// handleInspectorClick selects the hostile under a click at screen (mx, my).
// Clicking empty floor clears the selection. Returns true if a hostile was hit.
func (g *Game) handleInspectorClick(mx, my int) bool {
	wx := float64(mx-g.offX) / pixelsPerMeter
	wz := float64(my-g.offY) / pixelsPerMeter

	// Pick radius: 12 screen pixels beyond the hitbox.
	pick := 12.0 / pixelsPerMeter
	best := pick * 4
	var hit *Agent
	for _, a := range g.sim.Hostiles() {
		d := V3(wx, 0, wz).FlatDist(a.Pos) - a.Arch.Radius
		if d < pick && d < best {
			best = d
			hit = a
		}
	}
	g.inspector.selected = hit
	return hit != nil
}

// drawInspector renders the inspector panel into an offscreen buffer at 1x,
// then blits it onto the screen at inspScale, top-right of the playfield.
func (g *Game) drawInspector(screen *ebiten.Image) {
	a := g.inspector.Selected(g.sim)
	if a == nil {
		return
	}

	g.inspBuf.Clear()

	buf := g.inspBuf
	bw := float32(inspBufW)
	bh := float32(inspBufH)

	panelBg := color.RGBA{R: 14, G: 14, B: 18, A: 230}
	panelBorder := color.RGBA{R: 80, G: 70, B: 55, A: 255}
	vector.FillRect(buf, 0, 0, bw, bh, panelBg, false)
	vector.StrokeRect(buf, 0, 0, bw, bh, 1.0, panelBorder, false)
	vector.StrokeLine(buf, 1, 1, bw-1, 1, 1.0, color.RGBA{R: 120, G: 100, B: 70, A: 60}, false)

	lx := inspPad
	ly := inspPad

	title := fmt.Sprintf("[ %s ]", a.Label())
	if a.Boss {
		title = fmt.Sprintf("[ %s BOSS ]", a.Label())
	}
	ebitenutil.DebugPrintAt(buf, title, lx, ly)
	ly += inspLineH + 2

	viewName := "CURATED"
	if g.inspector.rawView {
		viewName = "RAW"
	}
	ebitenutil.DebugPrintAt(buf, fmt.Sprintf("view: %s  [I] toggle", viewName), lx, ly)
	ly += inspLineH + 4

	vector.StrokeLine(buf, float32(lx), float32(ly), bw-float32(inspPad), float32(ly), 1.0, panelBorder, false)
	ly += 4

	if g.inspector.rawView {
		g.drawInspectorRaw(buf, a, lx, ly)
	} else {
		g.drawInspectorCurated(buf, a, lx, ly)
	}

	px := g.offX + g.gameWidth - inspBufW*inspScale - 8
	py := g.offY + 8
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(inspScale), float64(inspScale))
	opts.GeoM.Translate(float64(px), float64(py))
	screen.DrawImage(buf, opts)
}

// drawInspectorCurated draws the organised, human-readable inspector view.
func (g *Game) drawInspectorCurated(buf *ebiten.Image, a *Agent, lx, ly int) {
	p := g.sim.Player()
	now := g.sim.Now()

	line := func(text string) {
		ebitenutil.DebugPrintAt(buf, text, lx, ly)
		ly += inspLineH
	}
	section := func(title string) {
		ly += 3
		ebitenutil.DebugPrintAt(buf, "-- "+title+" --", lx, ly)
		ly += inspLineH
	}
	bar := func(label string, v float64) {
		filled := clampInt(int(v*14), 0, 14)
		b := strings.Repeat("#", filled) + strings.Repeat(".", 14-filled)
		ebitenutil.DebugPrintAt(buf, fmt.Sprintf("%-6s %s %3.0f%%", label, b, v*100), lx, ly)
		ly += inspLineH
	}

	section("SITUATION")
	if !a.Alive() {
		line("state: DEAD")
	} else {
		line(fmt.Sprintf("state: %s", a.State()))
	}
	dist := a.Pos.FlatDist(p.Pos)
	line(fmt.Sprintf("target: %.1fm", dist))
	line(fmt.Sprintf("detect %.0fm  reach %.1fm", a.Arch.DetectionRange, a.Arch.AttackRange))
	bar("hp", float64(a.Health.Health())/float64(a.Health.MaxHealth()))

	section("ATTACK")
	if a.Arch.Ranged {
		line(fmt.Sprintf("ranged: %s", a.Arch.Weapon))
	} else {
		line(fmt.Sprintf("melee: %d dmg r%.1f", a.Arch.MeleeDamage, a.Arch.MeleeRadius))
	}
	if b := a.Brain; b != nil {
		if wait := b.CooldownUntil() - now; wait > 0 {
			line(fmt.Sprintf("cooldown: %.1fs", wait))
		} else {
			line("cooldown: ready")
		}
	}

	section("ORIGIN")
	if a.Wave() < 0 {
		line("placed outside waves")
	} else {
		line(fmt.Sprintf("wave %d", a.Wave()))
	}
	line(fmt.Sprintf("pos:(%.0f,%.0f) hp:%d/%d", a.Pos.X, a.Pos.Z, a.Health.Health(), a.Health.MaxHealth()))
}

// drawInspectorRaw dumps the agent and brain fields verbatim.
func (g *Game) drawInspectorRaw(buf *ebiten.Image, a *Agent, lx, ly int) {
	line := func(text string) {
		ebitenutil.DebugPrintAt(buf, text, lx, ly)
		ly += inspLineH
	}

	line(fmt.Sprintf("id=%d kind=%s boss=%v", a.ID, a.Kind, a.Boss))
	line(fmt.Sprintf("pos=(%.2f,%.2f) hd=%.2f", a.Pos.X, a.Pos.Z, a.Heading))
	line(fmt.Sprintf("spawn=(%.1f,%.1f) w=%d", a.Spawn.X, a.Spawn.Z, a.wave))
	line(fmt.Sprintf("hp=%d/%d dead=%v", a.Health.Health(), a.Health.MaxHealth(), a.Health.Dead()))
	line(fmt.Sprintf("spd=%.1f turn=%.0f", a.Arch.Speed, a.Arch.TurnRate))
	line(fmt.Sprintf("r=%.2f h=%.2f", a.Arch.Radius, a.Arch.Height))
	if a.pendingDel {
		line(fmt.Sprintf("remove@%.2f", a.removeAt))
	}
	b := a.Brain
	if b == nil {
		line("-- no brain --")
		return
	}
	line("-- brain --")
	line(fmt.Sprintf("st=%s on=%v tr=%d", b.state, b.enabled, b.transitions))
	line(fmt.Sprintf("pt=(%.1f,%.1f) has=%v", b.patrolPoint.X, b.patrolPoint.Z, b.hasPoint))
	line(fmt.Sprintf("dwell=%v until=%.2f", b.dwelling, b.dwellUntil))
	line(fmt.Sprintf("cd=%.2f repath=%.2f", b.cooldownUntil, b.repathAt))
	line(fmt.Sprintf("path=%d idx=%d", len(b.path), b.pathIdx))
}

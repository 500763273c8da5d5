package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	tracerLifetime = 8  // frames
	flashLifetime  = 5  // frames
	sparkLifetime  = 12 // frames
)

// Tracer is a short-lived visual of one resolved trajectory segment.
type Tracer struct {
	from, to Vec3
	hit      HitKind
	critical bool
	hostile  bool // fired by a hostile
	age      int
}

// Done reports whether the tracer has faded out.
func (t *Tracer) Done() bool { return t.age >= tracerLifetime }

// MuzzleFlash is a short burst at a shooter's muzzle.
type MuzzleFlash struct {
	pos     Vec3
	hostile bool
	age     int
}

// impactSpark marks a geometry impact or a target hit.
type impactSpark struct {
	pos      Vec3
	target   bool
	critical bool
	age      int
}

// Effects owns every transient combat visual in the viewer. It is fed from
// the traces and events of each tick and aged once per drawn frame.
type Effects struct {
	tracers []*Tracer
	flashes []*MuzzleFlash
	sparks  []*impactSpark
}

// NewEffects returns an empty effect set.
func NewEffects() *Effects {
	return &Effects{}
}

// AddTraces turns a tick's resolved trajectories into tracers, following
// penetration hops. Traces that do not start at the player's muzzle are
// drawn as hostile fire.
func (fx *Effects) AddTraces(traces []Trace, playerMuzzle Vec3) {
	for i := range traces {
		tr := &traces[i]
		hostile := tr.Start.Dist(playerMuzzle) > 0.01
		for seg := tr; seg != nil; seg = seg.Penetration {
			fx.tracers = append(fx.tracers, &Tracer{
				from:     seg.Start,
				to:       seg.End,
				hit:      seg.Hit,
				critical: seg.Critical,
				hostile:  hostile,
			})
		}
	}
}

// AddEvent records the visuals a single event implies.
func (fx *Effects) AddEvent(e Event, playerID int) {
	switch e.Kind {
	case EventFire:
		fx.flashes = append(fx.flashes, &MuzzleFlash{
			pos:     e.Position,
			hostile: e.AgentID != playerID,
		})
	case EventImpact:
		fx.sparks = append(fx.sparks, &impactSpark{pos: e.Position})
	case EventHit:
		fx.sparks = append(fx.sparks, &impactSpark{pos: e.Position, target: true, critical: e.Critical})
	}
}

// Update ages and prunes every effect.
func (fx *Effects) Update() {
	kept := fx.tracers[:0]
	for _, t := range fx.tracers {
		t.age++
		if !t.Done() {
			kept = append(kept, t)
		}
	}
	clear(fx.tracers[len(kept):])
	fx.tracers = kept

	keptF := fx.flashes[:0]
	for _, f := range fx.flashes {
		f.age++
		if f.age < flashLifetime {
			keptF = append(keptF, f)
		}
	}
	clear(fx.flashes[len(keptF):])
	fx.flashes = keptF

	keptS := fx.sparks[:0]
	for _, s := range fx.sparks {
		s.age++
		if s.age < sparkLifetime {
			keptS = append(keptS, s)
		}
	}
	clear(fx.sparks[len(keptS):])
	fx.sparks = keptS
}

// Draw renders every effect. toScreen maps a world point onto the image.
func (fx *Effects) Draw(screen *ebiten.Image, toScreen func(Vec3) (float32, float32)) {
	for _, t := range fx.tracers {
		t.draw(screen, toScreen)
	}
	for _, f := range fx.flashes {
		progress := float64(f.age) / float64(flashLifetime)
		alpha := uint8(255 * (1.0 - progress))
		sx, sy := toScreen(f.pos)

		glow := color.RGBA{R: 100, G: 200, B: 255, A: uint8(float64(alpha) * 0.3)}
		if f.hostile {
			glow = color.RGBA{R: 255, G: 180, B: 40, A: uint8(float64(alpha) * 0.3)}
		}
		vector.FillCircle(screen, sx, sy, 8*float32(1-progress*0.6), glow, false)
		vector.FillCircle(screen, sx, sy, 3.5*float32(1-progress*0.5), color.RGBA{R: 255, G: 255, B: 220, A: alpha}, false)
	}
	for _, s := range fx.sparks {
		progress := float64(s.age) / float64(sparkLifetime)
		alpha := uint8(200 * (1.0 - progress))
		sx, sy := toScreen(s.pos)
		col := color.RGBA{R: 200, G: 190, B: 170, A: alpha}
		r := float32(2)
		switch {
		case s.critical:
			col = color.RGBA{R: 255, G: 60, B: 60, A: alpha}
			r = 5
		case s.target:
			col = color.RGBA{R: 255, G: 140, B: 90, A: alpha}
			r = 3.5
		}
		vector.StrokeCircle(screen, sx, sy, r+float32(progress*6), 1.2, col, false)
	}
}

// draw renders a tracer as a fast line with a hot tip and a short tail that
// fades toward the muzzle.
func (t *Tracer) draw(screen *ebiten.Image, toScreen func(Vec3) (float32, float32)) {
	progress := float64(t.age) / float64(tracerLifetime)
	if progress > 1.0 {
		return
	}
	headT := math.Min(1.0, progress*2.0)
	tailT := math.Max(0.0, headT-0.35)
	const nSeg = 4
	globalFade := float32(1.0 - progress*progress)

	hot := color.RGBA{R: 100, G: 220, B: 255}
	if t.hostile {
		hot = color.RGBA{R: 255, G: 210, B: 100}
	}
	for i := 0; i < nSeg; i++ {
		t0 := tailT + (headT-tailT)*float64(i)/float64(nSeg)
		t1 := tailT + (headT-tailT)*float64(i+1)/float64(nSeg)
		x0, y0 := toScreen(t.from.Lerp(t.to, t0))
		x1, y1 := toScreen(t.from.Lerp(t.to, t1))
		intensity := float32(i+1) / float32(nSeg)
		c := hot
		c.A = uint8(210 * intensity * globalFade)
		vector.StrokeLine(screen, x0, y0, x1, y1, 1.0, c, false)
	}
	hx, hy := toScreen(t.from.Lerp(t.to, headT))
	vector.FillCircle(screen, hx, hy, 1.2, color.RGBA{R: 255, G: 255, B: 230, A: uint8(220 * globalFade)}, false)
}

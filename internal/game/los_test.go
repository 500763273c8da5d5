package game

import "testing"

func TestLOS_ClearLine(t *testing.T) {
	if !HasLineOfSight(V3(0, 1, 0), V3(100, 1, 100), nil) {
		t.Fatal("expected clear LOS with no walls")
	}
}

func TestLOS_BlockedByWall(t *testing.T) {
	walls := []Box{BoxAt(40, 0, 2, 200, 3)}
	if HasLineOfSight(V3(0, 1, 100), V3(200, 1, 100), walls) {
		t.Fatal("expected LOS blocked by wall")
	}
}

func TestLOS_OverLowWall(t *testing.T) {
	walls := []Box{BoxAt(40, 0, 2, 200, 1)}
	if !HasLineOfSight(V3(0, 1.6, 100), V3(200, 1.6, 100), walls) {
		t.Fatal("eye-level ray should pass over a waist-high wall")
	}
}

func TestLOS_WallBeyondEndpoint_NotBlocked(t *testing.T) {
	walls := []Box{BoxAt(300, 0, 64, 64, 3)}
	if !HasLineOfSight(V3(0, 1, 32), V3(200, 1, 32), walls) {
		t.Fatal("wall beyond endpoint should not block LOS")
	}
}

func TestLOS_ZeroLength(t *testing.T) {
	walls := []Box{BoxAt(0, 0, 100, 100, 3)}
	// Same start and end: should not panic.
	_ = HasLineOfSight(V3(50, 1, 50), V3(50, 1, 50), walls)
}

func TestSegmentBoxHitT_EntryNormal(t *testing.T) {
	box := BoxAt(10, -1, 2, 2, 2)
	tHit, n, ok := segmentBoxHitT(V3(0, 1, 0), V3(20, 1, 0), box)
	if !ok {
		t.Fatal("expected hit")
	}
	if tHit < 0.49 || tHit > 0.51 {
		t.Fatalf("expected t≈0.5, got %.3f", tHit)
	}
	if n != (Vec3{X: -1}) {
		t.Fatalf("expected -X face normal, got %+v", n)
	}
}

func TestSegmentBoxHitT_FromNegativeSide(t *testing.T) {
	box := BoxAt(10, -1, 2, 2, 2)
	_, n, ok := segmentBoxHitT(V3(20, 1, 0), V3(0, 1, 0), box)
	if !ok {
		t.Fatal("expected hit")
	}
	if n != (Vec3{X: 1}) {
		t.Fatalf("expected +X face normal, got %+v", n)
	}
}

func TestSegmentBoxHitT_InsideBox(t *testing.T) {
	box := BoxAt(0, 0, 100, 100, 100)
	tHit, _, ok := segmentBoxHitT(V3(10, 10, 10), V3(20, 20, 20), box)
	if !ok || tHit != 0 {
		t.Fatalf("segment starting inside should hit at t=0, got ok=%v t=%.3f", ok, tHit)
	}
}

func TestSegmentBoxHitT_Miss(t *testing.T) {
	box := BoxAt(50, 0, 100, 100, 3)
	if _, _, ok := segmentBoxHitT(V3(0, 1, 0), V3(0, 1, 100), box); ok {
		t.Fatal("segment to the side of the box should not intersect")
	}
}

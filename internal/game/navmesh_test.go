package game

import (
	"math"
	"testing"
)

func TestNavGrid_UnblockedByDefault(t *testing.T) {
	ng := NewNavGrid(40, 30, 1, nil, 0)
	if ng.IsBlocked(0, 0) {
		t.Fatal("empty grid should have no blocked cells")
	}
	if ng.IsBlocked(ng.cols-1, ng.rows-1) {
		t.Fatal("corner cell should not be blocked")
	}
}

func TestNavGrid_WallBlocksCells(t *testing.T) {
	// Wall footprint (4,4)-(8,8) with 1m cells covers cells 4..7.
	ng := NewNavGrid(40, 30, 1, []Box{BoxAt(4, 4, 4, 4, 3)}, 0)
	if !ng.IsBlocked(4, 4) {
		t.Fatal("cell inside wall should be blocked")
	}
	if !ng.IsBlocked(7, 7) {
		t.Fatal("cell at far corner of wall should be blocked")
	}
	if ng.IsBlocked(8, 8) {
		t.Fatal("cell just past the wall should be open")
	}
}

func TestNavGrid_PaddingBlocksAdjacentCells(t *testing.T) {
	ng := NewNavGrid(40, 30, 1, []Box{BoxAt(4, 4, 4, 4, 3)}, 0.5)
	if !ng.IsBlocked(3, 4) {
		t.Fatal("cell within agent-radius padding should be blocked")
	}
}

func TestNavGrid_OOB_IsBlocked(t *testing.T) {
	ng := NewNavGrid(40, 30, 1, nil, 0)
	if !ng.IsBlocked(-1, 0) || !ng.IsBlocked(0, -1) || !ng.IsBlocked(ng.cols, 0) {
		t.Fatal("out-of-bounds cells should be blocked")
	}
}

func TestNavGrid_NearestWalkable(t *testing.T) {
	ng := NewNavGrid(40, 30, 1, []Box{BoxAt(10, 10, 5, 5, 3)}, 0)
	p, ok := ng.NearestWalkable(V3(12.5, 0, 10.5), 8)
	if !ok {
		t.Fatal("expected a walkable cell near the wall")
	}
	if !ng.Walkable(p) {
		t.Fatalf("returned point %+v is not walkable", p)
	}
	if p.FlatDist(V3(12.5, 0, 10.5)) > 1.5 {
		t.Fatalf("nearest walkable point too far: %+v", p)
	}
}

func TestFindPath_StraightLine(t *testing.T) {
	ng := NewNavGrid(40, 30, 1, nil, 0)
	path := ng.FindPath(V3(1.5, 0, 1.5), V3(10.5, 0, 1.5))
	if path == nil {
		t.Fatal("expected a path")
	}
	last := path[len(path)-1]
	if math.Abs(last.X-10.5) > 1e-9 || math.Abs(last.Z-1.5) > 1e-9 {
		t.Fatalf("path should end at goal cell centre, got %+v", last)
	}
}

func TestFindPath_AroundWall(t *testing.T) {
	ng := NewNavGrid(40, 30, 1, []Box{BoxAt(5, 0, 1, 20, 3)}, 0)
	path := ng.FindPath(V3(1.5, 0, 5.5), V3(10.5, 0, 5.5))
	if path == nil {
		t.Fatal("expected a path around the wall")
	}
	for _, wp := range path {
		if !ng.Walkable(wp) {
			t.Fatalf("waypoint %+v is inside the wall", wp)
		}
	}
}

func TestFindPath_BlockedGoal(t *testing.T) {
	ng := NewNavGrid(40, 30, 1, []Box{BoxAt(10, 10, 2, 2, 3)}, 0)
	if path := ng.FindPath(V3(1.5, 0, 1.5), V3(10.5, 0, 10.5)); path != nil {
		t.Fatal("path into a blocked cell should be nil")
	}
}

package game

import (
	"container/heap"
	"math"
)

// NavGrid is a floor-plane walkability grid where true = blocked.
type NavGrid struct {
	cols     int
	rows     int
	cellSize float64
	blocked  []bool
}

// NewNavGrid rasterizes the arena walls into a walkability grid. Each cell
// that overlaps a wall footprint (padded by the agent radius) is blocked.
func NewNavGrid(width, depth, cellSize float64, walls []Box, agentRadius float64) *NavGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(depth / cellSize))
	ng := &NavGrid{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		blocked:  make([]bool, cols*rows),
	}

	for _, w := range walls {
		x0 := w.Min.X - agentRadius
		z0 := w.Min.Z - agentRadius
		x1 := w.Max.X + agentRadius
		z1 := w.Max.Z + agentRadius

		cMinX := max(0, int(math.Floor(x0/cellSize)))
		cMinZ := max(0, int(math.Floor(z0/cellSize)))
		cMaxX := min(cols-1, int(math.Ceil(x1/cellSize))-1)
		cMaxZ := min(rows-1, int(math.Ceil(z1/cellSize))-1)

		for cz := cMinZ; cz <= cMaxZ; cz++ {
			for cx := cMinX; cx <= cMaxX; cx++ {
				ng.blocked[cz*cols+cx] = true
			}
		}
	}
	return ng
}

// IsBlocked returns true if the cell at (cx, cz) is not walkable.
func (ng *NavGrid) IsBlocked(cx, cz int) bool {
	if cx < 0 || cz < 0 || cx >= ng.cols || cz >= ng.rows {
		return true
	}
	return ng.blocked[cz*ng.cols+cx]
}

// Walkable reports whether the world point p stands on a walkable cell.
func (ng *NavGrid) Walkable(p Vec3) bool {
	cx, cz := ng.WorldToCell(p)
	return !ng.IsBlocked(cx, cz)
}

// WorldToCell converts a world position to grid cell coordinates.
func (ng *NavGrid) WorldToCell(p Vec3) (int, int) {
	return int(math.Floor(p.X / ng.cellSize)), int(math.Floor(p.Z / ng.cellSize))
}

// CellToWorld converts grid cell coordinates to the world-space cell center
// on the floor.
func (ng *NavGrid) CellToWorld(cx, cz int) Vec3 {
	return Vec3{
		X: (float64(cx) + 0.5) * ng.cellSize,
		Z: (float64(cz) + 0.5) * ng.cellSize,
	}
}

// NearestWalkable returns the closest walkable floor point to p, searching
// outward ring by ring up to maxRings cells. The bool is false when nothing
// walkable was found.
func (ng *NavGrid) NearestWalkable(p Vec3, maxRings int) (Vec3, bool) {
	cx, cz := ng.WorldToCell(p)
	if !ng.IsBlocked(cx, cz) {
		return Vec3{X: p.X, Z: p.Z}, true
	}
	for r := 1; r <= maxRings; r++ {
		best := Vec3{}
		bestD := math.MaxFloat64
		found := false
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dz)) != r {
					continue
				}
				if ng.IsBlocked(cx+dx, cz+dz) {
					continue
				}
				c := ng.CellToWorld(cx+dx, cz+dz)
				if d := c.FlatDist(p); d < bestD {
					bestD = d
					best = c
					found = true
				}
			}
		}
		if found {
			return best, true
		}
	}
	return Vec3{}, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// --- A* pathfinding ---

type pathNode struct {
	cx, cz int
	g, h   float64
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int           { return len(ol) }
func (ol openList) Less(i, j int) bool { return (ol[i].g + ol[i].h) < (ol[j].g + ol[j].h) }
func (ol openList) Swap(i, j int)      { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x any)        { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() any {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// FindPath returns floor waypoints from start to goal, or nil if no path
// exists.
func (ng *NavGrid) FindPath(start, goal Vec3) []Vec3 {
	scx, scz := ng.WorldToCell(start)
	gcx, gcz := ng.WorldToCell(goal)

	if ng.IsBlocked(scx, scz) || ng.IsBlocked(gcx, gcz) {
		return nil
	}

	key := func(cx, cz int) int { return cz*ng.cols + cx }
	heuristic := func(ax, az, bx, bz int) float64 {
		dx := math.Abs(float64(ax - bx))
		dz := math.Abs(float64(az - bz))
		return dx + dz + (math.Sqrt2-2)*math.Min(dx, dz)
	}

	first := &pathNode{cx: scx, cz: scz, h: heuristic(scx, scz, gcx, gcz)}
	ol := &openList{first}
	heap.Init(ol)

	closed := make(map[int]bool)
	best := map[int]*pathNode{key(scx, scz): first}

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cx == gcx && cur.cz == gcz {
			return ng.buildPath(cur)
		}
		k := key(cur.cx, cur.cz)
		if closed[k] {
			continue
		}
		closed[k] = true

		for _, d := range dirs {
			nx, nz := cur.cx+d[0], cur.cz+d[1]
			if ng.IsBlocked(nx, nz) {
				continue
			}
			// No diagonal corner-cutting through blocked cells.
			if d[0] != 0 && d[1] != 0 {
				if ng.IsBlocked(cur.cx+d[0], cur.cz) || ng.IsBlocked(cur.cx, cur.cz+d[1]) {
					continue
				}
			}
			nk := key(nx, nz)
			if closed[nk] {
				continue
			}
			cost := 1.0
			if d[0] != 0 && d[1] != 0 {
				cost = math.Sqrt2
			}
			g := cur.g + cost
			if prev, ok := best[nk]; ok && g >= prev.g {
				continue
			}
			node := &pathNode{cx: nx, cz: nz, g: g, h: heuristic(nx, nz, gcx, gcz), parent: cur}
			best[nk] = node
			heap.Push(ol, node)
		}
	}
	return nil
}

func (ng *NavGrid) buildPath(end *pathNode) []Vec3 {
	var cells [][2]int
	for n := end; n != nil; n = n.parent {
		cells = append(cells, [2]int{n.cx, n.cz})
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	path := make([]Vec3, len(cells))
	for i, c := range cells {
		path[i] = ng.CellToWorld(c[0], c[1])
	}
	return path
}

// LineWalkable reports whether a straight floor walk from a to b stays on
// walkable cells, sampled every half cell.
func (ng *NavGrid) LineWalkable(a, b Vec3) bool {
	d := b.Flat().Sub(a.Flat())
	dist := d.Len()
	steps := int(math.Ceil(dist/(ng.cellSize*0.5))) + 1
	for i := 0; i <= steps; i++ {
		p := a.Flat().Add(d.Scale(float64(i) / float64(steps)))
		if !ng.Walkable(p) {
			return false
		}
	}
	return true
}

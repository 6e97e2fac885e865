package field

// Grid is a uniform cell grid over particle positions, rebuilt each tick when
// the particle count crosses GridThreshold. It only narrows the candidate set
// for the pairwise passes; callers still apply the exact distance test.
// Buckets hold start-of-tick positions while the sequential pass mutates
// positions mid-tick, so a particle displaced across a cell boundary can be
// pruned where a full rescan would still see it. Per-tick displacement stays
// well under one cell, which bounds that error to the cell rim.
type Grid struct {
	cell  float64
	cols  int
	rows  int
	cells [][]int32
}

// BuildGrid buckets particle indexes by cell. Cell size must be at least the
// query radius so a 3x3 neighborhood covers it.
func BuildGrid(p []Particle, width, height, cell float64) *Grid {
	if cell <= 0 {
		cell = SeparationRadius
	}
	cols := int(width/cell) + 1
	rows := int(height/cell) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	g := &Grid{
		cell:  cell,
		cols:  cols,
		rows:  rows,
		cells: make([][]int32, cols*rows),
	}
	for i := range p {
		ci := g.cellIndex(p[i].X, p[i].Y)
		g.cells[ci] = append(g.cells[ci], int32(i))
	}
	return g
}

func (g *Grid) cellIndex(x, y float64) int {
	cx := clamp(int(x/g.cell), 0, g.cols-1)
	cy := clamp(int(y/g.cell), 0, g.rows-1)
	return cy*g.cols + cx
}

// Neighbors appends the indexes bucketed in the 3x3 cells around (x, y).
// The returned slice reuses out's backing array.
func (g *Grid) Neighbors(x, y float64, out []int32) []int32 {
	cx := clamp(int(x/g.cell), 0, g.cols-1)
	cy := clamp(int(y/g.cell), 0, g.rows-1)
	for oy := -1; oy <= 1; oy++ {
		ny := cy + oy
		if ny < 0 || ny >= g.rows {
			continue
		}
		for ox := -1; ox <= 1; ox++ {
			nx := cx + ox
			if nx < 0 || nx >= g.cols {
				continue
			}
			out = append(out, g.cells[ny*g.cols+nx]...)
		}
	}
	return out
}

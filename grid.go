// Package crossroads implements the core of a crossword construction tool:
// the tagged grid model, numbered-entry detection, and a backtracking
// autofill search over a rated dictionary.
package crossroads

import (
	"fmt"
	"strings"
)

// MaxDim is the largest supported grid side length.
const MaxDim = 50

// CellKind tags the three cell states.
type CellKind uint8

const (
	// EmptyCell is a playable cell with no letter assigned.
	EmptyCell CellKind = iota
	// BlackCell is an unplayable block.
	BlackCell
	// LetterCell is a playable cell holding a single letter A-Z.
	LetterCell
)

// Cell is one square of a grid. Ch is meaningful only when Kind is
// LetterCell and is always an uppercase ASCII letter.
type Cell struct {
	Kind CellKind
	Ch   byte
}

// Black, Empty and Letter construct the three cell states.
func Black() Cell { return Cell{Kind: BlackCell} }

func Empty() Cell { return Cell{Kind: EmptyCell} }

func Letter(ch byte) Cell { return Cell{Kind: LetterCell, Ch: ch} }

// Playable reports whether the cell can hold a letter.
func (c Cell) Playable() bool { return c.Kind != BlackCell }

// Symmetry selects which co-edit a block placement implies.
type Symmetry int

const (
	SymNone Symmetry = iota
	SymRotational180
	SymMirrorVertical   // flip across the vertical axis: (r, c) <-> (r, cols-1-c)
	SymMirrorHorizontal // flip across the horizontal axis: (r, c) <-> (rows-1-r, c)
)

func (s Symmetry) String() string {
	switch s {
	case SymNone:
		return "none"
	case SymRotational180:
		return "rotational"
	case SymMirrorVertical:
		return "mirror-vertical"
	case SymMirrorHorizontal:
		return "mirror-horizontal"
	}
	return fmt.Sprintf("Symmetry(%d)", int(s))
}

// Coord addresses a cell. Row-major, origin top-left.
type Coord struct {
	Row, Col int
}

// Grid is a mutable rows x cols array of cells. Every row has the same
// column count and black cells never carry a letter.
type Grid struct {
	rows, cols int
	cells      []Cell // row-major
}

// New returns an all-empty grid. Dimensions outside [1, MaxDim] are a
// GeometryError.
func New(rows, cols int) (*Grid, error) {
	if rows < 1 || rows > MaxDim || cols < 1 || cols > MaxDim {
		return nil, &GeometryError{Rows: rows, Cols: cols}
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}, nil
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether (r, c) addresses a cell of g.
func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && r < g.rows && c >= 0 && c < g.cols
}

// At returns the cell at (r, c).
func (g *Grid) At(r, c int) (Cell, error) {
	if !g.InBounds(r, c) {
		return Cell{}, &OutOfBoundsError{Row: r, Col: c, Rows: g.rows, Cols: g.cols}
	}
	return g.cells[r*g.cols+c], nil
}

// Cell is like At for coordinates known to be in bounds.
func (g *Grid) Cell(r, c int) Cell {
	return g.cells[r*g.cols+c]
}

// Mirror returns the position paired with (r, c) under a symmetry mode.
// Under SymNone, or at the fixed point of the mode, it returns (r, c)
// itself.
func (g *Grid) Mirror(r, c int, sym Symmetry) Coord {
	switch sym {
	case SymRotational180:
		return Coord{g.rows - 1 - r, g.cols - 1 - c}
	case SymMirrorVertical:
		return Coord{r, g.cols - 1 - c}
	case SymMirrorHorizontal:
		return Coord{g.rows - 1 - r, c}
	}
	return Coord{r, c}
}

// Set writes value at (r, c). If sym is not SymNone and the write toggles
// the black/non-black status of the cell, the mirror position receives the
// same black/non-black status; when the mirror coincides with (r, c) no
// second write occurs. Letter writes never propagate.
func (g *Grid) Set(r, c int, value Cell, sym Symmetry) error {
	if !g.InBounds(r, c) {
		return &OutOfBoundsError{Row: r, Col: c, Rows: g.rows, Cols: g.cols}
	}
	if value.Kind == LetterCell && (value.Ch < 'A' || value.Ch > 'Z') {
		return fmt.Errorf("letter %q out of range A-Z", value.Ch)
	}

	prev := g.cells[r*g.cols+c]
	g.cells[r*g.cols+c] = normalize(value)

	toggled := prev.Playable() != value.Playable()
	if sym == SymNone || !toggled {
		return nil
	}

	m := g.Mirror(r, c, sym)
	if m == (Coord{r, c}) {
		return nil
	}
	mi := m.Row*g.cols + m.Col
	if g.cells[mi].Playable() != value.Playable() {
		if value.Kind == BlackCell {
			g.cells[mi] = Black()
		} else {
			g.cells[mi] = Empty()
		}
	}
	return nil
}

// normalize strips any stray letter payload from non-letter cells.
func normalize(c Cell) Cell {
	if c.Kind != LetterCell {
		c.Ch = 0
	}
	return c
}

// Resize grows or shrinks the grid, preserving the top-left intersection
// region. Newly exposed cells are empty.
func (g *Grid) Resize(rows, cols int) error {
	if rows < 1 || rows > MaxDim || cols < 1 || cols > MaxDim {
		return &GeometryError{Rows: rows, Cols: cols}
	}
	cells := make([]Cell, rows*cols)
	for r := 0; r < min(rows, g.rows); r++ {
		copy(cells[r*cols:], g.cells[r*g.cols:r*g.cols+min(cols, g.cols)])
	}
	g.rows, g.cols, g.cells = rows, cols, cells
	return nil
}

// ClearLetters replaces every letter cell with an empty cell, leaving
// blocks intact.
func (g *Grid) ClearLetters() {
	for i, c := range g.cells {
		if c.Kind == LetterCell {
			g.cells[i] = Empty()
		}
	}
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{rows: g.rows, cols: g.cols, cells: cells}
}

// Equal reports cell-for-cell equality.
func (g *Grid) Equal(o *Grid) bool {
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// CountBlack returns the number of black cells.
func (g *Grid) CountBlack() int {
	n := 0
	for _, c := range g.cells {
		if c.Kind == BlackCell {
			n++
		}
	}
	return n
}

// Complete reports whether every playable cell holds a letter.
func (g *Grid) Complete() bool {
	for _, c := range g.cells {
		if c.Kind == EmptyCell {
			return false
		}
	}
	return true
}

// ConnectedPlayable reports whether all playable cells form a single
// orthogonally connected region. A grid with no playable cells is
// trivially connected.
func (g *Grid) ConnectedPlayable() bool {
	start := -1
	for i, c := range g.cells {
		if c.Playable() {
			start = i
			break
		}
	}
	if start < 0 {
		return true
	}

	visited := make([]bool, len(g.cells))
	queue := []int{start}
	visited[start] = true
	seen := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		seen++

		r, c := i/g.cols, i%g.cols
		for _, d := range [4]Coord{{r - 1, c}, {r + 1, c}, {r, c - 1}, {r, c + 1}} {
			if !g.InBounds(d.Row, d.Col) {
				continue
			}
			j := d.Row*g.cols + d.Col
			if visited[j] || !g.cells[j].Playable() {
				continue
			}
			visited[j] = true
			queue = append(queue, j)
		}
	}

	playable := len(g.cells) - g.CountBlack()
	return seen == playable
}

// Text representation: '#' block, '.' empty, 'A'-'Z' letter.
const (
	reprBlack = '#'
	reprEmpty = '.'
)

// Repr renders the grid in its text form, one row per line.
func (g *Grid) Repr() string {
	var b strings.Builder
	b.Grow(g.rows * (g.cols + 1))
	for r := 0; r < g.rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < g.cols; c++ {
			switch cell := g.Cell(r, c); cell.Kind {
			case BlackCell:
				b.WriteByte(reprBlack)
			case EmptyCell:
				b.WriteByte(reprEmpty)
			default:
				b.WriteByte(cell.Ch)
			}
		}
	}
	return b.String()
}

// Parse reads the Repr text form back into a grid. Rows must be non-empty
// and of equal width.
func Parse(s string) (*Grid, error) {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	rows := len(lines)
	if rows == 0 || lines[0] == "" {
		return nil, &GeometryError{Rows: 0, Cols: 0}
	}
	cols := len(lines[0])

	g, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	for r, line := range lines {
		if len(line) != cols {
			return nil, &GeometryError{Rows: rows, Cols: cols}
		}
		for c := 0; c < cols; c++ {
			switch ch := line[c]; {
			case ch == reprBlack:
				g.cells[r*cols+c] = Black()
			case ch == reprEmpty:
				g.cells[r*cols+c] = Empty()
			case ch >= 'A' && ch <= 'Z':
				g.cells[r*cols+c] = Letter(ch)
			case ch >= 'a' && ch <= 'z':
				g.cells[r*cols+c] = Letter(ch - 'a' + 'A')
			default:
				return nil, fmt.Errorf("row %d col %d: unexpected cell %q", r, c, ch)
			}
		}
	}
	return g, nil
}

func (g *Grid) DebugString() string {
	return fmt.Sprintf("Grid{rows: %d, cols: %d}\n%s", g.rows, g.cols, g.Repr())
}

package crossroads

import (
	"fmt"

	"github.com/hugolynch/crossroads/pkg/dict"
)

// Direction of an entry.
type Direction uint8

const (
	Across Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Across {
		return "across"
	}
	return "down"
}

// delta returns the travel step for the direction.
func (d Direction) delta() Coord {
	if d == Across {
		return Coord{0, 1}
	}
	return Coord{1, 0}
}

// EntryID identifies an entry by its direction and starting cell. It is
// stable across renumbering as long as the block pattern around the start
// does not change.
type EntryID struct {
	Dir      Direction
	Row, Col int
}

func (id EntryID) String() string {
	return fmt.Sprintf("%s@(%d,%d)", id.Dir, id.Row, id.Col)
}

// Entry is a maximal run of playable cells in one direction.
type Entry struct {
	ID     EntryID
	Num    int // display number, assigned in reading order over starts
	Length int
}

// Cells returns the entry's coordinates in order of travel.
func (e Entry) Cells() []Coord {
	d := e.ID.Dir.delta()
	cells := make([]Coord, e.Length)
	for i := range cells {
		cells[i] = Coord{e.ID.Row + i*d.Row, e.ID.Col + i*d.Col}
	}
	return cells
}

// WordIndex is the derived collection of entries for one grid snapshot. It
// is pure with respect to the grid: the same grid always derives the same
// index.
type WordIndex struct {
	// Entries in reading order of start position, across before down at a
	// shared start.
	Entries []Entry

	numbers map[Coord]int
	byID    map[EntryID]int // index into Entries
	// membership[cell] holds the indices of the across and down entries the
	// cell belongs to, -1 when it belongs to none in that direction.
	membership map[Coord][2]int
}

// Index derives the word index of g: maximal non-black runs, numbered in
// reading order over starting positions. An across and a down entry
// starting at the same cell share a number.
func Index(g *Grid) *WordIndex {
	ix := &WordIndex{
		numbers:    make(map[Coord]int),
		byID:       make(map[EntryID]int),
		membership: make(map[Coord][2]int),
	}

	num := 0
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			if !g.Cell(r, c).Playable() {
				continue
			}
			startsAcross := c == 0 || !g.Cell(r, c-1).Playable()
			startsDown := r == 0 || !g.Cell(r-1, c).Playable()
			if !startsAcross && !startsDown {
				continue
			}
			num++
			ix.numbers[Coord{r, c}] = num

			if startsAcross {
				ix.addEntry(g, EntryID{Across, r, c}, num)
			}
			if startsDown {
				ix.addEntry(g, EntryID{Down, r, c}, num)
			}
		}
	}
	return ix
}

func (ix *WordIndex) addEntry(g *Grid, id EntryID, num int) {
	d := id.Dir.delta()
	length := 0
	for r, c := id.Row, id.Col; g.InBounds(r, c) && g.Cell(r, c).Playable(); r, c = r+d.Row, c+d.Col {
		length++
	}

	e := Entry{ID: id, Num: num, Length: length}
	i := len(ix.Entries)
	ix.Entries = append(ix.Entries, e)
	ix.byID[id] = i

	for _, cell := range e.Cells() {
		m, ok := ix.membership[cell]
		if !ok {
			m = [2]int{-1, -1}
		}
		m[id.Dir] = i
		ix.membership[cell] = m
	}
}

// Entry looks up an entry by identifier.
func (ix *WordIndex) Entry(id EntryID) (Entry, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return Entry{}, false
	}
	return ix.Entries[i], true
}

// NumberAt returns the display number assigned to a starting cell, if any.
func (ix *WordIndex) NumberAt(r, c int) (int, bool) {
	n, ok := ix.numbers[Coord{r, c}]
	return n, ok
}

// EntriesAt returns the across and down entries a playable cell belongs
// to; every playable cell belongs to exactly one of each (possibly of
// length 1). Both are nil for black cells.
func (ix *WordIndex) EntriesAt(r, c int) (across, down *Entry) {
	m, ok := ix.membership[Coord{r, c}]
	if !ok {
		return nil, nil
	}
	if m[Across] >= 0 {
		across = &ix.Entries[m[Across]]
	}
	if m[Down] >= 0 {
		down = &ix.Entries[m[Down]]
	}
	return across, down
}

// ByNumber returns the entries with a given display number, across first.
func (ix *WordIndex) ByNumber(num int) []Entry {
	var out []Entry
	for _, e := range ix.Entries {
		if e.Num == num {
			out = append(out, e)
		}
	}
	return out
}

// PatternOf reads an entry's cells from g into a match pattern: letters
// stay fixed, empty cells become wildcards.
func PatternOf(g *Grid, e Entry) dict.Pattern {
	buf := make([]byte, e.Length)
	for i, cell := range e.Cells() {
		switch c := g.Cell(cell.Row, cell.Col); c.Kind {
		case LetterCell:
			buf[i] = c.Ch
		default:
			buf[i] = dict.Wildcard
		}
	}
	return dict.Pattern(buf)
}

// WordAt reads the letters of an entry from g; the second return is false
// if any cell is still empty.
func WordAt(g *Grid, e Entry) (string, bool) {
	buf := make([]byte, e.Length)
	for i, cell := range e.Cells() {
		c := g.Cell(cell.Row, cell.Col)
		if c.Kind != LetterCell {
			return "", false
		}
		buf[i] = c.Ch
	}
	return string(buf), true
}

package crossroads

import (
	"context"
	"strings"

	"github.com/hugolynch/crossroads/pkg/dict"
)

// DefaultMaxVariations caps the number of distinct fills one search
// enumerates unless the caller overrides it.
const DefaultMaxVariations = 100

// checkInterval is how many recursion steps pass between progress,
// cancellation and budget checks. The same checks also run after every
// tenth solution.
const checkInterval = 50

// Options tune one autofill run. The zero value means: enumerate up to
// DefaultMaxVariations fills with no node budget and no progress sink.
// Deadline and cancellation ride the context passed to Autofill.
type Options struct {
	// MaxVariations caps the number of distinct solutions; <= 0 means
	// DefaultMaxVariations.
	MaxVariations int
	// NodeBudget caps recursion steps; <= 0 means unlimited.
	NodeBudget int
	// Progress, when non-nil, receives (variables assigned, variables
	// total, solutions so far) at batched intervals. It is the search's
	// only suspension point.
	Progress func(assigned, total, solutions int)
}

// Status classifies how an autofill run ended.
type Status int

const (
	// StatusFilled: the search space was exhausted and at least one fill
	// was found.
	StatusFilled Status = iota
	// StatusNoFill: the search space was exhausted without any fill. Not
	// an error; a partially filled grid legitimately may have no
	// completion in the dictionary.
	StatusNoFill
	// StatusMaxVariations: enumeration stopped at the variation cap.
	StatusMaxVariations
	// StatusNodeBudget: the recursion-step budget ran out.
	StatusNodeBudget
	// StatusDeadline: the context deadline passed mid-search.
	StatusDeadline
	// StatusCancelled: the context was cancelled mid-search.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusFilled:
		return "filled"
	case StatusNoFill:
		return "no-fill"
	case StatusMaxVariations:
		return "max-variations"
	case StatusNodeBudget:
		return "node-budget"
	case StatusDeadline:
		return "deadline"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Truncated reports whether the run stopped before exhausting the search
// space; the grids found so far are still valid fills.
func (s Status) Truncated() bool {
	switch s {
	case StatusMaxVariations, StatusNodeBudget, StatusDeadline, StatusCancelled:
		return true
	}
	return false
}

// Result of an autofill run. Grids are complete copies in search order;
// the caller's grid is never mutated.
type Result struct {
	Grids  []*Grid
	Status Status
	// Nodes is the number of recursion steps taken.
	Nodes int
	// NoCandidates lists variables that had zero dictionary candidates at
	// search entry; non-empty only with StatusNoFill.
	NoCandidates []EntryID
}

// fillVar is one search variable: an incomplete entry plus its candidate
// words in ranked order.
type fillVar struct {
	entry     Entry
	cells     []Coord
	cands     []dict.Word
	crossings []crossing
	assigned  bool
}

// crossing links position pos of one variable to position otherPos of
// variable other.
type crossing struct {
	pos      int
	other    int
	otherPos int
}

type searchOutcome int

const (
	outcomeExhausted searchOutcome = iota
	outcomeFoundEnough
	outcomeStopped
)

type filler struct {
	grid *Grid
	vars []fillVar
	// letters maps every constrained cell to the letter implied there,
	// whether fixed in the grid or implied by the partial assignment.
	letters map[Coord]byte

	ctx       context.Context
	opts      Options
	maxVars   int
	nodes     int
	stop      Status
	stopped   bool
	assigned  int
	solutions []*Grid
	seen      map[string]struct{}
}

// Autofill fills every incomplete entry of g with dictionary words whose
// crossings agree, enumerating distinct solutions in deterministic order.
// Letters already placed in g are preserved in every solution. The search
// runs synchronously; opts.Progress and the context checks are its only
// yield points.
func Autofill(ctx context.Context, d *dict.Dictionary, g *Grid, opts Options) Result {
	maxVars := opts.MaxVariations
	if maxVars <= 0 {
		maxVars = DefaultMaxVariations
	}

	ix := Index(g)
	f := &filler{
		grid:    g.Clone(),
		letters: make(map[Coord]byte),
		ctx:     ctx,
		opts:    opts,
		maxVars: maxVars,
		seen:    make(map[string]struct{}),
	}

	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			if cell := g.Cell(r, c); cell.Kind == LetterCell {
				f.letters[Coord{r, c}] = cell.Ch
			}
		}
	}

	// Variables: incomplete entries of length >= 2, in entry order (the
	// index is already number-ordered with across before down).
	varOf := make(map[EntryID]int)
	var noCands []EntryID
	for _, e := range ix.Entries {
		if e.Length < 2 {
			continue
		}
		p := PatternOf(g, e)
		if p.Complete() {
			continue
		}
		cands := d.Candidates(p, dict.RatingRange{}, dict.RatingDesc)
		if len(cands) == 0 {
			noCands = append(noCands, e.ID)
		}
		varOf[e.ID] = len(f.vars)
		f.vars = append(f.vars, fillVar{entry: e, cells: e.Cells(), cands: cands})
	}

	if len(f.vars) == 0 {
		// Nothing to fill: the grid itself is the one completion.
		return Result{Grids: []*Grid{g.Clone()}, Status: StatusFilled}
	}
	if len(noCands) > 0 {
		return Result{Status: StatusNoFill, NoCandidates: noCands}
	}

	f.linkCrossings(ix, varOf)
	if !f.pruneArcs() {
		return Result{Status: StatusNoFill, Nodes: f.nodes}
	}

	outcome := f.search()

	res := Result{Grids: f.solutions, Nodes: f.nodes}
	switch {
	case outcome == outcomeStopped:
		res.Status = f.stop
	case outcome == outcomeFoundEnough:
		res.Status = StatusMaxVariations
	case len(f.solutions) == 0:
		res.Status = StatusNoFill
	default:
		res.Status = StatusFilled
	}
	return res
}

// linkCrossings records, for every variable, the cells it shares with
// other variables.
func (f *filler) linkCrossings(ix *WordIndex, varOf map[EntryID]int) {
	posIn := func(v *fillVar, cell Coord) int {
		for i, c := range v.cells {
			if c == cell {
				return i
			}
		}
		return -1
	}

	for vi := range f.vars {
		v := &f.vars[vi]
		for pos, cell := range v.cells {
			a, dn := ix.EntriesAt(cell.Row, cell.Col)
			var other *Entry
			if v.entry.ID.Dir == Across {
				other = dn
			} else {
				other = a
			}
			if other == nil {
				continue
			}
			ui, ok := varOf[other.ID]
			if !ok {
				continue // complete entry; its letters are in f.letters
			}
			v.crossings = append(v.crossings, crossing{
				pos:      pos,
				other:    ui,
				otherPos: posIn(&f.vars[ui], cell),
			})
		}
	}
}

// pruneArcs runs one arc-consistency pass: a candidate is rejected when
// some crossing variable has no candidate agreeing on the shared cell.
// One-shot at search entry, not maintained during search. Returns false
// if a variable ends up with no candidates.
func (f *filler) pruneArcs() bool {
	// Letter-presence tables from the unpruned candidate lists.
	present := make([][][26]bool, len(f.vars))
	for vi := range f.vars {
		v := &f.vars[vi]
		present[vi] = make([][26]bool, v.entry.Length)
		for _, w := range v.cands {
			for i := 0; i < len(w.Text); i++ {
				present[vi][i][w.Text[i]-'A'] = true
			}
		}
	}

	for vi := range f.vars {
		v := &f.vars[vi]
		kept := v.cands[:0:len(v.cands)]
		for _, w := range v.cands {
			ok := true
			for _, x := range v.crossings {
				if !present[x.other][x.otherPos][w.Text[x.pos]-'A'] {
					ok = false
					break
				}
			}
			if ok {
				kept = append(kept, w)
			}
		}
		v.cands = kept
		if len(v.cands) == 0 {
			return false
		}
	}
	return true
}

// compatible reports whether word agrees with every letter currently
// implied on v's cells.
func (f *filler) compatible(v *fillVar, word string) bool {
	for i, cell := range v.cells {
		if ch, ok := f.letters[cell]; ok && ch != word[i] {
			return false
		}
	}
	return true
}

// remaining counts v's candidates compatible with the current constraints.
func (f *filler) remaining(v *fillVar) int {
	n := 0
	for _, w := range v.cands {
		if f.compatible(v, w.Text) {
			n++
		}
	}
	return n
}

// pickMRV selects the unassigned variable with the fewest remaining
// candidates. Variables are scanned in entry order, so ties resolve to
// the lower number with across before down. Returns -1 when every
// variable is assigned; the boolean is false when some variable has no
// remaining candidate.
func (f *filler) pickMRV() (int, bool) {
	best, bestCount := -1, 0
	for vi := range f.vars {
		if f.vars[vi].assigned {
			continue
		}
		n := f.remaining(&f.vars[vi])
		if n == 0 {
			return -1, false
		}
		if best < 0 || n < bestCount {
			best, bestCount = vi, n
		}
	}
	return best, true
}

// checkpoint runs the batched progress/cancellation/budget checks.
// Returns false when the search must stop.
func (f *filler) checkpoint() bool {
	if f.stopped {
		return false
	}
	if f.opts.Progress != nil {
		f.opts.Progress(f.assigned, len(f.vars), len(f.solutions))
	}
	if err := f.ctx.Err(); err != nil {
		if err == context.DeadlineExceeded {
			f.stop = StatusDeadline
		} else {
			f.stop = StatusCancelled
		}
		f.stopped = true
		return false
	}
	if f.opts.NodeBudget > 0 && f.nodes >= f.opts.NodeBudget {
		f.stop = StatusNodeBudget
		f.stopped = true
		return false
	}
	return true
}

func (f *filler) search() searchOutcome {
	f.nodes++
	if f.nodes%checkInterval == 0 && !f.checkpoint() {
		return outcomeStopped
	}

	vi, ok := f.pickMRV()
	if !ok {
		return outcomeExhausted
	}
	if vi < 0 {
		return f.commit()
	}

	v := &f.vars[vi]
	for _, w := range v.cands {
		if !f.compatible(v, w.Text) {
			continue
		}

		placed := f.assign(v, w.Text)
		v.assigned = true
		f.assigned++

		out := f.search()

		v.assigned = false
		f.assigned--
		f.unassign(placed)

		if out != outcomeExhausted {
			return out
		}
	}
	return outcomeExhausted
}

// assign records word's letters on v's cells, returning the cells newly
// constrained so the caller can undo them.
func (f *filler) assign(v *fillVar, word string) []Coord {
	var placed []Coord
	for i, cell := range v.cells {
		if _, ok := f.letters[cell]; !ok {
			f.letters[cell] = word[i]
			placed = append(placed, cell)
		}
	}
	return placed
}

func (f *filler) unassign(placed []Coord) {
	for _, cell := range placed {
		delete(f.letters, cell)
	}
}

// commit materializes the complete assignment into a grid copy, skipping
// fingerprints already seen.
func (f *filler) commit() searchOutcome {
	var fp strings.Builder
	for vi := range f.vars {
		v := &f.vars[vi]
		if vi > 0 {
			fp.WriteByte('|')
		}
		fp.WriteString(v.entry.ID.String())
		fp.WriteByte('=')
		for _, cell := range v.cells {
			fp.WriteByte(f.letters[cell])
		}
	}
	key := fp.String()
	if _, dup := f.seen[key]; dup {
		return outcomeExhausted
	}
	f.seen[key] = struct{}{}

	filled := f.grid.Clone()
	for cell, ch := range f.letters {
		filled.cells[cell.Row*filled.cols+cell.Col] = Letter(ch)
	}
	f.solutions = append(f.solutions, filled)

	// Every tenth solution is also a batched check point.
	if len(f.solutions)%10 == 0 && !f.checkpoint() {
		return outcomeStopped
	}
	if len(f.solutions) >= f.maxVars {
		return outcomeFoundEnough
	}
	return outcomeExhausted
}

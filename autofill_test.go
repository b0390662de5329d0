package crossroads

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hugolynch/crossroads/pkg/dict"
)

func listOf(words ...string) dict.List {
	list := make(dict.List, len(words))
	for i, w := range words {
		list[i] = dict.Word{Text: w}
	}
	return list
}

func reprs(grids []*Grid) []string {
	if len(grids) == 0 {
		return nil
	}
	out := make([]string, len(grids))
	for i, g := range grids {
		out[i] = g.Repr()
	}
	return out
}

// checkFill asserts the autofill consistency invariants: every entry of
// length >= 2 in each solution is a dictionary word or was already
// complete in the input, and every letter of the input survives.
func checkFill(t *testing.T, d *dict.Dictionary, in *Grid, out []*Grid) {
	t.Helper()
	inIx := Index(in)
	for gi, g := range out {
		ix := Index(g)
		for _, e := range ix.Entries {
			if e.Length < 2 {
				continue
			}
			w, ok := WordAt(g, e)
			if !ok {
				t.Errorf("fill %d: entry %v left incomplete", gi, e.ID)
				continue
			}
			if d.Contains(w) {
				continue
			}
			if ie, found := inIx.Entry(e.ID); found {
				if _, wasComplete := WordAt(in, ie); wasComplete {
					continue
				}
			}
			t.Errorf("fill %d: entry %v holds %q, not a dictionary word", gi, e.ID, w)
		}
		for r := 0; r < in.Rows(); r++ {
			for c := 0; c < in.Cols(); c++ {
				if cell := in.Cell(r, c); cell.Kind == LetterCell && g.Cell(r, c) != cell {
					t.Errorf("fill %d: placed letter at (%d,%d) changed from %c", gi, r, c, cell.Ch)
				}
			}
		}
	}
}

func TestAutofill_PlusShape(t *testing.T) {
	// One across and one down variable crossing at the centre; length-1
	// entries at the arm ends carry no obligation.
	g := mustParse(t, "#.#\n...\n#.#")
	d := dict.New(listOf("ABA", "BAB"))

	res := Autofill(context.Background(), d, g, Options{})
	if res.Status != StatusFilled {
		t.Fatalf("status = %v, want %v", res.Status, StatusFilled)
	}
	want := []string{"#A#\nABA\n#A#", "#B#\nBAB\n#B#"}
	if diff := cmp.Diff(want, reprs(res.Grids)); diff != "" {
		t.Errorf("solutions (-want +got):\n%s", diff)
	}
	checkFill(t, d, g, res.Grids)
}

func TestAutofill_TwoByTwo(t *testing.T) {
	// Seed scenario: every length-2 entry of every returned grid must be
	// a dictionary word, crossings must agree, and no assignment repeats.
	g := mustGrid(t, 2, 2)
	d := dict.New(listOf("AB", "BA", "AX", "XA", "AA"))

	res := Autofill(context.Background(), d, g, Options{MaxVariations: 10})
	if len(res.Grids) == 0 {
		t.Fatal("no fills found")
	}
	checkFill(t, d, g, res.Grids)

	seen := map[string]bool{}
	for _, r := range reprs(res.Grids) {
		if seen[r] {
			t.Errorf("duplicate fill:\n%s", r)
		}
		seen[r] = true
	}
}

func TestAutofill_CentreBlock(t *testing.T) {
	g := mustGrid(t, 3, 3)
	if err := g.Set(1, 1, Black(), SymNone); err != nil {
		t.Fatal(err)
	}
	d := dict.New(listOf("CAT", "CAR", "RAT", "TOT", "TAR"))

	res := Autofill(context.Background(), d, g, Options{MaxVariations: 10})
	if len(res.Grids) == 0 {
		t.Fatalf("no fills found, status %v", res.Status)
	}
	checkFill(t, d, g, res.Grids)
}

func TestAutofill_PreservesPlacedLetters(t *testing.T) {
	g := mustParse(t, "C..\n...\n...")
	d := dict.New(listOf("CAT", "COT", "ATE", "TEN", "CAA", "TAT", "OTT", "AAT", "TET", "ANT", "CTA"))

	res := Autofill(context.Background(), d, g, Options{})
	if len(res.Grids) == 0 {
		t.Fatalf("no fills found, status %v", res.Status)
	}
	checkFill(t, d, g, res.Grids)
	for _, filled := range res.Grids {
		if filled.Cell(0, 0) != Letter('C') {
			t.Errorf("fill lost the placed C:\n%s", filled.Repr())
		}
	}
}

func TestAutofill_NoCandidates(t *testing.T) {
	// A placed letter no dictionary word can extend: report no fill
	// before searching.
	g := mustParse(t, "Q.")
	d := dict.New(listOf("AB", "BA"))

	res := Autofill(context.Background(), d, g, Options{})
	if res.Status != StatusNoFill {
		t.Fatalf("status = %v, want %v", res.Status, StatusNoFill)
	}
	if len(res.Grids) != 0 {
		t.Errorf("grids = %d, want none", len(res.Grids))
	}
	want := []EntryID{{Across, 0, 0}}
	if diff := cmp.Diff(want, res.NoCandidates); diff != "" {
		t.Errorf("NoCandidates (-want +got):\n%s", diff)
	}
}

func TestAutofill_ExhaustedNoFill(t *testing.T) {
	// Both rows have candidates but no column can be completed: the
	// arc-consistency pass at entry empties the candidate lists and the
	// run reports no fill, not an error.
	g := mustGrid(t, 2, 2)
	d := dict.New(listOf("AB", "CD"))

	res := Autofill(context.Background(), d, g, Options{})
	if res.Status != StatusNoFill {
		t.Fatalf("status = %v, want %v", res.Status, StatusNoFill)
	}
	if len(res.Grids) != 0 {
		t.Errorf("grids = %d, want none", len(res.Grids))
	}
}

func TestAutofill_CompleteGridIsItsOwnFill(t *testing.T) {
	g := mustParse(t, "AB\nBA")
	d := dict.New(listOf("AB", "BA"))

	res := Autofill(context.Background(), d, g, Options{})
	if res.Status != StatusFilled || len(res.Grids) != 1 {
		t.Fatalf("status = %v with %d grids, want filled with 1", res.Status, len(res.Grids))
	}
	if !res.Grids[0].Equal(g) {
		t.Errorf("fill differs from the complete input")
	}
}

// abDict is every length-3 word over {A, B}: any 3x3 row choice yields
// valid columns, giving a large, cheap search space.
func abDict() *dict.Dictionary {
	var words []string
	for i := 0; i < 8; i++ {
		words = append(words, string([]byte{
			'A' + byte(i>>2&1),
			'A' + byte(i>>1&1),
			'A' + byte(i&1),
		}))
	}
	return dict.New(listOf(words...))
}

func TestAutofill_MaxVariations(t *testing.T) {
	g := mustGrid(t, 3, 3)
	res := Autofill(context.Background(), abDict(), g, Options{MaxVariations: 7})
	if res.Status != StatusMaxVariations {
		t.Fatalf("status = %v, want %v", res.Status, StatusMaxVariations)
	}
	if !res.Status.Truncated() {
		t.Error("StatusMaxVariations should report truncated")
	}
	if len(res.Grids) != 7 {
		t.Errorf("grids = %d, want 7", len(res.Grids))
	}
}

func TestAutofill_DefaultCap(t *testing.T) {
	g := mustGrid(t, 3, 3)
	res := Autofill(context.Background(), abDict(), g, Options{})
	if len(res.Grids) != DefaultMaxVariations {
		t.Errorf("grids = %d, want the default cap %d", len(res.Grids), DefaultMaxVariations)
	}
}

func TestAutofill_NodeBudget(t *testing.T) {
	g := mustGrid(t, 3, 3)
	res := Autofill(context.Background(), abDict(), g, Options{NodeBudget: 60})
	if res.Status != StatusNodeBudget {
		t.Fatalf("status = %v, want %v", res.Status, StatusNodeBudget)
	}
	// The budget trips at the first check point past the limit.
	if res.Nodes < 60 || res.Nodes > 60+checkInterval {
		t.Errorf("nodes = %d, want within one check interval past 60", res.Nodes)
	}
}

func TestAutofill_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := mustGrid(t, 3, 3)
	res := Autofill(ctx, abDict(), g, Options{})
	if res.Status != StatusCancelled {
		t.Fatalf("status = %v, want %v", res.Status, StatusCancelled)
	}
}

func TestAutofill_Deadline(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	g := mustGrid(t, 3, 3)
	res := Autofill(ctx, abDict(), g, Options{})
	if res.Status != StatusDeadline {
		t.Fatalf("status = %v, want %v", res.Status, StatusDeadline)
	}
}

func TestAutofill_Deterministic(t *testing.T) {
	g := mustParse(t, "...\n.#.\n...")
	d := abDict()

	a := Autofill(context.Background(), d, g, Options{MaxVariations: 20})
	b := Autofill(context.Background(), d, g, Options{MaxVariations: 20})
	if diff := cmp.Diff(reprs(a.Grids), reprs(b.Grids)); diff != "" {
		t.Errorf("two identical runs differ (-first +second):\n%s", diff)
	}
	if a.Status != b.Status || a.Nodes != b.Nodes {
		t.Errorf("run metadata differs: %v/%d vs %v/%d", a.Status, a.Nodes, b.Status, b.Nodes)
	}
}

func TestAutofill_Progress(t *testing.T) {
	g := mustGrid(t, 3, 3)

	var calls int
	lastTotal := -1
	res := Autofill(context.Background(), abDict(), g, Options{
		MaxVariations: 50,
		Progress: func(assigned, total, solutions int) {
			calls++
			lastTotal = total
			if assigned < 0 || assigned > total {
				t.Errorf("assigned %d out of range [0, %d]", assigned, total)
			}
			if solutions > 50 {
				t.Errorf("solutions %d past the cap", solutions)
			}
		},
	})
	if calls == 0 {
		t.Fatal("progress sink never invoked")
	}
	if lastTotal != 6 {
		t.Errorf("total = %d, want 6 variables on an open 3x3", lastTotal)
	}
	if res.Status != StatusMaxVariations {
		t.Errorf("status = %v", res.Status)
	}
}

func BenchmarkAutofill(b *testing.B) {
	// Every word over {A, B} of lengths 3 and 5: dense search spaces at
	// both row lengths used below.
	var words []string
	for _, n := range []int{3, 5} {
		for i := 0; i < 1<<n; i++ {
			w := make([]byte, n)
			for j := range w {
				w[j] = 'A' + byte(i>>j&1)
			}
			words = append(words, string(w))
		}
	}
	d := dict.New(listOf(words...))
	b.ReportAllocs()

	for _, tc := range []struct {
		name string
		repr string
		max  int
	}{
		{name: "3x3 open", repr: "...\n...\n...", max: 20},
		{name: "3x3 blocked", repr: "...\n.#.\n...", max: 20},
		{name: "5x3 open", repr: ".....\n.....\n.....", max: 5},
	} {
		b.Run(tc.name, func(b *testing.B) {
			g, err := Parse(tc.repr)
			if err != nil {
				b.Fatal(err)
			}
			for b.Loop() {
				res := Autofill(b.Context(), d, g, Options{MaxVariations: tc.max})
				b.ReportMetric(float64(len(res.Grids)), "fills")
			}
		})
	}
}

func TestAutofill_DoesNotMutateInput(t *testing.T) {
	g := mustParse(t, "C..\n...\n...")
	before := g.Repr()
	Autofill(context.Background(), dict.New(listOf("CAT", "ATE", "TEN", "CAA", "TAT")), g, Options{})
	if g.Repr() != before {
		t.Errorf("input grid mutated:\n%s", g.Repr())
	}
}

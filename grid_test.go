package crossroads

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustGrid(t *testing.T, rows, cols int) *Grid {
	t.Helper()
	g, err := New(rows, cols)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", rows, cols, err)
	}
	return g
}

func mustParse(t *testing.T, s string) *Grid {
	t.Helper()
	g, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func TestNew_Geometry(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		wantErr    bool
	}{
		{"1x1", 1, 1, false},
		{"15x15", 15, 15, false},
		{"max", MaxDim, MaxDim, false},
		{"zero rows", 0, 5, true},
		{"zero cols", 5, 0, true},
		{"too wide", 5, MaxDim + 1, true},
		{"negative", -1, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows, tt.cols)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%d, %d) error = %v, wantErr %v", tt.rows, tt.cols, err, tt.wantErr)
			}
			if err != nil {
				var ge *GeometryError
				if !errors.As(err, &ge) {
					t.Errorf("error %T, want *GeometryError", err)
				}
			}
		})
	}
}

func TestSet_Symmetry(t *testing.T) {
	t.Run("rotational places mirror block", func(t *testing.T) {
		// Seed scenario: 4x4, block at (0, 1) under rotational symmetry.
		g := mustGrid(t, 4, 4)
		if err := g.Set(0, 1, Black(), SymRotational180); err != nil {
			t.Fatal(err)
		}
		if got := g.Cell(3, 2); got.Kind != BlackCell {
			t.Errorf("cell (3,2) = %v, want black", got)
		}
		if got := g.Cell(0, 2); got.Kind != EmptyCell {
			t.Errorf("cell (0,2) = %v, want empty", got)
		}
	})

	t.Run("unsetting a block unsets the mirror", func(t *testing.T) {
		g := mustGrid(t, 5, 5)
		g.Set(1, 0, Black(), SymRotational180)
		if g.Cell(3, 4).Kind != BlackCell {
			t.Fatal("mirror not placed")
		}
		g.Set(1, 0, Empty(), SymRotational180)
		if g.Cell(3, 4).Kind != EmptyCell {
			t.Errorf("cell (3,4) still black after reverse edit")
		}
	})

	t.Run("centre cell has no mirror write", func(t *testing.T) {
		g := mustGrid(t, 5, 5)
		if err := g.Set(2, 2, Black(), SymRotational180); err != nil {
			t.Fatal(err)
		}
		if g.CountBlack() != 1 {
			t.Errorf("black count = %d, want 1", g.CountBlack())
		}
	})

	t.Run("letters never propagate", func(t *testing.T) {
		g := mustGrid(t, 4, 4)
		g.Set(0, 0, Letter('Q'), SymRotational180)
		if g.Cell(3, 3) != Empty() {
			t.Errorf("cell (3,3) = %v, want empty", g.Cell(3, 3))
		}
	})

	t.Run("overwriting a letter with a block propagates", func(t *testing.T) {
		g := mustGrid(t, 4, 4)
		g.Set(0, 0, Letter('Q'), SymRotational180)
		g.Set(0, 0, Black(), SymRotational180)
		if g.Cell(3, 3).Kind != BlackCell {
			t.Errorf("cell (3,3) = %v, want black", g.Cell(3, 3))
		}
	})

	t.Run("mirror modes", func(t *testing.T) {
		tests := []struct {
			name string
			sym  Symmetry
			want Coord
		}{
			{"vertical", SymMirrorVertical, Coord{1, 3}},
			{"horizontal", SymMirrorHorizontal, Coord{2, 1}},
			{"rotational", SymRotational180, Coord{2, 3}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				g := mustGrid(t, 4, 5)
				g.Set(1, 1, Black(), tt.sym)
				if g.Cell(tt.want.Row, tt.want.Col).Kind != BlackCell {
					t.Errorf("mirror of (1,1) under %v: cell %v not black\n%s", tt.sym, tt.want, g.Repr())
				}
				if g.CountBlack() != 2 {
					t.Errorf("black count = %d, want 2", g.CountBlack())
				}
			})
		}
	})
}

func TestSet_Bounds(t *testing.T) {
	g := mustGrid(t, 3, 3)
	err := g.Set(3, 0, Black(), SymNone)
	var oob *OutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("error %T = %v, want *OutOfBoundsError", err, err)
	}
}

func TestResize(t *testing.T) {
	g := mustParse(t, "AB#\nCDE\n###")

	if err := g.Resize(2, 2); err != nil {
		t.Fatal(err)
	}
	if got, want := g.Repr(), "AB\nCD"; got != want {
		t.Errorf("after shrink:\n%s\nwant:\n%s", got, want)
	}

	if err := g.Resize(3, 4); err != nil {
		t.Fatal(err)
	}
	if got, want := g.Repr(), "AB..\nCD..\n...."; got != want {
		t.Errorf("after grow:\n%s\nwant:\n%s", got, want)
	}
}

func TestClearLetters(t *testing.T) {
	g := mustParse(t, "AB#\n.X.")
	g.ClearLetters()
	if got, want := g.Repr(), "..#\n..."; got != want {
		t.Errorf("ClearLetters:\n%s\nwant:\n%s", got, want)
	}
}

func TestReprParse_RoundTrip(t *testing.T) {
	reprs := []string{
		"A",
		"#",
		".",
		"AB#\nC.E",
		"....#\n.....\n##...",
	}
	for _, repr := range reprs {
		g := mustParse(t, repr)
		if diff := cmp.Diff(repr, g.Repr()); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"ragged rows", "AB\nABC"},
		{"bad cell", "A?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.in); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.in)
			}
		})
	}
}

func TestClone_Independent(t *testing.T) {
	g := mustParse(t, "AB\n#.")
	c := g.Clone()
	c.Set(0, 0, Black(), SymNone)
	if g.Cell(0, 0).Kind == BlackCell {
		t.Error("mutating clone changed original")
	}
	if !g.Equal(mustParse(t, "AB\n#.")) {
		t.Error("original changed")
	}
}

func TestConnectedPlayable(t *testing.T) {
	tests := []struct {
		name string
		repr string
		want bool
	}{
		{"open grid", ".....\n.....", true},
		{"one block", "..#..\n.....", true},
		{"split column", ".#.\n.#.\n.#.", false},
		{"diagonal wall", "..#\n.#.\n#..", false},
		{"all black", "##\n##", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustParse(t, tt.repr)
			if got := g.ConnectedPlayable(); got != tt.want {
				t.Errorf("ConnectedPlayable() = %v, want %v", got, tt.want)
			}
		})
	}
}

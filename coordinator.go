package crossroads

import (
	"github.com/hugolynch/crossroads/pkg/dict"
)

// Suggest returns the dictionary words that could fill the entry behind
// pattern, filtered by rating and ordered as requested. A degenerate
// single-variable autofill.
func Suggest(d *dict.Dictionary, p dict.Pattern, filter dict.RatingRange, order dict.Sort) []dict.Word {
	return d.Candidates(p, filter, order)
}

// FillEntry writes word into the entry id on a copy of g, leaving g
// untouched. The word must have the entry's length and agree with letters
// already placed.
func FillEntry(g *Grid, ix *WordIndex, id EntryID, word string) (*Grid, error) {
	e, ok := ix.Entry(id)
	if !ok {
		return nil, &NoEntryError{ID: id}
	}
	if len(word) != e.Length {
		return nil, &WordLengthError{ID: id, Word: word}
	}
	if !PatternOf(g, e).Match(word) {
		return nil, &LetterConflictError{ID: id, Word: word}
	}

	out := g.Clone()
	for i, cell := range e.Cells() {
		if err := out.Set(cell.Row, cell.Col, Letter(word[i]), SymNone); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Package dict holds the read-only rated word corpus and the pattern
// matcher the suggestion list and the autofill search draw candidates
// from. Words are grouped by length up front so no query ever touches a
// word of the wrong length.
package dict

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Word is one dictionary entry: an uppercase A-Z string with an optional
// quality rating (higher is better). Rated distinguishes a zero rating
// from an absent one.
type Word struct {
	Text   string
	Rating int
	Rated  bool
}

// List is the words of a single source, in source order.
type List []Word

// Parse reads a word-list source: one word per line, either WORD or
// WORD;RATING. Lines starting with '#' and blank lines are skipped. Words
// are uppercased; an unparseable or negative rating is treated as absent.
// Words containing characters outside A-Z are dropped.
func Parse(r io.Reader) (List, error) {
	var list List
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		text, ratingField, hasRating := strings.Cut(line, ";")
		w := Word{Text: strings.ToUpper(strings.TrimSpace(text))}
		if !Valid(w.Text) {
			continue
		}
		if hasRating {
			if n, err := strconv.Atoi(strings.TrimSpace(ratingField)); err == nil && n >= 0 {
				w.Rating = n
				w.Rated = true
			}
		}
		list = append(list, w)
	}
	return list, scanner.Err()
}

// Valid reports whether s is a non-empty uppercase A-Z string, the only
// form the dictionary stores.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// Dictionary is the deduplicated, length-indexed view over one or more
// source lists. It is immutable after construction and safe to share
// across any number of concurrent searches.
type Dictionary struct {
	byLen map[int]*lengthIndex
	size  int
}

// New merges the given lists into a dictionary. A word appearing in
// several sources is kept once with the maximum rating observed; the
// merged rating is absent only when every occurrence was absent.
func New(lists ...List) *Dictionary {
	best := make(map[string]Word)
	for _, list := range lists {
		for _, w := range list {
			prev, ok := best[w.Text]
			if !ok {
				best[w.Text] = w
				continue
			}
			if w.Rated && (!prev.Rated || w.Rating > prev.Rating) {
				best[w.Text] = w
			}
		}
	}

	grouped := make(map[int][]Word)
	for _, w := range best {
		grouped[len(w.Text)] = append(grouped[len(w.Text)], w)
	}

	d := &Dictionary{byLen: make(map[int]*lengthIndex, len(grouped))}
	for n, words := range grouped {
		sort.Slice(words, func(i, j int) bool { return words[i].Text < words[j].Text })
		d.byLen[n] = newLengthIndex(words)
		d.size += len(words)
	}
	return d
}

// Len returns the total number of distinct words.
func (d *Dictionary) Len() int { return d.size }

// WordsOfLen returns the words of a given length in alphabetical order.
// The returned slice is shared; callers must not mutate it.
func (d *Dictionary) WordsOfLen(n int) []Word {
	ix := d.byLen[n]
	if ix == nil {
		return nil
	}
	return ix.words
}

// Contains reports whether text is a word of the dictionary.
func (d *Dictionary) Contains(text string) bool {
	ix := d.byLen[len(text)]
	if ix == nil {
		return false
	}
	i := sort.Search(len(ix.words), func(i int) bool { return ix.words[i].Text >= text })
	return i < len(ix.words) && ix.words[i].Text == text
}

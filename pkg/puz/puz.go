// Package puz encodes and decodes the Across Lite .puz binary format: a
// little-endian 52-byte header, solution and player-state grids, and a
// run of NUL-terminated ISO-8859-1 strings, tied together by a four-layer
// checksum scheme. Encoding is bit-exact for round-trips; decoding
// accepts legacy files with stale checksums and rejects only structural
// damage.
package puz

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/hugolynch/crossroads"
)

const (
	// Magic occupies bytes 0x02..0x0E of every .puz file.
	Magic = "ACROSS&DOWN\x00"

	version    = "1.3\x00"
	headerSize = 0x34

	solBlack = '.'
	solEmpty = '-'
)

// Header field offsets.
const (
	offFileCksum   = 0x00
	offMagic       = 0x02
	offCIBCksum    = 0x0E
	offMaskedLow   = 0x10
	offMaskedHigh  = 0x14
	offVersion     = 0x18
	offScrambleSum = 0x1E
	offWidth       = 0x2C
	offHeight      = 0x2D
	offNumClues    = 0x2E
	offBitmask     = 0x30
	offScrambleTag = 0x32
)

// String byte caps applied on encode.
const (
	TitleCap     = 50
	AuthorCap    = 50
	CopyrightCap = 200
	NotesCap     = 2000
)

// maskKey is XOR-ed bytewise into the low and high halves of the four
// section checksums at 0x10..0x18.
const maskKey = "ICHEATED"

// Puzzle is the decoded form of a .puz file. Clues are keyed by entry
// identifier in the solution grid's word index.
type Puzzle struct {
	Solution *crossroads.Grid
	// Player holds the solver's progress; nil means all playable cells
	// empty (Encode derives it from Solution's block pattern).
	Player *crossroads.Grid

	Clues map[crossroads.EntryID]string

	Title     string
	Author    string
	Copyright string
	Notes     string
}

// EncodeOptions tune Encode. The zero value truncates over-cap strings.
type EncodeOptions struct {
	// Strict makes over-cap strings a CapError instead of truncating.
	Strict bool
}

// Encode serializes p with valid checksums. The clue sequence follows the
// solution grid's numbering, across before down at shared numbers, with
// empty strings standing in for missing clue text.
func Encode(p *Puzzle, opts EncodeOptions) ([]byte, error) {
	g := p.Solution
	if g == nil {
		return nil, &GeometryError{}
	}
	w, h := g.Cols(), g.Rows()

	solBytes := gridBytes(g)
	player := p.Player
	if player == nil {
		player = g.Clone()
		player.ClearLetters()
	}
	if player.Rows() != h || player.Cols() != w {
		return nil, &GeometryError{Width: player.Cols(), Height: player.Rows()}
	}
	playerBytes := gridBytes(player)

	title, err := encodeString("title", p.Title, TitleCap, opts.Strict)
	if err != nil {
		return nil, err
	}
	author, err := encodeString("author", p.Author, AuthorCap, opts.Strict)
	if err != nil {
		return nil, err
	}
	copyright, err := encodeString("copyright", p.Copyright, CopyrightCap, opts.Strict)
	if err != nil {
		return nil, err
	}
	notes, err := encodeString("notes", p.Notes, NotesCap, opts.Strict)
	if err != nil {
		return nil, err
	}

	ix := crossroads.Index(g)
	clues := make([][]byte, len(ix.Entries))
	for i, e := range ix.Entries {
		clues[i], err = encodeString(fmt.Sprintf("clue %d %s", e.Num, e.ID.Dir), p.Clues[e.ID], 0, opts.Strict)
		if err != nil {
			return nil, err
		}
	}

	buf := make([]byte, headerSize)
	copy(buf[offMagic:], Magic)
	copy(buf[offVersion:], version)
	buf[offWidth] = byte(w)
	buf[offHeight] = byte(h)
	binary.LittleEndian.PutUint16(buf[offNumClues:], uint16(len(clues)))
	// Bitmask and scramble tag stay zero: we only write unscrambled files.

	buf = append(buf, solBytes...)
	buf = append(buf, playerBytes...)
	for _, s := range [][]byte{title, author, copyright} {
		buf = append(buf, s...)
		buf = append(buf, 0)
	}
	for _, clue := range clues {
		buf = append(buf, clue...)
		buf = append(buf, 0)
	}
	buf = append(buf, notes...)
	buf = append(buf, 0)

	// Checksum layers: CIB over the five geometry fields, one sum per
	// section, the masked block, and the overall file sum seeded with CIB.
	cCIB := Cksum(buf[offWidth:headerSize], 0)
	cSol := Cksum(solBytes, 0)
	cGrid := Cksum(playerBytes, 0)
	cPart := cksumStrings(0, title, author, copyright, clues, notes)

	binary.LittleEndian.PutUint16(buf[offCIBCksum:], cCIB)

	sums := [4]uint16{cCIB, cSol, cGrid, cPart}
	for i, s := range sums {
		buf[offMaskedLow+i] = maskKey[i] ^ byte(s)
		buf[offMaskedHigh+i] = maskKey[4+i] ^ byte(s>>8)
	}

	overall := Cksum(solBytes, cCIB)
	overall = Cksum(playerBytes, overall)
	overall = cksumStrings(overall, title, author, copyright, clues, notes)
	binary.LittleEndian.PutUint16(buf[offFileCksum:], overall)

	return buf, nil
}

// Decode parses a .puz byte stream. Checksums are not verified: files
// edited by other tools routinely carry stale sums, and rejecting them
// would lose real puzzles. Structural damage is still an error.
func Decode(data []byte) (*Puzzle, error) {
	if len(data) < headerSize {
		return nil, &TruncatedError{Offset: len(data), Field: "header"}
	}
	if !bytes.Equal(data[offMagic:offMagic+len(Magic)], []byte(Magic)) {
		return nil, &MagicError{Got: bytes.Clone(data[offMagic : offMagic+len(Magic)])}
	}

	w, h := int(data[offWidth]), int(data[offHeight])
	if w == 0 || h == 0 || w > crossroads.MaxDim || h > crossroads.MaxDim {
		return nil, &GeometryError{Width: w, Height: h}
	}
	numClues := int(binary.LittleEndian.Uint16(data[offNumClues:]))

	if len(data) < headerSize+2*w*h {
		return nil, &TruncatedError{Offset: len(data), Field: "grids"}
	}

	ofs := headerSize
	solution, err := parseGrid(data[ofs:ofs+w*h], h, w)
	if err != nil {
		return nil, err
	}
	ofs += w * h
	player, err := parseGrid(data[ofs:ofs+w*h], h, w)
	if err != nil {
		return nil, err
	}
	ofs += w * h

	p := &Puzzle{
		Solution: solution,
		Player:   player,
		Clues:    make(map[crossroads.EntryID]string),
	}

	var raw []byte
	if raw, ofs, err = parseString(data, ofs, "title"); err != nil {
		return nil, err
	} else if p.Title, err = decodeText(raw); err != nil {
		return nil, err
	}
	if raw, ofs, err = parseString(data, ofs, "author"); err != nil {
		return nil, err
	} else if p.Author, err = decodeText(raw); err != nil {
		return nil, err
	}
	if raw, ofs, err = parseString(data, ofs, "copyright"); err != nil {
		return nil, err
	} else if p.Copyright, err = decodeText(raw); err != nil {
		return nil, err
	}

	// Clues are stored in numbering order with across preceding down at a
	// shared number, which is exactly the order the word index enumerates
	// entries in; re-associate positionally.
	clues := make([]string, 0, numClues)
	for i := 0; i < numClues; i++ {
		if raw, ofs, err = parseString(data, ofs, fmt.Sprintf("clue %d", i+1)); err != nil {
			return nil, err
		}
		text, err := decodeText(raw)
		if err != nil {
			return nil, err
		}
		clues = append(clues, text)
	}

	ix := crossroads.Index(solution)
	for i, e := range ix.Entries {
		if i < len(clues) && clues[i] != "" {
			p.Clues[e.ID] = clues[i]
		}
	}

	if raw, _, err = parseString(data, ofs, "notes"); err != nil {
		return nil, err
	} else if p.Notes, err = decodeText(raw); err != nil {
		return nil, err
	}

	// Trailing sections (GEXT, LTIM, ...) are tolerated and ignored.
	return p, nil
}

// gridBytes serializes a grid row-major: '.' block, '-' empty playable,
// the letter otherwise.
func gridBytes(g *crossroads.Grid) []byte {
	out := make([]byte, 0, g.Rows()*g.Cols())
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			switch cell := g.Cell(r, c); cell.Kind {
			case crossroads.BlackCell:
				out = append(out, solBlack)
			case crossroads.EmptyCell:
				out = append(out, solEmpty)
			default:
				out = append(out, cell.Ch)
			}
		}
	}
	return out
}

func parseGrid(data []byte, rows, cols int) (*crossroads.Grid, error) {
	g, err := crossroads.New(rows, cols)
	if err != nil {
		return nil, err
	}
	for i, b := range data {
		r, c := i/cols, i%cols
		var cell crossroads.Cell
		switch {
		case b == solBlack:
			cell = crossroads.Black()
		case b == solEmpty:
			cell = crossroads.Empty()
		case b >= 'A' && b <= 'Z':
			cell = crossroads.Letter(b)
		case b >= 'a' && b <= 'z':
			cell = crossroads.Letter(b - 'a' + 'A')
		default:
			return nil, fmt.Errorf("grid cell (%d, %d): unexpected byte %#x", r, c, b)
		}
		if err := g.Set(r, c, cell, crossroads.SymNone); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// parseString extracts the NUL-terminated raw bytes starting at ofs. A
// missing terminator before the end of the buffer is a TruncatedError.
func parseString(data []byte, ofs int, field string) ([]byte, int, error) {
	if ofs > len(data) {
		return nil, ofs, &TruncatedError{Offset: ofs, Field: field}
	}
	i := bytes.IndexByte(data[ofs:], 0)
	if i < 0 {
		return nil, ofs, &TruncatedError{Offset: ofs, Field: field}
	}
	return data[ofs : ofs+i], ofs + i + 1, nil
}

// encodeString converts a UTF-8 field to ISO-8859-1 bytes, applying the
// format cap (0 = uncapped). Unmappable runes become substitutions rather
// than errors; the format predates Unicode.
func encodeString(field, s string, limit int, strict bool) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	raw, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", field, err)
	}
	if limit > 0 && len(raw) > limit {
		if strict {
			return nil, &CapError{Field: field, Len: len(raw), Cap: limit}
		}
		raw = raw[:limit]
	}
	return raw, nil
}

func decodeText(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode string: %w", err)
	}
	return string(out), nil
}

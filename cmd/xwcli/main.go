// Command xwcli drives the crossroads core from the terminal: candidate
// suggestions for one entry, whole-grid autofill, and conversion between
// the text grid form and Across Lite .puz files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/vyevs/ansi"

	"github.com/hugolynch/crossroads"
	"github.com/hugolynch/crossroads/internal/wordsrc"
	"github.com/hugolynch/crossroads/pkg/dict"
	"github.com/hugolynch/crossroads/pkg/puz"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "suggest":
		err = runSuggest(os.Args[2:])
	case "autofill":
		err = runAutofill(os.Args[2:])
	case "convert":
		err = runConvert(os.Args[2:])
	case "show":
		err = runShow(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: xwcli <command> [flags]

commands:
  suggest   list dictionary candidates for one entry
  autofill  fill every empty entry with mutually consistent words
  convert   convert between text grids and .puz files
  show      print a grid or .puz file with its numbered entries`)
}

// dictFlags collects repeatable -dict flags and the BigQuery corpus
// flags shared by suggest and autofill.
type dictFlags struct {
	paths   []string
	project string
	table   string
	scope   string
}

func (d *dictFlags) register(fs *flag.FlagSet) {
	fs.Func("dict", "word list file (repeatable)", func(s string) error {
		d.paths = append(d.paths, s)
		return nil
	})
	fs.StringVar(&d.project, "bq-project", os.Getenv("XWCLI_BQ_PROJECT"), "BigQuery project of the word corpus")
	fs.StringVar(&d.table, "bq-table", "", "BigQuery table `project.dataset.table` to load words from")
	fs.StringVar(&d.scope, "bq-scope", "default", "corpus scope to load")
}

func (d *dictFlags) load(ctx context.Context) (*dict.Dictionary, error) {
	lists, err := wordsrc.Files(d.paths...)
	if err != nil {
		return nil, err
	}
	if d.table != "" {
		list, err := wordsrc.BigQuery(ctx, wordsrc.BigQueryParams{
			Project: d.project,
			Table:   d.table,
			Scope:   d.scope,
		})
		if err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		lists = append(lists, list)
	}
	if len(lists) == 0 {
		return nil, fmt.Errorf("no word sources: pass -dict or -bq-table")
	}
	return dict.New(lists...), nil
}

func runSuggest(args []string) error {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	var dicts dictFlags
	dicts.register(fs)
	gridFile := fs.String("grid", "", "grid file (text or .puz)")
	entryArg := fs.String("entry", "", "entry selector, e.g. 12A or 3D")
	minRating := fs.Int("min", -1, "minimum rating (unranked words excluded when set)")
	maxRating := fs.Int("max", -1, "maximum rating (unranked words excluded when set)")
	sortArg := fs.String("sort", "rating", "result order: rating or alpha")
	limit := fs.Int("n", 25, "number of candidates to print (0 = all)")
	fs.Parse(args)

	g, _, err := loadGrid(*gridFile)
	if err != nil {
		return err
	}
	ix := crossroads.Index(g)
	e, err := findEntry(ix, *entryArg)
	if err != nil {
		return err
	}

	d, err := dicts.load(context.Background())
	if err != nil {
		return err
	}

	var filter dict.RatingRange
	if *minRating >= 0 {
		filter.Min = minRating
	}
	if *maxRating >= 0 {
		filter.Max = maxRating
	}
	order := dict.RatingDesc
	if *sortArg == "alpha" {
		order = dict.Alphabetical
	}

	pattern := crossroads.PatternOf(g, e)
	words := crossroads.Suggest(d, pattern, filter, order)
	fmt.Printf("%d candidates for %d %s (%s):\n", len(words), e.Num, e.ID.Dir, pattern)
	for i, w := range words {
		if *limit > 0 && i >= *limit {
			fmt.Printf("  ... %d more\n", len(words)-i)
			break
		}
		if w.Rated {
			fmt.Printf("  %s (%d)\n", w.Text, w.Rating)
		} else {
			fmt.Printf("  %s\n", w.Text)
		}
	}
	return nil
}

func runAutofill(args []string) error {
	fs := flag.NewFlagSet("autofill", flag.ExitOnError)
	var dicts dictFlags
	dicts.register(fs)
	gridFile := fs.String("grid", "", "grid file (text or .puz)")
	maxVariations := fs.Int("max", 5, "number of fills to enumerate")
	nodeBudget := fs.Int("nodes", 0, "recursion step budget (0 = unlimited)")
	timeout := fs.Duration("timeout", time.Minute, "search deadline")
	quiet := fs.Bool("q", false, "suppress progress output")
	profile := fs.String("profile-file", "", "write a CPU profile to this file")
	fs.Parse(args)

	g, _, err := loadGrid(*gridFile)
	if err != nil {
		return err
	}
	if !g.ConnectedPlayable() {
		fmt.Fprintln(os.Stderr, "Warning: playable cells are not connected; entries in separate regions fill independently")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	d, err := dicts.load(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Dictionary: %d words\n", d.Len())

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			return fmt.Errorf("create profile file: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	opts := crossroads.Options{MaxVariations: *maxVariations, NodeBudget: *nodeBudget}
	if !*quiet {
		opts.Progress = func(assigned, total, solutions int) {
			fmt.Fprintf(os.Stderr, "\r%d/%d entries, %d fills", assigned, total, solutions)
		}
	}

	start := time.Now()
	res := crossroads.Autofill(ctx, d, g, opts)
	if !*quiet {
		fmt.Fprintln(os.Stderr)
	}

	fmt.Fprintf(os.Stderr, "Status: %s (%d nodes, %v)\n", res.Status, res.Nodes, time.Since(start).Round(time.Millisecond))
	for _, id := range res.NoCandidates {
		fmt.Fprintf(os.Stderr, "  no candidates for %v\n", id)
	}

	for i, filled := range res.Grids {
		fmt.Printf("Fill #%d:\n%s\n\n", i+1, renderFill(g, filled))
	}
	if len(res.Grids) == 0 {
		fmt.Println("No fill found.")
	}
	return nil
}

// renderFill prints the filled grid with autofilled letters highlighted,
// pre-existing letters plain.
func renderFill(before, after *crossroads.Grid) string {
	var b strings.Builder
	for r := 0; r < after.Rows(); r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < after.Cols(); c++ {
			cell := after.Cell(r, c)
			switch cell.Kind {
			case crossroads.BlackCell:
				b.WriteByte('#')
			case crossroads.EmptyCell:
				b.WriteByte('.')
			default:
				if before.Cell(r, c).Kind == crossroads.EmptyCell {
					b.WriteString(ansi.FGColorName("green"))
					b.WriteByte(cell.Ch)
					b.WriteString(ansi.Clear)
				} else {
					b.WriteByte(cell.Ch)
				}
			}
		}
	}
	return b.String()
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	in := fs.String("in", "", "input file (text or .puz)")
	out := fs.String("out", "", "output file (.puz or text)")
	title := fs.String("title", "", "puzzle title")
	author := fs.String("author", "", "puzzle author")
	copyright := fs.String("copyright", "", "copyright line")
	notes := fs.String("notes", "", "notes field")
	strict := fs.Bool("strict", false, "error on over-cap strings instead of truncating")
	fs.Parse(args)

	g, p, err := loadGrid(*in)
	if err != nil {
		return err
	}

	if strings.HasSuffix(*out, ".puz") {
		if p == nil {
			p = &puz.Puzzle{
				Solution: g,
				Clues:    map[crossroads.EntryID]string{},
			}
		}
		if *title != "" {
			p.Title = *title
		}
		if *author != "" {
			p.Author = *author
		}
		if *copyright != "" {
			p.Copyright = *copyright
		}
		if *notes != "" {
			p.Notes = *notes
		}
		data, err := puz.Encode(p, puz.EncodeOptions{Strict: *strict})
		if err != nil {
			return err
		}
		return os.WriteFile(*out, data, 0o644)
	}
	return os.WriteFile(*out, []byte(g.Repr()+"\n"), 0o644)
}

func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	in := fs.String("in", "", "input file (text or .puz)")
	fs.Parse(args)

	g, p, err := loadGrid(*in)
	if err != nil {
		return err
	}
	if p != nil && p.Title != "" {
		fmt.Printf("%s — %s\n\n", p.Title, p.Author)
	}
	fmt.Println(g.Repr())
	fmt.Println()

	ix := crossroads.Index(g)
	for _, dir := range []crossroads.Direction{crossroads.Across, crossroads.Down} {
		fmt.Printf("%s:\n", strings.ToUpper(dir.String()))
		for _, e := range ix.Entries {
			if e.ID.Dir != dir {
				continue
			}
			line := fmt.Sprintf("  %2d. %s", e.Num, crossroads.PatternOf(g, e))
			if p != nil {
				if clue, ok := p.Clues[e.ID]; ok {
					line += "  " + clue
				}
			}
			fmt.Println(line)
		}
	}
	return nil
}

// loadGrid reads a text grid or a .puz file; for .puz the decoded puzzle
// is returned alongside its solution grid.
func loadGrid(path string) (*crossroads.Grid, *puz.Puzzle, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("no grid file: pass -grid/-in")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if strings.HasSuffix(path, ".puz") {
		p, err := puz.Decode(data)
		if err != nil {
			return nil, nil, err
		}
		return p.Solution, p, nil
	}
	g, err := crossroads.Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, nil, err
	}
	return g, nil, nil
}

// findEntry resolves a selector like 12A or 3D against the index.
func findEntry(ix *crossroads.WordIndex, sel string) (crossroads.Entry, error) {
	sel = strings.ToUpper(strings.TrimSpace(sel))
	if len(sel) < 2 {
		return crossroads.Entry{}, fmt.Errorf("entry selector %q: want e.g. 12A or 3D", sel)
	}
	var dir crossroads.Direction
	switch sel[len(sel)-1] {
	case 'A':
		dir = crossroads.Across
	case 'D':
		dir = crossroads.Down
	default:
		return crossroads.Entry{}, fmt.Errorf("entry selector %q: want e.g. 12A or 3D", sel)
	}
	num, err := strconv.Atoi(sel[:len(sel)-1])
	if err != nil {
		return crossroads.Entry{}, fmt.Errorf("entry selector %q: %w", sel, err)
	}

	for _, e := range ix.ByNumber(num) {
		if e.ID.Dir == dir {
			return e, nil
		}
	}
	return crossroads.Entry{}, fmt.Errorf("no entry %s in grid", sel)
}

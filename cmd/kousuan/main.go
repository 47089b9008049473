package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/neumathe/kousuan/catalog"
	"github.com/neumathe/kousuan/engine"
	"github.com/neumathe/kousuan/internal/worksheet"
)

const usage = `Usage: kousuan <command> [flags]

Commands:
  grades                                   list grades
  categories -grade G                      list categories of a grade
  generate   -grade G -category C -count N generate questions for one category
  allocate   -grade G -count N             show the weighted allocation
  smart      -grade G -count N             allocate and generate a shuffled mix
  sheet      -grade G -count N             print a worksheet as text

Common flags: -catalog PATH, -seed S, -salt S, -answers`

var errUsage = errors.New("usage")

// maxCount 单次命令允许的最大题量
const maxCount = 10000

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type options struct {
	catalogPath string
	grade       string
	category    string
	count       int
	seed        string
	salt        string
	answers     bool
	columns     int
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	cmd := args[0]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Fprintln(out, usage)
		return nil
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var o options
	fs.StringVar(&o.catalogPath, "catalog", "", "grade catalog YAML (default: built-in)")
	fs.StringVar(&o.grade, "grade", "grade_1", "grade key")
	fs.StringVar(&o.category, "category", "", "category id")
	fs.IntVar(&o.count, "count", 10, "number of questions")
	fs.StringVar(&o.seed, "seed", "", "seed for reproducible output")
	fs.StringVar(&o.salt, "salt", "", "salt combined with -seed")
	fs.BoolVar(&o.answers, "answers", false, "include answers in text output")
	fs.IntVar(&o.columns, "columns", worksheet.DefaultColumns, "worksheet columns")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if o.count > maxCount {
		return fmt.Errorf("%w: -count %d exceeds %d", engine.ErrInvalidCount, o.count, maxCount)
	}

	cat, err := catalog.LoadFile(o.catalogPath)
	if err != nil {
		return err
	}
	eng, err := engine.New(cat)
	if err != nil {
		return err
	}
	if o.seed != "" {
		eng = eng.WithSource(engine.SeededSource(o.seed, o.salt))
	}

	switch cmd {
	case "grades":
		return writeJSON(out, cat.Grades())
	case "categories":
		cats := cat.ListCategories(o.grade)
		if cats == nil {
			return fmt.Errorf("%w: %s", engine.ErrCategoryNotFound, o.grade)
		}
		return writeJSON(out, cats)
	case "generate":
		if o.category == "" {
			return fmt.Errorf("%w: -category is required", errUsage)
		}
		qs, err := eng.GenerateQuestions(o.grade, o.category, o.count)
		if err != nil {
			return err
		}
		return writeJSON(out, batch(o.count, nil, qs))
	case "allocate":
		alloc, err := eng.SmartAllocation(o.grade, o.count)
		if err != nil {
			return err
		}
		return writeJSON(out, alloc)
	case "smart":
		res, err := eng.SmartMix(o.grade, o.count)
		if err != nil {
			return err
		}
		return writeJSON(out, batch(o.count, res.Allocation, res.Questions))
	case "sheet":
		return printSheet(out, eng, cat, o)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

type batchOutput struct {
	Requested  int                      `json:"requested"`
	Count      int                      `json:"count"`
	Shortfall  int                      `json:"shortfall"`
	Allocation []engine.AllocationEntry `json:"allocation,omitempty"`
	Questions  []engine.Question        `json:"questions"`
}

func batch(requested int, alloc []engine.AllocationEntry, qs []engine.Question) batchOutput {
	return batchOutput{
		Requested:  requested,
		Count:      len(qs),
		Shortfall:  requested - len(qs),
		Allocation: alloc,
		Questions:  qs,
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// printSheet 组一份智能配比的练习卷并按列打印，不落存储
func printSheet(out io.Writer, eng *engine.Engine, cat *catalog.Catalog, o options) error {
	g, ok := cat.Grade(o.grade)
	if !ok {
		return fmt.Errorf("%w: %s", engine.ErrCategoryNotFound, o.grade)
	}
	res, err := eng.SmartMix(o.grade, o.count)
	if err != nil {
		return err
	}
	ws := &worksheet.Worksheet{
		Title:     worksheet.DefaultTitle,
		GradeKey:  g.Key,
		GradeName: g.Name,
		Columns:   o.columns,
		CreatedAt: time.Now(),
		Requested: res.Requested,
		Shortfall: res.Shortfall(),
		Questions: res.Questions,
	}
	fmt.Fprintln(out, strings.Join(worksheet.Lines(ws, o.answers), "\n"))
	if ws.Shortfall > 0 {
		fmt.Fprintf(out, "\n(short by %d questions)\n", ws.Shortfall)
	}
	return nil
}

// Package importer loads historical spreadsheets into the record store. It
// is a one-shot operator tool: rows are parsed with the same deterministic
// pt-BR conventions the assistant uses, deduplicated against existing rows by
// (name, date), and inserted in chunks. The default run is a dry run that
// mutates nothing.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mv4digital/chuvinha/internal/domain"
	"github.com/mv4digital/chuvinha/internal/parse"
	"github.com/mv4digital/chuvinha/internal/store"
)

// Kind selects the target table.
type Kind string

const (
	KindExpenses Kind = "despesas"
	KindRevenue  Kind = "receitas"
)

// Valid reports whether k is a known import kind.
func (k Kind) Valid() bool {
	return k == KindExpenses || k == KindRevenue
}

// chunkSize is how many rows go into one insert request.
const chunkSize = 250

// Options configures one import run.
type Options struct {
	Kind   Kind
	UserID string
	// Service tags revenue rows; ignored for expenses.
	Service domain.ServiceKey
	// ExpenseKind tags expense rows; ignored for revenue.
	ExpenseKind domain.ExpenseKind
	// Commit inserts the parsed rows. When false the run only reports what
	// it would do.
	Commit bool
}

// Row is one parsed spreadsheet line.
type Row struct {
	Name   string
	Amount decimal.Decimal
	Date   string
	Paid   bool
}

// Skip records why one input line was left out.
type Skip struct {
	Line   int
	Reason string
}

// Summary is the outcome of a run.
type Summary struct {
	Parsed     int
	Duplicates int
	Inserted   int
	Skipped    []Skip
}

// Importer runs imports against one privileged store.
type Importer struct {
	store store.ImportStore
	log   zerolog.Logger
}

// New creates an importer.
func New(s store.ImportStore, log zerolog.Logger) *Importer {
	return &Importer{store: s, log: log}
}

var (
	cellSplitRe = regexp.MustCompile(`\t|\s{2,}|;`)

	headerWords = map[string]struct{}{
		"nome": {}, "name": {}, "descricao": {}, "titulo": {}, "title": {},
		"despesa": {}, "servico": {}, "cliente": {},
	}
)

// ReadRows loads the input file into cell rows. Files ending in .xlsx are
// read with excelize (sheet selects a worksheet, empty means the first one);
// anything else is treated as text with tab, semicolon or multi-space
// separated columns.
func ReadRows(path, sheet string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open spreadsheet: %w", err)
		}
		defer f.Close()

		if sheet == "" {
			sheet = f.GetSheetName(0)
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		return rows, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var rows [][]string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, cellSplitRe.Split(line, -1))
	}
	return rows, nil
}

// ParseRows turns cell rows into records. Each row needs a name cell, a
// money cell and a date cell, located by content rather than position; rows
// missing any of them are reported in the summary, never guessed at.
func ParseRows(rows [][]string, defaultYear int) ([]Row, []Skip) {
	ref := time.Date(defaultYear, time.January, 1, 0, 0, 0, 0, time.UTC)

	var out []Row
	var skipped []Skip
	for i, cells := range rows {
		line := i + 1

		if i == 0 && isHeader(cells) {
			continue
		}

		row, reason := parseRow(cells, ref)
		if reason != "" {
			skipped = append(skipped, Skip{Line: line, Reason: reason})
			continue
		}
		out = append(out, row)
	}
	return out, skipped
}

func isHeader(cells []string) bool {
	for _, c := range cells {
		if _, ok := headerWords[parse.Normalize(strings.TrimSpace(c))]; ok {
			return true
		}
	}
	return false
}

func parseRow(cells []string, ref time.Time) (Row, string) {
	var row Row
	var haveAmount, haveDate bool

	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}

		if !haveDate {
			if date, err := parse.Date(cell, ref); err == nil {
				row.Date = date
				haveDate = true
				continue
			}
		}
		if !haveAmount {
			if amount, err := parse.Money(cell); err == nil {
				row.Amount = amount
				haveAmount = true
				continue
			}
		}
		if row.Name == "" {
			row.Name = cell
		}
	}

	switch {
	case row.Name == "":
		return Row{}, "sem nome"
	case !haveAmount:
		return Row{}, "sem valor"
	case !haveDate:
		return Row{}, "sem data"
	}

	row.Paid = parse.Paid(strings.Join(cells, " "))
	return row, ""
}

// Run deduplicates the parsed rows against the store and, on commit, inserts
// the remainder in chunks. Dry runs never touch the store beyond the key
// read. Two concurrent runs can race past the key snapshot; the tool is
// meant to be run alone.
func (imp *Importer) Run(ctx context.Context, rows []Row, opts Options) (*Summary, error) {
	if !opts.Kind.Valid() {
		return nil, fmt.Errorf("importer: kind inválido: %q", opts.Kind)
	}
	if opts.UserID == "" {
		return nil, fmt.Errorf("importer: user id is required")
	}

	existing, err := imp.existingKeys(ctx, opts.Kind)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	var fresh []Row
	for _, r := range rows {
		key := r.Name + "|" + r.Date
		if _, dup := existing[key]; dup {
			summary.Duplicates++
			continue
		}
		// Also guards against duplicates inside the input itself.
		existing[key] = struct{}{}
		fresh = append(fresh, r)
	}
	summary.Parsed = len(fresh)

	if !opts.Commit {
		imp.log.Info().
			Int("parsed", summary.Parsed).
			Int("duplicates", summary.Duplicates).
			Msg("Dry run complete, nothing inserted")
		return summary, nil
	}

	for start := 0; start < len(fresh); start += chunkSize {
		end := start + chunkSize
		if end > len(fresh) {
			end = len(fresh)
		}
		chunk := fresh[start:end]

		if err := imp.insert(ctx, chunk, opts); err != nil {
			return summary, fmt.Errorf("chunk starting at row %d: %w", start+1, err)
		}
		summary.Inserted += len(chunk)
		imp.log.Info().
			Int("inserted", summary.Inserted).
			Int("total", len(fresh)).
			Msg("Chunk committed")
	}
	return summary, nil
}

func (imp *Importer) existingKeys(ctx context.Context, kind Kind) (map[string]struct{}, error) {
	if kind == KindExpenses {
		keys, err := imp.store.ExpenseKeys(ctx)
		if err != nil {
			return nil, fmt.Errorf("load expense keys: %w", err)
		}
		return keys, nil
	}
	keys, err := imp.store.ServiceEntryKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("load service entry keys: %w", err)
	}
	return keys, nil
}

func (imp *Importer) insert(ctx context.Context, chunk []Row, opts Options) error {
	if opts.Kind == KindExpenses {
		kind := opts.ExpenseKind
		if !kind.Valid() {
			kind = domain.ExpenseVariable
		}
		batch := make([]store.NewExpense, 0, len(chunk))
		for _, r := range chunk {
			batch = append(batch, store.NewExpense{
				UserID:      opts.UserID,
				Kind:        kind,
				Name:        r.Name,
				Amount:      r.Amount.Abs(),
				ExpenseDate: r.Date,
				Paid:        r.Paid,
				Metadata:    domain.EntryMetadata{Source: "import"},
			})
		}
		return imp.store.InsertExpenses(ctx, batch)
	}

	service := opts.Service
	if !service.Valid() {
		service = domain.ServiceVariados
	}
	batch := make([]store.NewServiceEntry, 0, len(chunk))
	for _, r := range chunk {
		meta := domain.EntryMetadata{
			EntryType: string(domain.EntryReceita),
			Paid:      r.Paid,
			Source:    "import",
		}
		status := ""
		if r.Paid {
			status = "pago"
			amount := r.Amount.Abs()
			meta.PaidAmount = &amount
		}
		batch = append(batch, store.NewServiceEntry{
			UserID:    opts.UserID,
			Service:   service,
			Title:     r.Name,
			Amount:    r.Amount.Abs(),
			EntryDate: r.Date,
			Status:    status,
			Metadata:  meta,
		})
	}
	return imp.store.InsertServiceEntries(ctx, batch)
}

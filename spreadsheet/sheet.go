package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// CellInterface is the consumer-facing read surface of a Cell.
type CellInterface interface {
	GetValue() any
	GetText() string
	GetReferencedCells() []Position
	IsReferenced() bool
}

// SheetInterface is the consumer-facing surface of a Sheet.
type SheetInterface interface {
	SetCell(pos Position, text string) error
	GetCell(pos Position) (CellInterface, error)
	ClearCell(pos Position) error
	GetPrintableSize() Size
	PrintValues(w io.Writer) error
	PrintTexts(w io.Writer) error
}

var _ SheetInterface = (*Sheet)(nil)

// Sheet is a sparse 2-D grid of cells. It is the single owner of every
// Cell it holds; cells reference each other only by pointer, and the
// Sheet guarantees a referenced cell (IsReferenced) is never released.
//
// Sheet is not safe for concurrent use: the engine is single-threaded by
// design.
type Sheet struct {
	rows map[int]map[int]*Cell

	maxRow int // highest row index with a non-empty cell, or -1
	maxCol int // highest col index with a non-empty cell, or -1

	logger *logrus.Logger
}

// Option configures a Sheet at construction time.
type Option func(*Sheet)

// WithLogger overrides the package default logger for a single Sheet. A nil
// l leaves the default logger in place.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Sheet) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSheet creates an empty Sheet.
func NewSheet(opts ...Option) *Sheet {
	s := &Sheet{
		rows:   make(map[int]map[int]*Cell),
		maxRow: -1,
		maxCol: -1,
		logger: defaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCell parses and installs text at pos, replacing whatever content was
// there. Returns ErrInvalidPosition, *FormulaException, or
// *CircularDependencyError on failure, leaving all state unchanged.
func (s *Sheet) SetCell(pos Position, text string) error {
	if !pos.IsValid() {
		return ErrInvalidPosition
	}
	existed := s.getCellRaw(pos) != nil
	cell := s.getOrCreateCell(pos)
	if err := cell.Set(text); err != nil {
		if !existed {
			s.releaseCell(pos)
		}
		return err
	}
	if cell.GetText() == "" {
		s.recomputeBounds()
	} else {
		s.trackTextBounds(pos, cell)
	}
	return nil
}

// GetCell returns the cell at pos, or (nil, nil) if the slot is
// unallocated.
func (s *Sheet) GetCell(pos Position) (CellInterface, error) {
	if !pos.IsValid() {
		return nil, ErrInvalidPosition
	}
	cell := s.getCellRaw(pos)
	if cell == nil {
		return nil, nil
	}
	return cell, nil
}

// ClearCell resets the cell at pos to Empty. A cell still referenced by
// another cell is kept alive as an empty cell (invariant 5); otherwise its
// slot is released entirely.
func (s *Sheet) ClearCell(pos Position) error {
	if !pos.IsValid() {
		return ErrInvalidPosition
	}
	cell := s.getCellRaw(pos)
	if cell == nil {
		return nil
	}
	if err := cell.Clear(); err != nil {
		return err
	}
	if !cell.IsReferenced() {
		s.releaseCell(pos)
	}
	s.recomputeBounds()
	return nil
}

// GetPrintableSize returns the minimum bounding box containing every cell
// with non-empty text, or (0,0) if there is none.
func (s *Sheet) GetPrintableSize() Size {
	if s.maxRow < 0 || s.maxCol < 0 {
		return Size{}
	}
	return Size{Rows: s.maxRow + 1, Cols: s.maxCol + 1}
}

// PrintValues writes the printable region as a tab-separated grid of
// values (one row per line, trailing newline per row).
func (s *Sheet) PrintValues(w io.Writer) error {
	return s.print(w, func(c *Cell) string { return formatValue(c.GetValue()) })
}

// PrintTexts writes the printable region as a tab-separated grid of texts
// (one row per line, trailing newline per row).
func (s *Sheet) PrintTexts(w io.Writer) error {
	return s.print(w, func(c *Cell) string { return c.GetText() })
}

func (s *Sheet) print(w io.Writer, render func(*Cell) string) error {
	size := s.GetPrintableSize()
	for row := 0; row < size.Rows; row++ {
		cols := make([]string, size.Cols)
		for col := 0; col < size.Cols; col++ {
			if cell := s.getCellRaw(Position{Row: row, Col: col}); cell != nil {
				cols[col] = render(cell)
			}
		}
		if _, err := fmt.Fprintln(w, strings.Join(cols, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return formatNumber(val)
	case FormulaError:
		return val.String()
	default:
		return ""
	}
}

// resolve is the Resolver passed to a formula's Evaluate call: it reads
// another cell's value through GetValue, except that a text cell is coerced
// from its raw text, so an escape-prefixed entry never counts as a number.
func (s *Sheet) resolve(pos Position) (float64, error) {
	if !pos.IsValid() {
		return 0, FormulaError{Kind: ErrRef}
	}
	cell := s.getCellRaw(pos)
	if cell == nil {
		return 0, nil
	}

	switch v := cell.GetValue().(type) {
	case float64:
		return v, nil
	case string:
		if v == "" {
			return 0, nil
		}
		// Parse the raw text rather than the displayed value, so an escaped
		// entry such as "'3.5" stays text and yields #VALUE!.
		n, ok := resolveCellText(cell.GetText())
		if !ok {
			return 0, FormulaError{Kind: ErrValue}
		}
		return n, nil
	case FormulaError:
		return 0, v
	default:
		return 0, nil
	}
}

func (s *Sheet) getCellRaw(pos Position) *Cell {
	cols, ok := s.rows[pos.Row]
	if !ok {
		return nil
	}
	return cols[pos.Col]
}

func (s *Sheet) getOrCreateCell(pos Position) *Cell {
	cols, ok := s.rows[pos.Row]
	if !ok {
		cols = make(map[int]*Cell)
		s.rows[pos.Row] = cols
	}
	cell, ok := cols[pos.Col]
	if !ok {
		cell = newCell(s, pos)
		cols[pos.Col] = cell
	}
	return cell
}

func (s *Sheet) releaseCell(pos Position) {
	cols, ok := s.rows[pos.Row]
	if !ok {
		return
	}
	delete(cols, pos.Col)
	if len(cols) == 0 {
		delete(s.rows, pos.Row)
	}
}

func (s *Sheet) trackTextBounds(pos Position, cell *Cell) {
	if cell.GetText() == "" {
		return
	}
	if pos.Row > s.maxRow {
		s.maxRow = pos.Row
	}
	if pos.Col > s.maxCol {
		s.maxCol = pos.Col
	}
}

// recomputeBounds rescans every allocated cell for the printable bounding
// box. Only needed when a cell's text becomes empty (ClearCell, or SetCell
// with ""), which can shrink the box; a SetCell that leaves non-empty text
// only ever grows it, so it updates the tracked bounds incrementally
// instead (trackTextBounds) to avoid an O(sheet size) rescan per write.
func (s *Sheet) recomputeBounds() {
	maxRow, maxCol := -1, -1
	for row, cols := range s.rows {
		for col, cell := range cols {
			if cell.GetText() == "" {
				continue
			}
			if row > maxRow {
				maxRow = row
			}
			if col > maxCol {
				maxCol = col
			}
		}
	}
	s.maxRow, s.maxCol = maxRow, maxCol
}

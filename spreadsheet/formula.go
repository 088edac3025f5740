package spreadsheet

import "sort"

// Formula is a parsed arithmetic expression that may reference other cells.
type Formula struct {
	root exprNode
	refs []Position // source order, duplicates kept, as parsed
}

// ParseFormula parses expression (without the leading '=') into a Formula.
// It returns a *FormulaException if expression is not a syntactically
// valid arithmetic expression, including a cell-ref-shaped token that does
// not decode to a valid Position.
func ParseFormula(expression string) (*Formula, error) {
	root, refs, err := parseFormulaExpr(expression)
	if err != nil {
		return nil, &FormulaException{Expression: expression, Err: err}
	}
	return &Formula{root: root, refs: refs}, nil
}

// Evaluate walks the AST, resolving cell references through resolve. It
// returns the numeric result, or the error that stopped evaluation: a
// FormulaError for an arithmetic failure, or whatever error resolve
// returned, unchanged.
func (f *Formula) Evaluate(resolve Resolver) (float64, error) {
	return f.root.eval(resolve)
}

// GetExpression renders the formula in canonical form: no whitespace,
// minimal parentheses. Reparsing this string and printing it again always
// yields the same string.
func (f *Formula) GetExpression() string {
	return printExpr(f.root)
}

// GetReferencedCells returns every cell position this formula refers to,
// filtered to valid positions, sorted ascending, with duplicates removed.
// Every token the parser accepts as a cell_ref already denotes a valid
// Position (an invalid one is a parse error), so the validity filter below
// is a defensive no-op kept for parity with the formal contract.
func (f *Formula) GetReferencedCells() []Position {
	valid := make([]Position, 0, len(f.refs))
	for _, p := range f.refs {
		if p.IsValid() {
			valid = append(valid, p)
		}
	}
	sort.Slice(valid, func(i, j int) bool { return valid[i].Less(valid[j]) })

	out := valid[:0:0]
	for i, p := range valid {
		if i == 0 || p != valid[i-1] {
			out = append(out, p)
		}
	}
	return out
}

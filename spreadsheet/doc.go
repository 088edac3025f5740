// Package spreadsheet implements an in-memory spreadsheet engine: a sparse
// grid of cells holding text or arithmetic formulas, with automatic
// dependency tracking, circular-reference rejection, and lazy
// re-evaluation via cache invalidation.
package spreadsheet

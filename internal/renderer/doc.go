// Package renderer provides the terminal display layer for the Folio editor.
//
// The renderer is responsible for:
//   - Drawing the document as a column of fixed-size pages
//   - Drawing the resize wrapper and its handles around the selected element
//   - Resolving pointer positions to pages, elements and handles
//   - Backend abstraction for terminal output
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│        View        │    StatusLine      │
//	├─────────────────────────────────────────┤
//	│  measure (layout shared with paging)    │
//	├─────────────────────────────────────────┤
//	│           Backend Abstraction           │
//	├─────────────────────────────────────────┤
//	│            Terminal (tcell)             │
//	└─────────────────────────────────────────┘
//
// The view lays pages out with the same measure.Cells the pagination engine
// measures them with, so what is drawn on a page is exactly what was judged
// to fit on it.
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	cells := measure.NewCells(60, 20)
//	view := renderer.NewView(term, cells, area)
//	view.Render(engine)
package renderer

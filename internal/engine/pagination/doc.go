// Package pagination maintains a document as an ordered sequence of pages
// and reflows content between them.
//
// The engine never measures anything itself. A host supplies a Measurer
// that reports, for one page, how much space its content occupies and how
// much space the page has. Whenever the editing surface reports that a
// page changed, the engine checks that page and, while it overflows,
// moves its tail to a freshly created page that follows it:
//
//	engine := pagination.New(measurer, pagination.WithPublisher(bus))
//	bus.Subscribe(event.TopicContentChanged, engine.HandleContentChanged)
//
// Migration is greedy and tail-first. A trailing text run is split at its
// midpoint (in grapheme clusters) and only its second half moves; any
// other node moves whole and unmodified. Earlier pages are never
// rebalanced, and a page whose only content is a single oversized element
// is left overflowing rather than migrated forever.
//
// The serialized document joins each page's HTML with PageBreak. This is
// the representation used for save, export and print.
package pagination

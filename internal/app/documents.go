package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dshills/folio/internal/export"
	"github.com/dshills/folio/internal/storage"
)

// Save stores the document, creating it on first save, and returns the
// stored record.
func (s *Session) Save(ctx context.Context) (storage.Document, error) {
	if s.store == nil {
		return storage.Document{}, NewOperationError("save", s.docID, ErrNoStore)
	}
	doc := storage.Document{
		ID:      s.docID,
		Title:   s.title,
		Content: s.engine.DocumentContent(),
		Pages:   s.engine.PageCount(),
		Words:   s.engine.WordCount(),
	}
	saved, err := s.store.Save(ctx, doc)
	if err != nil {
		return storage.Document{}, NewOperationError("save", s.docID, err)
	}
	s.docID = saved.ID
	s.modified = false
	s.logger.Info("document saved", "id", saved.ID, "pages", saved.Pages,
		"size", humanize.Bytes(uint64(len(saved.Content))))
	return saved, nil
}

// Open replaces the document with a stored one.
func (s *Session) Open(ctx context.Context, id string) error {
	if s.store == nil {
		return NewOperationError("open", id, ErrNoStore)
	}
	doc, err := s.store.Load(ctx, id)
	if err != nil {
		return NewOperationError("open", id, err)
	}
	if err := s.engine.Load(doc.Content); err != nil {
		return NewOperationError("open", id, err)
	}
	s.engine.Reflow()
	s.surface.Normalize()
	s.history.Clear()
	s.docID = doc.ID
	s.title = doc.Title
	if s.title == "" {
		s.title = DefaultTitle
	}
	s.modified = false
	s.logger.Info("document opened", "id", doc.ID, "pages", s.engine.PageCount())
	return nil
}

// Documents lists the stored documents, most recently updated first.
func (s *Session) Documents(ctx context.Context) ([]storage.Summary, error) {
	if s.store == nil {
		return nil, NewOperationError("list", "", ErrNoStore)
	}
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, NewOperationError("list", "", err)
	}
	return docs, nil
}

// Delete removes a stored document. Deleting the open document keeps it
// open as a new, unsaved one.
func (s *Session) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return NewOperationError("delete", id, ErrNoStore)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("delete of missing document", "id", id)
		}
		return NewOperationError("delete", id, err)
	}
	if id == s.docID {
		s.docID = ""
		s.modified = true
	}
	return nil
}

// SaveAs writes the document as a Word-compatible .doc file named after
// name, or the title when name is empty, and returns its path.
func (s *Session) SaveAs(name string) (string, error) {
	if name == "" {
		name = s.title
	}
	return s.write("save-as", export.WordDoc(name, s.engine.DocumentContent()))
}

// Download writes the document as document.html and returns its path.
func (s *Session) Download() (string, error) {
	return s.write("download", export.HTMLDownload(s.engine.DocumentContent()))
}

// Print writes a page that opens the print dialog when loaded.
func (s *Session) Print(ctx context.Context) (string, error) {
	a, err := export.PrintPage(ctx, s.engine.DocumentContent())
	if err != nil {
		return "", NewOperationError("print", "", err)
	}
	return s.write("print", a)
}

// Preview writes every page as a separate sheet and returns the path.
func (s *Session) Preview(ctx context.Context) (string, error) {
	pages := s.engine.Pages()
	sheets := make([]string, len(pages))
	for i, p := range pages {
		sheets[i] = p.HTML()
	}
	a, err := export.PreviewPage(ctx, s.title, sheets)
	if err != nil {
		return "", NewOperationError("preview", "", err)
	}
	return s.write("preview", a)
}

func (s *Session) write(op string, a export.Artifact) (string, error) {
	path, err := export.WriteFile(s.exportDir, a)
	if err != nil {
		return "", NewOperationError(op, a.Name, err)
	}
	s.logger.Info("exported", "op", op, "path", path, "size", a.Size())
	return path, nil
}

// Email returns a mailto URL carrying the document content.
func (s *Session) Email() string {
	return export.MailtoURL("", s.engine.DocumentContent())
}

// CopyHTML returns the serialized document for the clipboard.
func (s *Session) CopyHTML() string {
	return s.engine.DocumentContent()
}

// CopyPlain returns the document text for the clipboard, one blank line
// between pages.
func (s *Session) CopyPlain() string {
	pages := s.engine.Pages()
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		var sb strings.Builder
		for _, n := range p.Nodes() {
			sb.WriteString(inlineText(n))
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n\n")
}

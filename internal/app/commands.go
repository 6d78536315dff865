package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/engine/content"
	"github.com/dshills/folio/internal/engine/pagination"
	"github.com/dshills/folio/internal/input/resize"
	"github.com/dshills/folio/internal/renderer/measure"
)

// Sizes given to inserted elements, in pixels.
const (
	DefaultImageWidth  = 160
	DefaultImageHeight = 120
	TableCellWidth     = 80
	TableCellHeight    = 30
	MaxTableSize       = 50
)

// tableStyle is the inline style of an inserted table.
const tableStyle = "border-collapse: collapse; margin: 10px 0;"

// Block-level commands have nothing to act on in a flat page and are
// accepted without effect.
var blockCommands = []string{
	command.JustifyLeft, command.JustifyCenter, command.JustifyRight, command.JustifyFull,
	command.InsertOrderedList, command.InsertUnorderedList,
	command.Indent, command.Outdent,
}

var inlineCommands = []string{
	command.Bold, command.Italic, command.Underline, command.StrikeThrough,
	command.Subscript, command.Superscript,
	command.FontName, command.FontSize, command.ForeColor, command.HiliteColor,
	command.CreateLink,
}

func (s *Session) registerBuiltins() error {
	handlers := map[string]command.Handler{
		command.RemoveFormat: s.unwrapHandler(command.RemoveFormat, command.IsFormatting),
		command.Unlink:       s.unwrapHandler(command.Unlink, func(tag string) bool { return tag == "a" }),
		command.Undo:         s.historyHandler(s.Undo),
		command.Redo:         s.historyHandler(s.Redo),
		command.InsertText: func(_ context.Context, value string) error {
			s.surface.InsertText(value)
			return nil
		},
		command.InsertLineBreak: func(context.Context, string) error {
			s.surface.InsertBreak()
			return nil
		},
	}
	for _, name := range inlineCommands {
		handlers[name] = s.wrapHandler(name)
	}
	for _, name := range blockCommands {
		handlers[name] = s.blockHandler(name)
	}
	for name, h := range handlers {
		if err := s.commands.Register(name, h); err != nil {
			return NewOperationError("register", name, err)
		}
	}
	return nil
}

func (s *Session) wrapHandler(name string) command.Handler {
	return func(_ context.Context, value string) error {
		in, ok := command.InlineFor(name, value)
		if !ok {
			return fmt.Errorf("%w: %s", command.ErrUnknownCommand, name)
		}
		if _, n := s.surface.Wrap(in.Tag, in.Attrs); n == 0 {
			s.logger.Debug("command without selection", "command", name)
		}
		return nil
	}
}

func (s *Session) unwrapHandler(name string, match func(string) bool) command.Handler {
	return func(context.Context, string) error {
		_, n, err := s.surface.Unwrap(match)
		if err != nil {
			return err
		}
		s.logger.Debug("unwrapped", "command", name, "elements", n)
		return nil
	}
}

// historyHandler runs an undo or redo from a command. The restored
// document is not itself recorded as an edit.
func (s *Session) historyHandler(fn func() error) command.Handler {
	return func(context.Context, string) error {
		if err := fn(); err != nil {
			return err
		}
		s.restoring = true
		return nil
	}
}

func (s *Session) blockHandler(name string) command.Handler {
	return func(context.Context, string) error {
		s.logger.Debug("block command has no effect on inline pages", "command", name)
		return nil
	}
}

// Exec runs a named command on the remembered selection: the selection is
// restored, the command runs and the result is captured again. A change
// to the content goes through the overflow check.
func (s *Session) Exec(ctx context.Context, name, value string) error {
	before := s.engine.DocumentContent()
	err := s.selection.Do(func() error {
		return s.commands.Exec(ctx, name, value)
	})
	s.afterCommand(before)
	if err != nil {
		return NewOperationError(name, value, err)
	}
	return nil
}

// ClearFormatting removes inline formatting and then links from the
// selection.
func (s *Session) ClearFormatting(ctx context.Context) error {
	before := s.engine.DocumentContent()
	err := s.selection.Do(func() error {
		if err := s.commands.Exec(ctx, command.RemoveFormat, ""); err != nil {
			return err
		}
		return s.commands.Exec(ctx, command.Unlink, "")
	})
	s.afterCommand(before)
	if err != nil {
		return NewOperationError("clear-formatting", "", err)
	}
	return nil
}

func (s *Session) afterCommand(before string) {
	if s.restoring {
		s.restoring = false
		return
	}
	if s.engine.DocumentContent() == before {
		return
	}
	s.history.Record("", before)
	s.contentChanged(s.surface.Page())
}

// Undo puts back the document as it was before the last edit.
func (s *Session) Undo() error {
	state, err := s.history.Undo(s.engine.DocumentContent())
	if err != nil {
		return err
	}
	return s.restore(state)
}

// Redo reapplies the last undone edit.
func (s *Session) Redo() error {
	state, err := s.history.Redo(s.engine.DocumentContent())
	if err != nil {
		return err
	}
	return s.restore(state)
}

func (s *Session) restore(state string) error {
	if err := s.engine.Load(state); err != nil {
		return NewOperationError("restore", "", err)
	}
	s.engine.Reflow()
	s.surface.Normalize()
	s.modified = true
	return nil
}

// ResetEditor replaces the document with one empty page.
func (s *Session) ResetEditor() {
	before := s.engine.DocumentContent()
	s.engine.Reset()
	s.history.Record("", before)
	s.modified = true
}

// NewPage adds an empty page after the caret's page and moves the caret
// onto it.
func (s *Session) NewPage() *pagination.Page {
	before := s.engine.DocumentContent()
	p := s.engine.CreatePage(s.surface.Page())
	s.history.Record("", before)
	s.modified = true
	s.surface.CaretStart(p)
	s.selection.Capture()
	return p
}

// FindReplace replaces find with replace in the text of every page and
// returns the number of replacements.
func (s *Session) FindReplace(find, replace string) (int, error) {
	if find == "" {
		return 0, NewOperationError("find-replace", "", ErrInvalidArgument)
	}
	before := s.engine.DocumentContent()
	n := s.engine.FindReplace(find, replace)
	if n == 0 {
		return 0, nil
	}
	s.history.Record("", before)
	s.modified = true
	s.engine.Reflow()
	s.surface.Normalize()
	s.selection.Capture()
	s.logger.Debug("find replace", "find", find, "replacements", n)
	return n, nil
}

// InsertLink links the selected text to target.
func (s *Session) InsertLink(ctx context.Context, target string) error {
	return s.Exec(ctx, command.CreateLink, target)
}

// InsertImage inserts encoded image data at the caret as a data URL,
// sized to the image, and wraps it for resizing.
func (s *Session) InsertImage(data []byte) (content.NodeID, error) {
	info, err := measure.SniffImage(bytes.NewReader(data))
	if err != nil {
		return 0, NewOperationError("insert-image", "", err)
	}
	src := "data:" + info.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(data)
	attrs := []html.Attribute{{Key: "src", Val: src}, {Key: "alt", Val: ""}}
	return s.insertElement("img", attrs, "", info.Width, info.Height), nil
}

// InsertImageURL inserts an image by URL. A zero size uses the default
// image size.
func (s *Session) InsertImageURL(src string, width, height int) (content.NodeID, error) {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return 0, NewOperationError("insert-image", src, fmt.Errorf("%w: %v", ErrInvalidArgument, err))
	}
	switch u.Scheme {
	case "http", "https", "data":
	default:
		return 0, NewOperationError("insert-image", src, ErrInvalidArgument)
	}
	if width <= 0 || height <= 0 {
		width, height = DefaultImageWidth, DefaultImageHeight
	}
	attrs := []html.Attribute{{Key: "src", Val: u.String()}, {Key: "alt", Val: ""}}
	return s.insertElement("img", attrs, "", width, height), nil
}

// InsertTable inserts a rows by cols table of empty cells followed by a
// line break, and wraps it for resizing.
func (s *Session) InsertTable(rows, cols int) (content.NodeID, error) {
	if rows < 1 || cols < 1 || rows > MaxTableSize || cols > MaxTableSize {
		return 0, NewOperationError("insert-table", fmt.Sprintf("%dx%d", rows, cols), ErrInvalidArgument)
	}
	attrs := []html.Attribute{{Key: "border", Val: "1"}, {Key: "style", Val: tableStyle}}
	id := s.insertElement("table", attrs, tableCells(rows, cols), cols*TableCellWidth, rows*TableCellHeight)
	return id, nil
}

func tableCells(rows, cols int) string {
	width := strconv.FormatFloat(100/float64(cols), 'f', -1, 64)
	cell := `<td style="width:` + width + `%; min-width:80px; min-height:30px; padding:6px;">&nbsp;</td>`

	var sb strings.Builder
	sb.WriteString("<tbody>")
	for range rows {
		sb.WriteString("<tr>")
		for range cols {
			sb.WriteString(cell)
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody>")
	return sb.String()
}

// insertElement puts a sized element at the remembered caret, followed by
// a line break for tables, and wraps it for resizing.
func (s *Session) insertElement(tag string, attrs []html.Attribute, inner string, width, height int) content.NodeID {
	var id content.NodeID
	_ = s.selection.Do(func() error {
		before := s.engine.DocumentContent()
		el := s.engine.Arena().NewElement(tag, attrs, inner)
		el.SetSize(width, height)
		p, stored := s.surface.InsertNode(el)
		id = stored.ID
		if tag == "table" {
			s.surface.InsertBreak()
		}
		s.history.Record("", before)
		s.contentChanged(p)
		return nil
	})
	s.resizer.Wrappers().Setup(resize.ElementID(id))
	return id
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/dshills/folio/internal/app"
	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/renderer"
	"github.com/dshills/folio/internal/renderer/backend"
	"github.com/dshills/folio/internal/renderer/core"
	"github.com/dshills/folio/internal/renderer/statusline"
	"github.com/dshills/folio/internal/storage"
)

// errQuit ends the event loop normally.
var errQuit = errors.New("quit")

// editor runs the terminal event loop for one session.
type editor struct {
	session *app.Session
	screen  backend.Backend
	view    *renderer.View
	status  *statusline.StatusLine
	logger  *app.Logger

	pasting bool
	paste   strings.Builder
	prompt  *prompt
}

// prompt is a question asked on the status line. submit receives the
// trimmed answer when Enter is pressed.
type prompt struct {
	label  string
	input  []rune
	submit func(ctx context.Context, answer string) error
}

// editorCommands are the command line names handled by the editor rather
// than the session's command registry.
var editorCommands = []string{
	"clearFormatting", "delete", "download", "find", "image", "open",
	"print", "saveAs", "table", "title",
}

// ctrlCommands maps Ctrl-letter shortcuts to formatting commands.
var ctrlCommands = map[rune]string{
	'b': command.Bold,
	'i': command.Italic,
	'u': command.Underline,
	'z': command.Undo,
	'y': command.Redo,
}

func (ed *editor) run(ctx context.Context) error {
	for {
		ed.draw()
		ev := ed.screen.PollEvent()
		if err := ed.handle(ctx, ev); err != nil {
			return err
		}
	}
}

func (ed *editor) handle(ctx context.Context, ev backend.Event) error {
	switch ev.Type {
	case backend.EventInterrupt:
		return errQuit

	case backend.EventResize:
		ed.view.SetArea(core.RectFromSize(0, 0, ev.Height-1, ev.Width))
		ed.status.Resize(ev.Width)

	case backend.EventPaste:
		ed.pasting = ev.PasteStart
		if !ev.PasteStart {
			ed.pasted(ed.paste.String())
			ed.paste.Reset()
		}

	case backend.EventMouse:
		if ev.Wheel != 0 {
			ed.view.Scroll(ev.Wheel * 3)
			return nil
		}
		ed.session.HandlePointer(ed.view.ToPixels(ev.Mouse))

	case backend.EventKey:
		return ed.key(ctx, ev)
	}
	return nil
}

func (ed *editor) key(ctx context.Context, ev backend.Event) error {
	if ed.pasting {
		switch ev.Key {
		case backend.KeyRune:
			ed.paste.WriteRune(ev.Rune)
		case backend.KeyEnter:
			ed.paste.WriteRune('\n')
		}
		return nil
	}
	if ed.prompt != nil {
		return ed.promptKey(ctx, ev)
	}
	ed.status.ClearMessage()
	shift := ev.Mod.Has(backend.ModShift)

	switch ev.Key {
	case backend.KeyRune:
		ed.session.TypeText(string(ev.Rune))
	case backend.KeyEnter:
		ed.session.Newline()
	case backend.KeyTab:
		ed.session.TypeText("\t")
	case backend.KeyBackspace, backend.KeyDelete:
		ed.session.Backspace()
	case backend.KeyLeft:
		ed.session.MoveCaret(-1, shift)
	case backend.KeyRight:
		ed.session.MoveCaret(1, shift)
	case backend.KeyHome:
		ed.session.CaretHome()
	case backend.KeyEnd:
		ed.session.CaretEnd()
	case backend.KeyPageUp:
		ed.view.Scroll(-10)
	case backend.KeyPageDown:
		ed.view.Scroll(10)
	case backend.KeyEscape:
		ed.session.Blur()
	case backend.KeyCtrl:
		return ed.shortcut(ctx, ev.Rune)
	}
	return nil
}

func (ed *editor) shortcut(ctx context.Context, r rune) error {
	if name, ok := ctrlCommands[r]; ok {
		ed.report(ed.session.Exec(ctx, name, ""))
		return nil
	}

	switch r {
	case 'q':
		return errQuit
	case 'n':
		ed.session.NewPage()
	case 's':
		if doc, err := ed.session.Save(ctx); err != nil {
			ed.report(err)
		} else {
			ed.inform("Saved %s", doc.ID)
		}
	case 'e':
		ed.exported(ed.session.SaveAs(""))
	case 'p':
		ed.exported(ed.session.Preview(ctx))
	case 'd':
		ed.exported(ed.session.Download())
	case 'r':
		ed.exported(ed.session.Print(ctx))
	case 'c':
		ed.copy(ed.session.CopyPlain(), "Copied text")
	case 'x':
		ed.copy(ed.session.CopyHTML(), "Copied HTML")
	case 'w':
		ed.copy(ed.session.Email(), "Copied mail link")
	case 'f':
		ed.ask("Find: ", ed.find)
	case 't':
		ed.ask("Table rows x cols: ", func(_ context.Context, answer string) error {
			return ed.insertTable(answer)
		})
	case 'g':
		ed.ask("Image file or URL: ", func(_ context.Context, answer string) error {
			return ed.insertImage(answer)
		})
	case 'l':
		ed.ask("Link: ", func(ctx context.Context, answer string) error {
			return ed.session.InsertLink(ctx, answer)
		})
	case 'o':
		ed.report(ed.askOpen(ctx))
	case 'k':
		ed.ask("Command: ", ed.runCommand)
	case '=':
		ed.session.SetZoom(ed.session.Zoom() + app.ZoomStep)
	case '-':
		ed.session.SetZoom(ed.session.Zoom() - app.ZoomStep)
	default:
		ed.screen.Beep()
	}
	return nil
}

// ask shows a prompt. Keys go to it until Enter or Esc.
func (ed *editor) ask(label string, submit func(ctx context.Context, answer string) error) {
	ed.prompt = &prompt{label: label, submit: submit}
	ed.status.SetPrompt(label, "")
}

func (ed *editor) promptKey(ctx context.Context, ev backend.Event) error {
	p := ed.prompt
	switch ev.Key {
	case backend.KeyRune:
		p.input = append(p.input, ev.Rune)
	case backend.KeyBackspace, backend.KeyDelete:
		if len(p.input) > 0 {
			p.input = p.input[:len(p.input)-1]
		}
	case backend.KeyEscape:
		ed.endPrompt()
	case backend.KeyEnter:
		ed.endPrompt()
		ed.report(p.submit(ctx, strings.TrimSpace(string(p.input))))
	case backend.KeyCtrl:
		if ev.Rune == 'q' {
			return errQuit
		}
	}
	// submit may have asked a follow-up question.
	if ed.prompt == p {
		ed.status.SetPrompt(p.label, string(p.input))
	}
	return nil
}

func (ed *editor) endPrompt() {
	ed.prompt = nil
	ed.status.ClearPrompt()
}

// pasted types pasted text into the document, or into the prompt on one
// line.
func (ed *editor) pasted(text string) {
	if p := ed.prompt; p != nil {
		p.input = append(p.input, []rune(strings.Join(strings.Fields(text), " "))...)
		ed.status.SetPrompt(p.label, string(p.input))
		return
	}
	ed.session.TypeText(text)
}

// runCommand runs a command line, "name value". Names the editor does
// not handle go to the session's command registry. An empty line lists
// the commands.
func (ed *editor) runCommand(ctx context.Context, line string) error {
	name, value, _ := strings.Cut(line, " ")
	value = strings.TrimSpace(value)
	switch name {
	case "":
		ed.inform("Commands: %s", strings.Join(ed.commandNames(), " "))
		return nil
	case "clearFormatting":
		return ed.session.ClearFormatting(ctx)
	case "delete":
		id, err := ed.resolveDocument(ctx, value)
		if err != nil {
			return err
		}
		if err := ed.session.Delete(ctx, id); err != nil {
			return err
		}
		ed.inform("Deleted %s", shortID(id))
		return nil
	case "download":
		ed.exported(ed.session.Download())
		return nil
	case "find":
		find, replace, ok := strings.Cut(value, "/")
		if !ok {
			return fmt.Errorf("find: want find/replace: %w", app.ErrInvalidArgument)
		}
		return ed.findReplace(find, replace)
	case "image":
		return ed.insertImage(value)
	case "open":
		return ed.open(ctx, value)
	case "print":
		ed.exported(ed.session.Print(ctx))
		return nil
	case "saveAs":
		ed.exported(ed.session.SaveAs(value))
		return nil
	case "table":
		return ed.insertTable(value)
	case "title":
		ed.session.SetTitle(value)
		return nil
	}
	return ed.session.Exec(ctx, name, value)
}

func (ed *editor) commandNames() []string {
	names := append(ed.session.Commands().Names(), editorCommands...)
	sort.Strings(names)
	return names
}

// find asks for the replacement once the search text is known.
func (ed *editor) find(_ context.Context, find string) error {
	if find == "" {
		return nil
	}
	ed.ask(fmt.Sprintf("Replace %q with: ", find), func(_ context.Context, replace string) error {
		return ed.findReplace(find, replace)
	})
	return nil
}

func (ed *editor) findReplace(find, replace string) error {
	n, err := ed.session.FindReplace(find, replace)
	if err != nil {
		return err
	}
	ed.inform("Replaced %d", n)
	return nil
}

// insertTable inserts a table sized "rows x cols".
func (ed *editor) insertTable(size string) error {
	rows, cols, err := parseTableSize(size)
	if err != nil {
		return err
	}
	if _, err := ed.session.InsertTable(rows, cols); err != nil {
		return err
	}
	ed.inform("Inserted %dx%d table", rows, cols)
	return nil
}

// parseTableSize parses "3x4", "3 4" or "3,4" as rows and columns.
func parseTableSize(s string) (rows, cols int, err error) {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == 'x' || r == ',' || r == ' '
	})
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("table size %q: %w", s, app.ErrInvalidArgument)
	}
	rows, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("table rows %q: %w", fields[0], app.ErrInvalidArgument)
	}
	cols, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("table cols %q: %w", fields[1], app.ErrInvalidArgument)
	}
	return rows, cols, nil
}

// insertImage inserts an image from a URL, or from a file read into a data
// URL.
func (ed *editor) insertImage(src string) error {
	if src == "" {
		return fmt.Errorf("image: %w", app.ErrInvalidArgument)
	}
	if strings.Contains(src, "://") || strings.HasPrefix(src, "data:") {
		_, err := ed.session.InsertImageURL(src, 0, 0)
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}
	_, err = ed.session.InsertImage(data)
	return err
}

// askOpen lists the stored documents in a prompt for the one to open.
func (ed *editor) askOpen(ctx context.Context) error {
	docs, err := ed.session.Documents(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		ed.inform("No saved documents")
		return nil
	}
	choices := make([]string, 0, 4)
	for i, d := range docs {
		if i == 3 {
			choices = append(choices, "...")
			break
		}
		choices = append(choices, shortID(d.ID)+" "+d.Title)
	}
	ed.ask("Open ("+strings.Join(choices, ", ")+"): ", ed.open)
	return nil
}

func (ed *editor) open(ctx context.Context, prefix string) error {
	id, err := ed.resolveDocument(ctx, prefix)
	if err != nil {
		return err
	}
	if err := ed.session.Open(ctx, id); err != nil {
		return err
	}
	ed.inform("Opened %s", ed.session.Title())
	return nil
}

// resolveDocument finds the stored document whose id starts with prefix.
func (ed *editor) resolveDocument(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("document id: %w", app.ErrInvalidArgument)
	}
	docs, err := ed.session.Documents(ctx)
	if err != nil {
		return "", err
	}
	var found []string
	for _, d := range docs {
		if d.ID == prefix {
			return d.ID, nil
		}
		if strings.HasPrefix(d.ID, prefix) {
			found = append(found, d.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("document %s: %w", prefix, storage.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("document %s matches %d documents: %w", prefix, len(found), app.ErrInvalidArgument)
	}
}

func (ed *editor) copy(text, done string) {
	if err := clipboard.WriteAll(text); err != nil {
		ed.report(fmt.Errorf("copy: %w", err))
		return
	}
	ed.inform("%s", done)
}

func shortID(id string) string {
	return id[:min(len(id), 8)]
}

func (ed *editor) exported(path string, err error) {
	if err != nil {
		ed.report(err)
		return
	}
	ed.inform("Wrote %s", path)
}

func (ed *editor) inform(format string, args ...any) {
	ed.status.SetMessage(fmt.Sprintf(format, args...), statusline.MessageInfo)
}

// report shows err on the status line. Undo and redo at the ends of
// history only ring the bell.
func (ed *editor) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, app.ErrNothingToUndo), errors.Is(err, app.ErrNothingToRedo):
		ed.screen.Beep()
	default:
		ed.logger.Warn("command failed", "error", err)
		ed.status.SetMessage(err.Error(), statusline.MessageError)
	}
}

func (ed *editor) draw() {
	ed.screen.Clear()
	ed.view.SetCaret(ed.session.Caret())
	ed.view.Render(ed.session.Engine())

	title := ed.session.Title()
	if id := ed.session.DocumentID(); id != "" {
		title += " [" + shortID(id) + "]"
	}
	ed.status.SetTitle(title)
	ed.status.SetModified(ed.session.Modified())
	ed.status.SetReadouts(ed.session.Readouts()...)
	_, height := ed.screen.Size()
	ed.status.Render(ed.screen, height-1)
	ed.screen.Show()
}

// Package statusline provides the status line shown below the pages.
package statusline

import (
	"strings"

	"github.com/dshills/folio/internal/renderer/backend"
	"github.com/dshills/folio/internal/renderer/core"
)

// StatusLine renders the bottom status line: the document title on the
// left, readouts such as the page and word counts on the right, and
// transient messages in place of both.
type StatusLine struct {
	title    string
	modified bool
	readouts []string

	message     string
	messageType MessageType

	prompting bool
	prompt    string
	input     string

	width int
}

// MessageType indicates the type of status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageWarning
	MessageError
)

var (
	barStyle     = core.DefaultStyle().WithBackground(core.ColorBlue).WithForeground(core.ColorWhite)
	titleStyle   = barStyle.Bold()
	warningStyle = core.DefaultStyle().WithForeground(core.ColorFromRGB(0xc0, 0x80, 0x00)).Bold()
	errorStyle   = core.DefaultStyle().WithForeground(core.ColorFromRGB(0xc0, 0x20, 0x20)).Bold()
)

// New creates a new status line.
func New() *StatusLine {
	return &StatusLine{}
}

// SetTitle updates the displayed document title.
func (s *StatusLine) SetTitle(title string) {
	s.title = title
}

// SetModified updates the unsaved-changes indicator.
func (s *StatusLine) SetModified(modified bool) {
	s.modified = modified
}

// SetReadouts replaces the right-hand readouts, drawn in order.
func (s *StatusLine) SetReadouts(readouts ...string) {
	s.readouts = append(s.readouts[:0], readouts...)
}

// SetMessage displays a status message until the next ClearMessage.
func (s *StatusLine) SetMessage(msg string, msgType MessageType) {
	s.message = msg
	s.messageType = msgType
}

// ClearMessage clears the status message.
func (s *StatusLine) ClearMessage() {
	s.message = ""
	s.messageType = MessageNone
}

// Message returns the current message.
func (s *StatusLine) Message() (string, MessageType) {
	return s.message, s.messageType
}

// SetPrompt shows a question and the answer typed so far. The prompt
// takes the place of messages and the bar until ClearPrompt.
func (s *StatusLine) SetPrompt(prompt, input string) {
	s.prompting = true
	s.prompt = prompt
	s.input = input
}

// ClearPrompt removes the prompt.
func (s *StatusLine) ClearPrompt() {
	s.prompting = false
	s.prompt = ""
	s.input = ""
}

// Prompting returns true while a prompt is shown.
func (s *StatusLine) Prompting() bool {
	return s.prompting
}

// Resize updates the status line width.
func (s *StatusLine) Resize(width int) {
	s.width = width
}

// Render draws the status line to the backend at the given row.
func (s *StatusLine) Render(b backend.Backend, row int) {
	if s.prompting {
		s.renderPrompt(b, row)
		return
	}
	if s.message != "" {
		s.renderMessage(b, row)
		return
	}
	s.renderBar(b, row)
}

func (s *StatusLine) renderBar(b backend.Backend, row int) {
	b.Fill(core.RectFromSize(row, 0, 1, s.width), core.Cell{Rune: ' ', Width: 1, Style: barStyle})

	title := s.title
	if title == "" {
		title = "[Untitled]"
	}
	if s.modified {
		title += " [+]"
	}

	info := strings.Join(s.readouts, "  ")
	infoWidth := stringWidth(info)
	infoStart := s.width - infoWidth - 1

	end := s.width
	if infoStart > 0 {
		end = infoStart - 1
	}
	draw(b, 1, row, end, title, titleStyle)
	if infoStart > 0 {
		draw(b, infoStart, row, s.width, info, barStyle)
	}
}

func (s *StatusLine) renderMessage(b backend.Backend, row int) {
	var style core.Style
	switch s.messageType {
	case MessageError:
		style = errorStyle
	case MessageWarning:
		style = warningStyle
	default:
		style = core.DefaultStyle()
	}

	b.Fill(core.RectFromSize(row, 0, 1, s.width), core.Cell{Rune: ' ', Width: 1, Style: style})
	draw(b, 0, row, s.width, s.message, style)
}

// renderPrompt draws the prompt and the answer, with the cursor after the
// answer. A long answer scrolls so its end stays visible.
func (s *StatusLine) renderPrompt(b backend.Backend, row int) {
	style := core.DefaultStyle()
	b.Fill(core.RectFromSize(row, 0, 1, s.width), core.Cell{Rune: ' ', Width: 1, Style: style})

	line := []rune(s.prompt + s.input)
	for len(line) > 0 && stringWidth(string(line)) >= s.width {
		line = line[1:]
	}
	draw(b, 0, row, s.width, string(line), style)
	b.ShowCursor(stringWidth(string(line)), row)
}

// draw writes s from col, stopping before limit.
func draw(b backend.Backend, col, row, limit int, s string, style core.Style) {
	for _, r := range s {
		w := core.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > limit {
			return
		}
		b.SetCell(col, row, core.NewStyledCell(r, style))
		col += w
	}
}

func stringWidth(s string) int {
	w := 0
	for _, r := range s {
		w += core.RuneWidth(r)
	}
	return w
}

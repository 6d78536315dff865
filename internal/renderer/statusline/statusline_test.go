package statusline

import (
	"strings"
	"testing"

	"github.com/dshills/folio/internal/renderer/backend"
)

func newBackend(t *testing.T, width int) *backend.NullBackend {
	t.Helper()
	b := backend.NewNullBackend(width, 2)
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestRenderBar(t *testing.T) {
	b := newBackend(t, 40)
	s := New()
	s.Resize(40)
	s.SetTitle("notes")
	s.SetModified(true)
	s.SetReadouts("Pages: 2", "Words: 15")
	s.Render(b, 1)

	row := b.Row(1)
	if !strings.HasPrefix(row, " notes [+]") {
		t.Errorf("row = %q, want title on the left", row)
	}
	if !strings.HasSuffix(row, "Pages: 2  Words: 15 ") {
		t.Errorf("row = %q, want readouts on the right", row)
	}
}

func TestRenderUntitled(t *testing.T) {
	b := newBackend(t, 30)
	s := New()
	s.Resize(30)
	s.Render(b, 0)

	if row := b.Row(0); !strings.Contains(row, "[Untitled]") {
		t.Errorf("row = %q", row)
	}
}

func TestRenderNarrow(t *testing.T) {
	b := newBackend(t, 12)
	s := New()
	s.Resize(12)
	s.SetTitle("a very long document title")
	s.SetReadouts("Pages: 100", "Words: 10000")
	s.Render(b, 0)

	if row := b.Row(0); len([]rune(row)) != 12 {
		t.Errorf("row = %q, want clipped to 12 cells", row)
	}
}

func TestMessage(t *testing.T) {
	b := newBackend(t, 30)
	s := New()
	s.Resize(30)
	s.SetReadouts("Pages: 1")
	s.SetMessage("Saved 1.2 kB", MessageInfo)
	s.Render(b, 0)

	if row := b.Row(0); !strings.HasPrefix(row, "Saved 1.2 kB") || strings.Contains(row, "Pages") {
		t.Errorf("row = %q, want message only", row)
	}
	if msg, typ := s.Message(); msg != "Saved 1.2 kB" || typ != MessageInfo {
		t.Errorf("Message() = %q, %v", msg, typ)
	}

	s.ClearMessage()
	s.Render(b, 0)
	if row := b.Row(0); !strings.Contains(row, "Pages: 1") {
		t.Errorf("row after ClearMessage = %q", row)
	}
}

func TestPrompt(t *testing.T) {
	b := newBackend(t, 20)
	s := New()
	s.Resize(20)
	s.SetMessage("Saved", MessageInfo)
	s.SetPrompt("Find: ", "cat")
	s.Render(b, 0)

	if row := b.Row(0); !strings.HasPrefix(row, "Find: cat") {
		t.Errorf("row = %q, want prompt", row)
	}
	if x, y, visible := b.CursorPosition(); x != 9 || y != 0 || !visible {
		t.Errorf("cursor = (%d, %d, %v), want (9, 0, true)", x, y, visible)
	}

	s.SetPrompt("Find: ", strings.Repeat("x", 30))
	s.Render(b, 0)
	if row := b.Row(0); row != strings.Repeat("x", 19)+" " {
		t.Errorf("long answer row = %q, want its tail", row)
	}

	s.ClearPrompt()
	if s.Prompting() {
		t.Error("Prompting() = true after ClearPrompt")
	}
	s.Render(b, 0)
	if row := b.Row(0); !strings.HasPrefix(row, "Saved") {
		t.Errorf("row after ClearPrompt = %q, want the message back", row)
	}
}

package backend

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/folio/internal/input/mouse"
	"github.com/dshills/folio/internal/renderer/core"
)

func TestNullBackendInit(t *testing.T) {
	b := NewNullBackend(80, 24)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	w, h := b.Size()
	if w != 80 || h != 24 {
		t.Errorf("expected size (80, 24), got (%d, %d)", w, h)
	}
}

func TestNullBackendSetCell(t *testing.T) {
	b := NewNullBackend(10, 3)
	b.Init()

	cell := core.NewStyledCell('X', core.DefaultStyle().Bold())
	b.SetCell(4, 1, cell)
	if got := b.GetCell(4, 1); got != cell {
		t.Errorf("GetCell() = %+v, want %+v", got, cell)
	}

	// Out of bounds should be ignored
	b.SetCell(-1, 0, cell)
	b.SetCell(100, 0, cell)
	if got := b.GetCell(-1, 0); got != core.EmptyCell() {
		t.Error("out of bounds should return empty cell")
	}

	if got := b.Row(1); got != "    X     " {
		t.Errorf("Row(1) = %q", got)
	}
}

func TestNullBackendFillClear(t *testing.T) {
	b := NewNullBackend(10, 5)
	b.Init()

	b.Fill(core.RectFromSize(1, 2, 2, 3), core.NewStyledCell('.', core.DefaultStyle()))
	if got := b.Row(1); got != "  ...     " {
		t.Errorf("Row(1) = %q", got)
	}
	if got := b.Row(3); got != "          " {
		t.Errorf("Row(3) = %q", got)
	}

	b.Clear()
	if got := b.Row(1); got != "          " {
		t.Errorf("Row(1) after Clear = %q", got)
	}
}

func TestNullBackendEvents(t *testing.T) {
	b := NewNullBackend(10, 5)
	b.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: 'a'})
	b.Interrupt()

	if ev := b.PollEvent(); ev.Type != EventKey || ev.Rune != 'a' {
		t.Errorf("PollEvent() = %+v", ev)
	}
	if ev := b.PollEvent(); ev.Type != EventInterrupt {
		t.Errorf("PollEvent() = %+v, want interrupt", ev)
	}
}

func TestNullBackendCursor(t *testing.T) {
	b := NewNullBackend(10, 5)
	b.ShowCursor(3, 4)
	if x, y, visible := b.CursorPosition(); x != 3 || y != 4 || !visible {
		t.Errorf("CursorPosition() = (%d, %d, %v)", x, y, visible)
	}
	b.HideCursor()
	if _, _, visible := b.CursorPosition(); visible {
		t.Error("cursor should be hidden")
	}
}

func TestMouseTracker(t *testing.T) {
	var m mouseTracker
	now := time.Now()

	steps := []struct {
		buttons tcell.ButtonMask
		action  mouse.Action
		button  mouse.Button
	}{
		{tcell.ButtonNone, mouse.ActionMove, mouse.ButtonNone},
		{tcell.Button1, mouse.ActionDown, mouse.ButtonPrimary},
		{tcell.Button1, mouse.ActionMove, mouse.ButtonPrimary},
		{tcell.ButtonNone, mouse.ActionUp, mouse.ButtonPrimary},
		{tcell.Button2, mouse.ActionDown, mouse.ButtonSecondary},
		{tcell.ButtonNone, mouse.ActionUp, mouse.ButtonSecondary},
		{tcell.Button3, mouse.ActionDown, mouse.ButtonMiddle},
	}

	for i, s := range steps {
		ev := m.convert(i, i*2, s.buttons, now)
		if ev.Action != s.action || ev.Button != s.button {
			t.Errorf("step %d: got %v/%v, want %v/%v", i, ev.Action, ev.Button, s.action, s.button)
		}
		if ev.Position != (mouse.Position{X: i, Y: i * 2}) {
			t.Errorf("step %d: Position = %+v", i, ev.Position)
		}
		if !ev.Timestamp.Equal(now) {
			t.Errorf("step %d: Timestamp = %v", i, ev.Timestamp)
		}
	}
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		want Key
		rune rune
	}{
		{"rune", tcell.KeyRune, 'x', KeyRune, 'x'},
		{"ctrl-s", tcell.KeyCtrlS, 0, KeyCtrl, 's'},
		{"ctrl-a", tcell.KeyCtrlA, 0, KeyCtrl, 'a'},
		{"tab", tcell.KeyTab, 0, KeyTab, 0},
		{"enter", tcell.KeyEnter, 0, KeyEnter, 0},
		{"backspace", tcell.KeyBackspace, 0, KeyBackspace, 0},
		{"backspace2", tcell.KeyBackspace2, 0, KeyBackspace, 0},
		{"escape", tcell.KeyEscape, 0, KeyEscape, 0},
		{"page down", tcell.KeyPgDn, 0, KeyPageDown, 0},
		{"f1", tcell.KeyF1, 0, KeyNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, r := convertKey(tt.key, tt.r)
			if got != tt.want || r != tt.rune {
				t.Errorf("convertKey() = (%v, %q), want (%v, %q)", got, r, tt.want, tt.rune)
			}
		})
	}
}

func TestConvertMod(t *testing.T) {
	got := convertMod(tcell.ModShift | tcell.ModAlt)
	if !got.Has(ModShift) || !got.Has(ModAlt) || got.Has(ModCtrl) {
		t.Errorf("convertMod() = %b", got)
	}
}

func TestConvertStyle(t *testing.T) {
	s := core.DefaultStyle().WithForeground(core.ColorWhite).Bold().Reverse()
	fg, bg, attrs := convertStyle(s).Decompose()

	if fg != tcell.NewRGBColor(255, 255, 255) {
		t.Errorf("foreground = %v", fg)
	}
	if bg != tcell.ColorDefault {
		t.Errorf("background = %v, want default", bg)
	}
	if attrs&tcell.AttrBold == 0 || attrs&tcell.AttrReverse == 0 || attrs&tcell.AttrDim != 0 {
		t.Errorf("attrs = %b", attrs)
	}
}

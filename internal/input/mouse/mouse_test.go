package mouse

import "testing"

func TestButtonString(t *testing.T) {
	tests := []struct {
		button   Button
		expected string
	}{
		{ButtonNone, "none"},
		{ButtonPrimary, "primary"},
		{ButtonMiddle, "middle"},
		{ButtonSecondary, "secondary"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.button.String(); got != tt.expected {
				t.Errorf("Button.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action   Action
		expected string
	}{
		{ActionNone, "none"},
		{ActionDown, "down"},
		{ActionMove, "move"},
		{ActionUp, "up"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.action.String(); got != tt.expected {
				t.Errorf("Action.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPositionSub(t *testing.T) {
	got := Position{X: 130, Y: 60}.Sub(Position{X: 100, Y: 50})
	if !got.Equal(Position{X: 30, Y: 10}) {
		t.Errorf("Sub() = %+v, want {30 10}", got)
	}
}

func TestConstructors(t *testing.T) {
	if ev := Down(1, 2); ev.Action != ActionDown || ev.Button != ButtonPrimary || ev.Position != (Position{1, 2}) {
		t.Errorf("Down() = %+v", ev)
	}
	if ev := Move(3, 4); ev.Action != ActionMove || ev.Position != (Position{3, 4}) {
		t.Errorf("Move() = %+v", ev)
	}
	if ev := Up(5, 6); ev.Action != ActionUp || ev.Position != (Position{5, 6}) {
		t.Errorf("Up() = %+v", ev)
	}
}

package resize

// Handle is one of the eight compass resize handles.
type Handle string

// Compass handles.
const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// Handles lists every handle in the order they are attached to a wrapper.
var Handles = [8]Handle{HandleNW, HandleNE, HandleSW, HandleSE, HandleN, HandleS, HandleW, HandleE}

// ParseHandle parses a compass identifier.
func ParseHandle(s string) (Handle, bool) {
	h := Handle(s)
	return h, h.Valid()
}

// Valid returns true if h is one of the eight handles.
func (h Handle) Valid() bool {
	for _, v := range Handles {
		if h == v {
			return true
		}
	}
	return false
}

// String returns the compass identifier.
func (h Handle) String() string {
	return string(h)
}

// Delta maps a pointer offset to a size change. A handle only changes the
// dimensions its direction implies; handles on the leading (north or west)
// edge grow the element when dragged away from it, so their offset is
// negated.
func (h Handle) Delta(dx, dy int) (dw, dh int) {
	switch h {
	case HandleSE:
		return dx, dy
	case HandleSW:
		return -dx, dy
	case HandleNE:
		return dx, -dy
	case HandleNW:
		return -dx, -dy
	case HandleN:
		return 0, -dy
	case HandleS:
		return 0, dy
	case HandleW:
		return -dx, 0
	case HandleE:
		return dx, 0
	default:
		return 0, 0
	}
}

// Size is an element size in device-independent units.
type Size struct {
	Width  int
	Height int
}

// Clamp raises each dimension to at least the corresponding minimum.
func (s Size) Clamp(min Size) Size {
	if s.Width < min.Width {
		s.Width = min.Width
	}
	if s.Height < min.Height {
		s.Height = min.Height
	}
	return s
}

package selection

// Logger receives diagnostic messages.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Store holds at most one selection snapshot.
//
// Store is not safe for concurrent use. Capture and Restore run on the
// editor's event loop, so a Restore always sees the most recent Capture.
type Store struct {
	host     Host
	current  *Range
	logger   Logger
	captured func(Range)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the diagnostic logger.
func WithLogger(l Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// OnCapture sets a function called with every new snapshot.
func OnCapture(fn func(Range)) Option {
	return func(s *Store) {
		s.captured = fn
	}
}

// NewStore creates a store bound to host.
func NewStore(host Host, opts ...Option) *Store {
	s := &Store{host: host, logger: nopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capture copies the host's first live range into the snapshot slot,
// replacing any previous snapshot. It does nothing when the host has no
// range.
func (s *Store) Capture() {
	if s.host.RangeCount() == 0 {
		return
	}
	r := s.host.RangeAt(0).Range()
	s.current = &r
	if s.captured != nil {
		s.captured(r)
	}
}

// Restore replaces the host's live selection with a copy of the snapshot.
// Without a snapshot it does nothing.
func (s *Store) Restore() {
	if s.current == nil {
		s.logger.Debug("restore without snapshot")
		return
	}
	s.host.RemoveAllRanges()
	s.host.AddRange(*s.current)
}

// Observe captures in response to an input trigger. Selection changes are
// only captured when the range lies inside the editable surface.
func (s *Store) Observe(t Trigger) {
	if t == TriggerSelectionChange {
		if s.host.RangeCount() == 0 || !s.host.Contains(s.host.RangeAt(0).Range()) {
			return
		}
	}
	s.Capture()
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() (Range, bool) {
	if s.current == nil {
		return Range{}, false
	}
	return *s.current, true
}

// Clear discards the snapshot.
func (s *Store) Clear() {
	s.current = nil
}

// Do runs fn between a Restore and a Capture, so fn acts on the user's
// intended selection and the result is remembered afterwards.
func (s *Store) Do(fn func() error) error {
	s.Restore()
	err := fn()
	s.Capture()
	return err
}

package pagination

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/dshills/folio/internal/event"
)

// lengthMeasurer sizes text runs by grapheme count and elements by height.
func lengthMeasurer(capacity int) MeasureFunc {
	return func(p *Page) Metrics {
		size := 0
		for _, n := range p.Nodes() {
			if n.IsText() {
				size += n.Len()
			} else {
				size += n.Height
			}
		}
		return Metrics{ContentSize: size, Capacity: capacity}
	}
}

type recordingFocuser struct {
	focused []*Page
}

func (f *recordingFocuser) Focus(p *Page) {
	f.focused = append(f.focused, p)
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Debug(msg string, kv ...any) {
	l.messages = append(l.messages, msg)
}

func pageTexts(e *Engine) []string {
	var out []string
	for _, p := range e.Pages() {
		out = append(out, p.Text())
	}
	return out
}

func TestNewEngine(t *testing.T) {
	e := New(lengthMeasurer(10))

	if e.PageCount() != 1 {
		t.Errorf("PageCount() = %d, want 1", e.PageCount())
	}
	if got := e.DocumentContent(); got != "<br>" {
		t.Errorf("DocumentContent() = %q, want %q", got, "<br>")
	}
	if e.WordCount() != 0 {
		t.Errorf("WordCount() = %d, want 0", e.WordCount())
	}
	if e.Active() != e.Pages()[0] {
		t.Error("first page is not active")
	}
}

func TestCreatePage(t *testing.T) {
	focuser := &recordingFocuser{}
	e := New(lengthMeasurer(10), WithFocuser(focuser))
	first := e.Pages()[0]

	last := e.CreatePage(nil)
	middle := e.CreatePage(first)

	pages := e.Pages()
	if len(pages) != 3 {
		t.Fatalf("PageCount() = %d, want 3", len(pages))
	}
	if pages[0] != first || pages[1] != middle || pages[2] != last {
		t.Errorf("page order = [%d %d %d], want [%d %d %d]",
			pages[0].ID, pages[1].ID, pages[2].ID, first.ID, middle.ID, last.ID)
	}
	if e.Active() != middle {
		t.Errorf("Active() = page %d, want %d", e.Active().ID, middle.ID)
	}
	if n := len(focuser.focused); n != 3 || focuser.focused[n-1] != middle {
		t.Errorf("focus calls = %d, want 3 ending on the newest page", n)
	}

	stranger := &Page{ID: 999}
	appended := e.CreatePage(stranger)
	if e.IndexOf(appended) != 3 {
		t.Errorf("page created after unknown page at index %d, want 3", e.IndexOf(appended))
	}
	if e.IndexOf(middle) != 1 {
		t.Errorf("IndexOf(middle) = %d, want 1", e.IndexOf(middle))
	}
}

func TestDocumentContent(t *testing.T) {
	e := New(lengthMeasurer(100))
	p1 := e.Active()
	e.AppendText(p1, "page one")
	p2 := e.CreatePage(p1)
	e.AppendText(p2, "page two")
	p3 := e.CreatePage(p2)
	e.AppendText(p3, "page three")

	sep := "\n\n---PAGE BREAK---\n\n"
	want := "page one" + sep + "page two" + sep + "page three"
	if got := e.DocumentContent(); got != want {
		t.Errorf("DocumentContent() = %q, want %q", got, want)
	}
	if e.WordCount() != 6 {
		t.Errorf("WordCount() = %d, want 6", e.WordCount())
	}
}

func TestCheckOverflowSplitsText(t *testing.T) {
	e := New(lengthMeasurer(10))
	p := e.Active()
	original := "abcdefghijklmnopqrstuvwx"
	e.AppendText(p, original)

	e.CheckOverflow(p)

	want := []string{"abcdef", "ghijkl", "mnopqrstuvwx"}
	got := pageTexts(e)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("pages = %q, want %q", got, want)
	}
	if strings.Join(got, "") != original {
		t.Errorf("text not preserved: %q", strings.Join(got, ""))
	}
	if e.Active() != e.Pages()[1] {
		t.Error("most recently created page should be active")
	}
}

func TestReflowFitsEveryPage(t *testing.T) {
	e := New(lengthMeasurer(10))
	p := e.Active()
	original := "abcdefghijklmnopqrstuvwx"
	e.AppendText(p, original)

	e.Reflow()

	m := lengthMeasurer(10)
	for i, q := range e.Pages() {
		if m(q).Overflows() {
			t.Errorf("page %d still overflows: %q", i, q.Text())
		}
	}
	if got := strings.Join(pageTexts(e), ""); got != original {
		t.Errorf("text after reflow = %q, want %q", got, original)
	}
	if e.PageCount() != 4 {
		t.Errorf("PageCount() = %d, want 4", e.PageCount())
	}
}

func TestCheckOverflowMovesElementWhole(t *testing.T) {
	e := New(lengthMeasurer(10))
	p := e.Active()
	e.AppendText(p, "abc")
	img := e.Arena().NewElement("img", nil, "")
	img.SetSize(40, 20)
	e.Insert(p, -1, img)

	e.CheckOverflow(p)

	pages := e.Pages()
	if len(pages) != 2 {
		t.Fatalf("PageCount() = %d, want 2", len(pages))
	}
	if pages[0].Text() != "abc" || pages[0].Len() != 1 {
		t.Errorf("first page = %v, want only \"abc\"", pages[0].Nodes())
	}
	if pages[1].Len() != 1 || pages[1].Nodes()[0] != img {
		t.Errorf("second page = %v, want the image node unmodified", pages[1].Nodes())
	}
	if img.Width != 40 || img.Height != 20 {
		t.Errorf("image resized to %dx%d during migration", img.Width, img.Height)
	}

	// The destination still overflows but has nothing worth migrating.
	e.CheckOverflow(pages[1])
	if e.PageCount() != 2 {
		t.Errorf("PageCount() after destination check = %d, want 2", e.PageCount())
	}
}

func TestCheckOverflowOversizedSoleElement(t *testing.T) {
	logger := &recordingLogger{}
	e := New(lengthMeasurer(10), WithLogger(logger))
	p := e.Active()
	table := e.Arena().NewElement("table", nil, "<tr><td>x</td></tr>")
	table.SetSize(100, 50)
	e.Insert(p, 0, table)

	e.CheckOverflow(p)
	e.Reflow()

	if e.PageCount() != 1 {
		t.Errorf("PageCount() = %d, want 1", e.PageCount())
	}
	if len(logger.messages) == 0 || logger.messages[0] != "overflow stall" {
		t.Errorf("logger messages = %v, want overflow stall", logger.messages)
	}
}

func TestCheckOverflowStallsOnInconsistentMeasure(t *testing.T) {
	always := MeasureFunc(func(*Page) Metrics {
		return Metrics{ContentSize: 2, Capacity: 1}
	})
	e := New(always)

	// Empty page: nothing to migrate, no page created.
	e.CheckOverflow(e.Active())
	if e.PageCount() != 1 {
		t.Fatalf("PageCount() = %d, want 1", e.PageCount())
	}

	p := e.Active()
	e.AppendText(p, "ab")
	e.CheckOverflow(p)

	if got := pageTexts(e); strings.Join(got, "|") != "a|b" {
		t.Errorf("pages = %q, want [a b]", got)
	}
}

func TestCheckOverflowDropsEmptyTextRun(t *testing.T) {
	e := New(lengthMeasurer(3))
	p := e.Active()
	e.AppendText(p, "abcd")
	empty := e.Arena().NewText("")
	e.Insert(p, -1, empty)

	e.CheckOverflow(p)

	if _, ok := e.Node(empty.ID); ok {
		t.Error("empty text run was migrated instead of dropped")
	}
	if got := strings.Join(pageTexts(e), "|"); got != "ab|cd" {
		t.Errorf("pages = %q, want ab|cd", got)
	}
}

func TestCheckOverflowProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		capacity := 1 + rng.Intn(20)
		m := lengthMeasurer(capacity)
		e := New(m)
		p := e.Active()

		var want strings.Builder
		count := 1 + rng.Intn(6)
		for i := 0; i < count; i++ {
			if rng.Intn(3) == 0 {
				el := e.Arena().NewElement("img", nil, "")
				el.SetSize(10, rng.Intn(2*capacity))
				e.Insert(p, -1, el)
				continue
			}
			text := strings.Repeat(string(rune('a'+i)), rng.Intn(40))
			e.Insert(p, -1, e.Arena().NewText(text))
			want.WriteString(text)
		}

		e.CheckOverflow(p)

		if m(p).Overflows() && p.migratable() {
			t.Fatalf("iter %d: page still overflows with migratable content: %v", iter, p.Nodes())
		}
		if got := strings.Join(pageTexts(e), ""); got != want.String() {
			t.Fatalf("iter %d: text = %q, want %q", iter, got, want.String())
		}
	}
}

func TestLoadRoundTrip(t *testing.T) {
	e := New(lengthMeasurer(100))
	serialized := strings.Join([]string{
		"first <b>page</b>",
		`<img src="x.png" style="width: 50px; height: 30px">`,
		"<br>",
	}, PageBreak)

	if err := e.Load(serialized); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if e.PageCount() != 3 {
		t.Fatalf("PageCount() = %d, want 3", e.PageCount())
	}
	if got := e.DocumentContent(); got != serialized {
		t.Errorf("DocumentContent() = %q, want %q", got, serialized)
	}
	if e.Active() != e.Pages()[0] {
		t.Error("first loaded page should be active")
	}

	if err := e.Load(""); err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if e.PageCount() != 1 || e.DocumentContent() != "<br>" {
		t.Errorf("Load(\"\") = %d pages %q, want one empty page", e.PageCount(), e.DocumentContent())
	}
}

func TestReset(t *testing.T) {
	e := New(lengthMeasurer(100))
	e.AppendText(e.Active(), "hello")
	e.CreatePage(nil)

	e.Reset()

	if e.PageCount() != 1 {
		t.Errorf("PageCount() = %d, want 1", e.PageCount())
	}
	if e.DocumentContent() != "<br>" {
		t.Errorf("DocumentContent() = %q, want <br>", e.DocumentContent())
	}
	if e.Arena().Len() != 0 {
		t.Errorf("arena holds %d nodes after reset", e.Arena().Len())
	}
}

func TestFindReplace(t *testing.T) {
	e := New(lengthMeasurer(100))
	e.AppendText(e.Active(), "the cat sat")
	e.AppendText(e.CreatePage(nil), "cat nap")

	if got := e.FindReplace("cat", "dog"); got != 2 {
		t.Errorf("FindReplace() = %d, want 2", got)
	}
	if got := e.DocumentContent(); got != "the dog sat"+PageBreak+"dog nap" {
		t.Errorf("DocumentContent() = %q", got)
	}
}

func TestRemoveAndLocate(t *testing.T) {
	e := New(lengthMeasurer(100))
	p := e.Active()
	n := e.AppendText(p, "x")
	img := e.Insert(p, -1, e.Arena().NewElement("img", nil, ""))

	if got, idx := e.Locate(img.ID); got != p || idx != 1 {
		t.Errorf("Locate() = (%v, %d), want (page %d, 1)", got, idx, p.ID)
	}
	if !e.Remove(n.ID) {
		t.Fatal("Remove() = false")
	}
	if e.Remove(n.ID) {
		t.Error("second Remove() = true")
	}
	if _, idx := e.Locate(img.ID); idx != 0 {
		t.Errorf("image index after removal = %d, want 0", idx)
	}
}

func TestContentChangedEvent(t *testing.T) {
	bus := event.NewBus()
	e := New(lengthMeasurer(4), WithPublisher(bus))

	created := 0
	bus.Subscribe(event.TopicPageCreated, func(ctx context.Context, ev event.Event) error {
		created++
		return nil
	})
	bus.Subscribe(event.TopicContentChanged, e.HandleContentChanged)

	p := e.Active()
	e.AppendText(p, "abcdefgh")
	if err := bus.Publish(context.Background(), event.Event{Topic: event.TopicContentChanged, Payload: p}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if e.PageCount() != 2 {
		t.Errorf("PageCount() = %d, want 2", e.PageCount())
	}
	if created != 1 {
		t.Errorf("page.created published %d times, want 1", created)
	}

	err := bus.Publish(context.Background(), event.Event{Topic: event.TopicContentChanged, Payload: "nope"})
	if err == nil {
		t.Error("Publish() with bad payload returned nil error")
	}
}

func ExampleEngine_DocumentContent() {
	e := New(MeasureFunc(func(*Page) Metrics { return Metrics{} }))
	e.AppendText(e.Active(), "one")
	e.AppendText(e.CreatePage(nil), "two")
	fmt.Printf("%q\n", e.DocumentContent())
	// Output: "one\n\n---PAGE BREAK---\n\ntwo"
}

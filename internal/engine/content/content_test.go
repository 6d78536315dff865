package content

import (
	"strings"
	"testing"
)

func TestSplitMidpoint(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantLeft  string
		wantRight string
	}{
		{"empty", "", "", ""},
		{"single", "a", "", "a"},
		{"even", "abcd", "ab", "cd"},
		{"odd", "abcde", "ab", "cde"},
		{"accented", "héllo", "hé", "llo"},
		{"combining", "ééé", "é", "éé"},
		{"emoji", "👍🏽👍🏽", "👍🏽", "👍🏽"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := SplitMidpoint(tt.text)
			if left != tt.wantLeft || right != tt.wantRight {
				t.Errorf("SplitMidpoint(%q) = (%q, %q), want (%q, %q)", tt.text, left, right, tt.wantLeft, tt.wantRight)
			}
			if left+right != tt.text {
				t.Errorf("SplitMidpoint(%q) halves do not reproduce the input", tt.text)
			}
		})
	}
}

func TestSplitMidpointLengths(t *testing.T) {
	for l := 0; l <= 33; l++ {
		text := strings.Repeat("x", l)
		left, right := SplitMidpoint(text)
		if GraphemeLen(left) != l/2 {
			t.Errorf("len %d: left len = %d, want %d", l, GraphemeLen(left), l/2)
		}
		if GraphemeLen(right) != l-l/2 {
			t.Errorf("len %d: right len = %d, want %d", l, GraphemeLen(right), l-l/2)
		}
	}
}

func TestSplitAtBeyondEnd(t *testing.T) {
	left, right := SplitAt("abc", 10)
	if left != "abc" || right != "" {
		t.Errorf("SplitAt past end = (%q, %q), want (\"abc\", \"\")", left, right)
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"   ", 0},
		{"<br>", 0},
		{"  a  b ", 2},
		{"hello world", 2},
		{"<b>bold</b>text", 2},
		{"one<br>two three", 3},
		{"<p>a</p><p>b c</p>", 3},
	}

	for _, tt := range tests {
		if got := WordCount(tt.content); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestParseRender(t *testing.T) {
	a := NewArena()
	nodes, err := Parse(a, `Hello <b>world</b><img src="a.png" style="width: 120px; height: 80px; border: 0">tail`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(nodes) != 4 {
		t.Fatalf("Parse() returned %d nodes, want 4", len(nodes))
	}

	if !nodes[0].IsText() || nodes[0].Text != "Hello " {
		t.Errorf("nodes[0] = %v, want text \"Hello \"", nodes[0])
	}
	if nodes[1].Tag != "b" || nodes[1].Inner != "world" {
		t.Errorf("nodes[1] = %v, want <b>world</b>", nodes[1])
	}
	img := nodes[2]
	if !img.Resizable() {
		t.Error("img should be resizable")
	}
	if img.Width != 120 || img.Height != 80 {
		t.Errorf("img size = %dx%d, want 120x80", img.Width, img.Height)
	}
	if style, _ := img.Attr("style"); style != "border: 0" {
		t.Errorf("img style = %q, want %q", style, "border: 0")
	}

	img.SetSize(200, 100)
	want := `Hello <b>world</b><img src="a.png" style="border: 0; width: 200px; height: 100px">tail`
	if got := Render(nodes); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestParseEmpty(t *testing.T) {
	a := NewArena()
	for _, fragment := range []string{"", "<br>", "<br/>"} {
		nodes, err := Parse(a, fragment)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", fragment, err)
		}
		if len(nodes) != 0 {
			t.Errorf("Parse(%q) = %d nodes, want 0", fragment, len(nodes))
		}
	}
	if got := Render(nil); got != EmptyPageHTML {
		t.Errorf("Render(nil) = %q, want %q", got, EmptyPageHTML)
	}
}

func TestRenderEscapesText(t *testing.T) {
	a := NewArena()
	n := a.NewText("a < b & c")
	if got := Render([]*Node{n}); got != "a &lt; b &amp; c" {
		t.Errorf("Render() = %q", got)
	}
}

func TestRenderKeepsQuotes(t *testing.T) {
	tests := []string{
		`it's`,
		`say "hi"`,
		`<b>bold</b> and it's not`,
		`a &amp; b`,
	}
	for _, fragment := range tests {
		nodes, err := Parse(NewArena(), fragment)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", fragment, err)
		}
		if got := Render(nodes); got != fragment {
			t.Errorf("Render(Parse(%q)) = %q", fragment, got)
		}
	}
}

func TestRenderSizedWithoutStyle(t *testing.T) {
	a := NewArena()
	n := a.NewElement("table", nil, "<tr><td>x</td></tr>")
	n.SetSize(300, 60)
	want := `<table style="width: 300px; height: 60px"><tr><td>x</td></tr></table>`
	if got := n.HTML(); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestReplaceText(t *testing.T) {
	a := NewArena()
	nodes := []*Node{
		a.NewText("cat and cat"),
		a.NewElement("span", nil, "cat"),
		a.NewText("concatenate"),
	}

	if got := ReplaceText(nodes, "cat", "dog"); got != 3 {
		t.Errorf("ReplaceText() = %d, want 3", got)
	}
	if nodes[0].Text != "dog and dog" {
		t.Errorf("nodes[0].Text = %q", nodes[0].Text)
	}
	if nodes[1].Inner != "cat" {
		t.Errorf("element markup was modified: %q", nodes[1].Inner)
	}
	if nodes[2].Text != "condogenate" {
		t.Errorf("nodes[2].Text = %q", nodes[2].Text)
	}
	if got := ReplaceText(nodes, "", "x"); got != 0 {
		t.Errorf("ReplaceText with empty find = %d, want 0", got)
	}
}

func TestReplaceTextNormalizes(t *testing.T) {
	a := NewArena()
	nodes := []*Node{a.NewText("cafe\u0301")}
	if got := ReplaceText(nodes, "caf\u00e9", "tea"); got != 1 {
		t.Errorf("ReplaceText() = %d, want 1", got)
	}
	if nodes[0].Text != "tea" {
		t.Errorf("Text = %q, want %q", nodes[0].Text, "tea")
	}
}

func TestArena(t *testing.T) {
	a := NewArena()
	n1 := a.NewText("x")
	n2 := a.NewElement("img", nil, "")
	if n1.ID == n2.ID {
		t.Fatal("arena reused an id")
	}
	if got, ok := a.Get(n2.ID); !ok || got != n2 {
		t.Error("Get() did not resolve allocated node")
	}
	a.Release(n1.ID)
	if _, ok := a.Get(n1.ID); ok {
		t.Error("released node still resolvable")
	}
	n3 := a.Adopt(n2)
	if n3.ID == n1.ID || n3.ID == n2.ID {
		t.Errorf("Adopt() id %d collides", n3.ID)
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
}

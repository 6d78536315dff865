package export

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWordDoc(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "document.doc"},
		{"report", "report.doc"},
		{"Report.DOC", "Report.DOC"},
		{"../../etc/x", "x.doc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := WordDoc(tt.name, "<p>hi</p>")
			if a.Name != tt.want {
				t.Errorf("Name = %q, want %q", a.Name, tt.want)
			}
			if a.MIMEType != MIMEWord || string(a.Body) != "<p>hi</p>" {
				t.Errorf("WordDoc() = %+v", a)
			}
		})
	}
}

func TestHTMLDownload(t *testing.T) {
	a := HTMLDownload("x")
	if a.Name != "document.html" || a.MIMEType != MIMEHTML {
		t.Errorf("HTMLDownload() = %+v", a)
	}
}

func TestSize(t *testing.T) {
	a := Artifact{Body: make([]byte, 1200)}
	if got := a.Size(); got != "1.2 kB" {
		t.Errorf("Size() = %q, want 1.2 kB", got)
	}
}

func TestPrintPage(t *testing.T) {
	a, err := PrintPage(context.Background(), "<p>one</p>\n\n---PAGE BREAK---\n\n<p>two</p>")
	if err != nil {
		t.Fatalf("PrintPage() error = %v", err)
	}
	got := string(a.Body)
	for _, want := range []string{
		"<title>Document PDF</title>",
		"<body><p>one</p>",
		"window.print()",
		"</body></html>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("PrintPage() missing %q in %q", want, got)
		}
	}
}

func TestPreviewPage(t *testing.T) {
	a, err := PreviewPage(context.Background(), "<Notes>", []string{"<p>a</p>", "<br>"})
	if err != nil {
		t.Fatalf("PreviewPage() error = %v", err)
	}
	got := string(a.Body)
	if !strings.Contains(got, "<title>&lt;Notes&gt;</title>") {
		t.Errorf("title not escaped: %q", got)
	}
	if strings.Count(got, `class="page"`) != 2 {
		t.Errorf("want 2 sheets in %q", got)
	}
	if !strings.Contains(got, `<section class="page" data-page="2"><br></section>`) {
		t.Errorf("second sheet missing: %q", got)
	}
	if strings.Contains(got, "window.print") {
		t.Error("preview must not print")
	}
}

func TestMailtoURL(t *testing.T) {
	got := MailtoURL("", "a & b=c\nd")
	if !strings.HasPrefix(got, "mailto:?subject=My%20Document&body=") {
		t.Fatalf("MailtoURL() = %q", got)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatal(err)
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		t.Fatal(err)
	}
	if q.Get("body") != "a & b=c\nd" || q.Get("subject") != "My Document" {
		t.Errorf("decoded query = %v", q)
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteFile(dir, WordDoc("memo", "body"))
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if path != filepath.Join(dir, "memo.doc") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "body" {
		t.Errorf("file = %q, %v", data, err)
	}
}

func TestWriteTo(t *testing.T) {
	var sb strings.Builder
	n, err := HTMLDownload("abc").WriteTo(&sb)
	if err != nil || n != 3 || sb.String() != "abc" {
		t.Errorf("WriteTo() = %d, %v, %q", n, err, sb.String())
	}
}

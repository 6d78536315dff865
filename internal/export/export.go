// Package export turns serialized document content into files and URLs
// for other programs: Word-compatible documents, standalone HTML,
// printable pages and mail drafts.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
)

// Default names used when the caller gives none.
const (
	DefaultName    = "document"
	DefaultSubject = "My Document"
	PrintTitle     = "Document PDF"
)

// MIME types of the produced artifacts.
const (
	MIMEWord = "application/msword"
	MIMEHTML = "text/html"
)

// Artifact is a named file ready to be written or handed to a viewer.
type Artifact struct {
	Name     string
	MIMEType string
	Body     []byte
}

// Size returns the body size in human-readable form, such as "1.2 kB".
func (a Artifact) Size() string {
	return humanize.Bytes(uint64(len(a.Body)))
}

// WordDoc wraps content as a .doc file. Word opens HTML saved under the
// msword type, so the content is written as-is.
func WordDoc(name, content string) Artifact {
	return Artifact{
		Name:     fileName(name, ".doc"),
		MIMEType: MIMEWord,
		Body:     []byte(content),
	}
}

// HTMLDownload wraps content as document.html.
func HTMLDownload(content string) Artifact {
	return Artifact{
		Name:     DefaultName + ".html",
		MIMEType: MIMEHTML,
		Body:     []byte(content),
	}
}

// PrintPage renders content into a page that opens the print dialog when
// loaded.
func PrintPage(ctx context.Context, content string) (Artifact, error) {
	body, err := Render(ctx, Print(content))
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: "print.html", MIMEType: MIMEHTML, Body: body}, nil
}

// PreviewPage renders each page in its own sheet.
func PreviewPage(ctx context.Context, title string, pages []string) (Artifact, error) {
	body, err := Render(ctx, Preview(title, pages))
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: "preview.html", MIMEType: MIMEHTML, Body: body}, nil
}

// Render writes c into a byte slice.
func Render(ctx context.Context, c templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// MailtoURL returns a mailto link with the given subject and body, both
// percent-encoded. An empty subject uses DefaultSubject.
func MailtoURL(subject, body string) string {
	if subject == "" {
		subject = DefaultSubject
	}
	return "mailto:?subject=" + encodeComponent(subject) + "&body=" + encodeComponent(body)
}

// encodeComponent escapes s for use as one query value. Spaces become %20
// since mail clients do not decode "+".
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// WriteFile writes a into dir and returns the written path.
func WriteFile(dir string, a Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(a.Name))
	if err := os.WriteFile(path, a.Body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", a.Name, err)
	}
	return path, nil
}

// WriteTo writes the artifact body to w.
func (a Artifact) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.Body)
	return int64(n), err
}

func fileName(name, ext string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	name = filepath.Base(name)
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return name
}

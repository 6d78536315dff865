package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/folio/internal/engine/pagination"
)

func TestRunPaginate(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 40)
	var stdout, stderr bytes.Buffer

	code := runPaginate([]string{"-width", "200", "-height", "40"}, strings.NewReader(text), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("runPaginate() = %d, stderr %q", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), pagination.PageBreak) {
		t.Errorf("output has no page break: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), " words") {
		t.Errorf("stderr = %q, want word count", stderr.String())
	}

	joined := strings.ReplaceAll(strings.TrimSuffix(stdout.String(), "\n"), pagination.PageBreak, "")
	if joined != text {
		t.Error("pagination lost or changed text")
	}
}

func TestRunPaginateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.html")
	if err := os.WriteFile(path, []byte("<b>short</b>"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := runPaginate([]string{path}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("runPaginate() = %d, stderr %q", code, stderr.String())
	}
	if got := stdout.String(); got != "<b>short</b>\n" {
		t.Errorf("output = %q", got)
	}
	if !strings.HasPrefix(stderr.String(), "1 pages") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunPaginateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"bad flag", []string{"-nope"}, 2},
		{"zero width", []string{"-width", "0"}, 2},
		{"missing file", []string{filepath.Join(t.TempDir(), "missing.html")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := runPaginate(tt.args, strings.NewReader(""), &stdout, &stderr); got != tt.want {
				t.Errorf("runPaginate() = %d, want %d", got, tt.want)
			}
		})
	}
}

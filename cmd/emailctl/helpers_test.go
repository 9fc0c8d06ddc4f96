package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/rfc822"
)

func TestParseDateRange(t *testing.T) {
	r, err := parseDateRange("2024-01-01T00:00:00Z", "2024-02-01T00:00:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || !r.End.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected range: %+v", r)
	}

	if _, err := parseDateRange("yesterday", ""); err == nil {
		t.Error("expected error for invalid --since")
	}
}

func TestReadAttachments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := readAttachments([]string{path}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(got))
	}
	a := got[0]
	if a.FileName != "report.pdf" || a.MimeType != "application/pdf" || !a.Inline || a.ContentID != "report.pdf" {
		t.Errorf("unexpected attachment: %+v", a)
	}

	if _, err := readAttachments([]string{filepath.Join(dir, "missing")}, false); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestListInput(t *testing.T) {
	in := listInput(0, "")
	if in.Limit != nil || in.NextToken != nil {
		t.Errorf("expected empty input, got %+v", in)
	}
	in = listInput(10, "tok")
	if *in.Limit != 10 || *in.NextToken != "tok" {
		t.Errorf("unexpected input: %+v", in)
	}
}

func TestPrintParsed(t *testing.T) {
	data, err := rfc822.Build(&rfc822.Message{
		From:    domain.EmailMessageAddress{EmailAddress: "alice@example.com"},
		To:      []domain.EmailMessageAddress{{EmailAddress: "bob@example.com"}},
		Subject: "report",
		Body:    "see inline chart",
		InlineAttachments: []domain.EmailAttachment{
			{FileName: "chart.png", ContentID: "chart", MimeType: "image/png", Inline: true, Data: []byte{0x89, 0x50}},
		},
		Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output = ""
	var buf bytes.Buffer
	if err := printParsed(&buf, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()
	for _, want := range []string{"alice@example.com", "bob@example.com", "Subject: report", "[inline] chart.png (image/png, 2 bytes)", "see inline chart"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

package hashfile

import "testing"

func TestQuoteUnquoteRoundTrip(t *testing.T) {
	names := []string{
		"plain.txt",
		`has "quotes".txt`,
		"has\ttab.txt",
		"has\\backslash.txt",
		"has\nnewline.txt",
		"has\rcarriage.txt",
		"mix \"of\\ all\tkinds\n\r.bin",
	}
	for _, name := range names {
		quoted := quoteFilename(name)
		got, err := unquoteFilename(quoted)
		if err != nil {
			t.Fatalf("unquoteFilename(%q): %v", quoted, err)
		}
		if got != name {
			t.Errorf("round trip: expected %q, got %q (via %q)", name, got, quoted)
		}
	}
}

func TestUnquoteRejectsUnknownEscape(t *testing.T) {
	if _, err := unquoteFilename(`"bad\qescape"`); err == nil {
		t.Error("expected an error for an unrecognized escape sequence")
	}
}

func TestUnquoteRejectsMissingQuotes(t *testing.T) {
	if _, err := unquoteFilename(`not quoted`); err == nil {
		t.Error("expected an error for an unquoted string")
	}
}

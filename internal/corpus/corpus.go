// Package corpus loads and cleans the cover-corpus text consumed by the
// n-gram model (spec §4.4, §6). Cleaning is the external caller's
// responsibility per spec §1's scope note — this package is that caller,
// kept outside the codec core so the core's invertibility contract never
// depends on how a corpus file reached it.
package corpus

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Format selects how a corpus file is interpreted before cleaning.
type Format int

const (
	// Auto sniffs the file: if it contains an <html, <body or <p> tag
	// (case-insensitive), the HTML branch runs; otherwise it's treated as
	// plain text.
	Auto Format = iota
	Text
	HTML
)

// ParseFormat maps a CLI flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "text":
		return Text, nil
	case "html":
		return HTML, nil
	default:
		return Auto, fmt.Errorf("corpus: unknown format %q (want auto, text, or html)", s)
	}
}

// Load reads path and returns the cleaned corpus text ready for
// ngram.Build.
func Load(path string, format Format) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("corpus: opening %s: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("corpus: reading %s: %w", path, err)
	}

	text := string(raw)
	switch format {
	case HTML:
		text, err = stripHTML(text)
		if err != nil {
			return "", fmt.Errorf("corpus: stripping HTML from %s: %w", path, err)
		}
	case Auto:
		if looksLikeHTML(text) {
			stripped, err := stripHTML(text)
			if err == nil {
				text = stripped
			}
		}
	}

	return Clean(text), nil
}

// looksLikeHTML is a cheap sniff: real corpora for this codec are prose, so
// only content with actual markup structure should go through the HTML
// path.
func looksLikeHTML(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body") || strings.Contains(lower, "<p>")
}

// stripHTML extracts the visible text of an HTML document using goquery,
// discarding markup, scripts, and styles.
func stripHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	return doc.Text(), nil
}

// Clean implements spec §4.4's corpus pre-cleaning exactly: lowercase;
// strip carriage returns; surround newlines with spaces; strip quote
// characters; turn hyphens into spaces; surround standalone-token
// punctuation with spaces; prefix the result with ". ".
func Clean(raw string) string {
	s := strings.ToLower(raw)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " \n ")
	s = strings.ReplaceAll(s, "\"", "")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "-", " ")

	var b strings.Builder
	for _, r := range s {
		switch r {
		case ',', '!', '?', ';', ':', '.':
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	return ". " + b.String()
}

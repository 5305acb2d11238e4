package services

import (
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildApplicationURLEncodesTitle(t *testing.T) {
	got := BuildApplicationURL("Bund.de", "Projektsteuerung Neubau Schule")

	if !strings.HasPrefix(got, "https://www.service.bund.de/Content/DE/Ausschreibungen/Suche/Ergebnis.html?searchText=") {
		t.Errorf("Unexpected URL prefix: %s", got)
	}
	if !strings.Contains(got, "Projektsteuerung+Neubau+Schule") {
		t.Errorf("Expected encoded title in URL, got %s", got)
	}
}

func TestBuildApplicationURLCapsTitleLength(t *testing.T) {
	longTitle := strings.Repeat("a", 200)

	got := BuildApplicationURL("TED Europa", longTitle)

	if strings.Contains(got, strings.Repeat("a", 81)) {
		t.Errorf("Title was not capped at 80 characters: %s", got)
	}
	if !strings.Contains(got, strings.Repeat("a", 80)) {
		t.Errorf("Expected capped title in URL: %s", got)
	}
}

func TestBuildApplicationURLTruncatesOnRuneBoundary(t *testing.T) {
	longTitle := strings.Repeat("ü", 100)

	got := BuildApplicationURL("TED Europa", longTitle)

	decoded, err := url.QueryUnescape(got[strings.Index(got, "=")+1:])
	if err != nil {
		t.Fatalf("URL query did not decode cleanly: %v", err)
	}
	if !utf8.ValidString(decoded) {
		t.Errorf("Truncated title is not valid UTF-8: %q", decoded)
	}
	if n := len([]rune(decoded)); n != 80 {
		t.Errorf("Expected 80 runes after truncation, got %d", n)
	}
}

func TestBuildApplicationURLUnknownPlatformFallsBack(t *testing.T) {
	got := BuildApplicationURL("Unbekanntes Portal", "Irgendein Titel")

	if got != defaultApplicationURL {
		t.Errorf("Expected default search URL, got %s", got)
	}
}

func TestBuildApplicationURLSwissPortal(t *testing.T) {
	got := BuildApplicationURL("simap.ch", "Gesamtleitung Spital")

	if !strings.HasPrefix(got, "https://www.simap.ch/") {
		t.Errorf("Expected simap.ch URL, got %s", got)
	}
}

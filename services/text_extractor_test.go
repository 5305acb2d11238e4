package services

import (
	"strings"
	"testing"
	"time"
)

func TestExtractDeadlineParsesGermanDate(t *testing.T) {
	extractor := NewTextExtractor(nil)

	deadline := extractor.ExtractDeadline("Frist: 15.03.2026", 30*24*time.Hour)

	if deadline.Year() != 2026 || deadline.Month() != time.March || deadline.Day() != 15 {
		t.Errorf("Expected 2026-03-15, got %v", deadline)
	}
}

func TestExtractDeadlineParsesTwoDigitYear(t *testing.T) {
	extractor := NewTextExtractor(nil)

	deadline := extractor.ExtractDeadline("Abgabe bis 1.12.26", 30*24*time.Hour)

	if deadline.Year() != 2026 || deadline.Month() != time.December || deadline.Day() != 1 {
		t.Errorf("Expected 2026-12-01, got %v", deadline)
	}
}

func TestExtractDeadlineParsesISODate(t *testing.T) {
	extractor := NewTextExtractor(nil)

	// TED delivers deadlines like "2026-03-15+01:00"
	deadline := extractor.ExtractDeadline("2026-03-15+01:00", 30*24*time.Hour)

	if deadline.Year() != 2026 || deadline.Month() != time.March || deadline.Day() != 15 {
		t.Errorf("Expected 2026-03-15, got %v", deadline)
	}
}

func TestExtractDeadlineDefaultsWhenNoDateFound(t *testing.T) {
	extractor := NewTextExtractor(nil)
	offset := 30 * 24 * time.Hour

	before := time.Now().Add(offset)
	deadline := extractor.ExtractDeadline("Siehe Vergabeunterlagen", offset)
	after := time.Now().Add(offset)

	if deadline.Before(before) || deadline.After(after) {
		t.Errorf("Default deadline %v not within expected window [%v, %v]", deadline, before, after)
	}
}

func TestExtractBudgetFindsEuroAmount(t *testing.T) {
	extractor := NewTextExtractor(nil)

	budget := extractor.ExtractBudget("Auftragswert: 2.500.000 EUR netto")

	if budget == nil {
		t.Fatal("Expected budget to be extracted")
	}
	if !strings.Contains(*budget, "2.500.000") {
		t.Errorf("Expected amount with German separators, got %q", *budget)
	}
}

func TestExtractBudgetFindsSwissFrancs(t *testing.T) {
	extractor := NewTextExtractor(nil)

	budget := extractor.ExtractBudget("Kostendach CHF 1'200'000 exkl. MWST")

	if budget == nil {
		t.Fatal("Expected budget to be extracted")
	}
	if !strings.Contains(*budget, "CHF") {
		t.Errorf("Expected CHF amount, got %q", *budget)
	}
}

func TestExtractBudgetReturnsNilWithoutAmount(t *testing.T) {
	extractor := NewTextExtractor(nil)

	if budget := extractor.ExtractBudget("Neubau einer Grundschule in Pankow"); budget != nil {
		t.Errorf("Expected nil budget, got %q", *budget)
	}
}

func TestNormalizeBudgetCompactForms(t *testing.T) {
	extractor := NewTextExtractor(nil)

	cases := []struct {
		raw      string
		expected string
	}{
		{"2.500.000 EUR", "€2.5M"},
		{"850.000 €", "€850K"},
		{"500 Euro", "€500"},
	}

	for _, tc := range cases {
		if got := extractor.NormalizeBudget(tc.raw); got != tc.expected {
			t.Errorf("NormalizeBudget(%q) = %q, expected %q", tc.raw, got, tc.expected)
		}
	}
}

func TestExtractDeveloperBudgetMillions(t *testing.T) {
	extractor := NewTextExtractor(nil)

	budget := extractor.ExtractDeveloperBudget("Das Projektvolumen beträgt 250 Mio. Euro")

	if budget == nil {
		t.Fatal("Expected developer budget to be extracted")
	}
	if *budget != "€250 Mio." {
		t.Errorf("Expected €250 Mio., got %q", *budget)
	}
}

func TestExtractTimelineFromYearRange(t *testing.T) {
	extractor := NewTextExtractor(nil)

	timeline := extractor.ExtractTimeline("Baubeginn 2026, Fertigstellung 2029")

	if timeline.StartDate == nil || timeline.CompletionDate == nil {
		t.Fatal("Expected start and completion dates")
	}
	if timeline.StartDate.Year() != 2026 {
		t.Errorf("Expected start year 2026, got %d", timeline.StartDate.Year())
	}
	if timeline.CompletionDate.Year() != 2029 {
		t.Errorf("Expected completion year 2029, got %d", timeline.CompletionDate.Year())
	}
}

func TestExtractTimelineSingleYearSpansThree(t *testing.T) {
	extractor := NewTextExtractor(nil)

	timeline := extractor.ExtractTimeline("Geplanter Baustart 2027")

	if timeline.StartDate == nil || timeline.CompletionDate == nil {
		t.Fatal("Expected start and completion dates")
	}
	if timeline.StartDate.Year() != 2027 || timeline.CompletionDate.Year() != 2029 {
		t.Errorf("Expected 2027..2029, got %d..%d",
			timeline.StartDate.Year(), timeline.CompletionDate.Year())
	}
}

func TestExtractTimelinePhaseDetection(t *testing.T) {
	extractor := NewTextExtractor(nil)

	timeline := extractor.ExtractTimeline("Die Baugenehmigung liegt vor, der Rohbau hat begonnen")

	var phases []string
	statuses := make(map[string]string)
	for _, p := range timeline.Phases {
		phases = append(phases, p.Phase)
		statuses[p.Phase] = p.Status
	}

	if len(phases) != 2 || phases[0] != "Genehmigung" || phases[1] != "Rohbau" {
		t.Fatalf("Expected [Genehmigung Rohbau], got %v", phases)
	}
	if statuses["Genehmigung"] != "ongoing" {
		t.Errorf("Expected Genehmigung ongoing, got %s", statuses["Genehmigung"])
	}
	if statuses["Rohbau"] != "pending" {
		t.Errorf("Expected Rohbau pending, got %s", statuses["Rohbau"])
	}
}

func TestExtractTimelineDefaultPhases(t *testing.T) {
	extractor := NewTextExtractor(nil)

	timeline := extractor.ExtractTimeline("Neues Quartier an der Spree")

	if len(timeline.Phases) != 4 {
		t.Fatalf("Expected 4 default phases, got %d", len(timeline.Phases))
	}
	if timeline.Phases[0].Phase != "Planung" || timeline.Phases[0].Status != "ongoing" || timeline.Phases[0].Progress != 50 {
		t.Errorf("Unexpected first default phase: %+v", timeline.Phases[0])
	}
}

func TestDetectRegion(t *testing.T) {
	extractor := NewTextExtractor(nil)

	cases := []struct {
		text     string
		expected string
	}{
		{"Neubau Feuerwache in Dortmund", "Nordrhein-Westfalen"},
		{"neubau in köln, projektsteuerung", "Nordrhein-Westfalen"},
		{"Logistikzentrum im ruhrgebiet", "Nordrhein-Westfalen"},
		{"Schulcampus Potsdam West", "Brandenburg"},
		{"Sanierung Rathaus Spandau", "Berlin"},
		{"sanierung rathaus spandau", "Berlin"},
		{"Klinikneubau in München", ""},
	}

	for _, tc := range cases {
		if got := extractor.DetectRegion(tc.text); got != tc.expected {
			t.Errorf("DetectRegion(%q) = %q, expected %q", tc.text, got, tc.expected)
		}
	}
}

package services

import (
	"testing"
	"time"
)

func TestGenerateSourceIDIsStable(t *testing.T) {
	deadline := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	first := GenerateSourceID("Projektsteuerung Neubau Schule", "Bund.de", deadline)
	second := GenerateSourceID("Projektsteuerung Neubau Schule", "Bund.de", deadline)

	if first != second {
		t.Errorf("Expected stable ID, got %s and %s", first, second)
	}
	if len(first) != 16 {
		t.Errorf("Expected 16 character ID, got %d", len(first))
	}
}

func TestGenerateSourceIDChangesWithDeadline(t *testing.T) {
	first := GenerateSourceID("Projektsteuerung Neubau Schule", "Bund.de",
		time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))
	second := GenerateSourceID("Projektsteuerung Neubau Schule", "Bund.de",
		time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC))

	if first == second {
		t.Error("Expected different IDs for different deadlines")
	}
}

func TestGenerateSourceIDIsTimezoneInsensitive(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	utc := time.Date(2026, time.March, 15, 11, 0, 0, 0, time.UTC)
	local := time.Date(2026, time.March, 15, 12, 0, 0, 0, berlin)

	if GenerateSourceID("a tender title here", "Bund.de", utc) != GenerateSourceID("a tender title here", "Bund.de", local) {
		t.Error("Expected identical IDs for the same instant in different zones")
	}
}

func TestGenerateTitleSourceIDNormalizes(t *testing.T) {
	first := GenerateTitleSourceID("Projektsteuerung  Neubau   Schule!")
	second := GenerateTitleSourceID("projektsteuerung neubau schule")

	if first != second {
		t.Errorf("Expected normalized titles to collapse, got %s and %s", first, second)
	}
	if len(first) != 16 {
		t.Errorf("Expected 16 character ID, got %d", len(first))
	}
}

func TestGenerateTitleSourceIDDistinguishesTitles(t *testing.T) {
	if GenerateTitleSourceID("Neubau Schule Nord") == GenerateTitleSourceID("Neubau Schule Süd") {
		t.Error("Expected different titles to produce different IDs")
	}
}

package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovellows/tender-backend/models"
	"github.com/grovellows/tender-backend/shared"
)

// TextExtractor pulls structured fields out of free-form German tender and
// project announcement text. All extraction is best-effort: a miss returns
// the zero value (or a documented default) rather than an error.
type TextExtractor struct {
	logger  *logrus.Entry
	metrics *shared.ExtractionMetrics

	budgetPatterns          []*regexp.Regexp
	developerBudgetPatterns []*regexp.Regexp
	investmentPattern       *regexp.Regexp
	deadlinePatterns        []deadlinePattern
	yearPattern             *regexp.Regexp
}

type deadlinePattern struct {
	regex  *regexp.Regexp
	layout string
}

// budget patterns are tried in order, first match wins
var budgetPatternSources = []string{
	`(?i)(\d{1,3}(?:\.\d{3})*(?:,\d{2})?\s*(?:EUR|Euro|€))`,
	`(?i)(€\s*\d{1,3}(?:\.\d{3})*(?:,\d{2})?)`,
	`(?i)(\d{1,3}(?:\.\d{3})*(?:,\d{2})?\s*Mio\.?\s*(?:EUR|Euro|€)?)`,
	`(?i)(CHF\s*\d{1,3}(?:[',]\d{3})*(?:\.\d{2})?)`,
	`(?i)(\d{1,3}(?:[',]\d{3})*(?:\.\d{2})?\s*CHF)`,
}

var developerBudgetPatternSources = []string{
	`(?i)(\d+(?:[.,]\d+)?)\s*(?:Mio\.?|Million(?:en)?)\s*(?:EUR|Euro|€)`,
	`(?i)(\d+(?:[.,]\d+)?)\s*(?:Mrd\.?|Milliarde(?:n)?)\s*(?:EUR|Euro|€)`,
	`(?i)(?:EUR|Euro|€)\s*(\d+(?:[.,]\d+)?)\s*(?:Mio\.?|Million(?:en)?)`,
}

// timelinePhaseGroups maps construction phase names to the keywords that
// signal them, in presentation order.
var timelinePhaseGroups = []struct {
	Phase    string
	Keywords []string
}{
	{"Planung", []string{"planung", "geplant", "entwurf", "konzept"}},
	{"Genehmigung", []string{"genehmigung", "baugenehmigung", "genehmigt"}},
	{"Baustart", []string{"baustart", "baubeginn", "spatenstich", "grundsteinlegung"}},
	{"Rohbau", []string{"rohbau", "rohbauarbeiten"}},
	{"Innenausbau", []string{"innenausbau", "ausbau"}},
	{"Fertigstellung", []string{"fertigstellung", "fertiggestellt", "bezugsfertig", "übergabe"}},
}

// regionKeywords maps region names to the city and district names that place
// a tender there. Checked in order, first hit wins.
var regionKeywords = []struct {
	Region   string
	Keywords []string
}{
	{"Nordrhein-Westfalen", []string{
		"Düsseldorf", "Köln", "Dortmund", "Essen", "Duisburg", "Bochum",
		"Wuppertal", "Bielefeld", "Bonn", "Münster", "Gelsenkirchen",
		"Mönchengladbach", "Aachen", "Krefeld", "Oberhausen", "Hagen",
		"Hamm", "Mülheim", "Leverkusen", "Solingen", "Nordrhein-Westfalen",
		"NRW", "Ruhrgebiet",
	}},
	{"Brandenburg", []string{
		"Potsdam", "Cottbus", "Brandenburg an der Havel", "Frankfurt (Oder)",
		"Oranienburg", "Falkensee", "Bernau", "Eberswalde",
		"Königs Wusterhausen", "Brandenburg", "Spreewald", "Uckermark",
		"Barnim", "Havelland",
	}},
	{"Berlin", []string{
		"Berlin", "Berlin-Mitte", "Charlottenburg", "Kreuzberg",
		"Prenzlauer Berg", "Friedrichshain", "Neukölln", "Tempelhof",
		"Spandau", "Pankow",
	}},
}

// NewTextExtractor creates a text extractor with compiled patterns.
func NewTextExtractor(metrics *shared.ExtractionMetrics) *TextExtractor {
	e := &TextExtractor{
		logger:  logrus.WithField("component", "TextExtractor"),
		metrics: metrics,
	}

	for _, src := range budgetPatternSources {
		e.budgetPatterns = append(e.budgetPatterns, regexp.MustCompile(src))
	}
	for _, src := range developerBudgetPatternSources {
		e.developerBudgetPatterns = append(e.developerBudgetPatterns, regexp.MustCompile(src))
	}
	e.investmentPattern = regexp.MustCompile(`(?i)Investition(?:svolumen)?\s*(?:von|:)?\s*(\d+(?:[.,]\d+)?)\s*(?:Mio|Mrd)`)

	e.deadlinePatterns = []deadlinePattern{
		{regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{4}`), "2.1.2006"},
		{regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{2}`), "2.1.06"},
		// ISO dates as supplied by API sources like TED
		{regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), "2006-01-02"},
	}
	e.yearPattern = regexp.MustCompile(`20[2-3]\d`)

	return e
}

// ExtractBudget finds a monetary amount in text and returns it verbatim.
// Returns nil when no amount is found.
func (e *TextExtractor) ExtractBudget(text string) *string {
	for _, pattern := range e.budgetPatterns {
		if match := pattern.FindString(text); match != "" {
			budget := strings.TrimSpace(match)
			e.recordBudget(true)
			return &budget
		}
	}
	e.recordBudget(false)
	return nil
}

// ExtractDeveloperBudget finds large project volumes expressed in millions or
// billions and normalizes them to a compact form like "€250 Mio.".
func (e *TextExtractor) ExtractDeveloperBudget(text string) *string {
	for i, pattern := range e.developerBudgetPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			amount := strings.ReplaceAll(m[1], ",", ".")
			unit := "Mio."
			if i == 1 {
				unit = "Mrd."
			}
			budget := fmt.Sprintf("€%s %s", amount, unit)
			e.recordBudget(true)
			return &budget
		}
	}
	if m := e.investmentPattern.FindStringSubmatch(text); m != nil {
		amount := strings.ReplaceAll(m[1], ",", ".")
		unit := "Mio."
		if strings.Contains(strings.ToLower(m[0]), "mrd") {
			unit = "Mrd."
		}
		budget := fmt.Sprintf("€%s %s", amount, unit)
		e.recordBudget(true)
		return &budget
	}
	e.recordBudget(false)
	return nil
}

// NormalizeBudget parses a German-formatted amount string and renders it in
// compact form ("€2.5M", "€850K"). Returns the input unchanged when it cannot
// be parsed.
func (e *TextExtractor) NormalizeBudget(raw string) string {
	cleaned := raw
	for _, token := range []string{"EUR", "Euro", "€", "CHF"} {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	// German thousands separator, then decimal comma
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, "'", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return raw
	}

	switch {
	case value >= 1_000_000:
		return fmt.Sprintf("€%.1fM", value/1_000_000)
	case value >= 1_000:
		return fmt.Sprintf("€%.0fK", value/1_000)
	default:
		return fmt.Sprintf("€%.0f", value)
	}
}

// ExtractDeadline parses the first German-formatted date in text. When text
// contains no recognizable date the submission deadline defaults to
// defaultOffset from now.
func (e *TextExtractor) ExtractDeadline(text string, defaultOffset time.Duration) time.Time {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "bis ")
	cleaned = strings.TrimPrefix(cleaned, "Bis ")

	for _, dp := range e.deadlinePatterns {
		if match := dp.regex.FindString(cleaned); match != "" {
			if parsed, err := time.Parse(dp.layout, match); err == nil {
				e.recordDeadline(true)
				return parsed
			}
		}
	}

	e.recordDeadline(false)
	return time.Now().Add(defaultOffset)
}

// ExtractTimeline derives a project timeline from years and phase keywords
// mentioned in text.
func (e *TextExtractor) ExtractTimeline(text string) models.ProjectTimeline {
	lowered := strings.ToLower(text)
	e.recordTimeline(true)

	yearSet := make(map[int]bool)
	for _, match := range e.yearPattern.FindAllString(text, -1) {
		if year, err := strconv.Atoi(match); err == nil {
			yearSet[year] = true
		}
	}

	var years []int
	for year := range yearSet {
		years = append(years, year)
	}
	sort.Ints(years)

	var timeline models.ProjectTimeline
	switch {
	case len(years) >= 2:
		start := time.Date(years[0], time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(years[len(years)-1], time.December, 31, 0, 0, 0, 0, time.UTC)
		timeline.StartDate = &start
		timeline.CompletionDate = &end
	case len(years) == 1:
		start := time.Date(years[0], time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(years[0]+2, time.December, 31, 0, 0, 0, 0, time.UTC)
		timeline.StartDate = &start
		timeline.CompletionDate = &end
	}

	for _, group := range timelinePhaseGroups {
		for _, keyword := range group.Keywords {
			if strings.Contains(lowered, keyword) {
				status := "pending"
				if group.Phase == "Planung" || group.Phase == "Genehmigung" {
					status = "ongoing"
				}
				timeline.Phases = append(timeline.Phases, models.TimelinePhase{
					Phase:    group.Phase,
					Status:   status,
					Progress: 0,
				})
				break
			}
		}
	}

	if len(timeline.Phases) == 0 {
		timeline.Phases = []models.TimelinePhase{
			{Phase: "Planung", Status: "ongoing", Progress: 50},
			{Phase: "Genehmigung", Status: "pending", Progress: 0},
			{Phase: "Baustart", Status: "pending", Progress: 0},
			{Phase: "Fertigstellung", Status: "pending", Progress: 0},
		}
	}

	return timeline
}

// DetectRegion maps city and district mentions to a German region. Matching
// is case-insensitive. Returns an empty string when no known place name
// appears.
func (e *TextExtractor) DetectRegion(text string) string {
	lowered := strings.ToLower(text)
	for _, entry := range regionKeywords {
		for _, keyword := range entry.Keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return entry.Region
			}
		}
	}
	return ""
}

func (e *TextExtractor) recordBudget(success bool) {
	if e.metrics != nil {
		e.metrics.RecordBudgetAttempt(success)
	}
}

func (e *TextExtractor) recordDeadline(success bool) {
	if e.metrics != nil {
		e.metrics.RecordDeadlineAttempt(success)
	}
}

func (e *TextExtractor) recordTimeline(success bool) {
	if e.metrics != nil {
		e.metrics.RecordTimelineAttempt(success)
	}
}

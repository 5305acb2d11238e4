package services

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultServiceCategory is assigned when no service keyword matches.
const DefaultServiceCategory = "Projektmanagement"

type keywordCategory struct {
	Name     string
	Keywords []string
}

// serviceCategories maps construction consulting service lines to the German
// keywords that signal them. Order matters: the first category with a keyword
// hit wins, so specific service lines come before generic ones.
var serviceCategories = []keywordCategory{
	{"Integrierte Projektabwicklung", []string{"integrierte projektabwicklung", "ipa", "allianzvertrag", "projektallianzen", "partnerschaftsmodell"}},
	{"Integrated Project Management", []string{"integrated project management", "integriertes projektmanagement", "gesamtprojektmanagement"}},
	{"PMO", []string{"pmo", "project management office", "projektmanagementbüro", "projektbüro"}},
	{"Wettbewerbsbegleitung", []string{"wettbewerbsbegleitung", "wettbewerb", "architekturwettbewerb", "vergabewettbewerb", "planungswettbewerb"}},
	{"Finanzcontrolling", []string{"finanzcontrolling", "financial controlling", "finanzsteuerung", "budgetcontrolling"}},
	{"Agiles Projektmanagement", []string{"agil", "agile", "scrum", "kanban", "agiles projektmanagement"}},
	{"Projekt Coaching", []string{"projekt coaching", "projektcoaching", "bauherrenberatung", "projektberatung"}},
	{"Nutzermanagement", []string{"nutzermanagement", "nutzerbetreuung", "nutzerkoordination", "stakeholder"}},
	{"Krisenmanagement", []string{"krisenmanagement", "konfliktmanagement", "claim management", "claimmanagement", "mediation"}},
	{"Vertragsmanagement", []string{"vertragsmanagement", "vertragssteuerung", "nachtragsmanagement", "vertragscontrolling"}},
	{"Risikomanagement", []string{"risikomanagement", "risk management", "risikoanalyse", "risikobewertung"}},
	{"Lean Management", []string{"lean", "lean construction", "lean management", "prozessoptimierung"}},
	{"Bauüberwachung", []string{"bauüberwachung", "bauleitung", "bauaufsicht", "baubegleitung", "objektüberwachung", "bauoberleitung"}},
	{"Kostenmanagement", []string{"kostenmanagement", "kostensteuerung", "kostenkontrolle", "kostenberechnung", "kostenschätzung"}},
	{"Projektmanagement", []string{"projektmanagement", "projektleitung", "projektsteuerer"}},
	{"Projektsteuerung", []string{"projektsteuerung", "projektsteuerer", "projektsteuerungsleistung", "aho"}},
	{"Projektcontrolling", []string{"projektcontrolling", "projekt-controlling", "projektcontroller", "baucontrolling"}},
	{"Beschaffungsmanagement", []string{"beschaffung", "procurement", "vergabemanagement", "ausschreibung"}},
}

// buildingTypologies maps building types to their German keywords. Same
// first-match-wins ordering as serviceCategories.
var buildingTypologies = []keywordCategory{
	{"Healthcare", []string{"krankenhaus", "klinik", "hospital", "medizin", "gesundheit", "pflege", "arzt", "charité", "vivantes", "asklepios", "helios", "sana"}},
	{"Education", []string{"schule", "universität", "hochschule", "gymnasium", "campus", "bildung", "kita", "kindergarten"}},
	{"Residential", []string{"wohn", "wohnung", "mehrfamilienhaus", "einfamilienhaus", "siedlung", "quartier"}},
	{"Commercial", []string{"büro", "office", "gewerbe", "geschäftshaus", "verwaltung", "rathaus"}},
	{"Infrastructure", []string{"brücke", "tunnel", "straße", "autobahn", "schiene", "bahn", "kanal", "kläranlage", "u-bahn"}},
	{"Industrial", []string{"industrie", "fabrik", "werk", "produktion", "lager", "logistik"}},
	{"Data Center", []string{"rechenzentrum", "data center", "datacenter", "serverraum"}},
	{"Mixed-Use", []string{"mixed", "gemischt", "quartiersentwicklung"}},
	{"Sports", []string{"sport", "stadion", "arena", "schwimmbad", "turnhalle"}},
	{"Hospitality", []string{"hotel", "gastro", "restaurant"}},
}

// generalConstructionTerms widen the relevance gate beyond the service
// taxonomy so plain construction tenders are not discarded.
var generalConstructionTerms = []string{
	"projektsteuerung", "baumanagement", "generalplanung", "objektplanung",
	"fachplanung", "technische ausrüstung", "tragwerksplanung", "bauphysik",
	"architekten", "ingenieur", "planung", "bau", "neubau", "sanierung",
	"modernisierung", "erweiterung", "umbau", "hochbau", "tiefbau",
	"dienstleistung", "beratung", "consulting", "management",
}

// TenderClassifier assigns service categories and building typologies to
// tender text and decides whether a listing is relevant at all.
type TenderClassifier struct {
	logger *logrus.Entry
}

func NewTenderClassifier() *TenderClassifier {
	return &TenderClassifier{
		logger: logrus.WithField("component", "TenderClassifier"),
	}
}

// ClassifyService returns the first service category whose keywords appear in
// text, or nil when none match. Matching is case-insensitive.
func (c *TenderClassifier) ClassifyService(text string) *string {
	return matchFirstCategory(text, serviceCategories)
}

// ClassifyTypology returns the first building typology whose keywords appear
// in text, or nil when none match.
func (c *TenderClassifier) ClassifyTypology(text string) *string {
	return matchFirstCategory(text, buildingTypologies)
}

// Categorize classifies text against both taxonomies. The category falls back
// to DefaultServiceCategory; typology stays nil when nothing matches.
func (c *TenderClassifier) Categorize(text string) (category string, typology *string) {
	if matched := c.ClassifyService(text); matched != nil {
		category = *matched
	} else {
		category = DefaultServiceCategory
	}
	typology = c.ClassifyTypology(text)
	return category, typology
}

// IsRelevant reports whether text mentions any service keyword or general
// construction term. Irrelevant listings are dropped before persistence.
func (c *TenderClassifier) IsRelevant(text string) bool {
	lowered := strings.ToLower(text)

	for _, category := range serviceCategories {
		for _, keyword := range category.Keywords {
			if strings.Contains(lowered, keyword) {
				return true
			}
		}
	}

	for _, term := range generalConstructionTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}

	return false
}

func matchFirstCategory(text string, categories []keywordCategory) *string {
	lowered := strings.ToLower(text)
	for _, category := range categories {
		for _, keyword := range category.Keywords {
			if strings.Contains(lowered, keyword) {
				name := category.Name
				return &name
			}
		}
	}
	return nil
}
